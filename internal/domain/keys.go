package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// FoldKey returns the case-folded form of s used for the unique username and
// email keys. Surrounding whitespace is dropped.
//
// A cases.Caser is stateful, so a fresh one is built per call.
func FoldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
