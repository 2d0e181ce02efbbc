// Package utils provides small query-string helpers shared by the HTTP
// handlers. They are independent of domain logic.
package utils

import (
	"strconv"
	"strings"
)

// ParseOptionalBool parses a query flag. An empty (or blank) value means
// "not given" and yields nil; anything strconv.ParseBool rejects is an error.
//
//	ParseOptionalBool("")     // nil, nil
//	ParseOptionalBool("true") // &true, nil
//	ParseOptionalBool("0")    // &false, nil
func ParseOptionalBool(s string) (*bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
