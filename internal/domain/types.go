package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// StringList is a []string persisted as a JSON array in a text column. It is
// used for salon images and categories, which are only ever read and written
// whole.
type StringList []string

// Value implements driver.Valuer. A nil list is stored as "[]" so the column
// stays NOT NULL.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return errors.New("domain: unsupported StringList source")
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*l = out
	return nil
}
