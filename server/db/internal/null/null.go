package null

import (
	"database/sql/driver"

	"github.com/pkg/errors"
)

var ErrUnexpectedType = errors.New("unexpected type")

// String represents a string that is stored as NULL when empty.
type String string

func (s *String) Scan(v interface{}) error {
	switch v := v.(type) {
	case nil:
		*s = ""
		return nil
	case string:
		*s = String(v)
		return nil
	case []byte:
		*s = String(v)
		return nil
	}

	return errors.Wrapf(ErrUnexpectedType, "Failed to scan %#v", v)
}

func (s String) Value() (driver.Value, error) {
	if s == "" {
		return nil, nil
	}
	return string(s), nil
}

func (s String) String() string {
	return string(s)
}
