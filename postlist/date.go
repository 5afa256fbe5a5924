package postlist

import (
	"encoding/json"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Date is a publish timestamp. It decodes from any unambiguous date string and
// always encodes as RFC 3339 with
// fractional seconds kept. A zero Date encodes to an empty string.
type Date struct {
	time.Time
}

// ParseDate parses the given date string. An empty string is the zero date.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return Date{}, errors.Wrapf(err, "Failed to parse date %q", s)
	}

	return Date{t}, nil
}

// MustDate is ParseDate that panics. It is meant for literals.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(time.RFC3339Nano)
}

// Equal reports whether d and other are the same instant.
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

// After reports whether d is later than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes the date leniently: an unparsable date becomes the
// zero date, which sorts last.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.Wrap(err, "Date is not a string")
	}

	p, err := ParseDate(s)
	if err != nil {
		*d = Date{}
		return nil
	}

	*d = p
	return nil
}

func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Date) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return errors.Wrap(err, "Date is not a string")
	}

	p, err := ParseDate(s)
	if err != nil {
		*d = Date{}
		return nil
	}

	*d = p
	return nil
}
