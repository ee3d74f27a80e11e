package model

import (
	"encoding/json"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the boundary format of every contract date. Lexical order of
// formatted values equals chronological order.
const DateLayout = "2006/01/02"

// Date is a calendar date without time of day. The zero value is the empty
// date. A Date parsed from malformed text keeps the text for display but is
// not valid and takes part in no comparison.
type Date struct {
	t     time.Time
	valid bool
	raw   string
}

// ParseDate parses s in DateLayout. It never fails: empty input yields the
// zero Date and malformed input yields an invalid Date carrying the raw text.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return Date{raw: s}
	}
	return Date{t: t, valid: true}
}

// DateOf truncates t to local midnight.
func DateOf(t time.Time) Date {
	t = t.In(time.Local)
	return Date{t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), valid: true}
}

// NewDate builds a valid date from calendar fields, normalising overflow.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.Local), valid: true}
}

// Valid reports whether d holds a well-formed date.
func (d Date) Valid() bool { return d.valid }

// IsZero reports whether d is the empty date.
func (d Date) IsZero() bool { return !d.valid && d.raw == "" }

// Malformed reports whether d was parsed from text that is not a date.
func (d Date) Malformed() bool { return !d.valid && d.raw != "" }

// Time returns local midnight of d, or the zero time when d is not valid.
func (d Date) Time() time.Time {
	if !d.valid {
		return time.Time{}
	}
	return d.t
}

// String formats d as yyyy/MM/dd, or returns the raw text of a malformed date
func (d Date) String() string {
	if !d.valid {
		return d.raw
	}
	return d.t.Format(DateLayout)
}

// Before reports whether d is strictly before o. False when either is invalid.
func (d Date) Before(o Date) bool {
	return d.valid && o.valid && d.t.Before(o.t)
}

// After reports whether d is strictly after o. False when either is invalid.
func (d Date) After(o Date) bool {
	return d.valid && o.valid && d.t.After(o.t)
}

// OnOrBefore reports d <= o. False when either is invalid.
func (d Date) OnOrBefore(o Date) bool {
	return d.valid && o.valid && !d.t.After(o.t)
}

// Compare orders dates chronologically with every invalid date below every
// valid one. Two invalid dates compare equal.
func (d Date) Compare(o Date) int {
	switch {
	case !d.valid && !o.valid:
		return 0
	case !d.valid:
		return -1
	case !o.valid:
		return 1
	}
	return d.t.Compare(o.t)
}

// AddDays shifts d by n calendar days. Invalid dates are returned unchanged.
func (d Date) AddDays(n int) Date {
	if !d.valid {
		return d
	}
	return NewDate(d.t.Year(), d.t.Month(), d.t.Day()+n)
}

// AddMonths shifts d by n calendar months, normalising day overflow the way
// time.Date does (Jan 31 + 1 month = Mar 3 or Mar 2).
func (d Date) AddMonths(n int) Date {
	if !d.valid {
		return d
	}
	return NewDate(d.t.Year(), d.t.Month()+time.Month(n), d.t.Day())
}

// InYear reports whether d is valid and its formatted value starts with year.
func (d Date) InYear(year string) bool {
	return d.valid && strings.HasPrefix(d.String(), year)
}

// Year returns the four-digit year of d, or "" when d is not valid.
func (d Date) Year() string {
	if !d.valid {
		return ""
	}
	return d.t.Format("2006")
}

// MarshalJSON encodes d as its String form
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a date string or null
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = ParseDate(s)
	return nil
}

// MarshalYAML encodes d as its String form
func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML parses a scalar date, keeping malformed text
func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	*d = ParseDate(s)
	return nil
}
