package shared

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the layout of a calendar date on the wire and in forms
const DateLayout = "2006-01-02"

// Date is a calendar date field of a form or API record. It decodes from
// "", null, "2006-01-02" or RFC 3339; the first two leave it zero so that
// a required check can report the field.
type Date struct {
	time.Time
}

// NewDate wraps t
func NewDate(t time.Time) Date {
	return Date{Time: t}
}

// ParseDate reads a date in DateLayout or RFC 3339. Blank input is the
// zero date.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Date{}, nil
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return Date{}, NewDomainError(ErrInvalidDate.Code,
			fmt.Sprintf("invalid date %q: use YYYY-MM-DD", raw))
	}
	return Date{Time: t}, nil
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return NewDomainError(ErrInvalidDate.Code, "a date must be a string")
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON writes a midnight date as YYYY-MM-DD and any other time as
// RFC 3339. The zero date is null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// String formats d the way MarshalJSON does, without quotes
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	h, m, s := d.Clock()
	if h == 0 && m == 0 && s == 0 && d.Nanosecond() == 0 {
		return d.Format(DateLayout)
	}
	return d.Format(time.RFC3339)
}
