package task

import (
	"bytes"
	"encoding/json"
	"time"
)

// naiveLayout is how servers without time zone support write datetimes.
const naiveLayout = "2006-01-02T15:04:05.999999"

// Timestamp is a datetime sent by the API. Values in an unknown layout keep
// their raw text in Raw and leave Time zero; they never fail decoding.
type Timestamp struct {
	Time time.Time
	Raw  string
}

// At wraps t.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// NewTimestamp returns a pointer to At(t).
func NewTimestamp(t time.Time) *Timestamp {
	ts := At(t)
	return &ts
}

// IsZero reports whether neither a time nor raw text is held.
func (ts Timestamp) IsZero() bool {
	return ts.Time.IsZero() && ts.Raw == ""
}

// Parsed reports whether the value was understood as a time.
func (ts Timestamp) Parsed() bool {
	return !ts.Time.IsZero()
}

// UnmarshalJSON accepts RFC 3339 and naive (zone-less, read as UTC)
// datetimes. Anything else is kept as Raw.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Not a string either; keep the literal.
		*ts = Timestamp{Raw: string(data)}
		return nil
	}
	*ts = ParseTimestamp(s)
	return nil
}

// MarshalJSON writes RFC 3339, or the raw text for unparsed values.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	switch {
	case ts.Parsed():
		return json.Marshal(ts.Time.Format(time.RFC3339Nano))
	case ts.Raw != "":
		return json.Marshal(ts.Raw)
	default:
		return []byte("null"), nil
	}
}

// ParseTimestamp parses s with the layouts UnmarshalJSON accepts.
func ParseTimestamp(s string) Timestamp {
	if s == "" {
		return Timestamp{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Timestamp{Time: t}
	}
	if t, err := time.Parse(naiveLayout, s); err == nil {
		return Timestamp{Time: t}
	}
	return Timestamp{Raw: s}
}
