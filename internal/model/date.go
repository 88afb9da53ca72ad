package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Fuzzy date keywords. These are accepted anywhere a date string is, and
// round-trip through serialization unchanged.
const (
	DateNow     = "now"
	DateSoon    = "soon"
	DateSomeday = "someday"
)

// soonHorizon is how far out a "soon" date is treated as being when
// compared against concrete dates.
const soonHorizon = 15 * 24 * time.Hour

const dateLayout = "2006-01-02"

type dateKind int

const (
	kindNone dateKind = iota
	kindConcrete
	kindNow
	kindSoon
	kindSomeday
)

// Date is a task date: unset, a concrete calendar day, or one of the
// fuzzy keywords now/soon/someday.
type Date struct {
	kind dateKind
	t    time.Time
}

// Today returns the current calendar day as a concrete Date.
func Today() Date {
	y, m, d := time.Now().Date()
	return Date{kind: kindConcrete, t: time.Date(y, m, d, 0, 0, 0, 0, time.Local)}
}

// NewDate returns a concrete Date for the given day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{kind: kindConcrete, t: time.Date(y, m, d, 0, 0, 0, 0, time.Local)}
}

// ParseDate parses a date string: "", YYYY-MM-DD, or a fuzzy keyword.
func ParseDate(s string) (Date, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Date{}, nil
	case DateNow:
		return Date{kind: kindNow}, nil
	case DateSoon:
		return Date{kind: kindSoon}, nil
	case DateSomeday:
		return Date{kind: kindSomeday}, nil
	}

	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD, now, soon, or someday)", s)
	}
	return Date{kind: kindConcrete, t: t}, nil
}

// IsSet reports whether the date is anything other than unset.
func (d Date) IsSet() bool { return d.kind != kindNone }

// IsZero reports whether the date is unset. Satisfies the encoding/json
// omitzero contract.
func (d Date) IsZero() bool { return d.kind == kindNone }

// IsFuzzy reports whether the date is one of the fuzzy keywords.
func (d Date) IsFuzzy() bool {
	return d.kind == kindNow || d.kind == kindSoon || d.kind == kindSomeday
}

// String renders the date in its canonical serialized form. Unset dates
// render as the empty string.
func (d Date) String() string {
	switch d.kind {
	case kindConcrete:
		return d.t.Format(dateLayout)
	case kindNow:
		return DateNow
	case kindSoon:
		return DateSoon
	case kindSomeday:
		return DateSomeday
	default:
		return ""
	}
}

// Time returns the effective point in time used for ordering. now maps to
// today, soon to a fixed near-future horizon, someday to the far future.
func (d Date) Time() time.Time {
	switch d.kind {
	case kindConcrete:
		return d.t
	case kindNow:
		return Today().t
	case kindSoon:
		return Today().t.Add(soonHorizon)
	case kindSomeday:
		// Far enough that any concrete date sorts before it.
		return time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	default:
		return time.Time{}
	}
}

// Before reports whether d orders strictly before other. Unset dates order
// after everything, so open-ended tasks sink in due-date sorts.
func (d Date) Before(other Date) bool {
	if d.kind == kindNone {
		return false
	}
	if other.kind == kindNone {
		return true
	}
	return d.Time().Before(other.Time())
}

// Overdue reports whether the date lies strictly in the past.
// someday is never overdue.
func (d Date) Overdue() bool {
	if !d.IsSet() || d.kind == kindSomeday {
		return false
	}
	return d.Time().Before(Today().t)
}

// Humanize renders the date relative to now ("3 days from now", "2 days
// ago"). Fuzzy keywords render as themselves.
func (d Date) Humanize() string {
	switch d.kind {
	case kindNone:
		return ""
	case kindNow:
		return DateNow
	case kindSoon:
		return DateSoon
	case kindSomeday:
		return DateSomeday
	default:
		return humanize.Time(d.t)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(data []byte) error {
	parsed, err := ParseDate(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
