package generic

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// TIME POINT - Calendar date (entries are classified by day, never by clock)
// =============================================================================

const DateLayout = "2006-01-02"

type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func Today() TimePoint {
	return DateOf(time.Now())
}

// DateOf drops the clock part of t, keeping its calendar date.
func DateOf(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return TimePoint{}, &InvalidInputError{Field: "date", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", s)}
	}
	return TimePoint{Time: t}, nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool  { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool  { return tp.Time.After(other.Time) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

// IsOneOf reports whether the date falls on any of days.
func (tp TimePoint) IsOneOf(days []time.Weekday) bool {
	wd := tp.Weekday()
	for _, d := range days {
		if d == wd {
			return true
		}
	}
	return false
}

func (tp TimePoint) String() string {
	return tp.Time.Format(DateLayout)
}

func (tp TimePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(tp.String())
}

func (tp *TimePoint) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode date: %w", err)
	}
	// Older documents may carry a full ISO timestamp; keep the date part.
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	p, err := ParseDate(s)
	if err != nil {
		return err
	}
	*tp = p
	return nil
}

// =============================================================================
// CLOCK TIME - HH:mm within a day
// =============================================================================

// ClockTime is minutes since midnight.
type ClockTime int

// ParseClock parses HH:mm.
func ParseClock(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, &InvalidInputError{Field: "time", Reason: fmt.Sprintf("%q is not an HH:mm time", s)}
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

func (c ClockTime) Minutes() int { return int(c) }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

func DaysBetween(from, to TimePoint) int { return int(to.Time.Sub(from.Time).Hours() / 24) }
func EndOfYear(year int) TimePoint       { return NewTimePoint(year, time.December, 31) }

// ParseWeekday accepts English day names ("sunday", "Sun") case-insensitively.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return 0, &InvalidInputError{Field: "weekday", Reason: fmt.Sprintf("unknown weekday %q", s)}
}
