package types

import "time"

// DayWindow is the half-open interval [Start, End) covering one calendar day.
type DayWindow struct {
	Start time.Time
	End   time.Time
}

// DayOf returns the calendar day containing t, evaluated in loc.
// A nil loc means t's own location.
func DayOf(t time.Time, loc *time.Location) DayWindow {
	if loc != nil {
		t = t.In(loc)
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return DayWindow{
		Start: start,
		End:   start.AddDate(0, 0, 1),
	}
}

// Contains reports whether t falls inside the window.
func (w DayWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ParseDay parses a YYYY-MM-DD date in loc and returns its window.
func ParseDay(s string, loc *time.Location) (DayWindow, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return DayWindow{}, err
	}
	return DayOf(t, loc), nil
}
