package sampling

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// Window bounds every generated timestamp.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow rejects empty and inverted windows.
func NewWindow(start, end time.Time) (Window, error) {
	if start.IsZero() || end.IsZero() {
		return Window{}, fmt.Errorf("sampling: window bounds are required")
	}
	if end.Before(start) {
		return Window{}, fmt.Errorf("sampling: window end %s is before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return Window{Start: start.UTC(), End: end.UTC()}, nil
}

// Draw returns a uniform timestamp in [Start, End] at one-second resolution.
func (w Window) Draw(r Rand) time.Time {
	span := int64(w.End.Sub(w.Start) / time.Second)
	if span <= 0 {
		return w.Start
	}
	return w.Start.Add(time.Duration(r.Int64N(span+1)) * time.Second)
}

// Offset moves base forward by the given number of days, never past End.
// A base already later than End is returned unchanged, so the result never
// precedes base.
func (w Window) Offset(base time.Time, days int) time.Time {
	limit := w.End
	if base.After(limit) {
		limit = base
	}
	t := base.Add(time.Duration(days) * day)
	if t.After(limit) {
		return limit
	}
	return t
}

// Contains reports whether t lies inside the closed window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
