package dietz

import (
	"fmt"
	"time"
)

// Period is the time interval (Start, End] over which a return is measured.
// Start is excluded, End is included.
type Period struct {
	Start, End time.Time
}

// NewPeriod returns a validated Period.
func NewPeriod(start, end time.Time) (Period, error) {
	p := Period{Start: start, End: end}
	return p, p.Validate()
}

// Validate returns ErrInvalidPeriod unless Start is strictly before End.
func (p Period) Validate() error {
	if !p.Start.Before(p.End) {
		return fmt.Errorf("period %s: end must be after start: %w", p, ErrInvalidPeriod)
	}
	return nil
}

// Contains reports whether t is in (Start, End].
func (p Period) Contains(t time.Time) bool {
	return p.Start.Before(t) && !t.After(p.End)
}

// Duration returns the length of the period.
func (p Period) Duration() time.Duration { return p.End.Sub(p.Start) }

// Equal reports whether both periods have the same boundary instants.
func (p Period) Equal(q Period) bool {
	return p.Start.Equal(q.Start) && p.End.Equal(q.End)
}

// String formats the period as "(start, end]" in RFC3339.
func (p Period) String() string {
	return fmt.Sprintf("(%s, %s]", p.Start.Format(time.RFC3339), p.End.Format(time.RFC3339))
}
