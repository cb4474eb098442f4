package booking

import (
	"fmt"
	"time"

	"github.com/roomly/service-booking/internal/domain"
)

// TimeSlot is a half-open time range [start, end). A TimeSlot constructed
// through NewTimeSlot always satisfies end > start; degenerate or inverted
// ranges never exist as values.
type TimeSlot struct {
	start time.Time
	end   time.Time
}

// NewTimeSlot validates and builds a TimeSlot.
func NewTimeSlot(start, end time.Time) (TimeSlot, error) {
	if !end.After(start) {
		return TimeSlot{}, domain.NewValidationError("end time must be after start time")
	}
	return TimeSlot{start: start.UTC(), end: end.UTC()}, nil
}

// Start returns the inclusive start of the slot.
func (s TimeSlot) Start() time.Time { return s.start }

// End returns the exclusive end of the slot.
func (s TimeSlot) End() time.Time { return s.end }

// Duration returns the length of the slot.
func (s TimeSlot) Duration() time.Duration { return s.end.Sub(s.start) }

// Overlaps reports whether two half-open ranges share at least one instant.
// The single predicate s1 < e2 && s2 < e1 covers containment, partial
// overlap and exact match; ranges that merely abut do not overlap.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	return s.start.Before(other.end) && other.start.Before(s.end)
}

// EndedBy reports whether the slot has fully elapsed at time now.
func (s TimeSlot) EndedBy(now time.Time) bool {
	return !s.end.After(now)
}

// String returns a readable representation for logs.
func (s TimeSlot) String() string {
	return fmt.Sprintf("[%s, %s)", s.start.Format(time.RFC3339), s.end.Format(time.RFC3339))
}
