package booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AvailabilityChecker answers whether a room is free over a time slot by
// scanning that room's non-cancelled bookings against the overlap predicate.
// Per-room active-booking counts are small, so the linear scan is fine; a
// sorted-by-start index per room is the scaling path and would keep the same
// contract.
type AvailabilityChecker struct {
	repo Repository
}

// NewAvailabilityChecker creates an AvailabilityChecker backed by repo.
func NewAvailabilityChecker(repo Repository) *AvailabilityChecker {
	return &AvailabilityChecker{repo: repo}
}

// IsAvailable reports whether no active booking for roomID overlaps slot.
// excludeID lets a reschedule check ignore the booking being modified.
// A slot that exactly abuts an existing booking is available.
func (c *AvailabilityChecker) IsAvailable(ctx context.Context, roomID uuid.UUID, slot TimeSlot, excludeID *uuid.UUID) (bool, error) {
	active, err := c.repo.FindActiveByRoom(ctx, roomID, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to load active bookings: %w", err)
	}
	for _, bk := range active {
		if bk.Slot().Overlaps(slot) {
			return false, nil
		}
	}
	return true, nil
}
