package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository defines the persistence contract for booking aggregates.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByRequesterID retrieves bookings created by a requester with
	// pagination, most recent start time first.
	FindByRequesterID(ctx context.Context, requesterID string, page, limit int) ([]*Booking, int64, error)

	// FindActiveByRoom retrieves all non-cancelled bookings for a room.
	// excludeID, when non-nil, omits the booking being rescheduled.
	FindActiveByRoom(ctx context.Context, roomID uuid.UUID, excludeID *uuid.UUID) ([]*Booking, error)

	// CreateIfAvailable atomically re-validates that no active booking for
	// the same room overlaps bk's slot and inserts bk, all within one
	// transaction. Returns SlotUnavailable when a conflicting booking
	// committed first.
	CreateIfAvailable(ctx context.Context, bk *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, bk *Booking) error

	// ListAll retrieves all bookings with pagination, most recent start
	// time first (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status.
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// HasActiveAfter reports whether a room has any non-cancelled booking
	// ending after the given instant. Used by the catalog delete guard.
	HasActiveAfter(ctx context.Context, roomID uuid.UUID, after time.Time) (bool, error)

	// SumRevenue totals the price of confirmed and completed bookings whose
	// start time falls within [from, to); nil bounds are open.
	SumRevenue(ctx context.Context, from, to *time.Time) (decimal.Decimal, error)

	// FindUpcoming retrieves confirmed bookings starting after now, soonest
	// first, limited to limit entries; limit <= 0 means no limit.
	FindUpcoming(ctx context.Context, now time.Time, limit int) ([]*Booking, error)

	// FindRecent retrieves the most recently created bookings.
	FindRecent(ctx context.Context, limit int) ([]*Booking, error)

	// CountByRoom returns booking counts per room id, for popularity stats.
	CountByRoom(ctx context.Context) (map[uuid.UUID]int64, error)
}
