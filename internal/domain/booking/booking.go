package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/roomly/service-booking/internal/domain"
)

// Booking is the aggregate root for the booking domain. It references the
// room and the requester by id only; neither side holds the other.
type Booking struct {
	id          uuid.UUID
	roomID      uuid.UUID
	requesterID string
	slot        TimeSlot
	status      Status

	// price is fixed at creation from the rate in effect at that instant;
	// later rate changes never alter it.
	price    decimal.Decimal
	currency string

	cancelledAt *time.Time
	cancelNote  string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a Booking in confirmed status. Creation success implies
// confirmation; there is no separate pending-approval step.
func NewBooking(roomID uuid.UUID, requesterID string, slot TimeSlot, price decimal.Decimal, currency string) (*Booking, error) {
	if roomID == uuid.Nil {
		return nil, domain.NewValidationError("room ID is required")
	}
	if requesterID == "" {
		return nil, domain.NewValidationError("requester ID is required")
	}
	if price.IsNegative() {
		return nil, domain.NewValidationError("price must not be negative")
	}

	now := time.Now().UTC()
	return &Booking{
		id:          uuid.New(),
		roomID:      roomID,
		requesterID: requesterID,
		slot:        slot,
		status:      StatusConfirmed,
		price:       price,
		currency:    currency,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	roomID uuid.UUID,
	requesterID string,
	slot TimeSlot,
	status Status,
	price decimal.Decimal,
	currency string,
	cancelledAt *time.Time,
	cancelNote string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:          id,
		roomID:      roomID,
		requesterID: requesterID,
		slot:        slot,
		status:      status,
		price:       price,
		currency:    currency,
		cancelledAt: cancelledAt,
		cancelNote:  cancelNote,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// RoomID returns the booked room's identifier.
func (b *Booking) RoomID() uuid.UUID { return b.roomID }

// RequesterID returns the opaque identity the booking was created for.
func (b *Booking) RequesterID() string { return b.requesterID }

// Slot returns the booked time range.
func (b *Booking) Slot() TimeSlot { return b.slot }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// Price returns the total price fixed at creation.
func (b *Booking) Price() decimal.Decimal { return b.price }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// CancelledAt returns the time the booking was cancelled, or nil.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// CancelNote returns the cancellation reason.
func (b *Booking) CancelNote() string { return b.cancelNote }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// IsOwnedBy reports whether requesterID created this booking.
func (b *Booking) IsOwnedBy(requesterID string) bool {
	return b.requesterID == requesterID
}

// EffectiveStatus derives the status as seen by reporting at time now: a
// confirmed booking whose slot has fully elapsed reads as completed. The
// write path never performs this transition.
func (b *Booking) EffectiveStatus(now time.Time) Status {
	if b.status == StatusConfirmed && b.slot.EndedBy(now) {
		return StatusCompleted
	}
	return b.status
}

// Cancel transitions the booking to cancelled. Cancelling a booking that is
// already terminal fails with AlreadyTerminal; callers treat that as a
// benign no-op, not a fault.
func (b *Booking) Cancel(reason string) error {
	if !b.status.CanBeCancelled() {
		return domain.NewAlreadyTerminalError(b.id.String())
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.cancelNote = reason
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// Complete transitions the booking from confirmed to completed.
func (b *Booking) Complete() error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewConflictError("booking cannot be completed from status " + b.status.String())
	}
	b.status = StatusCompleted
	b.updatedAt = time.Now().UTC()
	return nil
}

// ForceStatus overwrites the status for administrative corrections. Terminal
// bookings cannot be resurrected to a non-terminal status; everything else
// is accepted without consulting the transition table.
func (b *Booking) ForceStatus(target Status) error {
	if !target.IsValid() {
		return domain.NewValidationError("invalid booking status: " + target.String())
	}
	if b.status.IsTerminal() && !target.IsTerminal() {
		return domain.NewConflictError("cannot move booking out of terminal status " + b.status.String())
	}
	b.status = target
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
