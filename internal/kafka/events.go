package kafka

import (
	"time"

	"github.com/google/uuid"
)

// TopicReservationEvents carries all reservation lifecycle events.
const TopicReservationEvents = "reservation.events"

// Event types published on TopicReservationEvents.
const (
	ReservationConfirmed     = "reservation.confirmed"
	ReservationCancelled     = "reservation.cancelled"
	ReservationStatusChanged = "reservation.status_changed"
)

// ReservationConfirmedEvent is emitted when a booking is created.
type ReservationConfirmedEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	RoomID      uuid.UUID `json:"room_id"`
	RequesterID string    `json:"requester_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Price       string    `json:"price"`
	Currency    string    `json:"currency"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// ReservationCancelledEvent is emitted when a booking is cancelled.
type ReservationCancelledEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	RoomID      uuid.UUID `json:"room_id"`
	CancelledBy string    `json:"cancelled_by"`
	Reason      string    `json:"reason,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// ReservationStatusChangedEvent is emitted on administrative status overrides.
type ReservationStatusChangedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	RoomID     uuid.UUID `json:"room_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	OccurredAt time.Time `json:"occurred_at"`
}
