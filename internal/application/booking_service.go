package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomly/service-booking/internal/domain"
	bookingDomain "github.com/roomly/service-booking/internal/domain/booking"
	roomDomain "github.com/roomly/service-booking/internal/domain/room"
	"github.com/roomly/service-booking/internal/kafka"
)

// BookingDTO is the response representation of a booking. Price is a string
// to keep the decimal exact across JSON.
type BookingDTO struct {
	ID          uuid.UUID  `json:"id"`
	RoomID      uuid.UUID  `json:"room_id"`
	RequesterID string     `json:"requester_id"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	Status      string     `json:"status"`
	Price       string     `json:"price"`
	Currency    string     `json:"currency"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CancelNote  string     `json:"cancel_note,omitempty"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// AvailabilityDTO is the pre-submission quote for a room and time slot.
type AvailabilityDTO struct {
	Available bool   `json:"available"`
	Price     string `json:"price"`
	Currency  string `json:"currency"`
}

// roomLocks hands out one mutex per room id so that creation attempts for
// the same room serialize while other rooms proceed unaffected. The map
// only ever grows to the size of the catalog.
type roomLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *roomLocks) forRoom(roomID uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[roomID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[roomID] = m
	}
	return m
}

// BookingService is the application service owning the reservation
// lifecycle: quotes, atomic creation, cancellation and administrative
// status overrides.
type BookingService struct {
	bookings bookingDomain.Repository
	rooms    roomDomain.Repository
	checker  *bookingDomain.AvailabilityChecker
	pricing  bookingDomain.PriceCalculator
	locks    *roomLocks
	producer *kafka.Producer
	currency string
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.Repository,
	rooms roomDomain.Repository,
	pricing bookingDomain.PriceCalculator,
	producer *kafka.Producer,
	currency string,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		rooms:    rooms,
		checker:  bookingDomain.NewAvailabilityChecker(bookings),
		pricing:  pricing,
		locks:    newRoomLocks(),
		producer: producer,
		currency: currency,
		logger:   logger,
	}
}

// resolveRoom loads a room for booking purposes, translating a catalog miss
// into InvalidResource.
func (s *BookingService) resolveRoom(ctx context.Context, roomID uuid.UUID) (*roomDomain.Room, error) {
	rm, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		if domain.CodeOf(err) == domain.CodeNotFound {
			return nil, domain.NewInvalidResourceError(roomID.String())
		}
		return nil, fmt.Errorf("failed to resolve room: %w", err)
	}
	return rm, nil
}

// CheckAvailability returns whether the slot is free on the room together
// with the price it would cost. Read-only; takes no locks.
func (s *BookingService) CheckAvailability(ctx context.Context, roomID uuid.UUID, start, end time.Time) (*AvailabilityDTO, error) {
	slot, err := bookingDomain.NewTimeSlot(start, end)
	if err != nil {
		return nil, err
	}

	rm, err := s.resolveRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	price, err := s.pricing.Calculate(rm.HourlyRate(), slot)
	if err != nil {
		return nil, err
	}

	available, err := s.checker.IsAvailable(ctx, roomID, slot, nil)
	if err != nil {
		return nil, err
	}

	return &AvailabilityDTO{
		Available: available,
		Price:     price.StringFixed(2),
		Currency:  s.currency,
	}, nil
}

// CreateBooking reserves the room for [start, end) on behalf of requesterID.
// The availability check and the insert run under a per-room lock, and the
// repository re-validates inside the insert transaction, so of two
// conflicting concurrent attempts exactly one succeeds and the other
// receives SlotUnavailable.
func (s *BookingService) CreateBooking(ctx context.Context, roomID uuid.UUID, requesterID string, start, end time.Time) (*BookingDTO, error) {
	slot, err := bookingDomain.NewTimeSlot(start, end)
	if err != nil {
		return nil, err
	}

	rm, err := s.resolveRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !rm.IsOperational() {
		return nil, domain.NewValidationError("room is not operational")
	}

	price, err := s.pricing.Calculate(rm.HourlyRate(), slot)
	if err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(roomID, requesterID, slot, price, s.currency)
	if err != nil {
		return nil, err
	}

	lock := s.locks.forRoom(roomID)
	lock.Lock()
	defer lock.Unlock()

	available, err := s.checker.IsAvailable(ctx, roomID, slot, nil)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, domain.NewSlotUnavailableError(roomID.String())
	}

	// The repository re-runs the overlap check inside the insert
	// transaction; a conflicting insert committed by another instance
	// between the check above and here still loses cleanly.
	if err := s.bookings.CreateIfAvailable(ctx, bk); err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("room_id", roomID.String()),
		zap.String("requester_id", requesterID),
		zap.String("slot", slot.String()),
		zap.String("price", price.StringFixed(2)),
	)

	s.publishConfirmed(ctx, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// CancelBooking transitions a booking to cancelled. Only the owning
// requester may cancel; admin callers bypass the ownership check.
// Cancelling an already-terminal booking fails with AlreadyTerminal.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID uuid.UUID, requesterID string, admin bool, reason string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !admin && !bk.IsOwnedBy(requesterID) {
		return nil, domain.NewForbiddenError("booking does not belong to this requester")
	}

	if err := bk.Cancel(reason); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.logger.Info("booking cancelled",
		zap.String("booking_id", bookingID.String()),
		zap.String("cancelled_by", requesterID),
		zap.Bool("admin", admin),
	)

	s.publishCancelled(ctx, bk, requesterID, reason)

	result := toBookingDTO(bk)
	return &result, nil
}

// UpdateBookingStatus overwrites a booking's status (admin). Used for
// marking completed or correcting data; terminal bookings cannot be
// resurrected.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status string) (*BookingDTO, error) {
	target, err := bookingDomain.ParseStatus(status)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	oldStatus := bk.Status()
	if err := bk.ForceStatus(target); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.logger.Info("booking status updated",
		zap.String("booking_id", bookingID.String()),
		zap.String("old_status", oldStatus.String()),
		zap.String("new_status", target.String()),
	)

	s.publishStatusChanged(ctx, bk, oldStatus)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking by id.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetRequesterBookings retrieves paginated bookings for a requester, most
// recent start time first.
func (s *BookingService) GetRequesterBookings(ctx context.Context, requesterID string, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.FindByRequesterID(ctx, requesterID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// ListAllBookings returns a paginated list of all bookings, most recent
// start time first (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.bookings.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos, total, nil
}

// --- Helpers ---

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:          bk.ID(),
		RoomID:      bk.RoomID(),
		RequesterID: bk.RequesterID(),
		StartTime:   bk.Slot().Start(),
		EndTime:     bk.Slot().End(),
		Status:      bk.Status().String(),
		Price:       bk.Price().StringFixed(2),
		Currency:    bk.Currency(),
		CancelledAt: bk.CancelledAt(),
		CancelNote:  bk.CancelNote(),
		Version:     bk.Version(),
		CreatedAt:   bk.CreatedAt(),
		UpdatedAt:   bk.UpdatedAt(),
	}
}

func (s *BookingService) publishConfirmed(ctx context.Context, bk *bookingDomain.Booking) {
	evt := kafka.ReservationConfirmedEvent{
		BookingID:   bk.ID(),
		RoomID:      bk.RoomID(),
		RequesterID: bk.RequesterID(),
		StartTime:   bk.Slot().Start(),
		EndTime:     bk.Slot().End(),
		Price:       bk.Price().StringFixed(2),
		Currency:    bk.Currency(),
		OccurredAt:  time.Now().UTC(),
	}
	s.publishEvent(ctx, kafka.ReservationConfirmed, bk.ID().String(), evt)
}

func (s *BookingService) publishCancelled(ctx context.Context, bk *bookingDomain.Booking, cancelledBy, reason string) {
	evt := kafka.ReservationCancelledEvent{
		BookingID:   bk.ID(),
		RoomID:      bk.RoomID(),
		CancelledBy: cancelledBy,
		Reason:      reason,
		OccurredAt:  time.Now().UTC(),
	}
	s.publishEvent(ctx, kafka.ReservationCancelled, bk.ID().String(), evt)
}

func (s *BookingService) publishStatusChanged(ctx context.Context, bk *bookingDomain.Booking, oldStatus bookingDomain.Status) {
	evt := kafka.ReservationStatusChangedEvent{
		BookingID:  bk.ID(),
		RoomID:     bk.RoomID(),
		OldStatus:  oldStatus.String(),
		NewStatus:  bk.Status().String(),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, kafka.ReservationStatusChanged, bk.ID().String(), evt)
}

// publishEvent publishes best-effort: a broker failure is logged and never
// fails the request that triggered it.
func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	if s.producer == nil {
		return
	}

	cloudEvent, err := kafka.NewCloudEvent("service-booking", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, kafka.TopicReservationEvents, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
