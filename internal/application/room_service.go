package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/roomly/service-booking/internal/domain"
	bookingDomain "github.com/roomly/service-booking/internal/domain/booking"
	roomDomain "github.com/roomly/service-booking/internal/domain/room"
)

// RoomDTO is the response representation of a catalog room.
type RoomDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Capacity    int       `json:"capacity"`
	HourlyRate  string    `json:"hourly_rate"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Operational bool      `json:"operational"`
	Amenities   []string  `json:"amenities"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SaveRoomRequest carries the editable attributes of a room.
type SaveRoomRequest struct {
	Name        string   `json:"name" binding:"required"`
	Capacity    int      `json:"capacity" binding:"required"`
	HourlyRate  string   `json:"hourly_rate" binding:"required"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	Operational *bool    `json:"operational"`
	Amenities   []string `json:"amenities"`
}

// RoomService is the room catalog collaborator: plain data management
// around the booking engine.
type RoomService struct {
	rooms    roomDomain.Repository
	bookings bookingDomain.Repository
	logger   *zap.Logger
}

// NewRoomService creates a new RoomService.
func NewRoomService(rooms roomDomain.Repository, bookings bookingDomain.Repository, logger *zap.Logger) *RoomService {
	return &RoomService{rooms: rooms, bookings: bookings, logger: logger}
}

// ListRooms returns catalog rooms ordered by name. Non-admin callers only
// see operational rooms.
func (s *RoomService) ListRooms(ctx context.Context, includeNonOperational bool) ([]RoomDTO, error) {
	rooms, err := s.rooms.ListAll(ctx, !includeNonOperational)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return toRoomDTOs(rooms), nil
}

// ListRoomsByCapacity returns operational rooms seating at least minCapacity.
func (s *RoomService) ListRoomsByCapacity(ctx context.Context, minCapacity int) ([]RoomDTO, error) {
	if minCapacity < 1 {
		return nil, domain.NewValidationError("minimum capacity must be at least 1")
	}
	rooms, err := s.rooms.ListByMinCapacity(ctx, minCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms by capacity: %w", err)
	}
	return toRoomDTOs(rooms), nil
}

// GetRoom retrieves a single room by id.
func (s *RoomService) GetRoom(ctx context.Context, roomID uuid.UUID) (*RoomDTO, error) {
	rm, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	dto := toRoomDTO(rm)
	return &dto, nil
}

// CreateRoom adds a room to the catalog (admin).
func (s *RoomService) CreateRoom(ctx context.Context, req SaveRoomRequest) (*RoomDTO, error) {
	rate, err := parseRate(req.HourlyRate)
	if err != nil {
		return nil, err
	}

	rm, err := roomDomain.NewRoom(req.Name, req.Capacity, rate, req.Description, req.ImageURL, req.Amenities)
	if err != nil {
		return nil, err
	}

	if err := s.rooms.Save(ctx, rm); err != nil {
		return nil, fmt.Errorf("failed to save room: %w", err)
	}

	s.logger.Info("room created",
		zap.String("room_id", rm.ID().String()),
		zap.String("name", rm.Name()),
	)

	dto := toRoomDTO(rm)
	return &dto, nil
}

// UpdateRoom replaces a room's editable attributes (admin). Rate changes
// apply to future bookings only; existing bookings keep the price computed
// at their creation.
func (s *RoomService) UpdateRoom(ctx context.Context, roomID uuid.UUID, req SaveRoomRequest) (*RoomDTO, error) {
	rate, err := parseRate(req.HourlyRate)
	if err != nil {
		return nil, err
	}

	rm, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	operational := rm.IsOperational()
	if req.Operational != nil {
		operational = *req.Operational
	}

	if err := rm.Update(req.Name, req.Capacity, rate, req.Description, req.ImageURL, operational, req.Amenities); err != nil {
		return nil, err
	}

	if err := s.rooms.Update(ctx, rm); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	s.logger.Info("room updated",
		zap.String("room_id", roomID.String()),
		zap.String("name", rm.Name()),
	)

	dto := toRoomDTO(rm)
	return &dto, nil
}

// DeleteRoom removes a room from the catalog (admin). Rooms with active
// bookings that have not yet ended cannot be deleted.
func (s *RoomService) DeleteRoom(ctx context.Context, roomID uuid.UUID) error {
	if _, err := s.rooms.FindByID(ctx, roomID); err != nil {
		return err
	}

	hasActive, err := s.bookings.HasActiveAfter(ctx, roomID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to check active bookings: %w", err)
	}
	if hasActive {
		return domain.NewConflictError("cannot delete room with active bookings")
	}

	if err := s.rooms.Delete(ctx, roomID); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	s.logger.Info("room deleted", zap.String("room_id", roomID.String()))
	return nil
}

func parseRate(raw string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domain.NewValidationError("hourly rate must be a decimal number")
	}
	if rate.IsNegative() {
		return decimal.Zero, domain.NewValidationError("hourly rate must not be negative")
	}
	return rate, nil
}

func toRoomDTO(rm *roomDomain.Room) RoomDTO {
	amenities := rm.Amenities()
	if amenities == nil {
		amenities = []string{}
	}
	return RoomDTO{
		ID:          rm.ID(),
		Name:        rm.Name(),
		Capacity:    rm.Capacity(),
		HourlyRate:  rm.HourlyRate().StringFixed(2),
		Description: rm.Description(),
		ImageURL:    rm.ImageURL(),
		Operational: rm.IsOperational(),
		Amenities:   amenities,
		CreatedAt:   rm.CreatedAt(),
		UpdatedAt:   rm.UpdatedAt(),
	}
}

func toRoomDTOs(rooms []*roomDomain.Room) []RoomDTO {
	dtos := make([]RoomDTO, len(rooms))
	for i, rm := range rooms {
		dtos[i] = toRoomDTO(rm)
	}
	return dtos
}
