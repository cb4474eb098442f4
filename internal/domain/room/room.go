package room

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/roomly/service-booking/internal/domain"
)

// Room is a bookable physical unit. The booking engine only reads id and
// hourly rate from it; the catalog owns everything else, including the
// operational flag.
type Room struct {
	id          uuid.UUID
	name        string
	capacity    int
	hourlyRate  decimal.Decimal
	description string
	imageURL    string
	operational bool
	amenities   []string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewRoom validates and creates a Room.
func NewRoom(name string, capacity int, hourlyRate decimal.Decimal, description, imageURL string, amenities []string) (*Room, error) {
	if name == "" {
		return nil, domain.NewValidationError("room name is required")
	}
	if capacity < 1 {
		return nil, domain.NewValidationError("room capacity must be at least 1")
	}
	if hourlyRate.IsNegative() {
		return nil, domain.NewValidationError("hourly rate must not be negative")
	}

	now := time.Now().UTC()
	return &Room{
		id:          uuid.New(),
		name:        name,
		capacity:    capacity,
		hourlyRate:  hourlyRate,
		description: description,
		imageURL:    imageURL,
		operational: true,
		amenities:   amenities,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructRoom rebuilds a Room from persistence data (no validation).
func ReconstructRoom(
	id uuid.UUID,
	name string,
	capacity int,
	hourlyRate decimal.Decimal,
	description, imageURL string,
	operational bool,
	amenities []string,
	createdAt, updatedAt time.Time,
) *Room {
	return &Room{
		id:          id,
		name:        name,
		capacity:    capacity,
		hourlyRate:  hourlyRate,
		description: description,
		imageURL:    imageURL,
		operational: operational,
		amenities:   amenities,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ID returns the room's unique identifier.
func (r *Room) ID() uuid.UUID { return r.id }

// Name returns the room's display name.
func (r *Room) Name() string { return r.name }

// Capacity returns the maximum number of people.
func (r *Room) Capacity() int { return r.capacity }

// HourlyRate returns the price per hour.
func (r *Room) HourlyRate() decimal.Decimal { return r.hourlyRate }

// Description returns the room description.
func (r *Room) Description() string { return r.description }

// ImageURL returns the room image location.
func (r *Room) ImageURL() string { return r.imageURL }

// IsOperational reports whether the room accepts new bookings.
func (r *Room) IsOperational() bool { return r.operational }

// Amenities returns the room's amenity tags.
func (r *Room) Amenities() []string { return r.amenities }

// CreatedAt returns the creation timestamp.
func (r *Room) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (r *Room) UpdatedAt() time.Time { return r.updatedAt }

// Update replaces the room's editable attributes.
func (r *Room) Update(name string, capacity int, hourlyRate decimal.Decimal, description, imageURL string, operational bool, amenities []string) error {
	if name == "" {
		return domain.NewValidationError("room name is required")
	}
	if capacity < 1 {
		return domain.NewValidationError("room capacity must be at least 1")
	}
	if hourlyRate.IsNegative() {
		return domain.NewValidationError("hourly rate must not be negative")
	}
	r.name = name
	r.capacity = capacity
	r.hourlyRate = hourlyRate
	r.description = description
	r.imageURL = imageURL
	r.operational = operational
	r.amenities = amenities
	r.updatedAt = time.Now().UTC()
	return nil
}
