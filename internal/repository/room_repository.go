package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/roomly/service-booking/internal/domain"
	roomDomain "github.com/roomly/service-booking/internal/domain/room"
)

// RoomModel is the GORM model for the rooms table.
type RoomModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name        string          `gorm:"not null;size:100;index"`
	Capacity    int             `gorm:"not null"`
	HourlyRate  decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Description string          `gorm:"size:500"`
	ImageURL    string          `gorm:"size:255"`
	Operational bool            `gorm:"not null;default:true"`
	Amenities   json.RawMessage `gorm:"type:jsonb"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RoomModel) TableName() string {
	return "rooms"
}

// GormRoomRepository is the GORM-based implementation of the room catalog
// repository.
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new GormRoomRepository.
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

// FindByID retrieves a room by id.
func (r *GormRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*roomDomain.Room, error) {
	var model RoomModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("room", id.String())
		}
		return nil, fmt.Errorf("failed to find room by ID: %w", err)
	}
	return toDomainRoom(&model)
}

// ListAll retrieves rooms ordered by name.
func (r *GormRoomRepository) ListAll(ctx context.Context, operationalOnly bool) ([]*roomDomain.Room, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if operationalOnly {
		query = query.Where("operational = ?", true)
	}

	var models []RoomModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return toDomainRooms(models)
}

// ListByMinCapacity retrieves operational rooms with at least the given
// capacity, smallest first.
func (r *GormRoomRepository) ListByMinCapacity(ctx context.Context, minCapacity int) ([]*roomDomain.Room, error) {
	var models []RoomModel
	if err := r.db.WithContext(ctx).
		Where("operational = ? AND capacity >= ?", true, minCapacity).
		Order("capacity ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms by capacity: %w", err)
	}
	return toDomainRooms(models)
}

// Save persists a new room.
func (r *GormRoomRepository) Save(ctx context.Context, rm *roomDomain.Room) error {
	model, err := toRoomModel(rm)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

// Update persists changes to an existing room.
func (r *GormRoomRepository) Update(ctx context.Context, rm *roomDomain.Room) error {
	model, err := toRoomModel(rm)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&RoomModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":        model.Name,
			"capacity":    model.Capacity,
			"hourly_rate": model.HourlyRate,
			"description": model.Description,
			"image_url":   model.ImageURL,
			"operational": model.Operational,
			"amenities":   model.Amenities,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update room: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("room", model.ID.String())
	}
	return nil
}

// Delete removes a room from the catalog.
func (r *GormRoomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&RoomModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete room: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("room", id.String())
	}
	return nil
}

// Counts returns the total and operational room counts.
func (r *GormRoomRepository) Counts(ctx context.Context) (int64, int64, error) {
	var total, operational int64
	if err := r.db.WithContext(ctx).Model(&RoomModel{}).Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	if err := r.db.WithContext(ctx).Model(&RoomModel{}).Where("operational = ?", true).Count(&operational).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count operational rooms: %w", err)
	}
	return total, operational, nil
}

// --- Conversion Helpers ---

func toRoomModel(rm *roomDomain.Room) (*RoomModel, error) {
	amenities, err := json.Marshal(rm.Amenities())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal amenities: %w", err)
	}
	return &RoomModel{
		ID:          rm.ID(),
		Name:        rm.Name(),
		Capacity:    rm.Capacity(),
		HourlyRate:  rm.HourlyRate(),
		Description: rm.Description(),
		ImageURL:    rm.ImageURL(),
		Operational: rm.IsOperational(),
		Amenities:   amenities,
		CreatedAt:   rm.CreatedAt(),
		UpdatedAt:   rm.UpdatedAt(),
	}, nil
}

func toDomainRoom(m *RoomModel) (*roomDomain.Room, error) {
	var amenities []string
	if len(m.Amenities) > 0 {
		if err := json.Unmarshal(m.Amenities, &amenities); err != nil {
			return nil, fmt.Errorf("failed to unmarshal amenities: %w", err)
		}
	}
	return roomDomain.ReconstructRoom(
		m.ID,
		m.Name,
		m.Capacity,
		m.HourlyRate,
		m.Description,
		m.ImageURL,
		m.Operational,
		amenities,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainRooms(models []RoomModel) ([]*roomDomain.Room, error) {
	rooms := make([]*roomDomain.Room, len(models))
	for i := range models {
		rm, err := toDomainRoom(&models[i])
		if err != nil {
			return nil, err
		}
		rooms[i] = rm
	}
	return rooms, nil
}
