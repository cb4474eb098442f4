package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/roomly/service-booking/internal/domain"
	bookingDomain "github.com/roomly/service-booking/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RoomID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	RequesterID string          `gorm:"size:100;index;not null"`
	StartTime   time.Time       `gorm:"not null;index"`
	EndTime     time.Time       `gorm:"not null"`
	Status      string          `gorm:"not null;size:20;index"`
	Price       decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Currency    string          `gorm:"not null;size:3;default:'USD'"`
	CancelledAt *time.Time      `gorm:""`
	CancelNote  string          `gorm:"size:500"`
	Version     int64           `gorm:"not null;default:1"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of the booking
// repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByRequesterID retrieves bookings for a requester with pagination,
// most recent start time first.
func (r *GormBookingRepository) FindByRequesterID(ctx context.Context, requesterID string, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("requester_id = ?", requesterID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count requester bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("start_time DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find requester bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// FindActiveByRoom retrieves all non-cancelled bookings for a room.
func (r *GormBookingRepository) FindActiveByRoom(ctx context.Context, roomID uuid.UUID, excludeID *uuid.UUID) ([]*bookingDomain.Booking, error) {
	query := r.db.WithContext(ctx).
		Where("room_id = ? AND status <> ?", roomID, bookingDomain.StatusCancelled.String())
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var models []BookingModel
	if err := query.Order("start_time ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find active bookings: %w", err)
	}
	return toDomainBookings(models)
}

// CreateIfAvailable inserts bk after re-validating availability within the
// same transaction. An advisory lock on the room id serializes creators
// across service instances, so the overlap re-check always sees the winner's
// committed row. A row-locking scan cannot serve here: with no conflicting
// rows yet there is nothing to lock, and two transactions would both count
// zero and both insert.
func (r *GormBookingRepository) CreateIfAvailable(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRoom(tx, model.RoomID).Error; err != nil {
			return fmt.Errorf("failed to lock room: %w", err)
		}

		var conflicts int64
		if err := conflictScan(tx, model).Count(&conflicts).Error; err != nil {
			return fmt.Errorf("failed to re-check availability: %w", err)
		}
		if conflicts > 0 {
			return domain.NewSlotUnavailableError(model.RoomID.String())
		}

		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to insert booking: %w", err)
		}
		return nil
	})
	return err
}

// lockRoom takes a transaction-scoped advisory lock keyed on the room id.
// The lock releases automatically at commit or rollback.
func lockRoom(tx *gorm.DB, roomID uuid.UUID) *gorm.DB {
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", roomID.String())
}

// conflictScan selects the non-cancelled bookings on m's room that overlap
// m's half-open slot.
func conflictScan(tx *gorm.DB, m *BookingModel) *gorm.DB {
	return tx.Model(&BookingModel{}).
		Where("room_id = ? AND status <> ? AND start_time < ? AND end_time > ?",
			m.RoomID,
			bookingDomain.StatusCancelled.String(),
			m.EndTime,
			m.StartTime,
		)
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// Only update if the version matches (current version - 1, since
	// IncrementVersion was called before Update).
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":       model.Status,
			"cancelled_at": model.CancelledAt,
			"cancel_note":  model.CancelNote,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// ListAll retrieves all bookings with pagination, most recent start time
// first (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("start_time DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status.
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// HasActiveAfter reports whether a room has any non-cancelled booking
// ending after the given instant.
func (r *GormBookingRepository) HasActiveAfter(ctx context.Context, roomID uuid.UUID, after time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("room_id = ? AND status <> ? AND end_time > ?",
			roomID, bookingDomain.StatusCancelled.String(), after).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count active bookings: %w", err)
	}
	return count > 0, nil
}

// SumRevenue totals confirmed and completed booking prices with start time
// in [from, to); nil bounds are open.
func (r *GormBookingRepository) SumRevenue(ctx context.Context, from, to *time.Time) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("status IN ?", []string{
			bookingDomain.StatusConfirmed.String(),
			bookingDomain.StatusCompleted.String(),
		})
	if from != nil {
		query = query.Where("start_time >= ?", *from)
	}
	if to != nil {
		query = query.Where("start_time < ?", *to)
	}

	var sum decimal.NullDecimal
	if err := query.Select("SUM(price)").Scan(&sum).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum revenue: %w", err)
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// FindUpcoming retrieves confirmed bookings starting after now, soonest first.
func (r *GormBookingRepository) FindUpcoming(ctx context.Context, now time.Time, limit int) ([]*bookingDomain.Booking, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND start_time > ?", bookingDomain.StatusConfirmed.String(), now).
		Order("start_time ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []BookingModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find upcoming bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FindRecent retrieves the most recently created bookings.
func (r *GormBookingRepository) FindRecent(ctx context.Context, limit int) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find recent bookings: %w", err)
	}
	return toDomainBookings(models)
}

// CountByRoom returns booking counts per room id.
func (r *GormBookingRepository) CountByRoom(ctx context.Context) (map[uuid.UUID]int64, error) {
	type roomCount struct {
		RoomID uuid.UUID
		Count  int64
	}
	var results []roomCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("room_id, count(*) as count").
		Group("room_id").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by room: %w", err)
	}

	counts := make(map[uuid.UUID]int64)
	for _, rc := range results {
		counts[rc.RoomID] = rc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:          bk.ID(),
		RoomID:      bk.RoomID(),
		RequesterID: bk.RequesterID(),
		StartTime:   bk.Slot().Start(),
		EndTime:     bk.Slot().End(),
		Status:      bk.Status().String(),
		Price:       bk.Price(),
		Currency:    bk.Currency(),
		CancelledAt: bk.CancelledAt(),
		CancelNote:  bk.CancelNote(),
		Version:     bk.Version(),
		CreatedAt:   bk.CreatedAt(),
		UpdatedAt:   bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	slot, err := bookingDomain.NewTimeSlot(m.StartTime, m.EndTime)
	if err != nil {
		return nil, fmt.Errorf("stored booking %s has invalid time range: %w", m.ID, err)
	}

	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.RoomID,
		m.RequesterID,
		slot,
		status,
		m.Price,
		m.Currency,
		m.CancelledAt,
		m.CancelNote,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
