package application_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/roomly/service-booking/internal/domain"
	bookingDomain "github.com/roomly/service-booking/internal/domain/booking"
	roomDomain "github.com/roomly/service-booking/internal/domain/room"
)

// memBookingRepo is an in-memory booking repository. CreateIfAvailable
// performs its overlap re-check and insert under one mutex, mirroring the
// transactional guarantee of the real repository.
type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (r *memBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return bk, nil
}

func (r *memBookingRepo) FindByRequesterID(_ context.Context, requesterID string, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.RequesterID() == requesterID {
			all = append(all, bk)
		}
	}
	sortByStartDesc(all)
	return paginate(all, page, limit), int64(len(all)), nil
}

func (r *memBookingRepo) FindActiveByRoom(_ context.Context, roomID uuid.UUID, excludeID *uuid.UUID) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeByRoomLocked(roomID, excludeID), nil
}

func (r *memBookingRepo) activeByRoomLocked(roomID uuid.UUID, excludeID *uuid.UUID) []*bookingDomain.Booking {
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.RoomID() != roomID || !bk.Status().IsActive() {
			continue
		}
		if excludeID != nil && bk.ID() == *excludeID {
			continue
		}
		out = append(out, bk)
	}
	return out
}

func (r *memBookingRepo) CreateIfAvailable(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.activeByRoomLocked(bk.RoomID(), nil) {
		if existing.Slot().Overlaps(bk.Slot()) {
			return domain.NewSlotUnavailableError(bk.RoomID().String())
		}
	}
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *memBookingRepo) Update(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[bk.ID()]; !ok {
		return domain.NewNotFoundError("booking", bk.ID().String())
	}
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *memBookingRepo) ListAll(_ context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*bookingDomain.Booking, 0, len(r.bookings))
	for _, bk := range r.bookings {
		all = append(all, bk)
	}
	sortByStartDesc(all)
	return paginate(all, page, limit), int64(len(all)), nil
}

func (r *memBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, bk := range r.bookings {
		counts[bk.Status().String()]++
	}
	return counts, nil
}

func (r *memBookingRepo) HasActiveAfter(_ context.Context, roomID uuid.UUID, after time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bk := range r.bookings {
		if bk.RoomID() == roomID && bk.Status().IsActive() && bk.Slot().End().After(after) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBookingRepo) SumRevenue(_ context.Context, from, to *time.Time) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, bk := range r.bookings {
		if bk.Status() == bookingDomain.StatusCancelled || bk.Status() == bookingDomain.StatusPending {
			continue
		}
		start := bk.Slot().Start()
		if from != nil && start.Before(*from) {
			continue
		}
		if to != nil && !start.Before(*to) {
			continue
		}
		sum = sum.Add(bk.Price())
	}
	return sum, nil
}

func (r *memBookingRepo) FindUpcoming(_ context.Context, now time.Time, limit int) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.Status() == bookingDomain.StatusConfirmed && bk.Slot().Start().After(now) {
			out = append(out, bk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot().Start().Before(out[j].Slot().Start()) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memBookingRepo) FindRecent(_ context.Context, limit int) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*bookingDomain.Booking, 0, len(r.bookings))
	for _, bk := range r.bookings {
		all = append(all, bk)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt().After(all[j].CreatedAt()) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *memBookingRepo) CountByRoom(_ context.Context) (map[uuid.UUID]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[uuid.UUID]int64)
	for _, bk := range r.bookings {
		counts[bk.RoomID()]++
	}
	return counts, nil
}

func sortByStartDesc(bookings []*bookingDomain.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].Slot().Start().After(bookings[j].Slot().Start())
	})
}

func paginate(all []*bookingDomain.Booking, page, limit int) []*bookingDomain.Booking {
	start := (page - 1) * limit
	if start >= len(all) {
		return nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

func bookingDomainCalculator() bookingDomain.PriceCalculator {
	return bookingDomain.NewHourlyRateCalculator()
}

// memRoomRepo is an in-memory room catalog.
type memRoomRepo struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*roomDomain.Room
}

func newMemRoomRepo() *memRoomRepo {
	return &memRoomRepo{rooms: make(map[uuid.UUID]*roomDomain.Room)}
}

func (r *memRoomRepo) add(rm *roomDomain.Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[rm.ID()] = rm
}

func (r *memRoomRepo) FindByID(_ context.Context, id uuid.UUID) (*roomDomain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[id]
	if !ok {
		return nil, domain.NewNotFoundError("room", id.String())
	}
	return rm, nil
}

func (r *memRoomRepo) ListAll(_ context.Context, operationalOnly bool) ([]*roomDomain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*roomDomain.Room
	for _, rm := range r.rooms {
		if operationalOnly && !rm.IsOperational() {
			continue
		}
		out = append(out, rm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (r *memRoomRepo) ListByMinCapacity(_ context.Context, minCapacity int) ([]*roomDomain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*roomDomain.Room
	for _, rm := range r.rooms {
		if rm.IsOperational() && rm.Capacity() >= minCapacity {
			out = append(out, rm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Capacity() < out[j].Capacity() })
	return out, nil
}

func (r *memRoomRepo) Save(_ context.Context, rm *roomDomain.Room) error {
	r.add(rm)
	return nil
}

func (r *memRoomRepo) Update(_ context.Context, rm *roomDomain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[rm.ID()]; !ok {
		return domain.NewNotFoundError("room", rm.ID().String())
	}
	r.rooms[rm.ID()] = rm
	return nil
}

func (r *memRoomRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[id]; !ok {
		return domain.NewNotFoundError("room", id.String())
	}
	delete(r.rooms, id)
	return nil
}

func (r *memRoomRepo) Counts(_ context.Context) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total, operational int64
	for _, rm := range r.rooms {
		total++
		if rm.IsOperational() {
			operational++
		}
	}
	return total, operational, nil
}
