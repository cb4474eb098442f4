//go:build integration

package main_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomly/service-booking/internal/domain"
	bookingDomain "github.com/roomly/service-booking/internal/domain/booking"
)

// TestCreateIfAvailable_RejectsOverlap verifies that the transactional insert
// re-checks availability against committed rows: an overlapping booking is
// rejected with SLOT_UNAVAILABLE while an abutting one goes through.
func TestCreateIfAvailable_RejectsOverlap(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()
	stack := setupBookingStack(t, infra.DB)
	ctx := context.Background()

	rm := seedRoom(t, stack.Rooms, "Boardroom", "25", 8)
	rate := decimal.RequireFromString("25")

	first, err := bookingDomain.NewBooking(rm.ID(), "alice", mustSlot(t, 10, 12), rate.Mul(decimal.NewFromInt(2)), "USD")
	require.NoError(t, err)
	require.NoError(t, stack.Bookings.CreateIfAvailable(ctx, first))

	overlapping, err := bookingDomain.NewBooking(rm.ID(), "bob", mustSlot(t, 11, 13), rate.Mul(decimal.NewFromInt(2)), "USD")
	require.NoError(t, err)
	err = stack.Bookings.CreateIfAvailable(ctx, overlapping)
	require.Error(t, err)
	assert.Equal(t, domain.CodeSlotUnavailable, domain.CodeOf(err))

	abutting, err := bookingDomain.NewBooking(rm.ID(), "bob", mustSlot(t, 12, 13), rate, "USD")
	require.NoError(t, err)
	require.NoError(t, stack.Bookings.CreateIfAvailable(ctx, abutting))

	active, err := stack.Bookings.FindActiveByRoom(ctx, rm.ID(), nil)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

// TestCreateIfAvailable_ConcurrentArbitration races conflicting inserts
// straight at the repository, bypassing the in-process per-room lock, so the
// database transaction is the only arbiter. Exactly one must win.
func TestCreateIfAvailable_ConcurrentArbitration(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()
	stack := setupBookingStack(t, infra.DB)
	ctx := context.Background()

	rm := seedRoom(t, stack.Rooms, "Boardroom", "25", 8)
	slot := mustSlot(t, 10, 12)
	price := decimal.RequireFromString("50")

	const attempts = 16
	errs := make([]error, attempts)

	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer done.Done()
			start.Wait()
			bk, err := bookingDomain.NewBooking(rm.ID(), "user", slot, price, "USD")
			if err != nil {
				errs[i] = err
				return
			}
			errs[i] = stack.Bookings.CreateIfAvailable(ctx, bk)
		}(i)
	}
	start.Done()
	done.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.Equal(t, domain.CodeSlotUnavailable, domain.CodeOf(err))
	}
	assert.Equal(t, 1, successes)

	active, err := stack.Bookings.FindActiveByRoom(ctx, rm.ID(), nil)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

// TestEndToEndBookingFlow walks the reservation lifecycle through the
// application service against the real database.
func TestEndToEndBookingFlow(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()
	stack := setupBookingStack(t, infra.DB)
	ctx := context.Background()

	rm := seedRoom(t, stack.Rooms, "Boardroom", "50", 8)
	slot := mustSlot(t, 10, 12)

	created, err := stack.Service.CreateBooking(ctx, rm.ID(), "alice", slot.Start(), slot.End())
	require.NoError(t, err)
	assert.Equal(t, "confirmed", created.Status)
	assert.Equal(t, "100.00", created.Price)

	_, err = stack.Service.CreateBooking(ctx, rm.ID(), "bob", slot.Start(), slot.End())
	require.Error(t, err)
	assert.Equal(t, domain.CodeSlotUnavailable, domain.CodeOf(err))

	cancelled, err := stack.Service.CancelBooking(ctx, created.ID, "alice", false, "meeting moved")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Equal(t, created.Version+1, cancelled.Version)

	// Stale writes lose the optimistic lock race.
	stale, err := stack.Bookings.FindByID(ctx, created.ID)
	require.NoError(t, err)
	stale.IncrementVersion()
	stale.IncrementVersion()
	err = stack.Bookings.Update(ctx, stale)
	require.Error(t, err)
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))

	retry, err := stack.Service.CreateBooking(ctx, rm.ID(), "bob", slot.Start(), slot.End())
	require.NoError(t, err)
	assert.Equal(t, "confirmed", retry.Status)
}
