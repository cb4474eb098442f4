//go:build integration

package main_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/roomly/service-booking/internal/application"
	bookingDomain "github.com/roomly/service-booking/internal/domain/booking"
	roomDomain "github.com/roomly/service-booking/internal/domain/room"
	"github.com/roomly/service-booking/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB      *gorm.DB
	Cleanup func()
}

// bookingStack holds wired-up booking service components backed by the real
// database.
type bookingStack struct {
	Bookings *repository.GormBookingRepository
	Rooms    *repository.GormRoomRepository
	Service  *application.BookingService
}

// setupContainers starts a PostgreSQL testcontainer and returns a connected
// GORM DB with the schema migrated.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_booking sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(&repository.RoomModel{}, &repository.BookingModel{}))

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{DB: db, Cleanup: cleanup}
}

// setupBookingStack wires the booking service against the real repositories.
// No Kafka producer: event publishing is best-effort and out of scope here.
func setupBookingStack(t *testing.T, db *gorm.DB) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bookings := repository.NewGormBookingRepository(db)
	rooms := repository.NewGormRoomRepository(db)
	svc := application.NewBookingService(
		bookings,
		rooms,
		bookingDomain.NewHourlyRateCalculator(),
		nil,
		"USD",
		logger,
	)

	return &bookingStack{Bookings: bookings, Rooms: rooms, Service: svc}
}

// seedRoom inserts an operational room and returns it.
func seedRoom(t *testing.T, rooms *repository.GormRoomRepository, name, rate string, capacity int) *roomDomain.Room {
	t.Helper()
	rm, err := roomDomain.NewRoom(name, capacity, decimal.RequireFromString(rate), "", "", nil)
	require.NoError(t, err)
	require.NoError(t, rooms.Save(context.Background(), rm))
	return rm
}

// mustSlot builds a half-open slot on a fixed future day.
func mustSlot(t *testing.T, startHour, endHour int) bookingDomain.TimeSlot {
	t.Helper()
	day := time.Now().UTC().AddDate(0, 0, 7).Truncate(24 * time.Hour)
	slot, err := bookingDomain.NewTimeSlot(
		day.Add(time.Duration(startHour)*time.Hour),
		day.Add(time.Duration(endHour)*time.Hour),
	)
	require.NoError(t, err)
	return slot
}
