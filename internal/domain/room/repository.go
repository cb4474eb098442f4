package room

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for the room catalog.
type Repository interface {
	// FindByID retrieves a room by id.
	FindByID(ctx context.Context, id uuid.UUID) (*Room, error)

	// ListAll retrieves rooms ordered by name. When operationalOnly is set,
	// non-operational rooms are filtered out.
	ListAll(ctx context.Context, operationalOnly bool) ([]*Room, error)

	// ListByMinCapacity retrieves operational rooms with at least the given
	// capacity, smallest first.
	ListByMinCapacity(ctx context.Context, minCapacity int) ([]*Room, error)

	// Save persists a new room.
	Save(ctx context.Context, r *Room) error

	// Update persists changes to an existing room.
	Update(ctx context.Context, r *Room) error

	// Delete removes a room from the catalog.
	Delete(ctx context.Context, id uuid.UUID) error

	// Counts returns the total and operational room counts.
	Counts(ctx context.Context) (total, operational int64, err error)
}
