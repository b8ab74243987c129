// internal/store/store.go
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/cardtable/unoroom/internal/models"
)

var (
	// ErrNotFound is returned when no record exists for the room id.
	ErrNotFound = errors.New("store: room not found")

	// ErrVersionConflict is returned by CommitIfVersion when the stored
	// version no longer matches the expected one.
	ErrVersionConflict = errors.New("store: version conflict")

	// ErrExists is returned by Create when the room id is taken.
	ErrExists = errors.New("store: room already exists")
)

// Store persists one record per room: the full GameState plus its
// version token. Load must give read-after-write visibility for any
// caller, and CommitIfVersion must be atomic with respect to concurrent
// commits against the same room.
type Store interface {
	// Load returns a private copy of the room's state and the version it
	// was stored under. Mutating the returned state does not affect the
	// stored record.
	Load(ctx context.Context, roomID uuid.UUID) (*models.GameState, int64, error)

	// Create stores a fresh room record under state.RoomID.
	Create(ctx context.Context, state *models.GameState) error

	// CommitIfVersion writes state only if the stored version still
	// equals expectedVersion, otherwise ErrVersionConflict.
	CommitIfVersion(ctx context.Context, roomID uuid.UUID, state *models.GameState, expectedVersion int64) error

	// Delete removes the room's record entirely.
	Delete(ctx context.Context, roomID uuid.UUID) error
}
