// internal/store/postgres.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cardtable/unoroom/internal/models"
)

// PostgresStore keeps one row per room in the rooms table, with the
// full state as jsonb and the version token in its own column so the
// conditional commit is a single guarded UPDATE.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an already-connected pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the rooms table if it does not exist.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	q := `
		CREATE TABLE IF NOT EXISTS rooms (
			id UUID PRIMARY KEY,
			state JSONB NOT NULL,
			version BIGINT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := p.pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("ensure rooms schema: %w", err)
	}
	return nil
}

func (p *PostgresStore) Load(ctx context.Context, roomID uuid.UUID) (*models.GameState, int64, error) {
	var data []byte
	var version int64
	q := `SELECT state, version FROM rooms WHERE id = $1`
	err := p.pool.QueryRow(ctx, q, roomID).Scan(&data, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("select room %s: %w", roomID, err)
	}
	var state models.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, 0, fmt.Errorf("decode room %s: %w", roomID, err)
	}
	return &state, version, nil
}

func (p *PostgresStore) Create(ctx context.Context, state *models.GameState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", state.RoomID, err)
	}
	q := `
		INSERT INTO rooms (id, state, version)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`
	tag, err := p.pool.Exec(ctx, q, state.RoomID, data, state.Version)
	if err != nil {
		return fmt.Errorf("insert room %s: %w", state.RoomID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExists
	}
	return nil
}

func (p *PostgresStore) CommitIfVersion(ctx context.Context, roomID uuid.UUID, state *models.GameState, expectedVersion int64) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", roomID, err)
	}
	q := `
		UPDATE rooms
		SET state = $2, version = $3, updated_at = NOW()
		WHERE id = $1 AND version = $4
	`
	tag, err := p.pool.Exec(ctx, q, roomID, data, state.Version, expectedVersion)
	if err != nil {
		return fmt.Errorf("update room %s: %w", roomID, err)
	}
	if tag.RowsAffected() == 0 {
		// Disambiguate a missing row from a lost race.
		var exists bool
		if err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rooms WHERE id = $1)`, roomID).Scan(&exists); err != nil {
			return fmt.Errorf("check room %s: %w", roomID, err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, roomID uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, roomID)
	if err != nil {
		return fmt.Errorf("delete room %s: %w", roomID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
