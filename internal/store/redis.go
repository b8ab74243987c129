// internal/store/redis.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/cardtable/unoroom/internal/models"
)

// RedisStore keeps one JSON record per room under "room:{id}". The
// conditional commit uses WATCH so two writers racing on the same base
// version can never both succeed; the loser surfaces
// ErrVersionConflict and retries from a fresh load.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps an already-connected client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func roomKey(roomID uuid.UUID) string {
	return "room:" + roomID.String()
}

func (r *RedisStore) Load(ctx context.Context, roomID uuid.UUID) (*models.GameState, int64, error) {
	data, err := r.rdb.Get(ctx, roomKey(roomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("redis get room %s: %w", roomID, err)
	}
	var state models.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, 0, fmt.Errorf("decode room %s: %w", roomID, err)
	}
	return &state, state.Version, nil
}

func (r *RedisStore) Create(ctx context.Context, state *models.GameState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", state.RoomID, err)
	}
	ok, err := r.rdb.SetNX(ctx, roomKey(state.RoomID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("redis setnx room %s: %w", state.RoomID, err)
	}
	if !ok {
		return ErrExists
	}
	return nil
}

func (r *RedisStore) CommitIfVersion(ctx context.Context, roomID uuid.UUID, state *models.GameState, expectedVersion int64) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", roomID, err)
	}
	key := roomKey(roomID)
	txn := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var stored models.GameState
		if err := json.Unmarshal(cur, &stored); err != nil {
			return fmt.Errorf("decode room %s: %w", roomID, err)
		}
		if stored.Version != expectedVersion {
			return ErrVersionConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}
	err = r.rdb.Watch(ctx, txn, key)
	if errors.Is(err, redis.TxFailedErr) {
		// The key changed between WATCH and EXEC.
		return ErrVersionConflict
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrVersionConflict) {
		return err
	}
	if err != nil {
		return fmt.Errorf("redis commit room %s: %w", roomID, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, roomID uuid.UUID) error {
	n, err := r.rdb.Del(ctx, roomKey(roomID)).Result()
	if err != nil {
		return fmt.Errorf("redis del room %s: %w", roomID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
