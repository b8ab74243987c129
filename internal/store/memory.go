// internal/store/memory.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cardtable/unoroom/internal/models"
)

// MemoryStore keeps room records in process memory, JSON-encoded so no
// slice or pointer ever aliases between callers. It is the default
// backend for single-process deployments and for tests.
type MemoryStore struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]memoryRecord
}

type memoryRecord struct {
	data    []byte
	version int64
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[uuid.UUID]memoryRecord)}
}

func (m *MemoryStore) Load(ctx context.Context, roomID uuid.UUID) (*models.GameState, int64, error) {
	m.mu.Lock()
	rec, ok := m.rooms[roomID]
	m.mu.Unlock()
	if !ok {
		return nil, 0, ErrNotFound
	}
	var state models.GameState
	if err := json.Unmarshal(rec.data, &state); err != nil {
		return nil, 0, fmt.Errorf("decode room %s: %w", roomID, err)
	}
	return &state, rec.version, nil
}

func (m *MemoryStore) Create(ctx context.Context, state *models.GameState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", state.RoomID, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[state.RoomID]; ok {
		return ErrExists
	}
	m.rooms[state.RoomID] = memoryRecord{data: data, version: state.Version}
	return nil
}

func (m *MemoryStore) CommitIfVersion(ctx context.Context, roomID uuid.UUID, state *models.GameState, expectedVersion int64) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", roomID, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.rooms[roomID]
	if !ok {
		return ErrNotFound
	}
	if rec.version != expectedVersion {
		return ErrVersionConflict
	}
	m.rooms[roomID] = memoryRecord{data: data, version: state.Version}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, roomID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[roomID]; !ok {
		return ErrNotFound
	}
	delete(m.rooms, roomID)
	return nil
}
