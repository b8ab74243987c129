// internal/history/recorder.go
package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/cardtable/unoroom/internal/models"
)

// DefaultQueueName is the Redis list the action log is pushed onto.
var DefaultQueueName = "uno_actions"

// ActionRecord holds the minimal info an external historian needs to
// reconstruct a room's action stream.
type ActionRecord struct {
	RoomID     uuid.UUID         `json:"room_id"`
	Version    int64             `json:"version"`
	ActorID    uuid.UUID         `json:"actor_id"`
	ActionType models.ActionType `json:"action_type"`
	Timestamp  int64             `json:"timestamp"`
}

// Recorder pushes committed action records onto a Redis queue. A nil
// Recorder is valid and records nothing, so history stays optional.
type Recorder struct {
	rdb   *redis.Client
	queue string
}

// NewRecorder builds a recorder on the given client. An empty queue
// name selects DefaultQueueName.
func NewRecorder(rdb *redis.Client, queue string) *Recorder {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &Recorder{rdb: rdb, queue: queue}
}

// Record serializes the record and pushes it onto the queue.
func (r *Recorder) Record(ctx context.Context, rec ActionRecord) error {
	if r == nil || r.rdb == nil {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	if err := r.rdb.RPush(ctx, r.queue, data).Err(); err != nil {
		return fmt.Errorf("rpush to %q: %w", r.queue, err)
	}
	return nil
}
