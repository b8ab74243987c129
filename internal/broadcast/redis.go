// internal/broadcast/redis.go
package broadcast

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/cardtable/unoroom/internal/models"
)

// RedisPublisher publishes room views on the "room:{id}" channel so
// other processes (or a separate fan-out tier) can relay them.
type RedisPublisher struct {
	rdb    *redis.Client
	logger *logrus.Logger
}

// NewRedisPublisher wraps an already-connected client.
func NewRedisPublisher(rdb *redis.Client, logger *logrus.Logger) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, logger: logger}
}

func (p *RedisPublisher) Publish(ctx context.Context, roomID uuid.UUID, state *models.GameState) {
	data, err := json.Marshal(NewRoomView(state))
	if err != nil {
		p.logger.WithError(err).WithField("room", roomID).Warn("encode room view")
		return
	}
	if err := p.rdb.Publish(ctx, "room:"+roomID.String(), data).Err(); err != nil {
		p.logger.WithError(err).WithField("room", roomID).Warn("redis publish")
	}
}
