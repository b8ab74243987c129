// internal/broadcast/hub.go
package broadcast

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cardtable/unoroom/internal/models"
)

const writeTimeout = 5 * time.Second

// Hub fans committed room views out to websocket subscribers. A
// subscriber that fails a write is dropped and its connection closed;
// one slow viewer never blocks a mutation.
type Hub struct {
	logger *logrus.Logger

	mu    sync.Mutex
	rooms map[uuid.UUID]map[*Subscriber]struct{}
}

// Subscriber is one websocket viewer attached to a room.
type Subscriber struct {
	hub    *Hub
	roomID uuid.UUID
	conn   *websocket.Conn
}

// NewHub builds an empty hub.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		logger: logger,
		rooms:  make(map[uuid.UUID]map[*Subscriber]struct{}),
	}
}

// Subscribe attaches a connection to a room's fan-out set.
func (h *Hub) Subscribe(roomID uuid.UUID, conn *websocket.Conn) *Subscriber {
	sub := &Subscriber{hub: h, roomID: roomID, conn: conn}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Subscriber]struct{})
	}
	h.rooms[roomID][sub] = struct{}{}
	return sub
}

// Unsubscribe detaches the subscriber. Safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.rooms[sub.roomID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.rooms, sub.roomID)
		}
	}
}

// Send writes one view to a single subscriber, outside the fan-out
// path. Used for the initial snapshot on connect.
func (h *Hub) Send(ctx context.Context, sub *Subscriber, view RoomView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return sub.conn.Write(wctx, websocket.MessageText, data)
}

// Publish implements Publisher: every subscriber of the room receives
// the viewer-facing projection of the committed state.
func (h *Hub) Publish(ctx context.Context, roomID uuid.UUID, state *models.GameState) {
	data, err := json.Marshal(NewRoomView(state))
	if err != nil {
		h.logger.WithError(err).WithField("room", roomID).Warn("encode room view")
		return
	}

	h.mu.Lock()
	subs := make([]*Subscriber, 0, len(h.rooms[roomID]))
	for sub := range h.rooms[roomID] {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := sub.conn.Write(wctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			h.logger.WithError(err).WithField("room", roomID).Debug("dropping slow subscriber")
			h.Unsubscribe(sub)
			sub.conn.Close(websocket.StatusPolicyViolation, "write failed")
		}
	}
}
