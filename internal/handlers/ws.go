// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/cardtable/unoroom/internal/broadcast"
	"github.com/cardtable/unoroom/internal/game"
	"github.com/cardtable/unoroom/internal/middleware"
	"github.com/cardtable/unoroom/internal/models"
)

// wsAction is the envelope clients send over the room socket. It
// mirrors the HTTP bodies so one client codec serves both surfaces.
type wsAction struct {
	Type       models.ActionType `json:"type"`
	PlayerID   uuid.UUID         `json:"playerId"`
	CardID     uuid.UUID         `json:"cardId,omitempty"`
	Color      models.Color      `json:"color,omitempty"`
	TargetID   uuid.UUID         `json:"targetId,omitempty"`
	DeclareUno bool              `json:"declareUno,omitempty"`
}

// wsError is sent back on the socket when an action fails; the
// committed views keep flowing either way.
type wsError struct {
	Error errorBody `json:"error"`
}

// RoomWSHandler upgrades the connection at /room/ws/{room_id}, streams
// every committed state view to the subscriber, and accepts action
// envelopes on the read loop. A player_id query parameter binds the
// socket to a seat so connect/disconnect can be tracked.
func (s *Server) RoomWSHandler(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/room/ws/")
	roomID, err := uuid.Parse(strings.TrimSuffix(idStr, "/"))
	if err != nil {
		http.Error(w, "invalid room id in path (/room/ws/{room_id})", http.StatusBadRequest)
		return
	}

	state, err := s.Engine.GetRoom(r.Context(), roomID)
	if err != nil {
		if game.KindOf(err) == game.KindNotFound {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		s.writeError(w, err)
		return
	}

	var playerID uuid.UUID
	if pid := r.URL.Query().Get("player_id"); pid != "" {
		playerID, err = uuid.Parse(pid)
		if err != nil {
			http.Error(w, "invalid player_id", http.StatusBadRequest)
			return
		}
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{"uno"},
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.Logger.Warnf("WebSocket accept error for room %s: %v", roomID, err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "handler exit")
	middleware.LogWebSocketConnect(s.Logger, r.RemoteAddr, r.URL.Path)

	sub := s.Hub.Subscribe(roomID, conn)
	defer s.Hub.Unsubscribe(sub)

	// Mark the seat connected; a socket without a seat is a spectator
	// of the public view only.
	if playerID != uuid.Nil {
		if _, err := s.Engine.Apply(r.Context(), roomID, models.Action{Type: models.ActionConnect, PlayerID: playerID}); err != nil {
			s.Logger.WithError(err).WithField("room", roomID).Debug("mark player connected")
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if _, err := s.Engine.Apply(ctx, roomID, models.Action{Type: models.ActionDisconnect, PlayerID: playerID}); err != nil {
				s.Logger.WithError(err).WithField("room", roomID).Debug("mark player disconnected")
			}
		}()
	}

	// Initial snapshot so a late subscriber is not blind until the next
	// mutation.
	if err := s.Hub.Send(r.Context(), sub, broadcast.NewRoomView(state)); err != nil {
		middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, r.URL.Path, err)
		return
	}

	readErr := s.readLoop(r.Context(), conn, roomID)
	middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, r.URL.Path, readErr)
	conn.Close(websocket.StatusNormalClosure, "bye")
}

// readLoop decodes action envelopes until the socket closes.
func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, roomID uuid.UUID) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		var act wsAction
		if err := json.Unmarshal(data, &act); err != nil {
			s.sendWSError(ctx, conn, game.Invalid(game.ReasonBadRequest, "malformed action envelope: %v", err))
			continue
		}
		_, err = s.Engine.Apply(ctx, roomID, models.Action{
			Type:       act.Type,
			PlayerID:   act.PlayerID,
			CardID:     act.CardID,
			Color:      act.Color,
			TargetID:   act.TargetID,
			DeclareUno: act.DeclareUno,
		})
		if err != nil {
			var engineErr *game.Error
			if errors.As(err, &engineErr) {
				s.sendWSError(ctx, conn, engineErr)
				continue
			}
			s.Logger.WithError(err).WithField("room", roomID).Error("ws action failed")
		}
		// Success needs no direct reply: the committed view arrives via
		// the hub like any other broadcast.
	}
}

func (s *Server) sendWSError(ctx context.Context, conn *websocket.Conn, engineErr *game.Error) {
	payload, err := json.Marshal(wsError{Error: errorBody{
		Kind:      engineErr.Kind,
		Reason:    engineErr.Reason,
		Message:   engineErr.Message,
		Retryable: engineErr.Kind == game.KindConflict || engineErr.Kind == game.KindStorage,
	}})
	if err != nil {
		return
	}
	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		s.Logger.WithError(err).Debug("write ws error frame")
	}
}
