// internal/handlers/server.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/cardtable/unoroom/internal/broadcast"
	"github.com/cardtable/unoroom/internal/engine"
	"github.com/cardtable/unoroom/internal/game"
)

// Server owns the HTTP and websocket surface over the engine.
type Server struct {
	Engine *engine.Controller
	Hub    *broadcast.Hub
	Logger *logrus.Logger
}

// NewServer builds a Server.
func NewServer(eng *engine.Controller, hub *broadcast.Hub, logger *logrus.Logger) *Server {
	return &Server{Engine: eng, Hub: hub, Logger: logger}
}

// Routes registers every endpoint on the mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/room/create", s.CreateRoomHandler)
	mux.HandleFunc("/room/join", s.JoinRoomHandler)
	mux.HandleFunc("/room/start", s.StartHandler)
	mux.HandleFunc("/room/play", s.PlayHandler)
	mux.HandleFunc("/room/draw", s.DrawHandler)
	mux.HandleFunc("/room/pass", s.PassHandler)
	mux.HandleFunc("/room/color", s.SelectColorHandler)
	mux.HandleFunc("/room/uno", s.SayUnoHandler)
	mux.HandleFunc("/room/callout", s.CallUnoHandler)
	mux.HandleFunc("/room/reset", s.ResetRoomHandler)
	mux.HandleFunc("/room/delete", s.DeleteRoomHandler)
	mux.HandleFunc("/room/state", s.StateHandler)
	mux.HandleFunc("/room/ws/", s.RoomWSHandler)
}

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Kind      game.Kind   `json:"kind"`
	Reason    game.Reason `json:"reason"`
	Message   string      `json:"message"`
	Retryable bool        `json:"retryable"`
}

// writeError maps the engine's error taxonomy to transport statuses.
// Callers branch on kind and reason, never on message text.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var engineErr *game.Error
	if !errors.As(err, &engineErr) {
		s.Logger.WithError(err).Error("unclassified handler error")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	retryable := false
	switch engineErr.Kind {
	case game.KindValidation:
		status = http.StatusBadRequest
	case game.KindIllegalAction:
		status = http.StatusConflict
	case game.KindNotFound:
		status = http.StatusNotFound
	case game.KindConflict:
		status = http.StatusConflict
		retryable = true
	case game.KindStorage:
		status = http.StatusServiceUnavailable
		retryable = true
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{
		Kind:      engineErr.Kind,
		Reason:    engineErr.Reason,
		Message:   engineErr.Message,
		Retryable: retryable,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.WithError(err).Error("encode response")
	}
}

// decode parses the request body into dst, rejecting non-POSTs.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, game.Invalid(game.ReasonBadRequest, "malformed request body: %v", err))
		return false
	}
	return true
}
