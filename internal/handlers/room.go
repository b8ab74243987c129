// internal/handlers/room.go
package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/cardtable/unoroom/internal/game"
	"github.com/cardtable/unoroom/internal/models"
)

type createRoomRequest struct {
	PlayerID uuid.UUID `json:"playerId"`
	Name     string    `json:"name"`
	IsBot    bool      `json:"isBot"`
}

type joinRoomRequest struct {
	RoomID   uuid.UUID `json:"roomId"`
	PlayerID uuid.UUID `json:"playerId"`
	Name     string    `json:"name"`
	IsBot    bool      `json:"isBot"`
}

type roomActionRequest struct {
	RoomID   uuid.UUID `json:"roomId"`
	PlayerID uuid.UUID `json:"playerId"`
}

type playRequest struct {
	RoomID     uuid.UUID `json:"roomId"`
	PlayerID   uuid.UUID `json:"playerId"`
	CardID     uuid.UUID `json:"cardId"`
	DeclareUno bool      `json:"declareUno"`
}

type colorRequest struct {
	RoomID   uuid.UUID    `json:"roomId"`
	PlayerID uuid.UUID    `json:"playerId"`
	Color    models.Color `json:"color"`
}

type callUnoRequest struct {
	RoomID   uuid.UUID `json:"roomId"`
	CallerID uuid.UUID `json:"callerId"`
	TargetID uuid.UUID `json:"targetId"`
}

type roomRequest struct {
	RoomID uuid.UUID `json:"roomId"`
}

// CreateRoomHandler allocates a fresh lobby with the caller seated.
// The player id may be supplied by the caller's identity layer; when
// absent a fresh one is minted.
func (s *Server) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		s.writeError(w, game.Invalid(game.ReasonBadRequest, "player name is required"))
		return
	}
	if req.PlayerID == uuid.Nil {
		req.PlayerID = uuid.New()
	}
	state, err := s.Engine.CreateRoom(r.Context(), &models.Player{
		ID:    req.PlayerID,
		Name:  req.Name,
		IsBot: req.IsBot,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, state)
}

func (s *Server) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.RoomID == uuid.Nil || req.Name == "" {
		s.writeError(w, game.Invalid(game.ReasonBadRequest, "roomId and name are required"))
		return
	}
	if req.PlayerID == uuid.Nil {
		req.PlayerID = uuid.New()
	}
	state, err := s.Engine.JoinRoom(r.Context(), req.RoomID, &models.Player{
		ID:    req.PlayerID,
		Name:  req.Name,
		IsBot: req.IsBot,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, state)
}

func (s *Server) StartHandler(w http.ResponseWriter, r *http.Request) {
	s.simpleAction(w, r, models.ActionStart)
}

func (s *Server) DrawHandler(w http.ResponseWriter, r *http.Request) {
	s.simpleAction(w, r, models.ActionDraw)
}

func (s *Server) PassHandler(w http.ResponseWriter, r *http.Request) {
	s.simpleAction(w, r, models.ActionPass)
}

func (s *Server) SayUnoHandler(w http.ResponseWriter, r *http.Request) {
	s.simpleAction(w, r, models.ActionSayUno)
}

// simpleAction serves the actions whose envelope is just (room, player).
func (s *Server) simpleAction(w http.ResponseWriter, r *http.Request, actionType models.ActionType) {
	var req roomActionRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.RoomID == uuid.Nil || req.PlayerID == uuid.Nil {
		s.writeError(w, game.Invalid(game.ReasonBadRequest, "roomId and playerId are required"))
		return
	}
	state, err := s.Engine.Apply(r.Context(), req.RoomID, models.Action{
		Type:     actionType,
		PlayerID: req.PlayerID,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, state)
}

func (s *Server) PlayHandler(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.RoomID == uuid.Nil || req.PlayerID == uuid.Nil || req.CardID == uuid.Nil {
		s.writeError(w, game.Invalid(game.ReasonBadRequest, "roomId, playerId and cardId are required"))
		return
	}
	state, err := s.Engine.Apply(r.Context(), req.RoomID, models.Action{
		Type:       models.ActionPlay,
		PlayerID:   req.PlayerID,
		CardID:     req.CardID,
		DeclareUno: req.DeclareUno,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, state)
}

func (s *Server) SelectColorHandler(w http.ResponseWriter, r *http.Request) {
	var req colorRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.RoomID == uuid.Nil || req.PlayerID == uuid.Nil {
		s.writeError(w, game.Invalid(game.ReasonBadRequest, "roomId and playerId are required"))
		return
	}
	state, err := s.Engine.Apply(r.Context(), req.RoomID, models.Action{
		Type:     models.ActionSelectColor,
		PlayerID: req.PlayerID,
		Color:    req.Color,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, state)
}

func (s *Server) CallUnoHandler(w http.ResponseWriter, r *http.Request) {
	var req callUnoRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.RoomID == uuid.Nil || req.CallerID == uuid.Nil || req.TargetID == uuid.Nil {
		s.writeError(w, game.Invalid(game.ReasonBadRequest, "roomId, callerId and targetId are required"))
		return
	}
	state, err := s.Engine.Apply(r.Context(), req.RoomID, models.Action{
		Type:     models.ActionCallUno,
		PlayerID: req.CallerID,
		TargetID: req.TargetID,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, state)
}

func (s *Server) ResetRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.RoomID == uuid.Nil {
		s.writeError(w, game.Invalid(game.ReasonBadRequest, "roomId is required"))
		return
	}
	state, err := s.Engine.ResetRoom(r.Context(), req.RoomID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, state)
}

func (s *Server) DeleteRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.RoomID == uuid.Nil {
		s.writeError(w, game.Invalid(game.ReasonBadRequest, "roomId is required"))
		return
	}
	if err := s.Engine.DeleteRoom(r.Context(), req.RoomID); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]bool{"deleted": true})
}

// StateHandler returns the room's current state without mutating it.
func (s *Server) StateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	roomID, err := uuid.Parse(r.URL.Query().Get("roomId"))
	if err != nil {
		s.writeError(w, game.Invalid(game.ReasonBadRequest, "roomId query parameter is required"))
		return
	}
	state, err := s.Engine.GetRoom(r.Context(), roomID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, state)
}
