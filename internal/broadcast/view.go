// internal/broadcast/view.go
package broadcast

import (
	"github.com/google/uuid"

	"github.com/cardtable/unoroom/internal/models"
)

// PlayerView is one seat as shown to viewers: hand contents stay
// private, only the count is public.
type PlayerView struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	IsBot         bool      `json:"isBot"`
	HandSize      int       `json:"handSize"`
	HasCalledUno  bool      `json:"hasCalledUno"`
	Connected     bool      `json:"connected"`
	IsCurrentTurn bool      `json:"isCurrentTurn"`
}

// RoomView is the viewer-facing snapshot of a room, published on every
// committed mutation.
type RoomView struct {
	RoomID             uuid.UUID          `json:"roomId"`
	Status             models.Status      `json:"status"`
	Players            []PlayerView       `json:"players"`
	CurrentPlayerID    uuid.UUID          `json:"currentPlayerId,omitempty"`
	Direction          int                `json:"direction"`
	DrawPileSize       int                `json:"drawPileSize"`
	DiscardTop         *models.Card       `json:"discardTop,omitempty"`
	CurrentColor       models.Color       `json:"currentColor"`
	CurrentValue       models.Value       `json:"currentValue"`
	PendingColorChoice bool               `json:"pendingColorChoice"`
	PendingUnoCatch    *models.UnoCatch   `json:"pendingUnoCatch,omitempty"`
	Winner             uuid.UUID          `json:"winner,omitempty"`
	Log                []models.LogEntry  `json:"log"`
	Version            int64              `json:"version"`
}

// NewRoomView projects a full state down to what every viewer may see.
func NewRoomView(s *models.GameState) RoomView {
	view := RoomView{
		RoomID:             s.RoomID,
		Status:             s.Status,
		Direction:          s.Direction,
		DrawPileSize:       len(s.DrawPile),
		DiscardTop:         s.TopDiscard(),
		CurrentColor:       s.CurrentColor,
		CurrentValue:       s.CurrentValue,
		PendingColorChoice: s.PendingColorChoice,
		PendingUnoCatch:    s.PendingUnoCatch,
		Winner:             s.Winner,
		Log:                s.Log,
		Version:            s.Version,
	}
	if cur := s.CurrentPlayer(); cur != nil && s.Status == models.StatusPlaying {
		view.CurrentPlayerID = cur.ID
	}
	for i, p := range s.Players {
		view.Players = append(view.Players, PlayerView{
			ID:            p.ID,
			Name:          p.Name,
			IsBot:         p.IsBot,
			HandSize:      len(p.Hand),
			HasCalledUno:  p.HasCalledUno,
			Connected:     p.Connected,
			IsCurrentTurn: s.Status == models.StatusPlaying && i == s.CurrentPlayerIndex,
		})
	}
	return view
}
