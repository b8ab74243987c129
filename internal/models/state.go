// internal/models/state.go
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status is the coarse lifecycle state of a room.
type Status string

const (
	StatusLobby    Status = "lobby"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

const (
	// DeckSize is the number of cards in the canonical deck.
	DeckSize = 108

	// StartingHandSize is dealt to each player at game start.
	StartingHandSize = 7

	// MaxPlayers caps a room's roster.
	MaxPlayers = 10

	// LogCap bounds the in-state event log; oldest entries are evicted
	// first once the cap is reached.
	LogCap = 50
)

// LogEntry is one event in the room's bounded history.
type LogEntry struct {
	Type     string    `json:"type"`
	PlayerID uuid.UUID `json:"playerId,omitempty"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

// UnoCatch marks a player who reached one card without declaring it.
// Until Deadline, any other player may call them out for a penalty.
type UnoCatch struct {
	PlayerID uuid.UUID `json:"playerId"`
	Deadline time.Time `json:"deadline"`
}

// GameState is the full state of one room and the single unit of
// concurrency control. It is loaded, mutated, and committed as a whole;
// Version is the optimistic-concurrency token and increases by exactly
// one on every committed mutation.
type GameState struct {
	RoomID             uuid.UUID  `json:"roomId"`
	Players            []*Player  `json:"players"`
	CurrentPlayerIndex int        `json:"currentPlayerIndex"`
	Direction          int        `json:"direction"`
	DrawPile           []Card     `json:"drawPile"`
	DiscardPile        []Card     `json:"discardPile"`
	CurrentColor       Color      `json:"currentColor"`
	CurrentValue       Value      `json:"currentValue"`
	Status             Status     `json:"status"`
	Winner             uuid.UUID  `json:"winner,omitempty"`
	PendingColorChoice bool       `json:"pendingColorChoice"`
	PendingColorPlayer uuid.UUID  `json:"pendingColorPlayer,omitempty"`
	HasDrawnThisTurn   bool       `json:"hasDrawnThisTurn"`
	PendingUnoCatch    *UnoCatch  `json:"pendingUnoCatch,omitempty"`
	Log                []LogEntry `json:"log"`
	Version            int64      `json:"version"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// NewGameState builds an empty lobby-status state for a fresh room.
func NewGameState(roomID uuid.UUID) *GameState {
	return &GameState{
		RoomID:       roomID,
		Players:      []*Player{},
		Direction:    1,
		CurrentColor: ColorNone,
		Status:       StatusLobby,
		Version:      1,
		CreatedAt:    time.Now().UTC(),
	}
}

// CurrentPlayer returns the player whose turn it is, or nil outside of
// an active game.
func (s *GameState) CurrentPlayer() *Player {
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return nil
	}
	return s.Players[s.CurrentPlayerIndex]
}

// PlayerByID finds a seated player, or nil.
func (s *GameState) PlayerByID(id uuid.UUID) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// TopDiscard returns the active discard, or nil when the pile is empty.
func (s *GameState) TopDiscard() *Card {
	if len(s.DiscardPile) == 0 {
		return nil
	}
	return &s.DiscardPile[len(s.DiscardPile)-1]
}

// AppendLog records an event, evicting the oldest entries beyond LogCap.
// Truncation is lossy by design and never an error.
func (s *GameState) AppendLog(entryType string, playerID uuid.UUID, message string) {
	s.Log = append(s.Log, LogEntry{
		Type:     entryType,
		PlayerID: playerID,
		Message:  message,
		At:       time.Now().UTC(),
	})
	if over := len(s.Log) - LogCap; over > 0 {
		s.Log = append([]LogEntry(nil), s.Log[over:]...)
	}
}

// CardCount returns the total number of cards across both piles and all
// hands. It equals DeckSize at every committed playing state.
func (s *GameState) CardCount() int {
	n := len(s.DrawPile) + len(s.DiscardPile)
	for _, p := range s.Players {
		n += len(p.Hand)
	}
	return n
}

// Clone deep-copies the state through its JSON form so no slice or
// player pointer is shared with the original.
func (s *GameState) Clone() *GameState {
	data, err := json.Marshal(s)
	if err != nil {
		// GameState contains only marshalable fields; this cannot happen
		// for a well-formed state.
		panic("models: clone marshal: " + err.Error())
	}
	var out GameState
	if err := json.Unmarshal(data, &out); err != nil {
		panic("models: clone unmarshal: " + err.Error())
	}
	return &out
}
