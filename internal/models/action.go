// internal/models/action.go
package models

import "github.com/google/uuid"

// ActionType identifies one of the mutations a client may submit
// against a room.
type ActionType string

const (
	ActionPlay        ActionType = "play"
	ActionDraw        ActionType = "draw"
	ActionPass        ActionType = "pass"
	ActionSelectColor ActionType = "select_color"
	ActionSayUno      ActionType = "say_uno"
	ActionCallUno     ActionType = "call_uno"
	ActionStart       ActionType = "start"
	ActionJoin        ActionType = "join"
	ActionReset       ActionType = "reset"
	ActionConnect     ActionType = "connect"
	ActionDisconnect  ActionType = "disconnect"
)

// Action is the envelope for every mutation submitted through the
// engine. Only the fields relevant to the given Type are consulted.
type Action struct {
	Type     ActionType `json:"type"`
	PlayerID uuid.UUID  `json:"playerId"`

	// CardID names the card for a play action.
	CardID uuid.UUID `json:"cardId,omitempty"`

	// Color carries the choice for select_color.
	Color Color `json:"color,omitempty"`

	// TargetID names the player being called out on call_uno.
	TargetID uuid.UUID `json:"targetId,omitempty"`

	// DeclareUno lets a play action carry the uno declaration inline,
	// so playing down to one card and declaring it is a single atomic
	// mutation.
	DeclareUno bool `json:"declareUno,omitempty"`

	// Player carries the joining player for a join action.
	Player *Player `json:"player,omitempty"`
}
