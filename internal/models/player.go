// internal/models/player.go
package models

import "github.com/google/uuid"

// Player is one seat in a room. Turn order is the order of the
// GameState.Players slice; a player is only ever removed by an explicit
// room reset. Disconnection is tracked with the Connected flag so the
// turn-order invariant survives a dropped socket.
type Player struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	IsBot        bool      `json:"isBot"`
	Hand         []Card    `json:"hand"`
	HasCalledUno bool      `json:"hasCalledUno"`
	Connected    bool      `json:"connected"`
}

// HasCard reports whether the player holds the card with the given id.
func (p *Player) HasCard(cardID uuid.UUID) bool {
	for _, c := range p.Hand {
		if c.ID == cardID {
			return true
		}
	}
	return false
}

// RemoveCard takes the card with the given id out of the player's hand
// and returns it. The second return is false if the card is not held.
func (p *Player) RemoveCard(cardID uuid.UUID) (Card, bool) {
	for i, c := range p.Hand {
		if c.ID == cardID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, true
		}
	}
	return Card{}, false
}
