// internal/game/effects.go
package game

import "github.com/cardtable/unoroom/internal/models"

// applyEffect computes the rules consequence of a just-recorded play:
// the card is already on the discard pile and CurrentColor/CurrentValue
// are updated. It advances the turn, deals forced draws, or arms the
// color-choice gate as the card demands.
func (m *Machine) applyEffect(s *models.GameState, played models.Card) {
	switch played.Value {
	case models.ValueSkip:
		m.advanceTurn(s, 2)
	case models.ValueReverse:
		s.Direction = -s.Direction
		if len(s.Players) == 2 {
			// Official two-player rule: a reverse acts as a skip, so the
			// player who reversed acts again.
			m.advanceTurn(s, 2)
		} else {
			m.advanceTurn(s, 1)
		}
	case models.ValueDrawTwo:
		m.dealTo(s, s.Players[nextIndex(s, 1)], 2)
		m.advanceTurn(s, 1)
	case models.ValueWild:
		s.PendingColorChoice = true
		s.PendingColorPlayer = s.CurrentPlayer().ID
	case models.ValueWildDrawFour:
		// The forced draw is independent of the color-choice gate and
		// lands immediately; the turn advances once a color is chosen.
		m.dealTo(s, s.Players[nextIndex(s, 1)], 4)
		s.PendingColorChoice = true
		s.PendingColorPlayer = s.CurrentPlayer().ID
	default:
		m.advanceTurn(s, 1)
	}
}

// nextIndex computes the seat the given number of steps away in the
// current direction, wrapping in either direction.
func nextIndex(s *models.GameState, steps int) int {
	n := len(s.Players)
	return ((s.CurrentPlayerIndex+s.Direction*steps)%n + n) % n
}

// advanceTurn moves the turn pointer and resets the per-turn draw flag.
func (m *Machine) advanceTurn(s *models.GameState, steps int) {
	s.CurrentPlayerIndex = nextIndex(s, steps)
	s.HasDrawnThisTurn = false
}

// dealTo moves n cards from the draw pile into a player's hand. A hand
// that grows past one card invalidates any standing uno declaration or
// catch window against that player.
func (m *Machine) dealTo(s *models.GameState, p *models.Player, n int) {
	p.Hand = append(p.Hand, drawFromPile(s, n)...)
	if len(p.Hand) != 1 {
		p.HasCalledUno = false
		if s.PendingUnoCatch != nil && s.PendingUnoCatch.PlayerID == p.ID {
			s.PendingUnoCatch = nil
		}
	}
}
