// internal/game/deck.go
package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/cardtable/unoroom/internal/models"
)

// NewDeck builds the canonical 108-card deck: per color one 0, two each
// of 1-9, two each of skip/reverse/draw-two, plus four wilds and four
// wild-draw-fours. Every card gets a fresh id so ids are unique across
// the whole game.
func NewDeck() []models.Card {
	deck := make([]models.Card, 0, models.DeckSize)
	for _, color := range models.Colors {
		deck = append(deck, newCard(color, "0"))
		for _, v := range models.Numerals[1:] {
			deck = append(deck, newCard(color, v), newCard(color, v))
		}
		for _, v := range []models.Value{models.ValueSkip, models.ValueReverse, models.ValueDrawTwo} {
			deck = append(deck, newCard(color, v), newCard(color, v))
		}
	}
	for i := 0; i < 4; i++ {
		deck = append(deck, newCard(models.ColorNone, models.ValueWild))
		deck = append(deck, newCard(models.ColorNone, models.ValueWildDrawFour))
	}
	return deck
}

func newCard(color models.Color, value models.Value) models.Card {
	id, _ := uuid.NewRandom()
	return models.Card{ID: id, Color: color, Value: value}
}

// Shuffle permutes cards in place with a time-seeded source. Uniformity
// matters here, determinism does not.
func Shuffle(cards []models.Card) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	r.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// drawFromPile removes up to n cards from the top of the draw pile. If
// the pile is short it first folds all but the top discard back into
// the draw pile and reshuffles. When even that leaves fewer than n
// cards, the available cards are returned; a short draw is a valid
// outcome late in a game with large hands.
func drawFromPile(s *models.GameState, n int) []models.Card {
	if len(s.DrawPile) < n && len(s.DiscardPile) > 1 {
		top := s.DiscardPile[len(s.DiscardPile)-1]
		s.DrawPile = append(s.DrawPile, s.DiscardPile[:len(s.DiscardPile)-1]...)
		s.DiscardPile = []models.Card{top}
		Shuffle(s.DrawPile)
	}
	if n > len(s.DrawPile) {
		n = len(s.DrawPile)
	}
	drawn := make([]models.Card, n)
	copy(drawn, s.DrawPile[len(s.DrawPile)-n:])
	s.DrawPile = s.DrawPile[:len(s.DrawPile)-n]
	return drawn
}
