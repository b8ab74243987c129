// internal/game/game_test.go
package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtable/unoroom/internal/models"
)

// setupPlayingGame joins numPlayers into a fresh room and starts it.
func setupPlayingGame(t *testing.T, numPlayers int) (*Machine, *models.GameState) {
	t.Helper()
	m := NewMachine(time.Minute)
	s := models.NewGameState(uuid.New())
	for i := 0; i < numPlayers; i++ {
		p := &models.Player{ID: uuid.New(), Name: fmt.Sprintf("p%d", i)}
		require.NoError(t, m.Apply(s, models.Action{Type: models.ActionJoin, PlayerID: p.ID, Player: p}))
	}
	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionStart, PlayerID: s.Players[0].ID}))
	require.Equal(t, models.StatusPlaying, s.Status)
	return m, s
}

// giveCard moves a crafted card into a player's hand, taking one of the
// draw pile's cards out so the total card count stays conserved.
func giveCard(t *testing.T, s *models.GameState, p *models.Player, card models.Card) models.Card {
	t.Helper()
	require.NotEmpty(t, s.DrawPile)
	s.DrawPile = s.DrawPile[:len(s.DrawPile)-1]
	card.ID = uuid.New()
	p.Hand = append(p.Hand, card)
	return card
}

func TestStartGameDealsAndFlips(t *testing.T) {
	_, s := setupPlayingGame(t, 3)

	for _, p := range s.Players {
		assert.Len(t, p.Hand, models.StartingHandSize)
	}
	top := s.TopDiscard()
	require.NotNil(t, top)
	assert.False(t, top.Value.IsAction(), "opening discard must be a numeral")
	assert.Equal(t, top.Color, s.CurrentColor)
	assert.Equal(t, top.Value, s.CurrentValue)
	assert.Equal(t, 0, s.CurrentPlayerIndex)
	assert.Equal(t, 1, s.Direction)
	assert.Equal(t, models.DeckSize, s.CardCount(), "deck conservation")
}

func TestStartGameRequiresLobbyAndTwoPlayers(t *testing.T) {
	m := NewMachine(time.Minute)
	s := models.NewGameState(uuid.New())
	p := &models.Player{ID: uuid.New(), Name: "solo"}
	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionJoin, PlayerID: p.ID, Player: p}))

	err := m.Apply(s, models.Action{Type: models.ActionStart, PlayerID: p.ID})
	assert.Equal(t, ReasonTooFewPlayers, ReasonOf(err))

	_, s2 := setupPlayingGame(t, 2)
	err = m.Apply(s2, models.Action{Type: models.ActionStart, PlayerID: s2.Players[0].ID})
	assert.Equal(t, ReasonNotInLobby, ReasonOf(err))
}

func TestJoinRules(t *testing.T) {
	m := NewMachine(time.Minute)
	s := models.NewGameState(uuid.New())
	for i := 0; i < models.MaxPlayers; i++ {
		p := &models.Player{ID: uuid.New(), Name: fmt.Sprintf("p%d", i)}
		require.NoError(t, m.Apply(s, models.Action{Type: models.ActionJoin, PlayerID: p.ID, Player: p}))
	}

	extra := &models.Player{ID: uuid.New(), Name: "late"}
	err := m.Apply(s, models.Action{Type: models.ActionJoin, PlayerID: extra.ID, Player: extra})
	assert.Equal(t, ReasonRoomFull, ReasonOf(err))

	dup := s.Players[0]
	err = m.Apply(s, models.Action{Type: models.ActionJoin, PlayerID: dup.ID, Player: dup})
	assert.Equal(t, ReasonAlreadyJoined, ReasonOf(err))
}

func TestPlayNumeralAdvancesTurn(t *testing.T) {
	m, s := setupPlayingGame(t, 3)
	s.CurrentColor = models.ColorRed
	s.CurrentValue = "5"
	cur := s.CurrentPlayer()
	card := giveCard(t, s, cur, models.Card{Color: models.ColorRed, Value: "7"})

	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionPlay, PlayerID: cur.ID, CardID: card.ID}))
	assert.Equal(t, card.ID, s.TopDiscard().ID)
	assert.Equal(t, models.ColorRed, s.CurrentColor)
	assert.Equal(t, models.Value("7"), s.CurrentValue)
	assert.Equal(t, 1, s.CurrentPlayerIndex)
	assert.Equal(t, models.DeckSize, s.CardCount())
}

func TestPlayValidation(t *testing.T) {
	m, s := setupPlayingGame(t, 2)
	s.CurrentColor = models.ColorRed
	s.CurrentValue = "5"
	cur := s.CurrentPlayer()
	other := s.Players[1]

	// Not your turn.
	err := m.Apply(s, models.Action{Type: models.ActionPlay, PlayerID: other.ID, CardID: uuid.New()})
	assert.Equal(t, KindIllegalAction, KindOf(err))
	assert.Equal(t, ReasonNotYourTurn, ReasonOf(err))

	// Card not held.
	err = m.Apply(s, models.Action{Type: models.ActionPlay, PlayerID: cur.ID, CardID: uuid.New()})
	assert.Equal(t, ReasonCardNotInHand, ReasonOf(err))

	// Card held but no match.
	card := giveCard(t, s, cur, models.Card{Color: models.ColorBlue, Value: "9"})
	handSize := len(cur.Hand)
	err = m.Apply(s, models.Action{Type: models.ActionPlay, PlayerID: cur.ID, CardID: card.ID})
	assert.Equal(t, ReasonCardNotPlayable, ReasonOf(err))
	assert.Len(t, cur.Hand, handSize, "a rejected play keeps the hand intact")
}

func TestTwoPlayerReverseRepeatsTurn(t *testing.T) {
	m, s := setupPlayingGame(t, 2)
	s.CurrentColor = models.ColorGreen
	s.CurrentValue = "5"
	playerA := s.CurrentPlayer()
	card := giveCard(t, s, playerA, models.Card{Color: models.ColorGreen, Value: models.ValueReverse})

	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionPlay, PlayerID: playerA.ID, CardID: card.ID}))
	assert.Equal(t, -1, s.Direction)
	assert.Equal(t, playerA.ID, s.CurrentPlayer().ID, "with two players a reverse hands the turn back")
}

func TestThreePlayerReverseGoesBackwards(t *testing.T) {
	m, s := setupPlayingGame(t, 3)
	s.CurrentColor = models.ColorGreen
	s.CurrentValue = "5"
	playerA := s.CurrentPlayer()
	card := giveCard(t, s, playerA, models.Card{Color: models.ColorGreen, Value: models.ValueReverse})

	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionPlay, PlayerID: playerA.ID, CardID: card.ID}))
	assert.Equal(t, -1, s.Direction)
	assert.Equal(t, s.Players[2].ID, s.CurrentPlayer().ID)
}

func TestSkipJumpsOnePlayer(t *testing.T) {
	m, s := setupPlayingGame(t, 3)
	s.CurrentColor = models.ColorYellow
	s.CurrentValue = "1"
	cur := s.CurrentPlayer()
	card := giveCard(t, s, cur, models.Card{Color: models.ColorYellow, Value: models.ValueSkip})

	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionPlay, PlayerID: cur.ID, CardID: card.ID}))
	assert.Equal(t, 2, s.CurrentPlayerIndex)
}

func TestDrawTwoDealsToNextPlayer(t *testing.T) {
	m, s := setupPlayingGame(t, 3)
	s.CurrentColor = models.ColorBlue
	s.CurrentValue = "2"
	cur := s.CurrentPlayer()
	victim := s.Players[1]
	victimHand := len(victim.Hand)
	card := giveCard(t, s, cur, models.Card{Color: models.ColorBlue, Value: models.ValueDrawTwo})

	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionPlay, PlayerID: cur.ID, CardID: card.ID}))
	assert.Len(t, victim.Hand, victimHand+2)
	assert.Equal(t, victim.ID, s.CurrentPlayer().ID)
	assert.Equal(t, models.DeckSize, s.CardCount())
}

func TestWildGatesOnColorChoice(t *testing.T) {
	m, s := setupPlayingGame(t, 3)
	cur := s.CurrentPlayer()
	card := giveCard(t, s, cur, models.Card{Color: models.ColorNone, Value: models.ValueWild})

	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionPlay, PlayerID: cur.ID, CardID: card.ID}))
	assert.True(t, s.PendingColorChoice)
	assert.Equal(t, models.ColorNone, s.CurrentColor)
	assert.Equal(t, cur.ID, s.CurrentPlayer().ID, "turn holds until the color is chosen")

	// No play, draw, or pass may slip through the gate.
	err := m.Apply(s, models.Action{Type: models.ActionDraw, PlayerID: cur.ID})
	assert.Equal(t, ReasonPendingColorChoice, ReasonOf(err))

	// Only the player who played the wild chooses.
	err = m.Apply(s, models.Action{Type: models.ActionSelectColor, PlayerID: s.Players[1].ID, Color: models.ColorRed})
	assert.Equal(t, ReasonNotYourTurn, ReasonOf(err))

	// A non-playable color is malformed, not merely illegal.
	err = m.Apply(s, models.Action{Type: models.ActionSelectColor, PlayerID: cur.ID, Color: models.ColorNone})
	assert.Equal(t, KindValidation, KindOf(err))

	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionSelectColor, PlayerID: cur.ID, Color: models.ColorGreen}))
	assert.False(t, s.PendingColorChoice)
	assert.Equal(t, models.ColorGreen, s.CurrentColor)
	assert.Equal(t, s.Players[1].ID, s.CurrentPlayer().ID)
}

func TestWildDrawFourDealsBeforeColorChoice(t *testing.T) {
	m, s := setupPlayingGame(t, 2)
	cur := s.CurrentPlayer()
	victim := s.Players[1]
	victimHand := len(victim.Hand)
	card := giveCard(t, s, cur, models.Card{Color: models.ColorNone, Value: models.ValueWildDrawFour})

	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionPlay, PlayerID: cur.ID, CardID: card.ID}))
	assert.Len(t, victim.Hand, victimHand+4, "the forced draw is independent of the color gate")
	assert.True(t, s.PendingColorChoice)

	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionSelectColor, PlayerID: cur.ID, Color: models.ColorBlue}))
	assert.Equal(t, victim.ID, s.CurrentPlayer().ID)
	assert.Equal(t, models.DeckSize, s.CardCount())
}

func TestDrawOncePerTurn(t *testing.T) {
	m, s := setupPlayingGame(t, 2)
	cur := s.CurrentPlayer()
	handSize := len(cur.Hand)

	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionDraw, PlayerID: cur.ID}))
	assert.Len(t, cur.Hand, handSize+1)
	assert.True(t, s.HasDrawnThisTurn)
	assert.Equal(t, cur.ID, s.CurrentPlayer().ID, "a draw does not advance the turn")

	err := m.Apply(s, models.Action{Type: models.ActionDraw, PlayerID: cur.ID})
	assert.Equal(t, KindIllegalAction, KindOf(err))
	assert.Equal(t, ReasonAlreadyDrew, ReasonOf(err))
}

func TestPassRequiresDraw(t *testing.T) {
	m, s := setupPlayingGame(t, 2)
	cur := s.CurrentPlayer()

	err := m.Apply(s, models.Action{Type: models.ActionPass, PlayerID: cur.ID})
	assert.Equal(t, ReasonMustDrawFirst, ReasonOf(err))

	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionDraw, PlayerID: cur.ID}))
	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionPass, PlayerID: cur.ID}))
	assert.False(t, s.HasDrawnThisTurn, "the draw flag resets on turn advance")
	assert.Equal(t, s.Players[1].ID, s.CurrentPlayer().ID)
}

func TestWinBeatsPendingUno(t *testing.T) {
	m, s := setupPlayingGame(t, 2)
	s.CurrentColor = models.ColorRed
	s.CurrentValue = "5"
	cur := s.CurrentPlayer()

	// Playing the very last card wins even with an open catch window.
	s.PendingUnoCatch = &models.UnoCatch{PlayerID: cur.ID, Deadline: time.Now().Add(time.Hour)}
	s.DrawPile = append(s.DrawPile, cur.Hand...)
	cur.Hand = nil
	card := giveCard(t, s, cur, models.Card{Color: models.ColorRed, Value: "5"})

	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionPlay, PlayerID: cur.ID, CardID: card.ID}))
	assert.Equal(t, models.StatusFinished, s.Status)
	assert.Equal(t, cur.ID, s.Winner)
	assert.Nil(t, s.PendingUnoCatch)

	// The frozen game accepts no further actions.
	err := m.Apply(s, models.Action{Type: models.ActionDraw, PlayerID: s.Players[1].ID})
	assert.Equal(t, ReasonGameNotActive, ReasonOf(err))
}

// dropToTwoCards trims a player's hand to two known cards, returning
// the surplus to the draw pile so the deck stays conserved.
func dropToTwoCards(t *testing.T, s *models.GameState, p *models.Player, keep ...models.Card) []models.Card {
	t.Helper()
	s.DrawPile = append(s.DrawPile, p.Hand...)
	p.Hand = nil
	out := make([]models.Card, 0, len(keep))
	for _, c := range keep {
		out = append(out, giveCard(t, s, p, c))
	}
	return out
}

func TestUnoCatchThenPenalty(t *testing.T) {
	m, s := setupPlayingGame(t, 2)
	s.CurrentColor = models.ColorRed
	s.CurrentValue = "5"
	playerA := s.CurrentPlayer()
	playerB := s.Players[1]
	cards := dropToTwoCards(t, s, playerA,
		models.Card{Color: models.ColorRed, Value: "6"},
		models.Card{Color: models.ColorBlue, Value: "2"},
	)

	// A plays down to one card without declaring.
	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionPlay, PlayerID: playerA.ID, CardID: cards[0].ID}))
	require.NotNil(t, s.PendingUnoCatch)
	assert.Equal(t, playerA.ID, s.PendingUnoCatch.PlayerID)

	// B catches them inside the window: two penalty cards, window cleared.
	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionCallUno, PlayerID: playerB.ID, TargetID: playerA.ID}))
	assert.Len(t, playerA.Hand, 3)
	assert.Nil(t, s.PendingUnoCatch)
	assert.Equal(t, models.DeckSize, s.CardCount())

	// A second call finds nothing to catch.
	err := m.Apply(s, models.Action{Type: models.ActionCallUno, PlayerID: playerB.ID, TargetID: playerA.ID})
	assert.Equal(t, ReasonNoPendingCatch, ReasonOf(err))
}

func TestSayUnoClearsCatchWindow(t *testing.T) {
	m, s := setupPlayingGame(t, 2)
	s.CurrentColor = models.ColorRed
	s.CurrentValue = "5"
	playerA := s.CurrentPlayer()
	playerB := s.Players[1]
	cards := dropToTwoCards(t, s, playerA,
		models.Card{Color: models.ColorRed, Value: "6"},
		models.Card{Color: models.ColorBlue, Value: "2"},
	)

	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionPlay, PlayerID: playerA.ID, CardID: cards[0].ID}))
	require.NotNil(t, s.PendingUnoCatch)

	// A declares first; the window closes without penalty.
	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionSayUno, PlayerID: playerA.ID}))
	assert.True(t, playerA.HasCalledUno)
	assert.Nil(t, s.PendingUnoCatch)
	assert.Len(t, playerA.Hand, 1)

	err := m.Apply(s, models.Action{Type: models.ActionCallUno, PlayerID: playerB.ID, TargetID: playerA.ID})
	assert.Equal(t, ReasonNoPendingCatch, ReasonOf(err))
}

func TestInlineUnoDeclarationSkipsCatchWindow(t *testing.T) {
	m, s := setupPlayingGame(t, 2)
	s.CurrentColor = models.ColorRed
	s.CurrentValue = "5"
	playerA := s.CurrentPlayer()
	cards := dropToTwoCards(t, s, playerA,
		models.Card{Color: models.ColorRed, Value: "6"},
		models.Card{Color: models.ColorBlue, Value: "2"},
	)

	require.NoError(t, m.Apply(s, models.Action{
		Type:       models.ActionPlay,
		PlayerID:   playerA.ID,
		CardID:     cards[0].ID,
		DeclareUno: true,
	}))
	assert.True(t, playerA.HasCalledUno)
	assert.Nil(t, s.PendingUnoCatch)
}

func TestCatchWindowExpires(t *testing.T) {
	m, s := setupPlayingGame(t, 2)
	s.CurrentColor = models.ColorRed
	s.CurrentValue = "5"
	playerA := s.CurrentPlayer()
	playerB := s.Players[1]
	cards := dropToTwoCards(t, s, playerA,
		models.Card{Color: models.ColorRed, Value: "6"},
		models.Card{Color: models.ColorBlue, Value: "2"},
	)

	base := time.Now()
	m.now = func() time.Time { return base }
	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionPlay, PlayerID: playerA.ID, CardID: cards[0].ID}))
	require.NotNil(t, s.PendingUnoCatch)

	m.now = func() time.Time { return base.Add(time.Hour) }
	err := m.Apply(s, models.Action{Type: models.ActionCallUno, PlayerID: playerB.ID, TargetID: playerA.ID})
	assert.Equal(t, ReasonCatchExpired, ReasonOf(err))
	assert.Nil(t, s.PendingUnoCatch, "a lapsed window is cleared lazily")
	assert.Len(t, playerA.Hand, 1, "no penalty after the window closes")
}

func TestSayUnoNotApplicableWithBigHand(t *testing.T) {
	m, s := setupPlayingGame(t, 2)
	err := m.Apply(s, models.Action{Type: models.ActionSayUno, PlayerID: s.Players[0].ID})
	assert.Equal(t, ReasonUnoNotApplicable, ReasonOf(err))
}

func TestResetReturnsRoomToEmptyLobby(t *testing.T) {
	m, s := setupPlayingGame(t, 3)
	roomID := s.RoomID

	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionReset}))
	assert.Equal(t, models.StatusLobby, s.Status)
	assert.Empty(t, s.Players)
	assert.Empty(t, s.DrawPile)
	assert.Equal(t, roomID, s.RoomID, "reset keeps the room identity")
}

func TestConnectionFlagDoesNotTouchTurnOrder(t *testing.T) {
	m, s := setupPlayingGame(t, 3)
	target := s.Players[1]

	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionDisconnect, PlayerID: target.ID}))
	assert.False(t, target.Connected)
	assert.Len(t, s.Players, 3)
	assert.Equal(t, 0, s.CurrentPlayerIndex)

	require.NoError(t, m.Apply(s, models.Action{Type: models.ActionConnect, PlayerID: target.ID}))
	assert.True(t, target.Connected)
}

func TestLogIsBounded(t *testing.T) {
	s := models.NewGameState(uuid.New())
	for i := 0; i < models.LogCap+25; i++ {
		s.AppendLog("play", uuid.Nil, fmt.Sprintf("entry %d", i))
	}
	require.Len(t, s.Log, models.LogCap)
	assert.Equal(t, "entry 25", s.Log[0].Message, "oldest entries are evicted first")
}
