// internal/game/game.go
package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/cardtable/unoroom/internal/models"
)

// DefaultCatchWindow is how long callers have to catch an undeclared
// one-card hand before the window lapses.
const DefaultCatchWindow = 10 * time.Second

// Machine is the per-room turn state machine. It validates an action
// against the current GameState and mutates the state in place; it
// performs no I/O and holds no state of its own, so one Machine serves
// every room.
type Machine struct {
	catchWindow time.Duration
	now         func() time.Time
}

// NewMachine builds a Machine. A non-positive catchWindow selects the
// default.
func NewMachine(catchWindow time.Duration) *Machine {
	if catchWindow <= 0 {
		catchWindow = DefaultCatchWindow
	}
	return &Machine{catchWindow: catchWindow, now: time.Now}
}

// Apply validates the action against s and, when legal, transitions s.
// On failure s is left untouched only in the sense that the caller must
// discard it: Apply is meant to run against a freshly loaded copy and
// the failed copy is never committed.
func (m *Machine) Apply(s *models.GameState, act models.Action) error {
	switch act.Type {
	case models.ActionJoin:
		return m.join(s, act)
	case models.ActionStart:
		return m.start(s, act)
	case models.ActionPlay:
		return m.play(s, act)
	case models.ActionDraw:
		return m.draw(s, act)
	case models.ActionPass:
		return m.pass(s, act)
	case models.ActionSelectColor:
		return m.selectColor(s, act)
	case models.ActionSayUno:
		return m.sayUno(s, act)
	case models.ActionCallUno:
		return m.callUno(s, act)
	case models.ActionReset:
		return m.reset(s, act)
	case models.ActionConnect:
		return m.setConnected(s, act, true)
	case models.ActionDisconnect:
		return m.setConnected(s, act, false)
	default:
		return Invalid(ReasonBadRequest, "unknown action type %q", act.Type)
	}
}

// requireTurn runs the common preconditions for in-turn actions and
// returns the acting player.
func (m *Machine) requireTurn(s *models.GameState, playerID uuid.UUID) (*models.Player, error) {
	if s.Status != models.StatusPlaying {
		return nil, Illegal(ReasonGameNotActive, "room %s is not in a running game", s.RoomID)
	}
	p := s.PlayerByID(playerID)
	if p == nil {
		return nil, NotFound(ReasonPlayerNotFound, "player %s is not in room %s", playerID, s.RoomID)
	}
	if cur := s.CurrentPlayer(); cur == nil || cur.ID != playerID {
		return nil, Illegal(ReasonNotYourTurn, "it is not player %s's turn", playerID)
	}
	return p, nil
}

func (m *Machine) play(s *models.GameState, act models.Action) error {
	p, err := m.requireTurn(s, act.PlayerID)
	if err != nil {
		return err
	}
	if s.PendingColorChoice {
		return Illegal(ReasonPendingColorChoice, "a wild color choice is pending")
	}
	if act.CardID == uuid.Nil {
		return Invalid(ReasonBadRequest, "play action requires a card id")
	}
	if !p.HasCard(act.CardID) {
		return Illegal(ReasonCardNotInHand, "player %s does not hold card %s", p.ID, act.CardID)
	}
	card, _ := p.RemoveCard(act.CardID)
	if !m.playable(s, card) {
		// Put the card back; validation failed after the tentative removal.
		p.Hand = append(p.Hand, card)
		return Illegal(ReasonCardNotPlayable, "card %s %s does not match %s %s",
			card.Color, card.Value, s.CurrentColor, s.CurrentValue)
	}

	s.DiscardPile = append(s.DiscardPile, card)
	s.CurrentValue = card.Value
	if card.Value.IsWild() {
		// Effective color is resolved by a follow-up select_color.
		s.CurrentColor = models.ColorNone
	} else {
		s.CurrentColor = card.Color
	}
	s.AppendLog("play", p.ID, p.Name+" played "+string(card.Color)+" "+string(card.Value))

	// A won game takes absolute priority over any uno bookkeeping.
	if len(p.Hand) == 0 {
		s.Status = models.StatusFinished
		s.Winner = p.ID
		s.PendingColorChoice = false
		s.PendingColorPlayer = uuid.Nil
		s.PendingUnoCatch = nil
		s.AppendLog("win", p.ID, p.Name+" wins")
		return nil
	}

	if act.DeclareUno && len(p.Hand) == 1 {
		p.HasCalledUno = true
		s.AppendLog("uno", p.ID, p.Name+" said uno")
	}
	if len(p.Hand) == 1 && !p.HasCalledUno {
		s.PendingUnoCatch = &models.UnoCatch{
			PlayerID: p.ID,
			Deadline: m.now().Add(m.catchWindow),
		}
	}
	if len(p.Hand) > 1 {
		p.HasCalledUno = false
	}

	m.applyEffect(s, card)
	return nil
}

// playable reports whether the card matches the active color, the
// active value, or is wild-family.
func (m *Machine) playable(s *models.GameState, card models.Card) bool {
	if card.Value.IsWild() {
		return true
	}
	return card.Color == s.CurrentColor || card.Value == s.CurrentValue
}

func (m *Machine) selectColor(s *models.GameState, act models.Action) error {
	if s.Status != models.StatusPlaying {
		return Illegal(ReasonGameNotActive, "room %s is not in a running game", s.RoomID)
	}
	if !s.PendingColorChoice {
		return Illegal(ReasonColorRequired, "no wild color choice is pending")
	}
	if act.PlayerID != s.PendingColorPlayer {
		return Illegal(ReasonNotYourTurn, "the color choice belongs to player %s", s.PendingColorPlayer)
	}
	if !act.Color.Playable() {
		return Invalid(ReasonBadRequest, "%q is not a playable color", act.Color)
	}
	s.CurrentColor = act.Color
	s.PendingColorChoice = false
	s.PendingColorPlayer = uuid.Nil
	s.AppendLog("color", act.PlayerID, "color set to "+string(act.Color))
	// Deferred advance for the resolved wild: one step for both wild and
	// wild-draw-four; the forced draw already happened at play time.
	m.advanceTurn(s, 1)
	return nil
}

func (m *Machine) draw(s *models.GameState, act models.Action) error {
	p, err := m.requireTurn(s, act.PlayerID)
	if err != nil {
		return err
	}
	if s.PendingColorChoice {
		return Illegal(ReasonPendingColorChoice, "a wild color choice is pending")
	}
	if s.HasDrawnThisTurn {
		return Illegal(ReasonAlreadyDrew, "player %s already drew this turn", p.ID)
	}
	m.dealTo(s, p, 1)
	s.HasDrawnThisTurn = true
	s.AppendLog("draw", p.ID, p.Name+" drew a card")
	return nil
}

func (m *Machine) pass(s *models.GameState, act models.Action) error {
	p, err := m.requireTurn(s, act.PlayerID)
	if err != nil {
		return err
	}
	if s.PendingColorChoice {
		return Illegal(ReasonPendingColorChoice, "a wild color choice is pending")
	}
	if !s.HasDrawnThisTurn {
		return Illegal(ReasonMustDrawFirst, "player %s must draw before passing", p.ID)
	}
	s.AppendLog("pass", p.ID, p.Name+" passed")
	m.advanceTurn(s, 1)
	return nil
}

// sayUno records a declaration. A player may declare while holding one
// card (clearing any catch window against them) or preemptively while
// holding two, just before playing down to one.
func (m *Machine) sayUno(s *models.GameState, act models.Action) error {
	if s.Status != models.StatusPlaying {
		return Illegal(ReasonGameNotActive, "room %s is not in a running game", s.RoomID)
	}
	p := s.PlayerByID(act.PlayerID)
	if p == nil {
		return NotFound(ReasonPlayerNotFound, "player %s is not in room %s", act.PlayerID, s.RoomID)
	}
	if len(p.Hand) > 2 {
		return Illegal(ReasonUnoNotApplicable, "player %s holds %d cards", p.ID, len(p.Hand))
	}
	p.HasCalledUno = true
	if s.PendingUnoCatch != nil && s.PendingUnoCatch.PlayerID == p.ID {
		s.PendingUnoCatch = nil
	}
	s.AppendLog("uno", p.ID, p.Name+" said uno")
	return nil
}

func (m *Machine) callUno(s *models.GameState, act models.Action) error {
	if s.Status != models.StatusPlaying {
		return Illegal(ReasonGameNotActive, "room %s is not in a running game", s.RoomID)
	}
	caller := s.PlayerByID(act.PlayerID)
	if caller == nil {
		return NotFound(ReasonPlayerNotFound, "player %s is not in room %s", act.PlayerID, s.RoomID)
	}
	if act.TargetID == act.PlayerID {
		return Invalid(ReasonBadRequest, "a player cannot call uno on themselves")
	}
	if s.PendingUnoCatch == nil || s.PendingUnoCatch.PlayerID != act.TargetID {
		return Illegal(ReasonNoPendingCatch, "player %s is not catchable", act.TargetID)
	}
	if m.now().After(s.PendingUnoCatch.Deadline) {
		// The window lapsed without a catch; clear it lazily.
		s.PendingUnoCatch = nil
		return Illegal(ReasonCatchExpired, "the catch window for player %s has closed", act.TargetID)
	}
	target := s.PlayerByID(act.TargetID)
	if target == nil {
		return NotFound(ReasonPlayerNotFound, "player %s is not in room %s", act.TargetID, s.RoomID)
	}
	s.PendingUnoCatch = nil
	m.dealTo(s, target, 2)
	s.AppendLog("uno_fail", target.ID, target.Name+" was caught without saying uno")
	return nil
}

func (m *Machine) join(s *models.GameState, act models.Action) error {
	if s.Status != models.StatusLobby {
		return Illegal(ReasonNotInLobby, "room %s has already started", s.RoomID)
	}
	if act.Player == nil || act.Player.ID == uuid.Nil {
		return Invalid(ReasonBadRequest, "join action requires a player")
	}
	if s.PlayerByID(act.Player.ID) != nil {
		// Checked before capacity so a seated player rejoining a full
		// room hears the precondition that actually failed.
		return Illegal(ReasonAlreadyJoined, "player %s is already in room %s", act.Player.ID, s.RoomID)
	}
	if len(s.Players) >= models.MaxPlayers {
		return Illegal(ReasonRoomFull, "room %s is full", s.RoomID)
	}
	p := &models.Player{
		ID:        act.Player.ID,
		Name:      act.Player.Name,
		IsBot:     act.Player.IsBot,
		Hand:      []models.Card{},
		Connected: true,
	}
	s.Players = append(s.Players, p)
	s.AppendLog("join", p.ID, p.Name+" joined")
	return nil
}

func (m *Machine) start(s *models.GameState, act models.Action) error {
	if s.Status != models.StatusLobby {
		return Illegal(ReasonNotInLobby, "room %s has already started", s.RoomID)
	}
	if s.PlayerByID(act.PlayerID) == nil {
		return NotFound(ReasonPlayerNotFound, "player %s is not in room %s", act.PlayerID, s.RoomID)
	}
	if len(s.Players) < 2 {
		return Illegal(ReasonTooFewPlayers, "room %s needs at least two players", s.RoomID)
	}

	s.DrawPile = NewDeck()
	Shuffle(s.DrawPile)
	for _, p := range s.Players {
		p.Hand = drawFromPile(s, models.StartingHandSize)
		p.HasCalledUno = false
	}

	// Flip the opening discard. Re-shuffle and retry while the top card
	// is an action or wild, so no special effect fires before anyone has
	// acted.
	for {
		top := s.DrawPile[len(s.DrawPile)-1]
		if !top.Value.IsAction() {
			s.DrawPile = s.DrawPile[:len(s.DrawPile)-1]
			s.DiscardPile = []models.Card{top}
			s.CurrentColor = top.Color
			s.CurrentValue = top.Value
			break
		}
		Shuffle(s.DrawPile)
	}

	s.Status = models.StatusPlaying
	s.CurrentPlayerIndex = 0
	s.Direction = 1
	s.HasDrawnThisTurn = false
	s.PendingColorChoice = false
	s.PendingUnoCatch = nil
	s.Winner = uuid.Nil
	s.AppendLog("start", act.PlayerID, "game started")
	return nil
}

// reset returns the room to an empty lobby, keeping its identity.
func (m *Machine) reset(s *models.GameState, act models.Action) error {
	s.Players = []*models.Player{}
	s.CurrentPlayerIndex = 0
	s.Direction = 1
	s.DrawPile = nil
	s.DiscardPile = nil
	s.CurrentColor = models.ColorNone
	s.CurrentValue = ""
	s.Status = models.StatusLobby
	s.Winner = uuid.Nil
	s.PendingColorChoice = false
	s.PendingColorPlayer = uuid.Nil
	s.HasDrawnThisTurn = false
	s.PendingUnoCatch = nil
	s.Log = nil
	s.AppendLog("reset", act.PlayerID, "room reset")
	return nil
}

// setConnected flips a player's connection flag. The player sequence,
// and with it the turn order, is never mutated by a disconnect.
func (m *Machine) setConnected(s *models.GameState, act models.Action, connected bool) error {
	p := s.PlayerByID(act.PlayerID)
	if p == nil {
		return NotFound(ReasonPlayerNotFound, "player %s is not in room %s", act.PlayerID, s.RoomID)
	}
	p.Connected = connected
	if connected {
		s.AppendLog("connect", p.ID, p.Name+" connected")
	} else {
		s.AppendLog("disconnect", p.ID, p.Name+" disconnected")
	}
	return nil
}
