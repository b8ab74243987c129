// internal/engine/rooms.go
package engine

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/cardtable/unoroom/internal/game"
	"github.com/cardtable/unoroom/internal/models"
	"github.com/cardtable/unoroom/internal/store"
)

// CreateRoom allocates a fresh lobby-status room with the creator as
// its sole player and seeds it into the store.
func (c *Controller) CreateRoom(ctx context.Context, creator *models.Player) (*models.GameState, error) {
	state := models.NewGameState(uuid.New())
	state.Players = append(state.Players, &models.Player{
		ID:        creator.ID,
		Name:      creator.Name,
		IsBot:     creator.IsBot,
		Hand:      []models.Card{},
		Connected: true,
	})
	state.AppendLog("create", creator.ID, creator.Name+" created the room")

	if err := c.store.Create(ctx, state); err != nil {
		return nil, game.Storage(err, "create room %s", state.RoomID)
	}
	c.afterCommit(state.RoomID, models.Action{Type: models.ActionJoin, PlayerID: creator.ID}, state)
	return state, nil
}

// JoinRoom seats a player; the membership change rides the same
// conditional-commit path as every other mutation, so a join racing a
// start cannot corrupt the roster.
func (c *Controller) JoinRoom(ctx context.Context, roomID uuid.UUID, p *models.Player) (*models.GameState, error) {
	return c.Apply(ctx, roomID, models.Action{
		Type:     models.ActionJoin,
		PlayerID: p.ID,
		Player:   p,
	})
}

// ResetRoom clears the room back to an empty lobby, keeping its
// identity (and its version history) intact.
func (c *Controller) ResetRoom(ctx context.Context, roomID uuid.UUID) (*models.GameState, error) {
	return c.Apply(ctx, roomID, models.Action{Type: models.ActionReset})
}

// DeleteRoom removes the room's record entirely.
func (c *Controller) DeleteRoom(ctx context.Context, roomID uuid.UUID) error {
	if err := c.store.Delete(ctx, roomID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return game.NotFound(game.ReasonRoomNotFound, "room %s not found", roomID)
		}
		return game.Storage(err, "delete room %s", roomID)
	}
	return nil
}

// GetRoom loads the current state without mutating it.
func (c *Controller) GetRoom(ctx context.Context, roomID uuid.UUID) (*models.GameState, error) {
	state, _, err := c.store.Load(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, game.NotFound(game.ReasonRoomNotFound, "room %s not found", roomID)
		}
		return nil, game.Storage(err, "load room %s", roomID)
	}
	return state, nil
}
