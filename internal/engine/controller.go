// internal/engine/controller.go
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cardtable/unoroom/internal/broadcast"
	"github.com/cardtable/unoroom/internal/game"
	"github.com/cardtable/unoroom/internal/history"
	"github.com/cardtable/unoroom/internal/models"
	"github.com/cardtable/unoroom/internal/store"
)

// DefaultCommitRetries bounds how many times Apply re-runs the
// read-validate-write cycle after a lost version race. Contention is
// rare under human turn-taking, so a small budget suffices.
const DefaultCommitRetries = 4

// Controller is the mutation controller: the single entry point for
// every action against a room. For a given room, at most one commit
// ever succeeds against a given base version; concurrent callers lose
// the conditional write and retry against the fresh state.
type Controller struct {
	store    store.Store
	machine  *game.Machine
	pub      broadcast.Publisher
	recorder *history.Recorder
	logger   *logrus.Logger
	retries  int
}

// Option tweaks a Controller at construction.
type Option func(*Controller)

// WithPublisher wires the broadcast collaborator.
func WithPublisher(pub broadcast.Publisher) Option {
	return func(c *Controller) { c.pub = pub }
}

// WithRecorder wires the action-history collaborator.
func WithRecorder(rec *history.Recorder) Option {
	return func(c *Controller) { c.recorder = rec }
}

// WithCommitRetries overrides the retry budget.
func WithCommitRetries(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.retries = n
		}
	}
}

// New builds a Controller over the given store and state machine.
func New(st store.Store, machine *game.Machine, logger *logrus.Logger, opts ...Option) *Controller {
	c := &Controller{
		store:   st,
		machine: machine,
		logger:  logger,
		retries: DefaultCommitRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Apply runs one action through the full read-validate-write cycle:
// load the room's state and version, transition it through the state
// machine, and commit conditionally on the version being unchanged. A
// lost race restarts the whole cycle against the fresh state; once the
// retry budget is spent a conflict-kind error surfaces to the caller,
// who may resubmit.
func (c *Controller) Apply(ctx context.Context, roomID uuid.UUID, act models.Action) (*models.GameState, error) {
	for attempt := 0; attempt <= c.retries; attempt++ {
		state, version, err := c.store.Load(ctx, roomID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, game.NotFound(game.ReasonRoomNotFound, "room %s not found", roomID)
			}
			return nil, game.Storage(err, "load room %s", roomID)
		}

		if err := c.machine.Apply(state, act); err != nil {
			return nil, err
		}

		state.Version = version + 1
		err = c.store.CommitIfVersion(ctx, roomID, state, version)
		if errors.Is(err, store.ErrVersionConflict) {
			c.logger.WithFields(logrus.Fields{
				"room":    roomID,
				"action":  act.Type,
				"version": version,
				"attempt": attempt,
			}).Debug("commit lost version race, retrying")
			continue
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, game.NotFound(game.ReasonRoomNotFound, "room %s was deleted", roomID)
		}
		if err != nil {
			return nil, game.Storage(err, "commit room %s", roomID)
		}

		c.afterCommit(roomID, act, state)
		return state, nil
	}
	return nil, game.Conflict("room %s: commit retries exhausted for action %s", roomID, act.Type)
}

// afterCommit hands the committed state to the history and broadcast
// collaborators. Both are fire-and-forget: their failure is logged and
// never unwinds the commit.
func (c *Controller) afterCommit(roomID uuid.UUID, act models.Action, state *models.GameState) {
	rec := history.ActionRecord{
		RoomID:     roomID,
		Version:    state.Version,
		ActorID:    act.PlayerID,
		ActionType: act.Type,
		Timestamp:  time.Now().UnixMilli(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.recorder.Record(ctx, rec); err != nil {
			c.logger.WithError(err).WithField("room", roomID).Warn("record action history")
		}
	}()

	if c.pub != nil {
		snapshot := state.Clone()
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			c.pub.Publish(ctx, roomID, snapshot)
		}()
	}
}
