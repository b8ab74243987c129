// internal/broadcast/broadcast.go
package broadcast

import (
	"context"

	"github.com/google/uuid"

	"github.com/cardtable/unoroom/internal/models"
)

// Publisher delivers a committed state to viewers. Publish is
// fire-and-forget: a delivery failure never fails or rolls back the
// already-committed mutation, so implementations report problems
// through their own logging, not through an error return.
type Publisher interface {
	Publish(ctx context.Context, roomID uuid.UUID, state *models.GameState)
}

// MultiPublisher fans one publish out to several publishers.
type MultiPublisher []Publisher

func (mp MultiPublisher) Publish(ctx context.Context, roomID uuid.UUID, state *models.GameState) {
	for _, p := range mp {
		p.Publish(ctx, roomID, state)
	}
}
