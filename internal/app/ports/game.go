package ports

import (
	"context"

	"outpost/internal/app/game"
)

// GameRunner gives use cases serialized access to the live game.
type GameRunner interface {
	Do(ctx context.Context, fn func(g *game.Game) error) error
	View() game.View
}
