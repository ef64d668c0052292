package i

import (
	"context"

	"github.com/beka-birhanu/vinom-mines/game"
	"github.com/google/uuid"
)

// GameSessionManager owns the running minesweeper sessions.
type GameSessionManager interface {
	// NewSession starts a board for the given level. Zero rows or cols fall
	// back to the level's default dimensions.
	NewSession(ctx context.Context, level, rows, cols int) (uuid.UUID, game.Snapshot, error)

	// Snapshot returns the current board of a session.
	Snapshot(ctx context.Context, id uuid.UUID) (game.Snapshot, error)

	// Reveal opens a cell of a session's board.
	Reveal(ctx context.Context, id uuid.UUID, index int) (game.Snapshot, error)

	// ToggleFlag flips the flag on a cell of a session's board.
	ToggleFlag(ctx context.Context, id uuid.UUID, index int) (game.Snapshot, error)

	// Reset regenerates a session's board.
	Reset(ctx context.Context, id uuid.UUID) (game.Snapshot, error)

	// Configure changes the level and size of a session's board. The board
	// is regenerated only when they differ from the current ones.
	Configure(ctx context.Context, id uuid.UUID, level, rows, cols int) (game.Snapshot, error)

	// Advance moves a won session to the next level and reports whether the
	// last level was completed.
	Advance(ctx context.Context, id uuid.UUID) (game.Snapshot, bool, error)

	// Close stops a session.
	Close(id uuid.UUID) error

	// Subscribe returns a stream of a session's events and a function that
	// ends the subscription.
	Subscribe(id uuid.UUID) (<-chan game.Event, func(), error)
}
