package i

import (
	"context"

	dmn "github.com/beka-birhanu/vinom-mines/domain"
	"github.com/google/uuid"
)

// Leaderboard keeps the best winning times per level.
type Leaderboard interface {
	// Submit records a winning time. Only the best time of a session is kept.
	Submit(ctx context.Context, level int, sessionID uuid.UUID, elapsed int) error

	// Top returns up to limit entries of a level, fastest first.
	Top(ctx context.Context, level int, limit int64) ([]dmn.LeaderboardEntry, error)
}
