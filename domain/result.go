// Package dmn holds the records the service keeps about finished games.
package dmn

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is how a game ended.
type Outcome string

const (
	OutcomeWon  Outcome = "won"
	OutcomeLost Outcome = "lost"
)

// Result is the archived summary of a finished game.
type Result struct {
	ID         uuid.UUID `bson:"_id"`
	SessionID  uuid.UUID `bson:"sessionId"`
	Level      int       `bson:"level"`
	Rows       int       `bson:"rows"`
	Cols       int       `bson:"cols"`
	Mines      int       `bson:"mines"`
	Outcome    Outcome   `bson:"outcome"`
	Elapsed    int       `bson:"elapsed"` // Elapsed is the clock value in seconds.
	FinishedAt time.Time `bson:"finishedAt"`
}

// LeaderboardEntry is the best time of a session on a level.
type LeaderboardEntry struct {
	SessionID uuid.UUID
	Elapsed   int
}
