// Package statsapi serves the leaderboard and the archive of finished games.
package statsapi

import (
	"time"

	dmn "github.com/beka-birhanu/vinom-mines/domain"
	"github.com/google/uuid"
)

// LimitQuery bounds the number of returned rows.
type LimitQuery struct {
	Limit int64 `form:"limit" binding:"omitempty,min=1,max=100"`
}

// LevelURI selects a leaderboard.
type LevelURI struct {
	Level int `uri:"level" binding:"required,min=1,max=3"`
}

// LeaderboardEntryResponse is one ranked time.
type LeaderboardEntryResponse struct {
	Rank      int       `json:"rank"`
	SessionID uuid.UUID `json:"sessionId"`
	Elapsed   int       `json:"elapsed"`
}

// LeaderboardResponse lists the best times of a level.
type LeaderboardResponse struct {
	Level   int                        `json:"level"`
	Entries []LeaderboardEntryResponse `json:"entries"`
}

// ResultResponse is an archived game.
type ResultResponse struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"sessionId"`
	Level      int       `json:"level"`
	Rows       int       `json:"rows"`
	Cols       int       `json:"cols"`
	Mines      int       `json:"mines"`
	Outcome    string    `json:"outcome"`
	Elapsed    int       `json:"elapsed"`
	FinishedAt time.Time `json:"finishedAt"`
}

func toResultResponse(r dmn.Result) ResultResponse {
	return ResultResponse{
		ID:         r.ID,
		SessionID:  r.SessionID,
		Level:      r.Level,
		Rows:       r.Rows,
		Cols:       r.Cols,
		Mines:      r.Mines,
		Outcome:    string(r.Outcome),
		Elapsed:    r.Elapsed,
		FinishedAt: r.FinishedAt,
	}
}
