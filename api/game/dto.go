// Package gameapi exposes minesweeper sessions over HTTP and WebSocket.
package gameapi

import (
	"github.com/beka-birhanu/vinom-mines/game"
	"github.com/google/uuid"
)

// NewGameRequest starts a session. Omitted rows or cols take the level's
// default size.
type NewGameRequest struct {
	Level int `json:"level" binding:"required,min=1,max=3"`
	Rows  int `json:"rows" binding:"omitempty,min=1,max=30"`
	Cols  int `json:"cols" binding:"omitempty,min=1,max=30"`
}

// ConfigureRequest changes the level or size of a running session.
type ConfigureRequest NewGameRequest

// CellRequest targets a single cell by its flat index.
type CellRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

// CellResponse is what a player may see of a cell.
type CellResponse struct {
	Index       int    `json:"index"`
	State       string `json:"state"`
	MinesNearby int    `json:"minesNearby,omitempty"`
}

// GameResponse is the public view of a board.
type GameResponse struct {
	Version   uint64         `json:"version"`
	Rows      int            `json:"rows"`
	Cols      int            `json:"cols"`
	Level     int            `json:"level"`
	State     string         `json:"state"`
	Elapsed   int            `json:"elapsed"`
	Mines     int            `json:"mines"`
	MinesLeft int            `json:"minesLeft"`
	Cells     []CellResponse `json:"cells"`
}

// NewGameResponse carries the session id and the token that grants access to it.
type NewGameResponse struct {
	ID    uuid.UUID     `json:"id"`
	Token string        `json:"token"`
	Game  *GameResponse `json:"game"`
}

// AdvanceResponse is the board of the next level.
type AdvanceResponse struct {
	CampaignComplete bool          `json:"campaignComplete"`
	Game             *GameResponse `json:"game"`
}

// EventMessage is pushed to WebSocket clients.
type EventMessage struct {
	Type string        `json:"type"`
	Game *GameResponse `json:"game"`
}

func toGameResponse(s game.Snapshot) *GameResponse {
	cells := make([]CellResponse, len(s.Cells))
	for i, c := range s.Cells {
		cells[i] = CellResponse{
			Index:       c.Index,
			State:       c.State,
			MinesNearby: c.MinesNearby,
		}
	}

	return &GameResponse{
		Version:   s.Version,
		Rows:      s.Rows,
		Cols:      s.Cols,
		Level:     s.Level,
		State:     s.State.String(),
		Elapsed:   s.Elapsed,
		Mines:     s.Mines,
		MinesLeft: s.MinesLeft,
		Cells:     cells,
	}
}
