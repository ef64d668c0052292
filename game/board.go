package game

import (
	"errors"
	"time"
)

// State is the lifecycle stage of a board.
type State int

const (
	StateGenerating State = iota
	StateInProgress
	StateWon
	StateLost
)

func (s State) String() string {
	switch s {
	case StateGenerating:
		return "generating"
	case StateInProgress:
		return "in_progress"
	case StateWon:
		return "won"
	case StateLost:
		return "lost"
	default:
		return "unknown"
	}
}

const (
	// MaxElapsed is the value at which the clock freezes.
	MaxElapsed = 999

	// DefaultEndDelay is the pause between the end of a game and its callback.
	DefaultEndDelay = 700 * time.Millisecond
)

var ErrInvalidParams = errors.New("invalid board parameters")

// Params are the inputs that define a board. Changing any of them
// regenerates the grid.
type Params struct {
	Rows     int
	Cols     int
	Level    int
	ResetKey int
}

// BoardConfig holds the settings used to create a Board.
type BoardConfig struct {
	Params     Params
	Random     Random        // Random defaults to DefaultRandom.
	EndDelay   time.Duration // EndDelay defaults to DefaultEndDelay. Negative means no delay.
	OnWin      func()        // OnWin is called once per won game.
	OnGameOver func()        // OnGameOver is called once per lost game.
}

// Board owns the cell grid of one game and applies player input to it.
// It is not safe for concurrent use; Session serializes access.
type Board struct {
	params     Params
	cells      []Cell
	state      State
	elapsed    int
	mines      int
	opened     int
	random     Random
	endDelay   time.Duration
	onWin      func()
	onGameOver func()
	pending    *time.Timer
}

// NewBoard creates a board and generates its first grid.
func NewBoard(c BoardConfig) (*Board, error) {
	if err := validate(c.Params); err != nil {
		return nil, err
	}

	b := &Board{
		params:     c.Params,
		random:     c.Random,
		endDelay:   c.EndDelay,
		onWin:      c.OnWin,
		onGameOver: c.OnGameOver,
	}
	if b.random == nil {
		b.random = DefaultRandom
	}
	if b.endDelay == 0 {
		b.endDelay = DefaultEndDelay
	}
	if b.endDelay < 0 {
		b.endDelay = 0
	}

	b.generate()
	return b, nil
}

func validate(p Params) error {
	if p.Rows <= 0 || p.Cols <= 0 {
		return ErrInvalidParams
	}
	return nil
}

// generate discards the current grid and builds a fresh one.
func (b *Board) generate() {
	b.state = StateGenerating
	b.cancelPending()

	level := LevelConfig(b.params.Level)
	total := b.params.Rows * b.params.Cols
	base := make([]Cell, total)
	for i := range base {
		base[i] = Cell{
			ID:      i,
			Index:   i,
			HasMine: b.random.Float64() < level.MineProbability(),
		}
	}

	b.cells = CalculateRadar(Shuffle(base, b.random), b.params.Rows, b.params.Cols)
	b.mines = 0
	for _, c := range b.cells {
		if c.HasMine {
			b.mines++
		}
	}
	b.opened = 0
	b.elapsed = 0
	b.state = StateInProgress
}

// SetParams regenerates the board when any of the params differ from the
// current ones. It reports whether a new grid was generated.
func (b *Board) SetParams(p Params) (bool, error) {
	if err := validate(p); err != nil {
		return false, err
	}
	if p == b.params {
		return false, nil
	}
	b.params = p
	b.generate()
	return true, nil
}

// Reset changes the reset key, which always regenerates the grid.
func (b *Board) Reset() {
	b.params.ResetKey++
	b.generate()
}

// Reveal opens the cell at index. Revealing a mine ends the game; otherwise
// zero-count regions are opened by flood fill. It reports whether the board
// changed.
func (b *Board) Reveal(index int) bool {
	if b.Over() || !b.InBounds(index) {
		return false
	}
	cell := b.cells[index]
	if cell.IsOpen || cell.HasFlag {
		return false
	}

	if cell.HasMine {
		for i := range b.cells {
			if b.cells[i].HasMine {
				b.cells[i].IsOpen = true
			}
		}
		b.finish(StateLost, b.onGameOver)
		return true
	}

	b.floodFill(index)
	if b.opened == len(b.cells)-b.mines {
		b.finish(StateWon, b.onWin)
	}
	return true
}

// floodFill opens start and expands through every connected zero-count cell.
// Numbered cells on the border are opened but not expanded.
func (b *Board) floodFill(start int) {
	stack := []int{start}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		cell := &b.cells[idx]
		if cell.IsOpen || cell.HasMine {
			continue
		}
		cell.IsOpen = true
		cell.HasFlag = false
		b.opened++

		if cell.MinesNearby != 0 {
			continue
		}
		for _, n := range neighbors(idx, b.params.Rows, b.params.Cols) {
			if !b.cells[n].IsOpen {
				stack = append(stack, n)
			}
		}
	}
}

// ToggleFlag flips the flag of a closed cell while the game is running.
func (b *Board) ToggleFlag(index int) bool {
	if b.Over() || !b.InBounds(index) || b.cells[index].IsOpen {
		return false
	}
	b.cells[index].HasFlag = !b.cells[index].HasFlag
	return true
}

// Tick advances the clock by one second. The clock only runs once a cell is
// open and the game is not over, and it stops at MaxElapsed.
func (b *Board) Tick() bool {
	if b.state != StateInProgress || b.opened == 0 || b.elapsed >= MaxElapsed {
		return false
	}
	b.elapsed++
	return true
}

func (b *Board) finish(s State, callback func()) {
	b.state = s
	if callback != nil {
		b.pending = time.AfterFunc(b.endDelay, callback)
	}
}

func (b *Board) cancelPending() {
	if b.pending != nil {
		b.pending.Stop()
		b.pending = nil
	}
}

// Close cancels an end-of-game callback that has not fired yet.
func (b *Board) Close() {
	b.cancelPending()
}

// InBounds reports whether index addresses a cell of the grid.
func (b *Board) InBounds(index int) bool {
	return index >= 0 && index < len(b.cells)
}

// Over reports whether the game was won or lost.
func (b *Board) Over() bool {
	return b.state == StateWon || b.state == StateLost
}

// MinesLeft returns the mine count minus the flags placed, never below zero.
func (b *Board) MinesLeft() int {
	return max(0, b.mines-b.Flags())
}

// Flags returns the number of flagged cells.
func (b *Board) Flags() int {
	flags := 0
	for _, c := range b.cells {
		if c.HasFlag {
			flags++
		}
	}
	return flags
}

// Cells returns a copy of the grid.
func (b *Board) Cells() []Cell {
	cells := make([]Cell, len(b.cells))
	copy(cells, b.cells)
	return cells
}

func (b *Board) Params() Params { return b.params }
func (b *Board) State() State   { return b.state }
func (b *Board) Elapsed() int   { return b.elapsed }
func (b *Board) Mines() int     { return b.mines }
