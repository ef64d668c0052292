package game

// Visible states of a cell in a snapshot.
const (
	CellHidden  = "hidden"
	CellFlagged = "flagged"
	CellOpen    = "open"
	CellMine    = "mine"
)

// CellView is what a player is allowed to know about a cell.
type CellView struct {
	Index       int
	State       string
	MinesNearby int
}

// Snapshot is a read-only projection of a board. Unopened mines are never
// exposed. Version orders the snapshots of a session; a bare board leaves it
// at zero.
type Snapshot struct {
	Version   uint64
	Rows      int
	Cols      int
	Level     int
	State     State
	Elapsed   int
	Mines     int
	MinesLeft int
	Cells     []CellView
}

// Snapshot captures the current board as seen by a player.
func (b *Board) Snapshot() Snapshot {
	views := make([]CellView, len(b.cells))
	for i, c := range b.cells {
		view := CellView{Index: c.Index, State: CellHidden}
		switch {
		case c.IsOpen && c.HasMine:
			view.State = CellMine
		case c.IsOpen:
			view.State = CellOpen
			view.MinesNearby = c.MinesNearby
		case c.HasFlag:
			view.State = CellFlagged
		}
		views[i] = view
	}

	return Snapshot{
		Rows:      b.params.Rows,
		Cols:      b.params.Cols,
		Level:     b.params.Level,
		State:     b.state,
		Elapsed:   b.elapsed,
		Mines:     b.mines,
		MinesLeft: b.MinesLeft(),
		Cells:     views,
	}
}
