package game

// Cell represents a single position on a minesweeper grid.
type Cell struct {
	ID          int  // ID is the position the cell was created at.
	Index       int  // Index is the current flat position, row*cols + col.
	HasMine     bool // HasMine is fixed once the board is generated.
	IsOpen      bool // IsOpen reports whether the cell was revealed.
	HasFlag     bool // HasFlag reports whether the player marked the cell.
	MinesNearby int  // MinesNearby is the number of mined Moore neighbors.
}

// CellPosition is a row/column pair on a grid.
type CellPosition struct {
	Row int
	Col int
}

// position converts a flat index into a row/column pair.
func position(index, cols int) CellPosition {
	return CellPosition{Row: index / cols, Col: index % cols}
}

// neighbors returns the flat indices of the in-bound Moore neighbors of index.
func neighbors(index, rows, cols int) []int {
	pos := position(index, cols)
	result := make([]int, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			row, col := pos.Row+dr, pos.Col+dc
			if row >= 0 && row < rows && col >= 0 && col < cols {
				result = append(result, row*cols+col)
			}
		}
	}
	return result
}
