package game

// CalculateRadar returns a copy of cells where every non-mine cell's
// MinesNearby is increased by the number of mined cells in its Moore
// neighborhood. Counts accumulate onto the input, so it must run once on a
// fresh board.
func CalculateRadar(cells []Cell, rows, cols int) []Cell {
	updated := make([]Cell, len(cells))
	copy(updated, cells)

	for _, cell := range cells {
		if !cell.HasMine {
			continue
		}
		for _, n := range neighbors(cell.Index, rows, cols) {
			if n >= len(updated) || updated[n].HasMine {
				continue
			}
			updated[n].MinesNearby++
		}
	}
	return updated
}
