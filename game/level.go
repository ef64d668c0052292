package game

const (
	MinLevel = 1
	MaxLevel = 3
)

// Level describes the board size and mine density of a level.
type Level struct {
	Number     int // Number is the level selector, 1 to 3.
	Rows       int // Rows is the default number of grid rows.
	Cols       int // Cols is the default number of grid columns.
	Difficulty int // Difficulty is the inverse mine probability per cell.
}

// MineProbability returns the chance that a single cell holds a mine.
func (l Level) MineProbability() float64 {
	return 1 / float64(l.Difficulty)
}

var levels = map[int]Level{
	1: {Number: 1, Rows: 6, Cols: 6, Difficulty: 7},
	2: {Number: 2, Rows: 8, Cols: 8, Difficulty: 6},
	3: {Number: 3, Rows: 10, Cols: 10, Difficulty: 5},
}

// LevelConfig returns the table entry for level. Any level outside the table
// uses the hardest density and the largest board.
func LevelConfig(level int) Level {
	if l, ok := levels[level]; ok {
		return l
	}
	l := levels[MaxLevel]
	l.Number = level
	return l
}

// NextLevel returns the level that follows a won level. After the last level
// the campaign is complete and play restarts from the first level.
func NextLevel(level int) (next int, campaignComplete bool) {
	if level < MaxLevel {
		return level + 1, false
	}
	return MinLevel, true
}
