package game

import "math/rand"

// Random is a uniform [0,1) source. *rand.Rand satisfies it.
type Random interface {
	Float64() float64
}

type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }

// DefaultRandom draws from the math/rand global source.
var DefaultRandom Random = globalRandom{}

// Shuffle returns the given cells in uniformly random order with each cell's
// Index rewritten to its new position. The input slice is left untouched.
//
// A random remaining element is repeatedly removed and prepended to the
// result, which is equivalent to a Fisher-Yates shuffle.
func Shuffle(cells []Cell, rnd Random) []Cell {
	remaining := make([]Cell, len(cells))
	copy(remaining, cells)

	shuffled := make([]Cell, len(cells))
	for n := len(remaining); n > 0; n-- {
		pick := int(rnd.Float64() * float64(n))
		if pick >= n {
			pick = n - 1
		}
		shuffled[n-1] = remaining[pick]
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}

	for i := range shuffled {
		shuffled[i].Index = i
	}
	return shuffled
}
