// internal/puzzle/generate.go
//
// Deterministic puzzle generation. The daily challenge needs every server
// replica to derive the same puzzle from the same seed, so generation uses a
// plain seeded PRNG over a fixed letter distribution.

package puzzle

import "math/rand"

// letterDistribution weights how often each tile appears on generated cubes.
// Roughly follows English letter frequency; "QU" replaces the bare Q tile.
var letterDistribution = []struct {
	letter string
	weight int
}{
	{"A", 8}, {"B", 2}, {"C", 3}, {"D", 4}, {"E", 12}, {"F", 2},
	{"G", 3}, {"H", 3}, {"I", 8}, {"J", 1}, {"K", 1}, {"L", 5},
	{"M", 3}, {"N", 6}, {"O", 7}, {"P", 3}, {"QU", 1}, {"R", 6},
	{"S", 6}, {"T", 7}, {"U", 3}, {"V", 1}, {"W", 2}, {"X", 1},
	{"Y", 2}, {"Z", 1},
}

var distributionTotal = func() int {
	total := 0
	for _, d := range letterDistribution {
		total += d.weight
	}
	return total
}()

// Generate builds a puzzle from seed. Identical seeds always yield identical
// puzzles; the daily challenge relies on this.
func Generate(seed int64) Puzzle {
	rng := rand.New(rand.NewSource(seed))
	var p Puzzle
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			for z := 0; z < Size; z++ {
				p[x][y][z] = Cube{
					Left:  CubeFace{Letter: drawLetter(rng)},
					Right: CubeFace{Letter: drawLetter(rng)},
					Top:   CubeFace{Letter: drawLetter(rng)},
				}
			}
		}
	}
	return p
}

// drawLetter picks one tile according to the weighted distribution.
func drawLetter(rng *rand.Rand) string {
	n := rng.Intn(distributionTotal)
	for _, d := range letterDistribution {
		n -= d.weight
		if n < 0 {
			return d.letter
		}
	}
	return "E"
}
