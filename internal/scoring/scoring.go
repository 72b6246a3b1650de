// internal/scoring/scoring.go
//
// Pure scoring function for a played word. The score of an ordered face
// selection is:
//
//	sum(letter values) * lengthMultiplier(word length) + sum(face depth)
//
// The depth bonus rewards letters dug out of the lower layers of the cube
// (the Z coordinate of each face's cube, 0..2). All tables are fixed
// constants: the client and server must agree byte for byte, because the
// server replays submitted games and rejects any score it cannot reproduce.

package scoring

import "github.com/lexicube/go-server/internal/puzzle"

// letterValues maps a tile to its point value. "QU" is a single tile worth
// the combined Q+U value.
var letterValues = map[string]int{
	"A": 1, "B": 3, "C": 3, "D": 2, "E": 1, "F": 4,
	"G": 2, "H": 4, "I": 1, "J": 8, "K": 5, "L": 1,
	"M": 3, "N": 1, "O": 1, "P": 3, "QU": 11, "R": 1,
	"S": 1, "T": 1, "U": 1, "V": 4, "W": 4, "X": 8,
	"Y": 4, "Z": 10,
}

// LetterValue returns the point value of a tile, or 0 for an unknown tile.
func LetterValue(letter string) int {
	return letterValues[letter]
}

// lengthMultiplier scales the raw letter sum by word length. Words shorter
// than three letters are not legal and score zero.
func lengthMultiplier(n int) int {
	switch {
	case n < 3:
		return 0
	case n <= 4:
		return 1
	case n == 5:
		return 2
	case n == 6:
		return 3
	case n == 7:
		return 4
	default:
		return 5
	}
}

// Score computes the point value of playing faces, in order, on p.
// Deterministic: identical input always yields identical output.
func Score(p *puzzle.Puzzle, faces []puzzle.IndexedCubeFace) int {
	letters := 0
	depth := 0
	length := 0
	for _, f := range faces {
		letter := p.Cube(f.Index).Face(f.Side).Letter
		letters += letterValues[letter]
		depth += f.Index.Z
		length += len(letter)
	}
	return letters*lengthMultiplier(length) + depth
}
