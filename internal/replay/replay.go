// internal/replay/replay.go
//
// Server-side replay of a submitted move history.
//
// The validator walks the moves in order against its own copy of the
// starting puzzle, checking face legality, adjacency, dictionary membership,
// duplicate words, and the client-declared per-move score. Any failure
// rejects the whole submission; there is no partial credit. Replay is
// sequential, CPU-bound, and deterministic, so it runs synchronously inside
// the request handler.

package replay

import (
	"fmt"
	"strings"

	"github.com/lexicube/go-server/internal/puzzle"
	"github.com/lexicube/go-server/internal/scoring"
)

// Dictionary is the word lookup the validator needs. The dictionary package
// provides the production implementation.
type Dictionary interface {
	Contains(word, language string) bool
}

// Reason identifies why a submission failed validation.
type Reason string

const (
	ReasonMalformedMove    Reason = "malformedMove"
	ReasonFaceNotPlayable  Reason = "faceNotPlayable"
	ReasonFaceReused       Reason = "faceReused"
	ReasonNotTouching      Reason = "facesNotTouching"
	ReasonWordTooShort     Reason = "wordTooShort"
	ReasonWordNotFound     Reason = "wordNotFound"
	ReasonDuplicateWord    Reason = "duplicateWord"
	ReasonScoreMismatch    Reason = "scoreMismatch"
	ReasonCubeNotRemovable Reason = "cubeNotRemovable"
)

// ValidationError reports the first illegal move in a submission.
type ValidationError struct {
	Reason    Reason
	MoveIndex int
	Word      string // set for word-related reasons
}

func (e *ValidationError) Error() string {
	if e.Word != "" {
		return fmt.Sprintf("move %d: %s (%q)", e.MoveIndex, e.Reason, e.Word)
	}
	return fmt.Sprintf("move %d: %s", e.MoveIndex, e.Reason)
}

// minWordLength is the shortest legal word, counted in characters of the
// concatenated result (a QU tile contributes two).
const minWordLength = 3

// Replay validates moves against the starting puzzle p and returns the
// recomputed total score. p is copied; the caller's value is not mutated.
func Replay(p puzzle.Puzzle, moves Moves, dict Dictionary, language string) (int, error) {
	live := p
	played := make(map[string]struct{})
	total := 0

	for i, m := range moves {
		switch {
		case m.Type.PlayedWord != nil:
			score, word, err := replayWord(&live, m.Type.PlayedWord, i, dict, language, played)
			if err != nil {
				return 0, err
			}
			if score != m.Score {
				return 0, &ValidationError{Reason: ReasonScoreMismatch, MoveIndex: i, Word: word}
			}
			played[word] = struct{}{}
			total += score

		case m.Type.RemovedCube != nil:
			pt := *m.Type.RemovedCube
			if !pt.InBounds() || live.Cube(pt).Removed {
				return 0, &ValidationError{Reason: ReasonCubeNotRemovable, MoveIndex: i}
			}
			if m.Score != 0 {
				return 0, &ValidationError{Reason: ReasonScoreMismatch, MoveIndex: i}
			}
			live.RemoveCube(pt)

		default:
			return 0, &ValidationError{Reason: ReasonMalformedMove, MoveIndex: i}
		}
	}
	return total, nil
}

// replayWord validates one playedWord move and returns its recomputed score
// and the uppercase word.
func replayWord(
	live *puzzle.Puzzle,
	faces []puzzle.IndexedCubeFace,
	moveIndex int,
	dict Dictionary,
	language string,
	played map[string]struct{},
) (int, string, error) {
	if len(faces) == 0 {
		return 0, "", &ValidationError{Reason: ReasonMalformedMove, MoveIndex: moveIndex}
	}
	seen := make(map[puzzle.IndexedCubeFace]struct{}, len(faces))
	for j, f := range faces {
		if !live.IsPlayable(f) {
			return 0, "", &ValidationError{Reason: ReasonFaceNotPlayable, MoveIndex: moveIndex}
		}
		if _, dup := seen[f]; dup {
			return 0, "", &ValidationError{Reason: ReasonFaceReused, MoveIndex: moveIndex}
		}
		seen[f] = struct{}{}
		if j > 0 && !faces[j-1].IsTouching(f) {
			return 0, "", &ValidationError{Reason: ReasonNotTouching, MoveIndex: moveIndex}
		}
	}

	word := strings.ToUpper(live.Word(faces))
	if len(word) < minWordLength {
		return 0, word, &ValidationError{Reason: ReasonWordTooShort, MoveIndex: moveIndex, Word: word}
	}
	if !dict.Contains(word, language) {
		return 0, word, &ValidationError{Reason: ReasonWordNotFound, MoveIndex: moveIndex, Word: word}
	}
	if _, dup := played[word]; dup {
		return 0, word, &ValidationError{Reason: ReasonDuplicateWord, MoveIndex: moveIndex, Word: word}
	}
	return scoring.Score(live, faces), word, nil
}

// WordPlay pairs a played word with the score it earned.
type WordPlay struct {
	Word  string
	Score int
}

// WordsPlayed returns the uppercase words of every playedWord move, in order.
// Used to feed the vocab leaderboard after a successful replay.
func WordsPlayed(p puzzle.Puzzle, moves Moves) []WordPlay {
	live := p
	var out []WordPlay
	for _, m := range moves {
		switch {
		case m.Type.PlayedWord != nil:
			out = append(out, WordPlay{Word: strings.ToUpper(live.Word(m.Type.PlayedWord)), Score: m.Score})
		case m.Type.RemovedCube != nil:
			live.RemoveCube(*m.Type.RemovedCube)
		}
	}
	return out
}
