package replay

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/lexicube/go-server/internal/puzzle"
)

type fakeDict map[string]struct{}

func (d fakeDict) Contains(word, language string) bool {
	_, ok := d[word]
	return ok
}

func dictWith(words ...string) fakeDict {
	d := make(fakeDict, len(words))
	for _, w := range words {
		d[w] = struct{}{}
	}
	return d
}

// cabPuzzle spells CAB along the x axis on left faces (z=0, no depth bonus).
func cabPuzzle() (puzzle.Puzzle, []puzzle.IndexedCubeFace) {
	var p puzzle.Puzzle
	p[0][0][0].Left = puzzle.CubeFace{Letter: "C"}
	p[1][0][0].Left = puzzle.CubeFace{Letter: "A"}
	p[2][0][0].Left = puzzle.CubeFace{Letter: "B"}
	faces := []puzzle.IndexedCubeFace{
		{Index: puzzle.LatticePoint{X: 0, Y: 0, Z: 0}, Side: puzzle.SideLeft},
		{Index: puzzle.LatticePoint{X: 1, Y: 0, Z: 0}, Side: puzzle.SideLeft},
		{Index: puzzle.LatticePoint{X: 2, Y: 0, Z: 0}, Side: puzzle.SideLeft},
	}
	return p, faces
}

func wordMove(faces []puzzle.IndexedCubeFace, score int) Move {
	return Move{PlayedAt: time.Now(), Score: score, Type: MoveType{PlayedWord: faces}}
}

func removeMove(pt puzzle.LatticePoint) Move {
	return Move{PlayedAt: time.Now(), Type: MoveType{RemovedCube: &pt}}
}

func wantReason(t *testing.T, err error, reason Reason) {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Reason != reason {
		t.Fatalf("reason = %s, want %s", verr.Reason, reason)
	}
}

func TestReplayValidWord(t *testing.T) {
	p, faces := cabPuzzle()
	total, err := Replay(p, Moves{wordMove(faces, 7)}, dictWith("CAB"), "en")
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if total != 7 {
		t.Errorf("total = %d, want 7", total)
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	p, faces := cabPuzzle()
	moves := Moves{wordMove(faces, 7)}
	dict := dictWith("CAB")
	first, err := Replay(p, moves, dict, "en")
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	second, err := Replay(p, moves, dict, "en")
	if err != nil {
		t.Fatalf("second replay failed: %v", err)
	}
	if first != second {
		t.Errorf("replays disagreed: %d then %d", first, second)
	}
}

func TestReplayScoreMismatchRejected(t *testing.T) {
	p, faces := cabPuzzle()
	_, err := Replay(p, Moves{wordMove(faces, 999)}, dictWith("CAB"), "en")
	wantReason(t, err, ReasonScoreMismatch)
}

func TestReplayWordNotInDictionary(t *testing.T) {
	p, faces := cabPuzzle()
	_, err := Replay(p, Moves{wordMove(faces, 7)}, dictWith("DOG"), "en")
	wantReason(t, err, ReasonWordNotFound)
}

func TestReplayDuplicateWordRejected(t *testing.T) {
	p, faces := cabPuzzle()
	_, err := Replay(p, Moves{wordMove(faces, 7), wordMove(faces, 7)}, dictWith("CAB"), "en")
	wantReason(t, err, ReasonDuplicateWord)
}

func TestReplayNonTouchingFacesRejected(t *testing.T) {
	var p puzzle.Puzzle
	p[0][0][0].Left = puzzle.CubeFace{Letter: "C"}
	p[2][0][0].Left = puzzle.CubeFace{Letter: "A"}
	p[2][1][0].Left = puzzle.CubeFace{Letter: "B"}
	faces := []puzzle.IndexedCubeFace{
		{Index: puzzle.LatticePoint{X: 0, Y: 0, Z: 0}, Side: puzzle.SideLeft},
		{Index: puzzle.LatticePoint{X: 2, Y: 0, Z: 0}, Side: puzzle.SideLeft},
		{Index: puzzle.LatticePoint{X: 2, Y: 1, Z: 0}, Side: puzzle.SideLeft},
	}
	_, err := Replay(p, Moves{wordMove(faces, 7)}, dictWith("CAB"), "en")
	wantReason(t, err, ReasonNotTouching)
}

func TestReplayFaceReuseRejected(t *testing.T) {
	p, faces := cabPuzzle()
	reused := []puzzle.IndexedCubeFace{faces[0], faces[1], faces[0]}
	_, err := Replay(p, Moves{wordMove(reused, 0)}, dictWith("CAC"), "en")
	wantReason(t, err, ReasonFaceReused)
}

func TestReplayShortWordRejected(t *testing.T) {
	var p puzzle.Puzzle
	p[0][0][0].Left = puzzle.CubeFace{Letter: "A"}
	p[1][0][0].Left = puzzle.CubeFace{Letter: "T"}
	faces := []puzzle.IndexedCubeFace{
		{Index: puzzle.LatticePoint{X: 0, Y: 0, Z: 0}, Side: puzzle.SideLeft},
		{Index: puzzle.LatticePoint{X: 1, Y: 0, Z: 0}, Side: puzzle.SideLeft},
	}
	_, err := Replay(p, Moves{wordMove(faces, 2)}, dictWith("AT"), "en")
	wantReason(t, err, ReasonWordTooShort)
}

func TestReplayRemovedCubeUnplayable(t *testing.T) {
	p, faces := cabPuzzle()
	moves := Moves{
		removeMove(puzzle.LatticePoint{X: 1, Y: 0, Z: 0}),
		wordMove(faces, 7),
	}
	_, err := Replay(p, moves, dictWith("CAB"), "en")
	wantReason(t, err, ReasonFaceNotPlayable)
}

func TestReplayRemoveCubeTwiceRejected(t *testing.T) {
	p, _ := cabPuzzle()
	pt := puzzle.LatticePoint{X: 0, Y: 0, Z: 0}
	_, err := Replay(p, Moves{removeMove(pt), removeMove(pt)}, dictWith(), "en")
	wantReason(t, err, ReasonCubeNotRemovable)
}

func TestReplayRemovalWithScoreRejected(t *testing.T) {
	p, _ := cabPuzzle()
	m := removeMove(puzzle.LatticePoint{X: 0, Y: 0, Z: 0})
	m.Score = 5
	_, err := Replay(p, Moves{m}, dictWith(), "en")
	wantReason(t, err, ReasonScoreMismatch)
}

func TestReplayDoesNotMutateCaller(t *testing.T) {
	p, _ := cabPuzzle()
	before := p
	_, err := Replay(p, Moves{removeMove(puzzle.LatticePoint{X: 0, Y: 0, Z: 0})}, dictWith(), "en")
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if p != before {
		t.Errorf("caller's puzzle was mutated")
	}
}

func TestMoveTypeJSONRoundTrip(t *testing.T) {
	_, faces := cabPuzzle()
	m := wordMove(faces, 7)
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Move
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back.Type.PlayedWord) != 3 || back.Type.RemovedCube != nil {
		t.Fatalf("round trip lost the playedWord variant: %+v", back.Type)
	}

	var bad MoveType
	if err := json.Unmarshal([]byte(`{}`), &bad); err == nil {
		t.Errorf("empty move type should not decode")
	}
	if err := json.Unmarshal([]byte(`{"playedWord":[],"removedCube":{"x":0,"y":0,"z":0}}`), &bad); err == nil {
		t.Errorf("double-variant move type should not decode")
	}
}

func TestGameContextJSON(t *testing.T) {
	cases := []struct {
		raw  string
		want GameContext
	}{
		{`"solo"`, GameContext{Kind: ContextSolo}},
		{`"turnBased"`, GameContext{Kind: ContextTurnBased}},
		{`{"dailyChallengeId":"abc"}`, GameContext{Kind: ContextDailyChallenge, ID: "abc"}},
		{`{"sharedGameCode":"xyz"}`, GameContext{Kind: ContextShared, ID: "xyz"}},
	}
	for _, tc := range cases {
		var c GameContext
		if err := json.Unmarshal([]byte(tc.raw), &c); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.raw, err)
		}
		if c != tc.want {
			t.Errorf("unmarshal %s = %+v, want %+v", tc.raw, c, tc.want)
		}
	}
}
