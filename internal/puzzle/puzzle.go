// internal/puzzle/puzzle.go
//
// Geometric model for the 3x3x3 letter cube.
// Defines:
//   - LatticePoint: a cube index within the 3x3x3 lattice.
//   - Side/CubeFace/Cube: the three letter-bearing faces of one cube.
//   - Puzzle: the full lattice, with playability and removal.
//   - IndexedCubeFace: one addressable face, with the touching predicate.
//
// A Puzzle value is cheap to copy (fixed-size array); the replay engine
// works on its own copy so the original stays untouched.

package puzzle

import "strings"

// Size is the lattice edge length. Indices run 0..Size-1 on every axis.
const Size = 3

// LatticePoint identifies one cube within the lattice.
type LatticePoint struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// InBounds reports whether every coordinate lies within the lattice.
func (p LatticePoint) InBounds() bool {
	return p.X >= 0 && p.X < Size &&
		p.Y >= 0 && p.Y < Size &&
		p.Z >= 0 && p.Z < Size
}

// chebyshev returns the largest per-axis distance between two points.
func (p LatticePoint) chebyshev(o LatticePoint) int {
	d := abs(p.X - o.X)
	if dy := abs(p.Y - o.Y); dy > d {
		d = dy
	}
	if dz := abs(p.Z - o.Z); dz > d {
		d = dz
	}
	return d
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Side selects one of a cube's three visible faces.
type Side int

const (
	SideLeft Side = iota
	SideRight
	SideTop
)

// Valid reports whether s is one of the three defined sides.
func (s Side) Valid() bool { return s >= SideLeft && s <= SideTop }

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	case SideTop:
		return "top"
	}
	return "invalid"
}

// CubeFace holds the letter on one face. Letters are uppercase and either a
// single character or the "QU" digraph.
type CubeFace struct {
	Letter string `json:"letter"`
}

// Cube is one lattice cell. Removed is runtime replay state, not part of the
// wire representation of a puzzle.
type Cube struct {
	Left    CubeFace `json:"left"`
	Right   CubeFace `json:"right"`
	Top     CubeFace `json:"top"`
	Removed bool     `json:"-"`
}

// Face returns the face for a side. Callers must pass a valid side.
func (c Cube) Face(s Side) CubeFace {
	switch s {
	case SideLeft:
		return c.Left
	case SideRight:
		return c.Right
	default:
		return c.Top
	}
}

// Puzzle is the full 3x3x3 lattice, indexed [x][y][z].
type Puzzle [Size][Size][Size]Cube

// Cube returns the cube at pt. pt must be in bounds.
func (p *Puzzle) Cube(pt LatticePoint) Cube {
	return p[pt.X][pt.Y][pt.Z]
}

// IsPlayable reports whether the face can still be selected: the index is in
// bounds, the side is valid, and the cube has not been removed.
func (p *Puzzle) IsPlayable(f IndexedCubeFace) bool {
	if !f.Index.InBounds() || !f.Side.Valid() {
		return false
	}
	return !p[f.Index.X][f.Index.Y][f.Index.Z].Removed
}

// RemoveCube marks all three faces of the cube at pt unplayable.
func (p *Puzzle) RemoveCube(pt LatticePoint) {
	if pt.InBounds() {
		p[pt.X][pt.Y][pt.Z].Removed = true
	}
}

// Word concatenates the letters of faces in order. The result is uppercase;
// a "QU" face contributes both characters.
func (p *Puzzle) Word(faces []IndexedCubeFace) string {
	var b strings.Builder
	for _, f := range faces {
		if !f.Index.InBounds() || !f.Side.Valid() {
			continue
		}
		b.WriteString(p.Cube(f.Index).Face(f.Side).Letter)
	}
	return strings.ToUpper(b.String())
}

// IndexedCubeFace addresses a single face within a puzzle.
type IndexedCubeFace struct {
	Index LatticePoint `json:"index"`
	Side  Side         `json:"side"`
}

// IsTouching reports whether two faces are adjacent for word building.
// Distinct sides of the same cube always touch. Faces of different cubes
// touch when the cubes are within Chebyshev distance 1 of each other.
// A face never touches itself.
func (f IndexedCubeFace) IsTouching(o IndexedCubeFace) bool {
	if f == o {
		return false
	}
	if f.Index == o.Index {
		return true
	}
	return f.Index.chebyshev(o.Index) <= 1
}
