package puzzle

import "testing"

func TestIsTouching(t *testing.T) {
	cases := []struct {
		name string
		a, b IndexedCubeFace
		want bool
	}{
		{
			name: "same face never touches itself",
			a:    IndexedCubeFace{Index: LatticePoint{0, 0, 0}, Side: SideLeft},
			b:    IndexedCubeFace{Index: LatticePoint{0, 0, 0}, Side: SideLeft},
			want: false,
		},
		{
			name: "distinct sides of the same cube touch",
			a:    IndexedCubeFace{Index: LatticePoint{1, 1, 1}, Side: SideLeft},
			b:    IndexedCubeFace{Index: LatticePoint{1, 1, 1}, Side: SideTop},
			want: true,
		},
		{
			name: "faces of edge-adjacent cubes touch",
			a:    IndexedCubeFace{Index: LatticePoint{0, 0, 0}, Side: SideRight},
			b:    IndexedCubeFace{Index: LatticePoint{1, 0, 0}, Side: SideLeft},
			want: true,
		},
		{
			name: "faces of diagonal neighbors touch",
			a:    IndexedCubeFace{Index: LatticePoint{0, 0, 0}, Side: SideTop},
			b:    IndexedCubeFace{Index: LatticePoint{1, 1, 1}, Side: SideTop},
			want: true,
		},
		{
			name: "faces two cubes apart do not touch",
			a:    IndexedCubeFace{Index: LatticePoint{0, 0, 0}, Side: SideRight},
			b:    IndexedCubeFace{Index: LatticePoint{2, 0, 0}, Side: SideLeft},
			want: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.IsTouching(tc.b); got != tc.want {
				t.Errorf("IsTouching = %v, want %v", got, tc.want)
			}
			// touching is symmetric
			if got := tc.b.IsTouching(tc.a); got != tc.want {
				t.Errorf("IsTouching (reversed) = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRemoveCubeMakesFacesUnplayable(t *testing.T) {
	var p Puzzle
	pt := LatticePoint{1, 2, 0}
	for _, side := range []Side{SideLeft, SideRight, SideTop} {
		if !p.IsPlayable(IndexedCubeFace{Index: pt, Side: side}) {
			t.Fatalf("face %s should be playable before removal", side)
		}
	}
	p.RemoveCube(pt)
	for _, side := range []Side{SideLeft, SideRight, SideTop} {
		if p.IsPlayable(IndexedCubeFace{Index: pt, Side: side}) {
			t.Errorf("face %s should be unplayable after removal", side)
		}
	}
	// neighbors unaffected
	if !p.IsPlayable(IndexedCubeFace{Index: LatticePoint{1, 1, 0}, Side: SideTop}) {
		t.Errorf("neighbor face should remain playable")
	}
}

func TestIsPlayableOutOfBounds(t *testing.T) {
	var p Puzzle
	if p.IsPlayable(IndexedCubeFace{Index: LatticePoint{3, 0, 0}, Side: SideLeft}) {
		t.Errorf("out-of-bounds face should not be playable")
	}
	if p.IsPlayable(IndexedCubeFace{Index: LatticePoint{0, 0, 0}, Side: Side(7)}) {
		t.Errorf("invalid side should not be playable")
	}
}

func TestWordConcatenatesDigraph(t *testing.T) {
	var p Puzzle
	p[0][0][0].Left = CubeFace{Letter: "QU"}
	p[1][0][0].Left = CubeFace{Letter: "I"}
	p[1][1][0].Top = CubeFace{Letter: "T"}
	word := p.Word([]IndexedCubeFace{
		{Index: LatticePoint{0, 0, 0}, Side: SideLeft},
		{Index: LatticePoint{1, 0, 0}, Side: SideLeft},
		{Index: LatticePoint{1, 1, 0}, Side: SideTop},
	})
	if word != "QUIT" {
		t.Errorf("Word = %q, want %q", word, "QUIT")
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(42)
	b := Generate(42)
	if a != b {
		t.Fatalf("same seed produced different puzzles")
	}
	c := Generate(43)
	if a == c {
		t.Fatalf("different seeds produced identical puzzles")
	}
	// every face carries a letter
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			for z := 0; z < Size; z++ {
				cube := a[x][y][z]
				for _, f := range []CubeFace{cube.Left, cube.Right, cube.Top} {
					if f.Letter == "" {
						t.Fatalf("empty letter at (%d,%d,%d)", x, y, z)
					}
				}
			}
		}
	}
}
