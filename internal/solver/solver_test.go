package solver

import (
	"testing"

	"github.com/rybkr/minegen/internal/board"
)

func TestSolveEmpty(t *testing.T) {
	b := board.New(2, 2)
	s := New(b, 1, nil)
	known := []int8{board.Covered, board.Covered, board.Covered, board.Covered}
	s.SetKnown(known)

	res, pos := s.Solve()
	if res != ResultEmpty || pos != -1 {
		t.Fatalf("Solve() = (%v, %d), want (ResultEmpty, -1)", res, pos)
	}
}

func TestSolveAlreadySolved(t *testing.T) {
	b := board.New(2, 2)
	s := New(b, 3, nil)
	known := []int8{1, board.Covered, board.Covered, board.Covered}
	s.SetKnown(known)

	res, pos := s.Solve()
	if res != ResultSolved || pos != -1 {
		t.Fatalf("Solve() = (%v, %d), want (ResultSolved, -1)", res, pos)
	}
}

// TestSolveUnsolvable revealed a corner cell claiming 3 adjacent mines on a
// single row, where the cell has only one coverable neighbor at all —
// contradictory under any layout.
func TestSolveUnsolvable(t *testing.T) {
	b := board.New(1, 3)
	s := New(b, 1, nil)
	known := []int8{3, board.Covered, board.Covered}
	s.SetKnown(known)

	res, _ := s.Solve()
	if res != ResultUnsolvable {
		t.Fatalf("Solve() result = %v, want ResultUnsolvable", res)
	}
}

// TestSolveForcedSafeCell sets up the classic three-clue deduction:
//
//	1 2 1
//	? ? ?
//
// with exactly 2 mines total. The 1-2-1 row forces mines at the two outer
// covered cells and proves the middle one safe, without ever reaching
// n_mine >= n_empty.
func TestSolveForcedSafeCell(t *testing.T) {
	b := board.New(2, 3)
	s := New(b, 2, nil)
	known := []int8{
		1, 2, 1,
		board.Covered, board.Covered, board.Covered,
	}
	s.SetKnown(known)

	res, pos := s.Solve()
	if res != ResultSafeCell {
		t.Fatalf("Solve() result = %v, want ResultSafeCell", res)
	}
	wantPos := b.Index(1, 1)
	if pos != wantPos {
		t.Fatalf("Solve() safe pos = %d, want %d (the middle covered cell)", pos, wantPos)
	}
}

// TestSolveMustGuess covers a single revealed corner clue with three
// equally-likely covered neighbors and exactly one mine among them: no
// cell can be proven safe, and every one of them can be mined.
func TestSolveMustGuess(t *testing.T) {
	b := board.New(2, 2)
	s := New(b, 1, nil)
	known := []int8{1, board.Covered, board.Covered, board.Covered}
	s.SetKnown(known)

	res, pos := s.Solve()
	if res != ResultMustGuess || pos != -1 {
		t.Fatalf("Solve() = (%v, %d), want (ResultMustGuess, -1)", res, pos)
	}

	for _, p := range []int{1, 2, 3} {
		if !s.CanBeMine(p) {
			t.Errorf("CanBeMine(%d) = false, want true under an ambiguous 1-in-3 clue", p)
		}
	}
}

// TestCanBeMineAfterForcedDeduction re-checks the 1-2-1 scenario directly
// against CanBeMine: the two outer cells must be minable, the forced-safe
// middle cell must not be.
func TestCanBeMineAfterForcedDeduction(t *testing.T) {
	b := board.New(2, 3)
	s := New(b, 2, nil)
	known := []int8{
		1, 2, 1,
		board.Covered, board.Covered, board.Covered,
	}
	s.SetKnown(known)

	left, mid, right := b.Index(1, 0), b.Index(1, 1), b.Index(1, 2)
	if !s.CanBeMine(left) {
		t.Error("CanBeMine(left) = false, want true")
	}
	if !s.CanBeMine(right) {
		t.Error("CanBeMine(right) = false, want true")
	}
	if s.CanBeMine(mid) {
		t.Error("CanBeMine(mid) = true, want false (proven safe)")
	}
}

// TestDecomposeSplitsIntoComponents checks that two frontier cells with no
// path of covered/revealed steps between them come back as separate parts.
func TestDecomposeSplitsIntoComponents(t *testing.T) {
	b := board.New(3, 3)
	s := New(b, 1, nil)
	known := make([]int8, 9)
	for i := range known {
		known[i] = board.Covered
	}
	s.SetKnown(known)

	state := State{newCell(TagDecide, 0), newCell(TagDecide, 8)}
	parts := s.decompose(state)
	if len(parts) != 2 {
		t.Fatalf("decompose() returned %d parts, want 2", len(parts))
	}
	for _, p := range parts {
		if len(p) != 1 {
			t.Errorf("part %v has %d cells, want 1", p, len(p))
		}
	}
}

func TestFrontierMatchesDecideCells(t *testing.T) {
	b := board.New(2, 3)
	s := New(b, 2, nil)
	known := []int8{
		1, 2, 1,
		board.Covered, board.Covered, board.Covered,
	}
	s.SetKnown(known)

	frontier := s.Frontier()
	if len(frontier) != 3 {
		t.Fatalf("Frontier() len = %d, want 3", len(frontier))
	}
}

func TestOutsidePerimeter(t *testing.T) {
	b := board.New(1, 3)
	s := New(b, 1, nil)
	known := []int8{0, board.Covered, board.Covered}
	s.SetKnown(known)

	// The 0-clue flood-fills nothing here since SetKnown takes the known
	// slice as given; position 2 has no revealed neighbor of its own
	// (only position 1, which is covered), so it sits outside the
	// frontier entirely.
	if got := s.OutsidePerimeter(); got != 2 {
		t.Fatalf("OutsidePerimeter() = %d, want 2", got)
	}
}
