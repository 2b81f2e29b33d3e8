// Package solver implements the logical Minesweeper solver: given a board's
// currently revealed clues, it decides whether a covered cell could
// possibly hide a mine under any mine layout consistent with those clues,
// and picks a cell it can prove safe to reveal next. It has no notion of
// randomness or of the true mine layout — only of what the clues logically
// permit.
package solver

import (
	"math"
	"slices"

	"github.com/rybkr/minegen/internal/board"
)

// Result classifies the outcome of a Solve call.
type Result int

const (
	// ResultEmpty means no cell has been revealed yet.
	ResultEmpty Result = iota
	// ResultSolved means no covered cell remains that isn't certainly a
	// mine; nothing further can or need be deduced.
	ResultSolved
	// ResultUnsolvable means the given clues are inconsistent with the
	// board's mine count under any layout.
	ResultUnsolvable
	// ResultSafeCell means a covered cell was proven mine-free; its
	// position is returned alongside.
	ResultSafeCell
	// ResultMustGuess means no covered cell could be proven safe.
	ResultMustGuess
)

// Solver reasons about one board's revealed clues against a fixed total
// mine count. It is not safe for concurrent use, and keeps scratch buffers
// sized to the board across calls to avoid reallocating on every query.
type Solver struct {
	b     *board.Board
	nMine int

	known     []int8
	cellEpoch []int
	curEpoch  int
	visited   []int
	visitID   int
	tmpIdx    []int
	tmpMsk    []int
	tmpCount  []int
	liveY     []int
	dfsStack  []int
	cache     *stateCache

	state            State
	nEmpty           int
	nOutside         int
	outsidePerimeter int
}

// New creates a Solver over b with the board's fixed total mine count.
func New(b *board.Board, nMine int, opts *Options) *Solver {
	if opts == nil {
		opts = DefaultOptions()
	}
	sz := b.Size()
	s := &Solver{
		b:         b,
		nMine:     nMine,
		known:     make([]int8, sz),
		cellEpoch: make([]int, sz),
		visited:   make([]int, sz),
		tmpIdx:    make([]int, sz),
		tmpMsk:    make([]int, sz),
		tmpCount:  make([]int, sz),
		cache:     newStateCache(opts.MaxCacheEntries),
	}
	for i := range s.known {
		s.known[i] = board.Covered
	}
	for i := range s.visited {
		s.visited[i] = -1
	}
	for i := range s.tmpIdx {
		s.tmpIdx[i] = -1
	}
	s.outsidePerimeter = -1
	return s
}

func (s *Solver) markIndex(state State) {
	for i, c := range state {
		s.tmpIdx[c.Pos()] = i
	}
}

func (s *Solver) clearIndex(state State) {
	for _, c := range state {
		s.tmpIdx[c.Pos()] = -1
	}
}

// Frontier returns the positions of the solver's current Decide cells, in
// the order the last SetKnown produced them.
func (s *Solver) Frontier() []int {
	out := make([]int, len(s.state))
	for i, c := range s.state {
		out[i] = c.Pos()
	}
	return out
}

// OutsidePerimeter returns a covered cell with no revealed 8-neighbor, or -1
// if none exists.
func (s *Solver) OutsidePerimeter() int {
	return s.outsidePerimeter
}

// NEmpty returns the number of currently covered cells.
func (s *Solver) NEmpty() int {
	return s.nEmpty
}

// SetKnown updates the solver's view of the board's revealed clues and
// rebuilds its frontier: the set of covered cells 8-adjacent to a revealed
// cell. Cells that changed since the previous call (and their neighbors)
// get a fresh epoch stamp, which the probability cache uses to tell a stale
// hit from a valid one.
func (s *Solver) SetKnown(known []int8) {
	s.curEpoch++
	sz := s.b.Size()
	for i := 0; i < sz; i++ {
		if s.known[i] != known[i] {
			s.cellEpoch[i] = s.curEpoch
			for _, y := range s.b.Neighbors(i) {
				s.cellEpoch[int(y)] = s.curEpoch
			}
			s.known[i] = known[i]
		}
	}

	s.state = s.state[:0]
	s.nEmpty, s.nOutside = 0, 0
	s.outsidePerimeter = -1

	s.visitID = 0
	for i := range s.visited {
		s.visited[i] = -1
	}

	for i := 0; i < sz; i++ {
		if s.known[i] == board.Covered {
			s.nEmpty++
		}
		if s.visited[i] == s.visitID || s.known[i] == board.Covered {
			continue
		}

		s.dfsStack = s.dfsStack[:0]
		s.dfsStack = append(s.dfsStack, i)
		s.visited[i] = s.visitID

		for len(s.dfsStack) > 0 {
			x := s.dfsStack[len(s.dfsStack)-1]
			s.dfsStack = s.dfsStack[:len(s.dfsStack)-1]
			for _, y32 := range s.b.Neighbors(x) {
				y := int(y32)
				if s.visited[y] == s.visitID {
					continue
				}
				if s.known[y] != board.Covered {
					s.dfsStack = append(s.dfsStack, y)
				} else {
					s.state = append(s.state, newCell(TagDecide, y))
				}
				s.visited[y] = s.visitID
			}
		}
	}
	// Every frontier cell carries TagDecide, so sorting the packed cells
	// orders them row-major by position.
	slices.Sort(s.state)

	for i := 0; i < sz; i++ {
		if s.known[i] == board.Covered && s.visited[i] != s.visitID {
			s.outsidePerimeter = i
			s.nOutside++
		}
	}
}

// CanBeMine reports whether pos could be mined under some layout consistent
// with the solver's current clues. pos may be a frontier cell or, via
// OutsidePerimeter, a cell with no revealed neighbor at all.
func (s *Solver) CanBeMine(pos int) bool {
	idx := -1
	for i, c := range s.state {
		if c.Pos() == pos {
			idx = i
			break
		}
	}

	var original Cell
	if idx != -1 {
		original = s.state[idx]
		s.state[idx] = s.state[idx].WithTag(TagMine)
	}

	probs := s.check(s.state)

	if idx != -1 {
		s.state[idx] = original
	}

	lo := s.nMine - s.nOutside
	if idx != -1 {
		lo--
	}
	if lo < 0 {
		lo = 0
	}
	hi := s.nMine
	if hi > len(probs) {
		hi = len(probs)
	}

	for i := lo; i < hi; i++ {
		if !math.IsInf(probs[i], -1) {
			return true
		}
	}
	return false
}

// Solve decides the board's next move from its current clues: whether
// nothing is revealed yet, whether the board is fully determined,
// whether the clues are contradictory, or a single covered cell proven
// mine-free.
func (s *Solver) Solve() (Result, int) {
	s.SetKnown(s.known)

	if s.nEmpty == s.b.Size() {
		return ResultEmpty, -1
	}
	if s.nMine >= s.nEmpty || len(s.state) == 0 {
		return ResultSolved, -1
	}

	minOnPerimeter := s.nMine - s.nOutside
	if minOnPerimeter < 0 {
		minOnPerimeter = 0
	}

	probs := s.check(s.state)
	possible := false
	hi := s.nMine
	for i := minOnPerimeter; i < hi && i < len(probs); i++ {
		if !math.IsInf(probs[i], -1) {
			possible = true
			break
		}
	}
	if !possible && (len(probs) <= s.nMine || math.IsInf(probs[s.nMine], -1)) {
		return ResultUnsolvable, -1
	}

	if s.outsidePerimeter != -1 {
		hiOut := s.nMine - 1
		if hiOut > len(probs)-1 {
			hiOut = len(probs) - 1
		}
		impossibleOnPerimeter := true
		for i := minOnPerimeter; i <= hiOut; i++ {
			if !math.IsInf(probs[i], -1) {
				impossibleOnPerimeter = false
				break
			}
		}
		if impossibleOnPerimeter {
			return ResultSafeCell, s.outsidePerimeter
		}
	}

	for i := range s.state {
		orig := s.state[i]
		s.state[i] = s.state[i].WithTag(TagMine)
		res := s.check(s.state)
		s.state[i] = orig

		lo := minOnPerimeter - 1
		if lo < 0 {
			lo = 0
		}
		hiRes := s.nMine - 1
		if hiRes > len(res)-1 {
			hiRes = len(res) - 1
		}

		stillPossible := false
		for j := lo; j <= hiRes; j++ {
			if !math.IsInf(res[j], -1) {
				stillPossible = true
				break
			}
		}
		if !stillPossible {
			return ResultSafeCell, orig.Pos()
		}
	}

	return ResultMustGuess, -1
}
