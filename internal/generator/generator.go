// Package generator builds Minesweeper mine layouts that are solvable from
// a given starting cell without ever requiring a guess, by repeatedly
// perturbing a random candidate layout and checking it against the logical
// solver until one qualifies or the search budget runs out.
package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/rybkr/minegen/internal/board"
	"github.com/rybkr/minegen/internal/solver"
)

var (
	// ErrGenerationFailed means the search exhausted its iteration budget
	// without producing a layout solvable without guessing.
	ErrGenerationFailed = errors.New("failed to generate a logically solvable layout")
	// ErrInvariantViolation means the generator's own bookkeeping asked the
	// board to reveal a cell it should never have touched — a bug, not a
	// rejected candidate.
	ErrInvariantViolation = errors.New("internal invariant violation")
)

// Generator searches for a mine layout over one board shape and starting
// cell.
type Generator struct {
	b        *board.Board
	nMine    int
	start    int
	startRow int
	startCol int
	rng      *rand.Rand
	opts     *Options

	moveStack [][2]int
	classPos  [6][]int
}

// New creates a Generator for an h x w board with nMine mines, starting the
// player's first reveal at (sr, sc). rng must be non-nil; seed it from
// whatever entropy source the caller considers appropriate.
func New(h, w, sr, sc, nMine int, rng *rand.Rand, opts *Options) (*Generator, error) {
	if err := board.ValidateDims(h, w, nMine); err != nil {
		return nil, err
	}
	if sr < 0 || sr >= h || sc < 0 || sc >= w {
		return nil, fmt.Errorf("%w: start (%d,%d) out of bounds for a %dx%d board", board.ErrInvalidPosition, sr, sc, h, w)
	}
	if rng == nil {
		return nil, errors.New("generator: rng must not be nil")
	}
	if opts == nil {
		opts = DefaultOptions()
	}

	b := board.New(h, w)
	g := &Generator{
		b:        b,
		nMine:    nMine,
		startRow: sr,
		startCol: sc,
		start:    b.Index(sr, sc),
		rng:      rng,
		opts:     opts,
	}
	g.genInitial()
	return g, nil
}

// Board returns the board the generator is building a layout on. Its mine
// layout is only meaningful after a successful Generate.
func (g *Generator) Board() *board.Board {
	return g.b
}

// MoveStack returns the forced-safe reveals, after the start cell, that a
// successful Generate accumulated, in the order they were played.
func (g *Generator) MoveStack() [][2]int {
	return g.moveStack
}

// inStartWindow reports whether pos lies within the 3x3 window centered on
// the start cell (including the start cell itself), which must always stay
// mine-free.
func (g *Generator) inStartWindow(pos int) bool {
	dr := pos/g.b.W - g.start/g.b.W
	if dr < 0 {
		dr = -dr
	}
	dc := pos%g.b.W - g.start%g.b.W
	if dc < 0 {
		dc = -dc
	}
	return dr <= 1 && dc <= 1
}

// genInitial lays down a fresh random mine layout via reservoir sampling
// over every cell outside the start window, leaving the start window itself
// always clear.
func (g *Generator) genInitial() {
	sz := g.b.Size()
	left := 0
	for x := 0; x < sz; x++ {
		if !g.inStartWindow(x) {
			left++
		}
	}

	remaining := g.nMine
	for x := 0; x < sz; x++ {
		if g.inStartWindow(x) {
			g.b.SetMine(x, false)
			continue
		}
		mine := g.rng.Float64() < float64(remaining)/float64(left)
		g.b.SetMine(x, mine)
		if mine {
			remaining--
		}
		left--
	}
}

func (g *Generator) reveal(pos int) (int, error) {
	revealed, err := g.b.Reveal(pos)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvariantViolation, err)
	}
	return len(revealed), nil
}

// class indices for shift's covered/revealed cell buckets. Index 1 is never
// populated — mirrored faithfully from the bucket scheme this was ported
// from, where exchange(0, 2)/exchange(0, 4) only ever land on class 0.
const (
	classRevealedFar = iota
	classRevealedFarMine
	classInteriorClear
	classInteriorMine
	classPerimeterClear
	classPerimeterMine
)

// shift perturbs the mine layout within bbox by swapping mine status
// between two randomly chosen cells drawn from weighted classes, k times.
// Reports whether any exchange actually happened.
func (g *Generator) shift(k int, bbox [4]int) bool {
	for i := range g.classPos {
		g.classPos[i] = g.classPos[i][:0]
	}

	r1, r2, c1, c2 := bbox[0], bbox[1], bbox[2], bbox[3]
	for r := r1; r <= r2; r++ {
		for c := c1; c <= c2; c++ {
			i := g.b.Index(r, c)
			if g.inStartWindow(i) {
				continue
			}
			if g.b.Known(i) != board.Covered {
				g.classPos[classRevealedFar] = append(g.classPos[classRevealedFar], i)
				continue
			}

			perimeter := false
			for _, nb := range g.b.Neighbors(i) {
				if g.b.Known(int(nb)) != board.Covered {
					perimeter = true
					break
				}
			}
			class := classInteriorClear
			if perimeter {
				class = classPerimeterClear
			}
			if g.b.IsMine(i) {
				class++
			}
			g.classPos[class] = append(g.classPos[class], i)
		}
	}

	exchange := func(a, b int) bool {
		if g.rng.Intn(2) == 1 {
			a++
		} else {
			b++
		}
		if len(g.classPos[a]) == 0 || len(g.classPos[b]) == 0 {
			return false
		}
		i := g.rng.Intn(len(g.classPos[a]))
		j := g.rng.Intn(len(g.classPos[b]))
		pa, pb := g.classPos[a][i], g.classPos[b][j]
		g.b.SetMine(pa, !g.b.IsMine(pa))
		g.b.SetMine(pb, !g.b.IsMine(pb))
		g.classPos[a][i], g.classPos[b][j] = pb, pa
		return true
	}

	swapped := false
	for ; k > 0; k-- {
		v := g.rng.Intn(21)
		// The second branch is deliberately not an "else if" of the first:
		// for v < 12 it always fires in addition, so two exchanges can
		// land in the same step. Preserved as found in the source this was
		// ported from rather than "corrected" to three mutually exclusive
		// bands.
		if v < 3 {
			if exchange(classRevealedFar, classInteriorClear) {
				swapped = true
			}
		} else if v < 6 {
			if exchange(classRevealedFar, classPerimeterClear) {
				swapped = true
			}
		}
		if v < 12 {
			if exchange(classInteriorClear, classInteriorClear) {
				swapped = true
			}
		} else {
			if exchange(classInteriorClear, classPerimeterClear) {
				swapped = true
			}
		}
	}
	return swapped
}

// Generate searches for a mine layout solvable from the start cell without
// guessing. On success the board returned by Board holds that layout and
// nil is returned. ErrGenerationFailed means the search budget ran out;
// any other error means the search was aborted (context cancellation or an
// internal invariant violation).
func (g *Generator) Generate(ctx context.Context) error {
	s := solver.New(g.b, g.nMine, nil)
	g.moveStack = g.moveStack[:0]

	windowSize := min(g.b.H, g.b.W, 5)
	badAttempts := 0

	for iter := 0; iter < g.opts.MaxIterations; iter++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r1 := g.rng.Intn(g.b.H - windowSize + 1)
		r2 := r1 + windowSize - 1
		c1 := g.rng.Intn(g.b.W - windowSize + 1)
		c2 := c1 + windowSize - 1

		g.b.ResetKnown()
		nKnown, err := g.reveal(g.start)
		if err != nil {
			return err
		}
		for _, mv := range g.moveStack {
			pos := g.b.Index(mv[0], mv[1])
			if g.b.Known(pos) != board.Covered {
				continue
			}
			n, err := g.reveal(pos)
			if err != nil {
				return err
			}
			nKnown += n
		}

		if nKnown == g.b.Size()-g.nMine {
			return nil
		}

		s.SetKnown(g.b.KnownSnapshot())
		var toCheck []int
		for _, pos := range s.Frontier() {
			if g.b.IsMine(pos) {
				continue
			}
			row, col := g.b.RowCol(pos)
			if row >= r1 && row <= r2 && col >= c1 && col <= c2 {
				toCheck = append(toCheck, pos)
			}
		}

		oldMines := g.b.Mines().Clone()

		if len(toCheck) == 0 {
			if !g.shift(1, [4]int{0, g.b.H - 1, 0, g.b.W - 1}) {
				continue
			}
		} else {
			for attempt := 0; attempt < g.opts.MaxShiftAttempts; attempt++ {
				if !g.shift(2, [4]int{r1, r2, c1, c2}) {
					continue
				}

				g.b.ResetKnown()
				if _, err := g.reveal(g.start); err != nil {
					return err
				}
				cleanReplay := true
				for _, mv := range g.moveStack {
					pos := g.b.Index(mv[0], mv[1])
					if g.b.Known(pos) != board.Covered {
						continue
					}
					if g.b.IsMine(pos) {
						cleanReplay = false
						break
					}
					if _, err := g.reveal(pos); err != nil {
						return err
					}
				}
				if !cleanReplay {
					continue
				}

				s.SetKnown(g.b.KnownSnapshot())
				stillAmbiguous := false
				for _, x := range toCheck {
					if !s.CanBeMine(x) {
						stillAmbiguous = true
						break
					}
				}
				if !stillAmbiguous {
					break
				}
			}
		}

		g.b.ResetKnown()
		nKnown, err = g.reveal(g.start)
		if err != nil {
			return err
		}

		bad := false
		for _, mv := range g.moveStack {
			pos := g.b.Index(mv[0], mv[1])
			if g.b.Known(pos) != board.Covered {
				continue
			}
			if g.b.IsMine(pos) {
				bad = true
				break
			}
			s.SetKnown(g.b.KnownSnapshot())
			if s.CanBeMine(pos) {
				bad = true
				break
			}
			n, err := g.reveal(pos)
			if err != nil {
				return err
			}
			nKnown += n
		}

		if bad {
			badAttempts++
			if badAttempts > g.opts.MaxBadAttempts {
				badAttempts = 0
				g.genInitial()
				g.moveStack = g.moveStack[:0]
				continue
			}
			g.b.SetMines(oldMines)
			continue
		}

		if nKnown == g.b.Size()-g.nMine {
			return nil
		}

		for {
			s.SetKnown(g.b.KnownSnapshot())

			candidates := s.Frontier()
			if out := s.OutsidePerimeter(); out != -1 {
				candidates = append([]int{out}, candidates...)
			}

			played := false
			for _, x := range candidates {
				if g.b.Known(x) != board.Covered || g.b.IsMine(x) || s.CanBeMine(x) {
					continue
				}
				played = true
				row, col := g.b.RowCol(x)
				g.moveStack = append(g.moveStack, [2]int{row, col})
				n, err := g.reveal(x)
				if err != nil {
					return err
				}
				nKnown += n
				break
			}
			if !played {
				break
			}
			if nKnown == g.b.Size()-g.nMine {
				return nil
			}
		}
	}

	return ErrGenerationFailed
}
