// Package board implements the Minesweeper grid: the authoritative mine
// layout, the player-visible "known" map, 8-neighborhood geometry, and
// flood-fill reveal. It has no notion of solving or generation.
package board

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Special known-cell values.
const (
	Covered     int8 = -1
	InvalidCell      = -1
)

// Board represents an H*W Minesweeper grid.
type Board struct {
	H, W, sz int

	// mines is the authoritative layout — a bit per cell, set iff the cell
	// is mined. A bitset keeps a 2500-cell board to a few hundred bytes and
	// clones cheaply, which matters since the generator clones it on every
	// search iteration and perturbs it on every shift attempt.
	mines *bitset.BitSet

	// known holds, per cell, Covered or the revealed adjacent-mine count
	// 0..8.
	known []int8

	// neighbors[pos] lists the (up to 8) positions 8-adjacent to pos,
	// precomputed once at construction since H and W never change.
	neighbors [][]int32

	coveredCount int
}

// New creates an H*W board with all cells covered and no mines.
func New(h, w int) *Board {
	sz := h * w
	b := &Board{
		H: h, W: w, sz: sz,
		mines:        bitset.New(uint(sz)),
		known:        make([]int8, sz),
		neighbors:    make([][]int32, sz),
		coveredCount: sz,
	}
	for pos := range sz {
		b.known[pos] = Covered
	}
	b.buildNeighbors()
	return b
}

// buildNeighbors fills the precomputed 8-neighborhood adjacency lists.
func (b *Board) buildNeighbors() {
	for r := 0; r < b.H; r++ {
		for c := 0; c < b.W; c++ {
			pos := b.Index(r, c)
			var ns []int32
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					if dr == 0 && dc == 0 {
						continue
					}
					nr, nc := r+dr, c+dc
					if nr < 0 || nr >= b.H || nc < 0 || nc >= b.W {
						continue
					}
					ns = append(ns, int32(b.Index(nr, nc)))
				}
			}
			b.neighbors[pos] = ns
		}
	}
}

// Index transforms a row and column into a linear position.
func (b *Board) Index(row, col int) int {
	return row*b.W + col
}

// RowCol is the inverse of Index.
func (b *Board) RowCol(pos int) (row, col int) {
	return pos / b.W, pos % b.W
}

// IsAdjacent reports whether two distinct positions are 8-adjacent.
func IsAdjacent(x, y, w int) bool {
	if x == y {
		return false
	}
	dr := x/w - y/w
	dc := x%w - y%w
	return dr >= -1 && dr <= 1 && dc >= -1 && dc <= 1
}

// Neighbors returns the positions 8-adjacent to pos.
func (b *Board) Neighbors(pos int) []int32 {
	return b.neighbors[pos]
}

// Size returns H*W.
func (b *Board) Size() int {
	return b.sz
}

// IsMine reports whether pos is mined.
func (b *Board) IsMine(pos int) bool {
	return b.mines.Test(uint(pos))
}

// SetMine sets or clears the mine at pos. Does not touch known.
func (b *Board) SetMine(pos int, mined bool) {
	if mined {
		b.mines.Set(uint(pos))
	} else {
		b.mines.Clear(uint(pos))
	}
}

// MineCount returns the number of mines currently placed.
func (b *Board) MineCount() int {
	return int(b.mines.Count())
}

// Mines returns the live mine bitset. Callers that need to perturb and
// possibly roll back a layout should Clone it first.
func (b *Board) Mines() *bitset.BitSet {
	return b.mines
}

// SetMines replaces the mine layout outright, taking ownership of m.
func (b *Board) SetMines(m *bitset.BitSet) {
	b.mines = m
}

// CountAdjacentMines returns the number of mines among pos's 8 neighbors.
func (b *Board) CountAdjacentMines(pos int) int8 {
	var n int8
	for _, nb := range b.neighbors[pos] {
		if b.mines.Test(uint(nb)) {
			n++
		}
	}
	return n
}

// Known returns the revealed state of pos: Covered, or 0..8.
func (b *Board) Known(pos int) int8 {
	return b.known[pos]
}

// KnownSnapshot returns a copy of the known map, suitable for handing to a
// solver (which must not alias the board's own slice).
func (b *Board) KnownSnapshot() []int8 {
	return append([]int8(nil), b.known...)
}

// CoveredCount returns the number of covered cells.
func (b *Board) CoveredCount() int {
	return b.coveredCount
}

// ResetKnown covers every cell again, as if nothing had been revealed.
func (b *Board) ResetKnown() {
	for pos := range b.known {
		b.known[pos] = Covered
	}
	b.coveredCount = b.sz
}

// Reveal uncovers pos and, if it has zero adjacent mines, flood-fills
// outward through neighboring zero-count cells until reaching their
// numbered boundary, exactly mirroring spec section 4.6's `reveal`.
// Returns the positions newly revealed, in the order they were uncovered.
// Returns ErrRevealMine if pos is mined, ErrAlreadyRevealed if pos is
// already uncovered.
func (b *Board) Reveal(pos int) ([]int, error) {
	if err := b.validatePosition(pos); err != nil {
		return nil, err
	}
	if b.IsMine(pos) {
		return nil, fmt.Errorf("%w: position %d", ErrRevealMine, pos)
	}
	if b.known[pos] != Covered {
		return nil, fmt.Errorf("%w: position %d", ErrAlreadyRevealed, pos)
	}

	var revealed []int
	queue := []int{pos}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		if b.known[p] != Covered {
			continue
		}

		count := b.CountAdjacentMines(p)
		b.known[p] = count
		b.coveredCount--
		revealed = append(revealed, p)

		if count == 0 {
			for _, nb := range b.neighbors[p] {
				if b.known[nb] == Covered && !b.IsMine(int(nb)) {
					queue = append(queue, int(nb))
				}
			}
		}
	}
	return revealed, nil
}

// String renders the board's known map as an H-line, W-character-per-line
// grid: '#' for covered, '0'-'8' for revealed counts. Rendering beyond this
// plain debug form is out of scope for this module.
func (b *Board) String() string {
	var sb strings.Builder
	sb.Grow(b.sz + b.H)
	for r := 0; r < b.H; r++ {
		for c := 0; c < b.W; c++ {
			k := b.known[b.Index(r, c)]
			if k == Covered {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('0' + byte(k))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
