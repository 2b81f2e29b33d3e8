package solver

import (
	"math/bits"

	"github.com/rybkr/minegen/internal/board"
)

// checkCell is a single "exactly count mines among these cells" constraint,
// expressed as up to two 5x5-window masks anchored at pos1 and (if pos2 is
// not -1) pos2. Two anchors are needed because combining constraints from
// two different revealed cells can reference cells outside either anchor's
// own 3x3 neighborhood once re-centered onto a shared window.
type checkCell struct {
	pos1, pos2 int
	msk1, msk2 int
	count      int
}

// inCell reports whether x is one of cell's referenced positions.
func (s *Solver) inCell(cell checkCell, x int) bool {
	w := s.b.W
	if a := adjIndex(cell.pos1, x, w); a != -1 && cell.msk1&(1<<uint(a)) != 0 {
		return true
	}
	if cell.pos2 != -1 {
		if a := adjIndex(cell.pos2, x, w); a != -1 && cell.msk2&(1<<uint(a)) != 0 {
			return true
		}
	}
	return false
}

// forInCell invokes f once per position referenced by cell.
func (s *Solver) forInCell(cell checkCell, f func(y int)) {
	w := s.b.W
	for which := 0; which <= 1; which++ {
		pos, m := cell.pos1, cell.msk1
		if which == 1 {
			if cell.pos2 == -1 {
				continue
			}
			pos, m = cell.pos2, cell.msk2
		}
		i := 0
		for m > 0 {
			shift := bits.TrailingZeros(uint(m))
			m >>= uint(shift)
			i += shift
			dr := 2 - i/maskStride
			dc := 2 - i%maskStride
			f(pos + w*dr + dc)
			m >>= 1
			i++
		}
	}
}

// simpleSolve runs the constraint reducer over state: it repeatedly folds
// revealed-cell clue constraints (singly, and pairwise/triple-wise after
// re-centering onto a shared window) until no further cell can be proven
// safe or mined. Cells it proves are tagged in place. It returns the
// cheapest remaining ambiguous constraint to pivot on (pos1 == -1 if the
// whole state was resolved), the mine count fixed along the way added to
// mineOffset, and false if the state is contradictory (unsatisfiable).
func (s *Solver) simpleSolve(state State, mineOffset int) (checkCell, int, bool) {
	s.markIndex(state)
	defer s.clearIndex(state)

	for {
		s.visitID++
		visitID := s.visitID

		s.liveY = s.liveY[:0]

		for _, c := range state {
			for _, y32 := range s.b.Neighbors(c.Pos()) {
				y := int(y32)
				if s.known[y] == board.Covered || s.visited[y] == visitID {
					continue
				}
				s.visited[y] = visitID

				noUnknown := true
				msk := 0
				cnt := int(s.known[y])
				for _, z32 := range s.b.Neighbors(y) {
					z := int(z32)
					if idx := s.tmpIdx[z]; idx != -1 {
						switch state[idx].Tag() {
						case TagDecide:
							if a := adjIndex(y, z, s.b.W); a != -1 {
								msk |= 1 << uint(a)
							}
						case TagMine:
							cnt--
						}
					} else if s.known[z] == board.Covered {
						noUnknown = false
						break
					}
				}

				s.tmpMsk[y] = msk
				s.tmpCount[y] = cnt

				if noUnknown {
					if cnt < 0 || cnt > bits.OnesCount(uint(msk)) {
						return checkCell{}, mineOffset, false
					}
					if msk != 0 {
						s.liveY = append(s.liveY, y)
					}
				}
			}
		}

		found := false
		minChoice := -1
		pivot := checkCell{pos1: -1, pos2: -1}

		push := func(x, msk, count, x2, msk2 int) bool {
			k := bits.OnesCount(uint(msk)) + bits.OnesCount(uint(msk2))
			if count < 0 || count > k {
				return true
			}
			if k == 0 || k >= 9 {
				return false
			}
			cell := checkCell{pos1: x, pos2: x2, msk1: msk, msk2: msk2, count: count}
			switch {
			case count == 0:
				found = true
				s.forInCell(cell, func(y int) {
					if idx := s.tmpIdx[y]; idx != -1 {
						state[idx] = state[idx].WithTag(TagNoMine)
					}
				})
			case count == k:
				found = true
				s.forInCell(cell, func(y int) {
					if idx := s.tmpIdx[y]; idx != -1 && state[idx].Tag() == TagDecide {
						state[idx] = state[idx].WithTag(TagMine)
						mineOffset++
					}
				})
			default:
				if n := len(ways[k][count]); minChoice == -1 || n < minChoice {
					minChoice = n
					pivot = cell
				}
			}
			return false
		}

		for _, x := range s.liveY {
			m := s.tmpMsk[x]
			nm := ^m
			if push(x, m, s.tmpCount[x], -1, 0) {
				return checkCell{}, mineOffset, false
			}

			for _, y32 := range s.b.Neighbors(x) {
				y := int(y32)
				if s.visited[y] != visitID || s.tmpMsk[y] == 0 {
					continue
				}
				shift1 := adjDiff(x, y, s.b.W)
				s1 := shiftMask(s.tmpMsk[y], shift1)
				ns1 := ^s1
				if m&ns1 == 0 {
					if push(x, s1&nm, s.tmpCount[y]-s.tmpCount[x], -1, 0) {
						return checkCell{}, mineOffset, false
					}
				}

				for _, z32 := range s.b.Neighbors(x) {
					z := int(z32)
					if z == y || s.visited[z] != visitID || s.tmpMsk[z] == 0 {
						continue
					}
					// shift2 intentionally reuses adjDiff(x, y, w), not
					// adjDiff(x, z, w): a faithfully preserved quirk of the
					// source this was ported from.
					shift2 := adjDiff(x, y, s.b.W)
					s2 := shiftMask(s.tmpMsk[z], shift2)
					ns2 := ^s2
					if m&ns1&ns2 == 0 && nm&s1&s2 == 0 {
						if push(y, shiftMask(s1&nm, -shift1), s.tmpCount[y]+s.tmpCount[z]-s.tmpCount[x], z, shiftMask(s2&(s1|nm), -shift2)) {
							return checkCell{}, mineOffset, false
						}
					}
				}
			}
		}

		if !found {
			return pivot, mineOffset, true
		}
	}
}
