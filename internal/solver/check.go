package solver

import "math"

// checkPhase tracks what a pending frame still needs to do.
type checkPhase uint8

const (
	phaseInit checkPhase = iota
	phaseConvolve
	phaseEnumerate
)

// checkFrame is one level of the probability engine's explicit call stack,
// replacing what would otherwise be recursion through simpleSolve,
// decompose, and the pivot enumeration. Recursion depth can reach into the
// hundreds on a dense frontier, comfortably past what's worth risking on
// the goroutine stack for a library call.
type checkFrame struct {
	state      State
	mineOffset int
	phase      checkPhase
	entry      *cacheEntry

	// phaseConvolve: remaining sibling parts to fold in, processed back to
	// front.
	parts []State

	// phaseEnumerate: the pivot's referenced cell indices into state, its
	// required mine count, and how far through ways[...][...] we are.
	chooseIdx  []int
	pivotCount int
	idx        int
	nWays      int
}

func negInfVector(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = math.Inf(-1)
	}
	return v
}

// maxEpoch returns the most recent epoch at which any cell in st (or one of
// its neighbors) changed.
func (s *Solver) maxEpoch(st State) int {
	m := 0
	for _, c := range st {
		if e := s.cellEpoch[c.Pos()]; e > m {
			m = e
		}
	}
	return m
}

// check computes, for the given frontier state, the relative likelihood of
// every total mine count achievable by assigning Mine/NoMine to its Decide
// cells — index i of the result holds the (unnormalized) weight of exactly
// i total mines. It is the recursive heart of the solver, run here as an
// explicit stack to keep the recursion iterative.
func (s *Solver) check(initial State) []float64 {
	// simpleSolve tags cells in place; copy so callers that hand us their
	// own long-lived state (s.state, a Solve/CanBeMine scratch copy) don't
	// see it mutated out from under them.
	root := append(State(nil), initial...)
	stack := []*checkFrame{{state: root}}
	var childProbs []float64

	for len(stack) > 0 {
		cur := stack[len(stack)-1]

		switch cur.phase {
		case phaseInit:
			if entry, ok := s.cache.get(cur.state); ok && entry.init && s.maxEpoch(cur.state) <= entry.epoch {
				childProbs = entry.probs
				stack = stack[:len(stack)-1]
				continue
			}

			entry := s.cache.insert(cur.state, s.curEpoch)
			cur.entry = entry

			pivot, mineOffset, ok := s.simpleSolve(cur.state, cur.mineOffset)
			cur.mineOffset = mineOffset
			if mineOffset > s.nMine {
				ok = false
			}

			if !ok {
				entry.probs = nil
				entry.init = true
				childProbs = nil
				stack = stack[:len(stack)-1]
				continue
			}

			if pivot.pos1 == -1 {
				probs := negInfVector(mineOffset + 1)
				probs[mineOffset] = 1.0
				entry.probs = probs
				entry.init = true
				childProbs = probs
				stack = stack[:len(stack)-1]
				continue
			}

			parts := s.decompose(cur.state)
			if len(parts) > 1 {
				probs := negInfVector(mineOffset + 1)
				probs[mineOffset] = 1.0
				entry.probs = probs

				cur.phase = phaseConvolve
				cur.parts = parts[:len(parts)-1]
				child := parts[len(parts)-1]
				stack = append(stack, &checkFrame{state: child})
				continue
			}

			var chooseIdx []int
			for i, c := range cur.state {
				if s.inCell(pivot, c.Pos()) {
					chooseIdx = append(chooseIdx, i)
				}
			}
			cur.phase = phaseEnumerate
			cur.chooseIdx = chooseIdx
			cur.pivotCount = pivot.count

		case phaseConvolve:
			entry := cur.entry
			ret := entry.probs
			childLen := len(childProbs)

			outLen := childLen + len(ret) - 1
			if outLen > s.nMine+1 {
				outLen = s.nMine + 1
			}
			out := negInfVector(outLen)
			for i := 0; i < outLen; i++ {
				lo, hi := i-childLen+1, i
				if lo < 0 {
					lo = 0
				}
				if hi > len(ret)-1 {
					hi = len(ret) - 1
				}
				for j := lo; j <= hi; j++ {
					if math.IsInf(ret[j], -1) || math.IsInf(childProbs[i-j], -1) {
						continue
					}
					nv := ret[j] * childProbs[i-j]
					if math.IsInf(out[i], -1) {
						out[i] = nv
					} else {
						out[i] += nv
					}
				}
			}
			entry.probs = out

			if len(cur.parts) == 0 {
				entry.init = true
				childProbs = entry.probs
				stack = stack[:len(stack)-1]
				continue
			}
			next := cur.parts[len(cur.parts)-1]
			cur.parts = cur.parts[:len(cur.parts)-1]
			stack = append(stack, &checkFrame{state: next})

		case phaseEnumerate:
			entry := cur.entry
			wayList := ways[len(cur.chooseIdx)][cur.pivotCount]

			if cur.idx > 0 {
				base := cur.mineOffset + cur.pivotCount
				maxN := base + len(childProbs) - 1
				if maxN > s.nMine {
					maxN = s.nMine
				}
				if len(entry.probs) <= maxN {
					grown := negInfVector(maxN + 1)
					copy(grown, entry.probs)
					entry.probs = grown
				}
				for i := base; i <= maxN; i++ {
					nv := childProbs[i-base]
					if math.IsInf(nv, -1) {
						continue
					}
					if math.IsInf(entry.probs[i], -1) {
						entry.probs[i] = nv
					} else {
						entry.probs[i] += nv
					}
				}
				cur.nWays++
			}

			if cur.idx == len(wayList) {
				if cur.nWays > 0 {
					for i := range entry.probs {
						if !math.IsInf(entry.probs[i], -1) {
							entry.probs[i] /= float64(cur.nWays)
						}
					}
				}
				entry.init = true
				childProbs = entry.probs
				stack = stack[:len(stack)-1]
				continue
			}

			mask := wayList[cur.idx]
			cur.idx++
			next := append(State(nil), cur.state...)
			for j, ci := range cur.chooseIdx {
				tag := TagNoMine
				if mask&(1<<uint(j)) != 0 {
					tag = TagMine
				}
				next[ci] = next[ci].WithTag(tag)
			}
			stack = append(stack, &checkFrame{state: next})
		}
	}

	return childProbs
}
