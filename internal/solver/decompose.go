package solver

import "github.com/rybkr/minegen/internal/board"

// decompose splits state into its connected components, where two frontier
// cells are connected if a path of alternating covered/revealed 8-adjacent
// steps links them. Each returned part also carries whichever already-
// resolved (NoMine/Mine) cells of state are reachable the same way, so that
// a recursive simpleSolve over just that part still sees the context its
// clue cells depend on.
func (s *Solver) decompose(state State) []State {
	s.markIndex(state)
	defer s.clearIndex(state)

	fstVisit := s.visitID
	var parts []State

	for _, c := range state {
		if c.Tag() != TagDecide || s.visited[c.Pos()] > fstVisit {
			continue
		}

		s.visitID++
		visitID := s.visitID
		part := State{c}

		s.dfsStack = s.dfsStack[:0]
		s.dfsStack = append(s.dfsStack, c.Pos())
		s.visited[c.Pos()] = visitID

		for len(s.dfsStack) > 0 {
			x := s.dfsStack[len(s.dfsStack)-1]
			s.dfsStack = s.dfsStack[:len(s.dfsStack)-1]

			for _, y32 := range s.b.Neighbors(x) {
				y := int(y32)
				if s.visited[y] == visitID {
					continue
				}
				if idx := s.tmpIdx[y]; idx != -1 {
					a := state[idx]
					part = append(part, a)
					if a.Tag() == TagDecide {
						s.dfsStack = append(s.dfsStack, y)
					}
					s.visited[y] = visitID
				} else if s.known[x] == board.Covered && s.known[y] != board.Covered {
					s.dfsStack = append(s.dfsStack, y)
					s.visited[y] = visitID
				}
			}
		}

		parts = append(parts, part)
	}

	return parts
}
