package graph

// Lanes is the output of lane assignment.
type Lanes struct {
	ByID map[string]int
	Max  int

	// Skipped lists ids that appeared more than once in the traversal order.
	// Only their first occurrence was assigned.
	Skipped []string
}

// laneAllocator keeps the state of one assignment pass. active[i] holds the
// commit currently drawing lane i, or "" when the slot has never been used.
type laneAllocator struct {
	rel    Relations
	byID   map[string]int
	active []string
}

// AssignLanes gives every commit of order a lane. order must list children
// before their ancestors; that precondition is not re-derived here.
//
// A commit continues the lane of the first child (in children-map order) that
// has it as primary parent. Any other commit takes the lowest free slot, where
// a slot is free once its occupant and all of the occupant's parents have been
// assigned, or a new slot when none is free.
func AssignLanes(order []string, rel Relations) Lanes {
	a := &laneAllocator{
		rel:  rel,
		byID: make(map[string]int, len(order)),
	}
	out := Lanes{ByID: a.byID}

	for _, c := range order {
		if _, seen := a.byID[c]; seen {
			out.Skipped = append(out.Skipped, c)
			continue
		}

		lane, ok := a.inherited(c)
		if !ok {
			lane = a.freeSlot()
		}

		a.active[lane] = c
		a.byID[c] = lane
		if lane > out.Max {
			out.Max = lane
		}
	}
	return out
}

// inherited returns the lane of the first already-placed child whose primary
// parent is c.
func (a *laneAllocator) inherited(c string) (int, bool) {
	for _, ch := range a.rel.Children[c] {
		parents := a.rel.Parents[ch]
		if len(parents) == 0 || parents[0] != c {
			continue
		}
		if lane, ok := a.byID[ch]; ok {
			return lane, true
		}
	}
	return 0, false
}

func (a *laneAllocator) freeSlot() int {
	for i, occupant := range a.active {
		if a.released(occupant) {
			return i
		}
	}
	a.active = append(a.active, "")
	return len(a.active) - 1
}

// released reports whether the line drawn by occupant has ended: the
// occupant is placed and so are all of its parents. A parent outside the
// window is never placed, so its line runs to the bottom of the window.
func (a *laneAllocator) released(occupant string) bool {
	if occupant == "" {
		return true
	}
	if _, ok := a.byID[occupant]; !ok {
		return false
	}
	for _, p := range a.rel.Parents[occupant] {
		if _, ok := a.byID[p]; !ok {
			return false
		}
	}
	return true
}
