package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assign(repo *fakeRepo, order ...string) Lanes {
	return AssignLanes(order, MapRelationships(repo.window(order...)))
}

func TestAssignLanes(t *testing.T) {
	tests := []struct {
		name     string
		repo     *fakeRepo
		order    []string
		expected map[string]int
		maxLane  int
	}{
		{
			name:     "linear",
			repo:     newFakeRepo().add("C", "B").add("B", "A").add("A"),
			order:    []string{"C", "B", "A"},
			expected: map[string]int{"C": 0, "B": 0, "A": 0},
		},
		{
			name:     "fork",
			repo:     newFakeRepo().add("A1", "C1").add("B1", "C1").add("C1"),
			order:    []string{"A1", "B1", "C1"},
			expected: map[string]int{"A1": 0, "B1": 1, "C1": 0},
			maxLane:  1,
		},
		{
			name:     "merge",
			repo:     newFakeRepo().add("M", "A1", "B1").add("A1", "C1").add("B1", "C1").add("C1"),
			order:    []string{"M", "A1", "B1", "C1"},
			expected: map[string]int{"M": 0, "A1": 0, "B1": 1, "C1": 0},
			maxLane:  1,
		},
		{
			name: "lane reused after branch joins",
			repo: newFakeRepo().
				add("M2", "M1", "F").
				add("M1", "A", "B").
				add("A", "C").
				add("B", "C").
				add("C", "D").
				add("F", "D").
				add("D"),
			order:    []string{"M2", "M1", "A", "B", "C", "F", "D"},
			expected: map[string]int{"M2": 0, "M1": 0, "A": 0, "B": 1, "C": 0, "F": 1, "D": 0},
			maxLane:  1,
		},
		{
			name: "three tips",
			repo: newFakeRepo().
				add("X", "R").
				add("Y", "R").
				add("Z", "R").
				add("R"),
			order:    []string{"X", "Y", "Z", "R"},
			expected: map[string]int{"X": 0, "Y": 1, "Z": 2, "R": 0},
			maxLane:  2,
		},
		{
			name:     "parent outside window keeps its lane busy",
			repo:     newFakeRepo().add("P", "gone").add("Q"),
			order:    []string{"P", "Q"},
			expected: map[string]int{"P": 0, "Q": 1},
			maxLane:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lanes := assign(tt.repo, tt.order...)
			assert.Equal(t, tt.expected, lanes.ByID)
			assert.Equal(t, tt.maxLane, lanes.Max)
			assert.Empty(t, lanes.Skipped)
		})
	}
}

func TestAssignLanes_SecondaryChildDoesNotDonateLane(t *testing.T) {
	// B1 is only M's second parent, so it cannot continue M's lane even
	// though M is its only child.
	repo := newFakeRepo().add("M", "A1", "B1").add("B1").add("A1")

	lanes := assign(repo, "M", "B1", "A1")
	assert.Equal(t, 0, lanes.ByID["M"])
	assert.Equal(t, 1, lanes.ByID["B1"])
	assert.Equal(t, 0, lanes.ByID["A1"])
}

func TestAssignLanes_TieBreakFollowsChildrenOrder(t *testing.T) {
	// Both X and Y name P as primary parent; Y comes first in the window.
	repo := newFakeRepo().add("Y", "P").add("X", "P").add("P")

	lanes := assign(repo, "Y", "X", "P")
	require.Equal(t, 0, lanes.ByID["Y"])
	require.Equal(t, 1, lanes.ByID["X"])
	assert.Equal(t, 0, lanes.ByID["P"], "P follows Y, the first child in window order")
}

func TestAssignLanes_RevisitedCommitIsSkipped(t *testing.T) {
	repo := newFakeRepo().add("B", "A").add("A")

	lanes := AssignLanes([]string{"B", "A", "B"}, MapRelationships(repo.window("B", "A")))
	assert.Equal(t, []string{"B"}, lanes.Skipped)
	assert.Equal(t, map[string]int{"B": 0, "A": 0}, lanes.ByID)
}

func TestAssignLanes_Empty(t *testing.T) {
	lanes := AssignLanes(nil, MapRelationships(nil))
	assert.Empty(t, lanes.ByID)
	assert.Equal(t, 0, lanes.Max)
}

func TestAssemble_ActiveCommitsNeverShareLane(t *testing.T) {
	repo := newFakeRepo().
		add("M2", "M1", "F").
		add("M1", "A", "B").
		add("A", "C").
		add("B", "C").
		add("C", "D").
		add("F", "D").
		add("D")
	order := []string{"M2", "M1", "A", "B", "C", "F", "D"}
	g := Assemble(repo.window(order...), nil)

	// The first-parent line of a commit runs from its row down to its
	// primary parent's row, or off the bottom when the parent is not in the
	// window. No other commit may sit in that lane in between.
	row := make(map[string]int, len(order))
	for i, id := range order {
		row[id] = i
	}
	lineEnd := func(n CommitNode) int {
		if len(n.Parents) == 0 {
			return row[n.ID]
		}
		if r, ok := row[n.Parents[0]]; ok {
			return r
		}
		return len(order)
	}
	for _, a := range g.Nodes {
		for _, b := range g.Nodes {
			if a.ID == b.ID || a.Lane != b.Lane {
				continue
			}
			inside := row[b.ID] > row[a.ID] && row[b.ID] < lineEnd(a)
			assert.False(t, inside, "%s sits on the line of %s in lane %d", b.ID, a.ID, a.Lane)
		}
	}
}
