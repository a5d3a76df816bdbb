package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapRelationships(t *testing.T) {
	repo := newFakeRepo().
		add("M", "A", "B").
		add("A", "C").
		add("B", "C").
		add("C", "outside")

	rel := MapRelationships(repo.window("M", "A", "B", "C"))

	assert.Equal(t, []string{"A", "B"}, rel.Parents["M"])
	assert.Equal(t, []string{"outside"}, rel.Parents["C"], "parents keep out-of-window ids")

	assert.Equal(t, []string{"M"}, rel.Children["A"])
	assert.Equal(t, []string{"M"}, rel.Children["B"])
	assert.Equal(t, []string{"A", "B"}, rel.Children["C"])
	assert.NotContains(t, rel.Children, "outside")
	assert.NotContains(t, rel.Children, "M")

	assert.True(t, rel.InWindow("C"))
	assert.False(t, rel.InWindow("outside"))
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		kind, name string
		expected   Scope
		wantErr    bool
	}{
		{kind: "", expected: AllRefs()},
		{kind: "all", expected: AllRefs()},
		{kind: "branch", name: "main", expected: Branch("main")},
		{kind: "Start", name: "abc123", expected: Start("abc123")},
		{kind: "branch", wantErr: true},
		{kind: "start", wantErr: true},
		{kind: "tag", name: "v1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.kind+"/"+tt.name, func(t *testing.T) {
			scope, err := ParseScope(tt.kind, tt.name)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, scope)
		})
	}
	assert.Equal(t, "branch:main", Branch("main").String())
}
