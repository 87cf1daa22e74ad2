package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideaforge/ideaforge/internal/types"
)

func TestProjectMindmap_MirrorsGraph(t *testing.T) {
	s := confirmedSession(t, &stubCompleter{responses: []string{
		flatHarvest,
		expandResponse,
		combineResponse,
	}})
	ctx := context.Background()

	harvested, err := s.Harvest(ctx, "thread_3")
	require.NoError(t, err)
	expanded, err := s.Expand(ctx, harvested.Created[0], "go")
	require.NoError(t, err)
	_, err = s.Combine(ctx, harvested.Created)
	require.NoError(t, err)

	m := s.Mindmap()

	require.Len(t, m.Roots, 5, "three lens threads plus two combined threads")

	// Thread nodes carry no category; branch nodes carry theirs.
	lens := m.Find("thread_3")
	require.NotNil(t, lens)
	assert.Empty(t, lens.Category)
	require.Len(t, lens.Children, 2)

	branchNode := m.Find(harvested.Created[0].String())
	require.NotNil(t, branchNode)
	assert.Equal(t, types.CategoryConcept, branchNode.Category)
	require.Len(t, branchNode.Children, len(expanded.Created))
	for i, id := range expanded.Created {
		assert.Equal(t, id.String(), branchNode.Children[i].ID, "children keep creation order")
	}

	// Every live branch appears exactly once across the projection.
	seen := map[string]bool{}
	total := 0
	for _, root := range m.Roots {
		for _, id := range root.BranchIDs() {
			assert.False(t, seen[id], "branch %s projected twice", id)
			seen[id] = true
			total++
		}
	}
	assert.Equal(t, s.Store.Len(), total)
}

func TestProjectMindmap_ReflectsDeletion(t *testing.T) {
	s := confirmedSession(t, &stubCompleter{responses: []string{flatHarvest}})
	harvested, err := s.Harvest(context.Background(), "thread_3")
	require.NoError(t, err)

	_, err = s.DeleteBranch(harvested.Created[0])
	require.NoError(t, err)

	m := s.Mindmap()
	assert.Nil(t, m.Find(harvested.Created[0].String()))
	assert.NotNil(t, m.Find(harvested.Created[1].String()))
}

func TestMindmap_FindUnknown(t *testing.T) {
	s := confirmedSession(t, &stubCompleter{})

	assert.Nil(t, s.Mindmap().Find("b404"))
}

func TestProjectMindmap_EmptySession(t *testing.T) {
	s := NewSession(&stubCompleter{})

	m := s.Mindmap()

	assert.Empty(t, m.Roots)
}
