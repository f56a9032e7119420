package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nullgraph/nullgraph/lang"
	"github.com/nullgraph/nullgraph/node"
)

func TestNewSeedsSpecialSingletons(t *testing.T) {
	node.Reset()
	g := New()
	ids := map[*node.Node]bool{}
	for _, n := range g.Nodes() {
		ids[n] = true
	}
	require.True(t, ids[g.Nullable()])
	require.True(t, ids[g.NonNull()])
	require.True(t, ids[g.Oblivious()])
	require.Len(t, g.Nodes(), 3)
}

func TestCommitIsTransactionalAcrossBatches(t *testing.T) {
	node.Reset()
	g := New()
	a, b := node.NewInferred("a"), node.NewInferred("b")

	batch1 := NewBatch()
	batch1.AddNode(a)
	g.Commit(batch1)

	batch2 := NewBatch()
	batch2.AddNode(b)
	batch2.AddEdge(a, b, "assign", lang.Location{})
	g.Commit(batch2)

	require.Len(t, g.Nodes(), 5) // 3 singletons + a + b
	require.Len(t, g.Edges(), 1)
	require.Equal(t, "assign", g.Edges()[0].Label)
}

func TestCommitDeduplicatesRepeatedNode(t *testing.T) {
	node.Reset()
	g := New()
	a := node.NewInferred("a")

	batch := NewBatch()
	batch.AddNode(a)
	batch.AddNode(a)
	g.Commit(batch)

	require.Len(t, g.Nodes(), 4) // 3 singletons + a, not 5
}

func TestFreezeBlocksFurtherCommits(t *testing.T) {
	node.Reset()
	g := New()
	g.Freeze()
	require.True(t, g.Frozen())

	require.Panics(t, func() {
		g.Commit(NewBatch())
	})
}

func TestEdgesReflectCommitOrderAcrossBatches(t *testing.T) {
	node.Reset()
	g := New()
	a, b, c := node.NewInferred("a"), node.NewInferred("b"), node.NewInferred("c")

	first := NewBatch()
	first.AddNode(a)
	first.AddNode(b)
	first.AddEdge(a, b, "first", lang.Location{})
	g.Commit(first)

	second := NewBatch()
	second.AddNode(c)
	second.AddEdge(b, c, "second", lang.Location{})
	g.Commit(second)

	labels := make([]string, 0, 2)
	for _, e := range g.Edges() {
		labels = append(labels, e.Label)
	}
	require.Equal(t, []string{"first", "second"}, labels)
}
