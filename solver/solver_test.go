package solver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nullgraph/nullgraph/graph"
	"github.com/nullgraph/nullgraph/lang"
	"github.com/nullgraph/nullgraph/node"
)

func freshGraph(t *testing.T) *graph.Graph {
	t.Helper()
	node.Reset()
	return graph.New()
}

func TestSolveClassifiesUnconstrainedNodeWhenUnreached(t *testing.T) {
	node.Reset()
	g := freshGraph(t)
	n := node.NewInferred("isolated")
	b := graph.NewBatch()
	b.AddNode(n)
	g.Commit(b)
	g.Freeze()

	result := Solve(g)
	require.Equal(t, Unconstrained, result.Classify(n))
	require.Empty(t, result.Contradictions())
}

func TestSolveForcesNullableAlongOutgoingPath(t *testing.T) {
	g := freshGraph(t)
	a := node.NewInferred("a")
	b := graph.NewBatch()
	b.AddNode(a)
	b.AddEdge(g.Nullable(), a, "assign", lang.Location{})
	g.Commit(b)
	g.Freeze()

	result := Solve(g)
	require.Equal(t, ForcedNullable, result.Classify(a))
}

func TestSolveForcesNonNullAlongIncomingPath(t *testing.T) {
	g := freshGraph(t)
	a := node.NewInferred("a")
	b := graph.NewBatch()
	b.AddNode(a)
	b.AddEdge(a, g.NonNull(), "deref", lang.Location{})
	g.Commit(b)
	g.Freeze()

	result := Solve(g)
	require.Equal(t, ForcedNonNull, result.Classify(a))
}

func TestSolveDetectsContradiction(t *testing.T) {
	g := freshGraph(t)
	a := node.NewInferred("a")
	b := graph.NewBatch()
	b.AddNode(a)
	b.AddEdge(g.Nullable(), a, "assign", lang.Location{})
	b.AddEdge(a, g.NonNull(), "deref", lang.Location{})
	g.Commit(b)
	g.Freeze()

	result := Solve(g)
	require.Equal(t, Contradiction, result.Classify(a))
	require.Equal(t, []*node.Node{a}, result.Contradictions())
}

func TestSolvePanicsOnUnfrozenGraph(t *testing.T) {
	g := freshGraph(t)
	require.Panics(t, func() { Solve(g) })
}

func TestPathExistsFollowsEdgeDirection(t *testing.T) {
	g := freshGraph(t)
	a, c := node.NewInferred("a"), node.NewInferred("c")
	batch := graph.NewBatch()
	batch.AddNode(a)
	batch.AddNode(c)
	batch.AddEdge(a, c, "assign", lang.Location{})
	g.Commit(batch)
	g.Freeze()

	require.True(t, PathExists(a, c))
	require.False(t, PathExists(c, a))
}

func TestPathExistsSameNodeIsTrivialPath(t *testing.T) {
	g := freshGraph(t)
	a := node.NewInferred("a")
	batch := graph.NewBatch()
	batch.AddNode(a)
	g.Commit(batch)
	g.Freeze()

	path, ok := Path(a, a)
	require.True(t, ok)
	require.Empty(t, path)
}

func TestPathReturnsShortestEdgeSequence(t *testing.T) {
	g := freshGraph(t)
	a, mid, z := node.NewInferred("a"), node.NewInferred("mid"), node.NewInferred("z")
	batch := graph.NewBatch()
	batch.AddNode(a)
	batch.AddNode(mid)
	batch.AddNode(z)
	batch.AddEdge(a, mid, "assign", lang.Location{})
	batch.AddEdge(mid, z, "return", lang.Location{})
	g.Commit(batch)
	g.Freeze()

	path, ok := Path(a, z)
	require.True(t, ok)
	require.Len(t, path, 2)
	require.Equal(t, "assign", path[0].Label)
	require.Equal(t, "return", path[1].Label)
}
