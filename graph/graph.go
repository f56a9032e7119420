// Package graph implements the nullability flow graph's storage: an
// append-only arena of nodes plus a flat, ordered edge log, with the
// lifecycle spec.md section 3 describes ("nodes are created during
// binding and never destroyed... the graph is immutable after the builder
// flushes"). Edges own neither endpoint (spec.md section 9, "Cyclic
// references"): a Graph is the arena; node.Node pointers are shared
// freely and compared by identity.
package graph

import (
	"fmt"
	"sync"

	"github.com/nullgraph/nullgraph/lang"
	"github.com/nullgraph/nullgraph/node"
)

// Graph is the full set of nodes and edges produced by one or more
// committed builders (package builder). It is safe for concurrent use
// only through its Commit method; after Freeze is called no further
// mutation is permitted (spec.md section 3, "Lifecycle").
type Graph struct {
	mu     sync.Mutex
	nodes  []*node.Node
	seen   map[*node.Node]bool
	edges  []*node.Edge
	frozen bool
}

// New returns an empty Graph seeded with the three special singletons, so
// that Nodes() always includes them even before any builder commits.
func New() *Graph {
	g := &Graph{seen: make(map[*node.Node]bool, 64)}
	for _, n := range []*node.Node{node.NullableNode, node.NonNullNode, node.ObliviousNode} {
		g.nodes = append(g.nodes, n)
		g.seen[n] = true
	}
	return g
}

// Nullable returns the special nullable source singleton.
func (g *Graph) Nullable() *node.Node { return node.NullableNode }

// NonNull returns the special non-null sink singleton.
func (g *Graph) NonNull() *node.Node { return node.NonNullNode }

// Oblivious returns the special oblivious singleton.
func (g *Graph) Oblivious() *node.Node { return node.ObliviousNode }

// Nodes returns all nodes registered into this graph, in registration
// order (the three special singletons first).
func (g *Graph) Nodes() []*node.Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*node.Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns all edges added to this graph, in the deterministic
// commit order described by spec.md section 5.
func (g *Graph) Edges() []*node.Edge {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*node.Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Batch is the unit of work that Commit applies: the nodes and edges one
// syntax tree produced. The caller (package builder's committer, see
// builder.Pool) produces one Batch per completed syntax tree and Commits
// it; Commit is itself where the single point of mutation to the shared
// Graph lives, so builders touching only local buffers can run
// concurrently while commits remain strictly serialized (spec.md section
// 5).
type Batch struct {
	Nodes []*node.Node
	Edges []pendingEdge
}

type pendingEdge struct {
	Source, Target *node.Node
	Label          string
	Loc            lang.Location
}

// NewBatch returns an empty Batch that a single builder can append to
// without synchronization.
func NewBatch() *Batch { return &Batch{} }

// AddNode records a freshly created node for inclusion on the next Commit.
func (b *Batch) AddNode(n *node.Node) { b.Nodes = append(b.Nodes, n) }

// AddEdge queues a directed edge for inclusion on the next Commit. The
// edge is not yet connected to either node's incoming/outgoing list: that
// happens atomically in Commit so that a reader iterating Node.Outgoing
// never observes a half-applied batch.
func (b *Batch) AddEdge(source, target *node.Node, label string, loc lang.Location) {
	b.Edges = append(b.Edges, pendingEdge{Source: source, Target: target, Label: label, Loc: loc})
}

// Commit applies a batch transactionally: all of its nodes and edges
// become visible together, under the Graph's single lock, regardless of
// how many builder goroutines produced batches concurrently (spec.md
// section 5, "builders flush their buffered additions serially"). It
// panics if the Graph has already been frozen.
func (g *Graph) Commit(b *Batch) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.frozen {
		panic("nullgraph: Commit called on a frozen graph")
	}
	for _, n := range b.Nodes {
		if !g.seen[n] {
			g.seen[n] = true
			g.nodes = append(g.nodes, n)
		}
	}
	for _, pe := range b.Edges {
		e := node.Connect(pe.Source, pe.Target, pe.Label, pe.Loc)
		g.edges = append(g.edges, e)
	}
}

// Freeze marks the graph immutable; subsequent Commit calls panic. The
// solver requires a frozen graph so that its reachability results cannot
// be invalidated mid-query (spec.md section 5, "Resource policy").
func (g *Graph) Freeze() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.frozen = true
}

// Frozen reports whether Freeze has been called.
func (g *Graph) Frozen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frozen
}

func (g *Graph) String() string {
	return fmt.Sprintf("graph{%d nodes, %d edges, frozen=%v}", len(g.nodes), len(g.edges), g.frozen)
}
