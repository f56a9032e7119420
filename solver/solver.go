// Package solver implements the reachability solver (spec.md section
// 4.5): forward BFS from the Nullable singleton classifies every
// Inferred node it reaches as forced-nullable; backward BFS from the
// NonNull singleton classifies every Inferred node that can reach it as
// forced-non-null. A node reachable both ways is a contradiction. The
// frontier and visited sets are dense bitsets keyed by node.Node.ID,
// following the teacher's existing golang.org/x/tools dependency down
// into its container/intsets subpackage rather than hand-rolling a
// visited-set type.
package solver

import (
	"sort"

	"golang.org/x/tools/container/intsets"

	"github.com/nullgraph/nullgraph/graph"
	"github.com/nullgraph/nullgraph/node"
)

// Classification is the solver's verdict for one node.
type Classification uint8

const (
	// Unconstrained means the node was reached from neither singleton:
	// its nullability is left to the declared default (spec.md section
	// 4.5, "Nodes untouched by either search keep their declared
	// classification").
	Unconstrained Classification = iota
	// ForcedNullable means the node is reachable from the Nullable
	// singleton.
	ForcedNullable
	// ForcedNonNull means the node can reach the NonNull singleton.
	ForcedNonNull
	// Contradiction means the node is both forced-nullable and
	// forced-non-null: a value that must be null is also required never
	// to be null (spec.md section 4.5, "Contradiction").
	Contradiction
)

func (c Classification) String() string {
	switch c {
	case ForcedNullable:
		return "ForcedNullable"
	case ForcedNonNull:
		return "ForcedNonNull"
	case Contradiction:
		return "Contradiction"
	default:
		return "Unconstrained"
	}
}

// Result is the solver's output over one frozen Graph: the two raw
// reachability sets from which Classify and Contradictions derive each
// node's classification. Path queries (see PathExists) do not consult
// these sets; they run their own BFS.
type Result struct {
	nullable *intsets.Sparse // node IDs reachable from the Nullable singleton
	nonNull  *intsets.Sparse // node IDs that can reach the NonNull singleton
	byID     map[int]*node.Node
}

// Solve runs both directed searches over g, which must already be frozen
// (spec.md section 5, "the solver requires a frozen graph"). Solve itself
// does not mutate g.
func Solve(g *graph.Graph) *Result {
	if !g.Frozen() {
		panic("nullgraph: solver.Solve called on a graph that has not been frozen")
	}
	nodes := g.Nodes()
	byID := make(map[int]*node.Node, len(nodes))
	for _, n := range nodes {
		byID[int(n.ID())] = n
	}

	r := &Result{
		nullable: bfs(g.Nullable(), func(n *node.Node) []*node.Node { return targets(n.Outgoing()) }),
		nonNull:  bfs(g.NonNull(), func(n *node.Node) []*node.Node { return sources(n.Incoming()) }),
		byID:     byID,
	}
	return r
}

func targets(edges []*node.Edge) []*node.Node {
	out := make([]*node.Node, len(edges))
	for i, e := range edges {
		out[i] = e.Target
	}
	return out
}

func sources(edges []*node.Edge) []*node.Node {
	out := make([]*node.Node, len(edges))
	for i, e := range edges {
		out[i] = e.Source
	}
	return out
}

// bfs explores from start following next, returning the set of every
// node.ID reached (including start itself).
func bfs(start *node.Node, next func(*node.Node) []*node.Node) *intsets.Sparse {
	visited := new(intsets.Sparse)
	queue := []*node.Node{start}
	visited.Insert(int(start.ID()))
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range next(cur) {
			id := int(n.ID())
			if visited.Insert(id) {
				queue = append(queue, n)
			}
		}
	}
	return visited
}

// Classify returns n's classification under r.
func (r *Result) Classify(n *node.Node) Classification {
	id := int(n.ID())
	nullable := r.nullable.Has(id)
	nonNull := r.nonNull.Has(id)
	switch {
	case nullable && nonNull:
		return Contradiction
	case nullable:
		return ForcedNullable
	case nonNull:
		return ForcedNonNull
	default:
		return Unconstrained
	}
}

// Contradictions returns every Inferred node classified Contradiction
// (the special singletons are never reported), sorted by
// ID for deterministic diagnostic ordering (spec.md section 4.5,
// "reported in a stable order so that re-running the analysis over
// unchanged source produces byte-identical output").
func (r *Result) Contradictions() []*node.Node {
	var ids []int
	both := new(intsets.Sparse)
	both.Copy(r.nullable)
	both.IntersectionWith(r.nonNull)
	ids = both.AppendTo(ids)
	sort.Ints(ids)
	out := make([]*node.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := r.byID[id]; ok && !n.IsSpecial() {
			out = append(out, n)
		}
	}
	return out
}

// PathExists reports whether there is a directed edge path from source to
// target within the solved graph, computed by a fresh on-demand BFS
// (spec.md section 6, "HasPathFromParameterToReturnType" and "CheckPaths"
// are defined in terms of exactly this primitive).
func PathExists(source, target *node.Node) bool {
	_, ok := Path(source, target)
	return ok
}

// Path returns one shortest directed edge path from source to target, or
// ok=false if no such path exists. It underlies both PathExists and the
// diagnostic package's contradiction flow reporting, which needs the
// actual sequence of edges (with their labels and locations) rather than
// just a yes/no answer.
func Path(source, target *node.Node) ([]*node.Edge, bool) {
	if source == target {
		return nil, true
	}
	type step struct {
		via  *node.Edge
		from *node.Node
	}
	visited := map[*node.Node]step{source: {}}
	queue := []*node.Node{source}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range cur.Outgoing() {
			if _, ok := visited[e.Target]; ok {
				continue
			}
			visited[e.Target] = step{via: e, from: cur}
			if e.Target == target {
				queue = nil
				break
			}
			queue = append(queue, e.Target)
		}
	}
	if _, ok := visited[target]; !ok {
		return nil, false
	}
	var path []*node.Edge
	for n := target; n != source; {
		s := visited[n]
		path = append([]*node.Edge{s.via}, path...)
		n = s.from
	}
	return path, true
}
