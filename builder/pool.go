package builder

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/nullgraph/nullgraph/graph"
	"github.com/nullgraph/nullgraph/lang"
	"github.com/nullgraph/nullgraph/node"
	"github.com/nullgraph/nullgraph/registry"
	"github.com/nullgraph/nullgraph/syntax"
)

// DeclUnit is one current-module symbol awaiting declaration: the symbol
// itself, the tree its declaring syntax lives in (for the syntax
// visitor's per-tree node-identity cache), and the syntax of its declared
// type (nil for a symbol with no reference-typed declared shape, e.g. a
// value-typed field, which DeclareSymbolType still needs a TypeWithNode
// for via registry.FromType).
type DeclUnit struct {
	Tree   string
	Symbol lang.Symbol
	Syntax *lang.TypeSyntax
	// Fallback is used instead of Syntax when the symbol's declared type
	// has no syntactic occurrence to visit (Syntax == nil): it is passed
	// to registry.FromType with ann to build the TypeWithNode directly.
	Fallback lang.Type
	Ann      lang.NullAnnotation
}

// Declare runs the serial declaration pass (spec.md section 5): every
// current-module symbol's TypeWithNode must be computed and registered
// before any concurrent body-building begins, so that a forward reference
// from one tree to a method declared in another always resolves to the
// same node instance. Declare is not safe for concurrent use with itself
// or with Build; callers run it once, synchronously, before Build.
func (p *Pool) Declare(units []DeclUnit) {
	batch := graph.NewBatch()
	for _, u := range units {
		twn := declareOne(p.Registry, batch, u)
		p.Registry.DeclareSymbolType(u.Symbol, twn)
	}
	p.Graph.Commit(batch)
}

func declareOne(reg *registry.Registry, batch *graph.Batch, u DeclUnit) node.TypeWithNode {
	if u.Syntax != nil {
		sv := syntax.New(reg, u.Tree)
		result := sv.Visit(u.Syntax)
		registry.RegisterNodes(batch, result)
		return result
	}
	result := registry.FromType(u.Fallback, u.Ann)
	registry.RegisterNodes(batch, result)
	return result
}

// Pool drives the concurrent per-tree builder phase (spec.md section 5):
// each BuildUnit's operation tree is visited by its own Context, touching
// only that Context's local batch, and completed batches are committed to
// the shared Graph one at a time in a deterministic order so that the
// resulting edge log does not depend on goroutine scheduling.
type Pool struct {
	Registry *registry.Registry
	Graph    *graph.Graph
	// Workers caps the number of trees built concurrently; zero means no
	// explicit cap (errgroup.Group's default, bounded only by Go's
	// scheduler).
	Workers int
}

// NewPool constructs a Pool over reg's graph.
func NewPool(reg *registry.Registry, workers int) *Pool {
	return &Pool{Registry: reg, Graph: reg.Graph(), Workers: workers}
}

// BuildUnit is one top-level function body to visit: a method (or
// constructor, property accessor, or lambda-hoisted local function)
// together with its already-bound operation tree.
type BuildUnit struct {
	Tree   string
	Method *lang.MethodSymbol
	Body   lang.Operation
}

// TreeResult reports one BuildUnit's outcome: Err is non-nil if the tree
// contained an operation kind the visitor does not implement (spec.md
// section 7's "unsupported construct" path), in which case that tree's
// batch is discarded without being committed but every other tree's batch
// still commits normally.
type TreeResult struct {
	Tree string
	Err  error
}

// Build visits every unit concurrently (bounded by p.Workers) and then
// commits each unit's batch to p.Graph serially, in ascending tree-name
// order, so two Build calls over the same units produce byte-identical
// edge logs regardless of goroutine interleaving. ctx governs cooperative
// cancellation: if ctx is cancelled while trees are being visited, Build
// stops launching new units and returns ctx.Err() without committing
// anything from the in-flight round.
func (p *Pool) Build(ctx context.Context, units []BuildUnit) ([]TreeResult, error) {
	g, gctx := errgroup.WithContext(ctx)
	if p.Workers > 0 {
		g.SetLimit(p.Workers)
	}

	batches := make([]*graph.Batch, len(units))
	errs := make([]error, len(units))

	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			bc := NewContext(u.Tree, p.Registry)
			errs[i] = runUnit(bc, u)
			batches[i] = bc.Batch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	order := make([]int, len(units))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return units[order[a]].Tree < units[order[b]].Tree })

	results := make([]TreeResult, 0, len(units))
	for _, idx := range order {
		if errs[idx] == nil {
			p.Graph.Commit(batches[idx])
		}
		results = append(results, TreeResult{Tree: units[idx].Tree, Err: errs[idx]})
	}
	return results, nil
}

// runUnit visits one unit's body, recovering an UnsupportedConstructError
// into a returned error so that one tree's unsupported construct cannot
// take down the whole build (spec.md section 7). Any other panic is
// treated as a genuine bug and re-raised.
func runUnit(bc *Context, u BuildUnit) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if uce, ok := r.(*UnsupportedConstructError); ok {
			err = uce
			return
		}
		panic(r)
	}()

	bc.BindParams(u.Method)
	ret := bc.Registry.GetSymbolType(u.Method)
	bc.PushFunction(ret, u.Method.IsIterator, u.Method.IsAsync)
	bc.Visit(u.Body)
	bc.PopFunction()
	return nil
}
