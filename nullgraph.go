// Package nullgraph wires the declare/build/solve pipeline (registry,
// builder, solver, diagnostic) into the single entry point the CLI and
// any other embedder calls, mirroring the teacher's top-level nilaway.go
// coordinating its accumulation analyzer. Infer takes an already-bound
// set of method signatures and bodies: binding source text into that
// shape is this module's declared out-of-scope boundary (see the
// fixture and harness packages for the two ways a caller supplies it).
package nullgraph

import (
	"context"
	"fmt"

	"github.com/nullgraph/nullgraph/builder"
	"github.com/nullgraph/nullgraph/config"
	"github.com/nullgraph/nullgraph/diagnostic"
	"github.com/nullgraph/nullgraph/fixture"
	"github.com/nullgraph/nullgraph/graph"
	"github.com/nullgraph/nullgraph/lang"
	"github.com/nullgraph/nullgraph/registry"
	"github.com/nullgraph/nullgraph/solver"
)

// Unit is one method to declare and build: its signature (as a
// fixture.MethodSpec, so its declared types carry the nullable-reference
// annotations the JSON surface records) plus the already-bound symbol and
// body fixture.MethodSpec.Decode produced from it.
type Unit struct {
	Tree   string
	Spec   fixture.MethodSpec
	Method *lang.MethodSymbol
	Body   lang.Operation
}

// Report is the outcome of one Infer run.
type Report struct {
	Registry       *registry.Registry
	Graph          *graph.Graph
	Result         *solver.Result
	Contradictions []*diagnostic.Contradiction
	BuildErrors    []builder.TreeResult
}

type moduleResolver struct {
	symbols map[lang.Symbol]bool
}

func (r *moduleResolver) IsCurrentModule(sym lang.Symbol) bool { return r.symbols[sym] }

// Infer declares every unit's signature, builds every unit's body
// concurrently (bounded by cfg.EffectiveWorkers), freezes the resulting
// graph, solves it, and collects the contradictions it found, grouping
// them when cfg.ShouldGroup. Every unit in units is treated as belonging
// to the current module (spec.md section 4.1): a unit that calls into a
// symbol outside units resolves that symbol lazily from its declared
// annotation via registry.FromType, the same as a truly external
// dependency would.
func Infer(ctx context.Context, units []Unit, cfg *config.Config) (*Report, error) {
	g := graph.New()
	resolver := &moduleResolver{symbols: map[lang.Symbol]bool{}}
	for _, u := range units {
		resolver.symbols[u.Method] = true
		for _, p := range u.Method.Params {
			resolver.symbols[p] = true
		}
	}
	reg := registry.New(g, resolver)
	if cfg.Cache != nil {
		reg.SetCache(cfg.Cache)
	}

	var declUnits []builder.DeclUnit
	for _, u := range units {
		if len(u.Spec.Returns) == 0 {
			return nil, fmt.Errorf("nullgraph: method %s declares no return type", u.Spec.Name)
		}
		retSyntax, err := u.Spec.Returns[0].ToSyntax()
		if err != nil {
			return nil, fmt.Errorf("nullgraph: method %s: %w", u.Spec.Name, err)
		}
		declUnits = append(declUnits, builder.DeclUnit{Tree: u.Tree, Symbol: u.Method, Syntax: retSyntax})
		for i, p := range u.Spec.Params {
			paramSyntax, err := p.Type.ToSyntax()
			if err != nil {
				return nil, fmt.Errorf("nullgraph: method %s: param %s: %w", u.Spec.Name, p.Name, err)
			}
			declUnits = append(declUnits, builder.DeclUnit{Tree: u.Tree, Symbol: u.Method.Params[i], Syntax: paramSyntax})
		}
	}

	pool := builder.NewPool(reg, cfg.EffectiveWorkers())
	pool.Declare(declUnits)

	var buildUnits []builder.BuildUnit
	for _, u := range units {
		buildUnits = append(buildUnits, builder.BuildUnit{Tree: u.Tree, Method: u.Method, Body: u.Body})
	}
	buildResults, err := pool.Build(ctx, buildUnits)
	if err != nil {
		return nil, fmt.Errorf("nullgraph: %w", err)
	}

	g.Freeze()
	result := solver.Solve(g)

	contradictions := diagnostic.Collect(result, g.Nullable(), g.NonNull())
	if cfg.ShouldGroup() {
		contradictions = diagnostic.Group(contradictions)
	}

	var buildErrors []builder.TreeResult
	for _, r := range buildResults {
		if r.Err != nil {
			buildErrors = append(buildErrors, r)
		}
	}

	return &Report{
		Registry:       reg,
		Graph:          g,
		Result:         result,
		Contradictions: contradictions,
		BuildErrors:    buildErrors,
	}, nil
}

// UnitsFromSpecs decodes every spec into a Unit, naming each tree after
// its position and declared method name so that builder.Pool's
// deterministic commit order is stable across runs over the same input.
func UnitsFromSpecs(specs []fixture.MethodSpec) ([]Unit, error) {
	units := make([]Unit, len(specs))
	for i, spec := range specs {
		method, body, err := spec.Decode()
		if err != nil {
			return nil, err
		}
		units[i] = Unit{Tree: fmt.Sprintf("tree-%d:%s", i, spec.Name), Spec: spec, Method: method, Body: body}
	}
	return units, nil
}
