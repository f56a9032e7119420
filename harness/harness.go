// Package harness drives the full declare/build/solve pipeline over one
// method fixture and answers the path queries spec.md section 6 assigns to
// an external test harness: HasPathFromParameterToReturnType and
// CheckPaths. spec.md states that compiling source text into a bound tree
// is this module's declared out-of-scope boundary (an external binder
// collaborator); this package accordingly takes an already-bound
// lang.Operation tree in place of source, rather than reimplementing a
// parser/binder for the fictional object language the core operates over.
package harness

import (
	"context"
	"fmt"

	"github.com/nullgraph/nullgraph/builder"
	"github.com/nullgraph/nullgraph/graph"
	"github.com/nullgraph/nullgraph/lang"
	"github.com/nullgraph/nullgraph/node"
	"github.com/nullgraph/nullgraph/registry"
	"github.com/nullgraph/nullgraph/solver"
)

// Case is one fixture: a method signature and its already-bound body,
// standing in for a single declared method compiled from a source snippet.
type Case struct {
	Method *lang.MethodSymbol
	Body   lang.Operation
}

// moduleResolver treats exactly the fixture's own method and parameters as
// current-module symbols; anything else referenced from the body (e.g. a
// field or an external method called on a constructor argument) is
// materialized lazily from its declared annotation, the same as a symbol
// from a separately compiled module would be (spec.md section 4.1).
type moduleResolver struct {
	symbols map[lang.Symbol]bool
}

func (m *moduleResolver) IsCurrentModule(sym lang.Symbol) bool { return m.symbols[sym] }

// Outcome is the solved graph produced by Run, plus the declared
// TypeWithNode for the fixture's method and parameters so a caller can
// locate the nodes the path queries below operate on.
type Outcome struct {
	Registry *registry.Registry
	Graph    *graph.Graph
	Result   *solver.Result
	Method   node.TypeWithNode
	Params   []node.TypeWithNode
}

// Run declares the fixture's method and parameter signatures, builds its
// body, freezes the resulting graph, and solves it. It panics if the body
// contains an operation kind the builder does not implement or if the
// pipeline otherwise misbehaves: a harness fixture is expected to exercise
// only supported constructs, so a failure here is a test bug, not a
// runtime condition callers should recover from.
func Run(c Case) *Outcome {
	g := graph.New()
	resolver := &moduleResolver{symbols: map[lang.Symbol]bool{c.Method: true}}
	for _, p := range c.Method.Params {
		resolver.symbols[p] = true
	}
	reg := registry.New(g, resolver)

	pool := builder.NewPool(reg, 0)
	pool.Declare(declUnits(c.Method))

	results, err := pool.Build(context.Background(), []builder.BuildUnit{{
		Tree:   "fixture",
		Method: c.Method,
		Body:   c.Body,
	}})
	if err != nil {
		panic(fmt.Sprintf("nullgraph/harness: build cancelled: %v", err))
	}
	for _, r := range results {
		if r.Err != nil {
			panic(fmt.Sprintf("nullgraph/harness: tree %q: %v", r.Tree, r.Err))
		}
	}

	g.Freeze()

	params := make([]node.TypeWithNode, len(c.Method.Params))
	for i, p := range c.Method.Params {
		params[i] = reg.GetSymbolType(p)
	}
	return &Outcome{
		Registry: reg,
		Graph:    g,
		Result:   solver.Solve(g),
		Method:   reg.GetSymbolType(c.Method),
		Params:   params,
	}
}

// declUnits declares the fixture's method and parameters through the same
// syntax-visitor path a real declared signature would take (DeclUnit.Syntax,
// not Fallback): an unannotated reference-typed position must get a fresh
// inferred node to participate in the solver, which registry.FromType's
// fixed Annotated/NotAnnotated/None mapping does not produce. typeSyntax
// reconstructs the syntactic shape implied by each declared lang.Type.
func declUnits(m *lang.MethodSymbol) []builder.DeclUnit {
	units := make([]builder.DeclUnit, 0, 1+len(m.Params))
	units = append(units, builder.DeclUnit{Tree: "fixture", Symbol: m, Syntax: typeSyntax(m.DeclaredType())})
	for _, p := range m.Params {
		units = append(units, builder.DeclUnit{Tree: "fixture", Symbol: p, Syntax: typeSyntax(p.Type)})
	}
	return units
}

// typeSyntax reconstructs the lang.TypeSyntax a binder would have produced
// for an unannotated occurrence of ty, recursing into nested type arguments
// so that generic fixtures get one fresh node per nested reference-typed
// position, matching spec.md section 4.2's syntax-visitor rules.
func typeSyntax(ty lang.Type) *lang.TypeSyntax {
	if ty == nil {
		return nil
	}
	switch t := ty.(type) {
	case *lang.NullableValueType:
		return &lang.TypeSyntax{SyntaxKind: lang.NullableValueSyntax, Underlying: ty, Args: []*lang.TypeSyntax{typeSyntax(t.Elem)}}
	case *lang.ArrayType:
		return &lang.TypeSyntax{SyntaxKind: lang.ArraySyntax, Underlying: ty, Args: []*lang.TypeSyntax{typeSyntax(t.Elem)}}
	case *lang.TupleType:
		args := make([]*lang.TypeSyntax, len(t.Elems))
		for i, e := range t.Elems {
			args[i] = typeSyntax(e)
		}
		return &lang.TypeSyntax{SyntaxKind: lang.TupleSyntax, Underlying: ty, Args: args, Names: t.Names}
	default:
		var args []*lang.TypeSyntax
		for _, a := range ty.TypeArguments() {
			args = append(args, typeSyntax(a))
		}
		return &lang.TypeSyntax{SyntaxKind: lang.NamedSyntax, Underlying: ty, Args: args}
	}
}

// HasPathFromParameterToReturnType reports whether any of the fixture's
// declared parameters has a directed path, in the solved flow graph, to the
// method's declared return node (spec.md section 6).
func HasPathFromParameterToReturnType(c Case) bool {
	out := Run(c)
	for _, p := range out.Params {
		if solver.PathExists(p.Node, out.Method.Node) {
			return true
		}
	}
	return false
}

// PathAssertions is the three-part check spec.md section 6 assigns to
// CheckPaths, evaluated against the first declared parameter (the common
// single-parameter shape every scenario in spec.md section 8 uses).
type PathAssertions struct {
	// ReturnNullable asserts whether a path exists from the Nullable
	// singleton to the method's return node.
	ReturnNullable bool
	// ReturnDependsOnInput asserts whether a path exists from the first
	// parameter to the method's return node.
	ReturnDependsOnInput bool
	// InputMustBeNonNull asserts whether a path exists from the first
	// parameter to the NonNull singleton.
	InputMustBeNonNull bool
}

// CheckPaths runs the fixture and reports whether the solved graph matches
// every assertion in want, returning a human-readable mismatch description
// when it does not (spec.md section 6, "CheckPaths").
func CheckPaths(c Case, want PathAssertions) (ok bool, mismatch string) {
	out := Run(c)
	if len(out.Params) == 0 {
		return false, "fixture declares no parameters to check"
	}
	param := out.Params[0]

	gotReturnNullable := solver.PathExists(out.Graph.Nullable(), out.Method.Node)
	gotReturnDependsOnInput := solver.PathExists(param.Node, out.Method.Node)
	gotInputMustBeNonNull := solver.PathExists(param.Node, out.Graph.NonNull())

	switch {
	case gotReturnNullable != want.ReturnNullable:
		return false, fmt.Sprintf("Nullable -> return: got %v, want %v", gotReturnNullable, want.ReturnNullable)
	case gotReturnDependsOnInput != want.ReturnDependsOnInput:
		return false, fmt.Sprintf("parameter -> return: got %v, want %v", gotReturnDependsOnInput, want.ReturnDependsOnInput)
	case gotInputMustBeNonNull != want.InputMustBeNonNull:
		return false, fmt.Sprintf("parameter -> NonNull: got %v, want %v", gotInputMustBeNonNull, want.InputMustBeNonNull)
	}
	return true, ""
}
