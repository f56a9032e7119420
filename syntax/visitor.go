// Package syntax implements the syntax visitor (spec.md section 4.2): it
// maps type syntax (declared types in signatures, local declarations,
// `new T(...)`, cast targets, array creations, explicit type arguments)
// to a TypeWithNode, allocating one nullability node per reference-type
// syntactic position and reusing the node recorded for a position on a
// repeat visit.
package syntax

import (
	"fmt"

	"github.com/nullgraph/nullgraph/lang"
	"github.com/nullgraph/nullgraph/node"
	"github.com/nullgraph/nullgraph/registry"
)

// Visitor maps lang.TypeSyntax occurrences in one tree to TypeWithNode,
// consulting and populating that tree's registry.SyntaxMapping so that
// two visits of the same *lang.TypeSyntax value return the same node tree
// (spec.md section 4.1's node-identity invariant, applied to syntax
// rather than symbols).
type Visitor struct {
	mapping *registry.SyntaxMapping
}

// New returns a Visitor backed by the syntax-to-node mapping for tree,
// obtained from reg.
func New(reg *registry.Registry, tree string) *Visitor {
	return &Visitor{mapping: reg.GetMapping(tree)}
}

// Visit maps a type syntax occurrence to a TypeWithNode, applying the
// rules of spec.md section 4.2:
//
//   - `T` (unannotated reference type) gets a fresh inferred node;
//   - `T?` over a reference-typed T gets the nullable node;
//   - `T?` over a value-typed T gets the oblivious node at the outer
//     `Nullable<T>` position, recursing into T with the ordinary rule;
//   - `var` is not visited here at all: callers must instead adopt the
//     initializer's TypeWithNode (spec.md section 4.3);
//   - tuples get one child per element in declared order, with named
//     members aliased to their positional child;
//   - a generic-qualified name's type arguments feed the substitution
//     used at the member reference (surfaced via Qualifier, not
//     recursed into here).
func (v *Visitor) Visit(syn *lang.TypeSyntax) node.TypeWithNode {
	if syn == nil {
		return node.TypeWithNode{}
	}
	switch syn.SyntaxKind {
	case lang.VarSyntax:
		panic("nullgraph: syntax visitor invoked on `var`; callers must adopt the initializer's type instead")
	case lang.NullableRefSyntax:
		return v.visitNullableRef(syn)
	case lang.NullableValueSyntax:
		return v.visitNullableValue(syn)
	case lang.ArraySyntax:
		return v.visitArray(syn)
	case lang.TupleSyntax:
		return v.visitTuple(syn)
	case lang.NamedSyntax, lang.GenericQualifiedSyntax:
		return v.visitNamed(syn)
	default:
		panic(fmt.Sprintf("nullgraph: unsupported type syntax kind %d", syn.SyntaxKind))
	}
}

func (v *Visitor) outerNode(syn *lang.TypeSyntax, nullable bool) *node.Node {
	n, _ := v.mapping.NodeFor(syn, func() *node.Node {
		if nullable {
			return node.NullableNode
		}
		return node.NewInferred(syn.Underlying.Name())
	})
	return n
}

func (v *Visitor) visitNullableRef(syn *lang.TypeSyntax) node.TypeWithNode {
	outer := v.outerNode(syn, true)
	args := v.visitArgs(syn.Args)
	return node.Build(outer, syn.Underlying, args)
}

func (v *Visitor) visitNullableValue(syn *lang.TypeSyntax) node.TypeWithNode {
	// The outer `Nullable<T>` position is oblivious (it is a value type);
	// only one child exists, the wrapped T, visited with the ordinary
	// (non-nullable) rule per spec.md section 4.2.
	n, _ := v.mapping.NodeFor(syn, func() *node.Node { return node.ObliviousNode })
	var args []node.TypeWithNode
	if len(syn.Args) == 1 {
		args = []node.TypeWithNode{v.Visit(syn.Args[0])}
	}
	return node.Build(n, syn.Underlying, args)
}

func (v *Visitor) visitArray(syn *lang.TypeSyntax) node.TypeWithNode {
	outer := v.outerNode(syn, false)
	args := v.visitArgs(syn.Args) // exactly one: the element type, possibly itself an array
	return node.Build(outer, syn.Underlying, args)
}

func (v *Visitor) visitTuple(syn *lang.TypeSyntax) node.TypeWithNode {
	// Tuples are value types; the outer position is oblivious, one child
	// per element in declared order. Named members alias to the
	// positional child: callers look the member up by index via
	// lang.TupleType.NameOf, not through a separate node.
	n, _ := v.mapping.NodeFor(syn, func() *node.Node { return node.ObliviousNode })
	args := v.visitArgs(syn.Args)
	return node.Build(n, syn.Underlying, args)
}

func (v *Visitor) visitNamed(syn *lang.TypeSyntax) node.TypeWithNode {
	if !syn.Underlying.IsReferenceType() {
		// An unannotated value type still recurses into any type
		// arguments it might carry (e.g. a generic struct).
		n, _ := v.mapping.NodeFor(syn, func() *node.Node { return node.ObliviousNode })
		return node.Build(n, syn.Underlying, v.visitArgs(syn.Args))
	}
	outer := v.outerNode(syn, false)
	args := v.visitArgs(syn.Args)
	return node.Build(outer, syn.Underlying, args)
}

func (v *Visitor) visitArgs(args []*lang.TypeSyntax) []node.TypeWithNode {
	if len(args) == 0 {
		return nil
	}
	out := make([]node.TypeWithNode, len(args))
	for i, a := range args {
		out[i] = v.Visit(a)
	}
	return out
}

// VisitQualifier maps the type-argument list of a generic qualifier
// (`C<T>` in `C<T>.Member`) to a slice of TypeWithNode, used to build the
// class half of a TypeSubstitution at the member reference (spec.md
// section 4.2's "Generic name references" rule).
func (v *Visitor) VisitQualifier(syn *lang.TypeSyntax) []node.TypeWithNode {
	if syn == nil {
		return nil
	}
	return v.visitArgs(syn.Qualifier)
}

// AdoptInitializer implements the `var` rule: the implicitly typed local's
// TypeWithNode is the initializer expression's TypeWithNode, unchanged,
// including all of its inner nodes (spec.md section 4.2 and the testable
// property in section 8: "Implicit-typed local ... adopt the
// initializer's entire TypeWithNode including inner nodes").
func AdoptInitializer(initializerType node.TypeWithNode) node.TypeWithNode {
	return initializerType
}
