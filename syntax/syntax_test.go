package syntax

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nullgraph/nullgraph/lang"
	"github.com/nullgraph/nullgraph/node"
	"github.com/nullgraph/nullgraph/registry"
)

type noExternals struct{}

func (noExternals) IsCurrentModule(lang.Symbol) bool { return false }

func newVisitor(t *testing.T) *Visitor {
	t.Helper()
	node.Reset()
	reg := registry.New(nil, noExternals{})
	return New(reg, "t.cs")
}

func TestVisitUnannotatedNamedGetsFreshInferredNode(t *testing.T) {
	syn := &lang.TypeSyntax{SyntaxKind: lang.NamedSyntax, Underlying: &lang.NamedType{TypeName: "String"}}
	v := newVisitor(t)

	twn := v.Visit(syn)
	require.Equal(t, node.Inferred, twn.Node.NullType)
}

func TestVisitNullableRefGetsNullableSingleton(t *testing.T) {
	syn := &lang.TypeSyntax{SyntaxKind: lang.NullableRefSyntax, Underlying: &lang.NamedType{TypeName: "String"}}
	v := newVisitor(t)

	twn := v.Visit(syn)
	require.Same(t, node.NullableNode, twn.Node)
}

func TestVisitNullableValueOuterIsObliviousInnerIsInferred(t *testing.T) {
	inner := &lang.TypeSyntax{SyntaxKind: lang.NamedSyntax, Underlying: &lang.NamedType{TypeName: "Widget"}}
	outer := &lang.TypeSyntax{
		SyntaxKind: lang.NullableValueSyntax,
		Underlying: &lang.NullableValueType{Elem: &lang.ValueType{TypeName: "Int32"}},
		Args:       []*lang.TypeSyntax{inner},
	}
	v := newVisitor(t)

	twn := v.Visit(outer)
	require.Same(t, node.ObliviousNode, twn.Node)
	require.Len(t, twn.Args, 1)
	require.Equal(t, node.Inferred, twn.Args[0].Node.NullType)
}

func TestVisitUnannotatedValueTypeIsOblivious(t *testing.T) {
	syn := &lang.TypeSyntax{SyntaxKind: lang.NamedSyntax, Underlying: &lang.ValueType{TypeName: "Int32"}}
	v := newVisitor(t)

	twn := v.Visit(syn)
	require.Same(t, node.ObliviousNode, twn.Node)
}

func TestVisitArrayOuterUnannotatedInnerNullable(t *testing.T) {
	elem := &lang.TypeSyntax{SyntaxKind: lang.NullableRefSyntax, Underlying: &lang.NamedType{TypeName: "String"}}
	syn := &lang.TypeSyntax{
		SyntaxKind: lang.ArraySyntax,
		Underlying: &lang.ArrayType{Elem: &lang.NamedType{TypeName: "String"}},
		Args:       []*lang.TypeSyntax{elem},
	}
	v := newVisitor(t)

	twn := v.Visit(syn)
	require.Equal(t, node.Inferred, twn.Node.NullType)
	require.Len(t, twn.Args, 1)
	require.Same(t, node.NullableNode, twn.Args[0].Node)
}

func TestVisitSameSyntaxValueReturnsSameNodeOnRevisit(t *testing.T) {
	syn := &lang.TypeSyntax{SyntaxKind: lang.NamedSyntax, Underlying: &lang.NamedType{TypeName: "String"}}
	v := newVisitor(t)

	first := v.Visit(syn)
	second := v.Visit(syn)
	require.Same(t, first.Node, second.Node)
}

func TestVisitVarSyntaxPanics(t *testing.T) {
	syn := &lang.TypeSyntax{SyntaxKind: lang.VarSyntax}
	v := newVisitor(t)

	require.Panics(t, func() { v.Visit(syn) })
}

func TestAdoptInitializerReturnsInputUnchanged(t *testing.T) {
	twn := node.Build(node.NewInferred("x"), &lang.NamedType{TypeName: "String"}, nil)
	require.Equal(t, twn, AdoptInitializer(twn))
}
