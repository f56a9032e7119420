package node

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nullgraph/nullgraph/lang"
)

func TestNewInferredNodesHaveDistinctIDs(t *testing.T) {
	Reset()
	a := NewInferred("a")
	b := NewInferred("b")
	require.NotEqual(t, a.ID(), b.ID())
}

func TestSpecialSingletonsReportIsSpecial(t *testing.T) {
	require.True(t, NullableNode.IsSpecial())
	require.True(t, NonNullNode.IsSpecial())
	require.True(t, ObliviousNode.IsSpecial())
	require.False(t, NewInferred("x").IsSpecial())
}

func TestConnectRecordsBothDirections(t *testing.T) {
	Reset()
	a, b := NewInferred("a"), NewInferred("b")
	e := Connect(a, b, "assign", lang.Location{})

	require.Equal(t, []*Edge{e}, a.Outgoing())
	require.Equal(t, []*Edge{e}, b.Incoming())
}

func TestResetClearsSingletonEdgesAndIDCounter(t *testing.T) {
	Reset()
	a := NewInferred("a")
	Connect(NullableNode, a, "assign", lang.Location{})
	require.NotEmpty(t, NullableNode.Outgoing())

	Reset()
	require.Empty(t, NullableNode.Outgoing())
	require.Empty(t, NullableNode.Incoming())

	fresh := NewInferred("fresh")
	require.Equal(t, uint64(4), fresh.ID())
}

func TestOfUnannotatedReferenceTypeGetsFreshInferredNode(t *testing.T) {
	Reset()
	twn := Of(&lang.NamedType{TypeName: "String"}, "s")
	require.Equal(t, Inferred, twn.Node.NullType)
}

func TestOfValueTypeIsOblivious(t *testing.T) {
	twn := Of(&lang.ValueType{TypeName: "Int32"}, "n")
	require.Same(t, ObliviousNode, twn.Node)
}

func TestOfNullableReferenceTypeGetsNullableSingleton(t *testing.T) {
	twn := OfNullable(&lang.NamedType{TypeName: "String"}, "s")
	require.Same(t, NullableNode, twn.Node)
}

func TestOfRecursesIntoTypeArguments(t *testing.T) {
	listOfString := &lang.NamedType{TypeName: "List", TypeArgs: []lang.Type{&lang.NamedType{TypeName: "String"}}}
	twn := Of(listOfString, "list")
	require.Len(t, twn.Args, 1)
	require.Equal(t, Inferred, twn.Args[0].Node.NullType)
}

func TestUnderlyingReturnsDeclaredType(t *testing.T) {
	ty := &lang.NamedType{TypeName: "String"}
	twn := Of(ty, "s")
	require.Same(t, ty, twn.Underlying())
}
