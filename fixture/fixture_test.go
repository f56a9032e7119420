package fixture

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nullgraph/nullgraph/lang"
)

func TestParseMethodReturnsParameterVerbatim(t *testing.T) {
	t.Parallel()

	doc := []byte(`{
		"name": "Identity",
		"params": [{"name": "input", "type": {"kind": "named", "name": "String"}}],
		"returns": [{"kind": "named", "name": "String"}],
		"body": {"op": "return", "values": [{"op": "varRef", "var": "input"}]}
	}`)

	method, body, err := ParseMethod(doc)
	require.NoError(t, err)
	require.Equal(t, "Identity", method.SymbolName)
	require.Len(t, method.Params, 1)
	require.Equal(t, "input", method.Params[0].SymbolName)

	ret, ok := body.(*lang.Return)
	require.True(t, ok)
	require.Len(t, ret.Values, 1)
	ref, ok := ret.Values[0].(*lang.VarRef)
	require.True(t, ok)
	require.Same(t, method.Params[0], ref.Symbol)
}

func TestParseMethodUnboxingConversion(t *testing.T) {
	t.Parallel()

	doc := []byte(`{
		"name": "Unbox",
		"params": [{"name": "input", "type": {"kind": "named", "name": "Object"}}],
		"returns": [{"kind": "value", "name": "Int32"}],
		"body": {"op": "return", "values": [{
			"op": "conversion",
			"operand": {"op": "varRef", "var": "input"},
			"target": {"kind": "value", "name": "Int32"},
			"conversionKind": "unboxing"
		}]}
	}`)

	_, body, err := ParseMethod(doc)
	require.NoError(t, err)
	ret := body.(*lang.Return)
	conv := ret.Values[0].(*lang.Conversion)
	require.Equal(t, lang.UnboxingConversion, conv.Kind)
	require.Equal(t, lang.ValueKind, conv.Target.Kind())
}

func TestParseMethodUndeclaredVariable(t *testing.T) {
	t.Parallel()

	doc := []byte(`{
		"name": "Bad",
		"params": [],
		"returns": [{"kind": "named", "name": "String"}],
		"body": {"op": "return", "values": [{"op": "varRef", "var": "missing"}]}
	}`)

	_, _, err := ParseMethod(doc)
	require.Error(t, err)
}

func TestTypeSpecToSyntaxNullableValue(t *testing.T) {
	t.Parallel()

	spec := TypeSpec{Kind: "value", Name: "Int32", Nullable: true}
	syn, err := spec.ToSyntax()
	require.NoError(t, err)
	require.Equal(t, lang.NullableValueSyntax, syn.SyntaxKind)
	require.Equal(t, lang.NullableValueKind, syn.Underlying.Kind())
}

func TestTypeSpecToSyntaxNullableReference(t *testing.T) {
	t.Parallel()

	spec := TypeSpec{Kind: "named", Name: "String", Nullable: true}
	syn, err := spec.ToSyntax()
	require.NoError(t, err)
	require.Equal(t, lang.NullableRefSyntax, syn.SyntaxKind)
}
