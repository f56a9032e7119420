package nullgraph

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nullgraph/nullgraph/config"
	"github.com/nullgraph/nullgraph/fixture"
	"github.com/nullgraph/nullgraph/solver"
)

func decodeSpecs(t *testing.T, doc string) []fixture.MethodSpec {
	t.Helper()
	var specs []fixture.MethodSpec
	require.NoError(t, json.Unmarshal([]byte(doc), &specs))
	return specs
}

// string Identity(string input) => input;
func TestInferReturnsParameterVerbatimHasNoContradiction(t *testing.T) {
	t.Parallel()

	specs := decodeSpecs(t, `[{
		"name": "Identity",
		"params": [{"name": "input", "type": {"kind": "named", "name": "String"}}],
		"returns": [{"kind": "named", "name": "String"}],
		"body": {"op": "return", "values": [{"op": "varRef", "var": "input"}]}
	}]`)

	units, err := UnitsFromSpecs(specs)
	require.NoError(t, err)

	report, err := Infer(context.Background(), units, config.Default())
	require.NoError(t, err)
	require.Empty(t, report.Contradictions)

	param := report.Registry.GetSymbolType(units[0].Method.Params[0])
	ret := report.Registry.GetSymbolType(units[0].Method)
	require.True(t, solver.PathExists(param.Node, ret.Node))
}

// int Unbox(object input) => (int)input;
func TestInferUnboxToNonNullableForcesNonNull(t *testing.T) {
	t.Parallel()

	specs := decodeSpecs(t, `[{
		"name": "Unbox",
		"params": [{"name": "input", "type": {"kind": "named", "name": "Object"}}],
		"returns": [{"kind": "value", "name": "Int32"}],
		"body": {"op": "return", "values": [{
			"op": "conversion",
			"operand": {"op": "varRef", "var": "input"},
			"target": {"kind": "value", "name": "Int32"},
			"conversionKind": "unboxing"
		}]}
	}]`)

	units, err := UnitsFromSpecs(specs)
	require.NoError(t, err)

	report, err := Infer(context.Background(), units, config.Default())
	require.NoError(t, err)
	require.Empty(t, report.Contradictions)

	param := report.Registry.GetSymbolType(units[0].Method.Params[0])
	require.True(t, solver.PathExists(param.Node, report.Graph.NonNull()))
}

// Two independent methods in one document: each tree's batch must commit
// without interfering with the other's nodes or edges.
func TestInferMultipleTreesCommitDeterministically(t *testing.T) {
	t.Parallel()

	specs := decodeSpecs(t, `[
		{
			"name": "First",
			"params": [{"name": "input", "type": {"kind": "named", "name": "String"}}],
			"returns": [{"kind": "named", "name": "String"}],
			"body": {"op": "return", "values": [{"op": "literal", "type": {"kind": "named", "name": "String"}}]}
		},
		{
			"name": "Second",
			"params": [{"name": "input", "type": {"kind": "named", "name": "String"}}],
			"returns": [{"kind": "named", "name": "String"}],
			"body": {"op": "return", "values": [{"op": "varRef", "var": "input"}]}
		}
	]`)

	units, err := UnitsFromSpecs(specs)
	require.NoError(t, err)

	report, err := Infer(context.Background(), units, config.Default())
	require.NoError(t, err)
	require.Empty(t, report.BuildErrors)
	require.Len(t, units, 2)
}
