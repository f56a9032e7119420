package builder

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nullgraph/nullgraph/graph"
	"github.com/nullgraph/nullgraph/lang"
	"github.com/nullgraph/nullgraph/node"
	"github.com/nullgraph/nullgraph/registry"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixedResolver struct{ symbols map[lang.Symbol]bool }

func (r fixedResolver) IsCurrentModule(sym lang.Symbol) bool { return r.symbols[sym] }

func stringIdentity(name string) (*lang.MethodSymbol, lang.Operation, *lang.ParamSymbol) {
	param := &lang.ParamSymbol{SymbolName: "input", ModuleName: "test", Type: &lang.NamedType{TypeName: "String"}}
	method := &lang.MethodSymbol{SymbolName: name, ModuleName: "test", Params: []*lang.ParamSymbol{param},
		Returns: []lang.Type{&lang.NamedType{TypeName: "String"}}}
	param.ContainerSym = method
	body := &lang.Return{Values: []lang.Operation{&lang.VarRef{Symbol: param}}}
	return method, body, param
}

func stringSyntax() *lang.TypeSyntax {
	return &lang.TypeSyntax{SyntaxKind: lang.NamedSyntax, Underlying: &lang.NamedType{TypeName: "String"}}
}

func declareUnits(method *lang.MethodSymbol, param *lang.ParamSymbol, tree string) []DeclUnit {
	return []DeclUnit{
		{Tree: tree, Symbol: method, Syntax: stringSyntax()},
		{Tree: tree, Symbol: param, Syntax: stringSyntax()},
	}
}

func TestPoolBuildCommitsEveryTreeWhenNoneFail(t *testing.T) {
	node.Reset()
	g := graph.New()
	resolver := fixedResolver{symbols: map[lang.Symbol]bool{}}
	reg := registry.New(g, resolver)

	const n = 8
	var buildUnits []BuildUnit
	for i := 0; i < n; i++ {
		method, body, param := stringIdentity(fmt.Sprintf("M%d", i))
		resolver.symbols[method] = true
		resolver.symbols[param] = true
		tree := fmt.Sprintf("tree-%02d", i)
		pool := NewPool(reg, 4)
		pool.Declare(declareUnits(method, param, tree))
		buildUnits = append(buildUnits, BuildUnit{Tree: tree, Method: method, Body: body})
	}

	pool := NewPool(reg, 4)
	results, err := pool.Build(context.Background(), buildUnits)
	require.NoError(t, err)
	require.Len(t, results, n)
	for _, r := range results {
		require.NoError(t, r.Err)
	}
}

func TestPoolBuildCommitOrderIsTreeNameSorted(t *testing.T) {
	node.Reset()
	g := graph.New()
	resolver := fixedResolver{symbols: map[lang.Symbol]bool{}}
	reg := registry.New(g, resolver)
	pool := NewPool(reg, 0)

	var buildUnits []BuildUnit
	for _, tree := range []string{"zebra", "alpha", "mid"} {
		method, body, param := stringIdentity(tree)
		resolver.symbols[method] = true
		resolver.symbols[param] = true
		pool.Declare(declareUnits(method, param, tree))
		buildUnits = append(buildUnits, BuildUnit{Tree: tree, Method: method, Body: body})
	}

	results, err := pool.Build(context.Background(), buildUnits)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "mid", "zebra"}, []string{results[0].Tree, results[1].Tree, results[2].Tree})
}

func TestPoolBuildCancelledContextStopsWithoutCommitting(t *testing.T) {
	node.Reset()
	g := graph.New()
	resolver := fixedResolver{symbols: map[lang.Symbol]bool{}}
	reg := registry.New(g, resolver)
	pool := NewPool(reg, 1)

	method, body, param := stringIdentity("Cancelled")
	resolver.symbols[method] = true
	resolver.symbols[param] = true
	pool.Declare(declareUnits(method, param, "only"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pool.Build(ctx, []BuildUnit{{Tree: "only", Method: method, Body: body}})
	require.ErrorIs(t, err, context.Canceled)
}
