package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nullgraph/nullgraph/external"
	"github.com/nullgraph/nullgraph/graph"
	"github.com/nullgraph/nullgraph/lang"
	"github.com/nullgraph/nullgraph/node"
)

type resolverFunc func(lang.Symbol) bool

func (f resolverFunc) IsCurrentModule(sym lang.Symbol) bool { return f(sym) }

func freshRegistry(t *testing.T, resolver ExternalResolver) *Registry {
	t.Helper()
	node.Reset()
	return New(graph.New(), resolver)
}

func TestDeclareSymbolTypeThenGetReturnsSameValue(t *testing.T) {
	reg := freshRegistry(t, resolverFunc(func(lang.Symbol) bool { return true }))
	sym := &lang.ParamSymbol{SymbolName: "x", Type: &lang.NamedType{TypeName: "String"}}
	twn := node.Of(sym.Type, "x")

	reg.DeclareSymbolType(sym, twn)
	require.Equal(t, twn, reg.GetSymbolType(sym))
	require.Equal(t, 1, reg.DeclaredSymbolCount())
}

func TestDeclareSymbolTypeTwicePanics(t *testing.T) {
	reg := freshRegistry(t, resolverFunc(func(lang.Symbol) bool { return true }))
	sym := &lang.ParamSymbol{SymbolName: "x", Type: &lang.NamedType{TypeName: "String"}}
	twn := node.Of(sym.Type, "x")

	reg.DeclareSymbolType(sym, twn)
	require.Panics(t, func() { reg.DeclareSymbolType(sym, twn) })
}

func TestGetSymbolTypeOnUndeclaredCurrentModuleSymbolPanics(t *testing.T) {
	reg := freshRegistry(t, resolverFunc(func(lang.Symbol) bool { return true }))
	sym := &lang.ParamSymbol{SymbolName: "x", Type: &lang.NamedType{TypeName: "String"}}

	require.Panics(t, func() { reg.GetSymbolType(sym) })
}

func TestGetSymbolTypeMaterializesExternalSymbolFromAnnotation(t *testing.T) {
	reg := freshRegistry(t, resolverFunc(func(lang.Symbol) bool { return false }))
	sym := &lang.ParamSymbol{SymbolName: "x", Type: &lang.NamedType{TypeName: "String"}, Ann: lang.Annotated}

	twn := reg.GetSymbolType(sym)
	require.Same(t, node.NullableNode, twn.Node)
}

func TestGetSymbolTypeCachesExternalMaterializationAcrossCalls(t *testing.T) {
	reg := freshRegistry(t, resolverFunc(func(lang.Symbol) bool { return false }))
	sym := &lang.ParamSymbol{SymbolName: "x", Type: &lang.NamedType{TypeName: "String"}, Ann: lang.NotAnnotated}

	first := reg.GetSymbolType(sym)
	second := reg.GetSymbolType(sym)
	require.Equal(t, first, second)
	require.Equal(t, 1, reg.DeclaredSymbolCount())
}

func TestGetSymbolTypeAliasesSetterValueParamToPropertyType(t *testing.T) {
	reg := freshRegistry(t, resolverFunc(func(lang.Symbol) bool { return true }))
	prop := &lang.PropertySymbol{SymbolName: "Name", Type: &lang.NamedType{TypeName: "String"}}
	value := &lang.ParamSymbol{SymbolName: "value", ContainerSym: prop, Ordinal: 0}

	propTwn := node.Of(prop.Type, "Name")
	reg.DeclareSymbolType(prop, propTwn)
	require.Equal(t, propTwn, reg.GetSymbolType(value))
}

func TestGetSymbolTypeAliasesIndexerAccessorParamToCanonical(t *testing.T) {
	reg := freshRegistry(t, resolverFunc(func(lang.Symbol) bool { return true }))
	prop := &lang.PropertySymbol{SymbolName: "Item", Type: &lang.NamedType{TypeName: "String"}}
	canonical := &lang.ParamSymbol{SymbolName: "index", ContainerSym: prop, Ordinal: 0, Type: &lang.ValueType{TypeName: "Int32"}}
	prop.Params = []*lang.ParamSymbol{canonical}
	getterParam := &lang.ParamSymbol{SymbolName: "index", ContainerSym: prop, Ordinal: 0, Type: &lang.ValueType{TypeName: "Int32"}}

	canonicalTwn := node.Of(canonical.Type, "index")
	reg.DeclareSymbolType(canonical, canonicalTwn)
	require.Equal(t, canonicalTwn, reg.GetSymbolType(getterParam))
}

func TestFromTypeValueTypedPositionIsAlwaysOblivious(t *testing.T) {
	twn := FromType(&lang.ValueType{TypeName: "Int32"}, lang.Annotated)
	require.Same(t, node.ObliviousNode, twn.Node)
}

func TestFromTypeNoneAnnotationIsOblivious(t *testing.T) {
	twn := FromType(&lang.NamedType{TypeName: "String"}, lang.None)
	require.Same(t, node.ObliviousNode, twn.Node)
}

func TestGetMappingReturnsSameInstanceForSameTree(t *testing.T) {
	reg := freshRegistry(t, resolverFunc(func(lang.Symbol) bool { return true }))
	require.Same(t, reg.GetMapping("a.cs"), reg.GetMapping("a.cs"))
	require.NotSame(t, reg.GetMapping("a.cs"), reg.GetMapping("b.cs"))
}

func TestGetSymbolTypeMaterializesFromAttachedCacheOnHit(t *testing.T) {
	dir := t.TempDir()
	cache, err := external.Open(filepath.Join(dir, "cache.db"), filepath.Join(dir, "manifest.json"))
	require.NoError(t, err)
	defer cache.Close()

	ty := &lang.NamedType{TypeName: "String"}
	require.NoError(t, cache.Put("Other.Module", "Helper", lang.Annotated, ty))

	reg := freshRegistry(t, resolverFunc(func(lang.Symbol) bool { return false }))
	reg.SetCache(cache)

	sym := &lang.ParamSymbol{SymbolName: "Helper", ModuleName: "Other.Module", Type: &lang.NamedType{TypeName: "Int32"}, Ann: lang.NotAnnotated}
	twn := reg.GetSymbolType(sym)

	// The cached entry (Annotated) wins over the symbol's own declared
	// annotation (NotAnnotated): a hit short-circuits re-derivation.
	require.Same(t, node.NullableNode, twn.Node)
}

func TestGetSymbolTypeStoresExternalMaterializationInAttachedCache(t *testing.T) {
	dir := t.TempDir()
	cache, err := external.Open(filepath.Join(dir, "cache.db"), filepath.Join(dir, "manifest.json"))
	require.NoError(t, err)
	defer cache.Close()

	reg := freshRegistry(t, resolverFunc(func(lang.Symbol) bool { return false }))
	reg.SetCache(cache)

	sym := &lang.ParamSymbol{SymbolName: "Helper", ModuleName: "Other.Module", Type: &lang.NamedType{TypeName: "String"}, Ann: lang.Annotated}
	reg.GetSymbolType(sym)

	ann, ty, ok, err := cache.Get("Other.Module", "Helper")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, lang.Annotated, ann)
	require.Equal(t, "String", ty.Name())
}
