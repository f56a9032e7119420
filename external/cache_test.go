package external

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nullgraph/nullgraph/lang"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	dir := t.TempDir()
	c, err := Open(filepath.Join(dir, "cache.db"), filepath.Join(dir, "manifest.json"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, c.Close()) })
	return c
}

func TestCacheRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ty   lang.Type
	}{
		{"Named", &lang.NamedType{TypeName: "Box", TypeArgs: []lang.Type{&lang.ValueType{TypeName: "Int32"}}, ArgVariance: []lang.Variance{lang.Covariant}}},
		{"Value", &lang.ValueType{TypeName: "Int32"}},
		{"NullableValue", &lang.NullableValueType{Elem: &lang.ValueType{TypeName: "Int32"}}},
		{"Array", &lang.ArrayType{Elem: &lang.NamedType{TypeName: "String"}}},
		{"Tuple", &lang.TupleType{Elems: []lang.Type{&lang.ValueType{TypeName: "Int32"}, &lang.NamedType{TypeName: "String"}}}},
		{"Delegate", &lang.DelegateType{Params: []lang.Type{&lang.NamedType{TypeName: "String"}}, Return: &lang.ValueType{TypeName: "Boolean"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := openTestCache(t)
			require.NoError(t, c.Put("Some.Module", "Some.Symbol", lang.Annotated, tt.ty))

			gotAnn, gotType, ok, err := c.Get("Some.Module", "Some.Symbol")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, lang.Annotated, gotAnn)
			require.Equal(t, tt.ty.Kind(), gotType.Kind())
			require.Equal(t, tt.ty.Name(), gotType.Name())
		})
	}
}

func TestCacheMiss(t *testing.T) {
	t.Parallel()

	c := openTestCache(t)
	_, _, ok, err := c.Get("Missing.Module", "Missing.Symbol")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCacheOverwrite(t *testing.T) {
	t.Parallel()

	c := openTestCache(t)
	require.NoError(t, c.Put("M", "S", lang.NotAnnotated, &lang.ValueType{TypeName: "Int32"}))
	require.NoError(t, c.Put("M", "S", lang.Annotated, &lang.ValueType{TypeName: "Int32"}))

	ann, _, ok, err := c.Get("M", "S")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, lang.Annotated, ann)
}

func TestCacheCoversManifest(t *testing.T) {
	t.Parallel()

	c := openTestCache(t)
	require.False(t, c.Covers("Some.Module"))

	require.NoError(t, c.Put("Some.Module", "Some.Symbol", lang.Annotated, &lang.ValueType{TypeName: "Int32"}))
	require.True(t, c.Covers("Some.Module"))
	require.False(t, c.Covers("Other.Module"))
}
