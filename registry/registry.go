// Package registry implements the type system registry (spec.md section
// 4.1): the map from a Symbol to its canonical TypeWithNode, the
// special-case aliasing rules for property-setter and indexer-accessor
// parameters, and lazy materialization of external symbols from their
// declared annotation.
package registry

import (
	"fmt"
	"sync"

	"github.com/nullgraph/nullgraph/graph"
	"github.com/nullgraph/nullgraph/lang"
	"github.com/nullgraph/nullgraph/node"
	"github.com/nullgraph/nullgraph/util/orderedmap"
)

// ExternalResolver answers whether a symbol belongs to the module
// currently being analyzed. Symbols for which it returns false are
// materialized lazily from their declared annotation rather than asserted
// present (spec.md section 4.1). The external package's sqlite-backed
// cache does not implement this interface; it plugs in separately through
// ExternalCache. Here the registry only needs the membership test.
type ExternalResolver interface {
	// IsCurrentModule reports whether sym was declared in the module this
	// registry was constructed for.
	IsCurrentModule(sym lang.Symbol) bool
}

// ExternalCache optionally backs external-symbol materialization with a
// persistent store, so a repeated build over an unchanged dependency does
// not have to re-derive a TypeWithNode from the symbol's declared
// annotation every time (spec.md section 4.1, "external symbols
// materialised lazily"). *external.Cache implements this.
type ExternalCache interface {
	Get(module, name string) (lang.NullAnnotation, lang.Type, bool, error)
	Put(module, name string, ann lang.NullAnnotation, ty lang.Type) error
}

// SyntaxMapping is the syntax-to-node mapping for a single syntax tree
// (spec.md section 2, "Syntax-to-node mapping"; section 4.1,
// "GetMapping(tree)"). Lookups are keyed by the identity of the
// *lang.TypeSyntax value, not its contents, so that revisiting the same
// syntactic occurrence during a two-pass walk always reuses the node
// allocated on first visit.
type SyntaxMapping struct {
	mu    sync.Mutex
	nodes map[*lang.TypeSyntax]*node.Node
}

// NodeFor returns the node previously recorded for syn, or allocates one
// with fresh via the supplied constructor and records it. The second
// result is true if an existing node was reused.
func (m *SyntaxMapping) NodeFor(syn *lang.TypeSyntax, fresh func() *node.Node) (*node.Node, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.nodes[syn]; ok {
		return n, true
	}
	n := fresh()
	m.nodes[syn] = n
	return n, false
}

// Registry is the type system registry: the symbol -> TypeWithNode map,
// the per-tree syntax mappings, and the graph that RegisterNodes /
// RegisterEdges feed into. A Registry is not thread-safe for declaration
// (spec.md section 5, "the central type-system registry is not
// thread-safe"); builders only read it concurrently via GetSymbolType
// once all current-module symbols have been declared, and contribute new
// nodes/edges through a per-builder graph.Batch that a single committer
// flushes serially (see package builder).
type Registry struct {
	mu          sync.Mutex
	symbolTypes *orderedmap.OrderedMap[lang.Symbol, node.TypeWithNode]
	mappings    *orderedmap.OrderedMap[string, *SyntaxMapping]
	graph       *graph.Graph
	resolver    ExternalResolver
	cache       ExternalCache
}

// New constructs an empty Registry backed by g, consulting resolver to
// distinguish current-module symbols (which must be declared via
// DeclareSymbolType before use) from external ones (materialized lazily).
func New(g *graph.Graph, resolver ExternalResolver) *Registry {
	return &Registry{
		symbolTypes: orderedmap.New[lang.Symbol, node.TypeWithNode](),
		mappings:    orderedmap.New[string, *SyntaxMapping](),
		graph:       g,
		resolver:    resolver,
	}
}

// Graph returns the graph this registry feeds.
func (r *Registry) Graph() *graph.Graph { return r.graph }

// SetCache attaches a persistent cache for external-symbol materialization.
// It must be called before the first GetSymbolType for an external symbol;
// a nil cache (the default) disables caching and every external symbol is
// materialized from its declared annotation on every call.
func (r *Registry) SetCache(c ExternalCache) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = c
}

// DeclaredSymbolCount returns the number of symbols declared or
// materialized through this registry so far, for CLI/diagnostic summary
// reporting (spec.md's ambient presentation concerns).
func (r *Registry) DeclaredSymbolCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.symbolTypes.Len()
}

// DeclareSymbolType records twn as the canonical TypeWithNode for sym. It
// must be called exactly once per current-module symbol, during the
// serial declaration pass that precedes concurrent per-tree body building
// (spec.md section 2 lists "Syntax-to-node mapping" before "Node/edge
// builder" for exactly this reason: declared signatures must be stable
// before any call site can substitute into them). Calling it twice for
// the same symbol is a programming error and panics, matching spec.md
// section 7's treatment of internal invariant violations.
func (r *Registry) DeclareSymbolType(sym lang.Symbol, twn node.TypeWithNode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.symbolTypes.Load(sym); ok {
		panic(fmt.Sprintf("nullgraph: symbol %q declared more than once", sym.Name()))
	}
	r.symbolTypes.Store(sym, twn)
}

// GetSymbolType returns the canonical TypeWithNode for sym (spec.md
// section 4.1). Two special-case aliases are applied first:
//
//   - the implicit "value" parameter of a property setter (ordinal equal
//     to the enclosing property's declared parameter count) aliases to
//     the property's own type;
//   - an indexer accessor's own parameters, at ordinals below the
//     enclosing indexer's parameter count, alias to the corresponding
//     indexer parameter.
//
// For any other current-module symbol, GetSymbolType asserts it was
// already declared (panicking otherwise, per spec.md section 7's
// "symbol-module identity" internal assertion); for an external symbol it
// materializes and caches a TypeWithNode from the symbol's declared
// annotation via FromType.
func (r *Registry) GetSymbolType(sym lang.Symbol) node.TypeWithNode {
	if alias, ok := aliasTarget(sym); ok {
		return r.GetSymbolType(alias)
	}

	r.mu.Lock()
	if twn, ok := r.symbolTypes.Load(sym); ok {
		r.mu.Unlock()
		return twn
	}
	r.mu.Unlock()

	if r.resolver != nil && r.resolver.IsCurrentModule(sym) {
		panic(fmt.Sprintf("nullgraph: current-module symbol %q queried before being declared", sym.Name()))
	}

	twn, hit := r.fromCache(sym)
	if !hit {
		twn = FromType(sym.DeclaredType(), sym.Annotation())
		r.storeInCache(sym)
	}
	r.mu.Lock()
	// Another goroutine may have raced us to materialize the same
	// external symbol; keep whichever was stored first so identity stays
	// stable for every subsequent caller.
	if existing, ok := r.symbolTypes.Load(sym); ok {
		r.mu.Unlock()
		return existing
	}
	r.symbolTypes.Store(sym, twn)
	r.mu.Unlock()
	return twn
}

// fromCache consults the attached ExternalCache, if any, for sym's declared
// nullability, returning the materialized TypeWithNode and whether it was a
// cache hit.
func (r *Registry) fromCache(sym lang.Symbol) (node.TypeWithNode, bool) {
	r.mu.Lock()
	cache := r.cache
	r.mu.Unlock()
	if cache == nil {
		return node.TypeWithNode{}, false
	}
	ann, ty, ok, err := cache.Get(sym.Module(), sym.Name())
	if err != nil || !ok {
		return node.TypeWithNode{}, false
	}
	return FromType(ty, ann), true
}

// storeInCache records sym's declared nullability in the attached
// ExternalCache, if any, so a later build over the same external symbol can
// skip straight to fromCache. A store failure is not fatal: the cache is a
// performance optimization, not a source of truth.
func (r *Registry) storeInCache(sym lang.Symbol) {
	r.mu.Lock()
	cache := r.cache
	r.mu.Unlock()
	if cache == nil {
		return
	}
	_ = cache.Put(sym.Module(), sym.Name(), sym.Annotation(), sym.DeclaredType())
}

// aliasTarget returns the symbol sym's type should be read from instead of
// its own declaration, per the two special cases documented on
// GetSymbolType, or ok=false if sym is not aliased.
func aliasTarget(sym lang.Symbol) (lang.Symbol, bool) {
	p, ok := sym.(*lang.ParamSymbol)
	if !ok {
		return nil, false
	}
	prop, ok := p.Container().(*lang.PropertySymbol)
	if !ok {
		return nil, false
	}
	n := len(prop.Params)
	if p.Ordinal == n {
		// The implicit setter "value" parameter.
		return prop, true
	}
	if p.Ordinal < n {
		// One of the get/set accessor's own formal parameters, aliasing to
		// the indexer's canonical declared parameter. The canonical
		// parameter itself also has Container() == prop and Ordinal < n,
		// so it must be excluded here or it would alias to itself.
		if canonical := prop.Params[p.Ordinal]; canonical != p {
			return canonical, true
		}
	}
	return nil, false
}

// FromType constructs a TypeWithNode for ty whose outer node (and,
// recursively, whose type-argument nodes) is chosen by ann: Annotated
// produces the nullable singleton, NotAnnotated produces the non-null
// singleton, and None produces the oblivious singleton, applied uniformly
// through the type's structure. Value-typed positions always get the
// oblivious node regardless of ann, per the TypeWithNode invariants
// (spec.md section 3).
func FromType(ty lang.Type, ann lang.NullAnnotation) node.TypeWithNode {
	if ty == nil {
		return node.TypeWithNode{}
	}
	args := make([]node.TypeWithNode, 0, len(ty.TypeArguments()))
	for _, a := range ty.TypeArguments() {
		args = append(args, FromType(a, ann))
	}
	if !ty.IsReferenceType() {
		return node.Build(node.ObliviousNode, ty, args)
	}
	switch ann {
	case lang.Annotated:
		return node.Build(node.NullableNode, ty, args)
	case lang.NotAnnotated:
		return node.Build(node.NonNullNode, ty, args)
	default:
		return node.Build(node.ObliviousNode, ty, args)
	}
}

// RegisterNodes queues every non-special node reachable in twn's tree into
// b, for inclusion on the next commit (spec.md section 3, "Builder
// buffering").
func RegisterNodes(b *graph.Batch, twn node.TypeWithNode) {
	if twn.Node == nil {
		return
	}
	if !twn.Node.IsSpecial() {
		b.AddNode(twn.Node)
	}
	for _, a := range twn.Args {
		RegisterNodes(b, a)
	}
}

// RegisterEdges queues a batch of already-computed edges into b for
// inclusion on the next commit (spec.md section 3, "Builder buffering").
func RegisterEdges(b *graph.Batch, edges []PendingEdge) {
	for _, e := range edges {
		b.AddEdge(e.Source, e.Target, e.Label, e.Loc)
	}
}

// PendingEdge is an edge not yet committed to the graph.
type PendingEdge struct {
	Source, Target *node.Node
	Label          string
	Loc            lang.Location
}

// GetMapping returns the syntax-to-node mapping for the named tree,
// creating an empty one on first use. tree is typically the source file
// path; callers that build multiple logical trees from one file should
// use a more specific key.
func (r *Registry) GetMapping(tree string) *SyntaxMapping {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.mappings.Load(tree); ok {
		return m
	}
	m := &SyntaxMapping{nodes: make(map[*lang.TypeSyntax]*node.Node)}
	r.mappings.Store(tree, m)
	return m
}
