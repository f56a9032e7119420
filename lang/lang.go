// Package lang describes the external interface that a compiler front-end
// ("the binder") is expected to provide to nullgraph: a bound tree with
// resolved symbols, type-argument lists, and conversion classification for
// a statically typed object-oriented source language with reference and
// value types, tuples, generics, lambdas, iterators, async results,
// pattern matching and operator overloading. Nothing in this package
// parses or type-checks source text; it only declares the shapes that the
// rest of the module consumes. A real binder is an external collaborator
// and out of scope for this module (see spec.md section 1).
package lang

import "fmt"

// NullAnnotation is the declared nullable annotation of a symbol from a
// separately compiled module, as exposed by the binder (spec.md section 6,
// "Symbol interface").
type NullAnnotation uint8

const (
	// None means the symbol carries no syntactic nullability annotation.
	None NullAnnotation = iota
	// Annotated means the symbol was declared with a trailing `?`.
	Annotated
	// NotAnnotated means the symbol was declared without `?` under a
	// context where annotations are meaningful (e.g. a nullable-enabled
	// compilation unit).
	NotAnnotated
)

func (a NullAnnotation) String() string {
	switch a {
	case Annotated:
		return "Annotated"
	case NotAnnotated:
		return "NotAnnotated"
	default:
		return "None"
	}
}

// SymbolKind enumerates the kinds of declaration a Symbol may represent,
// per spec.md section 6.
type SymbolKind uint8

const (
	// MethodKind is a method or function declaration.
	MethodKind SymbolKind = iota
	// ParamKind is a formal parameter of a method or indexer.
	ParamKind
	// PropertyKind is a property (possibly an indexer, when Params is non-empty).
	PropertyKind
	// FieldKind is an instance or static field.
	FieldKind
	// EventKind is an event declaration.
	EventKind
	// LocalKind is a local variable or loop variable.
	LocalKind
)

func (k SymbolKind) String() string {
	switch k {
	case MethodKind:
		return "Method"
	case ParamKind:
		return "Param"
	case PropertyKind:
		return "Property"
	case FieldKind:
		return "Field"
	case EventKind:
		return "Event"
	case LocalKind:
		return "Local"
	default:
		return "Unknown"
	}
}

// RefKind is the by-reference passing discipline of a parameter, per
// spec.md section 6.
type RefKind uint8

const (
	// RefNone is an ordinary by-value parameter.
	RefNone RefKind = iota
	// RefIn is a readonly reference parameter.
	RefIn
	// RefOut is an output reference parameter (assigned before return, never read).
	RefOut
	// RefRef is a bidirectional reference parameter.
	RefRef
	// RefParams is a variadic ("params") parameter.
	RefParams
)

// Symbol is any declaration a bound tree can refer to: a method, a
// parameter, a property, a field, an event, or a local. The current source
// module's symbols are constructed by the binder once and shared by
// identity; external symbols may be constructed lazily (spec.md section
// 4.1).
type Symbol interface {
	// Kind reports which concrete declaration this symbol represents.
	Kind() SymbolKind
	// Name is the declared identifier, for diagnostics only.
	Name() string
	// Container is the enclosing type symbol, or nil for top-level symbols
	// and for external symbols whose container was not resolved.
	Container() Symbol
	// DeclaredType is the symbol's declared type as written in source
	// (the return type for a MethodKind, the property/field type, etc).
	DeclaredType() Type
	// Module is the identifier of the compilation unit (module) in which
	// this symbol is declared, used to distinguish current-module symbols
	// (whose TypeWithNode must already be registered) from external ones.
	Module() string
	// Annotation is the declared nullable annotation, used to materialize
	// external symbols (spec.md section 3, "Symbol -> TypeWithNode map").
	Annotation() NullAnnotation
}

// MethodSymbol describes a method, constructor, lambda target, or local
// function signature.
type MethodSymbol struct {
	SymbolName    string
	ContainerSym  Symbol
	ModuleName    string
	Params        []*ParamSymbol
	TypeParams    []*TypeParamSymbol
	Returns       []Type
	Ann           NullAnnotation
	IsAsync       bool
	IsIterator    bool
	ReturnsVoid   bool
}

var _ Symbol = (*MethodSymbol)(nil)

// Kind implements Symbol.
func (m *MethodSymbol) Kind() SymbolKind { return MethodKind }

// Name implements Symbol.
func (m *MethodSymbol) Name() string { return m.SymbolName }

// Container implements Symbol.
func (m *MethodSymbol) Container() Symbol { return m.ContainerSym }

// Module implements Symbol.
func (m *MethodSymbol) Module() string { return m.ModuleName }

// Annotation implements Symbol.
func (m *MethodSymbol) Annotation() NullAnnotation { return m.Ann }

// DeclaredType implements Symbol; for a method with a single declared
// result this is that result's type, matching the common case used by the
// test-harness scenarios in spec.md section 8.
func (m *MethodSymbol) DeclaredType() Type {
	if len(m.Returns) == 0 {
		return nil
	}
	return m.Returns[0]
}

// Result returns the declared type of the n-th return value.
func (m *MethodSymbol) Result(n int) Type {
	if n < 0 || n >= len(m.Returns) {
		panic(fmt.Sprintf("nullgraph: result %d out of bounds for method %s with %d results", n, m.SymbolName, len(m.Returns)))
	}
	return m.Returns[n]
}

// ParamSymbol describes a single formal parameter of a method, or the
// implicit "value" parameter of a property setter, or an indexer
// accessor's own formal parameters.
type ParamSymbol struct {
	SymbolName   string
	ContainerSym Symbol
	ModuleName   string
	Ordinal      int
	Type         Type
	Ref          RefKind
	Ann          NullAnnotation
}

var _ Symbol = (*ParamSymbol)(nil)

// Kind implements Symbol.
func (p *ParamSymbol) Kind() SymbolKind { return ParamKind }

// Name implements Symbol.
func (p *ParamSymbol) Name() string { return p.SymbolName }

// Container implements Symbol.
func (p *ParamSymbol) Container() Symbol { return p.ContainerSym }

// Module implements Symbol.
func (p *ParamSymbol) Module() string { return p.ModuleName }

// Annotation implements Symbol.
func (p *ParamSymbol) Annotation() NullAnnotation { return p.Ann }

// DeclaredType implements Symbol.
func (p *ParamSymbol) DeclaredType() Type { return p.Type }

// PropertySymbol describes a property or an indexer (when len(Params) > 0).
type PropertySymbol struct {
	SymbolName   string
	ContainerSym Symbol
	ModuleName   string
	Type         Type
	Params       []*ParamSymbol // non-empty for indexers
	Ann          NullAnnotation
}

var _ Symbol = (*PropertySymbol)(nil)

// Kind implements Symbol.
func (p *PropertySymbol) Kind() SymbolKind { return PropertyKind }

// Name implements Symbol.
func (p *PropertySymbol) Name() string { return p.SymbolName }

// Container implements Symbol.
func (p *PropertySymbol) Container() Symbol { return p.ContainerSym }

// Module implements Symbol.
func (p *PropertySymbol) Module() string { return p.ModuleName }

// Annotation implements Symbol.
func (p *PropertySymbol) Annotation() NullAnnotation { return p.Ann }

// DeclaredType implements Symbol.
func (p *PropertySymbol) DeclaredType() Type { return p.Type }

// IsIndexer reports whether this property is an indexer.
func (p *PropertySymbol) IsIndexer() bool { return len(p.Params) > 0 }

// FieldSymbol describes an instance or static field.
type FieldSymbol struct {
	SymbolName   string
	ContainerSym Symbol
	ModuleName   string
	Type         Type
	Ann          NullAnnotation
	IsStatic     bool
}

var _ Symbol = (*FieldSymbol)(nil)

// Kind implements Symbol.
func (f *FieldSymbol) Kind() SymbolKind { return FieldKind }

// Name implements Symbol.
func (f *FieldSymbol) Name() string { return f.SymbolName }

// Container implements Symbol.
func (f *FieldSymbol) Container() Symbol { return f.ContainerSym }

// Module implements Symbol.
func (f *FieldSymbol) Module() string { return f.ModuleName }

// Annotation implements Symbol.
func (f *FieldSymbol) Annotation() NullAnnotation { return f.Ann }

// DeclaredType implements Symbol.
func (f *FieldSymbol) DeclaredType() Type { return f.Type }

// EventSymbol describes an event declaration.
type EventSymbol struct {
	SymbolName   string
	ContainerSym Symbol
	ModuleName   string
	Type         Type
	Ann          NullAnnotation
}

var _ Symbol = (*EventSymbol)(nil)

// Kind implements Symbol.
func (e *EventSymbol) Kind() SymbolKind { return EventKind }

// Name implements Symbol.
func (e *EventSymbol) Name() string { return e.SymbolName }

// Container implements Symbol.
func (e *EventSymbol) Container() Symbol { return e.ContainerSym }

// Module implements Symbol.
func (e *EventSymbol) Module() string { return e.ModuleName }

// Annotation implements Symbol.
func (e *EventSymbol) Annotation() NullAnnotation { return e.Ann }

// DeclaredType implements Symbol.
func (e *EventSymbol) DeclaredType() Type { return e.Type }

// LocalSymbol describes a local variable or a foreach/pattern binding.
type LocalSymbol struct {
	SymbolName   string
	ContainerSym Symbol
	ModuleName   string
	Type         Type // nil if implicitly typed ("var")
	Ann          NullAnnotation
}

var _ Symbol = (*LocalSymbol)(nil)

// Kind implements Symbol.
func (l *LocalSymbol) Kind() SymbolKind { return LocalKind }

// Name implements Symbol.
func (l *LocalSymbol) Name() string { return l.SymbolName }

// Container implements Symbol.
func (l *LocalSymbol) Container() Symbol { return l.ContainerSym }

// Module implements Symbol.
func (l *LocalSymbol) Module() string { return l.ModuleName }

// Annotation implements Symbol.
func (l *LocalSymbol) Annotation() NullAnnotation { return l.Ann }

// DeclaredType implements Symbol.
func (l *LocalSymbol) DeclaredType() Type { return l.Type }

// IsImplicitlyTyped reports whether this local was declared with `var`.
func (l *LocalSymbol) IsImplicitlyTyped() bool { return l.Type == nil }

// TypeParamSymbol identifies a generic type parameter by declaring method
// or declaring type and ordinal, used as a key into a TypeSubstitution
// (spec.md section 4.3, "Generic substitution").
type TypeParamSymbol struct {
	SymbolName string
	Ordinal    int
	// OnMethod is true if this type parameter belongs to a method's own
	// generic parameter list rather than its enclosing type's.
	OnMethod bool
}
