package lang

// TypeKind discriminates the shape of a declared Type, independent of its
// nullability (nullability lives in node.TypeWithNode, built over a Type).
type TypeKind uint8

const (
	// ValueKind is any value type (struct, enum, numeric, bool): never
	// nullable itself, always carries the oblivious node at its outer
	// position (spec.md section 3).
	ValueKind TypeKind = iota
	// NamedRefKind is a named reference type (class or interface),
	// possibly generic.
	NamedRefKind
	// NullableValueKind is `T?` where T is a value type (Nullable<T>).
	NullableValueKind
	// TypeParamKind is an occurrence of a generic type parameter.
	TypeParamKind
	// ArrayKind is an array or jagged/multi-dimensional array type.
	ArrayKind
	// TupleKind is a tuple type `(T1, T2, ...)`.
	TupleKind
	// DelegateKind is a function/delegate/lambda-target type.
	DelegateKind
)

// WellKnown identifies the handful of generic named types that the
// operation visitor must recognize by fully qualified name (spec.md
// section 9, "Iterator and async return unwrapping").
type WellKnown uint8

const (
	// NotWellKnown is an ordinary named type.
	NotWellKnown WellKnown = iota
	// TaskLike is `Task<T>` / `ValueTask<T>`: transparent wrapper for
	// nullability of the inner T when awaited.
	TaskLike
	// SequenceLike is `IEnumerable<T>` / `IEnumerator<T>`: the element
	// type flows as the wrapped T for foreach and yield return.
	SequenceLike
)

// Type is a declared type as the binder reports it: a shape plus, for
// composite shapes, an ordered list of type arguments / element types.
// Type itself carries no nullability; nullability nodes are attached by
// the type system registry and syntax visitor to produce a TypeWithNode
// (spec.md section 3).
type Type interface {
	// Kind reports this type's shape.
	Kind() TypeKind
	// Name is the type's name for diagnostics (e.g. "String", "Box").
	Name() string
	// IsReferenceType reports whether values of this type can be null at
	// the outer position absent an explicit `?` wrapper.
	IsReferenceType() bool
	// TypeArguments returns, in declaration order, the nested types this
	// type is parameterized over: generic type arguments for a named
	// type, the element type for an array (single-element slice), the
	// member types for a tuple, or parameter-then-return types for a
	// delegate.
	TypeArguments() []Type
	// WellKnown reports whether this type is one of the handful of
	// generic wrapper types the operation visitor treats specially.
	WellKnown() WellKnown
}

// Variance is the declared variance of a generic type parameter, used to
// compose variance when the builder recurses into a type argument
// (spec.md section 4.4, "Recurse into type arguments with variance
// composed by the declaration").
type Variance uint8

const (
	// Covariant is `out T`: recursion preserves the caller's variance.
	Covariant Variance = iota
	// Contravariant is `in T`: recursion flips the caller's variance.
	Contravariant
	// InvariantVariance is an unannotated (invariant) type parameter:
	// recursion forces invariance regardless of the caller's variance.
	InvariantVariance
)

// NamedType is a non-generic or generic named reference type, e.g. `Box`
// or `List<T>` or `Func<T, TResult>` as a named delegate type.
type NamedType struct {
	TypeName   string
	TypeArgs   []Type
	Special    WellKnown
	IsVoidType bool
	// ArgVariance holds the declared variance of each type parameter, in
	// the same order as TypeArgs. A nil or short slice defaults the
	// remaining positions to Covariant, matching an ordinary invariant
	// generic class whose single type parameter is read covariantly at
	// the nullability level (the common case: `Box<T>`, `List<T>`).
	ArgVariance []Variance
}

// VarianceOf returns the declared variance of type argument i.
func (n *NamedType) VarianceOf(i int) Variance {
	if i < len(n.ArgVariance) {
		return n.ArgVariance[i]
	}
	return Covariant
}

var _ Type = (*NamedType)(nil)

// Kind implements Type.
func (n *NamedType) Kind() TypeKind { return NamedRefKind }

// Name implements Type.
func (n *NamedType) Name() string { return n.TypeName }

// IsReferenceType implements Type; named types are reference types unless
// explicitly marked void (a non-nullable marker used for `throw`'s static type).
func (n *NamedType) IsReferenceType() bool { return !n.IsVoidType }

// TypeArguments implements Type.
func (n *NamedType) TypeArguments() []Type { return n.TypeArgs }

// WellKnown implements Type.
func (n *NamedType) WellKnown() WellKnown { return n.Special }

// Arity returns the number of type arguments this named type carries.
func (n *NamedType) Arity() int { return len(n.TypeArgs) }

// ValueType is any value type: struct, enum, or a built-in numeric/bool type.
type ValueType struct {
	TypeName string
}

var _ Type = (*ValueType)(nil)

// Kind implements Type.
func (v *ValueType) Kind() TypeKind { return ValueKind }

// Name implements Type.
func (v *ValueType) Name() string { return v.TypeName }

// IsReferenceType implements Type.
func (v *ValueType) IsReferenceType() bool { return false }

// TypeArguments implements Type.
func (v *ValueType) TypeArguments() []Type { return nil }

// WellKnown implements Type.
func (v *ValueType) WellKnown() WellKnown { return NotWellKnown }

// NullableValueType is `T?` where T is a value type, i.e. `Nullable<T>`.
type NullableValueType struct {
	Elem Type
}

var _ Type = (*NullableValueType)(nil)

// Kind implements Type.
func (n *NullableValueType) Kind() TypeKind { return NullableValueKind }

// Name implements Type.
func (n *NullableValueType) Name() string { return n.Elem.Name() + "?" }

// IsReferenceType implements Type; Nullable<T> is itself a value type, but
// its outer nullability node is oblivious per spec.md section 4.2's rule
// for `T?` over a value-typed T.
func (n *NullableValueType) IsReferenceType() bool { return false }

// TypeArguments implements Type.
func (n *NullableValueType) TypeArguments() []Type { return []Type{n.Elem} }

// WellKnown implements Type.
func (n *NullableValueType) WellKnown() WellKnown { return NotWellKnown }

// TypeParamType is an occurrence of a generic type parameter.
type TypeParamType struct {
	Param *TypeParamSymbol
}

var _ Type = (*TypeParamType)(nil)

// Kind implements Type.
func (t *TypeParamType) Kind() TypeKind { return TypeParamKind }

// Name implements Type.
func (t *TypeParamType) Name() string { return t.Param.SymbolName }

// IsReferenceType implements Type; an unconstrained type parameter is
// treated as reference-like so that substitution can narrow it at each use
// site (the substituted node carries the real nullability).
func (t *TypeParamType) IsReferenceType() bool { return true }

// TypeArguments implements Type.
func (t *TypeParamType) TypeArguments() []Type { return nil }

// WellKnown implements Type.
func (t *TypeParamType) WellKnown() WellKnown { return NotWellKnown }

// ArrayType is an array type; multi-dimensional and jagged arrays are
// modeled by nesting ArrayType as the Elem of an outer ArrayType.
type ArrayType struct {
	Elem Type
}

var _ Type = (*ArrayType)(nil)

// Kind implements Type.
func (a *ArrayType) Kind() TypeKind { return ArrayKind }

// Name implements Type.
func (a *ArrayType) Name() string { return a.Elem.Name() + "[]" }

// IsReferenceType implements Type.
func (a *ArrayType) IsReferenceType() bool { return true }

// TypeArguments implements Type.
func (a *ArrayType) TypeArguments() []Type { return []Type{a.Elem} }

// WellKnown implements Type.
func (a *ArrayType) WellKnown() WellKnown { return NotWellKnown }

// TupleType is a tuple type `(T1, T2, ...)`; tuples are value types that
// are never null themselves but whose elements carry their own nullability.
type TupleType struct {
	Elems []Type
	// Names holds the declared member name for each element, or "" if
	// the element is unnamed. len(Names) == len(Elems) when non-nil.
	Names []string
}

var _ Type = (*TupleType)(nil)

// Kind implements Type.
func (t *TupleType) Kind() TypeKind { return TupleKind }

// Name implements Type.
func (t *TupleType) Name() string { return "Tuple" }

// IsReferenceType implements Type.
func (t *TupleType) IsReferenceType() bool { return false }

// TypeArguments implements Type.
func (t *TupleType) TypeArguments() []Type { return t.Elems }

// WellKnown implements Type.
func (t *TupleType) WellKnown() WellKnown { return NotWellKnown }

// NameOf returns the declared member name of element i, or "" if unnamed.
func (t *TupleType) NameOf(i int) string {
	if t.Names == nil || i >= len(t.Names) {
		return ""
	}
	return t.Names[i]
}

// DelegateType is the type of a lambda, local function, or named delegate.
type DelegateType struct {
	Params []Type
	Return Type
}

var _ Type = (*DelegateType)(nil)

// Kind implements Type.
func (d *DelegateType) Kind() TypeKind { return DelegateKind }

// Name implements Type.
func (d *DelegateType) Name() string { return "Delegate" }

// IsReferenceType implements Type.
func (d *DelegateType) IsReferenceType() bool { return true }

// TypeArguments implements Type.
func (d *DelegateType) TypeArguments() []Type {
	args := make([]Type, 0, len(d.Params)+1)
	args = append(args, d.Params...)
	if d.Return != nil {
		args = append(args, d.Return)
	}
	return args
}

// WellKnown implements Type.
func (d *DelegateType) WellKnown() WellKnown { return NotWellKnown }
