package lang

// Location is a package-independent source position, analogous to
// go/token.Position but for the object language's own files. The zero
// value means "no authentic source location" (spec.md section 4.3 uses
// this for compiler-synthesized expressions).
type Location struct {
	File   string
	Line   int
	Column int
}

// IsValid reports whether this location refers to real source text.
func (l Location) IsValid() bool { return l.File != "" }

func (l Location) String() string {
	if !l.IsValid() {
		return "<synthesized>"
	}
	return l.File + ":" + itoa(l.Line) + ":" + itoa(l.Column)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// TypeSyntaxKind enumerates the syntactic forms a reference-type position
// can take, per spec.md section 4.2.
type TypeSyntaxKind uint8

const (
	// NamedSyntax is `T` or `C<T1, T2>`, unannotated.
	NamedSyntax TypeSyntaxKind = iota
	// NullableRefSyntax is `T?` where T is reference-typed.
	NullableRefSyntax
	// NullableValueSyntax is `T?` where T is value-typed.
	NullableValueSyntax
	// ArraySyntax is `T[]`.
	ArraySyntax
	// TupleSyntax is `(T1, T2, ...)`.
	TupleSyntax
	// VarSyntax is the `var` placeholder in a local declaration or
	// foreach loop variable: not visited syntactically, adopted from the
	// initializer (spec.md section 4.2).
	VarSyntax
	// GenericQualifiedSyntax is `C<T>.Member`, a generic name reference
	// whose type arguments feed substitution at the member reference.
	GenericQualifiedSyntax
)

// TypeSyntax is one syntactic occurrence of a type, as the binder's
// bound-tree would expose it to the syntax visitor (spec.md section 4.2).
// Each distinct TypeSyntax value, compared by identity, is a distinct
// nullability position and must always be mapped to the same node
// (spec.md section 4.1's "GetMapping" contract).
type TypeSyntax struct {
	SyntaxKind TypeSyntaxKind
	Loc        Location
	// Underlying is the resolved Type this syntax denotes (after stripping
	// any `?`), used to decide value-vs-reference rules.
	Underlying Type
	// Args are the child syntactic positions: generic type arguments, the
	// array element, or tuple elements, in declaration order.
	Args []*TypeSyntax
	// Names holds per-element tuple member names, parallel to Args, when
	// SyntaxKind == TupleSyntax.
	Names []string
	// Qualifier is the type-argument list of an enclosing generic
	// qualifier `C<T>` for GenericQualifiedSyntax.
	Qualifier []*TypeSyntax
}
