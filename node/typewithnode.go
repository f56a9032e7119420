package node

import (
	"fmt"

	"github.com/nullgraph/nullgraph/lang"
)

// TypeWithNode pairs a declared lang.Type with the nullability node at its
// outer position and, recursively, a TypeWithNode for each type argument /
// array element / tuple member (spec.md section 3, "TypeWithNode").
//
// Invariants (enforced by the constructors below, never by a caller
// mutating Node/Args directly):
//   - a value type's outer Node is always ObliviousNode;
//   - `T?` over a reference-typed T carries NullableNode at the outer
//     position;
//   - an unannotated reference type carries a fresh Inferred node;
//   - a generic instantiation carries one child per type argument, in
//     declaration order.
type TypeWithNode struct {
	Type *typeBox
	Node *Node
	Args []TypeWithNode
}

// typeBox lets TypeWithNode carry its lang.Type without importing a cyclic
// dependency back from lang onto node; it is an unexported indirection
// with a single field.
type typeBox struct {
	T lang.Type
}

// Underlying returns the declared type this TypeWithNode was built from.
func (t TypeWithNode) Underlying() lang.Type {
	if t.Type == nil {
		return nil
	}
	return t.Type.T
}

func wrap(ty lang.Type) *typeBox { return &typeBox{T: ty} }

// Build constructs a TypeWithNode directly from an already-chosen outer
// node, declared type, and child list. It is the low-level constructor
// used by callers (such as package registry's FromType) that compute the
// outer node via their own rule instead of the default unannotated rule
// that Of/OfNullable apply.
func Build(n *Node, ty lang.Type, args []TypeWithNode) TypeWithNode {
	return TypeWithNode{Type: wrap(ty), Node: n, Args: args}
}

// Of constructs a TypeWithNode whose outer node and children are chosen
// according to spec.md section 4.2's rules for an unannotated occurrence
// of ty: value types get ObliviousNode, `Nullable<T>` gets ObliviousNode
// at the outer position (it is itself a value type) with rule recursion
// into T, and reference types get a fresh inferred node. debugName seeds
// the node's DebugName for diagnostics.
func Of(ty lang.Type, debugName string) TypeWithNode {
	return of(ty, debugName, false)
}

// OfNullable is like Of, but for a reference-typed ty constructs the
// nullable outer node instead of a fresh inferred one (the `T?` rule of
// spec.md section 4.2).
func OfNullable(ty lang.Type, debugName string) TypeWithNode {
	return of(ty, debugName, true)
}

func of(ty lang.Type, debugName string, nullable bool) TypeWithNode {
	if ty == nil {
		return TypeWithNode{}
	}
	args := childArgs(ty, debugName)

	if !ty.IsReferenceType() {
		// Value types (including Nullable<T>) carry the oblivious node at
		// the outer position; descend into Nullable<T>'s wrapped T with
		// the ordinary (non-nullable-syntax) rule, since `?` on a value
		// type does not make the inner type nullable by itself.
		return TypeWithNode{Type: wrap(ty), Node: ObliviousNode, Args: args}
	}

	outer := NewInferred(debugName)
	if nullable {
		outer = NullableNode
	}
	return TypeWithNode{Type: wrap(ty), Node: outer, Args: args}
}

func childArgs(ty lang.Type, debugName string) []TypeWithNode {
	typeArgs := ty.TypeArguments()
	if len(typeArgs) == 0 {
		return nil
	}
	args := make([]TypeWithNode, len(typeArgs))
	for i, a := range typeArgs {
		args[i] = Of(a, fmt.Sprintf("%s[%d]", debugName, i))
	}
	return args
}

// FreshLike builds a new TypeWithNode with the same shape as t (same
// Type, same tree arity) but with every node other than ObliviousNode
// replaced by a fresh inferred node. It is used to build the synthetic result type of operations that
// produce a "fresh result" that several operands must satisfy, such as
// `a ?? b`'s inner nodes or a conditional expression's result (spec.md
// section 4.3).
func FreshLike(t TypeWithNode, debugName string) TypeWithNode {
	if t.Type == nil {
		return TypeWithNode{}
	}
	args := make([]TypeWithNode, len(t.Args))
	for i, a := range t.Args {
		args[i] = FreshLike(a, fmt.Sprintf("%s[%d]", debugName, i))
	}
	n := t.Node
	if n != ObliviousNode {
		// Reference-shaped positions (including one currently pinned to
		// Nullable or NonNull, e.g. by a `?` annotation or a literal) get
		// a fresh node so that every operand can be independently
		// constrained into it. Oblivious positions are structural and
		// pass through unchanged.
		n = NewInferred(debugName)
	}
	return TypeWithNode{Type: t.Type, Node: n, Args: args}
}

// WithOuter returns a copy of t with its outer Node replaced; Args are
// shared (not deep-copied), since substituting the outer node never
// changes the shape of nested type arguments.
func (t TypeWithNode) WithOuter(n *Node) TypeWithNode {
	t.Node = n
	return t
}

// Arg returns the i-th type-argument child, panicking if out of range;
// used by the operation visitor when it has already established (from the
// declared shape of ty) that argument i must exist.
func (t TypeWithNode) Arg(i int) TypeWithNode {
	if i < 0 || i >= len(t.Args) {
		panic(fmt.Sprintf("nullgraph: type-argument %d out of bounds (arity %d) for %s", i, len(t.Args), t))
	}
	return t.Args[i]
}

func (t TypeWithNode) String() string {
	name := "<untyped>"
	if t.Type != nil && t.Type.T != nil {
		name = t.Type.T.Name()
	}
	return fmt.Sprintf("%s@%s", name, t.Node)
}
