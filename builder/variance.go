package builder

import (
	"github.com/nullgraph/nullgraph/graph"
	"github.com/nullgraph/nullgraph/lang"
	"github.com/nullgraph/nullgraph/node"
)

// Variance controls the direction(s) of the outer edge CreateTypeEdge
// emits at each level of the recursion (spec.md section 4.4).
type Variance uint8

const (
	// Out is covariant / assignment position: source -> target.
	Out Variance = iota
	// In is contravariant / parameter position: target -> source.
	In
	// Invariant emits both directions.
	Invariant
)

// compose returns the variance to use when recursing into a type argument
// declared with declared variance, given the variance v in effect at the
// current level (spec.md section 4.4's variance-composition table:
// covariant slots preserve v, contravariant slots flip it, invariant
// slots force Invariant).
func compose(v Variance, declared lang.Variance) Variance {
	switch declared {
	case lang.Contravariant:
		return flip(v)
	case lang.InvariantVariance:
		return Invariant
	default:
		return v
	}
}

func flip(v Variance) Variance {
	switch v {
	case Out:
		return In
	case In:
		return Out
	default:
		return Invariant
	}
}

// TypeSubstitution is two parallel ordered lists mapping a generic
// signature's type parameters to concrete nullability nodes at a
// particular use site: the receiver's class type-argument nodes, and the
// method's own (explicit or freshly inferred) type-argument nodes
// (spec.md section 9, "Generic substitution"). Substitution is looked up
// by (kind, ordinal); if absent, the declared node is used unchanged,
// covering outer-enclosing generics that this use site does not rebind.
type TypeSubstitution struct {
	ClassArgs  []node.TypeWithNode
	MethodArgs []node.TypeWithNode
}

// Lookup returns the TypeWithNode bound to type parameter tp under this
// substitution, or ok=false if tp is not covered (e.g. it belongs to an
// outer-enclosing generic that this call site does not rebind).
func (s *TypeSubstitution) Lookup(tp *lang.TypeParamSymbol) (node.TypeWithNode, bool) {
	if s == nil || tp == nil {
		return node.TypeWithNode{}, false
	}
	args := s.ClassArgs
	if tp.OnMethod {
		args = s.MethodArgs
	}
	if tp.Ordinal < 0 || tp.Ordinal >= len(args) {
		return node.TypeWithNode{}, false
	}
	return args[tp.Ordinal], true
}

// substitute replaces t with its bound TypeWithNode under subst if t's
// declared type is a type-parameter occurrence covered by subst;
// otherwise it returns t unchanged (spec.md section 4.4, "If the target
// corresponds to a type-parameter slot under substitution, substitute the
// target for the mapped node before edge creation").
func substitute(t node.TypeWithNode, subst *TypeSubstitution) node.TypeWithNode {
	tp, ok := t.Underlying().(*lang.TypeParamType)
	if !ok {
		return t
	}
	if bound, ok := subst.Lookup(tp.Param); ok {
		return bound
	}
	return t
}

// CreateTypeEdge recursively descends source and target's TypeWithNode
// trees, applying substitution to target at each level before emitting
// the outer edge in the direction(s) variance calls for, then recurses
// into type arguments with variance composed per the declared variance of
// each position (spec.md section 4.4). Array element positions are always
// treated as invariant regardless of the declared variance of the
// surrounding type, to preserve soundness of stores into array elements
// (spec.md section 4.4, last paragraph).
func CreateTypeEdge(b *graph.Batch, source, target node.TypeWithNode, subst *TypeSubstitution, variance Variance, label string, loc lang.Location) {
	target = substitute(target, subst)
	emitOuter(b, source.Node, target.Node, variance, label, loc)

	n := len(source.Args)
	if len(target.Args) < n {
		n = len(target.Args)
	}
	for i := 0; i < n; i++ {
		childVariance := variance
		if target.Underlying() != nil && target.Underlying().Kind() == lang.ArrayKind {
			childVariance = Invariant
		} else if named, ok := target.Underlying().(*lang.NamedType); ok {
			childVariance = compose(variance, named.VarianceOf(i))
		}
		CreateTypeEdge(b, source.Arg(i), target.Arg(i), subst, childVariance, label, loc)
	}
}

func emitOuter(b *graph.Batch, source, target *node.Node, variance Variance, label string, loc lang.Location) {
	if source == nil || target == nil {
		return
	}
	switch variance {
	case Out:
		b.AddEdge(source, target, label, loc)
	case In:
		b.AddEdge(target, source, label, loc)
	case Invariant:
		b.AddEdge(source, target, label, loc)
		b.AddEdge(target, source, label, loc)
	}
}

// Deref emits an edge forcing n to be non-null, modeling a dereference
// (spec.md section 8: "Dereferencing an expression ... produces an edge
// from the expression's node to the NonNull singleton").
func Deref(b *graph.Batch, n *node.Node, label string, loc lang.Location) {
	if n == nil || n.IsSpecial() {
		return
	}
	b.AddEdge(n, node.NonNullNode, label, loc)
}

// Assign emits the covariant assignability edges from value to target,
// i.e. CreateTypeEdge with variance Out (spec.md section 4.3,
// "Assignments").
func Assign(b *graph.Batch, value, target node.TypeWithNode, subst *TypeSubstitution, label string, loc lang.Location) {
	CreateTypeEdge(b, value, target, subst, Out, label, loc)
}

// Instantiate produces the TypeWithNode a declared type has when read at a
// particular generic use site: every type-parameter occurrence in t's tree
// is replaced by its bound node tree under subst, everything else is
// shared unchanged (spec.md section 4.3, "Generic substitution" applied to
// member/return types rather than to edge creation). Unlike CreateTypeEdge,
// which only ever emits edges, Instantiate builds a value the caller can
// use as the static type of a member access, call result, or argument
// slot.
func Instantiate(t node.TypeWithNode, subst *TypeSubstitution) node.TypeWithNode {
	if tp, ok := t.Underlying().(*lang.TypeParamType); ok {
		if bound, ok := subst.Lookup(tp.Param); ok {
			return bound
		}
		return t
	}
	if len(t.Args) == 0 {
		return t
	}
	result := t
	result.Args = make([]node.TypeWithNode, len(t.Args))
	for i, a := range t.Args {
		result.Args[i] = Instantiate(a, subst)
	}
	return result
}
