// Package node implements the core data model of the nullability flow
// graph: NullabilityNode, the three special singletons, and TypeWithNode,
// the declared-type-plus-node-tree pairing that the rest of the module
// builds and consumes (spec.md section 3).
package node

import (
	"fmt"
	"sync/atomic"

	"github.com/nullgraph/nullgraph/lang"
)

// NullType classifies a NullabilityNode.
type NullType uint8

const (
	// Inferred means the node's final classification is determined by
	// the solver (spec.md section 4.5).
	Inferred NullType = iota
	// Nullable is the special source singleton: every inferred node
	// reachable from it is forced nullable.
	Nullable
	// NonNull is the special sink singleton: every inferred node with a
	// path to it is forced non-null.
	NonNull
	// Oblivious marks a position whose nullability is unknown or
	// inapplicable (value types, dynamic contexts). Oblivious nodes never
	// participate in forcing.
	Oblivious
)

func (t NullType) String() string {
	switch t {
	case Nullable:
		return "Nullable"
	case NonNull:
		return "NonNull"
	case Oblivious:
		return "Oblivious"
	default:
		return "Inferred"
	}
}

var nextID atomic.Uint64

// A Node is an identity object representing one nullability position. The
// three special nodes (NullableNode, NonNullNode, ObliviousNode) are
// singletons and never change NullType; all other nodes are created
// on-demand by the registry or syntax visitor and are compared by pointer
// identity, never by value (spec.md section 3, "NullabilityNode").
type Node struct {
	id 		uint64
	// NullType is fixed at Inferred, Nullable, NonNull, or Oblivious for
	// the lifetime of the node; only the solver's forced-classification
	// result (computed separately, see package solver) resolves an
	// Inferred node to a final annotation.
	NullType NullType
	// DebugName is an optional human-readable label, used only in
	// diagnostics and tests.
	DebugName string

	incoming []*Edge
	outgoing []*Edge
}

// New creates a fresh node of the given classification. Use NewInferred
// for the common case of an on-demand inferred node.
func New(t NullType, debugName string) *Node {
	return &Node{id: nextID.Add(1), NullType: t, DebugName: debugName}
}

// NewInferred creates a fresh node whose classification the solver must
// determine.
func NewInferred(debugName string) *Node {
	return New(Inferred, debugName)
}

// ID returns a process-unique, monotonically assigned identifier for this
// node. It is used as a dense key by package solver's bitset-based
// reachability queries and has no meaning across processes.
func (n *Node) ID() uint64 { return n.id }

// IsSpecial reports whether this is one of the three terminal singletons.
func (n *Node) IsSpecial() bool {
	return n.NullType == Nullable || n.NullType == NonNull || n.NullType == Oblivious
}

// Incoming returns the edges whose target is this node.
func (n *Node) Incoming() []*Edge { return n.incoming }

// Outgoing returns the edges whose source is this node.
func (n *Node) Outgoing() []*Edge { return n.outgoing }

func (n *Node) String() string {
	if n.DebugName != "" {
		return n.DebugName
	}
	return fmt.Sprintf("%s#%d", n.NullType, n.id)
}

// addOutgoing records e as outgoing from n. Called only by Connect.
func (n *Node) addOutgoing(e *Edge) { n.outgoing = append(n.outgoing, e) }

// addIncoming records e as incoming to n. Called only by Connect.
func (n *Node) addIncoming(e *Edge) { n.incoming = append(n.incoming, e) }

// Edge is defined in this package (rather than a separate graph package)
// because Node.addOutgoing/addIncoming must be able to append to the exact
// edge-list fields described in spec.md section 3 without a package cycle.
// The graph package uses node.Edge directly and owns the authoritative
// edge log and commit ordering (spec.md section 5).
type Edge struct {
	Source, Target *Node
	// Label is a short provenance string, e.g. "assign", "deref",
	// "coalesce:left", "yield" (spec.md section 3, "Edge").
	Label string
	Loc   lang.Location
}

func (e *Edge) String() string {
	return fmt.Sprintf("%s -[%s]-> %s", e.Source, e.Label, e.Target)
}

// Connect appends e to source's outgoing list and target's incoming list.
// It does not deduplicate: the edge set grows monotonically within a
// compilation (spec.md section 3, "Lifecycle").
func Connect(source, target *Node, label string, loc lang.Location) *Edge {
	e := &Edge{Source: source, Target: target, Label: label, Loc: loc}
	source.addOutgoing(e)
	target.addIncoming(e)
	return e
}

// The three special singletons, shared process-wide. spec.md section 3
// requires exactly one instance of each per compilation; since this module
// processes one compilation per process invocation (the CLI and harness
// each start a fresh process or call Reset between independent builds in
// tests), package-level singletons satisfy that requirement directly.
var (
	NullableNode  = New(Nullable, "<nullable>")
	NonNullNode   = New(NonNull, "<nonnull>")
	ObliviousNode = New(Oblivious, "<oblivious>")
)

// Reset clears the accumulated edges on the three singletons and resets
// the node ID counter to just past the singletons' own IDs (1-3), so the
// next node created gets ID 4 and never shares an ID with a singleton.
// It exists solely so that independent test cases and
// harness invocations within the same process can each start from a clean
// graph, mirroring the teacher's per-pass isolation (there, a fresh
// analysis.Pass per package); without it, a singleton's edges would leak
// across unrelated builds and corrupt reachability queries.
func Reset() {
	NullableNode.incoming, NullableNode.outgoing = nil, nil
	NonNullNode.incoming, NonNullNode.outgoing = nil, nil
	ObliviousNode.incoming, ObliviousNode.outgoing = nil, nil
	nextID.Store(ObliviousNode.id)
}
