// Package builder implements the operation visitor (spec.md section 4.3):
// it walks the bound tree of expressions and statements, producing each
// expression's TypeWithNode and emitting assignment/dereference edges
// with correct variance (spec.md section 4.4) for every expression form
// the spec lists. One Context is used per syntax tree; Context.Batch
// accumulates the tree's nodes and edges for the committer (see Pool) to
// flush transactionally.
package builder

import (
	"fmt"

	"github.com/nullgraph/nullgraph/graph"
	"github.com/nullgraph/nullgraph/lang"
	"github.com/nullgraph/nullgraph/node"
	"github.com/nullgraph/nullgraph/registry"
	"github.com/nullgraph/nullgraph/syntax"
)

// UnsupportedConstructError reports that the bound tree contains an
// operation kind the builder does not implement (spec.md section 7,
// "unsupported construct"). It is fatal to the tree being built: Pool
// recovers it at the tree boundary and reports the whole tree as failed
// rather than partially committing.
type UnsupportedConstructError struct {
	Tree string
	Op   lang.Operation
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("nullgraph: unsupported operation %T in tree %q at %s", e.Op, e.Tree, e.Op.Pos())
}

// functionFrame is the per-enclosing-function state that PushFunction /
// PopFunction save and restore, so that a lambda nested inside a method
// body sees its own return type and async/iterator-ness without losing
// the enclosing method's frame on return.
type functionFrame struct {
	ret        node.TypeWithNode
	isIterator bool
	isAsync    bool
}

// Context is the per-tree builder state threaded through the operation
// visitor. It is never shared across goroutines: spec.md section 5
// requires each tree's builder to "touch only local buffers."
type Context struct {
	Tree     string
	Registry *registry.Registry
	Batch    *graph.Batch
	Syntax   *syntax.Visitor

	// locals maps a declared local/parameter symbol to its TypeWithNode
	// for the duration of the enclosing method body.
	locals map[lang.Symbol]node.TypeWithNode

	// frames is a stack of enclosing function contexts, innermost last;
	// a lambda or local function pushes a new frame for its own body and
	// pops it on exit, per spec.md section 4.3's "Lambdas / local
	// functions / delegates."
	frames []functionFrame
}

// NewContext constructs a fresh per-tree builder context.
func NewContext(tree string, reg *registry.Registry) *Context {
	return &Context{
		Tree:     tree,
		Registry: reg,
		Batch:    graph.NewBatch(),
		Syntax:   syntax.New(reg, tree),
		locals:   make(map[lang.Symbol]node.TypeWithNode),
	}
}

// unsupported panics with an UnsupportedConstructError; see the package
// doc and spec.md section 9's "tagged-union match... default arm is
// unsupported and fatal."
func (c *Context) unsupported(op lang.Operation) {
	panic(&UnsupportedConstructError{Tree: c.Tree, Op: op})
}

// bindLocal records twn as the TypeWithNode for a newly declared local or
// parameter symbol, for the remainder of this tree's traversal.
func (c *Context) bindLocal(sym lang.Symbol, twn node.TypeWithNode) {
	c.locals[sym] = twn
}

// lookupLocal returns a previously bound local/parameter's TypeWithNode.
func (c *Context) lookupLocal(sym lang.Symbol) (node.TypeWithNode, bool) {
	twn, ok := c.locals[sym]
	return twn, ok
}

// BindParams binds every parameter of fn to its registry-declared
// TypeWithNode. This must run before visiting fn's body so that any
// VarRef to a parameter resolves; it reuses (not copies) the canonical
// instance GetSymbolType returns, preserving the "same instance"
// invariant of spec.md section 4.1.
func (c *Context) BindParams(fn *lang.MethodSymbol) {
	for _, p := range fn.Params {
		c.bindLocal(p, c.Registry.GetSymbolType(p))
	}
}

// PushFunction enters a function body (a top-level method or a nested
// lambda/local function), recording its return type and async/iterator-
// ness so Return, YieldReturn, and Await resolve against the innermost
// enclosing function rather than an outer one.
func (c *Context) PushFunction(ret node.TypeWithNode, isIterator, isAsync bool) {
	c.frames = append(c.frames, functionFrame{ret: ret, isIterator: isIterator, isAsync: isAsync})
}

// PopFunction restores the previous enclosing function's frame.
func (c *Context) PopFunction() {
	c.frames = c.frames[:len(c.frames)-1]
}

// currentFunction returns the innermost enclosing function's frame. It
// panics if called outside any function body, which would be a caller
// bug: every tree's entry point pushes the top-level method's frame
// before visiting its body.
func (c *Context) currentFunction() functionFrame {
	if len(c.frames) == 0 {
		panic("nullgraph: operation visited outside any function frame")
	}
	return c.frames[len(c.frames)-1]
}
