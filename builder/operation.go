package builder

import (
	"fmt"

	"github.com/nullgraph/nullgraph/lang"
	"github.com/nullgraph/nullgraph/node"
	"github.com/nullgraph/nullgraph/registry"
)

// register queues every freshly allocated node in twn's tree onto this
// tree's batch. Calling it on a TypeWithNode whose nodes were already
// queued (e.g. one returned unchanged from Instantiate) is harmless:
// graph.Graph.Commit dedupes by node identity.
func (c *Context) register(twn node.TypeWithNode) {
	registry.RegisterNodes(c.Batch, twn)
}

// freshArgs builds one fresh inferred TypeWithNode per element of types,
// used for a generic call/qualifier's type arguments when no receiver
// instance exists to carry already-allocated nodes (a static generic
// method call or a `C<T>.Member` qualifier).
func (c *Context) freshArgs(types []lang.Type, label string) []node.TypeWithNode {
	if len(types) == 0 {
		return nil
	}
	out := make([]node.TypeWithNode, len(types))
	for i, t := range types {
		out[i] = node.Of(t, fmt.Sprintf("%s[%d]", label, i))
		c.register(out[i])
	}
	return out
}

// methodArgs resolves the method-type-argument half of a call's
// TypeSubstitution: the explicit type arguments given at the call site, or
// one fresh inferred node per declared method type parameter when the
// binder left them to be inferred (spec.md section 4.3, "Calls / indexers
// / constructors").
func (c *Context) methodArgs(method *lang.MethodSymbol, explicit []lang.Type, label string) []node.TypeWithNode {
	if len(explicit) > 0 {
		return c.freshArgs(explicit, label)
	}
	if len(method.TypeParams) == 0 {
		return nil
	}
	out := make([]node.TypeWithNode, len(method.TypeParams))
	for i := range method.TypeParams {
		out[i] = node.TypeWithNode{Node: node.NewInferred(fmt.Sprintf("%s-infer[%d]", label, i))}
		c.register(out[i])
	}
	return out
}

// paramType returns the declared TypeWithNode of the i-th formal parameter
// of method, clamping to the last parameter when i runs past the declared
// arity (a `params`/variadic tail).
func (c *Context) paramType(method *lang.MethodSymbol, i int) node.TypeWithNode {
	if len(method.Params) == 0 {
		return node.TypeWithNode{}
	}
	if i >= len(method.Params) {
		i = len(method.Params) - 1
	}
	return c.Registry.GetSymbolType(method.Params[i])
}

// passArgument emits the edge(s) modeling one actual argument's flow
// against its instantiated formal parameter type, per spec.md section
// 4.3's "by-ref discipline": an ordinary, `in`, or `params` argument flows
// value-into-parameter (covariant); `out` flows parameter-into-argument,
// since the callee assigns it; `ref` flows both ways.
func (c *Context) passArgument(arg lang.Argument, param node.TypeWithNode, subst *TypeSubstitution, loc lang.Location) {
	value := c.Visit(arg.Value)
	switch arg.Ref {
	case lang.RefOut:
		CreateTypeEdge(c.Batch, param, value, subst, Out, "arg:out", loc)
	case lang.RefRef:
		CreateTypeEdge(c.Batch, value, param, subst, Invariant, "arg:ref", loc)
	default:
		Assign(c.Batch, value, param, subst, "arg", loc)
	}
}

// callSubstitution builds the TypeSubstitution in effect at a call,
// indexer access, or object creation: the class type-argument half comes
// from the receiver's already-allocated node tree when a receiver
// expression exists (so substitution reuses the exact nodes the receiver
// was built with), or from fresh nodes for a static generic qualifier;
// the method half comes from explicit type arguments or fresh inference
// nodes.
func (c *Context) callSubstitution(receiver node.TypeWithNode, hasReceiver bool, receiverTypeArgs []lang.Type, method *lang.MethodSymbol, explicitTypeArgs []lang.Type, label string) *TypeSubstitution {
	var classArgs []node.TypeWithNode
	if hasReceiver {
		classArgs = receiver.Args
	} else if len(receiverTypeArgs) > 0 {
		classArgs = c.freshArgs(receiverTypeArgs, label+":class")
	}
	var methodArgs []node.TypeWithNode
	if method != nil {
		methodArgs = c.methodArgs(method, explicitTypeArgs, label+":method")
	}
	return &TypeSubstitution{ClassArgs: classArgs, MethodArgs: methodArgs}
}

// Visit is the operation visitor's entry point (spec.md section 4.3): it
// dispatches on op's concrete Go type, builds the TypeWithNode for
// expression forms, emits assign/deref/return edges as each form
// requires, and returns the zero TypeWithNode for pure statement forms.
func (c *Context) Visit(op lang.Operation) node.TypeWithNode {
	switch o := op.(type) {

	case nil:
		return node.TypeWithNode{}

	case *lang.NullLiteral:
		twn := node.Of(o.ContextType, "null").WithOuter(node.NullableNode)
		c.register(twn)
		return twn

	case *lang.Literal:
		twn := node.Of(o.LitType, "literal")
		if !o.IsValueType {
			twn = twn.WithOuter(node.NonNullNode)
		}
		c.register(twn)
		return twn

	case *lang.VarRef:
		twn, ok := c.lookupLocal(o.Symbol)
		if !ok {
			twn = c.Registry.GetSymbolType(o.Symbol)
		}
		if o.NonNullFlow {
			return twn.WithOuter(node.NonNullNode)
		}
		return twn

	case *lang.MemberRef:
		var receiver node.TypeWithNode
		hasReceiver := o.Receiver != nil
		if hasReceiver {
			receiver = c.Visit(o.Receiver)
			Deref(c.Batch, receiver.Node, "member-receiver", o.Pos())
		}
		subst := c.callSubstitution(receiver, hasReceiver, o.Qualifier, nil, nil, "member")
		declared := c.Registry.GetSymbolType(o.Symbol)
		result := Instantiate(declared, subst)
		if o.NonNullFlow {
			result = result.WithOuter(node.NonNullNode)
		}
		return result

	case *lang.ThisRef:
		twn := node.Of(o.Type, "this").WithOuter(node.NonNullNode)
		c.register(twn)
		return twn

	case *lang.ImplicitReceiver:
		twn := node.Of(o.Enclosing.Type, "init-target").WithOuter(node.NonNullNode)
		c.register(twn)
		return twn

	case *lang.Assignment:
		target := c.Visit(o.Target)
		value := c.Visit(o.Value)
		Assign(c.Batch, value, target, nil, "assign", o.Pos())
		return target

	case *lang.Call:
		return c.visitCall(o)

	case *lang.IndexerAccess:
		return c.visitIndexerAccess(o)

	case *lang.ObjectCreation:
		return c.visitObjectCreation(o)

	case *lang.Conversion:
		return c.visitConversion(o)

	case *lang.ThrowExpr:
		operand := c.Visit(o.Operand)
		Deref(c.Batch, operand.Node, "throw-operand", o.Pos())
		twn := node.Of(o.Target, "throw")
		c.register(twn)
		return twn

	case *lang.Coalesce:
		left := c.Visit(o.Left)
		right := c.Visit(o.Right)
		result := node.FreshLike(right, "coalesce")
		c.register(result)
		// `a ?? b` is non-null whenever b is non-null, so: the non-null
		// part of a flows to result, all of b flows to result, per spec.md
		// section 4.3's "Coalesce" rule. a's nullability does not
		// propagate: a null `a` falls through to `b` at runtime.
		Assign(c.Batch, left.WithOuter(node.NonNullNode), result, nil, "coalesce:left", o.Pos())
		Assign(c.Batch, right, result, nil, "coalesce:right", o.Pos())
		return result

	case *lang.Conditional:
		c.Visit(o.Cond)
		thenTWN := c.Visit(o.Then)
		elseTWN := c.Visit(o.Else)
		// Each branch is evaluated exactly once and both feed the same
		// fresh result node (spec.md section 9's open-question resolution:
		// a conditional must not visit a branch twice just to reuse one
		// branch's shape for the result).
		result := node.FreshLike(thenTWN, "conditional")
		c.register(result)
		Assign(c.Batch, thenTWN, result, nil, "conditional:then", o.Pos())
		Assign(c.Batch, elseTWN, result, nil, "conditional:else", o.Pos())
		return result

	case *lang.NullCheck:
		c.Visit(o.Operand)
		return node.TypeWithNode{} // a comparison's own type is a value type (bool); no node tracked.

	case *lang.NullForgiving:
		inner := c.Visit(o.Operand)
		return inner.WithOuter(node.NonNullNode)

	case *lang.ArrayCreation:
		return c.visitArrayCreation(o)

	case *lang.TupleLiteral:
		args := make([]node.TypeWithNode, len(o.Elements))
		for i, e := range o.Elements {
			args[i] = c.Visit(e)
		}
		elemTypes := make([]lang.Type, len(args))
		for i, a := range args {
			elemTypes[i] = a.Underlying()
		}
		tt := &lang.TupleType{Names: o.Names}
		for _, t := range elemTypes {
			tt.Elems = append(tt.Elems, t)
		}
		return node.Build(node.ObliviousNode, tt, args)

	case *lang.TupleDeconstruction:
		value := c.Visit(o.Value)
		for i, target := range o.Targets {
			targetTWN := c.Visit(target)
			if i < len(value.Args) {
				Assign(c.Batch, value.Arg(i), targetTWN, nil, "deconstruct", o.Pos())
			}
		}
		return node.TypeWithNode{}

	case *lang.Lambda:
		return c.visitLambda(o)

	case *lang.YieldReturn:
		value := c.Visit(o.Value)
		fn := c.currentFunction()
		// An iterator's declared return type is IEnumerable<T>/IEnumerator<T>
		// (SequenceLike); yield return assigns into the element slot, the
		// single type argument, per spec.md section 9's "Iterator and
		// async return unwrapping".
		target := fn.ret
		if len(target.Args) == 1 {
			target = target.Arg(0)
		}
		Assign(c.Batch, value, target, nil, "yield", o.Pos())
		return node.TypeWithNode{}

	case *lang.Await:
		operand := c.Visit(o.Operand)
		Deref(c.Batch, operand.Node, "await-task", o.Pos())
		// Task<T>/ValueTask<T> unwrap transparently to their single type
		// argument; a non-generic Task has no result.
		if len(operand.Args) == 1 {
			return operand.Arg(0)
		}
		return node.TypeWithNode{}

	case *lang.TaskResult:
		operand := c.Visit(o.Operand)
		Deref(c.Batch, operand.Node, "task-result", o.Pos())
		if len(operand.Args) == 1 {
			return operand.Arg(0)
		}
		return node.TypeWithNode{}

	case *lang.IsTypePattern:
		operandTWN := c.Visit(o.Operand)
		if o.Binding != nil {
			bound := operandTWN.WithOuter(node.NonNullNode)
			if o.PatternType != nil {
				bound = node.Build(bound.Node, o.PatternType, bound.Args)
			}
			c.bindLocal(o.Binding, bound)
		}
		return node.TypeWithNode{}

	case *lang.IsPropertyPattern:
		receiver := c.Visit(o.Operand)
		Deref(c.Batch, receiver.Node, "pattern-receiver", o.Pos())
		for _, bnd := range o.Bindings {
			memberTWN := c.Registry.GetSymbolType(bnd.Property)
			if bnd.Var != nil {
				c.bindLocal(bnd.Var, memberTWN)
			}
		}
		return node.TypeWithNode{}

	case *lang.SwitchExpr:
		return c.visitSwitchExpr(o)

	case *lang.AnonymousObject:
		for _, m := range o.Members {
			value := c.Visit(m.Value)
			memberTWN := c.Registry.GetSymbolType(m.Member)
			Assign(c.Batch, value, memberTWN, nil, "anon-member", o.Pos())
		}
		return node.TypeWithNode{}

	case *lang.Foreach:
		return c.visitForeach(o)

	case *lang.Block:
		for _, s := range o.Stmts {
			c.Visit(s)
		}
		return node.TypeWithNode{}

	case *lang.Return:
		fn := c.currentFunction()
		if len(o.Values) == 0 {
			return node.TypeWithNode{}
		}
		if len(o.Values) == 1 {
			value := c.Visit(o.Values[0])
			target := fn.ret
			if fn.isAsync && len(target.Args) == 1 {
				// An async method's declared return is Task<T>; the
				// expression in `return e` is of type T (spec.md section 9).
				target = target.Arg(0)
			}
			Assign(c.Batch, value, target, nil, "return", o.Pos())
			return node.TypeWithNode{}
		}
		// Multiple positional return values model a tuple-typed return.
		for i, v := range o.Values {
			value := c.Visit(v)
			if i < len(fn.ret.Args) {
				Assign(c.Batch, value, fn.ret.Arg(i), nil, "return", o.Pos())
			}
		}
		return node.TypeWithNode{}

	case *lang.If:
		c.Visit(o.Cond)
		c.Visit(o.Then)
		c.Visit(o.Else)
		return node.TypeWithNode{}

	case *lang.ExprStmt:
		c.Visit(o.Expr)
		return node.TypeWithNode{}

	case *lang.LocalDecl:
		var declared node.TypeWithNode
		if o.Syntax != nil {
			declared = c.Syntax.Visit(o.Syntax)
			c.register(declared)
		}
		if o.Init != nil {
			init := c.Visit(o.Init)
			if o.Syntax == nil {
				// `var x = init;` adopts the initializer's TypeWithNode
				// wholesale (spec.md section 4.2, the `var` rule).
				declared = init
			} else {
				Assign(c.Batch, init, declared, nil, "local-init", o.Pos())
			}
		}
		c.bindLocal(o.Local, declared)
		return node.TypeWithNode{}

	default:
		c.unsupported(op)
		panic("unreachable")
	}
}

func (c *Context) visitCall(o *lang.Call) node.TypeWithNode {
	var receiver node.TypeWithNode
	hasReceiver := o.Receiver != nil
	if hasReceiver {
		receiver = c.Visit(o.Receiver)
		Deref(c.Batch, receiver.Node, "call-receiver", o.Pos())
	}
	subst := c.callSubstitution(receiver, hasReceiver, o.ReceiverTypeArgs, o.Method, o.ExplicitTypeArgs, "call:"+o.Method.Name())

	for i, arg := range o.Args {
		param := Instantiate(c.paramType(o.Method, i), subst)
		c.passArgument(arg, param, subst, o.Pos())
	}

	if o.Method.ReturnsVoid {
		return node.TypeWithNode{}
	}
	declaredReturn := c.Registry.GetSymbolType(o.Method)
	return Instantiate(declaredReturn, subst)
}

func (c *Context) visitIndexerAccess(o *lang.IndexerAccess) node.TypeWithNode {
	receiver := c.Visit(o.Receiver)
	Deref(c.Batch, receiver.Node, "indexer-receiver", o.Pos())
	subst := &TypeSubstitution{ClassArgs: receiver.Args}

	declared := c.Registry.GetSymbolType(o.Indexer)
	result := Instantiate(declared, subst)

	for i, a := range o.Args {
		value := c.Visit(a)
		if i < len(o.Indexer.Params) {
			param := Instantiate(c.Registry.GetSymbolType(o.Indexer.Params[i]), subst)
			Assign(c.Batch, value, param, subst, "indexer-arg", o.Pos())
		}
	}
	return result
}

func (c *Context) visitObjectCreation(o *lang.ObjectCreation) node.TypeWithNode {
	result := node.Of(o.Type, "new").WithOuter(node.NonNullNode)
	c.register(result)

	var subst *TypeSubstitution
	if o.Constructor != nil {
		subst = &TypeSubstitution{ClassArgs: result.Args}
		for i, arg := range o.Args {
			param := Instantiate(c.paramType(o.Constructor, i), subst)
			c.passArgument(arg, param, subst, o.Pos())
		}
	}

	for _, m := range o.Initializer {
		value := c.Visit(m.Value)
		if m.IsCollectionAdd {
			if m.AddMethod != nil {
				addSubst := &TypeSubstitution{ClassArgs: result.Args}
				for i, a := range m.AddArgs {
					param := Instantiate(c.paramType(m.AddMethod, i), addSubst)
					v := c.Visit(a)
					Assign(c.Batch, v, param, addSubst, "collection-add", o.Pos())
				}
			}
			continue
		}
		memberTWN := c.Registry.GetSymbolType(m.Member)
		if subst != nil {
			memberTWN = Instantiate(memberTWN, subst)
		}
		Assign(c.Batch, value, memberTWN, subst, "member-init", o.Pos())
	}
	return result
}

func (c *Context) visitConversion(o *lang.Conversion) node.TypeWithNode {
	operand := c.Visit(o.Operand)
	switch o.Kind {
	case lang.UnboxingConversion:
		// Unboxing from `object` to a value type discards the source's
		// node tree entirely: the result is an oblivious value type. A
		// target that is itself non-nullable (not Nullable<T>) can only
		// succeed at runtime against a non-null boxed value, so that case
		// dereferences the operand; unboxing to Nullable<T> does not.
		if o.Target != nil && o.Target.Kind() != lang.NullableValueKind {
			Deref(c.Batch, operand.Node, "unbox", o.Pos())
		}
		twn := node.Of(o.Target, "unbox")
		c.register(twn)
		return twn
	case lang.UserDefinedConversionKind:
		if o.Operator != nil {
			param := c.paramType(o.Operator, 0)
			Assign(c.Batch, operand, param, nil, "conversion-operand", o.Pos())
			return c.Registry.GetSymbolType(o.Operator)
		}
		fallthrough
	default:
		// An ordinary reference conversion carries the operand's node tree
		// through unchanged at matching positions; where the declared
		// shape differs (e.g. upcast to a less-derived type omits type
		// arguments the subtype doesn't expose) we fall back to the
		// operand's own tree, since the conversion does not introduce a
		// new nullability position of its own (spec.md section 4.3,
		// "Conversions").
		if o.Target != nil {
			return node.Build(operand.Node, o.Target, operand.Args)
		}
		return operand
	}
}

func (c *Context) visitArrayCreation(o *lang.ArrayCreation) node.TypeWithNode {
	if o.Length != nil {
		c.Visit(o.Length)
	}
	elem := node.Of(o.ElementType, "array-elem")
	c.register(elem)
	arrTy := &lang.ArrayType{Elem: o.ElementType}
	result := node.Build(node.NonNullNode, arrTy, []node.TypeWithNode{elem})
	for _, init := range o.Initializer {
		v := c.Visit(init)
		// Array element positions are always invariant (spec.md section
		// 4.4's array exception), so an initializer must satisfy the
		// element slot in both directions.
		CreateTypeEdge(c.Batch, v, elem, nil, Invariant, "array-init", o.Pos())
	}
	return result
}

func (c *Context) visitLambda(o *lang.Lambda) node.TypeWithNode {
	returns := make([]node.TypeWithNode, 0, 1)
	if o.ReturnType != nil {
		rt := node.Of(o.ReturnType, "lambda-return")
		c.register(rt)
		returns = append(returns, rt)
	} else {
		returns = append(returns, node.TypeWithNode{})
	}
	for _, p := range o.Params {
		twn := node.Of(p.DeclaredType(), "lambda-param:"+p.Name())
		c.register(twn)
		c.bindLocal(p, twn)
	}
	c.PushFunction(returns[0], false, o.IsAsync)
	c.Visit(o.Body)
	c.PopFunction()

	var dt lang.Type
	if o.TargetDelegate != nil {
		dt = o.TargetDelegate
	} else {
		built := &lang.DelegateType{Return: o.ReturnType}
		for _, p := range o.Params {
			built.Params = append(built.Params, p.DeclaredType())
		}
		dt = built
	}
	result := node.Of(dt, "lambda").WithOuter(node.NonNullNode)
	c.register(result)
	return result
}

func (c *Context) visitSwitchExpr(o *lang.SwitchExpr) node.TypeWithNode {
	c.Visit(o.Scrutinee)
	var result node.TypeWithNode
	for i, arm := range o.Arms {
		if arm.Pattern != nil {
			c.Visit(arm.Pattern)
		}
		v := c.Visit(arm.Value)
		if i == 0 {
			result = node.FreshLike(v, "switch")
			c.register(result)
		}
		Assign(c.Batch, v, result, nil, "switch-arm", o.Pos())
	}
	return result
}

func (c *Context) visitForeach(o *lang.Foreach) node.TypeWithNode {
	collection := c.Visit(o.Collection)
	Deref(c.Batch, collection.Node, "foreach-collection", o.Pos())

	var elem node.TypeWithNode
	if len(collection.Args) == 1 {
		elem = collection.Arg(0)
	}
	var loopVarTWN node.TypeWithNode
	if o.LoopVarSyntax != nil {
		loopVarTWN = c.Syntax.Visit(o.LoopVarSyntax)
		c.register(loopVarTWN)
		Assign(c.Batch, elem, loopVarTWN, nil, "foreach-var", o.Pos())
	} else {
		loopVarTWN = elem
	}
	c.bindLocal(o.LoopVar, loopVarTWN)
	c.Visit(o.Body)
	return node.TypeWithNode{}
}
