package lang

// Operation is one node of the bound tree that the binder hands to the
// operation visitor (spec.md section 4.3). The concrete Go type of an
// Operation IS its tag: the operation visitor dispatches on it with a type
// switch, one arm per operation kind, exactly the "tagged-union match"
// called for by spec.md section 9's design notes. There is deliberately no
// shared "Kind()" enumeration to keep the tag and the payload from
// drifting apart; Pos is embedded for diagnostics.
type Operation interface {
	// Pos returns this operation's source location, or the zero Location
	// if it was synthesized by the binder rather than pulled from real
	// source text.
	Pos() Location
}

// base is embedded by every concrete Operation to provide Pos.
type base struct {
	Loc Location
}

// Pos implements Operation.
func (b base) Pos() Location { return b.Loc }

// NullLiteral is the `null` literal.
type NullLiteral struct {
	base
	// ContextType is the type the literal is used at, needed to build a
	// result TypeWithNode of the right shape.
	ContextType Type
}

// Literal is any non-null literal: a string, `typeof(...)`, or a
// value-type constant (numeric, bool, enum).
type Literal struct {
	base
	LitType     Type
	IsValueType bool
}

// VarRef is a reference to a parameter or local variable.
type VarRef struct {
	base
	Symbol Symbol // *ParamSymbol or *LocalSymbol
	// NonNullFlow is true when the binder's dominator analysis proved this
	// particular use is preceded by an explicit null check (spec.md
	// section 4.3, "Non-null flow").
	NonNullFlow bool
}

// MemberRef is a reference to a field, property, or event, optionally
// through an instance receiver.
type MemberRef struct {
	base
	Symbol Symbol // *FieldSymbol, *PropertySymbol, or *EventSymbol
	// Receiver is nil for a static member reference.
	Receiver Operation
	// Qualifier carries the type arguments of a generic-qualified static
	// owner (`C<T>.Member`), used to substitute the member's declared
	// type (spec.md section 4.3).
	Qualifier   []Type
	NonNullFlow bool
}

// ThisRef is a `this` reference, always non-null.
type ThisRef struct {
	base
	Type Type
}

// ImplicitReceiver is the implicit receiver inside an object or collection
// initializer, referring to the enclosing ObjectCreation.
type ImplicitReceiver struct {
	base
	Enclosing *ObjectCreation
}

// Assignment is `target = value`.
type Assignment struct {
	base
	Target Operation
	Value  Operation
}

// Argument is one actual argument at a call site.
type Argument struct {
	Value Operation
	Ref   RefKind
}

// Call is a method call, possibly through an instance receiver.
type Call struct {
	base
	// Receiver is nil for a static call.
	Receiver Operation
	Method   *MethodSymbol
	// ExplicitTypeArgs are the explicit type arguments given at the call
	// site, or nil if the binder must infer fresh ones (spec.md section
	// 4.3, "Calls / indexers / constructors").
	ExplicitTypeArgs []Type
	// ReceiverTypeArgs are the generic class type arguments of the
	// receiver's type, feeding the class half of a TypeSubstitution.
	ReceiverTypeArgs []Type
	Args             []Argument
}

// IndexerAccess is `receiver[args...]` used as a read (write is modeled by
// wrapping it as the Target of an Assignment).
type IndexerAccess struct {
	base
	Receiver Operation
	Indexer  *PropertySymbol
	Args     []Operation
}

// MemberInit is one member assignment in an object initializer, or one
// element of a collection initializer when IsCollectionAdd is set (modeled
// as an `Add` call per spec.md section 4.3).
type MemberInit struct {
	Member          Symbol
	Value           Operation
	IsCollectionAdd bool
	AddArgs         []Operation
	AddMethod       *MethodSymbol
}

// ObjectCreation is `new T(args) { initializer }`.
type ObjectCreation struct {
	base
	Type        Type
	Constructor *MethodSymbol
	Args        []Argument
	Initializer []MemberInit
}

// ConversionKind classifies a conversion per the binder (spec.md section 6,
// "classification of each conversion").
type ConversionKind uint8

const (
	// ReferenceConversion is an implicit or explicit reference conversion.
	ReferenceConversion ConversionKind = iota
	// UnboxingConversion converts from `object` to a value type.
	UnboxingConversion
	// UserDefinedConversionKind invokes a declared implicit/explicit
	// conversion operator.
	UserDefinedConversionKind
)

// Conversion is a cast or implicit conversion.
type Conversion struct {
	base
	Operand Operation
	Target  Type
	Kind    ConversionKind
	// Operator is set for UserDefinedConversionKind.
	Operator *MethodSymbol
}

// ThrowExpr is `throw e` used in expression position.
type ThrowExpr struct {
	base
	Operand Operation
	// Target is the static type the throw expression is being used at.
	Target Type
}

// Coalesce is `a ?? b`.
type Coalesce struct {
	base
	Left, Right Operation
}

// Conditional is `cond ? then : else`.
type Conditional struct {
	base
	Cond, Then, Else Operation
}

// NullCheck is `x == null`, `x != null`, `x is null`, or `x is not null`.
type NullCheck struct {
	base
	Operand  Operation
	IsEquals bool
}

// NullForgiving is the postfix `!` operator.
type NullForgiving struct {
	base
	Operand Operation
}

// ArrayCreation is `new T[n] { initializer }`.
type ArrayCreation struct {
	base
	ElementType Type
	Length      Operation // nil if sized only by the initializer
	Initializer []Operation
}

// TupleLiteral is `(e1, e2, ...)`.
type TupleLiteral struct {
	base
	Elements []Operation
	Names    []string
}

// TupleDeconstruction is `(a, b) = value` or `var (a, b) = value`.
type TupleDeconstruction struct {
	base
	Targets []Operation
	Value   Operation
}

// Lambda is a lambda expression, local function, or delegate conversion
// target.
type Lambda struct {
	base
	Params         []*ParamSymbol
	ReturnType     Type
	IsAsync        bool
	Body           Operation
	TargetDelegate *DelegateType
}

// YieldReturn is `yield return e` inside an iterator method.
type YieldReturn struct {
	base
	Value Operation
}

// Await is `await e`.
type Await struct {
	base
	Operand Operation
}

// TaskResult is `e.Result` on a TaskLike-typed e.
type TaskResult struct {
	base
	Operand Operation
}

// IsTypePattern is `e is T` or `e is T x`, optionally binding x.
type IsTypePattern struct {
	base
	Operand     Operation
	PatternType Type
	Binding     *LocalSymbol // nil if unbound
}

// PropertyBinding is one `Name: pattern` clause of a property pattern.
type PropertyBinding struct {
	Property *PropertySymbol
	Var      *LocalSymbol
}

// IsPropertyPattern is `e is { P: var x, ... }`.
type IsPropertyPattern struct {
	base
	Operand  Operation
	Bindings []PropertyBinding
}

// SwitchArm is one arm of a switch expression.
type SwitchArm struct {
	// Pattern is nil for a discard (`_`) arm.
	Pattern Operation
	Value   Operation
}

// SwitchExpr is a switch expression.
type SwitchExpr struct {
	base
	Scrutinee Operation
	Arms      []SwitchArm
}

// AnonymousObject is `new { A = x, B = y }`.
type AnonymousObject struct {
	base
	Members []MemberInit
}

// Foreach is `foreach (var x in collection) body`.
type Foreach struct {
	base
	Collection    Operation
	LoopVar       *LocalSymbol
	LoopVarSyntax *TypeSyntax // nil if the loop variable is `var`
	Body          Operation
}

// Block is a sequence of statements.
type Block struct {
	base
	Stmts []Operation
}

// Return is `return e1, e2, ...` (more than one value only for tuple-typed
// returns expressed positionally rather than as a TupleLiteral).
type Return struct {
	base
	Values []Operation
}

// If is `if (cond) then else else`.
type If struct {
	base
	Cond, Then, Else Operation
}

// ExprStmt wraps an expression used in statement position.
type ExprStmt struct {
	base
	Expr Operation
}

// LocalDecl is `T x = init;` or `var x = init;`.
type LocalDecl struct {
	base
	Local  *LocalSymbol
	Syntax *TypeSyntax // nil if Local.IsImplicitlyTyped()
	Init   Operation   // nil if uninitialized
}
