// Package fixture decodes a JSON document into a harness.Case: a method
// signature plus an already-bound operation tree. The command line has no
// source-language binder to call (compiling source text is this module's
// declared out-of-scope boundary), so cmd/nullgraph's infer and query
// subcommands take the bound tree directly, JSON-encoded, the same way
// the harness package's Go-level callers do.
//
// The decoded operation set covers every construct spec.md's worked
// scenarios exercise: literals, variable references, control flow,
// coalescing, conversions, switch expressions, foreach, lambdas, and
// local declarations. Constructs that need a fuller symbol table to model
// meaningfully (instance method calls, object construction, member
// access through a receiver) are reachable through the harness package's
// Go API, but are not part of this JSON surface; no test in this module
// builds them.
package fixture

import (
	"encoding/json"
	"fmt"

	"github.com/nullgraph/nullgraph/lang"
)

// TypeSpec is the JSON shape of a declared lang.Type.
type TypeSpec struct {
	Kind     string     `json:"kind"`               // named, value, array, tuple, delegate
	Name     string     `json:"name,omitempty"`     // named, value
	Nullable bool       `json:"nullable,omitempty"` // named: T? ; value: Nullable<T>
	WellKnown string    `json:"wellKnown,omitempty"`
	Elem     *TypeSpec  `json:"elem,omitempty"`     // array, or value wrapped in "nullable"
	Args     []TypeSpec `json:"args,omitempty"`     // named type arguments, tuple members
	Names    []string   `json:"names,omitempty"`    // tuple member names, parallel to Args
	Params   []TypeSpec `json:"params,omitempty"`   // delegate parameter types
	Return   *TypeSpec  `json:"return,omitempty"`   // delegate return type
}

func wellKnown(s string) lang.WellKnown {
	switch s {
	case "task":
		return lang.TaskLike
	case "sequence":
		return lang.SequenceLike
	default:
		return lang.NotWellKnown
	}
}

// ToType builds the lang.Type this spec describes.
func (s *TypeSpec) ToType() (lang.Type, error) {
	if s == nil {
		return nil, nil
	}
	switch s.Kind {
	case "named", "":
		args := make([]lang.Type, len(s.Args))
		for i, a := range s.Args {
			t, err := a.ToType()
			if err != nil {
				return nil, err
			}
			args[i] = t
		}
		return &lang.NamedType{TypeName: s.Name, TypeArgs: args, Special: wellKnown(s.WellKnown)}, nil
	case "value":
		v := lang.Type(&lang.ValueType{TypeName: s.Name})
		if s.Nullable {
			v = &lang.NullableValueType{Elem: v}
		}
		return v, nil
	case "array":
		elem, err := s.Elem.ToType()
		if err != nil {
			return nil, fmt.Errorf("array element: %w", err)
		}
		return &lang.ArrayType{Elem: elem}, nil
	case "tuple":
		elems := make([]lang.Type, len(s.Args))
		for i, a := range s.Args {
			t, err := a.ToType()
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return &lang.TupleType{Elems: elems, Names: s.Names}, nil
	case "delegate":
		params := make([]lang.Type, len(s.Params))
		for i, p := range s.Params {
			t, err := p.ToType()
			if err != nil {
				return nil, err
			}
			params[i] = t
		}
		ret, err := s.Return.ToType()
		if err != nil {
			return nil, fmt.Errorf("delegate return: %w", err)
		}
		return &lang.DelegateType{Params: params, Return: ret}, nil
	default:
		return nil, fmt.Errorf("unknown type kind %q", s.Kind)
	}
}

// ToSyntax reconstructs the lang.TypeSyntax a binder would have produced
// for an unannotated declared occurrence of this spec, recursing into
// nested positions so a generic fixture gets one fresh node per nested
// reference-typed position (spec.md section 4.2).
func (s *TypeSpec) ToSyntax() (*lang.TypeSyntax, error) {
	if s == nil {
		return nil, nil
	}
	underlying, err := s.ToType()
	if err != nil {
		return nil, err
	}
	switch s.Kind {
	case "value":
		if s.Nullable {
			elemSyntax, err := (&TypeSpec{Kind: "value", Name: s.Name}).ToSyntax()
			if err != nil {
				return nil, err
			}
			return &lang.TypeSyntax{SyntaxKind: lang.NullableValueSyntax, Underlying: underlying, Args: []*lang.TypeSyntax{elemSyntax}}, nil
		}
		return &lang.TypeSyntax{SyntaxKind: lang.NamedSyntax, Underlying: underlying}, nil
	case "array":
		elemSyntax, err := s.Elem.ToSyntax()
		if err != nil {
			return nil, err
		}
		return &lang.TypeSyntax{SyntaxKind: lang.ArraySyntax, Underlying: underlying, Args: []*lang.TypeSyntax{elemSyntax}}, nil
	case "tuple":
		args := make([]*lang.TypeSyntax, len(s.Args))
		for i, a := range s.Args {
			args[i], err = a.ToSyntax()
			if err != nil {
				return nil, err
			}
		}
		return &lang.TypeSyntax{SyntaxKind: lang.TupleSyntax, Underlying: underlying, Args: args, Names: s.Names}, nil
	default: // named, delegate
		kind := lang.NamedSyntax
		if s.Nullable {
			kind = lang.NullableRefSyntax
		}
		var args []*lang.TypeSyntax
		for _, a := range underlying.TypeArguments() {
			args = append(args, typeSyntaxOf(a))
		}
		return &lang.TypeSyntax{SyntaxKind: kind, Underlying: underlying, Args: args}, nil
	}
}

// typeSyntaxOf reconstructs syntax for a nested lang.Type that did not
// come from a TypeSpec (a named type's already-resolved type arguments).
func typeSyntaxOf(ty lang.Type) *lang.TypeSyntax {
	if ty == nil {
		return nil
	}
	switch t := ty.(type) {
	case *lang.NullableValueType:
		return &lang.TypeSyntax{SyntaxKind: lang.NullableValueSyntax, Underlying: ty, Args: []*lang.TypeSyntax{typeSyntaxOf(t.Elem)}}
	case *lang.ArrayType:
		return &lang.TypeSyntax{SyntaxKind: lang.ArraySyntax, Underlying: ty, Args: []*lang.TypeSyntax{typeSyntaxOf(t.Elem)}}
	case *lang.TupleType:
		args := make([]*lang.TypeSyntax, len(t.Elems))
		for i, e := range t.Elems {
			args[i] = typeSyntaxOf(e)
		}
		return &lang.TypeSyntax{SyntaxKind: lang.TupleSyntax, Underlying: ty, Args: args, Names: t.Names}
	default:
		var args []*lang.TypeSyntax
		for _, a := range ty.TypeArguments() {
			args = append(args, typeSyntaxOf(a))
		}
		return &lang.TypeSyntax{SyntaxKind: lang.NamedSyntax, Underlying: ty, Args: args}
	}
}

// ParamSpec is the JSON shape of one method parameter.
type ParamSpec struct {
	Name string   `json:"name"`
	Type TypeSpec `json:"type"`
}

// OpSpec is the JSON shape of one lang.Operation, tagged by Op. Fields
// not meaningful for a given Op are simply left zero.
type OpSpec struct {
	Op string `json:"op"`

	// literal / nullLiteral
	Type        *TypeSpec `json:"type,omitempty"`
	IsValueType bool      `json:"isValueType,omitempty"`

	// varRef
	Var         string `json:"var,omitempty"`
	NonNullFlow bool   `json:"nonNullFlow,omitempty"`

	// block
	Stmts []OpSpec `json:"stmts,omitempty"`

	// return
	Values []OpSpec `json:"values,omitempty"`

	// if / conditional
	Cond *OpSpec `json:"cond,omitempty"`
	Then *OpSpec `json:"then,omitempty"`
	Else *OpSpec `json:"else,omitempty"`

	// nullCheck
	Operand  *OpSpec `json:"operand,omitempty"`
	IsEquals bool    `json:"isEquals,omitempty"`

	// coalesce
	Left  *OpSpec `json:"left,omitempty"`
	Right *OpSpec `json:"right,omitempty"`

	// conversion
	Target         *TypeSpec `json:"target,omitempty"`
	ConversionKind string    `json:"conversionKind,omitempty"`

	// switchExpr
	Scrutinee *OpSpec        `json:"scrutinee,omitempty"`
	Arms      []SwitchArmSpec `json:"arms,omitempty"`

	// foreach
	Collection *OpSpec   `json:"collection,omitempty"`
	LoopVar    string    `json:"loopVar,omitempty"`
	LoopVarType *TypeSpec `json:"loopVarType,omitempty"`
	Body       *OpSpec   `json:"body,omitempty"`

	// lambda
	Params     []ParamSpec `json:"params,omitempty"`
	ReturnType *TypeSpec   `json:"returnType,omitempty"`
	IsAsync    bool        `json:"isAsync,omitempty"`

	// localDecl
	Local *string `json:"local,omitempty"`
	Init  *OpSpec `json:"init,omitempty"`

	// exprStmt
	Expr *OpSpec `json:"expr,omitempty"`

	// assignment
	TargetOp *OpSpec `json:"targetOp,omitempty"`
	ValueOp  *OpSpec `json:"valueOp,omitempty"`

	// arrayCreation
	ElementType *TypeSpec `json:"elementType,omitempty"`
	Length      *OpSpec   `json:"length,omitempty"`
	Initializer []OpSpec  `json:"initializer,omitempty"`
}

// SwitchArmSpec is one arm of a JSON switchExpr.
type SwitchArmSpec struct {
	Pattern *OpSpec `json:"pattern,omitempty"`
	Value   OpSpec  `json:"value"`
}

func conversionKind(s string) (lang.ConversionKind, error) {
	switch s {
	case "reference", "":
		return lang.ReferenceConversion, nil
	case "unboxing":
		return lang.UnboxingConversion, nil
	case "userDefined":
		return lang.UserDefinedConversionKind, nil
	default:
		return 0, fmt.Errorf("unknown conversion kind %q", s)
	}
}

// scope resolves a variable name to the symbol it was bound to, so that
// nested operations can refer back to parameters and locals declared
// earlier in the same fixture.
type scope struct {
	symbols map[string]lang.Symbol
}

func newScope() *scope { return &scope{symbols: map[string]lang.Symbol{}} }

func (s *scope) bind(name string, sym lang.Symbol) { s.symbols[name] = sym }

func (s *scope) lookup(name string) (lang.Symbol, error) {
	sym, ok := s.symbols[name]
	if !ok {
		return nil, fmt.Errorf("fixture: undeclared variable %q", name)
	}
	return sym, nil
}

// ToOperation builds the lang.Operation tree this spec describes,
// resolving variable references against sc.
func (o *OpSpec) ToOperation(sc *scope) (lang.Operation, error) {
	if o == nil {
		return nil, nil
	}
	switch o.Op {
	case "literal":
		ty, err := o.Type.ToType()
		if err != nil {
			return nil, err
		}
		return &lang.Literal{LitType: ty, IsValueType: o.IsValueType}, nil

	case "nullLiteral":
		ty, err := o.Type.ToType()
		if err != nil {
			return nil, err
		}
		return &lang.NullLiteral{ContextType: ty}, nil

	case "varRef":
		sym, err := sc.lookup(o.Var)
		if err != nil {
			return nil, err
		}
		return &lang.VarRef{Symbol: sym, NonNullFlow: o.NonNullFlow}, nil

	case "block":
		stmts := make([]lang.Operation, len(o.Stmts))
		for i := range o.Stmts {
			s, err := o.Stmts[i].ToOperation(sc)
			if err != nil {
				return nil, err
			}
			stmts[i] = s
		}
		return &lang.Block{Stmts: stmts}, nil

	case "return":
		values := make([]lang.Operation, len(o.Values))
		for i := range o.Values {
			v, err := o.Values[i].ToOperation(sc)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return &lang.Return{Values: values}, nil

	case "if":
		cond, err := o.Cond.ToOperation(sc)
		if err != nil {
			return nil, err
		}
		then, err := o.Then.ToOperation(sc)
		if err != nil {
			return nil, err
		}
		els, err := o.Else.ToOperation(sc)
		if err != nil {
			return nil, err
		}
		return &lang.If{Cond: cond, Then: then, Else: els}, nil

	case "conditional":
		cond, err := o.Cond.ToOperation(sc)
		if err != nil {
			return nil, err
		}
		then, err := o.Then.ToOperation(sc)
		if err != nil {
			return nil, err
		}
		els, err := o.Else.ToOperation(sc)
		if err != nil {
			return nil, err
		}
		return &lang.Conditional{Cond: cond, Then: then, Else: els}, nil

	case "nullCheck":
		operand, err := o.Operand.ToOperation(sc)
		if err != nil {
			return nil, err
		}
		return &lang.NullCheck{Operand: operand, IsEquals: o.IsEquals}, nil

	case "nullForgiving":
		operand, err := o.Operand.ToOperation(sc)
		if err != nil {
			return nil, err
		}
		return &lang.NullForgiving{Operand: operand}, nil

	case "coalesce":
		left, err := o.Left.ToOperation(sc)
		if err != nil {
			return nil, err
		}
		right, err := o.Right.ToOperation(sc)
		if err != nil {
			return nil, err
		}
		return &lang.Coalesce{Left: left, Right: right}, nil

	case "conversion":
		operand, err := o.Operand.ToOperation(sc)
		if err != nil {
			return nil, err
		}
		target, err := o.Target.ToType()
		if err != nil {
			return nil, err
		}
		kind, err := conversionKind(o.ConversionKind)
		if err != nil {
			return nil, err
		}
		return &lang.Conversion{Operand: operand, Target: target, Kind: kind}, nil

	case "switchExpr":
		scrutinee, err := o.Scrutinee.ToOperation(sc)
		if err != nil {
			return nil, err
		}
		arms := make([]lang.SwitchArm, len(o.Arms))
		for i, a := range o.Arms {
			pattern, err := a.Pattern.ToOperation(sc)
			if err != nil {
				return nil, err
			}
			value, err := a.Value.ToOperation(sc)
			if err != nil {
				return nil, err
			}
			arms[i] = lang.SwitchArm{Pattern: pattern, Value: value}
		}
		return &lang.SwitchExpr{Scrutinee: scrutinee, Arms: arms}, nil

	case "foreach":
		collection, err := o.Collection.ToOperation(sc)
		if err != nil {
			return nil, err
		}
		loopVarType, err := o.LoopVarType.ToType()
		if err != nil {
			return nil, err
		}
		loopVarSyntax, err := o.LoopVarType.ToSyntax()
		if err != nil {
			return nil, err
		}
		local := &lang.LocalSymbol{SymbolName: o.LoopVar, Type: loopVarType}
		sc.bind(o.LoopVar, local)
		body, err := o.Body.ToOperation(sc)
		if err != nil {
			return nil, err
		}
		return &lang.Foreach{Collection: collection, LoopVar: local, LoopVarSyntax: loopVarSyntax, Body: body}, nil

	case "lambda":
		params := make([]*lang.ParamSymbol, len(o.Params))
		for i, p := range o.Params {
			ty, err := p.Type.ToType()
			if err != nil {
				return nil, err
			}
			params[i] = &lang.ParamSymbol{SymbolName: p.Name, Ordinal: i, Type: ty}
			sc.bind(p.Name, params[i])
		}
		returnType, err := o.ReturnType.ToType()
		if err != nil {
			return nil, err
		}
		body, err := o.Body.ToOperation(sc)
		if err != nil {
			return nil, err
		}
		return &lang.Lambda{Params: params, ReturnType: returnType, IsAsync: o.IsAsync, Body: body}, nil

	case "localDecl":
		ty, err := o.Type.ToType()
		if err != nil {
			return nil, err
		}
		syn, err := o.Type.ToSyntax()
		if err != nil {
			return nil, err
		}
		local := &lang.LocalSymbol{SymbolName: *o.Local, Type: ty}
		sc.bind(*o.Local, local)
		init, err := o.Init.ToOperation(sc)
		if err != nil {
			return nil, err
		}
		return &lang.LocalDecl{Local: local, Syntax: syn, Init: init}, nil

	case "exprStmt":
		expr, err := o.Expr.ToOperation(sc)
		if err != nil {
			return nil, err
		}
		return &lang.ExprStmt{Expr: expr}, nil

	case "assignment":
		target, err := o.TargetOp.ToOperation(sc)
		if err != nil {
			return nil, err
		}
		value, err := o.ValueOp.ToOperation(sc)
		if err != nil {
			return nil, err
		}
		return &lang.Assignment{Target: target, Value: value}, nil

	case "arrayCreation":
		elemType, err := o.ElementType.ToType()
		if err != nil {
			return nil, err
		}
		length, err := o.Length.ToOperation(sc)
		if err != nil {
			return nil, err
		}
		init := make([]lang.Operation, len(o.Initializer))
		for i := range o.Initializer {
			v, err := o.Initializer[i].ToOperation(sc)
			if err != nil {
				return nil, err
			}
			init[i] = v
		}
		return &lang.ArrayCreation{ElementType: elemType, Length: length, Initializer: init}, nil

	default:
		return nil, fmt.Errorf("fixture: unsupported operation kind %q", o.Op)
	}
}

// MethodSpec is the JSON shape of one declared method and its body,
// decoding to a harness.Case-compatible (*lang.MethodSymbol, lang.Operation)
// pair.
type MethodSpec struct {
	Name    string      `json:"name"`
	Params  []ParamSpec `json:"params"`
	Returns []TypeSpec  `json:"returns"`
	Body    OpSpec      `json:"body"`
}

// Decode builds the method symbol, its parameter symbols, and its bound
// body from m, in one pass so that varRef operations in Body can resolve
// against the parameters declared in Params.
func (m *MethodSpec) Decode() (*lang.MethodSymbol, lang.Operation, error) {
	method := &lang.MethodSymbol{SymbolName: m.Name}
	returns := make([]lang.Type, len(m.Returns))
	for i := range m.Returns {
		ty, err := m.Returns[i].ToType()
		if err != nil {
			return nil, nil, fmt.Errorf("method %s: return %d: %w", m.Name, i, err)
		}
		returns[i] = ty
	}
	method.Returns = returns

	sc := newScope()
	params := make([]*lang.ParamSymbol, len(m.Params))
	for i, p := range m.Params {
		ty, err := p.Type.ToType()
		if err != nil {
			return nil, nil, fmt.Errorf("method %s: param %q: %w", m.Name, p.Name, err)
		}
		params[i] = &lang.ParamSymbol{SymbolName: p.Name, ContainerSym: method, Ordinal: i, Type: ty}
		sc.bind(p.Name, params[i])
	}
	method.Params = params

	body, err := m.Body.ToOperation(sc)
	if err != nil {
		return nil, nil, fmt.Errorf("method %s: body: %w", m.Name, err)
	}
	return method, body, nil
}

// ParseMethod decodes a single MethodSpec from JSON.
func ParseMethod(data []byte) (*lang.MethodSymbol, lang.Operation, error) {
	var spec MethodSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, nil, fmt.Errorf("fixture: parsing method: %w", err)
	}
	return spec.Decode()
}

// ParseMethods decodes a JSON array of MethodSpecs, for a multi-tree
// infer run.
func ParseMethods(data []byte) ([]*lang.MethodSymbol, []lang.Operation, error) {
	var specs []MethodSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, nil, fmt.Errorf("fixture: parsing methods: %w", err)
	}
	methods := make([]*lang.MethodSymbol, len(specs))
	bodies := make([]lang.Operation, len(specs))
	for i := range specs {
		m, b, err := specs[i].Decode()
		if err != nil {
			return nil, nil, err
		}
		methods[i] = m
		bodies[i] = b
	}
	return methods, bodies, nil
}
