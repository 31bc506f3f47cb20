// Copyright (C) 2023 The odex Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package expr

import (
	"math"
	"math/big"
	"strings"

	"github.com/google/uuid"

	"github.com/odatakit/odex/date"
	"github.com/odatakit/odex/geo"
	"github.com/odatakit/odex/names"
)

// Evaluator is a backend for expression evaluation: one
// method per literal kind, operator, built-in method,
// path primitive, and client-side function. Evaluate
// walks the tree and calls the relevant subset, so a
// backend gives the expression meaning without the tree
// knowing anything about the result type.
//
// Backends embed Env for the evaluation state and
// Unsupported for default implementations of operations
// they do not handle.
type Evaluator[T any] interface {
	// Environment exposes the per-evaluation state;
	// provided by embedding Env.
	Environment() *Env[T]

	Null() (T, error)
	Boolean(v bool) (T, error)
	Guid(v uuid.UUID) (T, error)
	Date(v date.Date) (T, error)
	DateTimeOffset(v date.DateTimeOffset, literal string) (T, error)
	TimeOfDay(v date.TimeOfDay, literal string) (T, error)
	Decimal(v *big.Rat, literal string) (T, error)
	Double(v float64, literal string) (T, error)
	Int64(v int64) (T, error)
	String(v string) (T, error)
	Duration(v date.Duration, literal string) (T, error)
	Binary(v []byte) (T, error)
	Enum(v names.EnumLiteral) (T, error)
	Geography(v geo.Literal, literal string) (T, error)
	Geometry(v geo.Literal, literal string) (T, error)

	Root() (T, error)
	ImplicitVariable() (T, error)
	Reference(qname names.QualifiedName) (T, error)
	// Parameter resolves the @name parameter alias.
	// Evaluating backends implement it with
	// ParameterValue; rendering backends emit the alias
	// itself.
	Parameter(name string) (T, error)

	// Collection and Record receive their operands
	// unevaluated so backends can apply the JSON literal
	// rules and the item-skipping form of conditionals.
	Collection(items []Node) (T, error)
	Record(fields []*MemberBind) (T, error)

	// FirstMember resolves the first segment of a path
	// in the current context; Member resolves each
	// subsequent segment. Both report absent segments
	// with a PathError.
	FirstMember(segment names.Segment) (T, error)
	Member(segment names.Segment) (T, error)
	// MemberArgs applies an argument list to the current
	// context: a key predicate when the context is a
	// collection, or parameters when it is a function.
	MemberArgs(args *Args) (T, error)
	MemberCount() (T, error)
	// MemberAny and MemberAll receive the lambda
	// unevaluated; name is empty for the bare any()
	// form. Backends bind the variable per item with
	// PushLambda, which also clears the ambient context.
	MemberAny(name string, lambda Node) (T, error)
	MemberAll(name string, lambda Node) (T, error)
	Bind(name string, value T) (T, error)

	And(a, b T) (T, error)
	Or(a, b T) (T, error)
	Not(v T) (T, error)
	Eq(a, b T) (T, error)
	Ne(a, b T) (T, error)
	Lt(a, b T) (T, error)
	Le(a, b T) (T, error)
	Gt(a, b T) (T, error)
	Ge(a, b T) (T, error)
	Has(a, b T) (T, error)
	Add(a, b T) (T, error)
	Sub(a, b T) (T, error)
	Mul(a, b T) (T, error)
	Div(a, b T) (T, error)
	Mod(a, b T) (T, error)
	Negate(v T) (T, error)
	If(test, then T, els *T) (T, error)

	MinDateTime() (T, error)
	MaxDateTime() (T, error)
	Now() (T, error)
	Length(v T) (T, error)
	ToLower(v T) (T, error)
	ToUpper(v T) (T, error)
	Trim(v T) (T, error)
	Year(v T) (T, error)
	Month(v T) (T, error)
	Day(v T) (T, error)
	Hour(v T) (T, error)
	Minute(v T) (T, error)
	Second(v T) (T, error)
	FractionalSeconds(v T) (T, error)
	TotalSeconds(v T) (T, error)
	DateOf(v T) (T, error)
	TimeOf(v T) (T, error)
	TotalOffsetMinutes(v T) (T, error)
	Round(v T) (T, error)
	Floor(v T) (T, error)
	Ceiling(v T) (T, error)
	Contains(a, b T) (T, error)
	StartsWith(a, b T) (T, error)
	EndsWith(a, b T) (T, error)
	IndexOf(a, b T) (T, error)
	Concat(a, b T) (T, error)
	Substring(a, b T, c *T) (T, error)
	GeoLength(v T) (T, error)
	GeoDistance(a, b T) (T, error)
	GeoIntersects(a, b T) (T, error)

	// Cast and IsOf take the type as a qualified name
	// (URL syntax); CastType and IsOfType take a
	// resolved type object (annotation syntax). The
	// value is absent for the single-argument form
	// applying to the current context.
	Cast(typeName names.QualifiedName, value *T) (T, error)
	CastType(def TypeDef, value T) (T, error)
	IsOf(typeName names.QualifiedName, value *T) (T, error)
	IsOfType(def TypeDef, value T) (T, error)

	ODataConcat(args []T) (T, error)
	ODataFillURITemplate(template T, args []Node) (T, error)
	ODataURIEncode(value T) (T, error)

	PathExpr(path names.Path) (T, error)
	AnnotationPath(path names.Path) (T, error)
	NavigationPath(path names.Path) (T, error)
	PropertyPath(path names.Path) (T, error)

	Word(v string) (T, error)
	Phrase(v string) (T, error)
}

// Env is the per-evaluation state shared by every
// backend: the fixed implicit variable, the shifting
// current context, the lambda-variable bindings, the
// declared parameter aliases, and the bind scope. A nil
// context pointer is the null context.
//
// Context and lambda entries are strictly stack-scoped:
// each push returns a restore function that the caller
// runs via defer, so the previous state comes back on
// every exit path.
type Env[T any] struct {
	it           *T
	context      *T
	contextStack []*T
	lambdaStack  []lambdaBinding[T]
	params       map[string]Node
	scope        map[string]T
	scopeStack   []map[string]T
}

type lambdaBinding[T any] struct {
	name    string
	context *T
}

// Reset prepares the environment for a fresh evaluation
// with it as the implicit variable; nil evaluates
// constant expressions in the null context.
func (e *Env[T]) Reset(it *T) {
	e.it = it
	e.context = it
	e.contextStack = e.contextStack[:0]
	e.lambdaStack = e.lambdaStack[:0]
	e.scope = nil
	e.scopeStack = e.scopeStack[:0]
}

// Environment implements the accessor of Evaluator.
func (e *Env[T]) Environment() *Env[T] { return e }

// It returns the implicit variable, or nil.
func (e *Env[T]) It() *T { return e.it }

// Context returns the current context, or nil for the
// null context.
func (e *Env[T]) Context() *T { return e.context }

// PushContext makes c the current context and returns
// the function restoring the previous one.
func (e *Env[T]) PushContext(c *T) func() {
	e.contextStack = append(e.contextStack, e.context)
	e.context = c
	return func() {
		n := len(e.contextStack) - 1
		e.context = e.contextStack[n]
		e.contextStack = e.contextStack[:n]
	}
}

// PushLambda binds name to c for the scope of a lambda
// and clears the ambient context: inside the lambda only
// the variable's own scope governs unqualified names.
// The returned function restores both.
func (e *Env[T]) PushLambda(name string, c *T) func() {
	e.lambdaStack = append(e.lambdaStack, lambdaBinding[T]{name: name, context: c})
	restore := e.PushContext(nil)
	return func() {
		restore()
		e.lambdaStack = e.lambdaStack[:len(e.lambdaStack)-1]
	}
}

// LambdaContext returns the context bound to the named
// lambda variable, or nil. The innermost binding wins.
func (e *Env[T]) LambdaContext(name string) *T {
	var out *T
	for i := range e.lambdaStack {
		if e.lambdaStack[i].name == name {
			out = e.lambdaStack[i].context
		}
	}
	return out
}

// DeclareParameter declares the @name parameter alias,
// replacing any previous declaration. The expression is
// evaluated in a fresh null context wherever the
// parameter is referenced; undeclared parameters
// evaluate as null.
func (e *Env[T]) DeclareParameter(name string, expr Node) {
	if e.params == nil {
		e.params = make(map[string]Node)
	}
	e.params[name] = expr
}

// PushScope opens a scope collecting the results of bind
// operations, used by backends when evaluating key
// predicates and named function parameters. The returned
// map is live until the restore function runs.
func (e *Env[T]) PushScope() (map[string]T, func()) {
	e.scopeStack = append(e.scopeStack, e.scope)
	e.scope = make(map[string]T)
	return e.scope, func() {
		n := len(e.scopeStack) - 1
		e.scope = e.scopeStack[n]
		e.scopeStack = e.scopeStack[:n]
	}
}

// Scope returns the current bind scope, or nil.
func (e *Env[T]) Scope() map[string]T { return e.scope }

// Evaluate evaluates n against the backend. Children
// evaluate left-to-right and no operator short-circuits.
// The node set is closed; evaluating a node that is only
// meaningful inside a larger construct (an argument
// list, a lambda bind, $count) fails with an ExprError.
func Evaluate[T any](n Node, ev Evaluator[T]) (T, error) {
	var zero T
	switch n := n.(type) {
	case Null:
		return ev.Null()
	case Bool:
		return ev.Boolean(bool(n))
	case Int64:
		return ev.Int64(int64(n))
	case String:
		return ev.String(string(n))
	case Double:
		return ev.Double(n.Value, n.Literal)
	case Decimal:
		return ev.Decimal(n.Value, n.Literal)
	case Guid:
		return ev.Guid(uuid.UUID(n))
	case Date:
		return ev.Date(n.Value)
	case DateTimeOffset:
		return ev.DateTimeOffset(n.Value, n.Literal)
	case TimeOfDay:
		return ev.TimeOfDay(n.Value, n.Literal)
	case Duration:
		return ev.Duration(n.Value, n.Literal)
	case Binary:
		return ev.Binary([]byte(n))
	case Enum:
		return ev.Enum(n.Value)
	case Geography:
		return ev.Geography(n.Value, n.Literal)
	case Geometry:
		return ev.Geometry(n.Value, n.Literal)
	case Param:
		return ev.Parameter(string(n))
	case Root:
		return ev.Root()
	case It:
		return ev.ImplicitVariable()
	case Ident:
		return evalIdent(n, ev)
	case QName:
		return firstMember(ev, names.Segment{QName: names.QualifiedName(n)})
	case TermRef:
		return zero, exprErrf("term reference %s out of context", n.String())
	case Reference:
		return ev.Reference(names.QualifiedName(n))
	case TypeExpr:
		return zero, exprErrf("type expression out of context")
	case Count:
		return zero, exprErrf("$count outside path")
	case *Member:
		return evalMember(n, ev)
	case *Call:
		return evalCall(n, ev)
	case *Args:
		return zero, exprErrf("argument list out of context")
	case *Bind:
		if n.Expr == nil {
			return zero, exprErrf("incomplete bind")
		}
		v, err := Evaluate(n.Expr, ev)
		if err != nil {
			return zero, err
		}
		return ev.Bind(n.Name, v)
	case *LambdaBind:
		return zero, exprErrf("lambda expression out of context")
	case *MemberBind:
		return zero, exprErrf("record member expression out of context")
	case *Collection:
		return ev.Collection(n.Items)
	case *Record:
		return ev.Record(n.Fields)
	case *If:
		return evalIf(n, ev)
	case *Comparison:
		a, b, err := evalBinary(n.Left, n.Right, ev)
		if err != nil {
			return zero, err
		}
		switch n.Op {
		case OpEq:
			return ev.Eq(a, b)
		case OpNe:
			return ev.Ne(a, b)
		case OpLt:
			return ev.Lt(a, b)
		case OpLe:
			return ev.Le(a, b)
		case OpGt:
			return ev.Gt(a, b)
		case OpGe:
			return ev.Ge(a, b)
		}
		return zero, exprErrf("bad comparison operator %s", n.Op)
	case *Has:
		a, b, err := evalBinary(n.Left, n.Right, ev)
		if err != nil {
			return zero, err
		}
		return ev.Has(a, b)
	case *Logical:
		a, b, err := evalBinary(n.Left, n.Right, ev)
		if err != nil {
			return zero, err
		}
		if n.Op == OpAnd {
			return ev.And(a, b)
		}
		return ev.Or(a, b)
	case *Arithmetic:
		a, b, err := evalBinary(n.Left, n.Right, ev)
		if err != nil {
			return zero, err
		}
		switch n.Op {
		case OpAdd:
			return ev.Add(a, b)
		case OpSub:
			return ev.Sub(a, b)
		case OpMul:
			return ev.Mul(a, b)
		case OpDiv:
			return ev.Div(a, b)
		case OpMod:
			return ev.Mod(a, b)
		}
		return zero, exprErrf("bad arithmetic operator %s", n.Op)
	case *Not:
		if n.Expr == nil {
			return zero, exprErrf("incomplete not")
		}
		v, err := Evaluate(n.Expr, ev)
		if err != nil {
			return zero, err
		}
		return ev.Not(v)
	case *Negate:
		if n.Expr == nil {
			return zero, exprErrf("incomplete negate")
		}
		v, err := Evaluate(n.Expr, ev)
		if err != nil {
			return zero, err
		}
		return ev.Negate(v)
	case PathExpr:
		return ev.PathExpr(n.Path)
	case AnnotationPath:
		return ev.AnnotationPath(n.Path)
	case NavigationPath:
		return ev.NavigationPath(n.Path)
	case PropertyPath:
		return ev.PropertyPath(n.Path)
	case Word:
		return ev.Word(string(n))
	case Phrase:
		return ev.Phrase(string(n))
	case *SearchAnd:
		a, b, err := evalBinary(n.Left, n.Right, ev)
		if err != nil {
			return zero, err
		}
		return ev.And(a, b)
	case *SearchOr:
		a, b, err := evalBinary(n.Left, n.Right, ev)
		if err != nil {
			return zero, err
		}
		return ev.Or(a, b)
	case *SearchNot:
		if n.Expr == nil {
			return zero, exprErrf("incomplete NOT")
		}
		v, err := Evaluate(n.Expr, ev)
		if err != nil {
			return zero, err
		}
		return ev.Not(v)
	}
	return zero, exprErrf("unknown expression node %T", n)
}

// EvaluateArgs evaluates each argument in turn.
func EvaluateArgs[T any](a *Args, ev Evaluator[T]) ([]T, error) {
	out := make([]T, 0, len(a.List))
	for _, op := range a.List {
		v, err := Evaluate(op, ev)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func evalBinary[T any](l, r Node, ev Evaluator[T]) (a, b T, err error) {
	if l == nil || r == nil {
		err = exprErrf("incomplete binary operator")
		return
	}
	a, err = Evaluate(l, ev)
	if err != nil {
		return
	}
	b, err = Evaluate(r, ev)
	return
}

// firstMember resolves the first segment of a path:
// lambda variables override everything, then the backend
// looks the segment up in the current context.
func firstMember[T any](ev Evaluator[T], seg names.Segment) (T, error) {
	if !seg.Qualified() {
		if ctx := ev.Environment().LambdaContext(seg.Name); ctx != nil {
			return *ctx, nil
		}
	}
	return ev.FirstMember(seg)
}

// evalIdent resolves a bare identifier. A failed lookup
// falls back to the reserved words INF, NaN, true, false
// (case-insensitive per the grammar), and null; only if
// none match is the original error re-raised. Properties
// therefore hide reserved words of the same spelling.
func evalIdent[T any](id Ident, ev Evaluator[T]) (T, error) {
	v, err := firstMember(ev, names.Segment{Name: string(id)})
	if err == nil || !IsPathError(err) {
		return v, err
	}
	switch {
	case id == "INF":
		return ev.Double(math.Inf(1), "INF")
	case id == "NaN":
		return ev.Double(math.NaN(), "NaN")
	case strings.EqualFold(string(id), "true"):
		return ev.Boolean(true)
	case strings.EqualFold(string(id), "false"):
		return ev.Boolean(false)
	case id == "null":
		return ev.Null()
	}
	return v, err
}

// ParameterValue evaluates the expression declared for a
// parameter alias in a fresh null context, making
// parameters context-free constants; an undeclared
// parameter is null. Backends implement Parameter with
// it.
func ParameterValue[T any](name string, ev Evaluator[T]) (T, error) {
	env := ev.Environment()
	expr := env.params[name]
	if expr == nil {
		return ev.Null()
	}
	restore := env.PushContext(nil)
	defer restore()
	return Evaluate(expr, ev)
}

func evalMember[T any](m *Member, ev Evaluator[T]) (T, error) {
	var zero T
	if len(m.operands) != 2 {
		return zero, exprErrf("incomplete path")
	}
	var ctx T
	var err error
	if id, ok := m.Left().(Ident); ok {
		// must be a first member; no reserved-word fallback
		ctx, err = firstMember(ev, names.Segment{Name: string(id)})
	} else {
		ctx, err = Evaluate(m.Left(), ev)
	}
	if err != nil {
		return zero, err
	}
	restore := ev.Environment().PushContext(&ctx)
	defer restore()
	return evalPathNode(m.Right(), ev)
}

// evalPathNode evaluates one node of a rotated member
// chain. Each resolved segment becomes the context for
// the remainder, so segments always resolve relative to
// their immediate parent.
func evalPathNode[T any](n Node, ev Evaluator[T]) (T, error) {
	var zero T
	switch n := n.(type) {
	case *Member:
		if len(n.operands) != 2 {
			return zero, exprErrf("incomplete path")
		}
		var ctx T
		var err error
		if id, ok := n.Left().(Ident); ok {
			ctx, err = ev.Member(names.Segment{Name: string(id)})
		} else {
			ctx, err = evalPathNode(n.Left(), ev)
		}
		if err != nil {
			return zero, err
		}
		restore := ev.Environment().PushContext(&ctx)
		defer restore()
		return evalPathNode(n.Right(), ev)
	case Ident:
		return ev.Member(names.Segment{Name: string(n)})
	case QName:
		return ev.Member(names.Segment{QName: names.QualifiedName(n)})
	case *Call:
		return evalCallPath(n, ev)
	case Count:
		return ev.MemberCount()
	}
	return zero, exprErrf("%T in path", n)
}

// evalCall evaluates a standalone call. This is where
// the central grammar ambiguity resolves: a navigation
// property of the same name always beats a built-in
// method, then function, method, and type operation are
// tried in that order.
func evalCall[T any](c *Call, ev Evaluator[T]) (T, error) {
	var zero T
	if c.Callee == nil || c.Args == nil {
		return zero, exprErrf("incomplete call")
	}
	env := ev.Environment()
	switch callee := c.Callee.(type) {
	case QName:
		q := names.QualifiedName(callee)
		if q.Namespace == "odata" {
			return evalClientCall(c, q.Name, ev)
		}
		if m, ok := c.Method(); ok && q.Namespace == "geo" {
			argv, err := EvaluateArgs(c.Args, ev)
			if err != nil {
				return zero, err
			}
			return evalMethod(m, argv, ev)
		}
		seg := names.Segment{QName: q}
		f, err := firstMember(ev, seg)
		if err == nil {
			restore := env.PushContext(&f)
			defer restore()
			return ev.MemberArgs(c.Args)
		}
		if !IsPathError(err) || env.Context() == nil {
			return zero, err
		}
		// no bound function in the current context; retry
		// once as an unbound function in the null context
		restoreNull := env.PushContext(nil)
		defer restoreNull()
		f, err = ev.FirstMember(seg)
		if err != nil {
			return zero, err
		}
		restore := env.PushContext(&f)
		defer restore()
		return ev.MemberArgs(c.Args)
	case Ident:
		id := string(callee)
		if (id == "any" && c.Args.IsAny()) || (id == "all" && c.Args.IsAll()) {
			return zero, exprErrf("any and all outside path")
		}
		if id == "cast" || id == "isof" {
			if typeArg, exprArg := c.Args.TypeArgs(); typeArg != nil {
				q, ok := typeArg.(QName)
				if ok {
					var value *T
					if exprArg != nil {
						v, err := Evaluate(exprArg, ev)
						if err != nil {
							return zero, err
						}
						value = &v
					}
					if id == "cast" {
						return ev.Cast(names.QualifiedName(q), value)
					}
					return ev.IsOf(names.QualifiedName(q), value)
				}
			}
		}
		if c.Args.IsKeyPredicate() {
			// navigation(key) beats the built-in method,
			// even if the argument shape mismatches
			coll, err := firstMember(ev, names.Segment{Name: id})
			if err == nil {
				restore := env.PushContext(&coll)
				defer restore()
				return ev.MemberArgs(c.Args)
			}
			if !IsPathError(err) {
				return zero, err
			}
		}
		m, ok := c.Method()
		if !ok {
			return zero, exprErrf("bad method %s", id)
		}
		argv, err := EvaluateArgs(c.Args, ev)
		if err != nil {
			return zero, err
		}
		return evalMethod(m, argv, ev)
	case *Call:
		// function(params)(key)
		coll, err := Evaluate(c.Callee, ev)
		if err != nil {
			return zero, err
		}
		restore := env.PushContext(&coll)
		defer restore()
		return ev.MemberArgs(c.Args)
	}
	return zero, exprErrf("%T is not callable", c.Callee)
}

// evalCallPath evaluates a call that appears as a path
// segment, where the ambiguity differs: any/all become
// lambda operations and everything else resolves through
// the current context.
func evalCallPath[T any](c *Call, ev Evaluator[T]) (T, error) {
	var zero T
	if c.Callee == nil || c.Args == nil {
		return zero, exprErrf("incomplete call")
	}
	env := ev.Environment()
	switch callee := c.Callee.(type) {
	case QName:
		// type_cast(key) or bound function(params)
		setOrF, err := ev.Member(names.Segment{QName: names.QualifiedName(callee)})
		if err != nil {
			return zero, err
		}
		restore := env.PushContext(&setOrF)
		defer restore()
		return ev.MemberArgs(c.Args)
	case Ident:
		id := string(callee)
		if id == "any" && c.Args.IsAny() {
			name, lambda := c.Args.LambdaArgs()
			return ev.MemberAny(name, lambda)
		}
		if id == "all" && c.Args.IsAll() {
			name, lambda := c.Args.LambdaArgs()
			return ev.MemberAll(name, lambda)
		}
		// no ambiguity, must be navigation(key)
		coll, err := ev.Member(names.Segment{Name: id})
		if err != nil {
			return zero, err
		}
		restore := env.PushContext(&coll)
		defer restore()
		return ev.MemberArgs(c.Args)
	case *Call:
		coll, err := evalCallPath(callee, ev)
		if err != nil {
			return zero, err
		}
		restore := env.PushContext(&coll)
		defer restore()
		return ev.MemberArgs(c.Args)
	}
	return zero, exprErrf("%T is not callable", c.Callee)
}

func evalIf[T any](n *If, ev Evaluator[T]) (T, error) {
	var zero T
	if n.Test == nil || n.Then == nil {
		return zero, exprErrf("incomplete conditional")
	}
	test, err := Evaluate(n.Test, ev)
	if err != nil {
		return zero, err
	}
	then, err := Evaluate(n.Then, ev)
	if err != nil {
		return zero, err
	}
	var els *T
	if n.Else != nil {
		v, err := Evaluate(n.Else, ev)
		if err != nil {
			return zero, err
		}
		els = &v
	}
	return ev.If(test, then, els)
}

func evalMethod[T any](m Method, args []T, ev Evaluator[T]) (T, error) {
	var zero T
	switch len(args) {
	case 0:
		switch m {
		case MethodMinDateTime:
			return ev.MinDateTime()
		case MethodMaxDateTime:
			return ev.MaxDateTime()
		case MethodNow:
			return ev.Now()
		}
	case 1:
		v := args[0]
		switch m {
		case MethodLength:
			return ev.Length(v)
		case MethodToLower:
			return ev.ToLower(v)
		case MethodToUpper:
			return ev.ToUpper(v)
		case MethodTrim:
			return ev.Trim(v)
		case MethodYear:
			return ev.Year(v)
		case MethodMonth:
			return ev.Month(v)
		case MethodDay:
			return ev.Day(v)
		case MethodHour:
			return ev.Hour(v)
		case MethodMinute:
			return ev.Minute(v)
		case MethodSecond:
			return ev.Second(v)
		case MethodFractionalSeconds:
			return ev.FractionalSeconds(v)
		case MethodTotalSeconds:
			return ev.TotalSeconds(v)
		case MethodDate:
			return ev.DateOf(v)
		case MethodTime:
			return ev.TimeOf(v)
		case MethodTotalOffsetMinutes:
			return ev.TotalOffsetMinutes(v)
		case MethodRound:
			return ev.Round(v)
		case MethodFloor:
			return ev.Floor(v)
		case MethodCeiling:
			return ev.Ceiling(v)
		case MethodGeoLength:
			return ev.GeoLength(v)
		}
	case 2:
		switch m {
		case MethodContains:
			return ev.Contains(args[0], args[1])
		case MethodStartsWith:
			return ev.StartsWith(args[0], args[1])
		case MethodEndsWith:
			return ev.EndsWith(args[0], args[1])
		case MethodIndexOf:
			return ev.IndexOf(args[0], args[1])
		case MethodConcat:
			return ev.Concat(args[0], args[1])
		case MethodGeoDistance:
			return ev.GeoDistance(args[0], args[1])
		case MethodGeoIntersects:
			return ev.GeoIntersects(args[0], args[1])
		case MethodSubstring:
			return ev.Substring(args[0], args[1], nil)
		}
	case 3:
		if m == MethodSubstring {
			return ev.Substring(args[0], args[1], &args[2])
		}
	}
	return zero, exprErrf("argument list incompatible with %s", m)
}

func evalClientCall[T any](c *Call, name string, ev Evaluator[T]) (T, error) {
	var zero T
	args := c.Args
	switch name {
	case "concat":
		if len(args.List) < 2 {
			return zero, exprErrf("odata.concat requires two or more arguments")
		}
		argv, err := EvaluateArgs(args, ev)
		if err != nil {
			return zero, err
		}
		return ev.ODataConcat(argv)
	case "fillUriTemplate":
		if len(args.List) == 0 {
			return zero, exprErrf("odata.fillUriTemplate requires at least one argument")
		}
		template, err := Evaluate(args.List[0], ev)
		if err != nil {
			return zero, err
		}
		return ev.ODataFillURITemplate(template, args.List[1:])
	case "uriEncode":
		if len(args.List) != 1 {
			return zero, exprErrf("odata.uriEncode requires exactly one argument")
		}
		v, err := Evaluate(args.List[0], ev)
		if err != nil {
			return zero, err
		}
		return ev.ODataURIEncode(v)
	case "cast", "isof":
		if len(args.List) != 2 {
			return zero, exprErrf("odata.%s requires two arguments", name)
		}
		value, err := Evaluate(args.List[0], ev)
		if err != nil {
			return zero, err
		}
		t, ok := args.List[1].(TypeExpr)
		if !ok {
			return zero, exprErrf("odata.%s(expression, type) expects a type object, not %T",
				name, args.List[1])
		}
		if name == "cast" {
			return ev.CastType(t.Def, value)
		}
		return ev.IsOfType(t.Def, value)
	}
	return zero, exprErrf("unknown client-side function odata.%s", name)
}
