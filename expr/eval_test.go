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

package expr_test

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/odatakit/odex/expr"
	"github.com/odatakit/odex/expr/parser"
	"github.com/odatakit/odex/names"
)

type entity = map[string]any
type keyed = map[int64]any

// mapEval evaluates filters against nested maps: string
// keys are properties, int64-keyed maps are collections
// addressable by key predicate, and []any slices are the
// collections any/all/$count operate on.
type mapEval struct {
	expr.Env[any]
	expr.Unsupported[any]
}

func (m *mapEval) Null() (any, error)                      { return nil, nil }
func (m *mapEval) Boolean(v bool) (any, error)             { return v, nil }
func (m *mapEval) Int64(v int64) (any, error)              { return v, nil }
func (m *mapEval) String(v string) (any, error)            { return v, nil }
func (m *mapEval) Double(v float64, _ string) (any, error) { return v, nil }
func (m *mapEval) Guid(v uuid.UUID) (any, error)           { return v, nil }

func (m *mapEval) Decimal(v *big.Rat, _ string) (any, error) {
	f, _ := v.Float64()
	return f, nil
}

func (m *mapEval) Enum(v names.EnumLiteral) (any, error) { return v, nil }

func (m *mapEval) ImplicitVariable() (any, error) {
	if p := m.It(); p != nil {
		return *p, nil
	}
	return nil, nil
}

func (m *mapEval) Parameter(name string) (any, error) {
	return expr.ParameterValue[any](name, m)
}

func (m *mapEval) lookup(ctx *any, seg names.Segment) (any, error) {
	if seg.Qualified() || ctx == nil {
		return nil, expr.NoMember(seg)
	}
	e, ok := (*ctx).(entity)
	if !ok {
		return nil, expr.NoMember(seg)
	}
	v, ok := e[seg.Name]
	if !ok {
		return nil, expr.NoMember(seg)
	}
	return v, nil
}

// FirstMember falls back from the lambda-cleared context
// to the implicit variable, so unqualified names inside
// a lambda still see the outer entity.
func (m *mapEval) FirstMember(seg names.Segment) (any, error) {
	ctx := m.Context()
	if ctx == nil {
		ctx = m.It()
	}
	return m.lookup(ctx, seg)
}

func (m *mapEval) Member(seg names.Segment) (any, error) {
	return m.lookup(m.Context(), seg)
}

func (m *mapEval) MemberArgs(args *expr.Args) (any, error) {
	ctx := m.Context()
	if ctx == nil {
		return nil, errors.New("no context for key access")
	}
	coll, ok := (*ctx).(keyed)
	if !ok {
		return nil, errors.New("context is not addressable by key")
	}
	if !args.IsKeyPredicate() {
		return nil, errors.New("expected a key predicate")
	}
	_, restore := m.PushScope()
	defer restore()
	argv, err := expr.EvaluateArgs[any](args, m)
	if err != nil {
		return nil, err
	}
	key, ok := argv[0].(int64)
	if !ok {
		return nil, errors.New("key is not an integer")
	}
	v, ok := coll[key]
	if !ok {
		return nil, fmt.Errorf("no entry with key %d", key)
	}
	return v, nil
}

func (m *mapEval) items() ([]any, error) {
	ctx := m.Context()
	if ctx == nil {
		return nil, errors.New("no context for collection operation")
	}
	items, ok := (*ctx).([]any)
	if !ok {
		return nil, errors.New("context is not a collection")
	}
	return items, nil
}

func (m *mapEval) MemberCount() (any, error) {
	items, err := m.items()
	if err != nil {
		return nil, err
	}
	return int64(len(items)), nil
}

func (m *mapEval) applyLambda(name string, item *any, lambda expr.Node) (bool, error) {
	restore := m.PushLambda(name, item)
	defer restore()
	v, err := expr.Evaluate[any](lambda, m)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, errors.New("lambda predicate is not boolean")
	}
	return b, nil
}

func (m *mapEval) MemberAny(name string, lambda expr.Node) (any, error) {
	items, err := m.items()
	if err != nil {
		return nil, err
	}
	if name == "" {
		return len(items) > 0, nil
	}
	for i := range items {
		ok, err := m.applyLambda(name, &items[i], lambda)
		if err != nil {
			return nil, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (m *mapEval) MemberAll(name string, lambda expr.Node) (any, error) {
	items, err := m.items()
	if err != nil {
		return nil, err
	}
	for i := range items {
		ok, err := m.applyLambda(name, &items[i], lambda)
		if err != nil {
			return nil, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (m *mapEval) Bind(name string, value any) (any, error) {
	if s := m.Scope(); s != nil {
		s[name] = value
	}
	return value, nil
}

func asBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%T is not a boolean", v)
	}
	return b, nil
}

func (m *mapEval) And(a, b any) (any, error) {
	x, err := asBool(a)
	if err != nil {
		return nil, err
	}
	y, err := asBool(b)
	if err != nil {
		return nil, err
	}
	return x && y, nil
}

func (m *mapEval) Or(a, b any) (any, error) {
	x, err := asBool(a)
	if err != nil {
		return nil, err
	}
	y, err := asBool(b)
	if err != nil {
		return nil, err
	}
	return x || y, nil
}

func (m *mapEval) Not(v any) (any, error) {
	b, err := asBool(v)
	if err != nil {
		return nil, err
	}
	return !b, nil
}

func num(v any) (float64, bool) {
	switch v := v.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if x, ok := num(a); ok {
		y, ok := num(b)
		return ok && x == y
	}
	return a == b
}

func (m *mapEval) Eq(a, b any) (any, error) { return equalValues(a, b), nil }
func (m *mapEval) Ne(a, b any) (any, error) { return !equalValues(a, b), nil }

func compareNums(a, b any) (float64, float64, error) {
	x, ok := num(a)
	if !ok {
		return 0, 0, fmt.Errorf("%T is not numeric", a)
	}
	y, ok := num(b)
	if !ok {
		return 0, 0, fmt.Errorf("%T is not numeric", b)
	}
	return x, y, nil
}

func (m *mapEval) Lt(a, b any) (any, error) {
	x, y, err := compareNums(a, b)
	if err != nil {
		return nil, err
	}
	return x < y, nil
}

func (m *mapEval) Le(a, b any) (any, error) {
	x, y, err := compareNums(a, b)
	if err != nil {
		return nil, err
	}
	return x <= y, nil
}

func (m *mapEval) Gt(a, b any) (any, error) {
	x, y, err := compareNums(a, b)
	if err != nil {
		return nil, err
	}
	return x > y, nil
}

func (m *mapEval) Ge(a, b any) (any, error) {
	x, y, err := compareNums(a, b)
	if err != nil {
		return nil, err
	}
	return x >= y, nil
}

func (m *mapEval) Has(a, b any) (any, error) {
	set, ok := a.(names.EnumLiteral)
	if !ok {
		return nil, fmt.Errorf("%T is not an enum value", a)
	}
	flags, ok := b.(names.EnumLiteral)
	if !ok {
		return nil, fmt.Errorf("%T is not an enum literal", b)
	}
	for _, f := range flags.Values {
		found := false
		for _, v := range set.Values {
			if v.Name == f.Name && v.Value == f.Value {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	return true, nil
}

func arith(a, b any, ints func(int64, int64) int64, floats func(float64, float64) float64) (any, error) {
	if x, ok := a.(int64); ok {
		if y, ok := b.(int64); ok {
			return ints(x, y), nil
		}
	}
	x, y, err := compareNums(a, b)
	if err != nil {
		return nil, err
	}
	return floats(x, y), nil
}

func (m *mapEval) Add(a, b any) (any, error) {
	return arith(a, b,
		func(x, y int64) int64 { return x + y },
		func(x, y float64) float64 { return x + y })
}

func (m *mapEval) Sub(a, b any) (any, error) {
	return arith(a, b,
		func(x, y int64) int64 { return x - y },
		func(x, y float64) float64 { return x - y })
}

func (m *mapEval) Mul(a, b any) (any, error) {
	return arith(a, b,
		func(x, y int64) int64 { return x * y },
		func(x, y float64) float64 { return x * y })
}

func (m *mapEval) Div(a, b any) (any, error) {
	x, y, err := compareNums(a, b)
	if err != nil {
		return nil, err
	}
	if y == 0 {
		return nil, errors.New("division by zero")
	}
	return x / y, nil
}

func (m *mapEval) Mod(a, b any) (any, error) {
	x, ok := a.(int64)
	if !ok {
		return nil, fmt.Errorf("%T is not an integer", a)
	}
	y, ok := b.(int64)
	if !ok || y == 0 {
		return nil, fmt.Errorf("bad modulus %v", b)
	}
	return x % y, nil
}

func (m *mapEval) Negate(v any) (any, error) {
	switch v := v.(type) {
	case int64:
		return -v, nil
	case float64:
		return -v, nil
	}
	return nil, fmt.Errorf("%T is not numeric", v)
}

func str(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%T is not a string", v)
	}
	return s, nil
}

func (m *mapEval) Length(v any) (any, error) {
	s, err := str(v)
	if err != nil {
		return nil, err
	}
	return int64(len([]rune(s))), nil
}

func (m *mapEval) ToUpper(v any) (any, error) {
	s, err := str(v)
	if err != nil {
		return nil, err
	}
	return strings.ToUpper(s), nil
}

func strPair(a, b any) (string, string, error) {
	x, err := str(a)
	if err != nil {
		return "", "", err
	}
	y, err := str(b)
	return x, y, err
}

func (m *mapEval) Contains(a, b any) (any, error) {
	x, y, err := strPair(a, b)
	if err != nil {
		return nil, err
	}
	return strings.Contains(x, y), nil
}

func (m *mapEval) StartsWith(a, b any) (any, error) {
	x, y, err := strPair(a, b)
	if err != nil {
		return nil, err
	}
	return strings.HasPrefix(x, y), nil
}

func (m *mapEval) EndsWith(a, b any) (any, error) {
	x, y, err := strPair(a, b)
	if err != nil {
		return nil, err
	}
	return strings.HasSuffix(x, y), nil
}

func (m *mapEval) IndexOf(a, b any) (any, error) {
	x, y, err := strPair(a, b)
	if err != nil {
		return nil, err
	}
	return int64(strings.Index(x, y)), nil
}

func (m *mapEval) Concat(a, b any) (any, error) {
	x, y, err := strPair(a, b)
	if err != nil {
		return nil, err
	}
	return x + y, nil
}

func (m *mapEval) Substring(a, b any, c *any) (any, error) {
	s, err := str(a)
	if err != nil {
		return nil, err
	}
	i, ok := b.(int64)
	if !ok || i < 0 || i > int64(len(s)) {
		return nil, fmt.Errorf("bad substring offset %v", b)
	}
	if c == nil {
		return s[i:], nil
	}
	n, ok := (*c).(int64)
	if !ok || n < 0 || i+n > int64(len(s)) {
		return nil, fmt.Errorf("bad substring length %v", *c)
	}
	return s[i : i+n], nil
}

func patternStyle(members ...string) names.EnumLiteral {
	lit := names.EnumLiteral{
		Type: names.QualifiedName{Namespace: "Sales", Name: "Pattern"},
	}
	for _, m := range members {
		lit.Values = append(lit.Values, names.EnumValue{Name: m})
	}
	return lit
}

func testEntity() any {
	return entity{
		"Name":   "Milk",
		"Price":  int64(4),
		"Age":    int64(0),
		"Flag":   true,
		"Rating": 3.25,
		"ID":     uuid.UUID{15: 0x2A},
		"style":  patternStyle("Yellow", "Red"),
		"Addr":   entity{"City": "Hamburg", "Zip": "20095"},
		"Friends": []any{
			entity{"Name": "Milk", "Age": int64(30)},
			entity{"Name": "Ada", "Age": int64(25)},
		},
		"Items": keyed{
			1: entity{"Name": "first"},
			5: entity{"Name": "fifth"},
		},
	}
}

func evalAgainst(t *testing.T, src string, it any) (any, error) {
	t.Helper()
	n, err := parser.ParseCommon(src)
	if err != nil {
		t.Fatalf("%q: parse: %v", src, err)
	}
	m := new(mapEval)
	m.Reset(&it)
	return expr.Evaluate[any](n, m)
}

func TestEvaluateFilter(t *testing.T) {
	cases := []struct {
		src  string
		want any
	}{
		{"Name eq 'Milk'", true},
		{"Name ne 'Milk'", false},
		{"Price add 1 eq 5", true},
		{"1 add 2 mul 3", int64(7)},
		{"(1 add 2) mul 3", int64(9)},
		{"6 sub 2 sub 1", int64(3)},
		{"10 div 4", 2.5},
		{"7 mod 3", int64(1)},
		{"-Price", int64(-4)},
		{"Price gt 3 and Price lt 5", true},
		{"Price gt 10 or Flag", true},
		{"not (Price gt 10)", true},
		{"Addr/City eq 'Hamburg'", true},
		{"Friends/any()", true},
		{"Friends/any(f:f/Name eq Name)", true},
		{"Friends/any(f:f/Age lt 21)", false},
		{"Friends/all(f:f/Age ge 21)", true},
		{"Friends/$count", int64(2)},
		{"Friends/$count eq 2", true},
		{"Items(5)/Name", "fifth"},
		{"Items(ID=1)/Name", "first"},
		{"length(Name)", int64(4)},
		{"length(Name) eq 4", true},
		{"contains(Name,'il')", true},
		{"startswith(Name,'Mi')", true},
		{"endswith(Name,'lk')", true},
		{"indexof(Name,'lk')", int64(2)},
		{"toupper(Name)", "MILK"},
		{"concat(Name,'!')", "Milk!"},
		{"substring(Name,1)", "ilk"},
		{"substring(Name,1,2)", "il"},
		{"Rating gt 3.1", true},
		{"Rating lt 3", false},
		{"INF gt 100", true},
		{"-INF lt 0", true},
		{"null eq null", true},
		{"Flag eq true", true},
		{"false or Flag", true},
		{"$it/Name eq Name", true},
		{"style has Sales.Pattern'Yellow'", true},
		{"style has Sales.Pattern'Blue'", false},
		{"style has Sales.Pattern'Yellow,Red'", true},
		{"ID eq 00000000-0000-0000-0000-00000000002A", true},
	}
	for i := range cases {
		c := &cases[i]
		got, err := evalAgainst(t, c.src, testEntity())
		if err != nil {
			t.Errorf("%q: %v", c.src, err)
			continue
		}
		if !equalValues(got, c.want) {
			t.Errorf("%q: got %v (%T), want %v", c.src, got, got, c.want)
		}
	}
}

// A navigation property named like a built-in method
// wins over the method; the method only applies when no
// such property resolves.
func TestNavigationBeatsMethod(t *testing.T) {
	it := entity{
		"length": keyed{1: "first"},
		"Name":   "ab",
	}
	got, err := evalAgainst(t, "length(1)", any(it))
	if err != nil {
		t.Fatal(err)
	}
	if got != "first" {
		t.Errorf("got %v, want the keyed entry", got)
	}
	got, err = evalAgainst(t, "length('ab')", any(entity{"Name": "ab"}))
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(2) {
		t.Errorf("got %v, want the method result", got)
	}
}

// Operands evaluate left to right and nothing
// short-circuits: a false left operand of and does not
// suppress errors from the right.
func TestNoShortCircuit(t *testing.T) {
	_, err := evalAgainst(t, "Price eq 0 and Missing eq 1", testEntity())
	if err == nil {
		t.Fatal("missing property did not fail")
	}
	if !expr.IsPathError(err) {
		t.Errorf("got %v, want a path error", err)
	}
}

// A property hides a reserved word of the same spelling.
func TestPropertyHidesReservedWord(t *testing.T) {
	it := entity{"null": "x", "INF": int64(7)}
	got, err := evalAgainst(t, "null eq 'x'", any(it))
	if err != nil {
		t.Fatal(err)
	}
	if got != true {
		t.Error("property did not hide the reserved word")
	}
	got, err = evalAgainst(t, "INF", any(it))
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(7) {
		t.Errorf("got %v, want the property value", got)
	}
}

func TestParameterAlias(t *testing.T) {
	n, err := parser.ParseCommon("@tag eq 'big'")
	if err != nil {
		t.Fatal(err)
	}
	it := testEntity()
	m := new(mapEval)
	m.Reset(&it)
	m.DeclareParameter("tag", expr.String("big"))
	got, err := expr.Evaluate[any](n, m)
	if err != nil {
		t.Fatal(err)
	}
	if got != true {
		t.Errorf("got %v", got)
	}

	// declarations survive Reset
	m.Reset(&it)
	got, err = evalNode(t, m, "@tag")
	if err != nil {
		t.Fatal(err)
	}
	if got != "big" {
		t.Errorf("got %v after reset", got)
	}

	// an undeclared parameter evaluates as null
	got, err = evalNode(t, m, "@missing eq null")
	if err != nil {
		t.Fatal(err)
	}
	if got != true {
		t.Errorf("got %v for undeclared parameter", got)
	}
}

func evalNode(t *testing.T, m *mapEval, src string) (any, error) {
	t.Helper()
	n, err := parser.ParseCommon(src)
	if err != nil {
		t.Fatalf("%q: parse: %v", src, err)
	}
	return expr.Evaluate[any](n, m)
}

func TestEnvState(t *testing.T) {
	env := new(expr.Env[int])
	x := 1
	env.Reset(&x)
	if env.It() != &x || env.Context() != &x {
		t.Fatal("reset did not seed the context")
	}

	y := 2
	restore := env.PushContext(&y)
	if env.Context() != &y {
		t.Fatal("push did not switch the context")
	}
	restore()
	if env.Context() != &x {
		t.Fatal("restore did not pop the context")
	}

	a, b := 10, 20
	outer := env.PushLambda("f", &a)
	if env.Context() != nil {
		t.Error("lambda did not clear the ambient context")
	}
	if env.LambdaContext("f") != &a {
		t.Error("lambda variable not bound")
	}
	inner := env.PushLambda("f", &b)
	if env.LambdaContext("f") != &b {
		t.Error("innermost binding should win")
	}
	inner()
	if env.LambdaContext("f") != &a {
		t.Error("inner restore did not unbind")
	}
	outer()
	if env.LambdaContext("f") != nil || env.Context() != &x {
		t.Error("outer restore did not unbind")
	}

	scope, closeScope := env.PushScope()
	if env.Scope() == nil {
		t.Fatal("no scope after push")
	}
	scope["k"] = 42
	if env.Scope()["k"] != 42 {
		t.Error("scope map is not live")
	}
	closeScope()
	if env.Scope() != nil {
		t.Error("scope survived restore")
	}
}

// Operations the backend does not override fail with an
// UnsupportedError rather than a silent zero value.
func TestUnsupportedOperation(t *testing.T) {
	it := testEntity()
	m := new(mapEval)
	m.Reset(&it)
	n := expr.PathExpr{Path: names.Path{{Name: "Supplier"}}}
	_, err := expr.Evaluate[any](n, m)
	if err == nil {
		t.Fatal("expected an error")
	}
	var ue *expr.UnsupportedError
	if !errors.As(err, &ue) {
		t.Fatalf("got %v, want an unsupported-operation error", err)
	}
}
