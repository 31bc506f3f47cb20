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

package parser

import (
	"testing"

	"github.com/odatakit/odex/expr"
)

// TestRoundTrip parses an expression, formats it, and
// checks the result; then it parses the formatted text
// again and checks formatting is idempotent. Redundant
// parentheses and whitespace disappear on the first pass
// and never reappear.
func TestRoundTrip(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1 add 2 mul 3", "1 add 2 mul 3"},
		{"(1 add 2) mul 3", "(1 add 2) mul 3"},
		{"1 add (2 mul 3)", "1 add 2 mul 3"},
		{"((Name))", "Name"},
		{"1  add   2", "1 add 2"},
		{"2 add 2 sub 1", "2 add 2 sub 1"},
		{"Name eq 'Bob'", "Name eq 'Bob'"},
		{"( Name ) ne 'Bob'", "Name ne 'Bob'"},
		{"not Closed", "not Closed"},
		{"not (Closed or Expired)", "not (Closed or Expired)"},
		{"A and B or C", "A and B or C"},
		{"A and (B or C)", "A and (B or C)"},
		{"-Price", "-Price"},
		{"- Price", "-Price"},
		{"Price gt -5", "Price gt -5"},
		{"Price mul Quantity ge 100", "Price mul Quantity ge 100"},
		{"A/B/C", "A/B/C"},
		{"$it/Name", "$it/Name"},
		{"$root/Products(2)/Name", "$root/Products(2)/Name"},
		{"$root/Products(ID=2)", "$root/Products(ID=2)"},
		{"Items(5)", "Items(5)"},
		{"Orders/$count", "Orders/$count"},
		{"Orders/$count eq 0", "Orders/$count eq 0"},
		{"Friends/any()", "Friends/any()"},
		{"Friends/any(f:f/Name eq Name)", "Friends/any(f:f/Name eq Name)"},
		{"Friends/any(f: f/Name eq 'Bob')", "Friends/any(f:f/Name eq 'Bob')"},
		{"Friends/all(f:f/Age ge 21)", "Friends/all(f:f/Age ge 21)"},
		{"Addresses/any(a:endswith(a/City,'burg'))", "Addresses/any(a:endswith(a/City,'burg'))"},
		{"style has Sales.Pattern'Yellow'", "style has Sales.Pattern'Yellow'"},
		{"contains(Name,'bb')", "contains(Name,'bb')"},
		{"concat(concat(City,', '),Country)", "concat(concat(City,', '),Country)"},
		{"substring(Name,1,2) eq 'ob'", "substring(Name,1,2) eq 'ob'"},
		{"length(Name) le 10", "length(Name) le 10"},
		{"now()", "now()"},
		{"year(BirthDate) lt 1990", "year(BirthDate) lt 1990"},
		{"geo.distance(Home,Office) lt 10.0", "geo.distance(Home,Office) lt 10.0"},
		{"cast(Edm.String)", "cast(Edm.String)"},
		{"isof(NorthwindModel.Order)", "isof(NorthwindModel.Order)"},
		{"isof(Ship,NorthwindModel.BigShip)", "isof(Ship,NorthwindModel.BigShip)"},
		{"Sales.SampleFunction(amount=42)", "Sales.SampleFunction(amount=42)"},
		{"Sales.Top10(region=1)(3)", "Sales.Top10(region=1)(3)"},
		{"Product/Sales.Premium/Rating", "Product/Sales.Premium/Rating"},
		{"@tag eq 'big'", "@tag eq 'big'"},
		{"[1,2,3]", "[1,2,3]"},
		{`["a","b"]`, `["a","b"]`},
		{`{"Name":"Bob","Age":21}`, `{"Name":"Bob","Age":21}`},
		{"Total eq 3.14e8", "Total eq 3.14e8"},
		{"Value eq -INF", "Value eq -INF"},
		{"ID eq 00000000-0000-0000-0000-00000000002A", "ID eq 00000000-0000-0000-0000-00000000002A"},
		{"Span gt duration'-P3DT1H4M1.5S'", "Span gt duration'-P3DT1H4M1.5S'"},
	}
	for i := range cases {
		in, want := cases[i].in, cases[i].want
		n, err := ParseCommon(in)
		if err != nil {
			t.Errorf("%q: %v", in, err)
			continue
		}
		got, err := expr.Format(n)
		if err != nil {
			t.Errorf("%q: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("%q: formatted as %q, want %q", in, got, want)
			continue
		}
		n2, err := ParseCommon(got)
		if err != nil {
			t.Errorf("%q: reparse: %v", got, err)
			continue
		}
		got2, err := expr.Format(n2)
		if err != nil {
			t.Errorf("%q: reformat: %v", got, err)
			continue
		}
		if got2 != got {
			t.Errorf("%q: reformatted as %q", got, got2)
		}
	}
}

func TestParseCommonErrors(t *testing.T) {
	bad := []string{
		"",
		"1 add",
		"add 1",
		"(1 add 2",
		"Name eq",
		"Name eq 'unterminated",
		"a//b",
		"$fit",
		"@",
		"any(x:x)",       // lambda outside a path
		"x:x",            // ditto
		"f(x=1",          // unterminated arguments
		"[1,2",           // unterminated collection
		`{"Name":}`,      // missing value
		`{"9bad":1}`,     // not an identifier
		"1 eq 2 and 3",   // and over a non-boolean operand
	}
	for _, in := range bad {
		if got, err := ParseCommon(in); err == nil {
			s, _ := expr.Format(got)
			t.Errorf("%q: accepted as %q", in, s)
		}
	}
}

// TestPathShape checks the rotated shape of a parsed
// member chain: the chain is right-associative with the
// first segment on the left of the outermost node.
func TestPathShape(t *testing.T) {
	n, err := ParseCommon("a/b/c")
	if err != nil {
		t.Fatal(err)
	}
	m, ok := n.(*expr.Member)
	if !ok {
		t.Fatalf("got %T", n)
	}
	if !m.Left().Equals(expr.Ident("a")) {
		t.Errorf("left is %#v", m.Left())
	}
	inner, ok := m.Right().(*expr.Member)
	if !ok {
		t.Fatalf("right is %T", m.Right())
	}
	if !inner.Left().Equals(expr.Ident("b")) {
		t.Errorf("inner left is %#v", inner.Left())
	}
	if !inner.Right().Equals(expr.Ident("c")) {
		t.Errorf("inner right is %#v", inner.Right())
	}
}

func TestPrecedenceShape(t *testing.T) {
	// mul binds tighter than add, equal precedence binds
	// left
	n, err := ParseCommon("1 add 2 mul 3")
	if err != nil {
		t.Fatal(err)
	}
	want := expr.Arith(expr.OpAdd,
		expr.Int64(1),
		expr.Arith(expr.OpMul, expr.Int64(2), expr.Int64(3)))
	if !n.Equals(want) {
		t.Errorf("got %#v", n)
	}
	n, err = ParseCommon("6 sub 2 sub 1")
	if err != nil {
		t.Fatal(err)
	}
	want = expr.Arith(expr.OpSub,
		expr.Arith(expr.OpSub, expr.Int64(6), expr.Int64(2)),
		expr.Int64(1))
	if !n.Equals(want) {
		t.Errorf("got %#v", n)
	}
}

func TestNotAsPropertyName(t *testing.T) {
	// "not" with no operand following is a property name
	n, err := ParseCommon("not")
	if err != nil {
		t.Fatal(err)
	}
	if !n.Equals(expr.Ident("not")) {
		t.Errorf("got %#v", n)
	}
	// with an operand it is the operator
	n, err = ParseCommon("not Closed")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := n.(*expr.Not); !ok {
		t.Errorf("got %T", n)
	}
}

func TestParseBoolCommon(t *testing.T) {
	if _, err := ParseBoolCommon("Name eq 'Bob'"); err != nil {
		t.Error(err)
	}
	if _, err := ParseBoolCommon("Enabled"); err != nil {
		t.Error(err)
	}
	if _, err := ParseBoolCommon("1 add 2"); err == nil {
		t.Error("1 add 2 accepted as boolean")
	}
}

func TestParseChecked(t *testing.T) {
	if _, err := ParseFirstMember("Addr/City"); err != nil {
		t.Error(err)
	}
	if _, err := ParseFirstMember("42"); err == nil {
		t.Error("42 accepted as first member")
	}
	if _, err := ParseRoot("$root/Products(2)"); err != nil {
		t.Error(err)
	}
	if _, err := ParseRoot("Products"); err == nil {
		t.Error("Products accepted as root expression")
	}
	if _, err := ParseFunction("Sales.Fn(x=1)"); err != nil {
		t.Error(err)
	}
	if _, err := ParseFunction("length(Name)"); err == nil {
		t.Error("length(Name) accepted as function expression")
	}
}
