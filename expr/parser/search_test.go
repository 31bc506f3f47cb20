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

func TestSearchRoundTrip(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"bike", "bike"},
		{`"mountain bike"`, `"mountain bike"`},
		{"bike AND mountain", "bike AND mountain"},
		{"a   AND   b", "a AND b"},
		{"a OR b AND c", "a OR b AND c"},
		{"a AND b OR c", "a AND b OR c"},
		{"(a OR b) AND c", "(a OR b) AND c"},
		{"a AND (b OR c)", "a AND (b OR c)"},
		{"NOT clothing", "NOT clothing"},
		{"NOT (a OR b)", "NOT (a OR b)"},
		{"bike AND NOT clothing", "bike AND NOT clothing"},
		{`"red bike" OR green`, `"red bike" OR green`},
		// a word may merely begin with a keyword spelling
		{"ANDroid OR iOS", "ANDroid OR iOS"},
		{"velo AND NOTizen", "velo AND NOTizen"},
	}
	for i := range cases {
		in, want := cases[i].in, cases[i].want
		n, err := ParseSearch(in)
		if err != nil {
			t.Errorf("%q: %v", in, err)
			continue
		}
		got, err := expr.FormatSearch(n)
		if err != nil {
			t.Errorf("%q: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("%q: formatted as %q, want %q", in, got, want)
			continue
		}
		n2, err := ParseSearch(got)
		if err != nil {
			t.Errorf("%q: reparse: %v", got, err)
			continue
		}
		got2, err := expr.FormatSearch(n2)
		if err != nil {
			t.Errorf("%q: reformat: %v", got, err)
			continue
		}
		if got2 != got {
			t.Errorf("%q: reformatted as %q", got, got2)
		}
	}
}

func TestSearchShape(t *testing.T) {
	// AND binds tighter than OR
	n, err := ParseSearch("a OR b AND c")
	if err != nil {
		t.Fatal(err)
	}
	or, ok := n.(*expr.SearchOr)
	if !ok {
		t.Fatalf("got %T", n)
	}
	if !or.Left.Equals(expr.Word("a")) {
		t.Errorf("left is %#v", or.Left)
	}
	if _, ok := or.Right.(*expr.SearchAnd); !ok {
		t.Errorf("right is %T", or.Right)
	}
}

func TestSearchErrors(t *testing.T) {
	bad := []string{
		"",
		"AND",
		"a AND",
		"AND b",
		"a NOT b", // no implicit AND
		"a b",     // ditto
		"NOT",
		`"unterminated`,
		`""`,      // empty phrase
		`"a&b"`,   // ampersand means a mis-split query
		"(a OR b", // unterminated group
		"cats&dogs",
	}
	for _, in := range bad {
		if got, err := ParseSearch(in); err == nil {
			s, _ := expr.FormatSearch(got)
			t.Errorf("%q: accepted as %q", in, s)
		}
	}
}
