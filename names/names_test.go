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

package names

import "testing"

func TestParseQualifiedName(t *testing.T) {
	good := []struct {
		in   string
		want QualifiedName
	}{
		{"Edm.String", QualifiedName{Namespace: "Edm", Name: "String"}},
		{"Sales.Pattern", QualifiedName{Namespace: "Sales", Name: "Pattern"}},
		{"A.B.C", QualifiedName{Namespace: "A.B", Name: "C"}},
		{"_ns._name", QualifiedName{Namespace: "_ns", Name: "_name"}},
		{"n1.n2", QualifiedName{Namespace: "n1", Name: "n2"}},
	}
	for i := range good {
		c := &good[i]
		got, err := ParseQualifiedName(c.in)
		if err != nil {
			t.Errorf("%q: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("%q: got %v, want %v", c.in, got, c.want)
		}
		if got.String() != c.in {
			t.Errorf("%q: round trip gave %q", c.in, got.String())
		}
	}

	bad := []string{
		"",
		"String",
		".String",
		"Edm.",
		"Edm..String",
		"1ns.Name",
		"Edm.9Name",
		"Edm.Str ing",
	}
	for _, s := range bad {
		if got, err := ParseQualifiedName(s); err == nil {
			t.Errorf("%q: accepted as %v", s, got)
		}
	}
}

func TestIsIdentifier(t *testing.T) {
	good := []string{"a", "A", "_", "_x9", "camelCase", "UPPER", "a1"}
	for _, s := range good {
		if !IsIdentifier(s) {
			t.Errorf("%q rejected", s)
		}
	}
	bad := []string{"", "9a", "a-b", "a.b", "a b", "naïve", "@x", "$it"}
	for _, s := range bad {
		if IsIdentifier(s) {
			t.Errorf("%q accepted", s)
		}
	}
}

func TestSegment(t *testing.T) {
	plain := Segment{Name: "Price"}
	if plain.Qualified() {
		t.Error("plain segment reported qualified")
	}
	if plain.String() != "Price" {
		t.Errorf("got %q", plain.String())
	}
	cast := Segment{QName: QualifiedName{Namespace: "Sales", Name: "Premium"}}
	if !cast.Qualified() {
		t.Error("qualified segment reported plain")
	}
	if cast.String() != "Sales.Premium" {
		t.Errorf("got %q", cast.String())
	}
}

func TestPath(t *testing.T) {
	p := Path{
		{Name: "Product"},
		{QName: QualifiedName{Namespace: "Sales", Name: "Premium"}},
		{Name: "Rating"},
	}
	if got := p.String(); got != "Product/Sales.Premium/Rating" {
		t.Errorf("got %q", got)
	}
	if !p.Equal(Path{p[0], p[1], p[2]}) {
		t.Error("equal paths differ")
	}
	if p.Equal(p[:2]) {
		t.Error("prefix compared equal")
	}
	if p.Equal(Path{p[0], p[2], p[1]}) {
		t.Error("reordered path compared equal")
	}
	var empty Path
	if empty.String() != "" || !empty.Equal(nil) {
		t.Error("empty path misbehaves")
	}
}

func TestEnumLiteral(t *testing.T) {
	named := EnumLiteral{
		Type: QualifiedName{Namespace: "Sales", Name: "Pattern"},
		Values: []EnumValue{
			{Name: "Red"},
			{Name: "Striped"},
		},
	}
	if got := named.String(); got != "Sales.Pattern'Red,Striped'" {
		t.Errorf("got %q", got)
	}
	numeric := EnumLiteral{
		Type:   QualifiedName{Namespace: "Sales", Name: "Pattern"},
		Values: []EnumValue{{Value: 1}, {Value: 4}},
	}
	if got := numeric.String(); got != "Sales.Pattern'1,4'" {
		t.Errorf("got %q", got)
	}
	if !named.Equal(named) {
		t.Error("literal not equal to itself")
	}
	if named.Equal(numeric) {
		t.Error("named and numeric literals compared equal")
	}
	short := named
	short.Values = named.Values[:1]
	if named.Equal(short) {
		t.Error("different member counts compared equal")
	}
	other := EnumLiteral{
		Type:   QualifiedName{Namespace: "Inventory", Name: "Pattern"},
		Values: named.Values,
	}
	if named.Equal(other) {
		t.Error("different types compared equal")
	}
}
