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

package geo

import (
	"fmt"
	"testing"
)

func TestShapeText(t *testing.T) {
	square := Ring{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}
	hole := Ring{{1, 1}, {2, 1}, {2, 2}, {1, 2}, {1, 1}}
	cases := []struct {
		s    Shape
		want string
	}{
		{Point{1, 2}, "Point(1 2)"},
		{Point{-1.5, 2.25}, "Point(-1.5 2.25)"},
		{Point{1e21, 0}, "Point(1e+21 0)"},
		{LineString{{1, 1}, {2, 2}, {3, 3}}, "LineString(1 1,2 2,3 3)"},
		{
			Polygon{square},
			"Polygon((0 0,4 0,4 4,0 4,0 0))",
		},
		{
			Polygon{square, hole},
			"Polygon((0 0,4 0,4 4,0 4,0 0),(1 1,2 1,2 2,1 2,1 1))",
		},
		{MultiPoint{{1, 2}, {3, 4}}, "MultiPoint((1 2),(3 4))"},
		{MultiPoint{}, "MultiPoint()"},
		{
			MultiLineString{{{1, 1}, {2, 2}}, {{3, 3}, {4, 4}}},
			"MultiLineString((1 1,2 2),(3 3,4 4))",
		},
		{
			MultiPolygon{{square}, {hole}},
			"MultiPolygon(((0 0,4 0,4 4,0 4,0 0)),((1 1,2 1,2 2,1 2,1 1)))",
		},
		{
			Collection{Point{1, 2}, LineString{{0, 0}, {1, 1}}},
			"Collection(Point(1 2),LineString(0 0,1 1))",
		},
		{
			Collection{Collection{Point{9, 9}}},
			"Collection(Collection(Point(9 9)))",
		},
	}
	for i := range cases {
		c := &cases[i]
		if got := fmt.Sprint(c.s); got != c.want {
			t.Errorf("got %q, want %q", got, c.want)
		}
	}
}

func TestLiteralString(t *testing.T) {
	l := Literal{SRID: 4326, Shape: Point{1, 2}}
	if got := l.String(); got != "SRID=4326;Point(1 2)" {
		t.Errorf("got %q", got)
	}
	l = Literal{SRID: 0, Shape: MultiPoint{}}
	if got := l.String(); got != "SRID=0;MultiPoint()" {
		t.Errorf("got %q", got)
	}
}

func TestEqual(t *testing.T) {
	a := LineString{{1, 1}, {2, 2}}
	b := LineString{{1, 1}, {2, 2}}
	if !Equal(a, b) {
		t.Error("identical shapes compared unequal")
	}
	if Equal(a, LineString{{1, 1}, {2, 3}}) {
		t.Error("different positions compared equal")
	}
	if Equal(Point{1, 1}, MultiPoint{{1, 1}}) {
		t.Error("different kinds compared equal")
	}
	if Equal(a, nil) || Equal(nil, b) {
		t.Error("nil compared equal to a shape")
	}
	if !Equal(nil, nil) {
		t.Error("nil shapes compared unequal")
	}
}
