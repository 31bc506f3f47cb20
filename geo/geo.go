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

// Package geo implements the geospatial literal shapes.
//
// A position is an ordered pair of coordinates with no
// interpretation attached: whether the first coordinate
// is longitude or latitude is the caller's concern.
package geo

import (
	"strconv"
	"strings"
)

// Shape is a geospatial value: a point, line string,
// polygon, one of their multi-part variants, or a
// heterogeneous collection.
type Shape interface {
	// append the well-known-text form of the shape
	text(dst *strings.Builder)
	shape()
}

func text(s Shape) string {
	var sb strings.Builder
	s.text(&sb)
	return sb.String()
}

func position(dst *strings.Builder, p Point) {
	dst.WriteString(strconv.FormatFloat(p.X, 'g', -1, 64))
	dst.WriteByte(' ')
	dst.WriteString(strconv.FormatFloat(p.Y, 'g', -1, 64))
}

// Point is a single position.
type Point struct {
	X, Y float64
}

func (p Point) shape() {}

func (p Point) text(dst *strings.Builder) {
	dst.WriteString("Point(")
	position(dst, p)
	dst.WriteByte(')')
}

func (p Point) String() string { return text(p) }

// LineString is a connected sequence of two or more
// positions.
type LineString []Point

func (l LineString) shape() {}

func (l LineString) text(dst *strings.Builder) {
	dst.WriteString("LineString")
	positions(dst, l)
}

func (l LineString) String() string { return text(l) }

func positions(dst *strings.Builder, pts []Point) {
	dst.WriteByte('(')
	for i := range pts {
		if i > 0 {
			dst.WriteByte(',')
		}
		position(dst, pts[i])
	}
	dst.WriteByte(')')
}

// Ring is a closed boundary of a polygon: the final
// position repeats the first.
type Ring []Point

// Polygon is an outer ring plus zero or more inner
// rings.
type Polygon []Ring

func (p Polygon) shape() {}

func (p Polygon) text(dst *strings.Builder) {
	dst.WriteString("Polygon(")
	for i := range p {
		if i > 0 {
			dst.WriteByte(',')
		}
		positions(dst, p[i])
	}
	dst.WriteByte(')')
}

func (p Polygon) String() string { return text(p) }

// MultiPoint is a set of points.
type MultiPoint []Point

func (m MultiPoint) shape() {}

func (m MultiPoint) text(dst *strings.Builder) {
	dst.WriteString("MultiPoint(")
	for i := range m {
		if i > 0 {
			dst.WriteByte(',')
		}
		dst.WriteByte('(')
		position(dst, m[i])
		dst.WriteByte(')')
	}
	dst.WriteByte(')')
}

func (m MultiPoint) String() string { return text(m) }

// MultiLineString is a set of line strings.
type MultiLineString []LineString

func (m MultiLineString) shape() {}

func (m MultiLineString) text(dst *strings.Builder) {
	dst.WriteString("MultiLineString(")
	for i := range m {
		if i > 0 {
			dst.WriteByte(',')
		}
		positions(dst, m[i])
	}
	dst.WriteByte(')')
}

func (m MultiLineString) String() string { return text(m) }

// MultiPolygon is a set of polygons.
type MultiPolygon []Polygon

func (m MultiPolygon) shape() {}

func (m MultiPolygon) text(dst *strings.Builder) {
	dst.WriteString("MultiPolygon(")
	for i := range m {
		if i > 0 {
			dst.WriteByte(',')
		}
		dst.WriteByte('(')
		for j := range m[i] {
			if j > 0 {
				dst.WriteByte(',')
			}
			positions(dst, m[i][j])
		}
		dst.WriteByte(')')
	}
	dst.WriteByte(')')
}

func (m MultiPolygon) String() string { return text(m) }

// Collection is a heterogeneous set of shapes.
type Collection []Shape

func (c Collection) shape() {}

func (c Collection) text(dst *strings.Builder) {
	dst.WriteString("Collection(")
	for i := range c {
		if i > 0 {
			dst.WriteByte(',')
		}
		c[i].text(dst)
	}
	dst.WriteByte(')')
}

func (c Collection) String() string { return text(c) }

// Literal pairs a shape with its spatial reference
// system identifier.
type Literal struct {
	SRID  int
	Shape Shape
}

// String formats the literal body as it appears between
// the quotes of a geography or geometry literal.
func (l Literal) String() string {
	var sb strings.Builder
	sb.WriteString("SRID=")
	sb.WriteString(strconv.Itoa(l.SRID))
	sb.WriteByte(';')
	l.Shape.text(&sb)
	return sb.String()
}

// Equal reports whether two shapes are structurally
// identical.
func Equal(a, b Shape) bool {
	if a == nil || b == nil {
		return a == b
	}
	return text(a) == text(b)
}
