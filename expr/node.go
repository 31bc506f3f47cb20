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

// Package expr implements the common-expression tree used
// in query options and metadata annotations: literal and
// operator nodes, grammar-production predicates, a generic
// evaluation protocol, and a precedence-aware formatter.
package expr

import (
	"bytes"
	"math"
	"math/big"

	"github.com/google/uuid"

	"github.com/odatakit/odex/date"
	"github.com/odatakit/odex/geo"
	"github.com/odatakit/odex/names"
)

// Node is an expression node. The set of implementations
// is closed; see Evaluate for the full list.
type Node interface {
	// Equals returns true if the node is structurally
	// identical to other.
	Equals(other Node) bool
	// walk visits the node's immediate children
	walk(v Visitor)
}

// Visitor is used by Walk to visit nodes in an expression.
type Visitor interface {
	// Visit is called with the node to be visited.
	// If the returned Visitor is non-nil it is used
	// to visit each of the node's children.
	Visit(n Node) Visitor
}

// Walk performs a depth-first traversal of n, visiting
// n itself and then its children.
func Walk(v Visitor, n Node) {
	if n == nil || v == nil {
		return
	}
	if v2 := v.Visit(n); v2 != nil {
		n.walk(v2)
	}
}

type walkFn func(Node) bool

func (f walkFn) Visit(n Node) Visitor {
	if f(n) {
		return f
	}
	return nil
}

// WalkFunc traverses n depth-first, calling fn for each
// node; fn returning false prunes the node's children.
func WalkFunc(fn func(Node) bool, n Node) {
	Walk(walkFn(fn), n)
}

// Params returns the distinct parameter aliases
// referenced anywhere inside n, in first-use order.
func Params(n Node) []string {
	var out []string
	seen := make(map[string]bool)
	WalkFunc(func(n Node) bool {
		if p, ok := n.(Param); ok && !seen[string(p)] {
			seen[string(p)] = true
			out = append(out, string(p))
		}
		return true
	}, n)
	return out
}

// TypeDef is a resolved type from the entity model,
// consumed opaquely by cast and isof in their annotation
// forms.
type TypeDef interface {
	String() string
}

// Null is the null literal.
type Null struct{}

func (Null) walk(v Visitor) {}

func (Null) Equals(other Node) bool {
	_, ok := other.(Null)
	return ok
}

// Bool is a boolean literal.
type Bool bool

func (b Bool) walk(v Visitor) {}

func (b Bool) Equals(other Node) bool {
	o, ok := other.(Bool)
	return ok && b == o
}

// Int64 is an integer literal.
type Int64 int64

func (i Int64) walk(v Visitor) {}

func (i Int64) Equals(other Node) bool {
	o, ok := other.(Int64)
	return ok && i == o
}

// String is a string literal.
type String string

func (s String) walk(v Visitor) {}

func (s String) Equals(other Node) bool {
	o, ok := other.(String)
	return ok && s == o
}

// Double is a floating-point literal. Literal preserves
// the source spelling (for example "3.14e8") so that
// formatting round-trips; it may be empty for
// synthesized nodes.
type Double struct {
	Value   float64
	Literal string
}

func (d Double) walk(v Visitor) {}

func (d Double) Equals(other Node) bool {
	o, ok := other.(Double)
	if !ok {
		return false
	}
	if math.IsNaN(d.Value) && math.IsNaN(o.Value) {
		return true
	}
	return d.Value == o.Value
}

// Decimal is an exact decimal literal. Literal preserves
// the source spelling.
type Decimal struct {
	Value   *big.Rat
	Literal string
}

func (d Decimal) walk(v Visitor) {}

func (d Decimal) Equals(other Node) bool {
	o, ok := other.(Decimal)
	if !ok {
		return false
	}
	if d.Value == nil || o.Value == nil {
		return d.Value == o.Value
	}
	return d.Value.Cmp(o.Value) == 0
}

// Guid is a guid literal.
type Guid uuid.UUID

func (g Guid) walk(v Visitor) {}

func (g Guid) Equals(other Node) bool {
	o, ok := other.(Guid)
	return ok && uuid.UUID(g) == uuid.UUID(o)
}

// Date is a calendar date literal.
type Date struct {
	Value date.Date
}

func (d Date) walk(v Visitor) {}

func (d Date) Equals(other Node) bool {
	o, ok := other.(Date)
	return ok && d.Value == o.Value
}

// DateTimeOffset is a timestamp literal.
type DateTimeOffset struct {
	Value   date.DateTimeOffset
	Literal string
}

func (d DateTimeOffset) walk(v Visitor) {}

func (d DateTimeOffset) Equals(other Node) bool {
	o, ok := other.(DateTimeOffset)
	return ok && d.Value == o.Value
}

// TimeOfDay is a clock-time literal.
type TimeOfDay struct {
	Value   date.TimeOfDay
	Literal string
}

func (t TimeOfDay) walk(v Visitor) {}

func (t TimeOfDay) Equals(other Node) bool {
	o, ok := other.(TimeOfDay)
	return ok && t.Value == o.Value
}

// Duration is a day-time duration literal.
type Duration struct {
	Value   date.Duration
	Literal string
}

func (d Duration) walk(v Visitor) {}

func (d Duration) Equals(other Node) bool {
	o, ok := other.(Duration)
	return ok && d.Value == o.Value
}

// Binary is a binary literal.
type Binary []byte

func (b Binary) walk(v Visitor) {}

func (b Binary) Equals(other Node) bool {
	o, ok := other.(Binary)
	return ok && bytes.Equal(b, o)
}

// Enum is an enumeration literal.
type Enum struct {
	Value names.EnumLiteral
}

func (e Enum) walk(v Visitor) {}

func (e Enum) Equals(other Node) bool {
	o, ok := other.(Enum)
	return ok && e.Value.Equal(o.Value)
}

// Geography is a geography literal. Literal preserves
// the source spelling of the body between the quotes.
type Geography struct {
	Value   geo.Literal
	Literal string
}

func (g Geography) walk(v Visitor) {}

func (g Geography) Equals(other Node) bool {
	o, ok := other.(Geography)
	return ok && g.Value.SRID == o.Value.SRID &&
		geo.Equal(g.Value.Shape, o.Value.Shape)
}

// Geometry is a geometry literal.
type Geometry struct {
	Value   geo.Literal
	Literal string
}

func (g Geometry) walk(v Visitor) {}

func (g Geometry) Equals(other Node) bool {
	o, ok := other.(Geometry)
	return ok && g.Value.SRID == o.Value.SRID &&
		geo.Equal(g.Value.Shape, o.Value.Shape)
}

// Param is a parameter alias reference, @name without
// the leading @.
type Param string

func (p Param) walk(v Visitor) {}

func (p Param) Equals(other Node) bool {
	o, ok := other.(Param)
	return ok && p == o
}

// Root is the $root path segment.
type Root struct{}

func (Root) walk(v Visitor) {}

func (Root) Equals(other Node) bool {
	_, ok := other.(Root)
	return ok
}

// It is the implicit variable $it.
type It struct{}

func (It) walk(v Visitor) {}

func (It) Equals(other Node) bool {
	_, ok := other.(It)
	return ok
}

// Count is the $count path segment. It only occurs as
// the final segment of a member path.
type Count struct{}

func (Count) walk(v Visitor) {}

func (Count) Equals(other Node) bool {
	_, ok := other.(Count)
	return ok
}

// Ident is a plain identifier. In isolation it resolves
// as a first member; if that fails the reserved words
// INF, NaN, true, false, and null are tried in turn
// (see Evaluate).
type Ident string

func (i Ident) walk(v Visitor) {}

func (i Ident) Equals(other Node) bool {
	o, ok := other.(Ident)
	return ok && i == o
}

// QName is a namespace-qualified name, used for type
// casts and bound-function segments.
type QName names.QualifiedName

func (q QName) walk(v Visitor) {}

func (q QName) Equals(other Node) bool {
	o, ok := other.(QName)
	return ok && q == o
}

func (q QName) String() string {
	return names.QualifiedName(q).String()
}

// TermRef is an annotation term reference such as
// @Core.Description#Tablet.
type TermRef struct {
	Term      names.QualifiedName
	Qualifier string
}

func (t TermRef) walk(v Visitor) {}

func (t TermRef) Equals(other Node) bool {
	o, ok := other.(TermRef)
	return ok && t == o
}

func (t TermRef) String() string {
	s := "@" + t.Term.String()
	if t.Qualifier != "" {
		s += "#" + t.Qualifier
	}
	return s
}

// Reference is a reference to a labeled element.
type Reference names.QualifiedName

func (r Reference) walk(v Visitor) {}

func (r Reference) Equals(other Node) bool {
	o, ok := other.(Reference)
	return ok && r == o
}

// TypeExpr wraps a resolved type object. It only occurs
// as an argument of the odata.cast and odata.isof
// client-side functions in annotation expressions.
type TypeExpr struct {
	Def TypeDef
}

func (t TypeExpr) walk(v Visitor) {}

func (t TypeExpr) Equals(other Node) bool {
	o, ok := other.(TypeExpr)
	return ok && t.Def == o.Def
}

// PathExpr is an annotation path evaluated by traversal
// in the current context.
type PathExpr struct {
	Path names.Path
}

func (p PathExpr) walk(v Visitor) {}

func (p PathExpr) Equals(other Node) bool {
	o, ok := other.(PathExpr)
	return ok && p.Path.Equal(o.Path)
}

// AnnotationPath is a path naming an annotation.
type AnnotationPath struct {
	Path names.Path
}

func (p AnnotationPath) walk(v Visitor) {}

func (p AnnotationPath) Equals(other Node) bool {
	o, ok := other.(AnnotationPath)
	return ok && p.Path.Equal(o.Path)
}

// NavigationPath is a path naming a navigation property.
type NavigationPath struct {
	Path names.Path
}

func (p NavigationPath) walk(v Visitor) {}

func (p NavigationPath) Equals(other Node) bool {
	o, ok := other.(NavigationPath)
	return ok && p.Path.Equal(o.Path)
}

// PropertyPath is a path naming a structural property.
type PropertyPath struct {
	Path names.Path
}

func (p PropertyPath) walk(v Visitor) {}

func (p PropertyPath) Equals(other Node) bool {
	o, ok := other.(PropertyPath)
	return ok && p.Path.Equal(o.Path)
}

// Word is a single search term. Only valid inside
// search expressions.
type Word string

func (w Word) walk(v Visitor) {}

func (w Word) Equals(other Node) bool {
	o, ok := other.(Word)
	return ok && w == o
}

// Phrase is a quoted search phrase.
type Phrase string

func (p Phrase) walk(v Visitor) {}

func (p Phrase) Equals(other Node) bool {
	o, ok := other.(Phrase)
	return ok && p == o
}

func equalNodes(a, b Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equals(b)
}
