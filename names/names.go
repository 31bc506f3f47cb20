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

// Package names implements the identifier, qualified-name,
// and path vocabulary shared by the expression packages.
package names

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// QualifiedName is a namespace-qualified schema name
// such as Edm.String or Sales.Pattern.
type QualifiedName struct {
	Namespace string
	Name      string
}

func (q QualifiedName) String() string {
	return q.Namespace + "." + q.Name
}

// Zero returns true if q is the zero QualifiedName.
func (q QualifiedName) Zero() bool {
	return q.Namespace == "" && q.Name == ""
}

// ParseQualifiedName splits s at its final dot.
// Every dotted identifier sequence of length two or
// more is accepted; a bare identifier is an error.
func ParseQualifiedName(s string) (QualifiedName, error) {
	i := strings.LastIndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		return QualifiedName{}, fmt.Errorf("%q is not a qualified name", s)
	}
	q := QualifiedName{Namespace: s[:i], Name: s[i+1:]}
	for _, part := range strings.Split(q.Namespace, ".") {
		if !IsIdentifier(part) {
			return QualifiedName{}, fmt.Errorf("%q is not a qualified name", s)
		}
	}
	if !IsIdentifier(q.Name) {
		return QualifiedName{}, fmt.Errorf("%q is not a qualified name", s)
	}
	return q, nil
}

// IsIdentifier reports whether s is a simple identifier:
// a letter or underscore followed by letters, digits,
// and underscores.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}

// Segment is one step of a member path: a simple
// identifier, or a qualified name for a type-cast or
// bound-function step.
type Segment struct {
	Name  string
	QName QualifiedName
}

// Qualified reports whether the segment is a
// namespace-qualified step.
func (s Segment) Qualified() bool {
	return !s.QName.Zero()
}

func (s Segment) String() string {
	if s.Qualified() {
		return s.QName.String()
	}
	return s.Name
}

// Path is a slash-separated segment sequence used by
// annotation path expressions. It is never mutated
// after construction.
type Path []Segment

func (p Path) String() string {
	var sb strings.Builder
	for i := range p {
		if i > 0 {
			sb.WriteByte('/')
		}
		sb.WriteString(p[i].String())
	}
	return sb.String()
}

// Equal reports whether p and o name the same path.
func (p Path) Equal(o Path) bool {
	return slices.Equal(p, o)
}
