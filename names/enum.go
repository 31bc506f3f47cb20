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

import (
	"strconv"
	"strings"
)

// EnumValue is one member reference inside an enum
// literal: either a member name or a member value.
// Name takes priority when non-empty.
type EnumValue struct {
	Name  string
	Value int64
}

func (v EnumValue) String() string {
	if v.Name != "" {
		return v.Name
	}
	return strconv.FormatInt(v.Value, 10)
}

// EnumLiteral is a typed enumeration literal such as
// Sales.Pattern'Red,Striped'. Members are all names or
// all values, never a mixture.
type EnumLiteral struct {
	Type   QualifiedName
	Values []EnumValue
}

func (e EnumLiteral) String() string {
	var sb strings.Builder
	sb.WriteString(e.Type.String())
	sb.WriteByte('\'')
	for i := range e.Values {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(e.Values[i].String())
	}
	sb.WriteByte('\'')
	return sb.String()
}

// Equal reports whether e and o are the same literal.
func (e EnumLiteral) Equal(o EnumLiteral) bool {
	if e.Type != o.Type || len(e.Values) != len(o.Values) {
		return false
	}
	for i := range e.Values {
		if e.Values[i] != o.Values[i] {
			return false
		}
	}
	return true
}
