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
	"errors"
	"fmt"

	"github.com/odatakit/odex/names"
)

// PathError indicates that a member lookup or path
// traversal failed because the named property, function,
// or segment is absent or inapplicable in the current
// context. Evaluation recovers from it in exactly two
// places: reserved-word fallback for bare identifiers
// and the unbound-function retry for qualified calls.
type PathError struct {
	Segment names.Segment
	Msg     string
}

func (p *PathError) Error() string {
	if p.Msg == "" {
		return fmt.Sprintf("no member %q", p.Segment.String())
	}
	return fmt.Sprintf("%s: %s", p.Segment.String(), p.Msg)
}

// NoMember returns the PathError a backend should raise
// when a segment does not resolve.
func NoMember(segment names.Segment) error {
	return &PathError{Segment: segment}
}

// IsPathError returns true if any error in err's chain
// is a PathError.
func IsPathError(err error) bool {
	var pe *PathError
	return errors.As(err, &pe)
}

// ExprError indicates evaluation reached a structurally
// incomplete node, or a form that is legal syntax but
// inapplicable in its context (such as any/all outside a
// path segment). It is never recovered from.
type ExprError struct {
	Msg string
}

func (e *ExprError) Error() string { return e.Msg }

func exprErrf(f string, args ...interface{}) error {
	return &ExprError{Msg: fmt.Sprintf(f, args...)}
}

// UnsupportedError is returned by the default backend
// methods of Unsupported for operations the embedding
// backend chose not to implement.
type UnsupportedError struct {
	Op string
}

func (u *UnsupportedError) Error() string {
	return "expression operation " + u.Op + " not supported"
}

func buildErrf(f string, args ...interface{}) error {
	return fmt.Errorf(f, args...)
}
