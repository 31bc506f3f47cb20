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

// Grammar-production predicates. Each answers, on
// demand, whether a node is a valid occurrence of the
// corresponding production. Results are never cached at
// construction because validity can depend on operands
// attached later.

func isLiteral(n Node) bool {
	switch n.(type) {
	case Null, Bool, Int64, String, Double, Decimal, Guid,
		Date, DateTimeOffset, TimeOfDay, Duration, Binary,
		Enum, Geography, Geometry:
		return true
	}
	return false
}

// IsCommon returns true if n is a complete common
// expression. Not every node qualifies in isolation:
// operator nodes with unbound operands fail, and so do
// path fragments like $root or $count that only make
// sense inside a member chain.
func IsCommon(n Node) bool {
	switch n := n.(type) {
	case Param, It, Ident, Reference,
		PathExpr, AnnotationPath, NavigationPath, PropertyPath:
		return true
	case *Collection:
		return true
	case *Record:
		return true
	case *Member:
		return len(n.operands) == 2 && (IsFirstMember(n) || IsRoot(n))
	case *Call:
		if n.Callee == nil || n.Args == nil {
			return false
		}
		return n.IsIDAndKey() || n.IsFunction(false) ||
			n.IsMethodCall() || n.IsTypeCall()
	case *If:
		return n.Test != nil && n.Then != nil && n.Else != nil
	case *Comparison:
		return n.Left != nil && n.Right != nil
	case *Has:
		return n.Left != nil && n.Right != nil
	case *Logical:
		return n.Left != nil && n.Right != nil
	case *Arithmetic:
		return n.Left != nil && n.Right != nil
	case *Not:
		return n.Expr != nil
	case *Negate:
		return n.Expr != nil
	}
	return isLiteral(n)
}

// IsBoolCommon returns true if n is a common expression
// that may produce a boolean. The test is generous: an
// unresolved identifier could name a boolean property,
// so only forms known never to be boolean return false.
func IsBoolCommon(n Node) bool {
	switch n := n.(type) {
	case Bool, Param, It, Ident, Reference, PathExpr:
		return true
	case *Member:
		return IsCommon(n)
	case *Call:
		if n.Callee == nil || n.Args == nil {
			return false
		}
		if n.IsFunction(false) {
			return true
		}
		if n.IsMethodCall() {
			switch m, _ := n.Method(); m {
			case MethodEndsWith, MethodStartsWith,
				MethodContains, MethodGeoIntersects:
				return true
			}
		}
		if n.IsTypeCall() {
			return n.Callee.(Ident) == "isof"
		}
		return false
	case *If:
		return n.Test != nil && n.Then != nil && n.Else != nil &&
			IsBoolCommon(n.Then) && IsBoolCommon(n.Else)
	case *Comparison:
		return n.Left != nil && n.Right != nil
	case *Has:
		return n.Left != nil && n.Right != nil
	case *Logical:
		return n.Left != nil && n.Right != nil
	case *Not:
		return n.Expr != nil
	}
	return false
}

// IsRoot returns true if n matches rootExpr: a member
// chain beginning at $root whose first step is an entity
// set name or a set name with a key predicate, followed
// by an optional member path.
func IsRoot(n Node) bool {
	m, ok := n.(*Member)
	if !ok || len(m.operands) != 2 {
		return false
	}
	if _, ok := m.Left().(Root); !ok {
		return false
	}
	head, trailer := m.next()
	switch head := head.(type) {
	case Ident:
		// entity set name
	case *Call:
		if !head.IsIDAndKey() {
			return false
		}
	default:
		return false
	}
	return trailer == nil || IsMember(trailer)
}

// IsFirstMember returns true if n matches
// firstMemberExpr: a member expression, the implicit
// variable $it, or $it followed by a member path. A
// lambda variable is indistinguishable from a property
// name here so it is accepted as a member expression.
func IsFirstMember(n Node) bool {
	switch n := n.(type) {
	case It:
		return true
	case *Member:
		if len(n.operands) != 2 {
			return false
		}
		if IsMember(n) {
			return true
		}
		if _, ok := n.Left().(It); !ok {
			return false
		}
		return IsMember(n.Right())
	}
	return IsMember(n)
}

// IsMember returns true if n matches memberExpr: a
// property path or bound function, optionally preceded
// by a qualified type-cast segment.
func IsMember(n Node) bool {
	if m, ok := n.(*Member); ok {
		if len(m.operands) != 2 {
			return false
		}
		if IsPropertyPath(m) || IsFunction(m) {
			return true
		}
		if _, ok := m.Left().(QName); ok {
			r := m.Right()
			return IsPropertyPath(r) || IsFunction(r)
		}
		return false
	}
	return IsPropertyPath(n) || IsFunction(n)
}

// IsPropertyPath returns true if n matches
// propertyPathExpr. An identifier alone qualifies; so
// does an identifier followed by a member path, a
// key predicate, a qualified type cast with a collection
// path, or a collection path directly.
func IsPropertyPath(n Node) bool {
	switch n := n.(type) {
	case Ident:
		return true
	case *Call:
		return n.IsIDAndKey()
	case *Member:
		if len(n.operands) != 2 {
			return false
		}
		l, r := n.Left(), n.Right()
		if _, ok := l.(Ident); ok {
			if IsMember(r) || IsCollectionPath(r) {
				return true
			}
			head, trailer := n.next()
			if c, ok := head.(*Call); ok && c.IsQNameAndKey() &&
				(trailer == nil || IsMember(trailer)) {
				return true
			}
			if _, ok := head.(QName); ok &&
				trailer != nil && IsCollectionPath(trailer) {
				return true
			}
			return false
		}
		if c, ok := l.(*Call); ok && c.IsIDAndKey() {
			return IsMember(r)
		}
	}
	return false
}

// IsCollectionPath returns true if n matches
// collectionPathExpr: $count, an any/all lambda segment,
// or a bound function.
func IsCollectionPath(n Node) bool {
	switch n := n.(type) {
	case Count:
		return true
	case *Call:
		if id, ok := n.Callee.(Ident); ok && n.Args != nil {
			if id == "any" {
				return n.Args.IsAny()
			}
			if id == "all" {
				return n.Args.IsAll()
			}
		}
		return n.IsFunction(false)
	}
	return IsFunction(n)
}

// IsFunction returns true if n matches
// functionExpr/boundFunctionExpr.
func IsFunction(n Node) bool {
	switch n := n.(type) {
	case *Call:
		return n.IsFunction(false)
	case *Member:
		if len(n.operands) != 2 {
			return false
		}
		c, ok := n.Left().(*Call)
		if !ok {
			return false
		}
		r := n.Right()
		if c.IsFunction(true) {
			// function(params)(key) requires a single
			// navigation trailer
			return IsMember(r)
		}
		if !c.IsFunction(false) {
			return false
		}
		if IsMember(r) || IsCollectionPath(r) {
			return true
		}
		head, trailer := n.next()
		if hc, ok := head.(*Call); ok && hc.IsQNameAndKey() &&
			(trailer == nil || IsMember(trailer)) {
			return true
		}
		if _, ok := head.(QName); ok &&
			trailer != nil && IsCollectionPath(trailer) {
			return true
		}
	}
	return false
}

// IsFunctionParameter returns true if n matches
// functionParameter: a name bound to a common
// expression.
func IsFunctionParameter(n Node) bool {
	b, ok := n.(*Bind)
	return ok && b.Name != "" && b.Expr != nil && IsCommon(b.Expr)
}

// IsSearch returns true if n is a complete search
// expression.
func IsSearch(n Node) bool {
	switch n := n.(type) {
	case Word, Phrase:
		return true
	case *SearchAnd:
		return n.Left != nil && n.Right != nil
	case *SearchOr:
		return n.Left != nil && n.Right != nil
	case *SearchNot:
		return n.Expr != nil
	}
	return false
}

// IsIDAndKey returns true if the call is an identifier
// applied to a key predicate, the shape of
// navigation-collection access by key.
func (c *Call) IsIDAndKey() bool {
	if c.Callee == nil || c.Args == nil {
		return false
	}
	_, ok := c.Callee.(Ident)
	return ok && c.Args.IsKeyPredicate()
}

// IsQNameAndKey returns true if the call is a qualified
// name applied to a key predicate, the shape of a
// type-cast segment with a key.
func (c *Call) IsQNameAndKey() bool {
	if c.Callee == nil || c.Args == nil {
		return false
	}
	_, ok := c.Callee.(QName)
	return ok && c.Args.IsKeyPredicate()
}

// IsMethodCall returns true if the call matches
// methodCallExpr: a built-in method name applied to
// common-expression arguments.
func (c *Call) IsMethodCall() bool {
	if c.Args == nil {
		return false
	}
	_, ok := c.Method()
	return ok && c.Args.IsMethodParameters()
}

// IsTypeCall returns true if the call matches castExpr
// or isofExpr.
func (c *Call) IsTypeCall() bool {
	if c.Args == nil {
		return false
	}
	id, ok := c.Callee.(Ident)
	return ok && (id == "cast" || id == "isof") && c.Args.IsTypeArgs()
}

// IsFunction returns true if the call matches
// functionExpr/boundFunctionExpr. With withKey the call
// must additionally apply a key predicate to an inner
// qualified function call, the F(params)(key) form.
func (c *Call) IsFunction(withKey bool) bool {
	if c.Callee == nil || c.Args == nil {
		return false
	}
	switch callee := c.Callee.(type) {
	case QName:
		return !withKey && c.Args.IsFunctionParameters()
	case *Call:
		if !c.Args.IsKeyPredicate() {
			return false
		}
		if callee.Args == nil {
			return false
		}
		_, ok := callee.Callee.(QName)
		return ok && callee.Args.IsFunctionParameters()
	}
	return false
}

// IsKeyPredicate returns true if the arguments match
// keyPredicate: a single literal, or one or more
// name=literal binds.
func (a *Args) IsKeyPredicate() bool {
	if len(a.List) == 0 {
		return false
	}
	skipID := len(a.List) == 1
	for _, op := range a.List {
		if skipID && isLiteral(op) {
			return true
		}
		b, ok := op.(*Bind)
		if !ok {
			return false
		}
		if b.Expr == nil || !isLiteral(b.Expr) {
			return false
		}
	}
	return true
}

// IsFunctionParameters returns true if every argument
// matches functionParameter.
func (a *Args) IsFunctionParameters() bool {
	for _, op := range a.List {
		if !IsFunctionParameter(op) {
			return false
		}
	}
	return true
}

// IsMethodParameters returns true if every argument is a
// common expression.
func (a *Args) IsMethodParameters() bool {
	for _, op := range a.List {
		if !IsCommon(op) {
			return false
		}
	}
	return true
}

// IsAny returns true if the arguments match anyExpr.
// An empty list is valid: any() tests non-emptiness.
func (a *Args) IsAny() bool {
	if len(a.List) == 0 {
		return true
	}
	if len(a.List) > 1 {
		return false
	}
	l, ok := a.List[0].(*LambdaBind)
	return ok && l.Expr != nil && IsBoolCommon(l.Expr)
}

// IsAll returns true if the arguments match allExpr.
// Unlike any, all() without a lambda is not valid.
func (a *Args) IsAll() bool {
	if len(a.List) != 1 {
		return false
	}
	l, ok := a.List[0].(*LambdaBind)
	return ok && l.Expr != nil && IsBoolCommon(l.Expr)
}

// TypeArgs splits the arguments of a cast/isof call
// into the type name and the optional expression.
func (a *Args) TypeArgs() (typeArg, exprArg Node) {
	switch len(a.List) {
	case 1:
		return a.List[0], nil
	case 2:
		return a.List[1], a.List[0]
	}
	return nil, nil
}

// IsTypeArgs returns true if the arguments match the
// cast/isof forms: a qualified type name, optionally
// preceded by a common expression.
func (a *Args) IsTypeArgs() bool {
	typeArg, exprArg := a.TypeArgs()
	if exprArg != nil && !IsCommon(exprArg) {
		return false
	}
	_, ok := typeArg.(QName)
	return ok
}

// LambdaArgs returns the lambda variable name and
// predicate of an any/all argument list, or "" and nil
// for the bare any() form.
func (a *Args) LambdaArgs() (name string, lambda Node) {
	if len(a.List) == 0 {
		return "", nil
	}
	if l, ok := a.List[0].(*LambdaBind); ok {
		return l.Name, l.Expr
	}
	return "", nil
}
