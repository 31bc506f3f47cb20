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

// Operator tags every operator node kind. The formatter
// threads tags through rendered sub-expressions so that
// precedence can be compared without re-inspecting the
// tree.
type Operator int

const (
	// OpAtom tags literals and other leaf renderings.
	OpAtom Operator = iota
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpHas
	OpAnd
	OpOr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNot
	OpNegate
	OpIsof
	OpCast
	OpMember
	OpCall
	OpLambdaBind
	OpBind
	OpMemberBind
	OpCollection
	OpRecord
	OpIf
	OpArgs
)

// Precedence returns the binding strength of the
// operator; higher binds tighter. Atoms are maximal at
// 100 and the binding forms ':' and '=' are minimal at
// -1. The formatter parenthesizes a child only when its
// precedence is strictly lower than its parent's.
func (o Operator) Precedence() int {
	switch o {
	case OpBind, OpLambdaBind, OpMemberBind:
		return -1
	case OpIf, OpArgs:
		return 0
	case OpOr:
		return 1
	case OpAnd:
		return 2
	case OpEq, OpNe:
		return 3
	case OpLt, OpLe, OpGt, OpGe, OpIsof:
		return 4
	case OpAdd, OpSub:
		return 5
	case OpMul, OpDiv, OpMod:
		return 6
	case OpNot, OpNegate, OpCast:
		return 7
	case OpMember, OpHas, OpCollection, OpRecord:
		return 8
	case OpCall:
		return 9
	case OpAtom:
		return 100
	}
	return 0
}

func (o Operator) String() string {
	switch o {
	case OpAtom:
		return "atom"
	case OpEq:
		return "eq"
	case OpNe:
		return "ne"
	case OpLt:
		return "lt"
	case OpLe:
		return "le"
	case OpGt:
		return "gt"
	case OpGe:
		return "ge"
	case OpHas:
		return "has"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpMod:
		return "mod"
	case OpNot:
		return "not"
	case OpNegate:
		return "negate"
	case OpIsof:
		return "isof"
	case OpCast:
		return "cast"
	case OpMember:
		return "member"
	case OpCall:
		return "call"
	case OpLambdaBind:
		return "lambda_bind"
	case OpBind:
		return "bind"
	case OpMemberBind:
		return "member_bind"
	case OpCollection:
		return "collection"
	case OpRecord:
		return "record"
	case OpIf:
		return "if"
	case OpArgs:
		return "args"
	}
	return "unknown"
}

// Method identifies a built-in method callable in a
// common expression.
type Method int

const (
	MethodIndexOf Method = iota + 1
	MethodToLower
	MethodToUpper
	MethodTrim
	MethodSubstring
	MethodConcat
	MethodLength
	MethodYear
	MethodMonth
	MethodDay
	MethodHour
	MethodMinute
	MethodSecond
	MethodFractionalSeconds
	MethodTotalSeconds
	MethodDate
	MethodTime
	MethodRound
	MethodFloor
	MethodCeiling
	MethodTotalOffsetMinutes
	MethodMinDateTime
	MethodMaxDateTime
	MethodNow
	MethodEndsWith
	MethodStartsWith
	MethodContains
	MethodGeoDistance
	MethodGeoLength
	MethodGeoIntersects
)

var methodNames = map[string]Method{
	"indexof":            MethodIndexOf,
	"tolower":            MethodToLower,
	"toupper":            MethodToUpper,
	"trim":               MethodTrim,
	"substring":          MethodSubstring,
	"concat":             MethodConcat,
	"length":             MethodLength,
	"year":               MethodYear,
	"month":              MethodMonth,
	"day":                MethodDay,
	"hour":               MethodHour,
	"minute":             MethodMinute,
	"second":             MethodSecond,
	"fractionalseconds":  MethodFractionalSeconds,
	"totalseconds":       MethodTotalSeconds,
	"date":               MethodDate,
	"time":               MethodTime,
	"round":              MethodRound,
	"floor":              MethodFloor,
	"ceiling":            MethodCeiling,
	"totaloffsetminutes": MethodTotalOffsetMinutes,
	"mindatetime":        MethodMinDateTime,
	"maxdatetime":        MethodMaxDateTime,
	"now":                MethodNow,
	"endswith":           MethodEndsWith,
	"startswith":         MethodStartsWith,
	"contains":           MethodContains,
	"geo.distance":       MethodGeoDistance,
	"geo.length":         MethodGeoLength,
	"geo.intersects":     MethodGeoIntersects,
}

func (m Method) String() string {
	for name, method := range methodNames {
		if method == m {
			return name
		}
	}
	return "unknown"
}

// Builder is implemented by operator nodes that are
// assembled incrementally by attaching operands one at a
// time. AddOperand enforces the node's arity and
// operand-kind contract immediately, so a malformed tree
// cannot be built.
type Builder interface {
	Node
	AddOperand(n Node) error
}

// Member is the '/' of path expressions. Paths parse
// left-recursively but evaluate one segment at a time
// against a shifting context, so attaching a nested
// member as the second operand rotates the tree to make
// the chain right-associative. The rotation happens in
// place, preserving the root node held by the caller.
type Member struct {
	operands []Node
}

// NewMember returns a member node for left/right.
func NewMember(left, right Node) *Member {
	return &Member{operands: []Node{left, right}}
}

// Left returns the first operand, or nil.
func (m *Member) Left() Node {
	if len(m.operands) > 0 {
		return m.operands[0]
	}
	return nil
}

// Right returns the second operand, or nil.
func (m *Member) Right() Node {
	if len(m.operands) > 1 {
		return m.operands[1]
	}
	return nil
}

func (m *Member) AddOperand(n Node) error {
	if inner, ok := n.(*Member); ok {
		switch len(m.operands) {
		case 0:
			// rotate to force right-associative evaluation
			m.operands = append(m.operands, inner.rotate(), inner)
			return nil
		case 1:
			m.operands = append(m.operands, n)
			return nil
		}
		rm, ok := m.operands[1].(*Member)
		if !ok {
			return buildErrf("member path already complete")
		}
		return rm.AddOperand(n)
	}
	if len(m.operands) > 1 {
		rm, ok := m.operands[1].(*Member)
		if !ok {
			return buildErrf("member path already complete")
		}
		return rm.AddOperand(n)
	}
	m.operands = append(m.operands, n)
	return nil
}

// rotate detaches and returns the left operand, pulling
// the left spine of the right operand up to replace it.
func (m *Member) rotate() Node {
	lop := m.operands[0]
	if r, ok := m.operands[1].(*Member); ok {
		m.operands[0] = r.rotate()
	} else {
		m.operands = m.operands[1:]
	}
	return lop
}

// next splits the right operand into its head segment
// and trailing path, when the right operand is itself a
// member node; otherwise it returns the right operand
// with a nil trailer.
func (m *Member) next() (head, trailer Node) {
	r := m.operands[1]
	if rm, ok := r.(*Member); ok {
		if len(rm.operands) == 2 {
			return rm.operands[0], rm.operands[1]
		}
		return nil, nil
	}
	return r, nil
}

func (m *Member) walk(v Visitor) {
	for i := range m.operands {
		Walk(v, m.operands[i])
	}
}

func (m *Member) Equals(other Node) bool {
	o, ok := other.(*Member)
	if !ok || len(m.operands) != len(o.operands) {
		return false
	}
	for i := range m.operands {
		if !equalNodes(m.operands[i], o.operands[i]) {
			return false
		}
	}
	return true
}

// Call is call-like syntax: Name(args). Depending on
// context the same shape can be navigation by key, a
// bound function invocation, a built-in method call, or
// a cast/isof type operation; see the Is predicates and
// Evaluate for how the ambiguity resolves.
type Call struct {
	Callee Node
	Args   *Args
}

func (c *Call) AddOperand(n Node) error {
	if c.Callee == nil {
		switch n.(type) {
		case Ident, QName, *Call:
			c.Callee = n
			return nil
		}
		return buildErrf("%T is not callable", n)
	}
	if c.Args != nil {
		return buildErrf("call already has arguments")
	}
	args, ok := n.(*Args)
	if !ok {
		return buildErrf("call requires an argument list, not %T", n)
	}
	c.Args = args
	return nil
}

// Method returns the built-in method named by the
// callee, if there is one.
func (c *Call) Method() (Method, bool) {
	var name string
	switch fn := c.Callee.(type) {
	case Ident:
		name = string(fn)
	case QName:
		name = fn.String()
	default:
		return 0, false
	}
	m, ok := methodNames[name]
	return m, ok
}

func (c *Call) walk(v Visitor) {
	Walk(v, c.Callee)
	if c.Args != nil {
		Walk(v, c.Args)
	}
}

func (c *Call) Equals(other Node) bool {
	o, ok := other.(*Call)
	if !ok || !equalNodes(c.Callee, o.Callee) {
		return false
	}
	if c.Args == nil || o.Args == nil {
		return c.Args == o.Args
	}
	return c.Args.Equals(o.Args)
}

// Args is an argument list: function parameters, a key
// predicate, or the lambda argument of any/all. The
// forms are syntactically overlapping; the Is predicates
// classify a list after construction.
type Args struct {
	List []Node
}

func (a *Args) AddOperand(n Node) error {
	a.List = append(a.List, n)
	return nil
}

func (a *Args) walk(v Visitor) {
	for i := range a.List {
		Walk(v, a.List[i])
	}
}

func (a *Args) Equals(other Node) bool {
	o, ok := other.(*Args)
	if !ok || len(a.List) != len(o.List) {
		return false
	}
	for i := range a.List {
		if !equalNodes(a.List[i], o.List[i]) {
			return false
		}
	}
	return true
}

// Bind is name=value, used in key predicates and named
// function parameters.
type Bind struct {
	Name string
	Expr Node
}

func (b *Bind) AddOperand(n Node) error {
	if b.Name == "" {
		id, ok := n.(Ident)
		if !ok {
			return buildErrf("bind requires an identifier, not %T", n)
		}
		b.Name = string(id)
		return nil
	}
	if b.Expr != nil {
		return buildErrf("bind must be single-valued")
	}
	b.Expr = n
	return nil
}

func (b *Bind) walk(v Visitor) {
	Walk(v, b.Expr)
}

func (b *Bind) Equals(other Node) bool {
	o, ok := other.(*Bind)
	return ok && b.Name == o.Name && equalNodes(b.Expr, o.Expr)
}

// LambdaBind is name:predicate, the argument of any/all.
// It only occurs inside an argument list; evaluating it
// standalone is an error.
type LambdaBind struct {
	Name string
	Expr Node
}

func (l *LambdaBind) AddOperand(n Node) error {
	if l.Name == "" {
		id, ok := n.(Ident)
		if !ok {
			return buildErrf("lambda bind requires an identifier, not %T", n)
		}
		l.Name = string(id)
		return nil
	}
	if l.Expr != nil {
		return buildErrf("lambda bind must be single-valued")
	}
	l.Expr = n
	return nil
}

func (l *LambdaBind) walk(v Visitor) {
	Walk(v, l.Expr)
}

func (l *LambdaBind) Equals(other Node) bool {
	o, ok := other.(*LambdaBind)
	return ok && l.Name == o.Name && equalNodes(l.Expr, o.Expr)
}

// MemberBind is one name:value entry of a record
// constructor. The name may also be a term reference.
type MemberBind struct {
	Name string
	Expr Node
}

func (m *MemberBind) AddOperand(n Node) error {
	if m.Name == "" {
		switch id := n.(type) {
		case Ident:
			m.Name = string(id)
		case TermRef:
			m.Name = id.String()
		default:
			return buildErrf("record member requires a name, not %T", n)
		}
		return nil
	}
	if m.Expr != nil {
		return buildErrf("record member must be single-valued")
	}
	m.Expr = n
	return nil
}

func (m *MemberBind) walk(v Visitor) {
	Walk(v, m.Expr)
}

func (m *MemberBind) Equals(other Node) bool {
	o, ok := other.(*MemberBind)
	return ok && m.Name == o.Name && equalNodes(m.Expr, o.Expr)
}

// Collection is a collection constructor. In inline
// syntax the items are restricted to literals and $root
// paths by the JSON grammar; annotation use is liberal
// and admits arbitrary common expressions.
type Collection struct {
	Items []Node
}

func (c *Collection) AddOperand(n Node) error {
	c.Items = append(c.Items, n)
	return nil
}

func (c *Collection) walk(v Visitor) {
	for i := range c.Items {
		Walk(v, c.Items[i])
	}
}

func (c *Collection) Equals(other Node) bool {
	o, ok := other.(*Collection)
	if !ok || len(c.Items) != len(o.Items) {
		return false
	}
	for i := range c.Items {
		if !equalNodes(c.Items[i], o.Items[i]) {
			return false
		}
	}
	return true
}

// Record is a record constructor; entries must be
// member binds.
type Record struct {
	Fields []*MemberBind
}

func (r *Record) AddOperand(n Node) error {
	f, ok := n.(*MemberBind)
	if !ok {
		return buildErrf("record requires member binds, not %T", n)
	}
	r.Fields = append(r.Fields, f)
	return nil
}

func (r *Record) walk(v Visitor) {
	for i := range r.Fields {
		Walk(v, r.Fields[i])
	}
}

func (r *Record) Equals(other Node) bool {
	o, ok := other.(*Record)
	if !ok || len(r.Fields) != len(o.Fields) {
		return false
	}
	for i := range r.Fields {
		if !r.Fields[i].Equals(o.Fields[i]) {
			return false
		}
	}
	return true
}

// If is a conditional with two or three operands; the
// two-operand form may only appear inside a collection,
// where a false test skips the item.
type If struct {
	Test Node
	Then Node
	Else Node
}

func (i *If) AddOperand(n Node) error {
	switch {
	case i.Test == nil:
		if !IsBoolCommon(n) {
			return buildErrf("%T cannot be a conditional test", n)
		}
		i.Test = n
	case i.Then == nil:
		if !IsCommon(n) {
			return buildErrf("conditional requires a common expression, not %T", n)
		}
		i.Then = n
	case i.Else == nil:
		if !IsCommon(n) {
			return buildErrf("conditional requires a common expression, not %T", n)
		}
		i.Else = n
	default:
		return buildErrf("conditional takes at most three operands")
	}
	return nil
}

func (i *If) walk(v Visitor) {
	Walk(v, i.Test)
	Walk(v, i.Then)
	Walk(v, i.Else)
}

func (i *If) Equals(other Node) bool {
	o, ok := other.(*If)
	return ok && equalNodes(i.Test, o.Test) &&
		equalNodes(i.Then, o.Then) && equalNodes(i.Else, o.Else)
}

type binary struct {
	Left, Right Node
}

func (b *binary) attach(n Node) error {
	if b.Left == nil {
		b.Left = n
		return nil
	}
	if b.Right != nil {
		return buildErrf("binary operator already bound")
	}
	b.Right = n
	return nil
}

func (b *binary) walk(v Visitor) {
	Walk(v, b.Left)
	Walk(v, b.Right)
}

// Comparison is one of the relational operators eq, ne,
// lt, le, gt, ge.
type Comparison struct {
	Op Operator
	binary
}

// Compare constructs a complete comparison node.
func Compare(op Operator, left, right Node) *Comparison {
	return &Comparison{Op: op, binary: binary{Left: left, Right: right}}
}

func (c *Comparison) AddOperand(n Node) error {
	return c.attach(n)
}

func (c *Comparison) Equals(other Node) bool {
	o, ok := other.(*Comparison)
	return ok && c.Op == o.Op &&
		equalNodes(c.Left, o.Left) && equalNodes(c.Right, o.Right)
}

// Has is the enum flag-test operator; its right operand
// must be an enum literal.
type Has struct {
	binary
}

func (h *Has) AddOperand(n Node) error {
	if h.Left != nil {
		if _, ok := n.(Enum); !ok {
			return buildErrf("has requires an enum literal, not %T", n)
		}
	}
	return h.attach(n)
}

func (h *Has) Equals(other Node) bool {
	o, ok := other.(*Has)
	return ok && equalNodes(h.Left, o.Left) && equalNodes(h.Right, o.Right)
}

// Logical is and/or; operands must themselves be
// boolean common expressions.
type Logical struct {
	Op Operator
	binary
}

// And constructs a complete and node.
func And(left, right Node) *Logical {
	return &Logical{Op: OpAnd, binary: binary{Left: left, Right: right}}
}

// Or constructs a complete or node.
func Or(left, right Node) *Logical {
	return &Logical{Op: OpOr, binary: binary{Left: left, Right: right}}
}

func (l *Logical) AddOperand(n Node) error {
	if !IsBoolCommon(n) {
		return buildErrf("%T in %s", n, l.Op)
	}
	return l.attach(n)
}

func (l *Logical) Equals(other Node) bool {
	o, ok := other.(*Logical)
	return ok && l.Op == o.Op &&
		equalNodes(l.Left, o.Left) && equalNodes(l.Right, o.Right)
}

// Arithmetic is one of add, sub, mul, div, mod.
type Arithmetic struct {
	Op Operator
	binary
}

// Arith constructs a complete arithmetic node.
func Arith(op Operator, left, right Node) *Arithmetic {
	return &Arithmetic{Op: op, binary: binary{Left: left, Right: right}}
}

func (a *Arithmetic) AddOperand(n Node) error {
	return a.attach(n)
}

func (a *Arithmetic) Equals(other Node) bool {
	o, ok := other.(*Arithmetic)
	return ok && a.Op == o.Op &&
		equalNodes(a.Left, o.Left) && equalNodes(a.Right, o.Right)
}

// Not is logical negation; the operand must be a
// boolean common expression.
type Not struct {
	Expr Node
}

func (n *Not) AddOperand(op Node) error {
	if n.Expr != nil {
		return buildErrf("unary operator already bound")
	}
	if !IsBoolCommon(op) {
		return buildErrf("%T in not", op)
	}
	n.Expr = op
	return nil
}

func (n *Not) walk(v Visitor) {
	Walk(v, n.Expr)
}

func (n *Not) Equals(other Node) bool {
	o, ok := other.(*Not)
	return ok && equalNodes(n.Expr, o.Expr)
}

// Negate is arithmetic negation.
type Negate struct {
	Expr Node
}

func (n *Negate) AddOperand(op Node) error {
	if n.Expr != nil {
		return buildErrf("unary operator already bound")
	}
	if !IsCommon(op) {
		return buildErrf("%T in negate", op)
	}
	n.Expr = op
	return nil
}

func (n *Negate) walk(v Visitor) {
	Walk(v, n.Expr)
}

func (n *Negate) Equals(other Node) bool {
	o, ok := other.(*Negate)
	return ok && equalNodes(n.Expr, o.Expr)
}

// SearchAnd joins two search expressions.
type SearchAnd struct {
	binary
}

func (s *SearchAnd) AddOperand(n Node) error {
	if !IsSearch(n) {
		return buildErrf("%T in AND", n)
	}
	return s.attach(n)
}

func (s *SearchAnd) Equals(other Node) bool {
	o, ok := other.(*SearchAnd)
	return ok && equalNodes(s.Left, o.Left) && equalNodes(s.Right, o.Right)
}

// SearchOr joins two search expressions.
type SearchOr struct {
	binary
}

func (s *SearchOr) AddOperand(n Node) error {
	if !IsSearch(n) {
		return buildErrf("%T in OR", n)
	}
	return s.attach(n)
}

func (s *SearchOr) Equals(other Node) bool {
	o, ok := other.(*SearchOr)
	return ok && equalNodes(s.Left, o.Left) && equalNodes(s.Right, o.Right)
}

// SearchNot negates a search expression.
type SearchNot struct {
	Expr Node
}

func (s *SearchNot) AddOperand(n Node) error {
	if s.Expr != nil {
		return buildErrf("unary operator already bound")
	}
	if !IsSearch(n) {
		return buildErrf("%T in NOT", n)
	}
	s.Expr = n
	return nil
}

func (s *SearchNot) walk(v Visitor) {
	Walk(v, s.Expr)
}

func (s *SearchNot) Equals(other Node) bool {
	o, ok := other.(*SearchNot)
	return ok && equalNodes(s.Expr, o.Expr)
}
