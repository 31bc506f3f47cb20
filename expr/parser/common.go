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
	"math/big"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/odatakit/odex/expr"
	"github.com/odatakit/odex/names"
)

// prec reports how tightly an operator node binds during
// parsing; non-operator nodes are atoms.
func prec(n expr.Node) int {
	switch n := n.(type) {
	case *expr.Member:
		return expr.OpMember.Precedence()
	case *expr.Bind:
		return expr.OpBind.Precedence()
	case *expr.LambdaBind:
		return expr.OpLambdaBind.Precedence()
	case *expr.Comparison:
		return n.Op.Precedence()
	case *expr.Has:
		return expr.OpHas.Precedence()
	case *expr.Logical:
		return n.Op.Precedence()
	case *expr.Arithmetic:
		return n.Op.Precedence()
	case *expr.Not:
		return expr.OpNot.Precedence()
	case *expr.Negate:
		return expr.OpNegate.Precedence()
	case *expr.SearchAnd:
		return expr.OpAnd.Precedence()
	case *expr.SearchOr:
		return expr.OpOr.Precedence()
	case *expr.SearchNot:
		return expr.OpNot.Precedence()
	}
	return expr.OpAtom.Precedence()
}

// isUnboundUnary reports whether n is a unary operator
// still waiting for its operand. Such an operator never
// starts a binary-operator search: two unary operators
// in a row always bind to the right.
func isUnboundUnary(n expr.Node) bool {
	switch n := n.(type) {
	case *expr.Not:
		return n.Expr == nil
	case *expr.Negate:
		return n.Expr == nil
	case *expr.SearchNot:
		return n.Expr == nil
	}
	return false
}

func binaryOp(name string) expr.Builder {
	switch name {
	case "eq":
		return &expr.Comparison{Op: expr.OpEq}
	case "ne":
		return &expr.Comparison{Op: expr.OpNe}
	case "lt":
		return &expr.Comparison{Op: expr.OpLt}
	case "le":
		return &expr.Comparison{Op: expr.OpLe}
	case "gt":
		return &expr.Comparison{Op: expr.OpGt}
	case "ge":
		return &expr.Comparison{Op: expr.OpGe}
	case "has":
		return &expr.Has{}
	case "and":
		return &expr.Logical{Op: expr.OpAnd}
	case "or":
		return &expr.Logical{Op: expr.OpOr}
	case "add":
		return &expr.Arithmetic{Op: expr.OpAdd}
	case "sub":
		return &expr.Arithmetic{Op: expr.OpSub}
	case "mul":
		return &expr.Arithmetic{Op: expr.OpMul}
	case "div":
		return &expr.Arithmetic{Op: expr.OpDiv}
	case "mod":
		return &expr.Arithmetic{Op: expr.OpMod}
	}
	return nil
}

// commonExpr parses a common expression with an explicit
// operator stack: alternately scan an atom and an
// operator, then let precedence decide whether the atom
// binds left or right. Equal precedence binds left, so
// chains like 2 add 3 sub 4 associate left; paths and
// lambda binds get their right-associative shape from
// the nodes' own attachment rules rather than from the
// driver.
func (p *parser) commonExpr() (expr.Node, error) {
	var leftOp expr.Builder
	var opStack []expr.Builder
	popLeft := func() {
		if n := len(opStack); n > 0 {
			leftOp = opStack[n-1]
			opStack = opStack[:n-1]
		} else {
			leftOp = nil
		}
	}
	for {
		// step 1: the next atom (or prefix operator)
		rightOp, err := p.commonAtom(&leftOp, popLeft)
		if err != nil {
			return nil, err
		}
		// step 2: the next operator
		var operand expr.Node
		if !isUnboundUnary(rightOp) {
			operand = rightOp
			var opNode expr.Builder
			switch {
			case p.acceptByte('/'):
				opNode = &expr.Member{}
			case p.acceptByte('='):
				opNode = &expr.Bind{}
			case p.acceptByte(':'):
				p.bws()
				opNode = &expr.LambdaBind{}
			default:
				save := p.pos
				if p.bws() > 0 {
					if p.acceptByte(':') {
						p.bws()
						opNode = &expr.LambdaBind{}
					} else if name, ok := p.identifier(); ok {
						if op := binaryOp(name); op != nil && p.bws() > 0 {
							opNode = op
						} else {
							p.pos = save
						}
					} else {
						p.pos = save
					}
				}
			}
			if opNode == nil {
				// end of the expression: reduce all the
				// way down
				for leftOp != nil {
					if err := leftOp.AddOperand(operand); err != nil {
						return nil, p.errorf("%v", err)
					}
					operand = leftOp
					popLeft()
				}
				return operand, nil
			}
			rightOp = opNode
		}
		// step 3: bind the operand left or right
		for {
			if leftOp == nil || prec(leftOp) < prec(rightOp) || operand == nil {
				rb, ok := rightOp.(expr.Builder)
				if !ok {
					return nil, p.errorf("%T is not an operator", rightOp)
				}
				if operand != nil {
					if err := rb.AddOperand(operand); err != nil {
						return nil, p.errorf("%v", err)
					}
				}
				if leftOp != nil {
					opStack = append(opStack, leftOp)
				}
				leftOp = rb
				break
			}
			if err := leftOp.AddOperand(operand); err != nil {
				return nil, p.errorf("%v", err)
			}
			operand = leftOp
			popLeft()
		}
	}
}

// commonAtom parses the next atom of a common
// expression. It may produce an unbound prefix operator
// (not, negate), and may rewrite a pending not operator
// when the input turns out to end with "not" used as a
// property name.
func (p *parser) commonAtom(leftOp *expr.Builder, popLeft func()) (expr.Node, error) {
	c := p.peek()
	switch {
	case c == '\'':
		s, err := p.stringValue()
		if err != nil {
			return nil, err
		}
		return expr.String(s), nil
	case isDigit(c):
		return p.primitiveLiteral()
	case c == '@':
		p.pos++
		name, ok := p.identifier()
		if !ok {
			return nil, p.errorf("expected parameter name")
		}
		return expr.Param(name), nil
	case c == '[' || c == '{':
		return p.arrayOrObject()
	case c == '$':
		p.pos++
		name, ok := p.identifier()
		if !ok {
			return nil, p.errorf("expected identifier after '$'")
		}
		switch name {
		case "it":
			return expr.It{}, nil
		case "root":
			return expr.Root{}, nil
		case "count":
			return expr.Count{}, nil
		}
		return nil, p.errorf("expected $it, $root or $count")
	case c == '+':
		return p.primitiveLiteral()
	case c == '(':
		p.pos++
		p.bws()
		inner, err := p.commonExpr()
		if err != nil {
			return nil, err
		}
		p.bws()
		if err := p.require(")"); err != nil {
			return nil, err
		}
		return inner, nil
	case c == '-':
		// a leading minus is a negative literal when
		// digits or INF follow, otherwise negation; the
		// literal parser must see the sign so values at
		// the bottom of the int64 range survive
		save := p.pos
		p.pos++
		if p.matchDigit() || p.match("INF") {
			p.pos = save
			return p.primitiveLiteral()
		}
		p.bws()
		return &expr.Negate{}, nil
	}
	save := p.pos
	name, ok := p.identifier()
	if !ok {
		// an expression may end with "not" used as a
		// plain property name
		if ln, isNot := (*leftOp).(*expr.Not); isNot && ln.Expr == nil {
			popLeft()
			return expr.Ident("not"), nil
		}
		return nil, p.errorf("expected expression")
	}
	var qname names.QualifiedName
	qualified := false
	if p.peek() == '.' {
		p.pos = save
		var err error
		qname, err = p.qualifiedName()
		if err != nil {
			return nil, err
		}
		qualified = true
	}
	switch {
	case p.peek() == '\'':
		// name+quote is duration, binary or geo;
		// qname+quote is an enum literal
		p.pos = save
		return p.primitiveLiteral()
	case p.peek() == '-' && len(name) == 8 && !qualified:
		// a guid whose first group scanned as a name
		p.pos = save
		return p.primitiveLiteral()
	case p.peek() == '(':
		var callee expr.Node
		if qualified {
			callee = expr.QName(qname)
		} else {
			callee = expr.Ident(name)
		}
		return p.callChain(callee)
	case !qualified && name == "not" && p.bws() > 0:
		return &expr.Not{}, nil
	case qualified:
		return expr.QName(qname), nil
	}
	return expr.Ident(name), nil
}

// callChain parses one or more argument lists applied to
// callee. Chained lists are legal: a function returning
// a collection can take a key predicate directly, as in
// Top10Products(region=1)(4).
func (p *parser) callChain(callee expr.Node) (expr.Node, error) {
	for p.acceptByte('(') {
		call := &expr.Call{}
		args := &expr.Args{}
		if err := call.AddOperand(callee); err != nil {
			return nil, p.errorf("%v", err)
		}
		if err := call.AddOperand(args); err != nil {
			return nil, p.errorf("%v", err)
		}
		comma := false
		p.bws()
		for !p.acceptByte(')') {
			if p.eof() {
				return nil, p.errorf("expected ')'")
			}
			if comma {
				if err := p.require(","); err != nil {
					return nil, err
				}
				p.bws()
			} else {
				comma = true
			}
			arg, err := p.commonExpr()
			if err != nil {
				return nil, err
			}
			if err := args.AddOperand(arg); err != nil {
				return nil, p.errorf("%v", err)
			}
			p.bws()
		}
		callee = call
	}
	return callee, nil
}

// arrayOrObject parses the JSON collection and record
// constructors of the inline expression syntax.
func (p *parser) arrayOrObject() (expr.Node, error) {
	p.bws()
	if p.acceptByte('[') {
		coll := &expr.Collection{}
		p.bws()
		// all items of one array use the same production
		kind := 0
		const (
			complexItem = 1
			rootItem    = 2
			literalItem = 3
		)
		for !p.acceptByte(']') {
			if p.eof() {
				return nil, p.errorf("expected ']'")
			}
			if kind != 0 {
				if err := p.require(","); err != nil {
					return nil, err
				}
				p.bws()
			} else {
				switch {
				case p.match("{"):
					kind = complexItem
				case p.match("$"):
					kind = rootItem
				default:
					kind = literalItem
				}
			}
			var item expr.Node
			var err error
			switch kind {
			case complexItem:
				item, err = p.complexInURI()
			case rootItem:
				item, err = p.rootExpr()
			default:
				item, err = p.jsonLiteral()
			}
			if err != nil {
				return nil, err
			}
			if err := coll.AddOperand(item); err != nil {
				return nil, p.errorf("%v", err)
			}
			p.bws()
		}
		return coll, nil
	}
	if p.match("{") {
		return p.complexInURI()
	}
	return nil, p.errorf("expected array or object")
}

func (p *parser) rootExpr() (expr.Node, error) {
	n, err := p.commonExpr()
	if err != nil {
		return nil, err
	}
	if !expr.IsRoot(n) {
		return nil, p.errorf("expected $root expression")
	}
	return n, nil
}

func (p *parser) complexInURI() (expr.Node, error) {
	p.bws()
	if err := p.require("{"); err != nil {
		return nil, err
	}
	p.bws()
	rec := &expr.Record{}
	for !p.acceptByte('}') {
		if p.eof() {
			return nil, p.errorf("expected '}'")
		}
		if len(rec.Fields) > 0 {
			if err := p.require(","); err != nil {
				return nil, err
			}
			p.bws()
		}
		name, err := p.jsonString()
		if err != nil {
			return nil, err
		}
		p.bws()
		if err := p.require(":"); err != nil {
			return nil, err
		}
		p.bws()
		field := &expr.MemberBind{}
		var item expr.Node
		if strings.HasPrefix(name, "@") {
			// an annotation member: term reference name
			// and no $root in the value
			tr, ok := parseTermRef(name)
			if !ok {
				return nil, p.errorf("bad term reference %q", name)
			}
			if err := field.AddOperand(tr); err != nil {
				return nil, p.errorf("%v", err)
			}
			if c := p.peek(); c == '{' || c == '[' {
				item, err = p.arrayOrObject()
				if err == nil && annotationHasRoot(item) {
					return nil, p.errorf("$root not allowed in annotation value")
				}
			} else {
				item, err = p.jsonLiteral()
			}
		} else {
			if !names.IsIdentifier(name) {
				return nil, p.errorf("bad member name %q", name)
			}
			if err := field.AddOperand(expr.Ident(name)); err != nil {
				return nil, p.errorf("%v", err)
			}
			switch c := p.peek(); {
			case c == '{' || c == '[':
				item, err = p.arrayOrObject()
			case c == '$':
				item, err = p.rootExpr()
			default:
				item, err = p.jsonLiteral()
			}
		}
		if err != nil {
			return nil, err
		}
		if err := field.AddOperand(item); err != nil {
			return nil, p.errorf("%v", err)
		}
		if err := rec.AddOperand(field); err != nil {
			return nil, p.errorf("%v", err)
		}
		p.bws()
	}
	return rec, nil
}

func annotationHasRoot(n expr.Node) bool {
	coll, ok := n.(*expr.Collection)
	return ok && len(coll.Items) > 0 && expr.IsRoot(coll.Items[0])
}

// parseTermRef parses "@" qualifiedName ["#" identifier].
func parseTermRef(s string) (expr.TermRef, bool) {
	s = strings.TrimPrefix(s, "@")
	qualifier := ""
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s, qualifier = s[:i], s[i+1:]
		if !names.IsIdentifier(qualifier) {
			return expr.TermRef{}, false
		}
	}
	qname, err := names.ParseQualifiedName(s)
	if err != nil {
		return expr.TermRef{}, false
	}
	return expr.TermRef{Term: qname, Qualifier: qualifier}, true
}

// jsonLiteral parses primitiveLiteralInJSON.
func (p *parser) jsonLiteral() (expr.Node, error) {
	switch c := p.peek(); {
	case c == '"':
		s, err := p.jsonString()
		if err != nil {
			return nil, err
		}
		return expr.String(s), nil
	case isDigit(c) || c == '-':
		return p.jsonNumber()
	case c == 't':
		if err := p.require("true"); err != nil {
			return nil, err
		}
		return expr.Bool(true), nil
	case c == 'f':
		if err := p.require("false"); err != nil {
			return nil, err
		}
		return expr.Bool(false), nil
	case c == 'n':
		if err := p.require("null"); err != nil {
			return nil, err
		}
		return expr.Null{}, nil
	}
	return nil, p.errorf("expected JSON literal")
}

func (p *parser) jsonString() (string, error) {
	if err := p.require(`"`); err != nil {
		return "", err
	}
	var sb strings.Builder
	for {
		if p.eof() {
			return "", p.errorf("unterminated string")
		}
		c := p.src[p.pos]
		p.pos++
		switch c {
		case '"':
			return sb.String(), nil
		case '\\':
			r, err := p.jsonEscape()
			if err != nil {
				return "", err
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte(c)
		}
	}
}

// jsonEscape decodes one escape sequence, the backslash
// already consumed. Surrogate pairs decode to a single
// rune.
func (p *parser) jsonEscape() (rune, error) {
	if p.eof() {
		return 0, p.errorf("unterminated escape")
	}
	c := p.src[p.pos]
	p.pos++
	switch c {
	case '"', '\\', '/':
		return rune(c), nil
	case 'b':
		return '\b', nil
	case 'f':
		return '\f', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'u':
		h, ok := p.hexDigits(4)
		if !ok {
			return 0, p.errorf("expected 4 hex digits")
		}
		v, _ := strconv.ParseUint(h, 16, 32)
		r := rune(v)
		if utf16.IsSurrogate(r) && p.accept(`\u`) {
			h2, ok := p.hexDigits(4)
			if !ok {
				return 0, p.errorf("expected 4 hex digits")
			}
			v2, _ := strconv.ParseUint(h2, 16, 32)
			return utf16.DecodeRune(r, rune(v2)), nil
		}
		return r, nil
	}
	return 0, p.errorf("bad escape %q", c)
}

func (p *parser) jsonNumber() (expr.Node, error) {
	save := p.pos
	p.acceptByte('-')
	if _, ok := p.digits(1, -1); !ok {
		return nil, p.errorf("expected digits")
	}
	frac := false
	if p.acceptByte('.') {
		if _, ok := p.digits(1, -1); !ok {
			return nil, p.errorf("expected fraction digits")
		}
		frac = true
	}
	exp := false
	if c := p.peek(); c == 'e' || c == 'E' {
		p.pos++
		if c := p.peek(); c == '-' || c == '+' {
			p.pos++
		}
		if _, ok := p.digits(1, -1); !ok {
			return nil, p.errorf("expected exponent digits")
		}
		exp = true
	}
	text := p.src[save:p.pos]
	switch {
	case exp:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.errorf("bad number %q", text)
		}
		return expr.Double{Value: v, Literal: text}, nil
	case frac:
		r, ok := new(big.Rat).SetString(text)
		if !ok {
			return nil, p.errorf("bad number %q", text)
		}
		return expr.Decimal{Value: r, Literal: text}, nil
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, p.errorf("bad number %q", text)
	}
	return expr.Int64(v), nil
}
