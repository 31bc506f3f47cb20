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

// Package parser parses OData URL expression syntax into
// expression trees: primitive literals, common
// expressions ($filter and friends) and the cut-down
// $search grammar. Input is assumed to be already
// percent-decoded.
package parser

import (
	"fmt"

	"github.com/odatakit/odex/expr"
	"github.com/odatakit/odex/names"
)

// SyntaxError reports the byte offset at which parsing
// failed and what was expected there.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Msg)
}

// ParseLiteral parses a complete primitiveLiteral.
func ParseLiteral(s string) (expr.Node, error) {
	p := &parser{src: s}
	n, err := p.primitiveLiteral()
	if err != nil {
		return nil, err
	}
	if err := p.requireEOF(); err != nil {
		return nil, err
	}
	return n, nil
}

// ParseCommon parses a complete commonExpr.
func ParseCommon(s string) (expr.Node, error) {
	p := &parser{src: s}
	n, err := p.commonExpr()
	if err != nil {
		return nil, err
	}
	if err := p.requireEOF(); err != nil {
		return nil, err
	}
	if !expr.IsCommon(n) {
		return nil, &SyntaxError{Pos: 0, Msg: "not a common expression"}
	}
	return n, nil
}

// ParseBoolCommon parses a complete boolCommonExpr, the
// grammar of $filter.
func ParseBoolCommon(s string) (expr.Node, error) {
	p := &parser{src: s}
	n, err := p.commonExpr()
	if err != nil {
		return nil, err
	}
	if err := p.requireEOF(); err != nil {
		return nil, err
	}
	if !expr.IsBoolCommon(n) {
		return nil, &SyntaxError{Pos: 0, Msg: "not a boolean common expression"}
	}
	return n, nil
}

// ParseSearch parses a complete searchExpr, the grammar
// of $search.
func ParseSearch(s string) (expr.Node, error) {
	p := &parser{src: s}
	n, err := p.searchExpr()
	if err != nil {
		return nil, err
	}
	if err := p.requireEOF(); err != nil {
		return nil, err
	}
	return n, nil
}

// ParseFirstMember parses a commonExpr and checks it is
// a firstMemberExpr.
func ParseFirstMember(s string) (expr.Node, error) {
	return parseChecked(s, expr.IsFirstMember, "first member expression")
}

// ParseRoot parses a commonExpr and checks it is a
// rootExpr.
func ParseRoot(s string) (expr.Node, error) {
	return parseChecked(s, expr.IsRoot, "root expression")
}

// ParseFunction parses a commonExpr and checks it is a
// functionExpr.
func ParseFunction(s string) (expr.Node, error) {
	return parseChecked(s, expr.IsFunction, "function expression")
}

func parseChecked(s string, pred func(expr.Node) bool, what string) (expr.Node, error) {
	p := &parser{src: s}
	n, err := p.commonExpr()
	if err != nil {
		return nil, err
	}
	if err := p.requireEOF(); err != nil {
		return nil, err
	}
	if !pred(n) {
		return nil, &SyntaxError{Pos: 0, Msg: "not a " + what}
	}
	return n, nil
}

// parser is a simple cursor over the decoded input.
// Productions that fail restore the position themselves
// when a caller may try an alternative.
type parser struct {
	src string
	pos int
}

func (p *parser) errorf(f string, args ...interface{}) error {
	return &SyntaxError{Pos: p.pos, Msg: fmt.Sprintf(f, args...)}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) requireEOF() error {
	if !p.eof() {
		return p.errorf("unexpected %q", p.src[p.pos:])
	}
	return nil
}

// peek returns the next byte, or 0 at end of input.
func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) match(s string) bool {
	return len(p.src)-p.pos >= len(s) && p.src[p.pos:p.pos+len(s)] == s
}

// accept consumes s if it is next.
func (p *parser) accept(s string) bool {
	if p.match(s) {
		p.pos += len(s)
		return true
	}
	return false
}

func (p *parser) acceptByte(c byte) bool {
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) require(s string) error {
	if !p.accept(s) {
		return p.errorf("expected %q", s)
	}
	return nil
}

func lowerByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func (p *parser) matchFold(s string) bool {
	if len(p.src)-p.pos < len(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if lowerByte(p.src[p.pos+i]) != lowerByte(s[i]) {
			return false
		}
	}
	return true
}

// acceptFold consumes s case-insensitively.
func (p *parser) acceptFold(s string) bool {
	if p.matchFold(s) {
		p.pos += len(s)
		return true
	}
	return false
}

func (p *parser) requireFold(s string) error {
	if !p.acceptFold(s) {
		return p.errorf("expected %q", s)
	}
	return nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (p *parser) matchDigit() bool { return isDigit(p.peek()) }

// digits consumes between min and max digits; max < 0
// means unbounded. It reports failure without moving
// when fewer than min digits are present.
func (p *parser) digits(min, max int) (string, bool) {
	start := p.pos
	for !p.eof() && isDigit(p.src[p.pos]) {
		if max >= 0 && p.pos-start >= max {
			break
		}
		p.pos++
	}
	if p.pos-start < min {
		p.pos = start
		return "", false
	}
	return p.src[start:p.pos], true
}

func (p *parser) hexDigits(n int) (string, bool) {
	start := p.pos
	for p.pos-start < n && !p.eof() && isHexDigit(p.src[p.pos]) {
		p.pos++
	}
	if p.pos-start != n {
		p.pos = start
		return "", false
	}
	return p.src[start:p.pos], true
}

// bws consumes optional whitespace and returns how much
// there was. Encoded spaces are assumed decoded already.
func (p *parser) bws() int {
	n := 0
	for c := p.peek(); c == ' ' || c == '\t'; c = p.peek() {
		p.pos++
		n++
	}
	return n
}

func (p *parser) rws() error {
	if p.bws() == 0 {
		return p.errorf("expected whitespace")
	}
	return nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// identifier consumes an odataIdentifier; it does not
// move on failure.
func (p *parser) identifier() (string, bool) {
	if !isIdentStart(p.peek()) {
		return "", false
	}
	start := p.pos
	p.pos++
	for !p.eof() && isIdentChar(p.src[p.pos]) {
		p.pos++
	}
	if p.pos-start > 128 {
		p.pos = start
		return "", false
	}
	return p.src[start:p.pos], true
}

// qualifiedName consumes identifier *("." identifier)
// requiring at least one dot.
func (p *parser) qualifiedName() (names.QualifiedName, error) {
	start := p.pos
	first, ok := p.identifier()
	if !ok {
		return names.QualifiedName{}, p.errorf("expected identifier")
	}
	parts := []string{first}
	for p.acceptByte('.') {
		next, ok := p.identifier()
		if !ok {
			return names.QualifiedName{}, p.errorf("expected identifier")
		}
		parts = append(parts, next)
	}
	if len(parts) < 2 {
		p.pos = start
		return names.QualifiedName{}, p.errorf("expected qualified name")
	}
	ns := parts[0]
	for _, s := range parts[1 : len(parts)-1] {
		ns += "." + s
	}
	return names.QualifiedName{Namespace: ns, Name: parts[len(parts)-1]}, nil
}
