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
	"unicode"
	"unicode/utf8"

	"github.com/odatakit/odex/expr"
)

// searchExpr parses the cut-down expression grammar of
// $search: words and quoted phrases combined with AND,
// OR, NOT and parentheses. The driver is the same
// operator-stack loop as commonExpr with a far smaller
// atom and operator set.
func (p *parser) searchExpr() (expr.Node, error) {
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
		var rightOp expr.Node
		switch {
		case p.peek() == '"':
			phrase, err := p.searchPhrase()
			if err != nil {
				return nil, err
			}
			rightOp = expr.Phrase(phrase)
		case p.acceptByte('('):
			p.bws()
			inner, err := p.searchExpr()
			if err != nil {
				return nil, err
			}
			p.bws()
			if err := p.require(")"); err != nil {
				return nil, err
			}
			rightOp = inner
		default:
			word, ok := p.searchWord()
			switch {
			case ok:
				rightOp = expr.Word(word)
			case word == "NOT":
				if err := p.rws(); err != nil {
					return nil, err
				}
				rightOp = &expr.SearchNot{}
			default:
				return nil, p.errorf("expected search word or phrase")
			}
		}
		var operand expr.Node
		if !isUnboundUnary(rightOp) {
			operand = rightOp
			var opNode expr.Builder
			save := p.pos
			if p.bws() > 0 {
				if word, ok := p.searchWord(); !ok {
					switch word {
					case "AND":
						opNode = &expr.SearchAnd{}
					case "OR":
						opNode = &expr.SearchOr{}
					}
				}
				if opNode == nil {
					p.pos = save
				} else if err := p.rws(); err != nil {
					return nil, err
				}
			}
			if opNode == nil {
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
		for {
			if leftOp == nil || prec(leftOp) < prec(rightOp) || operand == nil {
				rb := rightOp.(expr.Builder)
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

// searchWord consumes a run of letters. The keywords
// AND, OR and NOT are not words; they are returned with
// ok false so the caller can treat them as operators. An
// empty run also reports ok false.
func (p *parser) searchWord() (string, bool) {
	start := p.pos
	for !p.eof() {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if !unicode.IsLetter(r) {
			break
		}
		p.pos += size
	}
	word := p.src[start:p.pos]
	switch word {
	case "", "AND", "OR", "NOT":
		return word, false
	}
	return word, true
}

// searchPhrase consumes a double-quoted phrase. An
// ampersand inside a phrase means the query string was
// split incorrectly upstream, so it is rejected rather
// than silently kept.
func (p *parser) searchPhrase() (string, error) {
	if err := p.require(`"`); err != nil {
		return "", err
	}
	start := p.pos
	for {
		if p.eof() || p.peek() == '&' {
			return "", p.errorf("unterminated phrase")
		}
		if p.src[p.pos] == '"' {
			break
		}
		p.pos++
	}
	phrase := p.src[start:p.pos]
	p.pos++
	if phrase == "" {
		return "", p.errorf("empty phrase")
	}
	return phrase, nil
}
