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
	"encoding/base64"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/odatakit/odex/date"
	"github.com/odatakit/odex/expr"
	"github.com/odatakit/odex/names"
)

// primitiveLiteral parses one primitive literal. The
// grammar makes many literal kinds start alike, so the
// kind is picked with a bounded look at the character
// that follows the common prefix, never by re-parsing
// the whole input per kind:
//
//	digits then ':'     timeOfDay
//	digits then '-'     date, dateTimeOffset or guid
//	digits then '.'/'e' decimal or double (or guid)
//	name then '\''      duration, binary or geo selector
//	qname then '\''     enum
func (p *parser) primitiveLiteral() (expr.Node, error) {
	save := p.pos
	c := p.peek()
	switch {
	case c == '-' || isDigit(c):
		iv, ok := p.scanInt64()
		if !ok {
			// only -INF reaches here
			v, literal, err := p.doubleValue()
			if err != nil {
				return nil, err
			}
			return expr.Double{Value: v, Literal: literal}, nil
		}
		switch {
		case p.peek() == '.':
			p.pos = save
			return p.decimalOrDouble()
		case p.peek() == '-':
			p.pos = save
			if d, ok := p.scanDate(); ok {
				if c := p.peek(); c == 'T' || c == 't' {
					p.pos = save
					return p.dateTimeOffsetValue()
				}
				return expr.Date{Value: d}, nil
			}
			// a guid that looks numeric up front
			return p.guidLiteral()
		case p.peek() == ':':
			p.pos = save
			return p.timeOfDayValue()
		case p.peek() == 'e' || p.peek() == 'E':
			// integer exponent or a guid like 11111111e111-...
			if g, ok := p.scanGuid(save); ok {
				return g, nil
			}
			p.pos = save
			v, literal, err := p.doubleValue()
			if err != nil {
				return nil, err
			}
			return expr.Double{Value: v, Literal: literal}, nil
		case isHexDigit(p.peek()):
			p.pos = save
			return p.guidLiteral()
		default:
			return expr.Int64(iv), nil
		}
	case c == '+':
		p.pos++
		if _, ok := p.scanInt64(); !ok {
			return nil, p.errorf("expected number")
		}
		if c := p.peek(); c == '.' || c == 'e' || c == 'E' {
			p.pos = save
			return p.decimalOrDouble()
		}
		v, err := strconv.ParseInt(p.src[save:p.pos], 10, 64)
		if err != nil {
			return nil, p.errorf("int64 out of range")
		}
		return expr.Int64(v), nil
	case c == '\'':
		s, err := p.stringValue()
		if err != nil {
			return nil, err
		}
		return expr.String(s), nil
	}
	name, ok := p.identifier()
	if !ok {
		return nil, p.errorf("expected literal")
	}
	switch {
	case p.peek() == '.':
		// enum: qualified type name then quoted values
		p.pos = save
		qname, err := p.qualifiedName()
		if err != nil {
			return nil, err
		}
		if err := p.require("'"); err != nil {
			return nil, err
		}
		values, err := p.enumValue()
		if err != nil {
			return nil, err
		}
		if err := p.require("'"); err != nil {
			return nil, err
		}
		return expr.Enum{Value: names.EnumLiteral{Type: qname, Values: values}}, nil
	case p.peek() == '-':
		// 8 leading hex digits can scan as a name
		p.pos = save
		return p.guidLiteral()
	case p.peek() == '\'':
		p.pos++
		return p.selectorLiteral(strings.ToLower(name))
	}
	switch {
	case name == "null":
		return expr.Null{}, nil
	case name == "NaN":
		return expr.Double{Value: math.NaN(), Literal: "NaN"}, nil
	case name == "INF":
		return expr.Double{Value: math.Inf(1), Literal: "INF"}, nil
	case strings.EqualFold(name, "true"):
		return expr.Bool(true), nil
	case strings.EqualFold(name, "false"):
		return expr.Bool(false), nil
	}
	p.pos = save
	return nil, p.errorf("expected literal")
}

// selectorLiteral parses the quoted body of the
// name-prefixed literals; the opening quote is consumed.
func (p *parser) selectorLiteral(selector string) (expr.Node, error) {
	switch selector {
	case "duration":
		save := p.pos
		end := strings.IndexByte(p.src[save:], '\'')
		if end < 0 {
			return nil, p.errorf("unterminated duration")
		}
		literal := p.src[save : save+end]
		d, ok := date.ParseDuration(literal)
		if !ok {
			return nil, p.errorf("bad duration %q", literal)
		}
		p.pos = save + end + 1
		return expr.Duration{Value: d, Literal: literal}, nil
	case "binary":
		data, err := p.binaryValue()
		if err != nil {
			return nil, err
		}
		if err := p.require("'"); err != nil {
			return nil, err
		}
		return expr.Binary(data), nil
	case "geography", "geometry":
		save := p.pos
		lit, err := p.geoLiteralValue()
		if err != nil {
			return nil, err
		}
		literal := p.src[save:p.pos]
		if err := p.require("'"); err != nil {
			return nil, err
		}
		if selector == "geography" {
			return expr.Geography{Value: lit, Literal: literal}, nil
		}
		return expr.Geometry{Value: lit, Literal: literal}, nil
	}
	return nil, p.errorf("unknown literal prefix %q", selector)
}

// decimalOrDouble re-parses a numeric literal known to
// carry a fraction or exponent.
func (p *parser) decimalOrDouble() (expr.Node, error) {
	save := p.pos
	text, err := p.decimalText()
	if err != nil {
		return nil, err
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		p.pos = save
		v, literal, err := p.doubleValue()
		if err != nil {
			return nil, err
		}
		return expr.Double{Value: v, Literal: literal}, nil
	}
	r, ok := new(big.Rat).SetString(text)
	if !ok {
		return nil, p.errorf("bad decimal %q", text)
	}
	return expr.Decimal{Value: r, Literal: text}, nil
}

// scanInt64 consumes [sign] 1*19DIGIT; it does not move
// on failure.
func (p *parser) scanInt64() (int64, bool) {
	save := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	if _, ok := p.digits(1, 19); !ok {
		p.pos = save
		return 0, false
	}
	v, err := strconv.ParseInt(p.src[save:p.pos], 10, 64)
	if err != nil {
		p.pos = save
		return 0, false
	}
	return v, true
}

func (p *parser) decimalText() (string, error) {
	save := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	if _, ok := p.digits(1, -1); !ok {
		return "", p.errorf("expected digits")
	}
	if p.acceptByte('.') {
		if _, ok := p.digits(1, -1); !ok {
			return "", p.errorf("expected fraction digits")
		}
	}
	return p.src[save:p.pos], nil
}

// doubleValue parses doubleValue including the INF and
// NaN spellings, returning the value and literal text.
func (p *parser) doubleValue() (float64, string, error) {
	save := p.pos
	switch {
	case p.accept("INF"):
		return math.Inf(1), "INF", nil
	case p.accept("NaN"):
		return math.NaN(), "NaN", nil
	case p.accept("-INF"):
		return math.Inf(-1), "-INF", nil
	}
	if _, err := p.decimalText(); err != nil {
		return 0, "", err
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		p.pos++
		if c := p.peek(); c == '-' || c == '+' {
			p.pos++
		}
		if _, ok := p.digits(1, -1); !ok {
			return 0, "", p.errorf("expected exponent digits")
		}
	}
	literal := p.src[save:p.pos]
	v, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return 0, "", p.errorf("bad double %q", literal)
	}
	return v, literal, nil
}

func (p *parser) guidLiteral() (expr.Node, error) {
	save := p.pos
	g, ok := p.scanGuid(save)
	if !ok {
		return nil, p.errorf("expected guid")
	}
	return g, nil
}

// scanGuid consumes 8-4-4-4-12 hex digits starting at
// from; it restores from on failure.
func (p *parser) scanGuid(from int) (expr.Node, bool) {
	p.pos = from
	groups := []int{8, 4, 4, 4, 12}
	for i, n := range groups {
		if i > 0 && !p.acceptByte('-') {
			p.pos = from
			return nil, false
		}
		if _, ok := p.hexDigits(n); !ok {
			p.pos = from
			return nil, false
		}
	}
	u, err := uuid.Parse(p.src[from:p.pos])
	if err != nil {
		p.pos = from
		return nil, false
	}
	return expr.Guid(u), true
}

// scanDate consumes [-] year "-" MM "-" DD; it does not
// move on failure.
func (p *parser) scanDate() (date.Date, bool) {
	save := p.pos
	p.acceptByte('-')
	if _, ok := p.digits(4, -1); !ok {
		p.pos = save
		return date.Date{}, false
	}
	if !p.acceptByte('-') {
		p.pos = save
		return date.Date{}, false
	}
	if _, ok := p.digits(2, 2); !ok {
		p.pos = save
		return date.Date{}, false
	}
	if !p.acceptByte('-') {
		p.pos = save
		return date.Date{}, false
	}
	if _, ok := p.digits(2, 2); !ok {
		p.pos = save
		return date.Date{}, false
	}
	d, ok := date.ParseDate(p.src[save:p.pos])
	if !ok {
		p.pos = save
		return date.Date{}, false
	}
	return d, true
}

func (p *parser) scanClock() bool {
	save := p.pos
	if _, ok := p.digits(2, 2); !ok {
		return false
	}
	if !p.acceptByte(':') {
		p.pos = save
		return false
	}
	if _, ok := p.digits(2, 2); !ok {
		p.pos = save
		return false
	}
	if p.acceptByte(':') {
		if _, ok := p.digits(2, 2); !ok {
			p.pos = save
			return false
		}
		if p.acceptByte('.') {
			if _, ok := p.digits(1, 9); !ok {
				p.pos = save
				return false
			}
		}
	}
	return true
}

func (p *parser) timeOfDayValue() (expr.Node, error) {
	save := p.pos
	if !p.scanClock() {
		return nil, p.errorf("expected time of day")
	}
	literal := p.src[save:p.pos]
	t, ok := date.ParseTimeOfDay(literal)
	if !ok {
		return nil, p.errorf("bad time of day %q", literal)
	}
	return expr.TimeOfDay{Value: t, Literal: literal}, nil
}

func (p *parser) dateTimeOffsetValue() (expr.Node, error) {
	save := p.pos
	if _, ok := p.scanDate(); !ok {
		return nil, p.errorf("expected date")
	}
	if c := p.peek(); c != 'T' && c != 't' {
		return nil, p.errorf("expected T")
	}
	p.pos++
	if !p.scanClock() {
		return nil, p.errorf("expected time of day")
	}
	switch c := p.peek(); {
	case c == 'Z' || c == 'z':
		p.pos++
	case c == '+' || c == '-':
		p.pos++
		if _, ok := p.digits(2, 2); !ok {
			return nil, p.errorf("expected zone hours")
		}
		if !p.acceptByte(':') {
			return nil, p.errorf("expected ':'")
		}
		if _, ok := p.digits(2, 2); !ok {
			return nil, p.errorf("expected zone minutes")
		}
	default:
		return nil, p.errorf("expected zone offset")
	}
	literal := p.src[save:p.pos]
	dt, ok := date.ParseDateTimeOffset(literal)
	if !ok {
		return nil, p.errorf("bad dateTimeOffset %q", literal)
	}
	return expr.DateTimeOffset{Value: dt, Literal: literal}, nil
}

// stringValue parses the quoted string form with the
// quote-doubling escape.
func (p *parser) stringValue() (string, error) {
	if err := p.require("'"); err != nil {
		return "", err
	}
	var sb strings.Builder
	for {
		if p.eof() {
			return "", p.errorf("unterminated string")
		}
		c := p.src[p.pos]
		p.pos++
		if c == '\'' {
			if p.acceptByte('\'') {
				sb.WriteByte('\'')
				continue
			}
			return sb.String(), nil
		}
		sb.WriteByte(c)
	}
}

func isBase64Char(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') ||
		isDigit(c) || c == '-' || c == '_'
}

// binaryValue parses the URL-safe base64 body of a
// binary literal. Trailing padding is optional but when
// present it must produce the correct length.
func (p *parser) binaryValue() ([]byte, error) {
	start := p.pos
	for !p.eof() && isBase64Char(p.src[p.pos]) {
		p.pos++
	}
	body := p.src[start:p.pos]
	switch len(body) % 4 {
	case 1:
		return nil, p.errorf("bad base64 length")
	case 2:
		p.accept("==")
		body += "=="
	case 3:
		p.accept("=")
		body += "="
	}
	data, err := base64.URLEncoding.DecodeString(body)
	if err != nil {
		return nil, p.errorf("bad base64 data")
	}
	return data, nil
}

// enumValue parses singleEnumValue *("," singleEnumValue).
// A single list mixes names with numbers only by
// mistake, so mixed lists are rejected.
func (p *parser) enumValue() ([]names.EnumValue, error) {
	var out []names.EnumValue
	sawName, sawInt := false, false
	for {
		if name, ok := p.identifier(); ok {
			out = append(out, names.EnumValue{Name: name})
			sawName = true
		} else if v, ok := p.scanInt64(); ok {
			out = append(out, names.EnumValue{Value: v})
			sawInt = true
		} else {
			return nil, p.errorf("expected enum member")
		}
		if !p.acceptByte(',') {
			break
		}
	}
	if sawName && sawInt {
		return nil, p.errorf("mixed enum member list")
	}
	return out, nil
}
