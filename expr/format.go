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
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/odatakit/odex/date"
	"github.com/odatakit/odex/geo"
	"github.com/odatakit/odex/names"
)

// Text is the evaluation result of the formatting
// backends: the rendered text plus the loosest-binding
// operator in it, so a parent knows whether parentheses
// are needed without re-parsing its child.
type Text struct {
	Op   Operator
	Text string
}

// binaryFormat joins two rendered operands with op,
// parenthesizing an operand only when it binds more
// loosely than op. Equal precedence never brackets,
// which is what makes formatting idempotent.
func binaryFormat(a, b Text, op Operator, pattern string) (Text, error) {
	p := op.Precedence()
	as, bs := a.Text, b.Text
	if p > a.Op.Precedence() {
		as = "(" + as + ")"
	}
	if p > b.Op.Precedence() {
		bs = "(" + bs + ")"
	}
	return Text{Op: op, Text: fmt.Sprintf(pattern, as, bs)}, nil
}

func unaryFormat(v Text, op Operator, pattern string) (Text, error) {
	p := op.Precedence()
	vs := v.Text
	if p > v.Op.Precedence() {
		vs = "(" + vs + ")"
	}
	return Text{Op: op, Text: fmt.Sprintf(pattern, vs)}, nil
}

// Formatter renders expressions back to URL syntax. The
// output is minimally parenthesized and stable: parsing
// the output and formatting again yields the same text.
type Formatter struct {
	Env[Text]
}

// Format renders n in URL expression syntax.
func Format(n Node) (string, error) {
	var f Formatter
	f.Reset(nil)
	t, err := Evaluate[Text](n, &f)
	if err != nil {
		return "", err
	}
	return t.Text, nil
}

func atom(s string) (Text, error) {
	return Text{Op: OpAtom, Text: s}, nil
}

func call(s string) (Text, error) {
	return Text{Op: OpCall, Text: s}, nil
}

func (f *Formatter) Null() (Text, error)          { return atom("null") }
func (f *Formatter) Int64(v int64) (Text, error)  { return atom(strconv.FormatInt(v, 10)) }
func (f *Formatter) String(v string) (Text, error) { return atom(Quote(v)) }

func (f *Formatter) Boolean(v bool) (Text, error) {
	if v {
		return atom("true")
	}
	return atom("false")
}

func (f *Formatter) Guid(v uuid.UUID) (Text, error) {
	return atom(strings.ToUpper(v.String()))
}

func (f *Formatter) Date(v date.Date) (Text, error) {
	return atom(v.String())
}

func (f *Formatter) DateTimeOffset(v date.DateTimeOffset, literal string) (Text, error) {
	if literal == "" {
		literal = v.String()
	}
	return atom(literal)
}

func (f *Formatter) TimeOfDay(v date.TimeOfDay, literal string) (Text, error) {
	if literal == "" {
		literal = v.String()
	}
	return atom(literal)
}

func (f *Formatter) Decimal(v *big.Rat, literal string) (Text, error) {
	if literal == "" {
		literal = formatRat(v)
	}
	return atom(literal)
}

func (f *Formatter) Double(v float64, literal string) (Text, error) {
	switch {
	case math.IsNaN(v):
		literal = "NaN"
	case math.IsInf(v, 1):
		literal = "INF"
	case math.IsInf(v, -1):
		literal = "-INF"
	case literal == "":
		literal = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return atom(literal)
}

func (f *Formatter) Duration(v date.Duration, literal string) (Text, error) {
	if literal == "" {
		literal = v.String()
	}
	return atom("duration'" + literal + "'")
}

func (f *Formatter) Binary(v []byte) (Text, error) {
	return atom("binary'" + base64.URLEncoding.EncodeToString(v) + "'")
}

func (f *Formatter) Enum(v names.EnumLiteral) (Text, error) {
	return atom(v.String())
}

func (f *Formatter) Geography(v geo.Literal, literal string) (Text, error) {
	if literal == "" {
		literal = v.String()
	}
	return atom("geography'" + literal + "'")
}

func (f *Formatter) Geometry(v geo.Literal, literal string) (Text, error) {
	if literal == "" {
		literal = v.String()
	}
	return atom("geometry'" + literal + "'")
}

func (f *Formatter) Parameter(name string) (Text, error) { return atom("@" + name) }
func (f *Formatter) Root() (Text, error)                 { return atom("$root") }
func (f *Formatter) ImplicitVariable() (Text, error)     { return atom("$it") }

func (f *Formatter) Reference(qname names.QualifiedName) (Text, error) {
	return atom(qname.String())
}

func (f *Formatter) Collection(items []Node) (Text, error) {
	// conditionals render with all their items: the
	// item-skipping form only matters when evaluating
	parts := make([]string, 0, len(items))
	for _, item := range items {
		s, err := f.jsonItem(item)
		if err != nil {
			return Text{}, err
		}
		parts = append(parts, s)
	}
	return Text{Op: OpCollection, Text: "[" + strings.Join(parts, ",") + "]"}, nil
}

func (f *Formatter) Record(fields []*MemberBind) (Text, error) {
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		s, err := f.jsonItem(field.Expr)
		if err != nil {
			return Text{}, err
		}
		parts = append(parts, jsonString(field.Name)+":"+s)
	}
	return Text{Op: OpRecord, Text: "{" + strings.Join(parts, ",") + "}"}, nil
}

// jsonItem renders a collection or record item in the
// JSON expression syntax: booleans, null, numbers and
// strings use their JSON encodings, any other literal is
// formatted then JSON-quoted, and path expressions go in
// unencoded. Everything else has no URL form so it gets
// an angle-bracketed rendering as a hint.
func (f *Formatter) jsonItem(n Node) (string, error) {
	switch n := n.(type) {
	case Bool:
		if n {
			return "true", nil
		}
		return "false", nil
	case Null:
		return "null", nil
	case Int64:
		return strconv.FormatInt(int64(n), 10), nil
	case String:
		return jsonString(string(n)), nil
	case Decimal:
		if n.Literal != "" {
			return n.Literal, nil
		}
		return formatRat(n.Value), nil
	case Double:
		if !math.IsNaN(n.Value) && !math.IsInf(n.Value, 0) {
			b, err := json.Marshal(n.Value)
			if err == nil {
				return string(b), nil
			}
		}
		// NaN and the infinities have no JSON encoding,
		// quote them like the non-numeric literals
		t, err := Evaluate[Text](n, f)
		if err != nil {
			return "", err
		}
		return jsonString(t.Text), nil
	}
	t, err := Evaluate[Text](n, f)
	if err != nil {
		return "", err
	}
	switch {
	case isLiteral(n):
		return jsonString(t.Text), nil
	case IsRoot(n):
		return t.Text, nil
	}
	return "<" + t.Text + ">", nil
}

func (f *Formatter) FirstMember(segment names.Segment) (Text, error) {
	return atom(segment.String())
}

func (f *Formatter) Member(segment names.Segment) (Text, error) {
	if ctx := f.Context(); ctx != nil {
		return Text{Op: OpMember, Text: ctx.Text + "/" + segment.String()}, nil
	}
	return atom(segment.String())
}

func (f *Formatter) MemberArgs(args *Args) (Text, error) {
	argv, err := EvaluateArgs[Text](args, f)
	if err != nil {
		return Text{}, err
	}
	parts := make([]string, len(argv))
	for i := range argv {
		parts[i] = argv[i].Text
	}
	return Text{
		Op:   OpMember,
		Text: f.Context().Text + "(" + strings.Join(parts, ",") + ")",
	}, nil
}

func (f *Formatter) MemberCount() (Text, error) {
	return Text{Op: OpMember, Text: f.Context().Text + "/$count"}, nil
}

func (f *Formatter) MemberAny(name string, lambda Node) (Text, error) {
	if name == "" {
		return Text{Op: OpMember, Text: f.Context().Text + "/any()"}, nil
	}
	t, err := Evaluate[Text](lambda, f)
	if err != nil {
		return Text{}, err
	}
	return Text{
		Op:   OpMember,
		Text: f.Context().Text + "/any(" + name + ":" + t.Text + ")",
	}, nil
}

func (f *Formatter) MemberAll(name string, lambda Node) (Text, error) {
	t, err := Evaluate[Text](lambda, f)
	if err != nil {
		return Text{}, err
	}
	return Text{
		Op:   OpMember,
		Text: f.Context().Text + "/all(" + name + ":" + t.Text + ")",
	}, nil
}

func (f *Formatter) Bind(name string, value Text) (Text, error) {
	return Text{Op: OpBind, Text: name + "=" + value.Text}, nil
}

func (f *Formatter) And(a, b Text) (Text, error) {
	return binaryFormat(a, b, OpAnd, "%s and %s")
}

func (f *Formatter) Or(a, b Text) (Text, error) {
	return binaryFormat(a, b, OpOr, "%s or %s")
}

func (f *Formatter) Not(v Text) (Text, error) {
	return unaryFormat(v, OpNot, "not %s")
}

func (f *Formatter) Eq(a, b Text) (Text, error) {
	return binaryFormat(a, b, OpEq, "%s eq %s")
}

func (f *Formatter) Ne(a, b Text) (Text, error) {
	return binaryFormat(a, b, OpNe, "%s ne %s")
}

func (f *Formatter) Lt(a, b Text) (Text, error) {
	return binaryFormat(a, b, OpLt, "%s lt %s")
}

func (f *Formatter) Le(a, b Text) (Text, error) {
	return binaryFormat(a, b, OpLe, "%s le %s")
}

func (f *Formatter) Gt(a, b Text) (Text, error) {
	return binaryFormat(a, b, OpGt, "%s gt %s")
}

func (f *Formatter) Ge(a, b Text) (Text, error) {
	return binaryFormat(a, b, OpGe, "%s ge %s")
}

func (f *Formatter) Has(a, b Text) (Text, error) {
	return binaryFormat(a, b, OpHas, "%s has %s")
}

func (f *Formatter) Add(a, b Text) (Text, error) {
	return binaryFormat(a, b, OpAdd, "%s add %s")
}

func (f *Formatter) Sub(a, b Text) (Text, error) {
	return binaryFormat(a, b, OpSub, "%s sub %s")
}

func (f *Formatter) Mul(a, b Text) (Text, error) {
	return binaryFormat(a, b, OpMul, "%s mul %s")
}

func (f *Formatter) Div(a, b Text) (Text, error) {
	return binaryFormat(a, b, OpDiv, "%s div %s")
}

func (f *Formatter) Mod(a, b Text) (Text, error) {
	return binaryFormat(a, b, OpMod, "%s mod %s")
}

func (f *Formatter) Negate(v Text) (Text, error) {
	return unaryFormat(v, OpNegate, "-%s")
}

func (f *Formatter) If(test, then Text, els *Text) (Text, error) {
	if els == nil {
		return call("if(" + test.Text + "," + then.Text + ")")
	}
	return call("if(" + test.Text + "," + then.Text + "," + els.Text + ")")
}

func (f *Formatter) MinDateTime() (Text, error) { return call("mindatetime()") }
func (f *Formatter) MaxDateTime() (Text, error) { return call("maxdatetime()") }
func (f *Formatter) Now() (Text, error)         { return call("now()") }

func (f *Formatter) Length(v Text) (Text, error)  { return call("length(" + v.Text + ")") }
func (f *Formatter) ToLower(v Text) (Text, error) { return call("tolower(" + v.Text + ")") }
func (f *Formatter) ToUpper(v Text) (Text, error) { return call("toupper(" + v.Text + ")") }
func (f *Formatter) Trim(v Text) (Text, error)    { return call("trim(" + v.Text + ")") }
func (f *Formatter) Year(v Text) (Text, error)    { return call("year(" + v.Text + ")") }
func (f *Formatter) Month(v Text) (Text, error)   { return call("month(" + v.Text + ")") }
func (f *Formatter) Day(v Text) (Text, error)     { return call("day(" + v.Text + ")") }
func (f *Formatter) Hour(v Text) (Text, error)    { return call("hour(" + v.Text + ")") }
func (f *Formatter) Minute(v Text) (Text, error)  { return call("minute(" + v.Text + ")") }
func (f *Formatter) Second(v Text) (Text, error)  { return call("second(" + v.Text + ")") }
func (f *Formatter) DateOf(v Text) (Text, error)  { return call("date(" + v.Text + ")") }
func (f *Formatter) TimeOf(v Text) (Text, error)  { return call("time(" + v.Text + ")") }
func (f *Formatter) Round(v Text) (Text, error)   { return call("round(" + v.Text + ")") }
func (f *Formatter) Floor(v Text) (Text, error)   { return call("floor(" + v.Text + ")") }
func (f *Formatter) Ceiling(v Text) (Text, error) { return call("ceiling(" + v.Text + ")") }

func (f *Formatter) FractionalSeconds(v Text) (Text, error) {
	return call("fractionalseconds(" + v.Text + ")")
}

func (f *Formatter) TotalSeconds(v Text) (Text, error) {
	return call("totalseconds(" + v.Text + ")")
}

func (f *Formatter) TotalOffsetMinutes(v Text) (Text, error) {
	return call("totaloffsetminutes(" + v.Text + ")")
}

func (f *Formatter) GeoLength(v Text) (Text, error) {
	return call("geo.length(" + v.Text + ")")
}

func (f *Formatter) Contains(a, b Text) (Text, error) {
	return call("contains(" + a.Text + "," + b.Text + ")")
}

func (f *Formatter) StartsWith(a, b Text) (Text, error) {
	return call("startswith(" + a.Text + "," + b.Text + ")")
}

func (f *Formatter) EndsWith(a, b Text) (Text, error) {
	return call("endswith(" + a.Text + "," + b.Text + ")")
}

func (f *Formatter) IndexOf(a, b Text) (Text, error) {
	return call("indexof(" + a.Text + "," + b.Text + ")")
}

func (f *Formatter) Concat(a, b Text) (Text, error) {
	return call("concat(" + a.Text + "," + b.Text + ")")
}

func (f *Formatter) Substring(a, b Text, c *Text) (Text, error) {
	if c == nil {
		return call("substring(" + a.Text + "," + b.Text + ")")
	}
	return call("substring(" + a.Text + "," + b.Text + "," + c.Text + ")")
}

func (f *Formatter) GeoDistance(a, b Text) (Text, error) {
	return call("geo.distance(" + a.Text + "," + b.Text + ")")
}

func (f *Formatter) GeoIntersects(a, b Text) (Text, error) {
	return call("geo.intersects(" + a.Text + "," + b.Text + ")")
}

func (f *Formatter) Cast(typeName names.QualifiedName, value *Text) (Text, error) {
	if value == nil {
		return call("cast(" + typeName.String() + ")")
	}
	return call("cast(" + value.Text + "," + typeName.String() + ")")
}

func (f *Formatter) CastType(def TypeDef, value Text) (Text, error) {
	return call("cast(" + value.Text + "," + def.String() + ")")
}

func (f *Formatter) IsOf(typeName names.QualifiedName, value *Text) (Text, error) {
	if value == nil {
		return call("isof(" + typeName.String() + ")")
	}
	return call("isof(" + value.Text + "," + typeName.String() + ")")
}

func (f *Formatter) IsOfType(def TypeDef, value Text) (Text, error) {
	return call("isof(" + value.Text + "," + def.String() + ")")
}

// odata.* functions appear in annotations rather than
// URLs; a compact rendering is still useful for logging.

func (f *Formatter) ODataConcat(args []Text) (Text, error) {
	parts := make([]string, len(args))
	for i := range args {
		parts[i] = args[i].Text
	}
	return call("odata.concat(" + strings.Join(parts, ",") + ")")
}

func (f *Formatter) ODataFillURITemplate(template Text, args []Node) (Text, error) {
	parts := []string{template.Text}
	for _, arg := range args {
		t, err := Evaluate[Text](arg, f)
		if err != nil {
			return Text{}, err
		}
		parts = append(parts, t.Text)
	}
	return call("odata.fillUriTemplate(" + strings.Join(parts, ",") + ")")
}

func (f *Formatter) ODataURIEncode(value Text) (Text, error) {
	return call("odata.uriEncode(" + value.Text + ")")
}

// The path expression kinds have no URL syntax either;
// angle brackets mark the rendering as informational.

func (f *Formatter) PathExpr(path names.Path) (Text, error) {
	return Text{Op: OpMember, Text: "<Path>" + path.String() + "</Path>"}, nil
}

func (f *Formatter) AnnotationPath(path names.Path) (Text, error) {
	return Text{
		Op:   OpMember,
		Text: "<AnnotationPath>" + path.String() + "</AnnotationPath>",
	}, nil
}

func (f *Formatter) NavigationPath(path names.Path) (Text, error) {
	return Text{
		Op:   OpMember,
		Text: "<NavigationPropertyPath>" + path.String() + "</NavigationPropertyPath>",
	}, nil
}

func (f *Formatter) PropertyPath(path names.Path) (Text, error) {
	return Text{
		Op:   OpMember,
		Text: "<PropertyPath>" + path.String() + "</PropertyPath>",
	}, nil
}

func (f *Formatter) Word(v string) (Text, error) {
	return Text{}, exprErrf("search word outside search expression")
}

func (f *Formatter) Phrase(v string) (Text, error) {
	return Text{}, exprErrf("search phrase outside search expression")
}

// SearchFormatter renders $search expressions: words and
// quoted phrases joined by upper-case AND, OR and NOT,
// with the same minimal-parenthesis rule as Formatter.
type SearchFormatter struct {
	Env[Text]
	Unsupported[Text]
}

// FormatSearch renders n in $search syntax.
func FormatSearch(n Node) (string, error) {
	var f SearchFormatter
	f.Reset(nil)
	t, err := Evaluate[Text](n, &f)
	if err != nil {
		return "", err
	}
	return t.Text, nil
}

func (f *SearchFormatter) Word(v string) (Text, error) { return atom(v) }

func (f *SearchFormatter) Phrase(v string) (Text, error) {
	return atom(`"` + v + `"`)
}

func (f *SearchFormatter) And(a, b Text) (Text, error) {
	return binaryFormat(a, b, OpAnd, "%s AND %s")
}

func (f *SearchFormatter) Or(a, b Text) (Text, error) {
	return binaryFormat(a, b, OpOr, "%s OR %s")
}

func (f *SearchFormatter) Not(v Text) (Text, error) {
	return unaryFormat(v, OpNot, "NOT %s")
}

func jsonString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return strconv.Quote(s)
	}
	return string(b)
}

// formatRat renders an exact decimal without trailing
// zeros. Values parsed from literals keep their original
// text; this covers programmatic construction.
func formatRat(v *big.Rat) string {
	if v == nil {
		return "0"
	}
	if v.IsInt() {
		return v.Num().String()
	}
	s := v.FloatString(30)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s
}
