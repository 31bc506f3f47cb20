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
	"math/big"

	"github.com/google/uuid"

	"github.com/odatakit/odex/date"
	"github.com/odatakit/odex/geo"
	"github.com/odatakit/odex/names"
)

// Unsupported fails every evaluation operation with an
// UnsupportedError. Backends embed it alongside Env and
// override only the operations they implement, so adding
// an operation to Evaluator never silently changes the
// meaning of an existing backend.
type Unsupported[T any] struct{}

func unsup[T any](op string) (T, error) {
	var zero T
	return zero, &UnsupportedError{Op: op}
}

func (Unsupported[T]) Null() (T, error)               { return unsup[T]("null") }
func (Unsupported[T]) Boolean(bool) (T, error)        { return unsup[T]("boolean") }
func (Unsupported[T]) Guid(uuid.UUID) (T, error)      { return unsup[T]("guid") }
func (Unsupported[T]) Date(date.Date) (T, error)      { return unsup[T]("date") }
func (Unsupported[T]) Int64(int64) (T, error)         { return unsup[T]("int64") }
func (Unsupported[T]) String(string) (T, error)       { return unsup[T]("string") }
func (Unsupported[T]) Binary([]byte) (T, error)       { return unsup[T]("binary") }

func (Unsupported[T]) DateTimeOffset(date.DateTimeOffset, string) (T, error) {
	return unsup[T]("dateTimeOffset")
}

func (Unsupported[T]) TimeOfDay(date.TimeOfDay, string) (T, error) {
	return unsup[T]("timeOfDay")
}

func (Unsupported[T]) Decimal(*big.Rat, string) (T, error) {
	return unsup[T]("decimal")
}

func (Unsupported[T]) Double(float64, string) (T, error) {
	return unsup[T]("double")
}

func (Unsupported[T]) Duration(date.Duration, string) (T, error) {
	return unsup[T]("duration")
}

func (Unsupported[T]) Enum(names.EnumLiteral) (T, error) {
	return unsup[T]("enum")
}

func (Unsupported[T]) Geography(geo.Literal, string) (T, error) {
	return unsup[T]("geography")
}

func (Unsupported[T]) Geometry(geo.Literal, string) (T, error) {
	return unsup[T]("geometry")
}

func (Unsupported[T]) Parameter(string) (T, error)  { return unsup[T]("parameter alias") }
func (Unsupported[T]) Root() (T, error)             { return unsup[T]("$root") }
func (Unsupported[T]) ImplicitVariable() (T, error) { return unsup[T]("$it") }

func (Unsupported[T]) Reference(names.QualifiedName) (T, error) {
	return unsup[T]("labeled element reference")
}

func (Unsupported[T]) Collection([]Node) (T, error)       { return unsup[T]("collection") }
func (Unsupported[T]) Record([]*MemberBind) (T, error)    { return unsup[T]("record") }

func (Unsupported[T]) FirstMember(names.Segment) (T, error) {
	return unsup[T]("first member")
}

func (Unsupported[T]) Member(names.Segment) (T, error)  { return unsup[T]("member") }
func (Unsupported[T]) MemberArgs(*Args) (T, error)      { return unsup[T]("member arguments") }
func (Unsupported[T]) MemberCount() (T, error)          { return unsup[T]("$count") }
func (Unsupported[T]) MemberAny(string, Node) (T, error) { return unsup[T]("any") }
func (Unsupported[T]) MemberAll(string, Node) (T, error) { return unsup[T]("all") }
func (Unsupported[T]) Bind(string, T) (T, error)        { return unsup[T]("bind") }

func (Unsupported[T]) And(T, T) (T, error)    { return unsup[T]("and") }
func (Unsupported[T]) Or(T, T) (T, error)     { return unsup[T]("or") }
func (Unsupported[T]) Not(T) (T, error)       { return unsup[T]("not") }
func (Unsupported[T]) Eq(T, T) (T, error)     { return unsup[T]("eq") }
func (Unsupported[T]) Ne(T, T) (T, error)     { return unsup[T]("ne") }
func (Unsupported[T]) Lt(T, T) (T, error)     { return unsup[T]("lt") }
func (Unsupported[T]) Le(T, T) (T, error)     { return unsup[T]("le") }
func (Unsupported[T]) Gt(T, T) (T, error)     { return unsup[T]("gt") }
func (Unsupported[T]) Ge(T, T) (T, error)     { return unsup[T]("ge") }
func (Unsupported[T]) Has(T, T) (T, error)    { return unsup[T]("has") }
func (Unsupported[T]) Add(T, T) (T, error)    { return unsup[T]("add") }
func (Unsupported[T]) Sub(T, T) (T, error)    { return unsup[T]("sub") }
func (Unsupported[T]) Mul(T, T) (T, error)    { return unsup[T]("mul") }
func (Unsupported[T]) Div(T, T) (T, error)    { return unsup[T]("div") }
func (Unsupported[T]) Mod(T, T) (T, error)    { return unsup[T]("mod") }
func (Unsupported[T]) Negate(T) (T, error)    { return unsup[T]("negate") }
func (Unsupported[T]) If(T, T, *T) (T, error) { return unsup[T]("conditional") }

func (Unsupported[T]) MinDateTime() (T, error)        { return unsup[T]("mindatetime") }
func (Unsupported[T]) MaxDateTime() (T, error)        { return unsup[T]("maxdatetime") }
func (Unsupported[T]) Now() (T, error)                { return unsup[T]("now") }
func (Unsupported[T]) Length(T) (T, error)            { return unsup[T]("length") }
func (Unsupported[T]) ToLower(T) (T, error)           { return unsup[T]("tolower") }
func (Unsupported[T]) ToUpper(T) (T, error)           { return unsup[T]("toupper") }
func (Unsupported[T]) Trim(T) (T, error)              { return unsup[T]("trim") }
func (Unsupported[T]) Year(T) (T, error)              { return unsup[T]("year") }
func (Unsupported[T]) Month(T) (T, error)             { return unsup[T]("month") }
func (Unsupported[T]) Day(T) (T, error)               { return unsup[T]("day") }
func (Unsupported[T]) Hour(T) (T, error)              { return unsup[T]("hour") }
func (Unsupported[T]) Minute(T) (T, error)            { return unsup[T]("minute") }
func (Unsupported[T]) Second(T) (T, error)            { return unsup[T]("second") }
func (Unsupported[T]) FractionalSeconds(T) (T, error) { return unsup[T]("fractionalseconds") }
func (Unsupported[T]) TotalSeconds(T) (T, error)      { return unsup[T]("totalseconds") }
func (Unsupported[T]) DateOf(T) (T, error)            { return unsup[T]("date method") }
func (Unsupported[T]) TimeOf(T) (T, error)            { return unsup[T]("time method") }
func (Unsupported[T]) TotalOffsetMinutes(T) (T, error) {
	return unsup[T]("totaloffsetminutes")
}
func (Unsupported[T]) Round(T) (T, error)             { return unsup[T]("round") }
func (Unsupported[T]) Floor(T) (T, error)             { return unsup[T]("floor") }
func (Unsupported[T]) Ceiling(T) (T, error)           { return unsup[T]("ceiling") }
func (Unsupported[T]) Contains(T, T) (T, error)       { return unsup[T]("contains") }
func (Unsupported[T]) StartsWith(T, T) (T, error)     { return unsup[T]("startswith") }
func (Unsupported[T]) EndsWith(T, T) (T, error)       { return unsup[T]("endswith") }
func (Unsupported[T]) IndexOf(T, T) (T, error)        { return unsup[T]("indexof") }
func (Unsupported[T]) Concat(T, T) (T, error)         { return unsup[T]("concat") }
func (Unsupported[T]) Substring(T, T, *T) (T, error)  { return unsup[T]("substring") }
func (Unsupported[T]) GeoLength(T) (T, error)         { return unsup[T]("geo.length") }
func (Unsupported[T]) GeoDistance(T, T) (T, error)    { return unsup[T]("geo.distance") }
func (Unsupported[T]) GeoIntersects(T, T) (T, error)  { return unsup[T]("geo.intersects") }

func (Unsupported[T]) Cast(names.QualifiedName, *T) (T, error) {
	return unsup[T]("cast")
}

func (Unsupported[T]) CastType(TypeDef, T) (T, error) {
	return unsup[T]("odata.cast")
}

func (Unsupported[T]) IsOf(names.QualifiedName, *T) (T, error) {
	return unsup[T]("isof")
}

func (Unsupported[T]) IsOfType(TypeDef, T) (T, error) {
	return unsup[T]("odata.isof")
}

func (Unsupported[T]) ODataConcat([]T) (T, error) {
	return unsup[T]("odata.concat")
}

func (Unsupported[T]) ODataFillURITemplate(T, []Node) (T, error) {
	return unsup[T]("odata.fillUriTemplate")
}

func (Unsupported[T]) ODataURIEncode(T) (T, error) {
	return unsup[T]("odata.uriEncode")
}

func (Unsupported[T]) PathExpr(names.Path) (T, error) {
	return unsup[T]("path")
}

func (Unsupported[T]) AnnotationPath(names.Path) (T, error) {
	return unsup[T]("annotation path")
}

func (Unsupported[T]) NavigationPath(names.Path) (T, error) {
	return unsup[T]("navigation property path")
}

func (Unsupported[T]) PropertyPath(names.Path) (T, error) {
	return unsup[T]("property path")
}

func (Unsupported[T]) Word(string) (T, error)   { return unsup[T]("search word") }
func (Unsupported[T]) Phrase(string) (T, error) { return unsup[T]("search phrase") }
