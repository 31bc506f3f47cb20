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
	"strconv"

	"github.com/odatakit/odex/geo"
)

// geoLiteralValue parses the body of a geography or
// geometry literal: the SRID prefix then one WKT-style
// shape. Keywords are case-insensitive.
func (p *parser) geoLiteralValue() (geo.Literal, error) {
	srid, err := p.sridLiteral()
	if err != nil {
		return geo.Literal{}, err
	}
	var shape geo.Shape
	switch {
	case p.matchFold("multil"):
		shape, err = p.multiLineString()
	case p.matchFold("multipoi"):
		shape, err = p.multiPoint()
	case p.matchFold("multipol"):
		shape, err = p.multiPolygon()
	case p.matchFold("c"):
		shape, err = p.geoCollection()
	case p.matchFold("l"):
		shape, err = p.lineString()
	case p.matchFold("poi"):
		shape, err = p.point()
	case p.matchFold("pol"):
		shape, err = p.polygon()
	default:
		err = p.errorf("expected geo shape")
	}
	if err != nil {
		return geo.Literal{}, err
	}
	return geo.Literal{SRID: srid, Shape: shape}, nil
}

// sridLiteral parses SRID=1*5DIGIT ";".
func (p *parser) sridLiteral() (int, error) {
	if err := p.requireFold("srid"); err != nil {
		return 0, err
	}
	if err := p.require("="); err != nil {
		return 0, err
	}
	digits, ok := p.digits(1, 5)
	if !ok {
		return 0, p.errorf("expected SRID digits")
	}
	if err := p.require(";"); err != nil {
		return 0, err
	}
	srid, err := strconv.Atoi(digits)
	if err != nil {
		return 0, p.errorf("bad SRID")
	}
	return srid, nil
}

func (p *parser) position() (geo.Point, error) {
	x, _, err := p.doubleValue()
	if err != nil {
		return geo.Point{}, err
	}
	if err := p.require(" "); err != nil {
		return geo.Point{}, err
	}
	y, _, err := p.doubleValue()
	if err != nil {
		return geo.Point{}, err
	}
	return geo.Point{X: x, Y: y}, nil
}

func (p *parser) positionList() ([]geo.Point, error) {
	if err := p.require("("); err != nil {
		return nil, err
	}
	var pts []geo.Point
	for {
		pt, err := p.position()
		if err != nil {
			return nil, err
		}
		pts = append(pts, pt)
		if !p.acceptByte(',') {
			break
		}
	}
	if err := p.require(")"); err != nil {
		return nil, err
	}
	return pts, nil
}

func (p *parser) pointData() (geo.Point, error) {
	if err := p.require("("); err != nil {
		return geo.Point{}, err
	}
	pt, err := p.position()
	if err != nil {
		return geo.Point{}, err
	}
	if err := p.require(")"); err != nil {
		return geo.Point{}, err
	}
	return pt, nil
}

func (p *parser) point() (geo.Shape, error) {
	if err := p.requireFold("point"); err != nil {
		return nil, err
	}
	return p.pointData()
}

func (p *parser) lineString() (geo.Shape, error) {
	if err := p.requireFold("linestring"); err != nil {
		return nil, err
	}
	pts, err := p.positionList()
	if err != nil {
		return nil, err
	}
	return geo.LineString(pts), nil
}

func (p *parser) ringData() (geo.Ring, error) {
	pts, err := p.positionList()
	if err != nil {
		return nil, err
	}
	return geo.Ring(pts), nil
}

func (p *parser) polygonData() (geo.Polygon, error) {
	if err := p.require("("); err != nil {
		return nil, err
	}
	var rings []geo.Ring
	for {
		r, err := p.ringData()
		if err != nil {
			return nil, err
		}
		rings = append(rings, r)
		if !p.acceptByte(',') {
			break
		}
	}
	if err := p.require(")"); err != nil {
		return nil, err
	}
	return geo.Polygon(rings), nil
}

func (p *parser) polygon() (geo.Shape, error) {
	if err := p.requireFold("polygon"); err != nil {
		return nil, err
	}
	return p.polygonData()
}

func (p *parser) multiPoint() (geo.Shape, error) {
	if err := p.requireFold("multipoint("); err != nil {
		return nil, err
	}
	var pts []geo.Point
	if p.peek() == '(' {
		for {
			pt, err := p.pointData()
			if err != nil {
				return nil, err
			}
			pts = append(pts, pt)
			if !p.acceptByte(',') {
				break
			}
		}
	}
	if err := p.require(")"); err != nil {
		return nil, err
	}
	return geo.MultiPoint(pts), nil
}

func (p *parser) multiLineString() (geo.Shape, error) {
	if err := p.requireFold("multilinestring("); err != nil {
		return nil, err
	}
	var lines []geo.LineString
	if p.peek() == '(' {
		for {
			pts, err := p.positionList()
			if err != nil {
				return nil, err
			}
			lines = append(lines, geo.LineString(pts))
			if !p.acceptByte(',') {
				break
			}
		}
	}
	if err := p.require(")"); err != nil {
		return nil, err
	}
	return geo.MultiLineString(lines), nil
}

func (p *parser) multiPolygon() (geo.Shape, error) {
	if err := p.requireFold("multipolygon("); err != nil {
		return nil, err
	}
	var polys []geo.Polygon
	if p.peek() == '(' {
		for {
			poly, err := p.polygonData()
			if err != nil {
				return nil, err
			}
			polys = append(polys, poly)
			if !p.acceptByte(',') {
				break
			}
		}
	}
	if err := p.require(")"); err != nil {
		return nil, err
	}
	return geo.MultiPolygon(polys), nil
}

func (p *parser) geoCollection() (geo.Shape, error) {
	if err := p.requireFold("collection("); err != nil {
		return nil, err
	}
	var shapes []geo.Shape
	for {
		s, err := p.geoShape()
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, s)
		if !p.acceptByte(',') {
			break
		}
	}
	if err := p.require(")"); err != nil {
		return nil, err
	}
	return geo.Collection(shapes), nil
}

// geoShape parses one shape inside a collection.
func (p *parser) geoShape() (geo.Shape, error) {
	switch {
	case p.matchFold("multil"):
		return p.multiLineString()
	case p.matchFold("multipoi"):
		return p.multiPoint()
	case p.matchFold("multipol"):
		return p.multiPolygon()
	case p.matchFold("c"):
		return p.geoCollection()
	case p.matchFold("l"):
		return p.lineString()
	case p.matchFold("poi"):
		return p.point()
	case p.matchFold("pol"):
		return p.polygon()
	}
	return nil, p.errorf("expected geo shape")
}
