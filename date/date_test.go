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

package date

import (
	"testing"
)

func TestParseDate(t *testing.T) {
	good := []struct {
		in   string
		want Date
	}{
		{"2017-12-31", Date{2017, 12, 31}},
		{"0001-01-01", Date{1, 1, 1}},
		{"-0753-04-21", Date{-753, 4, 21}},
		{"2016-02-29", Date{2016, 2, 29}},
		{"12016-02-29", Date{12016, 2, 29}},
	}
	for i := range good {
		got, ok := ParseDate(good[i].in)
		if !ok {
			t.Errorf("%q: not accepted", good[i].in)
			continue
		}
		if got != good[i].want {
			t.Errorf("%q: got %#v", good[i].in, got)
		}
		if s := got.String(); s != good[i].in {
			t.Errorf("%q: round-trip produced %q", good[i].in, s)
		}
	}
	bad := []string{
		"", "2017-13-01", "2017-00-01", "2017-02-29",
		"2017-1-01", "17-01-01", "2017/01/01", "2017-01-32",
	}
	for i := range bad {
		if _, ok := ParseDate(bad[i]); ok {
			t.Errorf("%q: accepted", bad[i])
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	good := []struct {
		in   string
		out  string // canonical; "" means same as in
		want TimeOfDay
	}{
		{"07:59:59.999", "", TimeOfDay{7, 59, 59, 999000000}},
		{"00:00:00", "", TimeOfDay{}},
		{"23:59", "23:59:00", TimeOfDay{Hour: 23, Minute: 59}},
		{"12:30:15.5", "", TimeOfDay{12, 30, 15, 500000000}},
		{"12:30:15.050", "12:30:15.05", TimeOfDay{12, 30, 15, 50000000}},
	}
	for i := range good {
		got, ok := ParseTimeOfDay(good[i].in)
		if !ok {
			t.Errorf("%q: not accepted", good[i].in)
			continue
		}
		if got != good[i].want {
			t.Errorf("%q: got %#v", good[i].in, got)
		}
		want := good[i].out
		if want == "" {
			want = good[i].in
		}
		if s := got.String(); s != want {
			t.Errorf("%q: formatted as %q", good[i].in, s)
		}
	}
	bad := []string{"", "24:00", "12:60", "12:00:60", "12", "12:00:00.", "12:00:00.0000000000"}
	for i := range bad {
		if _, ok := ParseTimeOfDay(bad[i]); ok {
			t.Errorf("%q: accepted", bad[i])
		}
	}
}

func TestParseDateTimeOffset(t *testing.T) {
	good := []struct {
		in  string
		out string
	}{
		{"2017-12-31T07:59:59.999Z", ""},
		{"2017-12-31t07:59:59.999z", "2017-12-31T07:59:59.999Z"},
		{"2017-12-31T23:59+05:30", "2017-12-31T23:59:00+05:30"},
		{"2017-12-31T23:59:59-08:00", ""},
		{"2017-12-31T23:59:59+00:00", "2017-12-31T23:59:59Z"},
	}
	for i := range good {
		got, ok := ParseDateTimeOffset(good[i].in)
		if !ok {
			t.Errorf("%q: not accepted", good[i].in)
			continue
		}
		want := good[i].out
		if want == "" {
			want = good[i].in
		}
		if s := got.String(); s != want {
			t.Errorf("%q: formatted as %q", good[i].in, s)
		}
	}
	bad := []string{
		"2017-12-31", "2017-12-31T23:59", "2017-12-31T23:59+0530",
		"2017-12-31T24:00Z", "T07:59Z",
	}
	for i := range bad {
		if _, ok := ParseDateTimeOffset(bad[i]); ok {
			t.Errorf("%q: accepted", bad[i])
		}
	}
}

func TestParseDuration(t *testing.T) {
	good := []struct {
		in  string
		out string
	}{
		{"-P3DT1H4M1.5S", ""},
		{"PT0S", ""},
		{"P1D", ""},
		{"PT36H", ""},
		{"PT1M", ""},
		{"PT0.5S", ""},
		{"+P1D", "P1D"},
		{"PT1H30M", ""},
	}
	for i := range good {
		got, ok := ParseDuration(good[i].in)
		if !ok {
			t.Errorf("%q: not accepted", good[i].in)
			continue
		}
		want := good[i].out
		if want == "" {
			want = good[i].in
		}
		if s := got.String(); s != want {
			t.Errorf("%q: formatted as %q", good[i].in, s)
		}
	}
	bad := []string{"", "P", "PT", "P1H", "PT1D", "P1.5D", "3DT1H", "PT1S2S"}
	for i := range bad {
		if _, ok := ParseDuration(bad[i]); ok {
			t.Errorf("%q: accepted", bad[i])
		}
	}
}
