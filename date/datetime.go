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
	"fmt"
	"strings"
)

// DateTimeOffset is a calendar date combined with a
// clock reading and a UTC offset in minutes.
type DateTimeOffset struct {
	Date   Date
	Time   TimeOfDay
	Offset int // minutes east of UTC
}

// Valid reports whether d is well formed.
// Offsets beyond a day in either direction are rejected.
func (d DateTimeOffset) Valid() bool {
	return d.Date.Valid() && d.Time.Valid() &&
		d.Offset > -24*60 && d.Offset < 24*60
}

// String formats d with a Z suffix for a zero offset and
// a signed hh:mm suffix otherwise.
func (d DateTimeOffset) String() string {
	s := d.Date.String() + "T" + d.Time.String()
	if d.Offset == 0 {
		return s + "Z"
	}
	off, sign := d.Offset, "+"
	if off < 0 {
		off, sign = -off, "-"
	}
	return s + fmt.Sprintf("%s%02d:%02d", sign, off/60, off%60)
}

// ParseDateTimeOffset parses date "T" time followed by
// "Z", "z", or a signed hh:mm offset.
// The boolean result indicates success.
func ParseDateTimeOffset(s string) (DateTimeOffset, bool) {
	i := strings.IndexAny(s, "Tt")
	if i < 0 {
		return DateTimeOffset{}, false
	}
	day, ok := ParseDate(s[:i])
	if !ok {
		return DateTimeOffset{}, false
	}
	s = s[i+1:]
	// the zone designator begins at the last Z, +, or -
	j := strings.LastIndexAny(s, "Zz+-")
	if j < 0 {
		return DateTimeOffset{}, false
	}
	clock, ok := ParseTimeOfDay(s[:j])
	if !ok {
		return DateTimeOffset{}, false
	}
	d := DateTimeOffset{Date: day, Time: clock}
	zone := s[j:]
	switch {
	case zone == "Z" || zone == "z":
		// UTC
	case len(zone) == 6 && zone[3] == ':':
		hh, ok1 := atoi(zone[1:3])
		mm, ok2 := atoi(zone[4:])
		if !ok1 || !ok2 || hh > 23 || mm > 59 {
			return DateTimeOffset{}, false
		}
		d.Offset = hh*60 + mm
		if zone[0] == '-' {
			d.Offset = -d.Offset
		}
	default:
		return DateTimeOffset{}, false
	}
	if !d.Valid() {
		return DateTimeOffset{}, false
	}
	return d, true
}

// MarshalText implements encoding.TextMarshaler.
func (d DateTimeOffset) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DateTimeOffset) UnmarshalText(b []byte) error {
	v, ok := ParseDateTimeOffset(string(b))
	if !ok {
		return fmt.Errorf("invalid timestamp %q", b)
	}
	*d = v
	return nil
}
