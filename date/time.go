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

// TimeOfDay is a clock reading with nanosecond
// resolution and no time zone.
type TimeOfDay struct {
	Hour       int // 0-23
	Minute     int // 0-59
	Second     int // 0-59
	Nanosecond int // 0-999999999
}

// Valid reports whether t is a well-formed clock reading.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 &&
		t.Minute >= 0 && t.Minute <= 59 &&
		t.Second >= 0 && t.Second <= 59 &&
		t.Nanosecond >= 0 && t.Nanosecond <= 999999999
}

// String formats t as HH:MM:SS with any fractional
// seconds trimmed of trailing zeros.
func (t TimeOfDay) String() string {
	s := fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	if t.Nanosecond != 0 {
		frac := strings.TrimRight(fmt.Sprintf("%09d", t.Nanosecond), "0")
		s += "." + frac
	}
	return s
}

// ParseTimeOfDay parses HH:MM[:SS[.fraction]].
// The boolean result indicates success.
func ParseTimeOfDay(s string) (TimeOfDay, bool) {
	if len(s) < 5 || s[2] != ':' {
		return TimeOfDay{}, false
	}
	hour, ok1 := atoi(s[:2])
	minute, ok2 := atoi(s[3:5])
	if !ok1 || !ok2 {
		return TimeOfDay{}, false
	}
	t := TimeOfDay{Hour: hour, Minute: minute}
	s = s[5:]
	if s != "" {
		if len(s) < 3 || s[0] != ':' {
			return TimeOfDay{}, false
		}
		second, ok := atoi(s[1:3])
		if !ok {
			return TimeOfDay{}, false
		}
		t.Second = second
		s = s[3:]
		if s != "" {
			if s[0] != '.' || len(s) < 2 || len(s) > 10 {
				return TimeOfDay{}, false
			}
			frac, ok := atoi(s[1:])
			if !ok {
				return TimeOfDay{}, false
			}
			for i := len(s) - 1; i < 9; i++ {
				frac *= 10
			}
			t.Nanosecond = frac
		}
	}
	if !t.Valid() {
		return TimeOfDay{}, false
	}
	return t, true
}

// MarshalText implements encoding.TextMarshaler.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, ok := ParseTimeOfDay(string(b))
	if !ok {
		return fmt.Errorf("invalid time %q", b)
	}
	*t = v
	return nil
}
