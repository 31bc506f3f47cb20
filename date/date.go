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

// Package date implements the temporal value types used
// by expression literals: calendar dates, times of day,
// and signed day-time durations.
package date

import (
	"fmt"
	"strings"
)

// Date is a proleptic Gregorian calendar date.
// Year may be negative or exceed four digits.
type Date struct {
	Year  int
	Month int // 1-12
	Day   int // 1-31, checked against the month
}

// Valid reports whether d names a real calendar day.
func (d Date) Valid() bool {
	if d.Month < 1 || d.Month > 12 {
		return false
	}
	return d.Day >= 1 && d.Day <= daysInMonth(d.Year, d.Month)
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	}
	if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
		return 29
	}
	return 28
}

// String formats d as [-]YYYY-MM-DD with the year
// zero-padded to at least four digits.
func (d Date) String() string {
	year, sign := d.Year, ""
	if year < 0 {
		year, sign = -year, "-"
	}
	return fmt.Sprintf("%s%04d-%02d-%02d", sign, year, d.Month, d.Day)
}

// ParseDate parses [-]YYYY-MM-DD.
// The boolean result indicates success.
func ParseDate(s string) (Date, bool) {
	var d Date
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	i := strings.IndexByte(s, '-')
	if i < 4 {
		return Date{}, false
	}
	year, ok := atoi(s[:i])
	if !ok {
		return Date{}, false
	}
	s = s[i+1:]
	if len(s) != 5 || s[2] != '-' {
		return Date{}, false
	}
	month, ok1 := atoi(s[:2])
	day, ok2 := atoi(s[3:])
	if !ok1 || !ok2 {
		return Date{}, false
	}
	d = Date{Year: year, Month: month, Day: day}
	if neg {
		d.Year = -d.Year
	}
	if !d.Valid() {
		return Date{}, false
	}
	return d, true
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	v, ok := ParseDate(string(b))
	if !ok {
		return fmt.Errorf("invalid date %q", b)
	}
	*d = v
	return nil
}

// atoi parses an unsigned decimal integer with no
// leading sign and at least one digit.
func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
