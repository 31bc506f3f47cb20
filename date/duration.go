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
	"strconv"
	"strings"
)

// Duration is a signed day-time duration.
// Year and month components are not representable.
type Duration struct {
	Negative bool
	Days     int
	Hours    int
	Minutes  int
	Seconds  float64
}

// Zero reports whether d has no elapsed time,
// ignoring the sign.
func (d Duration) Zero() bool {
	return d.Days == 0 && d.Hours == 0 && d.Minutes == 0 && d.Seconds == 0
}

// String formats d in the ISO 8601 day-time form,
// omitting zero components. A zero duration is PT0S.
func (d Duration) String() string {
	var sb strings.Builder
	if d.Negative {
		sb.WriteByte('-')
	}
	sb.WriteByte('P')
	if d.Days != 0 {
		fmt.Fprintf(&sb, "%dD", d.Days)
	}
	if d.Hours != 0 || d.Minutes != 0 || d.Seconds != 0 || d.Days == 0 {
		sb.WriteByte('T')
		if d.Hours != 0 {
			fmt.Fprintf(&sb, "%dH", d.Hours)
		}
		if d.Minutes != 0 {
			fmt.Fprintf(&sb, "%dM", d.Minutes)
		}
		if d.Seconds != 0 || (d.Hours == 0 && d.Minutes == 0 && d.Days == 0) {
			sb.WriteString(formatSeconds(d.Seconds))
			sb.WriteByte('S')
		}
	}
	return sb.String()
}

func formatSeconds(s float64) string {
	out := strconv.FormatFloat(s, 'f', -1, 64)
	// trim any exponent-free trailing zeros after the point
	if strings.ContainsRune(out, '.') {
		out = strings.TrimRight(out, "0")
		out = strings.TrimSuffix(out, ".")
	}
	return out
}

// ParseDuration parses [-]P[nD][T[nH][nM][n[.n]S]].
// At least one component must be present.
// The boolean result indicates success.
func ParseDuration(s string) (Duration, bool) {
	var d Duration
	if strings.HasPrefix(s, "-") {
		d.Negative = true
		s = s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}
	if !strings.HasPrefix(s, "P") {
		return Duration{}, false
	}
	s = s[1:]
	seen := false
	if n, rest, ok := scanComponent(s, 'D'); ok {
		d.Days = n
		s = rest
		seen = true
	}
	if strings.HasPrefix(s, "T") {
		s = s[1:]
		tseen := false
		if n, rest, ok := scanComponent(s, 'H'); ok {
			d.Hours = n
			s = rest
			tseen = true
		}
		if n, rest, ok := scanComponent(s, 'M'); ok {
			d.Minutes = n
			s = rest
			tseen = true
		}
		if f, rest, ok := scanSeconds(s); ok {
			d.Seconds = f
			s = rest
			tseen = true
		}
		if !tseen {
			return Duration{}, false
		}
		seen = true
	}
	if !seen || s != "" {
		return Duration{}, false
	}
	return d, true
}

// scanComponent matches 1*DIGIT followed by the suffix
// letter, rejecting a digit run that belongs to a later
// component or a fractional seconds field.
func scanComponent(s string, suffix byte) (int, string, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i == len(s) || s[i] != suffix {
		return 0, s, false
	}
	n, ok := atoi(s[:i])
	if !ok {
		return 0, s, false
	}
	return n, s[i+1:], true
}

func scanSeconds(s string) (float64, string, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, false
	}
	if i < len(s) && s[i] == '.' {
		i++
		j := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == j {
			return 0, s, false
		}
	}
	if i == len(s) || s[i] != 'S' {
		return 0, s, false
	}
	f, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, s, false
	}
	return f, s[i+1:], true
}
