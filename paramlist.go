// github.com/pcjc2/openaltium - a decoder for Altium PcbLib/SchLib libraries
// Copyright (C) 2026  The openaltium authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package altium

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// badEncodingSentinel is substituted for any parameter value that is not
// valid UTF-8, so that the key stays present and parsing never fails.
const badEncodingSentinel = "BAD ENCODING"

// ParameterList is an ordered, last-write-wins string-to-string map
// parsed from the `|KEY=VALUE|KEY=VALUE` pipe-separated mini-format used
// throughout PcbLib/SchLib for textual records and model metadata. Keys
// are compared case-sensitively, exactly as they appear in the file.
type ParameterList struct {
	values map[string]string
	// order preserves first-insertion order, used only so that
	// diagnostics and tests can report parameters deterministically.
	order []string
}

// ParseParameterList parses s, which may have an optional leading '|',
// into a ParameterList. Segments with no '=' or an empty key are
// skipped. A value that is not valid UTF-8 is replaced with the
// "BAD ENCODING" sentinel; the key is still recorded. Parsing never
// fails.
func ParseParameterList(s string) *ParameterList {
	pl := &ParameterList{values: make(map[string]string)}
	s = strings.TrimPrefix(s, "|")
	for _, segment := range strings.Split(s, "|") {
		eq := strings.IndexByte(segment, '=')
		if eq < 0 {
			continue
		}
		key := segment[:eq]
		if key == "" {
			continue
		}
		value := segment[eq+1:]
		if !utf8.ValidString(value) {
			value = badEncodingSentinel
		}
		pl.set(key, value)
	}
	return pl
}

func (pl *ParameterList) set(key, value string) {
	if _, seen := pl.values[key]; !seen {
		pl.order = append(pl.order, key)
	}
	pl.values[key] = value
}

// Keys returns the parameter keys in first-insertion order.
func (pl *ParameterList) Keys() []string {
	out := make([]string, len(pl.order))
	copy(out, pl.order)
	return out
}

// GetString returns the value stored for key, or "" if absent.
func (pl *ParameterList) GetString(key string) string {
	return pl.values[key]
}

// Has reports whether key is present.
func (pl *ParameterList) Has(key string) bool {
	_, ok := pl.values[key]
	return ok
}

// GetInt performs a tolerant signed integer parse: it stops at the first
// non-digit (after an optional leading sign) and returns 0 if the key is
// absent or the value has no leading digits.
func (pl *ParameterList) GetInt(key string) int {
	return int(tolerantParseInt(pl.values[key]))
}

// GetUnsigned performs a tolerant unsigned integer parse; see GetInt.
func (pl *ParameterList) GetUnsigned(key string) uint {
	v := tolerantParseInt(pl.values[key])
	if v < 0 {
		v = -v
	}
	return uint(v)
}

// GetDouble performs a tolerant floating-point parse, returning 0.0 if
// the key is absent or does not begin with a valid number.
func (pl *ParameterList) GetDouble(key string) float64 {
	v := pl.values[key]
	n := 0
	for n < len(v) && isFloatByte(v, n) {
		n++
	}
	if n == 0 {
		return 0
	}
	f, err := strconv.ParseFloat(v[:n], 64)
	if err != nil {
		return 0
	}
	return f
}

// GetBool returns true iff the value's first character is 'T' or '1'.
func (pl *ParameterList) GetBool(key string) bool {
	v := pl.values[key]
	if v == "" {
		return false
	}
	return v[0] == 'T' || v[0] == '1'
}

func tolerantParseInt(v string) int64 {
	if v == "" {
		return 0
	}
	n := 0
	if v[0] == '+' || v[0] == '-' {
		n++
	}
	start := n
	for n < len(v) && v[n] >= '0' && v[n] <= '9' {
		n++
	}
	if n == start {
		return 0
	}
	x, err := strconv.ParseInt(v[:n], 10, 64)
	if err != nil {
		return 0
	}
	return x
}

func isFloatByte(v string, i int) bool {
	c := v[i]
	if c >= '0' && c <= '9' {
		return true
	}
	if c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E' {
		return true
	}
	return false
}
