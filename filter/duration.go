package filter

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/s0up4200/moviepicker/movie"
)

// DurationTolerance is the number of minutes a runtime may differ from the
// requested duration and still match.
const DurationTolerance = 10

// FilterByDuration returns the movies whose runtime lies within
// [target-DurationTolerance, target+DurationTolerance], keeping their order.
//
// The stage has no "disabled" value of its own: a zero or NaN target means
// no filtering and callers must skip the call in that case (see ParseDuration).
func FilterByDuration(movies []movie.Movie, target float64) []movie.Movie {
	lower := target - DurationTolerance
	upper := target + DurationTolerance

	matches := make([]movie.Movie, 0, len(movies))
	for _, m := range movies {
		runtime := m.Runtime.Float64()
		if runtime >= lower && runtime <= upper {
			matches = append(matches, m)
		}
	}
	return matches
}

// ParseDuration reads the leading integer of a duration query value.
// Leading whitespace, a sign and a 0x prefix for hexadecimal are allowed and
// anything after the digits is ignored, so "120min" and "0x78" both yield 120.
// ok is false when no digits are found or the value is zero, which both mean
// the duration stage is skipped.
func ParseDuration(raw string) (int, bool) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)

	sign := ""
	if s != "" && (s[0] == '-' || s[0] == '+') {
		sign = s[:1]
		s = s[1:]
	}

	base, isDigit := 10, isDecimal
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, isDigit = 16, isHex
		s = s[2:]
	}

	end := 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == 0 {
		return 0, false
	}

	n, err := strconv.ParseInt(sign+s[:end], base, strconv.IntSize)
	if err != nil || n == 0 {
		return 0, false
	}
	return int(n), true
}

func isDecimal(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHex(c byte) bool {
	return isDecimal(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
