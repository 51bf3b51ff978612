package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseWholeNumber converts text such as "15", " 15 ", "15.0" or "1e1" to an
// integer. Fractions, NaN, infinities and values outside int64 are rejected.
func ParseWholeNumber(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%q is out of range", s)
	}
	return int64(f), nil
}
