package core

import "math"

// Epsilon is the tolerance for every "changed" comparison. It matches the
// two-decimal rounding granularity used for all rates and machine counts.
const Epsilon = 0.01

// Round2 rounds x to two decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Differs reports whether a and b differ by more than Epsilon.
func Differs(a, b float64) bool {
	return math.Abs(a-b) > Epsilon
}

