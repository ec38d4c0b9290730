package utils

import "math"

// ClampInt restricts n to [lo, hi].
func ClampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// ClampF64 restricts n to [lo, hi].
func ClampF64(n, lo, hi float64) float64 {
	return math.Min(math.Max(n, lo), hi)
}

// RoundToUint8 rounds half away from zero and saturates to the uint8 range.
func RoundToUint8(v float64) uint8 {
	return uint8(ClampF64(math.Round(v), 0, 255))
}

// InUnitInterval reports whether v is in [0, 1]. NaN is not.
func InUnitInterval(v float64) bool {
	return v >= 0 && v <= 1
}
