// SPDX-License-Identifier: GPL-2.0-or-later

package math

type Number interface {
	int | int32 | int64 | float32 | float64
}

// Clamp limits val to [lo,hi].
func Clamp[K Number](lo, val, hi K) K {
	switch {
	case val < lo:
		return lo
	case val > hi:
		return hi
	}
	return val
}

// Lerp returns the value at frac between a and b.
func Lerp[K float32 | float64](a, b, frac K) K {
	return a + frac*(b-a)
}
