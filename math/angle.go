// SPDX-License-Identifier: GPL-2.0-or-later

package math

import "github.com/chewxy/math32"

// AngleMod32 maps an angle in degrees into [0,360).
func AngleMod32(a float32) float32 {
	r := a - math32.Floor(a/360)*360
	if r >= 360 {
		// a tiny negative a rounds up to 360
		return 0
	}
	return r
}

// AnglesMod maps all three euler angles into [0,360).
func AnglesMod(a [3]float32) [3]float32 {
	return [3]float32{AngleMod32(a[0]), AngleMod32(a[1]), AngleMod32(a[2])}
}
