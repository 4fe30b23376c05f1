// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"q2map/math/vec"
)

// Results of BoxOnPlaneSide.
const (
	SideFront = 1
	SideBack  = 2
	SideCross = SideFront | SideBack
)

// BoxOnPlaneSide classifies the box mins/maxs against the plane.
func (p *Plane) BoxOnPlaneSide(mins, maxs vec.Vec3) int {
	if p.Type < 3 {
		if p.Dist <= mins[p.Type] {
			return SideFront
		}
		if p.Dist >= maxs[p.Type] {
			return SideBack
		}
		return SideCross
	}
	// pick the corners furthest in front of and behind the plane
	var front, back vec.Vec3
	for j := 0; j < 3; j++ {
		if p.SignBits&(1<<j) != 0 {
			front[j], back[j] = mins[j], maxs[j]
		} else {
			front[j], back[j] = maxs[j], mins[j]
		}
	}
	sides := 0
	if vec.Dot(p.Normal, front) >= p.Dist {
		sides = SideFront
	}
	if vec.Dot(p.Normal, back) < p.Dist {
		sides |= SideBack
	}
	return sides
}
