// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

// FloodAreas groups the areas that are connected through open portals.
// open is indexed by portal number, missing entries are closed. The result
// holds a flood number per area; area 0 is never connected.
func (m *Map) FloodAreas(open []bool) []int {
	flood := make([]int, len(m.Areas))
	isOpen := func(p int) bool {
		return p < len(open) && open[p]
	}
	var fill func(area, num int)
	fill = func(area, num int) {
		flood[area] = num
		a := &m.Areas[area]
		for _, p := range m.AreaPortals[a.FirstPortal : a.FirstPortal+a.PortalCount] {
			if isOpen(p.PortalNum) && flood[p.OtherArea] == 0 && p.OtherArea != 0 {
				fill(p.OtherArea, num)
			}
		}
	}
	num := 0
	for i := 1; i < len(m.Areas); i++ {
		if flood[i] != 0 {
			continue
		}
		num++
		fill(i, num)
	}
	return flood
}

// AreasConnected reports whether a and b are in the same flood. Maps
// without areas are always connected.
func AreasConnected(flood []int, a, b int) bool {
	if len(flood) == 0 {
		return true
	}
	if a < 1 || b < 1 || a >= len(flood) || b >= len(flood) {
		return false
	}
	return flood[a] == flood[b]
}
