// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

// animationFrames returns the length of the animation chain of texinfo ti.
// Chains that do not lead back to ti are not animated.
func (m *Map) animationFrames(ti int) int {
	n := 1
	for t := m.TexInfos[ti].Next; t != ti; t = m.TexInfos[t].Next {
		if t < 0 || n >= len(m.TexInfos) {
			return 1
		}
		n++
	}
	return n
}

// TextureAnimation returns the texinfo to use for texinfo ti at frame.
func (m *Map) TextureAnimation(ti, frame int) int {
	frames := m.animationFrames(ti)
	if frames == 1 {
		return ti
	}
	c := frame % frames
	if c < 0 {
		c += frames
	}
	for ; c > 0; c-- {
		ti = m.TexInfos[ti].Next
	}
	return ti
}

// TextureNames returns the distinct texture names in texinfo order.
func (m *Map) TextureNames() []string {
	seen := make(map[string]bool)
	var r []string
	for i := range m.TexInfos {
		n := m.TexInfos[i].Name()
		if seen[n] {
			continue
		}
		seen[n] = true
		r = append(r, n)
	}
	return r
}
