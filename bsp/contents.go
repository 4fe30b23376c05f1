// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"q2map/math"
	"q2map/math/vec"
	"q2map/metrics"
)

// PointContents returns the contents of all world brushes containing p.
func (m *Map) PointContents(p vec.Vec3) int32 {
	return m.PointContentsFrom(m.Models[0].HeadNode, p)
}

// PointContentsFrom ORs the contents of every brush in the leaf of p that
// contains p. Leaf contents are not consulted.
func (m *Map) PointContentsFrom(head NodeRef, p vec.Vec3) int32 {
	metrics.PointContentsDone()
	leaf := &m.Leafs[m.LocateLeafFrom(head, p)]
	var c int32
	for _, b := range m.LeafBrushes[leaf.FirstLeafBrush : leaf.FirstLeafBrush+leaf.LeafBrushCount] {
		brush := &m.Brushes[b]
		if m.brushContains(brush, p) {
			c |= brush.Contents
		}
	}
	return c
}

// TransformedPointContents handles inline models that are moved and rotated.
func (m *Map) TransformedPointContents(p vec.Vec3, head NodeRef, origin, angles vec.Vec3) int32 {
	l := vec.Sub(p, origin)
	if head != m.Models[0].HeadNode && angles != (vec.Vec3{}) {
		l = rotate(l, angles)
	}
	return m.PointContentsFrom(head, l)
}

// LeafContents returns the contents stored in the world leaf of p.
func (m *Map) LeafContents(p vec.Vec3) int32 {
	return m.Leafs[m.LocateLeaf(p)].Contents
}

// brushContains reports whether p is behind or on every side of b.
func (m *Map) brushContains(b *Brush, p vec.Vec3) bool {
	if b.SideCount == 0 {
		return false
	}
	for _, s := range m.BrushSides[b.FirstSide : b.FirstSide+b.SideCount] {
		if m.Planes[s.Plane].Distance(p) > 0 {
			return false
		}
	}
	return true
}

// rotate expresses v in the frame given by angles.
func rotate(v, angles vec.Vec3) vec.Vec3 {
	forward, right, up := vec.AngleVectors(math.AnglesMod(angles))
	return vec.Vec3{
		vec.Dot(v, forward),
		-vec.Dot(v, right),
		vec.Dot(v, up),
	}
}
