// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"github.com/chewxy/math32"

	"q2map/math"
	"q2map/math/vec"
	"q2map/metrics"
)

const distEpsilon = 0.03125 // (1/32) to keep floating point happy

// Trace is the result of a box trace.
type Trace struct {
	AllSolid   bool // the whole trace was inside a brush
	StartSolid bool // the start point was inside a brush
	Fraction   float32
	EndPos     vec.Vec3
	Plane      Plane // surface normal at impact
	Surface    int   // texinfo of the hit side, -1 for none
	Contents   int32 // contents of the hit brush
}

// Hit reports whether the trace was stopped by a brush.
func (t *Trace) Hit() bool {
	return t.Fraction < 1
}

// traceWork is the state of one trace. Nothing in it is shared so traces
// can run concurrently on the same map.
type traceWork struct {
	m       *Map
	start   vec.Vec3
	end     vec.Vec3
	mins    vec.Vec3
	maxs    vec.Vec3
	extents vec.Vec3
	isPoint bool
	mask    int32
	checked []uint64 // brushes already clipped against
	trace   Trace
}

func (w *traceWork) visit(brush int) bool {
	if w.checked == nil {
		w.checked = make([]uint64, (len(w.m.Brushes)+63)/64)
	}
	word, bit := brush/64, uint64(1)<<(brush%64)
	if w.checked[word]&bit != 0 {
		return false
	}
	w.checked[word] |= bit
	return true
}

// Trace moves the box mins/maxs from start to end through the world and
// stops at the first solid brush.
func (m *Map) Trace(start, end, mins, maxs vec.Vec3) Trace {
	return m.BoxTrace(start, end, mins, maxs, m.Models[0].HeadNode, MaskSolid)
}

// BoxTrace traces against the brushes below head whose contents match mask.
func (m *Map) BoxTrace(start, end, mins, maxs vec.Vec3, head NodeRef, mask int32) Trace {
	metrics.TraceDone()
	w := &traceWork{
		m:     m,
		start: start,
		end:   end,
		mins:  mins,
		maxs:  maxs,
		mask:  mask,
	}
	w.trace.Fraction = 1
	w.trace.Surface = -1

	if start == end {
		w.positionTest(head)
		w.trace.EndPos = start
		return w.trace
	}

	if mins == (vec.Vec3{}) && maxs == (vec.Vec3{}) {
		w.isPoint = true
	} else {
		for i := 0; i < 3; i++ {
			w.extents[i] = max(-mins[i], maxs[i])
		}
	}

	w.recursiveHullCheck(head, 0, 1, start, end)

	if w.trace.Fraction == 1 {
		w.trace.EndPos = end
	} else {
		w.trace.EndPos = vec.Lerp(start, end, w.trace.Fraction)
	}
	return w.trace
}

// TransformedBoxTrace traces against an inline model that is moved to
// origin and rotated by angles.
func (m *Map) TransformedBoxTrace(start, end, mins, maxs vec.Vec3, head NodeRef, mask int32, origin, angles vec.Vec3) Trace {
	ls := vec.Sub(start, origin)
	le := vec.Sub(end, origin)

	rotated := head != m.Models[0].HeadNode && angles != (vec.Vec3{})
	if rotated {
		ls = rotate(ls, angles)
		le = rotate(le, angles)
	}

	t := m.BoxTrace(ls, le, mins, maxs, head, mask)

	if rotated && t.Fraction != 1 {
		// rotate the plane back into world space
		forward, right, up := vec.AngleVectors(math.AnglesMod(angles.Neg()))
		n := t.Plane.Normal
		t.Plane.Normal = vec.Vec3{
			vec.Dot(n, forward),
			-vec.Dot(n, right),
			vec.Dot(n, up),
		}
		t.Plane.SignBits = signBits(t.Plane.Normal)
		t.Plane.Type = planeType(t.Plane.Normal)
	}
	t.EndPos = vec.Lerp(start, end, t.Fraction)
	return t
}

func (w *traceWork) positionTest(head NodeRef) {
	c1 := vec.Add(w.start, w.mins)
	c2 := vec.Add(w.start, w.maxs)
	for i := 0; i < 3; i++ {
		c1[i]--
		c2[i]++
	}
	leafs, _ := w.m.BoxLeafs(c1, c2, head, 1024)
	for _, l := range leafs {
		w.testInLeaf(l)
		if w.trace.AllSolid {
			return
		}
	}
}

func (w *traceWork) testInLeaf(leaf int) {
	l := &w.m.Leafs[leaf]
	for _, b := range w.m.LeafBrushes[l.FirstLeafBrush : l.FirstLeafBrush+l.LeafBrushCount] {
		if !w.visit(b) {
			continue
		}
		brush := &w.m.Brushes[b]
		if brush.Contents&w.mask == 0 {
			continue
		}
		w.testBoxInBrush(brush)
		if w.trace.AllSolid {
			return
		}
	}
}

func (w *traceWork) testBoxInBrush(brush *Brush) {
	if brush.SideCount == 0 {
		return
	}
	for _, s := range w.m.BrushSides[brush.FirstSide : brush.FirstSide+brush.SideCount] {
		plane := &w.m.Planes[s.Plane]
		d := vec.Dot(w.start, plane.Normal) - (plane.Dist - vec.Dot(w.offset(plane), plane.Normal))
		if d > 0 {
			return
		}
	}
	w.trace.StartSolid = true
	w.trace.AllSolid = true
	w.trace.Fraction = 0
	w.trace.Contents = brush.Contents
}

// offset returns the corner of the box that touches plane first.
func (w *traceWork) offset(plane *Plane) vec.Vec3 {
	var ofs vec.Vec3
	for j := 0; j < 3; j++ {
		if plane.Normal[j] < 0 {
			ofs[j] = w.maxs[j]
		} else {
			ofs[j] = w.mins[j]
		}
	}
	return ofs
}

func (w *traceWork) traceToLeaf(leaf int) {
	l := &w.m.Leafs[leaf]
	for _, b := range w.m.LeafBrushes[l.FirstLeafBrush : l.FirstLeafBrush+l.LeafBrushCount] {
		if !w.visit(b) {
			continue
		}
		brush := &w.m.Brushes[b]
		if brush.Contents&w.mask == 0 {
			continue
		}
		w.clipBoxToBrush(brush)
		if w.trace.Fraction == 0 {
			return
		}
	}
}

func (w *traceWork) clipBoxToBrush(brush *Brush) {
	if brush.SideCount == 0 {
		return
	}
	enterFrac := float32(-1)
	leaveFrac := float32(1)
	var clipPlane *Plane
	leadSide := -1
	getOut := false
	startOut := false

	for _, s := range w.m.BrushSides[brush.FirstSide : brush.FirstSide+brush.SideCount] {
		plane := &w.m.Planes[s.Plane]
		dist := plane.Dist
		if !w.isPoint {
			// push the plane out by the box
			dist -= vec.Dot(w.offset(plane), plane.Normal)
		}
		d1 := vec.Dot(w.start, plane.Normal) - dist
		d2 := vec.Dot(w.end, plane.Normal) - dist

		if d2 > 0 {
			getOut = true // endpoint is not in solid
		}
		if d1 > 0 {
			startOut = true
		}
		// completely in front of the side, no intersection with the brush
		if d1 > 0 && d2 >= d1 {
			return
		}
		if d1 <= 0 && d2 <= 0 {
			continue
		}
		if d1 > d2 { // enter
			f := (d1 - distEpsilon) / (d1 - d2)
			if f > enterFrac {
				enterFrac = f
				clipPlane = plane
				leadSide = s.TexInfo
			}
		} else { // leave
			f := (d1 + distEpsilon) / (d1 - d2)
			if f < leaveFrac {
				leaveFrac = f
			}
		}
	}

	if !startOut {
		// the start point was inside the brush
		w.trace.StartSolid = true
		if !getOut {
			w.trace.AllSolid = true
			w.trace.Fraction = 0
			w.trace.Contents = brush.Contents
		}
		return
	}
	if enterFrac < leaveFrac && enterFrac > -1 && enterFrac < w.trace.Fraction {
		w.trace.Fraction = max(enterFrac, 0)
		w.trace.Plane = *clipPlane
		w.trace.Surface = leadSide
		w.trace.Contents = brush.Contents
	}
}

func (w *traceWork) recursiveHullCheck(n NodeRef, p1f, p2f float32, p1, p2 vec.Vec3) {
	if w.trace.Fraction <= p1f {
		return // already hit something nearer
	}
	if n.IsLeaf() {
		w.traceToLeaf(n.Index())
		return
	}
	node := &w.m.Nodes[n.Index()]
	plane := &w.m.Planes[node.Plane]

	var t1, t2, offset float32
	if plane.Type < 3 {
		t1 = p1[plane.Type] - plane.Dist
		t2 = p2[plane.Type] - plane.Dist
		offset = w.extents[plane.Type]
	} else {
		t1 = vec.Dot(plane.Normal, p1) - plane.Dist
		t2 = vec.Dot(plane.Normal, p2) - plane.Dist
		if !w.isPoint {
			offset = math32.Abs(w.extents[0]*plane.Normal[0]) +
				math32.Abs(w.extents[1]*plane.Normal[1]) +
				math32.Abs(w.extents[2]*plane.Normal[2])
		}
	}

	if t1 >= offset && t2 >= offset {
		w.recursiveHullCheck(node.Children[0], p1f, p2f, p1, p2)
		return
	}
	if t1 < -offset && t2 < -offset {
		w.recursiveHullCheck(node.Children[1], p1f, p2f, p1, p2)
		return
	}

	// put the crosspoint distEpsilon pixels on the near side
	var side int
	var frac, frac2 float32
	switch {
	case t1 < t2:
		idist := 1 / (t1 - t2)
		side = 1
		frac2 = (t1 + offset + distEpsilon) * idist
		frac = (t1 - offset + distEpsilon) * idist
	case t1 > t2:
		idist := 1 / (t1 - t2)
		side = 0
		frac2 = (t1 - offset - distEpsilon) * idist
		frac = (t1 + offset + distEpsilon) * idist
	default:
		side = 0
		frac = 1
		frac2 = 0
	}

	// move up to the node
	frac = math.Clamp(0, frac, 1)
	midf := math.Lerp(p1f, p2f, frac)
	mid := vec.Lerp(p1, p2, frac)
	w.recursiveHullCheck(node.Children[side], p1f, midf, p1, mid)

	// go past the node
	frac2 = math.Clamp(0, frac2, 1)
	midf = math.Lerp(p1f, p2f, frac2)
	mid = vec.Lerp(p1, p2, frac2)
	w.recursiveHullCheck(node.Children[side^1], midf, p2f, mid, p2)
}
