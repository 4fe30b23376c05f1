// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"q2map/math/vec"
)

// LocateLeaf returns the world leaf containing p.
func (m *Map) LocateLeaf(p vec.Vec3) int {
	return m.LocateLeafFrom(m.Models[0].HeadNode, p)
}

// LocateLeafFrom descends from head. Points on a plane go to the front.
func (m *Map) LocateLeafFrom(head NodeRef, p vec.Vec3) int {
	n := head
	for !n.IsLeaf() {
		node := &m.Nodes[n.Index()]
		if m.Planes[node.Plane].Distance(p) >= 0 {
			n = node.Children[0]
		} else {
			n = node.Children[1]
		}
	}
	return n.Index()
}

type boxLeafs struct {
	m       *Map
	mins    vec.Vec3
	maxs    vec.Vec3
	max     int
	leafs   []int
	topNode int
}

func (b *boxLeafs) walk(n NodeRef) {
	for {
		if n.IsLeaf() {
			if len(b.leafs) < b.max {
				b.leafs = append(b.leafs, n.Index())
			}
			return
		}
		node := &b.m.Nodes[n.Index()]
		switch b.m.Planes[node.Plane].BoxOnPlaneSide(b.mins, b.maxs) {
		case SideFront:
			n = node.Children[0]
		case SideBack:
			n = node.Children[1]
		default:
			if b.topNode == -1 {
				b.topNode = n.Index()
			}
			b.walk(node.Children[0])
			n = node.Children[1]
		}
	}
}

// BoxLeafs returns up to max leafs touched by the box below head. topNode is
// the first node that splits the box or -1 if the box is in a single leaf.
func (m *Map) BoxLeafs(mins, maxs vec.Vec3, head NodeRef, max int) (leafs []int, topNode int) {
	b := boxLeafs{
		m:       m,
		mins:    mins,
		maxs:    maxs,
		max:     max,
		topNode: -1,
	}
	b.walk(head)
	return b.leafs, b.topNode
}
