// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"bytes"

	"q2map/math/vec"
)

// Contents bits of leafs and brushes. Lower bits are stronger and eat
// weaker brushes completely.
const (
	ContentsSolid  = 1 << iota // an eye is never valid in a solid
	ContentsWindow             // translucent, but not watery
	ContentsAux
	ContentsLava
	ContentsSlime
	ContentsWater
	ContentsMist
)

const (
	ContentsAreaPortal  = 0x8000
	ContentsPlayerClip  = 0x10000
	ContentsMonsterClip = 0x20000
	// currents can be added to any other contents, and may be mixed
	ContentsCurrent0    = 0x40000
	ContentsCurrent90   = 0x80000
	ContentsCurrent180  = 0x100000
	ContentsCurrent270  = 0x200000
	ContentsCurrentUp   = 0x400000
	ContentsCurrentDown = 0x800000
	ContentsOrigin      = 0x1000000 // removed before bsping an entity
	ContentsMonster     = 0x2000000 // should never be on a brush, only in game
	ContentsDeadMonster = 0x4000000
	ContentsDetail      = 0x8000000  // brushes to be added after vis leafs
	ContentsTranslucent = 0x10000000 // auto set if any surface has trans
	ContentsLadder      = 0x20000000
)

// Content masks used by traces.
const (
	MaskAll          = -1
	MaskSolid        = ContentsSolid | ContentsWindow
	MaskPlayerSolid  = ContentsSolid | ContentsPlayerClip | ContentsWindow | ContentsMonster
	MaskDeadSolid    = ContentsSolid | ContentsPlayerClip | ContentsWindow
	MaskMonsterSolid = ContentsSolid | ContentsMonsterClip | ContentsWindow | ContentsMonster
	MaskWater        = ContentsWater | ContentsLava | ContentsSlime
	MaskOpaque       = ContentsSolid | ContentsSlime | ContentsLava
	MaskShot         = ContentsSolid | ContentsMonster | ContentsWindow | ContentsDeadMonster
	MaskCurrent      = ContentsCurrent0 | ContentsCurrent90 | ContentsCurrent180 |
		ContentsCurrent270 | ContentsCurrentUp | ContentsCurrentDown
)

const (
	SurfaceLight    = 1 << iota // value will hold the light strength
	SurfaceSlick                // effects game physics
	SurfaceSky                  // don't draw, but add to skybox
	SurfaceWarp                 // turbulent water warp
	SurfaceTrans33              // 0x10
	SurfaceTrans66              // 0x20
	SurfaceFlowing              // scroll towards angle
	SurfaceNoDraw               // don't bother referencing the texture
)

// Plane types 0-2 are axial, 3-5 are closest to the respective axis.
const (
	PlaneX = iota
	PlaneY
	PlaneZ
	PlaneAnyX
	PlaneAnyY
	PlaneAnyZ
)

type Plane struct {
	Normal   vec.Vec3
	Dist     float32
	Type     byte
	SignBits byte // signx + (signy<<1) + (signz<<2)
}

// Distance returns the signed distance of p to the plane.
func (p *Plane) Distance(v vec.Vec3) float32 {
	if p.Type < 3 {
		return v[p.Type] - p.Dist
	}
	return vec.Dot(p.Normal, v) - p.Dist
}

// NodeRef references either a node or a leaf.
type NodeRef struct {
	index int32
	leaf  bool
}

// NodeRefFromChild decodes the on disk child encoding where negative
// values c reference leaf -(c+1).
func NodeRefFromChild(c int32) NodeRef {
	if c < 0 {
		return NodeRef{index: -(c + 1), leaf: true}
	}
	return NodeRef{index: c}
}

// NodeIndex returns a reference to node i.
func NodeIndex(i int) NodeRef {
	return NodeRef{index: int32(i)}
}

// LeafIndex returns a reference to leaf i.
func LeafIndex(i int) NodeRef {
	return NodeRef{index: int32(i), leaf: true}
}

func (r NodeRef) IsLeaf() bool {
	return r.leaf
}

// Index is the node index or, if IsLeaf, the leaf index.
func (r NodeRef) Index() int {
	return int(r.index)
}

type Node struct {
	Plane    int
	Children [2]NodeRef // front, back
	Mins     [3]int16   // for frustum culling
	Maxs     [3]int16
	// FirstFace and FaceCount are not needed for collision
	FirstFace int
	FaceCount int
}

type Leaf struct {
	Contents       int32
	Cluster        int // -1 is outside of the visibility graph
	Area           int
	Mins           [3]int16
	Maxs           [3]int16
	FirstLeafFace  int
	LeafFaceCount  int
	FirstLeafBrush int
	LeafBrushCount int
}

type Edge struct {
	V [2]int
}

type Face struct {
	Plane       int
	Side        int // if != 0 the normal of Plane points to the back of the face
	FirstEdge   int // into SurfEdges
	EdgeCount   int
	TexInfo     int
	Styles      [4]byte // 255 is unused
	LightOffset int     // -1 for no light map
}

const unusedStyle = 255

type TexInfoPos struct {
	Pos    vec.Vec3
	Offset float32
}

type TexInfo struct {
	Vecs    [2]TexInfoPos
	Flags   int32
	Value   int32
	Texture [32]byte
	Next    int // -1 = end of the animation chain
}

// Name returns the texture name without the zero padding.
func (t *TexInfo) Name() string {
	n := bytes.IndexByte(t.Texture[:], 0)
	if n == -1 {
		return string(t.Texture[:])
	}
	return string(t.Texture[:n])
}

// Model, either the world (model 0) or an inline brush model "*N".
type Model struct {
	Mins      vec.Vec3
	Maxs      vec.Vec3
	Origin    vec.Vec3
	HeadNode  NodeRef
	FirstFace int
	FaceCount int
}

// Brush is the convex intersection of the half spaces behind its sides.
type Brush struct {
	FirstSide int
	SideCount int
	Contents  int32
}

type BrushSide struct {
	Plane   int // normal points out of the brush
	TexInfo int // -1 for none
}

type Area struct {
	PortalCount int
	FirstPortal int
}

type AreaPortal struct {
	PortalNum int
	OtherArea int
}
