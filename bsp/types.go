// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

// On disk records. Every struct here is decoded with encoding/binary and
// has no padding, so binary.Size matches the record size of the format.

type dplane struct {
	Normal   [3]float32
	Distance float32
	Type     int32 // 0: axial plane in X, 1: axial plane in Y, 2 axial in Z, 3,4,5 similar but non axial
}

type dvertex struct {
	Point [3]float32
}

type dnode struct {
	PlaneID   int32
	Children  [2]int32 // negative values are -(leaf+1)
	Mins      [3]int16
	Maxs      [3]int16
	FirstFace uint16
	FaceCount uint16 // counting both sides
}

type dtexinfo struct {
	Vecs    [2][4]float32 // [s/t][xyz offset]
	Flags   int32         // miptex flags + overrides
	Value   int32         // light emission, etc
	Texture [32]byte      // texture name (textures/*.wal)
	Next    int32         // for animations, -1 = end of chain
}

type dface struct {
	PlaneID     uint16
	Side        int16
	FirstEdge   int32 // we must support > 64k edges
	EdgeCount   int16
	TexInfoID   int16
	Styles      [4]uint8
	LightOffset int32 // start of [numstyles*surfsize] samples
}

type dleaf struct {
	Contents       int32 // OR of all brushes (not needed?)
	Cluster        int16
	Area           int16
	Mins           [3]int16
	Maxs           [3]int16
	FirstLeafFace  uint16
	LeafFaceCount  uint16
	FirstLeafBrush uint16
	LeafBrushCount uint16
}

type dedge struct {
	V [2]uint16 // vertex numbers
}

type dmodel struct {
	Mins      [3]float32
	Maxs      [3]float32
	Origin    [3]float32 // for sounds or lights
	HeadNode  int32
	FirstFace int32 // submodels just draw faces without walking the bsp tree
	FaceCount int32
}

type dbrush struct {
	FirstSide int32
	SideCount int32
	Contents  int32
}

type dbrushside struct {
	PlaneID   uint16 // facing out of the leaf
	TexInfoID int16
}

type darea struct {
	PortalCount int32
	FirstPortal int32
}

type dareaportal struct {
	PortalNum int32
	OtherArea int32
}

type dvisOffsets struct {
	PVS int32
	PHS int32
}

const (
	planeSize      = 20
	vertexSize     = 12
	nodeSize       = 28
	texInfoSize    = 76
	faceSize       = 20
	leafSize       = 28
	leafFaceSize   = 2
	leafBrushSize  = 2
	edgeSize       = 4
	surfEdgeSize   = 4
	modelSize      = 48
	brushSize      = 12
	brushSideSize  = 4
	areaSize       = 8
	areaPortalSize = 8
)
