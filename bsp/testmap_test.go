// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// testMap holds the records of a synthetic map and writes the file.
type testMap struct {
	entities    string
	planes      []dplane
	vertexes    []dvertex
	vis         []byte
	nodes       []dnode
	texInfos    []dtexinfo
	faces       []dface
	lighting    []byte
	leafs       []dleaf
	leafFaces   []uint16
	leafBrushes []uint16
	edges       []dedge
	surfEdges   []int32
	models      []dmodel
	brushes     []dbrush
	brushSides  []dbrushside
	areas       []darea
	areaPortals []dareaportal

	raw map[LumpID][]byte // replaces the encoded lump
}

func encode(t *testing.T, v interface{}) []byte {
	t.Helper()
	if binary.Size(v) <= 0 {
		return nil
	}
	var b bytes.Buffer
	if err := binary.Write(&b, binary.LittleEndian, v); err != nil {
		t.Fatalf("could not encode %T: %v", v, err)
	}
	return b.Bytes()
}

func (tm *testMap) bytes(t *testing.T) []byte {
	t.Helper()
	var lumps [LumpCount][]byte
	if tm.entities != "" {
		lumps[LumpEntities] = append([]byte(tm.entities), 0)
	}
	lumps[LumpPlanes] = encode(t, tm.planes)
	lumps[LumpVertexes] = encode(t, tm.vertexes)
	lumps[LumpVisibility] = tm.vis
	lumps[LumpNodes] = encode(t, tm.nodes)
	lumps[LumpTexInfo] = encode(t, tm.texInfos)
	lumps[LumpFaces] = encode(t, tm.faces)
	lumps[LumpLighting] = tm.lighting
	lumps[LumpLeafs] = encode(t, tm.leafs)
	lumps[LumpLeafFaces] = encode(t, tm.leafFaces)
	lumps[LumpLeafBrushes] = encode(t, tm.leafBrushes)
	lumps[LumpEdges] = encode(t, tm.edges)
	lumps[LumpSurfEdges] = encode(t, tm.surfEdges)
	lumps[LumpModels] = encode(t, tm.models)
	lumps[LumpBrushes] = encode(t, tm.brushes)
	lumps[LumpBrushSides] = encode(t, tm.brushSides)
	lumps[LumpAreas] = encode(t, tm.areas)
	lumps[LumpAreaPortals] = encode(t, tm.areaPortals)
	for id, b := range tm.raw {
		lumps[id] = b
	}

	h := Header{Magic: Magic, Version: Version}
	var body bytes.Buffer
	for i, l := range lumps {
		h.Lumps[i] = Lump{Offset: int32(HeaderSize + body.Len()), Length: int32(len(l))}
		body.Write(l)
		// keep lumps 4 byte aligned like the compiler does
		for body.Len()%4 != 0 {
			body.WriteByte(0)
		}
	}
	return append(encode(t, h), body.Bytes()...)
}

func (tm *testMap) parse(t *testing.T) *Map {
	t.Helper()
	m, err := Parse("test.bsp", tm.bytes(t))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return m
}

func texName(n string) [32]byte {
	var r [32]byte
	copy(r[:], n)
	return r
}

const cubeEntities = `{
"classname" "worldspawn"
"message" "cube"
}
// comment between entities
{
"classname" "info_player_start"
"origin" "-32 0 0"
"angle" "90"
}
{
"model" "*1"
"classname" "func_door"
}
`

// cubeMap is a world with a solid cube brush at +-16 on every axis. A water
// brush fills the cube below x = -8. The cube is cut out of the tree by
// one node per side, the empty outside is leaf 0, the cube leaf 1.
// Model 1 uses the cube leaf as head node.
func cubeMap() *testMap {
	tm := &testMap{
		entities: cubeEntities,
		planes: []dplane{
			{Normal: [3]float32{1, 0, 0}, Distance: 16, Type: PlaneX},
			{Normal: [3]float32{-1, 0, 0}, Distance: 16, Type: PlaneAnyX},
			{Normal: [3]float32{0, 1, 0}, Distance: 16, Type: PlaneY},
			{Normal: [3]float32{0, -1, 0}, Distance: 16, Type: PlaneAnyY},
			{Normal: [3]float32{0, 0, 1}, Distance: 16, Type: PlaneZ},
			{Normal: [3]float32{0, 0, -1}, Distance: 16, Type: PlaneAnyZ},
			{Normal: [3]float32{1, 0, 0}, Distance: -8, Type: PlaneX},
		},
		vertexes: []dvertex{
			// +x face
			{[3]float32{16, -16, -16}},
			{[3]float32{16, 16, -16}},
			{[3]float32{16, 16, 16}},
			{[3]float32{16, -16, 16}},
			// +z face
			{[3]float32{-16, -16, 16}},
			{[3]float32{16, -16, 16}},
			{[3]float32{16, 16, 16}},
			{[3]float32{-16, 16, 16}},
		},
		edges: []dedge{
			{}, // edge 0 is never used
			{[2]uint16{0, 1}}, {[2]uint16{1, 2}}, {[2]uint16{2, 3}}, {[2]uint16{3, 0}},
			{[2]uint16{4, 5}}, {[2]uint16{5, 6}}, {[2]uint16{7, 6}}, {[2]uint16{7, 4}},
		},
		surfEdges: []int32{1, 2, 3, 4, 5, 6, -7, 8},
		texInfos: []dtexinfo{
			{
				Vecs:    [2][4]float32{{0, 1, 0, 0}, {0, 0, 1, 0}},
				Texture: texName("e1u1/wall1"),
				Next:    -1,
			},
			{
				Vecs:    [2][4]float32{{1, 0, 0, 0}, {0, 1, 0, 0}},
				Texture: texName("e1u1/floor"),
				Next:    -1,
			},
			{Texture: texName("e1u1/+0slip"), Next: 3},
			{Texture: texName("e1u1/+1slip"), Next: 4},
			{Texture: texName("e1u1/+2slip"), Next: 2},
		},
		faces: []dface{
			{PlaneID: 0, FirstEdge: 0, EdgeCount: 4, TexInfoID: 0, Styles: [4]uint8{0, 255, 255, 255}, LightOffset: 0},
			{PlaneID: 4, FirstEdge: 4, EdgeCount: 4, TexInfoID: 1, Styles: [4]uint8{0, 255, 255, 255}, LightOffset: 27},
		},
		lighting:  append(bytes.Repeat([]byte{50}, 27), bytes.Repeat([]byte{100}, 27)...),
		leafFaces: []uint16{0, 1},
		leafs: []dleaf{
			{Contents: 0, Cluster: 0, Area: 1, Mins: [3]int16{-4096, -4096, -4096}, Maxs: [3]int16{4096, 4096, 4096},
				FirstLeafFace: 0, LeafFaceCount: 2},
			{Contents: ContentsSolid, Cluster: -1, Area: 0, Mins: [3]int16{-16, -16, -16}, Maxs: [3]int16{16, 16, 16},
				FirstLeafBrush: 0, LeafBrushCount: 2},
		},
		leafBrushes: []uint16{0, 1},
		brushes: []dbrush{
			{FirstSide: 0, SideCount: 6, Contents: ContentsSolid},
			{FirstSide: 6, SideCount: 6, Contents: ContentsWater},
		},
		brushSides: []dbrushside{
			{PlaneID: 0, TexInfoID: 0},
			{PlaneID: 1, TexInfoID: -1},
			{PlaneID: 2, TexInfoID: -1},
			{PlaneID: 3, TexInfoID: -1},
			{PlaneID: 4, TexInfoID: 1},
			{PlaneID: 5, TexInfoID: -1},

			{PlaneID: 6, TexInfoID: -1},
			{PlaneID: 1, TexInfoID: -1},
			{PlaneID: 2, TexInfoID: -1},
			{PlaneID: 3, TexInfoID: -1},
			{PlaneID: 4, TexInfoID: -1},
			{PlaneID: 5, TexInfoID: -1},
		},
		models: []dmodel{
			{Mins: [3]float32{-16, -16, -16}, Maxs: [3]float32{16, 16, 16}, HeadNode: 0, FirstFace: 0, FaceCount: 2},
			{Mins: [3]float32{-16, -16, -16}, Maxs: [3]float32{16, 16, 16}, HeadNode: -2},
		},
		areas: []darea{
			{}, // area 0 is the solid area
			{},
		},
		// one cluster that sees and hears itself
		vis: []byte{
			1, 0, 0, 0,
			12, 0, 0, 0, 13, 0, 0, 0,
			0x01, 0x01,
		},
	}
	for i := 0; i < 6; i++ {
		n := dnode{
			PlaneID:  int32(i),
			Children: [2]int32{-1, int32(i + 1)},
			Mins:     [3]int16{-16, -16, -16},
			Maxs:     [3]int16{16, 16, 16},
		}
		if i == 5 {
			n.Children[1] = -2
		}
		switch i {
		case 0:
			n.FirstFace, n.FaceCount = 0, 1
		case 4:
			n.FirstFace, n.FaceCount = 1, 1
		}
		tm.nodes = append(tm.nodes, n)
	}
	return tm
}
