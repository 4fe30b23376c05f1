// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"bytes"
	"encoding/binary"
	"reflect"
	"strings"
	"testing"
)

func TestParseCube(t *testing.T) {
	m := cubeMap().parse(t)
	if m.Name() != "test.bsp" {
		t.Errorf("Name() = %q, want %q", m.Name(), "test.bsp")
	}
	counts := []struct {
		name      string
		got, want int
	}{
		{"planes", len(m.Planes), 7},
		{"vertexes", len(m.Vertexes), 8},
		{"edges", len(m.Edges), 9},
		{"surfedges", len(m.SurfEdges), 8},
		{"texinfos", len(m.TexInfos), 5},
		{"faces", len(m.Faces), 2},
		{"nodes", len(m.Nodes), 6},
		{"leafs", len(m.Leafs), 2},
		{"leaffaces", len(m.LeafFaces), 2},
		{"leafbrushes", len(m.LeafBrushes), 2},
		{"models", len(m.Models), 2},
		{"brushes", len(m.Brushes), 2},
		{"brushsides", len(m.BrushSides), 12},
		{"areas", len(m.Areas), 2},
		{"entities", len(m.Entities), 3},
		{"lighting", len(m.LightData), 54},
	}
	for _, c := range counts {
		if c.got != c.want {
			t.Errorf("len(%s) = %d, want %d", c.name, c.got, c.want)
		}
	}
	if m.Vis == nil || m.Vis.ClusterCount != 1 || m.Vis.RowSize != 1 {
		t.Errorf("Vis = %+v, want 1 cluster", m.Vis)
	}
	if got := m.Nodes[5].Children[1]; got != LeafIndex(1) {
		t.Errorf("node 5 back child = %v, want leaf 1", got)
	}
	if got := m.Models[1].HeadNode; !got.IsLeaf() || got.Index() != 1 {
		t.Errorf("model 1 head = %v, want leaf 1", got)
	}
	if got := m.World().HeadNode; got != NodeIndex(0) {
		t.Errorf("world head = %v, want node 0", got)
	}
	if m.Mins() != (m.Models[0].Mins) || m.Maxs()[2] != 16 {
		t.Errorf("bounds = %v %v", m.Mins(), m.Maxs())
	}
	if got := m.TexInfos[0].Name(); got != "e1u1/wall1" {
		t.Errorf("texture name = %q, want %q", got, "e1u1/wall1")
	}
	if strings.HasSuffix(string(m.EntityData), "\x00") {
		t.Errorf("entity data keeps the terminating zero")
	}
}

func TestPlaneDecode(t *testing.T) {
	tm := cubeMap()
	// a wrong axial type is recomputed
	tm.planes[0].Type = PlaneY
	tm.planes[2].Type = 17
	m := tm.parse(t)
	want := []struct {
		typ, signBits byte
	}{
		{PlaneX, 0},
		{PlaneAnyX, 1},
		{PlaneY, 0},
		{PlaneAnyY, 2},
		{PlaneZ, 0},
		{PlaneAnyZ, 4},
	}
	for i, w := range want {
		p := m.Planes[i]
		if p.Type != w.typ || p.SignBits != w.signBits {
			t.Errorf("plane %d: type %d signbits %d, want %d %d", i, p.Type, p.SignBits, w.typ, w.signBits)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	data := cubeMap().bytes(t)
	m1, err := Parse("a", data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m2, err := Parse("a", data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m1.LoadID == m2.LoadID {
		t.Errorf("two loads share the id %v", m1.LoadID)
	}
	m2.LoadID = m1.LoadID
	if !reflect.DeepEqual(m1, m2) {
		t.Errorf("parsing the same data twice gives different maps")
	}
}

func TestParseCopiesData(t *testing.T) {
	data := cubeMap().bytes(t)
	m, err := Parse("a", data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	light := append([]byte(nil), m.LightData...)
	ents := string(m.EntityData)
	for i := range data {
		data[i] = 0xaa
	}
	if !bytes.Equal(m.LightData, light) {
		t.Errorf("LightData changed with the input buffer")
	}
	if string(m.EntityData) != ents {
		t.Errorf("EntityData changed with the input buffer")
	}
}

func TestInlineModel(t *testing.T) {
	m := cubeMap().parse(t)
	md, err := m.InlineModel("*1")
	if err != nil {
		t.Fatalf("InlineModel(*1): %v", err)
	}
	if md != &m.Models[1] {
		t.Errorf("InlineModel(*1) = %v, want model 1", md)
	}
	for _, n := range []string{"*0", "*2", "*x", "1", ""} {
		if _, err := m.InlineModel(n); err == nil {
			t.Errorf("InlineModel(%q) succeeded, want error", n)
		}
	}
}

// rawLump replaces lump id with n zero bytes.
func rawLump(id LumpID, n int) func(*testMap) {
	return func(tm *testMap) {
		tm.raw = map[LumpID][]byte{id: make([]byte, n)}
	}
}

func TestParseErrors(t *testing.T) {
	patchLump := func(id LumpID, length uint32) func([]byte) {
		return func(d []byte) {
			binary.LittleEndian.PutUint32(d[8+int(id)*8+4:], length)
		}
	}
	tests := []struct {
		name   string
		mutate func(*testMap)
		patch  func([]byte)
		kind   ErrorKind
		lump   LumpID
	}{
		{name: "magic", patch: func(d []byte) { d[0] = 'X' }, kind: Structural, lump: noLump},
		{name: "version", patch: func(d []byte) { d[4] = 39 }, kind: Structural, lump: noLump},
		{name: "lump bounds", patch: patchLump(LumpPlanes, 1<<20), kind: Structural, lump: LumpPlanes},
		{name: "negative length", patch: patchLump(LumpFaces, 0xffffffff), kind: Structural, lump: LumpFaces},
		{name: "edge record size", mutate: rawLump(LumpEdges, 6), kind: Structural, lump: LumpEdges},
		{name: "plane record size", mutate: rawLump(LumpPlanes, planeSize+1), kind: Structural, lump: LumpPlanes},
		{name: "vertex record size", mutate: rawLump(LumpVertexes, vertexSize*2-1), kind: Structural, lump: LumpVertexes},
		{name: "node record size", mutate: rawLump(LumpNodes, nodeSize-1), kind: Structural, lump: LumpNodes},
		{name: "texinfo record size", mutate: rawLump(LumpTexInfo, texInfoSize+4), kind: Structural, lump: LumpTexInfo},
		{name: "face record size", mutate: rawLump(LumpFaces, faceSize+2), kind: Structural, lump: LumpFaces},
		{name: "leaf record size", mutate: rawLump(LumpLeafs, leafSize*2+1), kind: Structural, lump: LumpLeafs},
		{name: "model record size", mutate: rawLump(LumpModels, modelSize-4), kind: Structural, lump: LumpModels},
		{name: "brush record size", mutate: rawLump(LumpBrushes, brushSize+1), kind: Structural, lump: LumpBrushes},
		{name: "brush side record size", mutate: rawLump(LumpBrushSides, brushSideSize+2), kind: Structural, lump: LumpBrushSides},
		{
			name:   "leaf face index",
			mutate: func(tm *testMap) { tm.leafFaces[1] = 5 },
			kind:   Referential, lump: LumpLeafFaces,
		},
		{
			name:   "leaf brush index",
			mutate: func(tm *testMap) { tm.leafBrushes[0] = 9 },
			kind:   Referential, lump: LumpLeafBrushes,
		},
		{
			name:   "leaf brush range",
			mutate: func(tm *testMap) { tm.leafs[1].LeafBrushCount = 3 },
			kind:   Referential, lump: LumpLeafs,
		},
		{
			name:   "leaf cluster",
			mutate: func(tm *testMap) { tm.leafs[0].Cluster = 3 },
			kind:   Referential, lump: LumpLeafs,
		},
		{
			name:   "node plane",
			mutate: func(tm *testMap) { tm.nodes[2].PlaneID = 99 },
			kind:   Referential, lump: LumpNodes,
		},
		{
			name:   "node child",
			mutate: func(tm *testMap) { tm.nodes[5].Children[1] = -10 },
			kind:   Referential, lump: LumpNodes,
		},
		{
			name:   "node cycle",
			mutate: func(tm *testMap) { tm.nodes[3].Children[1] = 1 },
			kind:   Referential, lump: LumpNodes,
		},
		{
			name:   "brush sides",
			mutate: func(tm *testMap) { tm.brushes[1].SideCount = 7 },
			kind:   Referential, lump: LumpBrushes,
		},
		{
			name:   "brush side plane",
			mutate: func(tm *testMap) { tm.brushSides[0].PlaneID = 99 },
			kind:   Referential, lump: LumpBrushSides,
		},
		{
			name:   "surfedge",
			mutate: func(tm *testMap) { tm.surfEdges[0] = -100 },
			kind:   Referential, lump: LumpSurfEdges,
		},
		{
			name:   "edge vertex",
			mutate: func(tm *testMap) { tm.edges[3].V[1] = 8 },
			kind:   Referential, lump: LumpEdges,
		},
		{
			name:   "face texinfo",
			mutate: func(tm *testMap) { tm.faces[1].TexInfoID = 5 },
			kind:   Referential, lump: LumpFaces,
		},
		{
			name:   "model head",
			mutate: func(tm *testMap) { tm.models[1].HeadNode = 17 },
			kind:   Referential, lump: LumpModels,
		},
		{
			name:   "vis offset",
			mutate: func(tm *testMap) { tm.vis[4] = 99 },
			kind:   Referential, lump: LumpVisibility,
		},
		{
			name: "vis overrun",
			mutate: func(tm *testMap) {
				tm.vis = []byte{1, 0, 0, 0, 12, 0, 0, 0, 12, 0, 0, 0, 0}
			},
			kind: Decompression, lump: LumpVisibility,
		},
		{
			name:   "vis cluster count",
			mutate: func(tm *testMap) { tm.vis[0] = 100 },
			kind:   Structural, lump: LumpVisibility,
		},
		{
			name:   "entities",
			mutate: func(tm *testMap) { tm.entities = `{ "classname" "worldspawn"` },
			kind:   Structural, lump: LumpEntities,
		},
		{
			name:   "no models",
			mutate: func(tm *testMap) { tm.models = nil },
			kind:   Structural, lump: LumpModels,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tm := cubeMap()
			if tc.mutate != nil {
				tc.mutate(tm)
			}
			data := tm.bytes(t)
			if tc.patch != nil {
				tc.patch(data)
			}
			m, err := Parse("bad.bsp", data)
			if err == nil {
				t.Fatalf("Parse succeeded, want %v error", tc.kind)
			}
			if m != nil {
				t.Errorf("Parse returned a map together with %v", err)
			}
			pe, ok := AsParseError(err)
			if !ok {
				t.Fatalf("Parse error %v is no ParseError", err)
			}
			if pe.Kind != tc.kind || pe.Lump != tc.lump {
				t.Errorf("Parse error = %v, want kind %v in lump %v", err, tc.kind, tc.lump)
			}
			if tc.lump != noLump && !strings.Contains(err.Error(), tc.lump.String()) {
				t.Errorf("error %q does not name lump %v", err, tc.lump)
			}
		})
	}
}

func TestParseShort(t *testing.T) {
	data := cubeMap().bytes(t)
	for _, n := range []int{0, 4, HeaderSize - 1} {
		_, err := Parse("short.bsp", data[:n])
		pe, ok := AsParseError(err)
		if !ok || pe.Kind != Structural {
			t.Errorf("Parse(%d bytes) = %v, want structural error", n, err)
		}
	}
	// cutting the file moves the last lumps out of bounds
	if _, err := Parse("cut.bsp", data[:len(data)-8]); err == nil {
		t.Errorf("Parse of a cut file succeeded")
	}
}

func TestNoVisibility(t *testing.T) {
	tm := cubeMap()
	tm.vis = nil
	tm.leafs[0].Cluster = 7 // not checked without visibility
	m := tm.parse(t)
	if m.Vis != nil {
		t.Fatalf("Vis = %+v, want nil", m.Vis)
	}
	if got := m.ClusterPVS(0); got != nil {
		t.Errorf("ClusterPVS(0) = %v, want nil", got)
	}
	if got := m.ClusterPHS(0); got != nil {
		t.Errorf("ClusterPHS(0) = %v, want nil", got)
	}
	if !m.ClusterVisible(0, 7) {
		t.Errorf("ClusterVisible(0, 7) = false without visibility")
	}
	if got := m.FatPVS(vec3(20, 0, 0)); got != nil {
		t.Errorf("FatPVS = %v, want nil", got)
	}
}
