// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"q2map/math/vec"
)

// readRecords decodes a lump as an array of fixed size records.
func readRecords[D any](h *Header, data []byte, id LumpID, size int) ([]D, error) {
	l := h.Lumps[id]
	if int(l.Length)%size != 0 {
		return nil, structuralError(id, int64(l.Offset),
			"lump length %d is not a multiple of the record size %d", l.Length, size)
	}
	r := make([]D, int(l.Length)/size)
	if len(r) == 0 {
		return r, nil
	}
	q := newQReader(h.lumpData(data, id))
	if err := q.Read(r); err != nil {
		return nil, structuralError(id, int64(l.Offset)+q.Offset(), "could not read records: %v", err)
	}
	return r, nil
}

func planeType(n vec.Vec3) byte {
	switch {
	case n[0] == 1:
		return PlaneX
	case n[1] == 1:
		return PlaneY
	case n[2] == 1:
		return PlaneZ
	}
	a := n.Abs()
	if a[0] >= a[1] && a[0] >= a[2] {
		return PlaneAnyX
	}
	if a[1] >= a[0] && a[1] >= a[2] {
		return PlaneAnyY
	}
	return PlaneAnyZ
}

func signBits(n vec.Vec3) byte {
	var bits byte
	for j := 0; j < 3; j++ {
		if n[j] < 0 {
			bits |= 1 << j
		}
	}
	return bits
}

func decodePlanes(h *Header, data []byte) ([]Plane, error) {
	in, err := readRecords[dplane](h, data, LumpPlanes, planeSize)
	if err != nil {
		return nil, err
	}
	out := make([]Plane, len(in))
	for i, p := range in {
		n := vec.Vec3(p.Normal)
		t := byte(p.Type)
		// the fast path of axial planes relies on a positive unit normal
		if p.Type < 0 || p.Type > PlaneAnyZ || (t < 3 && n[t] != 1) {
			t = planeType(n)
		}
		out[i] = Plane{
			Normal:   n,
			Dist:     p.Distance,
			Type:     t,
			SignBits: signBits(n),
		}
	}
	return out, nil
}

func decodeVertexes(h *Header, data []byte) ([]vec.Vec3, error) {
	in, err := readRecords[dvertex](h, data, LumpVertexes, vertexSize)
	if err != nil {
		return nil, err
	}
	out := make([]vec.Vec3, len(in))
	for i, v := range in {
		out[i] = v.Point
	}
	return out, nil
}

func decodeEdges(h *Header, data []byte) ([]Edge, error) {
	in, err := readRecords[dedge](h, data, LumpEdges, edgeSize)
	if err != nil {
		return nil, err
	}
	out := make([]Edge, len(in))
	for i, e := range in {
		out[i] = Edge{V: [2]int{int(e.V[0]), int(e.V[1])}}
	}
	return out, nil
}

func decodeSurfEdges(h *Header, data []byte) ([]int32, error) {
	return readRecords[int32](h, data, LumpSurfEdges, surfEdgeSize)
}

func decodeNodes(h *Header, data []byte) ([]Node, error) {
	in, err := readRecords[dnode](h, data, LumpNodes, nodeSize)
	if err != nil {
		return nil, err
	}
	out := make([]Node, len(in))
	for i, n := range in {
		out[i] = Node{
			Plane: int(n.PlaneID),
			Children: [2]NodeRef{
				NodeRefFromChild(n.Children[0]),
				NodeRefFromChild(n.Children[1]),
			},
			Mins:      n.Mins,
			Maxs:      n.Maxs,
			FirstFace: int(n.FirstFace),
			FaceCount: int(n.FaceCount),
		}
	}
	return out, nil
}

func decodeTexInfos(h *Header, data []byte) ([]TexInfo, error) {
	in, err := readRecords[dtexinfo](h, data, LumpTexInfo, texInfoSize)
	if err != nil {
		return nil, err
	}
	out := make([]TexInfo, len(in))
	for i, t := range in {
		ti := TexInfo{
			Flags:   t.Flags,
			Value:   t.Value,
			Texture: t.Texture,
			Next:    int(t.Next),
		}
		for j := 0; j < 2; j++ {
			ti.Vecs[j] = TexInfoPos{
				Pos:    vec.Vec3{t.Vecs[j][0], t.Vecs[j][1], t.Vecs[j][2]},
				Offset: t.Vecs[j][3],
			}
		}
		out[i] = ti
	}
	return out, nil
}

func decodeFaces(h *Header, data []byte) ([]Face, error) {
	in, err := readRecords[dface](h, data, LumpFaces, faceSize)
	if err != nil {
		return nil, err
	}
	out := make([]Face, len(in))
	for i, f := range in {
		out[i] = Face{
			Plane:       int(f.PlaneID),
			Side:        int(f.Side),
			FirstEdge:   int(f.FirstEdge),
			EdgeCount:   int(f.EdgeCount),
			TexInfo:     int(f.TexInfoID),
			Styles:      f.Styles,
			LightOffset: int(f.LightOffset),
		}
	}
	return out, nil
}

func decodeLeafs(h *Header, data []byte) ([]Leaf, error) {
	in, err := readRecords[dleaf](h, data, LumpLeafs, leafSize)
	if err != nil {
		return nil, err
	}
	out := make([]Leaf, len(in))
	for i, l := range in {
		out[i] = Leaf{
			Contents:       l.Contents,
			Cluster:        int(l.Cluster),
			Area:           int(l.Area),
			Mins:           l.Mins,
			Maxs:           l.Maxs,
			FirstLeafFace:  int(l.FirstLeafFace),
			LeafFaceCount:  int(l.LeafFaceCount),
			FirstLeafBrush: int(l.FirstLeafBrush),
			LeafBrushCount: int(l.LeafBrushCount),
		}
	}
	return out, nil
}

// decodeIndexList decodes a list of uint16 indices that all have to be
// smaller than count.
func decodeIndexList(h *Header, data []byte, id LumpID, count int) ([]int, error) {
	in, err := readRecords[uint16](h, data, id, 2)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(in))
	for i, v := range in {
		if int(v) >= count {
			return nil, referentialError(id, int64(h.Lumps[id].Offset)+int64(i*2),
				"index %d at entry %d out of range, have %d", v, i, count)
		}
		out[i] = int(v)
	}
	return out, nil
}

func decodeLeafFaces(h *Header, data []byte, faceCount int) ([]int, error) {
	return decodeIndexList(h, data, LumpLeafFaces, faceCount)
}

func decodeLeafBrushes(h *Header, data []byte, brushCount int) ([]int, error) {
	return decodeIndexList(h, data, LumpLeafBrushes, brushCount)
}

func decodeModels(h *Header, data []byte) ([]Model, error) {
	in, err := readRecords[dmodel](h, data, LumpModels, modelSize)
	if err != nil {
		return nil, err
	}
	out := make([]Model, len(in))
	for i, m := range in {
		out[i] = Model{
			Mins:      m.Mins,
			Maxs:      m.Maxs,
			Origin:    m.Origin,
			HeadNode:  NodeRefFromChild(m.HeadNode),
			FirstFace: int(m.FirstFace),
			FaceCount: int(m.FaceCount),
		}
	}
	return out, nil
}

func decodeBrushes(h *Header, data []byte) ([]Brush, error) {
	in, err := readRecords[dbrush](h, data, LumpBrushes, brushSize)
	if err != nil {
		return nil, err
	}
	out := make([]Brush, len(in))
	for i, b := range in {
		out[i] = Brush{
			FirstSide: int(b.FirstSide),
			SideCount: int(b.SideCount),
			Contents:  b.Contents,
		}
	}
	return out, nil
}

func decodeBrushSides(h *Header, data []byte) ([]BrushSide, error) {
	in, err := readRecords[dbrushside](h, data, LumpBrushSides, brushSideSize)
	if err != nil {
		return nil, err
	}
	out := make([]BrushSide, len(in))
	for i, s := range in {
		out[i] = BrushSide{
			Plane:   int(s.PlaneID),
			TexInfo: int(s.TexInfoID),
		}
	}
	return out, nil
}

func decodeAreas(h *Header, data []byte) ([]Area, error) {
	in, err := readRecords[darea](h, data, LumpAreas, areaSize)
	if err != nil {
		return nil, err
	}
	out := make([]Area, len(in))
	for i, a := range in {
		out[i] = Area{
			PortalCount: int(a.PortalCount),
			FirstPortal: int(a.FirstPortal),
		}
	}
	return out, nil
}

func decodeAreaPortals(h *Header, data []byte) ([]AreaPortal, error) {
	in, err := readRecords[dareaportal](h, data, LumpAreaPortals, areaPortalSize)
	if err != nil {
		return nil, err
	}
	out := make([]AreaPortal, len(in))
	for i, p := range in {
		out[i] = AreaPortal{
			PortalNum: int(p.PortalNum),
			OtherArea: int(p.OtherArea),
		}
	}
	return out, nil
}
