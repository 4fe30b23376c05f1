// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"q2map/filesystem"
	"q2map/math/vec"
	"q2map/metrics"
)

// Map is a parsed map file. It is never modified after Parse returned and
// may be shared between goroutines without locking.
type Map struct {
	name   string
	LoadID uuid.UUID
	Header Header

	EntityData []byte // raw entity text without the terminating zero
	Entities   []*Entity

	Planes      []Plane
	Vertexes    []vec.Vec3
	Edges       []Edge
	SurfEdges   []int32 // negative values use the edge backwards
	Faces       []Face
	TexInfos    []TexInfo
	Nodes       []Node
	Leafs       []Leaf
	LeafFaces   []int
	LeafBrushes []int
	Models      []Model
	Brushes     []Brush
	BrushSides  []BrushSide
	Areas       []Area
	AreaPortals []AreaPortal
	LightData   []byte

	Vis *Visibility // nil if the map has no visibility data
}

func (m *Map) Name() string {
	return m.name
}

// World returns model 0.
func (m *Map) World() *Model {
	return &m.Models[0]
}

// Mins and Maxs return the bounds of the world model.
func (m *Map) Mins() vec.Vec3 {
	return m.Models[0].Mins
}

func (m *Map) Maxs() vec.Vec3 {
	return m.Models[0].Maxs
}

// InlineModel resolves a model reference of the form "*N".
func (m *Map) InlineModel(name string) (*Model, error) {
	if !strings.HasPrefix(name, "*") {
		return nil, errors.Errorf("%q is not an inline model", name)
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil {
		return nil, errors.Wrapf(err, "bad inline model %q", name)
	}
	if n < 1 || n >= len(m.Models) {
		return nil, errors.Errorf("inline model %q out of range, map has %d", name, len(m.Models)-1)
	}
	return &m.Models[n], nil
}

// Load reads the named map through the filesystem and parses it.
func Load(name string) (*Map, error) {
	b, err := filesystem.ReadFile(name)
	if err != nil {
		metrics.LoadFailed("io")
		return nil, errors.Wrapf(err, "could not read %s", name)
	}
	return Parse(name, b)
}

// Parse decodes and validates a complete map. It either returns a fully
// valid map or an error wrapping a *ParseError.
func Parse(name string, data []byte) (*Map, error) {
	start := time.Now()
	m, err := parse(name, data)
	if err != nil {
		kind := "unknown"
		if pe, ok := AsParseError(err); ok {
			kind = pe.Kind.String()
		}
		metrics.LoadFailed(kind)
		return nil, errors.Wrapf(err, "could not load %s", name)
	}
	metrics.ObserveLoad(time.Since(start))
	slog.Debug("Loaded map",
		slog.String("name", name),
		slog.String("id", m.LoadID.String()),
		slog.Int("nodes", len(m.Nodes)),
		slog.Int("leafs", len(m.Leafs)),
		slog.Int("brushes", len(m.Brushes)),
		slog.Int("models", len(m.Models)))
	return m, nil
}

func parse(name string, data []byte) (*Map, error) {
	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	m := &Map{
		name:   name,
		LoadID: uuid.Must(uuid.NewV7()),
		Header: *h,
	}
	if m.Planes, err = decodePlanes(h, data); err != nil {
		return nil, err
	}
	if m.Vertexes, err = decodeVertexes(h, data); err != nil {
		return nil, err
	}
	if m.Edges, err = decodeEdges(h, data); err != nil {
		return nil, err
	}
	if m.SurfEdges, err = decodeSurfEdges(h, data); err != nil {
		return nil, err
	}
	if m.TexInfos, err = decodeTexInfos(h, data); err != nil {
		return nil, err
	}
	if m.Faces, err = decodeFaces(h, data); err != nil {
		return nil, err
	}
	if m.LeafFaces, err = decodeLeafFaces(h, data, len(m.Faces)); err != nil {
		return nil, err
	}
	if m.Brushes, err = decodeBrushes(h, data); err != nil {
		return nil, err
	}
	if m.BrushSides, err = decodeBrushSides(h, data); err != nil {
		return nil, err
	}
	if m.LeafBrushes, err = decodeLeafBrushes(h, data, len(m.Brushes)); err != nil {
		return nil, err
	}
	if m.Leafs, err = decodeLeafs(h, data); err != nil {
		return nil, err
	}
	if m.Nodes, err = decodeNodes(h, data); err != nil {
		return nil, err
	}
	if m.Models, err = decodeModels(h, data); err != nil {
		return nil, err
	}
	if m.Areas, err = decodeAreas(h, data); err != nil {
		return nil, err
	}
	if m.AreaPortals, err = decodeAreaPortals(h, data); err != nil {
		return nil, err
	}
	if m.Vis, err = decodeVisibility(h, data); err != nil {
		return nil, err
	}
	m.LightData = bytes.Clone(h.lumpData(data, LumpLighting))

	m.EntityData = bytes.Clone(bytes.TrimRight(h.lumpData(data, LumpEntities), "\x00"))
	if m.Entities, err = ParseEntities(m.EntityData); err != nil {
		return nil, structuralError(LumpEntities, int64(h.Lumps[LumpEntities].Offset), "%v", err)
	}

	if err := m.link(); err != nil {
		return nil, err
	}
	return m, nil
}

// recordOffset returns the file offset of record i of lump id.
func (m *Map) recordOffset(id LumpID, i, size int) int64 {
	return int64(m.Header.Lumps[id].Offset) + int64(i)*int64(size)
}

func inRange(first, count, length int) bool {
	return first >= 0 && count >= 0 && first+count <= length
}

// link validates every cross reference the queries rely on. After link
// succeeded no query can index out of range.
func (m *Map) link() error {
	if len(m.Models) == 0 {
		return structuralError(LumpModels, m.recordOffset(LumpModels, 0, 0), "map has no models")
	}
	if len(m.Leafs) == 0 {
		return structuralError(LumpLeafs, m.recordOffset(LumpLeafs, 0, 0), "map has no leafs")
	}
	checkRef := func(id LumpID, i, size int, r NodeRef) error {
		if r.IsLeaf() {
			if r.Index() >= len(m.Leafs) {
				return referentialError(id, m.recordOffset(id, i, size),
					"leaf %d out of range, have %d", r.Index(), len(m.Leafs))
			}
			return nil
		}
		if r.Index() >= len(m.Nodes) {
			return referentialError(id, m.recordOffset(id, i, size),
				"node %d out of range, have %d", r.Index(), len(m.Nodes))
		}
		return nil
	}
	for i, e := range m.Edges {
		for _, v := range e.V {
			if v >= len(m.Vertexes) {
				return referentialError(LumpEdges, m.recordOffset(LumpEdges, i, edgeSize),
					"vertex %d out of range, have %d", v, len(m.Vertexes))
			}
		}
	}
	for i, se := range m.SurfEdges {
		e := int64(se)
		if e < 0 {
			e = -e
		}
		if e >= int64(len(m.Edges)) {
			return referentialError(LumpSurfEdges, m.recordOffset(LumpSurfEdges, i, surfEdgeSize),
				"edge %d out of range, have %d", se, len(m.Edges))
		}
	}
	for i, t := range m.TexInfos {
		if t.Next < -1 || t.Next >= len(m.TexInfos) {
			return referentialError(LumpTexInfo, m.recordOffset(LumpTexInfo, i, texInfoSize),
				"next texinfo %d out of range, have %d", t.Next, len(m.TexInfos))
		}
	}
	for i, f := range m.Faces {
		ofs := m.recordOffset(LumpFaces, i, faceSize)
		if f.Plane >= len(m.Planes) {
			return referentialError(LumpFaces, ofs, "plane %d out of range, have %d", f.Plane, len(m.Planes))
		}
		if f.TexInfo < 0 || f.TexInfo >= len(m.TexInfos) {
			return referentialError(LumpFaces, ofs, "texinfo %d out of range, have %d", f.TexInfo, len(m.TexInfos))
		}
		if !inRange(f.FirstEdge, f.EdgeCount, len(m.SurfEdges)) {
			return referentialError(LumpFaces, ofs, "surfedges [%d,+%d) out of range, have %d",
				f.FirstEdge, f.EdgeCount, len(m.SurfEdges))
		}
	}
	for i, n := range m.Nodes {
		ofs := m.recordOffset(LumpNodes, i, nodeSize)
		if n.Plane < 0 || n.Plane >= len(m.Planes) {
			return referentialError(LumpNodes, ofs, "plane %d out of range, have %d", n.Plane, len(m.Planes))
		}
		if !inRange(n.FirstFace, n.FaceCount, len(m.Faces)) {
			return referentialError(LumpNodes, ofs, "faces [%d,+%d) out of range, have %d",
				n.FirstFace, n.FaceCount, len(m.Faces))
		}
		for _, c := range n.Children {
			if err := checkRef(LumpNodes, i, nodeSize, c); err != nil {
				return err
			}
			// children are always written after their parent, this keeps
			// every descent finite
			if !c.IsLeaf() && c.Index() <= i {
				return referentialError(LumpNodes, ofs, "child node %d does not follow its parent", c.Index())
			}
		}
	}
	for i, l := range m.Leafs {
		ofs := m.recordOffset(LumpLeafs, i, leafSize)
		if !inRange(l.FirstLeafFace, l.LeafFaceCount, len(m.LeafFaces)) {
			return referentialError(LumpLeafs, ofs, "leaf faces [%d,+%d) out of range, have %d",
				l.FirstLeafFace, l.LeafFaceCount, len(m.LeafFaces))
		}
		if !inRange(l.FirstLeafBrush, l.LeafBrushCount, len(m.LeafBrushes)) {
			return referentialError(LumpLeafs, ofs, "leaf brushes [%d,+%d) out of range, have %d",
				l.FirstLeafBrush, l.LeafBrushCount, len(m.LeafBrushes))
		}
		if m.Vis != nil && (l.Cluster < -1 || l.Cluster >= m.Vis.ClusterCount) {
			return referentialError(LumpLeafs, ofs, "cluster %d out of range, have %d", l.Cluster, m.Vis.ClusterCount)
		}
		if len(m.Areas) > 0 && (l.Area < 0 || l.Area >= len(m.Areas)) {
			return referentialError(LumpLeafs, ofs, "area %d out of range, have %d", l.Area, len(m.Areas))
		}
	}
	for i, b := range m.Brushes {
		if !inRange(b.FirstSide, b.SideCount, len(m.BrushSides)) {
			return referentialError(LumpBrushes, m.recordOffset(LumpBrushes, i, brushSize),
				"sides [%d,+%d) out of range, have %d", b.FirstSide, b.SideCount, len(m.BrushSides))
		}
	}
	for i, s := range m.BrushSides {
		ofs := m.recordOffset(LumpBrushSides, i, brushSideSize)
		if s.Plane >= len(m.Planes) {
			return referentialError(LumpBrushSides, ofs, "plane %d out of range, have %d", s.Plane, len(m.Planes))
		}
		if s.TexInfo < -1 || s.TexInfo >= len(m.TexInfos) {
			return referentialError(LumpBrushSides, ofs, "texinfo %d out of range, have %d", s.TexInfo, len(m.TexInfos))
		}
	}
	for i, md := range m.Models {
		if err := checkRef(LumpModels, i, modelSize, md.HeadNode); err != nil {
			return err
		}
		if !inRange(md.FirstFace, md.FaceCount, len(m.Faces)) {
			return referentialError(LumpModels, m.recordOffset(LumpModels, i, modelSize),
				"faces [%d,+%d) out of range, have %d", md.FirstFace, md.FaceCount, len(m.Faces))
		}
	}
	for i, a := range m.Areas {
		if !inRange(a.FirstPortal, a.PortalCount, len(m.AreaPortals)) {
			return referentialError(LumpAreas, m.recordOffset(LumpAreas, i, areaSize),
				"portals [%d,+%d) out of range, have %d", a.FirstPortal, a.PortalCount, len(m.AreaPortals))
		}
	}
	for i, p := range m.AreaPortals {
		if p.OtherArea < 0 || p.OtherArea >= len(m.Areas) || p.PortalNum < 0 {
			return referentialError(LumpAreaPortals, m.recordOffset(LumpAreaPortals, i, areaPortalSize),
				"portal %d to area %d out of range, have %d areas", p.PortalNum, p.OtherArea, len(m.Areas))
		}
	}
	return nil
}
