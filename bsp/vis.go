// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"bytes"

	"q2map/math/vec"
)

// Visibility holds the decompressed potentially visible and potentially
// hearable sets. Row i has one bit per cluster.
type Visibility struct {
	ClusterCount int
	RowSize      int
	pvs          []byte
	phs          []byte
	all          []byte
}

func (v *Visibility) row(rows []byte, cluster int) []byte {
	if cluster < 0 || cluster >= v.ClusterCount {
		return v.all
	}
	return rows[cluster*v.RowSize : (cluster+1)*v.RowSize : (cluster+1)*v.RowSize]
}

// decompressRow expands the run length encoded row at ofs into row.
//
// 'in' is compressed and looks like
// 70550311
// and gets uncompressed to
// 700000500011	(7 5x0 5 3x0 1 1)
func decompressRow(in []byte, ofs int, row []byte) (int, error) {
	j := 0
	i := ofs
	for j < len(row) {
		if i >= len(in) {
			return i, errVisOverrun
		}
		if in[i] != 0 {
			row[j] = in[i]
			j++
			i++
			continue
		}
		i++
		if i >= len(in) {
			return i, errVisOverrun
		}
		c := min(int(in[i]), len(row)-j)
		i++
		// row is zeroed already
		j += c
	}
	return i, nil
}

type visError string

func (e visError) Error() string { return string(e) }

const errVisOverrun = visError("compressed row runs past the end of the lump")

func decodeVisibility(h *Header, data []byte) (*Visibility, error) {
	lump := h.Lumps[LumpVisibility]
	in := h.lumpData(data, LumpVisibility)
	if len(in) == 0 {
		return nil, nil
	}
	base := int64(lump.Offset)
	q := newQReader(in)
	n, err := q.ReadInt32()
	if err != nil {
		return nil, structuralError(LumpVisibility, base, "could not read cluster count: %v", err)
	}
	if n < 0 || int64(n)*8 > int64(len(in)-4) {
		return nil, structuralError(LumpVisibility, base,
			"cluster count %d does not fit into %d bytes", n, len(in))
	}
	offsets := make([]dvisOffsets, n)
	if err := q.Read(offsets); err != nil {
		return nil, structuralError(LumpVisibility, base+q.Offset(), "could not read offsets: %v", err)
	}
	v := &Visibility{
		ClusterCount: int(n),
		RowSize:      (int(n) + 7) / 8,
	}
	v.pvs = make([]byte, v.ClusterCount*v.RowSize)
	v.phs = make([]byte, v.ClusterCount*v.RowSize)
	v.all = bytes.Repeat([]byte{0xff}, v.RowSize)
	if v.RowSize == 0 {
		return v, nil
	}
	for c, o := range offsets {
		for k, ofs := range [2]int32{o.PVS, o.PHS} {
			rows := v.pvs
			if k == 1 {
				rows = v.phs
			}
			if ofs < 0 || int(ofs) >= len(in) {
				return nil, referentialError(LumpVisibility, base+4+int64(c)*8+int64(k)*4,
					"cluster %d row offset %d outside of the lump (%d bytes)", c, ofs, len(in))
			}
			row := rows[c*v.RowSize : (c+1)*v.RowSize]
			if end, err := decompressRow(in, int(ofs), row); err != nil {
				return nil, decompressionError(LumpVisibility, base+int64(end),
					"cluster %d: %v", c, err)
			}
		}
	}
	return v, nil
}

// ClusterPVS returns a copy of the potentially visible set of cluster. The
// result is nil if the map has no visibility data. Clusters outside of the
// visibility graph see everything.
func (m *Map) ClusterPVS(cluster int) []byte {
	if m.Vis == nil {
		return nil
	}
	return bytes.Clone(m.Vis.row(m.Vis.pvs, cluster))
}

// ClusterPHS returns a copy of the potentially hearable set of cluster.
func (m *Map) ClusterPHS(cluster int) []byte {
	if m.Vis == nil {
		return nil
	}
	return bytes.Clone(m.Vis.row(m.Vis.phs, cluster))
}

// ClusterVisible reports whether cluster to is in the PVS of cluster from.
func (m *Map) ClusterVisible(from, to int) bool {
	if m.Vis == nil || to < 0 || to >= m.Vis.ClusterCount {
		return true
	}
	row := m.Vis.row(m.Vis.pvs, from)
	return row[to>>3]&(1<<(to&7)) != 0
}

/*
The PVS must include a small area around the client to allow head bobbing
or other small motion on the client side.  Otherwise, a bob might cause an
entity that should be visible to not show up, especially when the bob
crosses a waterline.
*/
func (m *Map) addToFatPVS(org vec.Vec3, n NodeRef, fpvs []byte) {
	node := n
	for {
		if node.IsLeaf() {
			leaf := &m.Leafs[node.Index()]
			if leaf.Contents&ContentsSolid == 0 {
				pvs := m.Vis.row(m.Vis.pvs, leaf.Cluster)
				for i := range fpvs {
					fpvs[i] |= pvs[i]
				}
			}
			return
		}
		no := &m.Nodes[node.Index()]
		d := m.Planes[no.Plane].Distance(org)
		if d > 8 {
			node = no.Children[0]
		} else if d < -8 {
			node = no.Children[1]
		} else { // go down both
			m.addToFatPVS(org, no.Children[0], fpvs)
			node = no.Children[1]
		}
	}
}

// FatPVS calculates a PVS that is the inclusive or of all leafs within 8
// pixels of the given point. The result is nil without visibility data.
func (m *Map) FatPVS(org vec.Vec3) []byte {
	if m.Vis == nil {
		return nil
	}
	pvs := make([]byte, m.Vis.RowSize)
	m.addToFatPVS(org, m.Models[0].HeadNode, pvs)
	return pvs
}
