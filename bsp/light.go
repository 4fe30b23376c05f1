// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"github.com/chewxy/math32"

	"q2map/math/vec"
)

const MaxLightStyles = 256

// LightStyles contain MaxLightStyles values to scale light inside a map.
// 256 is full brightness.
type LightStyles [MaxLightStyles]int

// DefaultLightStyles returns styles that are all at full brightness.
func DefaultLightStyles() *LightStyles {
	s := &LightStyles{}
	for i := range s {
		s[i] = 256
	}
	return s
}

type color struct {
	R, G, B int
}

// FaceVertices returns the winding of f. Negative surfedges use the edge
// backwards.
func (m *Map) FaceVertices(f *Face) []vec.Vec3 {
	r := make([]vec.Vec3, 0, f.EdgeCount)
	for _, se := range m.SurfEdges[f.FirstEdge : f.FirstEdge+f.EdgeCount] {
		if se >= 0 {
			r = append(r, m.Vertexes[m.Edges[se].V[0]])
		} else {
			r = append(r, m.Vertexes[m.Edges[-se].V[1]])
		}
	}
	return r
}

// FaceExtents returns the texture space bounds of f snapped to the 16 unit
// light map grid.
func (m *Map) FaceExtents(f *Face) (texMins, extents [2]int) {
	mins := [2]float32{math32.MaxFloat32, math32.MaxFloat32}
	maxs := [2]float32{-math32.MaxFloat32, -math32.MaxFloat32}
	ti := &m.TexInfos[f.TexInfo]
	for _, v := range m.FaceVertices(f) {
		for j := 0; j < 2; j++ {
			val := vec.DoublePrecDot(v, ti.Vecs[j].Pos) + ti.Vecs[j].Offset
			mins[j] = min(mins[j], val)
			maxs[j] = max(maxs[j], val)
		}
	}
	if f.EdgeCount == 0 {
		return texMins, extents
	}
	for j := 0; j < 2; j++ {
		bmin := int(math32.Floor(mins[j] / 16))
		bmax := int(math32.Ceil(maxs[j] / 16))
		texMins[j] = bmin * 16
		extents[j] = (bmax - bmin) * 16
	}
	return texMins, extents
}

// FaceLightSamples returns the light data of f. The format stores no length,
// the slice runs to the end of the lighting lump. It is nil if f is unlit.
// The result is clipped so appending to it never touches the map.
func (m *Map) FaceLightSamples(f *Face) []byte {
	n := len(m.LightData)
	if f.LightOffset < 0 || f.LightOffset >= n {
		return nil
	}
	return m.LightData[f.LightOffset:n:n]
}

func (m *Map) recursiveLight(s *LightStyles, n NodeRef, start, end vec.Vec3, c *vec.Vec3) bool {
	nextChild := func(f float32) int {
		if f < 0 {
			return 1
		}
		return 0
	}
	var node *Node
	var front, back float32
	for {
		if n.IsLeaf() {
			return false
		}
		node = &m.Nodes[n.Index()]
		plane := &m.Planes[node.Plane]
		front = plane.Distance(start)
		back = plane.Distance(end)
		if (back < 0) != (front < 0) {
			break
		}
		n = node.Children[nextChild(front)]
	}
	frac := front / (front - back)
	mid := vec.Lerp(start, end, frac)

	// front side
	if m.recursiveLight(s, node.Children[nextChild(front)], start, mid, c) {
		return true
	}

	for i := node.FirstFace; i < node.FirstFace+node.FaceCount; i++ {
		face := &m.Faces[i]
		ti := &m.TexInfos[face.TexInfo]
		if ti.Flags&(SurfaceWarp|SurfaceSky) != 0 {
			continue
		}
		texMins, extents := m.FaceExtents(face)
		ds := int(vec.DoublePrecDot(mid, ti.Vecs[0].Pos) + ti.Vecs[0].Offset)
		dt := int(vec.DoublePrecDot(mid, ti.Vecs[1].Pos) + ti.Vecs[1].Offset)
		if ds < texMins[0] || dt < texMins[1] {
			continue
		}
		ds -= texMins[0]
		dt -= texMins[1]
		if ds > extents[0] || dt > extents[1] {
			continue
		}
		samples := m.FaceLightSamples(face)
		smax := (extents[0] >> 4) + 1
		tmax := (extents[1] >> 4) + 1
		size := smax * tmax * 3
		line := smax * 3
		first := (dt>>4)*line + (ds>>4)*3
		// offsets of the right and lower neighbours, on the far border the
		// fraction is 0 and the sample itself is used
		i01, i10 := 3, line
		if ds>>4 == smax-1 {
			i01 = 0
		}
		if dt>>4 == tmax-1 {
			i10 = 0
		}
		i11 := i01 + i10
		var c00, c01, c10, c11 color
		dsfrac := ds & 15
		dtfrac := dt & 15
		for maps := 0; maps < 4 && face.Styles[maps] != unusedStyle; maps++ {
			base := maps * size
			if base+first+i11+2 >= len(samples) {
				break
			}
			lm := samples[base+first:]
			scale := float32(s[face.Styles[maps]]) / 256.0
			c00.R += int(float32(lm[0]) * scale)
			c00.G += int(float32(lm[1]) * scale)
			c00.B += int(float32(lm[2]) * scale)
			c01.R += int(float32(lm[i01+0]) * scale)
			c01.G += int(float32(lm[i01+1]) * scale)
			c01.B += int(float32(lm[i01+2]) * scale)
			c10.R += int(float32(lm[i10+0]) * scale)
			c10.G += int(float32(lm[i10+1]) * scale)
			c10.B += int(float32(lm[i10+2]) * scale)
			c11.R += int(float32(lm[i11+0]) * scale)
			c11.G += int(float32(lm[i11+1]) * scale)
			c11.B += int(float32(lm[i11+2]) * scale)
		}
		(*c)[0] += float32(bilinear(c00.R, c01.R, c10.R, c11.R, dsfrac, dtfrac))
		(*c)[1] += float32(bilinear(c00.G, c01.G, c10.G, c11.G, dsfrac, dtfrac))
		(*c)[2] += float32(bilinear(c00.B, c01.B, c10.B, c11.B, dsfrac, dtfrac))
		return true
	}
	// back side
	return m.recursiveLight(s, node.Children[nextChild(-front)], mid, end, c)
}

// bilinear blends four samples with 4 bit fractions.
func bilinear(c00, c01, c10, c11, sfrac, tfrac int) int {
	top := (((c01 - c00) * sfrac) >> 4) + c00
	bottom := (((c11 - c10) * sfrac) >> 4) + c10
	return (((bottom - top) * tfrac) >> 4) + top
}

// LightAt return the light color at point p scaled by light style values in s.
// It samples the first lit surface below p.
func (m *Map) LightAt(p vec.Vec3, s *LightStyles) vec.Vec3 {
	if len(m.LightData) == 0 {
		return vec.Vec3{255, 255, 255}
	}

	end := p
	end[2] -= 8192

	color := vec.Vec3{0, 0, 0}
	m.recursiveLight(s, m.Models[0].HeadNode, p, end, &color)
	return color
}
