// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"fmt"
)

const (
	Version = 38
	// HeaderSize is magic + version + the lump directory.
	HeaderSize = 4 + 4 + LumpCount*8
)

var Magic = [4]byte{'I', 'B', 'S', 'P'}

// LumpID identifies one entry of the lump directory.
type LumpID int

const (
	LumpEntities LumpID = iota
	LumpPlanes
	LumpVertexes
	LumpVisibility
	LumpNodes
	LumpTexInfo
	LumpFaces
	LumpLighting
	LumpLeafs
	LumpLeafFaces
	LumpLeafBrushes
	LumpEdges
	LumpSurfEdges
	LumpModels
	LumpBrushes
	LumpBrushSides
	LumpPop
	LumpAreas
	LumpAreaPortals
)

// LumpCount is the number of entries in the lump directory.
const LumpCount = 19

// noLump marks errors that are not bound to a lump.
const noLump LumpID = -1

var lumpNames = [LumpCount]string{
	"entities",
	"planes",
	"vertexes",
	"visibility",
	"nodes",
	"texinfo",
	"faces",
	"lighting",
	"leafs",
	"leaffaces",
	"leafbrushes",
	"edges",
	"surfedges",
	"models",
	"brushes",
	"brushsides",
	"pop",
	"areas",
	"areaportals",
}

func (l LumpID) String() string {
	if l < 0 || l >= LumpCount {
		return fmt.Sprintf("lump(%d)", int(l))
	}
	return lumpNames[l]
}

// Lump is a directory entry, called lump_t in c.
type Lump struct {
	Offset int32
	Length int32
}

// Header is the decoded, validated file header.
type Header struct {
	Magic   [4]byte
	Version int32
	Lumps   [LumpCount]Lump
}

// parseHeader checks magic, version and that every lump lies inside data.
func parseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, structuralError(noLump, 0, "file too small: %d bytes, need at least %d", len(data), HeaderSize)
	}
	q := newQReader(data)
	h := &Header{}
	if err := q.Read(h); err != nil {
		return nil, structuralError(noLump, q.Offset(), "could not read header: %v", err)
	}
	if h.Magic != Magic {
		return nil, structuralError(noLump, 0, "wrong magic %q, want %q", h.Magic[:], Magic[:])
	}
	if h.Version != Version {
		return nil, structuralError(noLump, 4, "wrong version %d, want %d", h.Version, Version)
	}
	size := int64(len(data))
	for i, l := range h.Lumps {
		id := LumpID(i)
		dirOfs := int64(8 + i*8)
		if l.Offset < 0 || l.Length < 0 {
			return nil, structuralError(id, dirOfs, "negative offset %d or length %d", l.Offset, l.Length)
		}
		if int64(l.Offset)+int64(l.Length) > size {
			return nil, structuralError(id, dirOfs, "lump [%d,%d) exceeds file size %d",
				l.Offset, int64(l.Offset)+int64(l.Length), size)
		}
	}
	return h, nil
}

// lumpData returns the bytes of a lump. parseHeader must have accepted h.
func (h *Header) lumpData(data []byte, l LumpID) []byte {
	lump := h.Lumps[l]
	return data[lump.Offset : lump.Offset+lump.Length]
}
