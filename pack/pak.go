// SPDX-License-Identifier: GPL-2.0-or-later

// Package pack reads PACK archives as used by the pakN.pak files of a game
// directory.
package pack

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
)

const (
	headerSize = 12
	entrySize  = 64
)

var magic = [4]byte{'P', 'A', 'C', 'K'}

type header struct {
	ID     [4]byte
	Offset int32
	Size   int32
}

type entry struct {
	Name   [56]byte
	Offset int32
	Size   int32
}

type Pack struct {
	r     io.ReaderAt
	c     io.Closer
	files map[string]*qfile
	name  string
}

type qfile struct {
	offset int64
	size   int64
}

// Open returns a io.SectionReader or os.ErrNotExist if the pak has no entry
// with the provided name.
func (p *Pack) Open(name string) (*io.SectionReader, error) {
	q, ok := p.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NewSectionReader(p.r, q.offset, q.size), nil
}

// Names returns the sorted entry names.
func (p *Pack) Names() []string {
	n := make([]string, 0, len(p.files))
	for k := range p.files {
		n = append(n, k)
	}
	sort.Strings(n)
	return n
}

func (p *Pack) String() string {
	return p.name
}

func (p *Pack) Close() error {
	if p.c == nil {
		return nil
	}
	return p.c.Close()
}

func (p *Pack) init(size int64) error {
	var h header
	if err := binary.Read(io.NewSectionReader(p.r, 0, headerSize), binary.LittleEndian, &h); err != nil {
		return errors.Wrap(err, "could not read header")
	}
	if h.ID != magic {
		return errors.Errorf("not a pack, magic %q", h.ID[:])
	}
	if h.Offset < 0 || h.Size < 0 || h.Size%entrySize != 0 ||
		int64(h.Offset)+int64(h.Size) > size {
		return errors.Errorf("bad directory at %d with size %d in %d bytes", h.Offset, h.Size, size)
	}
	filenum := int(h.Size / entrySize)
	entries := make([]entry, filenum)
	dir := io.NewSectionReader(p.r, int64(h.Offset), int64(h.Size))
	if err := binary.Read(dir, binary.LittleEndian, entries); err != nil {
		return errors.Wrap(err, "could not read directory")
	}
	p.files = make(map[string]*qfile, filenum)
	for i, e := range entries {
		n := bytes.IndexByte(e.Name[:], 0)
		if n == -1 {
			n = len(e.Name)
		}
		name := string(e.Name[:n])
		if e.Offset < 0 || e.Size < 0 || int64(e.Offset)+int64(e.Size) > size {
			return errors.Errorf("entry %d %q [%d,+%d) is outside of the pack", i, name, e.Offset, e.Size)
		}
		if p.files[name] != nil {
			return errors.Errorf("files in pack are not unique: %q", name)
		}
		p.files[name] = &qfile{
			offset: int64(e.Offset),
			size:   int64(e.Size),
		}
	}
	return nil
}

// NewReader reads a pack from r which holds size bytes.
func NewReader(r io.ReaderAt, size int64, name string) (*Pack, error) {
	p := &Pack{r: r, name: name}
	if err := p.init(size); err != nil {
		return nil, errors.Wrapf(err, "pack %s", name)
	}
	return p, nil
}

// NewPackReader opens the pack file at path. The file stays open until
// Close.
func NewPackReader(path string) (*Pack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	p, err := NewReader(f, fi.Size(), path)
	if err != nil {
		f.Close()
		return nil, err
	}
	p.c = f
	return p, nil
}
