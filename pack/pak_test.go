// SPDX-License-Identifier: GPL-2.0-or-later

package pack

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

type testFile struct {
	name string
	data string
}

// buildPack writes a pack with the given files, the directory at the end.
func buildPack(t *testing.T, files []testFile) []byte {
	t.Helper()
	var body bytes.Buffer
	var dir []entry
	for _, f := range files {
		var e entry
		copy(e.Name[:], f.name)
		e.Offset = int32(headerSize + body.Len())
		e.Size = int32(len(f.data))
		body.WriteString(f.data)
		dir = append(dir, e)
	}
	var out bytes.Buffer
	h := header{
		ID:     magic,
		Offset: int32(headerSize + body.Len()),
		Size:   int32(len(dir) * entrySize),
	}
	if err := binary.Write(&out, binary.LittleEndian, h); err != nil {
		t.Fatal(err)
	}
	out.Write(body.Bytes())
	if err := binary.Write(&out, binary.LittleEndian, dir); err != nil {
		t.Fatal(err)
	}
	return out.Bytes()
}

var testFiles = []testFile{
	{"doc1.txt", "this is the first doc 2. version\r\n"},
	{"maps/base1.bsp", "IBSP"},
	{"testdir/doc4.txt", "fourth"},
}

func TestPak(t *testing.T) {
	pakFile := filepath.Join(t.TempDir(), "pak1.pak")
	if err := os.WriteFile(pakFile, buildPack(t, testFiles), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := NewPackReader(pakFile)
	if err != nil {
		t.Fatalf("could not open %s: %v", pakFile, err)
	}
	defer p.Close()
	if p.String() != pakFile {
		t.Errorf("pack String error: want %v got %v", pakFile, p.String())
	}
	for _, f := range testFiles {
		r, err := p.Open(f.name)
		if err != nil {
			t.Fatalf("Open(%q): %v", f.name, err)
		}
		b, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("Could not read %q: %v", f.name, err)
		}
		if string(b) != f.data {
			t.Errorf("%q contents is %q, want %q", f.name, b, f.data)
		}
	}
	if _, err := p.Open("doc2.txt"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open(doc2.txt) = %v, want %v", err, os.ErrNotExist)
	}
	names := p.Names()
	want := []string{"doc1.txt", "maps/base1.bsp", "testdir/doc4.txt"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestPakErrors(t *testing.T) {
	good := buildPack(t, testFiles)

	badMagic := append([]byte(nil), good...)
	copy(badMagic, "KCAP")

	shortDir := append([]byte(nil), good[:len(good)-1]...)

	dup := buildPack(t, []testFile{{"a", "1"}, {"a", "2"}})

	badEntry := append([]byte(nil), good...)
	// size of the first entry, behind its name and offset
	dirOfs := int(binary.LittleEndian.Uint32(good[4:8]))
	binary.LittleEndian.PutUint32(badEntry[dirOfs+60:], 1<<20)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"magic", badMagic},
		{"directory", shortDir},
		{"duplicate", dup},
		{"entry", badEntry},
	}
	for _, tc := range tests {
		if _, err := NewReader(bytes.NewReader(tc.data), int64(len(tc.data)), tc.name); err == nil {
			t.Errorf("NewReader(%s) succeeded, want error", tc.name)
		}
	}
}
