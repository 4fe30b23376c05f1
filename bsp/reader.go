// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"bytes"
	"encoding/binary"
	"io"
)

// qreader reads little endian values from an immutable byte slice. Every
// read is bounds checked, a short read returns io.ErrUnexpectedEOF.
type qreader struct {
	data []byte
	r    *bytes.Reader
}

func newQReader(data []byte) *qreader {
	return &qreader{data: data, r: bytes.NewReader(data)}
}

func (q *qreader) read(data interface{}) error {
	err := binary.Read(q.r, binary.LittleEndian, data)
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func (q *qreader) ReadInt32() (int32, error) {
	var r int32
	err := q.read(&r)
	return r, err
}

// Read decodes a fixed size value or a slice of fixed size values.
func (q *qreader) Read(data interface{}) error {
	return q.read(data)
}

// Offset returns the current absolute offset.
func (q *qreader) Offset() int64 {
	return int64(len(q.data)) - int64(q.r.Len())
}
