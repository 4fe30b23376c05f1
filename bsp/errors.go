// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies why a map could not be loaded.
type ErrorKind int

const (
	// Structural errors: buffer too small, bad magic or version, lump out of
	// bounds, record size mismatch.
	Structural ErrorKind = iota
	// Referential errors: an index into another lump is out of range.
	Referential
	// Decompression errors: a visibility row could not be filled.
	Decompression
)

func (k ErrorKind) String() string {
	switch k {
	case Structural:
		return "structural"
	case Referential:
		return "referential"
	case Decompression:
		return "decompression"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseError is returned by Parse for every malformed input. Lump is -1 if
// the error is not bound to a lump (header checks).
type ParseError struct {
	Kind   ErrorKind
	Lump   LumpID
	Offset int64
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Lump < 0 {
		return fmt.Sprintf("bsp: %s error at offset %d: %s", e.Kind, e.Offset, e.Msg)
	}
	return fmt.Sprintf("bsp: %s error in lump %d (%s) at offset %d: %s",
		e.Kind, int(e.Lump), e.Lump, e.Offset, e.Msg)
}

func structuralError(l LumpID, ofs int64, format string, args ...interface{}) error {
	return errors.WithStack(&ParseError{Structural, l, ofs, fmt.Sprintf(format, args...)})
}

func referentialError(l LumpID, ofs int64, format string, args ...interface{}) error {
	return errors.WithStack(&ParseError{Referential, l, ofs, fmt.Sprintf(format, args...)})
}

func decompressionError(l LumpID, ofs int64, format string, args ...interface{}) error {
	return errors.WithStack(&ParseError{Decompression, l, ofs, fmt.Sprintf(format, args...)})
}

// AsParseError returns the ParseError inside err, if any.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
