// github.com/pcjc2/openaltium - a decoder for Altium PcbLib/SchLib libraries
// Copyright (C) 2026  The openaltium authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package altium

import (
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/text/encoding/unicode"
)

// Cursor is a bounds-checked sequential little-endian reader over a fixed
// in-memory buffer. Every read either advances pos by exactly the number
// of bytes consumed, or fails leaving pos unchanged.
//
// Endianness is always little-endian, regardless of host architecture:
// the file formats this package reads are fixed-format regardless of the
// machine decoding them.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps buf for sequential reading starting at offset 0.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Len returns the number of bytes in the underlying buffer.
func (c *Cursor) Len() int { return len(c.buf) }

// Pos returns the current 0-based cursor position.
func (c *Cursor) Pos() int64 { return int64(c.pos) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// CheckAvailable reports whether n further bytes can be read without
// running past the end of the buffer.
func (c *Cursor) CheckAvailable(n int) bool {
	return c.pos+n <= len(c.buf)
}

// Skip advances the cursor by n bytes, failing (without advancing) if
// fewer than n bytes remain. A negative n is rejected rather than
// rewinding: callers derive skip distances from declared record lengths,
// and a negative remainder means the record overran its declaration.
func (c *Cursor) Skip(n int) error {
	if n < 0 || !c.CheckAvailable(n) {
		return errShortRead
	}
	c.pos += n
	return nil
}

// Bytes copies and returns the next n raw bytes.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if !c.CheckAvailable(n) {
		return nil, errShortRead
	}
	out := make([]byte, n)
	copy(out, c.buf[c.pos:c.pos+n])
	c.pos += n
	return out, nil
}

// U8 reads an unsigned 8-bit integer.
func (c *Cursor) U8() (uint8, error) {
	if !c.CheckAvailable(1) {
		return 0, errShortRead
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

// U16 reads a little-endian unsigned 16-bit integer.
func (c *Cursor) U16() (uint16, error) {
	if !c.CheckAvailable(2) {
		return 0, errShortRead
	}
	v := binary.LittleEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, nil
}

// I16 reads a little-endian signed 16-bit integer.
func (c *Cursor) I16() (int16, error) {
	v, err := c.U16()
	if err != nil {
		return 0, err
	}
	return int16(v), nil
}

// U32 reads a little-endian unsigned 32-bit integer.
func (c *Cursor) U32() (uint32, error) {
	if !c.CheckAvailable(4) {
		return 0, errShortRead
	}
	v := binary.LittleEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v, nil
}

// I32 reads a little-endian signed 32-bit integer.
func (c *Cursor) I32() (int32, error) {
	v, err := c.U32()
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// F64 reads a little-endian IEEE-754 double.
func (c *Cursor) F64() (float64, error) {
	if !c.CheckAvailable(8) {
		return 0, errShortRead
	}
	bits := binary.LittleEndian.Uint64(c.buf[c.pos:])
	c.pos += 8
	return math.Float64frombits(bits), nil
}

var utf16leDecoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()

// UTF16LE reads nUnits UTF-16LE code units (2*nUnits bytes) and returns
// the UTF-8 re-encoding. An odd byte count can't happen here (nUnits is
// always whole code units); a decode failure (e.g. an unpaired surrogate)
// fails the read without advancing.
func (c *Cursor) UTF16LE(nUnits int) (string, error) {
	raw, err := c.Bytes(2 * nUnits)
	if err != nil {
		return "", err
	}
	out, err := utf16leDecoder.Bytes(raw)
	if err != nil {
		c.pos -= 2 * nUnits
		return "", fmt.Errorf("utf16le decode: %w", err)
	}
	return string(out), nil
}

// ReadDwordPrefixedString reads a dword-prefixed string: a u32 length
// followed by that many raw bytes.
func (c *Cursor) ReadDwordPrefixedString() (string, error) {
	n, err := c.U32()
	if err != nil {
		return "", err
	}
	raw, err := c.Bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ReadBytePrefixedString reads a byte-prefixed string: a single u8 length
// followed by that many raw bytes. Used by the SchLib binary pin record,
// whose string fields carry only a one-byte length (unlike the
// dword-prefixed strings elsewhere in the format).
func (c *Cursor) ReadBytePrefixedString() (string, error) {
	n, err := c.U8()
	if err != nil {
		return "", err
	}
	raw, err := c.Bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ReadMultiPrefixedString reads a multi-prefixed string: a u32 outer
// length, then a u8 inner length, where outer is normally 1+inner. If
// both lengths are zero the empty string is returned having consumed only
// the 5 framing bytes. If the lengths disagree, diag (if non-nil) is
// notified and the inner length is trusted for the payload size — the
// tolerant behavior observed in the wild.
func (c *Cursor) ReadMultiPrefixedString(diag Diagnostics) (string, error) {
	outer, err := c.U32()
	if err != nil {
		return "", err
	}
	inner, err := c.U8()
	if err != nil {
		return "", err
	}
	if outer == 0 && inner == 0 {
		return "", nil
	}
	if outer != uint32(inner)+1 && diag != nil {
		diag("multi-prefixed string length mismatch: outer=%d inner=%d", outer, inner)
	}
	raw, err := c.Bytes(int(inner))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
