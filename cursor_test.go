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
	"errors"
	"testing"
)

func TestCursorFixedWidth(t *testing.T) {
	buf := []byte{
		0x2A,             // u8 = 42
		0x34, 0x12,       // u16 = 0x1234
		0xFF, 0xFF,       // i16 = -1
		0x78, 0x56, 0x34, 0x12, // u32 = 0x12345678
	}
	c := NewCursor(buf)

	u8, err := c.U8()
	if err != nil || u8 != 42 {
		t.Fatalf("U8() = %d, %v; want 42, nil", u8, err)
	}
	u16, err := c.U16()
	if err != nil || u16 != 0x1234 {
		t.Fatalf("U16() = %#x, %v; want 0x1234, nil", u16, err)
	}
	i16, err := c.I16()
	if err != nil || i16 != -1 {
		t.Fatalf("I16() = %d, %v; want -1, nil", i16, err)
	}
	u32, err := c.U32()
	if err != nil || u32 != 0x12345678 {
		t.Fatalf("U32() = %#x, %v; want 0x12345678, nil", u32, err)
	}
	if c.Remaining() != 0 {
		t.Fatalf("Remaining() = %d, want 0", c.Remaining())
	}
}

func TestCursorShortRead(t *testing.T) {
	c := NewCursor([]byte{0x01})
	if _, err := c.U32(); !errors.Is(err, errShortRead) {
		t.Fatalf("U32() on short buffer: err = %v, want errShortRead", err)
	}
	// A failed read must not advance the cursor.
	if c.Pos() != 0 {
		t.Fatalf("Pos() after failed read = %d, want 0", c.Pos())
	}
}

func TestReadDwordPrefixedString(t *testing.T) {
	buf := []byte{5, 0, 0, 0, 'h', 'e', 'l', 'l', 'o'}
	c := NewCursor(buf)
	s, err := c.ReadDwordPrefixedString()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != "hello" {
		t.Fatalf("ReadDwordPrefixedString() = %q, want %q", s, "hello")
	}
}

func TestReadBytePrefixedString(t *testing.T) {
	buf := []byte{5, 'h', 'e', 'l', 'l', 'o'}
	c := NewCursor(buf)
	s, err := c.ReadBytePrefixedString()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != "hello" {
		t.Fatalf("ReadBytePrefixedString() = %q, want %q", s, "hello")
	}
	if c.Remaining() != 0 {
		t.Fatalf("Remaining() = %d, want 0", c.Remaining())
	}
}

func TestReadMultiPrefixedString(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want string
	}{
		{
			name: "consistent lengths",
			buf:  append([]byte{4, 0, 0, 0, 3}, "abc"...),
			want: "abc",
		},
		{
			name: "all zero is empty",
			buf:  []byte{0, 0, 0, 0, 0},
			want: "",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCursor(tc.buf)
			s, err := c.ReadMultiPrefixedString(nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s != tc.want {
				t.Fatalf("ReadMultiPrefixedString() = %q, want %q", s, tc.want)
			}
		})
	}
}

func TestReadMultiPrefixedStringMismatch(t *testing.T) {
	// outer=9 (should be inner+1=4) but inner=3: tolerant behavior trusts
	// the inner length and warns via diag.
	buf := append([]byte{9, 0, 0, 0, 3}, "xyz"...)
	var warnings int
	c := NewCursor(buf)
	s, err := c.ReadMultiPrefixedString(func(string, ...any) { warnings++ })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != "xyz" {
		t.Fatalf("ReadMultiPrefixedString() = %q, want %q", s, "xyz")
	}
	if warnings != 1 {
		t.Fatalf("warnings = %d, want 1", warnings)
	}
}
