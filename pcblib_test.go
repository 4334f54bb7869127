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
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"testing"
)

// pcbBuf is a tiny little-endian byte-buffer builder for constructing
// synthetic PcbLib records in tests.
type pcbBuf struct {
	bytes.Buffer
}

func (b *pcbBuf) u8(v uint8)    { b.WriteByte(v) }
func (b *pcbBuf) u16(v uint16)  { var a [2]byte; binary.LittleEndian.PutUint16(a[:], v); b.Write(a[:]) }
func (b *pcbBuf) u32(v uint32)  { var a [4]byte; binary.LittleEndian.PutUint32(a[:], v); b.Write(a[:]) }
func (b *pcbBuf) i32(v int32)   { b.u32(uint32(v)) }
func (b *pcbBuf) f64(v float64) {
	var a [8]byte
	binary.LittleEndian.PutUint64(a[:], math.Float64bits(v))
	b.Write(a[:])
}
func (b *pcbBuf) raw(n int) { b.Write(make([]byte, n)) }

// sentinel writes the layer byte, a discarded u16, then five 0xFFFF words.
func (b *pcbBuf) sentinel(layer byte) {
	b.u8(layer)
	b.u16(0)
	for i := 0; i < 5; i++ {
		b.u16(0xFFFF)
	}
}

func TestReadSentinelHeader(t *testing.T) {
	var b pcbBuf
	b.sentinel(3)
	c := NewCursor(b.Bytes())
	layer, err := readSentinelHeader(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if layer != 3 {
		t.Fatalf("layer = %d, want 3", layer)
	}
}

func TestReadSentinelHeaderBadWord(t *testing.T) {
	var b pcbBuf
	b.u8(1)
	b.u16(0)
	b.u16(0xFFFF)
	b.u16(0x1234) // corrupt sentinel word
	b.u16(0xFFFF)
	b.u16(0xFFFF)
	b.u16(0xFFFF)
	c := NewCursor(b.Bytes())
	if _, err := readSentinelHeader(c); !errors.Is(err, errBadSentinel) {
		t.Fatalf("err = %v, want errBadSentinel", err)
	}
}

// arcRecord builds a 48-byte-variant arc record body (the record_length
// field plus record_length bytes of payload).
func arcRecord(layer byte, x, y, radius int32, startDeg, endDeg float64, thickness uint32) []byte {
	var body pcbBuf
	body.sentinel(layer)
	body.i32(x)
	body.i32(y)
	body.i32(radius)
	body.f64(startDeg)
	body.f64(endDeg)
	body.u32(thickness)
	body.u16(0)
	body.u8(0)

	var rec pcbBuf
	rec.u32(uint32(body.Len()))
	rec.Write(body.Bytes())
	return rec.Bytes()
}

func TestDecodeArc48(t *testing.T) {
	data := arcRecord(5, 1000, 2000, 500, 10, 100, 25)
	c := NewCursor(data)
	arc, err := decodeArc(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := FPArc{
		Center:    Point{Coordinate(1000), Coordinate(-2000)},
		Radius:    500,
		StartDeg:  190,
		SweepDeg:  90,
		Thickness: 25,
		Layer:     5,
	}
	if arc != want {
		t.Fatalf("decodeArc() = %+v, want %+v", arc, want)
	}
	if c.Remaining() != 0 {
		t.Fatalf("Remaining() = %d, want 0 (full record consumed)", c.Remaining())
	}
}

func TestDecodeArcInvalidLength(t *testing.T) {
	var rec pcbBuf
	rec.u32(47) // not one of {48,52,56}
	rec.raw(47)
	c := NewCursor(rec.Bytes())
	if _, err := decodeArc(c); !errors.Is(err, errInvalidLength) {
		t.Fatalf("err = %v, want errInvalidLength", err)
	}
}

func TestNormalizeSweep(t *testing.T) {
	testCases := []struct {
		name           string
		start, end     float64
		want           float64
	}{
		{name: "simple forward", start: 10, end: 100, want: 90},
		{name: "wraps past 360", start: 350, end: 10, want: 20},
		{name: "full circle", start: 0, end: 0, want: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeSweep(tc.start, tc.end); got != tc.want {
				t.Fatalf("normalizeSweep(%v,%v) = %v, want %v", tc.start, tc.end, got, tc.want)
			}
		})
	}
}

func silklineRecord(variant int, layer byte, x1, y1, x2, y2 int32, width uint32) []byte {
	var body pcbBuf
	body.sentinel(layer)
	body.i32(x1)
	body.i32(y1)
	body.i32(x2)
	body.i32(y2)
	body.u32(width)
	body.raw(3)
	if variant >= 41 {
		body.u8(0)
		body.u32(0)
	}
	if variant >= 45 {
		body.u32(0)
	}
	var rec pcbBuf
	rec.u32(uint32(body.Len()))
	rec.Write(body.Bytes())
	return rec.Bytes()
}

func TestDecodeSilklineVariants(t *testing.T) {
	for _, variant := range []int{36, 41, 45} {
		t.Run(fmt.Sprintf("variant-%d", variant), func(t *testing.T) {
			data := silklineRecord(variant, 2, 100, 200, 300, 400, 10)
			c := NewCursor(data)
			line, err := decodeSilkline(c)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := FPLine{
				P1:    Point{100, -200},
				P2:    Point{300, -400},
				Width: 10,
				Layer: 2,
			}
			if line != want {
				t.Fatalf("decodeSilkline() = %+v, want %+v", line, want)
			}
			if c.Remaining() != 0 {
				t.Fatalf("Remaining() = %d, want 0", c.Remaining())
			}
		})
	}
}

// rectangleRecord pads the body out to exactly variant bytes: decodeRectangle
// skips any slack between what it explicitly decodes and the declared
// record_length, so the padding bytes' content never matters.
func rectangleRecord(variant int, layer byte, x1, y1, x2, y2 int32) []byte {
	var body pcbBuf
	body.sentinel(layer)
	body.i32(x1)
	body.i32(y1)
	body.i32(x2)
	body.i32(y2)
	if variant >= 42 {
		body.u32(0)
	}
	if variant >= 46 {
		body.u32(0)
	}
	if pad := variant - body.Len(); pad > 0 {
		body.raw(pad)
	}
	var rec pcbBuf
	rec.u32(uint32(body.Len()))
	rec.Write(body.Bytes())
	return rec.Bytes()
}

func TestDecodeRectangleVariants(t *testing.T) {
	for _, variant := range []int{38, 42, 46} {
		t.Run(fmt.Sprintf("variant-%d", variant), func(t *testing.T) {
			data := rectangleRecord(variant, 1, 0, 0, 1000, 2000)
			c := NewCursor(data)
			rect, err := decodeRectangle(c)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := FPRectangle{P1: Point{0, 0}, P2: Point{1000, -2000}, Layer: 1}
			if rect != want {
				t.Fatalf("decodeRectangle() = %+v, want %+v", rect, want)
			}
			if c.Remaining() != 0 {
				t.Fatalf("Remaining() = %d, want 0", c.Remaining())
			}
		})
	}
}

func TestRectangleToLines(t *testing.T) {
	r := FPRectangle{P1: Point{0, 0}, P2: Point{10, 20}, Layer: 7}
	lines := RectangleToLines(r)
	if len(lines) != 6 {
		t.Fatalf("len(lines) = %d, want 6", len(lines))
	}
	for _, l := range lines {
		if l.Layer != 7 {
			t.Fatalf("line layer = %d, want 7", l.Layer)
		}
	}
}

// textRecord43 builds the minimal (position/height/angle only) text
// record variant.
func textRecord43(layer byte, x, y, height int32, angle float64) []byte {
	var body pcbBuf
	body.sentinel(layer)
	body.i32(x)
	body.i32(y)
	body.i32(height)
	body.f64(angle)
	body.raw(43 - body.Len())
	var rec pcbBuf
	rec.u32(uint32(body.Len()))
	rec.Write(body.Bytes())
	return rec.Bytes()
}

func TestDecodeText43(t *testing.T) {
	data := textRecord43(4, 500, 600, 50, 45)
	c := NewCursor(data)
	txt, err := decodeText(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := FPText{Pos: Point{500, -600}, Height: 50, AngleDeg: 45}
	if txt != want {
		t.Fatalf("decodeText() = %+v, want %+v", txt, want)
	}
	if c.Remaining() != 0 {
		t.Fatalf("Remaining() = %d, want 0", c.Remaining())
	}
}

func TestDecodeTextInvalidLength(t *testing.T) {
	var rec pcbBuf
	rec.u32(99)
	rec.raw(99)
	c := NewCursor(rec.Bytes())
	if _, err := decodeText(c); !errors.Is(err, errInvalidLength) {
		t.Fatalf("err = %v, want errInvalidLength", err)
	}
}

func TestDecodePolygonTrailer27(t *testing.T) {
	attr := "|LAYER=1|"
	const vertexCount = 2
	const fieldsLength = 27
	// The derived fields length covers everything in the record that is
	// not attribute-string payload or vertex data: the layer byte, the
	// two u32 framing fields, and the raw trailer bytes.
	recordLength := uint32(len(attr) + 16*vertexCount + fieldsLength)

	var rec pcbBuf
	rec.u32(recordLength)
	rec.u8(1) // layer
	rec.u32(uint32(len(attr)))
	rec.WriteString(attr)
	rec.u32(vertexCount)
	rec.f64(0)
	rec.f64(0)
	rec.f64(10)
	rec.f64(10)
	rec.raw(fieldsLength - 9) // trailer: fields length minus the framing already written

	c := NewCursor(rec.Bytes())
	poly, err := decodePolygon(c, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if poly.Layer != 1 {
		t.Fatalf("Layer = %d, want 1", poly.Layer)
	}
	if len(poly.Vertices) != 2 {
		t.Fatalf("len(Vertices) = %d, want 2", len(poly.Vertices))
	}
	if poly.Vertices[1] != (Vertex2D{X: 10, Y: 10}) {
		t.Fatalf("Vertices[1] = %+v, want {10 10}", poly.Vertices[1])
	}
	if c.Remaining() != 0 {
		t.Fatalf("Remaining() = %d, want 0", c.Remaining())
	}
}

// viaRecord pads the body out to exactly variant bytes, like
// rectangleRecord: decodeVia skips the slack between its explicit
// fields and the declared record_length.
func viaRecord(variant int, layer byte, x, y, w, h int32) []byte {
	var body pcbBuf
	body.sentinel(layer)
	body.i32(x)
	body.i32(y)
	body.i32(w)
	body.i32(h)
	for i := 0; i < 8; i++ {
		body.i32(0)
	}
	body.raw(3) // style bytes
	if variant >= 203 {
		for i := 0; i < 32; i++ {
			body.i32(0)
		}
	}
	if pad := variant - body.Len(); pad > 0 {
		body.raw(pad)
	}
	var rec pcbBuf
	rec.u32(uint32(body.Len()))
	rec.Write(body.Bytes())
	return rec.Bytes()
}

func TestDecodeViaVariants(t *testing.T) {
	for _, variant := range []int{74, 203, 209, 241} {
		t.Run(fmt.Sprintf("variant-%d", variant), func(t *testing.T) {
			data := viaRecord(variant, 6, 100, 200, 1000, 2000)
			c := NewCursor(data)
			prim, err := decodeVia(c)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			pad, ok := prim.(FPPadSMD)
			if !ok {
				t.Fatalf("prim is %T, want FPPadSMD", prim)
			}
			want := FPPadSMD{
				P1:        Point{600, -1200},
				P2:        Point{-400, 800},
				Thickness: 1000,
				Layer:     6,
				Name:      "via",
			}
			if pad != want {
				t.Fatalf("decodeVia() = %+v, want %+v", pad, want)
			}
			if c.Remaining() != 0 {
				t.Fatalf("Remaining() = %d, want 0", c.Remaining())
			}
		})
	}
}

func TestDecodeViaInvalidLength(t *testing.T) {
	var rec pcbBuf
	rec.u32(100) // not one of {74,203,209,241}
	rec.raw(100)
	c := NewCursor(rec.Bytes())
	if _, err := decodeVia(c); !errors.Is(err, errInvalidLength) {
		t.Fatalf("err = %v, want errInvalidLength", err)
	}
}

// modelPlacementRecord builds a vertex-free type-12 record body around
// the given instance attribute string.
func modelPlacementRecord(attr string) []byte {
	const fieldsLength = 27
	recordLength := uint32(len(attr) + fieldsLength)
	var rec pcbBuf
	rec.u32(recordLength)
	rec.u8(0) // layer byte
	rec.u32(uint32(len(attr)))
	rec.WriteString(attr)
	rec.u32(0)                // vertex count
	rec.raw(fieldsLength - 9) // trailer: fields length minus the framing already written
	return rec.Bytes()
}

func TestDecodeModelPlacement(t *testing.T) {
	models, err := BuildModelTable(u32Header(1),
		dwordPrefixed("|ID=M1|ROTZ=90|NAME=part.step|EMBED=TRUE|"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("embed false is informational only", func(t *testing.T) {
		data := modelPlacementRecord("|MODELID=M1|MODEL.EMBED=FALSE|")
		c := NewCursor(data)
		prim, ok, err := decodeModelPlacement(c, models, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok || prim != nil {
			t.Fatalf("decodeModelPlacement() = %+v, %t, want nil, false", prim, ok)
		}
		if c.Remaining() != 0 {
			t.Fatalf("Remaining() = %d, want 0 (record fully consumed)", c.Remaining())
		}
	})

	t.Run("missing model id warns and skips", func(t *testing.T) {
		data := modelPlacementRecord("|MODELID=ABSENT|MODEL.EMBED=TRUE|")
		var warnings int
		c := NewCursor(data)
		prim, ok, err := decodeModelPlacement(c, models, func(string, ...any) { warnings++ })
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok || prim != nil {
			t.Fatalf("decodeModelPlacement() = %+v, %t, want nil, false", prim, ok)
		}
		if warnings != 1 {
			t.Fatalf("warnings = %d, want 1", warnings)
		}
	})

	t.Run("found model composes a placement", func(t *testing.T) {
		data := modelPlacementRecord("|MODELID=M1|MODEL.EMBED=TRUE|MODEL.2D.X=10|MODEL.2D.Y=20|")
		c := NewCursor(data)
		prim, ok, err := decodeModelPlacement(c, models, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Fatalf("ok = false, want true")
		}
		placement, isPlacement := prim.(FPModelPlacement)
		if !isPlacement {
			t.Fatalf("prim is %T, want FPModelPlacement", prim)
		}
		if placement.Filename != "part.step" {
			t.Fatalf("Filename = %q, want %q", placement.Filename, "part.step")
		}
		if !vec3Close(placement.Origin, Vec3{10, -20, 0}) {
			t.Fatalf("Origin = %+v, want {10 -20 0}", placement.Origin)
		}
		if !vec3Close(placement.Axis, Vec3{0, 0, -1}) {
			t.Fatalf("Axis = %+v, want {0 0 -1}", placement.Axis)
		}
		if !vec3Close(placement.RefDir, Vec3{0, -1, 0}) {
			t.Fatalf("RefDir = %+v, want {0 -1 0}", placement.RefDir)
		}
		if c.Remaining() != 0 {
			t.Fatalf("Remaining() = %d, want 0", c.Remaining())
		}
	})
}

// padRecord builds a 106-byte-variant pad record with an empty pad-stack
// section. Shape/type/flags/layer and the dimension and drill fields are
// the knobs the decoder's pad classification actually reads.
func padRecord(name string, x, y, c1, c2, c3, c4, drill int32, shape byte, flags uint16, layer byte, angle float64) []byte {
	var b pcbBuf
	b.u32(uint32(1 + len(name)))
	b.u8(uint8(len(name)))
	b.WriteString(name)
	b.u32(1) // empty magic string
	b.u8(0)
	b.u32(0)   // unknown dword
	b.u8(0)    // unknown byte
	b.u8(106)  // length_bytes

	var body pcbBuf
	body.sentinel(0)
	body.i32(x)
	body.i32(y)
	body.i32(c1)
	body.i32(c2)
	body.i32(c3)
	body.i32(c4)
	body.i32(0) // c5
	body.i32(0) // c6
	body.i32(0) // c7
	body.u8(shape)
	body.u8(shape)
	body.u8(shape)
	body.u16(0) // type word
	body.u16(flags)
	body.u8(layer)
	body.i32(drill)
	body.i32(0) // clearance
	body.i32(0) // mask
	body.f64(angle)
	body.raw(106 - body.Len())

	b.Write(body.Bytes())
	b.u32(0) // last_section_length: no pad-stack block
	return b.Bytes()
}

func TestDecodePadThroughHole(t *testing.T) {
	data := padRecord("1", 100, 200, 5000, 0, 0, 0, 2000, 1, 0, 74, 0)
	c := NewCursor(data)
	prim, err := decodePad(c, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pin, ok := prim.(FPPinThrough)
	if !ok {
		t.Fatalf("prim is %T, want FPPinThrough", prim)
	}
	if pin.Name != "1" || pin.PadDiameter != 5000 || pin.Drill != 2000 {
		t.Fatalf("pin = %+v", pin)
	}
	if pin.IsNonPlated {
		t.Fatalf("IsNonPlated = true, want false (drill below pad diameter)")
	}
	if pin.IsSquare {
		t.Fatalf("IsSquare = true, want false (shape style 1 is round)")
	}
	if c.Remaining() != 0 {
		t.Fatalf("Remaining() = %d, want 0", c.Remaining())
	}
}

func TestDecodePadDrillReclassifiesNonPlated(t *testing.T) {
	data := padRecord("H", 0, 0, 2000, 0, 0, 0, 2500, 1, 0, 74, 0)
	c := NewCursor(data)
	prim, err := decodePad(c, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pin, ok := prim.(FPPinThrough)
	if !ok {
		t.Fatalf("prim is %T, want FPPinThrough", prim)
	}
	if !pin.IsNonPlated {
		t.Fatalf("IsNonPlated = false, want true (drill exceeds pad diameter)")
	}
	if pin.Mask != 2500 {
		t.Fatalf("Mask = %d, want 2500 (widened to drill size)", pin.Mask)
	}
}

func TestDecodePadSMD(t *testing.T) {
	data := padRecord("2", 100, 200, 1000, 3000, 2000, 2000, 0, 2, 0, 33, 0)
	c := NewCursor(data)
	prim, err := decodePad(c, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pad, ok := prim.(FPPadSMD)
	if !ok {
		t.Fatalf("prim is %T, want FPPadSMD (single-layer pad)", prim)
	}
	want := FPPadSMD{
		P1:       Point{1100, -200},
		P2:       Point{-900, -200},
		Thickness: 1000,
		IsSquare: true,
		Name:     "2",
	}
	if pad != want {
		t.Fatalf("decodePad() = %+v, want %+v", pad, want)
	}
}

func TestDecodeFootprintUnknownRecordType(t *testing.T) {
	var body pcbBuf
	body.u32(0) // leading name: outer=0,inner handled below
	// ReadMultiPrefixedString needs outer(u32) + inner(u8); write both zero
	body.u8(0)
	body.u8(99) // unrecognized record type byte

	err := DecodeFootprint(body.Bytes(), nil, nil, func(FootprintPrimitive) {})
	if err == nil {
		t.Fatalf("expected error for unknown record type")
	}
	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("error is not *DecodeError: %v", err)
	}
	if !errors.Is(err, errUnknownRecordType) {
		t.Fatalf("err = %v, want wrapping errUnknownRecordType", err)
	}
}

func TestDecodeFootprintArc(t *testing.T) {
	var body pcbBuf
	body.u32(0)
	body.u8(0) // empty name header
	body.u8(byte(pcbRecordArc))
	body.Write(arcRecord(1, 0, 0, 100, 0, 90, 5))

	var got []FootprintPrimitive
	err := DecodeFootprint(body.Bytes(), nil, nil, func(p FootprintPrimitive) {
		got = append(got, p)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if _, ok := got[0].(FPArc); !ok {
		t.Fatalf("got[0] is %T, want FPArc", got[0])
	}
}
