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
	"fmt"
	"math"
)

// pcbRecordType is the single dispatch byte that opens every PcbLib
// record.
type pcbRecordType byte

const (
	pcbRecordArc    pcbRecordType = 1
	pcbRecordPad    pcbRecordType = 2
	pcbRecordVia    pcbRecordType = 3
	pcbRecordSilk   pcbRecordType = 4
	pcbRecordText   pcbRecordType = 5
	pcbRecordRect   pcbRecordType = 6
	pcbRecordPoly   pcbRecordType = 11
	pcbRecordModel  pcbRecordType = 12
)

// readSentinelHeader consumes the layer byte, a discarded word, and the
// five-word 0xFFFF sentinel that precedes most PcbLib geometry records.
// A sentinel mismatch is a validation failure: fatal for the current
// library.
func readSentinelHeader(c *Cursor) (layer byte, err error) {
	layer, err = c.U8()
	if err != nil {
		return 0, err
	}
	if _, err := c.U16(); err != nil {
		return 0, err
	}
	for i := 0; i < 5; i++ {
		w, err := c.U16()
		if err != nil {
			return 0, err
		}
		if w != 0xFFFF {
			return 0, fmt.Errorf("%w: sentinel word %d = 0x%04x", errBadSentinel, i, w)
		}
	}
	return layer, nil
}

// FootprintVisitor receives one decoded FootprintPrimitive at a time, in
// file order.
type FootprintVisitor func(FootprintPrimitive)

// DecodeFootprint decodes one footprint's Data stream — the leading
// name header followed by type-dispatched records until EOF — and calls
// visit for every primitive it emits. models may be
// nil if the library has no Models table (SchLib never calls this; a
// PcbLib with an empty Models/Data still produces a non-nil, empty
// table).
func DecodeFootprint(data []byte, models *ModelTable, diag Diagnostics, visit FootprintVisitor) error {
	c := NewCursor(data)

	if _, err := c.ReadMultiPrefixedString(diag); err != nil {
		return &DecodeError{Kind: "footprint-name", Offset: c.Pos(), Err: err}
	}

	for c.Remaining() > 0 {
		typeByte, err := c.U8()
		if err != nil {
			return &DecodeError{Kind: "record-type", Offset: c.Pos(), Err: err}
		}

		switch pcbRecordType(typeByte) {
		case pcbRecordArc:
			prim, err := decodeArc(c)
			if err != nil {
				return &DecodeError{Kind: "arc", Offset: c.Pos(), Err: err}
			}
			visit(prim)
		case pcbRecordPad:
			prim, err := decodePad(c, diag)
			if err != nil {
				return &DecodeError{Kind: "pad", Offset: c.Pos(), Err: err}
			}
			visit(prim)
		case pcbRecordVia:
			prim, err := decodeVia(c)
			if err != nil {
				return &DecodeError{Kind: "via", Offset: c.Pos(), Err: err}
			}
			visit(prim)
		case pcbRecordSilk:
			prim, err := decodeSilkline(c)
			if err != nil {
				return &DecodeError{Kind: "silkline", Offset: c.Pos(), Err: err}
			}
			visit(prim)
		case pcbRecordText:
			prim, err := decodeText(c)
			if err != nil {
				return &DecodeError{Kind: "text", Offset: c.Pos(), Err: err}
			}
			visit(prim)
		case pcbRecordRect:
			prim, err := decodeRectangle(c)
			if err != nil {
				return &DecodeError{Kind: "rectangle", Offset: c.Pos(), Err: err}
			}
			visit(prim)
		case pcbRecordPoly:
			prim, err := decodePolygon(c, diag)
			if err != nil {
				return &DecodeError{Kind: "polygon", Offset: c.Pos(), Err: err}
			}
			visit(prim)
		case pcbRecordModel:
			prim, ok, err := decodeModelPlacement(c, models, diag)
			if err != nil {
				return &DecodeError{Kind: "model-placement", Offset: c.Pos(), Err: err}
			}
			if ok {
				visit(prim)
			}
		default:
			return &DecodeError{Kind: "dispatch", Offset: c.Pos(), Err: fmt.Errorf("%w: type %d", errUnknownRecordType, typeByte)}
		}
	}
	return nil
}

func normalizeSweep(startDeg, endDeg float64) float64 {
	sweep := math.Mod(endDeg-startDeg, 360)
	if sweep < 0 {
		sweep += 360
	}
	return sweep
}

// decodeArc decodes a type-1 arc record. record_length must be one of
// {48, 52, 56}; the invariant is that the cursor advances by exactly
// record_length+4 bytes (the u32 record_length field itself, plus its
// declared payload).
func decodeArc(c *Cursor) (FPArc, error) {
	recordLength, err := c.U32()
	if err != nil {
		return FPArc{}, err
	}
	if recordLength != 48 && recordLength != 52 && recordLength != 56 {
		return FPArc{}, fmt.Errorf("%w: arc record_length=%d", errInvalidLength, recordLength)
	}

	layer, err := readSentinelHeader(c)
	if err != nil {
		return FPArc{}, err
	}
	x, err := c.I32()
	if err != nil {
		return FPArc{}, err
	}
	y, err := c.I32()
	if err != nil {
		return FPArc{}, err
	}
	radius, err := c.I32()
	if err != nil {
		return FPArc{}, err
	}
	startDeg, err := c.F64()
	if err != nil {
		return FPArc{}, err
	}
	endDeg, err := c.F64()
	if err != nil {
		return FPArc{}, err
	}
	thickness, err := c.U32()
	if err != nil {
		return FPArc{}, err
	}
	if recordLength >= 52 {
		if _, err := c.U32(); err != nil { // extra_dim, read and discarded
			return FPArc{}, err
		}
	}
	if _, err := c.U16(); err != nil {
		return FPArc{}, err
	}
	if _, err := c.U8(); err != nil {
		return FPArc{}, err
	}
	if recordLength >= 56 {
		if _, err := c.U32(); err != nil { // layer_cache, read and discarded
			return FPArc{}, err
		}
	}

	return FPArc{
		Center:    Point{Coordinate(x), Coordinate(-y)},
		Radius:    radius,
		StartDeg:  180 + startDeg,
		SweepDeg:  normalizeSweep(startDeg, endDeg),
		Thickness: int32(thickness),
		Layer:     layer,
	}, nil
}

// halfDelta recovers a pad half-extent from a pair of recorded
// dimensions as |b-a|/2, applied to (c1,c2) for width and (c3,c4) for
// height.
func halfDelta(a, b int32) int32 {
	d := b - a
	if d < 0 {
		d = -d
	}
	return d / 2
}

// decodePad decodes a type-2 pad/pin record, the most elaborate record
// in the format. Not every byte of the fixed-width header region has a
// known meaning; the fields with load-bearing semantics are decoded in
// their observed order and the declared length_bytes /
// last_section_length variants are resolved by skipping to the declared
// size, so the cursor lands on the next record regardless of the
// remaining undocumented bytes.
func decodePad(c *Cursor, diag Diagnostics) (FootprintPrimitive, error) {
	name, err := c.ReadMultiPrefixedString(diag)
	if err != nil {
		return nil, err
	}
	if _, err := c.ReadMultiPrefixedString(diag); err != nil { // magic string, discarded
		return nil, err
	}
	if _, err := c.U32(); err != nil { // unknown dword
		return nil, err
	}
	if _, err := c.U8(); err != nil { // unknown byte preceding the length
		return nil, err
	}

	lengthBytes, err := c.U8()
	if err != nil {
		return nil, err
	}
	switch lengthBytes {
	case 106, 110, 114, 120:
	default:
		return nil, fmt.Errorf("%w: pad length_bytes=%d", errInvalidLength, lengthBytes)
	}
	start := c.Pos()

	layer, err := readSentinelHeader(c)
	if err != nil {
		return nil, err
	}
	x, err := c.I32()
	if err != nil {
		return nil, err
	}
	y, err := c.I32()
	if err != nil {
		return nil, err
	}
	var c1, c2, c3, c4, c5, c6, c7 int32
	for _, dst := range []*int32{&c1, &c2, &c3, &c4, &c5, &c6, &c7} {
		v, err := c.I32()
		if err != nil {
			return nil, err
		}
		*dst = v
	}
	shapeBytes, err := c.Bytes(3)
	if err != nil {
		return nil, err
	}
	isRound := shapeBytes[0] == 1 && shapeBytes[1] == 1 && shapeBytes[2] == 1
	isSquare := !isRound

	typeWord, err := c.U16()
	if err != nil {
		return nil, err
	}
	hasHole := typeWord&(1<<3) != 0

	flags, err := c.U16()
	if err != nil {
		return nil, err
	}
	isSMD := flags&(1<<8) != 0

	padLayer, err := c.U8()
	if err != nil {
		return nil, err
	}
	isMultilayer := padLayer == 74

	drill, err := c.I32()
	if err != nil {
		return nil, err
	}
	clearance, err := c.I32()
	if err != nil {
		return nil, err
	}
	mask, err := c.I32()
	if err != nil {
		return nil, err
	}
	angle, err := c.F64()
	if err != nil {
		return nil, err
	}

	consumed := int(c.Pos() - start)
	if err := c.Skip(int(lengthBytes) - consumed); err != nil {
		return nil, err
	}

	lastSectionLength, err := c.U32()
	if err != nil {
		return nil, err
	}
	switch lastSectionLength {
	case 0:
		// no pad-stack block
	case 256:
		if diag != nil {
			diag("pad %q: unsupported 256-byte pad-stack section", name)
		}
		return nil, fmt.Errorf("%w: unsupported pad-stack section length 256", errInvalidLength)
	case 596, 628:
		for i := 0; i < 29; i++ {
			if _, err := c.I32(); err != nil { // per-layer pad-stack entry, read and discarded
				return nil, err
			}
		}
		remaining := int(lastSectionLength) - 29*4
		if remaining > 0 {
			if err := c.Skip(remaining); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("%w: pad last_section_length=%d", errInvalidLength, lastSectionLength)
	}

	center := Point{Coordinate(x), Coordinate(-y)}

	// SMD determination, in order: the flags bit wins; otherwise any
	// single-layer pad is SMD; only a MULTILAYER pad is through-hole.
	if !isSMD && !isMultilayer {
		isSMD = true
	}

	if !isSMD {
		pin := FPPinThrough{
			Center:      center,
			PadDiameter: c1,
			Clearance:   clearance,
			Mask:        mask,
			Drill:       drill,
			IsNonPlated: hasHole,
			IsSquare:    isSquare,
			Name:        name,
		}
		// A drill at or beyond the pad diameter leaves no annular ring:
		// reclassify as a non-plated hole and widen the mask to the
		// drill size.
		if drill >= c1 {
			pin.IsNonPlated = true
			pin.Mask = drill
		}
		return pin, nil
	}

	// The pad's extent is recovered from the c1/c2 and c3/c4 dimension
	// pairs; the corner offset (w, h) is rotated by -angle so a rotated
	// rectangular pad keeps its recorded orientation.
	w := float64(halfDelta(c1, c2))
	h := float64(halfDelta(c3, c4))
	tx, ty := backwardsRotate2D(w, h, angle)
	p1 := Point{
		X: Coordinate(math.Round(float64(x) + tx)),
		Y: Coordinate(-math.Round(float64(y) + ty)),
	}
	p2 := Point{
		X: Coordinate(math.Round(float64(x) - tx)),
		Y: Coordinate(-math.Round(float64(y) - ty)),
	}

	return FPPadSMD{
		P1:        p1,
		P2:        p2,
		Thickness: c1,
		Clearance: clearance,
		Mask:      mask,
		IsSquare:  isSquare,
		Name:      name,
		Layer:     layer,
	}, nil
}

// decodeSilkline decodes a type-4 silkscreen line record.
func decodeSilkline(c *Cursor) (FPLine, error) {
	recordLength, err := c.U32()
	if err != nil {
		return FPLine{}, err
	}
	if recordLength != 36 && recordLength != 41 && recordLength != 45 {
		return FPLine{}, fmt.Errorf("%w: silkline record_length=%d", errInvalidLength, recordLength)
	}

	layer, err := readSentinelHeader(c)
	if err != nil {
		return FPLine{}, err
	}
	x1, err := c.I32()
	if err != nil {
		return FPLine{}, err
	}
	y1, err := c.I32()
	if err != nil {
		return FPLine{}, err
	}
	x2, err := c.I32()
	if err != nil {
		return FPLine{}, err
	}
	y2, err := c.I32()
	if err != nil {
		return FPLine{}, err
	}
	width, err := c.U32()
	if err != nil {
		return FPLine{}, err
	}
	if _, err := c.Bytes(3); err != nil { // trailer bytes, read and discarded
		return FPLine{}, err
	}
	if recordLength >= 41 {
		if _, err := c.U8(); err != nil {
			return FPLine{}, err
		}
		if _, err := c.U32(); err != nil {
			return FPLine{}, err
		}
	}
	if recordLength >= 45 {
		if _, err := c.U32(); err != nil { // layer-cache, read and discarded
			return FPLine{}, err
		}
	}

	return FPLine{
		P1:    Point{Coordinate(x1), Coordinate(-y1)},
		P2:    Point{Coordinate(x2), Coordinate(-y2)},
		Width: int32(width),
		Layer: layer,
	}, nil
}

// decodeText decodes a type-5 text record. The exact sub-layout of the
// larger variants' additional dwords is not fully known: the fields
// with known meaning (position, height, angle, the font name(s) and the
// trailing text string for the larger forms) are decoded and any
// remainder of the declared record_length is skipped, so the cursor
// always advances by exactly record_length+4 regardless of where in
// the record the unknown bytes fall.
func decodeText(c *Cursor) (FPText, error) {
	recordLength, err := c.U32()
	if err != nil {
		return FPText{}, err
	}
	switch recordLength {
	case 43, 123, 226, 230:
	default:
		return FPText{}, fmt.Errorf("%w: text record_length=%d", errInvalidLength, recordLength)
	}
	start := c.Pos()

	if _, err := readSentinelHeader(c); err != nil {
		return FPText{}, err
	}
	x, err := c.I32()
	if err != nil {
		return FPText{}, err
	}
	y, err := c.I32()
	if err != nil {
		return FPText{}, err
	}
	height, err := c.I32()
	if err != nil {
		return FPText{}, err
	}
	angle, err := c.F64()
	if err != nil {
		return FPText{}, err
	}

	var font, text string
	if recordLength >= 123 {
		fontNames := 1
		if recordLength >= 226 {
			fontNames = 2
		}
		for i := 0; i < fontNames; i++ {
			name, err := c.UTF16LE(32)
			if err != nil {
				return FPText{}, err
			}
			if i == 0 {
				font = name
			}
		}
		if fontNames == 2 {
			if _, err := c.U32(); err != nil { // additional dword, read and discarded
				return FPText{}, err
			}
		}
		text, err = c.ReadDwordPrefixedString()
		if err != nil {
			return FPText{}, err
		}
	}

	consumed := int(c.Pos() - start)
	remaining := int(recordLength) - consumed
	if remaining < 0 {
		return FPText{}, fmt.Errorf("%w: text record overran its declared length", errInvalidLength)
	}
	if err := c.Skip(remaining); err != nil {
		return FPText{}, err
	}

	return FPText{
		Pos:      Point{Coordinate(x), Coordinate(-y)},
		Height:   height,
		AngleDeg: angle,
		Text:     text,
		Font:     font,
	}, nil
}

// decodeRectangle decodes a type-6 rectangle record. The target footprint format
// historically draws rectangles as six element lines (four sides plus
// two diagonals); RectangleToLines is available to sinks that want that
// expansion, but the decoder itself emits the single FPRectangle.
func decodeRectangle(c *Cursor) (FPRectangle, error) {
	recordLength, err := c.U32()
	if err != nil {
		return FPRectangle{}, err
	}
	switch recordLength {
	case 38, 42, 46:
	default:
		return FPRectangle{}, fmt.Errorf("%w: rectangle record_length=%d", errInvalidLength, recordLength)
	}
	start := c.Pos()

	layer, err := readSentinelHeader(c)
	if err != nil {
		return FPRectangle{}, err
	}
	x1, err := c.I32()
	if err != nil {
		return FPRectangle{}, err
	}
	y1, err := c.I32()
	if err != nil {
		return FPRectangle{}, err
	}
	x2, err := c.I32()
	if err != nil {
		return FPRectangle{}, err
	}
	y2, err := c.I32()
	if err != nil {
		return FPRectangle{}, err
	}
	if recordLength >= 42 {
		if _, err := c.U32(); err != nil {
			return FPRectangle{}, err
		}
	}
	if recordLength >= 46 {
		if _, err := c.U32(); err != nil {
			return FPRectangle{}, err
		}
	}

	consumed := int(c.Pos() - start)
	if err := c.Skip(int(recordLength) - consumed); err != nil {
		return FPRectangle{}, err
	}

	p1 := Point{Coordinate(x1), Coordinate(-y1)}
	p2 := Point{Coordinate(x2), Coordinate(-y2)}
	return FPRectangle{P1: p1, P2: p2, Layer: layer}, nil
}

// RectangleToLines expands a rectangle into the six element lines the
// target footprint format historically uses to visualize it: four sides
// and two diagonals.
func RectangleToLines(r FPRectangle) []FPLine {
	corners := [4]Point{
		{r.P1.X, r.P1.Y},
		{r.P2.X, r.P1.Y},
		{r.P2.X, r.P2.Y},
		{r.P1.X, r.P2.Y},
	}
	lines := make([]FPLine, 0, 6)
	for i := 0; i < 4; i++ {
		lines = append(lines, FPLine{P1: corners[i], P2: corners[(i+1)%4], Layer: r.Layer})
	}
	lines = append(lines, FPLine{P1: corners[0], P2: corners[2], Layer: r.Layer})
	lines = append(lines, FPLine{P1: corners[1], P2: corners[3], Layer: r.Layer})
	return lines
}

// decodeVia decodes a type-3 record, inferred to be a via or pad-stack.
// Semantics beyond the basic header are undocumented; it emits a debug
// pad primitive at the first coordinate pair, sized by the two
// dimensions that follow it.
func decodeVia(c *Cursor) (FootprintPrimitive, error) {
	recordLength, err := c.U32()
	if err != nil {
		return nil, err
	}
	switch recordLength {
	case 74, 203, 209, 241:
	default:
		return nil, fmt.Errorf("%w: via record_length=%d", errInvalidLength, recordLength)
	}
	start := c.Pos()

	layer, err := readSentinelHeader(c)
	if err != nil {
		return nil, err
	}

	var coords [12]int32
	for i := range coords {
		v, err := c.I32()
		if err != nil {
			return nil, err
		}
		coords[i] = v
	}
	if _, err := c.Bytes(3); err != nil { // 3 style bytes
		return nil, err
	}

	if recordLength >= 203 {
		for i := 0; i < 32; i++ {
			if _, err := c.I32(); err != nil { // per-layer pad sizes, read and discarded
				return nil, err
			}
		}
	}

	consumed := int(c.Pos() - start)
	if err := c.Skip(int(recordLength) - consumed); err != nil {
		return nil, err
	}

	x, y := coords[0], coords[1]
	w, h := coords[2]/2, coords[3]/2
	return FPPadSMD{
		P1:        Point{Coordinate(x + w), Coordinate(-(y + h))},
		P2:        Point{Coordinate(x - w), Coordinate(-(y - h))},
		Thickness: coords[2],
		Layer:     layer,
		Name:      "via",
	}, nil
}

// decodePolygon decodes a type-11 polygon record. The trailer beyond the vertex
// list is not itself length-prefixed; its size is derived from the
// record length, the attribute string length, and the vertex count
// ("fields length", observed as 27 or 31 — the 31 form carries one more
// dword). The cursor always lands exactly record_length past the length
// field.
func decodePolygon(c *Cursor, diag Diagnostics) (FPPolygon, error) {
	recordLength, err := c.U32()
	if err != nil {
		return FPPolygon{}, err
	}
	start := c.Pos()
	layer, err := c.U8()
	if err != nil {
		return FPPolygon{}, err
	}
	attrString, err := c.ReadDwordPrefixedString()
	if err != nil {
		return FPPolygon{}, err
	}
	count, err := c.U32()
	if err != nil {
		return FPPolygon{}, err
	}
	vertices := make([]Vertex2D, count)
	for i := range vertices {
		x, err := c.F64()
		if err != nil {
			return FPPolygon{}, err
		}
		y, err := c.F64()
		if err != nil {
			return FPPolygon{}, err
		}
		vertices[i] = Vertex2D{X: x, Y: y}
	}

	fieldsLength := int64(recordLength) - int64(len(attrString)) - 16*int64(count)
	switch fieldsLength {
	case 27:
	case 31:
		if _, err := c.U32(); err != nil { // extra dword, read and discarded
			return FPPolygon{}, err
		}
	default:
		if diag != nil {
			diag("polygon: unexpected derived fields length %d", fieldsLength)
		}
		return FPPolygon{}, fmt.Errorf("%w: polygon fields length=%d", errInvalidLength, fieldsLength)
	}
	if err := c.Skip(int(int64(recordLength) - (c.Pos() - start))); err != nil {
		return FPPolygon{}, err
	}

	return FPPolygon{
		Layer:      layer,
		Attributes: ParseParameterList(attrString),
		Vertices:   vertices,
	}, nil
}

// decodeModelPlacement decodes a type-12 record: same header shape as
// Polygon, but the attribute string is interpreted as model-instance
// parameters rather than geometry attributes. Returns ok=false when the
// record is informational-only (MODEL.EMBED=false) or the referenced
// model id is not in the table — in both cases nothing is emitted, but
// decoding continues normally.
func decodeModelPlacement(c *Cursor, models *ModelTable, diag Diagnostics) (FootprintPrimitive, bool, error) {
	recordLength, err := c.U32()
	if err != nil {
		return nil, false, err
	}
	start := c.Pos()
	if _, err := c.U8(); err != nil { // layer byte, same shape as polygon
		return nil, false, err
	}
	attrString, err := c.ReadDwordPrefixedString()
	if err != nil {
		return nil, false, err
	}
	count, err := c.U32()
	if err != nil {
		return nil, false, err
	}
	for i := uint32(0); i < count; i++ {
		if _, err := c.F64(); err != nil {
			return nil, false, err
		}
		if _, err := c.F64(); err != nil {
			return nil, false, err
		}
	}

	fieldsLength := int64(recordLength) - int64(len(attrString)) - 16*int64(count)
	switch fieldsLength {
	case 27:
	case 31:
		if _, err := c.U32(); err != nil { // extra dword, read and discarded
			return nil, false, err
		}
	default:
		return nil, false, fmt.Errorf("%w: model-placement fields length=%d", errInvalidLength, fieldsLength)
	}
	if err := c.Skip(int(int64(recordLength) - (c.Pos() - start))); err != nil {
		return nil, false, err
	}

	params := ParseParameterList(attrString)
	if !params.GetBool("MODEL.EMBED") {
		return nil, false, nil
	}
	modelID := params.GetString("MODELID")
	if models == nil {
		return nil, false, nil
	}
	info, found := models.Lookup(modelID)
	if !found {
		if diag != nil {
			diag("model placement: model id %q not found", modelID)
		}
		return nil, false, nil
	}

	return ComposePlacement(info, params), true, nil
}
