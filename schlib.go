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
	"strconv"
	"strings"
)

// RECORD= values of the textual SchLib records. The binary pin record is
// dispatched separately, on the length word's high bit, and has no
// RECORD field of its own.
const (
	schRecordComponent      = 1
	schRecordSymbolMarker   = 3
	schRecordText           = 4
	schRecordBezier         = 5
	schRecordPolyline       = 6
	schRecordPolygon        = 7
	schRecordEllipse        = 8
	schRecordRoundedRect    = 10
	schRecordEllipticalArc  = 11
	schRecordArc            = 12
	schRecordLine           = 13
	schRecordRectangle      = 14
	schRecordLine2          = 15
	schRecordDesignator     = 34
	schRecordParameter      = 41
	schRecordBlank44        = 44
	schRecordImplementation = 45
	schRecordBlank46        = 46
	schRecordBlank47        = 47
	schRecordBlank48        = 48
)

// coordFromParams implements the symbolic X/Y+FRAC coordinate found on
// every SchLib textual geometry record: a whole-grid-unit part scaled by
// 20, plus a fractional part accumulated at 20/100000 per unit.
func coordFromParams(p *ParameterList, wholeKey, fracKey string) SchCoord {
	whole := p.GetDouble(wholeKey)
	frac := p.GetDouble(fracKey)
	return SchCoord(whole*20 + frac*20/100000)
}

func locationFromParams(p *ParameterList) Point2D {
	return Point2D{
		X: coordFromParams(p, "LOCATION.X", "LOCATION.X_FRAC"),
		Y: coordFromParams(p, "LOCATION.Y", "LOCATION.Y_FRAC"),
	}
}

func cornerFromParams(p *ParameterList) Point2D {
	return Point2D{
		X: coordFromParams(p, "CORNER.X", "CORNER.X_FRAC"),
		Y: coordFromParams(p, "CORNER.Y", "CORNER.Y_FRAC"),
	}
}

// SchematicVisitor receives one decoded SchematicPrimitive at a time, in
// file order, after the owner-part filter has been applied.
type SchematicVisitor func(SchematicPrimitive)

// DecodeSchematic decodes one symbol's Data stream and calls visit for
// every primitive belonging to currentPart (or to every part, for
// records with OWNERPARTID <= 0). currentPart is 1-based, matching
// OWNERPARTID's own numbering.
func DecodeSchematic(data []byte, currentPart int, diag Diagnostics, visit SchematicVisitor) error {
	c := NewCursor(data)

	for c.Remaining() > 0 {
		lengthWord, err := c.U32()
		if err != nil {
			return &DecodeError{Kind: "record-length", Offset: c.Pos(), Err: err}
		}

		if lengthWord&0x01000000 != 0 {
			recordLength := lengthWord & 0x00FFFFFF
			prim, owner, err := decodeSchPin(c, recordLength)
			if err != nil {
				return &DecodeError{Kind: "pin", Offset: c.Pos(), Err: err}
			}
			if ownerApplies(owner, currentPart) {
				visit(prim)
			}
			continue
		}

		raw, err := c.Bytes(int(lengthWord))
		if err != nil {
			return &DecodeError{Kind: "record-body", Offset: c.Pos(), Err: err}
		}
		params := ParseParameterList(string(raw))

		owner := params.GetInt("OWNERPARTID")
		if !ownerApplies(owner, currentPart) {
			continue
		}

		prim, ok, err := decodeSchTextualRecord(params)
		if err != nil {
			return &DecodeError{Kind: "record", Offset: c.Pos(), Err: err}
		}
		if ok {
			visit(prim)
		}
	}
	return nil
}

// ownerApplies implements the owner-part filter: OWNERPARTID >= 1
// applies only to that specific part; OWNERPARTID <= 0 (including
// absent, which GetInt reports as 0) applies to every part.
func ownerApplies(owner, currentPart int) bool {
	if owner <= 0 {
		return true
	}
	return owner == currentPart
}

func decodeSchTextualRecord(p *ParameterList) (SchematicPrimitive, bool, error) {
	record := p.GetInt("RECORD")
	isSolid := p.GetBool("ISSOLID")

	switch record {
	case schRecordComponent:
		return SchComponentHeader{
			LibReference: p.GetString("LIBREFERENCE"),
			Description:  p.GetString("%UTF8%COMPONENTDESCRIPTION"),
		}, true, nil

	case schRecordSymbolMarker:
		return SchText{
			Pos:  locationFromParams(p),
			Text: fmt.Sprintf("*%d*", p.GetInt("SYMBOL")),
		}, true, nil

	case schRecordText:
		return SchText{
			Pos:  locationFromParams(p),
			Text: p.GetString("%UTF8%TEXT"),
		}, true, nil

	case schRecordBezier:
		return SchBezier{Vertices: vertexListFromParams(p)}, true, nil

	case schRecordPolyline:
		return SchPolyline{
			Vertices: vertexListFromParams(p),
			Width:    coordFromParams(p, "LINEWIDTH", "LINEWIDTH_FRAC"),
		}, true, nil

	case schRecordPolygon:
		return SchPolygon{
			Vertices: vertexListFromParams(p),
			IsSolid:  isSolid,
		}, true, nil

	case schRecordEllipse:
		return SchEllipse{
			Center:          locationFromParams(p),
			Radius:          coordFromParams(p, "RADIUS", "RADIUS_FRAC"),
			SecondaryRadius: coordFromParams(p, "SECONDARYRADIUS", "SECONDARYRADIUS_FRAC"),
			IsSolid:         isSolid,
		}, true, nil

	case schRecordRoundedRect:
		return SchRoundedRectangle{
			Corner1:       locationFromParams(p),
			Corner2:       cornerFromParams(p),
			CornerXRadius: coordFromParams(p, "CORNERXRADIUS", "CORNERXRADIUS_FRAC"),
			CornerYRadius: coordFromParams(p, "CORNERYRADIUS", "CORNERYRADIUS_FRAC"),
			IsSolid:       isSolid,
		}, true, nil

	case schRecordEllipticalArc:
		return SchEllipticalArc{
			Center:          locationFromParams(p),
			Radius:          coordFromParams(p, "RADIUS", "RADIUS_FRAC"),
			SecondaryRadius: coordFromParams(p, "SECONDARYRADIUS", "SECONDARYRADIUS_FRAC"),
			StartDeg:        p.GetDouble("STARTANGLE"),
			EndDeg:          p.GetDouble("ENDANGLE"),
		}, true, nil

	case schRecordArc:
		return SchArc{
			Center:   locationFromParams(p),
			Radius:   coordFromParams(p, "RADIUS", "RADIUS_FRAC"),
			StartDeg: p.GetDouble("STARTANGLE"),
			EndDeg:   p.GetDouble("ENDANGLE"),
		}, true, nil

	case schRecordLine, schRecordLine2:
		return SchLine{
			P1:      locationFromParams(p),
			P2:      cornerFromParams(p),
			Width:   coordFromParams(p, "LINEWIDTH", "LINEWIDTH_FRAC"),
			IsSolid: isSolid,
		}, true, nil

	case schRecordRectangle:
		return SchRectangle{
			Corner1: locationFromParams(p),
			Corner2: cornerFromParams(p),
			IsSolid: isSolid,
		}, true, nil

	case schRecordDesignator, schRecordParameter:
		return SchAttributeText{
			Pos:      locationFromParams(p),
			Name:     p.GetString("NAME"),
			Value:    p.GetString("TEXT"),
			IsHidden: p.GetBool("ISHIDDEN"),
		}, true, nil

	case schRecordImplementation:
		return SchAttributeText{
			Pos:   locationFromParams(p),
			Name:  "footprint",
			Value: p.GetString("MODELNAME"),
		}, true, nil

	case schRecordBlank44, schRecordBlank46, schRecordBlank47, schRecordBlank48:
		// Accepted but carry nothing drawable.
		return nil, false, nil

	default:
		return nil, false, fmt.Errorf("%w: RECORD=%d", errUnknownRecordType, record)
	}
}

// vertexListFromParams reads the LOCATIONCOUNT-prefixed X<i>/X_FRAC<i>
// vertex list shared by beziers, polylines, and polygons.
func vertexListFromParams(p *ParameterList) []Point2D {
	count := p.GetInt("LOCATIONCOUNT")
	vertices := make([]Point2D, 0, count)
	for i := 1; i <= count; i++ {
		idx := strconv.Itoa(i)
		vertices = append(vertices, Point2D{
			X: coordFromParams(p, "X"+idx, "X_FRAC"+idx),
			Y: coordFromParams(p, "Y"+idx, "Y_FRAC"+idx),
		})
	}
	return vertices
}

// decodeSchPin implements the binary pin record: position, endpoint
// geometry derived from the orientation-dependent formula, and the
// label/number/owner-part metadata.
func decodeSchPin(c *Cursor, recordLength uint32) (SchPin, int, error) {
	start := c.Pos()

	if _, err := c.U8(); err != nil {
		return SchPin{}, 0, err
	}
	if _, err := c.U32(); err != nil { // unidentified dword, discarded
		return SchPin{}, 0, err
	}
	owner, err := c.U32()
	if err != nil {
		return SchPin{}, 0, err
	}
	if _, err := c.Bytes(3); err != nil {
		return SchPin{}, 0, err
	}
	if _, err := c.ReadBytePrefixedString(); err != nil { // pin_notes
		return SchPin{}, 0, err
	}
	if _, err := c.U8(); err != nil {
		return SchPin{}, 0, err
	}
	if _, err := c.U8(); err != nil { // b3
		return SchPin{}, 0, err
	}
	b4, err := c.U8()
	if err != nil {
		return SchPin{}, 0, err
	}
	orientation := PinOrientation(b4 & 0x03)

	length, err := c.I16()
	if err != nil {
		return SchPin{}, 0, err
	}
	x, err := c.I16()
	if err != nil {
		return SchPin{}, 0, err
	}
	y, err := c.I16()
	if err != nil {
		return SchPin{}, 0, err
	}
	if _, err := c.I16(); err != nil { // w4, unused
		return SchPin{}, 0, err
	}
	if _, err := c.I16(); err != nil { // w5, unused
		return SchPin{}, 0, err
	}

	label, err := c.ReadBytePrefixedString()
	if err != nil {
		return SchPin{}, 0, err
	}
	number, err := c.ReadBytePrefixedString()
	if err != nil {
		return SchPin{}, 0, err
	}
	for i := 0; i < 3; i++ {
		if _, err := c.ReadBytePrefixedString(); err != nil { // string3/4/5, unused
			return SchPin{}, 0, err
		}
	}

	consumed := int(c.Pos() - start)
	if remaining := int(recordLength) - consumed; remaining > 0 {
		if err := c.Skip(remaining); err != nil {
			return SchPin{}, 0, err
		}
	}

	var x1, y1, x2, y2 int32
	w, xi, yi := int32(length), int32(x), int32(y)
	switch orientation {
	case PinRight:
		x1, y1 = (xi+w)*20, yi*20
		x2, y2 = xi*20, yi*20
	case PinUp:
		x1, y1 = xi*20, (yi+w)*20
		x2, y2 = xi*20, (yi-10)*20
	case PinLeft:
		x1, y1 = (xi-w)*20, yi*20
		x2, y2 = xi*20, yi*20
	case PinDown:
		x1, y1 = xi*20, (yi-w)*20
		x2, y2 = xi*20, yi*20
	}

	p1 := Point2D{X: SchCoord(x1), Y: SchCoord(y1)}
	return SchPin{
		P1:          p1,
		P2:          Point2D{X: SchCoord(x2), Y: SchCoord(y2)},
		Label:       label,
		LabelPos:    Point2D{X: p1.X + 50, Y: p1.Y + 50},
		Number:      number,
		NumberPos:   Point2D{X: p1.X - 50, Y: p1.Y + 50},
		Orientation: orientation,
		OwnerPart:   int(owner),
	}, int(owner), nil
}

// libRefSectionKey translates a symbol's LIBREF to its container
// resource name: the first SectionKeys entry whose LIBREF<i> equals
// libref supplies SECTIONKEY<i>; if none match, libref is used as-is.
// Altium stores resource names with '/' replaced by '_'.
func libRefSectionKey(sectionKeys *ParameterList, libref string) string {
	key := libref
	if sectionKeys != nil {
		count := sectionKeys.GetInt("KEYCOUNT")
		for i := 0; i < count; i++ {
			idx := strconv.Itoa(i)
			if sectionKeys.GetString("LIBREF"+idx) == libref {
				key = sectionKeys.GetString("SECTIONKEY" + idx)
				break
			}
		}
	}
	return strings.ReplaceAll(key, "/", "_")
}
