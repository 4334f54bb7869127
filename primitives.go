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

// Coordinate is a signed fixed-point coordinate. The external unit is
// 1/10000 of an inch ("mil x100"); arithmetic on coordinates is done in
// double precision and results are printed in mil (value/10000).
type Coordinate int32

// Mil converts a Coordinate to mil (1/1000 inch) as a float64.
func (c Coordinate) Mil() float64 { return float64(c) / 10000 }

// Point is a 2-D coordinate pair.
type Point struct {
	X, Y Coordinate
}

// FootprintPrimitive is a single decoded PcbLib geometry or metadata
// element. Each variant is its own concrete type (FPArc, FPLine, ...);
// a sink tells them apart with a type switch.
type FootprintPrimitive interface {
	isFootprintPrimitive()
}

// FPArc is an arc or circle (sweep 0..360) on a copper/silkscreen layer.
type FPArc struct {
	Center             Point
	Radius             int32
	StartDeg, SweepDeg float64
	Thickness          int32
	Layer              byte
}

func (FPArc) isFootprintPrimitive() {}

// FPLine is a straight line segment (silkscreen or outline).
type FPLine struct {
	P1, P2    Point
	Width     int32
	Layer     byte
}

func (FPLine) isFootprintPrimitive() {}

// FPRectangle is emitted by the target format as six FPLine elements
// (four sides plus two diagonals); kept here as a single primitive so a
// sink can choose its own rendering.
type FPRectangle struct {
	P1, P2 Point
	Layer  byte
}

func (FPRectangle) isFootprintPrimitive() {}

// FPText is a debug-only text attribute; the canonical footprint output
// format has no text-in-element support, so sinks are free to suppress
// it entirely.
type FPText struct {
	Pos      Point
	Height   int32
	AngleDeg float64
	Text     string
	Font     string
}

func (FPText) isFootprintPrimitive() {}

// FPPinThrough is a plated (or, if reclassified, non-plated) through-hole
// pin/pad.
type FPPinThrough struct {
	Center       Point
	PadDiameter  int32
	Clearance    int32
	Mask         int32
	Drill        int32
	IsNonPlated  bool
	IsSquare     bool
	Name         string
}

func (FPPinThrough) isFootprintPrimitive() {}

// FPPadSMD is a surface-mount pad, expressed as its diagonal corners.
type FPPadSMD struct {
	P1, P2    Point
	Thickness int32
	Clearance int32
	Mask      int32
	IsSquare  bool
	Name      string
	Layer     byte
}

func (FPPadSMD) isFootprintPrimitive() {}

// FPPolygon is a filled copper/silkscreen polygon.
type FPPolygon struct {
	Layer      byte
	Attributes *ParameterList
	Vertices   []Vertex2D
}

func (FPPolygon) isFootprintPrimitive() {}

// Vertex2D is a double-precision 2-D vertex, as used by polygon outlines.
type Vertex2D struct {
	X, Y float64
}

// FPModelPlacement is a 3-D STEP model placement, already composed from
// the instance's Euler angles and the library's model table entry.
type FPModelPlacement struct {
	Filename           string
	Origin             Vec3
	Axis               Vec3
	RefDir             Vec3
}

func (FPModelPlacement) isFootprintPrimitive() {}

// SchematicPrimitive is a single decoded SchLib drawing element.
type SchematicPrimitive interface {
	isSchematicPrimitive()
}

// SchCoord is a symbolic schematic-grid coordinate (x20 scale with
// fractional x20/100000 sub-unit accumulation — see coordFromParams).
type SchCoord float64

// SchLine, SchRectangle, SchRoundedRectangle, SchEllipse,
// SchEllipticalArc, SchArc, SchPolyline, SchPolygon, and SchBezier are
// built from corners, a center and radii, or a vertex list; each is kept
// as a distinct type so a sink can switch exhaustively without losing
// which record produced the primitive.

type SchLine struct {
	P1, P2     Point2D
	Width      SchCoord
	IsSolid    bool
}

func (SchLine) isSchematicPrimitive() {}

// Point2D is a schematic-grid point pair (SchCoord, not Coordinate: the
// schematic grid and the footprint grid use different scaling).
type Point2D struct {
	X, Y SchCoord
}

type SchRectangle struct {
	Corner1, Corner2 Point2D
	IsSolid          bool
}

func (SchRectangle) isSchematicPrimitive() {}

type SchRoundedRectangle struct {
	Corner1, Corner2     Point2D
	CornerXRadius        SchCoord
	CornerYRadius        SchCoord
	IsSolid              bool
}

func (SchRoundedRectangle) isSchematicPrimitive() {}

type SchEllipse struct {
	Center                   Point2D
	Radius, SecondaryRadius  SchCoord
	IsSolid                  bool
}

func (SchEllipse) isSchematicPrimitive() {}

type SchEllipticalArc struct {
	Center                  Point2D
	Radius, SecondaryRadius SchCoord
	StartDeg, EndDeg        float64
}

func (SchEllipticalArc) isSchematicPrimitive() {}

type SchArc struct {
	Center           Point2D
	Radius           SchCoord
	StartDeg, EndDeg float64
}

func (SchArc) isSchematicPrimitive() {}

type SchPolyline struct {
	Vertices []Point2D
	Width    SchCoord
}

func (SchPolyline) isSchematicPrimitive() {}

type SchPolygon struct {
	Vertices []Point2D
	IsSolid  bool
}

func (SchPolygon) isSchematicPrimitive() {}

type SchBezier struct {
	Vertices []Point2D
}

func (SchBezier) isSchematicPrimitive() {}

// SchComponentHeader carries the component-level metadata from the
// symbol's leading record; sinks typically render it as comment lines.
type SchComponentHeader struct {
	LibReference string
	Description  string
}

func (SchComponentHeader) isSchematicPrimitive() {}

// SchText is free-form symbol text (record type 4) or a symbol marker
// (type 3); both share the same position/text shape.
type SchText struct {
	Pos  Point2D
	Text string
}

func (SchText) isSchematicPrimitive() {}

// SchAttributeText is a name=value attribute label (designator, type 34;
// or a parameter attribute, type 41), with a visibility flag.
type SchAttributeText struct {
	Pos      Point2D
	Name     string
	Value    string
	IsHidden bool
}

func (SchAttributeText) isSchematicPrimitive() {}

// SchPin is a schematic pin: a binary record, not a parameter-list
// record, distinguished in the stream by the length word's high bit.
// LabelPos and NumberPos are the label/number text placements, derived
// from P1 (+50 above-right for the label, +50 above-left for the
// number), not stored directly in the record.
type SchPin struct {
	P1, P2      Point2D
	Label       string
	LabelPos    Point2D
	Number      string
	NumberPos   Point2D
	Orientation PinOrientation
	OwnerPart   int
}

func (SchPin) isSchematicPrimitive() {}

// PinOrientation is the pin's fixed compass direction, taken from the
// low 2 bits of the pin record's orientation byte.
type PinOrientation uint8

const (
	PinRight PinOrientation = iota
	PinUp
	PinLeft
	PinDown
)
