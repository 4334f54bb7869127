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

// Package sym writes decoded schematic primitives out as a simple,
// line-oriented text format, one part's geometry per labeled block.
package sym

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pcjc2/openaltium"
)

// Writer serializes schematic primitives for one library to w.
type Writer struct {
	bw *bufio.Writer
}

// NewWriter wraps w for schematic output.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// Flush flushes any buffered output.
func (w *Writer) Flush() error { return w.bw.Flush() }

// WriteSymbolHeader marks the start of a new named symbol part.
func (w *Writer) WriteSymbolHeader(name string, part int) {
	fmt.Fprintf(w.bw, "SYMBOL %s PART %d\n", name, part)
}

// Write emits a single primitive.
func (w *Writer) Write(prim altium.SchematicPrimitive) {
	switch p := prim.(type) {
	case altium.SchComponentHeader:
		fmt.Fprintf(w.bw, "#LIBREFERENCE=%s\n", p.LibReference)
		fmt.Fprintf(w.bw, "#DESCRIPTION=%s\n", p.Description)
	case altium.SchLine:
		fmt.Fprintf(w.bw, "LINE %.2f %.2f %.2f %.2f width=%.2f solid=%t\n",
			p.P1.X, p.P1.Y, p.P2.X, p.P2.Y, p.Width, p.IsSolid)
	case altium.SchRectangle:
		fmt.Fprintf(w.bw, "RECTANGLE %.2f %.2f %.2f %.2f solid=%t\n",
			p.Corner1.X, p.Corner1.Y, p.Corner2.X, p.Corner2.Y, p.IsSolid)
	case altium.SchRoundedRectangle:
		fmt.Fprintf(w.bw, "ROUNDRECT %.2f %.2f %.2f %.2f rx=%.2f ry=%.2f solid=%t\n",
			p.Corner1.X, p.Corner1.Y, p.Corner2.X, p.Corner2.Y, p.CornerXRadius, p.CornerYRadius, p.IsSolid)
	case altium.SchEllipse:
		fmt.Fprintf(w.bw, "ELLIPSE %.2f %.2f r=%.2f r2=%.2f solid=%t\n",
			p.Center.X, p.Center.Y, p.Radius, p.SecondaryRadius, p.IsSolid)
	case altium.SchEllipticalArc:
		fmt.Fprintf(w.bw, "EARC %.2f %.2f r=%.2f r2=%.2f start=%.2f end=%.2f\n",
			p.Center.X, p.Center.Y, p.Radius, p.SecondaryRadius, p.StartDeg, p.EndDeg)
	case altium.SchArc:
		fmt.Fprintf(w.bw, "ARC %.2f %.2f r=%.2f start=%.2f end=%.2f\n",
			p.Center.X, p.Center.Y, p.Radius, p.StartDeg, p.EndDeg)
	case altium.SchPolyline:
		fmt.Fprintf(w.bw, "POLYLINE width=%.2f vertices=%d\n", p.Width, len(p.Vertices))
		writeVertices(w.bw, p.Vertices)
	case altium.SchPolygon:
		fmt.Fprintf(w.bw, "POLYGON solid=%t vertices=%d\n", p.IsSolid, len(p.Vertices))
		writeVertices(w.bw, p.Vertices)
	case altium.SchBezier:
		fmt.Fprintf(w.bw, "BEZIER vertices=%d\n", len(p.Vertices))
		writeVertices(w.bw, p.Vertices)
	case altium.SchText:
		fmt.Fprintf(w.bw, "TEXT %.2f %.2f %q\n", p.Pos.X, p.Pos.Y, p.Text)
	case altium.SchAttributeText:
		fmt.Fprintf(w.bw, "ATTR %.2f %.2f %s=%q hidden=%t\n", p.Pos.X, p.Pos.Y, p.Name, p.Value, p.IsHidden)
	case altium.SchPin:
		fmt.Fprintf(w.bw, "PIN %.2f %.2f %.2f %.2f orient=%d number=%q label=%q owner=%d\n",
			p.P1.X, p.P1.Y, p.P2.X, p.P2.Y, p.Orientation, p.Number, p.Label, p.OwnerPart)
		fmt.Fprintf(w.bw, "  LABEL %.2f %.2f %q\n", p.LabelPos.X, p.LabelPos.Y, p.Label)
		fmt.Fprintf(w.bw, "  NUMBER %.2f %.2f %q\n", p.NumberPos.X, p.NumberPos.Y, p.Number)
	}
}

func writeVertices(bw *bufio.Writer, vs []altium.Point2D) {
	for _, v := range vs {
		fmt.Fprintf(bw, "  V %.2f %.2f\n", v.X, v.Y)
	}
}
