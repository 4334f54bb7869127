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

// Package fp writes decoded footprint primitives out as a simple,
// line-oriented text format: one element per line, coordinates in mil.
// It is a thin external collaborator over altium.FootprintPrimitive, not
// a faithful reproduction of any particular CAD tool's native format.
package fp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	altium "github.com/pcjc2/openaltium"
)

// Writer serializes footprint primitives for one library to w.
type Writer struct {
	bw *bufio.Writer
}

// NewWriter wraps w for footprint output.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// Flush flushes any buffered output.
func (w *Writer) Flush() error { return w.bw.Flush() }

// WriteFootprintHeader marks the start of a new named footprint.
func (w *Writer) WriteFootprintHeader(name string) {
	fmt.Fprintf(w.bw, "FOOTPRINT %s\n", name)
}

// Write emits a single primitive. Unrecognized primitive types (there
// are none today, but sinks should stay forward-tolerant) are silently
// skipped.
func (w *Writer) Write(prim altium.FootprintPrimitive) {
	switch p := prim.(type) {
	case altium.FPArc:
		fmt.Fprintf(w.bw, "ARC %.2fmil %.2fmil r=%.2fmil start=%.2f sweep=%.2f width=%.2fmil layer=%d\n",
			p.Center.X.Mil(), p.Center.Y.Mil(), altium.Coordinate(p.Radius).Mil(), p.StartDeg, p.SweepDeg, altium.Coordinate(p.Thickness).Mil(), p.Layer)
	case altium.FPLine:
		fmt.Fprintf(w.bw, "LINE %.2fmil %.2fmil %.2fmil %.2fmil width=%.2fmil layer=%d\n",
			p.P1.X.Mil(), p.P1.Y.Mil(), p.P2.X.Mil(), p.P2.Y.Mil(), altium.Coordinate(p.Width).Mil(), p.Layer)
	case altium.FPRectangle:
		for _, l := range altium.RectangleToLines(p) {
			fmt.Fprintf(w.bw, "LINE %.2fmil %.2fmil %.2fmil %.2fmil layer=%d\n",
				l.P1.X.Mil(), l.P1.Y.Mil(), l.P2.X.Mil(), l.P2.Y.Mil(), l.Layer)
		}
	case altium.FPText:
		fmt.Fprintf(w.bw, "TEXT %.2fmil %.2fmil height=%.2fmil angle=%.2f font=%q %q\n",
			p.Pos.X.Mil(), p.Pos.Y.Mil(), altium.Coordinate(p.Height).Mil(), p.AngleDeg, p.Font, p.Text)
	case altium.FPPinThrough:
		fmt.Fprintf(w.bw, "PIN %.2fmil %.2fmil dia=%.2fmil drill=%.2fmil square=%t name=%q\n",
			p.Center.X.Mil(), p.Center.Y.Mil(), altium.Coordinate(p.PadDiameter).Mil(), altium.Coordinate(p.Drill).Mil(), p.IsSquare, p.Name)
	case altium.FPPadSMD:
		fmt.Fprintf(w.bw, "PAD %.2fmil %.2fmil %.2fmil %.2fmil square=%t layer=%d name=%q\n",
			p.P1.X.Mil(), p.P1.Y.Mil(), p.P2.X.Mil(), p.P2.Y.Mil(), p.IsSquare, p.Layer, p.Name)
	case altium.FPPolygon:
		fmt.Fprintf(w.bw, "POLYGON layer=%d vertices=%d\n", p.Layer, len(p.Vertices))
	case altium.FPModelPlacement:
		w.writeModelPlacement(p)
	}
}

// writeModelPlacement emits the STEP placement as attribute lines: the
// model type and filename, then origin/axis/ref_dir each as a triple and
// as three per-axis attributes in mil.
func (w *Writer) writeModelPlacement(p altium.FPModelPlacement) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	fmt.Fprintf(w.bw, "ATTR PCB::3d_model::type=%q\n", "STEP-AP214")
	fmt.Fprintf(w.bw, "ATTR PCB::3d_model::filename=%q\n", filepath.Join(cwd, p.Filename))
	for _, t := range []struct {
		name string
		v    altium.Vec3
	}{
		{"origin", p.Origin},
		{"axis", p.Axis},
		{"ref_dir", p.RefDir},
	} {
		fmt.Fprintf(w.bw, "ATTR PCB::3d_model::%s=(%.2fmil %.2fmil %.2fmil)\n", t.name, t.v.X, t.v.Y, t.v.Z)
		fmt.Fprintf(w.bw, "ATTR PCB::3d_model::%s_x=%.2fmil\n", t.name, t.v.X)
		fmt.Fprintf(w.bw, "ATTR PCB::3d_model::%s_y=%.2fmil\n", t.name, t.v.Y)
		fmt.Fprintf(w.bw, "ATTR PCB::3d_model::%s_z=%.2fmil\n", t.name, t.v.Z)
	}
}
