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

import "math"

// Vec3 is a 3-D double-precision vector, used for the STEP placement
// triple (origin, axis, ref_dir).
type Vec3 struct {
	X, Y, Z float64
}

// boardThicknessMil is the fixed board-thickness offset (0.41148 mm)
// added to origin.Z when BODYPROJECTION mirrors a 3-D body to the
// opposite board side.
const boardThicknessMil = 0.41148 / 0.0254

// backwardsRotate2D applies the "backwards" 2-D rotation used throughout
// the placement composition: a' = a*cos(theta) + b*sin(theta),
// b' = -a*sin(theta) + b*cos(theta). This is a clockwise rotation in the
// (a, b) plane, not the usual counter-clockwise convention, and the sign
// must be preserved exactly or the emitted axis/ref_dir will not match
// the proprietary tool's placement.
func backwardsRotate2D(a, b, thetaDeg float64) (float64, float64) {
	theta := thetaDeg * math.Pi / 180
	sin, cos := math.Sin(theta), math.Cos(theta)
	return a*cos + b*sin, -a*sin + b*cos
}

// ComposePlacement builds the 3-D placement (origin, axis, ref_dir) for a
// model instance, given the library's Model Info (rotation angles) and
// the instance's parameter list (MODEL.2D.X/Y, MODEL.3D.DZ,
// BODYPROJECTION). It never fails: every input is numeric.
//
// The three rotations are applied in order X, then Y, then Z. That
// order is untested against real libraries when more than one axis is
// simultaneously non-zero; it is applied as recorded rather than
// guessing at a correction.
func ComposePlacement(model ModelInfo, instance *ParameterList) FPModelPlacement {
	axis := Vec3{0, 0, 1}
	refDir := Vec3{1, 0, 0}
	origin := Vec3{0, 0, 0}

	axis.Y, axis.Z = backwardsRotate2D(axis.Y, axis.Z, model.RotX)
	refDir.Y, refDir.Z = backwardsRotate2D(refDir.Y, refDir.Z, model.RotX)

	axis.Z, axis.X = backwardsRotate2D(axis.Z, axis.X, model.RotY)
	refDir.Z, refDir.X = backwardsRotate2D(refDir.Z, refDir.X, model.RotY)

	axis.X, axis.Y = backwardsRotate2D(axis.X, axis.Y, model.RotZ)
	refDir.X, refDir.Y = backwardsRotate2D(refDir.X, refDir.Y, model.RotZ)

	origin.X += instance.GetDouble("MODEL.2D.X")
	origin.Y -= instance.GetDouble("MODEL.2D.Y")
	origin.Z -= instance.GetDouble("MODEL.3D.DZ")
	axis.Z = -axis.Z
	refDir.Z = -refDir.Z

	if instance.GetBool("BODYPROJECTION") {
		origin.Y, origin.Z = -origin.Y, -origin.Z
		axis.Y, axis.Z = -axis.Y, -axis.Z
		refDir.Y, refDir.Z = -refDir.Y, -refDir.Z
		origin.Z += boardThicknessMil
	}

	return FPModelPlacement{
		Filename: model.Filename,
		Origin:   origin,
		Axis:     axis,
		RefDir:   refDir,
	}
}
