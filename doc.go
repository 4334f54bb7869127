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

// Package altium decodes Altium PcbLib (footprint) and SchLib (schematic
// symbol) libraries into open geometry descriptions.
//
// Both library formats are packaged as a Microsoft OLE Compound Document
// container.  This package treats the container as a read-only hierarchy
// of named streams (see Container) and decodes the streams it finds there
// into a sequence of typed primitives:
//
//	lib, err := altium.OpenPcbLib("foo.PcbLib", altium.DiscardDiagnostics)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer lib.Close()
//
//	summary, err := lib.Decode(func(footprint string, prim altium.FootprintPrimitive) {
//	    ... hand prim to an output sink ...
//	})
//
// The decoder is a straightforward byte-cursor reader (Cursor) over
// self-describing, variable-length records; most records come in a small
// number of undocumented size variants distinguished only by their
// recorded length, which this package resolves explicitly rather than
// guessing at a single fixed layout.
//
// SchLib symbols are decoded the same way, through OpenSchLib, and emit
// SchematicPrimitive values instead.
package altium
