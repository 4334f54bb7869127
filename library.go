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

// Summary tallies what a library decode produced, printed by the CLI at
// the end of a run.
type Summary struct {
	Footprints int
	Symbols    int
	Warnings   int
}

// countingDiagnostics wraps a Diagnostics callback to also increment a
// Warnings counter, so a caller gets both the message stream and a tally
// without coordinating the two itself.
func countingDiagnostics(sum *Summary, diag Diagnostics) Diagnostics {
	return func(format string, args ...any) {
		sum.Warnings++
		if diag != nil {
			diag(format, args...)
		}
	}
}

// PcbLib is a decoded handle on a PcbLib container: its footprint name
// list and model table are read eagerly at open time, since every
// footprint's model placements need the table built first.
type PcbLib struct {
	container *Container
	names     []string
	models    *ModelTable
	diag      Diagnostics
}

// OpenPcbLib opens path as a PcbLib, reads its Library/Data footprint
// list, and builds its Model Table. diag may be nil, in which case
// non-fatal conditions are silently discarded.
func OpenPcbLib(path string, diag Diagnostics) (*PcbLib, error) {
	c, err := OpenContainer(path)
	if err != nil {
		return nil, err
	}
	lib, err := newPcbLibFromContainer(c, diag)
	if err != nil {
		c.Close()
		return nil, err
	}
	return lib, nil
}

func newPcbLibFromContainer(c *Container, diag Diagnostics) (*PcbLib, error) {
	names, err := readLibraryNames(c, diag)
	if err != nil {
		return nil, err
	}

	var models *ModelTable
	if header, ok := c.Get("Library/Models/Header"); ok {
		data, _ := c.Get("Library/Models/Data")
		models, err = BuildModelTable(header, data, diag)
		if err != nil {
			return nil, err
		}
	} else {
		models = &ModelTable{byID: map[string]ModelInfo{}}
	}

	return &PcbLib{container: c, names: names, models: models, diag: diag}, nil
}

// readLibraryNames decodes the footprint/symbol name list from the
// Library sub-container. Library/Header is a single u32 record count
// that must equal 1. Library/Data is a dword-prefixed parameter string
// (discarded), a u32 footprint count, and that many multi-prefixed
// footprint-name strings.
func readLibraryNames(c *Container, diag Diagnostics) ([]string, error) {
	header, err := c.MustGet("Library/Header")
	if err != nil {
		return nil, err
	}
	hc := NewCursor(header)
	recordCount, err := hc.U32()
	if err != nil {
		return nil, err
	}
	if recordCount != 1 {
		return nil, fmt.Errorf("%w: Library/Header count=%d", errInvalidLength, recordCount)
	}

	raw, err := c.MustGet("Library/Data")
	if err != nil {
		return nil, err
	}
	dc := NewCursor(raw)
	if _, err := dc.ReadDwordPrefixedString(); err != nil { // parameters, discarded
		return nil, err
	}
	numFootprints, err := dc.U32()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, numFootprints)
	for i := uint32(0); i < numFootprints; i++ {
		name, err := dc.ReadMultiPrefixedString(diag)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// footprintResourceName translates a footprint/symbol name to its
// sibling sub-container name: Altium stores resource names with '/'
// replaced by '_'.
func footprintResourceName(name string) string {
	return strings.ReplaceAll(name, "/", "_")
}

// Names returns the footprint names in the library, in declaration
// order.
func (lib *PcbLib) Names() []string {
	out := make([]string, len(lib.names))
	copy(out, lib.names)
	return out
}

// Models returns the library's model table, built at open time.
func (lib *PcbLib) Models() *ModelTable { return lib.models }

// ExtractModels writes every STEP model referenced by this library's
// Model Table to dir; see ExtractModels for the per-entry behavior.
func (lib *PcbLib) ExtractModels(dir string) {
	ExtractModels(lib.models, dir, func(i int) ([]byte, bool) {
		return lib.container.Get("Library/Models/" + strconv.Itoa(i))
	}, lib.diag)
}

// FootprintVisitFunc receives a primitive for one named footprint.
type FootprintVisitFunc func(footprint string, prim FootprintPrimitive)

// Decode decodes every footprint in the library in declaration order, handing
// each primitive to visit as it is produced. A malformed footprint stops
// the whole decode and returns its *DecodeError; non-fatal conditions go
// through the Diagnostics callback OpenPcbLib was given.
func (lib *PcbLib) Decode(visit FootprintVisitFunc) (Summary, error) {
	var sum Summary
	diag := countingDiagnostics(&sum, lib.diag)
	for _, name := range lib.names {
		resourceName := footprintResourceName(name)
		data, ok := lib.container.Get(resourceName + "/Data")
		if !ok {
			diag("footprint %q: missing Data stream, skipped", name)
			continue
		}
		err := DecodeFootprint(data, lib.models, diag, func(p FootprintPrimitive) {
			visit(name, p)
		})
		if err != nil {
			return sum, err
		}
		sum.Footprints++
	}
	return sum, nil
}

// Close releases the underlying container.
func (lib *PcbLib) Close() error { return lib.container.Close() }

// schComponent is one entry of the library-level FileHeader's component
// list: its LIBREF and its declared part count.
type schComponent struct {
	libRef    string
	partCount int
}

// readSchComponents decodes the root FileHeader parameter list:
// COMPCOUNT, then per-component LIBREF<i>/PARTCOUNT<i>. PARTCOUNT<i> is
// stored one more than the real part count, so 1 is subtracted here.
func readSchComponents(c *Container) ([]schComponent, error) {
	raw, err := c.MustGet("FileHeader")
	if err != nil {
		return nil, err
	}
	params := ParseParameterList(string(raw))
	count := params.GetInt("COMPCOUNT")
	components := make([]schComponent, 0, count)
	for i := 0; i < count; i++ {
		idx := strconv.Itoa(i)
		partCount := params.GetInt("PARTCOUNT"+idx) - 1
		if partCount < 1 {
			partCount = 1
		}
		components = append(components, schComponent{
			libRef:    params.GetString("LIBREF" + idx),
			partCount: partCount,
		})
	}
	return components, nil
}

// SchLib is a decoded handle on a SchLib container.
type SchLib struct {
	container   *Container
	components  []schComponent
	sectionKeys *ParameterList
	diag        Diagnostics
}

// OpenSchLib opens path as a SchLib and reads its component list from
// FileHeader and its LIBREF translation table from SectionKeys.
func OpenSchLib(path string, diag Diagnostics) (*SchLib, error) {
	c, err := OpenContainer(path)
	if err != nil {
		return nil, err
	}
	components, err := readSchComponents(c)
	if err != nil {
		c.Close()
		return nil, err
	}
	var sectionKeys *ParameterList
	if raw, ok := c.Get("SectionKeys"); ok {
		sectionKeys = ParseParameterList(string(raw))
	}
	return &SchLib{container: c, components: components, sectionKeys: sectionKeys, diag: diag}, nil
}

// Names returns the symbol LIBREFs in the library, in declaration order.
func (lib *SchLib) Names() []string {
	out := make([]string, len(lib.components))
	for i, comp := range lib.components {
		out[i] = comp.libRef
	}
	return out
}

// SchematicVisitFunc receives a primitive for one named symbol part.
type SchematicVisitFunc func(symbol string, part int, prim SchematicPrimitive)

// Decode decodes every symbol in the library, across every part its
// FileHeader entry declares, in component then part order.
func (lib *SchLib) Decode(visit SchematicVisitFunc) (Summary, error) {
	var sum Summary
	diag := countingDiagnostics(&sum, lib.diag)
	for _, comp := range lib.components {
		resourceName := libRefSectionKey(lib.sectionKeys, comp.libRef)
		data, ok := lib.container.Get(resourceName + "/Data")
		if !ok {
			diag("symbol %q: missing Data stream, skipped", comp.libRef)
			continue
		}
		for part := 1; part <= comp.partCount; part++ {
			err := DecodeSchematic(data, part, diag, func(p SchematicPrimitive) {
				visit(comp.libRef, part, p)
			})
			if err != nil {
				return sum, err
			}
		}
		sum.Symbols++
	}
	return sum, nil
}

// Close releases the underlying container.
func (lib *SchLib) Close() error { return lib.container.Close() }
