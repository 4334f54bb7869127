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
	"compress/zlib"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"
)

// ModelInfo is a normalized 3-D model definition, one entry per model-id
// recorded in a PcbLib's Models directory.
type ModelInfo struct {
	ID                  string
	RotX, RotY, RotZ    float64 // degrees, normalized (see normalizeAngle)
	DX, DY, DZ          int32   // raw offset, 1/10000 inch
	Checksum            int
	Embed               bool
	Filename            string // normalized: last non-empty backslash segment
}

// ModelTable maps a model-id string to its normalized ModelInfo. It is
// built once, before any footprint in the library is decoded, and is
// read-only afterward.
type ModelTable struct {
	byID  map[string]ModelInfo
	order []string // insertion order, matching the 0-based Models/Data index
}

// normalizeAngle snaps any rotation axis within 0.01 of 0 or of
// (+/-)360 to exactly 0. The placement composition depends on this
// snapping, so it must be preserved exactly.
func normalizeAngle(deg float64) float64 {
	if math.Abs(deg) < 0.01 {
		return 0
	}
	if math.Abs(math.Abs(deg)-360) < 0.01 {
		return 0
	}
	return deg
}

// normalizeModelFilename flattens a recorded (possibly Windows absolute)
// path to its last non-empty backslash-separated component.
func normalizeModelFilename(raw string) string {
	parts := strings.Split(raw, `\`)
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return raw
}

func modelInfoFromParams(p *ParameterList) ModelInfo {
	return ModelInfo{
		ID:       p.GetString("ID"),
		RotX:     normalizeAngle(p.GetDouble("ROTX")),
		RotY:     normalizeAngle(p.GetDouble("ROTY")),
		RotZ:     normalizeAngle(p.GetDouble("ROTZ")),
		DX:       int32(p.GetInt("DX")),
		DY:       int32(p.GetInt("DY")),
		DZ:       int32(p.GetInt("DZ")),
		Checksum: p.GetInt("CHECKSUM"),
		Embed:    p.GetBool("EMBED"),
		Filename: normalizeModelFilename(p.GetString("NAME")),
	}
}

// BuildModelTable reads the Models/Header record count and the
// corresponding N dword-prefixed parameter strings from Models/Data,
// inserting one ModelInfo per entry under its ID. Duplicate IDs are
// warnings, not errors; first insertion wins, so lookups are
// deterministic for a given input.
func BuildModelTable(header, data []byte, diag Diagnostics) (*ModelTable, error) {
	hc := NewCursor(header)
	count, err := hc.U32()
	if err != nil {
		return nil, &DecodeError{Kind: "models-header", Offset: hc.Pos(), Err: err}
	}

	dc := NewCursor(data)
	mt := &ModelTable{byID: make(map[string]ModelInfo, count)}
	for i := uint32(0); i < count; i++ {
		s, err := dc.ReadDwordPrefixedString()
		if err != nil {
			return nil, &DecodeError{Kind: "model-entry", Offset: dc.Pos(), Err: err}
		}
		info := modelInfoFromParams(ParseParameterList(s))
		// The i-th entry in Models/Data always corresponds to the
		// sibling resource named "<i>", regardless of whether this ID
		// is a duplicate we otherwise ignore.
		mt.order = append(mt.order, info.ID)
		if _, dup := mt.byID[info.ID]; dup {
			if diag != nil {
				diag("duplicate model id %q, keeping first insertion", info.ID)
			}
			continue
		}
		mt.byID[info.ID] = info
	}
	return mt, nil
}

// Lookup returns the ModelInfo for id and whether it was found.
func (mt *ModelTable) Lookup(id string) (ModelInfo, bool) {
	info, ok := mt.byID[id]
	return info, ok
}

// IDs returns the model ids in sorted order, for deterministic
// iteration (e.g. diagnostics, tests).
func (mt *ModelTable) IDs() []string {
	ids := make([]string, 0, len(mt.byID))
	for id := range mt.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// ExtractModels decompresses the ZLIB-compressed STEP payload for every
// model in mt, using resourceFor(i) to fetch the raw compressed bytes
// for model index i (0-based, matching the sibling resource names
// "0", "1", ... under Library/Models), and writes each to
// filepath.Join(dir, info.Filename). A missing resource or a ZLIB error
// is logged through diag and skipped — this step is a side effect, never
// fatal to the surrounding decode.
func ExtractModels(mt *ModelTable, dir string, resourceFor func(index int) ([]byte, bool), diag Diagnostics) {
	for i, id := range mt.order {
		info, ok := mt.byID[id]
		if !ok {
			// this index's ID lost to an earlier duplicate; the model
			// definition it would have produced is unreachable by
			// lookup, so there is nothing useful to extract it as.
			continue
		}
		raw, ok := resourceFor(i)
		if !ok {
			if diag != nil {
				diag("model %q: missing STEP resource %d", id, i)
			}
			continue
		}
		if err := extractOne(raw, filepath.Join(dir, info.Filename)); err != nil {
			if diag != nil {
				diag("model %q: %v", id, err)
			}
		}
	}
}

func extractOne(compressed []byte, outPath string) error {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return fmt.Errorf("zlib open: %w", err)
	}
	defer zr.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, zr); err != nil {
		return fmt.Errorf("inflate to %s: %w", outPath, err)
	}
	return nil
}
