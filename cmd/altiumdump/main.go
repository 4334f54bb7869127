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

// Command altiumdump decodes an Altium PcbLib or SchLib file, writing
// one <footprint>.fp file per footprint (or one <symbol>-<part>.sym
// file per symbol part) and any embedded STEP models into the current
// working directory.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	altium "github.com/pcjc2/openaltium"
	"github.com/pcjc2/openaltium/output/fp"
	"github.com/pcjc2/openaltium/output/sym"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: altiumdump -p|--pcblib | -s|--schlib  -f|--file FILENAME [-dump-raw DIR]")
	flag.PrintDefaults()
}

func main() {
	var pcbMode, schMode bool
	var file, dumpRawDir string
	flag.BoolVar(&pcbMode, "p", false, "decode a PcbLib footprint library")
	flag.BoolVar(&pcbMode, "pcblib", false, "decode a PcbLib footprint library")
	flag.BoolVar(&schMode, "s", false, "decode a SchLib schematic library")
	flag.BoolVar(&schMode, "schlib", false, "decode a SchLib schematic library")
	flag.StringVar(&file, "f", "", "library file to decode")
	flag.StringVar(&file, "file", "", "library file to decode")
	flag.StringVar(&dumpRawDir, "dump-raw", "", "directory to write each resource's raw bytes into, for inspecting undocumented record-size variants")
	flag.Usage = usage
	flag.Parse()

	if pcbMode == schMode || file == "" {
		usage()
		os.Exit(1)
	}

	diag := newTerminalDiagnostics()

	var summary altium.Summary
	var err error
	if pcbMode {
		summary, err = dumpPcbLib(file, diag, dumpRawDir)
	} else {
		summary, err = dumpSchLib(file, diag, dumpRawDir)
	}
	if err != nil {
		log.Fatalf("decode failed: %v", err)
	}

	fmt.Printf("decoded %d footprints, %d symbols, %d warnings\n",
		summary.Footprints, summary.Symbols, summary.Warnings)
}

// newTerminalDiagnostics returns a Diagnostics callback that prefixes
// warnings with a colored marker when stderr is a terminal, and a plain
// prefix otherwise (e.g. when output is piped or redirected to a file).
func newTerminalDiagnostics() altium.Diagnostics {
	prefix := "warning: "
	if term.IsTerminal(int(os.Stderr.Fd())) {
		prefix = "\x1b[33mwarning:\x1b[0m "
	}
	return func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, prefix+format+"\n", args...)
	}
}

// outputFileName flattens a footprint/symbol name into a filename that is
// safe to create in the working directory.
func outputFileName(name, suffix string) string {
	return strings.ReplaceAll(name, "/", "_") + suffix
}

func dumpPcbLib(path string, diag altium.Diagnostics, dumpRawDir string) (altium.Summary, error) {
	lib, err := altium.OpenPcbLib(path, diag)
	if err != nil {
		return altium.Summary{}, err
	}
	defer lib.Close()

	if dumpRawDir != "" {
		dumpRawResources(lib.Names(), dumpRawDir, path)
	}
	lib.ExtractModels(".")

	var (
		current *os.File
		w       *fp.Writer
	)
	closeCurrent := func() error {
		if current == nil {
			return nil
		}
		err := w.Flush()
		if cerr := current.Close(); err == nil {
			err = cerr
		}
		current, w = nil, nil
		return err
	}

	summary, err := lib.Decode(func(footprint string, prim altium.FootprintPrimitive) {
		name := outputFileName(footprint, ".fp")
		if current == nil || current.Name() != name {
			if cerr := closeCurrent(); cerr != nil {
				diag("close %s: %v", name, cerr)
			}
			f, cerr := os.Create(name)
			if cerr != nil {
				diag("create %s: %v", name, cerr)
				return
			}
			current = f
			w = fp.NewWriter(f)
			w.WriteFootprintHeader(footprint)
		}
		w.Write(prim)
	})
	if cerr := closeCurrent(); err == nil && cerr != nil {
		err = cerr
	}
	return summary, err
}

func dumpSchLib(path string, diag altium.Diagnostics, dumpRawDir string) (altium.Summary, error) {
	lib, err := altium.OpenSchLib(path, diag)
	if err != nil {
		return altium.Summary{}, err
	}
	defer lib.Close()

	if dumpRawDir != "" {
		dumpRawResources(lib.Names(), dumpRawDir, path)
	}

	var (
		current *os.File
		w       *sym.Writer
	)
	closeCurrent := func() error {
		if current == nil {
			return nil
		}
		err := w.Flush()
		if cerr := current.Close(); err == nil {
			err = cerr
		}
		current, w = nil, nil
		return err
	}

	summary, err := lib.Decode(func(symbol string, part int, prim altium.SchematicPrimitive) {
		name := outputFileName(fmt.Sprintf("%s-%d", symbol, part), ".sym")
		if current == nil || current.Name() != name {
			if cerr := closeCurrent(); cerr != nil {
				diag("close %s: %v", name, cerr)
			}
			f, cerr := os.Create(name)
			if cerr != nil {
				diag("create %s: %v", name, cerr)
				return
			}
			current = f
			w = sym.NewWriter(f)
			w.WriteSymbolHeader(symbol, part)
		}
		w.Write(prim)
	})
	if cerr := closeCurrent(); err == nil && cerr != nil {
		err = cerr
	}
	return summary, err
}

// dumpRawResources writes each named resource's raw Data stream bytes to
// <dir>/<name>.raw, for characterizing a record-size variant the decoder
// does not recognize yet.
func dumpRawResources(names []string, dir, libPath string) {
	c, err := altium.OpenContainer(libPath)
	if err != nil {
		log.Fatalf("failed to reopen container for raw dump: %v", err)
	}
	defer c.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Fatalf("failed to create raw dump directory: %v", err)
	}
	for _, name := range names {
		resource := strings.ReplaceAll(name, "/", "_")
		data, ok := c.Get(resource + "/Data")
		if !ok {
			continue
		}
		outPath := filepath.Join(dir, resource+".raw")
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			log.Printf("raw dump %s: %v", name, err)
		}
	}
}
