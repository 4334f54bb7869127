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
	"io"
	"os"
	"strings"

	"github.com/richardlehane/mscfb"
)

// Container is the read-only hierarchical byte-stream view of an OLE
// Compound Document: callers look up a named child stream (e.g. "Library/Header",
// "Library/Models/Data", or a footprint resource by name) and get back
// its raw payload. This package never writes to a container.
//
// mscfb.Reader only offers a single forward pass over the document, so
// OpenContainer walks it once and indexes every stream by its slash-joined path.
type Container struct {
	streams map[string][]byte
	file    *os.File
}

// OpenContainer opens path as an OLE Compound Document and indexes every
// stream it contains.
func OpenContainer(path string) (*Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	c, err := newContainerFromReaderAt(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	c.file = f
	return c, nil
}

func newContainerFromReaderAt(ra io.ReaderAt) (*Container, error) {
	doc, err := mscfb.New(ra)
	if err != nil {
		return nil, fmt.Errorf("open compound document: %w", err)
	}

	c := &Container{streams: make(map[string][]byte)}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.Size == 0 {
			c.streams[streamKey(entry.Path, entry.Name)] = nil
			continue
		}
		buf := make([]byte, entry.Size)
		if _, err := io.ReadFull(entry, buf); err != nil {
			return nil, fmt.Errorf("read stream %s: %w", entry.Name, err)
		}
		c.streams[streamKey(entry.Path, entry.Name)] = buf
	}
	return c, nil
}

func streamKey(path []string, name string) string {
	if len(path) == 0 {
		return name
	}
	return strings.Join(path, "/") + "/" + name
}

// Get returns the raw payload of the named stream (e.g. "Library/Header")
// and whether it was present in the container.
func (c *Container) Get(name string) ([]byte, bool) {
	b, ok := c.streams[name]
	return b, ok
}

// MustGet is like Get but turns a missing stream into an error, for
// callers that treat a missing required stream as malformed input.
func (c *Container) MustGet(name string) ([]byte, error) {
	b, ok := c.streams[name]
	if !ok {
		return nil, fmt.Errorf("missing stream %q", name)
	}
	return b, nil
}

// Close releases the underlying file, if any.
func (c *Container) Close() error {
	if c.file == nil {
		return nil
	}
	return c.file.Close()
}
