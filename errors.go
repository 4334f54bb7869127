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
	"errors"
	"fmt"
)

var (
	// errShortRead is returned by Cursor operations when fewer bytes
	// remain in the buffer than requested.
	errShortRead = errors.New("short read")

	// errUnknownRecordType is the sentinel for a record whose type byte
	// (PcbLib) or RECORD field (SchLib) is outside the decoder's closed
	// dispatch set. The format is not self-describing enough to skip an
	// unrecognized record, so this is always fatal for the library.
	errUnknownRecordType = errors.New("unknown record type")

	// errInvalidLength is returned when a record's declared length does
	// not match any of the variant lengths permitted for its type.
	errInvalidLength = errors.New("invalid record length")

	// errBadSentinel is returned when a fixed sentinel word (e.g. the
	// five 0xFFFF words preceding most PcbLib geometry records) does not
	// match the expected value.
	errBadSentinel = errors.New("unexpected sentinel value")
)

// DecodeError wraps a record-decode failure with the record kind and the
// byte offset at which decoding was attempting to make progress, so a
// caller can report where in the file things went wrong.
type DecodeError struct {
	Kind   string // human-readable record kind, e.g. "arc", "pad"
	Offset int64  // cursor position when the failure was detected
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("decode %s record at offset %d: %v", e.Kind, e.Offset, e.Err)
	}
	return fmt.Sprintf("decode %s record: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Diagnostics receives non-fatal warnings produced while decoding (a
// length-prefix disagreement, a non-UTF-8 parameter value, a missing
// ZLIB model resource, a missing model ID). Fatal errors are returned as
// a *DecodeError; a few of them (an unsupported pad-stack section, an
// unexpected polygon fields length) are also reported here first.
type Diagnostics func(format string, args ...any)

// DiscardDiagnostics drops every warning. It is a convenient zero value
// for callers that don't care about non-fatal conditions.
func DiscardDiagnostics(string, ...any) {}
