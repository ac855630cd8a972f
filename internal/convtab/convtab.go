/*
	acme65 - Text conversion tables

	Copyright (c) 2024, Richard Cornwell

	Permission is hereby granted, free of charge, to any person obtaining a
	copy of this software and associated documentation files (the "Software"),
	to deal in the Software without restriction, including without limitation
	the rights to use, copy, modify, merge, publish, distribute, sublicense,
	and/or sell copies of the Software, and to permit persons to whom the
	Software is furnished to do so, subject to the following conditions:

	The above copyright notice and this permission notice shall be included in
	all copies or substantial portions of the Software.

	THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
	IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
	FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
	RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
	IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
	CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*/

// Package convtab implements the byte-conversion tables consumed by
// the !pet, !scr, !convtab, and !ct directives. Each table is a flat
// 256-entry array mapping a source (ASCII) byte to the target
// encoding's byte, in the same flat-array-plus-accessor style the
// card-conversion tables use for Hollerith/EBCDIC/ASCII conversion.
package convtab

import (
	"fmt"
	"os"
)

// Table maps source bytes 0-255 to their converted form.
type Table [256]byte

// Convert applies t to every byte of src, returning a new slice.
func (t *Table) Convert(src []byte) []byte {
	out := make([]byte, len(src))
	for i, b := range src {
		out[i] = t[b]
	}
	return out
}

// identity leaves bytes unchanged; it backs "!convtab raw" and is the
// default before any !convtab/!pet/!scr directive runs.
var identityTable = buildIdentity()

func buildIdentity() *Table {
	var t Table
	for i := range t {
		t[i] = byte(i)
	}
	return &t
}

// petTable converts plain ASCII source text to PETSCII, matching the
// C64/C128 "unshifted" character ROM layout: lowercase and uppercase
// letters trade places relative to ASCII, and the rest of the
// printable range passes through unchanged.
var petTable = buildPet()

func buildPet() *Table {
	t := *identityTable
	for c := byte('a'); c <= 'z'; c++ {
		t[c] = c - 'a' + 'A'
	}
	for c := byte('A'); c <= 'Z'; c++ {
		t[c] = c - 'A' + 'a'
	}
	return &t
}

// scrTable converts PETSCII byte values to C64 screen-code values: the
// two letter-case ranges and the control range below $20 each shift by
// a fixed offset, per the VIC-II character generator layout.
var scrTable = buildScr()

func buildScr() *Table {
	var t Table
	for i := 0; i < 256; i++ {
		b := byte(i)
		switch {
		case b >= 0x40 && b <= 0x5F:
			t[i] = b - 0x40
		case b >= 0x60 && b <= 0x7F:
			t[i] = b - 0x20
		case b >= 0xC0 && b <= 0xDF:
			t[i] = b - 0x80
		case b < 0x20:
			t[i] = b + 0x80
		default:
			t[i] = b
		}
	}
	return &t
}

// isoTable converts PETSCII byte values back to ISO-8859-1/ASCII
// text; the upper/lowercase swap is its own inverse, so it is the
// same table as petTable.
var isoTable = petTable

var builtins = map[string]*Table{
	"raw":  identityTable,
	"none": identityTable,
	"pet":  petTable,
	"scr":  scrTable,
	"iso":  isoTable,
}

// Lookup returns one of the assembler's built-in named tables, for
// "!convtab <name>".
func Lookup(name string) (*Table, bool) {
	t, ok := builtins[name]
	return t, ok
}

// LoadFile implements "!ct \"<file>\"": a user-supplied table is a raw
// 256-byte file giving the converted value of each source byte.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading conversion table %q: %w", path, err)
	}
	if len(data) != 256 {
		return nil, fmt.Errorf("conversion table %q: expected 256 bytes, got %d", path, len(data))
	}
	var t Table
	copy(t[:], data)
	return &t, nil
}

// ScrXor applies the "!scrxor v" post-conversion XOR to an
// already-converted byte slice, per the directive's documented order:
// the XOR mask applies after the convtab lookup, not before.
func ScrXor(bs []byte, v byte) []byte {
	out := make([]byte, len(bs))
	for i, b := range bs {
		out[i] = b ^ v
	}
	return out
}
