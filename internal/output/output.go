/*
	acme65 - Output container encoders

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

// Package output converts the assembler's finished byte image into
// one of the container formats a downstream tool expects: a raw
// binary, a CBM PRG with its load-address prefix, Intel HEX records,
// or a VICE-format symbol/label dump. Nibble formatting reuses the
// teacher's util/hex writers directly rather than fmt.Sprintf,
// generalized here from S/370's fixed 12/16-bit instruction fields to
// Intel HEX's 8-bit count/checksum and 16-bit address fields.
package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rcornwell/acme65/util/hex"
)

func writeByte(b *strings.Builder, v byte) {
	hex.FormatByte(b, v)
}

func writeWordBE(b *strings.Builder, v uint16) {
	hex.FormatByte(b, byte(v>>8))
	hex.FormatByte(b, byte(v))
}

// Format names a supported container.
type Format int

const (
	Plain Format = iota
	CBM
	HEX
)

// ParseFormat maps a "-f" flag argument to a Format. "apple" has no
// distinct encoding beyond plain binary at a given load address (the
// loader is external to this assembler), so it aliases Plain.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "plain", "apple":
		return Plain, nil
	case "cbm":
		return CBM, nil
	case "hex":
		return HEX, nil
	default:
		return 0, fmt.Errorf("unknown output format %q", name)
	}
}

// Encode renders bytes (the contiguous image spanning [loadAddr,
// loadAddr+len(bytes))) in the requested container format.
func Encode(f Format, loadAddr uint16, bytes []byte) ([]byte, error) {
	switch f {
	case Plain:
		return bytes, nil
	case CBM:
		out := make([]byte, 2+len(bytes))
		out[0] = byte(loadAddr)
		out[1] = byte(loadAddr >> 8)
		copy(out[2:], bytes)
		return out, nil
	case HEX:
		return []byte(encodeIntelHex(loadAddr, bytes)), nil
	default:
		return nil, fmt.Errorf("unsupported output format %v", f)
	}
}

// encodeIntelHex renders bytes as type-00 data records of at most 16
// bytes each, starting at loadAddr, followed by the type-01 EOF
// record: ":LLAAAATT<data>CC" with CC the two's-complement checksum
// of every preceding byte in the record.
func encodeIntelHex(loadAddr uint16, bytes []byte) string {
	var b strings.Builder
	addr := loadAddr
	for off := 0; off < len(bytes); off += 16 {
		end := off + 16
		if end > len(bytes) {
			end = len(bytes)
		}
		chunk := bytes[off:end]
		writeHexRecord(&b, addr, 0x00, chunk)
		addr += uint16(len(chunk))
	}
	writeHexRecord(&b, 0, 0x01, nil)
	return b.String()
}

func writeHexRecord(b *strings.Builder, addr uint16, recType byte, data []byte) {
	sum := byte(len(data)) + byte(addr>>8) + byte(addr) + recType
	for _, d := range data {
		sum += d
	}
	checksum := byte(0) - sum

	b.WriteByte(':')
	writeByte(b, byte(len(data)))
	writeWordBE(b, addr)
	writeByte(b, recType)
	for _, d := range data {
		writeByte(b, d)
	}
	writeByte(b, checksum)
	b.WriteByte('\n')
}

// Label is one global symbol exported to the VICE label file.
type Label struct {
	Name string
	Addr uint16
}

// VICELabels renders labels as one "al C:HHHH .name" line each, sorted
// by address to match the order VICE's own label dumps use.
func VICELabels(labels []Label) string {
	sorted := make([]Label, len(labels))
	copy(sorted, labels)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Addr != sorted[j].Addr {
			return sorted[i].Addr < sorted[j].Addr
		}
		return sorted[i].Name < sorted[j].Name
	})
	var b strings.Builder
	for _, l := range sorted {
		fmt.Fprintf(&b, "al C:%04X .%s\n", l.Addr, l.Name)
	}
	return b.String()
}
