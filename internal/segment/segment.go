/*
	acme65 - Program counter and segment manager

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

// Package segment owns the byte image written during assembly and the
// distinction between the real program counter (where bytes land) and
// the pseudo program counter (what label arithmetic sees). 6502
// programs fit comfortably under 64 KiB, so the image is a dense array
// with a parallel written-bitmap rather than a sparse map.
package segment

import "fmt"

const imageSize = 1 << 16

// Image is the single byte buffer for one assembly run, addressed by
// real PC. Writes outside [0, imageSize) are a range error; ACME
// target machines never exceed the 16-bit address space.
type Image struct {
	bytes    [imageSize]byte
	written  [imageSize]bool
	initByte byte

	// realPC is where the next byte will land; pseudoPC is what label
	// arithmetic reports via the '*' symbol while a !pseudopc region is
	// active. pseudoActive distinguishes "pseudoPC == realPC because no
	// remap is active" from "pseudoPC happens to equal realPC".
	realPC      int64
	pseudoPC    int64
	pseudoActive bool

	xorMask byte

	segStart, segEnd int64
	haveSegment      bool

	lo, hi int64 // smallest/largest written address, for output writers
	any    bool
}

// New returns an image with the default zero init byte and PC at 0,
// matching ACME's behavior before the first "*=" or !pseudopc.
func New() *Image {
	return &Image{lo: imageSize, hi: -1}
}

// SetInitByte implements "!initmem <b>": the fill value used by !align,
// !skip, and any implicit gap left by a PC jump.
func (im *Image) SetInitByte(b byte) { im.initByte = b }

// SetXor implements "!xor <b>": a mask applied only at output-writer
// time, never to label values.
func (im *Image) SetXor(b byte) { im.xorMask = b }

// SetRealPC implements "*=<expr>": both the real and pseudo program
// counters jump to addr, and any pseudopc remap is cleared.
func (im *Image) SetRealPC(addr int64) {
	im.realPC = addr
	im.pseudoPC = addr
	im.pseudoActive = false
}

// EnterPseudoPC implements "!pseudopc <addr> { ... }": label arithmetic
// inside the block sees addr onward, but bytes keep landing at the
// real PC.
func (im *Image) EnterPseudoPC(addr int64) {
	im.pseudoPC = addr
	im.pseudoActive = true
}

// ExitPseudoPC implements "!realpc" or leaving a !pseudopc block:
// label arithmetic reverts to tracking the real PC.
func (im *Image) ExitPseudoPC() {
	im.pseudoPC = im.realPC
	im.pseudoActive = false
}

// PC returns the value the '*' symbol and label definitions should see:
// the pseudo PC when a remap is active, otherwise the real PC.
func (im *Image) PC() int64 {
	if im.pseudoActive {
		return im.pseudoPC
	}
	return im.realPC
}

// RealPC returns where the next emitted byte will actually land.
func (im *Image) RealPC() int64 { return im.realPC }

// Emit writes one byte at the real PC (after applying the XOR mask)
// and advances both program counters in lockstep, so pseudo-PC label
// arithmetic stays addr-relative to the block's start.
func (im *Image) Emit(b byte) error {
	if im.realPC < 0 || im.realPC >= imageSize {
		return fmt.Errorf("program counter $%04x out of range", im.realPC)
	}
	addr := im.realPC
	im.bytes[addr] = b ^ im.xorMask
	im.written[addr] = true
	im.trackExtent(addr)
	im.realPC++
	if im.pseudoActive {
		im.pseudoPC++
	} else {
		im.pseudoPC = im.realPC
	}
	return nil
}

// EmitBytes writes a whole slice in order.
func (im *Image) EmitBytes(bs []byte) error {
	for _, b := range bs {
		if err := im.Emit(b); err != nil {
			return err
		}
	}
	return nil
}

func (im *Image) trackExtent(addr int64) {
	im.any = true
	if addr < im.lo {
		im.lo = addr
	}
	if addr > im.hi {
		im.hi = addr
	}
}

// Align implements "!align <mask>, <value>[, <fill>]": advances the PC
// until (pc & mask) == value, writing fill (defaulting to the init
// byte) over the gap.
func (im *Image) Align(mask, value int64, fill *byte) error {
	f := im.initByte
	if fill != nil {
		f = *fill
	}
	for (im.realPC & mask) != value {
		if err := im.Emit(f); err != nil {
			return err
		}
	}
	return nil
}

// Skip implements "!skip n": advances n bytes, writing the init byte.
func (im *Image) Skip(n int64) error {
	for i := int64(0); i < n; i++ {
		if err := im.Emit(im.initByte); err != nil {
			return err
		}
	}
	return nil
}

// Bounds reports the inclusive [lo, hi] range of addresses written so
// far; ok is false if nothing has been emitted.
func (im *Image) Bounds() (lo, hi int64, ok bool) {
	if !im.any {
		return 0, 0, false
	}
	return im.lo, im.hi, true
}

// Bytes returns the written image as a contiguous slice covering
// [lo, hi], suitable for the output writers. Unwritten gaps within the
// range read back as the init byte.
func (im *Image) Bytes() []byte {
	lo, hi, ok := im.Bounds()
	if !ok {
		return nil
	}
	out := make([]byte, hi-lo+1)
	for i := range out {
		addr := lo + int64(i)
		if im.written[addr] {
			out[i] = im.bytes[addr]
		} else {
			out[i] = im.initByte
		}
	}
	return out
}

// OverlapsSegment reports whether [start, end) intersects the most
// recently recorded segment range, and on success records this range
// in its place. Only one range is kept, so earlier ranges are not
// compared. The pass driver does not call it; implicit byte emission
// does not go through this check.
func (im *Image) OverlapsSegment(name string, start, end int64) error {
	if im.haveSegment && start < im.segEnd && im.segStart < end {
		return fmt.Errorf("segment %q at $%04x-$%04x overlaps previous segment at $%04x-$%04x", name, start, end, im.segStart, im.segEnd)
	}
	im.segStart, im.segEnd, im.haveSegment = start, end, true
	return nil
}
