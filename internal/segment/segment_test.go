/*
 * acme65 - Segment/output image test set.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package segment

import "testing"

func TestEmitAdvancesBothCounters(t *testing.T) {
	im := New()
	im.SetRealPC(0xc000)
	im.Emit(0xa9)
	im.Emit(0x01)
	if im.RealPC() != 0xc002 {
		t.Errorf("got real pc %#x, want 0xc002", im.RealPC())
	}
	if im.PC() != 0xc002 {
		t.Errorf("got pc %#x, want 0xc002", im.PC())
	}
}

func TestPseudoPCRemapsLabelsNotBytes(t *testing.T) {
	im := New()
	im.SetRealPC(0x0800)
	im.EnterPseudoPC(0xc000)
	if im.PC() != 0xc000 {
		t.Errorf("pseudo pc: got %#x, want 0xc000", im.PC())
	}
	im.Emit(0x42)
	if im.RealPC() != 0x0801 {
		t.Errorf("bytes should land at real pc 0x0801, got %#x", im.RealPC())
	}
	if im.PC() != 0xc001 {
		t.Errorf("label arithmetic should advance too: got %#x, want 0xc001", im.PC())
	}
	lo, hi, ok := im.Bounds()
	if !ok || lo != 0x0800 || hi != 0x0800 {
		t.Errorf("bytes written at real pc: got [%#x,%#x] ok=%v", lo, hi, ok)
	}
}

func TestRealPCRevertsLabelArithmetic(t *testing.T) {
	im := New()
	im.SetRealPC(0x0800)
	im.EnterPseudoPC(0xc000)
	im.ExitPseudoPC()
	if im.PC() != 0x0800 {
		t.Errorf("got %#x, want real pc 0x0800 after !realpc", im.PC())
	}
}

func TestAlignAdvancesToBoundary(t *testing.T) {
	im := New()
	im.SetRealPC(0x0801)
	if err := im.Align(0x00FF, 0x00, nil); err != nil {
		t.Fatal(err)
	}
	if im.RealPC() != 0x0900 {
		t.Errorf("got %#x, want 0x0900", im.RealPC())
	}
}

func TestSkipFillsWithInitByte(t *testing.T) {
	im := New()
	im.SetInitByte(0xEA)
	im.SetRealPC(0x1000)
	if err := im.Skip(3); err != nil {
		t.Fatal(err)
	}
	b := im.Bytes()
	for i, v := range b {
		if v != 0xEA {
			t.Errorf("byte %d: got %#x, want 0xEA", i, v)
		}
	}
}

func TestXorMaskAppliesOnlyToOutputNotPC(t *testing.T) {
	im := New()
	im.SetRealPC(0x2000)
	im.SetXor(0xFF)
	im.Emit(0x00)
	b := im.Bytes()
	if b[0] != 0xFF {
		t.Errorf("got %#x, want 0xFF after xor mask", b[0])
	}
	if im.RealPC() != 0x2001 {
		t.Errorf("xor should not affect pc advance: got %#x", im.RealPC())
	}
}

func TestOverlapDetection(t *testing.T) {
	im := New()
	if err := im.OverlapsSegment("a", 0x1000, 0x2000); err != nil {
		t.Fatal(err)
	}
	if err := im.OverlapsSegment("b", 0x1800, 0x2800); err == nil {
		t.Error("expected overlap error")
	}
	if err := im.OverlapsSegment("c", 0x2000, 0x2100); err != nil {
		t.Errorf("adjacent non-overlapping segment should be fine: %v", err)
	}
}

func TestEmitOutOfRangeErrors(t *testing.T) {
	im := New()
	im.SetRealPC(0x10000)
	if err := im.Emit(0); err == nil {
		t.Error("expected range error emitting past the 16-bit address space")
	}
}
