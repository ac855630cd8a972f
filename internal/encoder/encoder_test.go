/*
 * acme65 - Instruction encoder test set.
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

package encoder

import "testing"

func TestSelectPrefersZeroPageOverAbsolute(t *testing.T) {
	mode, op, err := Select(NMOS6502, "LDA", ZeroPage, Absolute)
	if err != nil {
		t.Fatal(err)
	}
	if mode != ZeroPage || op != 0xA5 {
		t.Errorf("got mode=%v op=%#x, want ZeroPage 0xA5", mode, op)
	}
}

func TestSelectFallsBackToAbsoluteWhenZeroPageUnavailable(t *testing.T) {
	// JSR has no zero-page form at all.
	mode, op, err := Select(NMOS6502, "JSR", ZeroPage, Absolute)
	if err != nil {
		t.Fatal(err)
	}
	if mode != Absolute || op != 0x20 {
		t.Errorf("got mode=%v op=%#x, want Absolute 0x20", mode, op)
	}
}

func TestBRAUnavailableOnPlainNMOS(t *testing.T) {
	if _, _, err := Select(NMOS6502, "BRA", Relative); err == nil {
		t.Error("BRA should not be available on plain NMOS6502")
	}
	if _, _, err := Select(CMOS65C02, "BRA", Relative); err != nil {
		t.Errorf("BRA should be available on 65C02: %v", err)
	}
}

func TestIllegalOpcodeOnlyOnIllegalVariant(t *testing.T) {
	if _, _, err := Select(NMOS6502, "LAX", ZeroPage); err == nil {
		t.Error("LAX should not be available on plain NMOS6502")
	}
	if _, _, err := Select(NMOSIllegal, "LAX", ZeroPage); err != nil {
		t.Errorf("LAX should be available with !cpu nmos6502: %v", err)
	}
}

func TestBitOpsOnlyOnW65C02S(t *testing.T) {
	if _, _, err := Select(CMOS65C02, "RMB0", BitOp); err == nil {
		t.Error("RMB0 should require w65c02s")
	}
	if _, _, err := Select(W65C02S, "RMB0", BitOp); err != nil {
		t.Errorf("RMB0 should be available on w65c02s: %v", err)
	}
}

func TestEncodeAbsoluteIsLittleEndian(t *testing.T) {
	bs, err := Encode(NMOS6502, Instruction{Mnemonic: "LDA", Mode: Absolute, Operand: 0x1234})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0xAD, 0x34, 0x12}
	if len(bs) != len(want) {
		t.Fatalf("got %v, want %v", bs, want)
	}
	for i := range want {
		if bs[i] != want[i] {
			t.Errorf("byte %d: got %#x, want %#x", i, bs[i], want[i])
		}
	}
}

func TestEncodeBitBranchEmitsThreeBytes(t *testing.T) {
	bs, err := Encode(W65C02S, Instruction{Mnemonic: "BBR0", Mode: BitBranch, ZPArg: 0x20, Operand: 5})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x0F, 0x20, 0x05}
	if len(bs) != len(want) {
		t.Fatalf("got %v, want %v", bs, want)
	}
	for i := range want {
		if bs[i] != want[i] {
			t.Errorf("byte %d: got %#x, want %#x", i, bs[i], want[i])
		}
	}
}

func TestRelativeOffsetRangeCheck(t *testing.T) {
	if _, err := RelativeOffset(0xC080, 0xC000); err == nil {
		t.Error("expected out-of-range error for +128 displacement")
	}
	off, err := RelativeOffset(0xC07F, 0xC000)
	if err != nil {
		t.Fatal(err)
	}
	if off != 0x7F {
		t.Errorf("got %d, want 127", off)
	}
}

func TestFitsZeroPage(t *testing.T) {
	if !FitsZeroPage(0xFF) || FitsZeroPage(0x100) || FitsZeroPage(-1) {
		t.Error("FitsZeroPage boundary check failed")
	}
}
