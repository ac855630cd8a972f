/*
 * acme65 - Assembler pass-driver test set.
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

package assembler

import (
	"os"
	"path/filepath"
	"testing"
)

func assemble(t *testing.T, src string) *Assembler {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.asm")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	a := New(Options{})
	if err := a.Run(path); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, d := range a.Sink().All() {
		t.Logf("%s", d.Format())
	}
	if a.Sink().Fatal() {
		t.Fatalf("assembly aborted with a serious diagnostic")
	}
	return a
}

func assertBytes(t *testing.T, a *Assembler, want ...byte) {
	t.Helper()
	got := a.Image().Bytes()
	if len(got) != len(want) {
		t.Fatalf("got %d bytes %X, want %d bytes %X", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d: got %02X, want %02X (full: %X vs %X)", i, got[i], want[i], got, want)
		}
	}
}

func TestMinimalInstruction(t *testing.T) {
	a := assemble(t, "* = $c000\nstart: lda #$42\n       rts\n")
	assertBytes(t, a, 0xA9, 0x42, 0x60)
}

func TestForwardAbsolute(t *testing.T) {
	a := assemble(t, "* = $1000\n  jmp target\ntarget: rts\n")
	assertBytes(t, a, 0x4C, 0x03, 0x10, 0x60)
}

func TestRelativeBranchBack(t *testing.T) {
	a := assemble(t, "* = $0800\nloop: dex\n      bne loop\n")
	assertBytes(t, a, 0xCA, 0xD0, 0xFD)
}

func TestExpressionAndData(t *testing.T) {
	a := assemble(t, "* = $0000\n!byte 1+2*3, $ff & %1010, <($1234), >($1234)\n")
	assertBytes(t, a, 0x07, 0x0A, 0x34, 0x12)
}

func TestMacroExpansion(t *testing.T) {
	a := assemble(t, "!macro poke addr, val { lda #val : sta addr }\n* = $c000\n  +poke $d020, 0\n")
	assertBytes(t, a, 0xA9, 0x00, 0x8D, 0x20, 0xD0)
}

func TestConditionalSkipping(t *testing.T) {
	a := assemble(t, "DEBUG = 0\n* = $c000\n!if DEBUG { lda #$ff } else { lda #$00 }\n")
	assertBytes(t, a, 0xA9, 0x00)
}

func TestIdempotentReassembly(t *testing.T) {
	src := "* = $c000\nstart: lda #$42\n       jmp start\n"
	a1 := assemble(t, src)
	a2 := assemble(t, src)
	b1, b2 := a1.Image().Bytes(), a2.Image().Bytes()
	if len(b1) != len(b2) {
		t.Fatalf("differing lengths: %d vs %d", len(b1), len(b2))
	}
	for i := range b1 {
		if b1[i] != b2[i] {
			t.Fatalf("byte %d differs: %02X vs %02X", i, b1[i], b2[i])
		}
	}
}

func TestForwardReferenceForcesAbsolute(t *testing.T) {
	// lda target can't be resolved as zero page until target's
	// address is known, so pass 1 must conservatively reserve the
	// 3-byte absolute encoding even though target ends up far outside
	// zero page anyway.
	a := assemble(t, "* = $c000\n  lda target\ntarget: rts\n")
	assertBytes(t, a, 0xAD, 0x03, 0xC0, 0x60)
}

func TestKnownZeroPageSymbolSelectsZeroPage(t *testing.T) {
	a := assemble(t, "* = $c000\nzp = $10\n  lda zp\n")
	assertBytes(t, a, 0xA5, 0x10)
}

func TestForLoop(t *testing.T) {
	a := assemble(t, "* = $c000\n!for i = 0 to 2 { lda #i }\n")
	assertBytes(t, a, 0xA9, 0x00, 0xA9, 0x01, 0xA9, 0x02)
}

func TestWhileLoopBreak(t *testing.T) {
	a := assemble(t, "* = $c000\n!set count = 0\n!while count < 5 {\n  lda #count\n  !set count = count + 1\n  !if count == 2 { !break }\n}\n")
	assertBytes(t, a, 0xA9, 0x00, 0xA9, 0x01)
}

func TestErrorDirectiveSetsExitCode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.asm")
	if err := os.WriteFile(path, []byte("* = $c000\n!error \"deliberate failure\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	a := New(Options{})
	if err := a.Run(path); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if a.Sink().ExitCode() == 0 {
		t.Fatal("expected a nonzero exit code after !error")
	}
}

func TestWarnDirectiveDoesNotSetExitCode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.asm")
	if err := os.WriteFile(path, []byte("* = $c000\n!warn \"just a warning\"\nlda #1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	a := New(Options{})
	if err := a.Run(path); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if a.Sink().ExitCode() != 0 {
		t.Fatal("expected exit code 0 after only a !warn diagnostic")
	}
}
