/*
 * acme65 - Source include-stack test set.
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

package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPushAndNextLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.asm")
	if err := os.WriteFile(path, []byte("lda #1\nrts\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := New(nil, 0)
	if err := s.Push(path); err != nil {
		t.Fatal(err)
	}
	text, line, ok := s.NextLine()
	if !ok || text != "lda #1" || line != 1 {
		t.Errorf("got %q %d %v", text, line, ok)
	}
	text, line, ok = s.NextLine()
	if !ok || text != "rts" || line != 2 {
		t.Errorf("got %q %d %v", text, line, ok)
	}
	if _, _, ok = s.NextLine(); ok {
		t.Error("expected stack exhausted")
	}
}

func TestRecursiveIncludeDetected(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.asm")
	if err := os.WriteFile(a, []byte("!src \"a.asm\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := New(nil, 0)
	if err := s.Push(a); err != nil {
		t.Fatal(err)
	}
	if err := s.Push(a); err == nil {
		t.Error("expected recursive include error")
	}
}

func TestSearchPath(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "inc")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	inc := filepath.Join(sub, "defs.asm")
	if err := os.WriteFile(inc, []byte("FOO = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := New([]string{sub}, 0)
	if err := s.Push("defs.asm"); err != nil {
		t.Fatalf("expected search path to find defs.asm: %v", err)
	}
}

func TestMissingIncludeErrors(t *testing.T) {
	s := New(nil, 0)
	if err := s.Push("nope.asm"); err == nil {
		t.Error("expected error for missing include")
	}
}
