/*
	acme65 - Source file inclusion

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

// Package source resolves "!source"/"!src" include paths against a
// left-to-right search list, loads the file, and guards against
// recursive inclusion by tracking the stack of files currently open.
package source

import (
	"fmt"
	"os"
	"path/filepath"
)

// File is one pushed include: its resolved path, its lines, and the
// line currently being processed.
type File struct {
	Path  string
	Lines []string
	Line  int // 0-based index of the next line to hand out
}

// Stack is the assembler's include stack. The bottom entry is the
// top-level source file named on the command line.
type Stack struct {
	searchPath []string
	open       []*File
	opened     map[string]bool // resolved path -> currently on the stack
	maxDepth   int
}

// New returns an empty stack consulting searchPath left-to-right for
// relative include paths, in addition to the including file's own
// directory.
func New(searchPath []string, maxDepth int) *Stack {
	if maxDepth <= 0 {
		maxDepth = 255
	}
	return &Stack{searchPath: searchPath, opened: make(map[string]bool), maxDepth: maxDepth}
}

// resolve finds path on disk: first relative to the including file's
// directory (the top of the current stack), then against each entry
// of the search path in order.
func (s *Stack) resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		return "", fmt.Errorf("include file %q not found", path)
	}
	var candidates []string
	if len(s.open) > 0 {
		candidates = append(candidates, filepath.Join(filepath.Dir(s.open[len(s.open)-1].Path), path))
	} else {
		candidates = append(candidates, path)
	}
	for _, dir := range s.searchPath {
		candidates = append(candidates, filepath.Join(dir, path))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("include file %q not found in search path", path)
}

// Push resolves and loads path, pushing it as the new top of the
// include stack. It returns an error if the resolved file is already
// open (a recursive include, detected by path) or if pushing would
// exceed maxDepth.
func (s *Stack) Push(path string) error {
	resolved, err := s.resolve(path)
	if err != nil {
		return err
	}
	if s.opened[resolved] {
		return fmt.Errorf("recursive include of %q", resolved)
	}
	if len(s.open) >= s.maxDepth {
		return fmt.Errorf("include depth limit (%d) exceeded including %q", s.maxDepth, resolved)
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return fmt.Errorf("reading %q: %w", resolved, err)
	}
	lines := splitLines(string(data))
	s.open = append(s.open, &File{Path: resolved, Lines: lines, Line: 0})
	s.opened[resolved] = true
	return nil
}

// Pop removes the current top of the include stack, returning to the
// file that pushed it (if any).
func (s *Stack) Pop() {
	if len(s.open) == 0 {
		return
	}
	top := s.open[len(s.open)-1]
	delete(s.opened, top.Path)
	s.open = s.open[:len(s.open)-1]
}

// Top returns the file currently being lexed, or nil if the stack is
// empty (assembly finished).
func (s *Stack) Top() *File {
	if len(s.open) == 0 {
		return nil
	}
	return s.open[len(s.open)-1]
}

// NextLine hands out the next line of the top file, popping finished
// files (including nested ones) until a line is available or the
// stack is exhausted. ok is false once every pushed file is drained.
func (s *Stack) NextLine() (text string, lineNo int, ok bool) {
	for {
		top := s.Top()
		if top == nil {
			return "", 0, false
		}
		if top.Line >= len(top.Lines) {
			s.Pop()
			continue
		}
		lineNo = top.Line + 1
		text = top.Lines[top.Line]
		top.Line++
		return text, lineNo, true
	}
}

// Depth returns the number of files currently open.
func (s *Stack) Depth() int { return len(s.open) }

func splitLines(data string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' {
			end := i
			if end > start && data[end-1] == '\r' {
				end--
			}
			lines = append(lines, data[start:end])
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}
