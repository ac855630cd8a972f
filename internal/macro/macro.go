/*
	acme65 - Macro and loop body capture/replay

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

// Package macro holds macro definitions, the macro call stack, and
// loop frames. The raw source lines of a "!macro"/"!for"/"!while"/"!do"
// body are captured and replayed by the assembler package; bodies are
// kept as text, not a parsed AST, so the same lexer and statement
// dispatcher that handles ordinary source handles a replay with no
// special casing.
package macro

import "fmt"

// Macro is one "!macro name(params) { body }" definition.
type Macro struct {
	Name       string
	Params     []string
	Defaults   []string // parallel to Params; "" means no default
	Body       []string
	DefLine    int
	DefFile    string
}

// Table holds every macro defined so far in the run. Definitions
// persist across both passes (captured once, when pass 1 first sees
// "!macro").
type Table struct {
	macros map[string]*Macro
}

// NewTable returns an empty macro table.
func NewTable() *Table { return &Table{macros: make(map[string]*Macro)} }

// Define registers m, or reports an error if a macro of that name
// already exists (macros, like non-variable symbols, may not be
// silently redefined).
func (t *Table) Define(m *Macro) error {
	if _, exists := t.macros[m.Name]; exists {
		return fmt.Errorf("macro %q already defined", m.Name)
	}
	t.macros[m.Name] = m
	return nil
}

// Lookup finds a macro by name.
func (t *Table) Lookup(name string) (*Macro, bool) {
	m, ok := t.macros[name]
	return m, ok
}

// BindArgs maps m's parameter names to the supplied argument
// expressions (already-rendered source text), applying defaults for
// any trailing parameters the call omits. It errors on too many
// arguments, or too few without a default to cover the gap.
func (m *Macro) BindArgs(args []string) (map[string]string, error) {
	if len(args) > len(m.Params) {
		return nil, fmt.Errorf("macro %q: too many arguments (got %d, want at most %d)", m.Name, len(args), len(m.Params))
	}
	bound := make(map[string]string, len(m.Params))
	for i, name := range m.Params {
		switch {
		case i < len(args):
			bound[name] = args[i]
		case m.Defaults[i] != "":
			bound[name] = m.Defaults[i]
		default:
			return nil, fmt.Errorf("macro %q: missing argument %q and no default given", m.Name, name)
		}
	}
	return bound, nil
}

// CallStack tracks macro invocation nesting for the recursion-depth
// safety limit.
type CallStack struct {
	depth    int
	maxDepth int
}

// NewCallStack returns a stack enforcing maxDepth (use 0 for the
// default of 255, ACME's own documented recursion ceiling).
func NewCallStack(maxDepth int) *CallStack {
	if maxDepth <= 0 {
		maxDepth = 255
	}
	return &CallStack{maxDepth: maxDepth}
}

// Enter pushes one macro invocation, erroring if it would exceed the
// configured recursion depth.
func (c *CallStack) Enter(name string) error {
	if c.depth >= c.maxDepth {
		return fmt.Errorf("macro recursion limit (%d) exceeded invoking %q", c.maxDepth, name)
	}
	c.depth++
	return nil
}

// Leave pops one macro invocation.
func (c *CallStack) Leave() {
	if c.depth > 0 {
		c.depth--
	}
}

// Depth reports the current nesting depth.
func (c *CallStack) Depth() int { return c.depth }
