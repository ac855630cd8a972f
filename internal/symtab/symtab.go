/*
	acme65 - Symbol table and zone manager

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

// Package symtab implements the assembler's global/zone-local/cheap-local/
// anonymous symbol namespaces, forward-reference accounting, and the
// once-only redefinition rule for non-variable symbols.
package symtab

import (
	"fmt"
	"sort"

	"github.com/rcornwell/acme65/internal/value"
)

// Kind classifies how a symbol was named: global, zone-local, or
// cheap-local. Anonymous labels are not Symbols; see anonLabel.
type Kind int

const (
	Global Kind = iota
	ZoneLocal
	CheapLocal
)

// Symbol is one entry of the table.
type Symbol struct {
	Name        string
	Zone        string
	Kind        Kind
	Value       value.Value
	DefinedPass int // 1 or 2
	IsVariable  bool
}

// anonLabel records one '+' or '-' definition site. The lists are kept
// sorted by source position and scanned linearly on resolution.
type anonLabel struct {
	line, col int
	pc        int64
}

// Table holds every symbol namespace for one assembly run. It is not
// safe for concurrent use; the pass driver owns exactly one Table.
type Table struct {
	globals map[string]*Symbol
	zones   map[string]map[string]*Symbol // zone name -> local name -> symbol
	cheaps  map[string]map[string]*Symbol // parent label -> cheap name -> symbol

	zone   string // current zone name, "" for the default zone
	parent string // most recently defined global label, for cheap-local scoping

	anon map[string][]anonLabel // zone-qualified key -> sorted definition sites

	pass int // 1 or 2, set by the pass driver before each pass
}

// New returns an empty table positioned at the default zone with no
// enclosing parent label.
func New() *Table {
	return &Table{
		globals: make(map[string]*Symbol),
		zones:   make(map[string]map[string]*Symbol),
		cheaps:  make(map[string]map[string]*Symbol),
		anon:    make(map[string][]anonLabel),
		pass:    1,
	}
}

// SetPass tells the table which pass is running; it governs the
// redefinition rule (pass 2 may re-assign a symbol to the same value
// that pass 1 computed, since pass 2 re-traverses the whole program).
func (t *Table) SetPass(pass int) { t.pass = pass }

// EnterZone switches the current zone, as if by "!zone <name>". It
// does not reset the cheap-local parent.
func (t *Table) EnterZone(name string) { t.zone = name }

// Zone returns the current zone name ("" for the default zone).
func (t *Table) Zone() string { return t.zone }

func (t *Table) zoneMap() map[string]*Symbol {
	m, ok := t.zones[t.zone]
	if !ok {
		m = make(map[string]*Symbol)
		t.zones[t.zone] = m
	}
	return m
}

func (t *Table) cheapMap() map[string]*Symbol {
	m, ok := t.cheaps[t.parent]
	if !ok {
		m = make(map[string]*Symbol)
		t.cheaps[t.parent] = m
	}
	return m
}

// DefineGlobal assigns a global label or "!set" variable. Defining a
// global label also resets the cheap-local parent scope to this name,
// per the data model's "redefining the enclosing global starts a
// fresh cheap scope" rule.
func (t *Table) DefineGlobal(name string, v value.Value, isVariable bool) error {
	if err := t.define(t.globals, name, v, isVariable); err != nil {
		return err
	}
	if !isVariable {
		t.parent = name
	}
	return nil
}

// DefineZoneLocal assigns a ".name" symbol scoped to the current zone.
func (t *Table) DefineZoneLocal(name string, v value.Value, isVariable bool) error {
	return t.define(t.zoneMap(), name, v, isVariable)
}

// DefineCheapLocal assigns an "@name" symbol scoped to the nearest
// enclosing global label.
func (t *Table) DefineCheapLocal(name string, v value.Value, isVariable bool) error {
	return t.define(t.cheapMap(), name, v, isVariable)
}

func (t *Table) define(m map[string]*Symbol, name string, v value.Value, isVariable bool) error {
	existing, ok := m[name]
	if !ok {
		m[name] = &Symbol{Name: name, Zone: t.zone, Value: v, DefinedPass: t.pass, IsVariable: isVariable}
		return nil
	}
	if existing.IsVariable || isVariable {
		existing.Value = v
		existing.IsVariable = true
		existing.DefinedPass = t.pass
		return nil
	}
	// Non-variable redefinition is only legal when pass 2 recomputes
	// the identical value pass 1 already recorded.
	if t.pass == 2 && valuesEqual(existing.Value, v) {
		existing.DefinedPass = t.pass
		return nil
	}
	return fmt.Errorf("symbol %q already defined", name)
}

func valuesEqual(a, b value.Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case value.Integer:
		return a.I == b.I
	case value.Float:
		return a.F == b.F
	case value.String:
		return a.S == b.S
	case value.Undefined:
		return true
	default:
		return false
	}
}

// LookupBare resolves a bare identifier using the documented order:
// cheap-local (under the current parent) -> zone-local (current zone)
// -> global. A miss returns value.Und, false rather than an error, so
// pass 1 can treat it as a forward reference.
func (t *Table) LookupBare(name string) (value.Value, bool) {
	if s, ok := t.cheapMap()[name]; ok {
		return s.Value, !s.Value.IsUndefined()
	}
	if s, ok := t.zoneMap()[name]; ok {
		return s.Value, !s.Value.IsUndefined()
	}
	if s, ok := t.globals[name]; ok {
		return s.Value, !s.Value.IsUndefined()
	}
	return value.Und, false
}

// LookupZoneLocal resolves a ".name" reference; it never crosses into
// cheap-local or global scope.
func (t *Table) LookupZoneLocal(name string) (value.Value, bool) {
	s, ok := t.zoneMap()[name]
	if !ok {
		return value.Und, false
	}
	return s.Value, !s.Value.IsUndefined()
}

// LookupCheapLocal resolves an "@name" reference under the current
// parent label only.
func (t *Table) LookupCheapLocal(name string) (value.Value, bool) {
	s, ok := t.cheapMap()[name]
	if !ok {
		return value.Und, false
	}
	return s.Value, !s.Value.IsUndefined()
}

// anonKey scopes anonymous label definitions to the current zone, so
// that "!zone"-separated blocks of '+'/'-' labels do not interleave.
func (t *Table) anonKey() string { return t.zone }

// DefineAnon records a '+' or '-' definition site at the given source
// position and current program counter. ACME does not distinguish the
// storage of forward vs backward anonymous labels: both live in one
// sorted list per zone, searched by position relative to the reference.
func (t *Table) DefineAnon(line, col int, pc int64) {
	key := t.anonKey()
	list := t.anon[key]
	list = append(list, anonLabel{line: line, col: col, pc: pc})
	sort.Slice(list, func(i, j int) bool {
		if list[i].line != list[j].line {
			return list[i].line < list[j].line
		}
		return list[i].col < list[j].col
	})
	t.anon[key] = list
}

// ResolveAnonForward finds the nearest anonymous label definition
// strictly after (line, col): a '+' reference.
func (t *Table) ResolveAnonForward(line, col int) (value.Value, bool) {
	list := t.anon[t.anonKey()]
	for _, a := range list {
		if a.line > line || (a.line == line && a.col > col) {
			return value.Int(a.pc), true
		}
	}
	return value.Und, false
}

// ResolveAnonBackward finds the nearest anonymous label definition
// strictly before (line, col): a '-' reference.
func (t *Table) ResolveAnonBackward(line, col int) (value.Value, bool) {
	list := t.anon[t.anonKey()]
	var found *anonLabel
	for i := range list {
		a := &list[i]
		if a.line < line || (a.line == line && a.col < col) {
			found = a
		} else {
			break
		}
	}
	if found == nil {
		return value.Und, false
	}
	return value.Int(found.pc), true
}

// AllSymbols returns every global symbol sorted by name, used by the
// VICE label writer, the "-s" dump, and "!symbollist".
func (t *Table) AllSymbols() []*Symbol {
	out := make([]*Symbol, 0, len(t.globals))
	for _, s := range t.globals {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
