/*
 * acme65 - Symbol table test set.
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

package symtab

import (
	"testing"

	"github.com/rcornwell/acme65/internal/value"
)

func TestDefineAndLookupGlobal(t *testing.T) {
	tab := New()
	if err := tab.DefineGlobal("start", value.Int(0xc000), false); err != nil {
		t.Fatal(err)
	}
	v, ok := tab.LookupBare("start")
	if !ok || v.I != 0xc000 {
		t.Errorf("got %v, ok=%v", v, ok)
	}
}

func TestRedefiningNonVariableErrors(t *testing.T) {
	tab := New()
	if err := tab.DefineGlobal("start", value.Int(1), false); err != nil {
		t.Fatal(err)
	}
	if err := tab.DefineGlobal("start", value.Int(2), false); err == nil {
		t.Error("expected error redefining a non-variable symbol with a different value")
	}
}

func TestPass2MayReassignIdenticalValue(t *testing.T) {
	tab := New()
	tab.SetPass(1)
	if err := tab.DefineGlobal("start", value.Int(1), false); err != nil {
		t.Fatal(err)
	}
	tab.SetPass(2)
	if err := tab.DefineGlobal("start", value.Int(1), false); err != nil {
		t.Errorf("pass 2 re-assigning the identical value should be legal: %v", err)
	}
}

func TestVariableMayBeReassignedFreely(t *testing.T) {
	tab := New()
	if err := tab.DefineGlobal("count", value.Int(1), true); err != nil {
		t.Fatal(err)
	}
	if err := tab.DefineGlobal("count", value.Int(99), true); err != nil {
		t.Errorf("variable reassignment should be legal: %v", err)
	}
	v, _ := tab.LookupBare("count")
	if v.I != 99 {
		t.Errorf("got %v, want 99", v)
	}
}

func TestCheapLocalScopedToEnclosingGlobal(t *testing.T) {
	tab := New()
	tab.DefineGlobal("loop1", value.Int(0x1000), false)
	tab.DefineCheapLocal("tmp", value.Int(1), false)
	tab.DefineGlobal("loop2", value.Int(0x2000), false)
	tab.DefineCheapLocal("tmp", value.Int(2), false)

	// tmp under loop2 resolves to 2; tmp under loop1 is gone from the
	// current lookup once the parent has moved on.
	v, ok := tab.LookupCheapLocal("tmp")
	if !ok || v.I != 2 {
		t.Errorf("got %v, ok=%v, want 2", v, ok)
	}
}

func TestZoneLocalDoesNotLeakAcrossZones(t *testing.T) {
	tab := New()
	tab.EnterZone("alpha")
	tab.DefineZoneLocal("x", value.Int(1), false)
	tab.EnterZone("beta")
	if _, ok := tab.LookupZoneLocal("x"); ok {
		t.Error("zone-local symbol from zone alpha should not be visible in zone beta")
	}
	tab.EnterZone("alpha")
	if v, ok := tab.LookupZoneLocal("x"); !ok || v.I != 1 {
		t.Errorf("got %v, ok=%v, want 1 in zone alpha", v, ok)
	}
}

func TestBareLookupOrderCheapBeforeZoneBeforeGlobal(t *testing.T) {
	tab := New()
	tab.DefineGlobal("n", value.Int(1), false)
	tab.DefineGlobal("anchor", value.Int(0), false)
	tab.DefineZoneLocal("n", value.Int(2), false)
	tab.DefineCheapLocal("n", value.Int(3), false)

	v, ok := tab.LookupBare("n")
	if !ok || v.I != 3 {
		t.Errorf("got %v, ok=%v, want cheap-local 3", v, ok)
	}
}

func TestAnonymousForwardAndBackwardResolution(t *testing.T) {
	tab := New()
	tab.DefineAnon(1, 1, 0x1000) // a '-' definition at line 1
	tab.DefineAnon(5, 1, 0x2000) // a '+' definition at line 5

	fwd, ok := tab.ResolveAnonForward(3, 1)
	if !ok || fwd.I != 0x2000 {
		t.Errorf("forward from line 3: got %v, ok=%v, want 0x2000", fwd, ok)
	}
	back, ok := tab.ResolveAnonBackward(3, 1)
	if !ok || back.I != 0x1000 {
		t.Errorf("backward from line 3: got %v, ok=%v, want 0x1000", back, ok)
	}
}

func TestUndefinedSymbolIsForwardReference(t *testing.T) {
	tab := New()
	v, ok := tab.LookupBare("later")
	if ok || !v.IsUndefined() {
		t.Errorf("unknown symbol should resolve to undefined, not-ok: got %v ok=%v", v, ok)
	}
}
