/*
 * acme65 - Value domain test set.
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

package value

import "testing"

func TestAddPropagatesUndefined(t *testing.T) {
	v, err := Add(Und, Int(5))
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsUndefined() {
		t.Error("undefined + x should be undefined")
	}
}

func TestAddPromotesToFloat(t *testing.T) {
	v, err := Add(Int(1), Flt(2.5))
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind != Float || v.F != 3.5 {
		t.Errorf("got %v, want float 3.5", v)
	}
}

func TestPowAlwaysFloat(t *testing.T) {
	v, err := Pow(Int(2), Int(3))
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind != Float || v.F != 8 {
		t.Errorf("got %v, want float 8", v)
	}
}

func TestDivTruncatesTowardZero(t *testing.T) {
	v, err := Div(Int(-7), Int(2), false)
	if err != nil {
		t.Fatal(err)
	}
	if v.I != -3 {
		t.Errorf("got %d, want -3", v.I)
	}
}

func TestModSignOfDividend(t *testing.T) {
	v, err := Mod(Int(-7), Int(2), false)
	if err != nil {
		t.Fatal(err)
	}
	if v.I != -1 {
		t.Errorf("got %d, want -1", v.I)
	}
}

func TestDivByZeroPass1IsUndefined(t *testing.T) {
	v, err := Div(Int(1), Int(0), true)
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsUndefined() {
		t.Error("division by zero in pass 1 should be undefined, not an error")
	}
}

func TestDivByZeroPass2IsError(t *testing.T) {
	_, err := Div(Int(1), Int(0), false)
	if err == nil {
		t.Error("division by zero in pass 2 should error")
	}
}

func TestBitwiseOnFloatErrors(t *testing.T) {
	_, err := BitAnd(Flt(1.0), Int(2))
	if err == nil {
		t.Error("bitwise on float operand should error")
	}
}

func TestLoHiByte(t *testing.T) {
	lo, _ := LoByte(Int(0x1234))
	hi, _ := HiByte(Int(0x1234))
	if lo.I != 0x34 {
		t.Errorf("lo byte: got %#x want 0x34", lo.I)
	}
	if hi.I != 0x12 {
		t.Errorf("hi byte: got %#x want 0x12", hi.I)
	}
}

func TestComparisonYieldsIntZeroOrOne(t *testing.T) {
	v, _ := Lt(Int(1), Int(2))
	if v.Kind != Integer || v.I != 1 {
		t.Errorf("1 < 2 should be integer 1, got %v", v)
	}
	v, _ = Lt(Int(2), Int(1))
	if v.Kind != Integer || v.I != 0 {
		t.Errorf("2 < 1 should be integer 0, got %v", v)
	}
}
