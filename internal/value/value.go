/*
	acme65 - Tagged value domain for the expression evaluator

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

// Package value implements the assembler's tagged value domain: integer,
// float, string, list, and the undefined sentinel produced by forward
// references during pass 1.
package value

// Kind tags the variant held by a Value.
type Kind int

const (
	Undefined Kind = iota
	Integer
	Float
	String
	List
)

func (k Kind) String() string {
	switch k {
	case Undefined:
		return "undefined"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case String:
		return "string"
	case List:
		return "list"
	default:
		return "?"
	}
}

// Value is the closed sum of integer, float, string, list and undefined.
// All binary operators dispatch on the pair of Kinds.
type Value struct {
	Kind Kind
	I    int64
	F    float64
	S    string
	L    []Value
}

// Und is the shared Undefined sentinel value.
var Und = Value{Kind: Undefined}

func Int(n int64) Value         { return Value{Kind: Integer, I: n} }
func Flt(f float64) Value       { return Value{Kind: Float, F: f} }
func Str(s string) Value        { return Value{Kind: String, S: s} }
func Lst(items []Value) Value   { return Value{Kind: List, L: items} }
func Bool(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}

func (v Value) IsUndefined() bool { return v.Kind == Undefined }

// Truthy reports whether v is non-zero, following ACME's convention that
// logical and comparison results are plain integers 0 or 1.
func (v Value) Truthy() bool {
	switch v.Kind {
	case Integer:
		return v.I != 0
	case Float:
		return v.F != 0
	case String:
		return v.S != ""
	case List:
		return len(v.L) != 0
	default:
		return false
	}
}

// AsFloat widens an Integer or Float value to float64. Only valid for
// numeric kinds; callers must check Kind first.
func (v Value) AsFloat() float64 {
	if v.Kind == Float {
		return v.F
	}
	return float64(v.I)
}

// AsInt truncates a Float value toward zero, or passes an Integer through.
func (v Value) AsInt() int64 {
	if v.Kind == Integer {
		return v.I
	}
	return int64(v.F)
}

func (v Value) isNumeric() bool { return v.Kind == Integer || v.Kind == Float }
