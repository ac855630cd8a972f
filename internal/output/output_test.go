/*
 * acme65 - Output encoder test set.
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

package output

import "testing"

func TestEncodePlain(t *testing.T) {
	out, err := Encode(Plain, 0xc000, []byte{0xa9, 0x42, 0x60})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "\xa9\x42\x60" {
		t.Errorf("got % x", out)
	}
}

func TestEncodeCBMPrependsLoadAddress(t *testing.T) {
	out, err := Encode(CBM, 0xc000, []byte{0xa9, 0x42, 0x60})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x00, 0xc0, 0xa9, 0x42, 0x60}
	if len(out) != len(want) {
		t.Fatalf("got % x, want % x", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("byte %d: got %#x, want %#x", i, out[i], want[i])
		}
	}
}

func TestEncodeIntelHexRecordShape(t *testing.T) {
	out, err := Encode(HEX, 0x0000, []byte{0x07, 0x0A, 0x34, 0x12})
	if err != nil {
		t.Fatal(err)
	}
	want := ":04000000070A3412A5\n:00000001FF\n"
	if string(out) != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestVICELabelsSortedByAddress(t *testing.T) {
	out := VICELabels([]Label{{Name: "late", Addr: 0xc010}, {Name: "start", Addr: 0xc000}})
	want := "al C:C000 .start\nal C:C010 .late\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}
