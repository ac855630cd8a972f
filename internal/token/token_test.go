/*
 * acme65 - Tokenizer test set.
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

package token

import "testing"

func kinds(toks []Token) []Kind {
	ks := make([]Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestLexIntegerLiterals(t *testing.T) {
	toks, err := Lex("lda $c000,x", 1)
	if err != nil {
		t.Fatal(err)
	}
	want := []Kind{Ident, Integer, Comma, Ident, EOL}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if toks[1].Int != 0xc000 {
		t.Errorf("hex literal: got %#x, want 0xc000", toks[1].Int)
	}
}

func TestLexBinaryAndFloat(t *testing.T) {
	toks, err := Lex("%1010 3.5", 1)
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Kind != Integer || toks[0].Int != 0b1010 {
		t.Errorf("binary literal: got %v", toks[0])
	}
	if toks[1].Kind != FloatLit || toks[1].Float != 3.5 {
		t.Errorf("float literal: got %v", toks[1])
	}
}

func TestLexCharAndString(t *testing.T) {
	toks, err := Lex(`'A' "hi\"there"`, 1)
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Kind != CharLit || toks[0].Int != 'A' {
		t.Errorf("char literal: got %v", toks[0])
	}
	if toks[1].Kind != StringLit || toks[1].Text != `hi"there` {
		t.Errorf("string literal: got %q", toks[1].Text)
	}
}

func TestLexZoneAndCheapLocals(t *testing.T) {
	toks, err := Lex(".loop @tmp", 1)
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Kind != ZoneLocal || toks[0].Text != "loop" {
		t.Errorf("zone local: got %v", toks[0])
	}
	if toks[1].Kind != CheapLocal || toks[1].Text != "tmp" {
		t.Errorf("cheap local: got %v", toks[1])
	}
}

func TestLexDirectiveAndMacroInvoke(t *testing.T) {
	toks, err := Lex("!byte +fill", 1)
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Kind != Directive || toks[0].Text != "byte" {
		t.Errorf("directive: got %v", toks[0])
	}
	if toks[1].Kind != MacroInvoke || toks[1].Text != "fill" {
		t.Errorf("macro invoke: got %v", toks[1])
	}
}

func TestLexAnonymousLabels(t *testing.T) {
	toks, err := Lex("bne -", 1)
	if err != nil {
		t.Fatal(err)
	}
	if toks[1].Kind != AnonBackward {
		t.Errorf("anonymous backward ref: got %v", toks[1])
	}
	toks, err = Lex("bne +", 1)
	if err != nil {
		t.Fatal(err)
	}
	if toks[1].Kind != AnonForward {
		t.Errorf("anonymous forward ref: got %v", toks[1])
	}
}

func TestLexPlusMinusAsOperatorsAfterOperand(t *testing.T) {
	toks, err := Lex("1 + 2 - 3", 1)
	if err != nil {
		t.Fatal(err)
	}
	want := []Kind{Integer, Operator, Integer, Operator, Integer, EOL}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexStarAsPCSymbol(t *testing.T) {
	toks, err := Lex("* = $c000", 1)
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Kind != Star {
		t.Errorf("leading * should lex as Star: got %v", toks[0])
	}
}

func TestLexLongestMatchOperators(t *testing.T) {
	toks, err := Lex("1 <= 2 <> 3 << 4", 1)
	if err != nil {
		t.Fatal(err)
	}
	var ops []string
	for _, tk := range toks {
		if tk.Kind == Operator {
			ops = append(ops, tk.Text)
		}
	}
	want := []string{"<=", "<>", "<<"}
	if len(ops) != len(want) {
		t.Fatalf("got ops %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("op %d: got %q, want %q", i, ops[i], want[i])
		}
	}
}

func TestLexCommentStripped(t *testing.T) {
	toks, err := Lex("lda #1 ; load one", 1)
	if err != nil {
		t.Fatal(err)
	}
	last := toks[len(toks)-1]
	if last.Kind != EOL {
		t.Errorf("expected EOL after stripped comment, got %v", last.Kind)
	}
}

func TestLexUnterminatedStringErrors(t *testing.T) {
	if _, err := Lex(`"unterminated`, 1); err == nil {
		t.Error("expected error for unterminated string literal")
	}
}
