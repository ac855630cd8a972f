/*
	acme65 - Tokenizer

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

// Package token turns one source line into a stream of lexemes. The
// tokenizer carries no state between lines, which makes it safe to
// re-invoke against a captured macro or loop body.
package token

// Kind identifies the lexeme class of a Token.
type Kind int

const (
	EOL Kind = iota
	Ident        // bare identifier, CPU mnemonic, or reserved word
	ZoneLocal    // .name
	CheapLocal   // @name
	Integer      // $, %, decimal literal
	FloatLit     // decimal literal with a fractional part
	CharLit      // 'c'
	StringLit    // "..."
	Operator     // one of the §6 operator lexemes
	Directive    // !name
	MacroInvoke  // +name
	AnonForward  // + standing alone
	AnonBackward // - standing alone
	Star         // * (PC symbol or multiply, disambiguated by the parser)
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	Comma
	Colon
	Equals
)

// Token is one lexeme plus its source position, carried so that
// internal/diag can render the caret-span error contract.
type Token struct {
	Kind   Kind
	Text   string
	Int    int64
	Float  float64
	Line   int
	Column int
}

func (t Token) String() string {
	if t.Text != "" {
		return t.Text
	}
	return t.Kind.name()
}

func (k Kind) name() string {
	switch k {
	case EOL:
		return "<eol>"
	case Operator:
		return "<operator>"
	default:
		return "<token>"
	}
}
