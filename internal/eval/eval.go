/*
	acme65 - Expression evaluator

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

// Package eval implements a Pratt (operator-precedence) parser over a
// token stream, producing a value.Value. Symbol and program-counter
// lookups are delegated to a Resolver so this package carries no
// knowledge of zones, scoping, or segment state.
package eval

import (
	"fmt"

	"github.com/rcornwell/acme65/internal/token"
	"github.com/rcornwell/acme65/internal/value"
)

// Resolver supplies the symbol, program-counter, and anonymous-label
// lookups an expression may reference. The implementation lives in
// internal/assembler, which adapts internal/symtab and internal/segment;
// Eval never touches either package directly.
type Resolver interface {
	// Ident resolves a bare, zone-local (.name), or cheap-local (@name)
	// identifier according to tok.Kind. A forward reference (not yet
	// defined in this pass) returns value.Und, nil rather than an error.
	Ident(tok token.Token) (value.Value, error)

	// PC returns the current program counter as used by the bare '*'
	// symbol.
	PC() (value.Value, error)

	// AnonForward resolves a '+' anonymous reference from the given
	// source position; AnonBackward resolves '-'.
	AnonForward(line, col int) (value.Value, error)
	AnonBackward(line, col int) (value.Value, error)
}

// Context carries the per-evaluation state the evaluator needs beyond
// plain symbol lookup: which pass is running (division-by-zero and
// forward-reference tolerance differ between passes) and whether any
// operand along the way was Undefined.
type Context struct {
	Resolver Resolver
	InPass1  bool

	// SawUndefined is set by the evaluator whenever any sub-expression
	// resolved to Undefined, so callers (the encoder, directive
	// handlers) know to reserve maximum operand width.
	SawUndefined bool
}

// precedence levels, lowest binds loosest. Matches the documented
// table: || < && < | < ^ < & < equality < relational < shift <
// additive < multiplicative < power < unary < atom.
const (
	precNone = iota
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precPower
	precUnary
)

var binPrec = map[string]int{
	"||": precOr,
	"&&": precAnd,
	"|":  precBitOr,
	"^":  precBitXor,
	"&":  precBitAnd,
	"==": precEquality,
	"!=": precEquality,
	"<>": precEquality,
	"<":  precRelational,
	">":  precRelational,
	"<=": precRelational,
	">=": precRelational,
	"<<": precShift,
	">>": precShift,
	"+":  precAdditive,
	"-":  precAdditive,
	"*":  precMultiplicative,
	"/":  precMultiplicative,
	"%":  precMultiplicative,
	"**": precPower,
}

// rightAssoc holds the operators that associate right-to-left; only
// "**" does.
var rightAssoc = map[string]bool{"**": true}

var builtins = map[string]func(value.Value) (value.Value, error){
	"sin":       mathFn(mathSin),
	"cos":       mathFn(mathCos),
	"tan":       mathFn(mathTan),
	"arcsin":    mathFn(mathAsin),
	"arccos":    mathFn(mathAcos),
	"arctan":    mathFn(mathAtan),
	"int":       value.ToInt,
	"float":     value.ToFloat,
	"is_number": isNumber,
	"is_list":   isList,
	"is_string": isString,
	"len":       lengthOf,
}

// Eval parses and evaluates a full expression occupying toks[0:] up to
// (but not including) the first token that cannot continue it: EOL, a
// comma, a closer not matched by a nested opener, or any other
// non-operator token (such as the "to" of a !for header). It returns
// the value and the number of tokens consumed.
func Eval(toks []token.Token, ctx *Context) (value.Value, int, error) {
	p := &parser{toks: toks, ctx: ctx}
	v, err := p.expr(precNone)
	if err != nil {
		return value.Und, p.pos, err
	}
	return v, p.pos, nil
}

type parser struct {
	toks []token.Token
	pos  int
	ctx  *Context
}

func (p *parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOL}
	}
	return p.toks[p.pos]
}

func (p *parser) advance() token.Token {
	t := p.cur()
	p.pos++
	return t
}

func (p *parser) mark(v value.Value) value.Value {
	if v.IsUndefined() {
		p.ctx.SawUndefined = true
	}
	return v
}

// expr implements Pratt's precedence-climbing loop: parse one unary/atom
// term, then keep absorbing infix operators whose precedence is at
// least minPrec.
func (p *parser) expr(minPrec int) (value.Value, error) {
	left, err := p.unary()
	if err != nil {
		return value.Und, err
	}
	for {
		t := p.cur()
		op, span := t.Text, 1
		if t.Kind == token.Star {
			// The lexer emits every '*' as Star; after a term it is
			// multiplication, and two Stars in a row spell "**".
			op = "*"
			if n := p.pos + 1; n < len(p.toks) && p.toks[n].Kind == token.Star {
				op, span = "**", 2
			}
		} else if t.Kind != token.Operator {
			break
		}
		prec, ok := binPrec[op]
		if !ok || prec < minPrec {
			break
		}
		p.pos += span
		nextMin := prec + 1
		if rightAssoc[op] {
			nextMin = prec
		}
		right, err := p.expr(nextMin)
		if err != nil {
			return value.Und, err
		}
		left, err = p.applyBinary(op, left, right)
		if err != nil {
			return value.Und, err
		}
		left = p.mark(left)
	}
	return left, nil
}

func (p *parser) applyBinary(op string, a, b value.Value) (value.Value, error) {
	switch op {
	case "||":
		return value.LogicalOr(a, b)
	case "&&":
		return value.LogicalAnd(a, b)
	case "|":
		return value.BitOr(a, b)
	case "^":
		return value.BitXor(a, b)
	case "&":
		return value.BitAnd(a, b)
	case "==":
		return value.Eq(a, b)
	case "!=", "<>":
		return value.Ne(a, b)
	case "<":
		return value.Lt(a, b)
	case ">":
		return value.Gt(a, b)
	case "<=":
		return value.Le(a, b)
	case ">=":
		return value.Ge(a, b)
	case "<<":
		return value.Shl(a, b)
	case ">>":
		return value.Shr(a, b)
	case "+":
		return value.Add(a, b)
	case "-":
		return value.Sub(a, b)
	case "*":
		return value.Mul(a, b)
	case "/":
		return value.Div(a, b, p.ctx.InPass1)
	case "%":
		return value.Mod(a, b, p.ctx.InPass1)
	case "**":
		return value.Pow(a, b)
	default:
		return value.Und, fmt.Errorf("unknown operator %q", op)
	}
}

// unary parses the level-12 prefix operators ('+' '-' '!' '~' '<' '>')
// and falls through to atom otherwise. Note that '<' and '>' are also
// binary relational operators; at this point in the grammar they can
// only appear here if the previous expr() iteration did not consume
// them as infix, i.e. we are at the start of a term, so the prefix
// reading is unambiguous.
func (p *parser) unary() (value.Value, error) {
	t := p.cur()
	if t.Kind == token.Operator {
		switch t.Text {
		case "+":
			p.advance()
			v, err := p.unary()
			if err != nil {
				return value.Und, err
			}
			r, err := value.Pos(v)
			return p.mark(r), err
		case "-":
			p.advance()
			v, err := p.unary()
			if err != nil {
				return value.Und, err
			}
			r, err := value.Neg(v)
			return p.mark(r), err
		case "!":
			p.advance()
			v, err := p.unary()
			if err != nil {
				return value.Und, err
			}
			r, err := value.Not(v)
			return p.mark(r), err
		case "~":
			p.advance()
			v, err := p.unary()
			if err != nil {
				return value.Und, err
			}
			r, err := value.BitNot(v)
			return p.mark(r), err
		case "<":
			p.advance()
			v, err := p.unary()
			if err != nil {
				return value.Und, err
			}
			r, err := value.LoByte(v)
			return p.mark(r), err
		case ">":
			p.advance()
			v, err := p.unary()
			if err != nil {
				return value.Und, err
			}
			r, err := value.HiByte(v)
			return p.mark(r), err
		}
	}
	return p.atom()
}

// atom parses level-13 terms: literals, identifiers, function calls,
// parenthesized sub-expressions, list literals, and the PC/anonymous
// symbols.
func (p *parser) atom() (value.Value, error) {
	t := p.advance()
	switch t.Kind {
	case token.Integer:
		return value.Int(t.Int), nil
	case token.FloatLit:
		return value.Flt(t.Float), nil
	case token.CharLit:
		return value.Int(t.Int), nil
	case token.StringLit:
		return value.Str(t.Text), nil
	case token.Star:
		v, err := p.ctx.Resolver.PC()
		return p.mark(v), err
	case token.AnonForward:
		v, err := p.ctx.Resolver.AnonForward(t.Line, t.Column)
		return p.mark(v), err
	case token.AnonBackward:
		v, err := p.ctx.Resolver.AnonBackward(t.Line, t.Column)
		return p.mark(v), err
	case token.ZoneLocal, token.CheapLocal:
		v, err := p.ctx.Resolver.Ident(t)
		return p.mark(v), err
	case token.Ident:
		if fn, ok := builtins[t.Text]; ok {
			return p.call(fn)
		}
		v, err := p.ctx.Resolver.Ident(t)
		return p.mark(v), err
	case token.LParen:
		v, err := p.expr(precNone)
		if err != nil {
			return value.Und, err
		}
		if p.cur().Kind != token.RParen {
			return value.Und, fmt.Errorf("expected ')' at line %d column %d", t.Line, t.Column)
		}
		p.advance()
		return v, nil
	case token.LBrace:
		items, err := p.list(token.RBrace)
		if err != nil {
			return value.Und, err
		}
		return value.Lst(items), nil
	default:
		return value.Und, fmt.Errorf("unexpected token %q at line %d column %d", t.String(), t.Line, t.Column)
	}
}

func (p *parser) call(fn func(value.Value) (value.Value, error)) (value.Value, error) {
	if p.cur().Kind != token.LParen {
		return value.Und, fmt.Errorf("expected '(' after function name at line %d", p.cur().Line)
	}
	p.advance()
	arg, err := p.expr(precNone)
	if err != nil {
		return value.Und, err
	}
	if p.cur().Kind != token.RParen {
		return value.Und, fmt.Errorf("expected ')' to close function call at line %d", p.cur().Line)
	}
	p.advance()
	r, err := fn(arg)
	return p.mark(r), err
}

func (p *parser) list(end token.Kind) ([]value.Value, error) {
	var items []value.Value
	if p.cur().Kind == end {
		p.advance()
		return items, nil
	}
	for {
		v, err := p.expr(precNone)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		switch p.cur().Kind {
		case token.Comma:
			p.advance()
		case end:
			p.advance()
			return items, nil
		default:
			return nil, fmt.Errorf("expected ',' or list terminator at line %d", p.cur().Line)
		}
	}
}

func isNumber(v value.Value) (value.Value, error) {
	return value.Bool(v.Kind == value.Integer || v.Kind == value.Float), nil
}

func isList(v value.Value) (value.Value, error) {
	return value.Bool(v.Kind == value.List), nil
}

func isString(v value.Value) (value.Value, error) {
	return value.Bool(v.Kind == value.String), nil
}

func lengthOf(v value.Value) (value.Value, error) {
	switch v.Kind {
	case value.String:
		return value.Int(int64(len(v.S))), nil
	case value.List:
		return value.Int(int64(len(v.L))), nil
	case value.Undefined:
		return value.Und, nil
	default:
		return value.Und, fmt.Errorf("len() requires a string or list operand")
	}
}
