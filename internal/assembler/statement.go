package assembler

import (
	"fmt"
	"strings"

	"github.com/rcornwell/acme65/internal/token"
	"github.com/rcornwell/acme65/internal/value"
)

// dispatch handles one already-tokenized statement: an optional
// leading label definition, then a directive, macro invocation, or
// instruction. Labels are recognized without requiring a colon (the
// colon form degenerates into two statements via splitStatements,
// since ACME treats ':' as a general statement separator); a bare
// label can also be followed directly by an instruction or directive
// on the same statement, separated only by whitespace.
func (a *Assembler) dispatch(toks []token.Token) error {
	if len(toks) == 0 || toks[0].Kind == token.EOL {
		return nil
	}
	t := toks[0]

	switch t.Kind {
	case token.Star:
		if len(toks) > 1 && toks[1].Kind == token.Operator && toks[1].Text == "=" {
			return a.assignPC(toks[2:])
		}
		return fmt.Errorf("unexpected '*' in statement position")

	case token.Directive:
		return a.dispatchDirective(t, toks[1:])

	case token.MacroInvoke:
		return a.invokeMacro(t, toks[1:])

	case token.AnonForward, token.AnonBackward:
		if len(toks) == 1 || (len(toks) == 2 && toks[1].Kind == token.EOL) {
			a.symtab.DefineAnon(t.Line, t.Column, a.image.PC())
			return nil
		}
		return fmt.Errorf("unexpected tokens after anonymous label")

	case token.Ident, token.ZoneLocal, token.CheapLocal:
		if len(toks) > 1 && toks[1].Kind == token.Operator && toks[1].Text == "=" {
			return a.assignSymbol(t, toks[2:], false)
		}
		if t.Kind == token.Ident && a.isMnemonic(t.Text) {
			return a.assembleInstruction(t, toks[1:])
		}
		if err := a.defineLabel(t); err != nil {
			return err
		}
		if len(toks) > 1 && toks[1].Kind != token.EOL {
			return a.dispatch(toks[1:])
		}
		return nil

	default:
		return fmt.Errorf("unexpected token %q in statement position", t.String())
	}
}

func (a *Assembler) assignPC(rest []token.Token) error {
	v, _, _, err := a.evalExpr(rest)
	if err != nil {
		return err
	}
	if v.IsUndefined() {
		return fmt.Errorf("'*=' target must not depend on a forward reference")
	}
	a.image.SetRealPC(v.AsInt())
	return nil
}

func (a *Assembler) assignSymbol(name token.Token, rest []token.Token, isVariable bool) error {
	v, _, _, err := a.evalExpr(rest)
	if err != nil {
		return err
	}
	switch name.Kind {
	case token.ZoneLocal:
		return a.symtab.DefineZoneLocal(name.Text, v, isVariable)
	case token.CheapLocal:
		return a.symtab.DefineCheapLocal(name.Text, v, isVariable)
	default:
		return a.symtab.DefineGlobal(name.Text, v, isVariable)
	}
}

func (a *Assembler) defineLabel(name token.Token) error {
	pc := value.Int(a.image.PC())
	switch name.Kind {
	case token.ZoneLocal:
		return a.symtab.DefineZoneLocal(name.Text, pc, false)
	case token.CheapLocal:
		return a.symtab.DefineCheapLocal(name.Text, pc, false)
	default:
		return a.symtab.DefineGlobal(name.Text, pc, false)
	}
}

func (a *Assembler) isMnemonic(name string) bool {
	_, ok := a.modesFor(strings.ToUpper(name))
	return ok
}
