package assembler

import (
	"fmt"
	"strings"

	"github.com/rcornwell/acme65/internal/encoder"
	"github.com/rcornwell/acme65/internal/token"
	"github.com/rcornwell/acme65/internal/value"
)

func (a *Assembler) modesFor(mnemonic string) (map[encoder.AddrMode]byte, bool) {
	return encoder.ModesFor(a.variant, mnemonic)
}

func hasMode(modes map[encoder.AddrMode]byte, m encoder.AddrMode) bool {
	_, ok := modes[m]
	return ok
}

func trimEOL(toks []token.Token) []token.Token {
	if n := len(toks); n > 0 && toks[n-1].Kind == token.EOL {
		return toks[:n-1]
	}
	return toks
}

// assembleInstruction parses the operand syntax appropriate to
// mnemonic's addressing-mode table and emits the resulting bytes,
// honoring the addressing-width stability invariant between passes.
func (a *Assembler) assembleInstruction(t token.Token, operand []token.Token) error {
	mnemonic := strings.ToUpper(t.Text)
	modes, ok := a.modesFor(mnemonic)
	if !ok {
		return fmt.Errorf("%s: not available on the selected CPU", mnemonic)
	}
	operand = trimEOL(operand)

	if only, ok := onlyMode(modes); ok {
		switch only {
		case encoder.Relative:
			return a.assembleRelative(mnemonic, modes, operand)
		case encoder.BitOp:
			return a.assembleBitOp(mnemonic, modes, operand)
		}
	}
	if hasMode(modes, encoder.BitBranch) {
		return a.assembleBitBranch(mnemonic, modes, operand)
	}
	return a.assembleGeneral(mnemonic, modes, operand)
}

func onlyMode(modes map[encoder.AddrMode]byte) (encoder.AddrMode, bool) {
	if len(modes) != 1 {
		return 0, false
	}
	for m := range modes {
		return m, true
	}
	return 0, false
}

func (a *Assembler) emitWithOperand(mnemonic string, mode encoder.AddrMode, operand int64) error {
	bytes, err := encoder.Encode(a.variant, encoder.Instruction{Mnemonic: mnemonic, Mode: mode, Operand: operand})
	if err != nil {
		return err
	}
	return a.image.EmitBytes(bytes)
}

// resolveWidth implements §4.C's addressing-width stability
// invariant: pass 1 records whether it chose the compact encoding;
// pass 2 must reproduce the same choice even if the now-resolved
// value would permit the compact one, and it is a phase error if pass
// 2 would need to go the other way (i.e. the compact encoding no
// longer fits, which the invariant assumes cannot happen for a
// well-formed program).
func (a *Assembler) resolveWidth(fitsCompact bool) (useCompact bool, err error) {
	idx := a.widthIndex
	a.widthIndex++
	if a.pass == 1 {
		a.widths = append(a.widths, fitsCompact)
		return fitsCompact, nil
	}
	if idx >= len(a.widths) {
		return false, fmt.Errorf("internal error: instruction visited more times in pass 2 than pass 1")
	}
	reserved := a.widths[idx]
	if reserved {
		if !fitsCompact {
			return false, fatalError{fmt.Errorf("phase error: operand reserved as zero-page in pass 1 no longer fits in pass 2")}
		}
		return true, nil
	}
	if fitsCompact {
		// pass 1 reserved the wide form (forward reference); keep it
		// wide even though pass 2 now knows it would fit narrow.
		return false, nil
	}
	return false, nil
}

func (a *Assembler) assembleGeneral(mnemonic string, modes map[encoder.AddrMode]byte, operand []token.Token) error {
	switch {
	case len(operand) == 0:
		switch {
		case hasMode(modes, encoder.Implied):
			return a.emitWithOperand(mnemonic, encoder.Implied, 0)
		case hasMode(modes, encoder.Accumulator):
			return a.emitWithOperand(mnemonic, encoder.Accumulator, 0)
		default:
			return fmt.Errorf("%s requires an operand", mnemonic)
		}

	case len(operand) == 1 && operand[0].Kind == token.Ident && strings.EqualFold(operand[0].Text, "A") && hasMode(modes, encoder.Accumulator):
		return a.emitWithOperand(mnemonic, encoder.Accumulator, 0)

	case operand[0].Kind == token.Operator && operand[0].Text == "#":
		if !hasMode(modes, encoder.Immediate) {
			return fmt.Errorf("%s: immediate addressing not supported", mnemonic)
		}
		v, _, _, err := a.evalExpr(operand[1:])
		if err != nil {
			return err
		}
		return a.emitWithOperand(mnemonic, encoder.Immediate, v.AsInt())

	case operand[0].Kind == token.LParen && hasAnyIndirect(modes):
		return a.assembleIndirect(mnemonic, modes, operand)

	default:
		v, n, und, err := a.evalExpr(operand)
		if err != nil {
			return err
		}
		idx := n
		if idx < len(operand) && operand[idx].Kind == token.Comma {
			if idx+1 >= len(operand) || operand[idx+1].Kind != token.Ident {
				return fmt.Errorf("expected index register after ','")
			}
			reg := operand[idx+1]
			switch {
			case strings.EqualFold(reg.Text, "X"):
				return a.assembleIndexed(mnemonic, modes, v, und, encoder.ZeroPageX, encoder.AbsoluteX)
			case strings.EqualFold(reg.Text, "Y"):
				return a.assembleIndexed(mnemonic, modes, v, und, encoder.ZeroPageY, encoder.AbsoluteY)
			default:
				return fmt.Errorf("expected 'X' or 'Y' index register")
			}
		}
		return a.assembleIndexed(mnemonic, modes, v, und, encoder.ZeroPage, encoder.Absolute)
	}
}

func hasAnyIndirect(modes map[encoder.AddrMode]byte) bool {
	return hasMode(modes, encoder.Indirect) || hasMode(modes, encoder.IndirectX) ||
		hasMode(modes, encoder.IndirectY) || hasMode(modes, encoder.IndirectZP)
}

// assembleIndexed picks between the zero-page and absolute forms of
// an indexed or direct addressing mode, consulting resolveWidth only
// when the mnemonic genuinely offers both.
func (a *Assembler) assembleIndexed(mnemonic string, modes map[encoder.AddrMode]byte, v value.Value, und bool, zpMode, absMode encoder.AddrMode) error {
	wantsZP := hasMode(modes, zpMode)
	wantsAbs := hasMode(modes, absMode)
	switch {
	case !wantsZP && !wantsAbs:
		return fmt.Errorf("%s: addressing mode not supported on the selected CPU", mnemonic)
	case wantsZP && !wantsAbs:
		if !und && !encoder.FitsZeroPage(v.AsInt()) {
			return fmt.Errorf("%s: operand does not fit zero page", mnemonic)
		}
		return a.emitWithOperand(mnemonic, zpMode, v.AsInt())
	case wantsAbs && !wantsZP:
		return a.emitWithOperand(mnemonic, absMode, v.AsInt())
	default:
		fits := !und && encoder.FitsZeroPage(v.AsInt())
		useZP, err := a.resolveWidth(fits)
		if err != nil {
			return err
		}
		if useZP {
			return a.emitWithOperand(mnemonic, zpMode, v.AsInt())
		}
		return a.emitWithOperand(mnemonic, absMode, v.AsInt())
	}
}

// assembleIndirect parses "(expr,X)", "(expr),Y", and bare "(expr)"
// (Indirect or, on 65C02+, the zero-page IndirectZP form).
func (a *Assembler) assembleIndirect(mnemonic string, modes map[encoder.AddrMode]byte, operand []token.Token) error {
	v, n, und, err := a.evalExpr(operand[1:])
	if err != nil {
		return err
	}
	idx := 1 + n
	if idx >= len(operand) {
		return fmt.Errorf("unterminated '(' in operand")
	}
	switch operand[idx].Kind {
	case token.Comma:
		if idx+2 >= len(operand) || operand[idx+1].Kind != token.Ident || !strings.EqualFold(operand[idx+1].Text, "X") || operand[idx+2].Kind != token.RParen {
			return fmt.Errorf("expected '(expr,X)'")
		}
		if !hasMode(modes, encoder.IndirectX) {
			return fmt.Errorf("%s: (zp,X) addressing not supported", mnemonic)
		}
		return a.emitWithOperand(mnemonic, encoder.IndirectX, v.AsInt())

	case token.RParen:
		rest := operand[idx+1:]
		if len(rest) >= 2 && rest[0].Kind == token.Comma && rest[1].Kind == token.Ident && strings.EqualFold(rest[1].Text, "Y") {
			if !hasMode(modes, encoder.IndirectY) {
				return fmt.Errorf("%s: (zp),Y addressing not supported", mnemonic)
			}
			return a.emitWithOperand(mnemonic, encoder.IndirectY, v.AsInt())
		}
		wantsInd := hasMode(modes, encoder.Indirect)
		wantsZP := hasMode(modes, encoder.IndirectZP)
		switch {
		case wantsInd && !wantsZP:
			return a.emitWithOperand(mnemonic, encoder.Indirect, v.AsInt())
		case wantsZP && !wantsInd:
			return a.emitWithOperand(mnemonic, encoder.IndirectZP, v.AsInt())
		case wantsInd && wantsZP:
			fits := !und && encoder.FitsZeroPage(v.AsInt())
			useZP, err := a.resolveWidth(fits)
			if err != nil {
				return err
			}
			if useZP {
				return a.emitWithOperand(mnemonic, encoder.IndirectZP, v.AsInt())
			}
			return a.emitWithOperand(mnemonic, encoder.Indirect, v.AsInt())
		default:
			return fmt.Errorf("%s: indirect addressing not supported", mnemonic)
		}
	default:
		return fmt.Errorf("malformed indirect operand")
	}
}

// assembleRelative emits a branch mnemonic's opcode and signed
// displacement. The displacement byte is only range-checked in pass
// 2: a forward target may still be unresolved in pass 1, and the
// operand width (1 byte) never varies, so pass 1 always emits a
// placeholder rather than erroring.
func (a *Assembler) assembleRelative(mnemonic string, modes map[encoder.AddrMode]byte, operand []token.Token) error {
	v, _, und, err := a.evalExpr(operand)
	if err != nil {
		return err
	}
	opcode := modes[encoder.Relative]
	pcAfter := a.image.PC() + 2
	if a.pass == 1 || und {
		if err := a.image.Emit(opcode); err != nil {
			return err
		}
		return a.image.Emit(0)
	}
	disp, err := encoder.RelativeOffset(v.AsInt(), pcAfter)
	if err != nil {
		return err
	}
	if err := a.image.Emit(opcode); err != nil {
		return err
	}
	return a.image.Emit(byte(disp))
}

// assembleBitBranch parses a W65C02S "BBRn/BBSn zp,label" operand: a
// zero-page byte followed by a relative displacement to label,
// exactly like assembleRelative but with one extra leading operand
// byte.
func (a *Assembler) assembleBitBranch(mnemonic string, modes map[encoder.AddrMode]byte, operand []token.Token) error {
	zp, n, _, err := a.evalExpr(operand)
	if err != nil {
		return err
	}
	idx := n
	if idx >= len(operand) || operand[idx].Kind != token.Comma {
		return fmt.Errorf("%s requires a 'zp,label' operand", mnemonic)
	}
	target, _, undTarget, err := a.evalExpr(operand[idx+1:])
	if err != nil {
		return err
	}
	opcode := modes[encoder.BitBranch]
	pcAfter := a.image.PC() + 3
	if a.pass == 1 || undTarget {
		if err := a.image.EmitBytes([]byte{opcode, byte(zp.AsInt()), 0}); err != nil {
			return err
		}
		return nil
	}
	disp, err := encoder.RelativeOffset(target.AsInt(), pcAfter)
	if err != nil {
		return err
	}
	return a.image.EmitBytes([]byte{opcode, byte(zp.AsInt()), byte(disp)})
}

// assembleBitOp parses a W65C02S "RMBn/SMBn zp" operand: one
// zero-page byte, no relative displacement.
func (a *Assembler) assembleBitOp(mnemonic string, modes map[encoder.AddrMode]byte, operand []token.Token) error {
	v, _, _, err := a.evalExpr(operand)
	if err != nil {
		return err
	}
	opcode := modes[encoder.BitOp]
	return a.image.EmitBytes([]byte{opcode, byte(v.AsInt())})
}
