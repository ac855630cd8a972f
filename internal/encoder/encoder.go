/*
	acme65 - Instruction encoder

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

// Package encoder selects the smallest legal addressing-mode encoding
// for a mnemonic across the four supported CPU variants and emits the
// resulting opcode/operand bytes. Variant gating falls naturally out
// of table membership: an instruction unavailable on a variant is
// simply absent from that variant's table, so "BRA requires 65C02"
// needs no separate rule beyond the table construction in opcodes.go.
package encoder

import "fmt"

// AddrMode enumerates the syntactic/semantic addressing modes a 6502
// family operand can take.
type AddrMode int

const (
	Implied AddrMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndirectX  // (zp,X)
	IndirectY  // (zp),Y
	IndirectZP // (zp), 65C02 and up
	Relative
	BitBranch // BBRn/BBSn, W65C02S
	BitOp     // RMBn/SMBn, W65C02S
)

func (m AddrMode) OperandBytes() int {
	switch m {
	case Implied, Accumulator:
		return 0
	case Immediate, ZeroPage, ZeroPageX, ZeroPageY, IndirectX, IndirectY, IndirectZP, Relative, BitOp:
		return 1
	case Absolute, AbsoluteX, AbsoluteY, Indirect, BitBranch:
		return 2
	default:
		return 0
	}
}

// Variant identifies one of the four CPU families this assembler
// targets.
type Variant int

const (
	NMOS6502 Variant = iota
	NMOSIllegal
	CMOS65C02
	W65C02S
)

// ParseVariant maps a "!cpu" argument to a Variant.
func ParseVariant(name string) (Variant, error) {
	switch name {
	case "6502", "6510", "nmos", "nmos6502-noillegal":
		return NMOS6502, nil
	case "nmos6502", "nmos6502-illegal":
		return NMOSIllegal, nil
	case "65c02", "r65c02":
		return CMOS65C02, nil
	case "w65c02", "w65c02s":
		return W65C02S, nil
	default:
		return NMOS6502, fmt.Errorf("unknown CPU variant %q", name)
	}
}

func (v Variant) String() string {
	switch v {
	case NMOS6502:
		return "6502"
	case NMOSIllegal:
		return "nmos6502"
	case CMOS65C02:
		return "65c02"
	case W65C02S:
		return "w65c02"
	default:
		return "?"
	}
}

// Instruction describes one fully-resolved instruction ready for
// byte emission.
type Instruction struct {
	Mnemonic string
	Mode     AddrMode
	Operand  int64 // meaning depends on Mode: address, immediate byte, or signed displacement
	ZPArg    int64 // for BitBranch/BitOp: the zero-page operand preceding the displacement/alone
}

// ErrUnsupported is returned when a mnemonic/mode pair is not legal on
// the selected variant, either because the mnemonic does not exist at
// all on this variant or because it does not support this mode.
var ErrUnsupported = fmt.Errorf("mnemonic not supported in this addressing mode on the selected CPU")

// ModesFor reports the addressing-mode table for one mnemonic on one
// variant. ok is false if the mnemonic does not exist at all on this
// variant (e.g. BRA on plain NMOS6502, or an illegal mnemonic outside
// NMOSIllegal).
func ModesFor(v Variant, mnemonic string) (map[AddrMode]byte, bool) {
	t, ok := tables[v][mnemonic]
	return t, ok
}

// Select picks the first mode from candidates that mnemonic supports
// on variant v, returning its opcode. candidates should be ordered
// most-specific/most-compact first (callers pass zero-page before
// absolute, for instance) so the smallest legal encoding wins.
func Select(v Variant, mnemonic string, candidates ...AddrMode) (AddrMode, byte, error) {
	modes, ok := ModesFor(v, mnemonic)
	if !ok {
		return 0, 0, fmt.Errorf("%s: %w (variant %s)", mnemonic, ErrUnsupported, v)
	}
	for _, m := range candidates {
		if op, ok := modes[m]; ok {
			return m, op, nil
		}
	}
	return 0, 0, fmt.Errorf("%s: %w (variant %s)", mnemonic, ErrUnsupported, v)
}

// Encode renders one resolved Instruction to its opcode + operand
// bytes, little-endian for absolute/indirect operands.
func Encode(v Variant, inst Instruction) ([]byte, error) {
	modes, ok := ModesFor(v, inst.Mnemonic)
	if !ok {
		return nil, fmt.Errorf("%s: %w (variant %s)", inst.Mnemonic, ErrUnsupported, v)
	}
	opcode, ok := modes[inst.Mode]
	if !ok {
		return nil, fmt.Errorf("%s: addressing mode not supported on variant %s", inst.Mnemonic, v)
	}
	switch inst.Mode {
	case Implied, Accumulator:
		return []byte{opcode}, nil
	case IndirectX:
		if inst.Mnemonic == "JMP" {
			// 65C02 JMP (abs,X) takes a 16-bit operand.
			return []byte{opcode, byte(inst.Operand), byte(inst.Operand >> 8)}, nil
		}
		return []byte{opcode, byte(inst.Operand)}, nil
	case Immediate, ZeroPage, ZeroPageX, ZeroPageY, IndirectY, IndirectZP:
		return []byte{opcode, byte(inst.Operand)}, nil
	case Absolute, AbsoluteX, AbsoluteY, Indirect:
		return []byte{opcode, byte(inst.Operand), byte(inst.Operand >> 8)}, nil
	case Relative:
		return []byte{opcode, byte(inst.Operand)}, nil
	case BitOp:
		return []byte{opcode, byte(inst.ZPArg)}, nil
	case BitBranch:
		return []byte{opcode, byte(inst.ZPArg), byte(inst.Operand)}, nil
	default:
		return nil, fmt.Errorf("%s: unhandled addressing mode", inst.Mnemonic)
	}
}

// RelativeOffset computes a branch displacement and checks the signed
// byte range, per "displacement = target - pc_after_instruction".
func RelativeOffset(target, pcAfterInstruction int64) (int8, error) {
	d := target - pcAfterInstruction
	if d < -128 || d > 127 {
		return 0, fmt.Errorf("branch target out of range: displacement %d", d)
	}
	return int8(d), nil
}

// FitsZeroPage reports whether v can be encoded in the single byte a
// zero-page operand requires.
func FitsZeroPage(v int64) bool { return v >= 0 && v <= 0xFF }
