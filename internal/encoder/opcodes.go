package encoder

// Opcode tables, one per Variant. Each starts from the documented NMOS
// 6502 instruction set and layers on the additions the 65C02, the
// W65C02S, and the "illegal"/undocumented NMOS opcodes introduce. A
// mnemonic or mode missing from a variant's table is simply not legal
// there; Select and Encode treat that uniformly as ErrUnsupported
// rather than consulting a separate CPU-requirement table.

var tables = map[Variant]map[string]map[AddrMode]byte{
	NMOS6502:    nmosTable(),
	NMOSIllegal: illegalTable(),
	CMOS65C02:   cmosTable(),
	W65C02S:     w65c02sTable(),
}

func cloneTable(t map[string]map[AddrMode]byte) map[string]map[AddrMode]byte {
	out := make(map[string]map[AddrMode]byte, len(t))
	for mnemonic, modes := range t {
		mc := make(map[AddrMode]byte, len(modes))
		for m, op := range modes {
			mc[m] = op
		}
		out[mnemonic] = mc
	}
	return out
}

// nmosTable is the documented, fully-legal 6502 instruction set: 56
// mnemonics across their official addressing modes.
func nmosTable() map[string]map[AddrMode]byte {
	return map[string]map[AddrMode]byte{
		"ADC": {Immediate: 0x69, ZeroPage: 0x65, ZeroPageX: 0x75, Absolute: 0x6D, AbsoluteX: 0x7D, AbsoluteY: 0x79, IndirectX: 0x61, IndirectY: 0x71},
		"AND": {Immediate: 0x29, ZeroPage: 0x25, ZeroPageX: 0x35, Absolute: 0x2D, AbsoluteX: 0x3D, AbsoluteY: 0x39, IndirectX: 0x21, IndirectY: 0x31},
		"ASL": {Accumulator: 0x0A, ZeroPage: 0x06, ZeroPageX: 0x16, Absolute: 0x0E, AbsoluteX: 0x1E},
		"BCC": {Relative: 0x90},
		"BCS": {Relative: 0xB0},
		"BEQ": {Relative: 0xF0},
		"BIT": {ZeroPage: 0x24, Absolute: 0x2C},
		"BMI": {Relative: 0x30},
		"BNE": {Relative: 0xD0},
		"BPL": {Relative: 0x10},
		"BRK": {Implied: 0x00},
		"BVC": {Relative: 0x50},
		"BVS": {Relative: 0x70},
		"CLC": {Implied: 0x18},
		"CLD": {Implied: 0xD8},
		"CLI": {Implied: 0x58},
		"CLV": {Implied: 0xB8},
		"CMP": {Immediate: 0xC9, ZeroPage: 0xC5, ZeroPageX: 0xD5, Absolute: 0xCD, AbsoluteX: 0xDD, AbsoluteY: 0xD9, IndirectX: 0xC1, IndirectY: 0xD1},
		"CPX": {Immediate: 0xE0, ZeroPage: 0xE4, Absolute: 0xEC},
		"CPY": {Immediate: 0xC0, ZeroPage: 0xC4, Absolute: 0xCC},
		"DEC": {ZeroPage: 0xC6, ZeroPageX: 0xD6, Absolute: 0xCE, AbsoluteX: 0xDE},
		"DEX": {Implied: 0xCA},
		"DEY": {Implied: 0x88},
		"EOR": {Immediate: 0x49, ZeroPage: 0x45, ZeroPageX: 0x55, Absolute: 0x4D, AbsoluteX: 0x5D, AbsoluteY: 0x59, IndirectX: 0x41, IndirectY: 0x51},
		"INC": {ZeroPage: 0xE6, ZeroPageX: 0xF6, Absolute: 0xEE, AbsoluteX: 0xFE},
		"INX": {Implied: 0xE8},
		"INY": {Implied: 0xC8},
		"JMP": {Absolute: 0x4C, Indirect: 0x6C},
		"JSR": {Absolute: 0x20},
		"LDA": {Immediate: 0xA9, ZeroPage: 0xA5, ZeroPageX: 0xB5, Absolute: 0xAD, AbsoluteX: 0xBD, AbsoluteY: 0xB9, IndirectX: 0xA1, IndirectY: 0xB1},
		"LDX": {Immediate: 0xA2, ZeroPage: 0xA6, ZeroPageY: 0xB6, Absolute: 0xAE, AbsoluteY: 0xBE},
		"LDY": {Immediate: 0xA0, ZeroPage: 0xA4, ZeroPageX: 0xB4, Absolute: 0xAC, AbsoluteX: 0xBC},
		"LSR": {Accumulator: 0x4A, ZeroPage: 0x46, ZeroPageX: 0x56, Absolute: 0x4E, AbsoluteX: 0x5E},
		"NOP": {Implied: 0xEA},
		"ORA": {Immediate: 0x09, ZeroPage: 0x05, ZeroPageX: 0x15, Absolute: 0x0D, AbsoluteX: 0x1D, AbsoluteY: 0x19, IndirectX: 0x01, IndirectY: 0x11},
		"PHA": {Implied: 0x48},
		"PHP": {Implied: 0x08},
		"PLA": {Implied: 0x68},
		"PLP": {Implied: 0x28},
		"ROL": {Accumulator: 0x2A, ZeroPage: 0x26, ZeroPageX: 0x36, Absolute: 0x2E, AbsoluteX: 0x3E},
		"ROR": {Accumulator: 0x6A, ZeroPage: 0x66, ZeroPageX: 0x76, Absolute: 0x6E, AbsoluteX: 0x7E},
		"RTI": {Implied: 0x40},
		"RTS": {Implied: 0x60},
		"SBC": {Immediate: 0xE9, ZeroPage: 0xE5, ZeroPageX: 0xF5, Absolute: 0xED, AbsoluteX: 0xFD, AbsoluteY: 0xF9, IndirectX: 0xE1, IndirectY: 0xF1},
		"SEC": {Implied: 0x38},
		"SED": {Implied: 0xF8},
		"SEI": {Implied: 0x78},
		"STA": {ZeroPage: 0x85, ZeroPageX: 0x95, Absolute: 0x8D, AbsoluteX: 0x9D, AbsoluteY: 0x99, IndirectX: 0x81, IndirectY: 0x91},
		"STX": {ZeroPage: 0x86, ZeroPageY: 0x96, Absolute: 0x8E},
		"STY": {ZeroPage: 0x84, ZeroPageX: 0x94, Absolute: 0x8C},
		"TAX": {Implied: 0xAA},
		"TAY": {Implied: 0xA8},
		"TSX": {Implied: 0xBA},
		"TXA": {Implied: 0x8A},
		"TXS": {Implied: 0x9A},
		"TYA": {Implied: 0x98},
	}
}

// cmosTable layers the 65C02 additions onto the NMOS base: new
// mnemonics (BRA, PHX/PLX, PHY/PLY, STZ, TRB, TSB), the new (zp)
// indirect mode on several mnemonics, accumulator-mode INC/DEC, an
// extra BIT immediate form, and JMP (abs,X).
func cmosTable() map[string]map[AddrMode]byte {
	t := cloneTable(nmosTable())

	t["ADC"][IndirectZP] = 0x72
	t["AND"][IndirectZP] = 0x32
	t["CMP"][IndirectZP] = 0xD2
	t["EOR"][IndirectZP] = 0x52
	t["LDA"][IndirectZP] = 0xB2
	t["ORA"][IndirectZP] = 0x12
	t["SBC"][IndirectZP] = 0xF2
	t["STA"][IndirectZP] = 0x92

	t["BIT"][Immediate] = 0x89
	t["BIT"][ZeroPageX] = 0x34
	t["BIT"][AbsoluteX] = 0x3C

	t["INC"][Accumulator] = 0x1A
	t["DEC"][Accumulator] = 0x3A

	t["JMP"][IndirectX] = 0x7C // JMP (abs,X); reuses IndirectX tag for the 3-byte (abs,X) operand shape

	t["BRA"] = map[AddrMode]byte{Relative: 0x80}
	t["PHX"] = map[AddrMode]byte{Implied: 0xDA}
	t["PLX"] = map[AddrMode]byte{Implied: 0xFA}
	t["PHY"] = map[AddrMode]byte{Implied: 0x5A}
	t["PLY"] = map[AddrMode]byte{Implied: 0x7A}
	t["STZ"] = map[AddrMode]byte{ZeroPage: 0x64, ZeroPageX: 0x74, Absolute: 0x9C, AbsoluteX: 0x9E}
	t["TRB"] = map[AddrMode]byte{ZeroPage: 0x14, Absolute: 0x1C}
	t["TSB"] = map[AddrMode]byte{ZeroPage: 0x04, Absolute: 0x0C}

	return t
}

// w65c02sTable layers WAI/STP and the bit-branch/bit-op instruction
// families onto the 65C02 base.
func w65c02sTable() map[string]map[AddrMode]byte {
	t := cloneTable(cmosTable())

	t["WAI"] = map[AddrMode]byte{Implied: 0xCB}
	t["STP"] = map[AddrMode]byte{Implied: 0xDB}

	rmb := []byte{0x07, 0x17, 0x27, 0x37, 0x47, 0x57, 0x67, 0x77}
	smb := []byte{0x87, 0x97, 0xA7, 0xB7, 0xC7, 0xD7, 0xE7, 0xF7}
	bbr := []byte{0x0F, 0x1F, 0x2F, 0x3F, 0x4F, 0x5F, 0x6F, 0x7F}
	bbs := []byte{0x8F, 0x9F, 0xAF, 0xBF, 0xCF, 0xDF, 0xEF, 0xFF}
	for n := 0; n < 8; n++ {
		t[bitMnemonic("RMB", n)] = map[AddrMode]byte{BitOp: rmb[n]}
		t[bitMnemonic("SMB", n)] = map[AddrMode]byte{BitOp: smb[n]}
		t[bitMnemonic("BBR", n)] = map[AddrMode]byte{BitBranch: bbr[n]}
		t[bitMnemonic("BBS", n)] = map[AddrMode]byte{BitBranch: bbs[n]}
	}
	return t
}

func bitMnemonic(prefix string, n int) string {
	return prefix + string(rune('0'+n))
}

// illegalTable layers a representative, widely-documented subset of
// NMOS 6502 undocumented opcodes onto the legal base: the combined
// read-modify-write instructions (SLO, RLA, SRE, RRA, DCP, ISC), the
// LAX/SAX load/store-both-registers pair, the immediate-mode combined
// instructions (ANC, ALR, ARR, SBX), and the documented illegal NOP
// encodings. Opcode assignments here intentionally collide with 65C02
// assignments in other tables (e.g. $80, $04, $1C): each variant owns
// its own table, so there is no cross-variant aliasing at runtime.
func illegalTable() map[string]map[AddrMode]byte {
	t := cloneTable(nmosTable())

	t["SLO"] = map[AddrMode]byte{ZeroPage: 0x07, ZeroPageX: 0x17, Absolute: 0x0F, AbsoluteX: 0x1F, AbsoluteY: 0x1B, IndirectX: 0x03, IndirectY: 0x13}
	t["RLA"] = map[AddrMode]byte{ZeroPage: 0x27, ZeroPageX: 0x37, Absolute: 0x2F, AbsoluteX: 0x3F, AbsoluteY: 0x3B, IndirectX: 0x23, IndirectY: 0x33}
	t["SRE"] = map[AddrMode]byte{ZeroPage: 0x47, ZeroPageX: 0x57, Absolute: 0x4F, AbsoluteX: 0x5F, AbsoluteY: 0x5B, IndirectX: 0x43, IndirectY: 0x53}
	t["RRA"] = map[AddrMode]byte{ZeroPage: 0x67, ZeroPageX: 0x77, Absolute: 0x6F, AbsoluteX: 0x7F, AbsoluteY: 0x7B, IndirectX: 0x63, IndirectY: 0x73}
	t["DCP"] = map[AddrMode]byte{ZeroPage: 0xC7, ZeroPageX: 0xD7, Absolute: 0xCF, AbsoluteX: 0xDF, AbsoluteY: 0xDB, IndirectX: 0xC3, IndirectY: 0xD3}
	t["ISC"] = map[AddrMode]byte{ZeroPage: 0xE7, ZeroPageX: 0xF7, Absolute: 0xEF, AbsoluteX: 0xFF, AbsoluteY: 0xFB, IndirectX: 0xE3, IndirectY: 0xF3}

	t["LAX"] = map[AddrMode]byte{ZeroPage: 0xA7, ZeroPageY: 0xB7, Absolute: 0xAF, AbsoluteY: 0xBF, IndirectX: 0xA3, IndirectY: 0xB3}
	t["SAX"] = map[AddrMode]byte{ZeroPage: 0x87, ZeroPageY: 0x97, Absolute: 0x8F, IndirectX: 0x83}

	t["ANC"] = map[AddrMode]byte{Immediate: 0x0B}
	t["ALR"] = map[AddrMode]byte{Immediate: 0x4B}
	t["ARR"] = map[AddrMode]byte{Immediate: 0x6B}
	t["SBX"] = map[AddrMode]byte{Immediate: 0xCB}

	t["DOP"] = map[AddrMode]byte{ZeroPage: 0x04, ZeroPageX: 0x14, Immediate: 0x80} // documented illegal 2-byte NOPs
	t["TOP"] = map[AddrMode]byte{Absolute: 0x0C, AbsoluteX: 0x1C}                  // documented illegal 3-byte NOPs
	t["NP1"] = map[AddrMode]byte{Implied: 0x1A}                                   // single-byte illegal NOP family (1A/3A/5A/7A/DA/FA)

	return t
}
