package thumb

import "github.com/m0sim/m0sim/halfword"

// InstructionSize inspects the top five bits of the half-word's high byte to
// decide whether this is the first half of a 32bit Thumb-2 encoding. Per
// ARMv6-M, the 32bit encodings begin with 0b11101, 0b11110 or 0b11111.
func InstructionSize(hw halfword.HalfWord) int {
	top5 := (uint32(hw) >> 11) & 0x1f
	if top5 == 0b11101 || top5 == 0b11110 || top5 == 0b11111 {
		return 32
	}
	return 16
}

// Decode16 classifies a single half-word Thumb instruction. Decode never
// fails: any bit pattern not recognised by a lower-level format group
// produces UNDEFINED.
func Decode16(hw halfword.HalfWord) Opcode {
	opcode := uint32(hw)

	// fast path for the fixed-encoding hints, checked ahead of the general
	// "miscellaneous" dispatch since they share its top byte
	if opcode&0xff00 == 0xbf00 {
		if k, ok := decodeHint(opcode); ok {
			return Opcode{Width: Thumb16, Kind: k}
		}
	}

	switch {
	case opcode&0xf000 == 0xe000:
		// format 18 - unconditional branch
		return Opcode{Width: Thumb16, Kind: B}
	case opcode&0xff00 == 0xdf00:
		// format 17 - supervisor call
		return Opcode{Width: Thumb16, Kind: SVC}
	case opcode&0xf000 == 0xd000:
		// format 16 - conditional branch (cond 0b1110 is the permanently
		// undefined encoding, UDF, rather than a fifteenth condition)
		if (opcode>>8)&0xf == 0b1110 {
			return Opcode{Width: Thumb16, Kind: UDF}
		}
		return Opcode{Width: Thumb16, Kind: B_COND}
	case opcode&0xf000 == 0xc000:
		// format 15 - load/store multiple
		if halfword.Bit(11, opcode) {
			return Opcode{Width: Thumb16, Kind: LDMIA}
		}
		return Opcode{Width: Thumb16, Kind: STMIA}
	case opcode&0xff00 == 0xbe00:
		return Opcode{Width: Thumb16, Kind: BKPT}
	case opcode&0xffc0 == 0xba00, opcode&0xffc0 == 0xba40, opcode&0xffc0 == 0xbac0:
		return Opcode{Width: Thumb16, Kind: decodeReverse(opcode)}
	case opcode&0xfe00 == 0xbc00:
		// format 14 - pop (R bit selects inclusion of PC)
		return Opcode{Width: Thumb16, Kind: POP}
	case opcode&0xfe00 == 0xb400:
		// format 14 - push (R bit selects inclusion of LR)
		return Opcode{Width: Thumb16, Kind: PUSH}
	case opcode&0xffe0 == 0xb660:
		return Opcode{Width: Thumb16, Kind: CPS}
	case opcode&0xffc0 == 0xb200, opcode&0xffc0 == 0xb240, opcode&0xffc0 == 0xb280, opcode&0xffc0 == 0xb2c0:
		return Opcode{Width: Thumb16, Kind: decodeExtend(opcode)}
	case opcode&0xff00 == 0xb000:
		// format 13 - add offset to SP
		if halfword.Bit(7, opcode) {
			return Opcode{Width: Thumb16, Kind: SUB_SP_IMM7}
		}
		return Opcode{Width: Thumb16, Kind: ADD_SP_IMM7}
	case opcode&0xf000 == 0xa000:
		// format 12 - load address
		if halfword.Bit(11, opcode) {
			return Opcode{Width: Thumb16, Kind: ADD_SP_IMM8}
		}
		return Opcode{Width: Thumb16, Kind: ADR}
	case opcode&0xf000 == 0x9000:
		// format 11 - SP-relative load/store
		if halfword.Bit(11, opcode) {
			return Opcode{Width: Thumb16, Kind: LDR_SP_IMM8}
		}
		return Opcode{Width: Thumb16, Kind: STR_SP_IMM8}
	case opcode&0xf000 == 0x8000:
		// format 10 - load/store halfword
		if halfword.Bit(11, opcode) {
			return Opcode{Width: Thumb16, Kind: LDRH_IMM5}
		}
		return Opcode{Width: Thumb16, Kind: STRH_IMM5}
	case opcode&0xe000 == 0x6000:
		// format 9 - load/store with immediate offset
		b := halfword.Bit(12, opcode)
		l := halfword.Bit(11, opcode)
		switch {
		case !b && !l:
			return Opcode{Width: Thumb16, Kind: STR_IMM5}
		case !b && l:
			return Opcode{Width: Thumb16, Kind: LDR_IMM5}
		case b && !l:
			return Opcode{Width: Thumb16, Kind: STRB_IMM5}
		default:
			return Opcode{Width: Thumb16, Kind: LDRB_IMM5}
		}
	case opcode&0xf200 == 0x5200:
		// format 8 - load/store sign-extended byte/halfword
		switch halfword.Bits(11, 10, opcode) {
		case 0b00:
			return Opcode{Width: Thumb16, Kind: STRH_REG}
		case 0b01:
			return Opcode{Width: Thumb16, Kind: LDRSB_REG}
		case 0b10:
			return Opcode{Width: Thumb16, Kind: LDRH_REG}
		default:
			return Opcode{Width: Thumb16, Kind: LDRSH_REG}
		}
	case opcode&0xf200 == 0x5000:
		// format 7 - load/store with register offset
		switch halfword.Bits(11, 10, opcode) {
		case 0b00:
			return Opcode{Width: Thumb16, Kind: STR_REG}
		case 0b01:
			return Opcode{Width: Thumb16, Kind: STRB_REG}
		case 0b10:
			return Opcode{Width: Thumb16, Kind: LDR_REG}
		default:
			return Opcode{Width: Thumb16, Kind: LDRB_REG}
		}
	case opcode&0xf800 == 0x4800:
		// format 6 - PC-relative load
		return Opcode{Width: Thumb16, Kind: LDR_LIT}
	case opcode&0xfc00 == 0x4400:
		// format 5 - special data instructions and branch exchange
		return Opcode{Width: Thumb16, Kind: decodeHiRegisterOps(opcode)}
	case opcode&0xfc00 == 0x4000:
		// format 4 - ALU operations
		return Opcode{Width: Thumb16, Kind: aluKinds[halfword.Bits(9, 6, opcode)]}
	case opcode&0xf800 == 0x1800:
		// format 2 - add/subtract
		immediate := halfword.Bit(10, opcode)
		subtract := halfword.Bit(9, opcode)
		switch {
		case !immediate && !subtract:
			return Opcode{Width: Thumb16, Kind: ADD_REG3}
		case !immediate && subtract:
			return Opcode{Width: Thumb16, Kind: SUB_REG3}
		case immediate && !subtract:
			return Opcode{Width: Thumb16, Kind: ADD_IMM3}
		default:
			return Opcode{Width: Thumb16, Kind: SUB_IMM3}
		}
	case opcode&0xe000 == 0x2000:
		// format 3 - move/compare/add/subtract immediate
		switch halfword.Bits(12, 11, opcode) {
		case 0b00:
			return Opcode{Width: Thumb16, Kind: MOV_IMM8}
		case 0b01:
			return Opcode{Width: Thumb16, Kind: CMP_IMM8}
		case 0b10:
			return Opcode{Width: Thumb16, Kind: ADD_IMM8}
		default:
			return Opcode{Width: Thumb16, Kind: SUB_IMM8}
		}
	case opcode&0xe000 == 0x0000:
		// format 1 - move shifted register (and the MOV_REGS_T2 alias when
		// op==LSL and shift==0 - the tie-break in spec.md: both constructors
		// match the same bit pattern and ARMv6-M names LSL_IMM #0 the MOV
		// alias, so the reserved-bits-match rule picks MOV_REGS_T2)
		op := halfword.Bits(12, 11, opcode)
		shift := halfword.Bits(10, 6, opcode)
		switch op {
		case 0b00:
			if shift == 0 {
				return Opcode{Width: Thumb16, Kind: MOV_REGS_T2}
			}
			return Opcode{Width: Thumb16, Kind: LSL_IMM}
		case 0b01:
			return Opcode{Width: Thumb16, Kind: LSR_IMM}
		case 0b10:
			return Opcode{Width: Thumb16, Kind: ASR_IMM}
		}
	}

	return Opcode{Width: Thumb16, Kind: UNDEFINED}
}

// aluKinds maps the 4bit sub-opcode of format 4 (bits 9..6) to its Kind, in
// the order given by "5.4 Format 4: ALU operations" of the ARM7TDMI data
// sheet (AND, EOR, LSL, LSR, ASR, ADC, SBC, ROR, TST, NEG, CMP, CMN, ORR,
// MUL, BIC, MVN).
var aluKinds = [16]Kind{
	AND_REG, EOR_REG, LSL_REG, LSR_REG,
	ASR_REG, ADC_REG, SBC_REG, ROR_REG,
	TST_REG, RSB_IMM, CMP_REG, CMN_REG,
	ORR_REG, MUL, BIC_REG, MVN_REG,
}

// decodeHiRegisterOps resolves format 5's op/H1/H2 bits into the specific
// special-data-processing or branch-exchange Kind.
func decodeHiRegisterOps(opcode uint32) Kind {
	op := halfword.Bits(9, 8, opcode)
	h1 := halfword.Bit(7, opcode)
	h2 := halfword.Bit(6, opcode)
	switch op {
	case 0b00:
		return ADD_REG_HI
	case 0b01:
		return CMP_REG_HI
	case 0b10:
		if !h1 && !h2 {
			// Rd and Rm both low registers: unpredictable in the manual,
			// but the bit pattern that would otherwise collide with
			// MOV_REGS_T2 only arises in format 1, so this is simply the
			// ordinary hi-register MOV
			return MOV_REGS_T1
		}
		return MOV_REGS_T1
	default: // 0b11
		if h1 {
			return BLX_REG
		}
		return BX
	}
}

func decodeHint(opcode uint32) (Kind, bool) {
	switch opcode & 0xff {
	case 0x00:
		return NOP, true
	case 0x10:
		return YIELD, true
	case 0x20:
		return WFE, true
	case 0x30:
		return WFI, true
	case 0x40:
		return SEV, true
	}
	return UNDEFINED, false
}

func decodeExtend(opcode uint32) Kind {
	switch opcode & 0xffc0 {
	case 0xb200:
		return SXTH
	case 0xb240:
		return SXTB
	case 0xb280:
		return UXTH
	default:
		return UXTB
	}
}

func decodeReverse(opcode uint32) Kind {
	switch opcode & 0xffc0 {
	case 0xba00:
		return REV
	case 0xba40:
		return REV16
	default:
		return REVSH
	}
}

// Decode32 classifies the ARMv6-M subset of 32bit Thumb-2 instructions: BL,
// the memory/instruction barriers DMB/DSB/ISB, and the special-register
// move instructions MRS/MSR, plus UDF_W for the "permanently undefined"
// 32bit form. Any other 32bit encoding decodes as UNDEFINED.
func Decode32(w halfword.Word) Opcode {
	hi := uint32(w) & 0xffff
	lo := (uint32(w) >> 16) & 0xffff

	if hi&0xf800 == 0xf000 && lo&0xd000 == 0xd000 {
		return Opcode{Width: Thumb32, Kind: BL}
	}

	if hi == 0xf3bf {
		switch lo & 0xfff0 {
		case 0x8f40:
			return Opcode{Width: Thumb32, Kind: DSB}
		case 0x8f50:
			return Opcode{Width: Thumb32, Kind: DMB}
		case 0x8f60:
			return Opcode{Width: Thumb32, Kind: ISB}
		}
	}

	if hi == 0xf3ef && lo&0xf000 == 0x8000 {
		return Opcode{Width: Thumb32, Kind: MRS}
	}
	if hi&0xfff0 == 0xf380 && lo&0xff00 == 0x8800 {
		return Opcode{Width: Thumb32, Kind: MSR}
	}
	if hi&0xfff0 == 0xf7f0 && lo&0xf000 == 0xa000 {
		return Opcode{Width: Thumb32, Kind: UDF_W}
	}

	return Opcode{Width: Thumb32, Kind: UNDEFINED}
}
