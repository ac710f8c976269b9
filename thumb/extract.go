package thumb

import "github.com/m0sim/m0sim/halfword"

// ExtractOperands pulls the typed Operands out of the raw bytes an Opcode
// was decoded from. raw holds exactly Opcode.Size() bytes, least significant
// half-word first. The bool result is false only for UNDEFINED and for
// 32bit Kinds ExtractOperands does not yet know how to unpack; callers
// should treat a false result as "operands not meaningful", not an error -
// decode/extract never fails outright.
func ExtractOperands(op Opcode, raw []byte) (Operands, bool) {
	if op.Width == Thumb32 {
		return extract32(op, raw)
	}
	return extract16(op, raw)
}

func extract16(op Opcode, raw []byte) (Operands, bool) {
	hw := uint32(halfword.FromBytes(raw[0], raw[1]))

	switch op.Kind {
	case LSL_IMM, LSR_IMM, ASR_IMM:
		return Operands{
			Shape: ShapeRegImm5,
			Rd:    reg(hw, 0),
			Rm:    reg(hw, 3),
			Imm:   halfword.NewImm(5, halfword.Bits(10, 6, hw)),
		}, true

	case MOV_REGS_T2:
		return Operands{Shape: ShapeRegPair, Rd: reg(hw, 0), Rm: reg(hw, 3)}, true

	case ADD_REG3, SUB_REG3:
		return Operands{
			Shape: ShapeRegTriplet,
			Rd:    reg(hw, 0),
			Rn:    reg(hw, 3),
			Rm:    reg(hw, 6),
		}, true

	case ADD_IMM3, SUB_IMM3:
		return Operands{
			Shape: ShapeRegImm3,
			Rd:    reg(hw, 0),
			Rn:    reg(hw, 3),
			Imm:   halfword.NewImm(3, halfword.Bits(8, 6, hw)),
		}, true

	case MOV_IMM8, CMP_IMM8, ADD_IMM8, SUB_IMM8:
		return Operands{
			Shape: ShapeRegImm8,
			Rd:    uint8(halfword.Bits(10, 8, hw)),
			Imm:   halfword.NewImm(8, halfword.Bits(7, 0, hw)),
		}, true

	case AND_REG, EOR_REG, LSL_REG, LSR_REG, ASR_REG, ADC_REG, SBC_REG, ROR_REG,
		TST_REG, RSB_IMM, CMP_REG, CMN_REG, ORR_REG, MUL, BIC_REG, MVN_REG:
		return Operands{Shape: ShapeRegPair, Rd: reg(hw, 0), Rm: reg(hw, 3)}, true

	case ADD_REG_HI, CMP_REG_HI, MOV_REGS_T1:
		rdLow := reg(hw, 0)
		rm := uint8(halfword.Bits(6, 3, hw))
		h1 := halfword.Bit(7, hw)
		rd := rdLow
		if h1 {
			rd += 8
		}
		return Operands{Shape: ShapeRegPair, Rd: rd, Rm: rm}, true

	case BX, BLX_REG:
		rm := uint8(halfword.Bits(6, 3, hw))
		return Operands{Shape: ShapeRegPair, Rm: rm}, true

	case LDR_LIT:
		imm := halfword.Bits(7, 0, hw) << 2
		return Operands{
			Shape: ShapePCRelative,
			Rd:    uint8(halfword.Bits(10, 8, hw)),
			Imm:   halfword.NewImm(10, imm),
		}, true

	case STR_REG, STRB_REG, LDR_REG, LDRB_REG, STRH_REG, LDRSB_REG, LDRH_REG, LDRSH_REG:
		return Operands{
			Shape: ShapeTwoRegReg,
			Rd:    reg(hw, 0),
			Rn:    reg(hw, 3),
			Rm:    reg(hw, 6),
		}, true

	case STR_IMM5, LDR_IMM5:
		imm := halfword.Bits(10, 6, hw) << 2
		return Operands{
			Shape: ShapeTwoRegImm,
			Rd:    reg(hw, 0),
			Rn:    reg(hw, 3),
			Imm:   halfword.NewImm(7, imm),
		}, true

	case STRB_IMM5, LDRB_IMM5:
		return Operands{
			Shape: ShapeTwoRegImm,
			Rd:    reg(hw, 0),
			Rn:    reg(hw, 3),
			Imm:   halfword.NewImm(5, halfword.Bits(10, 6, hw)),
		}, true

	case STRH_IMM5, LDRH_IMM5:
		imm := halfword.Bits(10, 6, hw) << 1
		return Operands{
			Shape: ShapeTwoRegImm,
			Rd:    reg(hw, 0),
			Rn:    reg(hw, 3),
			Imm:   halfword.NewImm(6, imm),
		}, true

	case STR_SP_IMM8, LDR_SP_IMM8:
		imm := halfword.Bits(7, 0, hw) << 2
		return Operands{
			Shape: ShapeSPRelative,
			Rd:    uint8(halfword.Bits(10, 8, hw)),
			Imm:   halfword.NewImm(10, imm),
		}, true

	case ADR:
		imm := halfword.Bits(7, 0, hw) << 2
		return Operands{
			Shape: ShapePCRelative,
			Rd:    uint8(halfword.Bits(10, 8, hw)),
			Imm:   halfword.NewImm(10, imm),
		}, true

	case ADD_SP_IMM8:
		imm := halfword.Bits(7, 0, hw) << 2
		return Operands{
			Shape: ShapeSPRelative,
			Rd:    uint8(halfword.Bits(10, 8, hw)),
			Imm:   halfword.NewImm(10, imm),
		}, true

	case ADD_SP_IMM7, SUB_SP_IMM7:
		imm := halfword.Bits(6, 0, hw) << 2
		return Operands{Shape: ShapeRegImm7, Imm: halfword.NewImm(9, imm)}, true

	case SXTH, SXTB, UXTH, UXTB, REV, REV16, REVSH:
		return Operands{Shape: ShapeRegPair, Rd: reg(hw, 0), Rm: reg(hw, 3)}, true

	case PUSH:
		list := halfword.Bits(7, 0, hw)
		if halfword.Bit(8, hw) {
			list |= 1 << 14 // LR
		}
		return Operands{Shape: ShapeRegList, RegList: uint16(list)}, true

	case POP:
		list := halfword.Bits(7, 0, hw)
		if halfword.Bit(8, hw) {
			list |= 1 << 15 // PC
		}
		return Operands{Shape: ShapeRegList, RegList: uint16(list)}, true

	case CPS:
		return Operands{Shape: ShapeCPS, InterruptEnable: halfword.Bit(4, hw)}, true

	case BKPT:
		return Operands{Shape: ShapeImm8Only, Imm: halfword.NewImm(8, halfword.Bits(7, 0, hw))}, true

	case NOP, YIELD, WFE, WFI, SEV:
		return Operands{Shape: ShapeNoFields}, true

	case STMIA, LDMIA:
		return Operands{
			Shape:   ShapeRegList,
			Rn:      uint8(halfword.Bits(10, 8, hw)),
			RegList: uint16(halfword.Bits(7, 0, hw)),
		}, true

	case B_COND:
		offset := halfword.SignExtend(halfword.Bits(7, 0, hw), 8) * 2
		return Operands{
			Shape: ShapeCondBranch,
			Cond:  uint8(halfword.Bits(11, 8, hw)),
			Offset: offset,
		}, true

	case SVC:
		return Operands{Shape: ShapeImm8Only, Imm: halfword.NewImm(8, halfword.Bits(7, 0, hw))}, true

	case B:
		offset := halfword.SignExtend(halfword.Bits(10, 0, hw), 11) * 2
		return Operands{Shape: ShapeBranchOffset, Offset: offset}, true

	case UDF:
		return Operands{Shape: ShapeImm8Only, Imm: halfword.NewImm(8, halfword.Bits(7, 0, hw))}, true
	}

	return Operands{}, false
}

// reg extracts a 3bit low-register field starting at bit shift.
func reg(hw uint32, shift uint) uint8 {
	return uint8(halfword.Bits(shift+2, shift, hw))
}

func extract32(op Opcode, raw []byte) (Operands, bool) {
	hi := uint32(halfword.FromBytes(raw[0], raw[1]))
	lo := uint32(halfword.FromBytes(raw[2], raw[3]))

	switch op.Kind {
	case BL:
		s := halfword.Bit(10, hi)
		j1 := halfword.Bit(13, lo)
		j2 := halfword.Bit(11, lo)
		imm10 := halfword.Bits(9, 0, hi)
		imm11 := halfword.Bits(10, 0, lo)

		i1 := boolToBit(!(j1 != s)) // I1 = NOT(J1 XOR S)
		i2 := boolToBit(!(j2 != s))

		imm32 := (imm10 << 12) | (imm11 << 1)
		imm32 |= i2 << 22
		imm32 |= i1 << 23
		if s {
			imm32 |= 0xff << 24
		}
		return Operands{Shape: ShapeBranchOffset, Offset: int32(imm32)}, true

	case DMB, DSB, ISB:
		return Operands{Shape: ShapeNoFields}, true

	case MRS:
		return Operands{
			Shape:   ShapeSpecialReg,
			Rd:      uint8(halfword.Bits(11, 8, lo)),
			SpecReg: uint8(halfword.Bits(7, 0, lo)),
		}, true

	case MSR:
		return Operands{
			Shape:   ShapeSpecialReg,
			Rn:      uint8(halfword.Bits(3, 0, hi)),
			SpecReg: uint8(halfword.Bits(7, 0, lo)),
		}, true

	case UDF_W:
		imm4 := halfword.Bits(3, 0, hi)
		imm12 := halfword.Bits(11, 0, lo)
		return Operands{Shape: ShapeImm8Only, Imm: halfword.NewImm(16, imm4<<12|imm12)}, true
	}

	return Operands{}, false
}

func boolToBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
