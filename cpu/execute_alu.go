package cpu

import (
	"github.com/m0sim/m0sim/cpu/fault"
	"github.com/m0sim/m0sim/thumb"
	"github.com/m0sim/m0sim/thumb/arith"
)

func isALUKind(k thumb.Kind) bool {
	switch k {
	case thumb.LSL_IMM, thumb.LSR_IMM, thumb.ASR_IMM, thumb.MOV_REGS_T2,
		thumb.ADD_REG3, thumb.SUB_REG3, thumb.ADD_IMM3, thumb.SUB_IMM3,
		thumb.MOV_IMM8, thumb.CMP_IMM8, thumb.ADD_IMM8, thumb.SUB_IMM8,
		thumb.AND_REG, thumb.EOR_REG, thumb.LSL_REG, thumb.LSR_REG, thumb.ASR_REG,
		thumb.ADC_REG, thumb.SBC_REG, thumb.ROR_REG, thumb.TST_REG, thumb.RSB_IMM,
		thumb.CMP_REG, thumb.CMN_REG, thumb.ORR_REG, thumb.MUL, thumb.BIC_REG, thumb.MVN_REG,
		thumb.ADD_REG_HI, thumb.CMP_REG_HI, thumb.MOV_REGS_T1,
		thumb.SXTH, thumb.SXTB, thumb.UXTH, thumb.UXTB,
		thumb.REV, thumb.REV16, thumb.REVSH:
		return true
	}
	return false
}

func (e *Engine) executeALU(f fetched) *fault.Fault {
	o := f.ops
	switch f.op.Kind {
	case thumb.LSL_IMM:
		v := e.reg(o.Rm)
		r := arith.LSL(v, uint(o.Imm.Value), e.carryIn())
		e.setReg(o.Rd, r.Value)
		e.Status.SetNZ(r.Value)
		e.Status.Carry = r.Carry
	case thumb.LSR_IMM:
		v := e.reg(o.Rm)
		r := arith.LSR(v, uint(o.Imm.Value), e.carryIn())
		e.setReg(o.Rd, r.Value)
		e.Status.SetNZ(r.Value)
		e.Status.Carry = r.Carry
	case thumb.ASR_IMM:
		v := e.reg(o.Rm)
		r := arith.ASR(v, uint(o.Imm.Value), e.carryIn())
		e.setReg(o.Rd, r.Value)
		e.Status.SetNZ(r.Value)
		e.Status.Carry = r.Carry
	case thumb.MOV_REGS_T2:
		v := e.reg(o.Rm)
		e.setReg(o.Rd, v)
		e.Status.SetNZ(v)

	case thumb.ADD_REG3:
		a, b := e.reg(o.Rn), e.reg(o.Rm)
		res, c, v := arith.AddWithCarry(a, b, false)
		e.setReg(o.Rd, res)
		e.Status.SetNZCV(res, c, v)
	case thumb.SUB_REG3:
		a, b := e.reg(o.Rn), e.reg(o.Rm)
		res, c, v := arith.Sub(a, b)
		e.setReg(o.Rd, res)
		e.Status.SetNZCV(res, c, v)
	case thumb.ADD_IMM3:
		a := e.reg(o.Rn)
		res, c, v := arith.AddWithCarry(a, o.Imm.Value, false)
		e.setReg(o.Rd, res)
		e.Status.SetNZCV(res, c, v)
	case thumb.SUB_IMM3:
		a := e.reg(o.Rn)
		res, c, v := arith.Sub(a, o.Imm.Value)
		e.setReg(o.Rd, res)
		e.Status.SetNZCV(res, c, v)

	case thumb.MOV_IMM8:
		e.setReg(o.Rd, o.Imm.Value)
		e.Status.SetNZ(o.Imm.Value)
	case thumb.CMP_IMM8:
		a := e.reg(o.Rd)
		res, c, v := arith.Sub(a, o.Imm.Value)
		e.Status.SetNZCV(res, c, v)
	case thumb.ADD_IMM8:
		a := e.reg(o.Rd)
		res, c, v := arith.AddWithCarry(a, o.Imm.Value, false)
		e.setReg(o.Rd, res)
		e.Status.SetNZCV(res, c, v)
	case thumb.SUB_IMM8:
		a := e.reg(o.Rd)
		res, c, v := arith.Sub(a, o.Imm.Value)
		e.setReg(o.Rd, res)
		e.Status.SetNZCV(res, c, v)

	case thumb.AND_REG:
		res := e.reg(o.Rd) & e.reg(o.Rm)
		e.setReg(o.Rd, res)
		e.Status.SetNZ(res)
	case thumb.EOR_REG:
		res := e.reg(o.Rd) ^ e.reg(o.Rm)
		e.setReg(o.Rd, res)
		e.Status.SetNZ(res)
	case thumb.LSL_REG:
		r := arith.LSL(e.reg(o.Rd), uint(e.reg(o.Rm)&0xff), e.carryIn())
		e.setReg(o.Rd, r.Value)
		e.Status.SetNZ(r.Value)
		e.Status.Carry = r.Carry
	case thumb.LSR_REG:
		// only the immediate form reads a shift of 0 as 32; a register
		// shift of 0 leaves the value and carry as they are
		r := arith.ShiftResult{Value: e.reg(o.Rd), Carry: e.carryIn()}
		if amount := uint(e.reg(o.Rm) & 0xff); amount != 0 {
			r = arith.LSR(e.reg(o.Rd), amount, e.carryIn())
		}
		e.setReg(o.Rd, r.Value)
		e.Status.SetNZ(r.Value)
		e.Status.Carry = r.Carry
	case thumb.ASR_REG:
		r := arith.ShiftResult{Value: e.reg(o.Rd), Carry: e.carryIn()}
		if amount := uint(e.reg(o.Rm) & 0xff); amount != 0 {
			r = arith.ASR(e.reg(o.Rd), amount, e.carryIn())
		}
		e.setReg(o.Rd, r.Value)
		e.Status.SetNZ(r.Value)
		e.Status.Carry = r.Carry
	case thumb.ADC_REG:
		res, c, v := arith.AddWithCarry(e.reg(o.Rd), e.reg(o.Rm), e.carryIn())
		e.setReg(o.Rd, res)
		e.Status.SetNZCV(res, c, v)
	case thumb.SBC_REG:
		res, c, v := arith.AddWithCarry(e.reg(o.Rd), ^e.reg(o.Rm), e.carryIn())
		e.setReg(o.Rd, res)
		e.Status.SetNZCV(res, c, v)
	case thumb.ROR_REG:
		r := arith.ROR(e.reg(o.Rd), uint(e.reg(o.Rm)&0xff), e.carryIn())
		e.setReg(o.Rd, r.Value)
		e.Status.SetNZ(r.Value)
		e.Status.Carry = r.Carry
	case thumb.TST_REG:
		res := e.reg(o.Rd) & e.reg(o.Rm)
		e.Status.SetNZ(res)
	case thumb.RSB_IMM:
		res, c, v := arith.Sub(0, e.reg(o.Rm))
		e.setReg(o.Rd, res)
		e.Status.SetNZCV(res, c, v)
	case thumb.CMP_REG:
		res, c, v := arith.Sub(e.reg(o.Rd), e.reg(o.Rm))
		e.Status.SetNZCV(res, c, v)
	case thumb.CMN_REG:
		res, c, v := arith.AddWithCarry(e.reg(o.Rd), e.reg(o.Rm), false)
		e.Status.SetNZCV(res, c, v)
	case thumb.ORR_REG:
		res := e.reg(o.Rd) | e.reg(o.Rm)
		e.setReg(o.Rd, res)
		e.Status.SetNZ(res)
	case thumb.MUL:
		res := arith.Mul(e.reg(o.Rd), e.reg(o.Rm))
		e.setReg(o.Rd, res)
		e.Status.SetNZ(res)
	case thumb.BIC_REG:
		res := e.reg(o.Rd) &^ e.reg(o.Rm)
		e.setReg(o.Rd, res)
		e.Status.SetNZ(res)
	case thumb.MVN_REG:
		res := ^e.reg(o.Rm)
		e.setReg(o.Rd, res)
		e.Status.SetNZ(res)

	case thumb.ADD_REG_HI:
		res, _, _ := arith.AddWithCarry(e.reg(o.Rd), e.reg(o.Rm), false)
		if o.Rd == PC {
			res &^= 1
			e.pcRedirected = true
		}
		e.setReg(o.Rd, res)
	case thumb.CMP_REG_HI:
		res, c, v := arith.Sub(e.reg(o.Rd), e.reg(o.Rm))
		e.Status.SetNZCV(res, c, v)
	case thumb.MOV_REGS_T1:
		v := e.reg(o.Rm)
		if o.Rd == PC {
			v &^= 1
			e.pcRedirected = true
		}
		e.setReg(o.Rd, v)

	case thumb.SXTH:
		e.setReg(o.Rd, uint32(int32(int16(e.reg(o.Rm)))))
	case thumb.SXTB:
		e.setReg(o.Rd, uint32(int32(int8(e.reg(o.Rm)))))
	case thumb.UXTH:
		e.setReg(o.Rd, e.reg(o.Rm)&0xffff)
	case thumb.UXTB:
		e.setReg(o.Rd, e.reg(o.Rm)&0xff)
	case thumb.REV:
		v := e.reg(o.Rm)
		e.setReg(o.Rd, v>>24|(v>>8)&0xff00|(v<<8)&0xff0000|v<<24)
	case thumb.REV16:
		v := e.reg(o.Rm)
		lo := v & 0xffff
		hi := v >> 16
		swap := func(h uint32) uint32 { return h>>8 | (h<<8)&0xff00 }
		e.setReg(o.Rd, swap(hi)<<16|swap(lo))
	case thumb.REVSH:
		v := e.reg(o.Rm)
		b0 := v & 0xff
		b1 := (v >> 8) & 0xff
		swapped := uint16(b0<<8 | b1)
		e.setReg(o.Rd, uint32(int32(int16(swapped))))
	}
	return nil
}
