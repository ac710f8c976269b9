package cpu

import (
	"github.com/m0sim/m0sim/cpu/fault"
	"github.com/m0sim/m0sim/cpu/memmap"
	"github.com/m0sim/m0sim/errors"
	"github.com/m0sim/m0sim/thumb"
)

func isMemKind(k thumb.Kind) bool {
	switch k {
	case thumb.LDR_LIT,
		thumb.STR_REG, thumb.STRB_REG, thumb.LDR_REG, thumb.LDRB_REG,
		thumb.STRH_REG, thumb.LDRSB_REG, thumb.LDRH_REG, thumb.LDRSH_REG,
		thumb.STR_IMM5, thumb.LDR_IMM5, thumb.STRB_IMM5, thumb.LDRB_IMM5,
		thumb.STRH_IMM5, thumb.LDRH_IMM5,
		thumb.STR_SP_IMM8, thumb.LDR_SP_IMM8,
		thumb.PUSH, thumb.POP, thumb.STMIA, thumb.LDMIA:
		return true
	}
	return false
}

func (e *Engine) checkAccess(addr uint32, write bool) *fault.Fault {
	perm := memmap.Permissions(addr)
	if write && !perm.Write {
		return fault.New(fault.HardFault, e.Regs.PC, errors.Errorf(errors.UnwritableAddress, addr).Error())
	}
	if !write && !perm.Read {
		return fault.New(fault.HardFault, e.Regs.PC, errors.Errorf(errors.UnreadableAddress, addr).Error())
	}
	if perm.Privilege && !Privileged(e.Mode, e.Control) {
		return fault.New(fault.HardFault, e.Regs.PC, errors.Errorf(errors.PrivilegeViolation, addr).Error())
	}
	return nil
}

func (e *Engine) checkAlign(addr, size uint32) *fault.Fault {
	if memmap.Unaligned(addr, size) {
		return fault.New(fault.HardFault, e.Regs.PC, errors.Errorf(errors.UnalignedAccess, addr, size).Error())
	}
	return nil
}

func (e *Engine) executeMem(f fetched) *fault.Fault {
	o := f.ops
	switch f.op.Kind {
	case thumb.LDR_LIT:
		addr := e.pc4(f.pc) + o.Imm.Value
		if ferr := e.checkAccess(addr, false); ferr != nil {
			return ferr
		}
		e.setReg(o.Rd, e.readWord(addr))

	case thumb.STR_REG:
		addr := e.reg(o.Rn) + e.reg(o.Rm)
		if ferr := e.storeWord(addr, e.reg(o.Rd)); ferr != nil {
			return ferr
		}
	case thumb.STRB_REG:
		addr := e.reg(o.Rn) + e.reg(o.Rm)
		if ferr := e.storeByte(addr, byte(e.reg(o.Rd))); ferr != nil {
			return ferr
		}
	case thumb.LDR_REG:
		addr := e.reg(o.Rn) + e.reg(o.Rm)
		v, ferr := e.loadWord(addr)
		if ferr != nil {
			return ferr
		}
		e.setReg(o.Rd, v)
	case thumb.LDRB_REG:
		addr := e.reg(o.Rn) + e.reg(o.Rm)
		v, ferr := e.loadByte(addr)
		if ferr != nil {
			return ferr
		}
		e.setReg(o.Rd, uint32(v))
	case thumb.STRH_REG:
		addr := e.reg(o.Rn) + e.reg(o.Rm)
		if ferr := e.storeHalf(addr, uint16(e.reg(o.Rd))); ferr != nil {
			return ferr
		}
	case thumb.LDRSB_REG:
		addr := e.reg(o.Rn) + e.reg(o.Rm)
		v, ferr := e.loadByte(addr)
		if ferr != nil {
			return ferr
		}
		e.setReg(o.Rd, uint32(int32(int8(v))))
	case thumb.LDRH_REG:
		addr := e.reg(o.Rn) + e.reg(o.Rm)
		v, ferr := e.loadHalf(addr)
		if ferr != nil {
			return ferr
		}
		e.setReg(o.Rd, uint32(v))
	case thumb.LDRSH_REG:
		addr := e.reg(o.Rn) + e.reg(o.Rm)
		v, ferr := e.loadHalf(addr)
		if ferr != nil {
			return ferr
		}
		e.setReg(o.Rd, uint32(int32(int16(v))))

	case thumb.STR_IMM5:
		addr := e.reg(o.Rn) + o.Imm.Value
		if ferr := e.storeWord(addr, e.reg(o.Rd)); ferr != nil {
			return ferr
		}
	case thumb.LDR_IMM5:
		addr := e.reg(o.Rn) + o.Imm.Value
		v, ferr := e.loadWord(addr)
		if ferr != nil {
			return ferr
		}
		e.setReg(o.Rd, v)
	case thumb.STRB_IMM5:
		addr := e.reg(o.Rn) + o.Imm.Value
		if ferr := e.storeByte(addr, byte(e.reg(o.Rd))); ferr != nil {
			return ferr
		}
	case thumb.LDRB_IMM5:
		addr := e.reg(o.Rn) + o.Imm.Value
		v, ferr := e.loadByte(addr)
		if ferr != nil {
			return ferr
		}
		e.setReg(o.Rd, uint32(v))
	case thumb.STRH_IMM5:
		addr := e.reg(o.Rn) + o.Imm.Value
		if ferr := e.storeHalf(addr, uint16(e.reg(o.Rd))); ferr != nil {
			return ferr
		}
	case thumb.LDRH_IMM5:
		addr := e.reg(o.Rn) + o.Imm.Value
		v, ferr := e.loadHalf(addr)
		if ferr != nil {
			return ferr
		}
		e.setReg(o.Rd, uint32(v))

	case thumb.STR_SP_IMM8:
		addr := e.reg(SP) + o.Imm.Value
		if ferr := e.storeWord(addr, e.reg(o.Rd)); ferr != nil {
			return ferr
		}
	case thumb.LDR_SP_IMM8:
		addr := e.reg(SP) + o.Imm.Value
		v, ferr := e.loadWord(addr)
		if ferr != nil {
			return ferr
		}
		e.setReg(o.Rd, v)

	case thumb.PUSH:
		return e.push(o.RegList)
	case thumb.POP:
		return e.pop(o.RegList)
	case thumb.STMIA:
		return e.stmia(o.Rn, o.RegList)
	case thumb.LDMIA:
		return e.ldmia(o.Rn, o.RegList)
	}
	return nil
}

func (e *Engine) loadWord(addr uint32) (uint32, *fault.Fault) {
	if ferr := e.checkAlign(addr, 4); ferr != nil {
		return 0, ferr
	}
	if ferr := e.checkAccess(addr, false); ferr != nil {
		return 0, ferr
	}
	return e.readWord(addr), nil
}

func (e *Engine) storeWord(addr, v uint32) *fault.Fault {
	if ferr := e.checkAlign(addr, 4); ferr != nil {
		return ferr
	}
	if ferr := e.checkAccess(addr, true); ferr != nil {
		return ferr
	}
	e.writeWord(addr, v)
	return nil
}

func (e *Engine) loadHalf(addr uint32) (uint16, *fault.Fault) {
	if ferr := e.checkAlign(addr, 2); ferr != nil {
		return 0, ferr
	}
	if ferr := e.checkAccess(addr, false); ferr != nil {
		return 0, ferr
	}
	return e.readHalf(addr), nil
}

func (e *Engine) storeHalf(addr uint32, v uint16) *fault.Fault {
	if ferr := e.checkAlign(addr, 2); ferr != nil {
		return ferr
	}
	if ferr := e.checkAccess(addr, true); ferr != nil {
		return ferr
	}
	e.writeHalf(addr, v)
	return nil
}

func (e *Engine) loadByte(addr uint32) (byte, *fault.Fault) {
	if ferr := e.checkAccess(addr, false); ferr != nil {
		return 0, ferr
	}
	return e.Mem.ReadByte(addr), nil
}

func (e *Engine) storeByte(addr uint32, v byte) *fault.Fault {
	if ferr := e.checkAccess(addr, true); ferr != nil {
		return ferr
	}
	e.memWriteByte(addr, v)
	return nil
}

// push lowers SP by four bytes per register named in list (plus LR if bit
// 14 is set) and stores them in ascending register-number order at
// increasing addresses starting from the new SP, then updates SP - a "full
// descending" stack.
func (e *Engine) push(list uint16) *fault.Fault {
	count := popcount(list)
	sp := e.reg(SP) - uint32(count)*4
	addr := sp
	for r := uint8(0); r < 15; r++ {
		if list&(1<<r) == 0 {
			continue
		}
		var v uint32
		if r == 14 {
			v = e.Regs.LR
		} else {
			v = e.reg(r)
		}
		if ferr := e.storeWord(addr, v); ferr != nil {
			return ferr
		}
		addr += 4
	}
	e.setReg(SP, sp)
	return nil
}

// pop loads registers in ascending order starting at SP (plus PC if bit 15
// is set, masking bit 0 to honour Thumb interworking), then updates SP.
func (e *Engine) pop(list uint16) *fault.Fault {
	addr := e.reg(SP)
	count := popcount(list)
	for r := uint8(0); r < 16; r++ {
		if list&(1<<r) == 0 {
			continue
		}
		v, ferr := e.loadWord(addr)
		if ferr != nil {
			return ferr
		}
		if r == 15 {
			e.Regs.PC = v &^ 1
			e.pcRedirected = true
		} else {
			e.setReg(r, v)
		}
		addr += 4
	}
	e.setReg(SP, e.reg(SP)+uint32(count)*4)
	return nil
}

func (e *Engine) stmia(rn uint8, list uint16) *fault.Fault {
	addr := e.reg(rn)
	for r := uint8(0); r < 8; r++ {
		if list&(1<<r) == 0 {
			continue
		}
		if ferr := e.storeWord(addr, e.reg(r)); ferr != nil {
			return ferr
		}
		addr += 4
	}
	e.setReg(rn, addr)
	return nil
}

func (e *Engine) ldmia(rn uint8, list uint16) *fault.Fault {
	addr := e.reg(rn)
	writeback := list&(1<<rn) == 0
	for r := uint8(0); r < 8; r++ {
		if list&(1<<r) == 0 {
			continue
		}
		v, ferr := e.loadWord(addr)
		if ferr != nil {
			return ferr
		}
		e.setReg(r, v)
		addr += 4
	}
	if writeback {
		e.setReg(rn, addr)
	}
	return nil
}

func popcount(v uint16) int {
	n := 0
	for v != 0 {
		n += int(v & 1)
		v >>= 1
	}
	return n
}
