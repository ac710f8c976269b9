package cpu

import (
	"github.com/m0sim/m0sim/cpu/fault"
	"github.com/m0sim/m0sim/thumb"
)

func isBranchKind(k thumb.Kind) bool {
	switch k {
	case thumb.B, thumb.B_COND, thumb.BL, thumb.BX, thumb.BLX_REG,
		thumb.SVC, thumb.UDF, thumb.UDF_W:
		return true
	}
	return false
}

func (e *Engine) executeBranch(f fetched) *fault.Fault {
	o := f.ops
	switch f.op.Kind {
	case thumb.B:
		e.Regs.PC = uint32(int64(f.pc) + 4 + int64(o.Offset))
		e.pcRedirected = true

	case thumb.B_COND:
		if e.Status.Condition(o.Cond) {
			e.Regs.PC = uint32(int64(f.pc) + 4 + int64(o.Offset))
			e.pcRedirected = true
		}

	case thumb.BL:
		retAddr := f.pc + uint32(f.op.Size())
		e.Regs.LR = retAddr | 1
		e.Regs.PC = uint32(int64(f.pc) + 4 + int64(o.Offset))
		e.pcRedirected = true

	case thumb.BX:
		target := e.reg(o.Rm)
		e.Regs.PC = target &^ 1
		e.pcRedirected = true

	case thumb.BLX_REG:
		target := e.reg(o.Rm)
		retAddr := f.pc + uint32(f.op.Size())
		e.Regs.LR = retAddr | 1
		e.Regs.PC = target &^ 1
		e.pcRedirected = true

	case thumb.SVC:
		return fault.New(fault.SVCall, f.pc, "")

	case thumb.UDF, thumb.UDF_W:
		return fault.New(fault.UndefinedInstruction, f.pc, "UDF")
	}
	return nil
}
