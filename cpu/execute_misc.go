package cpu

import (
	"github.com/m0sim/m0sim/cpu/fault"
	"github.com/m0sim/m0sim/logger"
	"github.com/m0sim/m0sim/thumb"
)

// Special-register selectors for MRS/MSR, as numbered in the ARMv6-M
// architecture manual's "sysm" encoding table.
const (
	sysmAPSR     = 0
	sysmIPSR     = 5
	sysmEPSR     = 6
	sysmMSP      = 8
	sysmPSP      = 9
	sysmPRIMASK  = 16
	sysmCONTROL  = 20
)

func (e *Engine) executeMisc(f fetched) *fault.Fault {
	o := f.ops
	switch f.op.Kind {
	case thumb.ADR:
		e.setReg(o.Rd, e.pc4(f.pc)+o.Imm.Value)
	case thumb.ADD_SP_IMM8:
		e.setReg(o.Rd, e.reg(SP)+o.Imm.Value)
	case thumb.ADD_SP_IMM7:
		e.setReg(SP, e.reg(SP)+o.Imm.Value)
	case thumb.SUB_SP_IMM7:
		e.setReg(SP, e.reg(SP)-o.Imm.Value)

	case thumb.CPS:
		// PRIMASK is not otherwise modelled as interrupts are out of scope;
		// CPS is accepted and retimed as a no-op so code that executes it
		// (commonly in startup sequences) does not fault.
		_ = o.InterruptEnable

	case thumb.BKPT:
		e.Log.Logf(logger.Allow, "bkpt", "immediate 0x%02x at 0x%08x", o.Imm.Value, f.pc)
		return fault.New(fault.HardFault, f.pc, "BKPT")

	case thumb.NOP, thumb.YIELD, thumb.WFE, thumb.WFI, thumb.SEV:
		// hints: no architectural effect in this simulator, which has no
		// event register or low-power states to influence.

	case thumb.DMB, thumb.DSB, thumb.ISB:
		// single-core, in-order model: these barriers have nothing to
		// order, so they execute as no-ops.

	case thumb.MRS:
		e.setReg(o.Rd, e.readSpecialReg(o.SpecReg))
	case thumb.MSR:
		e.writeSpecialReg(o.SpecReg, e.reg(o.Rn))
	}
	return nil
}

func (e *Engine) readSpecialReg(sysm uint8) uint32 {
	switch sysm {
	case sysmAPSR:
		return e.Status.APSR()
	case sysmIPSR:
		return e.IPSR
	case sysmEPSR:
		return 1 << 24 // T-bit always set: this simulator is Thumb-only
	case sysmMSP:
		return e.Regs.SPMain
	case sysmPSP:
		return e.Regs.SPProcess
	case sysmPRIMASK:
		return 0
	case sysmCONTROL:
		return e.Control.Value()
	default:
		return 0
	}
}

func (e *Engine) writeSpecialReg(sysm uint8, v uint32) {
	if !Privileged(e.Mode, e.Control) {
		return // privileged writes silently ignored in unprivileged Thread mode
	}
	switch sysm {
	case sysmAPSR:
		e.Status.SetAPSR(v)
	case sysmMSP:
		e.Regs.SPMain = v
	case sysmPSP:
		e.Regs.SPProcess = v
	case sysmCONTROL:
		e.Control.SetValue(v)
	}
}
