package cpu

// Register indices for the general-purpose file, following the manual's
// R0..R12, SP, LR, PC numbering. SP (r13) is an alias resolved at access
// time against the two banked stack pointers; it is never stored directly
// in General.
const (
	R0 = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	R12
	SP
	LR
	PC
	NumRegisters
)

// Registers is the full banked register file: thirteen general-purpose
// registers, the link register, the program counter, and the two stack
// pointers a Cortex-M0 class core banks behind the SP alias - sp_main is
// always used in Handler mode and in Thread mode when CONTROL.SPSEL is
// clear; sp_process is used in Thread mode when CONTROL.SPSEL is set.
type Registers struct {
	General   [13]uint32
	LR        uint32
	PC        uint32
	SPMain    uint32
	SPProcess uint32
}

// Get reads register index n (0..15), resolving the SP alias against the
// current mode and CONTROL register.
func (r *Registers) Get(n uint8, mode Mode, control Control) uint32 {
	switch n {
	case SP:
		return r.currentSP(mode, control)
	case LR:
		return r.LR
	case PC:
		return r.PC
	default:
		return r.General[n]
	}
}

// Set writes register index n, resolving the SP alias the same way Get does.
func (r *Registers) Set(n uint8, mode Mode, control Control, value uint32) {
	switch n {
	case SP:
		r.setCurrentSP(mode, control, value)
	case LR:
		r.LR = value
	case PC:
		r.PC = value
	default:
		r.General[n] = value
	}
}

func (r *Registers) currentSP(mode Mode, control Control) uint32 {
	if mode == Thread && control.SPSel {
		return r.SPProcess
	}
	return r.SPMain
}

func (r *Registers) setCurrentSP(mode Mode, control Control, value uint32) {
	if mode == Thread && control.SPSel {
		r.SPProcess = value
		return
	}
	r.SPMain = value
}

// PCOffset computes the value of PC an executing instruction observes: the
// address of the current instruction plus 4, word-aligned, per the
// classic ARM pipeline convention that Thumb retains even without a
// visible fetch/decode/execute pipeline.
func PCOffset(currentPC uint32) uint32 {
	return (currentPC + 4) &^ 3
}

// Snapshot returns an independent copy of the register file - a consumer
// of a snapshot (the debugger's event stream) must never be able to observe
// or mutate live simulator state through it.
func (r Registers) Snapshot() Registers {
	return r
}
