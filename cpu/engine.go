// Package cpu implements the ARMv6-M register file, status flags, memory
// map wiring and the instruction execution engine built on top of the
// thumb decoder/extractor and thumb/arith primitives.
//
// Step follows the teacher's run() loop shape - fetch, decode, dispatch,
// with fault handling ready to escalate into an exception (the breakpoint
// check ahead of execution lives in the debugger supervisor, not in Step) -
// but the dispatch itself is rewritten around
// the thumb.Opcode/Operands tagged-union pair rather than the teacher's
// decodeFunction closures. Execute methods mutate engine state directly for
// simplicity, but Step snapshots the register file (and a byte-level
// journal of every memory write) beforehand and rolls both back if the
// instruction faults, so a faulting instruction is never observable: either
// it commits in full, or it leaves no trace at all.
package cpu

import (
	"github.com/m0sim/m0sim/cpu/fault"
	"github.com/m0sim/m0sim/cpu/memmap"
	"github.com/m0sim/m0sim/halfword"
	"github.com/m0sim/m0sim/logger"
	"github.com/m0sim/m0sim/thumb"
)

// Engine is the complete simulated machine state: registers, flags, mode,
// the memory map, and the bookkeeping exception entry needs.
type Engine struct {
	Regs    Registers
	Status  Status
	Control Control
	Mode    Mode
	IPSR    uint32

	VTOR uint32
	Mem  *memmap.Memory

	Log *logger.Logger

	// pcRedirected is set by any execute path that explicitly assigns a new
	// PC (a taken branch, BX, POP with PC in its list, a hi-register
	// move/add targeting PC) so Step knows not to additionally advance PC
	// by the instruction's size once execution completes.
	pcRedirected bool
	// executingPC is the address of the instruction currently executing,
	// used by reg() to honour the "PC reads as pc+4, word-aligned"
	// convention for instructions that take PC as a source register.
	executingPC uint32
	// journal records the previous value of every byte written during the
	// instruction currently executing, in order, so Step can undo them if
	// the instruction ultimately faults.
	journal []byteWrite
}

type byteWrite struct {
	addr uint32
	old  byte
}

// New constructs an Engine with sp_main/sp_process both seeded from
// spReset and the program counter set from entryPoint with bit 0 (the
// Thumb interworking bit every code address carries) masked off.
func New(mem *memmap.Memory, vtor, spReset, entryPoint uint32) *Engine {
	e := &Engine{
		Mode: Thread,
		VTOR: vtor,
		Mem:  mem,
		Log:  logger.NewLogger(1024),
	}
	e.Regs.SPMain = spReset
	e.Regs.SPProcess = spReset
	e.Regs.PC = entryPoint &^ 1
	return e
}

// Reset reloads SP and PC from the vector table at VTOR, as a real
// Cortex-M0 reset sequence does, then clears flags and CONTROL.
func (e *Engine) Reset() {
	sp := e.readWord(e.VTOR)
	pc := e.readWord(e.VTOR + 4)
	e.Regs.SPMain = sp
	e.Regs.SPProcess = sp
	e.Regs.PC = pc &^ 1
	e.Status.reset()
	e.Control = Control{}
	e.Mode = Thread
	e.IPSR = 0
}

func (e *Engine) readWord(addr uint32) uint32 {
	b := e.Mem.ReadBytes(addr, 4)
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// writeWord and writeHalf are the journaled write path: every byte they
// touch is recorded with its prior value first, so Step can undo them if
// the instruction making the write goes on to fault.
func (e *Engine) writeWord(addr, v uint32) {
	e.memWriteByte(addr, byte(v))
	e.memWriteByte(addr+1, byte(v>>8))
	e.memWriteByte(addr+2, byte(v>>16))
	e.memWriteByte(addr+3, byte(v>>24))
}

func (e *Engine) readHalf(addr uint32) uint16 {
	b := e.Mem.ReadBytes(addr, 2)
	return uint16(b[0]) | uint16(b[1])<<8
}

func (e *Engine) writeHalf(addr uint32, v uint16) {
	e.memWriteByte(addr, byte(v))
	e.memWriteByte(addr+1, byte(v>>8))
}

func (e *Engine) memWriteByte(addr uint32, v byte) {
	e.journal = append(e.journal, byteWrite{addr: addr, old: e.Mem.ReadByte(addr)})
	e.Mem.WriteByte(addr, v)
}

// fetched is the raw bytes and decoded shape of the instruction at the
// current PC, staged ahead of commit.
type fetched struct {
	pc   uint32
	size int
	op   thumb.Opcode
	ops  thumb.Operands
}

func (e *Engine) fetch() (fetched, *fault.Fault) {
	pc := e.Regs.PC
	perm := memmap.Permissions(pc)
	if !perm.Execute {
		return fetched{}, fault.New(fault.HardFault, pc, "fetch from non-executable address")
	}

	lo := halfword.HalfWord(e.readHalf(pc))
	size := thumb.InstructionSize(lo)
	if size == 16 {
		op := thumb.Decode16(lo)
		raw := []byte{byte(lo), byte(lo >> 8)}
		ops, _ := thumb.ExtractOperands(op, raw)
		return fetched{pc: pc, size: 2, op: op, ops: ops}, nil
	}

	hi := halfword.HalfWord(e.readHalf(pc + 2))
	op := thumb.Decode32(halfword.WordFromHalfWords(lo, hi))
	raw := []byte{byte(lo), byte(lo >> 8), byte(hi), byte(hi >> 8)}
	ops, _ := thumb.ExtractOperands(op, raw)
	return fetched{pc: pc, size: 4, op: op, ops: ops}, nil
}

// Step fetches, decodes and executes exactly one instruction, advancing PC
// unless the instruction itself redirected it (a taken branch, BL, BX, a
// POP that reloads PC). Every instruction is a transaction: register file,
// flags and memory mutations made while executing it are rolled back in
// full if it returns a Fault, so a faulting instruction is never
// observable. The caller (typically the debugger supervisor) is
// responsible for deciding whether to push the machine into Handler mode
// via Enter once a Fault comes back.
func (e *Engine) Step() *fault.Fault {
	f, ferr := e.fetch()
	if ferr != nil {
		return ferr
	}

	if f.op.Kind == thumb.UNDEFINED {
		return fault.New(fault.UndefinedInstruction, f.pc, "")
	}

	regsBefore := e.Regs
	statusBefore := e.Status
	controlBefore := e.Control
	modeBefore := e.Mode
	ipsrBefore := e.IPSR
	journalMark := len(e.journal)

	e.pcRedirected = false
	e.executingPC = f.pc

	if ferr := e.execute(f); ferr != nil {
		e.rollback(regsBefore, statusBefore, controlBefore, modeBefore, ipsrBefore, journalMark)
		return ferr
	}

	if !e.pcRedirected {
		e.Regs.PC = f.pc + uint32(f.size)
	}
	e.journal = e.journal[:journalMark]
	return nil
}

// rollback restores the register file, flags and every journaled memory
// write made since journalMark, undoing everything a faulting instruction
// did before it faulted.
func (e *Engine) rollback(regs Registers, status Status, control Control, mode Mode, ipsr uint32, journalMark int) {
	for i := len(e.journal) - 1; i >= journalMark; i-- {
		w := e.journal[i]
		e.Mem.WriteByte(w.addr, w.old)
	}
	e.journal = e.journal[:journalMark]
	e.Regs = regs
	e.Status = status
	e.Control = control
	e.Mode = mode
	e.IPSR = ipsr
}

// reg reads register n, honouring the "PC reads as the current instruction
// address plus 4, word-aligned" convention real Thumb code relies on when
// it takes PC as a source operand (ADD/MOV/BX with Rm=pc).
func (e *Engine) reg(n uint8) uint32 {
	if n == PC {
		return e.pc4(e.executingPC)
	}
	return e.Regs.Get(n, e.Mode, e.Control)
}

func (e *Engine) setReg(n uint8, v uint32) { e.Regs.Set(n, e.Mode, e.Control, v) }

// pc4 returns the PC-relative base an instruction at faultPC observes:
// (pc+4) with bit 1:0 cleared.
func (e *Engine) pc4(faultPC uint32) uint32 {
	return PCOffset(faultPC)
}

// Enter pushes the machine into Handler mode for the given fault, following
// the ARMv6-M exception entry sequence: the eight-register exception frame
// (R0-R3, R12, LR, return PC, xPSR) is pushed to the current stack, LR is
// set to the appropriate EXC_RETURN value, IPSR takes the exception number,
// and PC is loaded from the vector table.
func (e *Engine) Enter(f *fault.Fault) {
	frameSP := e.reg(SP) - 32
	e.pushFrame(frameSP, f.PC)
	e.setReg(SP, frameSP)

	excReturn := uint32(0xfffffff9) // return to Thread mode, sp_main
	if e.Mode == Handler {
		excReturn = 0xfffffff1 // return to Handler mode, sp_main
	} else if e.Control.SPSel {
		excReturn = 0xfffffffd
	}
	e.Regs.LR = excReturn

	e.Mode = Handler
	e.IPSR = f.Kind.ExceptionNumber()
	vector := e.VTOR + 4*e.IPSR
	e.Regs.PC = e.readWord(vector) &^ 1

	e.Log.Logf(logger.Allow, "exception", "entered %s, vector 0x%08x -> pc 0x%08x", f.Kind, vector, e.Regs.PC)
}

// pushFrame writes the exception frame directly, bypassing the journaled
// write path: Enter runs after Step has already committed or rolled back
// the faulting instruction, so its writes are never themselves subject to
// being undone by a later Step.
func (e *Engine) pushFrame(sp, returnPC uint32) {
	rawWriteWord := func(addr, v uint32) {
		e.Mem.WriteByte(addr, byte(v))
		e.Mem.WriteByte(addr+1, byte(v>>8))
		e.Mem.WriteByte(addr+2, byte(v>>16))
		e.Mem.WriteByte(addr+3, byte(v>>24))
	}
	rawWriteWord(sp+0, e.reg(0))
	rawWriteWord(sp+4, e.reg(1))
	rawWriteWord(sp+8, e.reg(2))
	rawWriteWord(sp+12, e.reg(3))
	rawWriteWord(sp+16, e.reg(12))
	rawWriteWord(sp+20, e.Regs.LR)
	rawWriteWord(sp+24, returnPC)
	rawWriteWord(sp+28, e.Status.APSR()|1<<24|e.IPSR) // T bit always set
}

// execute dispatches a fetched instruction by Kind. Load/store and
// data-processing helpers live in their own files grouped by format family,
// matching how the teacher splits decodeThumb* across format-named
// functions - here split across execute_alu.go/execute_mem.go/
// execute_branch.go/execute_misc.go instead, one file per concern.
func (e *Engine) execute(f fetched) *fault.Fault {
	switch {
	case isALUKind(f.op.Kind):
		return e.executeALU(f)
	case isMemKind(f.op.Kind):
		return e.executeMem(f)
	case isBranchKind(f.op.Kind):
		return e.executeBranch(f)
	default:
		return e.executeMisc(f)
	}
}

// carryIn reads the current carry flag, the shared input every
// shift-with-flags operation needs.
func (e *Engine) carryIn() bool { return e.Status.Carry }
