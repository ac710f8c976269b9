package cpu

import (
	"testing"

	"github.com/m0sim/m0sim/cpu/fault"
	"github.com/m0sim/m0sim/cpu/memmap"
)

func newTestEngine(code []uint16) *Engine {
	mem := memmap.New()
	for i, hw := range code {
		addr := uint32(i * 2)
		mem.WriteByte(addr, byte(hw))
		mem.WriteByte(addr+1, byte(hw>>8))
	}
	// SRAM region (top bits 001) gives a stack pointer with read/write
	// permission distinct from the code region.
	return New(mem, 0, 0x20001000, 0)
}

func stepN(t *testing.T, e *Engine, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if f := e.Step(); f != nil {
			t.Fatalf("step %d: unexpected fault: %v", i, f)
		}
	}
}

func TestAddRegisterScenario(t *testing.T) {
	// MOVS r0,#5 ; MOVS r1,#3 ; ADDS r2,r0,r1
	e := newTestEngine([]uint16{0x2005, 0x2103, 0x1842})
	stepN(t, e, 3)

	if got := e.reg(2); got != 8 {
		t.Fatalf("r2 = %d, want 8", got)
	}
	if e.Status.Zero || e.Status.Negative {
		t.Fatalf("unexpected flags after 5+3: %s", e.Status)
	}
}

func TestMultiplyScenario(t *testing.T) {
	// MOVS r0,#6 ; MOVS r1,#7 ; MULS r0,r1
	e := newTestEngine([]uint16{0x2006, 0x2107, 0x4348})
	stepN(t, e, 3)

	if got := e.reg(0); got != 42 {
		t.Fatalf("r0 = %d, want 42", got)
	}
}

func TestCompareThenBranchScenario(t *testing.T) {
	// 0: MOVS r0,#5
	// 2: MOVS r1,#10
	// 4: CMP  r0,r1
	// 6: BLT  +4 (skips the next instruction)
	// 8: MOVS r2,#99   <- skipped
	// a: MOVS r3,#1    <- branch target
	e := newTestEngine([]uint16{0x2005, 0x210a, 0x4288, 0xdb00, 0x2263, 0x2301})
	stepN(t, e, 4)

	if !e.Status.Negative || e.Status.Overflow {
		t.Fatalf("unexpected flags after CMP 5,10: %s", e.Status)
	}
	if got := e.reg(2); got != 0 {
		t.Fatalf("r2 = %d, want 0 (BLT should have skipped its assignment)", got)
	}
	stepN(t, e, 1)
	if got := e.reg(3); got != 1 {
		t.Fatalf("r3 = %d, want 1", got)
	}
}

func TestCountdownLoopScenario(t *testing.T) {
	// 0: MOVS r0,#3
	// 2: SUBS r0,r0,#1   (loop)
	// 4: BNE  loop
	e := newTestEngine([]uint16{0x2003, 0x3801, 0xd1fd})
	stepN(t, e, 1) // MOVS r0,#3

	for i := 0; i < 3; i++ {
		stepN(t, e, 1) // SUBS
		f := e.Step()  // BNE
		if f != nil {
			t.Fatalf("iteration %d: unexpected fault: %v", i, f)
		}
	}

	if got := e.reg(0); got != 0 {
		t.Fatalf("r0 = %d, want 0 after loop", got)
	}
	if !e.Status.Zero {
		t.Fatal("expected Z set after final SUBS reaches 0")
	}
	if e.Regs.PC != 6 {
		t.Fatalf("pc = 0x%x, want 0x6 (loop exited on final BNE not-taken)", e.Regs.PC)
	}
}

func TestUnalignedLoadFaults(t *testing.T) {
	// LDR r0, [r1, #0] with r1 deliberately misaligned
	e := newTestEngine([]uint16{0x6808})
	e.setReg(1, 0x20000001) // SRAM region, misaligned by 1
	e.setReg(0, 0xdeadbeef)
	f := e.Step()
	if f == nil {
		t.Fatal("expected a fault for an unaligned word load")
	}
	if f.Kind != fault.HardFault {
		t.Fatalf("got fault kind %s, want HardFault", f.Kind)
	}
	if e.Regs.PC != 0 {
		t.Fatalf("pc = 0x%x, want 0 (a faulting instruction must not advance pc)", e.Regs.PC)
	}
	if e.reg(0) != 0xdeadbeef {
		t.Fatalf("r0 = 0x%x, want unchanged 0xdeadbeef (no register is modified on fault)", e.reg(0))
	}
}

func TestPopFaultLeavesRegistersAndMemoryUntouched(t *testing.T) {
	// POP {r2,r3} with an sp deliberately misaligned by 1: the first word
	// load already faults, and the instruction must leave no trace -
	// neither the destination registers nor sp itself may change.
	e := newTestEngine([]uint16{0xbc0c})
	const sp = 0x20001001
	e.Regs.SPMain = sp
	e.setReg(2, 0xaaaaaaaa)
	e.setReg(3, 0xbbbbbbbb)
	before := e.Mem.ReadBytes(sp&^3, 16)

	f := e.Step()
	if f == nil {
		t.Fatal("expected a fault for a POP with a misaligned sp")
	}
	if e.reg(2) != 0xaaaaaaaa || e.reg(3) != 0xbbbbbbbb {
		t.Fatalf("registers changed on a faulting POP: r2=0x%x r3=0x%x", e.reg(2), e.reg(3))
	}
	if e.reg(SP) != sp {
		t.Fatalf("sp = 0x%x, want unchanged 0x%x (no register is modified on fault)", e.reg(SP), sp)
	}
	after := e.Mem.ReadBytes(sp&^3, 16)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("byte at offset %d changed: a faulting POP must leave no memory mutation", i)
		}
	}
}

// TestJournalRollbackUndoesEarlierWrites exercises Step's rollback plumbing
// directly: push() (used by PUSH, through the same storeWord path STMIA
// uses) writes several words before the register-list loop
// finishes, and if a later write in the same call faulted, every earlier
// one in the same instruction must be undone. The ARMv6-M default
// permission map makes every address in a fixed 4-byte stride equally
// aligned and equally permissioned, so a real multi-register Thumb
// instruction can no longer be driven into a genuine partial failure -
// this test drives the rollback mechanism itself the way push's own
// sequence of storeWord calls does, by journaling writes and then invoking
// Step's rollback helper exactly as a faulting Step would.
func TestJournalRollbackUndoesEarlierWrites(t *testing.T) {
	e := newTestEngine(nil)
	const base = 0x20000100
	before := e.Mem.ReadBytes(base, 12)

	regsBefore := e.Regs
	statusBefore := e.Status
	controlBefore := e.Control
	modeBefore := e.Mode
	ipsrBefore := e.IPSR
	journalMark := len(e.journal)

	e.writeWord(base, 0x11111111)
	e.writeWord(base+4, 0x22222222)
	e.setReg(0, 0xdeadbeef)
	e.rollback(regsBefore, statusBefore, controlBefore, modeBefore, ipsrBefore, journalMark)

	after := e.Mem.ReadBytes(base, 12)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("byte at offset %d changed: rollback must undo every journaled write", i)
		}
	}
	if e.reg(0) != 0 {
		t.Fatalf("r0 = 0x%x, want 0 (rollback must restore the register file too)", e.reg(0))
	}
}

func TestPushPopRoundtrip(t *testing.T) {
	// PUSH {r0, r1} ; POP {r2, r3}
	e := newTestEngine([]uint16{0xb403, 0xbc0c})
	e.setReg(0, 0x11111111)
	e.setReg(1, 0x22222222)
	e.Regs.SPMain = 0x20002000
	stepN(t, e, 2)

	if e.reg(2) != 0x11111111 || e.reg(3) != 0x22222222 {
		t.Fatalf("push/pop roundtrip mismatch: r2=0x%x r3=0x%x", e.reg(2), e.reg(3))
	}
	if e.reg(SP) != 0x20002000 {
		t.Fatalf("sp = 0x%x, want restored to 0x20002000", e.reg(SP))
	}
}
