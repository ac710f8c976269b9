package debugger

import (
	"testing"
	"time"

	"github.com/m0sim/m0sim/cpu"
	"github.com/m0sim/m0sim/cpu/memmap"
	"github.com/m0sim/m0sim/debugger/govern"
)

func newTestSupervisor(t *testing.T, code []uint16) *Supervisor {
	t.Helper()
	mem := memmap.New()
	for i, hw := range code {
		addr := uint32(i * 2)
		mem.WriteByte(addr, byte(hw))
		mem.WriteByte(addr+1, byte(hw>>8))
	}
	engine := cpu.New(mem, 0, 0x20001000, 0)
	return NewSupervisor(engine)
}

func waitForEvent(t *testing.T, s *Supervisor) Event {
	t.Helper()
	select {
	case ev := <-s.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for supervisor event")
		return Event{}
	}
}

func TestBreakpointHaltsContinue(t *testing.T) {
	// 0: MOVS r0,#1 ; 2: MOVS r1,#2 ; 4: MOVS r2,#3 (breakpoint here)
	s := newTestSupervisor(t, []uint16{0x2001, 0x2102, 0x2203})
	defer s.Stop()

	s.Commands() <- Command{Kind: CmdConnect}
	waitForEvent(t, s)

	s.Commands() <- Command{Kind: CmdCreateBreakpoint, Addr: 4}
	waitForEvent(t, s) // snapshot emitted after the breakpoint is created

	s.Commands() <- Command{Kind: CmdContinue}

	ev := waitForEvent(t, s)
	if ev.Kind != EventHalted {
		t.Fatalf("got event kind %v, want EventHalted", ev.Kind)
	}
	if ev.Reason != govern.HaltBreakpoint {
		t.Fatalf("got halt reason %s, want breakpoint", ev.Reason)
	}
	if ev.Snapshot.Regs.PC != 4 {
		t.Fatalf("pc = 0x%x, want 0x4 (breakpoint address)", ev.Snapshot.Regs.PC)
	}
}

func TestStepAdvancesOneInstruction(t *testing.T) {
	s := newTestSupervisor(t, []uint16{0x2005, 0x2103})
	defer s.Stop()

	s.Commands() <- Command{Kind: CmdConnect}
	waitForEvent(t, s)

	s.Commands() <- Command{Kind: CmdStep}
	ev := waitForEvent(t, s)
	if ev.Snapshot.Regs.PC != 2 {
		t.Fatalf("pc after one step = 0x%x, want 0x2", ev.Snapshot.Regs.PC)
	}
}

func TestBreakpointMutationDuringContinueDoesNotHaltFreeRun(t *testing.T) {
	// A countdown loop: 0: MOVS r0,#200 ; 2: SUBS r0,r0,#1 ; 4: BNE loop -
	// after which execution runs on through zero-filled memory, where 0x0000
	// decodes as MOVS r0,r0, visiting every even address in turn.
	s := newTestSupervisor(t, []uint16{0x20c8, 0x3801, 0xd1fd})
	defer s.Stop()

	s.Commands() <- Command{Kind: CmdConnect}
	waitForEvent(t, s)

	s.Commands() <- Command{Kind: CmdContinue}

	// A breakpoint at an address never reached by this program (an odd
	// address, which PC never holds) must be applied without ending the
	// free run - only Halt or Reset may do that.
	s.Commands() <- Command{Kind: CmdCreateBreakpoint, Addr: 0x1001}
	waitForEvent(t, s) // snapshot emitted for the mutation itself

	s.Commands() <- Command{Kind: CmdHalt}
	ev := waitForEvent(t, s)
	if ev.Kind != EventHalted || ev.Reason != govern.HaltUserCommand {
		t.Fatalf("got %+v, want an EventHalted/HaltUserCommand (free run must still be in progress)", ev)
	}
}

func TestResetReloadsFromVectorTable(t *testing.T) {
	s := newTestSupervisor(t, []uint16{0x2001})
	defer s.Stop()

	s.Commands() <- Command{Kind: CmdReset}
	ev := waitForEvent(t, s)
	if ev.Snapshot.Regs.PC != 0 {
		t.Fatalf("after reset with an empty vector table, pc = 0x%x, want 0", ev.Snapshot.Regs.PC)
	}
}
