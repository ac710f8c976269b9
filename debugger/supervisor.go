// Package debugger implements the supervisor that owns the simulated
// machine: a single goroutine runs the fetch/decode/execute loop and
// drains a bounded command channel between instructions, so control never
// preempts mid-instruction the way the teacher's debugger coordinates with
// its VCS goroutine through govern.State and a command channel of its own.
package debugger

import (
	"sync"

	"github.com/m0sim/m0sim/cpu"
	"github.com/m0sim/m0sim/cpu/fault"
	"github.com/m0sim/m0sim/debugger/govern"
)

// CommandKind names one of the operations a client can ask the supervisor
// to perform.
type CommandKind int

const (
	CmdStep CommandKind = iota
	CmdContinue
	CmdHalt
	CmdReset
	CmdCreateBreakpoint
	CmdDeleteBreakpoint
	CmdClearBreakpoints
	CmdConnect
	CmdDisconnect
)

// Command is one request sent to the supervisor's command channel.
type Command struct {
	Kind CommandKind
	Addr uint32
}

// EventKind names one of the notifications the supervisor emits.
type EventKind int

const (
	EventHalted EventKind = iota
	EventSnapshot
)

// Event is one notification the supervisor emits on its event channel.
type Event struct {
	Kind     EventKind
	Reason   govern.HaltReason
	Fault    *fault.Fault
	Snapshot Snapshot
}

// Snapshot is an owned copy of the machine's externally-visible state -
// never a live reference, so a client holding one cannot observe or
// disturb the simulation goroutine's subsequent steps.
type Snapshot struct {
	Regs        cpu.Registers
	Status      cpu.Status
	Control     cpu.Control
	Mode        cpu.Mode
	State       govern.State
	Breakpoints []uint32
}

const channelCapacity = 16

// Supervisor owns an *cpu.Engine and mediates access to it through the
// Command/Event channel pair; the engine itself is never exposed to
// callers directly.
type Supervisor struct {
	mu          sync.Mutex
	engine      *cpu.Engine
	breakpoints *Breakpoints
	state       govern.State
	mode        govern.Mode

	commands chan Command
	events   chan Event

	done chan struct{}
}

// NewSupervisor wraps engine and starts its command-processing goroutine.
func NewSupervisor(engine *cpu.Engine) *Supervisor {
	s := &Supervisor{
		engine:      engine,
		breakpoints: NewBreakpoints(),
		state:       govern.Initialising,
		commands:    make(chan Command, channelCapacity),
		events:      make(chan Event, channelCapacity),
		done:        make(chan struct{}),
	}
	go s.loop()
	return s
}

// Commands returns the channel clients send Command values to.
func (s *Supervisor) Commands() chan<- Command { return s.commands }

// Events returns the channel clients receive Event values from.
func (s *Supervisor) Events() <-chan Event { return s.events }

// Stop terminates the supervisor's goroutine. Safe to call once.
func (s *Supervisor) Stop() { close(s.done) }

func (s *Supervisor) loop() {
	running := false
	for {
		if running {
			select {
			case cmd := <-s.commands:
				running = s.handle(cmd, running)
			case <-s.done:
				return
			default:
				running = s.runOne()
			}
			continue
		}

		select {
		case cmd := <-s.commands:
			running = s.handle(cmd, running)
		case <-s.done:
			return
		}
	}
}

// handle processes one client command and reports whether the supervisor
// should now be in its free-running loop. A breakpoint mutation received
// mid-Continue is applied without leaving the loop - only Halt and Reset
// end it, matching the poll step of Continue, which applies a breakpoint
// edit and keeps running.
func (s *Supervisor) handle(cmd Command, running bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch cmd.Kind {
	case CmdConnect:
		s.state = govern.Paused
		s.emitSnapshot()
		return false
	case CmdDisconnect:
		s.state = govern.Ending
		return false
	case CmdReset:
		s.engine.Reset()
		s.mode = govern.ModeNone
		s.state = govern.Paused
		s.emitSnapshot()
		return false
	case CmdCreateBreakpoint:
		s.breakpoints.Create(cmd.Addr)
		s.emitSnapshot()
		return running
	case CmdDeleteBreakpoint:
		s.breakpoints.Delete(cmd.Addr)
		s.emitSnapshot()
		return running
	case CmdClearBreakpoints:
		s.breakpoints.Clear()
		s.emitSnapshot()
		return running
	case CmdHalt:
		s.mode = govern.ModeNone
		s.state = govern.Paused
		s.emitHalted(govern.HaltUserCommand, nil)
		return false
	case CmdStep:
		s.mode = govern.ModeStepping
		s.state = govern.Stepping
		s.stepLocked()
		s.state = govern.Paused
		s.mode = govern.ModeNone
		return false
	case CmdContinue:
		s.state = govern.Running
		s.mode = govern.ModeRunning
		return true
	}
	return false
}

// runOne executes a single instruction while free-running, called with no
// lock held so a concurrent Halt command can interrupt between
// instructions - never mid-instruction, since Step itself is atomic.
func (s *Supervisor) runOne() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.breakpoints.Check(s.engine.Regs.PC) {
		s.state = govern.Paused
		s.emitHalted(govern.HaltBreakpoint, nil)
		return false
	}

	if f := s.engine.Step(); f != nil {
		s.engine.Enter(f)
		s.state = govern.Paused
		s.emitHalted(govern.HaltFault, f)
		return false
	}
	return true
}

func (s *Supervisor) stepLocked() {
	if f := s.engine.Step(); f != nil {
		s.engine.Enter(f)
		s.emitHalted(govern.HaltFault, f)
		return
	}
	s.emitSnapshot()
}

func (s *Supervisor) snapshot() Snapshot {
	return Snapshot{
		Regs:        s.engine.Regs.Snapshot(),
		Status:      s.engine.Status,
		Control:     s.engine.Control,
		Mode:        s.engine.Mode,
		State:       s.state,
		Breakpoints: s.breakpoints.List(),
	}
}

func (s *Supervisor) emitSnapshot() {
	select {
	case s.events <- Event{Kind: EventSnapshot, Snapshot: s.snapshot()}:
	default:
	}
}

func (s *Supervisor) emitHalted(reason govern.HaltReason, f *fault.Fault) {
	select {
	case s.events <- Event{Kind: EventHalted, Reason: reason, Fault: f, Snapshot: s.snapshot()}:
	default:
	}
}
