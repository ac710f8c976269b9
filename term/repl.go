package term

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/term/termios"

	"github.com/m0sim/m0sim/debugger"
	"github.com/m0sim/m0sim/debugger/govern"
)

// REPL is a minimal line-oriented front end for a debugger.Supervisor: it
// reads one command per line, translates it into a debugger.Command, and
// prints the resulting debugger.Event. EnterRawMode puts the controlling
// terminal into raw mode for the duration of a session the way the
// teacher's EasyTerm does, restoring the original settings on CleanUp.
type REPL struct {
	in        io.Reader
	out       io.Writer
	sup       *debugger.Supervisor
	canonical syscall.Termios
	haveRaw   bool
	restoreFd uintptr
}

// NewREPL constructs a front end around sup, reading commands from in and
// writing output to out.
func NewREPL(sup *debugger.Supervisor, in io.Reader, out io.Writer) *REPL {
	return &REPL{sup: sup, in: in, out: out}
}

// EnterRawMode switches the terminal backing fd into raw mode (termios
// Cfmakeraw). Run reads whole newline-terminated lines either way. It is
// optional: Run also works over a plain pipe without it.
func (r *REPL) EnterRawMode(fd uintptr) error {
	if err := termios.Tcgetattr(fd, &r.canonical); err != nil {
		return fmt.Errorf("term: get attr: %w", err)
	}
	r.restoreFd = fd

	raw := r.canonical
	termios.Cfmakeraw(&raw)
	if err := termios.Tcsetattr(fd, termios.TCIFLUSH, &raw); err != nil {
		return fmt.Errorf("term: set raw attr: %w", err)
	}
	r.haveRaw = true
	return nil
}

// CleanUp restores the terminal's original mode, if EnterRawMode was used.
func (r *REPL) CleanUp() {
	if !r.haveRaw {
		return
	}
	_ = termios.Tcsetattr(r.restoreFd, termios.TCIFLUSH, &r.canonical)
	r.haveRaw = false
}

// Run reads commands until the input is exhausted or a "quit" command is
// seen, printing each resulting event.
func (r *REPL) Run() {
	scanner := bufio.NewScanner(r.in)
	r.sup.Commands() <- debugger.Command{Kind: debugger.CmdConnect}
	r.drainEvents()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, quit := r.parse(line)
		if quit {
			r.sup.Commands() <- debugger.Command{Kind: debugger.CmdDisconnect}
			return
		}
		r.sup.Commands() <- cmd
		r.drainEvents()
	}
}

func (r *REPL) parse(line string) (debugger.Command, bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "step", "s":
		return debugger.Command{Kind: debugger.CmdStep}, false
	case "continue", "c":
		return debugger.Command{Kind: debugger.CmdContinue}, false
	case "halt":
		return debugger.Command{Kind: debugger.CmdHalt}, false
	case "reset":
		return debugger.Command{Kind: debugger.CmdReset}, false
	case "break", "b":
		addr := parseAddr(fields)
		return debugger.Command{Kind: debugger.CmdCreateBreakpoint, Addr: addr}, false
	case "delete":
		addr := parseAddr(fields)
		return debugger.Command{Kind: debugger.CmdDeleteBreakpoint, Addr: addr}, false
	case "clear":
		return debugger.Command{Kind: debugger.CmdClearBreakpoints}, false
	case "quit", "q":
		return debugger.Command{}, true
	default:
		fmt.Fprintf(r.out, "unrecognised command: %s\n", fields[0])
		return debugger.Command{Kind: debugger.CmdHalt}, false
	}
}

func parseAddr(fields []string) uint32 {
	if len(fields) < 2 {
		return 0
	}
	s := strings.TrimPrefix(strings.TrimPrefix(fields[1], "0x"), "0X")
	v, _ := strconv.ParseUint(s, 16, 32)
	return uint32(v)
}

// drainEvents blocks for the one reply every command issued from Run
// eventually produces - a snapshot for step/connect/reset/breakpoint edits,
// or a halt once a free-running continue stops.
func (r *REPL) drainEvents() {
	ev := <-r.sup.Events()
	r.print(ev)
}

func (r *REPL) print(ev debugger.Event) {
	switch ev.Kind {
	case debugger.EventHalted:
		if ev.Reason == govern.HaltFault && ev.Fault != nil {
			fmt.Fprintf(r.out, "halted: %s\n", ev.Fault.Error())
		} else {
			fmt.Fprintf(r.out, "halted: %s\n", ev.Reason)
		}
	case debugger.EventSnapshot:
		fmt.Fprintf(r.out, "pc=0x%08x %s\n", ev.Snapshot.Regs.PC, ev.Snapshot.Status)
	}
}
