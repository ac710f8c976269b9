package errors

// Message templates, grouped by the subsystem that raises them.
const (
	// decode and execution
	UnimplementedInstruction = "unimplemented instruction (0x%04x)"
	UndefinedInstruction     = "undefined instruction at 0x%08x"
	UnalignedAccess          = "unaligned access at 0x%08x (size %d)"
	UnreadableAddress        = "unreadable address (0x%08x)"
	UnwritableAddress        = "unwritable address (0x%08x)"
	PrivilegeViolation       = "privileged access required at 0x%08x"

	// ELF loading
	ELFLoadError   = "elf load error: %v"
	ELFFormatError = "elf format error: %v"

	// debugger
	BreakpointError = "breakpoint error: %v"
	CommandError    = "debugger command error: %v"
	InvalidTarget   = "invalid target (%v)"

	// commandline
	ParserError     = "parser error: %v"
	ValidationError = "%v"
)
