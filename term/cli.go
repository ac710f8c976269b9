// Package term provides the command-line surface and the minimal
// interactive front end: flag parsing grounded on the teacher's own
// flag.NewFlagSet usage, and a raw-mode REPL built on
// github.com/pkg/term/termios the way the teacher's easyterm package is
// built on it. The full GUI front end (pane layout, memory-view widgets)
// is an external collaborator this module does not implement.
package term

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/m0sim/m0sim/config"
)

// Config holds the parsed command-line configuration for a simulation run:
// the ELF path plus the reset parameters the machine is constructed from,
// seeded with config.NewResetConfig's defaults and overridden field by
// field by whichever flags the user supplied.
type Config struct {
	ELFPath string
	config.ResetConfig
}

// ParseArgs parses args (normally os.Args[1:]) the way the reference
// implementation's parse_args does: one positional ELF path argument, plus
// --sp-reset-val=, --vtor= and --entry_point= flags accepting hex with or
// without a leading 0x.
func ParseArgs(args []string) (Config, error) {
	fs := flag.NewFlagSet("m0sim", flag.ContinueOnError)

	var spResetVal, vtor, entryPoint string
	fs.StringVar(&spResetVal, "sp-reset-val", "", "initial stack pointer value (hex)")
	fs.StringVar(&vtor, "vtor", "", "vector table offset (hex)")
	fs.StringVar(&entryPoint, "entry_point", "", "override entry point (hex)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	positional := fs.Args()
	if len(positional) != 1 {
		return Config{}, fmt.Errorf("expected exactly one ELF file argument, got %d", len(positional))
	}

	cfg := Config{ELFPath: positional[0], ResetConfig: config.NewResetConfig()}

	if spResetVal != "" {
		v, err := parseHex(spResetVal)
		if err != nil {
			return Config{}, fmt.Errorf("--sp-reset-val: %w", err)
		}
		cfg.SPResetVal = v
	}
	if vtor != "" {
		v, err := parseHex(vtor)
		if err != nil {
			return Config{}, fmt.Errorf("--vtor: %w", err)
		}
		cfg.VTOR = v
	}
	if entryPoint != "" {
		v, err := parseHex(entryPoint)
		if err != nil {
			return Config{}, fmt.Errorf("--entry_point: %w", err)
		}
		// entry points always target Thumb code; the override's bit 0 is
		// masked exactly as a decoded BX/BLX target would be.
		cfg.EntryPoint = v &^ 1
		cfg.HasEntry = true
	}

	return cfg, nil
}

func parseHex(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
