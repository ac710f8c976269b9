package term

import "testing"

func TestParseArgsDefaults(t *testing.T) {
	cfg, err := ParseArgs([]string{"firmware.elf"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ELFPath != "firmware.elf" {
		t.Fatalf("got ELFPath %q, want firmware.elf", cfg.ELFPath)
	}
	if cfg.HasEntry {
		t.Fatal("HasEntry should be false when --entry_point was not supplied")
	}
}

func TestParseArgsHexWithAndWithoutPrefix(t *testing.T) {
	cfg, err := ParseArgs([]string{"--vtor=0x1000", "--sp-reset-val=20000400", "firmware.elf"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.VTOR != 0x1000 {
		t.Fatalf("VTOR = 0x%x, want 0x1000", cfg.VTOR)
	}
	if cfg.SPResetVal != 0x20000400 {
		t.Fatalf("SPResetVal = 0x%x, want 0x20000400", cfg.SPResetVal)
	}
}

func TestParseArgsEntryPointMasksBit0(t *testing.T) {
	cfg, err := ParseArgs([]string{"--entry_point=0x101", "firmware.elf"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.HasEntry {
		t.Fatal("HasEntry should be true when --entry_point was supplied")
	}
	if cfg.EntryPoint != 0x100 {
		t.Fatalf("EntryPoint = 0x%x, want 0x100 (bit 0 masked)", cfg.EntryPoint)
	}
}

func TestParseArgsRequiresExactlyOnePositionalArg(t *testing.T) {
	if _, err := ParseArgs([]string{}); err == nil {
		t.Fatal("expected an error with no ELF path given")
	}
	if _, err := ParseArgs([]string{"a.elf", "b.elf"}); err == nil {
		t.Fatal("expected an error with two positional args")
	}
}
