package main

import (
	"fmt"
	"os"

	"github.com/m0sim/m0sim/cpu"
	"github.com/m0sim/m0sim/cpu/memmap"
	"github.com/m0sim/m0sim/debugger"
	"github.com/m0sim/m0sim/elfloader"
	"github.com/m0sim/m0sim/term"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "m0sim: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := term.ParseArgs(args)
	if err != nil {
		return err
	}

	img, err := elfloader.Load(cfg.ELFPath)
	if err != nil {
		return err
	}

	mem := memmap.New()
	for _, seg := range img.Segments {
		mem.LoadBytes(seg.Addr, seg.Data)
	}

	entryPoint := img.EntryPoint
	if cfg.HasEntry {
		entryPoint = cfg.EntryPoint
	}

	engine := cpu.New(mem, cfg.VTOR, cfg.SPResetVal, entryPoint)
	sup := debugger.NewSupervisor(engine)
	defer sup.Stop()

	repl := term.NewREPL(sup, os.Stdin, os.Stdout)
	if f, ok := os.Stdin.(*os.File); ok {
		if err := repl.EnterRawMode(f.Fd()); err == nil {
			defer repl.CleanUp()
		}
	}
	repl.Run()
	return nil
}
