// Package disasm renders decoded Thumb instructions as the labelled,
// address-prefixed text a debugger front end or batch disassembly command
// presents to a human. The Entry type mirrors the shape of the teacher's
// DisasmEntry (address, raw opcode, mnemonic, operand text, byte size) cut
// down to what this simulator actually tracks - no cycle counts or MAMCR,
// since this machine has no memory-wait-state model to report on.
package disasm

import (
	"fmt"
	"strings"

	"github.com/m0sim/m0sim/cpu"
	"github.com/m0sim/m0sim/halfword"
	"github.com/m0sim/m0sim/thumb"
)

// Entry is one disassembled instruction.
type Entry struct {
	Addr     uint32
	Raw      uint32
	Is32bit  bool
	Label    string
	Mnemonic string
	Operand  string
}

// Key returns the address formatted as the disassembly's stable line key.
func (e Entry) Key() string {
	return fmt.Sprintf("0x%08x", e.Addr)
}

func (e Entry) String() string {
	var b strings.Builder
	if e.Label != "" {
		fmt.Fprintf(&b, "%s:\n", e.Label)
	}
	width := 4
	if e.Is32bit {
		width = 8
	}
	fmt.Fprintf(&b, "%08x:\t%0*x\t%s", e.Addr, width, e.Raw, e.Mnemonic)
	if e.Operand != "" {
		fmt.Fprintf(&b, " %s", e.Operand)
	}
	return b.String()
}

// SymbolLookup resolves an address to a label, satisfied by
// *elfloader.Image.SymbolAt.
type SymbolLookup func(addr uint32) (string, bool)

// One decodes a single instruction at addr out of mem and renders it.
func One(addr uint32, read func(uint32) byte, lookup SymbolLookup) Entry {
	lo := halfword.FromBytes(read(addr), read(addr+1))
	size := thumb.InstructionSize(lo)

	var op thumb.Opcode
	var raw []byte
	var rawWord uint32

	if size == 16 {
		op = thumb.Decode16(lo)
		raw = []byte{byte(lo), byte(lo >> 8)}
		rawWord = uint32(lo)
	} else {
		hi := halfword.FromBytes(read(addr+2), read(addr+3))
		op = thumb.Decode32(halfword.WordFromHalfWords(lo, hi))
		raw = []byte{byte(lo), byte(lo >> 8), byte(hi), byte(hi >> 8)}
		rawWord = uint32(halfword.WordFromHalfWords(lo, hi))
	}

	ops, _ := thumb.ExtractOperands(op, raw)

	e := Entry{Addr: addr, Raw: rawWord, Is32bit: op.Is32bit(), Mnemonic: op.Kind.String()}
	if op.Kind == thumb.B_COND {
		suffixes := [16]string{"EQ", "NE", "CS", "CC", "MI", "PL", "VS", "VC", "HI", "LS", "GE", "LT", "GT", "LE", "", ""}
		e.Mnemonic += suffixes[ops.Cond&0xf]
	}
	if label, ok := lookup(addr); ok {
		e.Label = label
	}
	e.Operand = formatOperands(op, ops, addr)
	return e
}

func formatOperands(op thumb.Opcode, o thumb.Operands, addr uint32) string {
	r := func(n uint8) string { return regName(n) }

	switch o.Shape {
	case thumb.ShapeRegPair:
		return fmt.Sprintf("%s, %s", r(o.Rd), r(o.Rm))
	case thumb.ShapeRegTriplet:
		return fmt.Sprintf("%s, %s, %s", r(o.Rd), r(o.Rn), r(o.Rm))
	case thumb.ShapeRegImm3:
		return fmt.Sprintf("%s, %s, #%d", r(o.Rd), r(o.Rn), o.Imm.Value)
	case thumb.ShapeTwoRegImm:
		return fmt.Sprintf("%s, [%s, #%d]", r(o.Rd), r(o.Rn), o.Imm.Value)
	case thumb.ShapeRegImm5:
		return fmt.Sprintf("%s, %s, #%d", r(o.Rd), r(o.Rm), o.Imm.Value)
	case thumb.ShapeRegImm7:
		return fmt.Sprintf("sp, #%d", o.Imm.Value)
	case thumb.ShapeRegImm8:
		return fmt.Sprintf("%s, #%d", r(o.Rd), o.Imm.Value)
	case thumb.ShapeTwoRegReg:
		return fmt.Sprintf("%s, [%s, %s]", r(o.Rd), r(o.Rn), r(o.Rm))
	case thumb.ShapePCRelative:
		return fmt.Sprintf("%s, [pc, #%d]", r(o.Rd), o.Imm.Value)
	case thumb.ShapeSPRelative:
		return fmt.Sprintf("%s, [sp, #%d]", r(o.Rd), o.Imm.Value)
	case thumb.ShapeRegList:
		return fmt.Sprintf("{%s}", regListString(o.RegList))
	case thumb.ShapeBranchOffset:
		return fmt.Sprintf("0x%08x", int64(addr)+4+int64(o.Offset))
	case thumb.ShapeCondBranch:
		return fmt.Sprintf("0x%08x", int64(addr)+4+int64(o.Offset))
	case thumb.ShapeSpecialReg:
		if op.Kind == thumb.MRS {
			return fmt.Sprintf("%s, sysm(%d)", r(o.Rd), o.SpecReg)
		}
		return fmt.Sprintf("sysm(%d), %s", o.SpecReg, r(o.Rn))
	case thumb.ShapeImm8Only:
		return fmt.Sprintf("#%d", o.Imm.Value)
	case thumb.ShapeCPS:
		if o.InterruptEnable {
			return "i"
		}
		return "i"
	default:
		return ""
	}
}

func regName(n uint8) string {
	switch n {
	case cpu.SP:
		return "sp"
	case cpu.LR:
		return "lr"
	case cpu.PC:
		return "pc"
	default:
		return fmt.Sprintf("r%d", n)
	}
}

func regListString(list uint16) string {
	var names []string
	for r := uint8(0); r < 16; r++ {
		if list&(1<<r) != 0 {
			names = append(names, regName(r))
		}
	}
	return strings.Join(names, ", ")
}
