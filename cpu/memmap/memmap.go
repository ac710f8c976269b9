// Package memmap implements the ARMv6-M top-level address map: the
// permission and region lookup keyed by the address's top three bits, and
// the paged, allocate-on-write memory backing it.
//
// The region table is grounded on the teacher's architecture.Map /
// memorymodel.Map pattern (a constructor producing a small lookup table
// keyed by address ranges, consulted on every access) even though the
// concrete regions here - code/SRAM/peripheral/system - are the
// specification's, not the Atari cartridge address map the teacher builds.
package memmap

import "fmt"

// Region names a coarse address-space partition, selected by an address's
// top three bits.
type Region int

const (
	RegionCode Region = iota
	RegionSRAM
	RegionPeripheral
	RegionExternalRAM
	RegionExternalDevice
	RegionSystem
)

func (r Region) String() string {
	switch r {
	case RegionCode:
		return "code"
	case RegionSRAM:
		return "sram"
	case RegionPeripheral:
		return "peripheral"
	case RegionExternalRAM:
		return "external-ram"
	case RegionExternalDevice:
		return "external-device"
	case RegionSystem:
		return "system"
	default:
		return "unmapped"
	}
}

// Permission describes what an access of a given kind is allowed to do to
// a region.
type Permission struct {
	Read      bool
	Write     bool
	Execute   bool
	Privilege bool // true: privileged access required
}

// classify maps the top three bits of an address to its Region, following
// the default permission map's six-way split: 0x0xxxxxxx code,
// 0x2xxxxxxx SRAM, 0x4xxxxxxx peripheral (execute-never), 0x6xxxxxxx and
// 0x8xxxxxxx external RAM, 0xAxxxxxxx and 0xCxxxxxxx external device
// (execute-never), 0xExxxxxxx system (the private peripheral bus and debug
// components, execute-never). Every range is RW; only executability varies.
func classify(addr uint32) Region {
	switch addr >> 29 {
	case 0b000:
		return RegionCode
	case 0b001:
		return RegionSRAM
	case 0b010:
		return RegionPeripheral
	case 0b011, 0b100:
		return RegionExternalRAM
	case 0b101, 0b110:
		return RegionExternalDevice
	default: // 0b111
		return RegionSystem
	}
}

var permissions = map[Region]Permission{
	RegionCode:           {Read: true, Write: true, Execute: true},
	RegionSRAM:           {Read: true, Write: true, Execute: true},
	RegionPeripheral:     {Read: true, Write: true},
	RegionExternalRAM:    {Read: true, Write: true, Execute: true},
	RegionExternalDevice: {Read: true, Write: true},
	RegionSystem:         {Read: true, Write: true},
}

// Permissions returns the Permission for the region addr falls in.
func Permissions(addr uint32) Permission {
	return permissions[classify(addr)]
}

// Classify exposes classify for callers (the disassembler, diagnostics)
// that want the region name without the raw permission bits.
func Classify(addr uint32) Region {
	return classify(addr)
}

const pageSize = 4096
const pageShift = 12

// Memory is a paged, allocate-on-write backing store: pages are only
// allocated the first time a write touches them, so a simulator image with
// sparse SRAM usage does not pay for the whole 4GiB address space up front.
// Reads of a never-written page return zero.
type Memory struct {
	pages map[uint32][]byte
}

// New returns an empty Memory with no pages yet allocated.
func New() *Memory {
	return &Memory{pages: make(map[uint32][]byte)}
}

func (m *Memory) page(addr uint32, allocate bool) []byte {
	key := addr >> pageShift
	p, ok := m.pages[key]
	if !ok {
		if !allocate {
			return nil
		}
		p = make([]byte, pageSize)
		m.pages[key] = p
	}
	return p
}

// ReadByte reads a single byte, returning 0 for an unallocated page.
func (m *Memory) ReadByte(addr uint32) byte {
	p := m.page(addr, false)
	if p == nil {
		return 0
	}
	return p[addr&(pageSize-1)]
}

// WriteByte writes a single byte, allocating the containing page if needed.
func (m *Memory) WriteByte(addr uint32, v byte) {
	p := m.page(addr, true)
	p[addr&(pageSize-1)] = v
}

// LoadBytes copies data into the backing store starting at addr, allocating
// pages as needed - used by the ELF loader to populate PROGBITS sections.
func (m *Memory) LoadBytes(addr uint32, data []byte) {
	for i, b := range data {
		m.WriteByte(addr+uint32(i), b)
	}
}

// ReadBytes reads n bytes starting at addr.
func (m *Memory) ReadBytes(addr uint32, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = m.ReadByte(addr + uint32(i))
	}
	return out
}

// Unaligned reports whether addr is not a multiple of size (2 or 4), the
// precondition for the alignment faults halfword/word accesses must raise.
func Unaligned(addr uint32, size uint32) bool {
	return addr%size != 0
}

func (m *Memory) String() string {
	return fmt.Sprintf("memmap.Memory{pages=%d}", len(m.pages))
}
