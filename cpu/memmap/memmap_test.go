package memmap

import "testing"

func TestClassifyRegions(t *testing.T) {
	cases := []struct {
		addr uint32
		want Region
	}{
		{0x00000000, RegionCode},
		{0x08000000, RegionCode},
		{0x20000000, RegionSRAM},
		{0x40000000, RegionPeripheral},
		{0x60000000, RegionExternalRAM},
		{0x90000000, RegionExternalRAM},
		{0xa0000000, RegionExternalDevice},
		{0xd0000000, RegionExternalDevice},
		{0xe0000000, RegionSystem},
	}
	for _, c := range cases {
		if got := Classify(c.addr); got != c.want {
			t.Errorf("Classify(0x%08x) = %s, want %s", c.addr, got, c.want)
		}
	}
}

func TestPermissionsMatchDefaultMap(t *testing.T) {
	cases := []struct {
		addr            uint32
		read, write, ex bool
	}{
		{0x00000000, true, true, true},  // code: RW, no XN
		{0x20000000, true, true, true},  // sram: RW, no XN
		{0x40000000, true, true, false}, // peripheral: RW, XN
		{0x60000000, true, true, true},  // external RAM: RW, no XN
		{0xa0000000, true, true, false}, // external device: RW, XN
		{0xe0000000, true, true, false}, // system: RW, XN
	}
	for _, c := range cases {
		p := Permissions(c.addr)
		if p.Read != c.read || p.Write != c.write || p.Execute != c.ex {
			t.Errorf("Permissions(0x%08x) = %+v, want read=%v write=%v execute=%v", c.addr, p, c.read, c.write, c.ex)
		}
	}
}

func TestAllocateOnWrite(t *testing.T) {
	m := New()
	if got := m.ReadByte(0x20000010); got != 0 {
		t.Fatalf("unwritten byte should read as 0, got %d", got)
	}
	m.WriteByte(0x20000010, 0xab)
	if got := m.ReadByte(0x20000010); got != 0xab {
		t.Fatalf("got %#x, want 0xab", got)
	}
}

func TestLoadBytesAndReadBytes(t *testing.T) {
	m := New()
	data := []byte{1, 2, 3, 4}
	m.LoadBytes(0x1000, data)
	got := m.ReadBytes(0x1000, 4)
	for i, b := range data {
		if got[i] != b {
			t.Fatalf("byte %d: got %d, want %d", i, got[i], b)
		}
	}
}

func TestUnaligned(t *testing.T) {
	if !Unaligned(0x1001, 4) {
		t.Fatal("0x1001 should be unaligned for a 4byte access")
	}
	if Unaligned(0x1000, 4) {
		t.Fatal("0x1000 should be aligned for a 4byte access")
	}
	if Unaligned(0x1002, 2) {
		t.Fatal("0x1002 should be aligned for a 2byte access")
	}
}

func TestPagesSpanCorrectly(t *testing.T) {
	m := New()
	m.WriteByte(0x20000fff, 0x11) // last byte of page 0
	m.WriteByte(0x20001000, 0x22) // first byte of page 1
	if m.ReadByte(0x20000fff) != 0x11 || m.ReadByte(0x20001000) != 0x22 {
		t.Fatal("adjacent pages should not clobber each other")
	}
}
