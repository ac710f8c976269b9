package thumb

import (
	"testing"

	"github.com/m0sim/m0sim/halfword"
)

func TestInstructionSizeSplitsOn32bitPrefixes(t *testing.T) {
	cases := []struct {
		hw   halfword.HalfWord
		want int
	}{
		{0x0000, 16}, // format 1
		{0xbf00, 16}, // hints
		{0xf000, 32}, // first half of a BL
		{0xf3bf, 32}, // first half of a DMB/DSB/ISB
	}
	for _, c := range cases {
		if got := InstructionSize(c.hw); got != c.want {
			t.Errorf("InstructionSize(0x%04x) = %d, want %d", c.hw, got, c.want)
		}
	}
}

func TestDecode16MoveShiftedRegister(t *testing.T) {
	// LSLS r0, r1, #4 : 000 00 00100 001 000
	op := Decode16(0b0000000100001000)
	if op.Kind != LSL_IMM {
		t.Fatalf("got Kind %s, want LSL_IMM", op.Kind)
	}
}

func TestDecode16MovAliasWhenShiftIsZero(t *testing.T) {
	// LSLS r0, r1, #0 is the MOVS alias
	op := Decode16(0b0000000000001000)
	if op.Kind != MOV_REGS_T2 {
		t.Fatalf("got Kind %s, want MOV_REGS_T2", op.Kind)
	}
}

func TestDecode16AddSubtractPrecedesMoveShifted(t *testing.T) {
	// ADDS r0, r1, r2 : 0001100 010 001 000
	op := Decode16(0b0001100010001000)
	if op.Kind != ADD_REG3 {
		t.Fatalf("got Kind %s, want ADD_REG3", op.Kind)
	}
}

func TestDecode16ConditionalBranchUDFSpecialCase(t *testing.T) {
	// cond == 0b1110 is UDF, not a valid branch condition
	op := Decode16(0b1101111000000000)
	if op.Kind != UDF {
		t.Fatalf("got Kind %s, want UDF", op.Kind)
	}
}

func TestDecode16SVCPrecedesGeneralCondBranch(t *testing.T) {
	op := Decode16(0b1101111100000001)
	if op.Kind != SVC {
		t.Fatalf("got Kind %s, want SVC", op.Kind)
	}
}

func TestDecode16Hints(t *testing.T) {
	cases := map[halfword.HalfWord]Kind{
		0xbf00: NOP,
		0xbf10: YIELD,
		0xbf20: WFE,
		0xbf30: WFI,
		0xbf40: SEV,
	}
	for hw, want := range cases {
		if got := Decode16(hw).Kind; got != want {
			t.Errorf("Decode16(0x%04x) = %s, want %s", hw, got, want)
		}
	}
}

func TestDecode16PushPop(t *testing.T) {
	if Decode16(0b1011010100000001).Kind != PUSH {
		t.Fatalf("expected PUSH")
	}
	if Decode16(0b1011110100000001).Kind != POP {
		t.Fatalf("expected POP")
	}
}

func TestDecode32BL(t *testing.T) {
	op := Decode32(halfword.WordFromHalfWords(0xf000, 0xf800))
	if op.Kind != BL {
		t.Fatalf("got Kind %s, want BL", op.Kind)
	}
	if !op.Is32bit() || op.Size() != 4 {
		t.Fatalf("BL should report as a 32bit, 4 byte instruction")
	}
}

func TestDecode32Barriers(t *testing.T) {
	if Decode32(halfword.WordFromHalfWords(0xf3bf, 0x8f4f)).Kind != DSB {
		t.Fatalf("expected DSB")
	}
	if Decode32(halfword.WordFromHalfWords(0xf3bf, 0x8f5f)).Kind != DMB {
		t.Fatalf("expected DMB")
	}
	if Decode32(halfword.WordFromHalfWords(0xf3bf, 0x8f6f)).Kind != ISB {
		t.Fatalf("expected ISB")
	}
}

func TestDecode32MRSAnyDestinationRegister(t *testing.T) {
	// MRS R1, APSR - Rd must not be pinned to r0 by the fixed-bits mask.
	op := Decode32(halfword.WordFromHalfWords(0xf3ef, 0x8100))
	if op.Kind != MRS {
		t.Fatalf("got Kind %s, want MRS", op.Kind)
	}

	ops, ok := ExtractOperands(op, []byte{0xef, 0xf3, 0x00, 0x81})
	if !ok {
		t.Fatal("expected MRS operands to extract")
	}
	if ops.Rd != 1 {
		t.Fatalf("Rd = %d, want 1", ops.Rd)
	}
}

func TestDecode16UndefinedIsZeroValue(t *testing.T) {
	op := Opcode{}
	if op.Kind != UNDEFINED {
		t.Fatalf("zero value Kind should be UNDEFINED")
	}
}
