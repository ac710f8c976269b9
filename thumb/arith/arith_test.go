package arith

import "testing"

func TestAddWithCarryBasic(t *testing.T) {
	result, carry, overflow := AddWithCarry(1, 1, false)
	if result != 2 || carry || overflow {
		t.Fatalf("1+1: got result=%d carry=%v overflow=%v", result, carry, overflow)
	}
}

func TestAddWithCarryOverflowsUnsigned(t *testing.T) {
	result, carry, overflow := AddWithCarry(0xffffffff, 1, false)
	if result != 0 || !carry || overflow {
		t.Fatalf("0xffffffff+1: got result=%d carry=%v overflow=%v", result, carry, overflow)
	}
}

func TestAddWithCarrySignedOverflow(t *testing.T) {
	result, carry, overflow := AddWithCarry(0x7fffffff, 1, false)
	if result != 0x80000000 || carry || !overflow {
		t.Fatalf("MAX_INT+1: got result=0x%x carry=%v overflow=%v", result, carry, overflow)
	}
}

func TestSubNoBorrow(t *testing.T) {
	result, carry, overflow := Sub(5, 3)
	if result != 2 || !carry || overflow {
		t.Fatalf("5-3: got result=%d carry=%v overflow=%v", result, carry, overflow)
	}
}

func TestSubBorrow(t *testing.T) {
	result, carry, _ := Sub(3, 5)
	if result != 0xfffffffe || carry {
		t.Fatalf("3-5: got result=0x%x carry=%v, want 0xfffffffe carry=false", result, carry)
	}
}

func TestLSLZeroPreservesCarry(t *testing.T) {
	r := LSL(0x1234, 0, true)
	if r.Value != 0x1234 || !r.Carry {
		t.Fatalf("LSL #0 should be a no-op preserving carry, got %+v", r)
	}
}

func TestLSLCarryOut(t *testing.T) {
	r := LSL(0x80000000, 1, false)
	if r.Value != 0 || !r.Carry {
		t.Fatalf("LSL 0x80000000 #1: got %+v", r)
	}
}

func TestLSRImmediateZeroMeansThirtyTwo(t *testing.T) {
	r := LSR(0x80000000, 0, false)
	if r.Value != 0 || !r.Carry {
		t.Fatalf("LSR #0 (== #32): got %+v", r)
	}
}

func TestASRSignExtendsAllOnes(t *testing.T) {
	r := ASR(0x80000000, 0, false) // amount 0 -> 32
	if r.Value != 0xffffffff || !r.Carry {
		t.Fatalf("ASR negative value #32: got %+v", r)
	}
}

func TestMulTruncates(t *testing.T) {
	got := Mul(0x80000000, 2)
	if got != 0 {
		t.Fatalf("Mul overflow should truncate to 32 bits, got 0x%x", got)
	}
}
