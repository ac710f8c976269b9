package cpu

import (
	"fmt"

	"github.com/m0sim/m0sim/thumb/arith"
)

// Status holds the four APSR condition flags. ARMv6-M drops the IT-block
// state the ARMv7-M xPSR carries (Thumb-2 IT is not implemented on the
// M-profile baseline), so unlike a Cortex-M3/M4 status register this one is
// just the four flags.
type Status struct {
	Negative bool
	Zero     bool
	Carry    bool
	Overflow bool
}

func (s Status) String() string {
	flag := func(set bool, c string) string {
		if set {
			return c
		}
		return "-"
	}
	return fmt.Sprintf("%s%s%s%s",
		flag(s.Negative, "N"), flag(s.Zero, "Z"), flag(s.Carry, "C"), flag(s.Overflow, "V"))
}

func (s *Status) reset() {
	*s = Status{}
}

// SetNZ sets the Negative and Zero flags from result, the common tail of
// every flag-setting data-processing instruction.
func (s *Status) SetNZ(result uint32) {
	s.Negative = arith.IsNegative(result)
	s.Zero = arith.IsZero(result)
}

// SetNZCV sets all four flags at once, the tail of ADD/SUB/CMP/CMN.
func (s *Status) SetNZCV(result uint32, carry, overflow bool) {
	s.SetNZ(result)
	s.Carry = carry
	s.Overflow = overflow
}

// APSR packs the four flags into bits 31..28 of a word, matching the layout
// MRS/MSR observe when the special register selector names APSR.
func (s Status) APSR() uint32 {
	var v uint32
	if s.Negative {
		v |= 1 << 31
	}
	if s.Zero {
		v |= 1 << 30
	}
	if s.Carry {
		v |= 1 << 29
	}
	if s.Overflow {
		v |= 1 << 28
	}
	return v
}

// SetAPSR unpacks bits 31..28 of v into the four flags, ignoring the rest of
// the word - MSR APSR writes only ever touch the flag bits on ARMv6-M.
func (s *Status) SetAPSR(v uint32) {
	s.Negative = v&(1<<31) != 0
	s.Zero = v&(1<<30) != 0
	s.Carry = v&(1<<29) != 0
	s.Overflow = v&(1<<28) != 0
}

// Condition is the 4bit condition field attached to B_COND (and, notionally,
// IT - which ARMv6-M does not implement). Conditions 0b1110 and 0b1111
// never reach here: in the 16bit conditional-branch space the decoder
// classifies 0b1110 as UDF and 0b1111 as SVC, so every value this function
// receives is 0..13.
func (s Status) Condition(cond uint8) bool {
	switch cond {
	case 0b0000: // EQ
		return s.Zero
	case 0b0001: // NE
		return !s.Zero
	case 0b0010: // CS/HS
		return s.Carry
	case 0b0011: // CC/LO
		return !s.Carry
	case 0b0100: // MI
		return s.Negative
	case 0b0101: // PL
		return !s.Negative
	case 0b0110: // VS
		return s.Overflow
	case 0b0111: // VC
		return !s.Overflow
	case 0b1000: // HI
		return s.Carry && !s.Zero
	case 0b1001: // LS
		return !s.Carry || s.Zero
	case 0b1010: // GE
		return s.Negative == s.Overflow
	case 0b1011: // LT
		return s.Negative != s.Overflow
	case 0b1100: // GT
		return !s.Zero && s.Negative == s.Overflow
	case 0b1101: // LE
		return s.Zero || s.Negative != s.Overflow
	default: // 0b1110 (UDF) and 0b1111 (SVC) never arrive here
		return true
	}
}
