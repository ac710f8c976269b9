// Package arith implements the ARMv6-M arithmetic and flag primitives that
// every data-processing opcode is built from: add-with-carry, the three
// shift kinds and the flag-setting conventions they share.
//
// The add-with-carry formulation follows "A2.2.1 Integer arithmetic" of the
// ARMv6-M Architecture Reference Manual: the operands are widened to 33 bits
// so carry-out and signed overflow both fall out of straightforward
// comparisons rather than the bit-trick form used by some interpreters.
package arith

// AddWithCarry computes a + b + carryIn as an unsigned 33bit sum. result is
// the low 32 bits; carryOut is set when the sum would not have fit in 32
// bits; overflow is set when the signed interpretation of the result
// disagrees with the signed sum of a and b.
func AddWithCarry(a, b uint32, carryIn bool) (result uint32, carryOut, overflow bool) {
	var c uint64
	if carryIn {
		c = 1
	}
	sum := uint64(a) + uint64(b) + c
	result = uint32(sum)
	carryOut = sum > 0xffffffff

	signA := int64(int32(a))
	signB := int64(int32(b))
	signR := int64(int32(result))
	overflow = (signA+signB+int64(c) != signR)
	return result, carryOut, overflow
}

// Sub computes a - b by way of AddWithCarry(a, ^b, 1), giving the ARM
// convention where carryOut is the "not borrow" flag: C is set when no
// borrow occurred, i.e. when a >= b (unsigned).
func Sub(a, b uint32) (result uint32, carryOut, overflow bool) {
	return AddWithCarry(a, ^b, true)
}

// ShiftResult is the outcome of any of the three shift operations: the
// shifted value and the carry bit the shift produces.
type ShiftResult struct {
	Value uint32
	Carry bool
}

// LSL performs a logical left shift by amount (0..31 for the immediate form,
// 0..255 for the register form, where a shift of 32 or more is meaningful).
// carryIn is returned unchanged when amount is 0.
func LSL(value uint32, amount uint, carryIn bool) ShiftResult {
	if amount == 0 {
		return ShiftResult{Value: value, Carry: carryIn}
	}
	if amount > 32 {
		return ShiftResult{Value: 0, Carry: false}
	}
	if amount == 32 {
		return ShiftResult{Value: 0, Carry: value&1 != 0}
	}
	carry := value&(1<<(32-amount)) != 0
	return ShiftResult{Value: value << amount, Carry: carry}
}

// LSR performs a logical right shift. A shift amount of 0 is treated, per
// the ARMv6-M encoding convention for immediate shifts, as a shift by 32.
func LSR(value uint32, amount uint, carryIn bool) ShiftResult {
	if amount == 0 {
		amount = 32
	}
	if amount > 32 {
		return ShiftResult{Value: 0, Carry: false}
	}
	if amount == 32 {
		return ShiftResult{Value: 0, Carry: value&0x80000000 != 0}
	}
	carry := value&(1<<(amount-1)) != 0
	return ShiftResult{Value: value >> amount, Carry: carry}
}

// ASR performs an arithmetic right shift, again treating a 0 immediate shift
// amount as 32.
func ASR(value uint32, amount uint, carryIn bool) ShiftResult {
	if amount == 0 {
		amount = 32
	}
	signed := int32(value)
	if amount >= 32 {
		if signed < 0 {
			return ShiftResult{Value: 0xffffffff, Carry: true}
		}
		return ShiftResult{Value: 0, Carry: false}
	}
	carry := value&(1<<(amount-1)) != 0
	return ShiftResult{Value: uint32(signed >> amount), Carry: carry}
}

// ROR performs a rotate right by amount, taken modulo 32 (the register-form
// RORS passes 0..255). carryIn is returned unchanged when amount is 0.
func ROR(value uint32, amount uint, carryIn bool) ShiftResult {
	if amount == 0 {
		return ShiftResult{Value: value, Carry: carryIn}
	}
	amount %= 32
	if amount == 0 {
		return ShiftResult{Value: value, Carry: value&0x80000000 != 0}
	}
	result := (value >> amount) | (value << (32 - amount))
	return ShiftResult{Value: result, Carry: result&0x80000000 != 0}
}

// IsZero reports whether v is the all-zero 32bit pattern, the standard
// source of the Z flag.
func IsZero(v uint32) bool {
	return v == 0
}

// IsNegative reports whether v's MSB is set, the standard source of the N
// flag.
func IsNegative(v uint32) bool {
	return v&0x80000000 != 0
}

// Mul is a 32x32->32 truncated multiply, matching the ARMv6-M MULS
// semantics (no carry/overflow side effects beyond N and Z, which the
// caller derives from the returned product).
func Mul(a, b uint32) uint32 {
	return a * b
}
