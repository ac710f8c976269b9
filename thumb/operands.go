package thumb

import "github.com/m0sim/m0sim/halfword"

// Shape identifies which fields of Operands are meaningful. Every opcode
// that takes operands extracts into exactly one Shape; this is the
// "language-neutral mapping" the design notes describe: a closed enum over
// constructors, each with its own payload, with exhaustiveness enforced by
// dispatch in the decoder/extractor and the execution engine.
type Shape int

const (
	ShapeNone       Shape = iota
	ShapeRegPair          // Rd, Rm
	ShapeRegTriplet       // Rd, Rn, Rm
	ShapeRegImm3          // Rd, Rn, #imm3
	ShapeRegImm5          // Rd, Rm, #imm5 (shift amount)
	ShapeRegImm7          // Rd, #imm7 (SP-relative)
	ShapeRegImm8          // Rd, #imm8
	ShapeTwoRegImm        // Rd, Rn, #imm (load/store immediate offset)
	ShapeTwoRegReg        // Rd, Rn, Rm (load/store register offset)
	ShapePCRelative       // Rd, #imm (PC-relative byte offset, already scaled)
	ShapeSPRelative       // Rd, #imm (SP-relative byte offset, already scaled)
	ShapeRegList          // register bitmask (LDM/STM/PUSH/POP)
	ShapeBranchOffset     // signed byte displacement
	ShapeCondBranch       // condition code + signed byte displacement
	ShapeSpecialReg       // special-register selector + general register
	ShapeImm8Only         // bare 8bit immediate (SVC)
	ShapeCPS              // interrupt-enable flag
	ShapeNoFields         // hints: NOP, SEV, WFE, WFI, YIELD
)

// Operands is the tagged union of every operand shape a Thumb opcode can
// take. Only the fields relevant to Shape are meaningful; the rest are zero.
// Each immediate is carried as a halfword.Imm so its originating bit width
// travels with it.
type Operands struct {
	Shape Shape

	Rd uint8
	Rn uint8
	Rm uint8

	Imm halfword.Imm

	// RegList is the expanded 16bit register bitmask for LDM/STM/PUSH/POP.
	// Bit 14 is LR, bit 15 is PC - PUSH's M bit and POP's P bit are folded
	// into this mask by the extractor so the execution engine never needs
	// to special-case them.
	RegList uint16

	// Offset is a sign-extended, shifted signed byte displacement for
	// branches and BL. It does not include the +4 pipeline offset; consumers
	// add that to the instruction address themselves.
	Offset int32

	// Cond is the 4bit condition field for B_COND.
	Cond uint8

	// SpecReg is the special-register selector for MRS/MSR (e.g. APSR,
	// IPSR, PSR, MSP, PSP, PRIMASK, CONTROL).
	SpecReg uint8

	// InterruptEnable is CPS's I-flag: true means CPSID (disable), false
	// means CPSIE (enable).
	InterruptEnable bool
}
