// Package insts provides J1 instruction definitions and decoding.
package insts

import "fmt"

// Class represents the instruction class selected by the top bits of the
// instruction word (and by pc bit 12 for code reads).
type Class uint8

// Instruction classes.
const (
	ClassJump     Class = iota // 000: unconditional jump
	ClassCondJump              // 001: jump if T == 0, pops T
	ClassCall                  // 010: call, pushes return address
	ClassALU                   // 011: ALU operation
	ClassLiteral               // 1xx: literal push
	ClassCodeRead              // pc[12] set: fetched word is pushed as data
)

var classNames = [...]string{
	ClassJump:     "jump",
	ClassCondJump: "cond-jump",
	ClassCall:     "call",
	ClassALU:      "alu",
	ClassLiteral:  "literal",
	ClassCodeRead: "code-read",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("Class(%d)", uint8(c))
}

// ALUOp is the 4-bit ALU selector of an ALU-class instruction.
type ALUOp uint8

// ALU operations. Comments give the new top of stack.
const (
	ALUT        ALUOp = 0b0000 // T
	ALUN        ALUOp = 0b0001 // N
	ALUAdd      ALUOp = 0b0010 // T + N
	ALUAnd      ALUOp = 0b0011 // T & N
	ALUOr       ALUOp = 0b0100 // T | N
	ALUXor      ALUOp = 0b0101 // T ^ N
	ALUInvert   ALUOp = 0b0110 // ~T
	ALUEqual    ALUOp = 0b0111 // N == T
	ALULess     ALUOp = 0b1000 // N < T, signed
	ALURShift   ALUOp = 0b1001 // T >> 1, arithmetic
	ALULShift   ALUOp = 0b1010 // T << 1
	ALURTop     ALUOp = 0b1011 // R
	ALUMemRead  ALUOp = 0b1100 // [T]
	ALUIORead   ALUOp = 0b1101 // io[T]
	ALUStatus   ALUOp = 0b1110 // {rsp, dsp}
	ALUULess    ALUOp = 0b1111 // N < T, unsigned
	numALUOps         = 16
)

var aluOpNames = [numALUOps]string{
	"T", "N", "T+N", "T&N", "T|N", "T^N", "~T", "N==T",
	"N<T", "T2/", "T2*", "rT", "[T]", "io[T]", "status", "Nu<T",
}

func (op ALUOp) String() string {
	return aluOpNames[op&0xF]
}

// Func is the 3-bit function code of an ALU-class instruction.
type Func uint8

// Function codes. Values 6 and 7 are unassigned and behave like FuncNone.
const (
	FuncNone   Func = 0 // no side effect
	FuncTtoN   Func = 1 // write T to the data stack
	FuncTtoR   Func = 2 // write T to the return stack
	FuncMemWr  Func = 3 // memory write strobe
	FuncIOWr   Func = 4 // IO write strobe
	FuncIORd   Func = 5 // IO read strobe
)

var funcNames = [8]string{"", "T->N", "T->R", "N->[T]", "N->io[T]", "io@", "", ""}

func (f Func) String() string {
	return funcNames[f&0x7]
}

// Instruction represents a decoded J1 instruction.
type Instruction struct {
	Word  uint16 // Raw instruction word
	Class Class  // Instruction class

	// ALU fields, zero unless Class == ClassALU
	ALUOp  ALUOp // ALU selector
	Func   Func  // Function code
	Return bool  // Return flag, bit 7

	// Stack pointer deltas, already sign-extended and resolved per class
	DDelta int8 // Data stack pointer delta
	RDelta int8 // Return stack pointer delta

	// Target is the 13-bit absolute target for jump, cond-jump and call.
	Target uint16

	// Literal is the value pushed by literal and code-read instructions.
	Literal uint16
}

// IsLiteral reports whether the instruction pushes an immediate value.
func (i *Instruction) IsLiteral() bool {
	return i.Class == ClassLiteral
}

// Field masks and positions in the instruction word.
const (
	LiteralBit    = 1 << 15
	LiteralMask   = 0x7FFF
	TargetMask    = 0x1FFF
	CodeReadPCBit = 1 << 12
	PCMask        = 0x1FFF

	classShift  = 13
	aluOpShift  = 8
	returnBit   = 1 << 7
	funcShift   = 4
	rDeltaShift = 2
)

// SignExtend2 sign-extends a 2-bit stack delta field: 00=+0, 01=+1,
// 10=-2, 11=-1.
func SignExtend2(field uint16) int8 {
	return int8(field<<6) >> 6
}

// Decoder decodes J1 machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new J1 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 16-bit instruction word fetched at pc. The decode is
// total: every word and pc produce a fully populated instruction.
func (d *Decoder) Decode(word uint16, pc uint16) *Instruction {
	inst := &Instruction{}
	d.DecodeInto(word, pc, inst)
	return inst
}

// DecodeInto decodes into a caller-provided instruction, avoiding an
// allocation per cycle.
func (d *Decoder) DecodeInto(word uint16, pc uint16, inst *Instruction) {
	*inst = Instruction{Word: word}

	switch {
	case pc&CodeReadPCBit != 0:
		inst.Class = ClassCodeRead
		inst.Literal = word
		inst.DDelta = 1
		inst.RDelta = -1
	case word&LiteralBit != 0:
		inst.Class = ClassLiteral
		inst.Literal = word & LiteralMask
		inst.DDelta = 1
	default:
		d.decodeControl(word, inst)
	}
}

// decodeControl decodes the four classes with bit 15 clear.
// Format: 0 | class[14:13] | target[12:0]
//
//	or 0 | 11 | - | alu[11:8] | ret | func[6:4] | r[3:2] | d[1:0]
func (d *Decoder) decodeControl(word uint16, inst *Instruction) {
	inst.Class = Class((word >> classShift) & 0x3)

	switch inst.Class {
	case ClassJump, ClassCall:
		inst.Target = word & TargetMask
		if inst.Class == ClassCall {
			inst.RDelta = 1
		}
	case ClassCondJump:
		inst.Target = word & TargetMask
		inst.DDelta = -1
	case ClassALU:
		inst.ALUOp = ALUOp((word >> aluOpShift) & 0xF)
		inst.Func = Func((word >> funcShift) & 0x7)
		inst.Return = word&returnBit != 0
		inst.RDelta = SignExtend2((word >> rDeltaShift) & 0x3)
		inst.DDelta = SignExtend2(word & 0x3)
	}
}
