package insts

import (
	"fmt"
	"strings"
)

// ALUFields describes an ALU-class instruction for encoding.
type ALUFields struct {
	Op     ALUOp
	Func   Func
	Return bool
	DDelta int8 // -2..1
	RDelta int8 // -2..1
}

// EncodeLiteral encodes a literal push. Only 15-bit values are encodable;
// larger values need a literal followed by an invert.
func EncodeLiteral(value uint16) (uint16, error) {
	if value > LiteralMask {
		return 0, fmt.Errorf("literal 0x%04X exceeds 15 bits", value)
	}
	return LiteralBit | value, nil
}

// EncodeJump encodes an unconditional jump.
func EncodeJump(target uint16) (uint16, error) {
	return encodeBranch(ClassJump, target)
}

// EncodeCondJump encodes a jump taken when T is zero.
func EncodeCondJump(target uint16) (uint16, error) {
	return encodeBranch(ClassCondJump, target)
}

// EncodeCall encodes a call.
func EncodeCall(target uint16) (uint16, error) {
	return encodeBranch(ClassCall, target)
}

func encodeBranch(class Class, target uint16) (uint16, error) {
	if target > TargetMask {
		return 0, fmt.Errorf("%v target 0x%04X exceeds 13 bits", class, target)
	}
	return uint16(class)<<classShift | target, nil
}

// EncodeALU encodes an ALU-class instruction.
func EncodeALU(f ALUFields) (uint16, error) {
	if f.Op >= numALUOps {
		return 0, fmt.Errorf("alu op %d out of range", f.Op)
	}
	if f.Func > 7 {
		return 0, fmt.Errorf("func %d out of range", f.Func)
	}
	d, err := encodeDelta(f.DDelta)
	if err != nil {
		return 0, fmt.Errorf("data stack delta: %w", err)
	}
	r, err := encodeDelta(f.RDelta)
	if err != nil {
		return 0, fmt.Errorf("return stack delta: %w", err)
	}

	word := uint16(ClassALU)<<classShift |
		uint16(f.Op)<<aluOpShift |
		uint16(f.Func)<<funcShift |
		r<<rDeltaShift | d
	if f.Return {
		word |= returnBit
	}
	return word, nil
}

func encodeDelta(delta int8) (uint16, error) {
	if delta < -2 || delta > 1 {
		return 0, fmt.Errorf("delta %d outside -2..1", delta)
	}
	return uint16(delta) & 0x3, nil
}

// MustEncode panics if err is non-nil. It is intended for building
// fixed programs whose operands are known to be in range.
func MustEncode(word uint16, err error) uint16 {
	if err != nil {
		panic(err)
	}
	return word
}

// String returns a J1-style mnemonic for the instruction.
func (i *Instruction) String() string {
	switch i.Class {
	case ClassLiteral:
		return fmt.Sprintf("LIT 0x%04X", i.Literal)
	case ClassCodeRead:
		return fmt.Sprintf("DATA 0x%04X", i.Literal)
	case ClassJump:
		return fmt.Sprintf("JMP 0x%04X", i.Target)
	case ClassCondJump:
		return fmt.Sprintf("0BRANCH 0x%04X", i.Target)
	case ClassCall:
		return fmt.Sprintf("CALL 0x%04X", i.Target)
	}

	var sb strings.Builder
	sb.WriteString("ALU ")
	sb.WriteString(i.ALUOp.String())
	if i.DDelta != 0 {
		fmt.Fprintf(&sb, " d%+d", i.DDelta)
	}
	if i.RDelta != 0 {
		fmt.Fprintf(&sb, " r%+d", i.RDelta)
	}
	if s := i.Func.String(); s != "" {
		sb.WriteString(" ")
		sb.WriteString(s)
	}
	if i.Return {
		sb.WriteString(" RET")
	}
	return sb.String()
}
