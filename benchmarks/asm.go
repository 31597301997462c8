package benchmarks

import (
	"fmt"

	"github.com/sarchlab/j1sim/emu"
	"github.com/sarchlab/j1sim/insts"
)

func aluWord(f insts.ALUFields) uint16 {
	return insts.MustEncode(insts.EncodeALU(f))
}

// Common ALU words, named after their Forth counterparts.
var (
	Nop    = aluWord(insts.ALUFields{Op: insts.ALUT})
	Dup    = aluWord(insts.ALUFields{Op: insts.ALUT, Func: insts.FuncTtoN, DDelta: 1})
	Drop   = aluWord(insts.ALUFields{Op: insts.ALUN, DDelta: -1})
	Swap   = aluWord(insts.ALUFields{Op: insts.ALUN, Func: insts.FuncTtoN})
	Over   = aluWord(insts.ALUFields{Op: insts.ALUN, Func: insts.FuncTtoN, DDelta: 1})
	Nip    = aluWord(insts.ALUFields{Op: insts.ALUT, DDelta: -1})
	Add    = aluWord(insts.ALUFields{Op: insts.ALUAdd, DDelta: -1})
	Invert = aluWord(insts.ALUFields{Op: insts.ALUInvert})
	ToR    = aluWord(insts.ALUFields{Op: insts.ALUN, Func: insts.FuncTtoR, DDelta: -1, RDelta: 1})
	RFrom  = aluWord(insts.ALUFields{Op: insts.ALURTop, Func: insts.FuncTtoN, DDelta: 1, RDelta: -1})
	Exit   = aluWord(insts.ALUFields{Op: insts.ALUT, Return: true, RDelta: -1})

	// AddExit is "+ ;" fused into one instruction.
	AddExit = aluWord(insts.ALUFields{Op: insts.ALUAdd, DDelta: -1, Return: true, RDelta: -1})

	// StoreAddr writes N to [T] and leaves the address; Store follows it
	// with a drop.
	StoreAddr = aluWord(insts.ALUFields{Op: insts.ALUT, Func: insts.FuncMemWr, DDelta: -1})
	// ReadMem replaces T with the word read at the previous tick's T.
	ReadMem = aluWord(insts.ALUFields{Op: insts.ALUMemRead})
	// WriteIO writes N to io[T] and leaves the port.
	WriteIO = aluWord(insts.ALUFields{Op: insts.ALUT, Func: insts.FuncIOWr, DDelta: -1})
)

type fixupKind uint8

const (
	fixJump fixupKind = iota
	fixCondJump
	fixCall
	fixCodeRead
)

type fixup struct {
	at    int
	label string
	kind  fixupKind
}

// Builder assembles a J1 program with forward references to labels.
type Builder struct {
	words  []uint16
	labels map[string]uint16
	fixups []fixup
	err    error
}

// NewBuilder creates an empty program at address 0.
func NewBuilder() *Builder {
	return &Builder{labels: make(map[string]uint16)}
}

// Here returns the address of the next word.
func (b *Builder) Here() uint16 {
	return uint16(len(b.words))
}

// Label names the address of the next word.
func (b *Builder) Label(name string) *Builder {
	if _, ok := b.labels[name]; ok {
		b.setErr(fmt.Errorf("label %q defined twice", name))
	}
	b.labels[name] = b.Here()
	return b
}

// Org pads with zeros up to addr.
func (b *Builder) Org(addr uint16) *Builder {
	if int(addr) < len(b.words) {
		b.setErr(fmt.Errorf("org 0x%04X is behind 0x%04X", addr, b.Here()))
		return b
	}
	for len(b.words) < int(addr) {
		b.words = append(b.words, 0)
	}
	return b
}

// Emit appends raw words.
func (b *Builder) Emit(words ...uint16) *Builder {
	b.words = append(b.words, words...)
	return b
}

// Lit pushes v. Values with bit 15 set take a literal and an invert.
func (b *Builder) Lit(v uint16) *Builder {
	if v&insts.LiteralBit != 0 {
		return b.Emit(insts.MustEncode(insts.EncodeLiteral(^v)), Invert)
	}
	return b.Emit(insts.MustEncode(insts.EncodeLiteral(v)))
}

// Dec subtracts one from T.
func (b *Builder) Dec() *Builder {
	return b.Lit(0xFFFF).Emit(Add)
}

// Store is "!" ( x a -- ).
func (b *Builder) Store() *Builder {
	return b.Emit(StoreAddr, Drop)
}

// Fetch is "@" ( a -- x ). The first word puts the address on the bus.
func (b *Builder) Fetch() *Builder {
	return b.Emit(Nop, ReadMem)
}

// EmitChar is "emit" ( c -- ) on the console data port.
func (b *Builder) EmitChar() *Builder {
	return b.Lit(emu.ConsoleData).Emit(WriteIO, Drop)
}

// Jmp jumps to label.
func (b *Builder) Jmp(label string) *Builder {
	return b.ref(label, fixJump)
}

// ZJmp pops T and jumps to label when it was zero.
func (b *Builder) ZJmp(label string) *Builder {
	return b.ref(label, fixCondJump)
}

// Call calls the subroutine at label.
func (b *Builder) Call(label string) *Builder {
	return b.ref(label, fixCall)
}

// CodeRead pushes the code word at label.
func (b *Builder) CodeRead(label string) *Builder {
	return b.ref(label, fixCodeRead)
}

// Halt jumps to itself.
func (b *Builder) Halt() *Builder {
	return b.Emit(insts.MustEncode(insts.EncodeJump(b.Here())))
}

func (b *Builder) ref(label string, kind fixupKind) *Builder {
	b.fixups = append(b.fixups, fixup{at: len(b.words), label: label, kind: kind})
	return b.Emit(0)
}

func (b *Builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build resolves labels and returns the program.
func (b *Builder) Build() ([]uint16, error) {
	if b.err != nil {
		return nil, b.err
	}

	for _, f := range b.fixups {
		addr, ok := b.labels[f.label]
		if !ok {
			return nil, fmt.Errorf("undefined label %q", f.label)
		}

		var word uint16
		var err error
		switch f.kind {
		case fixJump:
			word, err = insts.EncodeJump(addr)
		case fixCondJump:
			word, err = insts.EncodeCondJump(addr)
		case fixCall:
			word, err = insts.EncodeCall(addr)
		case fixCodeRead:
			word, err = insts.EncodeCall(addr | insts.CodeReadPCBit)
		}
		if err != nil {
			return nil, fmt.Errorf("label %q: %w", f.label, err)
		}
		b.words[f.at] = word
	}

	if len(b.words) > emu.CodeWords {
		return nil, fmt.Errorf("program of %d words exceeds code memory", len(b.words))
	}

	out := make([]uint16, len(b.words))
	copy(out, b.words)
	return out, nil
}

// MustBuild is Build that panics on error.
func (b *Builder) MustBuild() []uint16 {
	words, err := b.Build()
	if err != nil {
		panic(err)
	}
	return words
}
