package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/j1sim/insts"
)

var _ = Describe("Encoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	It("should encode literals", func() {
		word, err := insts.EncodeLiteral(5)

		Expect(err).NotTo(HaveOccurred())
		Expect(word).To(Equal(uint16(0x8005)))
	})

	It("should reject literals wider than 15 bits", func() {
		_, err := insts.EncodeLiteral(0x8000)

		Expect(err).To(MatchError(ContainSubstring("exceeds 15 bits")))
	})

	It("should encode branches", func() {
		Expect(insts.EncodeJump(0x10)).To(Equal(uint16(0x0010)))
		Expect(insts.EncodeCondJump(0x20)).To(Equal(uint16(0x2020)))
		Expect(insts.EncodeCall(0x1ABC)).To(Equal(uint16(0x5ABC)))
	})

	It("should reject targets wider than 13 bits", func() {
		_, err := insts.EncodeCall(0x2000)

		Expect(err).To(HaveOccurred())
	})

	It("should encode a return", func() {
		word, err := insts.EncodeALU(insts.ALUFields{
			Op:     insts.ALUT,
			Return: true,
			RDelta: -1,
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(word).To(Equal(uint16(0x608C)))
	})

	It("should reject out-of-range deltas", func() {
		_, err := insts.EncodeALU(insts.ALUFields{DDelta: 2})
		Expect(err).To(MatchError(ContainSubstring("data stack delta")))

		_, err = insts.EncodeALU(insts.ALUFields{RDelta: -3})
		Expect(err).To(MatchError(ContainSubstring("return stack delta")))
	})

	It("should round-trip ALU fields through the decoder", func() {
		for op := insts.ALUOp(0); op < 16; op++ {
			for d := int8(-2); d <= 1; d++ {
				f := insts.ALUFields{
					Op:     op,
					Func:   insts.FuncTtoR,
					Return: d < 0,
					DDelta: d,
					RDelta: -d - 1,
				}
				inst := decoder.Decode(insts.MustEncode(insts.EncodeALU(f)), 0)

				Expect(inst.Class).To(Equal(insts.ClassALU))
				Expect(inst.ALUOp).To(Equal(f.Op))
				Expect(inst.Func).To(Equal(f.Func))
				Expect(inst.Return).To(Equal(f.Return))
				Expect(inst.DDelta).To(Equal(f.DDelta))
				Expect(inst.RDelta).To(Equal(f.RDelta))
			}
		}
	})

	It("should panic in MustEncode on error", func() {
		Expect(func() { insts.MustEncode(insts.EncodeLiteral(0xFFFF)) }).To(Panic())
	})

	DescribeTable("mnemonics",
		func(word, pc uint16, expected string) {
			Expect(decoder.Decode(word, pc).String()).To(Equal(expected))
		},
		Entry("literal", uint16(0x8005), uint16(0), "LIT 0x0005"),
		Entry("jump", uint16(0x0010), uint16(0), "JMP 0x0010"),
		Entry("cond jump", uint16(0x2020), uint16(0), "0BRANCH 0x0020"),
		Entry("call", uint16(0x4100), uint16(0), "CALL 0x0100"),
		Entry("add and pop", uint16(0x6203), uint16(0), "ALU T+N d-1"),
		Entry("return", uint16(0x608C), uint16(0), "ALU T r-1 RET"),
		Entry("store", uint16(0x6032), uint16(0), "ALU T d-2 N->[T]"),
		Entry("code read", uint16(0x6203), uint16(0x1000), "DATA 0x6203"),
	)
})
