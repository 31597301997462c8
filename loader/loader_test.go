package loader_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/j1sim/emu"
	"github.com/sarchlab/j1sim/loader"
)

var _ = Describe("Loader", func() {
	Describe("ParseHex", func() {
		It("should parse one word per line", func() {
			prog, err := loader.ParseHex(strings.NewReader("8005\n6203\n0002\n"))

			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Segments).To(HaveLen(1))
			Expect(prog.Segments[0].Origin).To(Equal(uint16(0)))
			Expect(prog.Segments[0].Words).To(Equal([]uint16{0x8005, 0x6203, 0x0002}))
		})

		It("should skip comments and blank lines", func() {
			src := `
// header
8001 # one
  8002 8003   // two words

#
`
			prog, err := loader.ParseHex(strings.NewReader(src))

			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Words()).To(Equal([]uint16{0x8001, 0x8002, 0x8003}))
			Expect(prog.Size()).To(Equal(3))
		})

		It("should start a new segment at an origin directive", func() {
			src := "8001\n@10\nABCD\nabce\n"
			prog, err := loader.ParseHex(strings.NewReader(src))

			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Segments).To(HaveLen(2))
			Expect(prog.Segments[1].Origin).To(Equal(uint16(0x10)))
			Expect(prog.Segments[1].Words).To(Equal([]uint16{0xABCD, 0xABCE}))
			Expect(prog.Segments[1].End()).To(Equal(0x12))

			words := prog.Words()
			Expect(words).To(HaveLen(0x12))
			Expect(words[0]).To(Equal(uint16(0x8001)))
			Expect(words[5]).To(Equal(uint16(0)))
			Expect(words[0x10]).To(Equal(uint16(0xABCD)))
		})

		It("should report the line of a bad digit", func() {
			_, err := loader.ParseHex(strings.NewReader("8001\n80g1\n"))

			Expect(err).To(MatchError(ContainSubstring("line 2")))
			Expect(err).To(MatchError(ContainSubstring("bad word")))
		})

		It("should reject words wider than 16 bits", func() {
			_, err := loader.ParseHex(strings.NewReader("10000\n"))

			Expect(err).To(MatchError(strconv.ErrRange))
		})

		It("should reject a bad origin", func() {
			_, err := loader.ParseHex(strings.NewReader("@xyz\n"))
			Expect(err).To(MatchError(ContainSubstring("bad origin")))

			_, err = loader.ParseHex(strings.NewReader("@1000\n"))
			Expect(err).To(MatchError(loader.ErrTooLarge))
		})

		It("should reject images past the end of code memory", func() {
			_, err := loader.ParseHex(strings.NewReader("@fff\n0001\n0002\n"))

			Expect(err).To(MatchError(loader.ErrTooLarge))
			Expect(err).To(MatchError(ContainSubstring("line 3")))
		})
	})

	Describe("ParseBinary", func() {
		It("should read little-endian words", func() {
			prog, err := loader.ParseBinary(bytes.NewReader([]byte{0x05, 0x80, 0x03, 0x62}))

			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Words()).To(Equal([]uint16{0x8005, 0x6203}))
		})

		It("should reject odd lengths", func() {
			_, err := loader.ParseBinary(bytes.NewReader([]byte{0x05, 0x80, 0x03}))

			Expect(err).To(MatchError(loader.ErrOddLength))
		})

		It("should reject images larger than code memory", func() {
			data := make([]byte, 2*emu.CodeWords+2)
			_, err := loader.ParseBinary(bytes.NewReader(data))

			Expect(err).To(MatchError(loader.ErrTooLarge))
		})

		It("should accept an empty image", func() {
			prog, err := loader.ParseBinary(bytes.NewReader(nil))

			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Segments).To(BeEmpty())
			Expect(prog.Size()).To(Equal(0))
		})
	})

	Describe("Load", func() {
		var dir string
		words := []uint16{0x8007, 0x0001, 0xFFFF}

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("should pick the format from the extension", func() {
			hexPath := filepath.Join(dir, "prog.hex")
			binPath := filepath.Join(dir, "prog.bin")

			var hex, bin bytes.Buffer
			Expect(loader.WriteHex(&hex, words)).To(Succeed())
			Expect(loader.WriteBinary(&bin, words)).To(Succeed())
			Expect(hex.String()).To(Equal("8007\n0001\nffff\n"))
			Expect(os.WriteFile(hexPath, hex.Bytes(), 0644)).To(Succeed())
			Expect(os.WriteFile(binPath, bin.Bytes(), 0644)).To(Succeed())

			fromHex, err := loader.Load(hexPath)
			Expect(err).NotTo(HaveOccurred())
			fromBin, err := loader.Load(binPath)
			Expect(err).NotTo(HaveOccurred())

			Expect(fromHex.Words()).To(Equal(words))
			Expect(fromBin.Words()).To(Equal(words))
		})

		It("should name the file in parse errors", func() {
			path := filepath.Join(dir, "bad.hex")
			Expect(os.WriteFile(path, []byte("zz\n"), 0644)).To(Succeed())

			_, err := loader.Load(path)
			Expect(err).To(MatchError(ContainSubstring("bad.hex")))
		})

		It("should fail on a missing file", func() {
			_, err := loader.Load(filepath.Join(dir, "missing.bin"))

			Expect(err).To(MatchError(os.ErrNotExist))
		})
	})

	Describe("LoadInto", func() {
		It("should place every segment in code memory", func() {
			prog, err := loader.ParseHex(strings.NewReader("8001\n@100\n8002\n"))
			Expect(err).NotTo(HaveOccurred())

			code := emu.NewCodeMemory()
			Expect(prog.LoadInto(code)).To(Succeed())

			Expect(code.Fetch(0)).To(Equal(uint16(0x8001)))
			Expect(code.Fetch(0x100)).To(Equal(uint16(0x8002)))
		})
	})
})
