// Package loader reads J1 program images.
//
// Two formats are supported. Hex images are text with whitespace-separated
// hexadecimal words, "//" or "#" comments and "@addr" directives that move
// the load origin, the layout $readmemh accepts. Binary images are raw
// little-endian 16-bit words loaded at address 0.
package loader

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sarchlab/j1sim/emu"
)

// ErrOddLength is returned for a binary image with a trailing byte.
var ErrOddLength = errors.New("binary image has odd length")

// ErrTooLarge is returned when an image does not fit in code memory.
var ErrTooLarge = errors.New("image larger than code memory")

// Segment is a run of consecutive words.
type Segment struct {
	// Origin is the word address of the first word.
	Origin uint16
	// Words holds the segment contents.
	Words []uint16
}

// End returns the address one past the last word.
func (s Segment) End() int {
	return int(s.Origin) + len(s.Words)
}

// Program represents a loaded image ready to be placed in code memory.
type Program struct {
	Segments []Segment
}

// Size returns the total number of words in the image.
func (p *Program) Size() int {
	n := 0
	for _, s := range p.Segments {
		n += len(s.Words)
	}
	return n
}

// Words returns the image flattened from address 0 to the end of the last
// segment. Gaps are zero.
func (p *Program) Words() []uint16 {
	end := 0
	for _, s := range p.Segments {
		end = max(end, s.End())
	}

	out := make([]uint16, end)
	for _, s := range p.Segments {
		copy(out[s.Origin:], s.Words)
	}
	return out
}

// LoadInto writes every segment into code memory.
func (p *Program) LoadInto(code *emu.CodeMemory) error {
	for _, s := range p.Segments {
		if err := code.Load(s.Origin, s.Words); err != nil {
			return fmt.Errorf("segment at 0x%04X: %w", s.Origin, err)
		}
	}
	return nil
}

// Load reads an image from path. Files ending in .hex are parsed as hex
// text; anything else is treated as binary.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	var prog *Program
	if strings.EqualFold(filepath.Ext(path), ".hex") {
		prog, err = ParseHex(f)
	} else {
		prog, err = ParseBinary(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return prog, nil
}

// ParseHex parses a hex text image.
func ParseHex(r io.Reader) (*Program, error) {
	prog := &Program{}
	cur := Segment{}
	addr := 0

	flush := func() {
		if len(cur.Words) > 0 {
			prog.Segments = append(prog.Segments, cur)
		}
	}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := stripComment(scanner.Text())

		for _, tok := range strings.Fields(text) {
			if strings.HasPrefix(tok, "@") {
				origin, err := strconv.ParseUint(tok[1:], 16, 16)
				if err != nil {
					return nil, fmt.Errorf("line %d: bad origin %q: %w", line, tok, err)
				}
				if int(origin) >= emu.CodeWords {
					return nil, fmt.Errorf("line %d: origin %q: %w", line, tok, ErrTooLarge)
				}
				flush()
				addr = int(origin)
				cur = Segment{Origin: uint16(origin)}
				continue
			}

			word, err := strconv.ParseUint(tok, 16, 16)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad word %q: %w", line, tok, err)
			}
			if addr >= emu.CodeWords {
				return nil, fmt.Errorf("line %d: %w", line, ErrTooLarge)
			}
			cur.Words = append(cur.Words, uint16(word))
			addr++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read hex image: %w", err)
	}

	flush()
	return prog, nil
}

func stripComment(s string) string {
	if i := strings.Index(s, "//"); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	return s
}

// ParseBinary parses a raw little-endian image loaded at address 0.
func ParseBinary(r io.Reader) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read binary image: %w", err)
	}
	if len(data)%2 != 0 {
		return nil, ErrOddLength
	}
	if len(data)/2 > emu.CodeWords {
		return nil, fmt.Errorf("%d words: %w", len(data)/2, ErrTooLarge)
	}

	words := make([]uint16, len(data)/2)
	for i := range words {
		words[i] = binary.LittleEndian.Uint16(data[2*i:])
	}

	prog := &Program{}
	if len(words) > 0 {
		prog.Segments = []Segment{{Origin: 0, Words: words}}
	}
	return prog, nil
}

// WriteHex writes words as a hex image, one word per line.
func WriteHex(w io.Writer, words []uint16) error {
	bw := bufio.NewWriter(w)
	for _, word := range words {
		if _, err := fmt.Fprintf(bw, "%04x\n", word); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteBinary writes words as a little-endian binary image.
func WriteBinary(w io.Writer, words []uint16) error {
	return binary.Write(w, binary.LittleEndian, words)
}
