package emu

import (
	"io"
	"sync"
)

// IODevice is the IO space seen through the ioRd and ioWr strobes.
// ReadIO is called in the same tick as the strobe, with MemAddr as addr.
type IODevice interface {
	ReadIO(addr uint16) uint16
	WriteIO(addr uint16, value uint16)
}

// NullDevice reads as zero and discards writes.
type NullDevice struct{}

// ReadIO returns 0.
func (NullDevice) ReadIO(uint16) uint16 { return 0 }

// WriteIO does nothing.
func (NullDevice) WriteIO(uint16, uint16) {}

// Console device ports.
const (
	ConsoleData   uint16 = 0 // write: emit low byte; read: pop input byte
	ConsoleStatus uint16 = 1 // read: 1 if input is queued
)

// ConsoleDevice is a character device. Input may be fed from another
// goroutine while the core runs.
type ConsoleDevice struct {
	out io.Writer

	mu    sync.Mutex
	input []byte
}

// NewConsoleDevice creates a console that writes characters to out.
func NewConsoleDevice(out io.Writer) *ConsoleDevice {
	return &ConsoleDevice{out: out}
}

// Feed queues input bytes.
func (d *ConsoleDevice) Feed(b ...byte) {
	d.mu.Lock()
	d.input = append(d.input, b...)
	d.mu.Unlock()
}

// Pending returns the number of queued input bytes.
func (d *ConsoleDevice) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.input)
}

// ReadIO implements IODevice. Unmapped ports read as zero.
func (d *ConsoleDevice) ReadIO(addr uint16) uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch addr {
	case ConsoleData:
		if len(d.input) == 0 {
			return 0
		}
		b := d.input[0]
		d.input = d.input[1:]
		return uint16(b)
	case ConsoleStatus:
		if len(d.input) > 0 {
			return 1
		}
	}
	return 0
}

// WriteIO implements IODevice. Writes to ports other than ConsoleData
// are ignored.
func (d *ConsoleDevice) WriteIO(addr uint16, value uint16) {
	if addr != ConsoleData || d.out == nil {
		return
	}
	_, _ = d.out.Write([]byte{byte(value)})
}
