package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/sarchlab/j1sim/emu"
)

// ConsoleHost feeds bytes read from a host stream into a ConsoleDevice.
// When the stream is a terminal it is switched to raw mode so that
// keystrokes arrive one at a time.
type ConsoleHost struct {
	device *emu.ConsoleDevice
	in     io.Reader
	errOut io.Writer

	stopCh  chan struct{}
	stopped sync.Once

	fd           int
	oldTermState *term.State
}

// NewConsoleHost creates a host adapter that reads in into device.
// Terminal setup failures are reported to errOut.
func NewConsoleHost(device *emu.ConsoleDevice, in io.Reader, errOut io.Writer) *ConsoleHost {
	return &ConsoleHost{
		device: device,
		in:     in,
		errOut: errOut,
		stopCh: make(chan struct{}),
	}
}

// Start begins reading in a goroutine. Call Stop to restore the terminal.
func (h *ConsoleHost) Start() {
	if f, ok := h.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		h.fd = int(f.Fd())
		oldState, err := term.MakeRaw(h.fd)
		if err != nil {
			_, _ = fmt.Fprintf(h.errOut, "console: failed to set raw mode: %v\n", err)
		} else {
			h.oldTermState = oldState
		}
	}

	raw := h.oldTermState != nil
	go func() {
		r := bufio.NewReader(h.in)
		for {
			b, err := r.ReadByte()
			if err != nil {
				return
			}
			select {
			case <-h.stopCh:
				return
			default:
			}
			// Raw mode sends CR for Enter.
			if raw && b == '\r' {
				b = '\n'
			}
			h.device.Feed(b)
		}
	}()
}

// Stop ends feeding and restores the terminal. The reader goroutine exits
// on its next byte or at end of input.
func (h *ConsoleHost) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
	})
	if h.oldTermState != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
	}
}
