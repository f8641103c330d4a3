//go:build !tinygo

package hal

import (
	"io"
	"os"
)

type hostHAL struct {
	clock   *hostClock
	console Console
	fb      *Framebuffer
}

// New returns a host HAL implementation. Console output goes to stdout
// and to the framebuffer terminal; the framebuffer is shown on screen
// only when a window is opened.
func New() HAL {
	fb := NewFramebuffer(320, 240)
	return &hostHAL{
		clock:   newHostClock(),
		console: teeConsole{a: os.Stdout, b: NewTerminalConsole(fb)},
		fb:      fb,
	}
}

func (h *hostHAL) Clock() Clock     { return h.clock }
func (h *hostHAL) Console() Console { return h.console }

func (h *hostHAL) Halt() {
	panic("halt")
}

// teeConsole duplicates console writes to two sinks.
type teeConsole struct {
	a io.Writer
	b io.Writer
}

func (t teeConsole) Write(p []byte) (int, error) {
	n, err := t.a.Write(p)
	t.b.Write(p)
	return n, err
}
