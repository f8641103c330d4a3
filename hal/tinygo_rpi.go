//go:build tinygo

package hal

import (
	"runtime/volatile"
	"unsafe"
)

// BCM2835 peripherals (Raspberry Pi 1).
const (
	peripheralBase = 0x20000000

	systimerCLO = peripheralBase + 0x3004

	uart0Base = peripheralBase + 0x201000
	uart0DR   = uart0Base + 0x00
	uart0FR   = uart0Base + 0x18
)

func mmioReg(addr uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(addr))
}

type rpiHAL struct {
	clock   *rpiClock
	console Console
}

// New returns the Raspberry Pi HAL. The bootloader has already set up
// the UART and unmasked the timer IRQ before the kernel runs.
func New() HAL {
	h := &rpiHAL{
		clock:   &rpiClock{},
		console: &rpiUART{},
	}
	activeClock = h.clock
	return h
}

func (h *rpiHAL) Clock() Clock     { return h.clock }
func (h *rpiHAL) Console() Console { return h.console }

func (h *rpiHAL) Halt() {
	maskInterrupts()
	for {
	}
}

// rpiClock reads the free-running 1 MHz system timer. Seconds are
// accumulated from the periodic timer interrupt.
type rpiClock struct {
	handlers   []func()
	subSeconds uint32
	seconds    uint32
}

func (c *rpiClock) Ticks() uint32 {
	return mmioReg(systimerCLO).Get()
}

func (c *rpiClock) Seconds() uint32 {
	return c.seconds
}

func (c *rpiClock) RegisterPeriodicHandler(fn func()) {
	c.handlers = append(c.handlers, fn)
}

func (c *rpiClock) tick() {
	c.subSeconds++
	if c.subSeconds >= TimerHz {
		c.subSeconds = 0
		c.seconds++
	}
	for _, fn := range c.handlers {
		fn()
	}
}

var activeClock *rpiClock

// TimerInterruptHandler is invoked from the timer IRQ stub once per
// timer period.
//
//go:export emberTimerTick
func TimerInterruptHandler() {
	if activeClock != nil {
		activeClock.tick()
	}
}

// rpiUART writes console bytes to the PL011.
type rpiUART struct{}

func (u *rpiUART) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\n' {
			u.putc('\r')
		}
		u.putc(b)
	}
	return len(p), nil
}

func (u *rpiUART) putc(b byte) {
	for mmioReg(uart0FR).Get()&(1<<5) != 0 {
	}
	mmioReg(uart0DR).Set(uint32(b))
}

//go:external
func maskInterrupts()
