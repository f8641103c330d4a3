package sched

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"ember/emberos/logger"
)

// fakeClock is a hand-driven hal.Clock. autoStep advances the tick
// counter on every read so selection loops make progress without a
// real timer.
type fakeClock struct {
	mu       sync.Mutex
	ticks    uint32
	total    uint64
	autoStep uint32
	seconds  uint32
	handlers []func()
}

func (c *fakeClock) Ticks() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks += c.autoStep
	c.total += uint64(c.autoStep)
	return c.ticks
}

func (c *fakeClock) Seconds() uint32 { return c.seconds }

func (c *fakeClock) RegisterPeriodicHandler(fn func()) {
	c.handlers = append(c.handlers, fn)
}

func (c *fakeClock) advance(n uint32) {
	c.mu.Lock()
	c.ticks += n
	c.total += uint64(n)
	c.mu.Unlock()
}

func (c *fakeClock) now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// fire simulates one period of the timer interrupt.
func (c *fakeClock) fire() {
	for _, fn := range c.handlers {
		fn()
	}
}

// recorder is a goroutine-safe console device capturing log output.
type recorder struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (r *recorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

func (r *recorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

type haltError struct{}

func (haltError) Error() string { return "halted" }

func newTestScheduler(t *testing.T) (*Scheduler, *fakeClock, *recorder) {
	t.Helper()
	clock := &fakeClock{}
	dev := &recorder{}
	log := logger.New(dev, func() { panic(haltError{}) })
	return New(clock, log), clock, dev
}

// expectHalt runs fn and fails the test unless it hits the fatal path.
func expectHalt(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected fatal halt, got none")
		} else if _, ok := r.(haltError); !ok {
			panic(r)
		}
	}()
	fn()
}

func containsLine(out, substr string) bool {
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
