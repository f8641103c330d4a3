//go:build !tinygo

package sched

import "sync"

// spinLock is the scheduler-wide critical section. On the host build a
// mutex stands in for the IRQ-disabling spin lock of the hardware
// target.
type spinLock struct {
	mu sync.Mutex
}

func (l *spinLock) Acquire() { l.mu.Lock() }
func (l *spinLock) Release() { l.mu.Unlock() }
