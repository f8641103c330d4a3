//go:build tinygo

package sched

import "ember/emberos/arch"

// spinLock is the scheduler-wide critical section. On a single core
// masking IRQs is both the lock and the barrier against the timer
// interrupt. Release restores the status word saved by Acquire, so
// taking the lock where IRQs are already masked leaves them masked.
// Acquisitions do not nest: a second Acquire overwrites the saved word.
type spinLock struct {
	saved uintptr
}

func (l *spinLock) Acquire() {
	l.saved = arch.DisableIRQs()
}

func (l *spinLock) Release() {
	arch.RestoreIRQs(l.saved)
}
