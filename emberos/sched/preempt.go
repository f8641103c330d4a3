package sched

import (
	"sync/atomic"

	"ember/emberos/arch"
	"ember/emberos/logger"
)

// Preemption gives each task a one-timer-tick time slice. The periodic
// timer handler raises the switch flag; the IRQ stub consults
// PreemptRequested on its return path and, when set, hands the saved
// register image to ContextSwitchOnIRQReturn.

// EnablePreemptiveMultitasking arms the timer-driven switch path. The
// build supports it on a single-core 32-bit target only.
func (s *Scheduler) EnablePreemptiveMultitasking() {
	atomic.StoreUint32(&s.shouldSwitch, 0)
	atomic.StoreUint32(&s.timerTicks, 0)
	atomic.StoreUint32(&s.lastSwitchTick, 0)
	s.clock.RegisterPeriodicHandler(s.timerTick)
}

// timerTick runs in interrupt context once per timer period.
func (s *Scheduler) timerTick() {
	tick := atomic.AddUint32(&s.timerTicks, 1)
	if tick-atomic.LoadUint32(&s.lastSwitchTick) >= 1 {
		// The interrupted task has used up its slice.
		atomic.StoreUint32(&s.lastSwitchTick, tick)
		atomic.StoreUint32(&s.shouldSwitch, 1)
	} else {
		atomic.StoreUint32(&s.shouldSwitch, 0)
	}
}

// PreemptRequested reports whether the IRQ return path should invoke
// ContextSwitchOnIRQReturn.
func (s *Scheduler) PreemptRequested() bool {
	return atomic.LoadUint32(&s.shouldSwitch) != 0
}

// ContextSwitchOnIRQReturn reschedules on the return path of the timer
// interrupt. regs is the register image the IRQ stub saved on entry;
// when a different task is selected the image is swapped in place so
// the stub resumes the new task.
func (s *Scheduler) ContextSwitchOnIRQReturn(regs *arch.TaskRegisters) {
	atomic.StoreUint32(&s.shouldSwitch, 0)

	s.lock.Acquire()
	for {
		next := s.getNextTaskLocked()
		if next != MaxTasks {
			s.nCurrent = next
			break
		}
		if s.nTasks <= 0 {
			s.log.Write(logSource, logger.Panic, "no tasks left to schedule")
		}
	}

	next := s.tasks[s.nCurrent]
	if next == s.current {
		s.lock.Release()
		return
	}

	old := s.current
	old.regs = *regs
	*regs = next.regs
	s.current = next
	handler := s.switchHandler
	s.lock.Release()

	if handler != nil {
		handler(next)
	}
}
