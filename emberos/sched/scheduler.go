// Package sched multiplexes tasks over the single CPU: cooperative
// yields, timed sleeps, wait-list blocking, and timer-driven
// preemption over the IRQ stub's saved register image.
package sched

import (
	"fmt"
	"io"
	"runtime"
	"unsafe"

	"ember/emberos/arch"
	"ember/emberos/logger"
	"ember/hal"
)

// MaxTasks is the task table capacity. It doubles as the "no runnable
// task" sentinel returned by the selector.
const MaxTasks = 64

const logSource = "sched"

// Scheduler owns the task table and the current-task pointer. All
// shared state is guarded by the scheduler lock, which on hardware is
// the IRQ-disabling spin lock shared with the timer interrupt.
type Scheduler struct {
	clock hal.Clock
	log   *logger.Logger

	lock spinLock

	// tasks[0:nTasks] is the live prefix; it may contain holes, but
	// every slot at nTasks and beyond must be nil.
	tasks  [MaxTasks]*Task
	nTasks int

	current  *Task
	nCurrent int

	suspendNewTasks int

	switchHandler      func(*Task)
	terminationHandler func(*Task)

	// preemption state, see preempt.go
	shouldSwitch   uint32
	timerTicks     uint32
	lastSwitchTick uint32
}

// New creates a scheduler whose current task is the calling context,
// registered as "Main" in slot 0.
func New(clock hal.Clock, log *logger.Logger) *Scheduler {
	s := &Scheduler{clock: clock, log: log}

	main := &Task{name: "Main", state: StateReady, startable: true, sched: s}
	s.tasks[0] = main
	s.nTasks = 1
	s.current = main
	s.nCurrent = 0
	return s
}

// AddTask registers a task into the first free slot. Registration is
// fatal when the table is full. While new-task suspension is in force
// the task is parked in the New state instead of its default state.
func (s *Scheduler) AddTask(t *Task) {
	s.lock.Acquire()
	t.sched = s
	if s.suspendNewTasks > 0 {
		t.state = StateNew
	}

	for i := 0; i < s.nTasks; i++ {
		if s.tasks[i] == nil {
			s.tasks[i] = t
			s.lock.Release()
			return
		}
	}

	if s.nTasks >= MaxTasks {
		s.lock.Release()
		s.log.Write(logSource, logger.Panic, "system limit of tasks exceeded")
	}

	s.tasks[s.nTasks] = t
	s.nTasks++
	s.lock.Release()
}

// SuspendNewTasks parks tasks registered from now on in the New state.
// Calls nest; the matching ResumeNewTasks releases them.
func (s *Scheduler) SuspendNewTasks() {
	s.lock.Acquire()
	s.suspendNewTasks++
	s.lock.Release()
}

// ResumeNewTasks undoes one SuspendNewTasks. When the last suspension
// is lifted, every task still in New is started.
func (s *Scheduler) ResumeNewTasks() {
	s.lock.Acquire()
	if s.suspendNewTasks <= 0 {
		s.lock.Release()
		s.log.Write(logSource, logger.Panic, "ResumeNewTasks without matching suspend")
	}
	s.suspendNewTasks--
	if s.suspendNewTasks == 0 {
		for i := 0; i < s.nTasks; i++ {
			if t := s.tasks[i]; t != nil && t.state == StateNew {
				t.Start()
			}
		}
	}
	s.lock.Release()
}

// GetCurrentTask returns the running task.
func (s *Scheduler) GetCurrentTask() *Task {
	s.lock.Acquire()
	defer s.lock.Release()
	return s.current
}

// GetTask returns the first registered task with the given name, or
// nil.
func (s *Scheduler) GetTask(name string) *Task {
	s.lock.Acquire()
	defer s.lock.Release()
	for i := 0; i < s.nTasks; i++ {
		if t := s.tasks[i]; t != nil && t.name == name {
			return t
		}
	}
	return nil
}

// IsValidTask reports whether t is currently registered.
func (s *Scheduler) IsValidTask(t *Task) bool {
	s.lock.Acquire()
	defer s.lock.Release()
	for i := 0; i < s.nTasks; i++ {
		if s.tasks[i] != nil && s.tasks[i] == t {
			return true
		}
	}
	return false
}

// RegisterTaskSwitchHandler installs the hook that runs after each
// task switch. Only one handler may be registered.
func (s *Scheduler) RegisterTaskSwitchHandler(fn func(*Task)) {
	s.lock.Acquire()
	if s.switchHandler != nil {
		s.lock.Release()
		s.log.Write(logSource, logger.Panic, "task switch handler already registered")
	}
	s.switchHandler = fn
	s.lock.Release()
}

// RegisterTaskTerminationHandler installs the hook that runs while a
// terminated task is reaped, before its resources are released. Only
// one handler may be registered.
func (s *Scheduler) RegisterTaskTerminationHandler(fn func(*Task)) {
	s.lock.Acquire()
	if s.terminationHandler != nil {
		s.lock.Release()
		s.log.Write(logSource, logger.Panic, "task termination handler already registered")
	}
	s.terminationHandler = fn
	s.lock.Release()
}

// ListTasks writes a diagnostic table of all registered tasks.
func (s *Scheduler) ListTasks(w io.Writer) {
	s.lock.Acquire()
	defer s.lock.Release()

	io.WriteString(w, "#  ADDR     STAT  FL NAME\n")
	for i := 0; i < s.nTasks; i++ {
		t := s.tasks[i]
		if t == nil {
			continue
		}

		stat := t.state.String()
		if t == s.current {
			stat = "run"
		}
		suspended := ' '
		if t.suspended {
			suspended = 'S'
		}
		timeout := ' '
		if t.state == StateBlockedWithTimeout {
			timeout = 'T'
		}
		fmt.Fprintf(w, "%02d %08X %-5s %c%c %s\n",
			i, uintptr(unsafe.Pointer(t)), stat, suspended, timeout, t.name)
	}
}

// Yield passes the CPU to the next runnable task. It returns when the
// calling task is selected again.
func (s *Scheduler) Yield() {
	s.taskSwitch()
}

// Sleep suspends the calling task for the given number of seconds.
func (s *Scheduler) Sleep(seconds uint32) {
	// cap each chunk so the tick delta stays valid as a signed int
	const sleepMax = 1800
	for seconds > sleepMax {
		s.UsSleep(sleepMax * 1_000_000)
		seconds -= sleepMax
	}
	s.UsSleep(seconds * 1_000_000)
}

// MsSleep suspends the calling task for the given milliseconds.
func (s *Scheduler) MsSleep(ms uint32) {
	if ms > 0 {
		s.UsSleep(ms * 1000)
	}
}

// UsSleep suspends the calling task for the given microseconds.
func (s *Scheduler) UsSleep(us uint32) {
	if us == 0 {
		return
	}
	ticks := us * (hal.ClockHz / 1_000_000)

	s.lock.Acquire()
	cur := s.current
	if cur.state != StateReady {
		s.lock.Release()
		s.log.Write(logSource, logger.Panic, "sleep from task %q in state %s", cur.name, cur.state)
	}
	cur.wakeTicks = s.clock.Ticks() + ticks
	cur.state = StateSleeping
	s.lock.Release()

	s.Yield()

	if cur.state != StateReady {
		s.log.Write(logSource, logger.Panic, "task %q woke in state %s", cur.name, cur.state)
	}
}

// BlockTask parks the calling task on the wait list and yields. With a
// non-zero timeout the task is woken when the deadline passes; the
// return value is true exactly when the timeout expired rather than
// WakeTasks signalling the list.
func (s *Scheduler) BlockTask(waitListHead **Task, usTimeout uint32) bool {
	s.lock.Acquire()
	cur := s.current
	if cur.waitNext != nil {
		s.lock.Release()
		s.log.Write(logSource, logger.Panic, "task %q is already on a wait list", cur.name)
	}
	if cur.state != StateReady {
		s.lock.Release()
		s.log.Write(logSource, logger.Panic, "block from task %q in state %s", cur.name, cur.state)
	}

	cur.waitNext = *waitListHead
	*waitListHead = cur

	if usTimeout == 0 {
		cur.state = StateBlocked
	} else {
		cur.wakeTicks = s.clock.Ticks() + usTimeout*(hal.ClockHz/1_000_000)
		cur.state = StateBlockedWithTimeout
	}
	s.lock.Release()

	s.Yield()

	s.lock.Acquire()
	// The signalled path drained the list already; after a timeout
	// wake the task is still linked and must be spliced out here.
	var prev *Task
	for p := *waitListHead; p != nil; p = p.waitNext {
		if p == cur {
			if prev != nil {
				prev.waitNext = p.waitNext
			} else {
				*waitListHead = p.waitNext
			}
		}
		prev = p
	}
	cur.waitNext = nil
	s.lock.Release()

	// Zero wake ticks flag a timeout expiry, see getNextTaskLocked.
	return cur.wakeTicks == 0
}

// WakeTasks readies every task parked on the wait list and empties it.
// The wake deadline is left untouched so BlockTask can tell a signal
// from a timeout.
func (s *Scheduler) WakeTasks(waitListHead **Task) {
	s.lock.Acquire()
	s.wakeTasksLocked(waitListHead)
	s.lock.Release()
}

func (s *Scheduler) wakeTasksLocked(waitListHead **Task) {
	t := *waitListHead
	*waitListHead = nil

	for t != nil {
		if t.state != StateBlocked && t.state != StateBlockedWithTimeout {
			s.log.Write(logSource, logger.Panic, "tried to wake non-blocked task %q", t.name)
		}
		t.state = StateReady

		next := t.waitNext
		t.waitNext = nil
		t = next
	}
}

// taskSwitch saves the calling context, selects the next runnable task
// and switches to it.
func (s *Scheduler) taskSwitch() {
	s.lock.Acquire()
	next := s.getNextTaskLocked()
	for next == MaxTasks {
		s.lock.Release()
		runtime.Gosched()
		s.lock.Acquire()
		next = s.getNextTaskLocked()
	}
	s.nCurrent = next

	t := s.tasks[next]
	if t == s.current {
		s.lock.Release()
		return
	}

	prev := s.current
	s.current = t
	handler := s.switchHandler
	s.lock.Release()

	if handler != nil {
		handler(t)
	}
	arch.SwitchContext(&prev.regs, &t.regs)
}

// getNextTaskLocked reaps terminated tasks, compacts the table when at
// least half the prefix is empty, then scans round-robin from the slot
// after the current task. It returns the selected index, or MaxTasks
// when nothing is runnable.
func (s *Scheduler) getNextTaskLocked() int {
	for i := s.nTasks; i < MaxTasks; i++ {
		if s.tasks[i] != nil {
			s.log.Write(logSource, logger.Panic, "task slot %d beyond the table prefix is occupied", i)
		}
	}

	removed := 0
	for i := 0; i < s.nTasks; i++ {
		t := s.tasks[i]
		if t == nil {
			removed++
			continue
		}
		if t.state != StateTerminated {
			continue
		}
		if t == s.current {
			// The current task cannot free its own stack; it stays
			// for one more pass.
			continue
		}
		if s.terminationHandler != nil {
			s.terminationHandler(t)
		}
		if t.termList != nil {
			s.wakeTasksLocked(&t.termList)
		}
		s.tasks[i] = nil
		arch.ReleaseContext(&t.regs)
		arch.FreeStack(t.stackBase)
		removed++
	}

	if removed >= s.nTasks/2 {
		count := 0
		for i := 0; i < s.nTasks; i++ {
			t := s.tasks[i]
			if t == nil {
				continue
			}
			s.tasks[count] = t
			if count != i {
				s.tasks[i] = nil
			}
			if i == s.nCurrent {
				s.nCurrent = count
			}
			count++
		}
		s.nTasks = count
	}

	task := s.nCurrent
	if task >= MaxTasks {
		task = 0
	}
	ticks := s.clock.Ticks()

	for i := 1; i <= s.nTasks; i++ {
		task++
		if task >= s.nTasks {
			task = 0
		}

		t := s.tasks[task]
		if t == nil {
			continue
		}
		if !t.startable {
			// entry point or stack not wired yet
			continue
		}
		if t.suspended {
			continue
		}

		switch t.state {
		case StateReady:
			return task

		case StateBlocked, StateNew:
			continue

		case StateBlockedWithTimeout:
			if int32(t.wakeTicks-ticks) > 0 {
				continue
			}
			t.state = StateReady
			t.wakeTicks = 0 // wake reason: timeout expired
			return task

		case StateSleeping:
			if int32(t.wakeTicks-ticks) > 0 {
				continue
			}
			t.state = StateReady
			return task

		case StateTerminated:
			if t != s.current {
				s.log.Write(logSource, logger.Panic, "terminated task %q survived reaping", t.name)
			}

		default:
			s.log.Write(logSource, logger.Panic, "task %q has unknown state %d", t.name, t.state)
		}
	}

	return MaxTasks
}
