package sched

import (
	"ember/emberos/arch"
	"ember/emberos/logger"
)

// DefaultStackSize is the stack allocation for tasks created with
// stackSize 0.
const DefaultStackSize = 32 * 1024

// State is the life-cycle state of a task.
type State uint8

const (
	StateNew State = iota
	StateReady
	StateBlocked
	StateBlockedWithTimeout
	StateSleeping
	StateTerminated

	stateUnknown
)

// String returns the state mnemonic used by ListTasks.
func (s State) String() string {
	// must stay in State declaration order
	names := [...]string{"new", "ready", "block", "block", "sleep", "term"}
	if int(s) >= len(names) {
		return "?"
	}
	return names[s]
}

// Task is the per-task record (the TCB). It is created by NewTask,
// handed to the scheduler with AddTask, and reclaimed by the scheduler
// when it terminates.
type Task struct {
	name      string
	state     State
	suspended bool

	// startable is set once the entry point and stack are wired;
	// the selector never picks a task without it.
	startable bool

	// wakeTicks is the wake deadline for Sleeping and
	// BlockedWithTimeout. After a blocked-with-timeout wake it doubles
	// as the wake reason: zero means the timeout expired, non-zero
	// means the task was signalled.
	wakeTicks uint32

	regs      arch.TaskRegisters
	stackBase uintptr

	// waitNext threads the task onto at most one wait list.
	waitNext *Task

	// termList holds tasks blocked in WaitForTermination.
	termList *Task

	run   func()
	sched *Scheduler
}

// NewTask creates a runnable task that executes run and terminates
// when run returns. The task does not run until AddTask registers it.
func NewTask(name string, stackSize int, run func()) *Task {
	if stackSize <= 0 {
		stackSize = DefaultStackSize
	}

	t := &Task{name: name, state: StateReady, run: run}
	t.stackBase = arch.AllocStack(uintptr(stackSize))
	arch.PrepareContext(&t.regs, t.stackBase+uintptr(stackSize), t.entry)
	t.startable = true
	return t
}

// entry is the task trampoline.
func (t *Task) entry() {
	t.run()
	t.Terminate()
}

// Name returns the task label.
func (t *Task) Name() string { return t.name }

// SetName relabels the task.
func (t *Task) SetName(name string) { t.name = name }

// State returns the current life-cycle state.
func (t *Task) State() State { return t.state }

// IsSuspended reports whether the task is excluded from selection.
func (t *Task) IsSuspended() bool { return t.suspended }

// Suspend excludes the task from selection until Resume, regardless of
// its state.
func (t *Task) Suspend() { t.suspended = true }

// Resume makes the task eligible for selection again.
func (t *Task) Resume() { t.suspended = false }

// Start promotes a task out of the New state. The scheduler calls it
// when new-task suspension is lifted.
func (t *Task) Start() { t.state = StateReady }

// Terminate ends the calling task. It must be invoked by the task
// itself and does not return; the scheduler reclaims the task on its
// next selection pass.
func (t *Task) Terminate() {
	s := t.sched
	s.lock.Acquire()
	if t != s.current {
		s.lock.Release()
		s.log.Write(logSource, logger.Panic, "task %q terminated from outside itself", t.name)
	}
	t.state = StateTerminated
	if t.termList != nil {
		s.wakeTasksLocked(&t.termList)
	}
	s.lock.Release()

	s.Yield()
	s.log.Write(logSource, logger.Panic, "terminated task %q resumed", t.name)
}

// WaitForTermination blocks the calling task until t has terminated
// and been reclaimed. It returns immediately when t is not registered.
func (t *Task) WaitForTermination() {
	s := t.sched
	for s.IsValidTask(t) {
		s.BlockTask(&t.termList, 0)
	}
}
