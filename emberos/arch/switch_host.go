//go:build !tinygo

package arch

import (
	"runtime"
	"sync"
)

// The host build has no register file to swap. Every register image is
// bound to a goroutine instead: SwitchContext parks the calling
// goroutine and unparks the target's, and the first switch into a
// prepared context starts its goroutine at the entry function. The
// images themselves still carry the symbolic PC/SP values so code that
// inspects or copies them behaves as on hardware.

// taskEntryPC stands in for the address of the TaskEntry trampoline.
const taskEntryPC = 0xE17E0000

type hostContext struct {
	resume   chan struct{}
	entry    func()
	started  bool
	disposed bool
}

var (
	hostMu       sync.Mutex
	hostContexts = map[*TaskRegisters]*hostContext{}
)

// TaskEntry returns the trampoline address new contexts start at.
func TaskEntry() uint32 { return taskEntryPC }

// PrepareContext wires a fresh register image to its entry function.
// stackTop is recorded for diagnostics only; host tasks run on
// goroutine stacks.
func PrepareContext(regs *TaskRegisters, stackTop uintptr, entry func()) {
	regs.PC = taskEntryPC
	regs.SP = uint32(stackTop)

	hostMu.Lock()
	hostContexts[regs] = &hostContext{resume: make(chan struct{}, 1), entry: entry}
	hostMu.Unlock()
}

// SwitchContext suspends the caller's context and resumes to. It
// returns when some later switch comes back to from.
func SwitchContext(from, to *TaskRegisters) {
	hostMu.Lock()
	fc := hostContextFor(from)
	tc := hostContextFor(to)
	hostMu.Unlock()
	if fc == tc {
		return
	}

	if !tc.started {
		tc.started = true
		go tc.entry()
	} else {
		tc.resume <- struct{}{}
	}

	<-fc.resume
	if fc.disposed {
		runtime.Goexit()
	}
}

// ReleaseContext frees the goroutine behind a terminated context. The
// context must not be the running one.
func ReleaseContext(regs *TaskRegisters) {
	hostMu.Lock()
	c := hostContexts[regs]
	delete(hostContexts, regs)
	hostMu.Unlock()
	if c == nil || !c.started {
		return
	}
	c.disposed = true
	c.resume <- struct{}{}
}

// AllocStack is a no-op on the host; tasks run on goroutine stacks.
func AllocStack(size uintptr) uintptr { return 0 }

// FreeStack is a no-op on the host.
func FreeStack(base uintptr) {}

// hostContextFor returns the context bound to regs, creating a running
// one on first sight. The lazily created case is the bootstrap task,
// whose context is the goroutine that built the scheduler.
func hostContextFor(regs *TaskRegisters) *hostContext {
	c := hostContexts[regs]
	if c == nil {
		c = &hostContext{resume: make(chan struct{}, 1), started: true}
		hostContexts[regs] = c
	}
	return c
}
