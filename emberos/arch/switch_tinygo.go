//go:build tinygo

package arch

import "unsafe"

// The real context switch lives in the exception assembly. The Go side
// only prepares register images and forwards to the stubs.

// The scheduler assumes a single-core 32-bit target.
const _ = 4 - unsafe.Sizeof(uintptr(0))

//go:extern TaskEntry
var taskEntryTrampoline byte

// TaskEntry returns the address of the assembly trampoline every new
// task starts at. The trampoline loads the entry closure from r4 and
// jumps to it.
func TaskEntry() uint32 {
	return uint32(uintptr(unsafe.Pointer(&taskEntryTrampoline)))
}

// PrepareContext wires a fresh register image so the first switch into
// it enters the trampoline with the closure in r4.
func PrepareContext(regs *TaskRegisters, stackTop uintptr, entry func()) {
	regs.R4 = uint32(uintptr(*(*unsafe.Pointer)(unsafe.Pointer(&entry))))
	regs.SP = uint32(stackTop)
	regs.PC = TaskEntry()
	regs.CPSR = initialPSR()
}

// SwitchContext saves the running context into from and resumes to.
//
//go:external
func SwitchContext(from, to *TaskRegisters)

// ReleaseContext is a no-op on hardware; the task's stack is returned
// to the allocator by the caller.
func ReleaseContext(regs *TaskRegisters) {}

// AllocStack reserves a task stack from the platform allocator and
// returns its base (lowest address).
//
//go:external
func AllocStack(size uintptr) uintptr

// FreeStack returns a task stack to the platform allocator.
//
//go:external
func FreeStack(base uintptr)

// DisableIRQs masks local interrupts and returns the previous state
// word for RestoreIRQs.
//
//go:external
func DisableIRQs() uintptr

// RestoreIRQs restores the interrupt state saved by DisableIRQs.
//
//go:external
func RestoreIRQs(state uintptr)

//go:external
func initialPSR() uint32
