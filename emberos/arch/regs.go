// Package arch holds the 32-bit ARM context layout shared with the
// exception stubs, and the context-switch entry points. The host build
// simulates switching with parked goroutines so the scheduler runs
// unmodified in tests and in the desktop simulator.
package arch

// TaskRegisters is the CPU register image of a suspended task.
//
// The field order mirrors the frame the IRQ stub stores on entry:
// r0-r12, sp, lr, pc, then the saved program status word. The stub
// copies this struct verbatim, so it must stay in sync with the
// assembly.
type TaskRegisters struct {
	R0   uint32
	R1   uint32
	R2   uint32
	R3   uint32
	R4   uint32
	R5   uint32
	R6   uint32
	R7   uint32
	R8   uint32
	R9   uint32
	R10  uint32
	R11  uint32
	R12  uint32
	SP   uint32
	LR   uint32
	PC   uint32
	CPSR uint32
}
