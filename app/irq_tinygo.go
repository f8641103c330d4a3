//go:build tinygo

package app

import "ember/emberos/arch"

// Entry points the exception stubs call into the kernel.

//go:export emberHandleSyscall
func handleSyscall(regs *arch.TaskRegisters) {
	if booted != nil {
		booted.s.HandleSyscall(regs)
	}
}

//go:export emberIRQReturn
func irqReturn(regs *arch.TaskRegisters) {
	if booted != nil && booted.s.PreemptRequested() {
		booted.s.ContextSwitchOnIRQReturn(regs)
	}
}
