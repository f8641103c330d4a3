//go:build !tinygo

package arch

import "testing"

func TestPrepareContextSetsTrampoline(t *testing.T) {
	var regs TaskRegisters
	PrepareContext(&regs, 0x8000, func() {})
	defer ReleaseContext(&regs)

	if regs.PC != TaskEntry() {
		t.Fatalf("expected PC at the trampoline, got %#x", regs.PC)
	}
	if regs.SP != 0x8000 {
		t.Fatalf("expected SP recorded, got %#x", regs.SP)
	}
}

func TestSwitchContextRoundTrip(t *testing.T) {
	var main, task TaskRegisters

	trace := make(chan string, 4)
	PrepareContext(&task, 0, func() {
		trace <- "task"
		SwitchContext(&task, &main)
		t.Error("expected released context not to resume")
	})

	SwitchContext(&main, &task)
	trace <- "main"
	ReleaseContext(&task)

	if got := <-trace; got != "task" {
		t.Fatalf("expected the task to run first, got %q", got)
	}
	if got := <-trace; got != "main" {
		t.Fatalf("expected main resumed second, got %q", got)
	}
}

func TestSwitchContextToSelfReturns(t *testing.T) {
	var main TaskRegisters
	SwitchContext(&main, &main)
}
