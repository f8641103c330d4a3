package sched

import (
	"bytes"
	"strings"
	"testing"
	"unsafe"
)

func TestSyscallGetTime(t *testing.T) {
	s, clock, _ := newTestScheduler(t)

	clock.seconds = 42
	if got := s.Syscall(SysGetTime, 0, 0, 0, 0); got != 42 {
		t.Fatalf("expected 42 seconds, got %d", got)
	}
}

func TestSyscallGetTaskName(t *testing.T) {
	s, _, _ := newTestScheduler(t)

	buf := make([]byte, 16)
	got := s.Syscall(SysGetTaskName, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)), 0, 0)
	if got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	end := bytes.IndexByte(buf, 0)
	if end < 0 {
		t.Fatal("expected a NUL terminated name")
	}
	if string(buf[:end]) != "Main" {
		t.Fatalf("expected Main, got %q", buf[:end])
	}
}

func TestSyscallGetTaskNameTruncates(t *testing.T) {
	s, _, _ := newTestScheduler(t)

	buf := make([]byte, 3)
	if got := s.Syscall(SysGetTaskName, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)), 0, 0); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if buf[2] != 0 {
		t.Fatal("expected NUL in the last byte of a short buffer")
	}
	if string(buf[:2]) != "Ma" {
		t.Fatalf("expected truncated name, got %q", buf[:2])
	}
}

func TestSyscallPrint(t *testing.T) {
	s, _, dev := newTestScheduler(t)

	msg := []byte("hello from task\x00")
	if got := s.Syscall(SysPrint, uintptr(unsafe.Pointer(&msg[0])), 0, 0, 0); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	out := dev.String()
	if !strings.Contains(out, "notice: syscall: hello from task") {
		t.Fatalf("expected notice line, got %q", out)
	}
}

func TestSyscallSleep(t *testing.T) {
	s, clock, _ := newTestScheduler(t)
	clock.autoStep = 500_000

	start := clock.now()
	if got := s.Syscall(SysSleep, 2, 0, 0, 0); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if elapsed := clock.now() - start; elapsed < 2_000_000 {
		t.Fatalf("expected at least 2s of ticks, got %d", elapsed)
	}
}

func TestSyscallExitTerminatesCaller(t *testing.T) {
	s, _, _ := newTestScheduler(t)

	worker := NewTask("quitter", 0, func() {
		s.Syscall(SysExit, 0, 0, 0, 0)
		t.Error("expected exit not to return")
	})
	s.AddTask(worker)

	s.Yield()
	s.Yield() // reap
	if s.IsValidTask(worker) {
		t.Fatal("expected exited task reclaimed")
	}
}

func TestSyscallUnknownNumber(t *testing.T) {
	s, _, dev := newTestScheduler(t)

	if got := s.Syscall(99, 0, 0, 0, 0); got != -1 {
		t.Fatalf("expected -1 for an unknown call, got %d", got)
	}
	if !strings.Contains(dev.String(), "not recognized") {
		t.Fatalf("expected error line, got %q", dev.String())
	}
}

// Each case stands alone: a gettime call must not touch the buffer
// argument a get_task_name call would fill.
func TestSyscallCasesDoNotFallThrough(t *testing.T) {
	s, _, dev := newTestScheduler(t)

	buf := []byte{0xAA, 0xAA, 0xAA, 0xAA}
	s.Syscall(SysGetTime, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)), 0, 0)
	for i, b := range buf {
		if b != 0xAA {
			t.Fatalf("expected buffer byte %d untouched by gettime, got %#x", i, b)
		}
	}
	if out := dev.String(); out != "" {
		t.Fatalf("expected no log output from gettime, got %q", out)
	}
}

func TestHandleSyscallDecodesRegisters(t *testing.T) {
	s, clock, _ := newTestScheduler(t)
	clock.seconds = 7

	regs := stubImage(0x500)
	regs.R7 = SysGetTime
	s.HandleSyscall(&regs)
	if regs.R0 != 7 {
		t.Fatalf("expected result 7 in r0, got %d", regs.R0)
	}

	regs = stubImage(0x600)
	regs.R7 = 99
	s.HandleSyscall(&regs)
	if int32(regs.R0) != -1 {
		t.Fatalf("expected -1 in r0 for an unknown call, got %d", int32(regs.R0))
	}
}
