package sched

import (
	"unsafe"

	"ember/emberos/arch"
	"ember/emberos/logger"
)

// System call numbers. The numbering is a stable wire contract with
// user tasks and must not change.
const (
	SysGetTime     = 0
	SysGetTaskName = 1
	SysPrint       = 2
	SysSleep       = 3
	SysExit        = 4
)

const syscallSource = "syscall"

// HandleSyscall services a trap from the SVC path. The call number is
// held in r7 of the trapped image, arguments in r0-r3, and the result
// is placed in r0.
func (s *Scheduler) HandleSyscall(regs *arch.TaskRegisters) {
	result := s.Syscall(regs.R7,
		uintptr(regs.R0), uintptr(regs.R1), uintptr(regs.R2), uintptr(regs.R3))
	regs.R0 = uint32(result)
}

// Syscall dispatches one system call. Unknown numbers are logged and
// return -1.
func (s *Scheduler) Syscall(number uint32, arg1, arg2, arg3, arg4 uintptr) int32 {
	switch number {
	case SysGetTime:
		return int32(s.clock.Seconds())

	case SysGetTaskName:
		// arg1 is the caller's buffer, arg2 its size. The name is
		// truncated to fit and always NUL terminated.
		if arg1 == 0 || arg2 == 0 {
			return -1
		}
		buf := unsafe.Slice((*byte)(unsafe.Pointer(arg1)), int(arg2))
		n := copy(buf, s.GetCurrentTask().Name())
		if n == len(buf) {
			n--
		}
		buf[n] = 0
		return 0

	case SysPrint:
		// arg1 points at a NUL terminated string.
		s.log.Write(syscallSource, logger.Notice, "%s", gostring(arg1))
		return 0

	case SysSleep:
		s.Sleep(uint32(arg1))
		return 0

	case SysExit:
		s.GetCurrentTask().Terminate()
		return 0

	default:
		s.log.Write(syscallSource, logger.Error, "system call number %d not recognized", number)
		return -1
	}
}

// gostring copies a NUL terminated C string.
func gostring(p uintptr) string {
	if p == 0 {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Pointer(p + uintptr(n))) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(p)), n))
}
