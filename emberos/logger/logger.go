// Package logger provides the kernel log: module-tagged, severity
// filtered lines on a console device. Panic severity halts the
// machine, so a panic write never returns.
package logger

import (
	"fmt"

	"ember/hal"
)

// Severity orders log levels from fatal to verbose.
type Severity uint8

const (
	Panic Severity = iota
	Error
	Warning
	Notice
	Debug
)

func (s Severity) String() string {
	switch s {
	case Panic:
		return "panic"
	case Error:
		return "error"
	case Warning:
		return "warn"
	case Notice:
		return "notice"
	case Debug:
		return "debug"
	default:
		return "unknown"
	}
}

// Logger writes log lines to a console device.
type Logger struct {
	dev   hal.Console
	halt  func()
	level Severity
}

// New returns a logger writing to dev. halt is invoked after a Panic
// line has been written and must not return.
func New(dev hal.Console, halt func()) *Logger {
	return &Logger{dev: dev, halt: halt, level: Notice}
}

// SetLevel drops lines below the given severity. Panic is never
// dropped.
func (l *Logger) SetLevel(level Severity) {
	l.level = level
}

// Write emits one formatted line tagged with its source module. A
// Panic write appends a stack trace when available and halts.
func (l *Logger) Write(source string, severity Severity, format string, args ...any) {
	if severity > l.level && severity != Panic {
		return
	}

	line := fmt.Sprintf("%s: %s: %s\n", severity, source, fmt.Sprintf(format, args...))
	l.dev.Write([]byte(line))

	if severity == Panic {
		if stack := captureStack(); len(stack) > 0 {
			l.dev.Write(stack)
		}
		l.halt()
	}
}
