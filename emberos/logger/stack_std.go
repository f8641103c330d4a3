//go:build !tinygo

package logger

import "runtime/debug"

func captureStack() []byte {
	return debug.Stack()
}
