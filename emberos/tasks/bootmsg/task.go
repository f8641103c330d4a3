// Package bootmsg prints the boot banner and the initial task table.
package bootmsg

import (
	"fmt"

	"ember/emberos/sched"
	"ember/hal"
	"ember/internal/buildinfo"
)

// New returns the boot message task.
func New(s *sched.Scheduler, console hal.Console) *sched.Task {
	return sched.NewTask("bootmsg", 0, func() {
		fmt.Fprintf(console, "ember %s\n", buildinfo.Short())
		s.ListTasks(console)
	})
}
