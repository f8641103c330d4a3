// Package heartbeat logs a once-a-second liveness line.
package heartbeat

import (
	"ember/emberos/logger"
	"ember/emberos/sched"
)

// New returns the heartbeat task.
func New(s *sched.Scheduler, log *logger.Logger) *sched.Task {
	return sched.NewTask("heartbeat", 0, func() {
		for {
			s.Sleep(1)
			log.Write("heartbeat", logger.Notice, "alive at %ds", s.Syscall(sched.SysGetTime, 0, 0, 0, 0))
		}
	})
}
