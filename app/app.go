// Package app wires the HAL, the logger and the scheduler together
// and starts the demo task set.
package app

import (
	"ember/emberos/logger"
	"ember/emberos/sched"
	"ember/emberos/tasks/bootmsg"
	"ember/emberos/tasks/heartbeat"
	"ember/emberos/tasks/pingpong"
	"ember/hal"
)

// Config selects optional kernel features.
type Config struct {
	// Preempt arms timer-driven preemption (baremetal only; the host
	// build has no IRQ return path).
	Preempt bool
	Debug   bool
}

// system is the root object owning the scheduler; the IRQ glue
// reaches it through the package variable set at boot.
type system struct {
	s   *sched.Scheduler
	log *logger.Logger
}

var booted *system

// Run boots with the default config and never returns. The calling
// context becomes the Main task.
func Run(h hal.HAL) {
	RunWithConfig(h, Config{})
}

// RunWithConfig boots the scheduler with the given config and runs the
// Main task loop. It never returns.
func RunWithConfig(h hal.HAL, cfg Config) {
	log := logger.New(h.Console(), h.Halt)
	if cfg.Debug {
		log.SetLevel(logger.Debug)
	}

	s := sched.New(h.Clock(), log)
	booted = &system{s: s, log: log}

	// Hold every task in New until the whole set is registered.
	s.SuspendNewTasks()
	s.AddTask(bootmsg.New(s, h.Console()))
	s.AddTask(heartbeat.New(s, log))
	producer, consumer := pingpong.New(s, log)
	s.AddTask(producer)
	s.AddTask(consumer)
	s.ResumeNewTasks()

	if cfg.Preempt {
		s.EnablePreemptiveMultitasking()
	}

	for {
		s.MsSleep(100)
	}
}
