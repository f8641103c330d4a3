// Package pingpong is a producer/consumer pair exercising the
// block/wake primitive over a shared ring.
package pingpong

import (
	"ember/emberos/logger"
	"ember/emberos/sched"
)

const ringSize = 8

// Pair couples a producer and a consumer over an intrusive wait list.
type Pair struct {
	s   *sched.Scheduler
	log *logger.Logger

	ring    [ringSize]uint32
	head    int
	tail    int
	waiters *sched.Task
}

// New returns the producer and consumer tasks.
func New(s *sched.Scheduler, log *logger.Logger) (producer, consumer *sched.Task) {
	p := &Pair{s: s, log: log}
	producer = sched.NewTask("ping", 0, p.produce)
	consumer = sched.NewTask("pong", 0, p.consume)
	return producer, consumer
}

func (p *Pair) produce() {
	for seq := uint32(1); ; seq++ {
		p.s.MsSleep(500)
		if p.head-p.tail < ringSize {
			p.ring[p.head%ringSize] = seq
			p.head++
		}
		p.s.WakeTasks(&p.waiters)
	}
}

func (p *Pair) consume() {
	for {
		for p.tail == p.head {
			if p.s.BlockTask(&p.waiters, 2_000_000) {
				p.log.Write("pong", logger.Warning, "no ping for 2s")
			}
		}
		seq := p.ring[p.tail%ringSize]
		p.tail++
		p.log.Write("pong", logger.Notice, "got ping %d", seq)
	}
}
