package main

import (
	"math/rand/v2"

	"github.com/alecthomas/types/optional"

	"github.com/block/unsync"
	"github.com/block/unsync/executor"
	"github.com/block/unsync/internal/log"
)

type phase int

const (
	phaseAcquireFirst phase = iota
	phaseEatFirst
	phaseAcquireSecond
	phaseEatSecond
	phaseReleaseFirst
)

// philosopher is one task at the table: each round it acquires its first
// resource, then its second, eats, and releases both, with random yields
// between steps so acquisitions interleave across tasks.
type philosopher struct {
	id     int
	first  *unsync.Mutex[int]
	second *unsync.Mutex[int]
	rounds int
	jitter int
	rng    *rand.Rand
	logger *log.Logger

	phase       phase
	yields      int
	acquire     *unsync.Acquire[int]
	firstGuard  optional.Option[*unsync.Guard[int]]
	secondGuard optional.Option[*unsync.Guard[int]]
}

var _ executor.Task = (*philosopher)(nil)

func (p *philosopher) Poll(w unsync.Waker) bool {
	for {
		// Pending jitter: burn one yield per poll cycle.
		if p.yields > 0 {
			p.yields--
			w.Wake()
			return false
		}
		switch p.phase {
		case phaseAcquireFirst:
			if p.rounds == 0 {
				p.logger.Infof("Philosopher %d: done!", p.id)
				return true
			}
			g, ok := p.poll(p.first, w)
			if !ok {
				return false
			}
			p.firstGuard = optional.Some(g)
			p.nextPhase(phaseEatFirst)

		case phaseEatFirst:
			p.logger.Infof("Philosopher %d: acquired %d", p.id, p.firstGuard.MustGet().Get())
			p.phase = phaseAcquireSecond

		case phaseAcquireSecond:
			g, ok := p.poll(p.second, w)
			if !ok {
				return false
			}
			p.secondGuard = optional.Some(g)
			p.nextPhase(phaseEatSecond)

		case phaseEatSecond:
			p.logger.Infof("Philosopher %d: acquired %d", p.id, p.secondGuard.MustGet().Get())
			p.secondGuard.MustGet().Unlock()
			p.secondGuard = optional.None[*unsync.Guard[int]]()
			p.nextPhase(phaseReleaseFirst)

		case phaseReleaseFirst:
			p.firstGuard.MustGet().Unlock()
			p.firstGuard = optional.None[*unsync.Guard[int]]()
			p.rounds--
			p.nextPhase(phaseAcquireFirst)
		}
	}
}

// poll drives the pending acquire for m, creating it on first use. It
// reports false while the lock is held and the task should suspend.
func (p *philosopher) poll(m *unsync.Mutex[int], w unsync.Waker) (*unsync.Guard[int], bool) {
	if p.acquire == nil {
		p.acquire = m.Lock()
	}
	g, err := p.acquire.Poll(w)
	if err != nil {
		// Nothing at this table marks a guard failed, so a poisoned
		// resource is a bug, not a recoverable condition.
		panic(err)
	}
	if g == nil {
		return nil, false
	}
	p.acquire = nil
	return g, true
}

func (p *philosopher) nextPhase(next phase) {
	p.phase = next
	if p.jitter > 0 {
		p.yields = p.rng.IntN(p.jitter)
	}
}
