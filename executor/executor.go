// Package executor provides a minimal single-threaded cooperative executor
// for driving resumable tasks such as unsync.Acquire operations.
//
// The executor is the scheduling half of the contract described by
// unsync.Waker: it issues wakers to its tasks when polling them, and a fired
// waker requeues the task for another poll. Everything runs on the goroutine
// that calls Run; tasks interleave only at their own suspension points, which
// is what makes the unsynchronized state in package unsync safe.
package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/atomic"

	"github.com/block/unsync"
	"github.com/block/unsync/internal/log"
)

// Task is a resumable unit of work.
//
// Poll runs the task until it either completes (true) or suspends (false). A
// task that reports pending must have registered w with something that will
// eventually fire it, or have fired it itself to request another cycle;
// otherwise the task is parked until Run gives up.
type Task interface {
	Poll(w unsync.Waker) bool
}

// TaskFunc adapts a function to the Task interface.
type TaskFunc func(w unsync.Waker) bool

func (f TaskFunc) Poll(w unsync.Waker) bool { return f(w) }

// Executor drives spawned tasks on a single goroutine.
type Executor struct {
	tasks    []*taskState
	runnable []*taskState
	live     int
	running  *atomic.Value[bool]
}

func New() *Executor {
	return &Executor{running: atomic.New(false)}
}

// Spawn registers a task under a name used in logs and stall reports. Tasks
// spawned while Run is in progress join the current run.
func (e *Executor) Spawn(name string, task Task) {
	t := &taskState{exec: e, task: task, name: name, queued: true}
	e.tasks = append(e.tasks, t)
	e.runnable = append(e.runnable, t)
	e.live++
}

// Run polls tasks until every spawned task has completed, the context is
// cancelled, or nothing can make progress. In the last case Run returns an
// error naming the parked tasks; they remain suspended and a later Run will
// not revive them unless something fires their wakers.
func (e *Executor) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return fmt.Errorf("executor is already running")
	}
	defer e.running.Store(false)
	logger := log.FromContext(ctx).Scope("executor")
	for e.live > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("executor interrupted: %w", err)
		}
		if len(e.runnable) == 0 {
			parked := e.parked()
			logger.Warnf("Stalled with %d parked task(s): %s", len(parked), strings.Join(parked, ", "))
			return fmt.Errorf("executor stalled: %d task(s) parked with no pending wake: %s", len(parked), strings.Join(parked, ", "))
		}
		batch := e.runnable
		e.runnable = nil
		for _, t := range batch {
			t.queued = false
			// A task that fires its own waker on the poll that completes it
			// is queued before done is set; drop the stale entry rather than
			// polling a completed task.
			if t.done {
				continue
			}
			if t.task.Poll(t) {
				t.done = true
				e.live--
				logger.Debugf("Task %s completed", t.name)
			}
		}
	}
	return nil
}

func (e *Executor) parked() []string {
	names := []string{}
	for _, t := range e.tasks {
		if !t.done {
			names = append(names, t.name)
		}
	}
	return names
}

type taskState struct {
	exec   *Executor
	task   Task
	name   string
	queued bool
	done   bool
}

var _ unsync.Waker = (*taskState)(nil)

// Wake schedules the task for another poll. Waking a completed or
// already-queued task is a no-op, so duplicate and stale wakes are harmless.
func (t *taskState) Wake() {
	if t.done || t.queued {
		return
	}
	t.queued = true
	t.exec.runnable = append(t.exec.runnable, t)
}
