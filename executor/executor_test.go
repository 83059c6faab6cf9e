package executor

import (
	"context"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/block/unsync"
	"github.com/block/unsync/internal/log"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	return log.ContextWithLogger(context.Background(), log.Configure(&strings.Builder{}, log.Config{Level: log.Debug}))
}

func TestRunCompletesTasks(t *testing.T) {
	e := New()
	ran := 0
	e.Spawn("one", TaskFunc(func(w unsync.Waker) bool { ran++; return true }))
	e.Spawn("two", TaskFunc(func(w unsync.Waker) bool { ran++; return true }))
	assert.NoError(t, e.Run(testContext(t)))
	assert.Equal(t, 2, ran)
}

func TestSelfWakeYields(t *testing.T) {
	e := New()
	polls := 0
	e.Spawn("yielder", TaskFunc(func(w unsync.Waker) bool {
		polls++
		if polls < 3 {
			w.Wake()
			return false
		}
		return true
	}))
	assert.NoError(t, e.Run(testContext(t)))
	assert.Equal(t, 3, polls)
}

// incrementTask bumps a shared counter through a mutex a fixed number of
// times. The guard is held across a yield each round, so other tasks
// genuinely contend and take the suspend-and-wake path rather than always
// finding the lock free.
type incrementTask struct {
	mutex     *unsync.Mutex[int]
	remaining int
	acquire   *unsync.Acquire[int]
	guard     *unsync.Guard[int]
	inside    *int // live-guard count, to catch exclusion violations
}

func (i *incrementTask) Poll(w unsync.Waker) bool {
	for i.remaining > 0 {
		if i.guard == nil {
			if i.acquire == nil {
				i.acquire = i.mutex.Lock()
			}
			g, err := i.acquire.Poll(w)
			if err != nil {
				panic(err)
			}
			if g == nil {
				return false
			}
			i.acquire = nil
			i.guard = g
			*i.inside++
			if *i.inside != 1 {
				panic("two guards live at once")
			}
			g.Set(g.Get() + 1)
			w.Wake()
			return false
		}
		*i.inside--
		i.guard.Unlock()
		i.guard = nil
		i.remaining--
	}
	return true
}

func TestContendedMutex(t *testing.T) {
	e := New()
	m := unsync.New(0)
	inside := 0
	const tasks, rounds = 5, 20
	for range tasks {
		e.Spawn("incrementer", &incrementTask{mutex: m, remaining: rounds, inside: &inside})
	}
	assert.NoError(t, e.Run(testContext(t)))

	total, err := m.IntoInner()
	assert.NoError(t, err)
	assert.Equal(t, tasks*rounds, total)
}

func TestStallIsReported(t *testing.T) {
	e := New()
	m := unsync.New(0)
	e.Spawn("holder", TaskFunc(func(w unsync.Waker) bool {
		_, err := m.TryLock()
		assert.NoError(t, err)
		return true // completes without ever unlocking
	}))
	e.Spawn("waiter", TaskFunc(func(w unsync.Waker) bool {
		g, err := m.Lock().Poll(w)
		assert.NoError(t, err)
		return g != nil
	}))
	err := e.Run(testContext(t))
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "waiter"))
	assert.False(t, strings.Contains(err.Error(), "holder"))
}

func TestWakeOnCompletingPollDoesNotReviveTask(t *testing.T) {
	e := New()
	m := unsync.New(0)
	held, err := m.TryLock()
	assert.NoError(t, err)
	defer held.Unlock()

	polls := 0
	e.Spawn("finisher", TaskFunc(func(w unsync.Waker) bool {
		polls++
		// Firing the waker on the poll that completes the task must not
		// re-run it or corrupt the live count.
		w.Wake()
		return true
	}))
	e.Spawn("parked", TaskFunc(func(w unsync.Waker) bool {
		g, err := m.Lock().Poll(w)
		assert.NoError(t, err)
		return g != nil
	}))

	err = e.Run(testContext(t))
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "parked"))
	assert.Equal(t, 1, polls)
}

func TestRunIsNotReentrant(t *testing.T) {
	e := New()
	var inner error
	e.Spawn("reentrant", TaskFunc(func(w unsync.Waker) bool {
		inner = e.Run(testContext(t))
		return true
	}))
	assert.NoError(t, e.Run(testContext(t)))
	assert.Error(t, inner)
}

func TestRunHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(testContext(t))
	cancel()
	e := New()
	e.Spawn("never", TaskFunc(func(w unsync.Waker) bool { return true }))
	err := e.Run(ctx)
	assert.IsError(t, err, context.Canceled)
}

func TestSpawnDuringRun(t *testing.T) {
	e := New()
	ran := 0
	e.Spawn("parent", TaskFunc(func(w unsync.Waker) bool {
		e.Spawn("child", TaskFunc(func(w unsync.Waker) bool { ran++; return true }))
		ran++
		return true
	}))
	assert.NoError(t, e.Run(testContext(t)))
	assert.Equal(t, 2, ran)
}
