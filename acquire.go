package unsync

// Acquire is a resumable request for a Mutex, created by Lock. It carries no
// progress state: every poll re-races for the lock, so there is no FIFO
// fairness among contenders and a task may, in principle, starve. Abandoning
// a pending Acquire is always safe; any waker it registered goes stale and
// is discarded by the next release.
type Acquire[T any] struct {
	m *Mutex[T]
}

// Poll attempts to acquire the mutex.
//
// While the mutex is held, Poll registers w to be woken by the next release
// and reports pending as (nil, nil); the task should suspend and poll again
// when woken. Waking does not reserve the lock: a woken task that loses the
// race to another contender simply registers and suspends again.
//
// On success Poll returns the Guard, alongside ErrPoisoned if the mutex is
// poisoned.
func (a *Acquire[T]) Poll(w Waker) (*Guard[T], error) {
	if a.m.locked {
		a.m.waiters = append(a.m.waiters, w)
		return nil, nil
	}
	return a.m.TryLock()
}
