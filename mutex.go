// Package unsync provides a non-blocking mutual exclusion primitive for
// single-threaded cooperative task schedulers.
//
// A Mutex grants one logical task at a time exclusive access to a protected
// value. Tasks that contend for a held lock suspend, and are woken when it is
// released, without ever blocking the underlying thread. Nothing in this
// package is synchronized: correctness depends on all tasks sharing one
// execution context. To coordinate goroutines running in parallel, use
// sync.Mutex instead.
package unsync

import "errors"

var (
	// ErrWouldBlock is returned by TryLock when the mutex is already held.
	// Nothing has changed; it is informational, not a failure of the Mutex.
	ErrWouldBlock = errors.New("mutex would block")

	// ErrPoisoned reports that a previous holder failed while holding the
	// mutex, so the protected value may violate its invariants. It is
	// advisory: operations that return it still deliver their result, and
	// the caller decides whether to proceed or treat it as fatal.
	ErrPoisoned = errors.New("mutex poisoned")
)

// Waker is an opaque capability supplied by the host scheduler. Waking it
// requests that the suspended task which registered it be polled again. Wakes
// may be spurious, and waking a stale or abandoned waker must be harmless.
type Waker interface {
	Wake()
}

// Mutex grants one task at a time exclusive access to a value of type T.
//
// The zero value is an unlocked Mutex protecting the zero value of T.
type Mutex[T any] struct {
	locked   bool
	poisoned bool
	waiters  []Waker
	value    T
}

// New returns an unlocked, unpoisoned Mutex protecting value.
func New[T any](value T) *Mutex[T] {
	return &Mutex[T]{value: value}
}

// TryLock attempts to acquire the mutex without suspending.
//
// If the mutex is held it returns ErrWouldBlock and changes nothing. On
// success it returns a Guard, alongside ErrPoisoned if the mutex is
// poisoned; the Guard is valid either way.
func (m *Mutex[T]) TryLock() (*Guard[T], error) {
	if m.locked {
		return nil, ErrWouldBlock
	}
	m.locked = true
	g := &Guard[T]{m: m}
	if m.poisoned {
		return g, ErrPoisoned
	}
	return g, nil
}

// Lock returns an acquire operation that resolves to a Guard once the mutex
// is available. The operation suspends the calling task while the mutex is
// held; it never blocks the thread.
func (m *Mutex[T]) Lock() *Acquire[T] {
	return &Acquire[T]{m: m}
}

// IsPoisoned reports whether a previous holder failed while holding the
// mutex. Once true it remains true for the life of the Mutex.
func (m *Mutex[T]) IsPoisoned() bool { return m.poisoned }

// IntoInner consumes the mutex and returns the protected value. The Mutex
// must not be used afterwards. The value is returned even when the mutex is
// poisoned, alongside ErrPoisoned.
//
// IntoInner panics if a Guard is outstanding.
func (m *Mutex[T]) IntoInner() (T, error) {
	if m.locked {
		panic("unsync: IntoInner with an outstanding Guard")
	}
	if m.poisoned {
		return m.value, ErrPoisoned
	}
	return m.value, nil
}

// Raw returns a pointer to the protected value without locking. This is only
// safe while the caller is the sole user of the Mutex. The pointer is
// returned even when the mutex is poisoned, alongside ErrPoisoned.
//
// Raw panics if a Guard is outstanding.
func (m *Mutex[T]) Raw() (*T, error) {
	if m.locked {
		panic("unsync: Raw with an outstanding Guard")
	}
	if m.poisoned {
		return &m.value, ErrPoisoned
	}
	return &m.value, nil
}

// release is the single transition out of the locked state. It runs exactly
// once per Guard, from Guard.Unlock.
func (m *Mutex[T]) release(failed bool) {
	m.locked = false
	if failed {
		m.poisoned = true
	}
	// Wake every waiter, not just one. Each re-checks the lock when polled,
	// so over-waking is harmless, and a single-wake scheme could strand a
	// live waiter behind an abandoned one.
	waiters := m.waiters
	m.waiters = nil
	for _, w := range waiters {
		w.Wake()
	}
}
