package unsync

// Guard proves that its holder has exclusive access to a Mutex's value. It is
// created only by a successful acquire, and releasing it with Unlock is the
// only way the mutex returns to the unlocked state. A Guard must not be
// copied and must not outlive its Mutex.
type Guard[T any] struct {
	m        *Mutex[T]
	failed   bool
	released bool
}

// Get returns the protected value.
func (g *Guard[T]) Get() T {
	g.check()
	return g.m.value
}

// Set replaces the protected value.
func (g *Guard[T]) Set(value T) {
	g.check()
	g.m.value = value
}

// Do calls fn with a pointer to the protected value for in-place access.
//
// If fn panics the guard is marked failed before the panic propagates, so
// releasing it will poison the mutex. A panic raised before the guard exists
// can never mark it, which is what keeps poisoning precise: only failures
// between acquire and release poison.
func (g *Guard[T]) Do(fn func(value *T)) {
	g.check()
	defer func() {
		if r := recover(); r != nil {
			g.failed = true
			panic(r)
		}
	}()
	fn(&g.m.value)
}

// MarkFailed records that the holder failed while holding the mutex, so that
// releasing the guard poisons it. Use this on error-return paths, where
// there is no panic for Do to observe.
func (g *Guard[T]) MarkFailed() {
	g.check()
	g.failed = true
}

// Unlock releases the mutex, poisons it if the guard was marked failed, and
// wakes every task suspended on it. Unlock panics if called twice; every
// other path out of a critical section must still reach it, or the mutex is
// locked forever.
func (g *Guard[T]) Unlock() {
	if g.released {
		panic("unsync: Guard released twice")
	}
	g.released = true
	g.m.release(g.failed)
}

func (g *Guard[T]) check() {
	if g.released {
		panic("unsync: use of released Guard")
	}
}
