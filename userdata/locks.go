package userdata

import "sync"

// Mutex guards the value with an exclusive lock. Map and MapMut both take
// the lock, so any overlapping access reports ErrWouldBlock.
type Mutex[T any] struct {
	mu  sync.Mutex
	val T
}

func NewMutex[T any](v T) *Mutex[T] { return &Mutex[T]{val: v} }

func (*Mutex[T]) Policy() Policy { return PolicyMutex }

func (m *Mutex[T]) Map(fn func(*T)) error { return m.lock(OpMap, fn) }

func (m *Mutex[T]) MapMut(fn func(*T)) error { return m.lock(OpMapMut, fn) }

func (*Mutex[T]) MapOwned(func(T)) error { return unsupported(PolicyMutex, OpMapOwned) }

func (m *Mutex[T]) lock(op Op, fn func(*T)) error {
	if !m.mu.TryLock() {
		return wouldBlock(PolicyMutex, op)
	}
	defer m.mu.Unlock()
	fn(&m.val)
	return nil
}

// RWLock allows overlapping Map calls and exclusive MapMut calls.
type RWLock[T any] struct {
	mu  sync.RWMutex
	val T
}

func NewRWLock[T any](v T) *RWLock[T] { return &RWLock[T]{val: v} }

func (*RWLock[T]) Policy() Policy { return PolicyRWLock }

func (l *RWLock[T]) Map(fn func(*T)) error {
	if !l.mu.TryRLock() {
		return wouldBlock(PolicyRWLock, OpMap)
	}
	defer l.mu.RUnlock()
	fn(&l.val)
	return nil
}

func (l *RWLock[T]) MapMut(fn func(*T)) error {
	if !l.mu.TryLock() {
		return wouldBlock(PolicyRWLock, OpMapMut)
	}
	defer l.mu.Unlock()
	fn(&l.val)
	return nil
}

func (*RWLock[T]) MapOwned(func(T)) error { return unsupported(PolicyRWLock, OpMapOwned) }

// Arc shares the value without locking. The value must be immutable or
// synchronize itself; only Map is available.
type Arc[T any] struct {
	val *T
}

func NewArc[T any](v T) *Arc[T] { return &Arc[T]{val: &v} }

func (*Arc[T]) Policy() Policy { return PolicyArc }

func (a *Arc[T]) Map(fn func(*T)) error {
	fn(a.val)
	return nil
}

func (*Arc[T]) MapMut(func(*T)) error { return unsupported(PolicyArc, OpMapMut) }

func (*Arc[T]) MapOwned(func(T)) error { return unsupported(PolicyArc, OpMapOwned) }
