package userdata

import (
	"sync"
	"sync/atomic"

	"github.com/wippyai/gdnative/internal/thread"
)

// LocalCell pins the value to the thread that created it. Access from any
// other thread fails with ErrWrongThread. On the owning thread Map borrows
// may nest; MapMut needs the value unborrowed.
type LocalCell[T any] struct {
	owner thread.ID
	// borrows counts shared borrows; -1 marks an exclusive one.
	borrows atomic.Int32
	val     T
}

func NewLocalCell[T any](v T) *LocalCell[T] {
	return &LocalCell[T]{owner: thread.Current(), val: v}
}

func (*LocalCell[T]) Policy() Policy { return PolicyLocalCell }

// Owner returns the thread the value is pinned to.
func (c *LocalCell[T]) Owner() thread.ID { return c.owner }

func (c *LocalCell[T]) checkThread(op Op) error {
	if cur := thread.Current(); cur != c.owner {
		return &StorageError{Kind: WrongThread, Policy: PolicyLocalCell, Op: op, Original: c.owner, Current: cur}
	}
	return nil
}

func (c *LocalCell[T]) Map(fn func(*T)) error {
	if err := c.checkThread(OpMap); err != nil {
		return err
	}
	for {
		n := c.borrows.Load()
		if n < 0 {
			return wouldBlock(PolicyLocalCell, OpMap)
		}
		if c.borrows.CompareAndSwap(n, n+1) {
			break
		}
	}
	defer c.borrows.Add(-1)
	fn(&c.val)
	return nil
}

func (c *LocalCell[T]) MapMut(fn func(*T)) error {
	if err := c.checkThread(OpMapMut); err != nil {
		return err
	}
	if !c.borrows.CompareAndSwap(0, -1) {
		return wouldBlock(PolicyLocalCell, OpMapMut)
	}
	defer c.borrows.Store(0)
	fn(&c.val)
	return nil
}

func (*LocalCell[T]) MapOwned(func(T)) error { return unsupported(PolicyLocalCell, OpMapOwned) }

// Aether stores nothing. It serves zero-sized types: every Map sees a fresh
// zero value.
type Aether[T any] struct{}

func (Aether[T]) Policy() Policy { return PolicyAether }

func (Aether[T]) Map(fn func(*T)) error {
	var zero T
	fn(&zero)
	return nil
}

func (Aether[T]) MapMut(func(*T)) error { return unsupported(PolicyAether, OpMapMut) }

func (Aether[T]) MapOwned(func(T)) error { return unsupported(PolicyAether, OpMapOwned) }

// Once holds a value that is moved out by the first MapOwned. Later calls
// fail with ErrConsumed.
type Once[T any] struct {
	mu    sync.Mutex
	taken bool
	val   T
}

func NewOnce[T any](v T) *Once[T] { return &Once[T]{val: v} }

func (*Once[T]) Policy() Policy { return PolicyOnce }

func (*Once[T]) Map(func(*T)) error { return unsupported(PolicyOnce, OpMap) }

func (*Once[T]) MapMut(func(*T)) error { return unsupported(PolicyOnce, OpMapMut) }

func (o *Once[T]) MapOwned(fn func(T)) error {
	if !o.mu.TryLock() {
		return wouldBlock(PolicyOnce, OpMapOwned)
	}
	if o.taken {
		o.mu.Unlock()
		return &StorageError{Kind: Consumed, Policy: PolicyOnce, Op: OpMapOwned}
	}
	v := o.val
	var zero T
	o.val, o.taken = zero, true
	o.mu.Unlock()
	fn(v)
	return nil
}

// Consumed reports whether the value was moved out.
func (o *Once[T]) Consumed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.taken
}
