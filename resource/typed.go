package resource

// Typed is a view of a Table restricted to one kind and one Go type.
type Typed[T any] struct {
	table *Table
	kind  Kind
}

// NewTyped returns a view storing T values under kind.
func NewTyped[T any](table *Table, kind Kind) Typed[T] {
	return Typed[T]{table: table, kind: kind}
}

// Table returns the underlying table.
func (t Typed[T]) Table() *Table { return t.table }

func (t Typed[T]) Insert(value T) Handle {
	return t.table.Insert(t.kind, value)
}

// Get returns the value at h if the slot has this view's kind.
func (t Typed[T]) Get(h Handle) (T, bool) {
	v, ok := t.table.GetKind(h, t.kind)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// Remove frees h if the slot has this view's kind.
func (t Typed[T]) Remove(h Handle) (T, bool) {
	var zero T
	if k, ok := t.table.KindOf(h); !ok || k != t.kind {
		return zero, false
	}
	v, err := t.table.Remove(h)
	if err != nil {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// Len returns the number of live slots of this kind.
func (t Typed[T]) Len() int {
	n := 0
	t.table.Each(func(_ Handle, k Kind, _ any) bool {
		if k == t.kind {
			n++
		}
		return true
	})
	return n
}

// Each iterates over live slots of this kind.
func (t Typed[T]) Each(fn func(Handle, T) bool) {
	t.table.Each(func(h Handle, k Kind, v any) bool {
		if k != t.kind {
			return true
		}
		typed, ok := v.(T)
		if !ok {
			return true
		}
		return fn(h, typed)
	})
}
