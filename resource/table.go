package resource

import (
	"errors"
	"sync"
)

var (
	ErrClosed  = errors.New("resource table closed")
	ErrPinned  = errors.New("cannot remove slot with outstanding pins")
	ErrInvalid = errors.New("invalid handle")
)

// Table is an in-memory handle table with kind tags, pin counts and
// lifecycle observers. Freed slots are reused.
type Table struct {
	entries   []entry
	freeList  []Handle
	mu        sync.RWMutex
	closed    bool
	observers map[int]Observer
	nextObs   int
	obsMu     sync.RWMutex
}

type entry struct {
	value any
	kind  Kind
	pins  uint32
	valid bool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries:  make([]entry, 0, 64),
		freeList: make([]Handle, 0, 16),
	}
}

// Insert stores a value and returns its handle. It returns 0 once the table
// is closed.
func (t *Table) Insert(kind Kind, value any) Handle {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0
	}

	e := entry{kind: kind, value: value, valid: true}
	var h Handle
	if n := len(t.freeList); n > 0 {
		h = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.entries[h-1] = e
	} else {
		t.entries = append(t.entries, e)
		h = Handle(len(t.entries))
	}
	t.mu.Unlock()

	t.notify(Event{Type: EventCreated, Handle: h, Kind: kind, Value: value})
	return h
}

func (t *Table) lookup(h Handle) *entry {
	if h == 0 || int(h) > len(t.entries) {
		return nil
	}
	e := &t.entries[h-1]
	if !e.valid {
		return nil
	}
	return e
}

// Get retrieves a value by handle.
func (t *Table) Get(h Handle) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e := t.lookup(h)
	if e == nil {
		return nil, false
	}
	return e.value, true
}

// GetKind retrieves a value only if its slot has the expected kind.
func (t *Table) GetKind(h Handle, kind Kind) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e := t.lookup(h)
	if e == nil || e.kind != kind {
		return nil, false
	}
	return e.value, true
}

// KindOf returns the kind of a live slot.
func (t *Table) KindOf(h Handle) (Kind, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e := t.lookup(h)
	if e == nil {
		return 0, false
	}
	return e.kind, true
}

// Valid reports whether h refers to a live slot.
func (t *Table) Valid(h Handle) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lookup(h) != nil
}

// Replace swaps the value in a live slot and returns the old one.
func (t *Table) Replace(h Handle, value any) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.lookup(h)
	if e == nil {
		return nil, false
	}
	old := e.value
	e.value = value
	return old, true
}

// Pin marks a slot as in use. Pinned slots cannot be removed.
func (t *Table) Pin(h Handle) bool {
	t.mu.Lock()
	e := t.lookup(h)
	if e == nil {
		t.mu.Unlock()
		return false
	}
	e.pins++
	kind, value := e.kind, e.value
	t.mu.Unlock()

	t.notify(Event{Type: EventPinned, Handle: h, Kind: kind, Value: value})
	return true
}

// PinKind looks up a slot of the given kind and pins it in one step. A
// pinned slot cannot be removed, so its value stays valid until Unpin.
func (t *Table) PinKind(h Handle, kind Kind) (any, bool) {
	t.mu.Lock()
	e := t.lookup(h)
	if e == nil || e.kind != kind {
		t.mu.Unlock()
		return nil, false
	}
	e.pins++
	value := e.value
	t.mu.Unlock()

	t.notify(Event{Type: EventPinned, Handle: h, Kind: kind, Value: value})
	return value, true
}

// Unpin releases one pin.
func (t *Table) Unpin(h Handle) bool {
	t.mu.Lock()
	e := t.lookup(h)
	if e == nil || e.pins == 0 {
		t.mu.Unlock()
		return false
	}
	e.pins--
	kind, value := e.kind, e.value
	t.mu.Unlock()

	t.notify(Event{Type: EventUnpinned, Handle: h, Kind: kind, Value: value})
	return true
}

// Remove frees a slot and returns its value. Values implementing Dropper are
// dropped after the slot is freed.
func (t *Table) Remove(h Handle) (any, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, ErrClosed
	}
	e := t.lookup(h)
	if e == nil {
		t.mu.Unlock()
		return nil, ErrInvalid
	}
	if e.pins > 0 {
		t.mu.Unlock()
		return nil, ErrPinned
	}
	value, kind := e.value, e.kind
	*e = entry{}
	t.freeList = append(t.freeList, h)
	t.mu.Unlock()

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}
	t.notify(Event{Type: EventDropped, Handle: h, Kind: kind, Value: value})
	return value, nil
}

// Len returns the number of live slots.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries) - len(t.freeList)
}

// Each calls fn for every live slot until fn returns false. fn runs without
// the table lock held, on a snapshot taken at the call.
func (t *Table) Each(fn func(Handle, Kind, any) bool) {
	type item struct {
		h     Handle
		kind  Kind
		value any
	}
	t.mu.RLock()
	items := make([]item, 0, len(t.entries)-len(t.freeList))
	for i, e := range t.entries {
		if e.valid {
			items = append(items, item{Handle(i + 1), e.kind, e.value})
		}
	}
	t.mu.RUnlock()

	for _, it := range items {
		if !fn(it.h, it.kind, it.value) {
			return
		}
	}
}

// Clear removes every unpinned slot.
func (t *Table) Clear() {
	var handles []Handle
	t.Each(func(h Handle, _ Kind, _ any) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		_, _ = t.Remove(h)
	}
}

// Close drops every value and stops accepting inserts.
func (t *Table) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	entries := t.entries
	t.entries = nil
	t.freeList = nil
	t.mu.Unlock()

	for _, e := range entries {
		if !e.valid {
			continue
		}
		if d, ok := e.value.(Dropper); ok {
			d.Drop()
		}
	}
	return nil
}

// Subscribe adds an observer and returns a function that removes it.
func (t *Table) Subscribe(o Observer) (cancel func()) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	if t.observers == nil {
		t.observers = make(map[int]Observer)
	}
	id := t.nextObs
	t.nextObs++
	t.observers[id] = o
	return func() {
		t.obsMu.Lock()
		defer t.obsMu.Unlock()
		delete(t.observers, id)
	}
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
