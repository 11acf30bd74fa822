package export

import (
	"sync"

	"github.com/wippyai/gdnative/internal/thread"
)

// The emplace cell carries a prepared value from Emplace to the create
// trampoline of the instance it builds. Instancing is synchronous, so the
// cell is keyed by the thread doing it.
var emplaced struct {
	mu    sync.Mutex
	cells map[thread.ID]any
}

func putEmplaced(v any) {
	emplaced.mu.Lock()
	defer emplaced.mu.Unlock()
	if emplaced.cells == nil {
		emplaced.cells = make(map[thread.ID]any)
	}
	emplaced.cells[thread.Current()] = v
}

// takeEmplaced takes the value waiting on this thread when it is a C.
func takeEmplaced[C NativeClass]() (C, bool) {
	emplaced.mu.Lock()
	defer emplaced.mu.Unlock()
	id := thread.Current()
	v, ok := emplaced.cells[id].(C)
	if ok {
		delete(emplaced.cells, id)
	}
	return v, ok
}

// dropEmplaced empties this thread's cell and reports whether it still
// held a value.
func dropEmplaced() bool {
	emplaced.mu.Lock()
	defer emplaced.mu.Unlock()
	id := thread.Current()
	_, ok := emplaced.cells[id]
	delete(emplaced.cells, id)
	return ok
}

func clearEmplaced() {
	emplaced.mu.Lock()
	defer emplaced.mu.Unlock()
	emplaced.cells = nil
}
