// Package thread identifies the operating system thread running the caller.
//
// Engine callbacks arrive on engine threads, which stay pinned for the
// duration of the call. Go code that wants a stable identity outside a
// callback must call runtime.LockOSThread first.
package thread

// ID is an OS thread identifier.
type ID int64

// Current returns the calling thread's id.
func Current() ID {
	return current()
}
