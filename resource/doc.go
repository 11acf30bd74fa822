// Package resource provides pointer-sized handle tables.
//
// The engine stores opaque pointer-sized values on behalf of the library:
// method data for each registered trampoline, and the user-data of every
// script instance. The bindings never hand out Go pointers for these.
// Instead a Table maps small integer handles to Go values:
//
//	table := resource.NewTable()
//
//	// Insert a value, get a handle
//	h := table.Insert(methodKind, record)
//
//	// Retrieve by handle, checking the kind
//	v, ok := table.GetKind(h, methodKind)
//
//	// Free the slot when the engine releases it
//	v, err := table.Remove(h)
//
// # Pins
//
// A slot can be pinned while a call is using its value. Remove refuses to
// free a pinned slot and returns ErrPinned, so a destroy callback arriving
// during a call cannot release storage out from under it.
//
// # Typed views
//
// Typed narrows a table to one kind and Go type:
//
//	methods := resource.NewTyped[*methodRecord](table, methodKind)
//	h := methods.Insert(rec)
//	rec, ok := methods.Get(h)
//
// # Observers
//
// Subscribe registers an Observer for created, dropped, pinned and unpinned
// events. The headless engine uses this to count object destructions.
package resource
