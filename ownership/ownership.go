// Package ownership defines the zero-sized markers that describe what kind of
// reference to an engine value the holder has.
//
//   - Unique: the only reference in existence. May be sent across threads by
//     moving it, and converted one way into Shared or ThreadLocal.
//   - Shared: one of possibly many references on possibly many threads.
//     Access requires the caller to uphold the engine's thread-safety rules.
//   - ThreadLocal: one of possibly many references, all on the current thread.
//
// The markers parameterise object.Ref, core.Dictionary and core.VariantArray.
// Which operations exist for a given marker is decided by the constraints
// below, so misuse is a compile error.
package ownership

// Unique marks the only reference to a value.
type Unique struct{}

// Shared marks a reference that may be aliased across threads.
type Shared struct{}

// ThreadLocal marks a reference aliased only on its owning thread.
type ThreadLocal struct{}

// Kind is satisfied by every ownership marker.
type Kind interface {
	Unique | Shared | ThreadLocal
}

// Local is satisfied by markers whose holder may access the value without
// further affirmation.
type Local interface {
	Unique | ThreadLocal
}

// NonUnique is satisfied by markers that may be cloned.
type NonUnique interface {
	Shared | ThreadLocal
}

// Name returns the marker's name for diagnostics.
func Name[O Kind]() string {
	var o O
	switch any(o).(type) {
	case Unique:
		return "Unique"
	case Shared:
		return "Shared"
	default:
		return "ThreadLocal"
	}
}

// IsThreadLocal reports whether O is ThreadLocal.
func IsThreadLocal[O Kind]() bool {
	var o O
	_, ok := any(o).(ThreadLocal)
	return ok
}

// IsShared reports whether O is Shared.
func IsShared[O Kind]() bool {
	var o O
	_, ok := any(o).(Shared)
	return ok
}
