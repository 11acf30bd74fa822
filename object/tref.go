package object

import (
	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/internal/thread"
	"github.com/wippyai/gdnative/ownership"
	"github.com/wippyai/gdnative/sys"
)

// TRef is a borrowed, usable view of an object. It is valid while the
// reference it came from is, or for the duration of the callback that
// provided it. It never changes reference counts.
type TRef[T Class, O ownership.Kind] struct {
	obj     sys.Object
	counted bool
}

// Get returns the class wrapper for calling methods.
func (t TRef[T, O]) Get() T { return Wrap[T](t.obj) }

// Raw returns the engine handle.
func (t TRef[T, O]) Raw() sys.Object { return t.obj }

// Bind points t at obj when obj is a T and reports whether it did. Callback
// plumbing uses it to hand out owners of a type known only at run time.
func (t *TRef[T, O]) Bind(obj sys.Object) bool {
	if obj == 0 || !IsClass(obj, ClassName[T]()) {
		return false
	}
	*t = Borrow[T, O](obj)
	return true
}

// Deref borrows a locally owned reference. For ThreadLocal references it
// panics when called off the owning thread.
func Deref[T Class, O ownership.Local](r Ref[T, O]) TRef[T, O] {
	if ownership.IsThreadLocal[O]() && r.owner != thread.Current() {
		panic(errors.New(errors.PhaseRuntime, errors.KindWrongThread).
			Class(ClassName[T]()).
			Detail("thread-local reference used off its owning thread").
			Build())
	}
	return TRef[T, O]{obj: r.obj, counted: r.counted}
}

// AssumeSafe borrows a shared reference. The caller asserts the object is
// alive and that the access is safe on this thread.
func AssumeSafe[T Class](r Ref[T, Shared]) TRef[T, Shared] {
	return TRef[T, Shared]{obj: r.obj, counted: r.counted}
}

// AssumeSafeIfSane borrows a shared reference to a manually managed object
// when the object is still alive.
func AssumeSafeIfSane[T Manual](r Ref[T, Shared]) (TRef[T, Shared], bool) {
	if !IsInstanceSane(r) {
		return TRef[T, Shared]{}, false
	}
	return AssumeSafe(r), true
}

// Borrow wraps an object the caller holds for the current call, such as a
// callback owner.
func Borrow[T Class, O ownership.Kind](obj sys.Object) TRef[T, O] {
	return TRef[T, O]{obj: obj, counted: obj != 0 && isRefCountedObject(obj)}
}

// Claim turns the borrow into a persistent reference, adding a count for
// counted objects.
func Claim[T Class, O ownership.NonUnique](t TRef[T, O]) Ref[T, O] {
	if t.counted && t.obj != 0 {
		addRef(t.obj)
	}
	r := Ref[T, O]{obj: t.obj, counted: t.counted}
	if ownership.IsThreadLocal[O]() {
		r.owner = thread.Current()
	}
	return r
}

// As views t as one of T's base classes. It panics when U is not T or a
// base of T.
func As[U, T Class, O ownership.Kind](t TRef[T, O]) TRef[U, O] {
	if !Inherits[T, U]() {
		panic(errors.New(errors.PhaseRuntime, errors.KindTypeMismatch).
			Class(ClassName[T]()).
			Detail("%s does not inherit %s", ClassName[T](), ClassName[U]()).
			Build())
	}
	return TRef[U, O]{obj: t.obj, counted: t.counted}
}

// TryAs views t as class U when the object is a U.
func TryAs[U, T Class, O ownership.Kind](t TRef[T, O]) (TRef[U, O], bool) {
	if t.obj == 0 || !IsClass(t.obj, ClassName[U]()) {
		return TRef[U, O]{}, false
	}
	return TRef[U, O]{obj: t.obj, counted: t.counted}, true
}
