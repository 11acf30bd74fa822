package object

import (
	"strconv"

	"github.com/wippyai/gdnative/sys"
)

// InstanceID is the engine's stable identifier of an object. Unlike a
// handle it can be kept after the object dies and checked later.
type InstanceID uint64

func (id InstanceID) String() string { return strconv.FormatUint(uint64(id), 10) }

func instanceID(obj sys.Object) InstanceID {
	if obj == 0 {
		return 0
	}
	out := MustCall(obj, "Object", "get_instance_id")
	defer out.Destroy()
	return InstanceID(out.ToInt())
}

// FromInstanceID returns a new shared reference to the live object with the
// given id, when it exists and is a T.
func FromInstanceID[T Class](id InstanceID) (Ref[T, Shared], bool) {
	obj := sys.Get().Core.InstanceFromID(uint64(id))
	if obj == 0 || !IsClass(obj, ClassName[T]()) {
		return Ref[T, Shared]{}, false
	}
	return FromSysBorrowed[T](obj), true
}

// TryFromInstanceID borrows the live object with the given id for the
// current call, without adding a reference.
func TryFromInstanceID[T Class](id InstanceID) (TRef[T, Shared], bool) {
	obj := sys.Get().Core.InstanceFromID(uint64(id))
	if obj == 0 || !IsClass(obj, ClassName[T]()) {
		return TRef[T, Shared]{}, false
	}
	return Borrow[T, Shared](obj), true
}
