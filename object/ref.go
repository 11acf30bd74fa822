package object

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/internal/thread"
	"github.com/wippyai/gdnative/ownership"
	"github.com/wippyai/gdnative/sys"
)

// Ownership markers, re-exported for reference signatures.
type (
	Unique      = ownership.Unique
	Shared      = ownership.Shared
	ThreadLocal = ownership.ThreadLocal
)

// Ref is a persistent reference to an engine object of class T held with
// ownership O.
//
// A Ref to a reference-counted object holds one count, returned by Release.
// A Ref to a manually managed object holds nothing; the object lives until
// it is freed, by Free or by the engine. Whether a Ref counts is fixed when
// it is created and survives casts, so a Ref[Object] obtained by upcasting a
// Resource still releases its count.
//
// Conversions consume their argument. The argument must not be used after.
type Ref[T Class, O ownership.Kind] struct {
	obj     sys.Object
	counted bool
	owner   thread.ID
}

// New constructs a new object of class T. It panics when the engine has no
// constructor for T.
func New[T Class]() Ref[T, Unique] {
	r, err := TryNew[T]()
	if err != nil {
		panic(err)
	}
	return r
}

// TryNew constructs a new object of class T.
func TryNew[T Class]() (Ref[T, Unique], error) {
	name := ClassName[T]()
	ctor := sys.Get().Core.GetClassConstructor(name)
	if ctor == nil {
		return Ref[T, Unique]{}, errors.New(errors.PhaseEngine, errors.KindNotFound).
			Class(name).
			Detail("no constructor for class %s", name).
			Build()
	}
	return adoptNew[T](ctor()), nil
}

// ByClassName constructs an object of the named class, which must be T or
// inherit from it. It reports false when the class is unknown, cannot be
// instanced or is not a T.
func ByClassName[T Class](name string) (Ref[T, Unique], bool) {
	ctor := sys.Get().Core.GetClassConstructor(name)
	if ctor == nil {
		return Ref[T, Unique]{}, false
	}
	obj := ctor()
	if obj == 0 {
		return Ref[T, Unique]{}, false
	}
	if !IsClass(obj, ClassName[T]()) {
		Logger().Debug("constructed object has the wrong class",
			zap.String("class", name),
			zap.String("want", ClassName[T]()))
		if isRefCountedObject(obj) {
			initRef(obj)
			dropRef(obj)
		} else {
			sys.Get().Core.ObjectDestroy(obj)
		}
		return Ref[T, Unique]{}, false
	}
	return adoptNew[T](obj), true
}

func adoptNew[T Class](obj sys.Object) Ref[T, Unique] {
	counted := isRefCountedObject(obj)
	if counted {
		initRef(obj)
	}
	return Ref[T, Unique]{obj: obj, counted: counted}
}

// FromSys adopts a reference the caller already owns. For a counted object
// that is one count; nothing is added.
func FromSys[T Class, O ownership.Kind](obj sys.Object) Ref[T, O] {
	r := Ref[T, O]{obj: obj, counted: obj != 0 && isRefCountedObject(obj)}
	if ownership.IsThreadLocal[O]() {
		r.owner = thread.Current()
	}
	return r
}

// FromSysBorrowed creates a new reference to an object the caller only
// borrows, adding a count when the object is reference counted.
func FromSysBorrowed[T Class](obj sys.Object) Ref[T, Shared] {
	r := FromSys[T, Shared](obj)
	if r.counted {
		addRef(obj)
	}
	return r
}

// Raw returns the engine handle without affecting ownership.
func (r Ref[T, O]) Raw() sys.Object { return r.obj }

// IsNil reports whether r refers to nothing, as after Release.
func (r Ref[T, O]) IsNil() bool { return r.obj == 0 }

// IsRefCounted reports whether r holds a reference count.
func (r Ref[T, O]) IsRefCounted() bool { return r.counted }

// InstanceID returns the engine's instance id of the object.
func (r Ref[T, O]) InstanceID() InstanceID { return instanceID(r.obj) }

func (r Ref[T, O]) String() string {
	if r.obj == 0 {
		return "[" + ClassName[T]() + ":null]"
	}
	return fmt.Sprintf("[%s:%d]", ClassName[T](), uint64(r.InstanceID()))
}

// Release drops the reference. The count of a counted object is returned and
// the object is destroyed when it was the last one. Release leaves r nil and
// may be called again.
func (r *Ref[T, O]) Release() {
	if r.obj == 0 {
		return
	}
	if r.counted {
		dropRef(r.obj)
	}
	*r = Ref[T, O]{}
}

// ToVariant returns an owned Object variant. The variant holds its own count
// for counted objects, independent of r.
func (r Ref[T, O]) ToVariant() core.Variant {
	return core.ObjectVariant(r.obj)
}

func (Ref[T, O]) VariantType() core.VariantType { return core.TypeObject }

// FromVariant decodes an Object variant of class T into a new Shared
// reference. Other ownership markers cannot be decoded from a variant.
func (r *Ref[T, O]) FromVariant(v core.Variant) error {
	if !ownership.IsShared[O]() {
		return core.CustomFromVariantError("cannot decode a %s object reference", ownership.Name[O]())
	}
	out, err := RefFromVariant[T](v)
	if err != nil {
		return err
	}
	r.obj, r.counted = out.obj, out.counted
	return nil
}

// RefFromVariant decodes an Object variant of class T into a new Shared
// reference. The variant is borrowed.
func RefFromVariant[T Class](v core.Variant) (Ref[T, Shared], error) {
	if v.IsNil() {
		return Ref[T, Shared]{}, core.InvalidNil()
	}
	obj, ok := v.TryToObject()
	if !ok {
		return Ref[T, Shared]{}, core.InvalidVariantType(v.Type(), core.TypeObject)
	}
	if obj == 0 {
		return Ref[T, Shared]{}, core.InvalidNil()
	}
	want := ClassName[T]()
	if !IsClass(obj, want) {
		return Ref[T, Shared]{}, core.CannotCast(ClassOf(obj), want)
	}
	return FromSysBorrowed[T](obj), nil
}

// Clone returns another reference to the same object.
func Clone[T Class, O ownership.NonUnique](r Ref[T, O]) Ref[T, O] {
	if r.counted && r.obj != 0 {
		addRef(r.obj)
	}
	return r
}

// IntoShared gives up uniqueness so the reference may be aliased across
// threads.
func IntoShared[T Class](r Ref[T, Unique]) Ref[T, Shared] {
	return Ref[T, Shared]{obj: r.obj, counted: r.counted}
}

// IntoThreadLocal gives up uniqueness, binding the reference and its clones
// to the calling thread.
func IntoThreadLocal[T Counted](r Ref[T, Unique]) Ref[T, ThreadLocal] {
	return Ref[T, ThreadLocal]{obj: r.obj, counted: r.counted, owner: thread.Current()}
}

// AssumeUnique asserts that no other reference to the object exists.
func AssumeUnique[T Class, O ownership.NonUnique](r Ref[T, O]) Ref[T, Unique] {
	return Ref[T, Unique]{obj: r.obj, counted: r.counted}
}

// AssumeThreadLocal asserts that every reference to the object lives on the
// calling thread.
func AssumeThreadLocal[T Counted](r Ref[T, Shared]) Ref[T, ThreadLocal] {
	return Ref[T, ThreadLocal]{obj: r.obj, counted: r.counted, owner: thread.Current()}
}

// Free destroys a manually managed object immediately.
func Free[T Manual](r Ref[T, Unique]) {
	freeObject(r.obj, r.counted)
}

// AssumeFree destroys a manually managed object through a non-unique
// reference. The caller asserts no other reference will be used after.
func AssumeFree[T Manual, O ownership.Kind](r Ref[T, O]) {
	freeObject(r.obj, r.counted)
}

func freeObject(obj sys.Object, counted bool) {
	if obj == 0 {
		return
	}
	if counted {
		panic(errors.New(errors.PhaseRuntime, errors.KindUnsupported).
			Class(ClassOf(obj)).
			Detail("reference-counted objects cannot be freed manually").
			Build())
	}
	sys.Get().Core.ObjectDestroy(obj)
}

// IsInstanceSane reports whether the object behind a shared reference to a
// manually managed class is still alive.
func IsInstanceSane[T Manual](r Ref[T, Shared]) bool {
	return r.obj != 0 && sys.Get().Core.IsInstanceValid(r.obj)
}

// Upcast converts r to a reference to one of T's base classes. It panics
// when U is not T or a base of T.
func Upcast[U, T Class, O ownership.Kind](r Ref[T, O]) Ref[U, O] {
	if !Inherits[T, U]() {
		panic(errors.New(errors.PhaseRuntime, errors.KindTypeMismatch).
			Class(ClassName[T]()).
			Detail("%s does not inherit %s", ClassName[T](), ClassName[U]()).
			Build())
	}
	return Ref[U, O]{obj: r.obj, counted: r.counted, owner: r.owner}
}

// Cast converts r to a reference of class U when the object is a U. On
// failure r is left untouched and still owned by the caller.
func Cast[U, T Class, O ownership.Kind](r Ref[T, O]) (Ref[U, O], bool) {
	if r.obj == 0 || !IsClass(r.obj, ClassName[U]()) {
		return Ref[U, O]{}, false
	}
	return Ref[U, O]{obj: r.obj, counted: r.counted, owner: r.owner}, true
}
