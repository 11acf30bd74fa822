package export

import (
	"reflect"
	"runtime"

	"github.com/wippyai/gdnative/api"
	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/object"
	"github.com/wippyai/gdnative/ownership"
	"github.com/wippyai/gdnative/sys"
	"github.com/wippyai/gdnative/userdata"
)

// Instance pairs a script value with the engine object that owns it. The
// owner reference follows the same ownership rules as object.Ref.
type Instance[C NativeClass, O ownership.Kind] struct {
	owner  object.Ref[api.Object, O]
	script userdata.UserData[C]
}

// NewInstance creates an instance of the registered class C, built the way
// the engine builds it.
func NewInstance[C NativeClass]() (Instance[C, object.Unique], error) {
	return construct[C](nil)
}

// Emplace creates an instance of C whose script value is value.
func Emplace[C NativeClass](value C) (Instance[C, object.Unique], error) {
	return construct(&value)
}

func construct[C NativeClass](value *C) (Instance[C, object.Unique], error) {
	entry, ok := registry.lookup(reflect.TypeFor[C]())
	if !ok {
		return Instance[C, object.Unique]{}, errors.New(errors.PhaseRuntime, errors.KindNotFound).
			GoType(reflect.TypeFor[C]().String()).
			Detail("class is not registered").
			Build()
	}

	// The emplace cell is per thread; stay on this one until it is taken.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	script, err := object.TryNew[api.NativeScript]()
	if err != nil {
		return Instance[C, object.Unique]{}, err
	}
	defer script.Release()
	ns := object.Wrap[api.NativeScript](script.Raw())
	ns.SetLibrary(object.Wrap[api.GDNativeLibrary](Library()))
	ns.SetClassName(entry.name)

	if value != nil {
		putEmplaced(*value)
	}
	v := ns.New()
	defer v.Destroy()
	if value != nil && dropEmplaced() {
		return Instance[C, object.Unique]{}, errors.New(errors.PhaseRuntime, errors.KindInvalidOp).
			Class(entry.name).
			Detail("instance was created without taking the emplaced value").
			Build()
	}

	ref, err := object.RefFromVariant[api.Object](v)
	if err != nil {
		return Instance[C, object.Unique]{}, errors.New(errors.PhaseRuntime, errors.KindCallFailed).
			Class(entry.name).
			Cause(err).
			Detail("cannot instance %s", entry.name).
			Build()
	}
	inst, ok := TryFromBase[C](ref)
	if !ok {
		ref.Release()
		return Instance[C, object.Unique]{}, errors.New(errors.PhaseRuntime, errors.KindTypeMismatch).
			Class(entry.name).
			Detail("instanced object does not carry a %s script", entry.name).
			Build()
	}
	return Instance[C, object.Unique]{owner: object.AssumeUnique(inst.owner), script: inst.script}, nil
}

// TryFromBase returns the C instance attached to base. It reports false,
// leaving base with the caller, when base has no C script.
func TryFromBase[C NativeClass, B object.Class, O ownership.Kind](base object.Ref[B, O]) (Instance[C, O], bool) {
	if base.IsNil() {
		return Instance[C, O]{}, false
	}
	api11 := sys.Get()
	if ns11 := api11.NativeScript11; ns11 != nil && ns11.GetTypeTag != nil {
		if !CheckTag[C](ns11.GetTypeTag(base.Raw())) {
			return Instance[C, O]{}, false
		}
	}
	ud := api11.NativeScript.GetUserdata(base.Raw())
	if ud == 0 {
		return Instance[C, O]{}, false
	}
	v, _ := handles.GetKind(slot(ud), kindInstance)
	inst, ok := v.(*instance[C])
	if !ok {
		return Instance[C, O]{}, false
	}
	return Instance[C, O]{owner: object.Upcast[api.Object](base), script: inst.data}, true
}

// IntoBase returns the owner as a reference to its base class B. It panics
// when the owner is not a B.
func IntoBase[B object.Class, C NativeClass, O ownership.Kind](i Instance[C, O]) object.Ref[B, O] {
	r, ok := object.Cast[B](i.owner)
	if !ok {
		panic(errors.New(errors.PhaseRuntime, errors.KindTypeMismatch).
			Class(object.ClassName[B]()).
			Detail("owner is a %s", object.ClassOf(i.owner.Raw())).
			Build())
	}
	return r
}

// Owner returns the owner reference without giving it up.
func (i Instance[C, O]) Owner() object.Ref[api.Object, O] { return i.owner }

// Script returns the instance storage.
func (i Instance[C, O]) Script() userdata.UserData[C] { return i.script }

func (i Instance[C, O]) IsNil() bool { return i.owner.IsNil() }

// Release drops the owner reference.
func (i *Instance[C, O]) Release() {
	i.owner.Release()
	i.script = nil
}

// ToVariant returns an Object variant holding the owner.
func (i Instance[C, O]) ToVariant() core.Variant { return i.owner.ToVariant() }

func (Instance[C, O]) VariantType() core.VariantType { return core.TypeObject }

// FromVariant decodes an Object variant carrying a C script into a new
// Shared instance.
func (i *Instance[C, O]) FromVariant(v core.Variant) error {
	if !ownership.IsShared[O]() {
		return core.CustomFromVariantError("cannot decode a %s instance", ownership.Name[O]())
	}
	ref, err := object.RefFromVariant[api.Object](v)
	if err != nil {
		return err
	}
	inst, ok := TryFromBase[C](ref)
	if !ok {
		ref.Release()
		return core.InvalidInstance(classNameOf[C]())
	}
	*i = Instance[C, O]{owner: object.FromSys[api.Object, O](inst.owner.Raw()), script: inst.script}
	return nil
}

// IntoShared gives up uniqueness of the owner.
func IntoShared[C NativeClass](i Instance[C, object.Unique]) Instance[C, object.Shared] {
	return Instance[C, object.Shared]{owner: object.IntoShared(i.owner), script: i.script}
}

// Free destroys a manually managed owner. It panics when the owner is
// reference counted.
func Free[C NativeClass, O ownership.Kind](i Instance[C, O]) {
	object.AssumeFree(i.owner)
}

// RefInstance is a usable view of an instance, valid while the instance it
// came from is.
type RefInstance[C NativeClass, O ownership.Kind] struct {
	owner  object.TRef[api.Object, O]
	script userdata.UserData[C]
}

// Deref views a locally owned instance.
func Deref[C NativeClass, O ownership.Local](i Instance[C, O]) RefInstance[C, O] {
	return RefInstance[C, O]{owner: object.Deref(i.owner), script: i.script}
}

// AssumeSafe views a shared instance. The caller asserts the owner is alive
// and safe to use on this thread.
func AssumeSafe[C NativeClass](i Instance[C, object.Shared]) RefInstance[C, object.Shared] {
	return RefInstance[C, object.Shared]{owner: object.AssumeSafe(i.owner), script: i.script}
}

func (r RefInstance[C, O]) Owner() object.TRef[api.Object, O] { return r.owner }

func (r RefInstance[C, O]) Script() userdata.UserData[C] { return r.script }

// Map runs fn with shared access to the script value.
func (r RefInstance[C, O]) Map(fn func(*C, object.TRef[api.Object, O])) error {
	return r.script.Map(func(c *C) { fn(c, r.owner) })
}

// MapMut runs fn with exclusive access to the script value.
func (r RefInstance[C, O]) MapMut(fn func(*C, object.TRef[api.Object, O])) error {
	return r.script.MapMut(func(c *C) { fn(c, r.owner) })
}

// MapOwned moves the script value into fn.
func (r RefInstance[C, O]) MapOwned(fn func(C, object.TRef[api.Object, O])) error {
	return r.script.MapOwned(func(c C) { fn(c, r.owner) })
}
