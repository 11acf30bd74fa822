package api

import (
	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/object"
	"github.com/wippyai/gdnative/sys"
)

// Object is the root of the class hierarchy. Objects are manually managed.
type Object struct {
	object.Base
	object.ManuallyManaged
}

func (Object) ClassName() string { return "Object" }

// AsObject returns the Object view of any class that inherits it.
func (o Object) AsObject() Object { return o }

// ObjectArg is accepted where the engine takes any object.
type ObjectArg interface {
	AsObject() Object
}

func (o Object) GetClass() string { return object.ClassOf(o.Raw()) }

func (o Object) IsClass(class string) bool { return object.IsClass(o.Raw(), class) }

func (o Object) GetInstanceID() object.InstanceID {
	return object.InstanceID(toInt(invoke(o.Raw(), "Object", "get_instance_id")))
}

// Set assigns a property. The value is borrowed.
func (o Object) Set(property string, value core.Variant) {
	name := core.StringVariant(property)
	defer name.Destroy()
	object.MustCall(o.Raw(), "Object", "set", name, value).Destroy()
}

// Get reads a property. The result is owned by the caller.
func (o Object) Get(property string) core.Variant {
	return invoke(o.Raw(), "Object", "get", core.StringVariant(property))
}

// SetMeta stores a metadata value. The value is borrowed.
func (o Object) SetMeta(name string, value core.Variant) {
	key := core.StringVariant(name)
	defer key.Destroy()
	object.MustCall(o.Raw(), "Object", "set_meta", key, value).Destroy()
}

func (o Object) GetMeta(name string) core.Variant {
	return invoke(o.Raw(), "Object", "get_meta", core.StringVariant(name))
}

func (o Object) HasMeta(name string) bool {
	return toBool(invoke(o.Raw(), "Object", "has_meta", core.StringVariant(name)))
}

func (o Object) RemoveMeta(name string) {
	invokeVoid(o.Raw(), "Object", "remove_meta", core.StringVariant(name))
}

// Call dynamically calls a method on the object, script methods included.
// Arguments are borrowed; the result is owned by the caller.
func (o Object) Call(method string, args ...core.Variant) (core.Variant, error) {
	name := core.StringVariant(method)
	defer name.Destroy()
	return object.Call(o.Raw(), "Object", "call", append([]core.Variant{name}, args...)...)
}

func (o Object) HasMethod(method string) bool {
	return toBool(invoke(o.Raw(), "Object", "has_method", core.StringVariant(method)))
}

func (o Object) HasSignal(signal string) bool {
	return toBool(invoke(o.Raw(), "Object", "has_signal", core.StringVariant(signal)))
}

// Connect routes signal to method on target.
func (o Object) Connect(signal string, target ObjectArg, method string) error {
	return core.GodotResult(sys.Error(toInt(invoke(o.Raw(), "Object", "connect",
		core.StringVariant(signal), core.ObjectVariant(target.AsObject().Raw()), core.StringVariant(method)))))
}

func (o Object) Disconnect(signal string, target ObjectArg, method string) {
	invokeVoid(o.Raw(), "Object", "disconnect",
		core.StringVariant(signal), core.ObjectVariant(target.AsObject().Raw()), core.StringVariant(method))
}

func (o Object) IsConnected(signal string, target ObjectArg, method string) bool {
	return toBool(invoke(o.Raw(), "Object", "is_connected",
		core.StringVariant(signal), core.ObjectVariant(target.AsObject().Raw()), core.StringVariant(method)))
}

// EmitSignal calls every connected method with args, which are borrowed.
func (o Object) EmitSignal(signal string, args ...core.Variant) {
	name := core.StringVariant(signal)
	defer name.Destroy()
	object.MustCall(o.Raw(), "Object", "emit_signal", append([]core.Variant{name}, args...)...).Destroy()
}

// GetScript returns the attached script resource, or Nil.
func (o Object) GetScript() core.Variant {
	return invoke(o.Raw(), "Object", "get_script")
}

// SetScript attaches a script resource, creating the script instance. The
// variant is borrowed.
func (o Object) SetScript(script core.Variant) {
	object.MustCall(o.Raw(), "Object", "set_script", script).Destroy()
}

// Reference is the base of reference-counted classes.
type Reference struct {
	Object
	object.RefCounted
}

func (Reference) ClassName() string { return "Reference" }

func (r Reference) AsReference() Reference { return r }

// GetReferenceCount returns the engine's current count.
func (r Reference) GetReferenceCount() int {
	return int(toInt(invoke(r.Raw(), "Reference", "get_reference_count")))
}
