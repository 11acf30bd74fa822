package api

import (
	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/object"
)

// Resource is the base of loadable, shareable data.
type Resource struct{ Reference }

func (Resource) ClassName() string { return "Resource" }

func (r Resource) GetRID() core.RID {
	v := invoke(r.Raw(), "Resource", "get_rid")
	defer v.Destroy()
	rid, _ := v.TryToRID()
	return rid
}

func (r Resource) SetName(name string) {
	invokeVoid(r.Raw(), "Resource", "set_name", core.StringVariant(name))
}

func (r Resource) GetName() string {
	return toString(invoke(r.Raw(), "Resource", "get_name"))
}

// Script is the abstract base of script resources.
type Script struct{ Resource }

func (Script) ClassName() string { return "Script" }

func (s Script) CanInstance() bool {
	return toBool(invoke(s.Raw(), "Script", "can_instance"))
}

// GDNativeLibrary describes a loaded native library.
type GDNativeLibrary struct{ Resource }

func (GDNativeLibrary) ClassName() string { return "GDNativeLibrary" }

// NativeScript is a script resource backed by a class this library
// registered.
type NativeScript struct{ Script }

func (NativeScript) ClassName() string { return "NativeScript" }

func (s NativeScript) SetClassName(name string) {
	invokeVoid(s.Raw(), "NativeScript", "set_class_name", core.StringVariant(name))
}

func (s NativeScript) GetClassName() string {
	return toString(invoke(s.Raw(), "NativeScript", "get_class_name"))
}

// SetLibrary points the script at lib. A zero wrapper clears it.
func (s NativeScript) SetLibrary(lib GDNativeLibrary) {
	invokeVoid(s.Raw(), "NativeScript", "set_library", core.ObjectVariant(lib.Raw()))
}

func (s NativeScript) GetLibrary() (object.Ref[GDNativeLibrary, object.Shared], bool) {
	return toRef[GDNativeLibrary](invoke(s.Raw(), "NativeScript", "get_library"))
}

// New instances the script's base class with the script attached. The
// result variant holds the new object, or Nil when instancing failed.
func (s NativeScript) New() core.Variant {
	return invoke(s.Raw(), "NativeScript", "new")
}
