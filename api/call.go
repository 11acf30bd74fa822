package api

import (
	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/object"
	"github.com/wippyai/gdnative/sys"
)

// invoke calls class.method and destroys args. The result is owned by the
// caller.
func invoke(obj sys.Object, class, method string, args ...core.Variant) core.Variant {
	defer func() {
		for _, a := range args {
			a.Destroy()
		}
	}()
	return object.MustCall(obj, class, method, args...)
}

func invokeVoid(obj sys.Object, class, method string, args ...core.Variant) {
	invoke(obj, class, method, args...).Destroy()
}

func toBool(v core.Variant) bool {
	defer v.Destroy()
	return v.ToBool()
}

func toInt(v core.Variant) int64 {
	defer v.Destroy()
	return v.ToInt()
}

func toFloat(v core.Variant) float64 {
	defer v.Destroy()
	return v.ToFloat()
}

func toString(v core.Variant) string {
	defer v.Destroy()
	s, _ := v.TryToString()
	return s
}

// toObject extracts a borrowed view of a manually managed object.
func toObject[T object.Class](v core.Variant) (object.TRef[T, object.Shared], bool) {
	defer v.Destroy()
	obj, ok := v.TryToObject()
	if !ok || !object.IsClass(obj, object.ClassName[T]()) {
		return object.TRef[T, object.Shared]{}, false
	}
	return object.Borrow[T, object.Shared](obj), true
}

// toRef extracts a new shared reference, for counted objects.
func toRef[T object.Class](v core.Variant) (object.Ref[T, object.Shared], bool) {
	defer v.Destroy()
	r, err := object.RefFromVariant[T](v)
	return r, err == nil
}
