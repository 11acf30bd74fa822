package object

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/sys"
)

type bindKey struct{ class, method string }

// bindCache is scoped to one bound API so a reload never reuses stale binds.
type bindCache struct {
	api   *sys.API
	binds sync.Map // bindKey -> sys.MethodBind
}

var binds atomic.Pointer[bindCache]

func cacheFor(api *sys.API) *bindCache {
	for {
		c := binds.Load()
		if c != nil && c.api == api {
			return c
		}
		next := &bindCache{api: api}
		if binds.CompareAndSwap(c, next) {
			return next
		}
	}
}

// MethodBind resolves an engine method bind, caching it for the lifetime of
// the bound API. It returns false when the class has no such method.
func MethodBind(class, method string) (sys.MethodBind, bool) {
	api := sys.Get()
	c := cacheFor(api)
	key := bindKey{class, method}
	if mb, ok := c.binds.Load(key); ok {
		return mb.(sys.MethodBind), true
	}
	mb := api.Core.MethodBindGetMethod(class, method)
	if mb == 0 {
		return 0, false
	}
	c.binds.Store(key, mb)
	return mb, true
}

// Call invokes class.method on obj through a method bind. Arguments are
// borrowed; the result is owned by the caller.
func Call(obj sys.Object, class, method string, args ...core.Variant) (core.Variant, error) {
	mb, ok := MethodBind(class, method)
	if !ok {
		return core.Variant{}, errors.NotFound(errors.PhaseEngine, "method "+class+"."+method)
	}
	raw := make([]sys.Variant, len(args))
	for i, a := range args {
		raw[i] = a.Handle()
	}
	out, cerr := sys.Get().Core.MethodBindCall(mb, obj, raw)
	if err := core.NewCallError(class+"."+method, cerr); err != nil {
		Logger().Debug("method bind call failed",
			zap.String("class", class),
			zap.String("method", method),
			zap.Error(err))
		return core.Variant{}, err
	}
	return core.VariantFromHandle(out), nil
}

// MustCall is Call for methods every object of class has. It panics when the
// call fails.
func MustCall(obj sys.Object, class, method string, args ...core.Variant) core.Variant {
	out, err := Call(obj, class, method, args...)
	if err != nil {
		panic(err)
	}
	return out
}

func callBool(obj sys.Object, class, method string, args ...core.Variant) bool {
	out := MustCall(obj, class, method, args...)
	defer out.Destroy()
	return out.ToBool()
}

// IsClass reports whether obj is an instance of class or a subclass.
func IsClass(obj sys.Object, class string) bool {
	if obj == 0 {
		return false
	}
	name := core.StringVariant(class)
	defer name.Destroy()
	return callBool(obj, "Object", "is_class", name)
}

// ClassOf returns the dynamic engine class name of obj.
func ClassOf(obj sys.Object) string {
	out := MustCall(obj, "Object", "get_class")
	defer out.Destroy()
	s, _ := out.TryToString()
	return s
}

func initRef(obj sys.Object) bool { return callBool(obj, "Reference", "init_ref") }

func addRef(obj sys.Object) bool { return callBool(obj, "Reference", "reference") }

// dropRef releases one reference and destroys the object at zero.
func dropRef(obj sys.Object) {
	if callBool(obj, "Reference", "unreference") {
		sys.Get().Core.ObjectDestroy(obj)
	}
}

// isRefCountedObject asks the engine rather than the static type. It is used
// where the static type is a manually managed base of a counted object.
func isRefCountedObject(obj sys.Object) bool {
	return IsClass(obj, "Reference")
}
