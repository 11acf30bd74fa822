package headless

import (
	"sort"

	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/resource"
	"github.com/wippyai/gdnative/sys"
)

// Instantiate creates an object of a built-in class or of a registered
// script class. Reference-counted objects start with one reference owned
// by the caller.
func (e *Engine) Instantiate(class string) (sys.Object, error) {
	if sc, ok := e.scripts[class]; ok {
		res := e.construct(e.classes["NativeScript"])
		res.refcount = 1
		res.nsClassName = sc.name
		res.nsLibrary = objectOf(e.retain(value{sys.VariantObject, e.objectByHandle(e.library)}))
		o, err := e.newFromScript(res)
		e.release(value{sys.VariantObject, res})
		if err != nil {
			return 0, errors.New(errors.PhaseEngine, errors.KindInvalidInput).Class(class).Cause(err).Build()
		}
		if o.class.refCounted {
			o.refcount = 1
		}
		return o.handle, nil
	}
	ci, ok := e.classes[class]
	if !ok {
		return 0, errors.NotFound(errors.PhaseEngine, "class "+class)
	}
	if !ci.instanciable {
		return 0, errors.New(errors.PhaseEngine, errors.KindUnsupported).
			Class(class).
			Detail("class %s cannot be instanced", class).
			Build()
	}
	o := e.construct(ci)
	if ci.refCounted {
		o.refcount = 1
	}
	return o.handle, nil
}

func (e *Engine) objectByHandle(h sys.Object) *object {
	o, ok := e.liveObject(h)
	if !ok {
		return nil
	}
	return o
}

// Release drops one reference from a reference-counted object.
func (e *Engine) Release(h sys.Object) {
	if o := e.objectByHandle(h); o != nil {
		e.release(value{sys.VariantObject, o})
	}
}

// Free destroys a manually managed object immediately.
func (e *Engine) Free(h sys.Object) {
	if o, ok := e.objectOf(h); ok {
		e.destroyObject(o)
	}
}

// Call invokes method on an object with borrowed arguments. The returned
// variant is owned by the caller.
func (e *Engine) Call(h sys.Object, method string, args ...sys.Variant) (sys.Variant, error) {
	o := e.objectByHandle(h)
	if o == nil {
		return 0, errors.New(errors.PhaseEngine, errors.KindNilValue).Detail("call %s on a dead object", method).Build()
	}
	vals := make([]value, len(args))
	for i, a := range args {
		vals[i] = e.valueOf(a)
	}
	out, cerr := e.callObject(o, method, vals)
	if cerr.Error != sys.CallOK {
		e.release(out)
		return 0, errors.New(errors.PhaseEngine, errors.KindCallFailed).
			Class(o.class.name).
			Detail("%s: call error %d at argument %d", method, cerr.Error, cerr.Argument).
			Build()
	}
	return e.newVariant(out), nil
}

// Set assigns a property through the object's property system.
func (e *Engine) Set(h sys.Object, property string, v sys.Variant) {
	if o := e.objectByHandle(h); o != nil {
		e.setProperty(o, property, e.valueOf(v))
	}
}

// Get reads a property. The returned variant is owned by the caller.
func (e *Engine) Get(h sys.Object, property string) sys.Variant {
	o := e.objectByHandle(h)
	if o == nil {
		return e.newVariant(nilValue)
	}
	return e.newVariant(e.getProperty(o, property))
}

// IsAlive reports whether the object behind h still exists.
func (e *Engine) IsAlive(h sys.Object) bool {
	_, ok := e.liveObject(h)
	return ok
}

// RefCount returns the reference count of an object, or 0 once it is gone.
func (e *Engine) RefCount(h sys.Object) int {
	if o := e.objectByHandle(h); o != nil {
		return o.refcount
	}
	return 0
}

// DestroyCount returns how many times the object with id was destroyed.
// Anything other than 0 or 1 is a double free.
func (e *Engine) DestroyCount(id uint64) int { return e.destroyed[id] }

// Profile returns the samples, in microseconds, added under signature.
func (e *Engine) Profile(signature string) []uint64 {
	e.profMu.Lock()
	defer e.profMu.Unlock()
	return append([]uint64(nil), e.profile[signature]...)
}

// ProfileSignatures lists every signature that received samples.
func (e *Engine) ProfileSignatures() []string {
	e.profMu.Lock()
	defer e.profMu.Unlock()
	sigs := make([]string, 0, len(e.profile))
	for sig := range e.profile {
		sigs = append(sigs, sig)
	}
	sort.Strings(sigs)
	return sigs
}

// InstanceID returns the object's id, which stays known after it dies.
func (e *Engine) InstanceID(h sys.Object) uint64 {
	v, ok := e.table.GetKind(resource.Handle(h), kindObject)
	if !ok {
		return 0
	}
	return v.(*object).id
}

// ClassOf returns the built-in class of an object.
func (e *Engine) ClassOf(h sys.Object) string {
	if o := e.objectByHandle(h); o != nil {
		return o.class.name
	}
	return ""
}

// ScriptClassOf returns the script class attached to an object, if any.
func (e *Engine) ScriptClassOf(h sys.Object) string {
	if o := e.objectByHandle(h); o != nil && o.script != nil {
		return o.script.class.name
	}
	return ""
}

// Children returns the child nodes of a node.
func (e *Engine) Children(h sys.Object) []sys.Object {
	o := e.objectByHandle(h)
	if o == nil {
		return nil
	}
	out := make([]sys.Object, len(o.children))
	for i, c := range o.children {
		out[i] = c.handle
	}
	return out
}

// Singleton returns a built-in singleton by name.
func (e *Engine) Singleton(name string) sys.Object {
	if o, ok := e.singletons[name]; ok {
		return o.handle
	}
	return 0
}

// Library returns the library object handed to the library at load.
func (e *Engine) Library() sys.Object { return e.library }

// LiveObjects counts living objects the engine did not create for itself.
func (e *Engine) LiveObjects() int {
	own := make(map[*object]bool, len(e.singletons))
	for _, s := range e.singletons {
		own[s] = true
	}
	n := 0
	for _, o := range e.objects {
		if o.alive && o.handle != e.library && !own[o] {
			n++
		}
	}
	return n
}

// MethodInfo describes a registered script method.
type MethodInfo struct {
	Name string
	RPC  sys.RPCMode
	Args []sys.MethodArgument
	Doc  string
}

// PropertyInfo describes a registered script property. Default is the
// default value rendered the way str() renders it.
type PropertyInfo struct {
	Path       string
	Type       sys.VariantType
	Hint       sys.PropertyHint
	HintString string
	Usage      sys.PropertyUsage
	RsetMode   sys.RPCMode
	Default    string
	HasSetter  bool
	HasGetter  bool
	Doc        string
}

// SignalArgInfo describes one argument of a registered signal.
type SignalArgInfo struct {
	Name    string
	Type    sys.VariantType
	Default string
}

// SignalInfo describes a registered signal.
type SignalInfo struct {
	Name string
	Args []SignalArgInfo
	Doc  string
}

// ScriptClassInfo is a snapshot of a registered script class.
type ScriptClassInfo struct {
	Name       string
	Base       string
	Tool       bool
	TypeTag    sys.TypeTag
	Doc        string
	Methods    []MethodInfo
	Properties []PropertyInfo
	Signals    []SignalInfo
}

// Method returns the named method.
func (c ScriptClassInfo) Method(name string) (MethodInfo, bool) {
	for _, m := range c.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return MethodInfo{}, false
}

// Property returns the named property.
func (c ScriptClassInfo) Property(path string) (PropertyInfo, bool) {
	for _, p := range c.Properties {
		if p.Path == path {
			return p, true
		}
	}
	return PropertyInfo{}, false
}

// Signal returns the named signal.
func (c ScriptClassInfo) Signal(name string) (SignalInfo, bool) {
	for _, s := range c.Signals {
		if s.Name == name {
			return s, true
		}
	}
	return SignalInfo{}, false
}

// MethodNames returns the method names sorted.
func (c ScriptClassInfo) MethodNames() []string {
	out := make([]string, len(c.Methods))
	for i, m := range c.Methods {
		out[i] = m.Name
	}
	sort.Strings(out)
	return out
}

// ScriptClasses lists registered script classes in registration order.
func (e *Engine) ScriptClasses() []ScriptClassInfo {
	out := make([]ScriptClassInfo, 0, len(e.scriptOrder))
	for _, name := range e.scriptOrder {
		out = append(out, e.describe(e.scripts[name]))
	}
	return out
}

// ScriptClass returns one registered script class.
func (e *Engine) ScriptClass(name string) (ScriptClassInfo, bool) {
	sc, ok := e.scripts[name]
	if !ok {
		return ScriptClassInfo{}, false
	}
	return e.describe(sc), true
}

func (e *Engine) describe(sc *scriptClass) ScriptClassInfo {
	info := ScriptClassInfo{Name: sc.name, Base: sc.base, Tool: sc.tool, TypeTag: sc.tag, Doc: sc.doc}
	for _, name := range sc.order {
		m := sc.methods[name]
		info.Methods = append(info.Methods, MethodInfo{Name: m.name, RPC: m.rpc, Args: m.args, Doc: m.doc})
	}
	for _, path := range sc.propOrder {
		p := sc.props[path]
		info.Properties = append(info.Properties, PropertyInfo{
			Path:       p.path,
			Type:       p.attr.Type,
			Hint:       p.attr.Hint,
			HintString: p.attr.HintString,
			Usage:      p.attr.Usage,
			RsetMode:   p.attr.RsetType,
			Default:    e.stringify(p.def),
			HasSetter:  p.set.Set != nil,
			HasGetter:  p.get.Get != nil,
			Doc:        p.doc,
		})
	}
	for _, name := range sc.sigOrder {
		s := sc.signals[name]
		si := SignalInfo{Name: s.name, Doc: s.doc}
		for _, a := range s.args {
			si.Args = append(si.Args, SignalArgInfo{Name: a.name, Type: a.t, Default: e.stringify(a.def)})
		}
		info.Signals = append(info.Signals, si)
	}
	return info
}
