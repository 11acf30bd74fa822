package headless

import (
	"fmt"

	"github.com/wippyai/gdnative/sys"
)

type scriptMethod struct {
	name string
	rpc  sys.RPCMode
	fn   sys.InstanceMethod
	args []sys.MethodArgument
	doc  string
}

type scriptProperty struct {
	path string
	attr sys.PropertyAttributes
	def  value
	set  sys.PropertySetFunc
	get  sys.PropertyGetFunc
	doc  string
}

type scriptSignalArg struct {
	name string
	t    sys.VariantType
	def  value
}

type scriptSignal struct {
	name string
	args []scriptSignalArg
	doc  string
}

// scriptClass is a class registered by a library through the NativeScript
// extension.
type scriptClass struct {
	handle    sys.Handle
	name      string
	base      string
	baseClass *classInfo
	tool      bool
	create    sys.InstanceCreateFunc
	destroy   sys.InstanceDestroyFunc

	methods   map[string]*scriptMethod
	order     []string
	props     map[string]*scriptProperty
	propOrder []string
	signals   map[string]*scriptSignal
	sigOrder  []string

	tag sys.TypeTag
	doc string
}

type scriptInstance struct {
	class    *scriptClass
	userData sys.UserData
}

func freeData(free func(uintptr), md uintptr) {
	if free != nil {
		free(md)
	}
}

func (e *Engine) scriptClassFor(h sys.Handle, class, fn string) (*scriptClass, bool) {
	sc, ok := e.scripts[class]
	if !ok || sc.handle != h {
		e.printError(fmt.Sprintf("attempt to register to unknown class %q", class), fn, "nativescript.cpp", 0)
		return nil, false
	}
	return sc, true
}

// heldCopy takes an engine-side hold on a borrowed variant.
func (e *Engine) heldCopy(h sys.Variant) value {
	if h == 0 {
		return nilValue
	}
	return e.retain(e.valueOf(h))
}

func (e *Engine) fillNativeScript() {
	e.ns.Header = sys.Header{Type: sys.APITypeNativeScript, Version: e.nsVersion}
	e.ns11.Header = sys.Header{Type: sys.APITypeNativeScript, Version: e.ns11Version}

	register := func(tool bool) func(sys.Handle, string, string, sys.InstanceCreateFunc, sys.InstanceDestroyFunc) {
		return func(h sys.Handle, name, base string, create sys.InstanceCreateFunc, destroy sys.InstanceDestroyFunc) {
			reject := func(msg string) {
				e.printError(msg, "godot_nativescript_register_class", "nativescript.cpp", 0)
				freeData(create.FreeFunc, create.MethodData)
				freeData(destroy.FreeFunc, destroy.MethodData)
			}
			if _, dup := e.scripts[name]; dup {
				reject(fmt.Sprintf("class %q is already registered", name))
				return
			}
			if _, builtin := e.classes[name]; builtin {
				reject(fmt.Sprintf("class %q shadows an engine class", name))
				return
			}
			bc, ok := e.classes[base]
			if !ok {
				reject(fmt.Sprintf("base class %q of %q does not exist", base, name))
				return
			}
			e.scripts[name] = &scriptClass{
				handle:    h,
				name:      name,
				base:      base,
				baseClass: bc,
				tool:      tool,
				create:    create,
				destroy:   destroy,
				methods:   make(map[string]*scriptMethod),
				props:     make(map[string]*scriptProperty),
				signals:   make(map[string]*scriptSignal),
			}
			e.scriptOrder = append(e.scriptOrder, name)
		}
	}
	e.ns.RegisterClass = register(false)
	e.ns.RegisterToolClass = register(true)

	e.ns.RegisterMethod = func(h sys.Handle, class, method string, attr sys.MethodAttributes, m sys.InstanceMethod) {
		sc, ok := e.scriptClassFor(h, class, "godot_nativescript_register_method")
		if !ok {
			freeData(m.FreeFunc, m.MethodData)
			return
		}
		if old, dup := sc.methods[method]; dup {
			freeData(old.fn.FreeFunc, old.fn.MethodData)
		} else {
			sc.order = append(sc.order, method)
		}
		sc.methods[method] = &scriptMethod{name: method, rpc: attr.RPCMode, fn: m}
	}

	e.ns.RegisterProperty = func(h sys.Handle, class, path string, attr sys.PropertyAttributes, set sys.PropertySetFunc, get sys.PropertyGetFunc) {
		sc, ok := e.scriptClassFor(h, class, "godot_nativescript_register_property")
		if !ok {
			freeData(set.FreeFunc, set.MethodData)
			freeData(get.FreeFunc, get.MethodData)
			return
		}
		if old, dup := sc.props[path]; dup {
			e.releaseProperty(old)
		} else {
			sc.propOrder = append(sc.propOrder, path)
		}
		p := &scriptProperty{path: path, attr: attr, set: set, get: get, def: e.heldCopy(attr.DefaultValue)}
		p.attr.DefaultValue = 0
		sc.props[path] = p
	}

	e.ns.RegisterSignal = func(h sys.Handle, class string, sig sys.Signal) {
		sc, ok := e.scriptClassFor(h, class, "godot_nativescript_register_signal")
		if !ok {
			return
		}
		s := &scriptSignal{name: sig.Name}
		for i, a := range sig.Args {
			arg := scriptSignalArg{name: a.Name, t: a.Type, def: e.heldCopy(a.DefaultValue)}
			// Trailing arguments take their defaults from DefaultArgs.
			if j := i - (len(sig.Args) - len(sig.DefaultArgs)); j >= 0 && arg.def.t == sys.VariantNil {
				arg.def = e.heldCopy(sig.DefaultArgs[j])
			}
			s.args = append(s.args, arg)
		}
		if old, dup := sc.signals[sig.Name]; dup {
			e.releaseSignal(old)
		} else {
			sc.sigOrder = append(sc.sigOrder, sig.Name)
		}
		sc.signals[sig.Name] = s
	}

	e.ns.GetUserdata = func(h sys.Object) sys.UserData {
		o, ok := e.liveObject(h)
		if !ok || o.script == nil {
			return 0
		}
		return o.script.userData
	}

	e.ns11.SetMethodArgumentInformation = func(h sys.Handle, class, method string, args []sys.MethodArgument) {
		sc, ok := e.scriptClassFor(h, class, "godot_nativescript_set_method_argument_information")
		if !ok {
			return
		}
		if m, ok := sc.methods[method]; ok {
			m.args = append([]sys.MethodArgument(nil), args...)
		}
	}
	e.ns11.SetClassDocumentation = func(h sys.Handle, class, doc string) {
		if sc, ok := e.scriptClassFor(h, class, "godot_nativescript_set_class_documentation"); ok {
			sc.doc = doc
		}
	}
	e.ns11.SetMethodDocumentation = func(h sys.Handle, class, method, doc string) {
		if sc, ok := e.scriptClassFor(h, class, "godot_nativescript_set_method_documentation"); ok {
			if m, ok := sc.methods[method]; ok {
				m.doc = doc
			}
		}
	}
	e.ns11.SetPropertyDocumentation = func(h sys.Handle, class, path, doc string) {
		if sc, ok := e.scriptClassFor(h, class, "godot_nativescript_set_property_documentation"); ok {
			if p, ok := sc.props[path]; ok {
				p.doc = doc
			}
		}
	}
	e.ns11.SetSignalDocumentation = func(h sys.Handle, class, signal, doc string) {
		if sc, ok := e.scriptClassFor(h, class, "godot_nativescript_set_signal_documentation"); ok {
			if s, ok := sc.signals[signal]; ok {
				s.doc = doc
			}
		}
	}
	e.ns11.SetTypeTag = func(h sys.Handle, class string, tag sys.TypeTag) {
		if sc, ok := e.scriptClassFor(h, class, "godot_nativescript_set_type_tag"); ok {
			sc.tag = tag
		}
	}
	e.ns11.GetTypeTag = func(h sys.Object) sys.TypeTag {
		o, ok := e.liveObject(h)
		if !ok || o.script == nil {
			return 0
		}
		return o.script.class.tag
	}
	e.ns11.ProfilingAddData = func(signature string, usec uint64) {
		e.profMu.Lock()
		e.profile[signature] = append(e.profile[signature], usec)
		e.profMu.Unlock()
	}
}

func (e *Engine) releaseProperty(p *scriptProperty) {
	freeData(p.set.FreeFunc, p.set.MethodData)
	freeData(p.get.FreeFunc, p.get.MethodData)
	e.release(p.def)
	p.def = nilValue
}

func (e *Engine) releaseSignal(s *scriptSignal) {
	for i := range s.args {
		e.release(s.args[i].def)
		s.args[i].def = nilValue
	}
}

// setScript replaces the script on o. A nil res detaches it.
func (e *Engine) setScript(o *object, res *object) {
	if res != nil && !res.class.isA("NativeScript") {
		e.printError("only NativeScript resources can be attached", "set_script", "object.cpp", 0)
		return
	}
	if si := o.script; si != nil {
		o.script = nil
		e.destroyScriptInstance(o, si)
	}
	if old := o.scriptRes; old != nil {
		o.scriptRes = nil
		e.release(value{sys.VariantObject, old})
	}
	if res == nil {
		return
	}
	sc, ok := e.scripts[res.nsClassName]
	if !ok {
		e.printError(fmt.Sprintf("NativeScript class %q is not registered", res.nsClassName), "set_script", "nativescript.cpp", 0)
		return
	}
	if !o.class.isA(sc.base) {
		e.printError(fmt.Sprintf("script inherits from %s, object is a %s", sc.base, o.class.name), "set_script", "object.cpp", 0)
		return
	}
	o.scriptRes = objectOf(e.retain(value{sys.VariantObject, res}))
	e.attachScript(o, sc)
}

func (e *Engine) attachScript(o *object, sc *scriptClass) {
	si := &scriptInstance{class: sc}
	o.script = si
	if sc.create.Create != nil {
		si.userData = sc.create.Create(o.handle, sc.create.MethodData)
	}
	if si.userData == 0 {
		e.printError(fmt.Sprintf("constructor of %s returned no instance data", sc.name), "instance_create", "nativescript.cpp", 0)
	}
}

func (e *Engine) destroyScriptInstance(o *object, si *scriptInstance) {
	if d := si.class.destroy; d.Destroy != nil {
		d.Destroy(o.handle, d.MethodData, si.userData)
	}
}

// newFromScript implements NativeScript.new on the script resource res.
func (e *Engine) newFromScript(res *object) (*object, error) {
	sc, ok := e.scripts[res.nsClassName]
	if !ok {
		return nil, fmt.Errorf("class %q is not registered", res.nsClassName)
	}
	if !sc.baseClass.instanciable {
		return nil, fmt.Errorf("base class %s of %s cannot be instanced", sc.base, sc.name)
	}
	o := e.construct(sc.baseClass)
	o.scriptRes = objectOf(e.retain(value{sys.VariantObject, res}))
	e.attachScript(o, sc)
	return o, nil
}

// takeVariant adopts a variant returned by the library.
func (e *Engine) takeVariant(h sys.Variant) value {
	if h == 0 {
		return nilValue
	}
	v, ok := e.drop(kindVariant, uintptr(h))
	if !ok {
		return nilValue
	}
	return v.(value)
}

func (e *Engine) borrowedHandles(vals []value) []sys.Variant {
	hs := make([]sys.Variant, len(vals))
	for i, v := range vals {
		hs[i] = e.newVariant(e.retain(v))
	}
	return hs
}

func (e *Engine) destroyHandles(hs []sys.Variant) {
	for _, h := range hs {
		e.core.VariantDestroy(h)
	}
}

func (e *Engine) callScriptMethod(o *object, si *scriptInstance, m *scriptMethod, args []value) value {
	hs := e.borrowedHandles(args)
	defer e.destroyHandles(hs)
	return e.takeVariant(m.fn.Method(o.handle, m.fn.MethodData, si.userData, hs))
}

func (e *Engine) callScriptSetter(o *object, si *scriptInstance, p *scriptProperty, v value) {
	if p.set.Set == nil {
		e.printError(fmt.Sprintf("property %s.%s is read-only", si.class.name, p.path), "set", "nativescript.cpp", 0)
		return
	}
	hs := e.borrowedHandles([]value{v})
	defer e.destroyHandles(hs)
	p.set.Set(o.handle, p.set.MethodData, si.userData, hs[0])
}

func (e *Engine) callScriptGetter(o *object, si *scriptInstance, p *scriptProperty) value {
	if p.get.Get == nil {
		return e.retain(p.def)
	}
	return e.takeVariant(p.get.Get(o.handle, p.get.MethodData, si.userData))
}

// TerminateScripts unregisters every class registered under h, as the
// engine does when the library is unloaded. Live instances lose their
// script data first, then every registered method data is freed.
func (e *Engine) TerminateScripts(h sys.Handle) {
	for _, o := range e.objects {
		if o.alive && o.script != nil && o.script.class.handle == h {
			si := o.script
			o.script = nil
			e.destroyScriptInstance(o, si)
		}
	}
	kept := e.scriptOrder[:0]
	for _, name := range e.scriptOrder {
		sc := e.scripts[name]
		if sc.handle != h {
			kept = append(kept, name)
			continue
		}
		for _, m := range sc.order {
			fn := sc.methods[m].fn
			freeData(fn.FreeFunc, fn.MethodData)
		}
		for _, p := range sc.propOrder {
			e.releaseProperty(sc.props[p])
		}
		for _, s := range sc.sigOrder {
			e.releaseSignal(sc.signals[s])
		}
		freeData(sc.create.FreeFunc, sc.create.MethodData)
		freeData(sc.destroy.FreeFunc, sc.destroy.MethodData)
		delete(e.scripts, name)
	}
	e.scriptOrder = kept
}
