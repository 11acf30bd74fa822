package headless

import (
	"fmt"
	"slices"

	"github.com/wippyai/gdnative/geom"
	"github.com/wippyai/gdnative/resource"
	"github.com/wippyai/gdnative/sys"
)

type builtinMethod func(e *Engine, o *object, args []value) (value, sys.CallError)

type classInfo struct {
	name         string
	parent       *classInfo
	refCounted   bool
	instanciable bool
	methods      map[string]builtinMethod
	signals      []string
	tag          sys.ClassTag
}

func (c *classInfo) isA(name string) bool {
	for cur := c; cur != nil; cur = cur.parent {
		if cur.name == name {
			return true
		}
	}
	return false
}

func (c *classInfo) method(name string) (builtinMethod, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		if m, ok := cur.methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

func (c *classInfo) hasSignal(name string) bool {
	for cur := c; cur != nil; cur = cur.parent {
		if slices.Contains(cur.signals, name) {
			return true
		}
	}
	return false
}

type connection struct {
	target *object
	method string
}

type object struct {
	handle   sys.Object
	id       uint64
	class    *classInfo
	alive    bool
	refcount int
	queued   bool

	meta        *dictData
	connections map[string][]connection
	script      *scriptInstance
	scriptRes   *object

	// Node state.
	name     string
	parent   *object
	children []*object

	// CanvasItem and Node2D state.
	visible  bool
	position geom.Vector2
	rotation float64

	// NativeScript resource state.
	nsClassName string
	nsLibrary   *object
}

type methodBind struct {
	class  *classInfo
	name   string
	method builtinMethod
}

func (e *Engine) addClass(name, parent string, refCounted, instanciable bool, methods map[string]builtinMethod, signals ...string) *classInfo {
	c := &classInfo{
		name:         name,
		parent:       e.classes[parent],
		refCounted:   refCounted,
		instanciable: instanciable,
		methods:      methods,
		signals:      signals,
	}
	if c.parent != nil && c.parent.refCounted {
		c.refCounted = true
	}
	c.tag = sys.ClassTag(e.put(kindClassTag, c))
	e.classes[name] = c
	return c
}

func (e *Engine) construct(c *classInfo) *object {
	e.nextID++
	o := &object{
		id:      e.nextID,
		class:   c,
		alive:   true,
		visible: true,
		meta:    newDict(),
	}
	o.handle = sys.Object(e.put(kindObject, o))
	e.objects[o.id] = o
	return o
}

func (e *Engine) retainObject(o *object) { o.refcount++ }

// unreference drops one count and reports whether the object should die.
func (e *Engine) unreference(o *object) bool {
	if o.refcount > 0 {
		o.refcount--
	}
	return o.refcount == 0
}

func (e *Engine) objectOf(h sys.Object) (*object, bool) {
	o, ok := lookup[*object](e, kindObject, uintptr(h))
	if !ok {
		return nil, false
	}
	return o, true
}

// liveObject resolves h without printing for dead objects.
func (e *Engine) liveObject(h sys.Object) (*object, bool) {
	v, ok := e.table.GetKind(resource.Handle(h), kindObject)
	if !ok {
		return nil, false
	}
	o := v.(*object)
	return o, o.alive
}

func (e *Engine) destroyObject(o *object) {
	if !o.alive {
		e.printError(fmt.Sprintf("attempt to free already freed object %d", o.id), "memdelete", "object.cpp", 0)
		return
	}
	if si := o.script; si != nil {
		o.script = nil
		e.destroyScriptInstance(o, si)
	}
	o.alive = false

	children := o.children
	o.children = nil
	for _, c := range children {
		c.parent = nil
		if c.alive {
			e.destroyObject(c)
		}
	}
	if p := o.parent; p != nil {
		p.children = slices.DeleteFunc(p.children, func(c *object) bool { return c == o })
		o.parent = nil
	}

	meta := o.meta
	o.meta = nil
	e.release(value{sys.VariantDictionary, meta})
	if o.scriptRes != nil {
		res := o.scriptRes
		o.scriptRes = nil
		e.release(value{sys.VariantObject, res})
	}
	if o.nsLibrary != nil {
		lib := o.nsLibrary
		o.nsLibrary = nil
		e.release(value{sys.VariantObject, lib})
	}
	o.connections = nil
	e.destroyed[o.id]++
}

// callObject dispatches a call to a script method first, then to the
// built-in class chain.
func (e *Engine) callObject(o *object, method string, args []value) (value, sys.CallError) {
	if si := o.script; si != nil {
		if m, ok := si.class.methods[method]; ok {
			return e.callScriptMethod(o, si, m, args), sys.CallError{}
		}
	}
	if m, ok := o.class.method(method); ok {
		return m(e, o, args)
	}
	return nilValue, sys.CallError{Error: sys.CallInvalidMethod}
}

func (e *Engine) objectHasMethod(o *object, method string) bool {
	if si := o.script; si != nil {
		if _, ok := si.class.methods[method]; ok {
			return true
		}
	}
	_, ok := o.class.method(method)
	return ok
}

func (e *Engine) queueFree(o *object) {
	if !o.queued {
		o.queued = true
		e.queue = append(e.queue, o)
	}
}

// Frame flushes the deletion queue, as the engine does between frames.
func (e *Engine) Frame() {
	queue := e.queue
	e.queue = nil
	for _, o := range queue {
		if o.alive {
			e.destroyObject(o)
		}
	}
}

func (e *Engine) fillObjects() {
	c := &e.core

	c.ObjectDestroy = func(h sys.Object) {
		o, ok := e.objectOf(h)
		if !ok {
			return
		}
		e.destroyObject(o)
	}
	c.GetClassConstructor = func(class string) sys.ClassConstructor {
		ci, ok := e.classes[class]
		if !ok || !ci.instanciable {
			return nil
		}
		return func() sys.Object { return e.construct(ci).handle }
	}
	c.GlobalGetSingleton = func(name string) sys.Object {
		if o, ok := e.singletons[name]; ok {
			return o.handle
		}
		return 0
	}

	binds := make(map[string]sys.MethodBind)
	c.MethodBindGetMethod = func(class, method string) sys.MethodBind {
		key := class + "::" + method
		if mb, ok := binds[key]; ok {
			return mb
		}
		ci, ok := e.classes[class]
		if !ok {
			return 0
		}
		m, ok := ci.method(method)
		if !ok {
			return 0
		}
		mb := sys.MethodBind(e.put(kindMethodBind, &methodBind{class: ci, name: method, method: m}))
		binds[key] = mb
		return mb
	}
	c.MethodBindCall = func(mb sys.MethodBind, h sys.Object, args []sys.Variant) (sys.Variant, sys.CallError) {
		bind, ok := lookup[*methodBind](e, kindMethodBind, uintptr(mb))
		if !ok {
			return 0, sys.CallError{Error: sys.CallInvalidMethod}
		}
		o, ok := e.liveObject(h)
		if !ok || !o.class.isA(bind.class.name) {
			return 0, sys.CallError{Error: sys.CallInstanceIsNull}
		}
		vals := make([]value, len(args))
		for i, a := range args {
			vals[i] = e.valueOf(a)
		}
		out, cerr := bind.method(e, o, vals)
		if cerr.Error != sys.CallOK {
			return 0, cerr
		}
		return e.newVariant(out), cerr
	}
	c.InstanceFromID = func(id uint64) sys.Object {
		if o, ok := e.objects[id]; ok && o.alive {
			return o.handle
		}
		return 0
	}
	c.IsInstanceValid = func(h sys.Object) bool {
		_, ok := e.liveObject(h)
		return ok
	}
	c.RIDNewWithResource = func(h sys.Object) sys.RID {
		o, ok := e.liveObject(h)
		if !ok || !o.class.isA("Resource") {
			return sys.RID{}
		}
		return sys.RID{ID: o.id}
	}

	if !e.noCast {
		c.GetClassTag = func(class string) sys.ClassTag {
			if ci, ok := e.classes[class]; ok {
				return ci.tag
			}
			return 0
		}
		c.ObjectCastTo = func(h sys.Object, tag sys.ClassTag) sys.Object {
			ci, ok := lookup[*classInfo](e, kindClassTag, uintptr(tag))
			if !ok {
				return 0
			}
			o, ok := e.liveObject(h)
			if !ok || !o.class.isA(ci.name) {
				return 0
			}
			return h
		}
	}

	c.Print = e.print
	c.PrintWarning = e.printWarning
	c.PrintError = e.printError
}

func (e *Engine) fillCore() {
	e.core.Header = sys.Header{Type: sys.APITypeCore, Version: e.coreVersion}
	e.fillStrings()
	e.fillContainers()
	e.fillPools()
	e.fillVariants()
	e.fillObjects()
}
