package headless

import (
	"github.com/wippyai/gdnative/geom"
	"github.com/wippyai/gdnative/sys"
)

var okCall = sys.CallError{}

// checkCall validates a built-in call. Int and float arguments convert into each
// other, and Nil is accepted where an object is expected.
func checkCall(vals []value, kinds ...sys.VariantType) sys.CallError {
	if len(vals) != len(kinds) {
		return arityError(len(vals), len(kinds))
	}
	for i, k := range kinds {
		t := vals[i].t
		switch {
		case t == k:
		case isNumeric(t) && isNumeric(k):
		case k == sys.VariantObject && t == sys.VariantNil:
		case k == sys.VariantString && t == sys.VariantNodePath:
		default:
			return sys.CallError{Error: sys.CallInvalidArgument, Argument: int32(i), Expected: k}
		}
	}
	return okCall
}

func intValue(i int64) value     { return value{sys.VariantInt, i} }
func stringValue(s string) value { return value{sys.VariantString, s} }

func (e *Engine) objectValue(o *object) value {
	if o == nil || !o.alive {
		return value{sys.VariantObject, (*object)(nil)}
	}
	return e.retain(value{sys.VariantObject, o})
}

func argObject(v value) *object {
	o := objectOf(v)
	if o == nil || !o.alive {
		return nil
	}
	return o
}

func (e *Engine) registerBuiltins() {
	e.addClass("Object", "", false, true, map[string]builtinMethod{
		"get_class": func(_ *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			return stringValue(o.class.name), okCall
		},
		"is_class": func(_ *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantString); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			return boolValue(o.class.isA(a[0].v.(string))), okCall
		},
		"get_instance_id": func(_ *Engine, o *object, a []value) (value, sys.CallError) {
			return intValue(int64(o.id)), okCall
		},
		"free": func(e *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			if o.class.refCounted {
				e.printError("can't free a Reference", "Object::free", "object.cpp", 0)
				return nilValue, okCall
			}
			e.destroyObject(o)
			return nilValue, okCall
		},
		"set_meta": func(e *Engine, o *object, a []value) (value, sys.CallError) {
			if len(a) != 2 {
				return nilValue, arityError(len(a), 2)
			}
			if cerr := checkCall(a[:1], sys.VariantString); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			if a[1].t == sys.VariantNil {
				e.dictErase(o.meta, a[0])
			} else {
				e.dictSet(o.meta, a[0], a[1])
			}
			return nilValue, okCall
		},
		"get_meta": func(e *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantString); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			i, ok := o.meta.find(a[0])
			if !ok {
				return nilValue, okCall
			}
			return e.retain(o.meta.vals[i]), okCall
		},
		"has_meta": func(_ *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantString); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			_, ok := o.meta.find(a[0])
			return boolValue(ok), okCall
		},
		"remove_meta": func(e *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantString); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			e.dictErase(o.meta, a[0])
			return nilValue, okCall
		},
		"set": func(e *Engine, o *object, a []value) (value, sys.CallError) {
			if len(a) != 2 {
				return nilValue, arityError(len(a), 2)
			}
			if cerr := checkCall(a[:1], sys.VariantString); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			e.setProperty(o, a[0].v.(string), a[1])
			return nilValue, okCall
		},
		"get": func(e *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantString); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			return e.getProperty(o, a[0].v.(string)), okCall
		},
		"call": func(e *Engine, o *object, a []value) (value, sys.CallError) {
			if len(a) < 1 {
				return nilValue, arityError(0, 1)
			}
			if a[0].t != sys.VariantString {
				return nilValue, sys.CallError{Error: sys.CallInvalidArgument, Expected: sys.VariantString}
			}
			return e.callObject(o, a[0].v.(string), a[1:])
		},
		"callv": func(e *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantString, sys.VariantArray); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			return e.callObject(o, a[0].v.(string), a[1].v.(*arrayData).items)
		},
		"has_method": func(e *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantString); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			return boolValue(e.objectHasMethod(o, a[0].v.(string))), okCall
		},
		"has_signal": func(e *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantString); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			return boolValue(e.objectHasSignal(o, a[0].v.(string))), okCall
		},
		"connect": func(e *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantString, sys.VariantObject, sys.VariantString); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			signal := a[0].v.(string)
			target := argObject(a[1])
			if target == nil || !e.objectHasSignal(o, signal) {
				return intValue(31), okCall
			}
			if o.connections == nil {
				o.connections = make(map[string][]connection)
			}
			o.connections[signal] = append(o.connections[signal], connection{target: target, method: a[2].v.(string)})
			return intValue(0), okCall
		},
		"disconnect": func(e *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantString, sys.VariantObject, sys.VariantString); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			signal, target, method := a[0].v.(string), argObject(a[1]), a[2].v.(string)
			conns := o.connections[signal]
			for i, c := range conns {
				if c.target == target && c.method == method {
					o.connections[signal] = append(conns[:i:i], conns[i+1:]...)
					break
				}
			}
			return nilValue, okCall
		},
		"is_connected": func(e *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantString, sys.VariantObject, sys.VariantString); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			target, method := argObject(a[1]), a[2].v.(string)
			for _, c := range o.connections[a[0].v.(string)] {
				if c.target == target && c.method == method {
					return boolValue(true), okCall
				}
			}
			return boolValue(false), okCall
		},
		"emit_signal": func(e *Engine, o *object, a []value) (value, sys.CallError) {
			if len(a) < 1 || a[0].t != sys.VariantString {
				return nilValue, sys.CallError{Error: sys.CallInvalidArgument, Expected: sys.VariantString}
			}
			for _, c := range append([]connection(nil), o.connections[a[0].v.(string)]...) {
				if !c.target.alive {
					continue
				}
				out, cerr := e.callObject(c.target, c.method, a[1:])
				e.release(out)
				if cerr.Error != sys.CallOK {
					e.printError("error calling method from signal '"+a[0].v.(string)+"': "+c.method, "emit_signal", "object.cpp", 0)
				}
			}
			return nilValue, okCall
		},
		"get_script": func(e *Engine, o *object, a []value) (value, sys.CallError) {
			return e.objectValue(o.scriptRes), okCall
		},
		"set_script": func(e *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantObject); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			e.setScript(o, argObject(a[0]))
			return nilValue, okCall
		},
	}, "script_changed")

	e.addClass("Reference", "Object", true, true, map[string]builtinMethod{
		"init_ref": func(_ *Engine, o *object, _ []value) (value, sys.CallError) {
			o.refcount++
			return boolValue(true), okCall
		},
		"reference": func(_ *Engine, o *object, _ []value) (value, sys.CallError) {
			o.refcount++
			return boolValue(true), okCall
		},
		"unreference": func(e *Engine, o *object, _ []value) (value, sys.CallError) {
			return boolValue(e.unreference(o)), okCall
		},
		"get_reference_count": func(_ *Engine, o *object, _ []value) (value, sys.CallError) {
			return intValue(int64(o.refcount)), okCall
		},
	})

	e.addClass("Resource", "Reference", true, true, map[string]builtinMethod{
		"get_rid": func(_ *Engine, o *object, _ []value) (value, sys.CallError) {
			return value{sys.VariantRID, sys.RID{ID: o.id}}, okCall
		},
		"set_name": func(_ *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantString); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			o.name = a[0].v.(string)
			return nilValue, okCall
		},
		"get_name": func(_ *Engine, o *object, _ []value) (value, sys.CallError) {
			return stringValue(o.name), okCall
		},
	}, "changed")

	e.addClass("Script", "Resource", true, false, map[string]builtinMethod{
		"can_instance": func(_ *Engine, _ *object, _ []value) (value, sys.CallError) {
			return boolValue(true), okCall
		},
	})

	e.addClass("GDNativeLibrary", "Resource", true, true, nil)

	e.addClass("NativeScript", "Script", true, true, map[string]builtinMethod{
		"set_class_name": func(_ *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantString); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			o.nsClassName = a[0].v.(string)
			return nilValue, okCall
		},
		"get_class_name": func(_ *Engine, o *object, _ []value) (value, sys.CallError) {
			return stringValue(o.nsClassName), okCall
		},
		"set_library": func(e *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantObject); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			lib := argObject(a[0])
			if lib != nil && !lib.class.isA("GDNativeLibrary") {
				return nilValue, sys.CallError{Error: sys.CallInvalidArgument, Expected: sys.VariantObject}
			}
			if old := o.nsLibrary; old != nil {
				defer e.release(value{sys.VariantObject, old})
			}
			o.nsLibrary = nil
			if lib != nil {
				o.nsLibrary = objectOf(e.retain(value{sys.VariantObject, lib}))
			}
			return nilValue, okCall
		},
		"get_library": func(e *Engine, o *object, _ []value) (value, sys.CallError) {
			return e.objectValue(o.nsLibrary), okCall
		},
		"new": func(e *Engine, o *object, _ []value) (value, sys.CallError) {
			inst, err := e.newFromScript(o)
			if err != nil {
				e.printError(err.Error(), "NativeScript::new", "nativescript.cpp", 0)
				return nilValue, okCall
			}
			v := e.objectValue(inst)
			return v, okCall
		},
	})

	e.addClass("Node", "Object", false, true, map[string]builtinMethod{
		"add_child": func(e *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantObject); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			child := argObject(a[0])
			if child == nil || !child.class.isA("Node") {
				return nilValue, sys.CallError{Error: sys.CallInvalidArgument, Expected: sys.VariantObject}
			}
			if child.parent != nil {
				e.printError("can't add child, already has a parent", "add_child", "node.cpp", 0)
				return nilValue, okCall
			}
			if child == o {
				e.printError("can't add child to itself", "add_child", "node.cpp", 0)
				return nilValue, okCall
			}
			child.parent = o
			o.children = append(o.children, child)
			return nilValue, okCall
		},
		"remove_child": func(e *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantObject); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			child := argObject(a[0])
			if child == nil || child.parent != o {
				e.printError("cannot remove child, not a child", "remove_child", "node.cpp", 0)
				return nilValue, okCall
			}
			child.parent = nil
			for i, c := range o.children {
				if c == child {
					o.children = append(o.children[:i:i], o.children[i+1:]...)
					break
				}
			}
			return nilValue, okCall
		},
		"get_child_count": func(_ *Engine, o *object, _ []value) (value, sys.CallError) {
			return intValue(int64(len(o.children))), okCall
		},
		"get_child": func(e *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantInt); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			i := int(asInt(a[0]))
			if i < 0 || i >= len(o.children) {
				e.printError("index out of bounds", "get_child", "node.cpp", 0)
				return e.objectValue(nil), okCall
			}
			return e.objectValue(o.children[i]), okCall
		},
		"get_children": func(e *Engine, o *object, _ []value) (value, sys.CallError) {
			out := &arrayData{refs: 1}
			for _, c := range o.children {
				out.items = append(out.items, e.objectValue(c))
			}
			return value{sys.VariantArray, out}, okCall
		},
		"get_parent": func(e *Engine, o *object, _ []value) (value, sys.CallError) {
			return e.objectValue(o.parent), okCall
		},
		"queue_free": func(e *Engine, o *object, _ []value) (value, sys.CallError) {
			e.queueFree(o)
			return nilValue, okCall
		},
		"is_queued_for_deletion": func(_ *Engine, o *object, _ []value) (value, sys.CallError) {
			return boolValue(o.queued), okCall
		},
		"set_name": func(_ *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantString); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			o.name = a[0].v.(string)
			return nilValue, okCall
		},
		"get_name": func(_ *Engine, o *object, _ []value) (value, sys.CallError) {
			return stringValue(o.name), okCall
		},
	}, "ready", "tree_entered", "tree_exited")

	e.addClass("CanvasItem", "Node", false, false, map[string]builtinMethod{
		"show": func(_ *Engine, o *object, _ []value) (value, sys.CallError) {
			o.visible = true
			return nilValue, okCall
		},
		"hide": func(_ *Engine, o *object, _ []value) (value, sys.CallError) {
			o.visible = false
			return nilValue, okCall
		},
		"is_visible": func(_ *Engine, o *object, _ []value) (value, sys.CallError) {
			return boolValue(o.visible), okCall
		},
		"set_visible": func(_ *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantBool); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			o.visible = a[0].v.(bool)
			return nilValue, okCall
		},
	}, "draw", "visibility_changed")

	e.addClass("Node2D", "CanvasItem", false, true, map[string]builtinMethod{
		"set_position": func(_ *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantVector2); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			o.position = a[0].v.(geom.Vector2)
			return nilValue, okCall
		},
		"get_position": func(_ *Engine, o *object, _ []value) (value, sys.CallError) {
			return value{sys.VariantVector2, o.position}, okCall
		},
		"translate": func(_ *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantVector2); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			o.position = o.position.Add(a[0].v.(geom.Vector2))
			return nilValue, okCall
		},
		"get_global_position": func(_ *Engine, o *object, _ []value) (value, sys.CallError) {
			pos := o.position
			for p := o.parent; p != nil; p = p.parent {
				if p.class.isA("Node2D") {
					pos = pos.Add(p.position)
				}
			}
			return value{sys.VariantVector2, pos}, okCall
		},
		"set_rotation": func(_ *Engine, o *object, a []value) (value, sys.CallError) {
			if cerr := checkCall(a, sys.VariantReal); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			o.rotation = asFloat(a[0])
			return nilValue, okCall
		},
		"get_rotation": func(_ *Engine, o *object, _ []value) (value, sys.CallError) {
			return value{sys.VariantReal, o.rotation}, okCall
		},
	})

	engineClass := e.addClass("_Engine", "Object", false, false, map[string]builtinMethod{
		"get_version_info": func(e *Engine, _ *object, _ []value) (value, sys.CallError) {
			d := newDict()
			v := e.version
			e.dictSet(d, stringValue("major"), intValue(int64(v.Major)))
			e.dictSet(d, stringValue("minor"), intValue(int64(v.Minor)))
			e.dictSet(d, stringValue("patch"), intValue(int64(v.Patch)))
			e.dictSet(d, stringValue("hex"), intValue(int64(v.Major<<16|v.Minor<<8|v.Patch)))
			e.dictSet(d, stringValue("status"), stringValue("stable"))
			e.dictSet(d, stringValue("build"), stringValue("headless"))
			return value{sys.VariantDictionary, d}, okCall
		},
		"is_editor_hint": func(_ *Engine, _ *object, _ []value) (value, sys.CallError) {
			return boolValue(false), okCall
		},
	})
	e.singletons["Engine"] = e.construct(engineClass)
}

// setProperty routes Object.set to script properties and built-in state.
func (e *Engine) setProperty(o *object, name string, v value) {
	if si := o.script; si != nil {
		if p, ok := si.class.props[name]; ok {
			e.callScriptSetter(o, si, p, v)
			return
		}
	}
	switch {
	case name == "name" && o.class.isA("Node"):
		if s, ok := v.v.(string); ok {
			o.name = s
		}
	case name == "visible" && o.class.isA("CanvasItem"):
		o.visible = booleanize(v)
	case name == "position" && o.class.isA("Node2D"):
		if p, ok := v.v.(geom.Vector2); ok {
			o.position = p
		}
	case name == "script":
		e.setScript(o, argObject(v))
	}
}

// getProperty returns an owned value.
func (e *Engine) getProperty(o *object, name string) value {
	if si := o.script; si != nil {
		if p, ok := si.class.props[name]; ok {
			return e.callScriptGetter(o, si, p)
		}
	}
	switch {
	case name == "name" && o.class.isA("Node"):
		return stringValue(o.name)
	case name == "visible" && o.class.isA("CanvasItem"):
		return boolValue(o.visible)
	case name == "position" && o.class.isA("Node2D"):
		return value{sys.VariantVector2, o.position}
	case name == "script":
		return e.objectValue(o.scriptRes)
	}
	return nilValue
}

func (e *Engine) objectHasSignal(o *object, name string) bool {
	if o.class.hasSignal(name) {
		return true
	}
	if si := o.script; si != nil {
		_, ok := si.class.signals[name]
		return ok
	}
	return false
}
