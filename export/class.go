package export

import (
	"reflect"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/object"
	"github.com/wippyai/gdnative/sys"
	"github.com/wippyai/gdnative/userdata"
)

// NativeClass is implemented by Go types exported as script classes. Embed
// Extends to satisfy it:
//
//	type Player struct {
//		export.Extends[api.Node]
//		Speed float64
//	}
type NativeClass interface {
	baseClass() baseInfo
}

type baseInfo struct {
	name string
	typ  reflect.Type
}

// Extends declares B as the engine base class of a script class.
type Extends[B object.Class] struct{}

func (Extends[B]) baseClass() baseInfo {
	return baseInfo{name: object.ClassName[B](), typ: reflect.TypeFor[B]()}
}

// Named overrides the script class name, which defaults to the Go type
// name.
type Named interface {
	ClassName() string
}

// Stored selects the storage policy of a class. Classes that do not
// implement it use userdata.DefaultPolicy.
type Stored interface {
	StoragePolicy() userdata.Policy
}

// Registerer is implemented by classes that declare their own methods,
// properties and signals. Register runs when the class is added.
type Registerer[C NativeClass] interface {
	Register(b *ClassBuilder[C])
}

// Destroyer is implemented by classes that need to know when their owner
// goes away.
type Destroyer interface {
	OnDestroy()
}

// lifecycle method names, never exported as script methods.
var reservedMethods = map[string]bool{
	"ClassName":     true,
	"StoragePolicy": true,
	"Register":      true,
	"OnDestroy":     true,
}

func classNameOf[C NativeClass]() string {
	var zero C
	if n, ok := any(zero).(Named); ok {
		return n.ClassName()
	}
	if n, ok := any(&zero).(Named); ok {
		return n.ClassName()
	}
	return reflect.TypeFor[C]().Name()
}

func policyOf[C NativeClass]() userdata.Policy {
	var zero C
	if s, ok := any(zero).(Stored); ok {
		return s.StoragePolicy()
	}
	if s, ok := any(&zero).(Stored); ok {
		return s.StoragePolicy()
	}
	return userdata.DefaultPolicy
}

func baseOf[C NativeClass]() baseInfo {
	var zero C
	return zero.baseClass()
}

// scriptClass is what the create and destroy trampolines dispatch to.
type scriptClass interface {
	className() string
	create(owner sys.Object) sys.UserData
	destroy(owner sys.Object, ud sys.UserData)
}

// classDef is the per-class state shared by every trampoline of a class.
type classDef[C NativeClass] struct {
	name    string
	base    baseInfo
	tag     sys.TypeTag
	policy  userdata.Policy
	factory userdata.Factory[C]
	ctor    func(owner sys.Object) C
}

// instance is the user data of one script instance.
type instance[C NativeClass] struct {
	def   *classDef[C]
	owner sys.Object
	data  userdata.UserData[C]
	dying atomic.Bool
}

func (d *classDef[C]) className() string { return d.name }

func (d *classDef[C]) create(owner sys.Object) sys.UserData {
	val, ok := takeEmplaced[C]()
	if !ok {
		val = d.construct(owner)
	}
	inst := &instance[C]{def: d, owner: owner, data: d.factory(val)}
	return sys.UserData(handles.Insert(kindInstance, inst))
}

func (d *classDef[C]) construct(owner sys.Object) C {
	if d.ctor == nil {
		var zero C
		return zero
	}
	return d.ctor(owner)
}

func (d *classDef[C]) destroy(_ sys.Object, ud sys.UserData) {
	inst := d.lookup(ud)
	if _, err := handles.Remove(slot(ud)); err != nil {
		// Destroyed from inside one of its own calls; the last call out
		// finishes it.
		inst.dying.Store(true)
		return
	}
	inst.finish()
}

func (d *classDef[C]) lookup(ud sys.UserData) *instance[C] {
	v, _ := handles.GetKind(slot(ud), kindInstance)
	inst, ok := v.(*instance[C])
	if !ok {
		errors.Plumbing("user data %#x does not hold a %s instance", uintptr(ud), d.name)
	}
	return inst
}

// enter resolves and pins the instance behind ud for the duration of a
// call. The returned func unpins it.
func (d *classDef[C]) enter(owner sys.Object, ud sys.UserData) (*instance[C], func()) {
	checkOwnerTag(owner, d.tag, d.name)
	h := slot(ud)
	v, _ := handles.PinKind(h, kindInstance)
	inst, ok := v.(*instance[C])
	if !ok {
		if v != nil {
			handles.Unpin(h)
		}
		errors.Plumbing("user data %#x does not hold a live %s instance", uintptr(ud), d.name)
	}
	return inst, func() {
		handles.Unpin(h)
		if inst.dying.Load() {
			if _, err := handles.Remove(h); err == nil {
				inst.finish()
			}
		}
	}
}

// finish runs OnDestroy with whatever access the policy allows.
func (i *instance[C]) finish() {
	var zero C
	if _, ok := any(&zero).(Destroyer); !ok {
		return
	}
	run := func(c *C) { any(c).(Destroyer).OnDestroy() }
	var err error
	switch p := i.data.Policy(); {
	case p.Supports(userdata.OpMapMut):
		err = i.data.MapMut(run)
	case p.Supports(userdata.OpMap):
		err = i.data.Map(run)
	default:
		err = i.data.MapOwned(func(c C) { run(&c) })
		if errors.Is(err, userdata.ErrConsumed) {
			err = nil
		}
	}
	if err != nil {
		Logger().Error("cannot run destructor",
			zap.String("class", i.def.name),
			zap.Error(err))
	}
}
