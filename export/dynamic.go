package export

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/export/hint"
	"github.com/wippyai/gdnative/gdlog"
	"github.com/wippyai/gdnative/sys"
	"github.com/wippyai/gdnative/userdata"
)

// DynamicClass describes a class whose shape is only known at run time,
// such as one backed by a guest module. Its instances hold an opaque state
// behind a Mutex policy.
type DynamicClass struct {
	Name string
	Base string
	Tool bool
	Doc  string

	// New creates the state of an instance attached to owner.
	New func(owner sys.Object) (any, error)
	// Destroy releases the state. It may be nil.
	Destroy func(state any)

	Methods    []DynamicMethod
	Properties []DynamicProperty
	Signals    []DynamicSignal

	// Site is reported in logs about the class. Zero means the caller of
	// AddDynamicClass.
	Site gdlog.Site
}

// DynamicMethod is one method of a DynamicClass. Call receives the
// arguments as Varargs and owns nothing it does not decode.
type DynamicMethod struct {
	Name string
	Args []sys.MethodArgument
	RPC  sys.RPCMode
	Doc  string
	Call func(ctx context.Context, state any, args *Varargs) (core.Variant, error)
}

// DynamicProperty is one property of a DynamicClass. A nil Get or Set
// leaves that side missing.
type DynamicProperty struct {
	Name  string
	Type  sys.VariantType
	Hint  hint.Hint
	Usage sys.PropertyUsage
	Doc   string
	Get   func(state any) (core.Variant, error)
	Set   func(state any, v core.Variant) error
}

// DynamicSignal is one signal of a DynamicClass.
type DynamicSignal struct {
	Name string
	Args []sys.SignalArgument
	Doc  string
}

type dynamicClass struct {
	desc DynamicClass
	tag  sys.TypeTag
}

type dynamicInstance struct {
	class *dynamicClass
	data  *userdata.Mutex[any]
	dying atomic.Bool
}

func (d *dynamicClass) className() string { return d.desc.Name }

func (d *dynamicClass) create(owner sys.Object) sys.UserData {
	state, err := d.desc.New(owner)
	if err != nil {
		Logger().Error("cannot create instance",
			zap.String("class", d.desc.Name),
			gdlog.Field(d.desc.Site),
			zap.Error(err))
		return 0
	}
	inst := &dynamicInstance{class: d, data: userdata.NewMutex(state)}
	return sys.UserData(handles.Insert(kindInstance, inst))
}

func (d *dynamicClass) destroy(_ sys.Object, ud sys.UserData) {
	inst := d.lookup(ud)
	if _, err := handles.Remove(slot(ud)); err != nil {
		inst.dying.Store(true)
		return
	}
	inst.finish()
}

func (d *dynamicClass) lookup(ud sys.UserData) *dynamicInstance {
	v, _ := handles.GetKind(slot(ud), kindInstance)
	inst, ok := v.(*dynamicInstance)
	if !ok || inst.class != d {
		errors.Plumbing("user data %#x does not hold a %s instance", uintptr(ud), d.desc.Name)
	}
	return inst
}

func (d *dynamicClass) enter(owner sys.Object, ud sys.UserData) (*dynamicInstance, func()) {
	checkOwnerTag(owner, d.tag, d.desc.Name)
	h := slot(ud)
	v, _ := handles.PinKind(h, kindInstance)
	inst, ok := v.(*dynamicInstance)
	if !ok || inst.class != d {
		if v != nil {
			handles.Unpin(h)
		}
		errors.Plumbing("user data %#x does not hold a live %s instance", uintptr(ud), d.desc.Name)
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

func (i *dynamicInstance) finish() {
	if i.class.desc.Destroy == nil {
		return
	}
	if err := i.data.MapMut(func(s *any) { i.class.desc.Destroy(*s) }); err != nil {
		Logger().Error("cannot run destructor",
			zap.String("class", i.class.desc.Name),
			zap.Error(err))
	}
}

// AddDynamicClass registers c with the engine.
func AddDynamicClass(h *InitHandle, c DynamicClass) error {
	if c.Site.IsZero() {
		c.Site = gdlog.Caller(1)
	}
	if c.Base == "" {
		c.Base = "Reference"
	}
	if c.Name == "" || c.New == nil {
		return errors.New(errors.PhaseRegister, errors.KindInvalidInput).
			Class(c.Name).
			Detail("dynamic class needs a name and a constructor").
			Build()
	}
	entry, err := registry.registerDynamic(classEntry{
		name:   c.Name,
		base:   c.Base,
		policy: userdata.PolicyMutex,
		levels: h.level,
		tool:   c.Tool,
		handle: h.handle,
	})
	if err != nil {
		return err
	}
	d := &dynamicClass{desc: c, tag: entry.tag}
	if err := registerScript(h, c.Name, c.Base, c.Tool, entry.tag, d); err != nil {
		registry.forgetDynamic(c.Name)
		return err
	}

	api := sys.Get()
	ns11 := api.NativeScript11
	if ns11 != nil && c.Doc != "" {
		ns11.SetClassDocumentation(h.handle, c.Name, c.Doc)
	}
	for _, m := range c.Methods {
		d.registerMethod(h, m)
	}
	for _, p := range c.Properties {
		d.registerProperty(h, p)
	}
	for _, s := range c.Signals {
		api.NativeScript.RegisterSignal(h.handle, c.Name, sys.Signal{Name: s.Name, Args: s.Args})
		if ns11 != nil && s.Doc != "" {
			ns11.SetSignalDocumentation(h.handle, c.Name, s.Name, s.Doc)
		}
	}
	Logger().Debug("registered dynamic class",
		zap.String("class", c.Name),
		zap.String("base", c.Base),
		zap.Int("methods", len(c.Methods)))
	return nil
}

func (d *dynamicClass) registerMethod(h *InitHandle, m DynamicMethod) {
	name := d.desc.Name
	site := d.desc.Site
	call := m.Call
	method := m.Name
	rec := &methodRecord{
		class: name,
		name:  method,
		site:  site,
		invoke: func(owner sys.Object, ud sys.UserData, args []core.Variant) (core.Variant, error) {
			inst, leave := d.enter(owner, ud)
			defer leave()
			ctx := newCallContext(owner, site, name, method)
			var (
				out core.Variant
				err error
			)
			if lerr := inst.data.MapMut(func(s *any) {
				out, err = call(ctx, *s, NewVarargs(method, args))
			}); lerr != nil {
				return core.Variant{}, lerr
			}
			if err != nil {
				out.Destroy()
				return core.Variant{}, err
			}
			if out.Handle() == 0 {
				return core.NilVariant(), nil
			}
			return out, nil
		},
	}
	api := sys.Get()
	api.NativeScript.RegisterMethod(h.handle, name, method, sys.MethodAttributes{RPCMode: m.RPC}, sys.InstanceMethod{
		Method:     methodTrampoline,
		MethodData: uintptr(handles.Insert(kindMethod, rec)),
		FreeFunc:   freeHandle,
	})
	if ns11 := api.NativeScript11; ns11 != nil {
		if m.Args != nil {
			ns11.SetMethodArgumentInformation(h.handle, name, method, m.Args)
		}
		if m.Doc != "" {
			ns11.SetMethodDocumentation(h.handle, name, method, m.Doc)
		}
	}
}

func (d *dynamicClass) registerProperty(h *InitHandle, p DynamicProperty) {
	name := d.desc.Name
	site := d.desc.Site
	rec := &propertyRecord{class: name, name: p.Name, site: site}
	if get := p.Get; get != nil {
		rec.get = func(owner sys.Object, ud sys.UserData) (core.Variant, error) {
			inst, leave := d.enter(owner, ud)
			defer leave()
			var (
				out core.Variant
				err error
			)
			if lerr := inst.data.MapMut(func(s *any) { out, err = get(*s) }); lerr != nil {
				return core.Variant{}, lerr
			}
			return out, err
		}
	} else {
		rec.get = missingGetter(name, p.Name, site)
	}
	if set := p.Set; set != nil {
		rec.set = func(owner sys.Object, ud sys.UserData, v core.Variant) error {
			inst, leave := d.enter(owner, ud)
			defer leave()
			var err error
			if lerr := inst.data.MapMut(func(s *any) { err = set(*s, v) }); lerr != nil {
				return lerr
			}
			return err
		}
	} else {
		rec.set = missingSetter(name, p.Name, site)
	}

	hn := p.Hint
	if hn == nil {
		hn = hint.None{}
	}
	usage := p.Usage
	if usage == 0 {
		usage = sys.UsageDefault
	}
	def := core.NilVariant()
	defer def.Destroy()
	api := sys.Get()
	api.NativeScript.RegisterProperty(h.handle, name, p.Name,
		sys.PropertyAttributes{
			Type:         p.Type,
			Hint:         hn.Kind(),
			HintString:   hn.HintString(),
			Usage:        usage,
			DefaultValue: def.Handle(),
		},
		sys.PropertySetFunc{
			Set:        propertySetTrampoline,
			MethodData: uintptr(handles.Insert(kindProperty, rec)),
			FreeFunc:   freeHandle,
		},
		sys.PropertyGetFunc{
			Get:        propertyGetTrampoline,
			MethodData: uintptr(handles.Insert(kindProperty, rec)),
			FreeFunc:   freeHandle,
		},
	)
	if ns11 := api.NativeScript11; ns11 != nil && p.Doc != "" {
		ns11.SetPropertyDocumentation(h.handle, name, p.Name, p.Doc)
	}
}
