package export

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/sys"
	"github.com/wippyai/gdnative/userdata"
)

// InitHandle is the registration context handed to script init.
type InitHandle struct {
	handle sys.Handle
	level  InitLevel
}

// NewInitHandle wraps the engine's registration handle. Classes added
// through it are recorded at level.
func NewInitHandle(h sys.Handle, level InitLevel) *InitHandle {
	return &InitHandle{handle: h, level: level}
}

// Handle returns the engine's registration handle.
func (h *InitHandle) Handle() sys.Handle { return h.handle }

func (h *InitHandle) Level() InitLevel { return h.level }

// AddClass registers C with the engine. Registration failures are logged
// and the class is skipped.
func AddClass[C NativeClass](h *InitHandle, with ...func(*ClassBuilder[C])) {
	addClass(h, "", false, h.level, with)
}

// AddToolClass registers C as a tool class, which also runs in the editor.
func AddToolClass[C NativeClass](h *InitHandle, with ...func(*ClassBuilder[C])) {
	addClass(h, "", true, h.level, with)
}

// AddClassAs registers C under name instead of its own class name.
func AddClassAs[C NativeClass](h *InitHandle, name string, with ...func(*ClassBuilder[C])) {
	addClass(h, name, false, h.level, with)
}

// AddClassWithLevel registers C recorded at level rather than the
// handle's.
func AddClassWithLevel[C NativeClass](h *InitHandle, level InitLevel, with ...func(*ClassBuilder[C])) {
	addClass(h, "", false, level, with)
}

func addClass[C NativeClass](h *InitHandle, name string, tool bool, level InitLevel, with []func(*ClassBuilder[C])) bool {
	t := reflect.TypeFor[C]()
	if name == "" {
		name = classNameOf[C]()
	}
	log := Logger().With(zap.String("class", name))
	base := baseOf[C]()
	policy := policyOf[C]()

	factory, err := userdata.FactoryFor[C](policy)
	if err != nil {
		log.Error("ignoring class registration", zap.Error(err))
		return false
	}
	entry, res, err := registry.register(t, classEntry{
		name:   name,
		base:   base.name,
		policy: policy,
		levels: level,
		tool:   tool,
		handle: h.handle,
	})
	if err != nil {
		log.Error("ignoring class registration", zap.Error(err))
		return false
	}
	switch res {
	case registeredAgain:
		log.Warn("class is already registered", zap.Stringer("level", level))
		return false
	case registeredLevel:
		return false
	}

	def := &classDef[C]{
		name:    name,
		base:    base,
		tag:     entry.tag,
		policy:  policy,
		factory: factory,
	}
	if err := registerScript(h, name, base.name, tool, entry.tag, def); err != nil {
		log.Error("ignoring class registration", zap.Error(err))
		registry.forget(t)
		return false
	}

	b := &ClassBuilder[C]{init: h, def: def}
	if r, ok := any(new(C)).(Registerer[C]); ok {
		r.Register(b)
	}
	for _, fn := range with {
		fn(b)
	}
	log.Debug("registered class",
		zap.String("base", base.name),
		zap.Stringer("policy", policy),
		zap.Bool("tool", tool))
	return true
}

// registerScript hands a class to the engine. It fails when the engine has
// no NativeScript table or does not know the base class.
func registerScript(h *InitHandle, name, base string, tool bool, tag sys.TypeTag, sc scriptClass) error {
	api := sys.Get()
	ns := api.NativeScript
	if ns == nil {
		return errors.New(errors.PhaseRegister, errors.KindMissingTable).
			Class(name).
			Detail("engine has no NativeScript support").
			Build()
	}
	if classTag := api.Core.GetClassTag; classTag != nil && classTag(base) == 0 {
		return errors.UnknownBase(name, base)
	}
	create := sys.InstanceCreateFunc{
		Create:     createTrampoline,
		MethodData: uintptr(handles.Insert(kindClass, sc)),
		FreeFunc:   freeHandle,
	}
	destroy := sys.InstanceDestroyFunc{
		Destroy:    destroyTrampoline,
		MethodData: uintptr(handles.Insert(kindClass, sc)),
		FreeFunc:   freeHandle,
	}
	if tool {
		ns.RegisterToolClass(h.handle, name, base, create, destroy)
	} else {
		ns.RegisterClass(h.handle, name, base, create, destroy)
	}
	if ns11 := api.NativeScript11; ns11 != nil {
		ns11.SetTypeTag(h.handle, name, tag)
	}
	return nil
}
