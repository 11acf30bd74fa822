package export

import (
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/gdnative/convert"
	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/gdlog"
	"github.com/wippyai/gdnative/object"
	"github.com/wippyai/gdnative/sys"
)

// ClassBuilder declares the members of a class during registration.
type ClassBuilder[C NativeClass] struct {
	init *InitHandle
	def  *classDef[C]
}

// ClassName returns the name the class is registered under.
func (b *ClassBuilder[C]) ClassName() string { return b.def.name }

// WithDoc sets the class documentation shown in the editor.
func (b *ClassBuilder[C]) WithDoc(doc string) *ClassBuilder[C] {
	if ns11 := sys.Get().NativeScript11; ns11 != nil {
		ns11.SetClassDocumentation(b.init.handle, b.def.name, doc)
	}
	return b
}

// Method declares a method implemented by fn. The first parameter of fn
// is the receiver, *C or C. It may be followed by a context.Context and an
// object.TRef for the owner, then the script visible parameters, the last
// of which may be *Varargs. Results are nothing, a value, an error, or a
// value and an error.
//
//	b.Method("jump", (*Player).Jump).WithArgs("height").WithDefault(0, 1.5).Done()
func (b *ClassBuilder[C]) Method(name string, fn any) *MethodBuilder[C] {
	site := gdlog.FuncSite(fn)
	if site.IsZero() {
		site = gdlog.Caller(1)
	}
	return &MethodBuilder[C]{class: b, name: name, fn: fn, site: site}
}

// Methods registers every exported method of C under its snake_case name,
// so Jump becomes "jump" and ApplyDamage "apply_damage".
func (b *ClassBuilder[C]) Methods() {
	vt := reflect.TypeFor[C]()
	pt := reflect.PointerTo(vt)
	for i := range pt.NumMethod() {
		m := pt.Method(i)
		if reservedMethods[m.Name] {
			continue
		}
		fn := m.Func
		if vm, ok := vt.MethodByName(m.Name); ok {
			fn = vm.Func
		}
		(&MethodBuilder[C]{
			class: b,
			name:  convert.SnakeCase(m.Name),
			fn:    fn.Interface(),
			site:  gdlog.FuncSite(fn.Interface()),
		}).Done()
	}
}

// Fields registers every exported field of C tagged with property as a
// property read and written in place. The tag holds the property name,
// defaulting to the snake_case field name, and options:
//
//	type Player struct {
//		export.Extends[api.Node]
//		Speed  float64 `property:""`
//		Secret string  `property:"secret,noeditor"`
//	}
func (b *ClassBuilder[C]) Fields() {
	ct := reflect.TypeFor[C]()
	for i := range ct.NumField() {
		f := ct.Field(i)
		tag, ok := f.Tag.Lookup("property")
		if !ok || tag == "-" || !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = convert.SnakeCase(f.Name)
		}
		usage := sys.UsageDefault
		for _, opt := range strings.Split(opts, ",") {
			if opt == "noeditor" {
				usage = sys.UsageNoEditor
			}
		}
		b.fieldProperty(name, f, usage)
	}
}

func (b *ClassBuilder[C]) fieldProperty(name string, f reflect.StructField, usage sys.PropertyUsage) {
	def := b.def
	idx := f.Index
	rec := &propertyRecord{class: def.name, name: name, site: gdlog.Caller(2)}
	rec.get = func(owner sys.Object, ud sys.UserData) (core.Variant, error) {
		inst, leave := def.enter(owner, ud)
		defer leave()
		var (
			out    core.Variant
			encErr error
		)
		err := inst.data.Map(func(c *C) {
			out, encErr = convert.EncodeValue(reflect.ValueOf(c).Elem().FieldByIndex(idx))
		})
		if err == nil {
			err = encErr
		}
		return out, err
	}
	rec.set = func(owner sys.Object, ud sys.UserData, v core.Variant) error {
		inst, leave := def.enter(owner, ud)
		defer leave()
		nv := reflect.New(f.Type).Elem()
		if err := decodeArg(name, 0, name, v, nv); err != nil {
			return err
		}
		err := inst.data.MapMut(func(c *C) {
			fv := reflect.ValueOf(c).Elem().FieldByIndex(idx)
			old := reflect.New(f.Type).Elem()
			old.Set(fv)
			fv.Set(nv)
			releaseValue(old)
		})
		if err != nil {
			releaseValue(nv)
		}
		return err
	}
	registerProperty(b.init, rec, f.Type, reflect.Value{}, propertyOptions{usage: usage})
}

// Signal starts declaring a signal the class emits.
func (b *ClassBuilder[C]) Signal(name string) *SignalBuilder[C] {
	return &SignalBuilder[C]{class: b, name: name}
}

// Constructor sets how instances are built when the engine creates them.
// The owner is valid for the duration of fn. Classes without a constructor
// start from the zero value.
func Constructor[C NativeClass, B object.Class](b *ClassBuilder[C], fn func(owner object.TRef[B, object.Shared]) C) {
	name := b.def.name
	b.def.ctor = func(owner sys.Object) C {
		var ref object.TRef[B, object.Shared]
		if !ref.Bind(owner) {
			Logger().Error("owner has the wrong class, starting from the zero value",
				zap.String("class", name),
				zap.String("want", object.ClassName[B]()))
			var zero C
			return zero
		}
		return fn(ref)
	}
}
