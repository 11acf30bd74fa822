package export

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/gdnative/convert"
	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/export/hint"
	"github.com/wippyai/gdnative/gdlog"
	"github.com/wippyai/gdnative/geom"
	"github.com/wippyai/gdnative/sys"
)

// PropertyBuilder declares a property of type T. Nothing is registered
// until Done.
type PropertyBuilder[C NativeClass, T any] struct {
	class  *ClassBuilder[C]
	name   string
	site   gdlog.Site
	get    func(*C) T
	refGet func(*C) *T
	set    func(*C, T)
	shrSet func(*C, T)
	def    *T
	opts   propertyOptions
}

type propertyOptions struct {
	hint  hint.Hint
	usage sys.PropertyUsage
	rpc   sys.RPCMode
	doc   string
}

// Property starts declaring a property on the class being built.
//
//	export.Property[Player, float64](b, "speed").
//		WithField(func(p *Player) *float64 { return &p.Speed }).
//		WithDefault(4).
//		WithHint(hint.Range{Min: 0, Max: 10}).
//		Done()
func Property[C NativeClass, T any](b *ClassBuilder[C], name string) *PropertyBuilder[C, T] {
	return &PropertyBuilder[C, T]{
		class: b,
		name:  name,
		site:  gdlog.Caller(1),
		opts:  propertyOptions{usage: sys.UsageDefault},
	}
}

// WithGetter reads the property with shared access.
func (p *PropertyBuilder[C, T]) WithGetter(fn func(*C) T) *PropertyBuilder[C, T] {
	p.get, p.refGet = fn, nil
	return p
}

// WithRefGetter reads the property through a pointer into the instance.
func (p *PropertyBuilder[C, T]) WithRefGetter(fn func(*C) *T) *PropertyBuilder[C, T] {
	p.get, p.refGet = nil, fn
	return p
}

// WithSetter writes the property with exclusive access. The setter owns
// the value it is given.
func (p *PropertyBuilder[C, T]) WithSetter(fn func(*C, T)) *PropertyBuilder[C, T] {
	p.set, p.shrSet = fn, nil
	return p
}

// WithShrSetter writes the property with shared access, for classes that
// synchronize themselves.
func (p *PropertyBuilder[C, T]) WithShrSetter(fn func(*C, T)) *PropertyBuilder[C, T] {
	p.set, p.shrSet = nil, fn
	return p
}

// WithField backs the property by the value fn points to, read and
// written in place. Engine values replaced by a write are released.
func (p *PropertyBuilder[C, T]) WithField(fn func(*C) *T) *PropertyBuilder[C, T] {
	p.refGet = fn
	p.get = nil
	p.shrSet = nil
	p.set = func(c *C, v T) {
		ptr := fn(c)
		old := *ptr
		*ptr = v
		releaseValue(reflect.ValueOf(&old).Elem())
	}
	return p
}

// WithDefault sets the value the editor resets the property to.
func (p *PropertyBuilder[C, T]) WithDefault(v T) *PropertyBuilder[C, T] {
	p.def = &v
	return p
}

// WithHint sets the editor hint, such as a range or an enum list.
func (p *PropertyBuilder[C, T]) WithHint(h hint.Hint) *PropertyBuilder[C, T] {
	p.opts.hint = h
	return p
}

// WithUsage replaces the default usage flags.
func (p *PropertyBuilder[C, T]) WithUsage(u sys.PropertyUsage) *PropertyBuilder[C, T] {
	p.opts.usage = u
	return p
}

// WithRPCMode sets the network mode of remote sets.
func (p *PropertyBuilder[C, T]) WithRPCMode(mode sys.RPCMode) *PropertyBuilder[C, T] {
	p.opts.rpc = mode
	return p
}

// WithDoc sets the property's editor documentation.
func (p *PropertyBuilder[C, T]) WithDoc(doc string) *PropertyBuilder[C, T] {
	p.opts.doc = doc
	return p
}

// Done registers the property. An accessor left out is replaced by one
// that logs the omission.
func (p *PropertyBuilder[C, T]) Done() {
	def := p.class.def
	rec := &propertyRecord{class: def.name, name: p.name, site: p.site}
	rec.get = p.getter()
	rec.set = p.setter()
	var dv reflect.Value
	if p.def != nil {
		dv = reflect.ValueOf(p.def).Elem()
	}
	registerProperty(p.class.init, rec, reflect.TypeFor[T](), dv, p.opts)
}

func (p *PropertyBuilder[C, T]) getter() func(sys.Object, sys.UserData) (core.Variant, error) {
	def := p.class.def
	read := p.get
	if read == nil && p.refGet != nil {
		ref := p.refGet
		read = func(c *C) T { return *ref(c) }
	}
	if read == nil {
		return missingGetter(def.name, p.name, p.site)
	}
	return func(owner sys.Object, ud sys.UserData) (core.Variant, error) {
		inst, leave := def.enter(owner, ud)
		defer leave()
		var (
			out    core.Variant
			encErr error
		)
		err := inst.data.Map(func(c *C) {
			v := read(c)
			out, encErr = convert.EncodeValue(reflect.ValueOf(&v).Elem())
		})
		if err == nil {
			err = encErr
		}
		return out, err
	}
}

func (p *PropertyBuilder[C, T]) setter() func(sys.Object, sys.UserData, core.Variant) error {
	def := p.class.def
	write, shared := p.set, false
	if write == nil && p.shrSet != nil {
		write, shared = p.shrSet, true
	}
	if write == nil {
		return missingSetter(def.name, p.name, p.site)
	}
	name := p.name
	return func(owner sys.Object, ud sys.UserData, v core.Variant) error {
		inst, leave := def.enter(owner, ud)
		defer leave()
		var val T
		rv := reflect.ValueOf(&val).Elem()
		if err := decodeArg(name, 0, name, v, rv); err != nil {
			return err
		}
		access := inst.data.MapMut
		if shared {
			access = inst.data.Map
		}
		err := access(func(c *C) { write(c, val) })
		if err != nil {
			releaseValue(rv)
		}
		return err
	}
}

func missingGetter(class, name string, site gdlog.Site) func(sys.Object, sys.UserData) (core.Variant, error) {
	return func(sys.Object, sys.UserData) (core.Variant, error) {
		logMissing(class, name, "getter", site)
		return core.NilVariant(), nil
	}
}

func missingSetter(class, name string, site gdlog.Site) func(sys.Object, sys.UserData, core.Variant) error {
	return func(sys.Object, sys.UserData, core.Variant) error {
		logMissing(class, name, "setter", site)
		return nil
	}
}

func logMissing(class, name, side string, site gdlog.Site) {
	Logger().Error(fmt.Sprintf("property `%s` has no %s", name, side),
		zap.String("class", class),
		gdlog.Field(site),
		zap.Error(errors.MissingAccessor(class, name, side)))
}

func registerProperty(h *InitHandle, rec *propertyRecord, t reflect.Type, def reflect.Value, opts propertyOptions) {
	log := Logger().With(zap.String("class", rec.class), zap.String("property", rec.name), gdlog.Field(rec.site))
	if err := convert.Check(t); err != nil {
		log.Error("ignoring property registration", zap.Error(err))
		return
	}
	defVar, err := encodeDefault(t, def)
	if err != nil {
		log.Error("ignoring property registration", zap.Error(err))
		return
	}
	defer defVar.Destroy()

	hn := opts.hint
	if hn == nil {
		hn = hint.None{}
	}
	attr := sys.PropertyAttributes{
		RsetType:     opts.rpc,
		Type:         convert.TypeOf(t),
		Hint:         hn.Kind(),
		HintString:   hn.HintString(),
		Usage:        opts.usage,
		DefaultValue: defVar.Handle(),
	}
	api := sys.Get()
	api.NativeScript.RegisterProperty(h.handle, rec.class, rec.name, attr,
		sys.PropertySetFunc{
			Set:        propertySetTrampoline,
			MethodData: uintptr(handles.Insert(kindProperty, rec)),
			FreeFunc:   freeHandle,
		},
		sys.PropertyGetFunc{
			Get:        propertyGetTrampoline,
			MethodData: uintptr(handles.Insert(kindProperty, rec)),
			FreeFunc:   freeHandle,
		})
	if ns11 := api.NativeScript11; ns11 != nil && opts.doc != "" {
		ns11.SetPropertyDocumentation(h.handle, rec.class, rec.name, opts.doc)
	}
	log.Debug("registered property", zap.Stringer("type", attr.Type))
}

// encodeDefault encodes the default value. Without one, plain values
// default to their zero value and engine values to Nil.
func encodeDefault(t reflect.Type, def reflect.Value) (core.Variant, error) {
	if def.IsValid() {
		return convert.EncodeValue(def)
	}
	if plainZero(t) {
		if v, err := convert.EncodeValue(reflect.Zero(t)); err == nil {
			return v, nil
		}
	}
	return core.NilVariant(), nil
}

var geomPkg = reflect.TypeFor[geom.Vector2]().PkgPath()

func plainZero(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Struct:
		return t.PkgPath() == geomPkg
	}
	return false
}
