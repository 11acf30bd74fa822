package export

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/gdnative/convert"
	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/gdlog"
	"github.com/wippyai/gdnative/profiler"
	"github.com/wippyai/gdnative/sys"
	"github.com/wippyai/gdnative/userdata"
)

type accessMode uint8

const (
	modeAuto accessMode = iota
	modeShr
	modeMut
	modeOwned
)

func (m accessMode) op() userdata.Op {
	switch m {
	case modeMut:
		return userdata.OpMapMut
	case modeOwned:
		return userdata.OpMapOwned
	default:
		return userdata.OpMap
	}
}

// MethodBuilder declares one script method. Nothing is registered until
// Done.
type MethodBuilder[C NativeClass] struct {
	class    *ClassBuilder[C]
	name     string
	fn       any
	site     gdlog.Site
	rpc      sys.RPCMode
	mode     accessMode
	main     bool
	defaults map[int]any
	argNames []string
	doc      string
	profile  string
}

// WithRPCMode sets the network call mode.
func (m *MethodBuilder[C]) WithRPCMode(mode sys.RPCMode) *MethodBuilder[C] {
	m.rpc = mode
	return m
}

// WithSite overrides the source location reported when the method fails.
func (m *MethodBuilder[C]) WithSite(site gdlog.Site) *MethodBuilder[C] {
	m.site = site
	return m
}

// WithDefault gives parameter index a default used when the call omits
// it. Only trailing parameters can be omitted.
func (m *MethodBuilder[C]) WithDefault(index int, value any) *MethodBuilder[C] {
	if m.defaults == nil {
		m.defaults = make(map[int]any)
	}
	m.defaults[index] = value
	return m
}

// WithArgs names the parameters for the editor and for argument errors.
func (m *MethodBuilder[C]) WithArgs(names ...string) *MethodBuilder[C] {
	m.argNames = names
	return m
}

// MainThread restricts the method to the main thread. A call from any
// other thread is fatal.
func (m *MethodBuilder[C]) MainThread() *MethodBuilder[C] {
	m.main = true
	return m
}

// Profiled reports each call's duration to the engine profiler, tagged
// Class/method.
func (m *MethodBuilder[C]) Profiled() *MethodBuilder[C] {
	return m.ProfiledAs(m.class.def.name + "/" + m.name)
}

// ProfiledAs is Profiled with an explicit tag. The tag must not contain "::".
func (m *MethodBuilder[C]) ProfiledAs(tag string) *MethodBuilder[C] {
	m.profile = tag
	return m
}

// Shr accesses the instance with Map.
func (m *MethodBuilder[C]) Shr() *MethodBuilder[C] {
	m.mode = modeShr
	return m
}

// Mut accesses the instance with MapMut.
func (m *MethodBuilder[C]) Mut() *MethodBuilder[C] {
	m.mode = modeMut
	return m
}

// Owned moves the instance value out with MapOwned.
func (m *MethodBuilder[C]) Owned() *MethodBuilder[C] {
	m.mode = modeOwned
	return m
}

// WithDoc sets the method's editor documentation.
func (m *MethodBuilder[C]) WithDoc(doc string) *MethodBuilder[C] {
	m.doc = doc
	return m
}

// Done registers the method. Invalid declarations are logged and skipped.
func (m *MethodBuilder[C]) Done() {
	def := m.class.def
	log := Logger().With(zap.String("class", def.name), zap.String("method", m.name), gdlog.Field(m.site))

	sig, err := parseSignature[C](def.name, m.name, reflect.ValueOf(m.fn), m.mode, def.policy)
	if err == nil {
		sig.names = m.argNames
		err = sig.setDefaults(def.name, m.defaults)
	}
	if err != nil {
		log.Error("ignoring method registration", zap.Error(err))
		return
	}

	rec := &methodRecord{
		class:  def.name,
		name:   m.name,
		site:   m.site,
		main:   m.main,
		invoke: bindMethod(def, sig, m.site),
	}
	if m.profile != "" {
		rec.profile = profiler.FromSite(m.site, m.profile)
	}
	api := sys.Get()
	h := m.class.init.handle
	api.NativeScript.RegisterMethod(h, def.name, m.name, sys.MethodAttributes{RPCMode: m.rpc}, sys.InstanceMethod{
		Method:     methodTrampoline,
		MethodData: uintptr(handles.Insert(kindMethod, rec)),
		FreeFunc:   freeHandle,
	})
	if ns11 := api.NativeScript11; ns11 != nil {
		ns11.SetMethodArgumentInformation(h, def.name, m.name, sig.argInfo())
		if m.doc != "" {
			ns11.SetMethodDocumentation(h, def.name, m.name, m.doc)
		}
	}
	log.Debug("registered method", zap.Int("params", len(sig.params)), zap.Bool("varargs", sig.varargs))
}

type slotKind uint8

const (
	slotContext slotKind = iota
	slotOwner
)

// signature is a method func taken apart: the receiver, injected context
// and owner, decoded parameters and results.
type signature struct {
	method    string
	fn        reflect.Value
	recvPtr   bool
	mode      accessMode
	prefix    []slotKind
	ownerType reflect.Type
	params    []reflect.Type
	names     []string
	defaults  []reflect.Value
	required  int
	varargs   bool
	result    reflect.Type
	moved     bool
	hasErr    bool
}

type ownerBinder interface {
	Bind(obj sys.Object) bool
}

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
	varargsType = reflect.TypeFor[*Varargs]()
	binderType  = reflect.TypeFor[ownerBinder]()
	movedType   = reflect.TypeFor[interface{ moved() }]()
)

// Moved marks a method result whose engine references pass to the caller.
// Other results are borrowed: the returned variant takes its own copy or
// count, and the method's value stays with whoever owns it. A moved value
// must not be one of the method's arguments.
type Moved[T any] struct {
	Value T
}

// Move wraps v as a moved result.
func Move[T any](v T) Moved[T] { return Moved[T]{Value: v} }

func (Moved[T]) moved() {}

func isOwnerType(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && reflect.PointerTo(t).Implements(binderType)
}

func parseSignature[C NativeClass](class, method string, fn reflect.Value, mode accessMode, policy userdata.Policy) (*signature, error) {
	invalid := func(cause error, format string, args ...any) error {
		return errors.New(errors.PhaseRegister, errors.KindInvalidSignature).
			Class(class).
			Path(method).
			Cause(cause).
			Detail(format, args...).
			Build()
	}
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, invalid(nil, "want a func, got %s", fn.Kind())
	}
	ft := fn.Type()
	ct := reflect.TypeFor[C]()
	if ft.IsVariadic() {
		return nil, invalid(nil, "variadic funcs are not supported, take *export.Varargs")
	}
	if ft.NumIn() == 0 || (ft.In(0) != ct && ft.In(0) != reflect.PointerTo(ct)) {
		return nil, invalid(nil, "first parameter must be %s or *%s", ct, ct)
	}
	s := &signature{method: method, fn: fn, recvPtr: ft.In(0) != ct}

	i := 1
	for ; i < ft.NumIn(); i++ {
		t := ft.In(i)
		if t == contextType && !s.has(slotContext) {
			s.prefix = append(s.prefix, slotContext)
		} else if isOwnerType(t) && s.ownerType == nil {
			s.prefix = append(s.prefix, slotOwner)
			s.ownerType = t
		} else {
			break
		}
	}
	for ; i < ft.NumIn(); i++ {
		t := ft.In(i)
		switch {
		case t == varargsType:
			if i != ft.NumIn()-1 {
				return nil, invalid(nil, "*export.Varargs must be the last parameter")
			}
			s.varargs = true
			continue
		case t == contextType, isOwnerType(t):
			return nil, invalid(nil, "%s must directly follow the receiver", t)
		}
		if err := convert.Check(t); err != nil {
			return nil, invalid(err, "parameter %d: %s cannot be decoded from a variant", len(s.params), t)
		}
		s.params = append(s.params, t)
	}

	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) == errorType {
			s.hasErr = true
		} else {
			s.result = ft.Out(0)
		}
	case 2:
		if ft.Out(1) != errorType {
			return nil, invalid(nil, "second result must be error, got %s", ft.Out(1))
		}
		s.result, s.hasErr = ft.Out(0), true
	default:
		return nil, invalid(nil, "at most two results are supported, got %d", ft.NumOut())
	}
	if s.result != nil && s.result.Implements(movedType) {
		s.result, s.moved = s.result.Field(0).Type, true
	}
	if s.result != nil {
		if err := convert.Check(s.result); err != nil {
			return nil, invalid(err, "result %s cannot be encoded as a variant", s.result)
		}
	}

	if mode == modeAuto {
		mode = inferMode(s.recvPtr, policy)
	}
	if !policy.Supports(mode.op()) {
		return nil, invalid(nil, "%s storage does not support %s", policy, mode.op())
	}
	s.mode = mode
	return s, nil
}

// inferMode picks the access a receiver implies: exclusive for pointer
// receivers when the policy allows it, shared otherwise, and a move for
// policies that only support moving.
func inferMode(recvPtr bool, policy userdata.Policy) accessMode {
	switch {
	case recvPtr && policy.Supports(userdata.OpMapMut):
		return modeMut
	case policy.Supports(userdata.OpMap):
		return modeShr
	default:
		return modeOwned
	}
}

func (s *signature) has(k slotKind) bool {
	for _, p := range s.prefix {
		if p == k {
			return true
		}
	}
	return false
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func (s *signature) setDefaults(class string, defs map[int]any) error {
	s.defaults = make([]reflect.Value, len(s.params))
	for idx, v := range defs {
		if idx < 0 || idx >= len(s.params) {
			return errors.New(errors.PhaseRegister, errors.KindInvalidSignature).
				Class(class).
				Path(s.method).
				Detail("default for parameter %d, method has %d", idx, len(s.params)).
				Build()
		}
		t := s.params[idx]
		rv := reflect.ValueOf(v)
		switch {
		case !rv.IsValid():
			rv = reflect.Zero(t)
		case rv.Type().AssignableTo(t):
		case isNumeric(rv.Kind()) && isNumeric(t.Kind()):
			rv = rv.Convert(t)
		default:
			return errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
				Class(class).
				Path(s.method, s.name(idx)).
				GoType(t.String()).
				Detail("default value %v is a %s", v, rv.Type()).
				Build()
		}
		s.defaults[idx] = rv
	}
	s.required = len(s.params)
	for s.required > 0 && s.defaults[s.required-1].IsValid() {
		s.required--
	}
	return nil
}

func (s *signature) name(i int) string {
	if i < len(s.names) && s.names[i] != "" {
		return s.names[i]
	}
	return fmt.Sprintf("arg%d", i)
}

func (s *signature) argInfo() []sys.MethodArgument {
	args := make([]sys.MethodArgument, len(s.params))
	for i, t := range s.params {
		args[i] = sys.MethodArgument{Name: s.name(i), Type: convert.TypeOf(t)}
	}
	return args
}

func (s *signature) maxArgs() int {
	if s.varargs {
		return -1
	}
	return len(s.params)
}

func (s *signature) receiver(c reflect.Value) reflect.Value {
	if s.recvPtr {
		return c
	}
	return c.Elem()
}

// decodedArgs are the argument values decoded for one call. They hold
// engine references until released.
type decodedArgs []reflect.Value

func (d decodedArgs) release() {
	for _, rv := range d {
		releaseValue(rv)
	}
}

// decode builds the call arguments after the receiver slot, along with the
// decoded values to release once the call is done.
func (s *signature) decode(owner sys.Object, site gdlog.Site, class string, args []core.Variant) ([]reflect.Value, decodedArgs, error) {
	if len(args) < s.required || (!s.varargs && len(args) > len(s.params)) {
		kind, index := ArgMissing, len(args)
		if len(args) >= s.required {
			kind, index = ArgExcess, len(s.params)
		}
		aerr := &ArgumentError{
			Kind:   kind,
			Method: s.method,
			Index:  index,
			Got:    len(args),
			Min:    s.required,
			Max:    s.maxArgs(),
		}
		if kind == ArgMissing {
			aerr.Name = s.name(index)
			aerr.GoType = s.params[index].String()
		}
		return nil, nil, aerr
	}

	in := make([]reflect.Value, 1, 2+len(s.prefix)+len(s.params))
	for _, p := range s.prefix {
		switch p {
		case slotContext:
			in = append(in, reflect.ValueOf(newCallContext(owner, site, class, s.method)))
		case slotOwner:
			ov := reflect.New(s.ownerType)
			if !ov.Interface().(ownerBinder).Bind(owner) {
				return nil, nil, errors.New(errors.PhaseDispatch, errors.KindTypeMismatch).
					Class(class).
					Path(s.method).
					GoType(s.ownerType.String()).
					Detail("owner is not a %s", s.ownerType).
					Build()
			}
			in = append(in, ov.Elem())
		}
	}

	var decoded decodedArgs
	for i, t := range s.params {
		if i >= len(args) {
			in = append(in, s.defaults[i])
			continue
		}
		rv := reflect.New(t).Elem()
		if err := decodeArg(s.method, i, s.name(i), args[i], rv); err != nil {
			decoded.release()
			return nil, nil, err
		}
		decoded = append(decoded, rv)
		in = append(in, rv)
	}
	if s.varargs {
		var rest []core.Variant
		if len(args) > len(s.params) {
			rest = args[len(s.params):]
		}
		in = append(in, reflect.ValueOf(&Varargs{method: s.method, args: rest, offset: len(s.params)}))
	}
	return in, decoded, nil
}

// encode turns the results into the returned variant. Results are
// borrowed, except a Moved result, which is released once encoded.
func (s *signature) encode(out []reflect.Value) (core.Variant, error) {
	var rv reflect.Value
	if s.result != nil {
		rv = out[0]
		if s.moved {
			rv = rv.Field(0)
			defer releaseValue(rv)
		}
	}
	if s.hasErr {
		if e := out[len(out)-1]; !e.IsNil() {
			return core.Variant{}, e.Interface().(error)
		}
	}
	if s.result == nil {
		return core.NilVariant(), nil
	}
	return convert.EncodeValue(rv)
}

func bindMethod[C NativeClass](def *classDef[C], s *signature, site gdlog.Site) func(sys.Object, sys.UserData, []core.Variant) (core.Variant, error) {
	return func(owner sys.Object, ud sys.UserData, args []core.Variant) (core.Variant, error) {
		inst, leave := def.enter(owner, ud)
		defer leave()

		in, decoded, err := s.decode(owner, site, def.name, args)
		if err != nil {
			return core.Variant{}, err
		}
		defer decoded.release()

		var out []reflect.Value
		call := func(c reflect.Value) {
			in[0] = s.receiver(c)
			out = s.fn.Call(in)
		}
		switch s.mode {
		case modeMut:
			err = inst.data.MapMut(func(c *C) { call(reflect.ValueOf(c)) })
		case modeShr:
			err = inst.data.Map(func(c *C) { call(reflect.ValueOf(c)) })
		default:
			err = inst.data.MapOwned(func(c C) { call(reflect.ValueOf(&c)) })
		}
		if err != nil {
			return core.Variant{}, err
		}
		return s.encode(out)
	}
}

const modulePrefix = "github.com/wippyai/gdnative/"

// releaseValue drops the engine references held by a value of one of the
// binding's own types. Other values are left alone.
func releaseValue(rv reflect.Value) {
	if !rv.IsValid() || !strings.HasPrefix(rv.Type().PkgPath(), modulePrefix) {
		return
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	switch x := p.Interface().(type) {
	case interface{ Release() }:
		x.Release()
	case interface{ Destroy() }:
		x.Destroy()
	}
}

type callKey struct{}

type callInfo struct {
	owner  sys.Object
	site   gdlog.Site
	class  string
	method string
}

func newCallContext(owner sys.Object, site gdlog.Site, class, method string) context.Context {
	return context.WithValue(context.Background(), callKey{}, callInfo{owner: owner, site: site, class: class, method: method})
}

// OwnerFromContext returns the object a method was called on.
func OwnerFromContext(ctx context.Context) (sys.Object, bool) {
	ci, ok := ctx.Value(callKey{}).(callInfo)
	return ci.owner, ok
}

// SiteFromContext returns the source location of the running method.
func SiteFromContext(ctx context.Context) (gdlog.Site, bool) {
	ci, ok := ctx.Value(callKey{}).(callInfo)
	return ci.site, ok
}

// MethodFromContext returns the class and name of the running method.
func MethodFromContext(ctx context.Context) (class, method string, ok bool) {
	ci, ok := ctx.Value(callKey{}).(callInfo)
	return ci.class, ci.method, ok
}
