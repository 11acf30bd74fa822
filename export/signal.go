package export

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/gdnative/convert"
	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/export/hint"
	"github.com/wippyai/gdnative/sys"
)

// SignalBuilder declares a signal. Nothing is registered until Done.
type SignalBuilder[C NativeClass] struct {
	class  *ClassBuilder[C]
	name   string
	params []signalParam
	doc    string
}

type signalParam struct {
	name   string
	typ    sys.VariantType
	def    any
	hasDef bool
	usage  sys.PropertyUsage
	hint   hint.Hint
}

// WithParam adds a parameter of variant type t.
func (s *SignalBuilder[C]) WithParam(name string, t sys.VariantType) *SignalBuilder[C] {
	s.params = append(s.params, signalParam{name: name, typ: t, usage: sys.UsageDefault})
	return s
}

// WithParamDefault adds a parameter typed after value, which is also its
// default.
func (s *SignalBuilder[C]) WithParamDefault(name string, value any) *SignalBuilder[C] {
	t := sys.VariantNil
	if value != nil {
		t = convert.TypeOf(reflect.TypeOf(value))
	}
	s.params = append(s.params, signalParam{name: name, typ: t, def: value, hasDef: true, usage: sys.UsageDefault})
	return s
}

// WithParamUsage sets the usage flags of the last parameter added.
func (s *SignalBuilder[C]) WithParamUsage(u sys.PropertyUsage) *SignalBuilder[C] {
	if n := len(s.params); n > 0 {
		s.params[n-1].usage = u
	}
	return s
}

// WithParamHint sets the editor hint of the last parameter added.
func (s *SignalBuilder[C]) WithParamHint(h hint.Hint) *SignalBuilder[C] {
	if n := len(s.params); n > 0 {
		s.params[n-1].hint = h
	}
	return s
}

// WithDoc sets the signal's editor documentation.
func (s *SignalBuilder[C]) WithDoc(doc string) *SignalBuilder[C] {
	s.doc = doc
	return s
}

// Done registers the signal.
func (s *SignalBuilder[C]) Done() {
	class := s.class.def.name
	log := Logger().With(zap.String("class", class), zap.String("signal", s.name))

	sig := sys.Signal{Name: s.name, Args: make([]sys.SignalArgument, len(s.params))}
	var owned []core.Variant
	defer func() { core.DestroyAll(owned) }()
	for i, p := range s.params {
		arg := sys.SignalArgument{Name: p.name, Type: p.typ, Usage: p.usage}
		if p.hint != nil {
			arg.Hint, arg.HintString = p.hint.Kind(), p.hint.HintString()
		}
		if p.hasDef {
			v, err := convert.ToVariant(p.def)
			if err != nil {
				log.Error("ignoring signal registration", zap.String("param", p.name), zap.Error(err))
				return
			}
			owned = append(owned, v)
			arg.DefaultValue = v.Handle()
		}
		sig.Args[i] = arg
	}

	api := sys.Get()
	h := s.class.init.handle
	api.NativeScript.RegisterSignal(h, class, sig)
	if ns11 := api.NativeScript11; ns11 != nil && s.doc != "" {
		ns11.SetSignalDocumentation(h, class, s.name, s.doc)
	}
	log.Debug("registered signal", zap.Int("params", len(sig.Args)))
}
