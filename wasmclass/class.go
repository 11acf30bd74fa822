package wasmclass

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/export"
	"github.com/wippyai/gdnative/gdlog"
	"github.com/wippyai/gdnative/sys"
)

// ClassOption adjusts the class built from a module.
type ClassOption func(*export.DynamicClass)

// WithBase sets the engine class the script extends. The default is
// Reference.
func WithBase(base string) ClassOption {
	return func(c *export.DynamicClass) { c.Base = base }
}

func WithDoc(doc string) ClassOption {
	return func(c *export.DynamicClass) { c.Doc = doc }
}

// AsTool makes the class run in the editor too.
func AsTool() ClassOption {
	return func(c *export.DynamicClass) { c.Tool = true }
}

// Register adds a class named name whose instances each run their own
// instance of m.
func Register(h *export.InitHandle, m *Module, name string, opts ...ClassOption) error {
	c := m.Class(name, opts...)
	c.Site = gdlog.Caller(1)
	return export.AddDynamicClass(h, c)
}

// guest is the state of one script instance.
type guest struct {
	mod   api.Module
	funcs map[string]api.Function
}

// Class describes m as a dynamic class without registering it.
func (m *Module) Class(name string, opts ...ClassOption) export.DynamicClass {
	c := export.DynamicClass{
		Name:    name,
		New:     func(sys.Object) (any, error) { return m.instantiate() },
		Destroy: func(state any) { m.release(state.(*guest)) },
	}
	for _, f := range m.methods {
		c.Methods = append(c.Methods, m.method(name, f))
	}
	for _, p := range m.props {
		c.Properties = append(c.Properties, m.property(p))
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (m *Module) instantiate() (*guest, error) {
	ctx := context.Background()
	mod, err := m.runtime.rt.InstantiateModule(ctx, m.compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindCallFailed, err, "instantiate guest module "+m.name)
	}
	g := &guest{mod: mod, funcs: make(map[string]api.Function)}
	for _, f := range m.methods {
		g.funcs[f.export] = mod.ExportedFunction(f.export)
	}
	for _, p := range m.props {
		g.funcs[p.getter] = mod.ExportedFunction(p.getter)
		if p.setter != "" {
			g.funcs[p.setter] = mod.ExportedFunction(p.setter)
		}
	}
	return g, nil
}

func (m *Module) release(g *guest) {
	if err := g.mod.Close(context.Background()); err != nil {
		Logger().Warn("cannot close guest instance", zap.String("module", m.name), zap.Error(err))
	}
}

func (m *Module) method(class string, f guestFunc) export.DynamicMethod {
	args := make([]sys.MethodArgument, len(f.params))
	for i, t := range f.params {
		args[i] = sys.MethodArgument{Name: f.names[i], Type: variantTypes[t]}
	}
	return export.DynamicMethod{
		Name: f.export,
		Args: args,
		Call: func(ctx context.Context, state any, va *export.Varargs) (core.Variant, error) {
			if err := va.CheckLength(len(f.params), len(f.params)); err != nil {
				return core.Variant{}, err
			}
			stack := make([]uint64, len(f.params))
			for i, t := range f.params {
				v, err := decodeParam(va, t, f.names[i])
				if err != nil {
					return core.Variant{}, err
				}
				stack[i] = v
			}
			res, err := m.call(ctx, state.(*guest), f.export, stack)
			if err != nil {
				return core.Variant{}, errors.New(errors.PhaseRuntime, errors.KindCallFailed).
					Class(class).
					Path(m.name, f.export).
					Detail("guest call failed").
					Cause(err).
					Build()
			}
			if len(f.results) == 0 {
				return core.NilVariant(), nil
			}
			return encodeResult(f.results[0], res[0]), nil
		},
	}
}

func (m *Module) property(p guestProp) export.DynamicProperty {
	dp := export.DynamicProperty{
		Name: p.name,
		Type: variantTypes[p.typ],
		Get: func(state any) (core.Variant, error) {
			res, err := m.call(context.Background(), state.(*guest), p.getter, nil)
			if err != nil {
				return core.Variant{}, errors.Wrap(errors.PhaseRuntime, errors.KindCallFailed, err, "read guest property "+p.name)
			}
			return encodeResult(p.typ, res[0]), nil
		},
	}
	if p.setter != "" {
		dp.Set = func(state any, v core.Variant) error {
			va := export.NewVarargs(p.setter, []core.Variant{v})
			raw, err := decodeParam(va, p.typ, p.name)
			if err != nil {
				return err
			}
			if _, err := m.call(context.Background(), state.(*guest), p.setter, []uint64{raw}); err != nil {
				return errors.Wrap(errors.PhaseRuntime, errors.KindCallFailed, err, "write guest property "+p.name)
			}
			return nil
		}
	}
	return dp
}

func (m *Module) call(ctx context.Context, g *guest, name string, stack []uint64) ([]uint64, error) {
	fn := g.funcs[name]
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseRuntime, "guest export "+name)
	}
	ctx, cancel := m.runtime.callContext(ctx)
	defer cancel()
	return fn.Call(ctx, stack...)
}

func decodeParam(va *export.Varargs, t api.ValueType, name string) (uint64, error) {
	switch t {
	case api.ValueTypeI32:
		v, err := export.Get[int32](va, name)
		return api.EncodeI32(v), err
	case api.ValueTypeI64:
		v, err := export.Get[int64](va, name)
		return api.EncodeI64(v), err
	case api.ValueTypeF32:
		v, err := export.Get[float32](va, name)
		return api.EncodeF32(v), err
	default:
		v, err := export.Get[float64](va, name)
		return api.EncodeF64(v), err
	}
}

func encodeResult(t api.ValueType, raw uint64) core.Variant {
	switch t {
	case api.ValueTypeI32:
		return core.IntVariant(int64(api.DecodeI32(raw)))
	case api.ValueTypeI64:
		return core.IntVariant(int64(raw))
	case api.ValueTypeF32:
		return core.FloatVariant(float64(api.DecodeF32(raw)))
	default:
		return core.FloatVariant(api.DecodeF64(raw))
	}
}
