package wasmclass

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/sys"
)

// Module is a compiled guest module and the class shape derived from its
// exports.
type Module struct {
	runtime  *Runtime
	name     string
	compiled wazero.CompiledModule
	methods  []guestFunc
	props    []guestProp
}

type guestFunc struct {
	export  string
	params  []api.ValueType
	names   []string
	results []api.ValueType
}

type guestProp struct {
	name   string
	typ    api.ValueType
	getter string
	setter string
}

// Compile validates wasm and derives methods and properties from its
// exports. Imports other than the host module are rejected.
func (r *Runtime) Compile(ctx context.Context, name string, wasm []byte) (*Module, error) {
	compiled, err := r.rt.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "compile guest module "+name)
	}
	for _, def := range compiled.ImportedFunctions() {
		mod, fn, _ := def.Import()
		if mod != HostModule || !hostFuncs[fn] {
			_ = compiled.Close(ctx)
			return nil, errors.New(errors.PhaseLoad, errors.KindUnsupported).
				Path(name).
				Detail("guest imports unknown function %s.%s", mod, fn).
				Build()
		}
	}

	m := &Module{runtime: r, name: name, compiled: compiled}
	m.classify(compiled.ExportedFunctions())
	Logger().Debug("compiled guest module",
		zap.String("module", name),
		zap.Strings("methods", m.Methods()),
		zap.Strings("properties", m.Properties()))
	return m, nil
}

func (m *Module) classify(exports map[string]api.FunctionDefinition) {
	names := make([]string, 0, len(exports))
	for n := range exports {
		names = append(names, n)
	}
	slices.Sort(names)

	funcs := make(map[string]guestFunc, len(names))
	for _, n := range names {
		if strings.HasPrefix(n, "_") {
			continue
		}
		def := exports[n]
		f := guestFunc{export: n, params: def.ParamTypes(), results: def.ResultTypes()}
		if !supported(f) {
			Logger().Debug("skipping guest export with unsupported signature",
				zap.String("module", m.name),
				zap.String("export", n))
			continue
		}
		f.names = paramNames(def)
		funcs[n] = f
	}

	used := make(map[string]bool)
	for _, n := range names {
		prop, ok := strings.CutPrefix(n, "get_")
		if !ok || prop == "" {
			continue
		}
		get, ok := funcs[n]
		if !ok || len(get.params) != 0 || len(get.results) != 1 {
			continue
		}
		p := guestProp{name: prop, typ: get.results[0], getter: n}
		if set, ok := funcs["set_"+prop]; ok && len(set.params) == 1 && len(set.results) == 0 && set.params[0] == p.typ {
			p.setter = set.export
			used[set.export] = true
		}
		used[n] = true
		m.props = append(m.props, p)
	}
	for _, n := range names {
		if f, ok := funcs[n]; ok && !used[n] {
			m.methods = append(m.methods, f)
		}
	}
}

func supported(f guestFunc) bool {
	if len(f.results) > 1 {
		return false
	}
	for _, t := range slices.Concat(f.params, f.results) {
		if _, ok := variantTypes[t]; !ok {
			return false
		}
	}
	return true
}

func paramNames(def api.FunctionDefinition) []string {
	out := make([]string, len(def.ParamTypes()))
	given := def.ParamNames()
	for i := range out {
		if i < len(given) && given[i] != "" {
			out[i] = given[i]
			continue
		}
		out[i] = fmt.Sprintf("arg%d", i)
	}
	return out
}

var variantTypes = map[api.ValueType]sys.VariantType{
	api.ValueTypeI32: sys.VariantInt,
	api.ValueTypeI64: sys.VariantInt,
	api.ValueTypeF32: sys.VariantReal,
	api.ValueTypeF64: sys.VariantReal,
}

// Name returns the name the module was compiled under.
func (m *Module) Name() string { return m.name }

// Methods returns the method names in sorted order.
func (m *Module) Methods() []string {
	out := make([]string, len(m.methods))
	for i, f := range m.methods {
		out[i] = f.export
	}
	return out
}

// Properties returns the property names in sorted order.
func (m *Module) Properties() []string {
	out := make([]string, len(m.props))
	for i, p := range m.props {
		out[i] = p.name
	}
	return out
}

// Close releases the compiled code. Live instances keep running.
func (m *Module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}
