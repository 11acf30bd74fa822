package wasmclass_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/gdnative/convert"
	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/export"
	"github.com/wippyai/gdnative/headless"
	"github.com/wippyai/gdnative/sys"
	"github.com/wippyai/gdnative/wasmclass"
)

const testHandle sys.Handle = 0x77

type fixture struct {
	eng      *headless.Engine
	init     *export.InitHandle
	rt       *wasmclass.Runtime
	calls    *observer.ObservedLogs
	guestLog *observer.ObservedLogs
}

func setup(t *testing.T) *fixture {
	t.Helper()
	runtime.LockOSThread()
	eng := headless.New()
	bound, err := sys.Bind(eng.API())
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	sys.Install(bound)

	exportCore, calls := observer.New(zapcore.DebugLevel)
	export.SetLogger(zap.New(exportCore))
	guestCore, guestLog := observer.New(zapcore.DebugLevel)
	wasmclass.SetLogger(zap.New(guestCore))
	export.Setup(eng.Library(), func(string) {})

	ctx := context.Background()
	rt, err := wasmclass.NewRuntime(ctx, wasmclass.WithMemoryLimitPages(16))
	if err != nil {
		t.Fatalf("runtime: %v", err)
	}

	t.Cleanup(func() {
		eng.TerminateScripts(testHandle)
		export.Cleanup()
		_ = rt.Close(ctx)
		export.SetLogger(zap.NewNop())
		wasmclass.SetLogger(zap.NewNop())
		sys.Uninstall()
		eng.Close()
		runtime.UnlockOSThread()
	})
	return &fixture{
		eng:      eng,
		init:     export.NewInitHandle(testHandle, export.InitLevelUser),
		rt:       rt,
		calls:    calls,
		guestLog: guestLog,
	}
}

func (f *fixture) compile(t *testing.T, file string) *wasmclass.Module {
	t.Helper()
	wasm, err := os.ReadFile(filepath.Join("testdata", file))
	if err != nil {
		t.Fatalf("read %s: %v", file, err)
	}
	mod, err := f.rt.Compile(context.Background(), file, wasm)
	if err != nil {
		t.Fatalf("compile %s: %v", file, err)
	}
	return mod
}

func (f *fixture) instantiate(t *testing.T, class string) sys.Object {
	t.Helper()
	obj, err := f.eng.Instantiate(class)
	if err != nil {
		t.Fatalf("instantiate %s: %v", class, err)
	}
	t.Cleanup(func() { f.eng.Release(obj) })
	return obj
}

func (f *fixture) call(t *testing.T, obj sys.Object, method string, args ...any) core.Variant {
	t.Helper()
	vs := make([]core.Variant, len(args))
	for i, a := range args {
		vs[i] = convert.MustToVariant(a)
	}
	defer core.DestroyAll(vs)
	out, err := f.eng.Call(obj, method, core.Handles(vs)...)
	if err != nil {
		t.Fatalf("call %s: %v", method, err)
	}
	v := core.VariantFromHandle(out)
	t.Cleanup(v.Destroy)
	return v
}

func (f *fixture) get(t *testing.T, obj sys.Object, prop string) core.Variant {
	t.Helper()
	v := core.VariantFromHandle(f.eng.Get(obj, prop))
	t.Cleanup(v.Destroy)
	return v
}

func (f *fixture) set(obj sys.Object, prop string, val any) {
	v := convert.MustToVariant(val)
	defer v.Destroy()
	f.eng.Set(obj, prop, v.Handle())
}

func TestClassify(t *testing.T) {
	f := setup(t)
	mod := f.compile(t, "calc.wasm")

	if got, want := mod.Methods(), []string{"accumulate", "add", "div", "mul"}; !slices.Equal(got, want) {
		t.Errorf("Methods() = %v, want %v", got, want)
	}
	if got, want := mod.Properties(), []string{"total"}; !slices.Equal(got, want) {
		t.Errorf("Properties() = %v, want %v", got, want)
	}

	c := mod.Class("Calc", wasmclass.WithBase("Node"), wasmclass.WithDoc("doc"), wasmclass.AsTool())
	if c.Base != "Node" || c.Doc != "doc" || !c.Tool {
		t.Errorf("class options not applied: %+v", c)
	}
	if len(c.Methods) != 4 || len(c.Properties) != 1 {
		t.Fatalf("class has %d methods and %d properties", len(c.Methods), len(c.Properties))
	}
	add := c.Methods[1]
	if add.Name != "add" || len(add.Args) != 2 || add.Args[0].Name != "arg0" || add.Args[0].Type != sys.VariantInt {
		t.Errorf("add = %+v", add)
	}
	if p := c.Properties[0]; p.Type != sys.VariantInt || p.Get == nil || p.Set == nil {
		t.Errorf("total = %+v", p)
	}
}

func TestGuestMethods(t *testing.T) {
	f := setup(t)
	if err := wasmclass.Register(f.init, f.compile(t, "calc.wasm"), "Calc"); err != nil {
		t.Fatalf("register: %v", err)
	}
	info, ok := f.eng.ScriptClass("Calc")
	if !ok {
		t.Fatal("Calc not registered")
	}
	if info.Base != "Reference" {
		t.Errorf("base = %q", info.Base)
	}

	obj := f.instantiate(t, "Calc")
	tests := []struct {
		method string
		args   []any
		want   string
	}{
		{"add", []any{2, 40}, "42"},
		{"mul", []any{1.5, 4.0}, "6"},
		{"div", []any{7, 2}, "3"},
		{"accumulate", []any{5}, "5"},
		{"accumulate", []any{7}, "12"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			if got := f.call(t, obj, tt.method, tt.args...).String(); got != tt.want {
				t.Errorf("%s%v = %s, want %s", tt.method, tt.args, got, tt.want)
			}
		})
	}
}

func TestGuestProperties(t *testing.T) {
	f := setup(t)
	if err := wasmclass.Register(f.init, f.compile(t, "calc.wasm"), "Calc"); err != nil {
		t.Fatalf("register: %v", err)
	}
	a := f.instantiate(t, "Calc")
	b := f.instantiate(t, "Calc")

	f.call(t, a, "accumulate", 3)
	if got := f.get(t, a, "total").ToInt(); got != 3 {
		t.Errorf("total = %d, want 3", got)
	}
	f.set(a, "total", 100)
	if got := f.call(t, a, "accumulate", 1).ToInt(); got != 101 {
		t.Errorf("accumulate after set = %d, want 101", got)
	}
	if got := f.get(t, b, "total").ToInt(); got != 0 {
		t.Errorf("second instance total = %d, want 0", got)
	}
}

func TestGuestFailures(t *testing.T) {
	f := setup(t)
	if err := wasmclass.Register(f.init, f.compile(t, "calc.wasm"), "Calc"); err != nil {
		t.Fatalf("register: %v", err)
	}
	obj := f.instantiate(t, "Calc")

	tests := []struct {
		name string
		args []any
		msg  string
	}{
		{"trap", []any{1, 0}, "method returned an error"},
		{"missing argument", []any{1}, "invalid arguments"},
		{"wrong type", []any{"x", 1}, "invalid arguments"},
		{"i32 overflow", []any{int64(1) << 40, 1}, "invalid arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.calls.FilterMessage(tt.msg).Len()
			if out := f.call(t, obj, "div", tt.args...); !out.IsNil() {
				t.Errorf("result = %s, want nil", out)
			}
			if f.calls.FilterMessage(tt.msg).Len() != before+1 {
				t.Errorf("no %q logged: %v", tt.msg, f.calls.All())
			}
		})
	}

	// The instance survives a trap.
	if got := f.call(t, obj, "add", 1, 2).ToInt(); got != 3 {
		t.Errorf("add after trap = %d", got)
	}
}

func TestHostPrint(t *testing.T) {
	f := setup(t)
	if err := wasmclass.Register(f.init, f.compile(t, "greeter.wasm"), "Greeter"); err != nil {
		t.Fatalf("register: %v", err)
	}
	obj := f.instantiate(t, "Greeter")
	f.call(t, obj, "hello")

	entries := f.guestLog.FilterMessage("hello").All()
	if len(entries) != 1 {
		t.Fatalf("guest output not logged: %v", f.guestLog.All())
	}
	if entries[0].Level != zapcore.InfoLevel {
		t.Errorf("level = %s", entries[0].Level)
	}
}

func TestCompileErrors(t *testing.T) {
	f := setup(t)
	foreign, err := os.ReadFile(filepath.Join("testdata", "foreign.wasm"))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		wasm []byte
		kind errors.Kind
	}{
		{"not wasm", []byte("nope"), errors.KindInvalidInput},
		{"unknown import", foreign, errors.KindUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.rt.Compile(context.Background(), tt.name, tt.wasm)
			if !errors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: tt.kind}) {
				t.Errorf("err = %v, want %s", err, tt.kind)
			}
		})
	}
}

func TestDuplicateGuestClass(t *testing.T) {
	f := setup(t)
	mod := f.compile(t, "calc.wasm")
	if err := wasmclass.Register(f.init, mod, "Calc"); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := wasmclass.Register(f.init, mod, "Calc")
	if !errors.Is(err, &errors.Error{Phase: errors.PhaseRegister, Kind: errors.KindDuplicateClass}) {
		t.Errorf("second register = %v", err)
	}
}
