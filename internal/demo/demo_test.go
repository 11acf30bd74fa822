package demo_test

import (
	"runtime"
	"slices"
	"testing"

	"github.com/wippyai/gdnative"
	"github.com/wippyai/gdnative/convert"
	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/headless"
	"github.com/wippyai/gdnative/internal/demo"
	"github.com/wippyai/gdnative/sys"
)

const handle sys.Handle = 0x10

func load(t *testing.T) *headless.Engine {
	t.Helper()
	runtime.LockOSThread()
	eng := headless.New()
	lib := gdnative.New()
	demo.Install(lib)
	if err := lib.Load(eng.InitOptions("res://demo.gdnlib")); err != nil {
		t.Fatalf("load: %v", err)
	}
	lib.ScriptInit(handle)
	t.Cleanup(func() {
		eng.TerminateScripts(handle)
		lib.Unload(nil)
		_ = eng.Close()
		runtime.UnlockOSThread()
	})
	return eng
}

func call(t *testing.T, eng *headless.Engine, obj sys.Object, method string, args ...any) core.Variant {
	t.Helper()
	vs := make([]core.Variant, len(args))
	for i, a := range args {
		vs[i] = convert.MustToVariant(a)
	}
	defer core.DestroyAll(vs)
	out, err := eng.Call(obj, method, core.Handles(vs)...)
	if err != nil {
		t.Fatalf("call %s: %v", method, err)
	}
	v := core.VariantFromHandle(out)
	t.Cleanup(v.Destroy)
	return v
}

func instantiate(t *testing.T, eng *headless.Engine, class string) sys.Object {
	t.Helper()
	obj, err := eng.Instantiate(class)
	if err != nil {
		t.Fatalf("instantiate %s: %v", class, err)
	}
	t.Cleanup(func() { eng.Release(obj) })
	return obj
}

func TestClassesRegistered(t *testing.T) {
	eng := load(t)
	var names []string
	for _, c := range eng.ScriptClasses() {
		names = append(names, c.Name)
	}
	if !slices.Equal(names, demo.Classes) {
		t.Errorf("classes = %v, want %v", names, demo.Classes)
	}
	if errs := eng.Errors(); len(errs) != 0 {
		t.Errorf("engine errors: %v", errs)
	}
}

func TestDemoCalls(t *testing.T) {
	eng := load(t)
	counter := instantiate(t, eng, "Counter")
	echo := instantiate(t, eng, "Echo")
	calc := instantiate(t, eng, "Calc")

	tests := []struct {
		name   string
		obj    sys.Object
		method string
		args   []any
		want   string
	}{
		{"increment", counter, "increment", nil, "1"},
		{"increment again", counter, "increment", nil, "2"},
		{"echo", echo, "echo", []any{"hi"}, "hi"},
		{"join", echo, "join", []any{"-", "a", "b", "c"}, "a-b-c"},
		{"calls", echo, "calls", nil, "2"},
		{"add", calc, "add", []any{40, 2}, "42"},
		{"accumulate", calc, "accumulate", []any{7}, "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := call(t, eng, tt.obj, tt.method, tt.args...).String(); got != tt.want {
				t.Errorf("%s%v = %s, want %s", tt.method, tt.args, got, tt.want)
			}
		})
	}
}

func TestCounterStep(t *testing.T) {
	eng := load(t)
	counter := instantiate(t, eng, "Counter")
	step := convert.MustToVariant(int64(5))
	defer step.Destroy()
	eng.Set(counter, "step", step.Handle())

	call(t, eng, counter, "increment")
	if got := call(t, eng, counter, "increment").ToInt(); got != 10 {
		t.Errorf("count = %d, want 10", got)
	}
	call(t, eng, counter, "reset")
	count := core.VariantFromHandle(eng.Get(counter, "count"))
	defer count.Destroy()
	if count.ToInt() != 0 {
		t.Errorf("count after reset = %s", count)
	}
}
