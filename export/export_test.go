package export_test

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/gdnative/api"
	"github.com/wippyai/gdnative/convert"
	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/export"
	"github.com/wippyai/gdnative/export/hint"
	"github.com/wippyai/gdnative/headless"
	"github.com/wippyai/gdnative/object"
	"github.com/wippyai/gdnative/sys"
)

const testHandle sys.Handle = 0x51

type fixture struct {
	eng  *headless.Engine
	init *export.InitHandle
	logs *observer.ObservedLogs

	mu     sync.Mutex
	fatals []string
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

	obs, logs := observer.New(zapcore.DebugLevel)
	export.SetLogger(zap.New(obs))

	f := &fixture{eng: eng, logs: logs}
	export.Setup(eng.Library(), func(msg string) {
		f.mu.Lock()
		f.fatals = append(f.fatals, msg)
		f.mu.Unlock()
	})
	f.init = export.NewInitHandle(testHandle, export.InitLevelUser)
	destroyed = 0

	t.Cleanup(func() {
		eng.TerminateScripts(testHandle)
		export.Cleanup()
		export.SetLogger(zap.NewNop())
		sys.Uninstall()
		eng.Close()
		runtime.UnlockOSThread()
	})
	return f
}

// call invokes method on obj the way a script would. The result is
// destroyed when the test ends.
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

func (f *fixture) instantiate(t *testing.T, class string) sys.Object {
	t.Helper()
	obj, err := f.eng.Instantiate(class)
	if err != nil {
		t.Fatalf("instantiate %s: %v", class, err)
	}
	return obj
}

func (f *fixture) fatalMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.fatals)
}

// logged returns the context of the single entry logged with msg.
func (f *fixture) logged(t *testing.T, msg string) map[string]any {
	t.Helper()
	entries := f.logs.FilterMessage(msg).All()
	if len(entries) != 1 {
		t.Fatalf("%d entries with message %q, logs: %v", len(entries), msg, f.logs.All())
	}
	return entries[0].ContextMap()
}

var destroyed int

type Counter struct {
	export.Extends[api.Node]
	Count int64  `property:"count"`
	Label string `property:"label,noeditor"`
	Note  string `property:"-"`
	speed float64
}

func (c *Counter) Increment(by int64) int64 {
	c.Count += by
	return c.Count
}

func (c Counter) Peek() int64 { return c.Count }

func (c *Counter) Describe(ctx context.Context, owner object.TRef[api.Node, object.Shared], prefix string) string {
	class, method, _ := export.MethodFromContext(ctx)
	return fmt.Sprintf("%s%s %s.%s", prefix, owner.Get().GetName(), class, method)
}

func (c *Counter) Sum(first int64, rest *export.Varargs) (int64, error) {
	total := first
	for rest.Remaining() > 0 {
		n, err := export.Get[int64](rest, "n")
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (c *Counter) Fail(msg string) error { return fmt.Errorf("failed: %s", msg) }

func (c *Counter) Explode() { panic("kaboom") }

func (c *Counter) FreeSelf(owner object.TRef[api.Node, object.Shared]) int64 {
	v, err := object.Call(owner.Raw(), "Object", "free")
	if err == nil {
		v.Destroy()
	}
	c.Count += 100
	return c.Count
}

func (c *Counter) Reenter(owner object.TRef[api.Node, object.Shared]) string {
	self := core.ObjectVariant(owner.Raw())
	defer self.Destroy()
	out, err := self.Call("peek")
	if err != nil {
		return err.Error()
	}
	defer out.Destroy()
	return out.Type().String()
}

func (c *Counter) OnDestroy() { destroyed++ }

func (*Counter) Register(b *export.ClassBuilder[Counter]) {
	b.WithDoc("Counts things.")
	b.Fields()
	export.Constructor(b, func(owner object.TRef[api.Node, object.Shared]) Counter {
		return Counter{Label: "new", speed: 1.5}
	})
	b.Method("increment", (*Counter).Increment).WithArgs("by").WithDefault(0, 1).WithDoc("Adds by.").Done()
	b.Method("peek", Counter.Peek).Done()
	b.Method("describe", (*Counter).Describe).WithArgs("prefix").Done()
	b.Method("sum", (*Counter).Sum).WithArgs("first").Done()
	b.Method("fail", (*Counter).Fail).Done()
	b.Method("explode", (*Counter).Explode).Done()
	b.Method("free_self", (*Counter).FreeSelf).Done()
	b.Method("reenter", (*Counter).Reenter).Done()
	b.Method("guarded", Counter.Peek).MainThread().WithRPCMode(sys.RPCRemote).Done()
	b.Method("timed", Counter.Peek).Profiled().Done()
	b.Method("tagged", Counter.Peek).ProfiledAs("peek_tag").Done()

	export.Property[Counter, float64](b, "speed").
		WithGetter(func(c *Counter) float64 { return c.speed }).
		WithSetter(func(c *Counter, v float64) { c.speed = v }).
		WithDefault(1.5).
		WithHint(hint.Range{Min: 0, Max: 10}).
		WithDoc("Units per second.").
		Done()
	export.Property[Counter, int64](b, "double").
		WithGetter(func(c *Counter) int64 { return 2 * c.Count }).
		Done()
	export.Property[Counter, int64](b, "reset_to").
		WithSetter(func(c *Counter, v int64) { c.Count = v }).
		Done()

	b.Signal("changed").
		WithParam("count", sys.VariantInt).
		WithParamDefault("source", "user").
		WithDoc("Emitted on change.").
		Done()
}

func TestMethodDispatch(t *testing.T) {
	f := setup(t)
	export.AddClass[Counter](f.init)
	obj := f.instantiate(t, "Counter")
	defer f.eng.Free(obj)
	f.set(obj, "name", "hero")

	tests := []struct {
		method string
		args   []any
		want   string
	}{
		{"increment", []any{int64(5)}, "5"},
		{"increment", nil, "6"},
		{"peek", nil, "6"},
		{"describe", []any{"> "}, "> hero Counter.describe"},
		{"sum", []any{int64(1), int64(2), int64(3)}, "6"},
		{"sum", []any{int64(4)}, "4"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			if got := f.call(t, obj, tt.method, tt.args...).String(); got != tt.want {
				t.Errorf("%s(%v) = %s, want %s", tt.method, tt.args, got, tt.want)
			}
		})
	}
	if errs := f.eng.Errors(); len(errs) != 0 {
		t.Errorf("engine errors: %v", errs)
	}
}

func TestProfiledMethods(t *testing.T) {
	f := setup(t)
	export.AddClass[Counter](f.init)
	obj := f.instantiate(t, "Counter")
	defer f.eng.Free(obj)

	for range 3 {
		f.call(t, obj, "timed")
	}
	f.call(t, obj, "tagged")
	f.call(t, obj, "peek")

	sigs := f.eng.ProfileSignatures()
	if len(sigs) != 2 {
		t.Fatalf("signatures = %v, want two", sigs)
	}
	want := map[string]int{"::Counter/timed": 3, "::peek_tag": 1}
	for _, sig := range sigs {
		parts := strings.Split(sig, "::")
		if len(parts) != 3 || !strings.HasSuffix(parts[0], "export_test.go") || parts[1] == "0" {
			t.Errorf("signature %q is not file::line::tag", sig)
			continue
		}
		n, ok := want["::"+parts[2]]
		if !ok {
			t.Errorf("unexpected signature %q", sig)
			continue
		}
		if got := len(f.eng.Profile(sig)); got != n {
			t.Errorf("%s has %d samples, want %d", sig, got, n)
		}
	}
}

func TestArgumentErrors(t *testing.T) {
	f := setup(t)
	export.AddClass[Counter](f.init)
	obj := f.instantiate(t, "Counter")
	defer f.eng.Free(obj)

	tests := []struct {
		name   string
		method string
		args   []any
		want   string
	}{
		{"missing", "describe", nil, "describe: missing argument 0 (prefix string)"},
		{"excess", "peek", []any{int64(1)}, "peek: got 1 arguments, want 0"},
		{"excess with default", "increment", []any{int64(1), int64(2)}, "increment: got 2 arguments, want 0 to 1"},
		{"invalid", "increment", []any{"lots"}, "increment: argument 0 (by int64)"},
		{"invalid vararg", "sum", []any{int64(1), "x"}, "sum: argument 1 (n int64)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.logs.TakeAll()
			if out := f.call(t, obj, tt.method, tt.args...); !out.IsNil() {
				t.Errorf("result = %s, want Nil", out)
			}
			ctx := f.logged(t, "invalid arguments")
			if msg, _ := ctx["error"].(string); !strings.Contains(msg, tt.want) {
				t.Errorf("error = %q, want it to contain %q", msg, tt.want)
			}
			if ctx["method"] != tt.method || ctx["class"] != "Counter" {
				t.Errorf("context = %v", ctx)
			}
		})
	}
	if got := f.call(t, obj, "peek").String(); got != "0" {
		t.Errorf("state changed by failed calls: %s", got)
	}
}

func TestArgumentErrorMessages(t *testing.T) {
	tests := []struct {
		err  export.ArgumentError
		want string
		kind errors.Kind
	}{
		{export.ArgumentError{Kind: export.ArgMissing, Method: "jump", Name: "height", GoType: "float64"}, "jump: missing argument 0 (height float64)", errors.KindArgumentCount},
		{export.ArgumentError{Kind: export.ArgMissing, Method: "sum", Got: 0, Min: 1, Max: -1}, "sum: got 0 arguments, want at least 1", errors.KindArgumentCount},
		{export.ArgumentError{Kind: export.ArgExcess, Method: "jump", Got: 3, Min: 0, Max: 1}, "jump: got 3 arguments, want 0 to 1", errors.KindArgumentCount},
		{export.ArgumentError{Kind: export.ArgExcess, Method: "peek", Got: 1}, "peek: got 1 arguments, want 0", errors.KindArgumentCount},
		{export.ArgumentError{Kind: export.ArgInvalid, Method: "move", Index: 2, GoType: "string"}, "move: argument 2 (arg2 string)", errors.KindTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.err.Error(); !strings.HasPrefix(got, tt.want) {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			err := &tt.err
			if !errors.Is(err, &errors.Error{Phase: errors.PhaseDispatch, Kind: tt.kind}) {
				t.Errorf("%v does not match kind %s", err, tt.kind)
			}
			if err.Unwrap() != nil || err.Path() != nil {
				t.Error("error without cause should not unwrap")
			}
		})
	}
}

func TestCallFailuresAreContained(t *testing.T) {
	f := setup(t)
	export.AddClass[Counter](f.init)
	obj := f.instantiate(t, "Counter")
	defer f.eng.Free(obj)

	if out := f.call(t, obj, "fail", "disk"); !out.IsNil() {
		t.Errorf("fail result = %s", out)
	}
	ctx := f.logged(t, "method returned an error")
	if ctx["error"] != "failed: disk" {
		t.Errorf("error = %v", ctx["error"])
	}

	if out := f.call(t, obj, "explode"); !out.IsNil() {
		t.Errorf("explode result = %s", out)
	}
	ctx = f.logged(t, "method panicked")
	if msg, _ := ctx["error"].(string); !strings.Contains(msg, "kaboom") {
		t.Errorf("panic error = %q", msg)
	}
	if len(f.fatalMessages()) != 0 {
		t.Errorf("user panics must not be fatal: %v", f.fatalMessages())
	}

	// The instance is still usable afterwards.
	if got := f.call(t, obj, "increment").String(); got != "1" {
		t.Errorf("increment after panic = %s", got)
	}
}

func TestReentrantCallWouldBlock(t *testing.T) {
	f := setup(t)
	export.AddClass[Counter](f.init)
	obj := f.instantiate(t, "Counter")
	defer f.eng.Free(obj)

	if got := f.call(t, obj, "reenter").String(); got != core.TypeNil.String() {
		t.Errorf("inner call result type = %s, want Nil", got)
	}
	ctx := f.logged(t, "cannot access instance")
	if msg, _ := ctx["error"].(string); !strings.Contains(msg, "already borrowed") {
		t.Errorf("error = %q", msg)
	}
}

func TestMainThreadOnly(t *testing.T) {
	f := setup(t)
	export.AddClass[Counter](f.init)
	obj := f.instantiate(t, "Counter")
	defer f.eng.Free(obj)

	if got := f.call(t, obj, "guarded").String(); got != "0" {
		t.Fatalf("guarded on main thread = %s", got)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		out, err := f.eng.Call(obj, "guarded")
		if err == nil {
			core.VariantFromHandle(out).Destroy()
		}
	}()
	wg.Wait()
	if got := f.fatalMessages(); len(got) != 1 || got[0] != "method called off the main thread" {
		t.Errorf("fatals = %v", got)
	}
}

func TestProperties(t *testing.T) {
	f := setup(t)
	export.AddClass[Counter](f.init)
	obj := f.instantiate(t, "Counter")
	defer f.eng.Free(obj)

	if got := f.get(t, obj, "label").String(); got != "new" {
		t.Errorf("label from constructor = %q", got)
	}
	f.set(obj, "count", int64(7))
	if got := f.call(t, obj, "peek").String(); got != "7" {
		t.Errorf("peek after set = %s", got)
	}
	if got := f.get(t, obj, "double").String(); got != "14" {
		t.Errorf("double = %s", got)
	}
	f.set(obj, "speed", 4.25)
	if got := f.get(t, obj, "speed").String(); got != "4.25" {
		t.Errorf("speed = %s", got)
	}

	f.set(obj, "count", "not a number")
	f.logged(t, "invalid arguments")
	if got := f.get(t, obj, "count").String(); got != "7" {
		t.Errorf("count after bad set = %s", got)
	}
}

func TestMissingAccessors(t *testing.T) {
	f := setup(t)
	export.AddClass[Counter](f.init)
	obj := f.instantiate(t, "Counter")
	defer f.eng.Free(obj)

	if v := f.get(t, obj, "reset_to"); !v.IsNil() {
		t.Errorf("write-only get = %s, want Nil", v)
	}
	ctx := f.logged(t, "property `reset_to` has no getter")
	if ctx["class"] != "Counter" {
		t.Errorf("context = %v", ctx)
	}

	f.set(obj, "double", int64(3))
	f.logged(t, "property `double` has no setter")

	f.set(obj, "reset_to", int64(9))
	if got := f.call(t, obj, "peek").String(); got != "9" {
		t.Errorf("peek after reset = %s", got)
	}
}

func TestClassMetadata(t *testing.T) {
	f := setup(t)
	export.AddClass[Counter](f.init)

	info, ok := f.eng.ScriptClass("Counter")
	if !ok {
		t.Fatal("Counter not registered")
	}
	if info.Base != "Node" || info.Doc != "Counts things." || info.Tool {
		t.Errorf("class = %+v", info)
	}
	if !export.CheckTag[Counter](info.TypeTag) || export.CheckTag[Reflected](info.TypeTag) {
		t.Errorf("type tag %#x not recognized", uintptr(info.TypeTag))
	}
	if export.CheckTag[Counter](0xabc) {
		t.Error("foreign tags must not match")
	}

	m, ok := info.Method("increment")
	if !ok || m.Doc != "Adds by." || len(m.Args) != 1 || m.Args[0].Name != "by" || m.Args[0].Type != sys.VariantInt {
		t.Errorf("increment = %+v", m)
	}
	if m, _ := info.Method("guarded"); m.RPC != sys.RPCRemote {
		t.Errorf("guarded rpc = %v", m.RPC)
	}

	props := []struct {
		path  string
		typ   sys.VariantType
		usage sys.PropertyUsage
		def   string
	}{
		{"count", sys.VariantInt, sys.UsageDefault, "0"},
		{"label", sys.VariantString, sys.UsageNoEditor, ""},
		{"speed", sys.VariantReal, sys.UsageDefault, "1.5"},
		{"double", sys.VariantInt, sys.UsageDefault, "0"},
	}
	for _, tt := range props {
		p, ok := info.Property(tt.path)
		if !ok {
			t.Errorf("property %s missing", tt.path)
			continue
		}
		if p.Type != tt.typ || p.Usage != tt.usage || p.Default != tt.def {
			t.Errorf("property %s = %+v", tt.path, p)
		}
	}
	if _, ok := info.Property("note"); ok {
		t.Error("fields tagged \"-\" must be skipped")
	}
	if p, _ := info.Property("speed"); p.Hint != sys.HintRange || p.HintString != "0,10" || p.Doc != "Units per second." {
		t.Errorf("speed = %+v", p)
	}

	s, ok := info.Signal("changed")
	if !ok || s.Doc != "Emitted on change." || len(s.Args) != 2 {
		t.Fatalf("signal = %+v", s)
	}
	if s.Args[0].Name != "count" || s.Args[0].Type != sys.VariantInt {
		t.Errorf("arg 0 = %+v", s.Args[0])
	}
	if s.Args[1].Name != "source" || s.Args[1].Type != sys.VariantString || s.Args[1].Default != "user" {
		t.Errorf("arg 1 = %+v", s.Args[1])
	}
}

type Reflected struct {
	export.Extends[api.Reference]
	hp int64
}

func (*Reflected) ClassName() string { return "Unit" }

func (r *Reflected) ApplyDamage(amount int64) int64 {
	r.hp -= amount
	return r.hp
}

func (r Reflected) HP() int64 { return r.hp }

func (r *Reflected) Register(b *export.ClassBuilder[Reflected]) { b.Methods() }

func TestReflectedMethods(t *testing.T) {
	f := setup(t)
	export.AddClass[Reflected](f.init)

	info, ok := f.eng.ScriptClass("Unit")
	if !ok {
		t.Fatalf("classes = %+v", f.eng.ScriptClasses())
	}
	if got := info.MethodNames(); !slices.Equal(got, []string{"apply_damage", "hp"}) {
		t.Errorf("methods = %v", got)
	}
	obj := f.instantiate(t, "Unit")
	defer f.eng.Release(obj)
	if got := f.call(t, obj, "apply_damage", int64(3)).String(); got != "-3" {
		t.Errorf("apply_damage = %s", got)
	}
	if got := f.call(t, obj, "hp").String(); got != "-3" {
		t.Errorf("hp = %s", got)
	}
	if name, ok := export.ClassName[Reflected](); !ok || name != "Unit" {
		t.Errorf("ClassName = %q, %v", name, ok)
	}
}

func TestDuplicateRegistration(t *testing.T) {
	f := setup(t)
	export.AddClass[Counter](f.init)
	export.AddClass[Counter](f.init)
	f.logged(t, "class is already registered")

	export.AddClassAs[Reflected](f.init, "Counter")
	ctx := f.logged(t, "ignoring class registration")
	if msg, _ := ctx["error"].(string); !strings.Contains(msg, string(errors.KindDuplicateClass)) {
		t.Errorf("error = %q", msg)
	}
	if export.IsRegistered[Reflected]() {
		t.Error("rejected class should not be registered")
	}
	if got := export.Registered(); !slices.Equal(got, []string{"Counter"}) {
		t.Errorf("Registered = %v", got)
	}
	if n := len(f.eng.ScriptClasses()); n != 1 {
		t.Errorf("%d script classes", n)
	}
}

func TestUnknownBaseIsRejected(t *testing.T) {
	f := setup(t)
	err := export.AddDynamicClass(f.init, export.DynamicClass{
		Name: "Orphan",
		Base: "Missing",
		New:  func(sys.Object) (any, error) { return nil, nil },
	})
	if !errors.Is(err, &errors.Error{Phase: errors.PhaseRegister, Kind: errors.KindUnknownBase}) {
		t.Fatalf("err = %v", err)
	}
	if got := export.Registered(); len(got) != 0 {
		t.Errorf("Registered = %v", got)
	}
	if _, ok := f.eng.ScriptClass("Orphan"); ok {
		t.Error("engine received a class with an unknown base")
	}
	if errs := f.eng.Errors(); len(errs) != 0 {
		t.Errorf("engine errors: %v", errs)
	}
}

func TestAutoRegistration(t *testing.T) {
	f := setup(t)
	export.AutoRegister[Counter]()
	export.AutoRegister[Reflected]()

	export.RegisterAuto(export.NewInitHandle(testHandle, export.InitLevelAuto))
	if got := export.MissingManualRegistration(); !slices.Equal(got, []string{"Counter", "Unit"}) {
		t.Errorf("missing manual = %v", got)
	}
	export.AddClass[Counter](f.init)
	if got := export.MissingManualRegistration(); !slices.Equal(got, []string{"Unit"}) {
		t.Errorf("missing manual after AddClass = %v", got)
	}
	if f.logs.FilterMessage("class is already registered").Len() != 0 {
		t.Error("manual registration after auto should be silent")
	}
	if n := len(f.eng.ScriptClasses()); n != 2 {
		t.Errorf("%d script classes", n)
	}
}

func TestDestroy(t *testing.T) {
	f := setup(t)
	export.AddClass[Counter](f.init)

	obj := f.instantiate(t, "Counter")
	f.eng.Free(obj)
	if destroyed != 1 {
		t.Errorf("destroyed = %d after free", destroyed)
	}

	obj = f.instantiate(t, "Counter")
	if got := f.call(t, obj, "free_self").String(); got != "100" {
		t.Errorf("free_self = %s", got)
	}
	if f.eng.IsAlive(obj) {
		t.Error("object survived free")
	}
	if destroyed != 2 {
		t.Errorf("destroyed = %d after free during call", destroyed)
	}
}

func TestInstances(t *testing.T) {
	f := setup(t)
	export.AddClass[Counter](f.init)

	if _, err := export.NewInstance[Reflected](); !errors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindNotFound}) {
		t.Errorf("NewInstance of unregistered class: %v", err)
	}

	inst, err := export.NewInstance[Counter]()
	if err != nil {
		t.Fatal(err)
	}
	err = export.Deref(inst).Map(func(c *Counter, _ object.TRef[api.Object, object.Unique]) {
		if c.Label != "new" {
			t.Errorf("label = %q", c.Label)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	export.Free(inst)
	if destroyed != 1 {
		t.Errorf("destroyed = %d", destroyed)
	}

	inst, err = export.Emplace(Counter{Count: 41, Label: "placed"})
	if err != nil {
		t.Fatal(err)
	}
	obj := inst.Owner().Raw()
	if f.eng.ScriptClassOf(obj) != "Counter" {
		t.Fatalf("script class = %q", f.eng.ScriptClassOf(obj))
	}
	if got := f.call(t, obj, "increment").String(); got != "42" {
		t.Errorf("increment on emplaced = %s", got)
	}
	err = export.Deref(inst).MapMut(func(c *Counter, owner object.TRef[api.Object, object.Unique]) {
		if c.Label != "placed" || owner.Raw() != obj {
			t.Errorf("label = %q, owner = %#x", c.Label, uintptr(owner.Raw()))
		}
		c.Count = 1
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := f.get(t, obj, "count").String(); got != "1" {
		t.Errorf("count = %s", got)
	}

	node := export.IntoBase[api.Node](inst)
	if object.Deref(node).Get().GetChildCount() != 0 {
		t.Error("fresh node has children")
	}
	shared := export.IntoShared(inst)
	v := shared.ToVariant()
	defer v.Destroy()
	var back export.Instance[Counter, object.Shared]
	if err := back.FromVariant(v); err != nil {
		t.Fatal(err)
	}
	if back.Owner().Raw() != obj {
		t.Error("decoded instance has another owner")
	}

	plain := f.instantiate(t, "Node")
	defer f.eng.Free(plain)
	if _, ok := export.TryFromBase[Counter](object.FromSys[api.Node, object.Shared](plain)); ok {
		t.Error("plain node has no Counter script")
	}
	pv := core.ObjectVariant(plain)
	defer pv.Destroy()
	if err := back.FromVariant(pv); err == nil {
		t.Error("decoding a plain node should fail")
	}
	export.Free(shared)
}

func TestDynamicClass(t *testing.T) {
	f := setup(t)
	freed := 0
	err := export.AddDynamicClass(f.init, export.DynamicClass{
		Name: "Accumulator",
		Doc:  "Adds numbers.",
		New: func(sys.Object) (any, error) {
			total := int64(0)
			return &total, nil
		},
		Destroy: func(any) { freed++ },
		Methods: []export.DynamicMethod{{
			Name: "add",
			Args: []sys.MethodArgument{{Name: "n", Type: sys.VariantInt}},
			Call: func(_ context.Context, state any, args *export.Varargs) (core.Variant, error) {
				n, err := export.Get[int64](args, "n")
				if err != nil {
					return core.Variant{}, err
				}
				if err := args.Done(); err != nil {
					return core.Variant{}, err
				}
				total := state.(*int64)
				*total += n
				return core.IntVariant(*total), nil
			},
		}},
		Properties: []export.DynamicProperty{{
			Name: "total",
			Type: sys.VariantInt,
			Get: func(state any) (core.Variant, error) {
				return core.IntVariant(*state.(*int64)), nil
			},
		}},
		Signals: []export.DynamicSignal{{Name: "overflow"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := export.AddDynamicClass(f.init, export.DynamicClass{Name: "Accumulator", New: func(sys.Object) (any, error) { return nil, nil }}); !errors.Is(err, &errors.Error{Phase: errors.PhaseRegister, Kind: errors.KindDuplicateClass}) {
		t.Errorf("duplicate dynamic class: %v", err)
	}

	info, ok := f.eng.ScriptClass("Accumulator")
	if !ok || info.Base != "Reference" || info.Doc != "Adds numbers." {
		t.Fatalf("info = %+v", info)
	}
	if _, ok := info.Signal("overflow"); !ok {
		t.Error("signal missing")
	}

	obj := f.instantiate(t, "Accumulator")
	f.call(t, obj, "add", int64(2))
	if got := f.call(t, obj, "add", int64(5)).String(); got != "7" {
		t.Errorf("add = %s", got)
	}
	if got := f.get(t, obj, "total").String(); got != "7" {
		t.Errorf("total = %s", got)
	}
	f.call(t, obj, "add", int64(1), int64(2))
	f.logged(t, "invalid arguments")

	f.set(obj, "total", int64(0))
	f.logged(t, "property `total` has no setter")

	f.eng.Release(obj)
	if freed != 1 {
		t.Errorf("freed = %d", freed)
	}
}

func TestVarargs(t *testing.T) {
	setup(t)
	args := []core.Variant{core.IntVariant(1), core.StringVariant("two"), core.FloatVariant(3.5)}
	defer core.DestroyAll(args)
	a := export.NewVarargs("mix", args)

	if err := a.CheckLength(1, 3); err != nil {
		t.Errorf("CheckLength(1, 3) = %v", err)
	}
	var aerr *export.ArgumentError
	if err := a.CheckLength(4, -1); !errors.As(err, &aerr) || aerr.Kind != export.ArgMissing {
		t.Errorf("CheckLength(4, -1) = %v", err)
	}
	if err := a.CheckLength(0, 2); !errors.As(err, &aerr) || aerr.Kind != export.ArgExcess {
		t.Errorf("CheckLength(0, 2) = %v", err)
	}

	if n, err := export.Get[int64](a, "n"); err != nil || n != 1 {
		t.Errorf("Get n = %d, %v", n, err)
	}
	if _, err := export.Get[int64](a, "s"); !errors.As(err, &aerr) || aerr.Kind != export.ArgInvalid || aerr.Index != 1 {
		t.Errorf("Get string as int = %v", err)
	}
	if s, err := export.Get[string](a, "s"); err != nil || s != "two" {
		t.Errorf("Get s = %q, %v", s, err)
	}
	if err := a.Done(); err == nil {
		t.Error("Done with an unread argument")
	}
	if fv, ok, err := export.GetOpt[float64](a, "f"); err != nil || !ok || fv != 3.5 {
		t.Errorf("GetOpt f = %v, %v, %v", fv, ok, err)
	}
	if _, ok, err := export.GetOpt[float64](a, "g"); ok || err != nil {
		t.Errorf("GetOpt past the end = %v, %v", ok, err)
	}
	if err := a.Done(); err != nil {
		t.Errorf("Done = %v", err)
	}
	if _, err := export.Get[int64](a, "z"); !errors.As(err, &aerr) || aerr.Kind != export.ArgMissing || aerr.Index != 3 {
		t.Errorf("Get past the end = %v", err)
	}
	if a.At(7).Handle() != 0 || a.Len() != 3 || a.Remaining() != 0 {
		t.Error("bounds")
	}
}

type bad struct {
	export.Extends[api.Node]
}

func TestInvalidSignatures(t *testing.T) {
	f := setup(t)
	export.AddClass[bad](f.init, func(b *export.ClassBuilder[bad]) {
		b.Method("not_func", 42).Done()
		b.Method("wrong_receiver", func(c *Counter) {}).Done()
		b.Method("too_many", func(c bad) (int, int, error) { return 0, 0, nil }).Done()
		b.Method("varargs_first", func(c bad, a *export.Varargs, n int) {}).Done()
		b.Method("bad_default", func(c bad, n int) {}).WithDefault(0, "x").Done()
		b.Method("ok", func(c bad) {}).Done()
	})
	info, _ := f.eng.ScriptClass("bad")
	if got := info.MethodNames(); !slices.Equal(got, []string{"ok"}) {
		t.Errorf("methods = %v", got)
	}
	if n := f.logs.FilterMessage("ignoring method registration").Len(); n != 5 {
		t.Errorf("%d rejected methods, logs: %v", n, f.logs.All())
	}
}
