// Package demo is a small plugin used by gdnrun and the examples. It
// registers two Go classes and one class backed by a WebAssembly module.
//
// calc.wasm is the module:
//
//	(module
//	  (global $total (mut i64) (i64.const 0))
//	  (func (export "add") (param i64 i64) (result i64)
//	    (i64.add (local.get 0) (local.get 1)))
//	  (func (export "mul") (param f64 f64) (result f64)
//	    (f64.mul (local.get 0) (local.get 1)))
//	  (func (export "get_total") (result i64) (global.get $total))
//	  (func (export "set_total") (param i64) (global.set $total (local.get 0)))
//	  (func (export "accumulate") (param i64) (result i64)
//	    (global.set $total (i64.add (global.get $total) (local.get 0)))
//	    (global.get $total))
//	  (func (export "div") (param i32 i32) (result i32)
//	    (i32.div_s (local.get 0) (local.get 1))))
package demo

import (
	"context"
	_ "embed"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/gdnative"
	"github.com/wippyai/gdnative/api"
	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/export"
	"github.com/wippyai/gdnative/export/hint"
	"github.com/wippyai/gdnative/object"
	"github.com/wippyai/gdnative/wasmclass"
)

//go:embed calc.wasm
var calcWasm []byte

// Classes lists the script classes Install registers.
var Classes = []string{"Counter", "Echo", "Calc"}

// Counter counts in steps.
type Counter struct {
	export.Extends[api.Reference]
	Count int64 `property:"count"`
	step  int64
}

func (c *Counter) Increment() int64 {
	c.Count += c.step
	return c.Count
}

func (c *Counter) Reset() { c.Count = 0 }

func (*Counter) Register(b *export.ClassBuilder[Counter]) {
	b.WithDoc("Counts in steps.")
	b.Fields()
	export.Constructor(b, func(object.TRef[api.Reference, object.Shared]) Counter {
		return Counter{step: 1}
	})
	b.Method("increment", (*Counter).Increment).WithDoc("Adds step to count.").Done()
	b.Method("reset", (*Counter).Reset).Done()
	export.Property[Counter, int64](b, "step").
		WithField(func(c *Counter) *int64 { return &c.step }).
		WithDefault(1).
		WithHint(hint.Range{Min: 1, Max: 100}).
		Done()
}

// Echo hands values back.
type Echo struct {
	export.Extends[api.Reference]
	calls int64
}

func (e *Echo) Echo(v core.Variant) core.Variant {
	e.calls++
	return v
}

func (e *Echo) Join(sep string, parts *export.Varargs) (string, error) {
	e.calls++
	var out []string
	for parts.Remaining() > 0 {
		s, err := export.Get[string](parts, "part")
		if err != nil {
			return "", err
		}
		out = append(out, s)
	}
	return strings.Join(out, sep), nil
}

func (e Echo) Calls() int64 { return e.calls }

func (*Echo) Register(b *export.ClassBuilder[Echo]) {
	b.Method("echo", (*Echo).Echo).WithArgs("value").Done()
	b.Method("join", (*Echo).Join).WithArgs("sep").Done()
	b.Method("calls", Echo.Calls).Done()
}

// Install sets the hooks of lib so that loading it registers the demo
// classes. The wasm runtime lives from init to terminate.
func Install(lib *gdnative.Library) {
	var (
		rt   *wasmclass.Runtime
		calc *wasmclass.Module
	)
	lib.OnInit(func(info *gdnative.InitInfo) {
		ctx := context.Background()
		var err error
		rt, err = wasmclass.NewRuntime(ctx, wasmclass.WithMemoryLimitPages(16))
		if err != nil {
			info.ReportLoadingError("wasm runtime: %v", err)
			return
		}
		calc, err = rt.Compile(ctx, "calc", calcWasm)
		if err != nil {
			info.ReportLoadingError("compile calc: %v", err)
		}
	})
	lib.OnScriptInit(func(h *export.InitHandle) {
		export.AddClass[Counter](h)
		export.AddClass[Echo](h)
		if calc == nil {
			return
		}
		err := wasmclass.Register(h, calc, "Calc", wasmclass.WithDoc("Arithmetic in WebAssembly."))
		if err != nil {
			lib.Logger().Error("cannot register Calc", zap.Error(err))
		}
	})
	lib.OnTerminate(func(*gdnative.TerminateInfo) {
		if rt == nil {
			return
		}
		if err := rt.Close(context.Background()); err != nil {
			lib.Logger().Warn("cannot close wasm runtime", zap.Error(err))
		}
		rt, calc = nil, nil
	})
}
