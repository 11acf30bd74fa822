// Package wasmclass exposes WebAssembly modules as script classes.
//
// Each exported function of a guest module with numeric parameters and at
// most one numeric result becomes a method. A pair of exports get_NAME and
// set_NAME becomes the property NAME; a getter alone is read-only. Exports
// starting with an underscore are skipped. Every script instance runs its
// own instance of the module, so guest globals and memory are per object.
//
//	rt, _ := wasmclass.NewRuntime(ctx)
//	mod, _ := rt.Compile(ctx, "calc", wasmBytes)
//	err := wasmclass.Register(handle, mod, "Calc")
//
// Guests may import the host module "gdnative":
//
//	(import "gdnative" "print" (func (param i32 i32)))
//
// print logs the UTF-8 text at the given offset and length of the guest's
// exported memory.
package wasmclass

import (
	"context"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/gdnative/errors"
)

// HostModule is the import module name of the host functions.
const HostModule = "gdnative"

var hostFuncs = map[string]bool{"print": true}

// Runtime compiles guest modules and hosts their instances. It wraps one
// wazero runtime.
type Runtime struct {
	rt      wazero.Runtime
	timeout time.Duration
}

type runtimeConfig struct {
	memoryLimitPages uint32
	callTimeout      time.Duration
}

// Option configures a Runtime.
type Option func(*runtimeConfig)

// WithMemoryLimitPages caps the memory of each guest instance, in 64KiB
// pages.
func WithMemoryLimitPages(pages uint32) Option {
	return func(c *runtimeConfig) { c.memoryLimitPages = pages }
}

// WithCallTimeout aborts guest calls running longer than d. An aborted
// call closes its guest instance; later calls on that object fail.
func WithCallTimeout(d time.Duration) Option {
	return func(c *runtimeConfig) { c.callTimeout = d }
}

// NewRuntime creates a runtime with the host module instantiated.
func NewRuntime(ctx context.Context, opts ...Option) (*Runtime, error) {
	var cfg runtimeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.memoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.memoryLimitPages)
	}
	if cfg.callTimeout > 0 {
		runtimeCfg = runtimeCfg.WithCloseOnContextDone(true)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	_, err := rt.NewHostModuleBuilder(HostModule).
		NewFunctionBuilder().
		WithFunc(hostPrint).
		WithParameterNames("ptr", "len").
		Export("print").
		Instantiate(ctx)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidOp, err, "instantiate host module")
	}
	return &Runtime{rt: rt, timeout: cfg.callTimeout}, nil
}

// Close releases the runtime and every guest instance it still hosts.
func (r *Runtime) Close(ctx context.Context) error {
	return r.rt.Close(ctx)
}

func (r *Runtime) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func hostPrint(_ context.Context, m api.Module, ptr, size uint32) {
	mem := m.Memory()
	if mem == nil {
		Logger().Error("guest printed without an exported memory")
		return
	}
	b, ok := mem.Read(ptr, size)
	if !ok {
		Logger().Error("guest print out of memory bounds",
			zap.Uint32("ptr", ptr),
			zap.Uint32("len", size),
			zap.Uint32("memory", mem.Size()))
		return
	}
	Logger().Info(string(b), zap.String("source", "guest"))
}
