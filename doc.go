// Package gdnative is a safe Go binding layer over the engine's GDNative
// plugin interface.
//
// A plugin is a shared library the engine loads and drives through a fixed
// set of C entry points. This module keeps the C surface to a thin
// generated shim and does everything else in Go: binding the engine's
// function tables, converting values, tracking object ownership and
// dispatching engine calls into Go methods.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	gdnative/            Root package with the Library lifecycle endpoints
//	├── sys/             Engine ABI shape: handles, function tables, Bind
//	├── core/            Engine value types, Variant, containers
//	├── geom/            Vector, transform, color and scalar math
//	├── convert/         Go value <-> Variant conversion with derive
//	├── object/          Object references and the ownership typestate
//	├── ownership/       Ownership and memory markers
//	├── api/             Hand-written engine classes (Object, Node, ...)
//	├── userdata/        Storage policies for script instance state
//	├── export/          Class registry, builders and call dispatch
//	├── gdlog/           zap core printing through the engine
//	├── profiler/        Timings for the engine's built-in profiler
//	├── wasmclass/       Script classes backed by WebAssembly modules
//	├── resource/        Handle table for opaque callback data
//	├── headless/        In-process engine for tests and tools
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Declare a class and register it from the script init hook:
//
//	type Greeter struct {
//		export.Extends[api.Reference]
//		Name string `property:"name"`
//	}
//
//	func (g *Greeter) Greet() string { return "hello " + g.Name }
//
//	var lib = gdnative.New(gdnative.WithAutoRegistration(false))
//
//	func init() {
//		lib.OnScriptInit(func(h *export.InitHandle) {
//			export.AddClass[Greeter](h)
//		})
//	}
//
// The generated shim forwards each engine entry point to the matching
// Library method:
//
//	godot_gdnative_init           -> Library.Load
//	godot_gdnative_terminate      -> Library.Unload
//	godot_nativescript_init       -> Library.ScriptInit
//	godot_nativescript_terminate  -> Library.ScriptTerminate
//	godot_nativescript_frame      -> Library.Frame
//	godot_nativescript_thread_*   -> Library.ThreadEnter / ThreadExit
//
// # Ownership
//
// Engine objects are referenced through object.Ref[T, O], where O is one of
// the markers Unique, Shared or ThreadLocal. Operations that are only sound
// for some markers are only defined for them, so freeing a shared manually
// managed object or calling methods through an unverified shared reference
// does not compile. See package object.
//
// # Thread Safety
//
// The engine tables are bound once during Load and read lock-free. The
// class registry is written during script init and terminate only. Script
// instance state is guarded by its storage policy, which never blocks: a
// conflicting access fails with a WouldBlock storage error.
//
// # Error Handling
//
// Errors are *errors.Error values with a phase and kind. Use errors.Is with a
// template to match them:
//
//	if errors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindVersionMismatch}) {
//		// engine too old
//	}
//
// Panics never cross an entry point. Each endpoint and every engine
// callback recovers, logs through the engine and returns.
package gdnative
