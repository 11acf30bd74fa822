// Package headless is an in-process engine that implements the C-ABI
// function tables in Go.
//
// It exists so the bindings can be exercised without the real engine: the
// object database, reference counting, variant storage and operators,
// NativeScript class registration and instance attachment all behave the
// way the engine does for the classes it knows about.
//
//	eng := headless.New()
//	api, err := sys.Bind(eng.API())
//	if err != nil {
//		return err
//	}
//	sys.Install(api)
//	defer sys.Uninstall()
//
// # Classes
//
// The built-in catalog is small: Object, Reference, Resource, Script,
// NativeScript, GDNativeLibrary, Node, CanvasItem, Node2D and the Engine
// singleton. Each class has the handful of methods the bindings and their
// tests call through method binds.
//
// # Inspection
//
// Tests inspect engine state directly: RefCount, IsAlive and DestroyCount
// observe object lifetimes, LiveHandles reports leaked values, ScriptClasses
// lists what a library registered, and Logs returns everything printed
// through the engine.
//
// # Threads
//
// Like the real engine, an Engine does not serialize access to objects. Only
// the log buffer is safe for concurrent use.
package headless
