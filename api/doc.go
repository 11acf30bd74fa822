// Package api contains wrappers for the engine classes the bindings rely on.
//
// Each wrapper embeds its base class, so a Node2D value has the methods of
// CanvasItem, Node and Object:
//
//	Object
//	├── Reference (reference counted)
//	│   └── Resource
//	│       ├── Script
//	│       │   └── NativeScript
//	│       └── GDNativeLibrary
//	├── Node
//	│   └── CanvasItem
//	│       └── Node2D
//	└── Engine (singleton "_Engine")
//
// Wrappers are obtained from object.Ref and object.TRef values; method calls
// go through cached engine method binds. Arguments passed as core.Variant
// are borrowed and variant results are owned by the caller.
package api
