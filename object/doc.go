// Package object holds references to engine objects.
//
// Engine classes are represented by wrapper structs (see package api) that
// embed their base class, so methods of every base are promoted:
//
//	node := object.Deref(ref).Get() // api.Node2D
//	node.SetPosition(geom.Vector2{X: 1})
//	node.SetName("player") // from api.Node
//
// A Ref is a persistent reference parameterised by class and ownership. The
// ownership marker decides what the holder may do:
//
//	Unique       Deref, Free (manual classes), IntoShared, IntoThreadLocal
//	ThreadLocal  Deref on the owning thread, Clone
//	Shared       AssumeSafe, Clone, variant conversion
//
// A TRef is a borrowed view valid for the current call. Method arguments and
// callback owners arrive as TRefs; Claim turns one into a Ref.
//
// Reference-counted classes (Reference and its subclasses) are released with
// Ref.Release. Manually managed classes live until freed with Free or
// queued for deletion.
package object
