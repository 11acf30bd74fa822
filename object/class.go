package object

import (
	"reflect"
	"sync"

	"github.com/wippyai/gdnative/sys"
)

// Base holds the engine handle of a class wrapper. Every wrapper embeds it,
// directly or through its base class.
type Base struct {
	obj sys.Object
}

// Raw returns the engine handle.
func (b Base) Raw() sys.Object { return b.obj }

func (b *Base) bindObject(o sys.Object) { b.obj = o }

func (Base) sealedClass() {}

// Class is implemented by engine class wrappers. A wrapper is a struct that
// embeds its base class wrapper (Object at the root, which embeds Base) and
// declares its engine class name:
//
//	type Node struct{ Object }
//
//	func (Node) ClassName() string { return "Node" }
type Class interface {
	ClassName() string
	Raw() sys.Object
	sealedClass()
}

// ManuallyManaged is embedded by classes whose objects live until freed.
type ManuallyManaged struct{}

// Memory identifies the memory policy.
func (ManuallyManaged) Memory() ManuallyManaged { return ManuallyManaged{} }

// RefCounted is embedded by classes whose objects live while references
// exist. A class embedding RefCounted shadows the ManuallyManaged marker of
// its bases.
type RefCounted struct{}

func (RefCounted) Memory() RefCounted { return RefCounted{} }

// Manual is satisfied by manually managed classes.
type Manual interface {
	Class
	Memory() ManuallyManaged
}

// Counted is satisfied by reference-counted classes.
type Counted interface {
	Class
	Memory() RefCounted
}

// ClassName returns the engine class name of T.
func ClassName[T Class]() string {
	var t T
	return t.ClassName()
}

// IsRefCounted reports whether T is reference counted.
func IsRefCounted[T Class]() bool {
	var t T
	_, ok := any(t).(interface{ Memory() RefCounted })
	return ok
}

// Wrap returns a T bound to obj. The wrapper does not own the object.
func Wrap[T Class](obj sys.Object) T {
	var t T
	any(&t).(interface{ bindObject(sys.Object) }).bindObject(obj)
	return t
}

type typePair struct{ derived, base reflect.Type }

var embedCache sync.Map // typePair -> bool

// Inherits reports whether T is U or embeds it, directly or through its
// bases.
func Inherits[T, U Class]() bool {
	key := typePair{reflect.TypeFor[T](), reflect.TypeFor[U]()}
	if ok, hit := embedCache.Load(key); hit {
		return ok.(bool)
	}
	ok := embeds(key.derived, key.base)
	embedCache.Store(key, ok)
	return ok
}

func embeds(t, u reflect.Type) bool {
	if t == u {
		return true
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Anonymous && embeds(f.Type, u) {
			return true
		}
	}
	return false
}
