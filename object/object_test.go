package object_test

import (
	"runtime"
	"testing"

	"github.com/wippyai/gdnative/api"
	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/geom"
	"github.com/wippyai/gdnative/headless"
	"github.com/wippyai/gdnative/object"
	"github.com/wippyai/gdnative/sys"
)

func setup(t *testing.T) *headless.Engine {
	t.Helper()
	eng := headless.New()
	bound, err := sys.Bind(eng.API())
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	sys.Install(bound)
	t.Cleanup(func() {
		sys.Uninstall()
		_ = eng.Close()
	})
	return eng
}

func expectPanic(t *testing.T, phase errors.Phase, kind errors.Kind, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		err, ok := r.(error)
		if !ok {
			t.Fatalf("panic value %v is not an error", r)
		}
		want := &errors.Error{Phase: phase, Kind: kind}
		if !errors.Is(err, want) {
			t.Fatalf("panic %v, want %s/%s", err, phase, kind)
		}
	}()
	fn()
}

func TestMemoryMarkers(t *testing.T) {
	tests := []struct {
		name    string
		counted bool
		class   string
	}{
		{"Object", object.IsRefCounted[api.Object](), object.ClassName[api.Object]()},
		{"Reference", object.IsRefCounted[api.Reference](), object.ClassName[api.Reference]()},
		{"Resource", object.IsRefCounted[api.Resource](), object.ClassName[api.Resource]()},
		{"NativeScript", object.IsRefCounted[api.NativeScript](), object.ClassName[api.NativeScript]()},
		{"Node", object.IsRefCounted[api.Node](), object.ClassName[api.Node]()},
		{"Node2D", object.IsRefCounted[api.Node2D](), object.ClassName[api.Node2D]()},
	}
	wantCounted := map[string]bool{"Reference": true, "Resource": true, "NativeScript": true}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.counted != wantCounted[tt.name] {
				t.Errorf("IsRefCounted = %v", tt.counted)
			}
			if tt.class != tt.name {
				t.Errorf("ClassName = %q", tt.class)
			}
		})
	}
}

func TestInherits(t *testing.T) {
	if !object.Inherits[api.Node2D, api.Object]() {
		t.Error("Node2D should inherit Object")
	}
	if !object.Inherits[api.Node2D, api.Node]() {
		t.Error("Node2D should inherit Node")
	}
	if !object.Inherits[api.Node, api.Node]() {
		t.Error("Node should inherit itself")
	}
	if object.Inherits[api.Node, api.Node2D]() {
		t.Error("Node must not inherit Node2D")
	}
	if object.Inherits[api.Resource, api.Node]() {
		t.Error("Resource must not inherit Node")
	}
}

func TestRefCountDrop(t *testing.T) {
	eng := setup(t)

	r := object.New[api.Reference]()
	obj := r.Raw()
	id := eng.InstanceID(obj)
	if got := eng.RefCount(obj); got != 1 {
		t.Fatalf("refcount after New = %d, want 1", got)
	}

	shared := object.IntoShared(r)
	c1 := object.Clone(shared)
	c2 := object.Clone(shared)
	if got := object.AssumeSafe(shared).Get().GetReferenceCount(); got != 3 {
		t.Fatalf("engine count = %d, want 3", got)
	}

	c1.Release()
	c1.Release()
	if !c1.IsNil() {
		t.Error("released ref should be nil")
	}
	c2.Release()
	if eng.DestroyCount(id) != 0 {
		t.Fatal("destroyed while a reference remains")
	}
	shared.Release()
	if got := eng.DestroyCount(id); got != 1 {
		t.Fatalf("destroy count = %d, want 1", got)
	}
	if eng.IsAlive(obj) {
		t.Error("object alive after last release")
	}
}

func TestManualObjects(t *testing.T) {
	eng := setup(t)

	r := object.New[api.Node]()
	obj := r.Raw()
	if r.IsRefCounted() {
		t.Fatal("Node ref should not count")
	}
	node := object.Deref(r).Get()
	node.SetName("player")
	if got := node.GetName(); got != "player" {
		t.Errorf("name = %q", got)
	}

	shared := object.IntoShared(r)
	if !object.IsInstanceSane(shared) {
		t.Fatal("live node reported insane")
	}
	object.AssumeFree(shared)
	if eng.IsAlive(obj) {
		t.Fatal("node alive after free")
	}
	if object.IsInstanceSane(shared) {
		t.Error("freed node reported sane")
	}
	if _, ok := object.AssumeSafeIfSane(shared); ok {
		t.Error("AssumeSafeIfSane on freed node")
	}
}

func TestFreeCountedPanics(t *testing.T) {
	setup(t)

	res := object.New[api.Resource]()
	defer res.Release()
	base := object.Upcast[api.Object](res)
	if !base.IsRefCounted() {
		t.Fatal("upcast lost the reference count")
	}
	expectPanic(t, errors.PhaseRuntime, errors.KindUnsupported, func() {
		object.Free(base)
	})
}

func TestNewUnknownClass(t *testing.T) {
	setup(t)

	if _, err := object.TryNew[api.CanvasItem](); !errors.Is(err, &errors.Error{Phase: errors.PhaseEngine, Kind: errors.KindNotFound}) {
		t.Fatalf("TryNew(CanvasItem) err = %v", err)
	}
	expectPanic(t, errors.PhaseEngine, errors.KindNotFound, func() {
		object.New[api.Script]()
	})
}

func TestByClassName(t *testing.T) {
	eng := setup(t)

	r, ok := object.ByClassName[api.Node]("Node2D")
	if !ok {
		t.Fatal("ByClassName(Node2D) as Node failed")
	}
	if got := object.ClassOf(r.Raw()); got != "Node2D" {
		t.Errorf("class = %q", got)
	}
	object.Free(r)

	before := eng.LiveObjects()
	if _, ok := object.ByClassName[api.Node]("Resource"); ok {
		t.Fatal("Resource constructed as Node")
	}
	if eng.LiveObjects() != before {
		t.Error("rejected object leaked")
	}
	if _, ok := object.ByClassName[api.Node]("NoSuchClass"); ok {
		t.Fatal("unknown class constructed")
	}
}

func TestCasts(t *testing.T) {
	setup(t)

	r := object.New[api.Node2D]()
	base := object.Upcast[api.Node](r)
	if base.Raw() != r.Raw() {
		t.Fatal("upcast changed the object")
	}

	if _, ok := object.Cast[api.Resource](base); ok {
		t.Error("node cast to Resource")
	}
	back, ok := object.Cast[api.Node2D](base)
	if !ok {
		t.Fatal("downcast to Node2D failed")
	}
	object.Deref(back).Get().SetPosition(geom.Vector2{X: 3, Y: 4})
	if got := object.Deref(back).Get().GetPosition(); got != (geom.Vector2{X: 3, Y: 4}) {
		t.Errorf("position = %v", got)
	}

	view := object.As[api.CanvasItem](object.Deref(back))
	if !view.Get().IsVisible() {
		t.Error("new canvas item should be visible")
	}
	if _, ok := object.TryAs[api.Resource](view); ok {
		t.Error("TryAs Resource succeeded")
	}
	expectPanic(t, errors.PhaseRuntime, errors.KindTypeMismatch, func() {
		object.Upcast[api.Node2D](base)
	})
	object.Free(back)
}

func TestVariantRoundTrip(t *testing.T) {
	eng := setup(t)

	r := object.IntoShared(object.New[api.Resource]())
	obj := r.Raw()

	v := r.ToVariant()
	if eng.RefCount(obj) != 2 {
		t.Fatalf("variant should hold a count, have %d", eng.RefCount(obj))
	}

	var back object.Ref[api.Reference, object.Shared]
	if err := back.FromVariant(v); err != nil {
		t.Fatalf("FromVariant: %v", err)
	}
	v.Destroy()
	if back.Raw() != obj || eng.RefCount(obj) != 2 {
		t.Fatalf("decoded %v with count %d", back, eng.RefCount(obj))
	}

	var unique object.Ref[api.Reference, object.Unique]
	uv := r.ToVariant()
	if err := unique.FromVariant(uv); err == nil {
		t.Error("decoded a Unique reference")
	}
	uv.Destroy()

	node := object.IntoShared(object.New[api.Node]())
	nv := node.ToVariant()
	_, err := object.RefFromVariant[api.Resource](nv)
	if !errors.Is(err, &errors.Error{Phase: errors.PhaseConvert, Kind: errors.KindTypeMismatch}) {
		t.Errorf("node as Resource err = %v", err)
	}
	nv.Destroy()
	object.AssumeFree(node)

	nilVar := core.NilVariant()
	defer nilVar.Destroy()
	_, err = object.RefFromVariant[api.Object](nilVar)
	if !errors.Is(err, &errors.Error{Phase: errors.PhaseConvert, Kind: errors.KindNilValue}) {
		t.Errorf("nil err = %v", err)
	}

	back.Release()
	r.Release()
	if eng.IsAlive(obj) {
		t.Error("resource leaked")
	}
}

func TestInstanceID(t *testing.T) {
	eng := setup(t)

	r := object.New[api.Node]()
	id := r.InstanceID()
	if uint64(id) != eng.InstanceID(r.Raw()) {
		t.Fatalf("id = %v, engine says %d", id, eng.InstanceID(r.Raw()))
	}

	got, ok := object.FromInstanceID[api.Node](id)
	if !ok || got.Raw() != r.Raw() {
		t.Fatal("FromInstanceID lost the node")
	}
	if _, ok := object.FromInstanceID[api.Node2D](id); ok {
		t.Error("Node resolved as Node2D")
	}
	if _, ok := object.TryFromInstanceID[api.Object](id); !ok {
		t.Error("TryFromInstanceID failed")
	}

	object.Free(r)
	if _, ok := object.FromInstanceID[api.Node](id); ok {
		t.Error("dead node resolved")
	}
}

func TestThreadLocal(t *testing.T) {
	setup(t)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	r := object.IntoThreadLocal(object.New[api.Reference]())
	c := object.Clone(r)
	if got := object.Deref(c).Get().GetReferenceCount(); got != 2 {
		t.Fatalf("count = %d", got)
	}

	done := make(chan any)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer func() { done <- recover() }()
		object.Deref(c)
	}()
	p := <-done
	err, ok := p.(error)
	if !ok || !errors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindWrongThread}) {
		t.Fatalf("off-thread deref panic = %v", p)
	}

	c.Release()
	r.Release()
}

func TestClaim(t *testing.T) {
	eng := setup(t)

	r := object.New[api.Resource]()
	obj := r.Raw()
	borrowed := object.Borrow[api.Resource, object.Shared](obj)
	claimed := object.Claim(borrowed)
	if eng.RefCount(obj) != 2 {
		t.Fatalf("count after claim = %d", eng.RefCount(obj))
	}
	claimed.Release()
	r.Release()
	if eng.IsAlive(obj) {
		t.Error("resource leaked")
	}
}
