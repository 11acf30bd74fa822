package export

import (
	"testing"

	"github.com/wippyai/gdnative/api"
	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/headless"
	"github.com/wippyai/gdnative/sys"
	"github.com/wippyai/gdnative/userdata"
)

type pinned struct {
	Extends[api.Reference]
}

func newPinnedDef(t *testing.T) *classDef[pinned] {
	t.Helper()
	eng := headless.New(headless.WithoutNativeScript11())
	bound, err := sys.Bind(eng.API())
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	sys.Install(bound)
	t.Cleanup(func() {
		sys.Uninstall()
		_ = eng.Close()
	})
	factory, err := userdata.FactoryFor[pinned](userdata.PolicyMutex)
	if err != nil {
		t.Fatal(err)
	}
	return &classDef[pinned]{name: "Pinned", policy: userdata.PolicyMutex, factory: factory}
}

func TestEnterHoldsInstanceThroughDestroy(t *testing.T) {
	def := newPinnedDef(t)
	ud := def.create(0)

	inst, leave := def.enter(0, ud)
	def.destroy(0, ud)
	if !inst.dying.Load() {
		t.Fatal("destroy during a call was not deferred")
	}
	if _, ok := handles.GetKind(slot(ud), kindInstance); !ok {
		t.Fatal("slot removed while the call was running")
	}
	leave()
	if _, ok := handles.GetKind(slot(ud), kindInstance); ok {
		t.Fatal("slot kept after the last call left")
	}
}

func TestEnterFinishedInstanceIsPlumbing(t *testing.T) {
	def := newPinnedDef(t)
	ud := def.create(0)
	def.destroy(0, ud)

	defer func() {
		err, _ := recover().(*errors.Error)
		if err == nil || err.Kind != errors.KindPlumbing {
			t.Fatalf("recovered %v, want a plumbing error", err)
		}
		if _, err := handles.Remove(slot(ud)); err == nil {
			t.Error("failed enter left a live slot")
		}
	}()
	def.enter(0, ud)
	t.Fatal("enter on a destroyed instance returned")
}
