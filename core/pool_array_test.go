package core_test

import (
	"slices"
	"testing"

	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/geom"
)

func TestPoolArrayFromSlice(t *testing.T) {
	eng := setup(t)

	a := core.PoolArrayFromSlice([]int32{4, 5, 6})
	if got := a.ToSlice(); !slices.Equal(got, []int32{4, 5, 6}) {
		t.Fatalf("ToSlice = %v", got)
	}
	a.Push(7)
	if err := a.Insert(0, 3); err != nil {
		t.Fatal(err)
	}
	a.Remove(4)
	sum := int32(0)
	for _, v := range a.All() {
		sum += v
	}
	if sum != 3+4+5+6 {
		t.Fatalf("sum = %d", sum)
	}

	if err := a.Insert(99, 1); !errors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindOutOfBounds}) {
		t.Fatalf("Insert out of range = %v", err)
	}
	a.Destroy()
	checkNoLeaks(t, eng)
}

func TestPoolArrayCopyOnWrite(t *testing.T) {
	eng := setup(t)

	a := core.PoolArrayFromSlice([]geom.Vector2{geom.Vec2(1, 1), geom.Vec2(2, 2)})
	b := a.Clone()

	w := b.Write()
	w.Slice()[0] = geom.Vec2(9, 9)
	w.Close()

	if got := a.Get(0); got != geom.Vec2(1, 1) {
		t.Fatalf("write through a clone changed the source: %v", got)
	}
	if got := b.Get(0); got != geom.Vec2(9, 9) {
		t.Fatalf("clone = %v", got)
	}

	r := a.Read()
	if r.Len() != 2 {
		t.Fatalf("Read Len = %d", r.Len())
	}
	r.Close()
	r.Close()

	a.Destroy()
	b.Destroy()
	checkNoLeaks(t, eng)
}

func TestPoolArrayStrings(t *testing.T) {
	eng := setup(t)

	x, y := core.NewString("x"), core.NewString("y")
	a := core.PoolArrayFromSlice([]core.String{x, y})
	x.Destroy()
	y.Destroy()

	got := a.ToSlice()
	if len(got) != 2 || got[0].String() != "x" || got[1].String() != "y" {
		t.Fatalf("ToSlice = %v", got)
	}
	for _, s := range got {
		s.Destroy()
	}

	v := a.ToVariant()
	if v.Type() != core.TypePoolStringArray {
		t.Fatalf("variant type = %s", v.Type())
	}
	back, err := core.PoolArrayFromVariant[core.String](v)
	if err != nil || back.Len() != 2 {
		t.Fatalf("PoolArrayFromVariant = %v", err)
	}
	if _, err := core.PoolArrayFromVariant[byte](v); err == nil {
		t.Fatal("wrong element kind should fail")
	}

	v.Destroy()
	back.Destroy()
	a.Destroy()
	checkNoLeaks(t, eng)
}

func TestPoolArrayIndexPanics(t *testing.T) {
	setup(t)

	a := core.NewPoolArray[byte]()
	defer a.Destroy()

	tests := []struct {
		name string
		fn   func()
	}{
		{"get", func() { a.Get(0) }},
		{"set", func() { a.Set(-1, 1) }},
		{"remove", func() { a.Remove(3) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Fatal("expected a panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestCollectPoolArray(t *testing.T) {
	eng := setup(t)

	a := core.CollectPoolArray(slices.Values([]float32{0.5, 1.5}))
	a.Extend(slices.Values([]float32{2.5}))
	if got := a.ToSlice(); !slices.Equal(got, []float32{0.5, 1.5, 2.5}) {
		t.Fatalf("ToSlice = %v", got)
	}
	a.Destroy()
	checkNoLeaks(t, eng)
}
