package core_test

import (
	"testing"

	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/errors"
)

func TestDictionary(t *testing.T) {
	eng := setup(t)

	d := core.NewDictionary()
	m := core.MutDictionary(d)
	for i, k := range []string{"b", "a", "c"} {
		kv, vv := core.StringVariant(k), core.IntVariant(int64(i))
		m.Insert(kv, vv)
		kv.Destroy()
		vv.Destroy()
	}

	if d.Len() != 3 {
		t.Fatalf("Len = %d", d.Len())
	}
	key := core.StringVariant("a")
	v, ok := d.Get(key)
	if !ok || v.ToInt() != 1 {
		t.Fatalf("Get(a) = %s, %v", v, ok)
	}
	v.Destroy()

	var order []string
	for k, v := range d.All() {
		order = append(order, k.String()+"="+v.String())
	}
	if got := len(order); got != 3 || order[0] != "b=0" || order[2] != "c=2" {
		t.Fatalf("iteration order = %v", order)
	}
	if got := d.ToJSON(); got != `{"b":0,"a":1,"c":2}` {
		t.Fatalf("ToJSON = %s", got)
	}

	if !m.Erase(key) || d.Has(key) {
		t.Fatal("Erase did not remove the key")
	}
	if m.Erase(key) {
		t.Fatal("second Erase should report false")
	}
	key.Destroy()

	missing := core.StringVariant("zzz")
	nilv := d.GetOrNil(missing)
	if !nilv.IsNil() {
		t.Fatalf("GetOrNil = %s", nilv)
	}
	nilv.Destroy()
	missing.Destroy()

	d.Destroy()
	checkNoLeaks(t, eng)
}

func TestDictionarySharing(t *testing.T) {
	eng := setup(t)

	shared := core.DictionaryIntoShared(core.NewDictionary())
	other := core.CloneDictionary(shared)

	k, v := core.IntVariant(1), core.BoolVariant(true)
	shared.AssumeMut().Insert(k, v)
	if !other.Has(k) {
		t.Fatal("cloned references share the payload")
	}

	dup := other.Duplicate()
	core.MutDictionary(dup).Clear()
	if !shared.Has(k) {
		t.Fatal("duplicate must not share the payload")
	}

	wrapped := shared.ToVariant()
	back, err := core.DictionaryFromVariant(wrapped)
	if err != nil || !back.Has(k) {
		t.Fatalf("DictionaryFromVariant = %v", err)
	}

	_, err = core.DictionaryFromVariant(k)
	var fe *core.FromVariantError
	if !errors.As(err, &fe) || fe.Kind != core.FromVariantInvalidType {
		t.Fatalf("err = %v", err)
	}

	for _, h := range []interface{ Destroy() }{k, v, wrapped, back, dup, other, shared} {
		h.Destroy()
	}
	checkNoLeaks(t, eng)
}

func TestVariantArray(t *testing.T) {
	eng := setup(t)

	a := core.NewVariantArray()
	m := core.MutArray(a)
	for _, n := range []int64{3, 1, 2} {
		v := core.IntVariant(n)
		m.Push(v)
		v.Destroy()
	}
	m.Sort()

	var got []int64
	for _, v := range a.All() {
		got = append(got, v.ToInt())
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("sorted = %v", got)
	}

	two := core.IntVariant(2)
	if i := a.Find(two, 0); i != 1 {
		t.Fatalf("Find(2) = %d", i)
	}
	m.Remove(1)
	if a.Contains(two) {
		t.Fatal("Remove left the element")
	}
	m.Insert(0, two)
	first := a.Get(0)
	if first.ToInt() != 2 {
		t.Fatalf("Insert(0) placed %s", first)
	}
	first.Destroy()
	two.Destroy()

	m.Invert()
	for i, v := range a.ToSlice() {
		if i == 0 && v.ToInt() != 3 {
			t.Fatalf("Invert first = %s", v)
		}
		v.Destroy()
	}

	a.Destroy()
	checkNoLeaks(t, eng)
}

func TestVariantArrayBounds(t *testing.T) {
	setup(t)

	a := core.NewVariantArray()
	defer a.Destroy()

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindOutOfBounds}) {
			t.Fatalf("recovered %v", r)
		}
	}()
	a.Get(0)
}

func TestVariantArrayFromSlice(t *testing.T) {
	eng := setup(t)

	vs := []core.Variant{core.IntVariant(1), core.StringVariant("x"), core.NilVariant()}
	a := core.VariantArrayFromSlice(vs)
	core.DestroyAll(vs)

	if a.Len() != 3 {
		t.Fatalf("Len = %d", a.Len())
	}
	v := a.ToVariant()
	if got := v.String(); got != "[1, x, Null]" {
		t.Fatalf("String = %q", got)
	}
	back, err := core.VariantArrayFromVariant(v)
	if err != nil {
		t.Fatal(err)
	}
	if core.ArrayAssumeUnique(back).Len() != 3 {
		t.Fatal("round trip lost elements")
	}

	v.Destroy()
	back.Destroy()
	a.Destroy()
	checkNoLeaks(t, eng)
}

func TestStrings(t *testing.T) {
	eng := setup(t)

	s := core.NewString("héllo wörld")
	if s.Len() != 11 {
		t.Fatalf("Len = %d", s.Len())
	}
	w := core.NewString("wörld")
	if got := s.Find(w, 0); got != 6 {
		t.Fatalf("Find = %d", got)
	}
	h := core.NewString("hé")
	if !s.BeginsWith(h) {
		t.Fatal("BeginsWith")
	}
	joined := h.Concat(w)
	if joined.String() != "héwörld" {
		t.Fatalf("Concat = %q", joined.String())
	}
	if !h.Less(w) || h.Equal(w) {
		t.Fatal("ordering")
	}
	c := s.Clone()
	if !c.Equal(s) || c.Hash() != s.Hash() {
		t.Fatal("clone differs")
	}

	var back core.String
	v := s.ToVariant()
	if err := back.FromVariant(v); err != nil || back.String() != s.String() {
		t.Fatalf("FromVariant = %v", err)
	}

	for _, x := range []core.String{s, w, h, joined, c, back} {
		x.Destroy()
	}
	v.Destroy()
	checkNoLeaks(t, eng)
}

func TestNodePath(t *testing.T) {
	eng := setup(t)

	tests := []struct {
		path     string
		absolute bool
		names    int
	}{
		{"/root/Main/Player", true, 3},
		{"Player/Sprite", false, 2},
		{"", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p := core.NewNodePath(tt.path)
			defer p.Destroy()
			if p.IsAbsolute() != tt.absolute {
				t.Fatalf("IsAbsolute = %v", p.IsAbsolute())
			}
			if p.NameCount() != tt.names {
				t.Fatalf("NameCount = %d", p.NameCount())
			}
			if p.IsEmpty() != (tt.path == "") {
				t.Fatalf("IsEmpty = %v", p.IsEmpty())
			}
			if p.String() != tt.path {
				t.Fatalf("String = %q", p.String())
			}
		})
	}

	p := core.NewNodePath("A/B")
	if p.Name(1) != "B" {
		t.Fatalf("Name(1) = %q", p.Name(1))
	}
	p.Destroy()
	checkNoLeaks(t, eng)
}
