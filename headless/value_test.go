package headless

import (
	"math"
	"testing"

	"github.com/wippyai/gdnative/geom"
	"github.com/wippyai/gdnative/sys"
)

func TestEvaluate(t *testing.T) {
	e := New()
	defer e.Close()

	i := func(n int64) value { return value{sys.VariantInt, n} }
	f := func(x float64) value { return value{sys.VariantReal, x} }
	s := func(x string) value { return value{sys.VariantString, x} }
	v2 := func(x, y float32) value { return value{sys.VariantVector2, geom.Vec2(x, y)} }

	tests := []struct {
		name string
		op   sys.VariantOperator
		a, b value
		want value
		ok   bool
	}{
		{"int add", sys.OpAdd, i(2), i(3), i(5), true},
		{"mixed add", sys.OpAdd, i(2), f(0.5), f(2.5), true},
		{"int div", sys.OpDivide, i(7), i(2), i(3), true},
		{"int div zero", sys.OpDivide, i(1), i(0), nilValue, false},
		{"float div zero", sys.OpDivide, f(1), f(0), f(math.Inf(1)), true},
		{"mod", sys.OpModule, i(7), i(3), i(1), true},
		{"mod zero", sys.OpModule, i(7), i(0), nilValue, false},
		{"string concat", sys.OpAdd, s("ab"), s("cd"), s("abcd"), true},
		{"string minus", sys.OpSubtract, s("ab"), s("cd"), nilValue, false},
		{"vector scale", sys.OpMultiply, v2(1, 2), i(2), v2(2, 4), true},
		{"scalar vector", sys.OpMultiply, f(2), v2(1, 2), v2(2, 4), true},
		{"less", sys.OpLess, i(1), f(1.5), boolValue(true), true},
		{"greater equal", sys.OpGreaterEqual, s("b"), s("a"), boolValue(true), true},
		{"equal across kinds", sys.OpEqual, s("1"), i(1), nilValue, false},
		{"nil equal", sys.OpEqual, nilValue, nilValue, boolValue(true), true},
		{"shift", sys.OpShiftLeft, i(1), i(4), i(16), true},
		{"negative shift", sys.OpShiftLeft, i(1), i(-1), nilValue, false},
		{"and", sys.OpAnd, i(1), s(""), boolValue(false), true},
		{"not", sys.OpNot, nilValue, nilValue, boolValue(true), true},
		{"in string", sys.OpIn, s("ell"), s("hello"), boolValue(true), true},
		{"negate", sys.OpNegate, i(4), nilValue, i(-4), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.evaluate(tt.op, tt.a, tt.b)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if !e.hashCompare(got, tt.want) {
				t.Fatalf("got %s (%s), want %s (%s)", e.stringify(got), got.t, e.stringify(tt.want), tt.want.t)
			}
		})
	}
}

func TestStringify(t *testing.T) {
	e := New()
	defer e.Close()

	arr := &arrayData{refs: 1, items: []value{{sys.VariantInt, int64(1)}, {sys.VariantString, "a"}, nilValue}}
	d := newDict()
	e.dictSet(d, value{sys.VariantString, "k"}, value{sys.VariantBool, true})

	tests := []struct {
		v    value
		want string
	}{
		{nilValue, "Null"},
		{value{sys.VariantBool, false}, "False"},
		{value{sys.VariantReal, 1.5}, "1.5"},
		{value{sys.VariantReal, 2.0}, "2"},
		{value{sys.VariantVector2, geom.Vec2(1, 2.5)}, "(1, 2.5)"},
		{value{sys.VariantArray, arr}, "[1, a, Null]"},
		{value{sys.VariantDictionary, d}, "{k:True}"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := e.stringify(tt.v); got != tt.want {
				t.Fatalf("stringify = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDictionaryOrderAndJSON(t *testing.T) {
	e := New()
	defer e.Close()
	c := &e.core

	d := c.DictionaryNew()
	defer c.DictionaryDestroy(d)
	for i, k := range []string{"z", "a", "m"} {
		ks := c.StringNew(k)
		kv := c.VariantNewString(ks)
		vv := c.VariantNewInt(int64(i))
		c.DictionarySet(d, kv, vv)
		c.StringDestroy(ks)
		c.VariantDestroy(kv)
		c.VariantDestroy(vv)
	}

	js := c.DictionaryToJSON(d)
	defer c.StringDestroy(js)
	if got := c.StringUTF8(js); got != `{"z":0,"a":1,"m":2}` {
		t.Fatalf("ToJSON = %s", got)
	}

	missing := c.VariantNewInt(99)
	defer c.VariantDestroy(missing)
	if c.DictionaryGet(d, missing) != 0 {
		t.Fatal("absent key should return no variant")
	}
}

func TestArrayCopySharesPayload(t *testing.T) {
	e := New()
	defer e.Close()
	c := &e.core

	a := c.ArrayNew()
	b := c.ArrayCopy(a)
	one := c.VariantNewInt(1)
	c.ArrayPushBack(a, one)
	c.VariantDestroy(one)
	if c.ArraySize(b) != 1 {
		t.Fatal("array copies share their payload")
	}

	dup := c.ArrayDuplicate(a, false)
	c.ArrayClear(a)
	if c.ArraySize(dup) != 1 || c.ArraySize(b) != 0 {
		t.Fatal("duplicate must not share the payload")
	}
	c.ArrayDestroy(a)
	c.ArrayDestroy(b)
	c.ArrayDestroy(dup)
	if live := e.LiveHandles(); len(live) != 0 {
		t.Fatalf("leaked handles: %v", live)
	}
}

func TestPoolCopyOnWrite(t *testing.T) {
	e := New()
	defer e.Close()
	p := &e.core.PoolIntArray

	a := p.New()
	p.Append(a, 1)
	p.Append(a, 2)
	b := p.Copy(a)
	p.Set(b, 0, 10)

	if got := p.Get(a, 0); got != 1 {
		t.Fatalf("write through a copy changed the source: %d", got)
	}
	if got := p.Get(b, 0); got != 10 {
		t.Fatalf("copy = %d", got)
	}

	acc, s := p.Write(a)
	s[1] = 20
	p.WriteDestroy(acc)
	if got := p.Get(a, 1); got != 20 {
		t.Fatalf("write access did not reach the buffer: %d", got)
	}

	p.Destroy(a)
	p.Destroy(b)
	if live := e.LiveHandles(); len(live) != 0 {
		t.Fatalf("leaked handles: %v", live)
	}
}

func TestPoolStringsOwnTheirHandles(t *testing.T) {
	e := New()
	defer e.Close()
	c := &e.core
	p := &c.PoolStringArray

	a := p.New()
	s := c.StringNew("x")
	p.Append(a, s)
	c.StringDestroy(s)

	got := p.Get(a, 0)
	if c.StringUTF8(got) != "x" {
		t.Fatal("element lost")
	}
	c.StringDestroy(got)
	p.Destroy(a)
	if live := e.LiveHandles(); len(live) != 0 {
		t.Fatalf("leaked handles: %v", live)
	}
}
