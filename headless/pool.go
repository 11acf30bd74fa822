package headless

import (
	"slices"

	"github.com/wippyai/gdnative/geom"
	"github.com/wippyai/gdnative/sys"
)

// poolData is a copy-on-write buffer shared by pool array handles and
// variants.
type poolData struct {
	refs  int
	t     sys.VariantType
	items any
	ops   poolOps
}

type poolOps interface {
	length(items any) int
	clone(items any) any
	free(items any)
	values(items any) []value
}

func (p *poolData) len() int        { return p.ops.length(p.items) }
func (p *poolData) values() []value { return p.ops.values(p.items) }

type poolRef struct {
	d *poolData
}

type poolAccess struct {
	ref   *poolRef
	write bool
}

// poolKind implements one element kind.
type poolKind[E any] struct {
	e     *Engine
	t     sys.VariantType
	dup   func(E) E
	free1 func(E)
	zero  func() E
	wrap  func(E) value
}

func (k *poolKind[E]) length(items any) int { return len(items.([]E)) }

func (k *poolKind[E]) clone(items any) any {
	src := items.([]E)
	dst := make([]E, len(src))
	for i, v := range src {
		dst[i] = k.dup(v)
	}
	return dst
}

func (k *poolKind[E]) free(items any) {
	if k.free1 == nil {
		return
	}
	for _, v := range items.([]E) {
		k.free1(v)
	}
}

func (k *poolKind[E]) values(items any) []value {
	src := items.([]E)
	out := make([]value, len(src))
	for i, v := range src {
		out[i] = k.wrap(v)
	}
	return out
}

func (e *Engine) releasePool(p *poolData) {
	p.refs--
	if p.refs == 0 {
		p.ops.free(p.items)
	}
}

func (e *Engine) poolEqual(a, b *poolData, nanEqual bool) bool {
	if a == b {
		return true
	}
	av, bv := a.values(), b.values()
	if len(av) != len(bv) {
		return false
	}
	for i := range av {
		if nanEqual {
			if !e.hashCompare(av[i], bv[i]) {
				return false
			}
			continue
		}
		if eq, _ := e.equal(av[i], bv[i]); !eq {
			return false
		}
	}
	return true
}

func identity[E any](v E) E { return v }

func zeroOf[E any]() E {
	var z E
	return z
}

func (k *poolKind[E]) ref(h sys.PoolArray) (*poolRef, bool) {
	return lookup[*poolRef](k.e, kindPool, uintptr(h))
}

// unique detaches r from other holders before a write.
func (k *poolKind[E]) unique(r *poolRef) []E {
	if r.d.refs > 1 {
		r.d.refs--
		r.d = &poolData{refs: 1, t: r.d.t, items: k.clone(r.d.items), ops: k}
	}
	return r.d.items.([]E)
}

func (k *poolKind[E]) newData(items []E) *poolData {
	return &poolData{refs: 1, t: k.t, items: items, ops: k}
}

// table builds the ABI sub-table for this element kind.
func (k *poolKind[E]) table() sys.PoolArrayAPI[E] {
	e := k.e
	return sys.PoolArrayAPI[E]{
		New: func() sys.PoolArray {
			return sys.PoolArray(e.put(kindPool, &poolRef{d: k.newData([]E{})}))
		},
		Copy: func(a sys.PoolArray) sys.PoolArray {
			r, ok := k.ref(a)
			if !ok {
				return 0
			}
			r.d.refs++
			return sys.PoolArray(e.put(kindPool, &poolRef{d: r.d}))
		},
		Destroy: func(a sys.PoolArray) {
			if v, ok := e.drop(kindPool, uintptr(a)); ok {
				e.releasePool(v.(*poolRef).d)
			}
		},
		Size: func(a sys.PoolArray) int {
			r, ok := k.ref(a)
			if !ok {
				return 0
			}
			return r.d.len()
		},
		Get: func(a sys.PoolArray, i int) E {
			r, ok := k.ref(a)
			if !ok {
				return k.zero()
			}
			items := r.d.items.([]E)
			if i < 0 || i >= len(items) {
				e.printError("index out of bounds", "pool_array_get", "pool_vector.h", 0)
				return k.zero()
			}
			return k.dup(items[i])
		},
		Set: func(a sys.PoolArray, i int, v E) {
			r, ok := k.ref(a)
			if !ok {
				return
			}
			items := k.unique(r)
			if i < 0 || i >= len(items) {
				e.printError("index out of bounds", "pool_array_set", "pool_vector.h", 0)
				return
			}
			if k.free1 != nil {
				k.free1(items[i])
			}
			items[i] = k.dup(v)
		},
		Append: func(a sys.PoolArray, v E) {
			r, ok := k.ref(a)
			if !ok {
				return
			}
			items := k.unique(r)
			r.d.items = append(items, k.dup(v))
		},
		Insert: func(a sys.PoolArray, i int, v E) sys.Error {
			r, ok := k.ref(a)
			if !ok {
				return sys.Error(31)
			}
			items := k.unique(r)
			if i < 0 || i > len(items) {
				return sys.Error(5)
			}
			r.d.items = slices.Insert(items, i, k.dup(v))
			return 0
		},
		Remove: func(a sys.PoolArray, i int) {
			r, ok := k.ref(a)
			if !ok {
				return
			}
			items := k.unique(r)
			if i < 0 || i >= len(items) {
				e.printError("index out of bounds", "pool_array_remove", "pool_vector.h", 0)
				return
			}
			if k.free1 != nil {
				k.free1(items[i])
			}
			r.d.items = slices.Delete(items, i, i+1)
		},
		Resize: func(a sys.PoolArray, n int) {
			r, ok := k.ref(a)
			if !ok || n < 0 {
				return
			}
			items := k.unique(r)
			if n < len(items) {
				if k.free1 != nil {
					for _, v := range items[n:] {
						k.free1(v)
					}
				}
				r.d.items = items[:n:n]
				return
			}
			for len(items) < n {
				items = append(items, k.zero())
			}
			r.d.items = items
		},
		Read: func(a sys.PoolArray) (sys.PoolAccess, []E) {
			r, ok := k.ref(a)
			if !ok {
				return 0, nil
			}
			acc := e.put(kindPoolAccess, &poolAccess{ref: r})
			return sys.PoolAccess(acc), r.d.items.([]E)
		},
		ReadDestroy: func(acc sys.PoolAccess) {
			e.drop(kindPoolAccess, uintptr(acc))
		},
		Write: func(a sys.PoolArray) (sys.PoolAccess, []E) {
			r, ok := k.ref(a)
			if !ok {
				return 0, nil
			}
			items := k.unique(r)
			acc := e.put(kindPoolAccess, &poolAccess{ref: r, write: true})
			return sys.PoolAccess(acc), items
		},
		WriteDestroy: func(acc sys.PoolAccess) {
			e.drop(kindPoolAccess, uintptr(acc))
		},
	}
}

func (e *Engine) fillPools() {
	e.core.PoolByteArray = (&poolKind[byte]{
		e: e, t: sys.VariantPoolByteArray, dup: identity[byte], zero: zeroOf[byte],
		wrap: func(b byte) value { return value{t: sys.VariantInt, v: int64(b)} },
	}).table()
	e.core.PoolIntArray = (&poolKind[int32]{
		e: e, t: sys.VariantPoolIntArray, dup: identity[int32], zero: zeroOf[int32],
		wrap: func(i int32) value { return value{t: sys.VariantInt, v: int64(i)} },
	}).table()
	e.core.PoolRealArray = (&poolKind[float32]{
		e: e, t: sys.VariantPoolRealArray, dup: identity[float32], zero: zeroOf[float32],
		wrap: func(f float32) value { return value{t: sys.VariantReal, v: float64(f)} },
	}).table()
	e.core.PoolVector2Array = (&poolKind[geom.Vector2]{
		e: e, t: sys.VariantPoolVector2Array, dup: identity[geom.Vector2], zero: zeroOf[geom.Vector2],
		wrap: func(v geom.Vector2) value { return value{t: sys.VariantVector2, v: v} },
	}).table()
	e.core.PoolVector3Array = (&poolKind[geom.Vector3]{
		e: e, t: sys.VariantPoolVector3Array, dup: identity[geom.Vector3], zero: zeroOf[geom.Vector3],
		wrap: func(v geom.Vector3) value { return value{t: sys.VariantVector3, v: v} },
	}).table()
	e.core.PoolColorArray = (&poolKind[geom.Color]{
		e: e, t: sys.VariantPoolColorArray, dup: identity[geom.Color], zero: zeroOf[geom.Color],
		wrap: func(c geom.Color) value { return value{t: sys.VariantColor, v: c} },
	}).table()
	e.core.PoolStringArray = (&poolKind[sys.String]{
		e: e, t: sys.VariantPoolStringArray,
		dup:   func(s sys.String) sys.String { return e.newString(e.stringOf(s)) },
		free1: func(s sys.String) { e.drop(kindString, uintptr(s)) },
		zero:  func() sys.String { return e.newString("") },
		wrap:  func(s sys.String) value { return value{t: sys.VariantString, v: e.stringOf(s)} },
	}).table()
}
