package core

import (
	"iter"
	"sync/atomic"

	"github.com/wippyai/gdnative/geom"
	"github.com/wippyai/gdnative/sys"
)

// Element is the set of types a PoolArray can hold.
type Element interface {
	byte | int32 | float32 | String | geom.Vector2 | geom.Vector3 | geom.Color
}

// PoolArray is an owned, copy-on-write engine array of plain values.
type PoolArray[E Element] struct {
	h sys.PoolArray
}

type stringPool struct {
	src *sys.PoolArrayAPI[sys.String]
	t   sys.PoolArrayAPI[String]
}

var stringPoolCache atomic.Pointer[stringPool]

// poolTable selects the engine sub-table for E.
func poolTable[E Element]() *sys.PoolArrayAPI[E] {
	c := api()
	var zero E
	var t any
	switch any(zero).(type) {
	case byte:
		t = &c.PoolByteArray
	case int32:
		t = &c.PoolIntArray
	case float32:
		t = &c.PoolRealArray
	case geom.Vector2:
		t = &c.PoolVector2Array
	case geom.Vector3:
		t = &c.PoolVector3Array
	case geom.Color:
		t = &c.PoolColorArray
	case String:
		t = stringPoolTable(&c.PoolStringArray)
	}
	return t.(*sys.PoolArrayAPI[E])
}

// stringPoolTable adapts the raw string sub-table to String elements.
func stringPoolTable(src *sys.PoolArrayAPI[sys.String]) *sys.PoolArrayAPI[String] {
	if cached := stringPoolCache.Load(); cached != nil && cached.src == src {
		return &cached.t
	}
	p := &stringPool{src: src}
	p.t = sys.PoolArrayAPI[String]{
		New:     src.New,
		Copy:    src.Copy,
		Destroy: src.Destroy,
		Size:    src.Size,
		Get:     func(a sys.PoolArray, i int) String { return String{h: src.Get(a, i)} },
		Set:     func(a sys.PoolArray, i int, v String) { src.Set(a, i, v.h) },
		Append:  func(a sys.PoolArray, v String) { src.Append(a, v.h) },
		Insert:  func(a sys.PoolArray, i int, v String) sys.Error { return src.Insert(a, i, v.h) },
		Remove:  src.Remove,
		Resize:  src.Resize,
		Read: func(a sys.PoolArray) (sys.PoolAccess, []String) {
			acc, s := src.Read(a)
			return acc, castSlice[String](s)
		},
		ReadDestroy: src.ReadDestroy,
		Write: func(a sys.PoolArray) (sys.PoolAccess, []String) {
			acc, s := src.Write(a)
			return acc, castSlice[String](s)
		},
		WriteDestroy: src.WriteDestroy,
	}
	stringPoolCache.Store(p)
	return &p.t
}

// poolVariantType returns the variant kind holding a PoolArray[E].
func poolVariantType[E Element]() VariantType {
	var zero E
	switch any(zero).(type) {
	case byte:
		return TypePoolByteArray
	case int32:
		return TypePoolIntArray
	case float32:
		return TypePoolRealArray
	case String:
		return TypePoolStringArray
	case geom.Vector2:
		return TypePoolVector2Array
	case geom.Vector3:
		return TypePoolVector3Array
	default:
		return TypePoolColorArray
	}
}

// NewPoolArray creates an empty pool array.
func NewPoolArray[E Element]() PoolArray[E] {
	return PoolArray[E]{h: poolTable[E]().New()}
}

// PoolArrayFromSlice creates a pool array from copies of s.
func PoolArrayFromSlice[E Element](s []E) PoolArray[E] {
	t := poolTable[E]()
	a := PoolArray[E]{h: t.New()}
	if len(s) == 0 {
		return a
	}
	if _, ok := any(s).([]String); ok {
		// String elements are references; copy through the table.
		for _, e := range s {
			t.Append(a.h, e)
		}
		return a
	}
	t.Resize(a.h, len(s))
	w := a.Write()
	defer w.Close()
	copy(w.Slice(), s)
	return a
}

// CollectPoolArray builds a pool array from a sequence.
func CollectPoolArray[E Element](seq iter.Seq[E]) PoolArray[E] {
	t := poolTable[E]()
	a := PoolArray[E]{h: t.New()}
	for e := range seq {
		t.Append(a.h, e)
	}
	return a
}

// PoolArrayFromHandle takes ownership of a raw pool array.
func PoolArrayFromHandle[E Element](h sys.PoolArray) PoolArray[E] {
	return PoolArray[E]{h: h}
}

func (a PoolArray[E]) Handle() sys.PoolArray { return a.h }

func (a PoolArray[E]) Len() int      { return poolTable[E]().Size(a.h) }
func (a PoolArray[E]) IsEmpty() bool { return a.Len() == 0 }

// Get returns the element at i. String elements are new owned copies.
func (a PoolArray[E]) Get(i int) E {
	t := poolTable[E]()
	if n := t.Size(a.h); i < 0 || i >= n {
		panic(indexPanic(i, n))
	}
	return t.Get(a.h, i)
}

func (a PoolArray[E]) Set(i int, v E) {
	t := poolTable[E]()
	if n := t.Size(a.h); i < 0 || i >= n {
		panic(indexPanic(i, n))
	}
	t.Set(a.h, i, v)
}

func (a PoolArray[E]) Push(v E) { poolTable[E]().Append(a.h, v) }

// Insert places v before i. i may equal the length.
func (a PoolArray[E]) Insert(i int, v E) error {
	t := poolTable[E]()
	if n := t.Size(a.h); i < 0 || i > n {
		return indexPanic(i, n)
	}
	return GodotResult(t.Insert(a.h, i, v))
}

func (a PoolArray[E]) Remove(i int) {
	t := poolTable[E]()
	if n := t.Size(a.h); i < 0 || i >= n {
		panic(indexPanic(i, n))
	}
	t.Remove(a.h, i)
}

func (a PoolArray[E]) Resize(n int) { poolTable[E]().Resize(a.h, n) }

// Extend appends every element of seq.
func (a PoolArray[E]) Extend(seq iter.Seq[E]) {
	t := poolTable[E]()
	for e := range seq {
		t.Append(a.h, e)
	}
}

// All iterates over the elements under a read lock.
func (a PoolArray[E]) All() iter.Seq2[int, E] {
	return func(yield func(int, E) bool) {
		r := a.Read()
		defer r.Close()
		for i, e := range r.Slice() {
			if !yield(i, e) {
				return
			}
		}
	}
}

// ToSlice copies the elements into a Go slice. String elements are new
// owned copies.
func (a PoolArray[E]) ToSlice() []E {
	t := poolTable[E]()
	n := t.Size(a.h)
	out := make([]E, n)
	if _, ok := any(out).([]String); ok {
		for i := range out {
			out[i] = t.Get(a.h, i)
		}
		return out
	}
	r := a.Read()
	defer r.Close()
	copy(out, r.Slice())
	return out
}

func (a PoolArray[E]) Clone() PoolArray[E] {
	return PoolArray[E]{h: poolTable[E]().Copy(a.h)}
}

func (a PoolArray[E]) Destroy() {
	if a.h != 0 {
		poolTable[E]().Destroy(a.h)
	}
}

func (a PoolArray[E]) ToVariant() Variant {
	return Variant{h: api().VariantNewPoolArray(poolVariantType[E](), a.h)}
}

func (PoolArray[E]) VariantType() VariantType { return poolVariantType[E]() }

// PoolArrayFromVariant extracts a copy of a pool array payload.
func PoolArrayFromVariant[E Element](v Variant) (PoolArray[E], error) {
	want := poolVariantType[E]()
	if v.Type() != want {
		return PoolArray[E]{}, InvalidVariantType(v.Type(), want)
	}
	return PoolArray[E]{h: api().VariantAsPoolArray(v.h)}, nil
}

// FromVariant replaces a with a copy of the pool array held by v.
func (a *PoolArray[E]) FromVariant(v Variant) error {
	out, err := PoolArrayFromVariant[E](v)
	if err != nil {
		return err
	}
	a.h = out.h
	return nil
}

// PoolArrayRead is a read lock on a pool array buffer. The slice is valid
// until Close.
type PoolArrayRead[E Element] struct {
	_   noCopy
	acc sys.PoolAccess
	s   []E
	t   *sys.PoolArrayAPI[E]
}

// Read locks the buffer for reading.
func (a PoolArray[E]) Read() *PoolArrayRead[E] {
	t := poolTable[E]()
	acc, s := t.Read(a.h)
	return &PoolArrayRead[E]{acc: acc, s: s, t: t}
}

func (r *PoolArrayRead[E]) Slice() []E { return r.s }
func (r *PoolArrayRead[E]) Len() int   { return len(r.s) }

// Close releases the lock. Further use of the slice is invalid.
func (r *PoolArrayRead[E]) Close() {
	if r.t != nil {
		r.t.ReadDestroy(r.acc)
		r.t, r.s = nil, nil
	}
}

// PoolArrayWrite is a write lock on a pool array buffer.
type PoolArrayWrite[E Element] struct {
	_   noCopy
	acc sys.PoolAccess
	s   []E
	t   *sys.PoolArrayAPI[E]
}

// Write locks the buffer for writing. The engine copies a shared buffer
// before handing it out.
func (a PoolArray[E]) Write() *PoolArrayWrite[E] {
	t := poolTable[E]()
	acc, s := t.Write(a.h)
	return &PoolArrayWrite[E]{acc: acc, s: s, t: t}
}

func (w *PoolArrayWrite[E]) Slice() []E { return w.s }
func (w *PoolArrayWrite[E]) Len() int   { return len(w.s) }

func (w *PoolArrayWrite[E]) Close() {
	if w.t != nil {
		w.t.WriteDestroy(w.acc)
		w.t, w.s = nil, nil
	}
}

// Common instantiations.
type (
	ByteArray    = PoolArray[byte]
	Int32Array   = PoolArray[int32]
	Float32Array = PoolArray[float32]
	StringArray  = PoolArray[String]
	Vector2Array = PoolArray[geom.Vector2]
	Vector3Array = PoolArray[geom.Vector3]
	ColorArray   = PoolArray[geom.Color]
)
