package core

import (
	"iter"

	"github.com/wippyai/gdnative/ownership"
	"github.com/wippyai/gdnative/sys"
)

// VariantArray is a reference to an engine array of variants, with the same
// ownership rules as Dictionary.
type VariantArray[O ownership.Kind] struct {
	h sys.Array
}

// NewVariantArray creates an empty array.
func NewVariantArray() VariantArray[Unique] {
	return VariantArray[Unique]{h: api().ArrayNew()}
}

// VariantArrayFromSlice creates an array holding copies of vs.
func VariantArrayFromSlice(vs []Variant) VariantArray[Unique] {
	a := NewVariantArray()
	m := MutArray(a)
	for _, v := range vs {
		m.Push(v)
	}
	return a
}

// VariantArrayFromHandle takes ownership of a raw array reference.
func VariantArrayFromHandle[O ownership.Kind](h sys.Array) VariantArray[O] {
	return VariantArray[O]{h: h}
}

func (a VariantArray[O]) Handle() sys.Array { return a.h }

func (a VariantArray[O]) Len() int      { return api().ArraySize(a.h) }
func (a VariantArray[O]) IsEmpty() bool { return a.Len() == 0 }

// Get returns a copy of the element at i. It panics when i is out of range.
func (a VariantArray[O]) Get(i int) Variant {
	if n := a.Len(); i < 0 || i >= n {
		panic(indexPanic(i, n))
	}
	return Variant{h: api().ArrayGet(a.h, i)}
}

// Find returns the index of the first element equal to v at or after from, or -1.
func (a VariantArray[O]) Find(v Variant, from int) int {
	return api().ArrayFind(a.h, v.h, from)
}

func (a VariantArray[O]) Contains(v Variant) bool { return a.Find(v, 0) >= 0 }

// All iterates over element copies. Each is destroyed after yield returns.
func (a VariantArray[O]) All() iter.Seq2[int, Variant] {
	return func(yield func(int, Variant) bool) {
		for i := range a.Len() {
			v := Variant{h: api().ArrayGet(a.h, i)}
			cont := yield(i, v)
			v.Destroy()
			if !cont {
				return
			}
		}
	}
}

// ToSlice returns owned copies of all elements.
func (a VariantArray[O]) ToSlice() []Variant {
	out := make([]Variant, a.Len())
	for i := range out {
		out[i] = Variant{h: api().ArrayGet(a.h, i)}
	}
	return out
}

// Duplicate returns a shallow copy with a new unique reference.
func (a VariantArray[O]) Duplicate() VariantArray[Unique] {
	return VariantArray[Unique]{h: api().ArrayDuplicate(a.h, false)}
}

// DuplicateDeep also copies nested containers.
func (a VariantArray[O]) DuplicateDeep() VariantArray[Unique] {
	return VariantArray[Unique]{h: api().ArrayDuplicate(a.h, true)}
}

// ToVariant returns a variant holding a new reference to the same payload.
func (a VariantArray[O]) ToVariant() Variant {
	return Variant{h: api().VariantNewArray(a.h)}
}

func (VariantArray[O]) VariantType() VariantType { return TypeArray }

func (a VariantArray[O]) Destroy() {
	if a.h != 0 {
		api().ArrayDestroy(a.h)
	}
}

// AssumeMut returns a mutation view of any reference. The caller asserts no
// other thread accesses the payload for the view's lifetime.
func (a VariantArray[O]) AssumeMut() VariantArrayMut {
	return VariantArrayMut{h: a.h}
}

// VariantArrayMut is a mutable view borrowing its source reference.
type VariantArrayMut struct {
	h sys.Array
}

// MutArray returns a mutation view of a unique or thread-local reference.
func MutArray[O ownership.Local](a VariantArray[O]) VariantArrayMut {
	return VariantArrayMut{h: a.h}
}

// Push appends a copy of v.
func (m VariantArrayMut) Push(v Variant) { api().ArrayPushBack(m.h, v.h) }

// Set stores a copy of v at i. It panics when i is out of range.
func (m VariantArrayMut) Set(i int, v Variant) {
	if n := api().ArraySize(m.h); i < 0 || i >= n {
		panic(indexPanic(i, n))
	}
	api().ArraySet(m.h, i, v.h)
}

// Insert stores a copy of v before i. i may equal the length.
func (m VariantArrayMut) Insert(i int, v Variant) {
	if n := api().ArraySize(m.h); i < 0 || i > n {
		panic(indexPanic(i, n))
	}
	api().ArrayInsert(m.h, i, v.h)
}

// Remove deletes the element at i.
func (m VariantArrayMut) Remove(i int) {
	if n := api().ArraySize(m.h); i < 0 || i >= n {
		panic(indexPanic(i, n))
	}
	api().ArrayRemove(m.h, i)
}

// Resize grows the array with Nil elements or truncates it.
func (m VariantArrayMut) Resize(n int) { api().ArrayResize(m.h, n) }

func (m VariantArrayMut) Clear()  { api().ArrayClear(m.h) }
func (m VariantArrayMut) Sort()   { api().ArraySort(m.h) }
func (m VariantArrayMut) Invert() { api().ArrayInvert(m.h) }

// ArrayIntoShared converts a unique reference into a shared one.
func ArrayIntoShared(a VariantArray[Unique]) VariantArray[Shared] {
	return VariantArray[Shared]{h: a.h}
}

// ArrayIntoThreadLocal converts a unique reference into a thread-local one.
func ArrayIntoThreadLocal(a VariantArray[Unique]) VariantArray[ThreadLocal] {
	return VariantArray[ThreadLocal]{h: a.h}
}

// CloneArray returns a new reference to the same payload.
func CloneArray[O ownership.NonUnique](a VariantArray[O]) VariantArray[O] {
	return VariantArray[O]{h: api().ArrayCopy(a.h)}
}

// ArrayAssumeUnique reinterprets a reference as unique.
func ArrayAssumeUnique[O ownership.Kind](a VariantArray[O]) VariantArray[Unique] {
	return VariantArray[Unique]{h: a.h}
}

// FromVariant replaces a with a new reference to the array held by v. Only
// Shared arrays can be decoded.
func (a *VariantArray[O]) FromVariant(v Variant) error {
	if !ownership.IsShared[O]() {
		return CustomFromVariantError("cannot decode a %s array reference", ownership.Name[O]())
	}
	out, err := VariantArrayFromVariant(v)
	if err != nil {
		return err
	}
	a.h = out.h
	return nil
}

// VariantArrayFromVariant extracts a new shared reference to an array payload.
func VariantArrayFromVariant(v Variant) (VariantArray[Shared], error) {
	a, ok := v.TryToArray()
	if !ok {
		return VariantArray[Shared]{}, InvalidVariantType(v.Type(), TypeArray)
	}
	return a, nil
}
