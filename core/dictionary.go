package core

import (
	"iter"

	"github.com/wippyai/gdnative/ownership"
	"github.com/wippyai/gdnative/sys"
)

// Dictionary is a reference to an engine dictionary. The marker O records
// whether the reference is unique, shared across threads, or local to the
// current thread. Only Unique and ThreadLocal references may be mutated
// without an explicit AssumeMut.
//
// Each Dictionary value holds one engine reference and must be destroyed
// exactly once.
type Dictionary[O ownership.Kind] struct {
	h sys.Dictionary
}

// NewDictionary creates an empty dictionary.
func NewDictionary() Dictionary[Unique] {
	return Dictionary[Unique]{h: api().DictionaryNew()}
}

// DictionaryFromHandle takes ownership of a raw dictionary reference.
func DictionaryFromHandle[O ownership.Kind](h sys.Dictionary) Dictionary[O] {
	return Dictionary[O]{h: h}
}

func (d Dictionary[O]) Handle() sys.Dictionary { return d.h }

func (d Dictionary[O]) Len() int      { return api().DictionarySize(d.h) }
func (d Dictionary[O]) IsEmpty() bool { return d.Len() == 0 }

// Has reports whether key is present. The key is borrowed.
func (d Dictionary[O]) Has(key Variant) bool {
	return api().DictionaryHas(d.h, key.h)
}

// Get returns a copy of the value stored under key.
func (d Dictionary[O]) Get(key Variant) (Variant, bool) {
	v := api().DictionaryGet(d.h, key.h)
	if v == 0 {
		return Variant{}, false
	}
	return Variant{h: v}, true
}

// GetOrNil returns a copy of the value under key, or a Nil variant.
func (d Dictionary[O]) GetOrNil(key Variant) Variant {
	if v, ok := d.Get(key); ok {
		return v
	}
	return NilVariant()
}

// Keys returns a new array of copies of the keys.
func (d Dictionary[O]) Keys() VariantArray[Unique] {
	return VariantArray[Unique]{h: api().DictionaryKeys(d.h)}
}

// Values returns a new array of copies of the values.
func (d Dictionary[O]) Values() VariantArray[Unique] {
	return VariantArray[Unique]{h: api().DictionaryValues(d.h)}
}

// All iterates over key and value copies. Both are destroyed after the
// yield returns; clone them to keep them.
func (d Dictionary[O]) All() iter.Seq2[Variant, Variant] {
	return func(yield func(Variant, Variant) bool) {
		keys := d.Keys()
		defer keys.Destroy()
		for i := range keys.Len() {
			k := keys.Get(i)
			v := d.GetOrNil(k)
			cont := yield(k, v)
			v.Destroy()
			k.Destroy()
			if !cont {
				return
			}
		}
	}
}

// ToJSON returns the engine's JSON rendering.
func (d Dictionary[O]) ToJSON() string {
	s := String{h: api().DictionaryToJSON(d.h)}
	defer s.Destroy()
	return s.String()
}

// Duplicate returns a shallow copy with a new unique reference.
func (d Dictionary[O]) Duplicate() Dictionary[Unique] {
	return Dictionary[Unique]{h: api().DictionaryDuplicate(d.h, false)}
}

// DuplicateDeep also copies nested containers.
func (d Dictionary[O]) DuplicateDeep() Dictionary[Unique] {
	return Dictionary[Unique]{h: api().DictionaryDuplicate(d.h, true)}
}

// ToVariant returns a variant holding a new reference to the same payload.
func (d Dictionary[O]) ToVariant() Variant {
	return Variant{h: api().VariantNewDictionary(d.h)}
}

func (Dictionary[O]) VariantType() VariantType { return TypeDictionary }

// Destroy drops this reference.
func (d Dictionary[O]) Destroy() {
	if d.h != 0 {
		api().DictionaryDestroy(d.h)
	}
}

// AssumeMut returns a mutation view of any reference. The caller asserts no
// other thread accesses the payload for the view's lifetime.
func (d Dictionary[O]) AssumeMut() DictionaryMut {
	return DictionaryMut{h: d.h}
}

// DictionaryMut is a mutable view. It borrows the reference it was made from
// and is not destroyed separately.
type DictionaryMut struct {
	h sys.Dictionary
}

// MutDictionary returns a mutation view of a unique or thread-local reference.
func MutDictionary[O ownership.Local](d Dictionary[O]) DictionaryMut {
	return DictionaryMut{h: d.h}
}

// Insert stores a copy of value under a copy of key.
func (m DictionaryMut) Insert(key, value Variant) {
	api().DictionarySet(m.h, key.h, value.h)
}

// Erase removes key and reports whether it was present.
func (m DictionaryMut) Erase(key Variant) bool {
	return api().DictionaryErase(m.h, key.h)
}

func (m DictionaryMut) Clear() { api().DictionaryClear(m.h) }

// DictionaryIntoShared converts a unique reference into a shared one.
func DictionaryIntoShared(d Dictionary[Unique]) Dictionary[Shared] {
	return Dictionary[Shared]{h: d.h}
}

// DictionaryIntoThreadLocal converts a unique reference into a thread-local one.
func DictionaryIntoThreadLocal(d Dictionary[Unique]) Dictionary[ThreadLocal] {
	return Dictionary[ThreadLocal]{h: d.h}
}

// CloneDictionary returns a new reference to the same payload.
func CloneDictionary[O ownership.NonUnique](d Dictionary[O]) Dictionary[O] {
	return Dictionary[O]{h: api().DictionaryCopy(d.h)}
}

// DictionaryAssumeUnique reinterprets a reference as unique. The caller
// asserts no other reference to the payload exists.
func DictionaryAssumeUnique[O ownership.Kind](d Dictionary[O]) Dictionary[Unique] {
	return Dictionary[Unique]{h: d.h}
}

// FromVariant replaces d with a new reference to the dictionary held by v.
// A reference decoded from a variant is never unique, so only Shared
// dictionaries can be decoded this way.
func (d *Dictionary[O]) FromVariant(v Variant) error {
	if !ownership.IsShared[O]() {
		return CustomFromVariantError("cannot decode a %s dictionary reference", ownership.Name[O]())
	}
	out, err := DictionaryFromVariant(v)
	if err != nil {
		return err
	}
	d.h = out.h
	return nil
}

// DictionaryFromVariant extracts a new shared reference to a dictionary payload.
func DictionaryFromVariant(v Variant) (Dictionary[Shared], error) {
	d, ok := v.TryToDictionary()
	if !ok {
		return Dictionary[Shared]{}, InvalidVariantType(v.Type(), TypeDictionary)
	}
	return d, nil
}
