package headless

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	"github.com/wippyai/gdnative/sys"
)

func (e *Engine) newVariant(v value) sys.Variant {
	return sys.Variant(e.put(kindVariant, v))
}

// valueOf returns the content of a variant handle. The result is borrowed.
func (e *Engine) valueOf(h sys.Variant) value {
	v, ok := lookup[value](e, kindVariant, uintptr(h))
	if !ok {
		return nilValue
	}
	return v
}

func (e *Engine) newArray(d *arrayData) sys.Array {
	return sys.Array(e.put(kindArray, d))
}

func (e *Engine) arrayOf(h sys.Array) *arrayData {
	d, ok := lookup[*arrayData](e, kindArray, uintptr(h))
	if !ok {
		return &arrayData{refs: 1}
	}
	return d
}

func (e *Engine) newDictionary(d *dictData) sys.Dictionary {
	return sys.Dictionary(e.put(kindDictionary, d))
}

func (e *Engine) dictOf(h sys.Dictionary) *dictData {
	d, ok := lookup[*dictData](e, kindDictionary, uintptr(h))
	if !ok {
		return newDict()
	}
	return d
}

// duplicate copies a container payload, recursing into nested containers
// when deep is set.
func (e *Engine) duplicate(v value, deep bool) value {
	switch x := v.v.(type) {
	case *arrayData:
		out := &arrayData{refs: 1, items: make([]value, len(x.items))}
		for i, it := range x.items {
			if deep {
				out.items[i] = e.duplicate(it, true)
			} else {
				out.items[i] = e.retain(it)
			}
		}
		return value{t: sys.VariantArray, v: out}
	case *dictData:
		out := newDict()
		for i, k := range x.keys {
			val := x.vals[i]
			if deep {
				val = e.duplicate(val, true)
			} else {
				val = e.retain(val)
			}
			out.keys = append(out.keys, e.retain(k))
			out.vals = append(out.vals, val)
		}
		out.reindex()
		return value{t: sys.VariantDictionary, v: out}
	default:
		return e.retain(v)
	}
}

func (e *Engine) dictSet(d *dictData, key, val value) {
	if i, ok := d.find(key); ok {
		old := d.vals[i]
		d.vals[i] = e.retain(val)
		e.release(old)
		return
	}
	d.index[hashKey(key)] = len(d.keys)
	d.keys = append(d.keys, e.retain(key))
	d.vals = append(d.vals, e.retain(val))
}

func (e *Engine) dictErase(d *dictData, key value) bool {
	i, ok := d.find(key)
	if !ok {
		return false
	}
	k, v := d.keys[i], d.vals[i]
	d.keys = slices.Delete(d.keys, i, i+1)
	d.vals = slices.Delete(d.vals, i, i+1)
	d.reindex()
	e.release(k)
	e.release(v)
	return true
}

func (e *Engine) fillContainers() {
	c := &e.core

	c.ArrayNew = func() sys.Array { return e.newArray(&arrayData{refs: 1}) }
	c.ArrayCopy = func(a sys.Array) sys.Array {
		d := e.arrayOf(a)
		d.refs++
		return e.newArray(d)
	}
	c.ArrayDestroy = func(a sys.Array) {
		if v, ok := e.drop(kindArray, uintptr(a)); ok {
			e.release(value{t: sys.VariantArray, v: v})
		}
	}
	c.ArraySize = func(a sys.Array) int { return len(e.arrayOf(a).items) }
	c.ArrayGet = func(a sys.Array, i int) sys.Variant {
		d := e.arrayOf(a)
		if i < 0 || i >= len(d.items) {
			e.printError("index out of bounds", "array_get", "array.cpp", 0)
			return e.newVariant(nilValue)
		}
		return e.newVariant(e.retain(d.items[i]))
	}
	c.ArraySet = func(a sys.Array, i int, v sys.Variant) {
		d := e.arrayOf(a)
		if i < 0 || i >= len(d.items) {
			e.printError("index out of bounds", "array_set", "array.cpp", 0)
			return
		}
		old := d.items[i]
		d.items[i] = e.retain(e.valueOf(v))
		e.release(old)
	}
	c.ArrayPushBack = func(a sys.Array, v sys.Variant) {
		d := e.arrayOf(a)
		d.items = append(d.items, e.retain(e.valueOf(v)))
	}
	c.ArrayInsert = func(a sys.Array, i int, v sys.Variant) {
		d := e.arrayOf(a)
		if i < 0 || i > len(d.items) {
			e.printError("index out of bounds", "array_insert", "array.cpp", 0)
			return
		}
		d.items = slices.Insert(d.items, i, e.retain(e.valueOf(v)))
	}
	c.ArrayRemove = func(a sys.Array, i int) {
		d := e.arrayOf(a)
		if i < 0 || i >= len(d.items) {
			e.printError("index out of bounds", "array_remove", "array.cpp", 0)
			return
		}
		old := d.items[i]
		d.items = slices.Delete(d.items, i, i+1)
		e.release(old)
	}
	c.ArrayResize = func(a sys.Array, n int) {
		d := e.arrayOf(a)
		if n < 0 {
			return
		}
		for len(d.items) > n {
			last := d.items[len(d.items)-1]
			d.items = d.items[:len(d.items)-1]
			e.release(last)
		}
		for len(d.items) < n {
			d.items = append(d.items, nilValue)
		}
	}
	c.ArrayClear = func(a sys.Array) {
		d := e.arrayOf(a)
		items := d.items
		d.items = nil
		for _, it := range items {
			e.release(it)
		}
	}
	c.ArrayFind = func(a sys.Array, v sys.Variant, from int) int {
		d := e.arrayOf(a)
		needle := e.valueOf(v)
		for i := max(from, 0); i < len(d.items); i++ {
			if eq, _ := e.equal(d.items[i], needle); eq {
				return i
			}
		}
		return -1
	}
	c.ArrayDuplicate = func(a sys.Array, deep bool) sys.Array {
		out := e.duplicate(value{t: sys.VariantArray, v: e.arrayOf(a)}, deep)
		return e.newArray(out.v.(*arrayData))
	}
	c.ArraySort = func(a sys.Array) {
		d := e.arrayOf(a)
		slices.SortStableFunc(d.items, func(x, y value) int {
			if lt, _ := e.less(x, y); lt {
				return -1
			}
			if gt, _ := e.less(y, x); gt {
				return 1
			}
			return 0
		})
	}
	c.ArrayInvert = func(a sys.Array) { slices.Reverse(e.arrayOf(a).items) }

	c.DictionaryNew = func() sys.Dictionary { return e.newDictionary(newDict()) }
	c.DictionaryCopy = func(d sys.Dictionary) sys.Dictionary {
		data := e.dictOf(d)
		data.refs++
		return e.newDictionary(data)
	}
	c.DictionaryDestroy = func(d sys.Dictionary) {
		if v, ok := e.drop(kindDictionary, uintptr(d)); ok {
			e.release(value{t: sys.VariantDictionary, v: v})
		}
	}
	c.DictionarySize = func(d sys.Dictionary) int { return len(e.dictOf(d).keys) }
	c.DictionaryGet = func(d sys.Dictionary, key sys.Variant) sys.Variant {
		data := e.dictOf(d)
		i, ok := data.find(e.valueOf(key))
		if !ok {
			return 0
		}
		return e.newVariant(e.retain(data.vals[i]))
	}
	c.DictionarySet = func(d sys.Dictionary, key, v sys.Variant) {
		e.dictSet(e.dictOf(d), e.valueOf(key), e.valueOf(v))
	}
	c.DictionaryHas = func(d sys.Dictionary, key sys.Variant) bool {
		_, ok := e.dictOf(d).find(e.valueOf(key))
		return ok
	}
	c.DictionaryErase = func(d sys.Dictionary, key sys.Variant) bool {
		return e.dictErase(e.dictOf(d), e.valueOf(key))
	}
	c.DictionaryClear = func(d sys.Dictionary) {
		data := e.dictOf(d)
		keys, vals := data.keys, data.vals
		data.keys, data.vals = nil, nil
		clear(data.index)
		for i := range keys {
			e.release(keys[i])
			e.release(vals[i])
		}
	}
	c.DictionaryKeys = func(d sys.Dictionary) sys.Array {
		data := e.dictOf(d)
		out := &arrayData{refs: 1}
		for _, k := range data.keys {
			out.items = append(out.items, e.retain(k))
		}
		return e.newArray(out)
	}
	c.DictionaryValues = func(d sys.Dictionary) sys.Array {
		data := e.dictOf(d)
		out := &arrayData{refs: 1}
		for _, v := range data.vals {
			out.items = append(out.items, e.retain(v))
		}
		return e.newArray(out)
	}
	c.DictionaryDuplicate = func(d sys.Dictionary, deep bool) sys.Dictionary {
		out := e.duplicate(value{t: sys.VariantDictionary, v: e.dictOf(d)}, deep)
		return e.newDictionary(out.v.(*dictData))
	}
	c.DictionaryToJSON = func(d sys.Dictionary) sys.String {
		var b strings.Builder
		e.writeJSON(&b, value{t: sys.VariantDictionary, v: e.dictOf(d)})
		return e.newString(b.String())
	}
}

// writeJSON renders v the way the engine's JSON printer does.
func (e *Engine) writeJSON(b *strings.Builder, v value) {
	switch x := v.v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(x))
	case int64:
		b.WriteString(strconv.FormatInt(x, 10))
	case float64:
		b.WriteString(ftos(x))
	case *arrayData:
		b.WriteByte('[')
		for i, it := range x.items {
			if i > 0 {
				b.WriteByte(',')
			}
			e.writeJSON(b, it)
		}
		b.WriteByte(']')
	case *dictData:
		b.WriteByte('{')
		for i, k := range x.keys {
			if i > 0 {
				b.WriteByte(',')
			}
			writeJSONString(b, e.stringify(k))
			b.WriteByte(':')
			e.writeJSON(b, x.vals[i])
		}
		b.WriteByte('}')
	case *poolData:
		e.writeJSON(b, value{t: sys.VariantArray, v: &arrayData{items: x.values()}})
	default:
		writeJSONString(b, e.stringify(v))
	}
}

func writeJSONString(b *strings.Builder, s string) {
	quoted, _ := json.Marshal(s)
	b.Write(quoted)
}
