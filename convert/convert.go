package convert

import (
	"reflect"

	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/geom"
)

// ToVariant encodes v as a new owned Variant. A nil interface encodes as Nil.
func ToVariant(v any) (core.Variant, error) {
	if v == nil {
		return core.NilVariant(), nil
	}
	return EncodeValue(reflect.ValueOf(v))
}

// MustToVariant is ToVariant for values known to be encodable. It panics on
// error.
func MustToVariant(v any) core.Variant {
	out, err := ToVariant(v)
	if err != nil {
		panic(err)
	}
	return out
}

// EncodeValue encodes a reflected value.
func EncodeValue(rv reflect.Value) (core.Variant, error) {
	c, err := codecFor(rv.Type())
	if err != nil {
		return core.Variant{}, err
	}
	return c.enc(rv)
}

// FromVariant decodes v into a T. The variant is borrowed. Engine values in
// the result (strings, containers, object references) are new owned
// references the caller must release.
func FromVariant[T any](v core.Variant) (T, error) {
	var out T
	err := DecodeValue(v, reflect.ValueOf(&out).Elem())
	return out, err
}

// Decode decodes v into the value dst points to.
func Decode(v core.Variant, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New(errors.PhaseConvert, errors.KindInvalidInput).
			Detail("decode target must be a non-nil pointer, got %T", dst).
			Build()
	}
	return DecodeValue(v, rv.Elem())
}

// DecodeValue decodes v into a settable reflected value. Decoding failures
// are *core.FromVariantError; a type with no variant representation fails
// with an *errors.Error before anything is read.
func DecodeValue(v core.Variant, rv reflect.Value) error {
	c, err := codecFor(rv.Type())
	if err != nil {
		return err
	}
	if ferr := c.dec(v, rv); ferr != nil {
		return ferr
	}
	return nil
}

// Check compiles the codec for t, reporting types that cannot be converted.
func Check(t reflect.Type) error {
	_, err := codecFor(t)
	return err
}

// Natural converts v into plain Go values: nil, bool, int64, float64,
// string, geometry values, core.RID, []any, map[string]any (or map[any]any
// when a key is not a string) and typed slices for pool arrays. Node paths
// become strings. Objects become their raw handle without adding a
// reference.
func Natural(v core.Variant) any {
	switch v.Type() {
	case core.TypeNil:
		return nil
	case core.TypeBool:
		x, _ := v.TryToBool()
		return x
	case core.TypeInt:
		x, _ := v.TryToInt()
		return x
	case core.TypeFloat:
		x, _ := v.TryToFloat()
		return x
	case core.TypeString:
		x, _ := v.TryToString()
		return x
	case core.TypeVector2:
		x, _ := v.TryToVector2()
		return x
	case core.TypeRect2:
		x, _ := v.TryToRect2()
		return x
	case core.TypeVector3:
		x, _ := v.TryToVector3()
		return x
	case core.TypeTransform2D:
		x, _ := v.TryToTransform2D()
		return x
	case core.TypePlane:
		x, _ := v.TryToPlane()
		return x
	case core.TypeQuat:
		x, _ := v.TryToQuat()
		return x
	case core.TypeAABB:
		x, _ := v.TryToAABB()
		return x
	case core.TypeBasis:
		x, _ := v.TryToBasis()
		return x
	case core.TypeTransform:
		x, _ := v.TryToTransform()
		return x
	case core.TypeColor:
		x, _ := v.TryToColor()
		return x
	case core.TypeNodePath:
		p, _ := v.TryToNodePath()
		defer p.Destroy()
		return p.String()
	case core.TypeRID:
		x, _ := v.TryToRID()
		return x
	case core.TypeObject:
		x, _ := v.TryToObject()
		return x
	case core.TypeDictionary:
		return naturalDict(v)
	case core.TypeArray:
		a, _ := v.TryToArray()
		defer a.Destroy()
		out := make([]any, 0, a.Len())
		for _, item := range a.All() {
			out = append(out, Natural(item))
		}
		return out
	case core.TypePoolByteArray:
		return naturalPool[byte](v)
	case core.TypePoolIntArray:
		return naturalPool[int32](v)
	case core.TypePoolRealArray:
		return naturalPool[float32](v)
	case core.TypePoolStringArray:
		ss := naturalPool[core.String](v)
		out := make([]string, len(ss))
		for i, s := range ss {
			out[i] = s.String()
			s.Destroy()
		}
		return out
	case core.TypePoolVector2Array:
		return naturalPool[geom.Vector2](v)
	case core.TypePoolVector3Array:
		return naturalPool[geom.Vector3](v)
	case core.TypePoolColorArray:
		return naturalPool[geom.Color](v)
	}
	return nil
}

func naturalDict(v core.Variant) any {
	d, _ := v.TryToDictionary()
	defer d.Destroy()

	strs := make(map[string]any, d.Len())
	var anys map[any]any
	for k, item := range d.All() {
		key, val := Natural(k), Natural(item)
		if anys == nil {
			if s, ok := key.(string); ok {
				strs[s] = val
				continue
			}
			anys = make(map[any]any, d.Len())
			for sk, sv := range strs {
				anys[sk] = sv
			}
		}
		if reflect.TypeOf(key) == nil || reflect.TypeOf(key).Comparable() {
			anys[key] = val
		}
	}
	if anys != nil {
		return anys
	}
	return strs
}

func naturalPool[E core.Element](v core.Variant) []E {
	a, err := core.PoolArrayFromVariant[E](v)
	if err != nil {
		return nil
	}
	defer a.Destroy()
	return a.ToSlice()
}
