package convert

import (
	"reflect"

	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/geom"
)

// Kinded is implemented by engine value types that know their variant kind
// without a live value.
type Kinded interface {
	VariantType() core.VariantType
}

var (
	kindedType  = reflect.TypeFor[Kinded]()
	variantType = reflect.TypeFor[core.Variant]()
)

var geomKinds = map[reflect.Type]core.VariantType{
	reflect.TypeFor[geom.Vector2]():     core.TypeVector2,
	reflect.TypeFor[geom.Vector3]():     core.TypeVector3,
	reflect.TypeFor[geom.Rect2]():       core.TypeRect2,
	reflect.TypeFor[geom.Transform2D](): core.TypeTransform2D,
	reflect.TypeFor[geom.Plane]():       core.TypePlane,
	reflect.TypeFor[geom.Quat]():        core.TypeQuat,
	reflect.TypeFor[geom.AABB]():        core.TypeAABB,
	reflect.TypeFor[geom.Basis]():       core.TypeBasis,
	reflect.TypeFor[geom.Transform]():   core.TypeTransform,
	reflect.TypeFor[geom.Color]():       core.TypeColor,
}

// TypeOf reports the variant kind values of t encode to. Types that may
// encode to several kinds, such as interfaces and core.Variant, report
// TypeNil.
func TypeOf(t reflect.Type) core.VariantType {
	switch {
	case t == variantType, t.Kind() == reflect.Interface:
		return core.TypeNil
	case t.Kind() == reflect.Pointer:
		return TypeOf(t.Elem())
	}
	if t.Implements(kindedType) {
		return reflect.Zero(t).Interface().(Kinded).VariantType()
	}
	if k, ok := geomKinds[t]; ok {
		return k
	}
	if t.Implements(taggedEnumType) {
		return core.TypeDictionary
	}
	if t.Implements(enumType) {
		return core.TypeString
	}
	switch t.Kind() {
	case reflect.Bool:
		return core.TypeBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return core.TypeInt
	case reflect.Float32, reflect.Float64:
		return core.TypeFloat
	case reflect.String:
		return core.TypeString
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return core.TypePoolByteArray
		}
		return core.TypeArray
	case reflect.Array:
		return core.TypeArray
	case reflect.Map, reflect.Struct:
		return core.TypeDictionary
	}
	return core.TypeNil
}
