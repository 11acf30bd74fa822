package core

import (
	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/geom"
	"github.com/wippyai/gdnative/sys"
)

// ErrInvalidOp matches errors returned by Evaluate for operator and operand
// combinations the engine does not define.
var ErrInvalidOp = &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindInvalidOp}

// Variant is an owned engine dynamic value.
//
// A Variant must be destroyed exactly once. Constructors copy their input;
// accessors returning engine values return new owned values.
type Variant struct {
	h sys.Variant
}

// VariantFromHandle takes ownership of a raw variant handle.
func VariantFromHandle(h sys.Variant) Variant { return Variant{h: h} }

// Handle returns the raw handle. The Variant keeps ownership.
func (v Variant) Handle() sys.Variant { return v.h }

func NilVariant() Variant              { return Variant{h: api().VariantNewNil()} }
func BoolVariant(b bool) Variant       { return Variant{h: api().VariantNewBool(b)} }
func IntVariant(i int64) Variant       { return Variant{h: api().VariantNewInt(i)} }
func FloatVariant(f float64) Variant   { return Variant{h: api().VariantNewReal(f)} }
func RIDVariant(r RID) Variant         { return Variant{h: api().VariantNewRID(r.raw)} }
func ColorVariant(c geom.Color) Variant { return Variant{h: api().VariantNewColor(c)} }

// StringVariant returns a variant holding the given text.
func StringVariant(s string) Variant {
	gs := NewString(s)
	defer gs.Destroy()
	return gs.ToVariant()
}

func Vector2Variant(v geom.Vector2) Variant { return Variant{h: api().VariantNewVector2(v)} }
func Vector3Variant(v geom.Vector3) Variant { return Variant{h: api().VariantNewVector3(v)} }
func Rect2Variant(r geom.Rect2) Variant     { return Variant{h: api().VariantNewRect2(r)} }
func PlaneVariant(p geom.Plane) Variant     { return Variant{h: api().VariantNewPlane(p)} }
func QuatVariant(q geom.Quat) Variant       { return Variant{h: api().VariantNewQuat(q)} }
func AABBVariant(a geom.AABB) Variant       { return Variant{h: api().VariantNewAABB(a)} }
func BasisVariant(b geom.Basis) Variant     { return Variant{h: api().VariantNewBasis(b)} }

func Transform2DVariant(t geom.Transform2D) Variant {
	return Variant{h: api().VariantNewTransform2D(t)}
}

func TransformVariant(t geom.Transform) Variant {
	return Variant{h: api().VariantNewTransform(t)}
}

// ObjectVariant returns a variant referencing an engine object. For
// reference-counted objects the engine adds a reference held by the variant.
// Typed callers should use object.Ref.ToVariant.
func ObjectVariant(o sys.Object) Variant {
	if o == 0 {
		return NilVariant()
	}
	return Variant{h: api().VariantNewObject(o)}
}

// Type returns the variant's kind. The zero Variant reports TypeNil.
func (v Variant) Type() VariantType {
	if v.h == 0 {
		return TypeNil
	}
	return api().VariantGetType(v.h)
}

func (v Variant) IsNil() bool { return v.Type() == TypeNil }

// Clone returns a new owned copy.
func (v Variant) Clone() Variant { return Variant{h: api().VariantCopy(v.h)} }

// Destroy releases the variant and drops its hold on the payload.
func (v Variant) Destroy() {
	if v.h != 0 {
		api().VariantDestroy(v.h)
	}
}

// String returns the engine's stringification of the value.
func (v Variant) String() string {
	if v.h == 0 {
		return "Null"
	}
	s := String{h: api().VariantAsString(v.h)}
	defer s.Destroy()
	return s.String()
}

// Coercing accessors, matching the engine's own conversion rules.

func (v Variant) ToBool() bool     { return api().VariantAsBool(v.h) }
func (v Variant) ToInt() int64     { return api().VariantAsInt(v.h) }
func (v Variant) ToFloat() float64 { return api().VariantAsReal(v.h) }

// Booleanize returns the engine's truthiness of the value.
func (v Variant) Booleanize() bool { return api().VariantBooleanize(v.h) }

// Typed accessors. Each reports false when the variant holds another kind.

func (v Variant) TryToBool() (bool, bool) {
	if v.Type() != TypeBool {
		return false, false
	}
	return api().VariantAsBool(v.h), true
}

func (v Variant) TryToInt() (int64, bool) {
	if v.Type() != TypeInt {
		return 0, false
	}
	return api().VariantAsInt(v.h), true
}

func (v Variant) TryToFloat() (float64, bool) {
	if v.Type() != TypeFloat {
		return 0, false
	}
	return api().VariantAsReal(v.h), true
}

// TryToString returns the text of a String variant.
func (v Variant) TryToString() (string, bool) {
	s, ok := v.TryToGodotString()
	if !ok {
		return "", false
	}
	defer s.Destroy()
	return s.String(), true
}

// TryToGodotString returns a new owned engine string.
func (v Variant) TryToGodotString() (String, bool) {
	if v.Type() != TypeString {
		return String{}, false
	}
	return String{h: api().VariantAsString(v.h)}, true
}

func (v Variant) TryToVector2() (geom.Vector2, bool) {
	if v.Type() != TypeVector2 {
		return geom.Vector2{}, false
	}
	return api().VariantAsVector2(v.h), true
}

func (v Variant) TryToRect2() (geom.Rect2, bool) {
	if v.Type() != TypeRect2 {
		return geom.Rect2{}, false
	}
	return api().VariantAsRect2(v.h), true
}

func (v Variant) TryToVector3() (geom.Vector3, bool) {
	if v.Type() != TypeVector3 {
		return geom.Vector3{}, false
	}
	return api().VariantAsVector3(v.h), true
}

func (v Variant) TryToTransform2D() (geom.Transform2D, bool) {
	if v.Type() != TypeTransform2D {
		return geom.Transform2D{}, false
	}
	return api().VariantAsTransform2D(v.h), true
}

func (v Variant) TryToPlane() (geom.Plane, bool) {
	if v.Type() != TypePlane {
		return geom.Plane{}, false
	}
	return api().VariantAsPlane(v.h), true
}

func (v Variant) TryToQuat() (geom.Quat, bool) {
	if v.Type() != TypeQuat {
		return geom.Quat{}, false
	}
	return api().VariantAsQuat(v.h), true
}

func (v Variant) TryToAABB() (geom.AABB, bool) {
	if v.Type() != TypeAABB {
		return geom.AABB{}, false
	}
	return api().VariantAsAABB(v.h), true
}

func (v Variant) TryToBasis() (geom.Basis, bool) {
	if v.Type() != TypeBasis {
		return geom.Basis{}, false
	}
	return api().VariantAsBasis(v.h), true
}

func (v Variant) TryToTransform() (geom.Transform, bool) {
	if v.Type() != TypeTransform {
		return geom.Transform{}, false
	}
	return api().VariantAsTransform(v.h), true
}

func (v Variant) TryToColor() (geom.Color, bool) {
	if v.Type() != TypeColor {
		return geom.Color{}, false
	}
	return api().VariantAsColor(v.h), true
}

// TryToNodePath returns a new owned node path.
func (v Variant) TryToNodePath() (NodePath, bool) {
	if v.Type() != TypeNodePath {
		return NodePath{}, false
	}
	return NodePath{h: api().VariantAsNodePath(v.h)}, true
}

func (v Variant) TryToRID() (RID, bool) {
	if v.Type() != TypeRID {
		return RID{}, false
	}
	return RID{raw: api().VariantAsRID(v.h)}, true
}

// TryToObject returns the raw object handle of an Object variant. No
// reference is added; see object.FromVariant for a typed, owning extraction.
func (v Variant) TryToObject() (sys.Object, bool) {
	if v.Type() != TypeObject {
		return 0, false
	}
	o := api().VariantAsObject(v.h)
	return o, o != 0
}

// TryToDictionary returns a new shared reference to the dictionary payload.
func (v Variant) TryToDictionary() (Dictionary[Shared], bool) {
	if v.Type() != TypeDictionary {
		return Dictionary[Shared]{}, false
	}
	return Dictionary[Shared]{h: api().VariantAsDictionary(v.h)}, true
}

// TryToArray returns a new shared reference to the array payload.
func (v Variant) TryToArray() (VariantArray[Shared], bool) {
	if v.Type() != TypeArray {
		return VariantArray[Shared]{}, false
	}
	return VariantArray[Shared]{h: api().VariantAsArray(v.h)}, true
}

// Equal reports engine equality.
func (v Variant) Equal(o Variant) bool { return api().VariantEqual(v.h, o.h) }

// Less reports engine ordering.
func (v Variant) Less(o Variant) bool { return api().VariantLess(v.h, o.h) }

// HashCompare compares by hash semantics, under which NaN equals NaN.
func (v Variant) HashCompare(o Variant) bool { return api().VariantHashCompare(v.h, o.h) }

func (v Variant) Hash() uint32 { return api().VariantHash(v.h) }

// Evaluate applies an engine operator. Unary operators ignore rhs; pass
// NilVariant or the zero Variant. The result is owned by the caller.
func (v Variant) Evaluate(op VariantOperator, rhs Variant) (Variant, error) {
	b := rhs.h
	if b == 0 {
		nilv := NilVariant()
		defer nilv.Destroy()
		b = nilv.h
	}
	out, ok := api().VariantEvaluate(op, v.h, b)
	if !ok {
		return Variant{}, errors.New(errors.PhaseRuntime, errors.KindInvalidOp).
			VariantType(v.Type().String()).
			Detail("operator %s is not defined for %s and %s", op, v.Type(), rhs.Type()).
			Build()
	}
	return Variant{h: out}, nil
}

// HasMethod reports whether the value responds to method.
func (v Variant) HasMethod(method string) bool {
	m := NewString(method)
	defer m.Destroy()
	return api().VariantHasMethod(v.h, m.h)
}

// Call invokes a method dynamically. Arguments are borrowed. Engine call
// failures are returned as *CallError.
func (v Variant) Call(method string, args ...Variant) (Variant, error) {
	m := NewString(method)
	defer m.Destroy()
	raw := make([]sys.Variant, len(args))
	for i, a := range args {
		raw[i] = a.h
	}
	out, cerr := api().VariantCall(v.h, m.h, raw)
	if cerr.Error != sys.CallOK {
		if out != 0 {
			api().VariantDestroy(out)
		}
		return Variant{}, callError(method, cerr)
	}
	return Variant{h: out}, nil
}

// ToVariant returns a copy, so Variant itself satisfies ToVariant.
func (v Variant) ToVariant() Variant { return v.Clone() }

// FromVariant stores a copy of src.
func (v *Variant) FromVariant(src Variant) error {
	*v = src.Clone()
	return nil
}

// Handles converts a slice of variants to raw handles. The variants keep ownership.
func Handles(vs []Variant) []sys.Variant {
	raw := make([]sys.Variant, len(vs))
	for i, v := range vs {
		raw[i] = v.h
	}
	return raw
}

// DestroyAll destroys each variant.
func DestroyAll(vs []Variant) {
	for _, v := range vs {
		v.Destroy()
	}
}
