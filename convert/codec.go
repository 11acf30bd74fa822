package convert

import (
	"cmp"
	"math"
	"reflect"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/geom"
)

type encodeFunc func(rv reflect.Value) (core.Variant, error)

// decodeFunc stores the decoded value into rv, which is always settable.
type decodeFunc func(v core.Variant, rv reflect.Value) *core.FromVariantError

type codec struct {
	t   reflect.Type
	enc encodeFunc
	dec decodeFunc
}

var (
	codecs  sync.Map // reflect.Type -> *codec
	buildMu sync.Mutex
)

var (
	toVariantType     = reflect.TypeFor[core.ToVariant]()
	fromVariantType   = reflect.TypeFor[core.FromVariant]()
	enumType          = reflect.TypeFor[Enum]()
	taggedEnumType    = reflect.TypeFor[TaggedEnum]()
	taggedDecoderType = reflect.TypeFor[TaggedEnumDecoder]()
)

// codecFor returns the cached codec for t, compiling it on first use.
func codecFor(t reflect.Type) (*codec, error) {
	if c, ok := codecs.Load(t); ok {
		return c.(*codec), nil
	}
	buildMu.Lock()
	defer buildMu.Unlock()

	b := builder{pending: make(map[reflect.Type]*codec)}
	c, err := b.build(t, nil)
	if err != nil {
		return nil, err
	}
	for pt, pc := range b.pending {
		codecs.Store(pt, pc)
	}
	return c, nil
}

// builder compiles a type graph. Codecs are only published once the whole
// graph compiled, so a failure never leaves a half-built entry behind.
type builder struct {
	pending map[reflect.Type]*codec
}

func (b *builder) build(t reflect.Type, path []string) (*codec, error) {
	if c, ok := codecs.Load(t); ok {
		return c.(*codec), nil
	}
	if c, ok := b.pending[t]; ok {
		// Recursive type; the closures resolve it at call time.
		return c, nil
	}
	c := &codec{t: t}
	b.pending[t] = c
	if err := b.fill(c, t, path); err != nil {
		return nil, err
	}
	return c, nil
}

func (b *builder) fill(c *codec, t reflect.Type, path []string) error {
	switch t.Kind() {
	case reflect.Pointer:
		return b.fillPointer(c, t, path)
	case reflect.Interface:
		fillInterface(c, t)
		return nil
	}

	if t.Implements(taggedEnumType) {
		fillTaggedEnum(c, t)
		return nil
	}
	if t.Implements(enumType) {
		return fillEnum(c, t, path)
	}

	customEnc := t.Implements(toVariantType) || reflect.PointerTo(t).Implements(toVariantType)
	customDec := reflect.PointerTo(t).Implements(fromVariantType)
	if customEnc && customDec {
		c.enc, c.dec = methodEncode, methodDecode
		return nil
	}

	if enc, dec, ok := direct(t); ok {
		c.enc, c.dec = enc, dec
		return nil
	}

	if err := b.fillDerived(c, t, path); err != nil {
		return err
	}
	if customEnc {
		c.enc = methodEncode
	}
	if customDec {
		c.dec = methodDecode
	}
	return nil
}

func (b *builder) fillDerived(c *codec, t reflect.Type, path []string) error {
	switch t.Kind() {
	case reflect.Bool:
		c.enc = func(rv reflect.Value) (core.Variant, error) { return core.BoolVariant(rv.Bool()), nil }
		c.dec = func(v core.Variant, rv reflect.Value) *core.FromVariantError {
			x, ok := v.TryToBool()
			if !ok {
				return core.InvalidVariantType(v.Type(), core.TypeBool)
			}
			rv.SetBool(x)
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		c.enc = func(rv reflect.Value) (core.Variant, error) { return core.IntVariant(rv.Int()), nil }
		c.dec = func(v core.Variant, rv reflect.Value) *core.FromVariantError {
			x, ok := v.TryToInt()
			if !ok {
				return core.InvalidVariantType(v.Type(), core.TypeInt)
			}
			if rv.OverflowInt(x) {
				return core.CustomFromVariantError("%d overflows %s", x, rv.Type())
			}
			rv.SetInt(x)
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		c.enc = func(rv reflect.Value) (core.Variant, error) {
			x := rv.Uint()
			if x > math.MaxInt64 {
				return core.Variant{}, errors.Overflow(errors.PhaseConvert, path, x, "int")
			}
			return core.IntVariant(int64(x)), nil
		}
		c.dec = func(v core.Variant, rv reflect.Value) *core.FromVariantError {
			x, ok := v.TryToInt()
			if !ok {
				return core.InvalidVariantType(v.Type(), core.TypeInt)
			}
			if x < 0 || rv.OverflowUint(uint64(x)) {
				return core.CustomFromVariantError("%d overflows %s", x, rv.Type())
			}
			rv.SetUint(uint64(x))
			return nil
		}
	case reflect.Float32, reflect.Float64:
		c.enc = func(rv reflect.Value) (core.Variant, error) { return core.FloatVariant(rv.Float()), nil }
		c.dec = func(v core.Variant, rv reflect.Value) *core.FromVariantError {
			x, ok := v.TryToFloat()
			if !ok {
				return core.InvalidVariantType(v.Type(), core.TypeFloat)
			}
			rv.SetFloat(x)
			return nil
		}
	case reflect.String:
		c.enc = func(rv reflect.Value) (core.Variant, error) { return core.StringVariant(rv.String()), nil }
		c.dec = func(v core.Variant, rv reflect.Value) *core.FromVariantError {
			x, ok := v.TryToString()
			if !ok {
				return core.InvalidVariantType(v.Type(), core.TypeString)
			}
			rv.SetString(x)
			return nil
		}
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			fillBytes(c)
			return nil
		}
		return b.fillList(c, t, path)
	case reflect.Array:
		return b.fillList(c, t, path)
	case reflect.Map:
		return b.fillMap(c, t, path)
	case reflect.Struct:
		return b.fillStruct(c, t, path)
	default:
		return errors.New(errors.PhaseConvert, errors.KindUnsupported).
			Path(path...).
			GoType(t.String()).
			Detail("no variant representation for %s", t.Kind()).
			Build()
	}
	return nil
}

func methodEncode(rv reflect.Value) (core.Variant, error) {
	if tv, ok := rv.Interface().(core.ToVariant); ok {
		return tv.ToVariant(), nil
	}
	var p reflect.Value
	if rv.CanAddr() {
		p = rv.Addr()
	} else {
		p = reflect.New(rv.Type())
		p.Elem().Set(rv)
	}
	return p.Interface().(core.ToVariant).ToVariant(), nil
}

func methodDecode(v core.Variant, rv reflect.Value) *core.FromVariantError {
	err := rv.Addr().Interface().(core.FromVariant).FromVariant(v)
	return core.AsFromVariantError(err)
}

// direct returns codecs for the geometry value types, which map one to one
// onto variant kinds.
func direct(t reflect.Type) (encodeFunc, decodeFunc, bool) {
	switch t {
	case reflect.TypeFor[geom.Vector2]():
		enc, dec := plain(core.TypeVector2, core.Vector2Variant, core.Variant.TryToVector2)
		return enc, dec, true
	case reflect.TypeFor[geom.Vector3]():
		enc, dec := plain(core.TypeVector3, core.Vector3Variant, core.Variant.TryToVector3)
		return enc, dec, true
	case reflect.TypeFor[geom.Rect2]():
		enc, dec := plain(core.TypeRect2, core.Rect2Variant, core.Variant.TryToRect2)
		return enc, dec, true
	case reflect.TypeFor[geom.Transform2D]():
		enc, dec := plain(core.TypeTransform2D, core.Transform2DVariant, core.Variant.TryToTransform2D)
		return enc, dec, true
	case reflect.TypeFor[geom.Plane]():
		enc, dec := plain(core.TypePlane, core.PlaneVariant, core.Variant.TryToPlane)
		return enc, dec, true
	case reflect.TypeFor[geom.Quat]():
		enc, dec := plain(core.TypeQuat, core.QuatVariant, core.Variant.TryToQuat)
		return enc, dec, true
	case reflect.TypeFor[geom.AABB]():
		enc, dec := plain(core.TypeAABB, core.AABBVariant, core.Variant.TryToAABB)
		return enc, dec, true
	case reflect.TypeFor[geom.Basis]():
		enc, dec := plain(core.TypeBasis, core.BasisVariant, core.Variant.TryToBasis)
		return enc, dec, true
	case reflect.TypeFor[geom.Transform]():
		enc, dec := plain(core.TypeTransform, core.TransformVariant, core.Variant.TryToTransform)
		return enc, dec, true
	case reflect.TypeFor[geom.Color]():
		enc, dec := plain(core.TypeColor, core.ColorVariant, core.Variant.TryToColor)
		return enc, dec, true
	}
	return nil, nil, false
}

func plain[T any](kind core.VariantType, wrap func(T) core.Variant, get func(core.Variant) (T, bool)) (encodeFunc, decodeFunc) {
	enc := func(rv reflect.Value) (core.Variant, error) {
		return wrap(rv.Interface().(T)), nil
	}
	dec := func(v core.Variant, rv reflect.Value) *core.FromVariantError {
		x, ok := get(v)
		if !ok {
			return core.InvalidVariantType(v.Type(), kind)
		}
		rv.Set(reflect.ValueOf(x))
		return nil
	}
	return enc, dec
}

func (b *builder) fillPointer(c *codec, t reflect.Type, path []string) error {
	elem, err := b.build(t.Elem(), path)
	if err != nil {
		return err
	}
	c.enc = func(rv reflect.Value) (core.Variant, error) {
		if rv.IsNil() {
			return core.NilVariant(), nil
		}
		return elem.enc(rv.Elem())
	}
	c.dec = func(v core.Variant, rv reflect.Value) *core.FromVariantError {
		if v.IsNil() {
			rv.SetZero()
			return nil
		}
		p := reflect.New(t.Elem())
		if err := elem.dec(v, p.Elem()); err != nil {
			return err
		}
		rv.Set(p)
		return nil
	}
	return nil
}

func fillInterface(c *codec, t reflect.Type) {
	c.enc = func(rv reflect.Value) (core.Variant, error) {
		if rv.IsNil() {
			return core.NilVariant(), nil
		}
		return EncodeValue(rv.Elem())
	}
	c.dec = func(v core.Variant, rv reflect.Value) *core.FromVariantError {
		if v.IsNil() {
			rv.SetZero()
			return nil
		}
		x := reflect.ValueOf(Natural(v))
		if !x.Type().AssignableTo(t) {
			return core.CustomFromVariantError("%s value does not implement %s", v.Type(), t)
		}
		rv.Set(x)
		return nil
	}
}

func fillBytes(c *codec) {
	c.enc = func(rv reflect.Value) (core.Variant, error) {
		a := core.PoolArrayFromSlice(rv.Bytes())
		defer a.Destroy()
		return a.ToVariant(), nil
	}
	c.dec = func(v core.Variant, rv reflect.Value) *core.FromVariantError {
		a, err := core.PoolArrayFromVariant[byte](v)
		if err != nil {
			return core.AsFromVariantError(err)
		}
		defer a.Destroy()
		rv.SetBytes(a.ToSlice())
		return nil
	}
}

func (b *builder) fillList(c *codec, t reflect.Type, path []string) error {
	elem, err := b.build(t.Elem(), append(path, "[]"))
	if err != nil {
		return err
	}
	fixed := t.Kind() == reflect.Array

	c.enc = func(rv reflect.Value) (core.Variant, error) {
		a := core.NewVariantArray()
		defer a.Destroy()
		m := core.MutArray(a)
		for i := range rv.Len() {
			item, err := elem.enc(rv.Index(i))
			if err != nil {
				return core.Variant{}, err
			}
			m.Push(item)
			item.Destroy()
		}
		return a.ToVariant(), nil
	}

	c.dec = func(v core.Variant, rv reflect.Value) *core.FromVariantError {
		if isPool(v.Type()) {
			return decodePool(v, rv, fixed)
		}
		a, ok := v.TryToArray()
		if !ok {
			return core.InvalidVariantType(v.Type(), core.TypeArray)
		}
		defer a.Destroy()
		n := a.Len()
		if fixed {
			if n != t.Len() {
				return core.InvalidLength(n, t.Len())
			}
		} else {
			rv.Set(reflect.MakeSlice(t, n, n))
		}
		for i := range n {
			item := a.Get(i)
			ferr := elem.dec(item, rv.Index(i))
			item.Destroy()
			if ferr != nil {
				return core.ItemError(i, ferr)
			}
		}
		return nil
	}
	return nil
}

func isPool(t core.VariantType) bool {
	return t >= core.TypePoolByteArray && t <= core.TypePoolColorArray
}

// decodePool fills a slice or array from a typed pool array whose elements
// convert to the destination element type.
func decodePool(v core.Variant, rv reflect.Value, fixed bool) *core.FromVariantError {
	src := reflect.ValueOf(Natural(v))
	n := src.Len()
	if fixed {
		if n != rv.Len() {
			return core.InvalidLength(n, rv.Len())
		}
	} else {
		rv.Set(reflect.MakeSlice(rv.Type(), n, n))
	}
	et := rv.Type().Elem()
	for i := range n {
		x := src.Index(i)
		if !x.Type().ConvertibleTo(et) {
			return core.ItemError(i, core.CustomFromVariantError("%s element does not convert to %s", x.Type(), et))
		}
		rv.Index(i).Set(x.Convert(et))
	}
	return nil
}

func (b *builder) fillMap(c *codec, t reflect.Type, path []string) error {
	key, err := b.build(t.Key(), append(path, "{key}"))
	if err != nil {
		return err
	}
	val, err := b.build(t.Elem(), append(path, "{}"))
	if err != nil {
		return err
	}
	sortKeys := t.Key().Kind() == reflect.String

	c.enc = func(rv reflect.Value) (core.Variant, error) {
		d := core.NewDictionary()
		defer d.Destroy()
		m := core.MutDictionary(d)

		keys := rv.MapKeys()
		if sortKeys {
			slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.String(), b.String()) })
		}
		for _, k := range keys {
			kv, err := key.enc(k)
			if err != nil {
				return core.Variant{}, err
			}
			vv, err := val.enc(rv.MapIndex(k))
			if err != nil {
				kv.Destroy()
				return core.Variant{}, err
			}
			m.Insert(kv, vv)
			kv.Destroy()
			vv.Destroy()
		}
		return d.ToVariant(), nil
	}

	c.dec = func(v core.Variant, rv reflect.Value) *core.FromVariantError {
		d, ok := v.TryToDictionary()
		if !ok {
			return core.InvalidVariantType(v.Type(), core.TypeDictionary)
		}
		defer d.Destroy()
		out := reflect.MakeMapWithSize(t, d.Len())
		for k, item := range d.All() {
			kp := reflect.New(t.Key()).Elem()
			if ferr := key.dec(k, kp); ferr != nil {
				return core.FieldError(k.String(), ferr)
			}
			vp := reflect.New(t.Elem()).Elem()
			if ferr := val.dec(item, vp); ferr != nil {
				return core.FieldError(k.String(), ferr)
			}
			out.SetMapIndex(kp, vp)
		}
		rv.Set(out)
		return nil
	}
	return nil
}

type structField struct {
	name     string
	index    int
	codec    *codec
	skipTo   bool
	skipFrom bool
}

func (b *builder) fillStruct(c *codec, t reflect.Type, path []string) error {
	var fields []structField
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		f := structField{name: SnakeCase(sf.Name), index: i}
		if tag, ok := sf.Tag.Lookup("gd"); ok {
			if tag == "-" {
				continue
			}
			name, opts, _ := strings.Cut(tag, ",")
			if name != "" {
				f.name = name
			}
			for opt := range strings.SplitSeq(opts, ",") {
				switch opt {
				case "skip_to":
					f.skipTo = true
				case "skip_from":
					f.skipFrom = true
				}
			}
		}
		fc, err := b.build(sf.Type, append(path, f.name))
		if err != nil {
			return err
		}
		f.codec = fc
		fields = append(fields, f)
	}

	c.enc = func(rv reflect.Value) (core.Variant, error) {
		d := core.NewDictionary()
		defer d.Destroy()
		m := core.MutDictionary(d)
		for _, f := range fields {
			if f.skipTo {
				continue
			}
			vv, err := f.codec.enc(rv.Field(f.index))
			if err != nil {
				return core.Variant{}, err
			}
			kv := core.StringVariant(f.name)
			m.Insert(kv, vv)
			kv.Destroy()
			vv.Destroy()
		}
		return d.ToVariant(), nil
	}

	c.dec = func(v core.Variant, rv reflect.Value) *core.FromVariantError {
		d, ok := v.TryToDictionary()
		if !ok {
			return core.InvalidStructRepr("Dictionary", core.InvalidVariantType(v.Type(), core.TypeDictionary))
		}
		defer d.Destroy()
		for _, f := range fields {
			if f.skipFrom {
				continue
			}
			kv := core.StringVariant(f.name)
			item := d.GetOrNil(kv)
			kv.Destroy()
			ferr := f.codec.dec(item, rv.Field(f.index))
			item.Destroy()
			if ferr != nil {
				return core.FieldError(f.name, ferr)
			}
		}
		return nil
	}
	return nil
}

// SnakeCase maps a Go identifier to its engine name: MaxHP -> max_hp.
func SnakeCase(s string) string {
	rs := []rune(s)
	var b strings.Builder
	for i, r := range rs {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(rs[i-1]) || unicode.IsDigit(rs[i-1]) ||
				(i+1 < len(rs) && unicode.IsLower(rs[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
