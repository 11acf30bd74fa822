package convert

import (
	"reflect"
	"slices"

	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/errors"
)

// Enum is implemented by integer or string types with a fixed set of named
// values. An integer enum's value indexes EnumVariants; a string enum's
// value is the name itself. Both encode as the name.
//
// Integer types that do not implement Enum encode as plain integers.
type Enum interface {
	EnumVariants() []string
}

// TaggedEnum is a sum type. It encodes as a one-entry dictionary mapping the
// active variant name to its payload. A nil payload encodes as Nil.
type TaggedEnum interface {
	Enum
	EnumValue() (variant string, payload any)
}

// TaggedEnumDecoder is implemented by pointers to decodable TaggedEnum
// types. The payload is borrowed; Decode it into the variant's data.
type TaggedEnumDecoder interface {
	SetEnumValue(variant string, payload core.Variant) error
}

func fillEnum(c *codec, t reflect.Type, path []string) error {
	variants := reflect.Zero(t).Interface().(Enum).EnumVariants()

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	case reflect.String:
	default:
		return errors.New(errors.PhaseConvert, errors.KindInvalidEnum).
			Path(path...).
			GoType(t.String()).
			Detail("enum types must be integers or strings, got %s", t.Kind()).
			Build()
	}
	isString := t.Kind() == reflect.String

	c.enc = func(rv reflect.Value) (core.Variant, error) {
		name, ok := enumName(rv, variants, isString)
		if !ok {
			return core.Variant{}, errors.New(errors.PhaseConvert, errors.KindInvalidEnum).
				GoType(t.String()).
				Value(rv.Interface()).
				Detail("value is not one of %v", variants).
				Build()
		}
		return core.StringVariant(name), nil
	}

	c.dec = func(v core.Variant, rv reflect.Value) *core.FromVariantError {
		name, ok := v.TryToString()
		if !ok {
			return core.InvalidEnumRepr("String", core.InvalidVariantType(v.Type(), core.TypeString))
		}
		i := slices.Index(variants, name)
		if i < 0 {
			return core.UnknownEnumVariant(name, variants)
		}
		switch {
		case isString:
			rv.SetString(name)
		case rv.CanInt():
			rv.SetInt(int64(i))
		default:
			rv.SetUint(uint64(i))
		}
		return nil
	}
	return nil
}

func enumName(rv reflect.Value, variants []string, isString bool) (string, bool) {
	if isString {
		name := rv.String()
		return name, slices.Contains(variants, name)
	}
	var i int64
	if rv.CanInt() {
		i = rv.Int()
	} else {
		i = int64(rv.Uint())
	}
	if i < 0 || i >= int64(len(variants)) {
		return "", false
	}
	return variants[i], true
}

func fillTaggedEnum(c *codec, t reflect.Type) {
	decodable := reflect.PointerTo(t).Implements(taggedDecoderType)

	c.enc = func(rv reflect.Value) (core.Variant, error) {
		e := rv.Interface().(TaggedEnum)
		name, payload := e.EnumValue()
		if !slices.Contains(e.EnumVariants(), name) {
			return core.Variant{}, errors.New(errors.PhaseConvert, errors.KindInvalidEnum).
				GoType(t.String()).
				Detail("variant %q is not one of %v", name, e.EnumVariants()).
				Build()
		}
		pv, err := ToVariant(payload)
		if err != nil {
			return core.Variant{}, err
		}
		d := core.NewDictionary()
		defer d.Destroy()
		kv := core.StringVariant(name)
		core.MutDictionary(d).Insert(kv, pv)
		kv.Destroy()
		pv.Destroy()
		return d.ToVariant(), nil
	}

	c.dec = func(v core.Variant, rv reflect.Value) *core.FromVariantError {
		if !decodable {
			return core.CustomFromVariantError("%s does not implement SetEnumValue", t)
		}
		d, ok := v.TryToDictionary()
		if !ok {
			return core.InvalidEnumRepr("Dictionary", core.InvalidVariantType(v.Type(), core.TypeDictionary))
		}
		defer d.Destroy()
		if n := d.Len(); n != 1 {
			return core.InvalidEnumRepr("Dictionary", core.InvalidLength(n, 1))
		}
		variants := rv.Interface().(Enum).EnumVariants()
		for k, payload := range d.All() {
			name, ok := k.TryToString()
			if !ok {
				return core.InvalidEnumRepr("Dictionary", core.InvalidVariantType(k.Type(), core.TypeString))
			}
			if !slices.Contains(variants, name) {
				return core.UnknownEnumVariant(name, variants)
			}
			err := rv.Addr().Interface().(TaggedEnumDecoder).SetEnumValue(name, payload)
			if err != nil {
				return core.InvalidEnumVariant(name, core.AsFromVariantError(err))
			}
		}
		return nil
	}
}
