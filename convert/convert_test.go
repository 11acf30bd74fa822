package convert_test

import (
	"math"
	"reflect"
	"slices"
	"testing"

	"github.com/wippyai/gdnative/convert"
	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/geom"
	"github.com/wippyai/gdnative/headless"
	"github.com/wippyai/gdnative/sys"
)

func setup(t *testing.T) *headless.Engine {
	t.Helper()
	eng := headless.New()
	api, err := sys.Bind(eng.API())
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	sys.Install(api)
	t.Cleanup(func() {
		sys.Uninstall()
		eng.Close()
	})
	return eng
}

func checkNoLeaks(t *testing.T, eng *headless.Engine) {
	t.Helper()
	if live := eng.LiveHandles(); len(live) != 0 {
		t.Fatalf("leaked handles: %v", live)
	}
}

type stats struct {
	MaxHP int
	Name  string `gd:"n"`
	Cache []int  `gd:"-"`
	Seen  bool   `gd:",skip_from"`
	Pos   geom.Vector2
	Tags  []string
	Extra map[string]float64
	Next  *stats
	dirty bool
}

type dir int

const (
	north dir = iota
	east
)

func (dir) EnumVariants() []string { return []string{"North", "East"} }

type shape struct {
	kind   string
	radius float64
	size   [2]float64
}

func (shape) EnumVariants() []string { return []string{"Circle", "Rect", "Empty"} }

func (s shape) EnumValue() (string, any) {
	switch s.kind {
	case "Circle":
		return "Circle", s.radius
	case "Rect":
		return "Rect", s.size
	}
	return "Empty", nil
}

func (s *shape) SetEnumValue(name string, payload core.Variant) error {
	s.kind = name
	switch name {
	case "Circle":
		return convert.Decode(payload, &s.radius)
	case "Rect":
		return convert.Decode(payload, &s.size)
	}
	return nil
}

func roundTrip[T any](t *testing.T, x T) {
	t.Helper()
	v, err := convert.ToVariant(x)
	if err != nil {
		t.Fatalf("ToVariant(%v): %v", x, err)
	}
	defer v.Destroy()
	got, err := convert.FromVariant[T](v)
	if err != nil {
		t.Fatalf("FromVariant(%s): %v", v, err)
	}
	if !reflect.DeepEqual(got, x) {
		t.Fatalf("round trip = %#v, want %#v", got, x)
	}
}

func TestRoundTrip(t *testing.T) {
	eng := setup(t)

	tests := []struct {
		name string
		run  func(t *testing.T)
	}{
		{"int64", func(t *testing.T) { roundTrip(t, int64(-1<<40)) }},
		{"int8", func(t *testing.T) { roundTrip(t, int8(-3)) }},
		{"uint16", func(t *testing.T) { roundTrip(t, uint16(65535)) }},
		{"float32", func(t *testing.T) { roundTrip(t, float32(1.5)) }},
		{"float64", func(t *testing.T) { roundTrip(t, 0.1) }},
		{"string", func(t *testing.T) { roundTrip(t, "héllo") }},
		{"bool", func(t *testing.T) { roundTrip(t, true) }},
		{"vector3", func(t *testing.T) { roundTrip(t, geom.Vec3(1, 2, 3)) }},
		{"color", func(t *testing.T) { roundTrip(t, geom.RGB(0.5, 0, 1)) }},
		{"transform", func(t *testing.T) { roundTrip(t, geom.IdentityTransform()) }},
		{"slice", func(t *testing.T) { roundTrip(t, []int{1, 2, 3}) }},
		{"array", func(t *testing.T) { roundTrip(t, [2]string{"a", "b"}) }},
		{"bytes", func(t *testing.T) { roundTrip(t, []byte{0, 1, 255}) }},
		{"map", func(t *testing.T) { roundTrip(t, map[string]int{"a": 1, "b": 2}) }},
		{"int keys", func(t *testing.T) { roundTrip(t, map[int]bool{1: true, 2: false}) }},
		{"nil pointer", func(t *testing.T) { roundTrip(t, (*int)(nil)) }},
		{"pointer", func(t *testing.T) { n := 7; roundTrip(t, &n) }},
		{"enum", func(t *testing.T) { roundTrip(t, east) }},
		{"tagged enum", func(t *testing.T) { roundTrip(t, shape{kind: "Circle", radius: 2}) }},
		{"unit tagged enum", func(t *testing.T) { roundTrip(t, shape{kind: "Empty"}) }},
		{"nested", func(t *testing.T) {
			roundTrip(t, stats{MaxHP: 10, Name: "x", Tags: []string{}, Extra: map[string]float64{},
				Next: &stats{MaxHP: 1, Tags: []string{"t"}, Extra: map[string]float64{"k": 0.5}}})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, tt.run)
	}
	checkNoLeaks(t, eng)
}

func TestStructFields(t *testing.T) {
	eng := setup(t)

	v := convert.MustToVariant(stats{MaxHP: 3, Name: "n", Cache: []int{1}, Seen: true})
	d, err := core.DictionaryFromVariant(v)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"max_hp", "n", "seen", "pos", "tags", "extra", "next"} {
		k := core.StringVariant(key)
		if !d.Has(k) {
			t.Errorf("missing key %q", key)
		}
		k.Destroy()
	}
	for _, key := range []string{"cache", "Cache", "dirty"} {
		k := core.StringVariant(key)
		if d.Has(k) {
			t.Errorf("unexpected key %q", key)
		}
		k.Destroy()
	}
	d.Destroy()

	got, err := convert.FromVariant[stats](v)
	if err != nil {
		t.Fatal(err)
	}
	if got.Seen {
		t.Fatal("skip_from field was decoded")
	}
	if got.MaxHP != 3 || got.Name != "n" || got.Cache != nil {
		t.Fatalf("decoded %+v", got)
	}
	v.Destroy()
	checkNoLeaks(t, eng)
}

func TestDecodeErrors(t *testing.T) {
	eng := setup(t)

	tests := []struct {
		name  string
		input any
		into  func(core.Variant) error
		path  []string
		kind  core.FromVariantErrorKind
		taxon errors.Kind
	}{
		{
			name:  "item type",
			input: map[string]any{"max_hp": 1, "n": "x", "pos": geom.Vec2(0, 0), "tags": []any{"a", 1}},
			into:  func(v core.Variant) error { _, err := convert.FromVariant[stats](v); return err },
			path:  []string{"tags", "[1]"},
			kind:  core.FromVariantInvalidType,
			taxon: errors.KindTypeMismatch,
		},
		{
			name:  "struct repr",
			input: 5,
			into:  func(v core.Variant) error { _, err := convert.FromVariant[stats](v); return err },
			kind:  core.FromVariantInvalidStructRepr,
		},
		{
			name:  "array length",
			input: []int{1, 2, 3},
			into:  func(v core.Variant) error { _, err := convert.FromVariant[[2]int](v); return err },
			kind:  core.FromVariantInvalidLength,
			taxon: errors.KindOutOfBounds,
		},
		{
			name:  "unknown enum",
			input: "South",
			into:  func(v core.Variant) error { _, err := convert.FromVariant[dir](v); return err },
			kind:  core.FromVariantUnknownEnumVariant,
		},
		{
			name:  "int overflow",
			input: 300,
			into:  func(v core.Variant) error { _, err := convert.FromVariant[int8](v); return err },
			kind:  core.FromVariantCustom,
		},
		{
			name:  "negative unsigned",
			input: -1,
			into:  func(v core.Variant) error { _, err := convert.FromVariant[uint16](v); return err },
			kind:  core.FromVariantCustom,
		},
		{
			name:  "negative uint64",
			input: -1,
			into:  func(v core.Variant) error { _, err := convert.FromVariant[uint64](v); return err },
			kind:  core.FromVariantCustom,
		},
		{
			name:  "negative uint",
			input: -5,
			into:  func(v core.Variant) error { _, err := convert.FromVariant[uint](v); return err },
			kind:  core.FromVariantCustom,
		},
		{
			name:  "tagged payload",
			input: map[string]any{"Circle": "big"},
			into:  func(v core.Variant) error { _, err := convert.FromVariant[shape](v); return err },
			path:  []string{"Circle"},
			kind:  core.FromVariantInvalidType,
			taxon: errors.KindTypeMismatch,
		},
		{
			name:  "tagged repr",
			input: map[string]any{"Circle": 1.0, "Rect": nil},
			into:  func(v core.Variant) error { _, err := convert.FromVariant[shape](v); return err },
			kind:  core.FromVariantInvalidEnumRepr,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := convert.MustToVariant(tt.input)
			defer v.Destroy()

			err := tt.into(v)
			var fe *core.FromVariantError
			if !errors.As(err, &fe) {
				t.Fatalf("err = %v", err)
			}
			if got := fe.Leaf().Kind; got != tt.kind {
				t.Fatalf("leaf kind = %d, want %d (%v)", got, tt.kind, err)
			}
			if tt.path != nil && !slices.Equal(fe.Path(), tt.path) {
				t.Fatalf("path = %v, want %v", fe.Path(), tt.path)
			}
			if tt.taxon != "" && !errors.Is(err, &errors.Error{Phase: errors.PhaseConvert, Kind: tt.taxon}) {
				t.Fatalf("error does not match %s", tt.taxon)
			}
		})
	}
	checkNoLeaks(t, eng)
}

func TestUnsignedEncodeOverflow(t *testing.T) {
	eng := setup(t)

	_, err := convert.ToVariant(uint64(math.MaxUint64))
	if !errors.Is(err, &errors.Error{Phase: errors.PhaseConvert, Kind: errors.KindOverflow}) {
		t.Fatalf("err = %v", err)
	}
	v, err := convert.ToVariant(uint64(math.MaxInt64))
	if err != nil {
		t.Fatal(err)
	}
	got, err := convert.FromVariant[uint64](v)
	v.Destroy()
	if err != nil || got != math.MaxInt64 {
		t.Errorf("round trip = %d, %v", got, err)
	}
	checkNoLeaks(t, eng)
}

func TestUnsupportedType(t *testing.T) {
	setup(t)

	_, err := convert.ToVariant(make(chan int))
	if !errors.Is(err, &errors.Error{Phase: errors.PhaseConvert, Kind: errors.KindUnsupported}) {
		t.Fatalf("err = %v", err)
	}
	if err := convert.Check(reflect.TypeFor[struct{ F func() }]()); err == nil {
		t.Fatal("Check should reject func fields")
	}
	if err := convert.Check(reflect.TypeFor[stats]()); err != nil {
		t.Fatalf("Check(stats) = %v", err)
	}
	if err := convert.Decode(core.Variant{}, 3); !errors.Is(err, &errors.Error{Phase: errors.PhaseConvert, Kind: errors.KindInvalidInput}) {
		t.Fatalf("Decode into non-pointer = %v", err)
	}
}

func TestEnumOutOfRange(t *testing.T) {
	setup(t)

	if _, err := convert.ToVariant(dir(9)); !errors.Is(err, &errors.Error{Phase: errors.PhaseConvert, Kind: errors.KindInvalidEnum}) {
		t.Fatalf("err = %v", err)
	}
	v := convert.MustToVariant(north)
	defer v.Destroy()
	if got := v.String(); got != "North" {
		t.Fatalf("encoded = %q", got)
	}
}

func TestPoolArraysDecodeIntoSlices(t *testing.T) {
	eng := setup(t)

	p := core.PoolArrayFromSlice([]int32{1, 2, 3})
	v := p.ToVariant()
	p.Destroy()

	got, err := convert.FromVariant[[]int64](v)
	if err != nil || !slices.Equal(got, []int64{1, 2, 3}) {
		t.Fatalf("FromVariant = %v, %v", got, err)
	}
	v.Destroy()
	checkNoLeaks(t, eng)
}

func TestNatural(t *testing.T) {
	setup(t)

	v := convert.MustToVariant(map[string]any{
		"n":    1,
		"list": []any{"a", 2.5, nil},
		"pos":  geom.Vec2(1, 2),
	})
	defer v.Destroy()

	want := map[string]any{
		"n":    int64(1),
		"list": []any{"a", 2.5, nil},
		"pos":  geom.Vec2(1, 2),
	}
	if got := convert.Natural(v); !reflect.DeepEqual(got, want) {
		t.Fatalf("Natural = %#v", got)
	}

	var anyOut any
	if err := convert.Decode(v, &anyOut); err != nil {
		t.Fatal(err)
	}
	if _, ok := anyOut.(map[string]any); !ok {
		t.Fatalf("decoded into any = %T", anyOut)
	}
}

func TestVariantPassesThrough(t *testing.T) {
	eng := setup(t)

	in := core.StringVariant("raw")
	out, err := convert.ToVariant(in)
	if err != nil || !out.Equal(in) {
		t.Fatalf("ToVariant(Variant) = %s, %v", out, err)
	}
	back, err := convert.FromVariant[core.Variant](out)
	if err != nil || back.String() != "raw" {
		t.Fatalf("FromVariant[Variant] = %s, %v", back, err)
	}
	for _, v := range []core.Variant{in, out, back} {
		v.Destroy()
	}

	s := core.NewString("gd")
	sv, _ := convert.ToVariant(s)
	gs, err := convert.FromVariant[core.String](sv)
	if err != nil || gs.String() != "gd" {
		t.Fatalf("FromVariant[String] = %v", err)
	}
	s.Destroy()
	gs.Destroy()
	sv.Destroy()
	checkNoLeaks(t, eng)
}

type mood int

func (mood) EnumVariants() []string { return []string{"calm", "angry"} }

func TestTypeOf(t *testing.T) {
	tests := []struct {
		t    reflect.Type
		want core.VariantType
	}{
		{reflect.TypeFor[bool](), core.TypeBool},
		{reflect.TypeFor[int32](), core.TypeInt},
		{reflect.TypeFor[float32](), core.TypeFloat},
		{reflect.TypeFor[string](), core.TypeString},
		{reflect.TypeFor[*string](), core.TypeString},
		{reflect.TypeFor[[]byte](), core.TypePoolByteArray},
		{reflect.TypeFor[[]int](), core.TypeArray},
		{reflect.TypeFor[map[string]int](), core.TypeDictionary},
		{reflect.TypeFor[stats](), core.TypeDictionary},
		{reflect.TypeFor[mood](), core.TypeString},
		{reflect.TypeFor[geom.Vector3](), core.TypeVector3},
		{reflect.TypeFor[core.String](), core.TypeString},
		{reflect.TypeFor[core.Dictionary[core.Shared]](), core.TypeDictionary},
		{reflect.TypeFor[core.PoolArray[int32]](), core.TypePoolIntArray},
		{reflect.TypeFor[core.Variant](), core.TypeNil},
		{reflect.TypeFor[any](), core.TypeNil},
	}
	for _, tt := range tests {
		if got := convert.TypeOf(tt.t); got != tt.want {
			t.Errorf("TypeOf(%s) = %s, want %s", tt.t, got, tt.want)
		}
	}
}
