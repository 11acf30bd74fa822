package headless

import (
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/gdnative/geom"
	"github.com/wippyai/gdnative/sys"
)

// value is the engine-side content of a variant. Objects, arrays,
// dictionaries and pool arrays are held by reference and counted.
type value struct {
	t sys.VariantType
	v any
}

var nilValue = value{t: sys.VariantNil}

// arrayData is the shared payload of an Array.
type arrayData struct {
	refs  int
	items []value
}

// dictData is the shared, insertion-ordered payload of a Dictionary.
type dictData struct {
	refs  int
	keys  []value
	vals  []value
	index map[string]int
}

func newDict() *dictData {
	return &dictData{refs: 1, index: make(map[string]int)}
}

func (d *dictData) find(key value) (int, bool) {
	i, ok := d.index[hashKey(key)]
	return i, ok
}

func (d *dictData) reindex() {
	clear(d.index)
	for i, k := range d.keys {
		d.index[hashKey(k)] = i
	}
}

// retain adds a hold on the payload of v.
func (e *Engine) retain(v value) value {
	switch p := v.v.(type) {
	case *object:
		if p != nil && p.alive && p.class.refCounted {
			p.refcount++
		}
	case *arrayData:
		p.refs++
	case *dictData:
		p.refs++
	case *poolData:
		p.refs++
	}
	return v
}

// release drops a hold on the payload of v, destroying it on the last one.
func (e *Engine) release(v value) {
	switch p := v.v.(type) {
	case *object:
		if p != nil && p.alive && p.class.refCounted {
			if e.unreference(p) {
				e.destroyObject(p)
			}
		}
	case *arrayData:
		p.refs--
		if p.refs == 0 {
			items := p.items
			p.items = nil
			for _, it := range items {
				e.release(it)
			}
		}
	case *dictData:
		p.refs--
		if p.refs == 0 {
			keys, vals := p.keys, p.vals
			p.keys, p.vals = nil, nil
			clear(p.index)
			for i := range keys {
				e.release(keys[i])
				e.release(vals[i])
			}
		}
	case *poolData:
		e.releasePool(p)
	}
}

func objectOf(v value) *object {
	o, _ := v.v.(*object)
	return o
}

func isNumeric(t sys.VariantType) bool {
	return t == sys.VariantInt || t == sys.VariantReal
}

func asFloat(v value) float64 {
	switch x := v.v.(type) {
	case int64:
		return float64(x)
	case float64:
		return x
	case bool:
		if x {
			return 1
		}
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f
	}
	return 0
}

func asInt(v value) int64 {
	switch x := v.v.(type) {
	case int64:
		return x
	case float64:
		return int64(x)
	case bool:
		if x {
			return 1
		}
	case string:
		return parseLeadingInt(x)
	}
	return 0
}

// parseLeadingInt reads an optional sign and leading digits, ignoring the rest.
func parseLeadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, _ := strconv.ParseInt(s[:end], 10, 64)
	return n
}

// booleanize follows the engine's truthiness rules.
func booleanize(v value) bool {
	switch x := v.v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int64:
		return x != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	case geom.Vector2:
		return x != geom.Vector2{}
	case geom.Vector3:
		return x != geom.Vector3{}
	case geom.Color:
		return x != geom.Color{}
	case sys.RID:
		return x.ID != 0
	case *object:
		return x != nil && x.alive
	case *arrayData:
		return len(x.items) > 0
	case *dictData:
		return len(x.keys) > 0
	case *poolData:
		return x.len() > 0
	default:
		return true
	}
}

func ftos(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func f32tos(f float32) string { return strconv.FormatFloat(float64(f), 'f', -1, 32) }

func vec2tos(v geom.Vector2) string { return "(" + f32tos(v.X) + ", " + f32tos(v.Y) + ")" }
func vec3tos(v geom.Vector3) string {
	return "(" + f32tos(v.X) + ", " + f32tos(v.Y) + ", " + f32tos(v.Z) + ")"
}

// stringify renders v the way the engine's str() does.
func (e *Engine) stringify(v value) string {
	switch x := v.v.(type) {
	case nil:
		return "Null"
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return ftos(x)
	case string:
		return x
	case geom.Vector2:
		return vec2tos(x)
	case geom.Vector3:
		return vec3tos(x)
	case geom.Rect2:
		return vec2tos(x.Position) + ", " + vec2tos(x.Size)
	case geom.Transform2D:
		return vec2tos(x.X) + ", " + vec2tos(x.Y) + ", " + vec2tos(x.Origin)
	case geom.Plane:
		return vec3tos(x.Normal) + ", " + f32tos(x.D)
	case geom.Quat:
		return f32tos(x.X) + ", " + f32tos(x.Y) + ", " + f32tos(x.Z) + ", " + f32tos(x.W)
	case geom.AABB:
		return vec3tos(x.Position) + " - " + vec3tos(x.Size)
	case geom.Basis:
		return vec3tos(x.Elements[0]) + ", " + vec3tos(x.Elements[1]) + ", " + vec3tos(x.Elements[2])
	case geom.Transform:
		return e.stringify(value{t: sys.VariantBasis, v: x.Basis}) + " - " + vec3tos(x.Origin)
	case geom.Color:
		return f32tos(x.R) + "," + f32tos(x.G) + "," + f32tos(x.B) + "," + f32tos(x.A)
	case sys.RID:
		return "[RID]"
	case *object:
		if x == nil {
			return "Null"
		}
		if !x.alive {
			return "[Deleted Object]"
		}
		return fmt.Sprintf("[%s:%d]", x.class.name, x.id)
	case *arrayData:
		parts := make([]string, len(x.items))
		for i, it := range x.items {
			parts[i] = e.stringify(it)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *dictData:
		parts := make([]string, len(x.keys))
		for i := range x.keys {
			parts[i] = e.stringify(x.keys[i]) + ":" + e.stringify(x.vals[i])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *poolData:
		items := x.values()
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = e.stringify(it)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(x)
	}
}

// hashKey is the dictionary identity of a key: kind plus content, with
// reference payloads keyed by identity.
func hashKey(v value) string {
	switch x := v.v.(type) {
	case nil:
		return "nil"
	case float64:
		return "r:" + strconv.FormatUint(math.Float64bits(x), 16)
	case *object:
		if x == nil {
			return "nil"
		}
		return "o:" + strconv.FormatUint(x.id, 10)
	case *arrayData, *dictData, *poolData:
		return fmt.Sprintf("%d:%p", v.t, x)
	default:
		return fmt.Sprintf("%d:%v", v.t, x)
	}
}

func hashValue(v value) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(hashKey(v)))
	return h.Sum32()
}

// equal implements the engine's == between two values. ok is false when
// the operand kinds cannot be compared.
func (e *Engine) equal(a, b value) (eq, ok bool) {
	if a.t == sys.VariantNil || b.t == sys.VariantNil {
		an := a.t == sys.VariantNil || (a.t == sys.VariantObject && objectOf(a) == nil)
		bn := b.t == sys.VariantNil || (b.t == sys.VariantObject && objectOf(b) == nil)
		return an && bn, true
	}
	if isNumeric(a.t) && isNumeric(b.t) {
		if a.t == sys.VariantInt && b.t == sys.VariantInt {
			return a.v.(int64) == b.v.(int64), true
		}
		return asFloat(a) == asFloat(b), true
	}
	if a.t != b.t {
		return false, false
	}
	switch x := a.v.(type) {
	case *arrayData, *dictData:
		return a.v == b.v, true
	case *poolData:
		return e.poolEqual(x, b.v.(*poolData), false), true
	default:
		return a.v == b.v, true
	}
}

// hashCompare is structural equality under which NaN equals NaN.
func (e *Engine) hashCompare(a, b value) bool {
	if a.t != b.t {
		return false
	}
	switch x := a.v.(type) {
	case float64:
		y := b.v.(float64)
		return x == y || (math.IsNaN(x) && math.IsNaN(y))
	case *arrayData:
		y := b.v.(*arrayData)
		if len(x.items) != len(y.items) {
			return false
		}
		for i := range x.items {
			if !e.hashCompare(x.items[i], y.items[i]) {
				return false
			}
		}
		return true
	case *dictData:
		y := b.v.(*dictData)
		if len(x.keys) != len(y.keys) {
			return false
		}
		for i, k := range x.keys {
			j, ok := y.find(k)
			if !ok || !e.hashCompare(x.vals[i], y.vals[j]) {
				return false
			}
		}
		return true
	case *poolData:
		return e.poolEqual(x, b.v.(*poolData), true)
	default:
		eq, _ := e.equal(a, b)
		return eq
	}
}

// less implements the engine's < with the kind order as a fallback.
func (e *Engine) less(a, b value) (lt, ok bool) {
	if isNumeric(a.t) && isNumeric(b.t) {
		if a.t == sys.VariantInt && b.t == sys.VariantInt {
			return a.v.(int64) < b.v.(int64), true
		}
		return asFloat(a) < asFloat(b), true
	}
	if a.t != b.t {
		return a.t < b.t, false
	}
	switch x := a.v.(type) {
	case bool:
		return !x && b.v.(bool), true
	case string:
		return x < b.v.(string), true
	case geom.Vector2:
		y := b.v.(geom.Vector2)
		if x.X == y.X {
			return x.Y < y.Y, true
		}
		return x.X < y.X, true
	case geom.Vector3:
		y := b.v.(geom.Vector3)
		if x.X != y.X {
			return x.X < y.X, true
		}
		if x.Y != y.Y {
			return x.Y < y.Y, true
		}
		return x.Z < y.Z, true
	case sys.RID:
		return x.ID < b.v.(sys.RID).ID, true
	case *object:
		y := objectOf(b)
		var xi, yi uint64
		if x != nil {
			xi = x.id
		}
		if y != nil {
			yi = y.id
		}
		return xi < yi, true
	case *arrayData:
		y := b.v.(*arrayData)
		for i := 0; i < len(x.items) && i < len(y.items); i++ {
			if lt, _ := e.less(x.items[i], y.items[i]); lt {
				return true, true
			}
			if gt, _ := e.less(y.items[i], x.items[i]); gt {
				return false, true
			}
		}
		return len(x.items) < len(y.items), true
	}
	return false, false
}
