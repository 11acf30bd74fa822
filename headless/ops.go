package headless

import (
	"strings"

	"github.com/wippyai/gdnative/geom"
	"github.com/wippyai/gdnative/sys"
)

func boolValue(b bool) value { return value{sys.VariantBool, b} }

// evaluate applies op to a and b following the engine's operator table.
// Unary operators ignore b. ok is false for undefined combinations, which
// includes integer division by zero.
func (e *Engine) evaluate(op sys.VariantOperator, a, b value) (value, bool) {
	switch op {
	case sys.OpEqual, sys.OpNotEqual:
		eq, ok := e.equal(a, b)
		if !ok {
			return nilValue, false
		}
		return boolValue(eq == (op == sys.OpEqual)), true

	case sys.OpLess, sys.OpGreaterEqual:
		lt, ok := e.less(a, b)
		if !ok {
			return nilValue, false
		}
		return boolValue(lt == (op == sys.OpLess)), true

	case sys.OpGreater, sys.OpLessEqual:
		gt, ok := e.less(b, a)
		if !ok {
			return nilValue, false
		}
		return boolValue(gt == (op == sys.OpGreater)), true

	case sys.OpAdd, sys.OpSubtract, sys.OpMultiply, sys.OpDivide:
		return e.arith(op, a, b)

	case sys.OpModule:
		if a.t == sys.VariantInt && b.t == sys.VariantInt {
			y := b.v.(int64)
			if y == 0 {
				return nilValue, false
			}
			return value{sys.VariantInt, a.v.(int64) % y}, true
		}
		return nilValue, false

	case sys.OpNegate:
		switch x := a.v.(type) {
		case int64:
			return value{sys.VariantInt, -x}, true
		case float64:
			return value{sys.VariantReal, -x}, true
		case geom.Vector2:
			return value{sys.VariantVector2, x.Mul(-1)}, true
		case geom.Vector3:
			return value{sys.VariantVector3, x.Mul(-1)}, true
		case geom.Color:
			return value{sys.VariantColor, geom.Color{R: 1 - x.R, G: 1 - x.G, B: 1 - x.B, A: 1 - x.A}}, true
		}
		return nilValue, false

	case sys.OpPositive:
		switch a.t {
		case sys.VariantInt, sys.VariantReal, sys.VariantVector2, sys.VariantVector3:
			return a, true
		}
		return nilValue, false

	case sys.OpStringConcat:
		return value{sys.VariantString, e.stringify(a) + e.stringify(b)}, true

	case sys.OpShiftLeft, sys.OpShiftRight, sys.OpBitAnd, sys.OpBitOr, sys.OpBitXor:
		if a.t != sys.VariantInt || b.t != sys.VariantInt {
			return nilValue, false
		}
		x, y := a.v.(int64), b.v.(int64)
		switch op {
		case sys.OpShiftLeft:
			if y < 0 {
				return nilValue, false
			}
			return value{sys.VariantInt, x << y}, true
		case sys.OpShiftRight:
			if y < 0 {
				return nilValue, false
			}
			return value{sys.VariantInt, x >> y}, true
		case sys.OpBitAnd:
			return value{sys.VariantInt, x & y}, true
		case sys.OpBitOr:
			return value{sys.VariantInt, x | y}, true
		default:
			return value{sys.VariantInt, x ^ y}, true
		}

	case sys.OpBitNegate:
		if a.t != sys.VariantInt {
			return nilValue, false
		}
		return value{sys.VariantInt, ^a.v.(int64)}, true

	case sys.OpAnd:
		return boolValue(booleanize(a) && booleanize(b)), true
	case sys.OpOr:
		return boolValue(booleanize(a) || booleanize(b)), true
	case sys.OpXor:
		return boolValue(booleanize(a) != booleanize(b)), true
	case sys.OpNot:
		return boolValue(!booleanize(a)), true

	case sys.OpIn:
		return e.in(a, b)
	}
	return nilValue, false
}

func (e *Engine) arith(op sys.VariantOperator, a, b value) (value, bool) {
	if a.t == sys.VariantInt && b.t == sys.VariantInt {
		x, y := a.v.(int64), b.v.(int64)
		switch op {
		case sys.OpAdd:
			return value{sys.VariantInt, x + y}, true
		case sys.OpSubtract:
			return value{sys.VariantInt, x - y}, true
		case sys.OpMultiply:
			return value{sys.VariantInt, x * y}, true
		default:
			if y == 0 {
				return nilValue, false
			}
			return value{sys.VariantInt, x / y}, true
		}
	}
	if isNumeric(a.t) && isNumeric(b.t) {
		x, y := asFloat(a), asFloat(b)
		switch op {
		case sys.OpAdd:
			return value{sys.VariantReal, x + y}, true
		case sys.OpSubtract:
			return value{sys.VariantReal, x - y}, true
		case sys.OpMultiply:
			return value{sys.VariantReal, x * y}, true
		default:
			return value{sys.VariantReal, x / y}, true
		}
	}

	switch x := a.v.(type) {
	case string:
		if y, ok := b.v.(string); ok && op == sys.OpAdd && b.t == sys.VariantString && a.t == sys.VariantString {
			return value{sys.VariantString, x + y}, true
		}
	case geom.Vector2:
		if y, ok := b.v.(geom.Vector2); ok {
			switch op {
			case sys.OpAdd:
				return value{sys.VariantVector2, x.Add(y)}, true
			case sys.OpSubtract:
				return value{sys.VariantVector2, x.Sub(y)}, true
			case sys.OpMultiply:
				return value{sys.VariantVector2, geom.Vector2{X: x.X * y.X, Y: x.Y * y.Y}}, true
			default:
				return value{sys.VariantVector2, geom.Vector2{X: x.X / y.X, Y: x.Y / y.Y}}, true
			}
		}
		if isNumeric(b.t) && (op == sys.OpMultiply || op == sys.OpDivide) {
			s := float32(asFloat(b))
			if op == sys.OpDivide {
				s = 1 / s
			}
			return value{sys.VariantVector2, x.Mul(s)}, true
		}
	case geom.Vector3:
		if y, ok := b.v.(geom.Vector3); ok {
			switch op {
			case sys.OpAdd:
				return value{sys.VariantVector3, x.Add(y)}, true
			case sys.OpSubtract:
				return value{sys.VariantVector3, x.Sub(y)}, true
			case sys.OpMultiply:
				return value{sys.VariantVector3, geom.Vector3{X: x.X * y.X, Y: x.Y * y.Y, Z: x.Z * y.Z}}, true
			default:
				return value{sys.VariantVector3, geom.Vector3{X: x.X / y.X, Y: x.Y / y.Y, Z: x.Z / y.Z}}, true
			}
		}
		if isNumeric(b.t) && (op == sys.OpMultiply || op == sys.OpDivide) {
			s := float32(asFloat(b))
			if op == sys.OpDivide {
				s = 1 / s
			}
			return value{sys.VariantVector3, x.Mul(s)}, true
		}
	case geom.Color:
		if y, ok := b.v.(geom.Color); ok {
			switch op {
			case sys.OpAdd:
				return value{sys.VariantColor, geom.Color{R: x.R + y.R, G: x.G + y.G, B: x.B + y.B, A: x.A + y.A}}, true
			case sys.OpSubtract:
				return value{sys.VariantColor, geom.Color{R: x.R - y.R, G: x.G - y.G, B: x.B - y.B, A: x.A - y.A}}, true
			case sys.OpMultiply:
				return value{sys.VariantColor, geom.Color{R: x.R * y.R, G: x.G * y.G, B: x.B * y.B, A: x.A * y.A}}, true
			}
		}
	case geom.Quat:
		if y, ok := b.v.(geom.Quat); ok && op == sys.OpMultiply {
			return value{sys.VariantQuat, x.Mul(y)}, true
		}
	case *arrayData:
		if y, ok := b.v.(*arrayData); ok && op == sys.OpAdd {
			out := &arrayData{refs: 1}
			for _, it := range x.items {
				out.items = append(out.items, e.retain(it))
			}
			for _, it := range y.items {
				out.items = append(out.items, e.retain(it))
			}
			return value{sys.VariantArray, out}, true
		}
	}

	// Scalar times vector commutes.
	if op == sys.OpMultiply && isNumeric(a.t) {
		switch b.t {
		case sys.VariantVector2, sys.VariantVector3:
			return e.arith(op, b, a)
		}
	}
	return nilValue, false
}

func (e *Engine) in(a, b value) (value, bool) {
	switch x := b.v.(type) {
	case string:
		s, ok := a.v.(string)
		if !ok || a.t != sys.VariantString || b.t != sys.VariantString {
			return nilValue, false
		}
		return boolValue(strings.Contains(x, s)), true
	case *arrayData:
		for _, it := range x.items {
			if eq, _ := e.equal(a, it); eq {
				return boolValue(true), true
			}
		}
		return boolValue(false), true
	case *dictData:
		_, ok := x.find(a)
		return boolValue(ok), true
	case *poolData:
		for _, it := range x.values() {
			if eq, _ := e.equal(a, it); eq {
				return boolValue(true), true
			}
		}
		return boolValue(false), true
	}
	return nilValue, false
}
