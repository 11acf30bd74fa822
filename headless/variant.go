package headless

import (
	"strings"

	"github.com/wippyai/gdnative/geom"
	"github.com/wippyai/gdnative/sys"
)

func as[T any](e *Engine, h sys.Variant) T {
	x, _ := e.valueOf(h).v.(T)
	return x
}

func (e *Engine) fillVariants() {
	c := &e.core

	c.VariantNewNil = func() sys.Variant { return e.newVariant(nilValue) }
	c.VariantNewBool = func(b bool) sys.Variant { return e.newVariant(value{sys.VariantBool, b}) }
	c.VariantNewInt = func(i int64) sys.Variant { return e.newVariant(value{sys.VariantInt, i}) }
	c.VariantNewReal = func(f float64) sys.Variant { return e.newVariant(value{sys.VariantReal, f}) }
	c.VariantNewString = func(s sys.String) sys.Variant {
		return e.newVariant(value{sys.VariantString, e.stringOf(s)})
	}
	c.VariantNewVector2 = func(v geom.Vector2) sys.Variant { return e.newVariant(value{sys.VariantVector2, v}) }
	c.VariantNewRect2 = func(r geom.Rect2) sys.Variant { return e.newVariant(value{sys.VariantRect2, r}) }
	c.VariantNewVector3 = func(v geom.Vector3) sys.Variant { return e.newVariant(value{sys.VariantVector3, v}) }
	c.VariantNewTransform2D = func(t geom.Transform2D) sys.Variant {
		return e.newVariant(value{sys.VariantTransform2D, t})
	}
	c.VariantNewPlane = func(p geom.Plane) sys.Variant { return e.newVariant(value{sys.VariantPlane, p}) }
	c.VariantNewQuat = func(q geom.Quat) sys.Variant { return e.newVariant(value{sys.VariantQuat, q}) }
	c.VariantNewAABB = func(a geom.AABB) sys.Variant { return e.newVariant(value{sys.VariantAABB, a}) }
	c.VariantNewBasis = func(b geom.Basis) sys.Variant { return e.newVariant(value{sys.VariantBasis, b}) }
	c.VariantNewTransform = func(t geom.Transform) sys.Variant {
		return e.newVariant(value{sys.VariantTransform, t})
	}
	c.VariantNewColor = func(col geom.Color) sys.Variant { return e.newVariant(value{sys.VariantColor, col}) }
	c.VariantNewNodePath = func(p sys.NodePath) sys.Variant {
		return e.newVariant(value{sys.VariantNodePath, e.nodePathOf(p).path})
	}
	c.VariantNewRID = func(r sys.RID) sys.Variant { return e.newVariant(value{sys.VariantRID, r}) }
	c.VariantNewObject = func(o sys.Object) sys.Variant {
		if o == 0 {
			return e.newVariant(value{sys.VariantObject, (*object)(nil)})
		}
		obj, _ := e.objectOf(o)
		return e.newVariant(e.retain(value{sys.VariantObject, obj}))
	}
	c.VariantNewDictionary = func(d sys.Dictionary) sys.Variant {
		return e.newVariant(e.retain(value{sys.VariantDictionary, e.dictOf(d)}))
	}
	c.VariantNewArray = func(a sys.Array) sys.Variant {
		return e.newVariant(e.retain(value{sys.VariantArray, e.arrayOf(a)}))
	}
	c.VariantNewPoolArray = func(t sys.VariantType, a sys.PoolArray) sys.Variant {
		r, ok := lookup[*poolRef](e, kindPool, uintptr(a))
		if !ok {
			return e.newVariant(nilValue)
		}
		if r.d.t != t {
			e.printError("pool array kind mismatch: "+r.d.t.String()+" as "+t.String(), "variant_new_pool_array", "variant.cpp", 0)
		}
		return e.newVariant(e.retain(value{r.d.t, r.d}))
	}

	c.VariantCopy = func(v sys.Variant) sys.Variant { return e.newVariant(e.retain(e.valueOf(v))) }
	c.VariantDestroy = func(v sys.Variant) {
		if x, ok := e.drop(kindVariant, uintptr(v)); ok {
			e.release(x.(value))
		}
	}
	c.VariantGetType = func(v sys.Variant) sys.VariantType { return e.valueOf(v).t }

	c.VariantAsBool = func(v sys.Variant) bool { return booleanize(e.valueOf(v)) }
	c.VariantAsInt = func(v sys.Variant) int64 { return asInt(e.valueOf(v)) }
	c.VariantAsReal = func(v sys.Variant) float64 { return asFloat(e.valueOf(v)) }
	c.VariantAsString = func(v sys.Variant) sys.String { return e.newString(e.stringify(e.valueOf(v))) }
	c.VariantAsVector2 = func(v sys.Variant) geom.Vector2 { return as[geom.Vector2](e, v) }
	c.VariantAsRect2 = func(v sys.Variant) geom.Rect2 { return as[geom.Rect2](e, v) }
	c.VariantAsVector3 = func(v sys.Variant) geom.Vector3 { return as[geom.Vector3](e, v) }
	c.VariantAsTransform2D = func(v sys.Variant) geom.Transform2D { return as[geom.Transform2D](e, v) }
	c.VariantAsPlane = func(v sys.Variant) geom.Plane { return as[geom.Plane](e, v) }
	c.VariantAsQuat = func(v sys.Variant) geom.Quat { return as[geom.Quat](e, v) }
	c.VariantAsAABB = func(v sys.Variant) geom.AABB { return as[geom.AABB](e, v) }
	c.VariantAsBasis = func(v sys.Variant) geom.Basis { return as[geom.Basis](e, v) }
	c.VariantAsTransform = func(v sys.Variant) geom.Transform { return as[geom.Transform](e, v) }
	c.VariantAsColor = func(v sys.Variant) geom.Color { return as[geom.Color](e, v) }
	c.VariantAsNodePath = func(v sys.Variant) sys.NodePath {
		val := e.valueOf(v)
		if val.t == sys.VariantNodePath {
			return e.newNodePath(val.v.(string))
		}
		return e.newNodePath(e.stringify(val))
	}
	c.VariantAsRID = func(v sys.Variant) sys.RID { return as[sys.RID](e, v) }
	c.VariantAsObject = func(v sys.Variant) sys.Object {
		o := objectOf(e.valueOf(v))
		if o == nil || !o.alive {
			return 0
		}
		return o.handle
	}
	c.VariantAsDictionary = func(v sys.Variant) sys.Dictionary {
		d, ok := e.valueOf(v).v.(*dictData)
		if !ok {
			return e.newDictionary(newDict())
		}
		d.refs++
		return e.newDictionary(d)
	}
	c.VariantAsArray = func(v sys.Variant) sys.Array {
		val := e.valueOf(v)
		switch x := val.v.(type) {
		case *arrayData:
			x.refs++
			return e.newArray(x)
		case *poolData:
			out := &arrayData{refs: 1, items: x.values()}
			return e.newArray(out)
		}
		return e.newArray(&arrayData{refs: 1})
	}
	c.VariantAsPoolArray = func(v sys.Variant) sys.PoolArray {
		d, ok := e.valueOf(v).v.(*poolData)
		if !ok {
			e.printError("variant is not a pool array", "variant_as_pool_array", "variant.cpp", 0)
			return 0
		}
		d.refs++
		return sys.PoolArray(e.put(kindPool, &poolRef{d: d}))
	}

	c.VariantCall = func(v sys.Variant, method sys.String, args []sys.Variant) (sys.Variant, sys.CallError) {
		vals := make([]value, len(args))
		for i, a := range args {
			vals[i] = e.valueOf(a)
		}
		out, cerr := e.callValue(e.valueOf(v), e.stringOf(method), vals)
		return e.newVariant(out), cerr
	}
	c.VariantHasMethod = func(v sys.Variant, method sys.String) bool {
		return e.hasMethod(e.valueOf(v), e.stringOf(method))
	}
	c.VariantEvaluate = func(op sys.VariantOperator, a, b sys.Variant) (sys.Variant, bool) {
		out, ok := e.evaluate(op, e.valueOf(a), e.valueOf(b))
		if !ok {
			return 0, false
		}
		return e.newVariant(out), true
	}
	c.VariantEqual = func(a, b sys.Variant) bool {
		eq, _ := e.equal(e.valueOf(a), e.valueOf(b))
		return eq
	}
	c.VariantLess = func(a, b sys.Variant) bool {
		lt, _ := e.less(e.valueOf(a), e.valueOf(b))
		return lt
	}
	c.VariantHashCompare = func(a, b sys.Variant) bool { return e.hashCompare(e.valueOf(a), e.valueOf(b)) }
	c.VariantBooleanize = func(v sys.Variant) bool { return booleanize(e.valueOf(v)) }
	c.VariantHash = func(v sys.Variant) uint32 { return hashValue(e.valueOf(v)) }
}

// builtinMethods are the methods callable on non-object values.
var builtinMethods = map[sys.VariantType]map[string]func(e *Engine, self value, args []value) (value, sys.CallError){
	sys.VariantString: {
		"length": func(_ *Engine, self value, _ []value) (value, sys.CallError) {
			return value{sys.VariantInt, int64(len([]rune(self.v.(string))))}, sys.CallError{}
		},
		"to_upper": func(_ *Engine, self value, _ []value) (value, sys.CallError) {
			return value{sys.VariantString, strings.ToUpper(self.v.(string))}, sys.CallError{}
		},
		"to_lower": func(_ *Engine, self value, _ []value) (value, sys.CallError) {
			return value{sys.VariantString, strings.ToLower(self.v.(string))}, sys.CallError{}
		},
		"begins_with": func(_ *Engine, self value, args []value) (value, sys.CallError) {
			if cerr := checkArgs(args, sys.VariantString); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			return value{sys.VariantBool, strings.HasPrefix(self.v.(string), args[0].v.(string))}, sys.CallError{}
		},
	},
	sys.VariantArray: {
		"size": func(_ *Engine, self value, _ []value) (value, sys.CallError) {
			return value{sys.VariantInt, int64(len(self.v.(*arrayData).items))}, sys.CallError{}
		},
		"empty": func(_ *Engine, self value, _ []value) (value, sys.CallError) {
			return value{sys.VariantBool, len(self.v.(*arrayData).items) == 0}, sys.CallError{}
		},
		"has": func(e *Engine, self value, args []value) (value, sys.CallError) {
			if len(args) != 1 {
				return nilValue, arityError(len(args), 1)
			}
			for _, it := range self.v.(*arrayData).items {
				if eq, _ := e.equal(it, args[0]); eq {
					return value{sys.VariantBool, true}, sys.CallError{}
				}
			}
			return value{sys.VariantBool, false}, sys.CallError{}
		},
	},
	sys.VariantDictionary: {
		"size": func(_ *Engine, self value, _ []value) (value, sys.CallError) {
			return value{sys.VariantInt, int64(len(self.v.(*dictData).keys))}, sys.CallError{}
		},
		"empty": func(_ *Engine, self value, _ []value) (value, sys.CallError) {
			return value{sys.VariantBool, len(self.v.(*dictData).keys) == 0}, sys.CallError{}
		},
		"has": func(_ *Engine, self value, args []value) (value, sys.CallError) {
			if len(args) != 1 {
				return nilValue, arityError(len(args), 1)
			}
			_, ok := self.v.(*dictData).find(args[0])
			return value{sys.VariantBool, ok}, sys.CallError{}
		},
	},
	sys.VariantVector2: {
		"length": func(_ *Engine, self value, _ []value) (value, sys.CallError) {
			return value{sys.VariantReal, float64(self.v.(geom.Vector2).Length())}, sys.CallError{}
		},
		"normalized": func(_ *Engine, self value, _ []value) (value, sys.CallError) {
			return value{sys.VariantVector2, self.v.(geom.Vector2).Normalized()}, sys.CallError{}
		},
		"dot": func(_ *Engine, self value, args []value) (value, sys.CallError) {
			if cerr := checkArgs(args, sys.VariantVector2); cerr.Error != sys.CallOK {
				return nilValue, cerr
			}
			return value{sys.VariantReal, float64(self.v.(geom.Vector2).Dot(args[0].v.(geom.Vector2)))}, sys.CallError{}
		},
	},
	sys.VariantVector3: {
		"length": func(_ *Engine, self value, _ []value) (value, sys.CallError) {
			return value{sys.VariantReal, float64(self.v.(geom.Vector3).Length())}, sys.CallError{}
		},
		"normalized": func(_ *Engine, self value, _ []value) (value, sys.CallError) {
			return value{sys.VariantVector3, self.v.(geom.Vector3).Normalized()}, sys.CallError{}
		},
	},
}

func arityError(got, want int) sys.CallError {
	if got > want {
		return sys.CallError{Error: sys.CallTooManyArguments, Argument: int32(want)}
	}
	return sys.CallError{Error: sys.CallTooFewArguments, Argument: int32(want)}
}

// checkArgs validates arity and kinds of builtin method arguments.
func checkArgs(args []value, kinds ...sys.VariantType) sys.CallError {
	if len(args) != len(kinds) {
		return arityError(len(args), len(kinds))
	}
	for i, k := range kinds {
		if args[i].t != k {
			return sys.CallError{Error: sys.CallInvalidArgument, Argument: int32(i), Expected: k}
		}
	}
	return sys.CallError{}
}

// callValue dispatches a dynamic call on any value.
func (e *Engine) callValue(self value, method string, args []value) (value, sys.CallError) {
	if self.t == sys.VariantObject {
		o := objectOf(self)
		if o == nil || !o.alive {
			return nilValue, sys.CallError{Error: sys.CallInstanceIsNull}
		}
		return e.callObject(o, method, args)
	}
	if self.t >= sys.VariantPoolByteArray && method == "size" {
		return value{sys.VariantInt, int64(self.v.(*poolData).len())}, sys.CallError{}
	}
	fn, ok := builtinMethods[self.t][method]
	if !ok {
		return nilValue, sys.CallError{Error: sys.CallInvalidMethod}
	}
	return fn(e, self, args)
}

func (e *Engine) hasMethod(self value, method string) bool {
	if self.t == sys.VariantObject {
		o := objectOf(self)
		return o != nil && o.alive && e.objectHasMethod(o, method)
	}
	if self.t >= sys.VariantPoolByteArray {
		return method == "size"
	}
	_, ok := builtinMethods[self.t][method]
	return ok
}
