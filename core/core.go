package core

import (
	"unsafe"

	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/ownership"
	"github.com/wippyai/gdnative/sys"
)

func api() *sys.CoreAPI {
	return sys.Get().Core
}

// Ownership markers, re-exported for container signatures.
type (
	Unique      = ownership.Unique
	Shared      = ownership.Shared
	ThreadLocal = ownership.ThreadLocal
)

// VariantType is the closed set of variant kinds.
type VariantType = sys.VariantType

const (
	TypeNil              = sys.VariantNil
	TypeBool             = sys.VariantBool
	TypeInt              = sys.VariantInt
	TypeFloat            = sys.VariantReal
	TypeString           = sys.VariantString
	TypeVector2          = sys.VariantVector2
	TypeRect2            = sys.VariantRect2
	TypeVector3          = sys.VariantVector3
	TypeTransform2D      = sys.VariantTransform2D
	TypePlane            = sys.VariantPlane
	TypeQuat             = sys.VariantQuat
	TypeAABB             = sys.VariantAABB
	TypeBasis            = sys.VariantBasis
	TypeTransform        = sys.VariantTransform
	TypeColor            = sys.VariantColor
	TypeNodePath         = sys.VariantNodePath
	TypeRID              = sys.VariantRID
	TypeObject           = sys.VariantObject
	TypeDictionary       = sys.VariantDictionary
	TypeArray            = sys.VariantArray
	TypePoolByteArray    = sys.VariantPoolByteArray
	TypePoolIntArray     = sys.VariantPoolIntArray
	TypePoolRealArray    = sys.VariantPoolRealArray
	TypePoolStringArray  = sys.VariantPoolStringArray
	TypePoolVector2Array = sys.VariantPoolVector2Array
	TypePoolVector3Array = sys.VariantPoolVector3Array
	TypePoolColorArray   = sys.VariantPoolColorArray
)

// VariantOperator selects an engine operator for Variant.Evaluate.
type VariantOperator = sys.VariantOperator

const (
	OpEqual        = sys.OpEqual
	OpNotEqual     = sys.OpNotEqual
	OpLess         = sys.OpLess
	OpLessEqual    = sys.OpLessEqual
	OpGreater      = sys.OpGreater
	OpGreaterEqual = sys.OpGreaterEqual
	OpAdd          = sys.OpAdd
	OpSubtract     = sys.OpSubtract
	OpMultiply     = sys.OpMultiply
	OpDivide       = sys.OpDivide
	OpNegate       = sys.OpNegate
	OpPositive     = sys.OpPositive
	OpModule       = sys.OpModule
	OpStringConcat = sys.OpStringConcat
	OpShiftLeft    = sys.OpShiftLeft
	OpShiftRight   = sys.OpShiftRight
	OpBitAnd       = sys.OpBitAnd
	OpBitOr        = sys.OpBitOr
	OpBitXor       = sys.OpBitXor
	OpBitNegate    = sys.OpBitNegate
	OpAnd          = sys.OpAnd
	OpOr           = sys.OpOr
	OpXor          = sys.OpXor
	OpNot          = sys.OpNot
	OpIn           = sys.OpIn
)

// ToVariant is implemented by values with an engine representation.
type ToVariant interface {
	ToVariant() Variant
}

// FromVariant is implemented by pointers to values that can be decoded from
// a Variant. The variant is borrowed.
type FromVariant interface {
	FromVariant(v Variant) error
}

// noCopy makes go vet flag copies of borrow handles.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// castSlice reinterprets a slice of one single-handle type as another with
// the same layout.
func castSlice[To, From any](s []From) []To {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*To)(unsafe.Pointer(unsafe.SliceData(s))), len(s))
}

func indexPanic(i, n int) *errors.Error {
	return errors.OutOfBounds(errors.PhaseRuntime, nil, i, n)
}
