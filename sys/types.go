package sys

import "fmt"

// Opaque engine handles. The bindings never dereference them, they are only
// handed back to the engine. Zero is never a valid handle.
type (
	Object     uintptr
	Variant    uintptr
	String     uintptr
	NodePath   uintptr
	Array      uintptr
	Dictionary uintptr
	PoolArray  uintptr
	MethodBind uintptr
	UserData   uintptr
	TypeTag    uintptr
	ClassTag   uintptr

	// Handle identifies the native library during script registration.
	Handle uintptr

	// PoolAccess is a live read or write lock on a pool array's buffer.
	PoolAccess uintptr
)

// RID is a resource id. It is a plain value.
type RID struct {
	ID uint64
}

// ClassConstructor creates a new engine object of a fixed class.
type ClassConstructor func() Object

// VariantType is the engine's closed set of variant kinds.
type VariantType int32

const (
	VariantNil VariantType = iota
	VariantBool
	VariantInt
	VariantReal
	VariantString
	VariantVector2
	VariantRect2
	VariantVector3
	VariantTransform2D
	VariantPlane
	VariantQuat
	VariantAABB
	VariantBasis
	VariantTransform
	VariantColor
	VariantNodePath
	VariantRID
	VariantObject
	VariantDictionary
	VariantArray
	VariantPoolByteArray
	VariantPoolIntArray
	VariantPoolRealArray
	VariantPoolStringArray
	VariantPoolVector2Array
	VariantPoolVector3Array
	VariantPoolColorArray
	VariantTypeCount
)

var variantTypeNames = [...]string{
	"Nil", "bool", "int", "float", "String", "Vector2", "Rect2", "Vector3",
	"Transform2D", "Plane", "Quat", "AABB", "Basis", "Transform", "Color",
	"NodePath", "RID", "Object", "Dictionary", "Array", "PoolByteArray",
	"PoolIntArray", "PoolRealArray", "PoolStringArray", "PoolVector2Array",
	"PoolVector3Array", "PoolColorArray",
}

func (t VariantType) String() string {
	if t >= 0 && t < VariantTypeCount {
		return variantTypeNames[t]
	}
	return fmt.Sprintf("VariantType(%d)", int32(t))
}

// VariantOperator is the engine's operator table index.
type VariantOperator int32

const (
	OpEqual VariantOperator = iota
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNegate
	OpPositive
	OpModule
	OpStringConcat
	OpShiftLeft
	OpShiftRight
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitNegate
	OpAnd
	OpOr
	OpXor
	OpNot
	OpIn
	OpMax
)

var operatorNames = [...]string{
	"==", "!=", "<", "<=", ">", ">=", "+", "-", "*", "/", "neg", "pos", "%",
	"..", "<<", ">>", "&", "|", "^", "~", "and", "or", "xor", "not", "in",
}

func (op VariantOperator) String() string {
	if op >= 0 && op < OpMax {
		return operatorNames[op]
	}
	return fmt.Sprintf("VariantOperator(%d)", int32(op))
}

// CallErrorKind is the status of a dynamic call.
type CallErrorKind int32

const (
	CallOK CallErrorKind = iota
	CallInvalidMethod
	CallInvalidArgument
	CallTooManyArguments
	CallTooFewArguments
	CallInstanceIsNull
)

// CallError is the engine's dynamic call status record.
type CallError struct {
	Error    CallErrorKind
	Argument int32
	Expected VariantType
}

// Error is a raw engine error code. Zero is success.
type Error int32

// PropertyHint is the editor hint code attached to a property.
type PropertyHint int32

const (
	HintNone PropertyHint = iota
	HintRange
	HintExpRange
	HintEnum
	HintExpEasing
	HintLength
	HintSpriteFrame
	HintKeyAccel
	HintFlags
	HintLayers2DRender
	HintLayers2DPhysics
	HintLayers3DRender
	HintLayers3DPhysics
	HintFile
	HintDir
	HintGlobalFile
	HintGlobalDir
	HintResourceType
	HintMultilineText
	HintPlaceholderText
	HintColorNoAlpha
	HintImageCompressLossy
	HintImageCompressLossless
	HintObjectID
	HintTypeString
	HintNodePathToEditedNode
	HintMethodOfVariantType
	HintMethodOfBaseType
	HintMethodOfInstance
	HintMethodOfScript
	HintPropertyOfVariantType
	HintPropertyOfBaseType
	HintPropertyOfInstance
	HintPropertyOfScript
	HintObjectTooBig
	HintNodePathValidTypes
	HintSaveFile
)

// PropertyUsage is the engine's property usage bit set.
type PropertyUsage uint32

const (
	UsageStorage PropertyUsage = 1 << iota
	UsageEditor
	UsageNetwork
	UsageEditorHelper
	UsageCheckable
	UsageChecked
	UsageInternationalized
	UsageGroup
	UsageCategory
	UsageStoreIfNonzero
	UsageStoreIfNonone
	UsageNoInstanceState
	UsageRestartIfChanged
	UsageScriptVariable
	UsageStoreIfNull
	UsageAnimateAsTrigger
	UsageUpdateAllIfModified

	UsageDefault     = UsageStorage | UsageEditor | UsageNetwork
	UsageDefaultIntl = UsageDefault | UsageInternationalized
	UsageNoEditor    = UsageStorage | UsageNetwork
)

// RPCMode is the engine's network call mode for methods and properties.
type RPCMode int32

const (
	RPCDisabled RPCMode = iota
	RPCRemote
	RPCMaster
	RPCPuppet
	RPCRemoteSync
	RPCMasterSync
	RPCPuppetSync
)
