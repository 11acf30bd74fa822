package sys

import (
	"fmt"

	"github.com/wippyai/gdnative/geom"
)

// APIType identifies a function table.
type APIType uint32

const (
	APITypeCore APIType = iota
	APITypeNativeScript
	APITypePluginScript
	APITypeNativeARVR
	APITypeVideoDecoder
	APITypeNet
)

func (t APIType) String() string {
	switch t {
	case APITypeCore:
		return "core"
	case APITypeNativeScript:
		return "nativescript"
	case APITypePluginScript:
		return "pluginscript"
	case APITypeNativeARVR:
		return "arvr"
	case APITypeVideoDecoder:
		return "videodecoder"
	case APITypeNet:
		return "net"
	default:
		return fmt.Sprintf("APIType(%d)", uint32(t))
	}
}

// Version is a table version.
type Version struct {
	Major, Minor uint32
}

func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// AtLeast reports whether v is compatible with a requirement of o:
// same major version and at least the same minor version.
func (v Version) AtLeast(o Version) bool {
	return v.Major == o.Major && v.Minor >= o.Minor
}

// Header prefixes every function table.
type Header struct {
	Type    APIType
	Version Version
}

// APIHeader returns the header itself so embedding types satisfy Table.
func (h Header) APIHeader() Header { return h }

// Table is any function table the engine hands over.
type Table interface {
	APIHeader() Header
}

// PoolArrayAPI is the per-element-kind pool array sub-table.
type PoolArrayAPI[E any] struct {
	New     func() PoolArray
	Copy    func(a PoolArray) PoolArray
	Destroy func(a PoolArray)
	Size    func(a PoolArray) int
	Get     func(a PoolArray, i int) E
	Set     func(a PoolArray, i int, v E)
	Append  func(a PoolArray, v E)
	Insert  func(a PoolArray, i int, v E) Error
	Remove  func(a PoolArray, i int)
	Resize  func(a PoolArray, n int)

	// Read and Write lock the buffer and return a view of it. The view stays
	// valid until the access is destroyed.
	Read         func(a PoolArray) (PoolAccess, []E)
	ReadDestroy  func(acc PoolAccess)
	Write        func(a PoolArray) (PoolAccess, []E)
	WriteDestroy func(acc PoolAccess)
}

// CoreAPI is the engine's core function table. Values returned from
// constructors, copies and getters are owned by the caller.
type CoreAPI struct {
	Header
	Extensions []Table

	StringNew        func(s string) String
	StringCopy       func(s String) String
	StringDestroy    func(s String)
	StringUTF8       func(s String) string
	StringLength     func(s String) int
	StringEqual      func(a, b String) bool
	StringLess       func(a, b String) bool
	StringHash       func(s String) uint32
	StringConcat     func(a, b String) String
	StringFind       func(s, what String, from int) int
	StringBeginsWith func(s, prefix String) bool

	NodePathNew        func(path String) NodePath
	NodePathCopy       func(p NodePath) NodePath
	NodePathDestroy    func(p NodePath)
	NodePathAsString   func(p NodePath) String
	NodePathIsAbsolute func(p NodePath) bool
	NodePathNameCount  func(p NodePath) int
	NodePathName       func(p NodePath, i int) String
	NodePathIsEmpty    func(p NodePath) bool
	NodePathEqual      func(a, b NodePath) bool

	RIDNewWithResource func(o Object) RID

	ArrayNew       func() Array
	ArrayCopy      func(a Array) Array
	ArrayDestroy   func(a Array)
	ArraySize      func(a Array) int
	ArrayGet       func(a Array, i int) Variant
	ArraySet       func(a Array, i int, v Variant)
	ArrayPushBack  func(a Array, v Variant)
	ArrayInsert    func(a Array, i int, v Variant)
	ArrayRemove    func(a Array, i int)
	ArrayResize    func(a Array, n int)
	ArrayClear     func(a Array)
	ArrayFind      func(a Array, v Variant, from int) int
	ArrayDuplicate func(a Array, deep bool) Array
	ArraySort      func(a Array)
	ArrayInvert    func(a Array)

	DictionaryNew     func() Dictionary
	DictionaryCopy    func(d Dictionary) Dictionary
	DictionaryDestroy func(d Dictionary)
	DictionarySize    func(d Dictionary) int
	// DictionaryGet returns zero when key is absent.
	DictionaryGet       func(d Dictionary, key Variant) Variant
	DictionarySet       func(d Dictionary, key, value Variant)
	DictionaryHas       func(d Dictionary, key Variant) bool
	DictionaryErase     func(d Dictionary, key Variant) bool
	DictionaryClear     func(d Dictionary)
	DictionaryKeys      func(d Dictionary) Array
	DictionaryValues    func(d Dictionary) Array
	DictionaryDuplicate func(d Dictionary, deep bool) Dictionary
	DictionaryToJSON    func(d Dictionary) String

	PoolByteArray    PoolArrayAPI[byte]
	PoolIntArray     PoolArrayAPI[int32]
	PoolRealArray    PoolArrayAPI[float32]
	PoolStringArray  PoolArrayAPI[String]
	PoolVector2Array PoolArrayAPI[geom.Vector2]
	PoolVector3Array PoolArrayAPI[geom.Vector3]
	PoolColorArray   PoolArrayAPI[geom.Color]

	VariantNewNil         func() Variant
	VariantNewBool        func(b bool) Variant
	VariantNewInt         func(i int64) Variant
	VariantNewReal        func(f float64) Variant
	VariantNewString      func(s String) Variant
	VariantNewVector2     func(v geom.Vector2) Variant
	VariantNewRect2       func(r geom.Rect2) Variant
	VariantNewVector3     func(v geom.Vector3) Variant
	VariantNewTransform2D func(t geom.Transform2D) Variant
	VariantNewPlane       func(p geom.Plane) Variant
	VariantNewQuat        func(q geom.Quat) Variant
	VariantNewAABB        func(a geom.AABB) Variant
	VariantNewBasis       func(b geom.Basis) Variant
	VariantNewTransform   func(t geom.Transform) Variant
	VariantNewColor       func(c geom.Color) Variant
	VariantNewNodePath    func(p NodePath) Variant
	VariantNewRID         func(r RID) Variant
	VariantNewObject      func(o Object) Variant
	VariantNewDictionary  func(d Dictionary) Variant
	VariantNewArray       func(a Array) Variant
	VariantNewPoolArray   func(t VariantType, a PoolArray) Variant

	VariantCopy    func(v Variant) Variant
	VariantDestroy func(v Variant)
	VariantGetType func(v Variant) VariantType

	// The As accessors coerce the same way the engine does.
	VariantAsBool        func(v Variant) bool
	VariantAsInt         func(v Variant) int64
	VariantAsReal        func(v Variant) float64
	VariantAsString      func(v Variant) String
	VariantAsVector2     func(v Variant) geom.Vector2
	VariantAsRect2       func(v Variant) geom.Rect2
	VariantAsVector3     func(v Variant) geom.Vector3
	VariantAsTransform2D func(v Variant) geom.Transform2D
	VariantAsPlane       func(v Variant) geom.Plane
	VariantAsQuat        func(v Variant) geom.Quat
	VariantAsAABB        func(v Variant) geom.AABB
	VariantAsBasis       func(v Variant) geom.Basis
	VariantAsTransform   func(v Variant) geom.Transform
	VariantAsColor       func(v Variant) geom.Color
	VariantAsNodePath    func(v Variant) NodePath
	VariantAsRID         func(v Variant) RID
	VariantAsObject      func(v Variant) Object
	VariantAsDictionary  func(v Variant) Dictionary
	VariantAsArray       func(v Variant) Array
	VariantAsPoolArray   func(v Variant) PoolArray

	VariantCall        func(v Variant, method String, args []Variant) (Variant, CallError)
	VariantHasMethod   func(v Variant, method String) bool
	VariantEvaluate    func(op VariantOperator, a, b Variant) (Variant, bool)
	VariantEqual       func(a, b Variant) bool
	VariantLess        func(a, b Variant) bool
	VariantHashCompare func(a, b Variant) bool
	VariantBooleanize  func(v Variant) bool
	VariantHash        func(v Variant) uint32

	ObjectDestroy       func(o Object)
	GetClassConstructor func(class string) ClassConstructor
	GlobalGetSingleton  func(name string) Object
	MethodBindGetMethod func(class, method string) MethodBind
	MethodBindCall      func(mb MethodBind, o Object, args []Variant) (Variant, CallError)
	InstanceFromID      func(id uint64) Object
	IsInstanceValid     func(o Object) bool
	GetClassTag         func(class string) ClassTag        `gd:"optional"`
	ObjectCastTo        func(o Object, tag ClassTag) Object `gd:"optional"`

	Print        func(msg string)
	PrintWarning func(desc, function, file string, line int)
	PrintError   func(desc, function, file string, line int)
}

// InstanceCreateFunc is called by the engine to create script instance data.
type InstanceCreateFunc struct {
	Create     func(owner Object, methodData uintptr) UserData
	MethodData uintptr
	FreeFunc   func(methodData uintptr)
}

// InstanceDestroyFunc is called by the engine when the owner goes away.
type InstanceDestroyFunc struct {
	Destroy    func(owner Object, methodData uintptr, userData UserData)
	MethodData uintptr
	FreeFunc   func(methodData uintptr)
}

// InstanceMethod is a registered script method trampoline.
type InstanceMethod struct {
	Method     func(owner Object, methodData uintptr, userData UserData, args []Variant) Variant
	MethodData uintptr
	FreeFunc   func(methodData uintptr)
}

// PropertySetFunc is a registered property setter trampoline.
type PropertySetFunc struct {
	Set        func(owner Object, methodData uintptr, userData UserData, value Variant)
	MethodData uintptr
	FreeFunc   func(methodData uintptr)
}

// PropertyGetFunc is a registered property getter trampoline.
type PropertyGetFunc struct {
	Get        func(owner Object, methodData uintptr, userData UserData) Variant
	MethodData uintptr
	FreeFunc   func(methodData uintptr)
}

// MethodAttributes carries per-method registration options.
type MethodAttributes struct {
	RPCMode RPCMode
}

// PropertyAttributes describes a property to the editor and serializer.
// DefaultValue is borrowed for the duration of the registration call.
type PropertyAttributes struct {
	RsetType     RPCMode
	Type         VariantType
	Hint         PropertyHint
	HintString   string
	Usage        PropertyUsage
	DefaultValue Variant
}

// SignalArgument describes one signal parameter.
type SignalArgument struct {
	Name         string
	Type         VariantType
	Hint         PropertyHint
	HintString   string
	Usage        PropertyUsage
	DefaultValue Variant
}

// Signal describes a signal declaration.
type Signal struct {
	Name        string
	Args        []SignalArgument
	DefaultArgs []Variant
}

// MethodArgument describes one method parameter for the editor.
type MethodArgument struct {
	Name       string
	Type       VariantType
	Hint       PropertyHint
	HintString string
}

// NativeScriptAPI is the NativeScript 1.0 extension table.
type NativeScriptAPI struct {
	Header
	Next *NativeScript11API

	RegisterClass     func(h Handle, name, base string, create InstanceCreateFunc, destroy InstanceDestroyFunc)
	RegisterToolClass func(h Handle, name, base string, create InstanceCreateFunc, destroy InstanceDestroyFunc)
	RegisterMethod    func(h Handle, class, method string, attr MethodAttributes, m InstanceMethod)
	RegisterProperty  func(h Handle, class, path string, attr PropertyAttributes, set PropertySetFunc, get PropertyGetFunc)
	RegisterSignal    func(h Handle, class string, sig Signal)
	GetUserdata       func(o Object) UserData
}

// NativeScript11API is the NativeScript 1.1 extension table.
type NativeScript11API struct {
	Header

	SetMethodArgumentInformation func(h Handle, class, method string, args []MethodArgument)
	SetClassDocumentation        func(h Handle, class, doc string)
	SetMethodDocumentation       func(h Handle, class, method, doc string)
	SetPropertyDocumentation     func(h Handle, class, path, doc string)
	SetSignalDocumentation       func(h Handle, class, signal, doc string)
	SetTypeTag                   func(h Handle, class string, tag TypeTag)
	GetTypeTag                   func(o Object) TypeTag
	ProfilingAddData             func(signature string, usec uint64) `gd:"optional"`
}

// InitOptions is handed to the library's load entry point.
type InitOptions struct {
	InEditor          bool
	ActiveLibraryPath string
	API               *CoreAPI
	Library           Object

	ReportVersionMismatch func(library Object, what string, want, have Version)
	ReportLoadingError    func(library Object, what string)
}

// TerminateOptions is handed to the library's unload entry point.
type TerminateOptions struct {
	InEditor bool
}
