package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/sys"
)

// CallErrorKind is the reason a dynamic call failed.
type CallErrorKind = sys.CallErrorKind

const (
	CallInvalidMethod    = sys.CallInvalidMethod
	CallInvalidArgument  = sys.CallInvalidArgument
	CallTooManyArguments = sys.CallTooManyArguments
	CallTooFewArguments  = sys.CallTooFewArguments
	CallInstanceIsNull   = sys.CallInstanceIsNull
)

// CallError is returned by Variant.Call and engine method calls.
type CallError struct {
	Method   string
	Kind     CallErrorKind
	Argument int
	Expected VariantType
}

func callError(method string, raw sys.CallError) *CallError {
	return &CallError{
		Method:   method,
		Kind:     raw.Error,
		Argument: int(raw.Argument),
		Expected: raw.Expected,
	}
}

// NewCallError converts a raw engine call status. It returns nil on success.
func NewCallError(method string, raw sys.CallError) error {
	if raw.Error == sys.CallOK {
		return nil
	}
	return callError(method, raw)
}

func (e *CallError) Error() string {
	var msg string
	switch e.Kind {
	case CallInvalidMethod:
		msg = "invalid method"
	case CallInvalidArgument:
		msg = fmt.Sprintf("invalid argument #%d, expected %s", e.Argument, e.Expected)
	case CallTooManyArguments:
		msg = "too many arguments"
	case CallTooFewArguments:
		msg = "too few arguments"
	case CallInstanceIsNull:
		msg = "instance is null"
	default:
		msg = fmt.Sprintf("call error %d", int32(e.Kind))
	}
	if e.Method == "" {
		return msg
	}
	return "call to " + e.Method + ": " + msg
}

// Is lets errors.Is match CallError against the engine phase taxonomy.
func (e *CallError) Is(target error) bool {
	if t, ok := target.(*errors.Error); ok {
		return t.Phase == errors.PhaseEngine && t.Kind == errors.KindCallFailed
	}
	if t, ok := target.(*CallError); ok {
		return t.Kind == e.Kind
	}
	return false
}

// GodotError is an engine error code other than success.
type GodotError int32

const (
	ErrFailed GodotError = iota + 1
	ErrUnavailable
	ErrUnconfigured
	ErrUnauthorized
	ErrParameterRange
	ErrOutOfMemory
	ErrFileNotFound
	ErrFileBadDrive
	ErrFileBadPath
	ErrFileNoPermission
	ErrFileAlreadyInUse
	ErrFileCantOpen
	ErrFileCantWrite
	ErrFileCantRead
	ErrFileUnrecognized
	ErrFileCorrupt
	ErrFileMissingDependencies
	ErrFileEOF
	ErrCantOpen
	ErrCantCreate
	ErrQueryFailed
	ErrAlreadyInUse
	ErrLocked
	ErrTimeout
	ErrCantConnect
	ErrCantResolve
	ErrConnectionError
	ErrCantAcquireResource
	ErrCantFork
	ErrInvalidData
	ErrInvalidParameter
	ErrAlreadyExists
	ErrDoesNotExist
	ErrDatabaseCantRead
	ErrDatabaseCantWrite
	ErrCompilationFailed
	ErrMethodNotFound
	ErrLinkFailed
	ErrScriptFailed
	ErrCyclicLink
	ErrInvalidDeclaration
	ErrDuplicateSymbol
	ErrParseError
	ErrBusy
	ErrSkip
	ErrHelp
	ErrBug
	ErrPrinterOnFire
)

var godotErrorNames = [...]string{
	"OK", "Failed", "Unavailable", "Unconfigured", "Unauthorized",
	"Parameter out of range", "Out of memory", "File not found",
	"File: Bad drive", "File: Bad path", "File: Permission denied",
	"File already in use", "Can't open file", "Can't write file",
	"Can't read file", "File unrecognized", "File corrupt",
	"Missing dependencies for file", "End of file", "Can't open",
	"Can't create", "Query failed", "Already in use", "Locked", "Timeout",
	"Can't connect", "Can't resolve", "Connection error",
	"Can't acquire resource", "Can't fork", "Invalid data",
	"Invalid parameter", "Already exists", "Does not exist",
	"Can't read database", "Can't write database", "Compilation failed",
	"Method not found", "Link failed", "Script failed",
	"Cyclic link detected", "Invalid declaration", "Duplicate symbol",
	"Parse error", "Busy", "Skip", "Help", "Bug", "Printer on fire",
}

func (e GodotError) Error() string {
	if e > 0 && int(e) < len(godotErrorNames) {
		return godotErrorNames[e]
	}
	return "unknown engine error " + strconv.Itoa(int(e))
}

// Is lets errors.Is match any GodotError against the engine phase.
func (e GodotError) Is(target error) bool {
	t, ok := target.(*errors.Error)
	return ok && t.Phase == errors.PhaseEngine && t.Kind == errors.KindCallFailed
}

// GodotResult maps a raw engine code to nil or a GodotError.
func GodotResult(code sys.Error) error {
	if code == 0 {
		return nil
	}
	return GodotError(code)
}

// FromVariantErrorKind classifies a decoding failure.
type FromVariantErrorKind int

const (
	FromVariantUnspecified FromVariantErrorKind = iota
	FromVariantCustom
	FromVariantInvalidNil
	FromVariantInvalidType
	FromVariantCannotCast
	FromVariantInvalidLength
	FromVariantInvalidEnumRepr
	FromVariantInvalidStructRepr
	FromVariantUnknownEnumVariant
	FromVariantInvalidEnumVariant
	FromVariantInvalidInstance
	FromVariantInvalidField
	FromVariantInvalidItem
)

// FromVariantError describes why a Variant could not be decoded. Field and
// item errors nest, so the chain records the path to the failing value.
type FromVariantError struct {
	Kind FromVariantErrorKind

	// Message is set for FromVariantCustom.
	Message string
	// Actual and Expected are set for FromVariantInvalidType.
	Actual   VariantType
	Expected VariantType
	// Class and To are set for FromVariantCannotCast and FromVariantInvalidInstance.
	Class string
	To    string
	// Len and ExpectedLen are set for FromVariantInvalidLength.
	Len         int
	ExpectedLen int
	// Repr names the expected representation for the repr kinds.
	Repr string
	// Variant and Variants are set for the enum kinds.
	Variant  string
	Variants []string
	// Field or Index locate a nested failure.
	Field string
	Index int

	Inner *FromVariantError
}

func InvalidVariantType(actual, expected VariantType) *FromVariantError {
	return &FromVariantError{Kind: FromVariantInvalidType, Actual: actual, Expected: expected}
}

func InvalidNil() *FromVariantError {
	return &FromVariantError{Kind: FromVariantInvalidNil, Actual: TypeNil}
}

func CustomFromVariantError(format string, args ...any) *FromVariantError {
	return &FromVariantError{Kind: FromVariantCustom, Message: fmt.Sprintf(format, args...)}
}

func CannotCast(class, to string) *FromVariantError {
	return &FromVariantError{Kind: FromVariantCannotCast, Class: class, To: to, Actual: TypeObject}
}

func InvalidLength(length, expected int) *FromVariantError {
	return &FromVariantError{Kind: FromVariantInvalidLength, Len: length, ExpectedLen: expected}
}

func InvalidInstance(class string) *FromVariantError {
	return &FromVariantError{Kind: FromVariantInvalidInstance, To: class, Actual: TypeObject}
}

func InvalidEnumRepr(repr string, inner *FromVariantError) *FromVariantError {
	return &FromVariantError{Kind: FromVariantInvalidEnumRepr, Repr: repr, Inner: inner}
}

func InvalidStructRepr(repr string, inner *FromVariantError) *FromVariantError {
	return &FromVariantError{Kind: FromVariantInvalidStructRepr, Repr: repr, Inner: inner}
}

func UnknownEnumVariant(variant string, expected []string) *FromVariantError {
	return &FromVariantError{Kind: FromVariantUnknownEnumVariant, Variant: variant, Variants: expected}
}

func InvalidEnumVariant(variant string, inner *FromVariantError) *FromVariantError {
	return &FromVariantError{Kind: FromVariantInvalidEnumVariant, Variant: variant, Inner: inner}
}

// FieldError wraps a failure decoding the named struct field.
func FieldError(name string, inner *FromVariantError) *FromVariantError {
	return &FromVariantError{Kind: FromVariantInvalidField, Field: name, Inner: inner}
}

// ItemError wraps a failure decoding the element at index.
func ItemError(index int, inner *FromVariantError) *FromVariantError {
	return &FromVariantError{Kind: FromVariantInvalidItem, Index: index, Inner: inner}
}

// AsFromVariantError returns err as a *FromVariantError, wrapping foreign
// errors as custom failures.
func AsFromVariantError(err error) *FromVariantError {
	if err == nil {
		return nil
	}
	var fe *FromVariantError
	if errors.As(err, &fe) {
		return fe
	}
	return &FromVariantError{Kind: FromVariantCustom, Message: err.Error()}
}

// Path returns the field and index path to the failing value, e.g.
// ["items", "[2]", "name"].
func (e *FromVariantError) Path() []string {
	var path []string
	for cur := e; cur != nil; cur = cur.Inner {
		switch cur.Kind {
		case FromVariantInvalidField:
			path = append(path, cur.Field)
		case FromVariantInvalidItem:
			path = append(path, "["+strconv.Itoa(cur.Index)+"]")
		case FromVariantInvalidEnumVariant:
			path = append(path, cur.Variant)
		}
	}
	return path
}

// Leaf returns the innermost error, skipping path wrappers.
func (e *FromVariantError) Leaf() *FromVariantError {
	cur := e
	for cur.Inner != nil && (cur.Kind == FromVariantInvalidField ||
		cur.Kind == FromVariantInvalidItem || cur.Kind == FromVariantInvalidEnumVariant) {
		cur = cur.Inner
	}
	return cur
}

func (e *FromVariantError) Error() string {
	var b strings.Builder
	path := e.Path()
	if len(path) > 0 {
		for i, p := range path {
			if i > 0 && !strings.HasPrefix(p, "[") {
				b.WriteByte('.')
			}
			b.WriteString(p)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Leaf().message())
	return b.String()
}

func (e *FromVariantError) message() string {
	switch e.Kind {
	case FromVariantCustom:
		return e.Message
	case FromVariantInvalidNil:
		return "expected non-nil value"
	case FromVariantInvalidType:
		return fmt.Sprintf("expected variant type %s, found %s", e.Expected, e.Actual)
	case FromVariantCannotCast:
		return fmt.Sprintf("cannot cast object of class %s to %s", e.Class, e.To)
	case FromVariantInvalidLength:
		return fmt.Sprintf("expected length %d, found %d", e.ExpectedLen, e.Len)
	case FromVariantInvalidEnumRepr:
		return "invalid enum representation, expected " + e.Repr + innerSuffix(e.Inner)
	case FromVariantInvalidStructRepr:
		return "invalid struct representation, expected " + e.Repr + innerSuffix(e.Inner)
	case FromVariantUnknownEnumVariant:
		return fmt.Sprintf("unknown enum variant %s, expected one of [%s]", e.Variant, strings.Join(e.Variants, ", "))
	case FromVariantInvalidInstance:
		return fmt.Sprintf("object is not an instance of script class %s", e.To)
	case FromVariantInvalidEnumVariant, FromVariantInvalidField, FromVariantInvalidItem:
		if e.Inner != nil {
			return e.Inner.message()
		}
		return "invalid value"
	default:
		return "unspecified error"
	}
}

func innerSuffix(inner *FromVariantError) string {
	if inner == nil {
		return ""
	}
	return ": " + inner.Error()
}

func (e *FromVariantError) taxonomyKind() errors.Kind {
	switch e.Leaf().Kind {
	case FromVariantInvalidNil:
		return errors.KindNilValue
	case FromVariantInvalidType, FromVariantCannotCast, FromVariantInvalidInstance:
		return errors.KindTypeMismatch
	case FromVariantInvalidLength:
		return errors.KindOutOfBounds
	case FromVariantInvalidEnumRepr, FromVariantUnknownEnumVariant:
		return errors.KindInvalidEnum
	default:
		return errors.KindInvalidInput
	}
}

// Is matches the convert phase of the shared taxonomy.
func (e *FromVariantError) Is(target error) bool {
	if t, ok := target.(*errors.Error); ok {
		return t.Phase == errors.PhaseConvert && t.Kind == e.taxonomyKind()
	}
	return false
}
