package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Phase indicates where in the binding lifecycle the error occurred
type Phase string

const (
	PhaseLoad     Phase = "load"     // binding the engine API table
	PhaseRegister Phase = "register" // class, method, property, signal registration
	PhaseDispatch Phase = "dispatch" // method and accessor trampolines
	PhaseConvert  Phase = "convert"  // Variant to Go and back
	PhaseStorage  Phase = "storage"  // script instance user-data access
	PhaseEngine   Phase = "engine"   // error codes returned by the engine
	PhaseRuntime  Phase = "runtime"  // everything else
)

// Kind categorizes the error
type Kind string

const (
	KindVersionMismatch  Kind = "version_mismatch"
	KindMissingTable     Kind = "missing_table"
	KindMissingFunction  Kind = "missing_function"
	KindDuplicateClass   Kind = "duplicate_class"
	KindUnknownBase      Kind = "unknown_base"
	KindMissingAccessor  Kind = "missing_accessor"
	KindInvalidSignature Kind = "invalid_signature"
	KindArgumentCount    Kind = "argument_count"
	KindTypeMismatch     Kind = "type_mismatch"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindOverflow         Kind = "overflow"
	KindInvalidEnum      Kind = "invalid_enum"
	KindNilValue         Kind = "nil_value"
	KindWouldBlock       Kind = "would_block"
	KindWrongThread      Kind = "wrong_thread"
	KindConsumed         Kind = "consumed"
	KindPanic            Kind = "panic"
	KindInvalidOp        Kind = "invalid_op"
	KindCallFailed       Kind = "call_failed"
	KindNotFound         Kind = "not_found"
	KindNotInitialized   Kind = "not_initialized"
	KindInvalidInput     Kind = "invalid_input"
	KindUnsupported      Kind = "unsupported"
	KindPlumbing         Kind = "plumbing"
)

// Error is the structured error type used throughout the bindings
type Error struct {
	Value       any
	Cause       error
	Phase       Phase
	Kind        Kind
	GoType      string
	VariantType string
	Class       string
	Detail      string
	Path        []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Class != "" {
		b.WriteString(" in ")
		b.WriteString(e.Class)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.VariantType != "" {
		b.WriteString(": ")
		switch {
		case e.GoType != "" && e.VariantType != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", variant type ")
			b.WriteString(e.VariantType)
		case e.GoType != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		default:
			b.WriteString("variant type ")
			b.WriteString(e.VariantType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.VariantType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// VariantType sets the engine variant type name
func (b *Builder) VariantType(t string) *Builder {
	b.err.VariantType = t
	return b
}

// Class sets the script or engine class the error relates to
func (b *Builder) Class(name string) *Builder {
	b.err.Class = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, variantType string) *Error {
	return &Error{
		Phase:       phase,
		Kind:        KindTypeMismatch,
		Path:        path,
		GoType:      goType,
		VariantType: variantType,
	}
}

// VersionMismatch creates an API version mismatch error
func VersionMismatch(what string, want, have fmt.Stringer) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindVersionMismatch,
		Detail: fmt.Sprintf("%s: want %s, have %s", what, want, have),
	}
}

// MissingTable creates an error for an API table absent from the engine
func MissingTable(what string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindMissingTable,
		Detail: fmt.Sprintf("engine does not provide %s", what),
	}
}

// DuplicateClass creates a registration error for an already registered class name
func DuplicateClass(name string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindDuplicateClass,
		Class:  name,
		Detail: "class name is already registered",
	}
}

// UnknownBase creates a registration error for a class whose base is not an engine class
func UnknownBase(class, base string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindUnknownBase,
		Class:  class,
		Value:  base,
		Detail: fmt.Sprintf("base class %q is not an engine class", base),
	}
}

// MissingAccessor creates an error for a property accessor that was never provided
func MissingAccessor(class, property, side string) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindMissingAccessor,
		Class:  class,
		Path:   []string{property},
		Detail: fmt.Sprintf("property %q has no %s", property, side),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		GoType: targetType,
		Detail: fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:  value,
	}
}

// NotFound creates a lookup failure error
func NotFound(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: what,
	}
}

// NotInitialized creates an error for use of the bindings before the API is bound
func NotInitialized(what string) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindNotInitialized,
		Detail: what,
	}
}

// Panic creates an error describing a recovered panic
func Panic(phase Phase, value any, site string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindPanic,
		Value:  value,
		Detail: fmt.Sprintf("panic at %s: %v", site, value),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Plumbing panics with an error describing a bug in the bindings themselves.
// These are never recovered into values.
func Plumbing(format string, args ...any) {
	panic(&Error{
		Phase:  PhaseRuntime,
		Kind:   KindPlumbing,
		Detail: fmt.Sprintf(format, args...),
	})
}

// MissingClassesError is reported at the end of script init when classes
// collected for automatic registration were not registered by the user callback
type MissingClassesError struct {
	Classes []string
}

// NewMissingClassesError creates an error listing the missing class names
func NewMissingClassesError(classes []string) *MissingClassesError {
	sorted := append([]string(nil), classes...)
	sort.Strings(sorted)
	return &MissingClassesError{Classes: sorted}
}

func (e *MissingClassesError) Error() string {
	if len(e.Classes) == 0 {
		return "[register] not_found: no classes specified"
	}

	var b strings.Builder
	b.WriteString("[register] not_found: ")
	fmt.Fprintf(&b, "%d class", len(e.Classes))
	if len(e.Classes) != 1 {
		b.WriteString("es")
	}
	b.WriteString(" missing from manual registration: ")
	b.WriteString(strings.Join(e.Classes, ", "))
	return b.String()
}

// Is reports whether target is a MissingClassesError
func (e *MissingClassesError) Is(target error) bool {
	_, ok := target.(*MissingClassesError)
	return ok
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool { return stderrors.As(err, target) }

// Join returns an error wrapping the given errors, or nil if all are nil.
func Join(errs ...error) error { return stderrors.Join(errs...) }
