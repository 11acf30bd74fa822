package export

import (
	"fmt"

	"github.com/wippyai/gdnative/core"
	"github.com/wippyai/gdnative/errors"
)

// ArgumentErrorKind classifies argument failures.
type ArgumentErrorKind uint8

const (
	ArgMissing ArgumentErrorKind = iota + 1
	ArgExcess
	ArgInvalid
)

func (k ArgumentErrorKind) String() string {
	switch k {
	case ArgMissing:
		return "missing"
	case ArgExcess:
		return "excess"
	case ArgInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// ArgumentError reports arguments that do not fit a method's parameters.
// Index is zero-based. Min and Max bound the accepted argument count; a
// negative Max is unbounded.
type ArgumentError struct {
	Kind   ArgumentErrorKind
	Method string
	Index  int
	Name   string
	GoType string
	Actual core.VariantType
	Got    int
	Min    int
	Max    int
	Cause  *core.FromVariantError
}

func (e *ArgumentError) Error() string {
	switch e.Kind {
	case ArgMissing:
		if e.Name != "" {
			return fmt.Sprintf("%s: missing argument %d (%s %s)", e.Method, e.Index, e.Name, e.GoType)
		}
		return fmt.Sprintf("%s: got %d arguments, want %s", e.Method, e.Got, e.want())
	case ArgExcess:
		return fmt.Sprintf("%s: got %d arguments, want %s", e.Method, e.Got, e.want())
	default:
		return fmt.Sprintf("%s: argument %d (%s %s): %v", e.Method, e.Index, e.label(), e.GoType, e.Cause)
	}
}

func (e *ArgumentError) label() string {
	if e.Name == "" {
		return fmt.Sprintf("arg%d", e.Index)
	}
	return e.Name
}

func (e *ArgumentError) want() string {
	switch {
	case e.Max < 0:
		return fmt.Sprintf("at least %d", e.Min)
	case e.Min == e.Max:
		return fmt.Sprint(e.Min)
	default:
		return fmt.Sprintf("%d to %d", e.Min, e.Max)
	}
}

func (e *ArgumentError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// Is matches dispatch errors of the shared taxonomy: count failures as
// KindArgumentCount and conversion failures as KindTypeMismatch.
func (e *ArgumentError) Is(target error) bool {
	t, ok := target.(*errors.Error)
	if !ok || t.Phase != errors.PhaseDispatch {
		return false
	}
	if e.Kind == ArgInvalid {
		return t.Kind == errors.KindTypeMismatch
	}
	return t.Kind == errors.KindArgumentCount
}

// Path returns the location of a conversion failure inside the argument,
// such as ["items", "2"].
func (e *ArgumentError) Path() []string {
	if e.Cause == nil {
		return nil
	}
	return e.Cause.Path()
}
