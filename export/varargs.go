package export

import (
	"reflect"

	"github.com/wippyai/gdnative/convert"
	"github.com/wippyai/gdnative/core"
)

// Varargs is the argument list of a call, read front to back. Methods that
// take *Varargs as their last parameter receive the arguments left after
// the fixed parameters. The variants are borrowed for the call.
type Varargs struct {
	method string
	args   []core.Variant
	offset int
	next   int
}

// NewVarargs wraps args of a call to method.
func NewVarargs(method string, args []core.Variant) *Varargs {
	return &Varargs{method: method, args: args}
}

// Len returns the number of arguments, read or not.
func (a *Varargs) Len() int { return len(a.args) }

// Remaining returns the number of arguments not read yet.
func (a *Varargs) Remaining() int { return len(a.args) - a.next }

// At returns argument i without consuming it. It returns a Nil variant
// for indexes out of range.
func (a *Varargs) At(i int) core.Variant {
	if i < 0 || i >= len(a.args) {
		return core.Variant{}
	}
	return a.args[i]
}

// Rest consumes and returns every argument not read yet.
func (a *Varargs) Rest() []core.Variant {
	out := a.args[a.next:]
	a.next = len(a.args)
	return out
}

// CheckLength fails unless the call has between min and max arguments. A
// negative max is unbounded.
func (a *Varargs) CheckLength(min, max int) error {
	n := len(a.args)
	if n >= min && (max < 0 || n <= max) {
		return nil
	}
	kind := ArgMissing
	if n > min {
		kind = ArgExcess
	}
	return &ArgumentError{
		Kind:   kind,
		Method: a.method,
		Index:  a.offset + n,
		Got:    a.offset + n,
		Min:    a.offset + min,
		Max:    bound(a.offset, max),
	}
}

// Done fails when arguments were left unread.
func (a *Varargs) Done() error {
	if a.next >= len(a.args) {
		return nil
	}
	return &ArgumentError{
		Kind:   ArgExcess,
		Method: a.method,
		Index:  a.offset + a.next,
		Got:    a.offset + len(a.args),
		Min:    a.offset + a.next,
		Max:    a.offset + a.next,
	}
}

func bound(offset, max int) int {
	if max < 0 {
		return max
	}
	return offset + max
}

// Get decodes the next argument as a T. The result holds new references
// to engine values, which the caller owns.
func Get[T any](a *Varargs, name string) (T, error) {
	var out T
	if a.next >= len(a.args) {
		return out, &ArgumentError{
			Kind:   ArgMissing,
			Method: a.method,
			Index:  a.offset + a.next,
			Name:   name,
			GoType: reflect.TypeFor[T]().String(),
			Got:    a.offset + len(a.args),
			Min:    a.offset + a.next + 1,
			Max:    -1,
		}
	}
	v := a.args[a.next]
	if err := decodeArg(a.method, a.offset+a.next, name, v, reflect.ValueOf(&out).Elem()); err != nil {
		return out, err
	}
	a.next++
	return out, nil
}

// GetOpt is Get for an optional argument. It reports false without
// error when no arguments are left.
func GetOpt[T any](a *Varargs, name string) (T, bool, error) {
	if a.next >= len(a.args) {
		var zero T
		return zero, false, nil
	}
	v, err := Get[T](a, name)
	return v, err == nil, err
}

func decodeArg(method string, index int, name string, v core.Variant, rv reflect.Value) error {
	err := convert.DecodeValue(v, rv)
	if err == nil {
		return nil
	}
	return &ArgumentError{
		Kind:   ArgInvalid,
		Method: method,
		Index:  index,
		Name:   name,
		GoType: rv.Type().String(),
		Actual: v.Type(),
		Cause:  core.AsFromVariantError(err),
	}
}
