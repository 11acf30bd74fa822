package userdata

import (
	"fmt"
	"reflect"

	"github.com/wippyai/gdnative/errors"
)

// Policy identifies a storage policy.
type Policy uint8

const (
	PolicyMutex Policy = iota
	PolicyRWLock
	PolicyArc
	PolicyLocalCell
	PolicyAether
	PolicyOnce
)

// DefaultPolicy is used by classes that do not choose one.
const DefaultPolicy = PolicyMutex

func (p Policy) String() string {
	switch p {
	case PolicyMutex:
		return "mutex"
	case PolicyRWLock:
		return "rwlock"
	case PolicyArc:
		return "arc"
	case PolicyLocalCell:
		return "local_cell"
	case PolicyAether:
		return "aether"
	case PolicyOnce:
		return "once"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// Op is an access mode.
type Op uint8

const (
	OpMap Op = iota
	OpMapMut
	OpMapOwned
)

func (o Op) String() string {
	switch o {
	case OpMap:
		return "map"
	case OpMapMut:
		return "map_mut"
	default:
		return "map_owned"
	}
}

// Supports reports whether values stored under p allow access mode op.
func (p Policy) Supports(op Op) bool {
	switch p {
	case PolicyMutex, PolicyRWLock, PolicyLocalCell:
		return op == OpMap || op == OpMapMut
	case PolicyArc, PolicyAether:
		return op == OpMap
	case PolicyOnce:
		return op == OpMapOwned
	}
	return false
}

// UserData is the per-instance storage of a script class value.
//
// Map grants shared access, MapMut exclusive access and MapOwned moves the
// value out. None of them block: contention is reported as ErrWouldBlock.
// Modes the policy does not support fail with ErrUnsupported.
type UserData[T any] interface {
	Policy() Policy
	Map(fn func(*T)) error
	MapMut(fn func(*T)) error
	MapOwned(fn func(T)) error
}

// Factory wraps a new value in its storage.
type Factory[T any] func(T) UserData[T]

// FactoryFor returns the factory for p.
func FactoryFor[T any](p Policy) (Factory[T], error) {
	if err := Validate[T](p); err != nil {
		return nil, err
	}
	switch p {
	case PolicyMutex:
		return func(v T) UserData[T] { return NewMutex(v) }, nil
	case PolicyRWLock:
		return func(v T) UserData[T] { return NewRWLock(v) }, nil
	case PolicyArc:
		return func(v T) UserData[T] { return NewArc(v) }, nil
	case PolicyLocalCell:
		return func(v T) UserData[T] { return NewLocalCell(v) }, nil
	case PolicyAether:
		return func(T) UserData[T] { return Aether[T]{} }, nil
	default:
		return func(v T) UserData[T] { return NewOnce(v) }, nil
	}
}

// Validate reports whether T can be stored under p.
func Validate[T any](p Policy) error {
	if p > PolicyOnce {
		return errors.New(errors.PhaseRegister, errors.KindInvalidInput).
			Detail("unknown storage policy %s", p).
			Build()
	}
	if p == PolicyAether {
		if t := reflect.TypeFor[T](); t.Size() != 0 {
			return errors.New(errors.PhaseRegister, errors.KindUnsupported).
				GoType(t.String()).
				Detail("aether storage requires a zero-sized type, %s has size %d", t, t.Size()).
				Build()
		}
	}
	return nil
}

// MapValue runs fn with shared access and returns its result.
func MapValue[T, R any](u UserData[T], fn func(*T) R) (R, error) {
	var out R
	err := u.Map(func(v *T) { out = fn(v) })
	return out, err
}

// MapMutValue runs fn with exclusive access and returns its result.
func MapMutValue[T, R any](u UserData[T], fn func(*T) R) (R, error) {
	var out R
	err := u.MapMut(func(v *T) { out = fn(v) })
	return out, err
}

// MapOwnedValue moves the value into fn and returns its result.
func MapOwnedValue[T, R any](u UserData[T], fn func(T) R) (R, error) {
	var out R
	err := u.MapOwned(func(v T) { out = fn(v) })
	return out, err
}
