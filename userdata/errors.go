package userdata

import (
	"fmt"

	"github.com/wippyai/gdnative/errors"
	"github.com/wippyai/gdnative/internal/thread"
)

// StorageErrorKind classifies storage access failures.
type StorageErrorKind uint8

const (
	WouldBlock StorageErrorKind = iota + 1
	WrongThread
	Consumed
	Unsupported
)

func (k StorageErrorKind) String() string {
	switch k {
	case WouldBlock:
		return "would block"
	case WrongThread:
		return "wrong thread"
	case Consumed:
		return "consumed"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// StorageError reports a failed access to instance storage. Original and
// Current are set for WrongThread.
type StorageError struct {
	Kind     StorageErrorKind
	Policy   Policy
	Op       Op
	Original thread.ID
	Current  thread.ID
}

// Sentinels for errors.Is.
var (
	ErrWouldBlock  = &StorageError{Kind: WouldBlock}
	ErrWrongThread = &StorageError{Kind: WrongThread}
	ErrConsumed    = &StorageError{Kind: Consumed}
	ErrUnsupported = &StorageError{Kind: Unsupported}
)

func (e *StorageError) Error() string {
	switch e.Kind {
	case WouldBlock:
		return fmt.Sprintf("%s %s: value is already borrowed", e.Policy, e.Op)
	case WrongThread:
		return fmt.Sprintf("%s %s: accessed from thread %d, created on thread %d", e.Policy, e.Op, e.Current, e.Original)
	case Consumed:
		return fmt.Sprintf("%s %s: value was already moved out", e.Policy, e.Op)
	case Unsupported:
		return fmt.Sprintf("%s storage does not support %s", e.Policy, e.Op)
	default:
		return "storage error"
	}
}

// Is matches StorageError sentinels by kind and the storage phase of the
// shared error taxonomy.
func (e *StorageError) Is(target error) bool {
	switch t := target.(type) {
	case *StorageError:
		return t.Kind == e.Kind
	case *errors.Error:
		return t.Phase == errors.PhaseStorage && t.Kind == e.taxonomyKind()
	}
	return false
}

func (e *StorageError) taxonomyKind() errors.Kind {
	switch e.Kind {
	case WouldBlock:
		return errors.KindWouldBlock
	case WrongThread:
		return errors.KindWrongThread
	case Consumed:
		return errors.KindConsumed
	default:
		return errors.KindUnsupported
	}
}

func unsupported(p Policy, op Op) error {
	return &StorageError{Kind: Unsupported, Policy: p, Op: op}
}

func wouldBlock(p Policy, op Op) error {
	return &StorageError{Kind: WouldBlock, Policy: p, Op: op}
}
