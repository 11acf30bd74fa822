package errors

import (
	"errors"
	"strings"
	"testing"
)

type version string

func (v version) String() string { return string(v) }

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:       PhaseDispatch,
				Kind:        KindTypeMismatch,
				Class:       "Counter",
				Path:        []string{"add", "k"},
				GoType:      "int64",
				VariantType: "String",
				Detail:      "cannot convert",
			},
			contains: []string{"[dispatch]", "type_mismatch", "in Counter", "add.k", "int64", "String", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseConvert,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[convert]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseStorage,
				Kind:   KindWouldBlock,
				Detail: "lock held",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[storage]", "would_block", "lock held", "caused by", "underlying error"},
		},
		{
			name: "variant type only",
			err: &Error{
				Phase:       PhaseConvert,
				Kind:        KindTypeMismatch,
				VariantType: "Dictionary",
				Detail:      "expected struct",
			},
			contains: []string{"variant type Dictionary - expected struct"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEngine,
		Kind:  KindCallFailed,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not follow cause chain")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseStorage,
		Kind:  KindWouldBlock,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseStorage, Kind: KindWouldBlock}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseDispatch, Kind: KindWouldBlock}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseStorage, Kind: KindConsumed}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseStorage, Kind: KindWouldBlock}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseRegister, KindInvalidSignature).
		Class("Echo").
		Path("call").
		GoType("func(int)").
		VariantType("Nil").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "receiver", "int").
		Build()

	if err.Phase != PhaseRegister {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseRegister)
	}
	if err.Kind != KindInvalidSignature {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidSignature)
	}
	if err.Class != "Echo" {
		t.Errorf("Class = %v, want Echo", err.Class)
	}
	if len(err.Path) != 1 || err.Path[0] != "call" {
		t.Errorf("Path = %v, want [call]", err.Path)
	}
	if err.GoType != "func(int)" || err.VariantType != "Nil" {
		t.Errorf("GoType=%v VariantType=%v", err.GoType, err.VariantType)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected receiver, got int" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("VersionMismatch", func(t *testing.T) {
		err := VersionMismatch("nativescript", version("1.1"), version("1.0"))
		if err.Kind != KindVersionMismatch || err.Phase != PhaseLoad {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
		if !strings.Contains(err.Detail, "want 1.1, have 1.0") {
			t.Errorf("Detail = %v", err.Detail)
		}
	})

	t.Run("MissingTable", func(t *testing.T) {
		err := MissingTable("nativescript 1.1")
		if err.Kind != KindMissingTable {
			t.Errorf("Kind = %v", err.Kind)
		}
	})

	t.Run("DuplicateClass", func(t *testing.T) {
		err := DuplicateClass("Counter")
		if err.Kind != KindDuplicateClass || err.Class != "Counter" {
			t.Errorf("got %+v", err)
		}
	})

	t.Run("UnknownBase", func(t *testing.T) {
		err := UnknownBase("Orphan", "Missing")
		if err.Kind != KindUnknownBase || err.Class != "Orphan" || err.Value != "Missing" {
			t.Errorf("got %+v", err)
		}
	})

	t.Run("MissingAccessor", func(t *testing.T) {
		err := MissingAccessor("Thing", "value", "setter")
		if !strings.Contains(err.Error(), `property "value" has no setter`) {
			t.Errorf("Error() = %v", err.Error())
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseConvert, []string{"list"}, 10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseConvert, []string{"val"}, 300, "uint8")
		if err.Kind != KindOverflow {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
		}
		if err.Value != 300 {
			t.Errorf("Value = %v, want 300", err.Value)
		}
	})

	t.Run("Panic", func(t *testing.T) {
		err := Panic(PhaseDispatch, "boom", "demo.go:12")
		if !strings.Contains(err.Detail, "demo.go:12") || !strings.Contains(err.Detail, "boom") {
			t.Errorf("Detail = %v", err.Detail)
		}
	})
}

func TestPlumbing(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(*Error)
		if !ok {
			t.Fatalf("recovered %T, want *Error", r)
		}
		if err.Kind != KindPlumbing {
			t.Errorf("Kind = %v, want %v", err.Kind, KindPlumbing)
		}
		if !strings.Contains(err.Detail, "tag 0x3") {
			t.Errorf("Detail = %v", err.Detail)
		}
	}()
	Plumbing("unknown type tag %#x", 3)
}

func TestMissingClassesError(t *testing.T) {
	t.Run("sorted list", func(t *testing.T) {
		err := NewMissingClassesError([]string{"Echo", "Counter"})
		msg := err.Error()
		if !strings.Contains(msg, "2 classes") {
			t.Errorf("message should contain count: %s", msg)
		}
		if !strings.Contains(msg, "Counter, Echo") {
			t.Errorf("message should list sorted names: %s", msg)
		}
	})

	t.Run("singular", func(t *testing.T) {
		msg := NewMissingClassesError([]string{"Echo"}).Error()
		if !strings.Contains(msg, "1 class missing") {
			t.Errorf("got %s", msg)
		}
	})

	t.Run("empty", func(t *testing.T) {
		msg := NewMissingClassesError(nil).Error()
		if !strings.Contains(msg, "no classes specified") {
			t.Errorf("got %s", msg)
		}
	})

	t.Run("errors.Is", func(t *testing.T) {
		err := NewMissingClassesError([]string{"A"})
		if !errors.Is(err, &MissingClassesError{}) {
			t.Error("errors.Is should match MissingClassesError")
		}
	})
}
