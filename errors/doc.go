// Package errors provides structured error types for the gdnative bindings.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: class name, field path, Go/variant type
// names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDispatch, errors.KindTypeMismatch).
//		Class("Counter").
//		Path("add", "k").
//		GoType("int64").
//		VariantType("String").
//		Detail("cannot convert argument").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.DuplicateClass("Counter")
//	err := errors.MissingAccessor("Counter", "n", "setter")
//
// Bugs in the bindings themselves are raised with Plumbing, which panics and is
// never recovered into a value.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
