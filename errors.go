package emlisp

import "fmt"

// TypeMismatchError is raised by every accessor that requires a
// specific tag. Trace accumulates as the offending expression is
// consed onto it at every evaluator frame that unwinds through (spec
// §7) — it is a scripting list, not a Go slice, since a host may want
// to print it with Write.
type TypeMismatchError struct {
	Expected Tag
	Actual   Tag
	Message  string
	Trace    Value
}

func (e *TypeMismatchError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("type mismatch: %s (expected %s, got %s)", e.Message, e.Expected, e.Actual)
	}
	return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// withFrame returns a copy of e with expr prepended to the trace,
// mirroring original_source/src/eval.cpp's type_mismatch_error
// copy-constructor.
func (e *TypeMismatchError) withFrame(rt *Runtime, expr Value) *TypeMismatchError {
	return &TypeMismatchError{
		Expected: e.Expected,
		Actual:   e.Actual,
		Message:  e.Message,
		Trace:    rt.cons(expr, e.Trace),
	}
}

// UnboundNameError is raised when a symbol is evaluated outside any
// scope that binds it.
type UnboundNameError struct {
	Name string
}

func (e *UnboundNameError) Error() string {
	return fmt.Sprintf("unbound name %q", e.Name)
}

// ArgumentCountMismatchError is raised when a non-variadic call
// supplies too few arguments.
type ArgumentCountMismatchError struct {
	Want int
	Got  int
}

func (e *ArgumentCountMismatchError) Error() string {
	return fmt.Sprintf("argument count mismatch: want %d, got %d", e.Want, e.Got)
}

// ForeignTypeMismatchError is raised when extern unpacking disagrees
// with the compile-time type fingerprint.
type ForeignTypeMismatchError struct {
	Expected uint64
	Actual   uint64
}

func (e *ForeignTypeMismatchError) Error() string {
	return fmt.Sprintf("foreign type mismatch: expected fingerprint %#x, got %#x", e.Expected, e.Actual)
}

// OutOfMemoryError is raised when the bump pointer would exceed the
// arena even after a collection, or when the live data does not fit a
// collection's new arena.
type OutOfMemoryError struct {
	Requested int
	Available int
}

func (e *OutOfMemoryError) Error() string {
	return fmt.Sprintf("out of memory: requested %d bytes, %d available", e.Requested, e.Available)
}

// InvalidSyntaxError is raised by the reader for malformed literals and
// by the evaluator for malformed special forms.
type InvalidSyntaxError struct {
	Message string
}

func (e *InvalidSyntaxError) Error() string {
	return fmt.Sprintf("invalid syntax: %s", e.Message)
}

// MacroExpandError is raised by the expander on an explicit
// user-injected abort head.
type MacroExpandError struct {
	Message string
}

func (e *MacroExpandError) Error() string {
	return fmt.Sprintf("macro expansion error: %s", e.Message)
}
