// Package errors provides the structured error type shared by the binding engine.
//
// Errors carry a Phase (decode, resolve, bind, invoke) and a Kind. Kinds mirror the
// failure classes a caller may want to tell apart: an unknown name, a signature outside
// the supported grammar, a dangling cross-module reference, an exhausted factory search,
// a failing native status and a broken metadata invariant.
//
//	err := errors.New(errors.PhaseBind, errors.KindNoMatchingFactoryMethod).
//		Name("Windows.Foundation.Uri").
//		Detail("no factory method takes %d arguments", 3).
//		Build()
//
// Compare against the exported sentinels with errors.Is:
//
//	if errors.Is(err, errors.ErrNotFound) { ... }
package errors
