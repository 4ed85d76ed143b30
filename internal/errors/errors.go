package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Phase indicates where in the binding pipeline the error occurred
type Phase string

const (
	PhaseDecode  Phase = "decode"  // signature and blob decoding
	PhaseResolve Phase = "resolve" // name, token and scope resolution
	PhaseBind    Phase = "bind"    // interface and vtable slot binding
	PhaseInvoke  Phase = "invoke"  // native calls
)

// Kind categorizes the error
type Kind string

const (
	KindNotFound                       Kind = "not_found"
	KindUnsupportedSignatureShape      Kind = "unsupported_signature_shape"
	KindExternalScopeResolutionFailure Kind = "external_scope_resolution_failure"
	KindNoMatchingFactoryMethod        Kind = "no_matching_factory_method"
	KindNativeCallFailure              Kind = "native_call_failure"
	KindInvariantViolation             Kind = "invariant_violation"
)

// Sentinels for errors.Is. They carry no phase so they match any phase.
var (
	ErrNotFound                       = &Error{Kind: KindNotFound}
	ErrUnsupportedSignatureShape      = &Error{Kind: KindUnsupportedSignatureShape}
	ErrExternalScopeResolutionFailure = &Error{Kind: KindExternalScopeResolutionFailure}
	ErrNoMatchingFactoryMethod        = &Error{Kind: KindNoMatchingFactoryMethod}
	ErrNativeCallFailure              = &Error{Kind: KindNativeCallFailure}
	ErrInvariantViolation             = &Error{Kind: KindInvariantViolation}
)

// Error is the structured error type used throughout the engine
type Error struct {
	Context map[string]any
	Cause   error
	Phase   Phase
	Kind    Kind
	Name    string
	Detail  string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Name != "" {
		b.WriteString(" ")
		b.WriteString(e.Name)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Context[k])
		}
		b.WriteByte('}')
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

// Is reports whether target matches this error.
// A target without a phase matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
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

// Name sets the type or member name the error refers to
func (b *Builder) Name(name string) *Builder {
	b.err.Name = name
	return b
}

// Context attaches a key/value pair
func (b *Builder) Context(key string, value any) *Builder {
	if b.err.Context == nil {
		b.err.Context = make(map[string]any)
	}
	b.err.Context[key] = value
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

// NotFound reports a name or token that does not resolve
func NotFound(phase Phase, name string) *Error {
	return &Error{Phase: phase, Kind: KindNotFound, Name: name}
}

// UnsupportedShape reports a signature outside the handled grammar
func UnsupportedShape(tag byte, offset int) *Error {
	return New(PhaseDecode, KindUnsupportedSignatureShape).
		Detail("element type 0x%02x", tag).
		Context("offset", offset).
		Build()
}

// Invariant reports a failed internal consistency assumption
func Invariant(phase Phase, name, msg string, args ...any) *Error {
	return New(phase, KindInvariantViolation).Name(name).Detail(msg, args...).Build()
}

// ExternalScope reports a type reference that could not be followed to its module
func ExternalScope(name string, cause error) *Error {
	return New(PhaseResolve, KindExternalScopeResolutionFailure).Name(name).Cause(cause).Build()
}

// NoFactory reports an exhausted factory/interface search
func NoFactory(name, msg string, args ...any) *Error {
	return New(PhaseBind, KindNoMatchingFactoryMethod).Name(name).Detail(msg, args...).Build()
}

// NativeCall reports a failing native status code
func NativeCall(name string, hresult int32) *Error {
	return New(PhaseInvoke, KindNativeCallFailure).
		Name(name).
		Context("hresult", fmt.Sprintf("0x%08X", uint32(hresult))).
		Build()
}

// Is forwards to the standard library so callers need a single errors import
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}
