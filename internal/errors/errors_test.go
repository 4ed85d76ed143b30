package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: New(PhaseResolve, KindNotFound).
				Name("Windows.Foo.Bar").
				Detail("no type %q", "Bar").
				Context("scope", "Windows.Foundation.winmd").
				Build(),
			contains: []string{"[resolve]", "not_found", "Windows.Foo.Bar", `no type "Bar"`, "scope=Windows.Foundation.winmd"},
		},
		{
			name:     "minimal error",
			err:      &Error{Phase: PhaseDecode, Kind: KindUnsupportedSignatureShape},
			contains: []string{"[decode]", "unsupported_signature_shape"},
		},
		{
			name:     "error with cause",
			err:      ExternalScope("Windows.Foundation.Uri", errors.New("no such file")),
			contains: []string{"[resolve]", "external_scope_resolution_failure", "caused by", "no such file"},
		},
		{
			name:     "native call",
			err:      NativeCall("Windows.Foundation.Uri.ctor", -0x7fffbffe),
			contains: []string{"[invoke]", "native_call_failure", "hresult=0x80004002"},
		},
		{
			name:     "native call with a success code",
			err:      NativeCall("Windows.Foundation.Uri.ctor", 1),
			contains: []string{"hresult=0x00000001"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				assert.Contains(t, msg, s)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := New(PhaseResolve, KindExternalScopeResolutionFailure).Cause(cause).Build()

	assert.Same(t, cause, errors.Unwrap(err))
	assert.ErrorIs(t, err, cause)
}

func TestError_Is(t *testing.T) {
	err := NotFound(PhaseResolve, "Windows.Missing")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrInvariantViolation)
	assert.ErrorIs(t, err, &Error{Phase: PhaseResolve, Kind: KindNotFound})
	assert.NotErrorIs(t, err, &Error{Phase: PhaseBind, Kind: KindNotFound})

	wrapped := New(PhaseBind, KindNoMatchingFactoryMethod).Cause(err).Build()
	assert.ErrorIs(t, wrapped, ErrNoMatchingFactoryMethod)
	assert.ErrorIs(t, wrapped, ErrNotFound)
}

func TestUnsupportedShape(t *testing.T) {
	err := UnsupportedShape(0x1b, 4)

	assert.Equal(t, KindUnsupportedSignatureShape, err.Kind)
	assert.Equal(t, 4, err.Context["offset"])
	assert.Contains(t, err.Error(), "0x1b")
}

func TestIsAndAs(t *testing.T) {
	err := New(PhaseInvoke, KindNativeCallFailure).Cause(NotFound(PhaseResolve, "Widget")).Build()

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrInvariantViolation))

	var target *Error
	assert.True(t, As(err, &target))
	assert.Equal(t, KindNativeCallFailure, target.Kind)
}
