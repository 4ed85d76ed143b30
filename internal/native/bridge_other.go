//go:build !windows

package native

import (
	"runtime"

	"gowinrt/internal/errors"
)

// New fails outside Windows. Tests use nativetest instead.
func New() (Bridge, error) {
	return nil, errors.New(errors.PhaseInvoke, errors.KindNativeCallFailure).
		Name("combase.dll").
		Detail("the Windows Runtime is not available on %s", runtime.GOOS).
		Build()
}
