// Package native is the boundary to the WinRT runtime: activation factories, interface
// pointers, vtables and HSTRINGs. Everything above it talks to a Bridge.
package native

import (
	"fmt"

	"github.com/google/uuid"
)

// Pointer is a raw interface, function or HSTRING pointer owned by the runtime
type Pointer uintptr

// HRESULT is the status every WinRT method returns
type HRESULT int32

const (
	S_OK               HRESULT = 0
	S_FALSE            HRESULT = 1
	E_NOTIMPL          HRESULT = -0x7fffbfff // 0x80004001
	E_NOINTERFACE      HRESULT = -0x7fffbffe // 0x80004002
	E_POINTER          HRESULT = -0x7fffbffd // 0x80004003
	E_FAIL             HRESULT = -0x7fffbffb // 0x80004005
	E_INVALIDARG       HRESULT = -0x7ff8ffa9 // 0x80070057
	RPC_E_CHANGED_MODE HRESULT = -0x7ffefefa // 0x80010106
)

func (hr HRESULT) Failed() bool {
	return hr < 0
}

func (hr HRESULT) Succeeded() bool {
	return hr >= 0
}

func (hr HRESULT) String() string {
	return fmt.Sprintf("0x%08X", uint32(hr))
}

// InspectableVtableSize is the number of IUnknown and IInspectable slots in front of
// every WinRT interface's own methods
const InspectableVtableSize = 6

// Fixed slots of IUnknown
const (
	SlotQueryInterface = 0
	SlotAddRef         = 1
	SlotRelease        = 2
)

var (
	IUnknownID           = uuid.MustParse("00000000-0000-0000-c000-000000000046")
	IInspectableID       = uuid.MustParse("af86e2e0-b12d-4c6a-9c5a-d7aa65101e90")
	IActivationFactoryID = uuid.MustParse("00000035-0000-0000-c000-000000000046")
)

// Bridge performs the raw runtime operations. Pointers returned by ActivationFactory and
// QueryInterface carry a reference the caller releases.
type Bridge interface {
	ActivationFactory(className string) (Pointer, error)
	QueryInterface(object Pointer, iid uuid.UUID) (Pointer, error)
	AddRef(object Pointer) uint32
	Release(object Pointer) uint32
	// Method reads the function pointer at a vtable slot
	Method(object Pointer, slot int) (Pointer, error)
	Call(function Pointer, args ...uintptr) HRESULT
	CreateString(value string) (Pointer, error)
	DeleteString(hstring Pointer) error
	StringValue(hstring Pointer) string
}
