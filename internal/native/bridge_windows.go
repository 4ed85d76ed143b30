//go:build windows

package native

import (
	"encoding/binary"
	"syscall"
	"unsafe"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"gowinrt/internal/errors"
)

var (
	combase = windows.NewLazySystemDLL("combase.dll")

	procRoInitialize              = combase.NewProc("RoInitialize")
	procRoGetActivationFactory    = combase.NewProc("RoGetActivationFactory")
	procWindowsCreateString       = combase.NewProc("WindowsCreateString")
	procWindowsDeleteString       = combase.NewProc("WindowsDeleteString")
	procWindowsGetStringRawBuffer = combase.NewProc("WindowsGetStringRawBuffer")
)

const roInitMultiThreaded = 1

type comBridge struct{}

// New loads combase.dll and initializes the runtime for the calling thread's apartment
func New() (Bridge, error) {
	if err := combase.Load(); err != nil {
		return nil, errors.New(errors.PhaseInvoke, errors.KindNativeCallFailure).
			Name("combase.dll").
			Cause(err).
			Build()
	}

	r, _, _ := syscall.SyscallN(procRoInitialize.Addr(), roInitMultiThreaded)
	// S_FALSE and RPC_E_CHANGED_MODE mean the thread is already initialized
	if hr := HRESULT(r); hr.Failed() && hr != RPC_E_CHANGED_MODE {
		return nil, errors.NativeCall("RoInitialize", int32(hr))
	}

	Logger().Debug("initialized windows runtime")
	return &comBridge{}, nil
}

func guid(id uuid.UUID) windows.GUID {
	return windows.GUID{
		Data1: binary.BigEndian.Uint32(id[0:4]),
		Data2: binary.BigEndian.Uint16(id[4:6]),
		Data3: binary.BigEndian.Uint16(id[6:8]),
		Data4: [8]byte(id[8:16]),
	}
}

func (b *comBridge) ActivationFactory(className string) (Pointer, error) {
	name, err := b.CreateString(className)
	if err != nil {
		return 0, err
	}
	defer b.DeleteString(name)

	iid := guid(IActivationFactoryID)
	var factory uintptr
	r, _, _ := syscall.SyscallN(procRoGetActivationFactory.Addr(),
		uintptr(name),
		uintptr(unsafe.Pointer(&iid)),
		uintptr(unsafe.Pointer(&factory)))
	if hr := HRESULT(r); hr.Failed() {
		return 0, errors.NativeCall(className, int32(hr))
	}

	Logger().Debug("got activation factory",
		zap.String("class", className),
		zap.Uintptr("factory", factory))
	return Pointer(factory), nil
}

func (b *comBridge) QueryInterface(object Pointer, iid uuid.UUID) (Pointer, error) {
	if object == 0 {
		return 0, errors.NativeCall(iid.String(), int32(E_POINTER))
	}
	function, err := b.Method(object, SlotQueryInterface)
	if err != nil {
		return 0, err
	}

	id := guid(iid)
	var result uintptr
	r, _, _ := syscall.SyscallN(uintptr(function),
		uintptr(object),
		uintptr(unsafe.Pointer(&id)),
		uintptr(unsafe.Pointer(&result)))
	if hr := HRESULT(r); hr.Failed() {
		return 0, errors.NativeCall(iid.String(), int32(hr))
	}
	return Pointer(result), nil
}

func (b *comBridge) AddRef(object Pointer) uint32 {
	return b.unknownCall(object, SlotAddRef)
}

func (b *comBridge) Release(object Pointer) uint32 {
	return b.unknownCall(object, SlotRelease)
}

func (b *comBridge) unknownCall(object Pointer, slot int) uint32 {
	function, err := b.Method(object, slot)
	if err != nil {
		return 0
	}
	r, _, _ := syscall.SyscallN(uintptr(function), uintptr(object))
	return uint32(r)
}

func (b *comBridge) Method(object Pointer, slot int) (Pointer, error) {
	if object == 0 {
		return 0, errors.NativeCall("vtable", int32(E_POINTER))
	}
	vtable := *(*uintptr)(unsafe.Pointer(object))
	function := *(*uintptr)(unsafe.Pointer(vtable + uintptr(slot)*unsafe.Sizeof(uintptr(0))))
	if function == 0 {
		return 0, errors.New(errors.PhaseInvoke, errors.KindNativeCallFailure).
			Name("vtable").
			Detail("slot %d is empty", slot).
			Build()
	}
	return Pointer(function), nil
}

// Call invokes a vtable function. The first four arguments are mirrored into the
// floating point registers on amd64, so float arguments travel as bit patterns.
// ToDo: windows/arm64 passes floats in the V registers, which SyscallN never fills.
func (b *comBridge) Call(function Pointer, args ...uintptr) HRESULT {
	r, _, _ := syscall.SyscallN(uintptr(function), args...)
	return HRESULT(r)
}

func (b *comBridge) CreateString(value string) (Pointer, error) {
	if value == "" {
		return 0, nil
	}
	chars, err := windows.UTF16FromString(value)
	if err != nil {
		return 0, errors.New(errors.PhaseInvoke, errors.KindNativeCallFailure).
			Name("WindowsCreateString").
			Cause(err).
			Build()
	}

	var hstring uintptr
	r, _, _ := syscall.SyscallN(procWindowsCreateString.Addr(),
		uintptr(unsafe.Pointer(&chars[0])),
		uintptr(len(chars)-1),
		uintptr(unsafe.Pointer(&hstring)))
	if hr := HRESULT(r); hr.Failed() {
		return 0, errors.NativeCall("WindowsCreateString", int32(hr))
	}
	return Pointer(hstring), nil
}

func (b *comBridge) DeleteString(hstring Pointer) error {
	if hstring == 0 {
		return nil
	}
	r, _, _ := syscall.SyscallN(procWindowsDeleteString.Addr(), uintptr(hstring))
	if hr := HRESULT(r); hr.Failed() {
		return errors.NativeCall("WindowsDeleteString", int32(hr))
	}
	return nil
}

func (b *comBridge) StringValue(hstring Pointer) string {
	if hstring == 0 {
		return ""
	}
	var length uint32
	r, _, _ := syscall.SyscallN(procWindowsGetStringRawBuffer.Addr(),
		uintptr(hstring),
		uintptr(unsafe.Pointer(&length)))
	if r == 0 || length == 0 {
		return ""
	}
	return windows.UTF16ToString(unsafe.Slice((*uint16)(unsafe.Pointer(r)), length))
}
