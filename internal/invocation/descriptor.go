package invocation

import (
	"math"
	"runtime"
	"time"
	"unsafe"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gowinrt/internal/errors"
	"gowinrt/internal/native"
	"gowinrt/internal/observability"
)

// Descriptor is the call plan for one member bound to one interface pointer
type Descriptor struct {
	// Name is the member's full name
	Name        string
	InterfaceID uuid.UUID
	Ordinal     int
	Slot        int
	// Arguments starts with the this pointer and ends with any appended out-pointers
	Arguments  []ArgumentKind
	Return     ArgumentKind
	Convention ReturnConvention
	// ReturnLayout sizes the out-pointer buffer
	ReturnLayout Layout
	Composable   bool
	Async        bool
	// Pointer is the bound interface pointer. The descriptor holds one reference.
	Pointer native.Pointer

	bridge      native.Bridge
	parameters  int
	byRef       []bool
	enums       []ArgumentKind
	structValue bool
	enumValue   ArgumentKind
	outer       native.Pointer
}

// Result is the outcome of one native call. Value holds the decoded result for
// primitive, string, enum and struct returns; Pointer holds returned objects.
type Result struct {
	Status  native.HRESULT
	Value   any
	Pointer native.Pointer
	// Inner is the non-delegating inner object of a composed instance
	Inner native.Pointer
	Kind  ArgumentKind
	Async bool
}

// NumberOfParameters is the count of caller supplied arguments
func (d *Descriptor) NumberOfParameters() int {
	return d.parameters
}

// Close releases the bound interface pointer
func (d *Descriptor) Close() {
	if d.Pointer != 0 {
		d.bridge.Release(d.Pointer)
		d.Pointer = 0
	}
}

// Call marshals args, invokes the vtable slot and decodes the result. A failing HRESULT
// is returned as an error together with a Result carrying the status.
func (d *Descriptor) Call(args ...any) (result Result, err error) {
	started := time.Now()
	defer func() {
		observability.ObserveNativeCall(started, err != nil)
	}()

	if len(args) != d.parameters {
		return Result{}, errors.Invariant(errors.PhaseInvoke, d.Name,
			"expected %d arguments, got %d", d.parameters, len(args))
	}
	if d.Pointer == 0 {
		return Result{}, errors.Invariant(errors.PhaseInvoke, d.Name, "descriptor is closed")
	}

	function, err := d.bridge.Method(d.Pointer, d.Slot)
	if err != nil {
		return Result{}, errors.New(errors.PhaseInvoke, errors.KindNativeCallFailure).
			Name(d.Name).
			Context("slot", d.Slot).
			Cause(err).
			Build()
	}

	m := marshaler{bridge: d.bridge, name: d.Name}
	defer m.release()

	frame := make([]uintptr, 0, len(d.Arguments))
	frame = append(frame, uintptr(d.Pointer))
	for i, arg := range args {
		kind := d.Arguments[i+1]
		if d.enums[i] != Void {
			kind = d.enums[i]
		}
		word, err := m.marshal(i, kind, d.byRef[i], arg)
		if err != nil {
			return Result{}, err
		}
		frame = append(frame, word)
	}

	// out is heap allocated so its addresses survive stack growth during the call
	out := make([]uint64, d.outWords())
	resultAt := 0
	if d.Composable {
		frame = append(frame, uintptr(d.outer), uintptr(unsafe.Pointer(&out[0])))
		resultAt = 1
	}
	if d.Convention != ReturnNone {
		frame = append(frame, uintptr(unsafe.Pointer(&out[resultAt])))
	}

	status := d.bridge.Call(function, frame...)
	runtime.KeepAlive(out)
	runtime.KeepAlive(m.structs)

	result = Result{Status: status, Kind: d.Return, Async: d.Async}
	if status.Failed() {
		Logger().Debug("native call failed",
			zap.String("member", d.Name),
			zap.Int("slot", d.Slot),
			zap.Stringer("hresult", status))
		return result, errors.NativeCall(d.Name, int32(status))
	}

	if d.Composable {
		result.Inner = native.Pointer(out[0])
	}
	d.decode(&result, out[resultAt:])

	Logger().Debug("native call",
		zap.String("member", d.Name),
		zap.Int("slot", d.Slot),
		zap.Stringer("hresult", status))
	return result, nil
}

func (d *Descriptor) outWords() int {
	words := 0
	if d.Composable {
		words++
	}
	switch d.Convention {
	case ReturnInPlace:
		words++
	case ReturnOutPointer:
		words += max((d.ReturnLayout.Size+7)/8, 1)
	}
	return words
}

func (d *Descriptor) decode(result *Result, out []uint64) {
	if d.Convention == ReturnNone {
		return
	}
	word := out[0]
	switch d.Return {
	case Boolean:
		result.Value = uint8(word) != 0
	case UInt8:
		result.Value = uint8(word)
	case Int8:
		result.Value = int8(word)
	case UInt16, Char16:
		result.Value = uint16(word)
	case Int16:
		result.Value = int16(word)
	case UInt32:
		result.Value = uint32(word)
	case Int32:
		result.Value = int32(word)
	case UInt64:
		result.Value = word
	case Int64:
		result.Value = int64(word)
	case Single:
		result.Value = math.Float32frombits(uint32(word))
	case Double:
		result.Value = math.Float64frombits(word)
	case String:
		// the caller owns a returned HSTRING
		hstring := native.Pointer(word)
		result.Value = d.bridge.StringValue(hstring)
		deleteString(d.bridge, d.Name, hstring)
	case Pointer:
		switch {
		case d.structValue:
			image := unsafe.Slice((*byte)(unsafe.Pointer(&out[0])), d.ReturnLayout.Size)
			result.Value = StructFromBytes(image)
		case d.enumValue == UInt32:
			result.Value = uint32(word)
		case d.enumValue == Int32:
			result.Value = int32(word)
		default:
			result.Pointer = native.Pointer(word)
		}
	}
}
