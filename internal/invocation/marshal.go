package invocation

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"gowinrt/internal/errors"
	"gowinrt/internal/native"
)

// marshaler converts Go arguments for one call and owns what it allocated for it
type marshaler struct {
	bridge  native.Bridge
	name    string
	strings []native.Pointer
	structs []*StructValue
}

func (m *marshaler) release() {
	for _, hstring := range m.strings {
		deleteString(m.bridge, m.name, hstring)
	}
	m.strings = nil
}

func deleteString(bridge native.Bridge, member string, hstring native.Pointer) {
	if err := bridge.DeleteString(hstring); err != nil {
		Logger().Debug("releasing string failed",
			zap.String("member", member),
			zap.Uintptr("hstring", uintptr(hstring)),
			zap.Error(err))
	}
}

func (m *marshaler) fail(index int, kind ArgumentKind, arg any, msg string) error {
	return errors.New(errors.PhaseInvoke, errors.KindInvariantViolation).
		Name(m.name).
		Detail("argument %d: %s", index, msg).
		Context("kind", kind.String()).
		Context("value", fmt.Sprintf("%T(%v)", arg, arg)).
		Build()
}

func (m *marshaler) marshal(index int, kind ArgumentKind, byRef bool, arg any) (uintptr, error) {
	switch kind {
	case Boolean:
		value, ok := arg.(bool)
		if !ok {
			return 0, m.fail(index, kind, arg, "expected bool")
		}
		if value {
			return 1, nil
		}
		return 0, nil
	case UInt8, UInt16, Char16, UInt32, UInt64, Int8, Int16, Int32, Int64:
		return m.integer(index, kind, arg)
	case Single:
		value, ok := toFloat(arg)
		if !ok || (!math.IsInf(value, 0) && math.Abs(value) > math.MaxFloat32) {
			return 0, m.fail(index, kind, arg, "expected float32")
		}
		return uintptr(math.Float32bits(float32(value))), nil
	case Double:
		value, ok := toFloat(arg)
		if !ok {
			return 0, m.fail(index, kind, arg, "expected float64")
		}
		return uintptr(math.Float64bits(value)), nil
	case String:
		if arg == nil {
			return 0, nil
		}
		value, ok := arg.(string)
		if !ok {
			return 0, m.fail(index, kind, arg, "expected string")
		}
		hstring, err := m.bridge.CreateString(value)
		if err != nil {
			return 0, err
		}
		if hstring != 0 {
			m.strings = append(m.strings, hstring)
		}
		return uintptr(hstring), nil
	case Pointer:
		return m.pointer(index, byRef, arg)
	}
	return 0, m.fail(index, kind, arg, "unsupported argument kind")
}

func (m *marshaler) pointer(index int, byRef bool, arg any) (uintptr, error) {
	switch value := arg.(type) {
	case nil:
		return 0, nil
	case native.Pointer:
		return uintptr(value), nil
	case uintptr:
		return value, nil
	case *StructValue:
		m.structs = append(m.structs, value)
		if !byRef {
			if word, ok := value.word(); ok {
				return word, nil
			}
		}
		return value.Address(), nil
	}
	return 0, m.fail(index, Pointer, arg, "expected a pointer or struct value")
}

var integerRanges = map[ArgumentKind]struct {
	min int64
	max uint64
}{
	UInt8:  {0, math.MaxUint8},
	UInt16: {0, math.MaxUint16},
	Char16: {0, math.MaxUint16},
	UInt32: {0, math.MaxUint32},
	UInt64: {0, math.MaxUint64},
	Int8:   {math.MinInt8, math.MaxInt8},
	Int16:  {math.MinInt16, math.MaxInt16},
	Int32:  {math.MinInt32, math.MaxInt32},
	Int64:  {math.MinInt64, math.MaxInt64},
}

func (m *marshaler) integer(index int, kind ArgumentKind, arg any) (uintptr, error) {
	limits := integerRanges[kind]

	if unsigned, ok := toUint64(arg); ok {
		if unsigned > limits.max {
			return 0, m.fail(index, kind, arg, "out of range")
		}
		return uintptr(unsigned), nil
	}
	signed, ok := toInt64(arg)
	if !ok {
		return 0, m.fail(index, kind, arg, "expected an integer")
	}
	if signed < limits.min || (signed > 0 && uint64(signed) > limits.max) {
		return 0, m.fail(index, kind, arg, "out of range")
	}
	// negative values keep their two's complement bits, truncated to the kind
	return uintptr(uint64(signed) & mask(kind)), nil
}

func mask(kind ArgumentKind) uint64 {
	switch kind {
	case Int8:
		return math.MaxUint8
	case Int16:
		return math.MaxUint16
	case Int32:
		return math.MaxUint32
	}
	return math.MaxUint64
}

func toInt64(arg any) (int64, bool) {
	switch value := arg.(type) {
	case int:
		return int64(value), true
	case int8:
		return int64(value), true
	case int16:
		return int64(value), true
	case int32:
		return int64(value), true
	case int64:
		return value, true
	}
	if unsigned, ok := toUint64(arg); ok && unsigned <= math.MaxInt64 {
		return int64(unsigned), true
	}
	return 0, false
}

func toUint64(arg any) (uint64, bool) {
	switch value := arg.(type) {
	case uint:
		return uint64(value), true
	case uint8:
		return uint64(value), true
	case uint16:
		return uint64(value), true
	case uint32:
		return uint64(value), true
	case uint64:
		return value, true
	}
	return 0, false
}

func toFloat(arg any) (float64, bool) {
	switch value := arg.(type) {
	case float32:
		return float64(value), true
	case float64:
		return value, true
	}
	if signed, ok := toInt64(arg); ok {
		return float64(signed), true
	}
	return 0, false
}
