package metadata

import (
	"encoding/binary"
	"math"

	"github.com/google/uuid"

	"gowinrt/internal/errors"
)

// Well-known attribute and base type names
const (
	GuidAttribute            = "Windows.Foundation.Metadata.GuidAttribute"
	StaticAttribute          = "Windows.Foundation.Metadata.StaticAttribute"
	ActivatableAttribute     = "Windows.Foundation.Metadata.ActivatableAttribute"
	ComposableAttribute      = "Windows.Foundation.Metadata.ComposableAttribute"
	DefaultAttribute         = "Windows.Foundation.Metadata.DefaultAttribute"
	OverloadAttribute        = "Windows.Foundation.Metadata.OverloadAttribute"
	DefaultOverloadAttribute = "Windows.Foundation.Metadata.DefaultOverloadAttribute"

	SystemEnum              = "System.Enum"
	SystemValueType         = "System.ValueType"
	SystemMulticastDelegate = "System.MulticastDelegate"
	SystemType              = "System.Type"
)

// AttributeArgument is one decoded fixed argument of a custom attribute.
// Value is a string for String and System.Type arguments, bool for Boolean,
// int64 for signed and enum values, uint64 for unsigned values and float64 for floats.
type AttributeArgument struct {
	Type  TypeDescriptor
	Value any
}

// Attribute is a custom attribute with its decoded constructor signature
type Attribute struct {
	Token       Token
	TypeName    string
	Constructor MethodSignature
	Value       []byte
}

// AttributeTypeName returns the full name of the type a custom attribute constructs
func (scope *Scope) AttributeTypeName(attribute Token) (string, error) {
	props, err := scope.CustomAttributeProps(attribute)
	if err != nil {
		return "", err
	}
	owner, err := scope.MemberOwner(props.Constructor)
	if err != nil {
		return "", err
	}
	return scope.TypeName(owner)
}

// CustomAttributesByName returns the attributes of the given type attached to parent, in table order
func (scope *Scope) CustomAttributesByName(parent Token, typeName string) ([]Attribute, error) {
	tokens, err := scope.EnumCustomAttributes(parent)
	if err != nil {
		return nil, err
	}

	attributes := make([]Attribute, 0)
	for _, token := range tokens {
		name, err := scope.AttributeTypeName(token)
		if err != nil {
			return nil, err
		}
		if name != typeName {
			continue
		}

		props, err := scope.CustomAttributeProps(token)
		if err != nil {
			return nil, err
		}
		blob, err := scope.MemberSignature(props.Constructor)
		if err != nil {
			return nil, err
		}
		ctor, err := DecodeMethodSignature(blob)
		if err != nil {
			return nil, err
		}
		attributes = append(attributes, Attribute{Token: token, TypeName: name, Constructor: ctor, Value: props.Value})
	}

	return attributes, nil
}

// HasCustomAttribute reports whether parent carries at least one attribute of the given type
func (scope *Scope) HasCustomAttribute(parent Token, typeName string) (bool, error) {
	attributes, err := scope.CustomAttributesByName(parent, typeName)
	return len(attributes) > 0, err
}

// IsSystemType reports whether desc refers to System.Type
func (scope *Scope) IsSystemType(desc TypeDescriptor) bool {
	if desc.Element != ElementClass {
		return false
	}
	name, err := scope.TypeName(desc.Token)
	return err == nil && name == SystemType
}

// Arguments decodes the fixed arguments of the attribute blob
func (scope *Scope) Arguments(attribute Attribute) ([]AttributeArgument, error) {
	cursor := NewCursor(attribute.Value)
	prolog := make([]byte, 2)
	for i := range prolog {
		b, err := cursor.ReadByte()
		if err != nil {
			return nil, err
		}
		prolog[i] = b
	}
	if prolog[0] != 0x01 || prolog[1] != 0x00 {
		return nil, errors.New(errors.PhaseDecode, errors.KindUnsupportedSignatureShape).
			Name(attribute.TypeName).
			Detail("bad custom attribute prolog %x", prolog).
			Build()
	}

	arguments := make([]AttributeArgument, 0, len(attribute.Constructor.Params))
	for _, param := range attribute.Constructor.Params {
		value, err := scope.readFixedArgument(cursor, param)
		if err != nil {
			return nil, err
		}
		arguments = append(arguments, AttributeArgument{Type: param, Value: value})
	}
	return arguments, nil
}

func (scope *Scope) readFixedArgument(cursor *Cursor, param TypeDescriptor) (any, error) {
	fixed := func(size int) ([]byte, error) {
		if len(cursor.Remaining()) < size {
			return nil, cursor.truncated()
		}
		value := cursor.Remaining()[:size]
		cursor.offset += size
		return value, nil
	}

	switch param.Element {
	case ElementBoolean:
		b, err := fixed(1)
		if err != nil {
			return nil, err
		}
		return b[0] != 0, nil
	case ElementI1:
		b, err := fixed(1)
		if err != nil {
			return nil, err
		}
		return int64(int8(b[0])), nil
	case ElementU1:
		b, err := fixed(1)
		if err != nil {
			return nil, err
		}
		return uint64(b[0]), nil
	case ElementChar, ElementU2:
		b, err := fixed(2)
		if err != nil {
			return nil, err
		}
		return uint64(binary.LittleEndian.Uint16(b)), nil
	case ElementI2:
		b, err := fixed(2)
		if err != nil {
			return nil, err
		}
		return int64(int16(binary.LittleEndian.Uint16(b))), nil
	case ElementU4:
		b, err := fixed(4)
		if err != nil {
			return nil, err
		}
		return uint64(binary.LittleEndian.Uint32(b)), nil
	case ElementI4, ElementValueType:
		// WinRT attribute enums are all 32 bits wide
		b, err := fixed(4)
		if err != nil {
			return nil, err
		}
		return int64(int32(binary.LittleEndian.Uint32(b))), nil
	case ElementU8:
		b, err := fixed(8)
		if err != nil {
			return nil, err
		}
		return binary.LittleEndian.Uint64(b), nil
	case ElementI8:
		b, err := fixed(8)
		if err != nil {
			return nil, err
		}
		return int64(binary.LittleEndian.Uint64(b)), nil
	case ElementR4:
		b, err := fixed(4)
		if err != nil {
			return nil, err
		}
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b))), nil
	case ElementR8:
		b, err := fixed(8)
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
	case ElementString, ElementClass:
		if param.Element == ElementClass && !scope.IsSystemType(param) {
			break
		}
		return readSerString(cursor)
	}

	return nil, errors.UnsupportedShape(byte(param.Element), cursor.offset)
}

// readSerString reads a length-prefixed UTF-8 string; 0xff encodes a null string
func readSerString(cursor *Cursor) (any, error) {
	lead, err := cursor.peek()
	if err != nil {
		return nil, err
	}
	if lead == 0xff {
		cursor.offset++
		return "", nil
	}
	length, err := cursor.DecodeCompressedInteger()
	if err != nil {
		return nil, err
	}
	if uint32(len(cursor.Remaining())) < length {
		return nil, cursor.truncated()
	}
	value := string(cursor.Remaining()[:length])
	cursor.offset += int(length)
	return value, nil
}

// TypeArgument returns the System.Type argument of an attribute, if its constructor takes one first
func (scope *Scope) TypeArgument(attribute Attribute) (string, bool, error) {
	if len(attribute.Constructor.Params) == 0 || !scope.IsSystemType(attribute.Constructor.Params[0]) {
		return "", false, nil
	}
	arguments, err := scope.Arguments(attribute)
	if err != nil {
		return "", false, err
	}
	name, _ := arguments[0].Value.(string)
	return name, name != "", nil
}

// GUIDAttributeValue reads the GuidAttribute on parent
func (scope *Scope) GUIDAttributeValue(parent Token) (uuid.UUID, bool, error) {
	attributes, err := scope.CustomAttributesByName(parent, GuidAttribute)
	if err != nil || len(attributes) == 0 {
		return uuid.Nil, false, err
	}

	value := attributes[0].Value
	// prolog + u32 + u16 + u16 + 8 bytes
	if len(value) < 2+16 {
		return uuid.Nil, false, errors.Invariant(errors.PhaseDecode, GuidAttribute, "blob has %d bytes", len(value))
	}
	return GUIDFromLittleEndian(value[2:18]), true, nil
}

// GUIDFromLittleEndian converts the in-memory GUID layout (little-endian Data1..Data3) to a UUID
func GUIDFromLittleEndian(raw []byte) uuid.UUID {
	var id uuid.UUID
	binary.BigEndian.PutUint32(id[0:4], binary.LittleEndian.Uint32(raw[0:4]))
	binary.BigEndian.PutUint16(id[4:6], binary.LittleEndian.Uint16(raw[4:6]))
	binary.BigEndian.PutUint16(id[6:8], binary.LittleEndian.Uint16(raw[6:8]))
	copy(id[8:16], raw[8:16])
	return id
}

// GUIDToLittleEndian is the inverse of GUIDFromLittleEndian
func GUIDToLittleEndian(id uuid.UUID) [16]byte {
	var raw [16]byte
	binary.LittleEndian.PutUint32(raw[0:4], binary.BigEndian.Uint32(id[0:4]))
	binary.LittleEndian.PutUint16(raw[4:6], binary.BigEndian.Uint16(id[4:6]))
	binary.LittleEndian.PutUint16(raw[6:8], binary.BigEndian.Uint16(id[6:8]))
	copy(raw[8:16], id[8:16])
	return raw
}

// ConstantInt decodes an integral constant value
func ConstantInt(constant Constant) (int64, error) {
	value := constant.Value
	need := map[ElementType]int{
		ElementBoolean: 1, ElementI1: 1, ElementU1: 1, ElementChar: 2, ElementI2: 2, ElementU2: 2,
		ElementI4: 4, ElementU4: 4, ElementI8: 8, ElementU8: 8,
	}[constant.Type]
	if need == 0 || len(value) < need {
		return 0, errors.New(errors.PhaseDecode, errors.KindUnsupportedSignatureShape).
			Detail("constant of type %s with %d bytes", constant.Type, len(value)).
			Build()
	}

	switch constant.Type {
	case ElementBoolean, ElementU1:
		return int64(value[0]), nil
	case ElementI1:
		return int64(int8(value[0])), nil
	case ElementChar, ElementU2:
		return int64(binary.LittleEndian.Uint16(value)), nil
	case ElementI2:
		return int64(int16(binary.LittleEndian.Uint16(value))), nil
	case ElementU4:
		return int64(binary.LittleEndian.Uint32(value)), nil
	case ElementI4:
		return int64(int32(binary.LittleEndian.Uint32(value))), nil
	}
	return int64(binary.LittleEndian.Uint64(value)), nil
}
