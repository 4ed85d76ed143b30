package metadata

import (
	"gowinrt/internal/errors"
)

// MaxCompressedInteger is the first value that no longer fits the 4 byte encoding
const MaxCompressedInteger = 1 << 29

var signatureTokenKinds = [4]TokenKind{TokenTypeDef, TokenTypeRef, TokenTypeSpec, TokenBaseType}

// Cursor reads a signature blob front to back
type Cursor struct {
	data   []byte
	offset int
}

func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

func (cursor *Cursor) Offset() int {
	return cursor.offset
}

func (cursor *Cursor) Remaining() []byte {
	return cursor.data[cursor.offset:]
}

func (cursor *Cursor) Done() bool {
	return cursor.offset >= len(cursor.data)
}

// decodeCount reads an element count. Every counted element takes at least one byte,
// so a count larger than what is left can only come from a corrupt blob.
func (cursor *Cursor) decodeCount() (uint32, error) {
	count, err := cursor.DecodeCompressedInteger()
	if err != nil {
		return 0, err
	}
	if uint64(count) > uint64(len(cursor.Remaining())) {
		return 0, errors.New(errors.PhaseDecode, errors.KindUnsupportedSignatureShape).
			Detail("count %d exceeds the %d bytes left", count, len(cursor.Remaining())).
			Context("offset", cursor.offset).
			Build()
	}
	return count, nil
}

func (cursor *Cursor) truncated() error {
	return errors.New(errors.PhaseDecode, errors.KindUnsupportedSignatureShape).
		Detail("signature truncated").
		Context("offset", cursor.offset).
		Build()
}

func (cursor *Cursor) ReadByte() (byte, error) {
	if cursor.Done() {
		return 0, cursor.truncated()
	}
	b := cursor.data[cursor.offset]
	cursor.offset++
	return b, nil
}

func (cursor *Cursor) peek() (byte, error) {
	if cursor.Done() {
		return 0, cursor.truncated()
	}
	return cursor.data[cursor.offset], nil
}

// DecodeCompressedInteger reads an unsigned integer stored in 1, 2 or 4 bytes.
// The leading bits of the first byte select the length: 0 (1 byte), 10 (2 bytes), 110 (4 bytes).
func (cursor *Cursor) DecodeCompressedInteger() (uint32, error) {
	b0, err := cursor.ReadByte()
	if err != nil {
		return 0, err
	}

	switch {
	case b0&0x80 == 0:
		return uint32(b0), nil
	case b0&0xc0 == 0x80:
		b1, err := cursor.ReadByte()
		if err != nil {
			return 0, err
		}
		return uint32(b0&0x3f)<<8 | uint32(b1), nil
	case b0&0xe0 == 0xc0:
		if len(cursor.data)-cursor.offset < 3 {
			return 0, cursor.truncated()
		}
		rest := cursor.data[cursor.offset : cursor.offset+3]
		cursor.offset += 3
		return uint32(b0&0x1f)<<24 | uint32(rest[0])<<16 | uint32(rest[1])<<8 | uint32(rest[2]), nil
	}

	return 0, errors.New(errors.PhaseDecode, errors.KindUnsupportedSignatureShape).
		Detail("invalid compressed integer lead byte 0x%02x", b0).
		Context("offset", cursor.offset-1).
		Build()
}

// DecodeToken reads a TypeDefOrRefOrSpec encoded token
func (cursor *Cursor) DecodeToken() (Token, error) {
	value, err := cursor.DecodeCompressedInteger()
	if err != nil {
		return 0, err
	}
	return NewToken(signatureTokenKinds[value&0x3], value>>2), nil
}

func (cursor *Cursor) DecodeCallingConvention() (CallingConvention, error) {
	b, err := cursor.ReadByte()
	return CallingConvention(b), err
}

// ConsumeType advances the cursor past exactly one encoded type
func (cursor *Cursor) ConsumeType() (TypeDescriptor, error) {
	start := cursor.offset
	tag, err := cursor.ReadByte()
	if err != nil {
		return TypeDescriptor{}, err
	}

	element := ElementType(tag)
	switch {
	case element.IsPrimitive():
		return Primitive(element), nil
	}

	switch element {
	case ElementCModReqd, ElementCModOpt:
		if _, err := cursor.DecodeToken(); err != nil {
			return TypeDescriptor{}, err
		}
		return cursor.ConsumeType()

	case ElementClass, ElementValueType:
		token, err := cursor.DecodeToken()
		if err != nil {
			return TypeDescriptor{}, err
		}
		return TypeDescriptor{Element: element, Token: token}, nil

	case ElementSzArray, ElementByRef:
		elem, err := cursor.ConsumeType()
		if err != nil {
			return TypeDescriptor{}, err
		}
		return TypeDescriptor{Element: element, Elem: &elem}, nil

	case ElementVar:
		index, err := cursor.DecodeCompressedInteger()
		if err != nil {
			return TypeDescriptor{}, err
		}
		return GenericVar(index), nil

	case ElementGenericInst:
		kind, err := cursor.ReadByte()
		if err != nil {
			return TypeDescriptor{}, err
		}
		if ElementType(kind) != ElementClass && ElementType(kind) != ElementValueType {
			return TypeDescriptor{}, errors.UnsupportedShape(kind, cursor.offset-1)
		}
		token, err := cursor.DecodeToken()
		if err != nil {
			return TypeDescriptor{}, err
		}
		count, err := cursor.decodeCount()
		if err != nil {
			return TypeDescriptor{}, err
		}
		desc := TypeDescriptor{
			Element:   ElementGenericInst,
			Token:     token,
			ValueType: ElementType(kind) == ElementValueType,
			Args:      make([]TypeDescriptor, 0, count),
		}
		for i := uint32(0); i < count; i++ {
			arg, err := cursor.ConsumeType()
			if err != nil {
				return TypeDescriptor{}, err
			}
			desc.Args = append(desc.Args, arg)
		}
		return desc, nil
	}

	return TypeDescriptor{}, errors.UnsupportedShape(tag, start)
}

// DecodeCompressedInteger decodes a single compressed integer from the start of data
func DecodeCompressedInteger(data []byte) (value uint32, size int, err error) {
	cursor := NewCursor(data)
	value, err = cursor.DecodeCompressedInteger()
	return value, cursor.offset, err
}

// EncodeCompressedInteger appends the compressed form of value to dst
func EncodeCompressedInteger(dst []byte, value uint32) ([]byte, error) {
	switch {
	case value < 0x80:
		return append(dst, byte(value)), nil
	case value < 0x4000:
		return append(dst, byte(value>>8)|0x80, byte(value)), nil
	case value < MaxCompressedInteger:
		return append(dst, byte(value>>24)|0xc0, byte(value>>16), byte(value>>8), byte(value)), nil
	}

	return dst, errors.New(errors.PhaseDecode, errors.KindUnsupportedSignatureShape).
		Detail("value %d does not fit a compressed integer", value).
		Build()
}

// EncodeToken appends a TypeDefOrRefOrSpec encoded token to dst
func EncodeToken(dst []byte, token Token) ([]byte, error) {
	for tag, kind := range signatureTokenKinds {
		if token.Kind() == kind {
			return EncodeCompressedInteger(dst, token.Rid()<<2|uint32(tag))
		}
	}

	return dst, errors.New(errors.PhaseDecode, errors.KindUnsupportedSignatureShape).
		Detail("token %s cannot appear in a type signature", token).
		Build()
}

// EncodeType appends the signature encoding of desc to dst
func EncodeType(dst []byte, desc TypeDescriptor) ([]byte, error) {
	var err error
	switch {
	case desc.Element.IsPrimitive():
		return append(dst, byte(desc.Element)), nil
	}

	switch desc.Element {
	case ElementClass, ElementValueType:
		dst = append(dst, byte(desc.Element))
		return EncodeToken(dst, desc.Token)

	case ElementSzArray, ElementByRef:
		if desc.Elem == nil {
			return dst, errors.Invariant(errors.PhaseDecode, "", "%s descriptor without element", elementNames[desc.Element])
		}
		dst = append(dst, byte(desc.Element))
		return EncodeType(dst, *desc.Elem)

	case ElementVar:
		dst = append(dst, byte(desc.Element))
		return EncodeCompressedInteger(dst, desc.Index)

	case ElementGenericInst:
		kind := ElementClass
		if desc.ValueType {
			kind = ElementValueType
		}
		dst = append(dst, byte(ElementGenericInst), byte(kind))
		if dst, err = EncodeToken(dst, desc.Token); err != nil {
			return dst, err
		}
		if dst, err = EncodeCompressedInteger(dst, uint32(len(desc.Args))); err != nil {
			return dst, err
		}
		for _, arg := range desc.Args {
			if dst, err = EncodeType(dst, arg); err != nil {
				return dst, err
			}
		}
		return dst, nil
	}

	return dst, errors.UnsupportedShape(byte(desc.Element), len(dst))
}

// DecodeMethodSignature decodes a MethodDef, MemberRef or StandAloneSig method blob
func DecodeMethodSignature(blob []byte) (MethodSignature, error) {
	cursor := NewCursor(blob)
	convention, err := cursor.DecodeCallingConvention()
	if err != nil {
		return MethodSignature{}, err
	}

	sig := MethodSignature{CallingConvention: convention}
	if convention.IsGeneric() {
		if sig.GenericParamCount, err = cursor.DecodeCompressedInteger(); err != nil {
			return MethodSignature{}, err
		}
	}

	count, err := cursor.decodeCount()
	if err != nil {
		return MethodSignature{}, err
	}

	if sig.Return, err = cursor.ConsumeType(); err != nil {
		return MethodSignature{}, err
	}

	sig.Params = make([]TypeDescriptor, 0, count)
	for i := uint32(0); i < count; i++ {
		param, err := cursor.ConsumeType()
		if err != nil {
			return MethodSignature{}, err
		}
		sig.Params = append(sig.Params, param)
	}

	return sig, nil
}

// EncodeMethodSignature is the inverse of DecodeMethodSignature
func EncodeMethodSignature(sig MethodSignature) ([]byte, error) {
	var err error
	dst := []byte{byte(sig.CallingConvention)}
	if sig.CallingConvention.IsGeneric() {
		if dst, err = EncodeCompressedInteger(dst, sig.GenericParamCount); err != nil {
			return nil, err
		}
	}
	if dst, err = EncodeCompressedInteger(dst, uint32(len(sig.Params))); err != nil {
		return nil, err
	}
	if dst, err = EncodeType(dst, sig.Return); err != nil {
		return nil, err
	}
	for _, param := range sig.Params {
		if dst, err = EncodeType(dst, param); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// DecodeFieldSignature decodes a Field blob
func DecodeFieldSignature(blob []byte) (TypeDescriptor, error) {
	cursor := NewCursor(blob)
	convention, err := cursor.DecodeCallingConvention()
	if err != nil {
		return TypeDescriptor{}, err
	}
	if convention.Kind() != CallingConventionField {
		return TypeDescriptor{}, errors.New(errors.PhaseDecode, errors.KindUnsupportedSignatureShape).
			Detail("field signature starts with 0x%02x", byte(convention)).
			Build()
	}
	return cursor.ConsumeType()
}

func EncodeFieldSignature(desc TypeDescriptor) ([]byte, error) {
	return EncodeType([]byte{byte(CallingConventionField)}, desc)
}

// DecodePropertySignature decodes a Property blob
func DecodePropertySignature(blob []byte) (PropertySignature, error) {
	cursor := NewCursor(blob)
	convention, err := cursor.DecodeCallingConvention()
	if err != nil {
		return PropertySignature{}, err
	}
	if convention.Kind() != CallingConventionProperty {
		return PropertySignature{}, errors.New(errors.PhaseDecode, errors.KindUnsupportedSignatureShape).
			Detail("property signature starts with 0x%02x", byte(convention)).
			Build()
	}

	count, err := cursor.decodeCount()
	if err != nil {
		return PropertySignature{}, err
	}

	sig := PropertySignature{HasThis: convention.HasThis()}
	if sig.Type, err = cursor.ConsumeType(); err != nil {
		return PropertySignature{}, err
	}
	for i := uint32(0); i < count; i++ {
		param, err := cursor.ConsumeType()
		if err != nil {
			return PropertySignature{}, err
		}
		sig.Params = append(sig.Params, param)
	}
	return sig, nil
}

func EncodePropertySignature(sig PropertySignature) ([]byte, error) {
	var err error
	convention := CallingConventionProperty
	if sig.HasThis {
		convention |= CallingConventionHasThis
	}
	dst := []byte{byte(convention)}
	if dst, err = EncodeCompressedInteger(dst, uint32(len(sig.Params))); err != nil {
		return nil, err
	}
	if dst, err = EncodeType(dst, sig.Type); err != nil {
		return nil, err
	}
	for _, param := range sig.Params {
		if dst, err = EncodeType(dst, param); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// DecodeGenericInstanceHeader reads the GENERICINST CLASS prefix of a TypeSpec blob and
// returns the open generic token. Any other shape is unsupported.
func DecodeGenericInstanceHeader(blob []byte) (Token, error) {
	cursor := NewCursor(blob)
	tag, err := cursor.ReadByte()
	if err != nil {
		return 0, err
	}
	if ElementType(tag) != ElementGenericInst {
		return 0, errors.UnsupportedShape(tag, 0)
	}
	tag, err = cursor.ReadByte()
	if err != nil {
		return 0, err
	}
	if ElementType(tag) != ElementClass {
		return 0, errors.UnsupportedShape(tag, 1)
	}
	return cursor.DecodeToken()
}
