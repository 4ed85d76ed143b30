package metadata

// ElementType is the tag byte that starts every encoded type in a signature
type ElementType byte

const (
	ElementEnd         ElementType = 0x00
	ElementVoid        ElementType = 0x01
	ElementBoolean     ElementType = 0x02
	ElementChar        ElementType = 0x03
	ElementI1          ElementType = 0x04
	ElementU1          ElementType = 0x05
	ElementI2          ElementType = 0x06
	ElementU2          ElementType = 0x07
	ElementI4          ElementType = 0x08
	ElementU4          ElementType = 0x09
	ElementI8          ElementType = 0x0a
	ElementU8          ElementType = 0x0b
	ElementR4          ElementType = 0x0c
	ElementR8          ElementType = 0x0d
	ElementString      ElementType = 0x0e
	ElementByRef       ElementType = 0x10
	ElementValueType   ElementType = 0x11
	ElementClass       ElementType = 0x12
	ElementVar         ElementType = 0x13
	ElementGenericInst ElementType = 0x15
	ElementObject      ElementType = 0x1c
	ElementSzArray     ElementType = 0x1d
	ElementCModReqd    ElementType = 0x1f
	ElementCModOpt     ElementType = 0x20
)

// IsPrimitive reports whether the element type carries no further payload
func (element ElementType) IsPrimitive() bool {
	switch element {
	case ElementVoid, ElementBoolean, ElementChar,
		ElementI1, ElementU1, ElementI2, ElementU2, ElementI4, ElementU4, ElementI8, ElementU8,
		ElementR4, ElementR8, ElementString, ElementObject:
		return true
	}
	return false
}

type CallingConvention byte

const (
	CallingConventionDefault  CallingConvention = 0x00
	CallingConventionField    CallingConvention = 0x06
	CallingConventionProperty CallingConvention = 0x08
	CallingConventionKindMask CallingConvention = 0x0f
	CallingConventionGeneric  CallingConvention = 0x10
	CallingConventionHasThis  CallingConvention = 0x20
)

func (convention CallingConvention) Kind() CallingConvention {
	return convention & CallingConventionKindMask
}

func (convention CallingConvention) HasThis() bool {
	return convention&CallingConventionHasThis != 0
}

func (convention CallingConvention) IsGeneric() bool {
	return convention&CallingConventionGeneric != 0
}

// Method attribute flags
const (
	MethodAccessMask    uint32 = 0x0007
	MethodPrivate       uint32 = 0x0001
	MethodFamANDAssem   uint32 = 0x0002
	MethodAssem         uint32 = 0x0003
	MethodFamily        uint32 = 0x0004
	MethodFamORAssem    uint32 = 0x0005
	MethodPublic        uint32 = 0x0006
	MethodStatic        uint32 = 0x0010
	MethodFinal         uint32 = 0x0020
	MethodVirtual       uint32 = 0x0040
	MethodAbstract      uint32 = 0x0400
	MethodSpecialName   uint32 = 0x0800
	MethodRTSpecialName uint32 = 0x1000
)

// Type attribute flags
const (
	TypeVisibilityMask uint32 = 0x00000007
	TypePublic         uint32 = 0x00000001
	TypeInterface      uint32 = 0x00000020
	TypeAbstract       uint32 = 0x00000080
	TypeSealed         uint32 = 0x00000100
	TypeSpecialName    uint32 = 0x00000400
	TypeWindowsRuntime uint32 = 0x00004000
)

// Field, property, event and param flags
const (
	FieldStatic       uint32 = 0x0010
	FieldLiteral      uint32 = 0x0040
	FieldSpecialName  uint32 = 0x0200
	PropertySpecial   uint32 = 0x0200
	EventSpecialName  uint32 = 0x0200
	ParamIn           uint32 = 0x0001
	ParamOut          uint32 = 0x0002
	ParamOptional     uint32 = 0x0010
	ParamHasDefault   uint32 = 0x1000
	GenericParamCovar uint32 = 0x0001
)

func IsMethodExported(flags uint32) bool {
	access := flags & MethodAccessMask
	visible := access == MethodPublic || access == MethodFamily || access == MethodFamORAssem
	return visible && flags&MethodSpecialName == 0
}

func IsTypeExported(flags uint32) bool {
	return flags&TypeVisibilityMask == TypePublic && flags&TypeSpecialName == 0
}

func IsMethodPublic(flags uint32) bool {
	return flags&MethodAccessMask == MethodPublic
}

func IsMethodStatic(flags uint32) bool {
	return flags&MethodStatic != 0
}

func IsTypeInterface(flags uint32) bool {
	return flags&TypeInterface != 0
}

func IsTypeSealed(flags uint32) bool {
	return flags&TypeSealed != 0
}
