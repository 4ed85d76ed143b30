// The package used for operating on and describing Windows Metadata.
package metadata

import "fmt"

// Token identifies one row of one metadata table. The high byte is the table kind
// and the low 24 bits are the 1-based row id.
type Token uint32

type TokenKind uint32

const (
	TokenModule          TokenKind = 0x00000000
	TokenTypeRef         TokenKind = 0x01000000
	TokenTypeDef         TokenKind = 0x02000000
	TokenFieldDef        TokenKind = 0x04000000
	TokenMethodDef       TokenKind = 0x06000000
	TokenParamDef        TokenKind = 0x08000000
	TokenInterfaceImpl   TokenKind = 0x09000000
	TokenMemberRef       TokenKind = 0x0a000000
	TokenCustomAttribute TokenKind = 0x0c000000
	TokenEvent           TokenKind = 0x14000000
	TokenProperty        TokenKind = 0x17000000
	TokenModuleRef       TokenKind = 0x1a000000
	TokenTypeSpec        TokenKind = 0x1b000000
	TokenGenericParam    TokenKind = 0x2a000000
	TokenMethodSpec      TokenKind = 0x2b000000
	TokenBaseType        TokenKind = 0x72000000
)

const ridMask = 0x00ffffff

var tokenKindNames = map[TokenKind]string{
	TokenModule:          "Module",
	TokenTypeRef:         "TypeRef",
	TokenTypeDef:         "TypeDef",
	TokenFieldDef:        "FieldDef",
	TokenMethodDef:       "MethodDef",
	TokenParamDef:        "ParamDef",
	TokenInterfaceImpl:   "InterfaceImpl",
	TokenMemberRef:       "MemberRef",
	TokenCustomAttribute: "CustomAttribute",
	TokenEvent:           "Event",
	TokenProperty:        "Property",
	TokenModuleRef:       "ModuleRef",
	TokenTypeSpec:        "TypeSpec",
	TokenGenericParam:    "GenericParam",
	TokenMethodSpec:      "MethodSpec",
	TokenBaseType:        "BaseType",
}

func (kind TokenKind) String() string {
	if name, found := tokenKindNames[kind]; found {
		return name
	}
	return fmt.Sprintf("TokenKind(0x%08x)", uint32(kind))
}

// NewToken builds a token from a table kind and a 1-based row id
func NewToken(kind TokenKind, rid uint32) Token {
	return Token(uint32(kind) | rid&ridMask)
}

func (token Token) Kind() TokenKind {
	return TokenKind(uint32(token) &^ ridMask)
}

func (token Token) Rid() uint32 {
	return uint32(token) & ridMask
}

// IsNil reports whether the token refers to no row at all
func (token Token) IsNil() bool {
	return token.Rid() == 0
}

func (token Token) Is(kind TokenKind) bool {
	return !token.IsNil() && token.Kind() == kind
}

func (token Token) String() string {
	return fmt.Sprintf("%s(0x%08x)", token.Kind(), uint32(token))
}
