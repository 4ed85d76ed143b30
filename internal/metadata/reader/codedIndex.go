package reader

import (
	"github.com/microsoft/go-winmd"

	"gowinrt/internal/metadata"
)

// Token kinds the engine never reads but coded indexes may still point at
const (
	tokenDeclSecurity           metadata.TokenKind = 0x0e000000
	tokenStandAloneSig          metadata.TokenKind = 0x11000000
	tokenAssembly               metadata.TokenKind = 0x20000000
	tokenAssemblyRef            metadata.TokenKind = 0x23000000
	tokenFile                   metadata.TokenKind = 0x26000000
	tokenExportedType           metadata.TokenKind = 0x27000000
	tokenManifestResource       metadata.TokenKind = 0x28000000
	tokenGenericParamConstraint metadata.TokenKind = 0x2c000000
	tokenUnused                 metadata.TokenKind = 0xff000000
)

// Tables addressed by each coded index, in tag order
var (
	typeDefOrRef = []metadata.TokenKind{
		metadata.TokenTypeDef, metadata.TokenTypeRef, metadata.TokenTypeSpec,
	}
	hasConstant = []metadata.TokenKind{
		metadata.TokenFieldDef, metadata.TokenParamDef, metadata.TokenProperty,
	}
	hasCustomAttribute = []metadata.TokenKind{
		metadata.TokenMethodDef, metadata.TokenFieldDef, metadata.TokenTypeRef, metadata.TokenTypeDef,
		metadata.TokenParamDef, metadata.TokenInterfaceImpl, metadata.TokenMemberRef, metadata.TokenModule,
		tokenDeclSecurity, metadata.TokenProperty, metadata.TokenEvent, tokenStandAloneSig,
		metadata.TokenModuleRef, metadata.TokenTypeSpec, tokenAssembly, tokenAssemblyRef,
		tokenFile, tokenExportedType, tokenManifestResource, metadata.TokenGenericParam,
		tokenGenericParamConstraint, metadata.TokenMethodSpec,
	}
	customAttributeType = []metadata.TokenKind{
		tokenUnused, tokenUnused, metadata.TokenMethodDef, metadata.TokenMemberRef, tokenUnused,
	}
	hasSemantics = []metadata.TokenKind{
		metadata.TokenEvent, metadata.TokenProperty,
	}
	methodDefOrRef = []metadata.TokenKind{
		metadata.TokenMethodDef, metadata.TokenMemberRef,
	}
	memberRefParent = []metadata.TokenKind{
		metadata.TokenTypeDef, metadata.TokenTypeRef, metadata.TokenModuleRef, metadata.TokenMethodDef, metadata.TokenTypeSpec,
	}
	resolutionScope = []metadata.TokenKind{
		metadata.TokenModule, metadata.TokenModuleRef, tokenAssemblyRef, metadata.TokenTypeRef,
	}
	typeOrMethodDef = []metadata.TokenKind{
		metadata.TokenTypeDef, metadata.TokenMethodDef,
	}
)

// codedToken turns a decoded coded index into a token. go-winmd indexes rows from zero
// and marks a null reference with a negative tag, which becomes the nil token.
func codedToken(tables []metadata.TokenKind, index winmd.CodedIndex) metadata.Token {
	if index.Tag < 0 || int(index.Tag) >= len(tables) {
		return metadata.NewToken(tokenUnused, 0)
	}
	return metadata.NewToken(tables[index.Tag], uint32(index.Index)+1)
}

func indexToken(kind metadata.TokenKind, index winmd.Index) metadata.Token {
	return metadata.NewToken(kind, uint32(index)+1)
}

func listTokens(kind metadata.TokenKind, list winmd.Slice) []metadata.Token {
	if list.End <= list.Start {
		return nil
	}
	tokens := make([]metadata.Token, 0, list.End-list.Start)
	for i := list.Start; i < list.End; i++ {
		tokens = append(tokens, indexToken(kind, i))
	}
	return tokens
}
