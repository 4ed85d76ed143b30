package reader

import (
	"testing"

	"github.com/microsoft/go-winmd"
	"github.com/stretchr/testify/assert"

	"gowinrt/internal/metadata"
)

func TestCodedToken(t *testing.T) {
	tests := []struct {
		name   string
		tables []metadata.TokenKind
		index  winmd.CodedIndex
		want   metadata.Token
	}{
		{"typedef", typeDefOrRef, winmd.CodedIndex{Tag: 0, Index: 4}, metadata.NewToken(metadata.TokenTypeDef, 5)},
		{"typeref", typeDefOrRef, winmd.CodedIndex{Tag: 1, Index: 0}, metadata.NewToken(metadata.TokenTypeRef, 1)},
		{"typespec", typeDefOrRef, winmd.CodedIndex{Tag: 2, Index: 9}, metadata.NewToken(metadata.TokenTypeSpec, 10)},
		{"attribute on interface impl", hasCustomAttribute, winmd.CodedIndex{Tag: 5, Index: 2}, metadata.NewToken(metadata.TokenInterfaceImpl, 3)},
		{"attribute constructor", customAttributeType, winmd.CodedIndex{Tag: 3, Index: 7}, metadata.NewToken(metadata.TokenMemberRef, 8)},
		{"semantics", hasSemantics, winmd.CodedIndex{Tag: 1, Index: 0}, metadata.NewToken(metadata.TokenProperty, 1)},
		{"generic owner", typeOrMethodDef, winmd.CodedIndex{Tag: 1, Index: 1}, metadata.NewToken(metadata.TokenMethodDef, 2)},
		{"tag out of range", hasSemantics, winmd.CodedIndex{Tag: 3, Index: 1}, metadata.NewToken(tokenUnused, 0)},
		{"null reference", typeDefOrRef, winmd.CodedIndex{Tag: -1}, metadata.NewToken(tokenUnused, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codedToken(tt.tables, tt.index))
		})
	}
}

func TestListTokens(t *testing.T) {
	tokens := listTokens(metadata.TokenMethodDef, winmd.Slice{Start: 3, End: 6})
	assert.Equal(t, []metadata.Token{
		metadata.NewToken(metadata.TokenMethodDef, 4),
		metadata.NewToken(metadata.TokenMethodDef, 5),
		metadata.NewToken(metadata.TokenMethodDef, 6),
	}, tokens)

	assert.Empty(t, listTokens(metadata.TokenFieldDef, winmd.Slice{Start: 2, End: 2}))
	assert.Equal(t, metadata.NewToken(metadata.TokenParamDef, 1), indexToken(metadata.TokenParamDef, 0))
}

func TestCodedIndexTableSizes(t *testing.T) {
	assert.Len(t, hasCustomAttribute, 22)
	assert.Len(t, customAttributeType, 5)
	assert.Len(t, memberRefParent, 5)
	assert.Len(t, resolutionScope, 4)
}
