package identity_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowinrt/internal/declarations"
	"gowinrt/internal/errors"
	"gowinrt/internal/identity"
	"gowinrt/internal/metadata"
	"gowinrt/internal/metadata/metadatatest"
)

func TestParseTypeName(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"Int32", []string{"Int32"}},
		{"Windows.Foundation.IReference`1<Int32>", []string{"Windows.Foundation.IReference`1", "Int32"}},
		{
			"Windows.Foundation.Collections.IMap`2<String, Windows.Foundation.Collections.IVector`1<Int32>>",
			[]string{"Windows.Foundation.Collections.IMap`2", "String", "Windows.Foundation.Collections.IVector`1", "Int32"},
		},
		{"IMap`2<String,Object>", []string{"IMap`2", "String", "Object"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts, err := identity.ParseTypeName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, parts)
		})
	}
}

type typeNames map[metadata.Token]string

func (names typeNames) TypeName(token metadata.Token) (string, error) {
	return names[token], nil
}

func TestParseRenderedTypeName(t *testing.T) {
	reference := metadata.NewToken(metadata.TokenTypeRef, 1)
	mapType := metadata.NewToken(metadata.TokenTypeRef, 2)
	names := typeNames{
		reference: "Windows.Foundation.IReference`1",
		mapType:   "Windows.Foundation.Collections.IMap`2",
	}

	tests := []struct {
		name string
		desc metadata.TypeDescriptor
		want []string
	}{
		{
			"single argument",
			metadata.GenericInstance(reference, metadata.Primitive(metadata.ElementI4)),
			[]string{"Windows.Foundation.IReference`1", "Int32"},
		},
		{
			"nested instance",
			metadata.GenericInstance(mapType, metadata.Primitive(metadata.ElementString),
				metadata.GenericInstance(reference, metadata.Primitive(metadata.ElementBoolean))),
			[]string{"Windows.Foundation.Collections.IMap`2", "String", "Windows.Foundation.IReference`1", "Boolean"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rendered, err := metadata.DisplayString(names, tt.desc)
			require.NoError(t, err)
			assert.Contains(t, rendered, "`")

			parts, err := identity.ParseTypeName(rendered)
			require.NoError(t, err)
			assert.Equal(t, tt.want, parts)
		})
	}
}

func TestParseTypeNameErrors(t *testing.T) {
	tests := []string{
		"",
		"IVector`1",
		"IVector`1<Int32, String>",
		"IVector`1<Int32",
		"Int32<String>",
		"IVector`x<Int32>",
		"IVector`1<Int32>>",
	}

	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := identity.ParseTypeName(name)
			assert.ErrorIs(t, err, errors.ErrInvariantViolation)
		})
	}
}

// collections describes a few well-known Windows.Foundation.Collections interfaces
var collections = identity.LocatorFunc(func(name string, builder identity.MetaDataBuilder) error {
	switch name {
	case "Windows.Foundation.Collections.IVector`1":
		builder.SetParameterizedInterface(uuid.MustParse("913337e9-11a1-4345-a3a2-4e7f956e222d"), 1)
	case "Windows.Foundation.Collections.IIterable`1":
		builder.SetParameterizedInterface(uuid.MustParse("faa585ea-6214-4217-afda-7f46de5869b3"), 1)
	case "Windows.Foundation.Collections.IMap`2":
		builder.SetParameterizedInterface(uuid.MustParse("3c2925fe-8519-45c1-aa79-197b6718c1c1"), 2)
	case "Windows.Foundation.IReference`1":
		builder.SetParameterizedInterface(metadatatest.IReferenceID, 1)
	default:
		return errors.NotFound(errors.PhaseBind, name)
	}
	return nil
})

func TestParameterizedTypeIdentity(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Windows.Foundation.Collections.IVector`1<String>", "98b9acc1-4b56-532e-ac73-03d5291cca90"},
		{"Windows.Foundation.Collections.IIterable`1<String>", "e2fcc7c1-3bfc-5a0b-b2b0-72e769d1cb7e"},
		{"Windows.Foundation.IReference`1<Int32>", "548cefbd-bc8a-5fa0-8df2-957440fc8bf4"},
		{"Windows.Foundation.Collections.IMap`2<String, Object>", "1b0d3570-0877-5ec2-8a2c-3b9539506aca"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts, err := identity.ParseTypeName(tt.name)
			require.NoError(t, err)

			id, err := identity.ParameterizedTypeIdentity(parts, collections)
			require.NoError(t, err)
			assert.Equal(t, tt.want, id.String())

			again, err := identity.ParameterizedTypeIdentity(parts, collections)
			require.NoError(t, err)
			assert.Equal(t, id, again)
		})
	}
}

func TestSignature(t *testing.T) {
	signature, err := identity.Signature([]string{"Windows.Foundation.Collections.IMap`2", "String", "Object"}, collections)
	require.NoError(t, err)
	assert.Equal(t, "pinterface({3c2925fe-8519-45c1-aa79-197b6718c1c1};string;cinterface(IInspectable))", signature)

	_, err = identity.Signature([]string{"Int32"}, collections)
	assert.ErrorIs(t, err, errors.ErrInvariantViolation)
	assert.NotErrorIs(t, err, errors.ErrNotFound)

	_, err = identity.Signature([]string{"Object", "Int32"}, collections)
	assert.ErrorIs(t, err, errors.ErrInvariantViolation)

	_, err = identity.Signature([]string{"Windows.Foundation.Collections.IVector`1"}, collections)
	assert.ErrorIs(t, err, errors.ErrInvariantViolation)

	_, err = identity.Signature([]string{"Windows.Foundation.Collections.IVector`1", "Int32", "Int32"}, collections)
	assert.ErrorIs(t, err, errors.ErrInvariantViolation)

	_, err = identity.Signature([]string{"Windows.Foundation.Collections.IVector`1", "Nope.Missing"}, collections)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func newBuilder(t *testing.T) (*identity.Builder, *declarations.Resolver) {
	t.Helper()
	sample := metadatatest.NewSample()
	t.Cleanup(func() { _ = sample.Index.Close() })
	resolver := declarations.NewResolver(sample.Index)
	return identity.NewBuilder(resolver), resolver
}

func TestBuilderLocate(t *testing.T) {
	builder, _ := newBuilder(t)

	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{"primitive", []string{"Sample.Widgets.IBox`1", "Int32"}, "5de6911f-9ff7-5279-82e1-9311a76e3844"},
		{"boolean", []string{"Sample.Widgets.IBox`1", "Boolean"}, "301d597a-b1f1-5bae-b5ec-8d38a0e0cf3b"},
		{"guid", []string{"Sample.Widgets.IBox`1", "Guid"}, "c2d3f0db-f288-5ece-8483-8acc7875b736"},
		{"struct", []string{"Sample.Foundation.IReference`1", "Sample.Widgets.Point"}, "5a501f03-26d6-56b9-b51d-520355b6392a"},
		{"enum", []string{"Sample.Foundation.IReference`1", "Sample.Widgets.Color"}, "0367be63-97ea-5c58-acfc-6bb13ca8d647"},
		{"delegate", []string{"Sample.Widgets.IBox`1", "Sample.Widgets.ChangedHandler"}, "14bafddd-e249-51a3-b75b-da99e44482db"},
		{"interface", []string{"Sample.Widgets.IBox`1", "Sample.Foundation.IClosable"}, "f0aec629-0d43-5a3c-8b56-91530c7432f5"},
		{"nested", []string{"Sample.Widgets.IBox`1", "Sample.Widgets.IBox`1", "Int32"}, "5876aab5-6730-5d78-a7ea-ca0faec9eed6"},
		{"runtime class", []string{"Sample.Foundation.TypedHandler`2", "Sample.Widgets.Widget", "String"}, "43465cf3-e58a-549a-a953-1cbbd2fba273"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := identity.ParameterizedTypeIdentity(tt.parts, builder)
			require.NoError(t, err)
			assert.Equal(t, tt.want, id.String())
		})
	}
}

func TestGenerateID(t *testing.T) {
	builder, resolver := newBuilder(t)

	widget, err := resolver.Resolve("Sample.Widgets.Widget")
	require.NoError(t, err)
	class := widget.(*declarations.Class)

	id, err := builder.GenerateID(class)
	require.NoError(t, err)
	assert.Equal(t, metadatatest.IWidgetID, id)

	box := class.Interfaces()[2]
	require.Equal(t, declarations.KindGenericInterfaceInstance, box.Kind())
	id, err = builder.GenerateID(box)
	require.NoError(t, err)
	assert.Equal(t, "5de6911f-9ff7-5279-82e1-9311a76e3844", id.String())

	again, err := builder.GenerateID(box)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	changed := class.Events()[0].Delegate()
	id, err = builder.GenerateID(changed)
	require.NoError(t, err)
	assert.Equal(t, metadatatest.ChangedHandlerID, id)

	color, err := resolver.Resolve("Sample.Widgets.Color")
	require.NoError(t, err)
	_, err = builder.GenerateID(color)
	assert.ErrorIs(t, err, errors.ErrInvariantViolation)
}

func TestGenerateIDForDelegateInstance(t *testing.T) {
	sample := metadatatest.NewSample()
	defer sample.Index.Close()
	resolver := declarations.NewResolver(sample.Index)
	builder := identity.NewBuilder(resolver)

	location, err := sample.Index.Locate("Sample.Widgets.Widget")
	require.NoError(t, err)
	handler, err := resolver.MakeDelegateDeclaration(location.Scope, sample.Widgets.HandlerOfWidget)
	require.NoError(t, err)

	id, err := builder.GenerateID(handler)
	require.NoError(t, err)
	assert.Equal(t, "43465cf3-e58a-549a-a953-1cbbd2fba273", id.String())
}
