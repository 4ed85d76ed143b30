package metadata_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowinrt/internal/errors"
	"gowinrt/internal/metadata"
	"gowinrt/internal/metadata/metadatatest"
)

func TestScopeTypeName(t *testing.T) {
	widgets := metadatatest.NewWidgets()
	scope := metadata.NewScope(widgets.Store)

	name, err := scope.TypeName(widgets.Widget)
	require.NoError(t, err)
	assert.Equal(t, "Sample.Widgets.Widget", name)

	name, err = scope.TypeName(widgets.IBoxOfInt32)
	require.NoError(t, err)
	assert.Equal(t, "Sample.Widgets.IBox`1<Int32>", name)

	name, err = scope.TypeName(widgets.HandlerOfWidget)
	require.NoError(t, err)
	assert.Equal(t, "Sample.Foundation.TypedHandler`2<Sample.Widgets.Widget, String>", name)

	_, err = scope.TypeName(widgets.WidgetClose)
	assert.ErrorIs(t, err, errors.ErrInvariantViolation)
}

func TestScopeRejectsWrongTokenKind(t *testing.T) {
	widgets := metadatatest.NewWidgets()
	scope := metadata.NewScope(widgets.Store)

	_, err := scope.MethodProps(widgets.Widget)
	assert.ErrorIs(t, err, errors.ErrInvariantViolation)

	_, err = scope.TypeDefProps(metadata.NewToken(metadata.TokenTypeDef, 0))
	assert.ErrorIs(t, err, errors.ErrInvariantViolation)
}

func TestScopeClose(t *testing.T) {
	widgets := metadatatest.NewWidgets()
	scope := metadata.NewScope(widgets.Store)

	require.NoError(t, scope.Close())
	assert.True(t, widgets.Store.IsClosed())
	require.NoError(t, scope.Close())

	_, err := scope.TypeDefProps(widgets.Widget)
	assert.ErrorIs(t, err, errors.ErrInvariantViolation)
}

func TestScopeConcurrentReads(t *testing.T) {
	widgets := metadatatest.NewWidgets()
	scope := metadata.NewScope(widgets.Store)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			methods, err := scope.EnumMethods(widgets.IWidget)
			assert.NoError(t, err)
			assert.Len(t, methods, 6)
			_, err = scope.TypeName(widgets.IBoxOfInt32)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestCustomAttributes(t *testing.T) {
	widgets := metadatatest.NewWidgets()
	scope := metadata.NewScope(widgets.Store)

	id, found, err := scope.GUIDAttributeValue(widgets.IWidget)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, metadatatest.IWidgetID, id)

	_, found, err = scope.GUIDAttributeValue(widgets.Widget)
	require.NoError(t, err)
	assert.False(t, found)

	activatable, err := scope.CustomAttributesByName(widgets.Widget, metadata.ActivatableAttribute)
	require.NoError(t, err)
	require.Len(t, activatable, 2)

	name, ok, err := scope.TypeArgument(activatable[0])
	require.NoError(t, err)
	assert.False(t, ok, "default activation has no factory type")
	assert.Empty(t, name)

	name, ok, err = scope.TypeArgument(activatable[1])
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Sample.Widgets.IWidgetFactory", name)

	args, err := scope.Arguments(activatable[1])
	require.NoError(t, err)
	require.Len(t, args, 2)
	assert.Equal(t, uint64(1), args[1].Value)

	composable, err := scope.CustomAttributesByName(widgets.Panel, metadata.ComposableAttribute)
	require.NoError(t, err)
	require.Len(t, composable, 1)
	args, err = scope.Arguments(composable[0])
	require.NoError(t, err)
	require.Len(t, args, 3)
	assert.Equal(t, "Sample.Widgets.IPanelFactory", args[0].Value)
	assert.Equal(t, int64(2), args[1].Value)

	overload, err := scope.CustomAttributesByName(widgets.WidgetResize, metadata.OverloadAttribute)
	require.NoError(t, err)
	require.Len(t, overload, 1)
	args, err = scope.Arguments(overload[0])
	require.NoError(t, err)
	assert.Equal(t, "ResizeTo", args[0].Value)

	isDefault, err := scope.HasCustomAttribute(widgets.WidgetDefaultImpl, metadata.DefaultAttribute)
	require.NoError(t, err)
	assert.True(t, isDefault)
}

func TestConstantInt(t *testing.T) {
	tests := []struct {
		constant metadata.Constant
		want     int64
	}{
		{metadata.Constant{Type: metadata.ElementI4, Value: []byte{0xff, 0xff, 0xff, 0xff}}, -1},
		{metadata.Constant{Type: metadata.ElementU4, Value: []byte{0xff, 0xff, 0xff, 0xff}}, 0xffffffff},
		{metadata.Constant{Type: metadata.ElementU1, Value: []byte{0x07}}, 7},
		{metadata.Constant{Type: metadata.ElementI2, Value: []byte{0xfe, 0xff}}, -2},
	}

	for _, tt := range tests {
		t.Run(tt.constant.Type.String(), func(t *testing.T) {
			got, err := metadata.ConstantInt(tt.constant)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := metadata.ConstantInt(metadata.Constant{Type: metadata.ElementI4, Value: []byte{0x01}})
	assert.ErrorIs(t, err, errors.ErrUnsupportedSignatureShape)
	_, err = metadata.ConstantInt(metadata.Constant{Type: metadata.ElementString, Value: []byte{0x01}})
	assert.ErrorIs(t, err, errors.ErrUnsupportedSignatureShape)
}

func TestScopeIndex(t *testing.T) {
	sample := metadatatest.NewSample()

	location, err := sample.Index.Locate("Sample.Widgets.Widget")
	require.NoError(t, err)
	assert.False(t, location.Namespace)
	assert.Equal(t, sample.Widgets.Widget, location.Token)
	assert.Equal(t, "Sample.Widgets.winmd", location.Scope.Name())

	location, err = sample.Index.Locate("Sample.Foundation.IClosable")
	require.NoError(t, err)
	assert.Equal(t, sample.Foundation.IClosable, location.Token)

	location, err = sample.Index.Locate("Sample")
	require.NoError(t, err)
	assert.True(t, location.Namespace)

	_, err = sample.Index.Locate("Sample.Widgets.Missing")
	assert.ErrorIs(t, err, errors.ErrNotFound)

	children, err := sample.Index.NamespaceChildren("")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sample"}, children)

	children, err = sample.Index.NamespaceChildren("Sample")
	require.NoError(t, err)
	assert.Equal(t, []string{"Foundation", "Widgets"}, children)

	children, err = sample.Index.NamespaceChildren("Sample.Widgets")
	require.NoError(t, err)
	assert.Empty(t, children)

	_, err = sample.Index.NamespaceChildren("Nope")
	assert.ErrorIs(t, err, errors.ErrNotFound)

	assert.Contains(t, sample.Index.TypeNames("Sample.Foundation"), "Sample.Foundation.IReference`1")

	require.NoError(t, sample.Index.Close())
	assert.True(t, sample.Widgets.Store.IsClosed())
	assert.True(t, sample.Foundation.Store.IsClosed())
}
