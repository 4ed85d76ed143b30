package reader_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowinrt/internal/declarations"
	"gowinrt/internal/errors"
	"gowinrt/internal/metadata"
	"gowinrt/internal/metadata/reader"
)

// win32Metadata returns the Windows.Win32.winmd shipped in go-winmd's testdata,
// or the file named by GOWINRT_TEST_WINMD.
func win32Metadata(t *testing.T) string {
	t.Helper()
	if path := os.Getenv("GOWINRT_TEST_WINMD"); path != "" {
		return path
	}
	out, err := exec.Command("go", "list", "-m", "-f", "{{.Dir}}", "github.com/microsoft/go-winmd").Output()
	if err != nil {
		t.Skipf("locating go-winmd module: %v", err)
	}
	path := filepath.Join(strings.TrimSpace(string(out)), "testdata", "Windows.Win32.winmd")
	if _, err := os.Stat(path); err != nil {
		t.Skipf("no test metadata: %v", err)
	}
	return path
}

func openWin32(t *testing.T) *reader.Store {
	t.Helper()
	store, err := reader.Open(win32Metadata(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreTypeDefs(t *testing.T) {
	store := openWin32(t)

	typeDefs, err := store.EnumTypeDefs()
	require.NoError(t, err)
	assert.Len(t, typeDefs, 33749)

	module, err := store.TypeDefProps(typeDefs[0])
	require.NoError(t, err)
	assert.Equal(t, "<Module>", module.FullName())
	assert.True(t, module.Extends.IsNil(), "the module type has no base")

	rect, err := store.FindTypeDefByName("Windows.Win32.Foundation.RECT")
	require.NoError(t, err)
	assert.Equal(t, metadata.NewToken(metadata.TokenTypeDef, 7762), rect)

	props, err := store.TypeDefProps(rect)
	require.NoError(t, err)
	assert.Equal(t, "RECT", props.Name)
	assert.Equal(t, "Windows.Win32.Foundation", props.Namespace)
	require.True(t, props.Extends.Is(metadata.TokenTypeRef))

	base, err := store.TypeRefProps(props.Extends)
	require.NoError(t, err)
	assert.Equal(t, "System.ValueType", base.FullName())

	_, err = store.FindTypeDefByName("Windows.Win32.Foundation.NOPE")
	assert.ErrorIs(t, err, errors.ErrNotFound)

	_, err = store.TypeDefProps(metadata.NewToken(metadata.TokenTypeDef, 0))
	assert.ErrorIs(t, err, errors.ErrInvariantViolation)
	_, err = store.TypeDefProps(metadata.NewToken(metadata.TokenTypeDef, 33750))
	assert.ErrorIs(t, err, errors.ErrInvariantViolation)
}

func TestStoreFields(t *testing.T) {
	store := openWin32(t)

	rect, err := store.FindTypeDefByName("Windows.Win32.Foundation.RECT")
	require.NoError(t, err)
	fields, err := store.EnumFields(rect)
	require.NoError(t, err)

	names := make([]string, 0, len(fields))
	for _, field := range fields {
		props, err := store.FieldProps(field)
		require.NoError(t, err)
		assert.Equal(t, rect, props.Owner)
		assert.Nil(t, props.Constant)

		desc, err := metadata.DecodeFieldSignature(props.Signature)
		require.NoError(t, err)
		assert.Equal(t, metadata.ElementI4, desc.Element)
		names = append(names, props.Name)
	}
	assert.Equal(t, []string{"left", "top", "right", "bottom"}, names)
}

func TestStoreConstants(t *testing.T) {
	store := openWin32(t)

	win32Error, err := store.FindTypeDefByName("Windows.Win32.Foundation.WIN32_ERROR")
	require.NoError(t, err)

	tests := []struct {
		name  string
		value int64
	}{
		{"ERROR_SUCCESS", 0},
		{"ERROR_ACCESS_DENIED", 5},
		{"WAIT_ABANDONED", 0x80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, err := store.FindField(win32Error, tt.name)
			require.NoError(t, err)
			props, err := store.FieldProps(field)
			require.NoError(t, err)
			require.NotNil(t, props.Constant)
			assert.Equal(t, metadata.ElementU4, props.Constant.Type)

			value, err := metadata.ConstantInt(*props.Constant)
			require.NoError(t, err)
			assert.Equal(t, tt.value, value)
		})
	}

	backing, err := store.FindField(win32Error, "value__")
	require.NoError(t, err)
	props, err := store.FieldProps(backing)
	require.NoError(t, err)
	assert.Nil(t, props.Constant)
}

func TestStoreMethods(t *testing.T) {
	store := openWin32(t)

	apis, err := store.FindTypeDefByName("Windows.Win32.Foundation.Apis")
	require.NoError(t, err)
	methods, err := store.EnumMethods(apis)
	require.NoError(t, err)
	assert.Len(t, methods, 19)

	closeHandle, err := store.FindMethod(apis, "CloseHandle", nil)
	require.NoError(t, err)
	props, err := store.MethodProps(closeHandle)
	require.NoError(t, err)
	assert.Equal(t, apis, props.Owner)
	assert.True(t, metadata.IsMethodStatic(props.Flags))

	sig, err := metadata.DecodeMethodSignature(props.Signature)
	require.NoError(t, err)
	assert.False(t, sig.HasThis())
	require.Len(t, sig.Params, 1)
	assert.Equal(t, metadata.ElementValueType, sig.Return.Element)

	params, err := store.EnumParams(closeHandle)
	require.NoError(t, err)
	require.Len(t, params, 2)
	first, err := store.ParamProps(params[0])
	require.NoError(t, err)
	assert.Equal(t, uint32(0), first.Sequence, "return value row")
	handle, err := store.ParamProps(params[1])
	require.NoError(t, err)
	assert.Equal(t, "hObject", handle.Name)
	assert.Equal(t, uint32(1), handle.Sequence)
	assert.Equal(t, closeHandle, handle.Method)

	_, err = store.FindMethod(apis, "CloseHandle", []byte{0x00})
	assert.ErrorIs(t, err, errors.ErrNotFound)
	_, err = store.EnumParams(apis)
	assert.ErrorIs(t, err, errors.ErrInvariantViolation)
}

func TestStoreClosed(t *testing.T) {
	store, err := reader.Open(win32Metadata(t))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.FindTypeDefByName("Windows.Win32.Foundation.RECT")
	assert.ErrorIs(t, err, errors.ErrInvariantViolation)
}

func TestLocatorResolvesRealMetadata(t *testing.T) {
	locator, err := reader.NewLocator(win32Metadata(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = locator.Close() })
	resolver := declarations.NewResolver(locator)

	declaration, err := resolver.Resolve("Windows.Win32.Foundation.RECT")
	require.NoError(t, err)
	rect, ok := declaration.(*declarations.Struct)
	require.True(t, ok, "RECT is %s", declaration.Kind())
	require.Len(t, rect.Fields(), 4)
	assert.Equal(t, "left", rect.Fields()[0].Name())
	assert.Equal(t, "Int32", rect.Fields()[0].TypeName())

	declaration, err = resolver.Resolve("Windows.Win32.Foundation.WIN32_ERROR")
	require.NoError(t, err)
	win32Error, ok := declaration.(*declarations.Enum)
	require.True(t, ok, "WIN32_ERROR is %s", declaration.Kind())
	assert.Equal(t, metadata.ElementU4, win32Error.UnderlyingType().Element)

	var accessDenied *declarations.EnumMember
	for _, member := range win32Error.Members() {
		if member.Name() == "ERROR_ACCESS_DENIED" {
			accessDenied = member
		}
	}
	require.NotNil(t, accessDenied)
	assert.Equal(t, int64(5), accessDenied.Value())

	namespace, err := resolver.Resolve("Windows.Win32")
	require.NoError(t, err)
	assert.Equal(t, declarations.KindNamespace, namespace.Kind())
}
