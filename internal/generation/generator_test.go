package generation_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowinrt/internal/declarations"
	"gowinrt/internal/errors"
	"gowinrt/internal/generation"
	"gowinrt/internal/metadata/metadatatest"
)

func newGenerator(t *testing.T, output string) (*generation.Generator, *declarations.Resolver) {
	t.Helper()
	sample := metadatatest.NewSample()
	t.Cleanup(func() { _ = sample.Index.Close() })
	resolver := declarations.NewResolver(sample.Index)
	return generation.NewGenerator(resolver, "winrt", output), resolver
}

func render(t *testing.T, generator *generation.Generator, resolver *declarations.Resolver, name string) string {
	t.Helper()
	declaration, err := resolver.Resolve(name)
	require.NoError(t, err)
	file, err := generator.File(declaration)
	require.NoError(t, err)
	return fmt.Sprintf("%#v", file)
}

func TestInterfaceProjection(t *testing.T) {
	generator, resolver := newGenerator(t, t.TempDir())
	source := render(t, generator, resolver, "Sample.Widgets.IWidget")

	assert.Contains(t, source, "package winrt")
	assert.Contains(t, source, "type IWidget uintptr")
	assert.Contains(t, source, "var IWidgetID = windows.GUID{")
	assert.Contains(t, source, fmt.Sprintf("Data1: 0x%02x%02x%02x%02x", metadatatest.IWidgetID[0], metadatatest.IWidgetID[1], metadatatest.IWidgetID[2], metadatatest.IWidgetID[3]))

	slots := []struct {
		name string
		slot int
	}{
		{"GetName", 6},
		{"PutName", 7},
		{"Resize", 8},
		{"Describe", 9},
		{"AddChanged", 10},
		{"RemoveChanged", 11},
	}
	for _, tt := range slots {
		t.Run(tt.name, func(t *testing.T) {
			assert.Regexp(t, fmt.Sprintf(`IWidget%sSlot\s+=\s+%d\n`, tt.name, tt.slot), source)
		})
	}

	assert.Contains(t, source, "func (this IWidget) Resize(width int32, height int32) error {")
	assert.Contains(t, source, "syscall.SyscallN(method(uintptr(this), IWidgetResizeSlot), uintptr(this), uintptr(width), uintptr(height))")
	assert.Contains(t, source, "func (this IWidget) GetName() (result uintptr, err error) {")
	assert.Contains(t, source, "uintptr(unsafe.Pointer(&result))")
	assert.Contains(t, source, "func (this IWidget) AddChanged(handler uintptr) (result int64, err error) {")
	assert.Contains(t, source, "func (this IWidget) PutName(value uintptr) error {")
}

func TestFloatingPointAndStructProjection(t *testing.T) {
	generator, resolver := newGenerator(t, t.TempDir())
	source := render(t, generator, resolver, "Sample.Widgets.IPanel")

	assert.Contains(t, source, "uintptr(math.Float64bits(width))")
	assert.Contains(t, source, "func (this IPanel) GetOrigin() (result Point, err error) {")

	point := render(t, generator, resolver, "Sample.Widgets.Point")
	assert.Contains(t, point, "type Point struct {")
	assert.Regexp(t, `X\s+float32`, point)
	assert.Regexp(t, `Y\s+float32`, point)
}

func TestGenericInstanceProjection(t *testing.T) {
	generator, resolver := newGenerator(t, t.TempDir())
	widget, err := resolver.Resolve("Sample.Widgets.Widget")
	require.NoError(t, err)
	instance := widget.(*declarations.Class).Interfaces()[2]

	file, err := generator.File(instance)
	require.NoError(t, err)
	source := fmt.Sprintf("%#v", file)

	assert.Contains(t, source, "type IBoxInt32 uintptr")
	assert.Contains(t, source, "Data1: 0x5de6911f")
	assert.Contains(t, source, "func (this IBoxInt32) GetValue() (result int32, err error) {")
	assert.Contains(t, source, "func (this IBoxInt32) Contains(value int32) (result bool, err error) {")
}

func TestEnumProjection(t *testing.T) {
	generator, resolver := newGenerator(t, t.TempDir())
	source := render(t, generator, resolver, "Sample.Widgets.Color")

	assert.Contains(t, source, "type Color int32")
	assert.Regexp(t, `ColorRed\s+Color = 0`, source)
	assert.Regexp(t, `ColorBlue\s+Color = 2`, source)
	assert.NotContains(t, source, "value__")
}

func TestRegisterRejectsUnprojectedKinds(t *testing.T) {
	generator, resolver := newGenerator(t, t.TempDir())

	for _, name := range []string{"Sample", "Sample.Widgets.IBox`1"} {
		t.Run(name, func(t *testing.T) {
			declaration, err := resolver.Resolve(name)
			require.NoError(t, err)
			assert.ErrorIs(t, generator.Register(declaration), errors.ErrUnsupportedSignatureShape)
		})
	}

	assert.ErrorIs(t, generator.RegisterName("Sample.Widgets.Missing"), errors.ErrNotFound)
}

func TestGenerate(t *testing.T) {
	output := filepath.Join(t.TempDir(), "winrt")
	generator, _ := newGenerator(t, output)

	require.NoError(t, generator.RegisterName("Sample.Widgets.Panel"))
	written, err := generator.Generate()
	require.NoError(t, err)

	names := make([]string, 0, len(written))
	for _, path := range written {
		names = append(names, filepath.Base(path))
	}
	// Point is pulled in by IPanel.get_Origin
	assert.ElementsMatch(t, []string{"IPanel.go", "IPanelOverrides.go", "Point.go", "abi.go"}, names)

	helpers, err := os.ReadFile(filepath.Join(output, "abi.go"))
	require.NoError(t, err)
	assert.Contains(t, string(helpers), "func method(this uintptr, slot int) uintptr {")
	assert.Contains(t, string(helpers), "func hresultError(hr uintptr) error {")
	assert.Contains(t, string(helpers), "// Code generated by gowinrt. DO NOT EDIT.")
}
