package invocation_test

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"gowinrt/internal/declarations"
	"gowinrt/internal/errors"
	"gowinrt/internal/identity"
	"gowinrt/internal/invocation"
	"gowinrt/internal/metadata"
	"gowinrt/internal/metadata/metadatatest"
	"gowinrt/internal/native"
	"gowinrt/internal/native/nativetest"
)

var iboxOfInt32ID = uuid.MustParse("5de6911f-9ff7-5279-82e1-9311a76e3844")

type fixture struct {
	binder   *invocation.Binder
	bridge   *nativetest.Bridge
	resolver *declarations.Resolver
	widgets  *metadatatest.Widgets
	scope    *metadata.Scope
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sample := metadatatest.NewSample()
	t.Cleanup(func() { _ = sample.Index.Close() })

	location, err := sample.Index.Locate("Sample.Widgets.Widget")
	require.NoError(t, err)

	resolver := declarations.NewResolver(sample.Index)
	bridge := nativetest.New()
	return &fixture{
		binder:   invocation.NewBinder(resolver, identity.NewBuilder(resolver), bridge),
		bridge:   bridge,
		resolver: resolver,
		widgets:  sample.Widgets,
		scope:    location.Scope,
	}
}

func (f *fixture) method(t *testing.T, token metadata.Token) *declarations.Method {
	t.Helper()
	method, err := f.resolver.MakeMethod(f.scope, token)
	require.NoError(t, err)
	return method
}

func (f *fixture) member(t *testing.T, className, name string) declarations.Declaration {
	t.Helper()
	declaration, err := f.resolver.Resolve(className)
	require.NoError(t, err)
	class, ok := declaration.(*declarations.Class)
	require.True(t, ok)
	members := class.FindMembersWithName(name)
	require.Len(t, members, 1)
	return members[0]
}

func succeed(args []uintptr) native.HRESULT {
	return native.S_OK
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		typeName string
		kind     invocation.ArgumentKind
	}{
		{"Void", invocation.Void},
		{"Boolean", invocation.Boolean},
		{"UInt8", invocation.UInt8},
		{"Int16", invocation.Int16},
		{"Char16", invocation.Char16},
		{"Int32", invocation.Int32},
		{"UInt32", invocation.UInt32},
		{"String", invocation.String},
		{"Int64", invocation.Int64},
		{"UInt64", invocation.UInt64},
		{"Single", invocation.Single},
		{"Double", invocation.Double},
		{"Object", invocation.Pointer},
		{"Guid", invocation.Pointer},
		{"Sample.Widgets.Widget", invocation.Pointer},
		{"ByRef Int32", invocation.Pointer},
		{"String[]", invocation.Pointer},
	}

	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			assert.Equal(t, tt.kind, invocation.KindOf(tt.typeName))
		})
	}
	assert.Equal(t, "Int32", invocation.Int32.String())
	assert.Equal(t, "Pointer", invocation.Pointer.String())
}

func TestLayoutOf(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		typeName string
		want     invocation.Layout
	}{
		{"Boolean", invocation.Layout{Size: 1, Align: 1}},
		{"Char16", invocation.Layout{Size: 2, Align: 2}},
		{"Double", invocation.Layout{Size: 8, Align: 8}},
		{"Guid", invocation.Layout{Size: 16, Align: 4}},
		{"Sample.Widgets.Point", invocation.Layout{Size: 8, Align: 4}},
		{"Sample.Widgets.Color", invocation.Layout{Size: 4, Align: 4}},
		{"Sample.Widgets.Widget", invocation.Layout{Size: 8, Align: 8}},
		{"Sample.Widgets.IBox`1<Int32>", invocation.Layout{Size: 8, Align: 8}},
		{"String", invocation.Layout{Size: 8, Align: 8}},
	}

	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			got, err := f.binder.LayoutOf(tt.typeName)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := f.binder.LayoutOf("Sample.Widgets.Missing")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestInstanceMethod(t *testing.T) {
	f := newFixture(t)

	var width, height int32
	widget := f.bridge.NewObject("widget")
	ptr := widget.Implement(metadatatest.IWidgetID, succeed, succeed,
		func(args []uintptr) native.HRESULT {
			width, height = int32(args[1]), int32(uint32(args[2]))
			return native.S_OK
		})

	d, err := f.binder.Build(f.method(t, f.widgets.WidgetResize), ptr)
	require.NoError(t, err)
	assert.Equal(t, "Sample.Widgets.Widget.Resize", d.Name)
	assert.Equal(t, metadatatest.IWidgetID, d.InterfaceID)
	assert.Equal(t, 2, d.Ordinal)
	assert.Equal(t, 8, d.Slot)
	assert.Equal(t, []invocation.ArgumentKind{invocation.Pointer, invocation.Int32, invocation.Int32}, d.Arguments)
	assert.Equal(t, invocation.ReturnNone, d.Convention)
	assert.Equal(t, 2, d.NumberOfParameters())
	assert.Equal(t, 2, widget.Refs())

	result, err := d.Call(3, int32(-4))
	require.NoError(t, err)
	assert.Equal(t, native.S_OK, result.Status)
	assert.Nil(t, result.Value)
	assert.Equal(t, int32(3), width)
	assert.Equal(t, int32(-4), height)

	calls := f.bridge.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, metadatatest.IWidgetID, calls[0].Interface)
	assert.Equal(t, 8, calls[0].Slot)
	assert.Equal(t, uintptr(ptr), calls[0].Args[0])

	d.Close()
	assert.Equal(t, 1, widget.Refs())
	_, err = d.Call(1, 1)
	assert.ErrorIs(t, err, errors.ErrInvariantViolation)
}

func TestPropertyAccessors(t *testing.T) {
	f := newFixture(t)

	var assigned string
	widget := f.bridge.NewObject("widget")
	ptr := widget.Implement(metadatatest.IWidgetID,
		func(args []uintptr) native.HRESULT {
			hstring, err := f.bridge.CreateString("gadget")
			if err != nil {
				return native.E_FAIL
			}
			nativetest.WritePointer(args[1], hstring)
			return native.S_OK
		},
		func(args []uintptr) native.HRESULT {
			assigned = f.bridge.StringValue(native.Pointer(args[1]))
			return native.S_OK
		})

	name := f.member(t, "Sample.Widgets.Widget", "Name")

	getter, err := f.binder.Build(name, ptr)
	require.NoError(t, err)
	defer getter.Close()
	assert.Equal(t, 6, getter.Slot)
	assert.Equal(t, []invocation.ArgumentKind{invocation.Pointer, invocation.Pointer}, getter.Arguments)
	assert.Equal(t, invocation.String, getter.Return)
	assert.Equal(t, invocation.ReturnInPlace, getter.Convention)

	result, err := getter.Call()
	require.NoError(t, err)
	assert.Equal(t, "gadget", result.Value)
	assert.Equal(t, invocation.String, result.Kind)
	assert.Zero(t, f.bridge.LiveStrings(), "returned strings are released")

	setter, err := f.binder.Build(name, ptr, invocation.WithSetter())
	require.NoError(t, err)
	defer setter.Close()
	assert.Equal(t, 7, setter.Slot)
	assert.Equal(t, []invocation.ArgumentKind{invocation.Pointer, invocation.String}, setter.Arguments)

	_, err = setter.Call("renamed")
	require.NoError(t, err)
	assert.Equal(t, "renamed", assigned)
	assert.Zero(t, f.bridge.LiveStrings(), "argument strings are released")
}

func TestGenericInstanceMethod(t *testing.T) {
	f := newFixture(t)

	contains := func(args []uintptr) native.HRESULT {
		if int32(args[1]) == 5 {
			nativetest.WriteUint64(args[2], 1)
		}
		return native.S_OK
	}
	widget := f.bridge.NewObject("widget")
	ptr := widget.Implement(iboxOfInt32ID, succeed, contains)

	d, err := f.binder.Build(f.method(t, f.widgets.WidgetContains), ptr)
	require.NoError(t, err)
	assert.Equal(t, iboxOfInt32ID, d.InterfaceID)
	assert.Equal(t, 7, d.Slot)
	assert.Equal(t, invocation.Boolean, d.Return)

	result, err := d.Call(int32(5))
	require.NoError(t, err)
	assert.Equal(t, true, result.Value)

	result, err = d.Call(int32(6))
	require.NoError(t, err)
	assert.Equal(t, false, result.Value)

	declaration, err := f.resolver.MakeInterfaceDeclaration(f.scope, f.widgets.IBoxOfInt32)
	require.NoError(t, err)
	instance, ok := declaration.(*declarations.GenericInterfaceInstance)
	require.True(t, ok)
	members := instance.FindMembersWithName("Contains")
	require.Len(t, members, 1)

	open, err := f.binder.Build(members[0], ptr, invocation.WithGenericInstance(instance))
	require.NoError(t, err)
	assert.Equal(t, iboxOfInt32ID, open.InterfaceID)
	assert.Equal(t, 7, open.Slot)
	assert.Equal(t, []invocation.ArgumentKind{invocation.Pointer, invocation.Int32, invocation.Pointer}, open.Arguments)

	result, err = open.Call(int32(5))
	require.NoError(t, err)
	assert.Equal(t, true, result.Value)

	_, err = f.binder.Build(f.method(t, f.widgets.IWidgetDescribe), ptr, invocation.WithGenericInstance(instance))
	assert.ErrorIs(t, err, errors.ErrInvariantViolation)
}

func TestStaticMembers(t *testing.T) {
	f := newFixture(t)

	var parsed string
	factory := f.bridge.NewObject("Widget factory")
	ptr := factory.Implement(metadatatest.IWidgetStaticsID,
		func(args []uintptr) native.HRESULT {
			parsed = f.bridge.StringValue(native.Pointer(args[1]))
			nativetest.WritePointer(args[2], 0xbeef)
			return native.S_OK
		},
		func(args []uintptr) native.HRESULT {
			nativetest.WriteUint32(args[1], 2)
			return native.S_OK
		})

	parse, err := f.binder.Build(f.method(t, f.widgets.WidgetParse), ptr)
	require.NoError(t, err)
	assert.Equal(t, metadatatest.IWidgetStaticsID, parse.InterfaceID)
	assert.Equal(t, 6, parse.Slot)
	assert.Equal(t, []invocation.ArgumentKind{invocation.Pointer, invocation.String, invocation.Pointer}, parse.Arguments)

	result, err := parse.Call("big")
	require.NoError(t, err)
	assert.Equal(t, "big", parsed)
	assert.Equal(t, native.Pointer(0xbeef), result.Pointer)
	assert.Equal(t, invocation.Pointer, result.Kind)

	color, err := f.binder.Build(f.member(t, "Sample.Widgets.Widget", "DefaultColor"), ptr)
	require.NoError(t, err)
	assert.Equal(t, 7, color.Slot)
	assert.Equal(t, invocation.Layout{Size: 4, Align: 4}, color.ReturnLayout)

	result, err = color.Call()
	require.NoError(t, err)
	assert.Equal(t, int32(2), result.Value)

	_, err = f.binder.Build(f.member(t, "Sample.Widgets.Widget", "DefaultColor"), ptr, invocation.WithSetter())
	assert.ErrorIs(t, err, errors.ErrInvariantViolation)
}

func TestInitializers(t *testing.T) {
	f := newFixture(t)

	var created string
	factory := f.bridge.NewObject("Widget factory")
	factory.Implement(native.IActivationFactoryID, func(args []uintptr) native.HRESULT {
		nativetest.WritePointer(args[1], 0x100)
		return native.S_OK
	})
	factory.Implement(metadatatest.IWidgetFactoryID, func(args []uintptr) native.HRESULT {
		created = f.bridge.StringValue(native.Pointer(args[1]))
		nativetest.WritePointer(args[2], 0x200)
		return native.S_OK
	})
	f.bridge.RegisterFactory("Sample.Widgets.Widget", factory)

	ptr, err := f.bridge.ActivationFactory("Sample.Widgets.Widget")
	require.NoError(t, err)

	activate, err := f.binder.Build(f.method(t, f.widgets.WidgetDefaultCtor), ptr)
	require.NoError(t, err)
	assert.Equal(t, native.IActivationFactoryID, activate.InterfaceID)
	assert.Equal(t, 6, activate.Slot)
	assert.Equal(t, []invocation.ArgumentKind{invocation.Pointer, invocation.Pointer}, activate.Arguments)

	result, err := activate.Call()
	require.NoError(t, err)
	assert.Equal(t, native.Pointer(0x100), result.Pointer)

	withName, err := f.binder.Build(f.method(t, f.widgets.WidgetNameCtor), ptr)
	require.NoError(t, err)
	assert.Equal(t, metadatatest.IWidgetFactoryID, withName.InterfaceID)
	assert.Equal(t, []invocation.ArgumentKind{invocation.Pointer, invocation.String, invocation.Pointer}, withName.Arguments)

	result, err = withName.Call("named")
	require.NoError(t, err)
	assert.Equal(t, "named", created)
	assert.Equal(t, native.Pointer(0x200), result.Pointer)

	_, err = f.binder.Build(f.method(t, f.widgets.WidgetPublicCtor), ptr)
	assert.ErrorIs(t, err, errors.ErrNoMatchingFactoryMethod)
}

func TestComposableInitializer(t *testing.T) {
	f := newFixture(t)

	var outer uintptr
	factory := f.bridge.NewObject("Panel factory")
	ptr := factory.Implement(metadatatest.IPanelFactoryID, succeed,
		func(args []uintptr) native.HRESULT {
			outer = args[2]
			nativetest.WritePointer(args[3], 0x51)
			nativetest.WritePointer(args[4], 0x52)
			return native.S_OK
		})

	d, err := f.binder.Build(f.method(t, f.widgets.PanelNameCtor), ptr, invocation.WithOuter(0x77))
	require.NoError(t, err)
	assert.True(t, d.Composable)
	assert.Equal(t, 7, d.Slot)
	assert.Equal(t, []invocation.ArgumentKind{
		invocation.Pointer, invocation.String, invocation.Pointer, invocation.Pointer, invocation.Pointer,
	}, d.Arguments)

	result, err := d.Call("root")
	require.NoError(t, err)
	assert.Equal(t, uintptr(0x77), outer)
	assert.Equal(t, native.Pointer(0x51), result.Inner)
	assert.Equal(t, native.Pointer(0x52), result.Pointer)
}

func TestFloatingPointAndStructs(t *testing.T) {
	f := newFixture(t)

	var width, height float64
	origin := invocation.NewStructValue(8)
	origin.SetFloat32(0, 1.5)
	origin.SetFloat32(4, -2)

	panel := f.bridge.NewObject("panel")
	ptr := panel.Implement(metadatatest.IPanelID,
		func(args []uintptr) native.HRESULT {
			width = math.Float64frombits(uint64(args[1]))
			height = math.Float64frombits(uint64(args[2]))
			return native.S_OK
		},
		func(args []uintptr) native.HRESULT {
			nativetest.WriteBytes(args[1], origin.Bytes())
			return native.S_OK
		})

	arrange, err := f.binder.Build(f.method(t, f.widgets.PanelArrange), ptr)
	require.NoError(t, err)
	assert.Equal(t, []invocation.ArgumentKind{invocation.Pointer, invocation.Double, invocation.Double}, arrange.Arguments)

	_, err = arrange.Call(1.5, 2)
	require.NoError(t, err)
	assert.Equal(t, 1.5, width)
	assert.Equal(t, 2.0, height)

	getOrigin, err := f.binder.Build(f.member(t, "Sample.Widgets.Panel", "Origin"), ptr)
	require.NoError(t, err)
	assert.Equal(t, 7, getOrigin.Slot)
	assert.Equal(t, invocation.ReturnOutPointer, getOrigin.Convention)
	assert.Equal(t, invocation.Layout{Size: 8, Align: 4}, getOrigin.ReturnLayout)

	result, err := getOrigin.Call()
	require.NoError(t, err)
	point, ok := result.Value.(*invocation.StructValue)
	require.True(t, ok)
	assert.Equal(t, float32(1.5), point.Float32(0))
	assert.Equal(t, float32(-2), point.Float32(4))
}

func TestExplicitInterfaceID(t *testing.T) {
	f := newFixture(t)

	widget := f.bridge.NewObject("widget")
	ptr := widget.Implement(metadatatest.IWidgetID, succeed, succeed, succeed, func(args []uintptr) native.HRESULT {
		return native.E_FAIL
	})

	d, err := f.binder.Build(f.method(t, f.widgets.WidgetDescribe), ptr, invocation.WithInterfaceID(metadatatest.IWidgetID, 3))
	require.NoError(t, err)
	assert.Equal(t, 9, d.Slot)

	result, err := d.Call()
	assert.ErrorIs(t, err, errors.ErrNativeCallFailure)
	assert.Equal(t, native.E_FAIL, result.Status)
	assert.Nil(t, result.Value)
}

func TestBuildErrors(t *testing.T) {
	f := newFixture(t)

	widget := f.bridge.NewObject("widget")
	ptr := widget.Implement(metadatatest.IWidgetID)

	class, err := f.resolver.Resolve("Sample.Widgets.Widget")
	require.NoError(t, err)

	tests := []struct {
		name   string
		member declarations.Declaration
		opts   []invocation.Option
		want   error
	}{
		{"interface not implemented", f.method(t, f.widgets.WidgetClose), nil, errors.ErrNativeCallFailure},
		{"setter on a method", f.method(t, f.widgets.WidgetResize), []invocation.Option{invocation.WithSetter()}, errors.ErrInvariantViolation},
		{"not callable", class, nil, errors.ErrInvariantViolation},
		{"no declaring interface", f.method(t, f.widgets.WidgetOrphan), nil, errors.ErrNoMatchingFactoryMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.binder.Build(tt.member, ptr, tt.opts...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, 1, widget.Refs(), "failed binds hold no reference")
}

func TestCallErrors(t *testing.T) {
	f := newFixture(t)

	widget := f.bridge.NewObject("widget")
	ptr := widget.Implement(metadatatest.IWidgetID, succeed, succeed, succeed)

	d, err := f.binder.Build(f.method(t, f.widgets.WidgetResize), ptr)
	require.NoError(t, err)
	defer d.Close()

	tests := []struct {
		name string
		args []any
	}{
		{"too few arguments", []any{1}},
		{"too many arguments", []any{1, 2, 3}},
		{"out of range", []any{int64(1) << 40, 0}},
		{"unsigned out of range", []any{uint32(math.MaxUint32), 0}},
		{"not an integer", []any{"wide", 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Call(tt.args...)
			assert.ErrorIs(t, err, errors.ErrInvariantViolation)
		})
	}
	assert.Empty(t, f.bridge.Calls())

	missing, err := f.binder.Build(f.method(t, f.widgets.WidgetDescribe), ptr)
	require.NoError(t, err)
	_, err = missing.Call()
	assert.ErrorIs(t, err, errors.ErrNativeCallFailure)
}

func TestStructValue(t *testing.T) {
	value := invocation.NewStructValue(12)
	value.SetInt32(0, -7)
	value.SetFloat64(4, 0.25)

	assert.Equal(t, 12, value.Size())
	assert.Len(t, value.Bytes(), 12)
	assert.Equal(t, int32(-7), value.Int32(0))
	assert.Equal(t, 0.25, value.Float64(4))

	copied := invocation.StructFromBytes(value.Bytes())
	assert.Equal(t, value.Bytes(), copied.Bytes())
	assert.NotEqual(t, value.Address(), copied.Address())
}

func TestStringReleaseFailuresAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	invocation.SetLogger(zap.New(core))
	t.Cleanup(func() { invocation.SetLogger(zap.NewNop()) })

	f := newFixture(t)
	widget := f.bridge.NewObject("widget")
	ptr := widget.Implement(metadatatest.IWidgetID,
		func(args []uintptr) native.HRESULT {
			// a string the bridge never created
			nativetest.WritePointer(args[1], native.Pointer(0xdead))
			return native.S_OK
		},
		func(args []uintptr) native.HRESULT {
			// the callee frees a string it does not own
			if err := f.bridge.DeleteString(native.Pointer(args[1])); err != nil {
				return native.E_FAIL
			}
			return native.S_OK
		})
	name := f.member(t, "Sample.Widgets.Widget", "Name")

	tests := []struct {
		name string
		call func(t *testing.T) error
	}{
		{"returned string", func(t *testing.T) error {
			getter, err := f.binder.Build(name, ptr)
			require.NoError(t, err)
			defer getter.Close()
			_, err = getter.Call()
			return err
		}},
		{"argument string", func(t *testing.T) error {
			setter, err := f.binder.Build(name, ptr, invocation.WithSetter())
			require.NoError(t, err)
			defer setter.Close()
			_, err = setter.Call("renamed")
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs.TakeAll()
			require.NoError(t, tt.call(t), "a failed release does not fail the call")

			released := logs.FilterMessage("releasing string failed").All()
			require.Len(t, released, 1)
			assert.Equal(t, zapcore.DebugLevel, released[0].Level)
			assert.Contains(t, released[0].ContextMap()["error"], "hresult=0x80070057")
		})
	}
}

func TestEnumArguments(t *testing.T) {
	foundation := metadatatest.NewFoundation()
	widgets := metadatatest.NewWidgets()
	paint := widgets.Store.Method(widgets.IWidgetStatics, "Paint", metadatatest.InterfaceMethod,
		metadatatest.Sig(metadatatest.Void, metadata.ValueTypeOf(widgets.Color), metadata.ClassType(widgets.Widget)),
		"color", "target")
	index := metadatatest.Index(widgets.Store, foundation.Store)
	t.Cleanup(func() { _ = index.Close() })

	location, err := index.Locate("Sample.Widgets.IWidgetStatics")
	require.NoError(t, err)
	resolver := declarations.NewResolver(index)
	bridge := nativetest.New()
	binder := invocation.NewBinder(resolver, identity.NewBuilder(resolver), bridge)

	var painted []uintptr
	statics := bridge.NewObject("statics")
	ptr := statics.Implement(metadatatest.IWidgetStaticsID, succeed, succeed,
		func(args []uintptr) native.HRESULT {
			painted = append([]uintptr(nil), args[1:]...)
			return native.S_OK
		})

	method, err := resolver.MakeMethod(location.Scope, paint)
	require.NoError(t, err)
	d, err := binder.Build(method, ptr)
	require.NoError(t, err)
	defer d.Close()
	assert.Equal(t, 8, d.Slot)
	assert.Equal(t, []invocation.ArgumentKind{invocation.Pointer, invocation.Pointer, invocation.Pointer}, d.Arguments)

	tests := []struct {
		name string
		args []any
		want []uintptr
		err  error
	}{
		{"enum value", []any{2, nil}, []uintptr{2, 0}, nil},
		{"negative enum value", []any{int32(-1), nil}, []uintptr{math.MaxUint32, 0}, nil},
		{"object pointer", []any{int64(1), native.Pointer(0x40)}, []uintptr{1, 0x40}, nil},
		{"enum out of range", []any{int64(1) << 40, nil}, nil, errors.ErrInvariantViolation},
		{"enum as string", []any{"Blue", nil}, nil, errors.ErrInvariantViolation},
		{"integer for an object", []any{1, 5}, nil, errors.ErrInvariantViolation},
		{"pointer for an enum", []any{native.Pointer(0x40), nil}, nil, errors.ErrInvariantViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			painted = nil
			_, err := d.Call(tt.args...)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Nil(t, painted)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, painted)
		})
	}
}
