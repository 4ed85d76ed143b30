package metadatatest

import (
	"github.com/google/uuid"

	"gowinrt/internal/metadata"
)

// Method flag combinations as emitted by the WinMD compiler
const (
	InterfaceMethod   uint32 = 0x05c6 // public virtual hidebysig newslot abstract
	InterfaceAccessor uint32 = 0x0dc6 // InterfaceMethod + specialname
	ClassMethod       uint32 = 0x01e6 // public final virtual hidebysig newslot
	ClassAccessor     uint32 = 0x09e6 // ClassMethod + specialname
	StaticMethod      uint32 = 0x0096 // public static hidebysig
	StaticAccessor    uint32 = 0x0896 // StaticMethod + specialname
	Constructor       uint32 = 0x1880 // specialname rtspecialname hidebysig, no access bits
)

var (
	I4      = metadata.Primitive(metadata.ElementI4)
	U4      = metadata.Primitive(metadata.ElementU4)
	I8      = metadata.Primitive(metadata.ElementI8)
	R4      = metadata.Primitive(metadata.ElementR4)
	R8      = metadata.Primitive(metadata.ElementR8)
	Boolean = metadata.Primitive(metadata.ElementBoolean)
	String  = metadata.Primitive(metadata.ElementString)
	Object  = metadata.Primitive(metadata.ElementObject)
	Void    = metadata.Primitive(metadata.ElementVoid)
)

// Sig builds an instance method signature
func Sig(ret metadata.TypeDescriptor, params ...metadata.TypeDescriptor) metadata.MethodSignature {
	return metadata.MethodSignature{CallingConvention: metadata.CallingConventionHasThis, Return: ret, Params: params}
}

// StaticSig builds a static method signature
func StaticSig(ret metadata.TypeDescriptor, params ...metadata.TypeDescriptor) metadata.MethodSignature {
	return metadata.MethodSignature{CallingConvention: metadata.CallingConventionDefault, Return: ret, Params: params}
}

// Well-known interface ids used by the sample
var (
	IClosableID       = uuid.MustParse("30d5a829-7fa4-4026-83bb-d75bae4ea99e")
	IReferenceID      = uuid.MustParse("61c17706-2d65-11e0-9ae8-d48564015472")
	TypedHandlerID    = uuid.MustParse("9de1c534-6ae1-11e0-84e1-18a905bcc53f")
	IWidgetID         = uuid.MustParse("b0d9a2a4-6c1e-4c55-9a2e-1b2f7f4f5a01")
	IWidgetFactoryID  = uuid.MustParse("b0d9a2a4-6c1e-4c55-9a2e-1b2f7f4f5a02")
	IWidgetStaticsID  = uuid.MustParse("b0d9a2a4-6c1e-4c55-9a2e-1b2f7f4f5a03")
	IBoxID            = uuid.MustParse("b0d9a2a4-6c1e-4c55-9a2e-1b2f7f4f5a04")
	IPanelID          = uuid.MustParse("b0d9a2a4-6c1e-4c55-9a2e-1b2f7f4f5a05")
	IPanelFactoryID   = uuid.MustParse("b0d9a2a4-6c1e-4c55-9a2e-1b2f7f4f5a06")
	ChangedHandlerID  = uuid.MustParse("b0d9a2a4-6c1e-4c55-9a2e-1b2f7f4f5a07")
	IPanelOverridesID = uuid.MustParse("b0d9a2a4-6c1e-4c55-9a2e-1b2f7f4f5a08")
)

// Foundation is the tokens of the Sample.Foundation scope
type Foundation struct {
	Store *Store

	IClosable      metadata.Token
	IClosableClose metadata.Token

	IReference         metadata.Token
	IReferenceGetValue metadata.Token

	TypedHandler metadata.Token
}

// Widgets is the tokens of the Sample.Widgets scope
type Widgets struct {
	Store *Store

	Color  metadata.Token
	Point  metadata.Token
	Legacy metadata.Token

	ChangedHandler metadata.Token

	IWidget         metadata.Token
	IWidgetGetName  metadata.Token
	IWidgetPutName  metadata.Token
	IWidgetResize   metadata.Token
	IWidgetDescribe metadata.Token
	IWidgetAdd      metadata.Token
	IWidgetRemove   metadata.Token
	IWidgetName     metadata.Token
	IWidgetChanged  metadata.Token
	IWidgetFactory  metadata.Token
	IWidgetStatics  metadata.Token
	IBox            metadata.Token
	IBoxGetValue    metadata.Token
	IBoxContains    metadata.Token
	IBoxOfInt32     metadata.Token
	HandlerOfWidget metadata.Token
	IPanel          metadata.Token
	IPanelArrange   metadata.Token
	IPanelGetOrigin metadata.Token
	IPanelFactory   metadata.Token
	IPanelOverrides metadata.Token

	Widget              metadata.Token
	WidgetDefaultCtor   metadata.Token
	WidgetNameCtor      metadata.Token
	WidgetPublicCtor    metadata.Token
	WidgetGetName       metadata.Token
	WidgetPutName       metadata.Token
	WidgetResize        metadata.Token
	WidgetDescribe      metadata.Token
	WidgetAddChanged    metadata.Token
	WidgetRemoveChanged metadata.Token
	WidgetClose         metadata.Token
	WidgetGetValue      metadata.Token
	WidgetContains      metadata.Token
	WidgetParse         metadata.Token
	WidgetGetDefault    metadata.Token
	WidgetOrphan        metadata.Token
	WidgetNameProperty  metadata.Token
	WidgetDefaultColor  metadata.Token
	WidgetChanged       metadata.Token
	WidgetDefaultImpl   metadata.Token
	WidgetHidden        metadata.Token
	WidgetHelper        metadata.Token

	Panel            metadata.Token
	PanelDefaultCtor metadata.Token
	PanelNameCtor    metadata.Token
	PanelCountCtor   metadata.Token
	PanelArrange     metadata.Token
	PanelGetOrigin   metadata.Token
}

// NewFoundation builds the Sample.Foundation scope: an external interface, a generic
// interface and a generic delegate.
func NewFoundation() *Foundation {
	s := NewStore("Sample.Foundation.winmd")
	f := &Foundation{Store: s}

	f.IClosable = s.Interface("Sample.Foundation", "IClosable", IClosableID)
	f.IClosableClose = s.Method(f.IClosable, "Close", InterfaceMethod, Sig(Void))

	f.IReference = s.Interface("Sample.Foundation", "IReference`1", IReferenceID)
	s.GenericParam(f.IReference, 0, "T")
	f.IReferenceGetValue = s.Method(f.IReference, "get_Value", InterfaceAccessor, Sig(metadata.GenericVar(0)))
	s.Property(f.IReference, "Value", metadata.GenericVar(0), false, f.IReferenceGetValue, 0)

	f.TypedHandler = s.Delegate("Sample.Foundation", "TypedHandler`2", TypedHandlerID)
	s.GenericParam(f.TypedHandler, 0, "TSender")
	s.GenericParam(f.TypedHandler, 1, "TResult")
	s.Method(f.TypedHandler, ".ctor", Constructor|metadata.MethodPublic, Sig(Void, Object, metadata.Primitive(metadata.ElementI8)), "object", "method")
	s.Method(f.TypedHandler, "Invoke", ClassMethod, Sig(Void, metadata.GenericVar(0), metadata.GenericVar(1)), "sender", "args")

	return f
}

// NewWidgets builds the Sample.Widgets scope. It references Sample.Foundation through TypeRefs.
func NewWidgets() *Widgets {
	s := NewStore("Sample.Widgets.winmd")
	w := &Widgets{Store: s}
	ns := "Sample.Widgets"

	w.Color = s.Enum(ns, "Color", metadata.ElementI4,
		EnumMember{"Red", 0}, EnumMember{"Green", 1}, EnumMember{"Blue", 2})
	w.Point = s.Struct(ns, "Point", StructField{"X", R4}, StructField{"Y", R4})
	// Not public, so never exported
	w.Legacy = s.TypeDef(ns, "Legacy", metadata.TypeWindowsRuntime, s.TypeRef("System", "Object"))

	w.ChangedHandler = s.Delegate(ns, "ChangedHandler", ChangedHandlerID)
	s.Method(w.ChangedHandler, ".ctor", Constructor|metadata.MethodPublic, Sig(Void, Object, metadata.Primitive(metadata.ElementI8)), "object", "method")
	s.Method(w.ChangedHandler, "Invoke", ClassMethod, Sig(Void, Object, I4), "sender", "value")

	w.Widget = s.Class(ns, "Widget", true)
	widget := metadata.ClassType(w.Widget)
	color := metadata.ValueTypeOf(w.Color)
	handler := metadata.ClassType(w.ChangedHandler)

	w.IWidget = s.Interface(ns, "IWidget", IWidgetID)
	w.IWidgetGetName = s.Method(w.IWidget, "get_Name", InterfaceAccessor, Sig(String))
	w.IWidgetPutName = s.Method(w.IWidget, "put_Name", InterfaceAccessor, Sig(Void, String), "value")
	w.IWidgetResize = s.Method(w.IWidget, "Resize", InterfaceMethod, Sig(Void, I4, I4), "width", "height")
	w.IWidgetDescribe = s.Method(w.IWidget, "Describe", InterfaceMethod, Sig(String))
	w.IWidgetAdd = s.Method(w.IWidget, "add_Changed", InterfaceAccessor, Sig(I8, handler), "handler")
	w.IWidgetRemove = s.Method(w.IWidget, "remove_Changed", InterfaceAccessor, Sig(Void, I8), "token")
	w.IWidgetName = s.Property(w.IWidget, "Name", String, false, w.IWidgetGetName, w.IWidgetPutName)
	w.IWidgetChanged = s.Event(w.IWidget, "Changed", w.ChangedHandler, w.IWidgetAdd, w.IWidgetRemove)

	w.IWidgetFactory = s.Interface(ns, "IWidgetFactory", IWidgetFactoryID)
	s.Method(w.IWidgetFactory, "CreateWithName", InterfaceMethod, Sig(widget, String), "name")

	w.IWidgetStatics = s.Interface(ns, "IWidgetStatics", IWidgetStaticsID)
	s.Method(w.IWidgetStatics, "Parse", InterfaceMethod, Sig(widget, String), "text")
	s.Method(w.IWidgetStatics, "get_DefaultColor", InterfaceAccessor, Sig(color))

	w.IBox = s.Interface(ns, "IBox`1", IBoxID)
	s.GenericParam(w.IBox, 0, "T")
	w.IBoxGetValue = s.Method(w.IBox, "get_Value", InterfaceAccessor, Sig(metadata.GenericVar(0)))
	w.IBoxContains = s.Method(w.IBox, "Contains", InterfaceMethod, Sig(Boolean, metadata.GenericVar(0)), "value")
	s.Property(w.IBox, "Value", metadata.GenericVar(0), false, w.IBoxGetValue, 0)
	w.IBoxOfInt32 = s.TypeSpec(metadata.GenericInstance(w.IBox, I4))

	closable := s.TypeRef("Sample.Foundation", "IClosable")
	typedHandler := s.TypeRef("Sample.Foundation", "TypedHandler`2")
	w.HandlerOfWidget = s.TypeSpec(metadata.GenericInstance(typedHandler, widget, String))

	// Widget: sealed, default-activatable, factory-activatable, with statics
	w.WidgetDefaultImpl = s.InterfaceImpl(w.Widget, w.IWidget)
	s.DefaultAttribute(w.WidgetDefaultImpl)
	s.InterfaceImpl(w.Widget, closable)
	s.InterfaceImpl(w.Widget, w.IBoxOfInt32)
	s.DefaultActivatableAttribute(w.Widget)
	s.ActivatableAttribute(w.Widget, ns+".IWidgetFactory")
	s.StaticAttribute(w.Widget, ns+".IWidgetStatics")

	w.WidgetDefaultCtor = s.Method(w.Widget, ".ctor", Constructor|metadata.MethodAssem, Sig(Void))
	w.WidgetNameCtor = s.Method(w.Widget, ".ctor", Constructor|metadata.MethodAssem, Sig(Void, String), "name")
	w.WidgetPublicCtor = s.Method(w.Widget, ".ctor", Constructor|metadata.MethodPublic, Sig(Void, I4, I4), "width", "height")
	w.WidgetGetName = s.Method(w.Widget, "get_Name", ClassAccessor, Sig(String))
	w.WidgetPutName = s.Method(w.Widget, "put_Name", ClassAccessor, Sig(Void, String), "value")
	w.WidgetResize = s.Method(w.Widget, "Resize", ClassMethod, Sig(Void, I4, I4), "width", "height")
	w.WidgetDescribe = s.Method(w.Widget, "Describe", ClassMethod, Sig(String))
	w.WidgetAddChanged = s.Method(w.Widget, "add_Changed", ClassAccessor, Sig(I8, handler), "handler")
	w.WidgetRemoveChanged = s.Method(w.Widget, "remove_Changed", ClassAccessor, Sig(Void, I8), "token")
	w.WidgetClose = s.Method(w.Widget, "Close", ClassMethod, Sig(Void))
	w.WidgetGetValue = s.Method(w.Widget, "get_Value", ClassAccessor, Sig(I4))
	w.WidgetContains = s.Method(w.Widget, "Contains", ClassMethod, Sig(Boolean, I4), "value")
	w.WidgetParse = s.Method(w.Widget, "Parse", StaticMethod, StaticSig(widget, String), "text")
	w.WidgetGetDefault = s.Method(w.Widget, "get_DefaultColor", StaticAccessor, StaticSig(color))
	// Public instance method no interface declares
	w.WidgetOrphan = s.Method(w.Widget, "Orphan", ClassMethod, Sig(Void))
	// Private and protected helpers for export filtering
	w.WidgetHidden = s.Method(w.Widget, "Hidden", metadata.MethodPrivate, Sig(Void))
	w.WidgetHelper = s.Method(w.Widget, "Helper", metadata.MethodFamily|metadata.MethodVirtual, Sig(Void))
	s.OverloadAttribute(w.WidgetResize, "ResizeTo")
	s.DefaultOverloadAttribute(w.WidgetResize)

	w.WidgetNameProperty = s.Property(w.Widget, "Name", String, false, w.WidgetGetName, w.WidgetPutName)
	s.Property(w.Widget, "Value", I4, false, w.WidgetGetValue, 0)
	w.WidgetDefaultColor = s.Property(w.Widget, "DefaultColor", color, true, w.WidgetGetDefault, 0)
	w.WidgetChanged = s.Event(w.Widget, "Changed", w.ChangedHandler, w.WidgetAddChanged, w.WidgetRemoveChanged)

	s.MethodImpl(w.Widget, w.WidgetGetName, w.IWidgetGetName)
	s.MethodImpl(w.Widget, w.WidgetPutName, w.IWidgetPutName)
	s.MethodImpl(w.Widget, w.WidgetResize, w.IWidgetResize)
	s.MethodImpl(w.Widget, w.WidgetDescribe, w.IWidgetDescribe)
	s.MethodImpl(w.Widget, w.WidgetAddChanged, w.IWidgetAdd)
	s.MethodImpl(w.Widget, w.WidgetRemoveChanged, w.IWidgetRemove)
	s.MethodImpl(w.Widget, w.WidgetClose, s.MemberRef(closable, "Close", Sig(Void)))
	s.MethodImpl(w.Widget, w.WidgetGetValue, s.MemberRef(w.IBoxOfInt32, "get_Value", Sig(metadata.GenericVar(0))))
	s.MethodImpl(w.Widget, w.WidgetContains, s.MemberRef(w.IBoxOfInt32, "Contains", Sig(Boolean, metadata.GenericVar(0))))

	// Panel: unsealed and composable
	w.Panel = s.Class(ns, "Panel", false)
	panel := metadata.ClassType(w.Panel)
	point := metadata.ValueTypeOf(w.Point)

	w.IPanel = s.Interface(ns, "IPanel", IPanelID)
	w.IPanelArrange = s.Method(w.IPanel, "Arrange", InterfaceMethod, Sig(Void, R8, R8), "width", "height")
	w.IPanelGetOrigin = s.Method(w.IPanel, "get_Origin", InterfaceAccessor, Sig(point))
	s.Property(w.IPanel, "Origin", point, false, w.IPanelGetOrigin, 0)

	w.IPanelOverrides = s.Interface(ns, "IPanelOverrides", IPanelOverridesID)
	s.Method(w.IPanelOverrides, "OnArrange", InterfaceMethod, Sig(Void))

	w.IPanelFactory = s.Interface(ns, "IPanelFactory", IPanelFactoryID)
	s.Method(w.IPanelFactory, "CreateInstance", InterfaceMethod,
		Sig(panel, Object, metadata.ByRefOf(Object)), "baseInterface", "innerInterface")
	s.Method(w.IPanelFactory, "CreateInstanceWithName", InterfaceMethod,
		Sig(panel, String, Object, metadata.ByRefOf(Object)), "name", "baseInterface", "innerInterface")

	impl := s.InterfaceImpl(w.Panel, w.IPanel)
	s.DefaultAttribute(impl)
	s.InterfaceImpl(w.Panel, w.IPanelOverrides)
	s.ComposableAttribute(w.Panel, ns+".IPanelFactory")

	w.PanelDefaultCtor = s.Method(w.Panel, ".ctor", Constructor|metadata.MethodFamily, Sig(Void))
	w.PanelNameCtor = s.Method(w.Panel, ".ctor", Constructor|metadata.MethodFamily, Sig(Void, String), "name")
	w.PanelCountCtor = s.Method(w.Panel, ".ctor", Constructor|metadata.MethodFamily, Sig(Void, I4, I4), "a", "b")
	w.PanelArrange = s.Method(w.Panel, "Arrange", ClassMethod, Sig(Void, R8, R8), "width", "height")
	w.PanelGetOrigin = s.Method(w.Panel, "get_Origin", ClassAccessor, Sig(point))
	s.Property(w.Panel, "Origin", point, false, w.PanelGetOrigin, 0)
	s.MethodImpl(w.Panel, w.PanelArrange, w.IPanelArrange)
	s.MethodImpl(w.Panel, w.PanelGetOrigin, w.IPanelGetOrigin)

	return w
}

// Sample is both scopes indexed by one locator
type Sample struct {
	Foundation *Foundation
	Widgets    *Widgets
	Index      *metadata.ScopeIndex
}

func NewSample() *Sample {
	foundation := NewFoundation()
	widgets := NewWidgets()
	return &Sample{
		Foundation: foundation,
		Widgets:    widgets,
		Index:      Index(widgets.Store, foundation.Store),
	}
}
