package invocation

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gowinrt/internal/declarations"
	"gowinrt/internal/errors"
	"gowinrt/internal/identity"
	"gowinrt/internal/native"
)

const asyncPrefix = "Windows.Foundation.IAsync"

// Binder builds call descriptors for resolved members
type Binder struct {
	resolver *declarations.Resolver
	ids      *identity.Builder
	bridge   native.Bridge
}

func NewBinder(resolver *declarations.Resolver, ids *identity.Builder, bridge native.Bridge) *Binder {
	return &Binder{resolver: resolver, ids: ids, bridge: bridge}
}

type options struct {
	setter      bool
	interfaceID *uuid.UUID
	ordinal     int
	instance    *declarations.GenericInterfaceInstance
	outer       native.Pointer
}

type Option func(*options)

// WithSetter binds a property's setter instead of its getter
func WithSetter() Option {
	return func(o *options) {
		o.setter = true
	}
}

// WithInterfaceID skips interface resolution for a member whose interface and ordinal
// are already known
func WithInterfaceID(iid uuid.UUID, ordinal int) Option {
	return func(o *options) {
		o.interfaceID = &iid
		o.ordinal = ordinal
	}
}

// WithGenericInstance calls a member of an open generic interface through one of its
// instantiations
func WithGenericInstance(instance *declarations.GenericInterfaceInstance) Option {
	return func(o *options) {
		o.instance = instance
	}
}

// WithOuter passes the controlling object of a composed instance
func WithOuter(outer native.Pointer) Option {
	return func(o *options) {
		o.outer = outer
	}
}

// target is the interface a member is called through
type target struct {
	iid        uuid.UUID
	ordinal    int
	via        declarations.FactoryKind
	substitute func(string) string
}

func identityName(name string) string {
	return name
}

// Build binds member to ptr. ptr is an instance for instance members and an activation
// factory for static members and initializers. The returned descriptor holds its own
// reference to the queried interface.
func (b *Binder) Build(member declarations.Declaration, ptr native.Pointer, opts ...Option) (*Descriptor, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	method, err := memberMethod(member, o.setter)
	if err != nil {
		return nil, err
	}

	t, err := b.target(method, o)
	if err != nil {
		return nil, err
	}

	parameters := method.Parameters()
	d := &Descriptor{
		Name:        method.FullName(),
		InterfaceID: t.iid,
		Ordinal:     t.ordinal,
		Slot:        slotFor(t.ordinal),
		Arguments:   make([]ArgumentKind, 0, len(parameters)+4),
		bridge:      b.bridge,
		parameters:  len(parameters),
		byRef:       make([]bool, len(parameters)),
		enums:       make([]ArgumentKind, len(parameters)),
		outer:       o.outer,
	}

	d.Arguments = append(d.Arguments, Pointer)
	for i, parameter := range parameters {
		typeName := t.substitute(parameter.TypeName())
		kind := KindOf(typeName)
		d.Arguments = append(d.Arguments, kind)
		d.byRef[i] = parameter.Type().IsByRef()
		if kind == Pointer && !d.byRef[i] {
			if d.enums[i], err = b.enumParameter(typeName); err != nil {
				return nil, err
			}
		}
	}

	switch {
	case method.IsInitializer():
		d.Return = Pointer
		d.Convention = ReturnOutPointer
		d.ReturnLayout = Layout{pointerSize, pointerSize}
		if t.via == declarations.FactoryComposable {
			d.Composable = true
			d.Arguments = append(d.Arguments, Pointer, Pointer)
		}
		d.Arguments = append(d.Arguments, Pointer)
	case !method.IsVoid():
		if err := b.bindReturn(d, t.substitute(method.ReturnTypeName())); err != nil {
			return nil, err
		}
		d.Arguments = append(d.Arguments, Pointer)
	}

	bound, err := b.bridge.QueryInterface(ptr, t.iid)
	if err != nil {
		return nil, errors.New(errors.PhaseBind, errors.KindNativeCallFailure).
			Name(method.FullName()).
			Detail("interface not supported").
			Context("iid", t.iid.String()).
			Cause(err).
			Build()
	}
	d.Pointer = bound

	Logger().Debug("bound member",
		zap.String("member", d.Name),
		zap.Stringer("iid", d.InterfaceID),
		zap.Int("slot", d.Slot),
		zap.Stringer("return", d.Convention))
	return d, nil
}

func memberMethod(member declarations.Declaration, setter bool) (*declarations.Method, error) {
	switch m := member.(type) {
	case *declarations.Method:
		if setter {
			return nil, errors.Invariant(errors.PhaseBind, m.FullName(), "only properties have setters")
		}
		return m, nil
	case *declarations.Property:
		accessor := m.Getter()
		if setter {
			accessor = m.Setter()
		}
		if accessor == nil {
			return nil, errors.Invariant(errors.PhaseBind, m.FullName(), "property has no matching accessor")
		}
		return accessor, nil
	}
	return nil, errors.Invariant(errors.PhaseBind, member.FullName(), "%s is not callable", member.Kind())
}

func (b *Binder) target(method *declarations.Method, o options) (target, error) {
	t := target{substitute: identityName, via: declarations.FactoryInstance}

	switch {
	case o.interfaceID != nil:
		t.iid = *o.interfaceID
		t.ordinal = o.ordinal
		if method.IsInitializer() {
			t.via = declarations.FactoryActivatable
		}
		return t, nil
	case o.instance != nil:
		declaring, err := b.resolver.FindDeclaringInterface(method)
		if err != nil {
			return target{}, err
		}
		if declaring.Interface == nil || declaring.Interface.FullName() != o.instance.Open().FullName() {
			return target{}, errors.Invariant(errors.PhaseBind, method.FullName(),
				"not a member of %s", o.instance.FullName())
		}
		t.iid, err = b.ids.GenerateID(o.instance)
		if err != nil {
			return target{}, err
		}
		t.ordinal = declaring.Ordinal
		t.substitute = o.instance.SubstituteGenericArguments
		return t, nil
	}

	declaring, err := b.resolver.FindDeclaringInterface(method)
	if err != nil {
		return target{}, err
	}
	t.ordinal = declaring.Ordinal
	t.via = declaring.Via
	if declaring.Interface == nil {
		t.iid = native.IActivationFactoryID
		return t, nil
	}
	if instance, ok := declaring.Interface.(*declarations.GenericInterfaceInstance); ok {
		t.substitute = instance.SubstituteGenericArguments
	}
	t.iid, err = b.ids.GenerateID(declaring.Interface)
	if err != nil {
		return target{}, err
	}
	return t, nil
}

func (b *Binder) bindReturn(d *Descriptor, returnName string) error {
	d.Return = KindOf(returnName)
	d.Convention = conventionFor(d.Return)
	d.Async = strings.HasPrefix(returnName, asyncPrefix)
	d.ReturnLayout = Layout{pointerSize, pointerSize}
	if layout, found := primitiveLayouts[returnName]; found {
		d.ReturnLayout = layout
	}

	if d.Return != Pointer {
		return nil
	}
	if returnName == "Guid" {
		d.structValue = true
		return nil
	}
	if !isNamedValueTypeCandidate(returnName) {
		return nil
	}

	declaration, err := b.resolver.Resolve(returnName)
	if err != nil {
		return err
	}
	switch v := declaration.(type) {
	case *declarations.Struct:
		layout, err := b.structLayout(v)
		if err != nil {
			return err
		}
		d.ReturnLayout = layout
		d.structValue = true
	case *declarations.Enum:
		d.enumValue = enumKind(v)
		d.ReturnLayout = primitiveLayouts[d.enumValue.String()]
	}
	return nil
}

// enumParameter is the integer kind an enum parameter is passed as, or Void for anything else
func (b *Binder) enumParameter(typeName string) (ArgumentKind, error) {
	if typeName == "Guid" || !isNamedValueTypeCandidate(typeName) {
		return Void, nil
	}
	declaration, err := b.resolver.Resolve(typeName)
	if err != nil {
		return Void, err
	}
	if enum, ok := declaration.(*declarations.Enum); ok {
		return enumKind(enum), nil
	}
	return Void, nil
}

// slotFor places an interface method after the IUnknown and IInspectable slots
func slotFor(ordinal int) int {
	return native.InspectableVtableSize + ordinal
}
