package identity

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gowinrt/internal/declarations"
	"gowinrt/internal/errors"
)

// Builder generates interface ids for declarations, describing the named parts of a
// generic instance through the declaration graph.
type Builder struct {
	resolver *declarations.Resolver
}

func NewBuilder(resolver *declarations.Resolver) *Builder {
	return &Builder{resolver: resolver}
}

// GenerateID returns the IID through which a declaration is called. Instances of generic
// interfaces and delegates are hashed; plain interfaces and delegates carry their own id,
// and classes answer with their default interface.
func (b *Builder) GenerateID(declaration declarations.Declaration) (uuid.UUID, error) {
	switch d := declaration.(type) {
	case *declarations.Interface:
		return d.ID(), nil
	case *declarations.Delegate:
		return d.ID(), nil
	case *declarations.Class:
		if d.DefaultInterface() == nil {
			return uuid.Nil, errors.Invariant(errors.PhaseBind, d.FullName(), "static class has no interface id")
		}
		return b.GenerateID(d.DefaultInterface())
	case *declarations.GenericInterfaceInstance, *declarations.GenericDelegateInstance:
		return b.instanceID(d.FullName())
	}
	return uuid.Nil, errors.Invariant(errors.PhaseBind, declaration.FullName(), "%s has no interface id", declaration.Kind())
}

func (b *Builder) instanceID(fullName string) (uuid.UUID, error) {
	parts, err := ParseTypeName(fullName)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := ParameterizedTypeIdentity(parts, b)
	if err != nil {
		return uuid.Nil, err
	}
	Logger().Debug("generated parameterized interface id",
		zap.String("type", fullName),
		zap.Stringer("iid", id))
	return id, nil
}

// Locate describes a named type through the declaration graph
func (b *Builder) Locate(name string, builder MetaDataBuilder) error {
	declaration, err := b.resolver.Resolve(name)
	if err != nil {
		return err
	}

	switch d := declaration.(type) {
	case *declarations.Class:
		switch defaultInterface := d.DefaultInterface().(type) {
		case *declarations.Interface:
			builder.SetRuntimeClassSimpleDefault(d.FullName(), defaultInterface.FullName(), defaultInterface.ID())
		case *declarations.GenericInterfaceInstance:
			parts, err := ParseTypeName(defaultInterface.FullName())
			if err != nil {
				return err
			}
			builder.SetRuntimeClassParameterizedDefault(d.FullName(), parts)
		default:
			return errors.Invariant(errors.PhaseBind, d.FullName(), "class has no default interface")
		}

	case *declarations.Interface:
		builder.SetWinRtInterface(d.ID())

	case *declarations.GenericInterface:
		builder.SetParameterizedInterface(d.ID(), d.NumberOfGenericParameters())

	case *declarations.Enum:
		builder.SetEnum(d.FullName(), d.UnderlyingType().Element.String())

	case *declarations.Struct:
		fields := make([]string, 0, len(d.Fields()))
		for _, field := range d.Fields() {
			fields = append(fields, field.TypeName())
		}
		builder.SetStruct(d.FullName(), fields)

	case *declarations.Delegate:
		builder.SetDelegate(d.ID())

	case *declarations.GenericDelegate:
		builder.SetParameterizedDelegate(d.ID(), d.NumberOfGenericParameters())

	default:
		return errors.Invariant(errors.PhaseBind, name, "cannot describe %s", declaration.Kind())
	}
	return nil
}
