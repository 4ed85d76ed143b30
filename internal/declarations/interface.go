package declarations

import (
	"github.com/google/uuid"

	"gowinrt/internal/errors"
	"gowinrt/internal/metadata"
)

type Interface struct {
	BaseClass
	id uuid.UUID
}

func (r *Resolver) newInterface(kind Kind, scope *metadata.Scope, token metadata.Token) (*Interface, error) {
	baseClass, err := r.newBaseClass(kind, scope, token)
	if err != nil {
		return nil, err
	}
	id, err := typeID(scope, token, baseClass.fullName)
	if err != nil {
		return nil, err
	}
	return &Interface{BaseClass: baseClass, id: id}, nil
}

// ID is the interface IID from its GuidAttribute
func (i *Interface) ID() uuid.UUID {
	return i.id
}

func typeID(scope *metadata.Scope, token metadata.Token, fullName string) (uuid.UUID, error) {
	id, found, err := scope.GUIDAttributeValue(token)
	if err != nil {
		return uuid.Nil, err
	}
	if !found {
		return uuid.Nil, errors.Invariant(errors.PhaseResolve, fullName, "type has no %s", metadata.GuidAttribute)
	}
	return id, nil
}

// GenericInterface is an open parameterized interface such as IVector`1
type GenericInterface struct {
	Interface
	parameters []string
}

func (r *Resolver) newGenericInterface(scope *metadata.Scope, token metadata.Token) (*GenericInterface, error) {
	iface, err := r.newInterface(KindGenericInterface, scope, token)
	if err != nil {
		return nil, err
	}
	parameters, err := genericParameterNames(scope, token)
	if err != nil {
		return nil, err
	}
	return &GenericInterface{Interface: *iface, parameters: parameters}, nil
}

func (g *GenericInterface) GenericParameterNames() []string {
	return g.parameters
}

func (g *GenericInterface) NumberOfGenericParameters() int {
	return genericArity(g.fullName, len(g.parameters))
}

// GenericInterfaceInstance closes a GenericInterface over concrete arguments. Scope and
// Token refer to the instantiating TypeSpec; the members are those of the open interface.
type GenericInterfaceInstance struct {
	BaseClass
	genericArguments
	open *GenericInterface
}

func (g *GenericInterfaceInstance) Open() *GenericInterface {
	return g.open
}
