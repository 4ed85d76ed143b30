package identity

import (
	"github.com/google/uuid"
)

// MetaDataBuilder receives the description of one named type from a MetaDataLocator.
// Exactly one setter is called per Locate.
type MetaDataBuilder interface {
	SetWinRtInterface(iid uuid.UUID)
	SetDelegate(iid uuid.UUID)
	SetRuntimeClassSimpleDefault(name, defaultInterfaceName string, defaultInterfaceIID uuid.UUID)
	SetRuntimeClassParameterizedDefault(name string, defaultInterfaceNameElements []string)
	SetStruct(name string, fieldTypeNames []string)
	SetEnum(name, baseType string)
	SetParameterizedInterface(piid uuid.UUID, numArgs int)
	SetParameterizedDelegate(piid uuid.UUID, numArgs int)
}

// MetaDataLocator describes named types to the identity primitive
type MetaDataLocator interface {
	Locate(name string, builder MetaDataBuilder) error
}

// LocatorFunc adapts a function to MetaDataLocator
type LocatorFunc func(name string, builder MetaDataBuilder) error

func (f LocatorFunc) Locate(name string, builder MetaDataBuilder) error {
	return f(name, builder)
}

type shapeKind int

const (
	shapeUnset shapeKind = iota
	shapeInterface
	shapeDelegate
	shapeClass
	shapeParameterizedClass
	shapeStruct
	shapeEnum
	shapeParameterizedInterface
	shapeParameterizedDelegate
)

// shape is what a locator reported for one name
type shape struct {
	kind     shapeKind
	id       uuid.UUID
	name     string
	numArgs  int
	elements []string
	baseType string
}

func (s *shape) SetWinRtInterface(iid uuid.UUID) {
	*s = shape{kind: shapeInterface, id: iid}
}

func (s *shape) SetDelegate(iid uuid.UUID) {
	*s = shape{kind: shapeDelegate, id: iid}
}

func (s *shape) SetRuntimeClassSimpleDefault(name, defaultInterfaceName string, defaultInterfaceIID uuid.UUID) {
	*s = shape{kind: shapeClass, name: name, id: defaultInterfaceIID, elements: []string{defaultInterfaceName}}
}

func (s *shape) SetRuntimeClassParameterizedDefault(name string, defaultInterfaceNameElements []string) {
	*s = shape{kind: shapeParameterizedClass, name: name, elements: defaultInterfaceNameElements}
}

func (s *shape) SetStruct(name string, fieldTypeNames []string) {
	*s = shape{kind: shapeStruct, name: name, elements: fieldTypeNames}
}

func (s *shape) SetEnum(name, baseType string) {
	*s = shape{kind: shapeEnum, name: name, baseType: baseType}
}

func (s *shape) SetParameterizedInterface(piid uuid.UUID, numArgs int) {
	*s = shape{kind: shapeParameterizedInterface, id: piid, numArgs: numArgs}
}

func (s *shape) SetParameterizedDelegate(piid uuid.UUID, numArgs int) {
	*s = shape{kind: shapeParameterizedDelegate, id: piid, numArgs: numArgs}
}
