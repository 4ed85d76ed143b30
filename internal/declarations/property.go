package declarations

import (
	"gowinrt/internal/metadata"
)

type Property struct {
	base
	desc     metadata.TypeDescriptor
	typeName string
	static   bool
	getter   *Method
	setter   *Method
}

func newProperty(scope *metadata.Scope, token metadata.Token, ownerName string) (*Property, error) {
	props, err := scope.PropertyProps(token)
	if err != nil {
		return nil, err
	}
	sig, err := metadata.DecodePropertySignature(props.Signature)
	if err != nil {
		return nil, err
	}
	typeName, err := metadata.DisplayString(scope, sig.Type)
	if err != nil {
		return nil, err
	}

	property := &Property{
		base: base{
			kind:     KindProperty,
			scope:    scope,
			token:    token,
			name:     props.Name,
			fullName: memberName(ownerName, props.Name),
			exported: props.Flags&metadata.PropertySpecial == 0,
		},
		desc:     sig.Type,
		typeName: typeName,
		static:   !sig.HasThis,
	}

	if !props.Getter.IsNil() {
		if property.getter, err = newMethod(scope, props.Getter); err != nil {
			return nil, err
		}
	}
	if !props.Setter.IsNil() {
		if property.setter, err = newMethod(scope, props.Setter); err != nil {
			return nil, err
		}
	}
	return property, nil
}

func (p *Property) Type() metadata.TypeDescriptor {
	return p.desc
}

func (p *Property) TypeName() string {
	return p.typeName
}

func (p *Property) IsStatic() bool {
	return p.static
}

// Getter is nil for write-only properties
func (p *Property) Getter() *Method {
	return p.getter
}

// Setter is nil for read-only properties
func (p *Property) Setter() *Method {
	return p.setter
}

func (p *Property) IsReadOnly() bool {
	return p.setter == nil
}
