package declarations

import (
	"gowinrt/internal/metadata"
)

type Event struct {
	base
	typeName string
	delegate Declaration
	add      *Method
	remove   *Method
}

func (r *Resolver) newEvent(scope *metadata.Scope, token metadata.Token, ownerName string) (*Event, error) {
	props, err := scope.EventProps(token)
	if err != nil {
		return nil, err
	}
	typeName, err := scope.TypeName(props.EventType)
	if err != nil {
		return nil, err
	}

	event := &Event{
		base: base{
			kind:     KindEvent,
			scope:    scope,
			token:    token,
			name:     props.Name,
			fullName: memberName(ownerName, props.Name),
			exported: props.Flags&metadata.EventSpecialName == 0,
		},
		typeName: typeName,
	}

	if event.delegate, err = r.MakeDelegateDeclaration(scope, props.EventType); err != nil {
		return nil, err
	}
	if !props.AddOn.IsNil() {
		if event.add, err = newMethod(scope, props.AddOn); err != nil {
			return nil, err
		}
	}
	if !props.RemoveOn.IsNil() {
		if event.remove, err = newMethod(scope, props.RemoveOn); err != nil {
			return nil, err
		}
	}
	return event, nil
}

// TypeName is the full name of the handler delegate type
func (e *Event) TypeName() string {
	return e.typeName
}

// Delegate is a *Delegate, *GenericDelegate or *GenericDelegateInstance
func (e *Event) Delegate() Declaration {
	return e.delegate
}

func (e *Event) AddMethod() *Method {
	return e.add
}

func (e *Event) RemoveMethod() *Method {
	return e.remove
}

func (e *Event) IsStatic() bool {
	return e.add != nil && e.add.IsStatic()
}
