package declarations

import (
	"github.com/google/uuid"

	"gowinrt/internal/errors"
	"gowinrt/internal/metadata"
)

const invokeName = "Invoke"

type Delegate struct {
	base
	id     uuid.UUID
	invoke *Method
}

func newDelegate(kind Kind, scope *metadata.Scope, token metadata.Token) (*Delegate, error) {
	props, err := scope.TypeDefProps(token)
	if err != nil {
		return nil, err
	}
	fullName := props.FullName()

	id, err := typeID(scope, token, fullName)
	if err != nil {
		return nil, err
	}
	invokeToken, err := scope.FindMethod(token, invokeName, nil)
	if err != nil {
		return nil, errors.New(errors.PhaseResolve, errors.KindInvariantViolation).
			Name(fullName).
			Detail("delegate has no Invoke method").
			Cause(err).
			Build()
	}
	invoke, err := newMethod(scope, invokeToken)
	if err != nil {
		return nil, err
	}

	return &Delegate{
		base: base{
			kind:     kind,
			scope:    scope,
			token:    token,
			name:     SimpleName(fullName),
			fullName: fullName,
			exported: metadata.IsTypeExported(props.Flags),
		},
		id:     id,
		invoke: invoke,
	}, nil
}

func (d *Delegate) ID() uuid.UUID {
	return d.id
}

// Invoke is the delegate's Invoke method; its parameters are the callback arguments
func (d *Delegate) Invoke() *Method {
	return d.invoke
}

type GenericDelegate struct {
	Delegate
	parameters []string
}

func newGenericDelegate(scope *metadata.Scope, token metadata.Token) (*GenericDelegate, error) {
	delegate, err := newDelegate(KindGenericDelegate, scope, token)
	if err != nil {
		return nil, err
	}
	parameters, err := genericParameterNames(scope, token)
	if err != nil {
		return nil, err
	}
	return &GenericDelegate{Delegate: *delegate, parameters: parameters}, nil
}

func (g *GenericDelegate) GenericParameterNames() []string {
	return g.parameters
}

func (g *GenericDelegate) NumberOfGenericParameters() int {
	return genericArity(g.fullName, len(g.parameters))
}

// GenericDelegateInstance closes a GenericDelegate over concrete arguments
type GenericDelegateInstance struct {
	base
	genericArguments
	open *GenericDelegate
}

func (g *GenericDelegateInstance) Open() *GenericDelegate {
	return g.open
}

// Invoke is the open delegate's Invoke method. Its Var!N types are relative to the open declaration.
func (g *GenericDelegateInstance) Invoke() *Method {
	return g.open.invoke
}
