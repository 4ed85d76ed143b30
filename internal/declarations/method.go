package declarations

import (
	"fmt"

	"gowinrt/internal/metadata"
)

const initializerName = ".ctor"

// Parameter is one declared method parameter
type Parameter struct {
	base
	desc     metadata.TypeDescriptor
	typeName string
	flags    uint32
}

func (p *Parameter) Type() metadata.TypeDescriptor {
	return p.desc
}

// TypeName is the display string of the parameter type
func (p *Parameter) TypeName() string {
	return p.typeName
}

// IsOut reports whether the parameter is written by the callee
func (p *Parameter) IsOut() bool {
	return p.desc.IsByRef() || p.flags&metadata.ParamOut != 0
}

// Method is a MethodDef together with its decoded signature
type Method struct {
	base
	owner           metadata.Token
	ownerName       string
	flags           uint32
	signature       []byte
	decoded         metadata.MethodSignature
	parameters      []*Parameter
	returnTypeName  string
	overloadName    string
	defaultOverload bool
}

func newMethod(scope *metadata.Scope, token metadata.Token) (*Method, error) {
	props, err := scope.MethodProps(token)
	if err != nil {
		return nil, err
	}
	ownerName, err := scope.TypeName(props.Owner)
	if err != nil {
		return nil, err
	}
	decoded, err := metadata.DecodeMethodSignature(props.Signature)
	if err != nil {
		return nil, err
	}
	returnTypeName, err := metadata.DisplayString(scope, decoded.Return)
	if err != nil {
		return nil, err
	}

	method := &Method{
		base: base{
			kind:     KindMethod,
			scope:    scope,
			token:    token,
			name:     props.Name,
			fullName: memberName(ownerName, props.Name),
			exported: metadata.IsMethodExported(props.Flags),
		},
		owner:          props.Owner,
		ownerName:      ownerName,
		flags:          props.Flags,
		signature:      props.Signature,
		decoded:        decoded,
		returnTypeName: returnTypeName,
		overloadName:   props.Name,
	}

	if method.parameters, err = newParameters(scope, token, decoded); err != nil {
		return nil, err
	}

	overloads, err := scope.CustomAttributesByName(token, metadata.OverloadAttribute)
	if err != nil {
		return nil, err
	}
	if len(overloads) > 0 {
		arguments, err := scope.Arguments(overloads[0])
		if err != nil {
			return nil, err
		}
		if len(arguments) > 0 {
			if name, ok := arguments[0].Value.(string); ok && name != "" {
				method.overloadName = name
			}
		}
	}
	if method.defaultOverload, err = scope.HasCustomAttribute(token, metadata.DefaultOverloadAttribute); err != nil {
		return nil, err
	}

	return method, nil
}

func newParameters(scope *metadata.Scope, method metadata.Token, decoded metadata.MethodSignature) ([]*Parameter, error) {
	rows, err := scope.EnumParams(method)
	if err != nil {
		return nil, err
	}
	named := make(map[uint32]metadata.ParamProps, len(rows))
	tokens := make(map[uint32]metadata.Token, len(rows))
	for _, row := range rows {
		props, err := scope.ParamProps(row)
		if err != nil {
			return nil, err
		}
		// sequence 0 describes the return value
		if props.Sequence == 0 {
			continue
		}
		named[props.Sequence] = props
		tokens[props.Sequence] = row
	}

	parameters := make([]*Parameter, 0, len(decoded.Params))
	for i, desc := range decoded.Params {
		sequence := uint32(i + 1)
		props, found := named[sequence]
		name := props.Name
		if !found || name == "" {
			name = fmt.Sprintf("arg%d", i)
		}
		typeName, err := metadata.DisplayString(scope, desc)
		if err != nil {
			return nil, err
		}
		parameters = append(parameters, &Parameter{
			base: base{
				kind:     KindParameter,
				scope:    scope,
				token:    tokens[sequence],
				name:     name,
				fullName: name,
				exported: true,
			},
			desc:     desc,
			typeName: typeName,
			flags:    props.Flags,
		})
	}
	return parameters, nil
}

// Owner is the TypeDef declaring the method
func (m *Method) Owner() metadata.Token {
	return m.owner
}

func (m *Method) OwnerName() string {
	return m.ownerName
}

func (m *Method) Flags() uint32 {
	return m.flags
}

// Signature is the raw signature blob
func (m *Method) Signature() []byte {
	return m.signature
}

func (m *Method) MethodSignature() metadata.MethodSignature {
	return m.decoded
}

func (m *Method) Parameters() []*Parameter {
	return m.parameters
}

func (m *Method) NumberOfParameters() int {
	return len(m.parameters)
}

func (m *Method) ReturnType() metadata.TypeDescriptor {
	return m.decoded.Return
}

func (m *Method) ReturnTypeName() string {
	return m.returnTypeName
}

func (m *Method) IsVoid() bool {
	return m.decoded.Return.IsVoid()
}

func (m *Method) IsStatic() bool {
	return metadata.IsMethodStatic(m.flags)
}

func (m *Method) IsInitializer() bool {
	return m.name == initializerName
}

// IsSpecialName reports accessors (get_, put_, add_, remove_) and constructors
func (m *Method) IsSpecialName() bool {
	return m.flags&metadata.MethodSpecialName != 0
}

// OverloadName is the name given by OverloadAttribute, or the method name
func (m *Method) OverloadName() string {
	return m.overloadName
}

func (m *Method) IsDefaultOverload() bool {
	return m.defaultOverload
}
