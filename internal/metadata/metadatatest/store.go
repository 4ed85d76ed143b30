// Package metadatatest builds in-memory metadata stores for tests.
package metadatatest

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"

	"gowinrt/internal/errors"
	"gowinrt/internal/metadata"
)

type typeDef struct {
	props         metadata.TypeDefProps
	methods       []metadata.Token
	fields        []metadata.Token
	properties    []metadata.Token
	events        []metadata.Token
	genericParams []metadata.Token
	impls         []metadata.Token
	methodImpls   []metadata.MethodImpl
}

// Store is a metadata.Store whose tables are filled through builder methods.
// Row ids are assigned in insertion order starting at 1.
type Store struct {
	name             string
	typeDefs         []*typeDef
	typeRefs         []metadata.TypeRefProps
	methods          []metadata.MethodProps
	methodParams     map[metadata.Token][]metadata.Token
	memberRefs       []metadata.MemberRefProps
	fields           []metadata.FieldProps
	properties       []metadata.PropertyProps
	events           []metadata.EventProps
	params           []metadata.ParamProps
	interfaceImpls   []metadata.InterfaceImplProps
	customAttributes []metadata.CustomAttributeProps
	genericParams    []metadata.GenericParamProps
	typeSpecs        [][]byte
	closed           bool
}

var _ metadata.Store = (*Store)(nil)

func NewStore(name string) *Store {
	return &Store{name: name, methodParams: make(map[metadata.Token][]metadata.Token)}
}

func (store *Store) Name() string {
	return store.name
}

func (store *Store) Close() error {
	store.closed = true
	return nil
}

func (store *Store) IsClosed() bool {
	return store.closed
}

func mustEncode(blob []byte, err error) []byte {
	if err != nil {
		panic(err)
	}
	return blob
}

// TypeRef adds (or reuses) a reference to a type defined elsewhere
func (store *Store) TypeRef(namespace, name string) metadata.Token {
	for i, ref := range store.typeRefs {
		if ref.Namespace == namespace && ref.Name == name {
			return metadata.NewToken(metadata.TokenTypeRef, uint32(i+1))
		}
	}
	store.typeRefs = append(store.typeRefs, metadata.TypeRefProps{Name: name, Namespace: namespace})
	return metadata.NewToken(metadata.TokenTypeRef, uint32(len(store.typeRefs)))
}

func (store *Store) TypeDef(namespace, name string, flags uint32, extends metadata.Token) metadata.Token {
	store.typeDefs = append(store.typeDefs, &typeDef{
		props: metadata.TypeDefProps{Name: name, Namespace: namespace, Flags: flags, Extends: extends},
	})
	return metadata.NewToken(metadata.TokenTypeDef, uint32(len(store.typeDefs)))
}

func (store *Store) typeDef(token metadata.Token) *typeDef {
	if !token.Is(metadata.TokenTypeDef) || int(token.Rid()) > len(store.typeDefs) {
		panic(fmt.Sprintf("metadatatest: %s is not a TypeDef of %s", token, store.name))
	}
	return store.typeDefs[token.Rid()-1]
}

// Interface adds a public WinRT interface with a GuidAttribute
func (store *Store) Interface(namespace, name string, id uuid.UUID) metadata.Token {
	token := store.TypeDef(namespace, name,
		metadata.TypePublic|metadata.TypeInterface|metadata.TypeAbstract|metadata.TypeWindowsRuntime, 0)
	store.GuidAttribute(token, id)
	return token
}

// Class adds a public runtime class deriving from System.Object
func (store *Store) Class(namespace, name string, sealed bool) metadata.Token {
	flags := metadata.TypePublic | metadata.TypeWindowsRuntime
	if sealed {
		flags |= metadata.TypeSealed
	}
	return store.TypeDef(namespace, name, flags, store.TypeRef("System", "Object"))
}

// Delegate adds a public delegate with a GuidAttribute
func (store *Store) Delegate(namespace, name string, id uuid.UUID) metadata.Token {
	token := store.TypeDef(namespace, name,
		metadata.TypePublic|metadata.TypeSealed|metadata.TypeWindowsRuntime,
		store.TypeRef("System", "MulticastDelegate"))
	store.GuidAttribute(token, id)
	return token
}

// Enum adds a public enum with the value__ backing field and the given members
func (store *Store) Enum(namespace, name string, underlying metadata.ElementType, members ...EnumMember) metadata.Token {
	token := store.TypeDef(namespace, name,
		metadata.TypePublic|metadata.TypeSealed|metadata.TypeWindowsRuntime,
		store.TypeRef("System", "Enum"))
	store.Field(token, "value__", metadata.FieldSpecialName, metadata.Primitive(underlying), nil)
	self := metadata.ValueTypeOf(token)
	for _, member := range members {
		constant := &metadata.Constant{Type: underlying, Value: binary.LittleEndian.AppendUint32(nil, uint32(member.Value))}
		store.Field(token, member.Name, metadata.FieldStatic|metadata.FieldLiteral|0x0006, self, constant)
	}
	return token
}

type EnumMember struct {
	Name  string
	Value int64
}

// Struct adds a public struct with the given fields
func (store *Store) Struct(namespace, name string, fields ...StructField) metadata.Token {
	token := store.TypeDef(namespace, name,
		metadata.TypePublic|metadata.TypeSealed|metadata.TypeWindowsRuntime,
		store.TypeRef("System", "ValueType"))
	for _, field := range fields {
		store.Field(token, field.Name, 0x0006, field.Type, nil)
	}
	return token
}

type StructField struct {
	Name string
	Type metadata.TypeDescriptor
}

// Method adds a method with its parameter rows (sequence 1..n)
func (store *Store) Method(owner metadata.Token, name string, flags uint32, sig metadata.MethodSignature, paramNames ...string) metadata.Token {
	store.methods = append(store.methods, metadata.MethodProps{
		Owner:     owner,
		Name:      name,
		Flags:     flags,
		Signature: mustEncode(metadata.EncodeMethodSignature(sig)),
	})
	token := metadata.NewToken(metadata.TokenMethodDef, uint32(len(store.methods)))
	definition := store.typeDef(owner)
	definition.methods = append(definition.methods, token)

	for i, paramName := range paramNames {
		paramFlags := metadata.ParamIn
		if i < len(sig.Params) && sig.Params[i].IsByRef() {
			paramFlags = metadata.ParamOut
		}
		store.params = append(store.params, metadata.ParamProps{
			Method:   token,
			Name:     paramName,
			Sequence: uint32(i + 1),
			Flags:    paramFlags,
		})
		store.methodParams[token] = append(store.methodParams[token],
			metadata.NewToken(metadata.TokenParamDef, uint32(len(store.params))))
	}
	return token
}

// ReturnParam adds the sequence 0 parameter row describing a method's return value
func (store *Store) ReturnParam(method metadata.Token, name string) metadata.Token {
	store.params = append(store.params, metadata.ParamProps{Method: method, Name: name})
	token := metadata.NewToken(metadata.TokenParamDef, uint32(len(store.params)))
	store.methodParams[method] = append([]metadata.Token{token}, store.methodParams[method]...)
	return token
}

func (store *Store) Field(owner metadata.Token, name string, flags uint32, desc metadata.TypeDescriptor, constant *metadata.Constant) metadata.Token {
	store.fields = append(store.fields, metadata.FieldProps{
		Owner:     owner,
		Name:      name,
		Flags:     flags,
		Signature: mustEncode(metadata.EncodeFieldSignature(desc)),
		Constant:  constant,
	})
	token := metadata.NewToken(metadata.TokenFieldDef, uint32(len(store.fields)))
	definition := store.typeDef(owner)
	definition.fields = append(definition.fields, token)
	return token
}

func (store *Store) Property(owner metadata.Token, name string, desc metadata.TypeDescriptor, static bool, getter, setter metadata.Token) metadata.Token {
	store.properties = append(store.properties, metadata.PropertyProps{
		Owner:     owner,
		Name:      name,
		Signature: mustEncode(metadata.EncodePropertySignature(metadata.PropertySignature{HasThis: !static, Type: desc})),
		Getter:    getter,
		Setter:    setter,
	})
	token := metadata.NewToken(metadata.TokenProperty, uint32(len(store.properties)))
	definition := store.typeDef(owner)
	definition.properties = append(definition.properties, token)
	return token
}

func (store *Store) Event(owner metadata.Token, name string, eventType, add, remove metadata.Token) metadata.Token {
	store.events = append(store.events, metadata.EventProps{
		Owner:     owner,
		Name:      name,
		EventType: eventType,
		AddOn:     add,
		RemoveOn:  remove,
	})
	token := metadata.NewToken(metadata.TokenEvent, uint32(len(store.events)))
	definition := store.typeDef(owner)
	definition.events = append(definition.events, token)
	return token
}

func (store *Store) InterfaceImpl(class, iface metadata.Token) metadata.Token {
	store.interfaceImpls = append(store.interfaceImpls, metadata.InterfaceImplProps{Class: class, Interface: iface})
	token := metadata.NewToken(metadata.TokenInterfaceImpl, uint32(len(store.interfaceImpls)))
	definition := store.typeDef(class)
	definition.impls = append(definition.impls, token)
	return token
}

func (store *Store) MethodImpl(class, body, declaration metadata.Token) {
	definition := store.typeDef(class)
	definition.methodImpls = append(definition.methodImpls, metadata.MethodImpl{Body: body, Declaration: declaration})
}

func (store *Store) TypeSpec(desc metadata.TypeDescriptor) metadata.Token {
	blob := mustEncode(metadata.EncodeType(nil, desc))
	for i, spec := range store.typeSpecs {
		if bytes.Equal(spec, blob) {
			return metadata.NewToken(metadata.TokenTypeSpec, uint32(i+1))
		}
	}
	store.typeSpecs = append(store.typeSpecs, blob)
	return metadata.NewToken(metadata.TokenTypeSpec, uint32(len(store.typeSpecs)))
}

// RawTypeSpec adds a TypeSpec with an arbitrary blob
func (store *Store) RawTypeSpec(blob []byte) metadata.Token {
	store.typeSpecs = append(store.typeSpecs, blob)
	return metadata.NewToken(metadata.TokenTypeSpec, uint32(len(store.typeSpecs)))
}

func (store *Store) MemberRef(parent metadata.Token, name string, sig metadata.MethodSignature) metadata.Token {
	store.memberRefs = append(store.memberRefs, metadata.MemberRefProps{
		Parent:    parent,
		Name:      name,
		Signature: mustEncode(metadata.EncodeMethodSignature(sig)),
	})
	return metadata.NewToken(metadata.TokenMemberRef, uint32(len(store.memberRefs)))
}

func (store *Store) GenericParam(owner metadata.Token, number uint32, name string) metadata.Token {
	store.genericParams = append(store.genericParams, metadata.GenericParamProps{Owner: owner, Number: number, Name: name})
	token := metadata.NewToken(metadata.TokenGenericParam, uint32(len(store.genericParams)))
	definition := store.typeDef(owner)
	definition.genericParams = append(definition.genericParams, token)
	return token
}

func (store *Store) get(token metadata.Token, kind metadata.TokenKind, length int) (int, error) {
	if !token.Is(kind) || int(token.Rid()) > length {
		return 0, errors.NotFound(errors.PhaseResolve, token.String())
	}
	return int(token.Rid() - 1), nil
}

func (store *Store) TypeDefProps(token metadata.Token) (metadata.TypeDefProps, error) {
	i, err := store.get(token, metadata.TokenTypeDef, len(store.typeDefs))
	if err != nil {
		return metadata.TypeDefProps{}, err
	}
	return store.typeDefs[i].props, nil
}

func (store *Store) TypeRefProps(token metadata.Token) (metadata.TypeRefProps, error) {
	i, err := store.get(token, metadata.TokenTypeRef, len(store.typeRefs))
	if err != nil {
		return metadata.TypeRefProps{}, err
	}
	return store.typeRefs[i], nil
}

func (store *Store) MethodProps(token metadata.Token) (metadata.MethodProps, error) {
	i, err := store.get(token, metadata.TokenMethodDef, len(store.methods))
	if err != nil {
		return metadata.MethodProps{}, err
	}
	return store.methods[i], nil
}

func (store *Store) MemberRefProps(token metadata.Token) (metadata.MemberRefProps, error) {
	i, err := store.get(token, metadata.TokenMemberRef, len(store.memberRefs))
	if err != nil {
		return metadata.MemberRefProps{}, err
	}
	return store.memberRefs[i], nil
}

func (store *Store) FieldProps(token metadata.Token) (metadata.FieldProps, error) {
	i, err := store.get(token, metadata.TokenFieldDef, len(store.fields))
	if err != nil {
		return metadata.FieldProps{}, err
	}
	return store.fields[i], nil
}

func (store *Store) PropertyProps(token metadata.Token) (metadata.PropertyProps, error) {
	i, err := store.get(token, metadata.TokenProperty, len(store.properties))
	if err != nil {
		return metadata.PropertyProps{}, err
	}
	return store.properties[i], nil
}

func (store *Store) EventProps(token metadata.Token) (metadata.EventProps, error) {
	i, err := store.get(token, metadata.TokenEvent, len(store.events))
	if err != nil {
		return metadata.EventProps{}, err
	}
	return store.events[i], nil
}

func (store *Store) ParamProps(token metadata.Token) (metadata.ParamProps, error) {
	i, err := store.get(token, metadata.TokenParamDef, len(store.params))
	if err != nil {
		return metadata.ParamProps{}, err
	}
	return store.params[i], nil
}

func (store *Store) InterfaceImplProps(token metadata.Token) (metadata.InterfaceImplProps, error) {
	i, err := store.get(token, metadata.TokenInterfaceImpl, len(store.interfaceImpls))
	if err != nil {
		return metadata.InterfaceImplProps{}, err
	}
	return store.interfaceImpls[i], nil
}

func (store *Store) CustomAttributeProps(token metadata.Token) (metadata.CustomAttributeProps, error) {
	i, err := store.get(token, metadata.TokenCustomAttribute, len(store.customAttributes))
	if err != nil {
		return metadata.CustomAttributeProps{}, err
	}
	return store.customAttributes[i], nil
}

func (store *Store) GenericParamProps(token metadata.Token) (metadata.GenericParamProps, error) {
	i, err := store.get(token, metadata.TokenGenericParam, len(store.genericParams))
	if err != nil {
		return metadata.GenericParamProps{}, err
	}
	return store.genericParams[i], nil
}

func (store *Store) TypeSpecSignature(token metadata.Token) ([]byte, error) {
	i, err := store.get(token, metadata.TokenTypeSpec, len(store.typeSpecs))
	if err != nil {
		return nil, err
	}
	return store.typeSpecs[i], nil
}

func (store *Store) EnumTypeDefs() ([]metadata.Token, error) {
	tokens := make([]metadata.Token, len(store.typeDefs))
	for i := range store.typeDefs {
		tokens[i] = metadata.NewToken(metadata.TokenTypeDef, uint32(i+1))
	}
	return tokens, nil
}

func (store *Store) enumOf(token metadata.Token, pick func(*typeDef) []metadata.Token) ([]metadata.Token, error) {
	i, err := store.get(token, metadata.TokenTypeDef, len(store.typeDefs))
	if err != nil {
		return nil, err
	}
	return append([]metadata.Token(nil), pick(store.typeDefs[i])...), nil
}

func (store *Store) EnumMethods(token metadata.Token) ([]metadata.Token, error) {
	return store.enumOf(token, func(t *typeDef) []metadata.Token { return t.methods })
}

func (store *Store) EnumFields(token metadata.Token) ([]metadata.Token, error) {
	return store.enumOf(token, func(t *typeDef) []metadata.Token { return t.fields })
}

func (store *Store) EnumProperties(token metadata.Token) ([]metadata.Token, error) {
	return store.enumOf(token, func(t *typeDef) []metadata.Token { return t.properties })
}

func (store *Store) EnumEvents(token metadata.Token) ([]metadata.Token, error) {
	return store.enumOf(token, func(t *typeDef) []metadata.Token { return t.events })
}

func (store *Store) EnumInterfaceImpls(token metadata.Token) ([]metadata.Token, error) {
	return store.enumOf(token, func(t *typeDef) []metadata.Token { return t.impls })
}

func (store *Store) EnumGenericParams(token metadata.Token) ([]metadata.Token, error) {
	return store.enumOf(token, func(t *typeDef) []metadata.Token { return t.genericParams })
}

func (store *Store) EnumMethodImpls(token metadata.Token) ([]metadata.MethodImpl, error) {
	i, err := store.get(token, metadata.TokenTypeDef, len(store.typeDefs))
	if err != nil {
		return nil, err
	}
	return append([]metadata.MethodImpl(nil), store.typeDefs[i].methodImpls...), nil
}

func (store *Store) EnumParams(method metadata.Token) ([]metadata.Token, error) {
	if _, err := store.get(method, metadata.TokenMethodDef, len(store.methods)); err != nil {
		return nil, err
	}
	return append([]metadata.Token(nil), store.methodParams[method]...), nil
}

func (store *Store) EnumCustomAttributes(parent metadata.Token) ([]metadata.Token, error) {
	tokens := make([]metadata.Token, 0)
	for i, attribute := range store.customAttributes {
		if attribute.Parent == parent {
			tokens = append(tokens, metadata.NewToken(metadata.TokenCustomAttribute, uint32(i+1)))
		}
	}
	return tokens, nil
}

func (store *Store) FindTypeDefByName(fullName string) (metadata.Token, error) {
	for i, definition := range store.typeDefs {
		if definition.props.FullName() == fullName {
			return metadata.NewToken(metadata.TokenTypeDef, uint32(i+1)), nil
		}
	}
	return 0, errors.NotFound(errors.PhaseResolve, fullName)
}

func (store *Store) FindMethod(typeDef metadata.Token, name string, signature []byte) (metadata.Token, error) {
	methods, err := store.EnumMethods(typeDef)
	if err != nil {
		return 0, err
	}
	for _, token := range methods {
		method := store.methods[token.Rid()-1]
		if method.Name == name && (signature == nil || bytes.Equal(method.Signature, signature)) {
			return token, nil
		}
	}
	return 0, errors.NotFound(errors.PhaseResolve, name)
}

func (store *Store) FindField(typeDef metadata.Token, name string) (metadata.Token, error) {
	fields, err := store.EnumFields(typeDef)
	if err != nil {
		return 0, err
	}
	for _, token := range fields {
		if store.fields[token.Rid()-1].Name == name {
			return token, nil
		}
	}
	return 0, errors.NotFound(errors.PhaseResolve, name)
}
