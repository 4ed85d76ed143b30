// Package reader opens WinMD files as metadata stores and indexes them by type name.
package reader

import (
	"bytes"
	"debug/pe"
	"fmt"
	"sync"

	"github.com/microsoft/go-winmd"
	"go.uber.org/zap"

	"gowinrt/internal/errors"
	"gowinrt/internal/metadata"
	"gowinrt/internal/observability"
)

// Method semantics flags
const (
	semanticsSetter   = 0x0001
	semanticsGetter   = 0x0002
	semanticsAddOn    = 0x0008
	semanticsRemoveOn = 0x0010
)

type accessors struct {
	first  metadata.Token // getter or add
	second metadata.Token // setter or remove
}

// Store is a metadata.Store over the tables of one WinMD file. Owner and child
// relationships are indexed once when the file is opened.
type Store struct {
	mu       sync.RWMutex
	name     string
	metadata *winmd.Metadata

	methodOwners     map[metadata.Token]metadata.Token
	fieldOwners      map[metadata.Token]metadata.Token
	paramOwners      map[metadata.Token]metadata.Token
	propertyOwners   map[metadata.Token]metadata.Token
	eventOwners      map[metadata.Token]metadata.Token
	methods          map[metadata.Token][]metadata.Token
	fields           map[metadata.Token][]metadata.Token
	params           map[metadata.Token][]metadata.Token
	properties       map[metadata.Token][]metadata.Token
	events           map[metadata.Token][]metadata.Token
	interfaceImpls   map[metadata.Token][]metadata.Token
	methodImpls      map[metadata.Token][]metadata.MethodImpl
	genericParams    map[metadata.Token][]metadata.Token
	customAttributes map[metadata.Token][]metadata.Token
	semantics        map[metadata.Token]accessors
	constants        map[metadata.Token]*metadata.Constant
	typeDefs         map[string]metadata.Token
}

// Open reads the WinMD file at path
func Open(path string) (*Store, error) {
	peFile, err := pe.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening metadata file %s: %w", path, err)
	}
	defer peFile.Close()

	winmdMetadata, err := winmd.New(peFile)
	if err != nil {
		return nil, fmt.Errorf("reading metadata tables of %s: %w", path, err)
	}

	store := &Store{
		name:             path,
		metadata:         winmdMetadata,
		methodOwners:     make(map[metadata.Token]metadata.Token),
		fieldOwners:      make(map[metadata.Token]metadata.Token),
		paramOwners:      make(map[metadata.Token]metadata.Token),
		propertyOwners:   make(map[metadata.Token]metadata.Token),
		eventOwners:      make(map[metadata.Token]metadata.Token),
		methods:          make(map[metadata.Token][]metadata.Token),
		fields:           make(map[metadata.Token][]metadata.Token),
		params:           make(map[metadata.Token][]metadata.Token),
		properties:       make(map[metadata.Token][]metadata.Token),
		events:           make(map[metadata.Token][]metadata.Token),
		interfaceImpls:   make(map[metadata.Token][]metadata.Token),
		methodImpls:      make(map[metadata.Token][]metadata.MethodImpl),
		genericParams:    make(map[metadata.Token][]metadata.Token),
		customAttributes: make(map[metadata.Token][]metadata.Token),
		semantics:        make(map[metadata.Token]accessors),
		constants:        make(map[metadata.Token]*metadata.Constant),
		typeDefs:         make(map[string]metadata.Token),
	}
	if err := store.index(); err != nil {
		return nil, fmt.Errorf("indexing %s: %w", path, err)
	}

	observability.ScopesOpened.Inc()
	Logger().Debug("opened metadata file",
		zap.String("path", path),
		zap.Int("types", len(store.typeDefs)))
	return store, nil
}

func (store *Store) Name() string {
	return store.name
}

func (store *Store) Close() error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.metadata = nil
	return nil
}

// eachRecord visits every row of a table in order
func eachRecord[T any, TP winmd.Record[T]](table winmd.Table[T, TP], action func(winmd.Index, TP) error) error {
	for idx := uint32(0); idx < table.Len; idx++ {
		element, err := table.Record(winmd.Index(idx))
		if err != nil {
			return err
		}
		if err := action(winmd.Index(idx), element); err != nil {
			return err
		}
	}
	return nil
}

// record reads the row a token names
func record[T any, TP winmd.Record[T]](table winmd.Table[T, TP], token metadata.Token, kind metadata.TokenKind) (TP, error) {
	var zero TP
	if !token.Is(kind) || token.Rid() == 0 || token.Rid() > table.Len {
		return zero, errors.Invariant(errors.PhaseResolve, token.String(), "expected a %s row", kind)
	}
	element, err := table.Record(winmd.Index(token.Rid() - 1))
	if err != nil {
		return zero, errors.New(errors.PhaseResolve, errors.KindInvariantViolation).
			Name(token.String()).
			Cause(err).
			Build()
	}
	return element, nil
}

func (store *Store) tables() (*winmd.Tables, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	if store.metadata == nil {
		return nil, errors.Invariant(errors.PhaseResolve, store.name, "metadata file is closed")
	}
	return store.metadata.Tables, nil
}

func (store *Store) index() error {
	tables := store.metadata.Tables

	err := eachRecord(tables.TypeDef, func(idx winmd.Index, typeDef *winmd.TypeDef) error {
		token := indexToken(metadata.TokenTypeDef, idx)
		fullName := metadata.TypeDefProps{Name: typeDef.Name.String(), Namespace: typeDef.Namespace.String()}.FullName()
		if _, exists := store.typeDefs[fullName]; !exists {
			store.typeDefs[fullName] = token
		}
		store.methods[token] = listTokens(metadata.TokenMethodDef, typeDef.MethodList)
		for _, method := range store.methods[token] {
			store.methodOwners[method] = token
		}
		store.fields[token] = listTokens(metadata.TokenFieldDef, typeDef.FieldList)
		for _, field := range store.fields[token] {
			store.fieldOwners[field] = token
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = eachRecord(tables.MethodDef, func(idx winmd.Index, method *winmd.MethodDef) error {
		token := indexToken(metadata.TokenMethodDef, idx)
		store.params[token] = listTokens(metadata.TokenParamDef, method.ParamList)
		for _, param := range store.params[token] {
			store.paramOwners[param] = token
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = eachRecord(tables.PropertyMap, func(_ winmd.Index, propertyMap *winmd.PropertyMap) error {
		owner := indexToken(metadata.TokenTypeDef, propertyMap.Parent)
		store.properties[owner] = listTokens(metadata.TokenProperty, propertyMap.PropertyList)
		for _, property := range store.properties[owner] {
			store.propertyOwners[property] = owner
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = eachRecord(tables.EventMap, func(_ winmd.Index, eventMap *winmd.EventMap) error {
		owner := indexToken(metadata.TokenTypeDef, eventMap.Parent)
		store.events[owner] = listTokens(metadata.TokenEvent, eventMap.EventList)
		for _, event := range store.events[owner] {
			store.eventOwners[event] = owner
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = eachRecord(tables.MethodSemantics, func(_ winmd.Index, semantics *winmd.MethodSemantics) error {
		association := codedToken(hasSemantics, semantics.Association)
		method := indexToken(metadata.TokenMethodDef, semantics.Method)
		pair := store.semantics[association]
		switch uint32(semantics.Semantics) {
		case semanticsGetter, semanticsAddOn:
			pair.first = method
		case semanticsSetter, semanticsRemoveOn:
			pair.second = method
		}
		store.semantics[association] = pair
		return nil
	})
	if err != nil {
		return err
	}

	err = eachRecord(tables.InterfaceImpl, func(idx winmd.Index, impl *winmd.InterfaceImpl) error {
		class := indexToken(metadata.TokenTypeDef, impl.Class)
		store.interfaceImpls[class] = append(store.interfaceImpls[class], indexToken(metadata.TokenInterfaceImpl, idx))
		return nil
	})
	if err != nil {
		return err
	}

	err = eachRecord(tables.MethodImpl, func(_ winmd.Index, impl *winmd.MethodImpl) error {
		class := indexToken(metadata.TokenTypeDef, impl.Class)
		store.methodImpls[class] = append(store.methodImpls[class], metadata.MethodImpl{
			Body:        codedToken(methodDefOrRef, impl.MethodBody),
			Declaration: codedToken(methodDefOrRef, impl.MethodDeclaration),
		})
		return nil
	})
	if err != nil {
		return err
	}

	err = eachRecord(tables.GenericParam, func(idx winmd.Index, param *winmd.GenericParam) error {
		owner := codedToken(typeOrMethodDef, param.Owner)
		store.genericParams[owner] = append(store.genericParams[owner], indexToken(metadata.TokenGenericParam, idx))
		return nil
	})
	if err != nil {
		return err
	}

	err = eachRecord(tables.CustomAttribute, func(idx winmd.Index, attribute *winmd.CustomAttribute) error {
		parent := codedToken(hasCustomAttribute, attribute.Parent)
		store.customAttributes[parent] = append(store.customAttributes[parent], indexToken(metadata.TokenCustomAttribute, idx))
		return nil
	})
	if err != nil {
		return err
	}

	return eachRecord(tables.Constant, func(_ winmd.Index, constant *winmd.Constant) error {
		parent := codedToken(hasConstant, constant.Parent)
		if parent.Is(metadata.TokenFieldDef) {
			store.constants[parent] = &metadata.Constant{
				Type:  metadata.ElementType(constant.Type),
				Value: bytes.Clone(constant.Value),
			}
		}
		return nil
	})
}

func (store *Store) TypeDefProps(token metadata.Token) (metadata.TypeDefProps, error) {
	tables, err := store.tables()
	if err != nil {
		return metadata.TypeDefProps{}, err
	}
	typeDef, err := record(tables.TypeDef, token, metadata.TokenTypeDef)
	if err != nil {
		return metadata.TypeDefProps{}, err
	}
	return metadata.TypeDefProps{
		Name:      typeDef.Name.String(),
		Namespace: typeDef.Namespace.String(),
		Flags:     uint32(typeDef.Flags),
		Extends:   codedToken(typeDefOrRef, typeDef.Extends),
	}, nil
}

func (store *Store) TypeRefProps(token metadata.Token) (metadata.TypeRefProps, error) {
	tables, err := store.tables()
	if err != nil {
		return metadata.TypeRefProps{}, err
	}
	typeRef, err := record(tables.TypeRef, token, metadata.TokenTypeRef)
	if err != nil {
		return metadata.TypeRefProps{}, err
	}
	return metadata.TypeRefProps{
		Name:            typeRef.Name.String(),
		Namespace:       typeRef.Namespace.String(),
		ResolutionScope: codedToken(resolutionScope, typeRef.ResolutionScope),
	}, nil
}

func (store *Store) MethodProps(token metadata.Token) (metadata.MethodProps, error) {
	tables, err := store.tables()
	if err != nil {
		return metadata.MethodProps{}, err
	}
	method, err := record(tables.MethodDef, token, metadata.TokenMethodDef)
	if err != nil {
		return metadata.MethodProps{}, err
	}
	return metadata.MethodProps{
		Owner:     store.methodOwners[token],
		Name:      method.Name.String(),
		Flags:     uint32(method.Flags),
		ImplFlags: uint32(method.ImplFlags),
		Signature: bytes.Clone(method.Signature),
	}, nil
}

func (store *Store) MemberRefProps(token metadata.Token) (metadata.MemberRefProps, error) {
	tables, err := store.tables()
	if err != nil {
		return metadata.MemberRefProps{}, err
	}
	memberRef, err := record(tables.MemberRef, token, metadata.TokenMemberRef)
	if err != nil {
		return metadata.MemberRefProps{}, err
	}
	return metadata.MemberRefProps{
		Parent:    codedToken(memberRefParent, memberRef.Class),
		Name:      memberRef.Name.String(),
		Signature: bytes.Clone(memberRef.Signature),
	}, nil
}

func (store *Store) FieldProps(token metadata.Token) (metadata.FieldProps, error) {
	tables, err := store.tables()
	if err != nil {
		return metadata.FieldProps{}, err
	}
	field, err := record(tables.Field, token, metadata.TokenFieldDef)
	if err != nil {
		return metadata.FieldProps{}, err
	}
	return metadata.FieldProps{
		Owner:     store.fieldOwners[token],
		Name:      field.Name.String(),
		Flags:     uint32(field.Flags),
		Signature: bytes.Clone(field.Signature),
		Constant:  store.constants[token],
	}, nil
}

func (store *Store) PropertyProps(token metadata.Token) (metadata.PropertyProps, error) {
	tables, err := store.tables()
	if err != nil {
		return metadata.PropertyProps{}, err
	}
	property, err := record(tables.Property, token, metadata.TokenProperty)
	if err != nil {
		return metadata.PropertyProps{}, err
	}
	pair := store.semantics[token]
	return metadata.PropertyProps{
		Owner:     store.propertyOwners[token],
		Name:      property.Name.String(),
		Flags:     uint32(property.Flags),
		Signature: bytes.Clone(property.Type),
		Getter:    pair.first,
		Setter:    pair.second,
	}, nil
}

func (store *Store) EventProps(token metadata.Token) (metadata.EventProps, error) {
	tables, err := store.tables()
	if err != nil {
		return metadata.EventProps{}, err
	}
	event, err := record(tables.Event, token, metadata.TokenEvent)
	if err != nil {
		return metadata.EventProps{}, err
	}
	pair := store.semantics[token]
	return metadata.EventProps{
		Owner:     store.eventOwners[token],
		Name:      event.Name.String(),
		Flags:     uint32(event.EventFlags),
		EventType: codedToken(typeDefOrRef, event.EventType),
		AddOn:     pair.first,
		RemoveOn:  pair.second,
	}, nil
}

func (store *Store) ParamProps(token metadata.Token) (metadata.ParamProps, error) {
	tables, err := store.tables()
	if err != nil {
		return metadata.ParamProps{}, err
	}
	param, err := record(tables.Param, token, metadata.TokenParamDef)
	if err != nil {
		return metadata.ParamProps{}, err
	}
	return metadata.ParamProps{
		Method:   store.paramOwners[token],
		Name:     param.Name.String(),
		Sequence: uint32(param.Sequence),
		Flags:    uint32(param.Flags),
	}, nil
}

func (store *Store) InterfaceImplProps(token metadata.Token) (metadata.InterfaceImplProps, error) {
	tables, err := store.tables()
	if err != nil {
		return metadata.InterfaceImplProps{}, err
	}
	impl, err := record(tables.InterfaceImpl, token, metadata.TokenInterfaceImpl)
	if err != nil {
		return metadata.InterfaceImplProps{}, err
	}
	return metadata.InterfaceImplProps{
		Class:     indexToken(metadata.TokenTypeDef, impl.Class),
		Interface: codedToken(typeDefOrRef, impl.Interface),
	}, nil
}

func (store *Store) CustomAttributeProps(token metadata.Token) (metadata.CustomAttributeProps, error) {
	tables, err := store.tables()
	if err != nil {
		return metadata.CustomAttributeProps{}, err
	}
	attribute, err := record(tables.CustomAttribute, token, metadata.TokenCustomAttribute)
	if err != nil {
		return metadata.CustomAttributeProps{}, err
	}
	return metadata.CustomAttributeProps{
		Parent:      codedToken(hasCustomAttribute, attribute.Parent),
		Constructor: codedToken(customAttributeType, attribute.Type),
		Value:       bytes.Clone(attribute.Value),
	}, nil
}

func (store *Store) GenericParamProps(token metadata.Token) (metadata.GenericParamProps, error) {
	tables, err := store.tables()
	if err != nil {
		return metadata.GenericParamProps{}, err
	}
	param, err := record(tables.GenericParam, token, metadata.TokenGenericParam)
	if err != nil {
		return metadata.GenericParamProps{}, err
	}
	return metadata.GenericParamProps{
		Owner:  codedToken(typeOrMethodDef, param.Owner),
		Number: uint32(param.Number),
		Name:   param.Name.String(),
	}, nil
}

func (store *Store) TypeSpecSignature(token metadata.Token) ([]byte, error) {
	tables, err := store.tables()
	if err != nil {
		return nil, err
	}
	typeSpec, err := record(tables.TypeSpec, token, metadata.TokenTypeSpec)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(typeSpec.Signature), nil
}

func (store *Store) EnumTypeDefs() ([]metadata.Token, error) {
	tables, err := store.tables()
	if err != nil {
		return nil, err
	}
	tokens := make([]metadata.Token, tables.TypeDef.Len)
	for i := range tokens {
		tokens[i] = metadata.NewToken(metadata.TokenTypeDef, uint32(i+1))
	}
	return tokens, nil
}

// children answers one of the owner indexes for a TypeDef or MethodDef
func children[T any](store *Store, owner metadata.Token, kind metadata.TokenKind, index map[metadata.Token][]T) ([]T, error) {
	if _, err := store.tables(); err != nil {
		return nil, err
	}
	if !owner.Is(kind) {
		return nil, errors.Invariant(errors.PhaseResolve, owner.String(), "expected a %s token", kind)
	}
	return append([]T(nil), index[owner]...), nil
}

func (store *Store) EnumMethods(typeDef metadata.Token) ([]metadata.Token, error) {
	return children(store, typeDef, metadata.TokenTypeDef, store.methods)
}

func (store *Store) EnumFields(typeDef metadata.Token) ([]metadata.Token, error) {
	return children(store, typeDef, metadata.TokenTypeDef, store.fields)
}

func (store *Store) EnumProperties(typeDef metadata.Token) ([]metadata.Token, error) {
	return children(store, typeDef, metadata.TokenTypeDef, store.properties)
}

func (store *Store) EnumEvents(typeDef metadata.Token) ([]metadata.Token, error) {
	return children(store, typeDef, metadata.TokenTypeDef, store.events)
}

func (store *Store) EnumInterfaceImpls(typeDef metadata.Token) ([]metadata.Token, error) {
	return children(store, typeDef, metadata.TokenTypeDef, store.interfaceImpls)
}

func (store *Store) EnumMethodImpls(typeDef metadata.Token) ([]metadata.MethodImpl, error) {
	return children(store, typeDef, metadata.TokenTypeDef, store.methodImpls)
}

func (store *Store) EnumGenericParams(typeDef metadata.Token) ([]metadata.Token, error) {
	return children(store, typeDef, metadata.TokenTypeDef, store.genericParams)
}

func (store *Store) EnumParams(method metadata.Token) ([]metadata.Token, error) {
	return children(store, method, metadata.TokenMethodDef, store.params)
}

func (store *Store) EnumCustomAttributes(parent metadata.Token) ([]metadata.Token, error) {
	if _, err := store.tables(); err != nil {
		return nil, err
	}
	return append([]metadata.Token(nil), store.customAttributes[parent]...), nil
}

func (store *Store) FindTypeDefByName(fullName string) (metadata.Token, error) {
	if _, err := store.tables(); err != nil {
		return 0, err
	}
	if token, found := store.typeDefs[fullName]; found {
		return token, nil
	}
	return 0, errors.NotFound(errors.PhaseResolve, fullName)
}

func (store *Store) FindMethod(typeDef metadata.Token, name string, signature []byte) (metadata.Token, error) {
	methods, err := store.EnumMethods(typeDef)
	if err != nil {
		return 0, err
	}
	for _, token := range methods {
		props, err := store.MethodProps(token)
		if err != nil {
			return 0, err
		}
		if props.Name == name && (signature == nil || bytes.Equal(props.Signature, signature)) {
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
		props, err := store.FieldProps(token)
		if err != nil {
			return 0, err
		}
		if props.Name == name {
			return token, nil
		}
	}
	return 0, errors.NotFound(errors.PhaseResolve, name)
}
