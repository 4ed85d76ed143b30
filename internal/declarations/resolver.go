package declarations

import (
	"go.uber.org/zap"

	"gowinrt/internal/errors"
	"gowinrt/internal/metadata"
)

// ScopeRef is a TypeDef token together with the scope defining it
type ScopeRef struct {
	Scope *metadata.Scope
	Token metadata.Token
}

// Resolver turns names and tokens into declarations. Declarations are built on demand
// and never cached here.
type Resolver struct {
	locator metadata.Locator
}

func NewResolver(locator metadata.Locator) *Resolver {
	return &Resolver{locator: locator}
}

func (r *Resolver) Locator() metadata.Locator {
	return r.locator
}

// Resolve returns the namespace or type declaration for a full name. The empty name is the root namespace.
func (r *Resolver) Resolve(fullName string) (Declaration, error) {
	location, err := r.locator.Locate(fullName)
	if err != nil {
		return nil, err
	}

	if location.Namespace {
		children, err := r.locator.NamespaceChildren(fullName)
		if err != nil {
			return nil, err
		}
		return newNamespace(fullName, children), nil
	}

	return r.MakeDeclaration(location.Scope, location.Token)
}

// ResolveTypeRef follows a TypeRef to the scope defining the type
func (r *Resolver) ResolveTypeRef(scope *metadata.Scope, typeRef metadata.Token) (ScopeRef, error) {
	props, err := scope.TypeRefProps(typeRef)
	if err != nil {
		return ScopeRef{}, err
	}
	fullName := props.FullName()

	location, err := r.locator.Locate(fullName)
	if err != nil {
		return ScopeRef{}, errors.ExternalScope(fullName, err)
	}
	if location.Namespace {
		return ScopeRef{}, errors.ExternalScope(fullName, errors.Invariant(errors.PhaseResolve, fullName, "names a namespace"))
	}

	Logger().Debug("resolved type reference",
		zap.String("type", fullName),
		zap.String("from", scope.Name()),
		zap.String("scope", location.Scope.Name()),
		zap.Stringer("token", location.Token))
	return ScopeRef{Scope: location.Scope, Token: location.Token}, nil
}

// resolveTypeDef returns the defining scope of a TypeDef or TypeRef token
func (r *Resolver) resolveTypeDef(scope *metadata.Scope, token metadata.Token) (ScopeRef, error) {
	switch token.Kind() {
	case metadata.TokenTypeDef:
		return ScopeRef{Scope: scope, Token: token}, nil
	case metadata.TokenTypeRef:
		return r.ResolveTypeRef(scope, token)
	}
	return ScopeRef{}, errors.Invariant(errors.PhaseResolve, token.String(), "expected a TypeDef or TypeRef token")
}

// resolveTypeName finds a TypeDef by full name, preferring the given scope
func (r *Resolver) resolveTypeName(scope *metadata.Scope, fullName string) (ScopeRef, error) {
	if token, err := scope.FindTypeDefByName(fullName); err == nil {
		return ScopeRef{Scope: scope, Token: token}, nil
	}
	location, err := r.locator.Locate(fullName)
	if err != nil {
		return ScopeRef{}, err
	}
	if location.Namespace {
		return ScopeRef{}, errors.NotFound(errors.PhaseResolve, fullName)
	}
	return ScopeRef{Scope: location.Scope, Token: location.Token}, nil
}

// MakeDeclaration classifies a TypeDef by its flags and base type
func (r *Resolver) MakeDeclaration(scope *metadata.Scope, token metadata.Token) (Declaration, error) {
	props, err := scope.TypeDefProps(token)
	if err != nil {
		return nil, err
	}
	fullName := props.FullName()

	if metadata.IsTypeInterface(props.Flags) {
		return r.makeInterface(scope, token, fullName)
	}

	baseName := ""
	if !props.Extends.IsNil() {
		if baseName, err = scope.TypeName(props.Extends); err != nil {
			return nil, err
		}
	}

	switch baseName {
	case metadata.SystemEnum:
		return newEnum(scope, token)
	case metadata.SystemValueType:
		return newStruct(scope, token)
	case metadata.SystemMulticastDelegate:
		return makeDelegate(scope, token, fullName)
	}
	return r.newClass(scope, token)
}

func (r *Resolver) makeInterface(scope *metadata.Scope, token metadata.Token, fullName string) (Declaration, error) {
	if isGenericName(fullName) {
		return r.newGenericInterface(scope, token)
	}
	return r.newInterface(KindInterface, scope, token)
}

func makeDelegate(scope *metadata.Scope, token metadata.Token, fullName string) (Declaration, error) {
	if isGenericName(fullName) {
		return newGenericDelegate(scope, token)
	}
	return newDelegate(KindDelegate, scope, token)
}

// MakeMethod builds the declaration of a MethodDef
func (r *Resolver) MakeMethod(scope *metadata.Scope, token metadata.Token) (*Method, error) {
	return newMethod(scope, token)
}

// MakeInterfaceDeclaration builds the interface a TypeDef, TypeRef or TypeSpec token
// refers to. TypeSpecs give a *GenericInterfaceInstance.
func (r *Resolver) MakeInterfaceDeclaration(scope *metadata.Scope, token metadata.Token) (Declaration, error) {
	if token.Is(metadata.TokenTypeSpec) {
		return r.makeGenericInterfaceInstance(scope, token)
	}

	ref, err := r.resolveTypeDef(scope, token)
	if err != nil {
		return nil, err
	}
	props, err := ref.Scope.TypeDefProps(ref.Token)
	if err != nil {
		return nil, err
	}
	if !metadata.IsTypeInterface(props.Flags) {
		return nil, errors.Invariant(errors.PhaseResolve, props.FullName(), "not an interface")
	}
	return r.makeInterface(ref.Scope, ref.Token, props.FullName())
}

// MakeDelegateDeclaration builds the delegate a TypeDef, TypeRef or TypeSpec token
// refers to. TypeSpecs give a *GenericDelegateInstance.
func (r *Resolver) MakeDelegateDeclaration(scope *metadata.Scope, token metadata.Token) (Declaration, error) {
	if token.Is(metadata.TokenTypeSpec) {
		return r.makeGenericDelegateInstance(scope, token)
	}

	ref, err := r.resolveTypeDef(scope, token)
	if err != nil {
		return nil, err
	}
	props, err := ref.Scope.TypeDefProps(ref.Token)
	if err != nil {
		return nil, err
	}
	return makeDelegate(ref.Scope, ref.Token, props.FullName())
}

type instanceParts struct {
	fullName  string
	open      ScopeRef
	arguments genericArguments
}

// decodeInstance reads a GENERICINST CLASS TypeSpec and locates its open type
func (r *Resolver) decodeInstance(scope *metadata.Scope, typeSpec metadata.Token) (instanceParts, error) {
	blob, err := scope.TypeSpecSignature(typeSpec)
	if err != nil {
		return instanceParts{}, err
	}
	if _, err := metadata.DecodeGenericInstanceHeader(blob); err != nil {
		return instanceParts{}, err
	}
	desc, err := metadata.NewCursor(blob).ConsumeType()
	if err != nil {
		return instanceParts{}, err
	}

	fullName, err := metadata.DisplayString(scope, desc)
	if err != nil {
		return instanceParts{}, err
	}
	open, err := r.resolveTypeDef(scope, desc.Token)
	if err != nil {
		return instanceParts{}, err
	}
	arguments, err := newGenericArguments(scope, desc)
	if err != nil {
		return instanceParts{}, err
	}
	return instanceParts{fullName: fullName, open: open, arguments: arguments}, nil
}

func (r *Resolver) makeGenericInterfaceInstance(scope *metadata.Scope, typeSpec metadata.Token) (*GenericInterfaceInstance, error) {
	parts, err := r.decodeInstance(scope, typeSpec)
	if err != nil {
		return nil, err
	}
	declaration, err := r.MakeInterfaceDeclaration(parts.open.Scope, parts.open.Token)
	if err != nil {
		return nil, err
	}
	open, ok := declaration.(*GenericInterface)
	if !ok {
		return nil, errors.Invariant(errors.PhaseResolve, parts.fullName, "instantiates non-generic %s", declaration.FullName())
	}

	instance := &GenericInterfaceInstance{
		BaseClass:        open.BaseClass,
		genericArguments: parts.arguments,
		open:             open,
	}
	instance.base = base{
		kind:     KindGenericInterfaceInstance,
		scope:    scope,
		token:    typeSpec,
		name:     SimpleName(parts.fullName),
		fullName: parts.fullName,
		exported: open.exported,
	}
	instance.interfaces = instance.closeInterfaces(open.interfaces)
	return instance, nil
}

func (r *Resolver) makeGenericDelegateInstance(scope *metadata.Scope, typeSpec metadata.Token) (*GenericDelegateInstance, error) {
	parts, err := r.decodeInstance(scope, typeSpec)
	if err != nil {
		return nil, err
	}
	declaration, err := r.MakeDelegateDeclaration(parts.open.Scope, parts.open.Token)
	if err != nil {
		return nil, err
	}
	open, ok := declaration.(*GenericDelegate)
	if !ok {
		return nil, errors.Invariant(errors.PhaseResolve, parts.fullName, "instantiates non-generic %s", declaration.FullName())
	}

	return &GenericDelegateInstance{
		base: base{
			kind:     KindGenericDelegateInstance,
			scope:    scope,
			token:    typeSpec,
			name:     SimpleName(parts.fullName),
			fullName: parts.fullName,
			exported: open.exported,
		},
		genericArguments: parts.arguments,
		open:             open,
	}, nil
}
