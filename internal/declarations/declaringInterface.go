package declarations

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"gowinrt/internal/errors"
	"gowinrt/internal/metadata"
)

// FactoryKind tells how a method reaches its declaring interface
type FactoryKind int

const (
	// FactoryNone is default activation through IActivationFactory
	FactoryNone FactoryKind = iota
	FactoryStatic
	FactoryComposable
	FactoryActivatable
	FactoryInstance
)

func (kind FactoryKind) String() string {
	switch kind {
	case FactoryNone:
		return "none"
	case FactoryStatic:
		return "static"
	case FactoryComposable:
		return "composable"
	case FactoryActivatable:
		return "activatable"
	case FactoryInstance:
		return "instance"
	}
	return fmt.Sprintf("FactoryKind(%d)", int(kind))
}

// DeclaringInterface is the interface through which a method is called and the method's
// position in that interface's method list. Interface is nil for default activation.
type DeclaringInterface struct {
	Interface Declaration
	Ordinal   int
	Via       FactoryKind
}

// FindDeclaringInterface maps a method to the interface whose vtable carries it
func (r *Resolver) FindDeclaringInterface(method *Method) (DeclaringInterface, error) {
	var (
		result DeclaringInterface
		err    error
	)
	switch {
	case method.IsStatic():
		result, err = r.declaringInterfaceForStatic(method)
	case method.IsInitializer():
		result, err = r.declaringInterfaceForInitializer(method)
	default:
		result, err = r.declaringInterfaceForInstance(method)
	}
	if err != nil {
		return DeclaringInterface{}, err
	}

	iface := "IActivationFactory"
	if result.Interface != nil {
		iface = result.Interface.FullName()
	}
	Logger().Debug("found declaring interface",
		zap.String("method", method.FullName()),
		zap.String("interface", iface),
		zap.Int("ordinal", result.Ordinal),
		zap.Stringer("via", result.Via))
	return result, nil
}

// factoryMethod is one candidate method of a statics or factory interface
type factoryMethod struct {
	ordinal int
	props   metadata.MethodProps
	sig     metadata.MethodSignature
}

func factoryMethods(ref ScopeRef) ([]factoryMethod, error) {
	tokens, err := ref.Scope.EnumMethods(ref.Token)
	if err != nil {
		return nil, err
	}
	methods := make([]factoryMethod, 0, len(tokens))
	for i, token := range tokens {
		props, err := ref.Scope.MethodProps(token)
		if err != nil {
			return nil, err
		}
		sig, err := metadata.DecodeMethodSignature(props.Signature)
		if err != nil {
			return nil, err
		}
		methods = append(methods, factoryMethod{ordinal: i, props: props, sig: sig})
	}
	return methods, nil
}

// attributeInterfaces returns the interfaces named by the System.Type argument of each
// attribute of the given type on the method's owner. Attributes without one are skipped.
func (r *Resolver) attributeInterfaces(method *Method, attributeType string) ([]ScopeRef, error) {
	scope := method.scope
	attributes, err := scope.CustomAttributesByName(method.owner, attributeType)
	if err != nil {
		return nil, err
	}
	refs := make([]ScopeRef, 0, len(attributes))
	for _, attribute := range attributes {
		name, ok, err := scope.TypeArgument(attribute)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		ref, err := r.resolveTypeName(scope, name)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (r *Resolver) declaringInterfaceForStatic(method *Method) (DeclaringInterface, error) {
	statics, err := r.attributeInterfaces(method, metadata.StaticAttribute)
	if err != nil {
		return DeclaringInterface{}, err
	}

	for _, ref := range statics {
		methods, err := factoryMethods(ref)
		if err != nil {
			return DeclaringInterface{}, err
		}
		match := -1
		for _, candidate := range methods {
			if !metadata.SignaturesMatch(candidate.props.Signature, method.signature) {
				continue
			}
			if candidate.props.Name == method.name {
				match = candidate.ordinal
				break
			}
			if match < 0 {
				match = candidate.ordinal
			}
		}
		if match < 0 {
			continue
		}
		return r.declaringInterface(ref, match, FactoryStatic)
	}

	return DeclaringInterface{}, errors.NoFactory(method.fullName, "no statics interface declares a matching method")
}

func (r *Resolver) declaringInterfaceForInitializer(method *Method) (DeclaringInterface, error) {
	count := len(method.decoded.Params)

	composable, err := r.attributeInterfaces(method, metadata.ComposableAttribute)
	if err != nil {
		return DeclaringInterface{}, err
	}
	for _, ref := range composable {
		methods, err := factoryMethods(ref)
		if err != nil {
			return DeclaringInterface{}, err
		}
		// composable factories take the outer object and return the inner one
		for _, candidate := range methods {
			if len(candidate.sig.Params) == count+2 {
				return r.declaringInterface(ref, candidate.ordinal, FactoryComposable)
			}
		}
	}

	if count == 0 {
		return DeclaringInterface{Via: FactoryNone}, nil
	}

	activatable, err := r.attributeInterfaces(method, metadata.ActivatableAttribute)
	if err != nil {
		return DeclaringInterface{}, err
	}
	for _, ref := range activatable {
		methods, err := factoryMethods(ref)
		if err != nil {
			return DeclaringInterface{}, err
		}
		for _, candidate := range methods {
			if len(candidate.sig.Params) == count {
				return r.declaringInterface(ref, candidate.ordinal, FactoryActivatable)
			}
		}
	}

	return DeclaringInterface{}, errors.NoFactory(method.fullName, "no factory method takes %d arguments", count)
}

func (r *Resolver) declaringInterface(ref ScopeRef, ordinal int, via FactoryKind) (DeclaringInterface, error) {
	iface, err := r.MakeInterfaceDeclaration(ref.Scope, ref.Token)
	if err != nil {
		return DeclaringInterface{}, err
	}
	return DeclaringInterface{Interface: iface, Ordinal: ordinal, Via: via}, nil
}

func (r *Resolver) declaringInterfaceForInstance(method *Method) (DeclaringInterface, error) {
	scope := method.scope
	owner, err := scope.TypeDefProps(method.owner)
	if err != nil {
		return DeclaringInterface{}, err
	}

	if metadata.IsTypeInterface(owner.Flags) {
		ordinal, err := methodOrdinal(ScopeRef{Scope: scope, Token: method.owner}, method.token)
		if err != nil {
			return DeclaringInterface{}, err
		}
		return r.declaringInterface(ScopeRef{Scope: scope, Token: method.owner}, ordinal, FactoryInstance)
	}

	impls, err := scope.EnumMethodImpls(method.owner)
	if err != nil {
		return DeclaringInterface{}, err
	}
	for _, impl := range impls {
		if impl.Body != method.token {
			continue
		}

		switch impl.Declaration.Kind() {
		case metadata.TokenMethodDef:
			declaring, err := scope.MethodProps(impl.Declaration)
			if err != nil {
				return DeclaringInterface{}, err
			}
			ref := ScopeRef{Scope: scope, Token: declaring.Owner}
			ordinal, err := methodOrdinal(ref, impl.Declaration)
			if err != nil {
				return DeclaringInterface{}, err
			}
			return r.declaringInterface(ref, ordinal, FactoryInstance)

		case metadata.TokenMemberRef:
			return r.declaringInterfaceForMemberRef(scope, impl.Declaration)
		}

		return DeclaringInterface{}, errors.Invariant(errors.PhaseBind, method.fullName,
			"method implementation declared by %s", impl.Declaration)
	}

	return DeclaringInterface{}, errors.NoFactory(method.fullName, "no interface declares the method")
}

func (r *Resolver) declaringInterfaceForMemberRef(scope *metadata.Scope, memberRef metadata.Token) (DeclaringInterface, error) {
	props, err := scope.MemberRefProps(memberRef)
	if err != nil {
		return DeclaringInterface{}, err
	}

	switch props.Parent.Kind() {
	case metadata.TokenTypeDef, metadata.TokenTypeRef:
		ref, err := r.resolveTypeDef(scope, props.Parent)
		if err != nil {
			return DeclaringInterface{}, err
		}
		ordinal, err := matchMemberRef(scope, props, ref)
		if err != nil {
			return DeclaringInterface{}, err
		}
		return r.declaringInterface(ref, ordinal, FactoryInstance)

	case metadata.TokenTypeSpec:
		instance, err := r.makeGenericInterfaceInstance(scope, props.Parent)
		if err != nil {
			return DeclaringInterface{}, err
		}
		open := instance.Open()
		ordinal, err := matchMemberRef(scope, props, ScopeRef{Scope: open.scope, Token: open.token})
		if err != nil {
			return DeclaringInterface{}, err
		}
		return DeclaringInterface{Interface: instance, Ordinal: ordinal, Via: FactoryInstance}, nil
	}

	return DeclaringInterface{}, errors.Invariant(errors.PhaseBind, props.Name, "member reference parent %s", props.Parent)
}

// methodOrdinal is the position of method in the full method list of its type
func methodOrdinal(ref ScopeRef, method metadata.Token) (int, error) {
	methods, err := ref.Scope.EnumMethods(ref.Token)
	if err != nil {
		return 0, err
	}
	for i, candidate := range methods {
		if candidate == method {
			return i, nil
		}
	}
	return 0, errors.Invariant(errors.PhaseBind, method.String(), "method not listed by its owner %s", ref.Token)
}

// matchMemberRef finds a member reference in the target type by name. Overloads are told
// apart by their rendered signatures since tokens differ between scopes.
func matchMemberRef(scope *metadata.Scope, props metadata.MemberRefProps, target ScopeRef) (int, error) {
	methods, err := factoryMethods(target)
	if err != nil {
		return 0, err
	}

	named := make([]factoryMethod, 0, 1)
	for _, candidate := range methods {
		if candidate.props.Name == props.Name {
			named = append(named, candidate)
		}
	}
	switch len(named) {
	case 0:
		return 0, errors.NotFound(errors.PhaseBind, props.Name)
	case 1:
		return named[0].ordinal, nil
	}

	wanted, err := renderSignature(scope, props.Signature)
	if err != nil {
		return 0, err
	}
	for _, candidate := range named {
		rendered, err := renderSignature(target.Scope, candidate.props.Signature)
		if err != nil {
			return 0, err
		}
		if rendered == wanted {
			return candidate.ordinal, nil
		}
	}
	return 0, errors.NotFound(errors.PhaseBind, props.Name+wanted)
}

// renderSignature renders a method signature as "(Param, Param) Return"
func renderSignature(scope *metadata.Scope, blob []byte) (string, error) {
	sig, err := metadata.DecodeMethodSignature(blob)
	if err != nil {
		return "", err
	}
	params := make([]string, 0, len(sig.Params))
	for _, param := range sig.Params {
		name, err := metadata.DisplayString(scope, param)
		if err != nil {
			return "", err
		}
		params = append(params, name)
	}
	ret, err := metadata.DisplayString(scope, sig.Return)
	if err != nil {
		return "", err
	}
	return "(" + strings.Join(params, ", ") + ") " + ret, nil
}
