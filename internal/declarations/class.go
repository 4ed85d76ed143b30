package declarations

import (
	"gowinrt/internal/errors"
	"gowinrt/internal/metadata"
)

// Class is a runtime class
type Class struct {
	BaseClass
	baseFullName     string
	sealed           bool
	defaultInterface Declaration
	initializers     []*Method
	constructors     []*Method
	activatable      bool
	composable       bool
	statics          bool
}

func (r *Resolver) newClass(scope *metadata.Scope, token metadata.Token) (*Class, error) {
	baseClass, err := r.newBaseClass(KindClass, scope, token)
	if err != nil {
		return nil, err
	}
	props, err := scope.TypeDefProps(token)
	if err != nil {
		return nil, err
	}

	class := &Class{
		BaseClass: baseClass,
		sealed:    metadata.IsTypeSealed(props.Flags),
	}
	if !props.Extends.IsNil() {
		if class.baseFullName, err = scope.TypeName(props.Extends); err != nil {
			return nil, err
		}
	}

	if class.defaultInterface, err = r.defaultInterface(scope, token, baseClass.fullName); err != nil {
		return nil, err
	}

	methods, err := scope.EnumMethods(token)
	if err != nil {
		return nil, err
	}
	for _, methodToken := range methods {
		methodProps, err := scope.MethodProps(methodToken)
		if err != nil {
			return nil, err
		}
		if methodProps.Name != initializerName {
			continue
		}
		method, err := newMethod(scope, methodToken)
		if err != nil {
			return nil, err
		}
		class.constructors = append(class.constructors, method)
		// Factories invoke the non-public constructors
		if !metadata.IsMethodPublic(methodProps.Flags) {
			class.initializers = append(class.initializers, method)
		}
	}

	if class.activatable, err = scope.HasCustomAttribute(token, metadata.ActivatableAttribute); err != nil {
		return nil, err
	}
	if class.composable, err = scope.HasCustomAttribute(token, metadata.ComposableAttribute); err != nil {
		return nil, err
	}
	if class.statics, err = scope.HasCustomAttribute(token, metadata.StaticAttribute); err != nil {
		return nil, err
	}

	return class, nil
}

func (r *Resolver) defaultInterface(scope *metadata.Scope, token metadata.Token, fullName string) (Declaration, error) {
	impls, err := scope.EnumInterfaceImpls(token)
	if err != nil {
		return nil, err
	}
	for _, impl := range impls {
		isDefault, err := scope.HasCustomAttribute(impl, metadata.DefaultAttribute)
		if err != nil {
			return nil, err
		}
		if !isDefault {
			continue
		}
		implProps, err := scope.InterfaceImplProps(impl)
		if err != nil {
			return nil, err
		}
		return r.MakeInterfaceDeclaration(scope, implProps.Interface)
	}

	// Static-only classes have no instances and so no default interface
	statics, err := scope.HasCustomAttribute(token, metadata.StaticAttribute)
	if err != nil {
		return nil, err
	}
	if statics && len(impls) == 0 {
		return nil, nil
	}
	return nil, errors.Invariant(errors.PhaseResolve, fullName, "class has no default interface")
}

// BaseFullName is the full name of the base type, usually System.Object
func (c *Class) BaseFullName() string {
	return c.baseFullName
}

func (c *Class) IsSealed() bool {
	return c.sealed
}

// DefaultInterface is an *Interface or *GenericInterfaceInstance. It is nil only for
// static-only classes.
func (c *Class) DefaultInterface() Declaration {
	return c.defaultInterface
}

// Initializers are the non-public constructors, which are reached through activation factories
func (c *Class) Initializers() []*Method {
	return c.initializers
}

// Constructors are all constructors regardless of visibility
func (c *Class) Constructors() []*Method {
	return c.constructors
}

func (c *Class) IsActivatable() bool {
	return c.activatable
}

func (c *Class) IsComposable() bool {
	return c.composable
}

func (c *Class) HasStatics() bool {
	return c.statics
}

// IsStatic reports classes that only expose statics and can never be instantiated
func (c *Class) IsStatic() bool {
	return c.statics && !c.activatable && !c.composable
}
