package declarations

import (
	"gowinrt/internal/metadata"
)

// BaseClassDeclaration is the shared shape of classes and interfaces. Every list holds
// exported members only, in metadata order.
type BaseClassDeclaration interface {
	Declaration
	Interfaces() []Declaration
	Methods() []*Method
	Properties() []*Property
	Events() []*Event
	FindMembersWithName(name string) []Declaration
}

type BaseClass struct {
	base
	interfaces []Declaration
	methods    []*Method
	vtable     []*Method
	properties []*Property
	events     []*Event
}

func (r *Resolver) newBaseClass(kind Kind, scope *metadata.Scope, token metadata.Token) (BaseClass, error) {
	props, err := scope.TypeDefProps(token)
	if err != nil {
		return BaseClass{}, err
	}
	fullName := props.FullName()

	result := BaseClass{
		base: base{
			kind:     kind,
			scope:    scope,
			token:    token,
			name:     SimpleName(fullName),
			fullName: fullName,
			exported: metadata.IsTypeExported(props.Flags),
		},
	}

	impls, err := scope.EnumInterfaceImpls(token)
	if err != nil {
		return BaseClass{}, err
	}
	interfaces := make([]Declaration, 0, len(impls))
	for _, impl := range impls {
		implProps, err := scope.InterfaceImplProps(impl)
		if err != nil {
			return BaseClass{}, err
		}
		iface, err := r.MakeInterfaceDeclaration(scope, implProps.Interface)
		if err != nil {
			return BaseClass{}, err
		}
		interfaces = append(interfaces, iface)
	}
	result.interfaces = filterExported(interfaces)

	methodTokens, err := scope.EnumMethods(token)
	if err != nil {
		return BaseClass{}, err
	}
	methods := make([]*Method, 0, len(methodTokens))
	for _, methodToken := range methodTokens {
		method, err := newMethod(scope, methodToken)
		if err != nil {
			return BaseClass{}, err
		}
		methods = append(methods, method)
	}
	result.methods = filterExported(methods)
	result.vtable = methods

	propertyTokens, err := scope.EnumProperties(token)
	if err != nil {
		return BaseClass{}, err
	}
	properties := make([]*Property, 0, len(propertyTokens))
	for _, propertyToken := range propertyTokens {
		property, err := newProperty(scope, propertyToken, fullName)
		if err != nil {
			return BaseClass{}, err
		}
		properties = append(properties, property)
	}
	result.properties = filterExported(properties)

	eventTokens, err := scope.EnumEvents(token)
	if err != nil {
		return BaseClass{}, err
	}
	events := make([]*Event, 0, len(eventTokens))
	for _, eventToken := range eventTokens {
		event, err := r.newEvent(scope, eventToken, fullName)
		if err != nil {
			return BaseClass{}, err
		}
		events = append(events, event)
	}
	result.events = filterExported(events)

	return result, nil
}

func (c *BaseClass) Interfaces() []Declaration {
	return c.interfaces
}

func (c *BaseClass) Methods() []*Method {
	return c.methods
}

// VtableMethods lists every method in metadata order, accessors included. On an
// interface this is the order of the slots following IInspectable.
func (c *BaseClass) VtableMethods() []*Method {
	return c.vtable
}

func (c *BaseClass) Properties() []*Property {
	return c.properties
}

func (c *BaseClass) Events() []*Event {
	return c.events
}

// FindMembersWithName returns the methods, properties and events called name.
// Overloaded methods match on either their metadata name or their overload name.
func (c *BaseClass) FindMembersWithName(name string) []Declaration {
	members := make([]Declaration, 0)
	for _, method := range c.methods {
		if method.name == name || method.overloadName == name {
			members = append(members, method)
		}
	}
	for _, property := range c.properties {
		if property.name == name {
			members = append(members, property)
		}
	}
	for _, event := range c.events {
		if event.name == name {
			members = append(members, event)
		}
	}
	return members
}
