package declarations

import (
	"sort"
	"strconv"
	"strings"

	"gowinrt/internal/metadata"
)

const genericVarPrefix = "Var!"

type genericArguments struct {
	arguments []metadata.TypeDescriptor
	names     []string
}

// GenericArguments are the instantiation arguments, with tokens relative to the instance scope
func (g *genericArguments) GenericArguments() []metadata.TypeDescriptor {
	return g.arguments
}

// GenericArgumentNames are the display strings of the arguments
func (g *genericArguments) GenericArgumentNames() []string {
	return g.names
}

// SubstituteGenericArguments replaces each Var!N placeholder in a display string with
// the display string of the N-th argument. Placeholders out of range are kept.
func (g *genericArguments) SubstituteGenericArguments(name string) string {
	var b strings.Builder
	for {
		at := strings.Index(name, genericVarPrefix)
		if at < 0 {
			b.WriteString(name)
			return b.String()
		}
		b.WriteString(name[:at])
		rest := name[at+len(genericVarPrefix):]
		digits := 0
		for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
			digits++
		}
		index, err := strconv.Atoi(rest[:digits])
		if err != nil || index >= len(g.names) {
			b.WriteString(name[at : at+len(genericVarPrefix)+digits])
		} else {
			b.WriteString(g.names[index])
		}
		name = rest[digits:]
	}
}

// closeInterfaces substitutes the arguments into the generic instances an open interface
// requires, recursively. Substituted descriptors keep tokens of the instantiating scope.
func (g *genericArguments) closeInterfaces(interfaces []Declaration) []Declaration {
	closed := make([]Declaration, 0, len(interfaces))
	for _, iface := range interfaces {
		required, ok := iface.(*GenericInterfaceInstance)
		if !ok {
			closed = append(closed, iface)
			continue
		}
		instance := *required
		instance.fullName = g.SubstituteGenericArguments(required.fullName)
		instance.genericArguments = g.substituteArguments(required.genericArguments)
		instance.interfaces = g.closeInterfaces(required.interfaces)
		closed = append(closed, &instance)
	}
	return closed
}

func (g *genericArguments) substituteArguments(args genericArguments) genericArguments {
	result := genericArguments{
		arguments: make([]metadata.TypeDescriptor, len(args.arguments)),
		names:     make([]string, len(args.names)),
	}
	for i, arg := range args.arguments {
		result.arguments[i] = g.substituteType(arg)
	}
	for i, name := range args.names {
		result.names[i] = g.SubstituteGenericArguments(name)
	}
	return result
}

func (g *genericArguments) substituteType(desc metadata.TypeDescriptor) metadata.TypeDescriptor {
	switch {
	case desc.Element == metadata.ElementVar:
		if int(desc.Index) < len(g.arguments) {
			return g.arguments[desc.Index]
		}
	case desc.Elem != nil:
		elem := g.substituteType(*desc.Elem)
		desc.Elem = &elem
	case len(desc.Args) > 0:
		args := make([]metadata.TypeDescriptor, len(desc.Args))
		for i, arg := range desc.Args {
			args[i] = g.substituteType(arg)
		}
		desc.Args = args
	}
	return desc
}

func newGenericArguments(scope *metadata.Scope, desc metadata.TypeDescriptor) (genericArguments, error) {
	names := make([]string, 0, len(desc.Args))
	for _, arg := range desc.Args {
		name, err := metadata.DisplayString(scope, arg)
		if err != nil {
			return genericArguments{}, err
		}
		names = append(names, name)
	}
	return genericArguments{arguments: desc.Args, names: names}, nil
}

func genericParameterNames(scope *metadata.Scope, token metadata.Token) ([]string, error) {
	tokens, err := scope.EnumGenericParams(token)
	if err != nil {
		return nil, err
	}
	params := make([]metadata.GenericParamProps, 0, len(tokens))
	for _, t := range tokens {
		props, err := scope.GenericParamProps(t)
		if err != nil {
			return nil, err
		}
		params = append(params, props)
	}
	sort.Slice(params, func(i, j int) bool { return params[i].Number < params[j].Number })

	names := make([]string, len(params))
	for i, param := range params {
		names[i] = param.Name
	}
	return names, nil
}

// genericArity reads N from a Name`N type name, falling back when there is no arity suffix
func genericArity(fullName string, fallback int) int {
	tick := strings.LastIndexByte(fullName, '`')
	if tick < 0 {
		return fallback
	}
	arity, err := strconv.Atoi(fullName[tick+1:])
	if err != nil {
		return fallback
	}
	return arity
}

func isGenericName(fullName string) bool {
	return strings.ContainsRune(fullName, '`')
}
