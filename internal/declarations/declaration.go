// Package declarations builds immutable descriptions of the namespaces, types and
// members found in Windows Metadata.
package declarations

import (
	"strings"

	"gowinrt/internal/metadata"
)

// Kind is the closed set of declaration variants
type Kind int

const (
	KindNamespace Kind = iota
	KindClass
	KindInterface
	KindGenericInterface
	KindGenericInterfaceInstance
	KindEnum
	KindEnumMember
	KindStruct
	KindStructField
	KindDelegate
	KindGenericDelegate
	KindGenericDelegateInstance
	KindEvent
	KindProperty
	KindMethod
	KindParameter
)

var kindNames = [...]string{
	KindNamespace:                "Namespace",
	KindClass:                    "Class",
	KindInterface:                "Interface",
	KindGenericInterface:         "GenericInterface",
	KindGenericInterfaceInstance: "GenericInterfaceInstance",
	KindEnum:                     "Enum",
	KindEnumMember:               "EnumMember",
	KindStruct:                   "Struct",
	KindStructField:              "StructField",
	KindDelegate:                 "Delegate",
	KindGenericDelegate:          "GenericDelegate",
	KindGenericDelegateInstance:  "GenericDelegateInstance",
	KindEvent:                    "Event",
	KindProperty:                 "Property",
	KindMethod:                   "Method",
	KindParameter:                "Parameter",
}

func (kind Kind) String() string {
	if int(kind) < len(kindNames) {
		return kindNames[kind]
	}
	return "Unknown"
}

// Declaration is implemented by every declaration variant of this package.
// Scope and Token are nil and zero for namespaces.
type Declaration interface {
	Kind() Kind
	Scope() *metadata.Scope
	Token() metadata.Token
	Name() string
	FullName() string
	IsExported() bool

	declaration()
}

type base struct {
	kind     Kind
	scope    *metadata.Scope
	token    metadata.Token
	name     string
	fullName string
	exported bool
}

func (b *base) Kind() Kind { return b.kind }
func (b *base) Scope() *metadata.Scope { return b.scope }
func (b *base) Token() metadata.Token { return b.token }
func (b *base) Name() string { return b.name }
func (b *base) FullName() string { return b.fullName }
func (b *base) IsExported() bool { return b.exported }
func (b *base) declaration() {}

// SimpleName strips the namespace, generic arity and argument list from a type name:
// "Windows.Foundation.IReference`1<Int32>" becomes "IReference".
func SimpleName(fullName string) string {
	if open := strings.IndexByte(fullName, '<'); open >= 0 {
		fullName = fullName[:open]
	}
	if last := strings.LastIndexByte(fullName, '.'); last >= 0 {
		fullName = fullName[last+1:]
	}
	if tick := strings.IndexByte(fullName, '`'); tick >= 0 {
		fullName = fullName[:tick]
	}
	return fullName
}

func memberName(owner, name string) string {
	return owner + "." + name
}

// filterExported keeps the exported declarations in their original order
func filterExported[T Declaration](all []T) []T {
	exported := make([]T, 0, len(all))
	for _, d := range all {
		if d.IsExported() {
			exported = append(exported, d)
		}
	}
	return exported
}
