package metadata

import (
	"fmt"
	"strings"

	"gowinrt/internal/errors"
)

const guidTypeName = "System.Guid"

// GuidDisplayName is the name System.Guid renders as
const GuidDisplayName = "Guid"

var elementNames = map[ElementType]string{
	ElementVoid:        "Void",
	ElementBoolean:     "Boolean",
	ElementChar:        "Char16",
	ElementI1:          "Int8",
	ElementU1:          "UInt8",
	ElementI2:          "Int16",
	ElementU2:          "UInt16",
	ElementI4:          "Int32",
	ElementU4:          "UInt32",
	ElementI8:          "Int64",
	ElementU8:          "UInt64",
	ElementR4:          "Single",
	ElementR8:          "Double",
	ElementString:      "String",
	ElementObject:      "Object",
	ElementByRef:       "ByRef",
	ElementValueType:   "ValueType",
	ElementClass:       "Class",
	ElementVar:         "Var",
	ElementGenericInst: "GenericInst",
	ElementSzArray:     "SzArray",
}

func (element ElementType) String() string {
	if name, found := elementNames[element]; found {
		return name
	}
	return fmt.Sprintf("ElementType(0x%02x)", byte(element))
}

// TypeNamer resolves the full name of a TypeDef, TypeRef or TypeSpec token
type TypeNamer interface {
	TypeName(token Token) (string, error)
}

// DisplayString renders a descriptor as a readable type name, e.g.
// "Windows.Foundation.Collections.IVector`1<String>" or "ByRef Int32[]".
func DisplayString(namer TypeNamer, desc TypeDescriptor) (string, error) {
	var b strings.Builder
	if err := writeDisplayString(&b, namer, desc); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeDisplayString(b *strings.Builder, namer TypeNamer, desc TypeDescriptor) error {
	if desc.Element.IsPrimitive() {
		b.WriteString(elementNames[desc.Element])
		return nil
	}

	switch desc.Element {
	case ElementClass, ElementValueType:
		name, err := namer.TypeName(desc.Token)
		if err != nil {
			return err
		}
		if name == guidTypeName {
			name = GuidDisplayName
		}
		b.WriteString(name)
		return nil

	case ElementSzArray:
		if err := writeDisplayString(b, namer, *desc.Elem); err != nil {
			return err
		}
		b.WriteString("[]")
		return nil

	case ElementByRef:
		b.WriteString("ByRef ")
		return writeDisplayString(b, namer, *desc.Elem)

	case ElementVar:
		fmt.Fprintf(b, "Var!%d", desc.Index)
		return nil

	case ElementGenericInst:
		name, err := namer.TypeName(desc.Token)
		if err != nil {
			return err
		}
		b.WriteString(name)
		b.WriteByte('<')
		for i, arg := range desc.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := writeDisplayString(b, namer, arg); err != nil {
				return err
			}
		}
		b.WriteByte('>')
		return nil
	}

	return errors.UnsupportedShape(byte(desc.Element), 0)
}
