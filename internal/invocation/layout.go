package invocation

import (
	"strings"
	"unsafe"

	"gowinrt/internal/declarations"
	"gowinrt/internal/errors"
	"gowinrt/internal/metadata"
)

const pointerSize = int(unsafe.Sizeof(uintptr(0)))

// Layout is the native size and alignment of a type
type Layout struct {
	Size  int
	Align int
}

var primitiveLayouts = map[string]Layout{
	"Boolean": {1, 1},
	"UInt8":   {1, 1},
	"Int8":    {1, 1},
	"UInt16":  {2, 2},
	"Int16":   {2, 2},
	"Char16":  {2, 2},
	"UInt32":  {4, 4},
	"Int32":   {4, 4},
	"Single":  {4, 4},
	"UInt64":  {8, 8},
	"Int64":   {8, 8},
	"Double":  {8, 8},
	"Guid":    {16, 4},
}

// LayoutOf computes a type's layout. Value types are laid out with natural alignment,
// everything else is pointer sized.
func (b *Binder) LayoutOf(typeName string) (Layout, error) {
	if layout, found := primitiveLayouts[typeName]; found {
		return layout, nil
	}
	if !isNamedValueTypeCandidate(typeName) {
		return Layout{pointerSize, pointerSize}, nil
	}

	declaration, err := b.resolver.Resolve(typeName)
	if err != nil {
		return Layout{}, err
	}
	switch d := declaration.(type) {
	case *declarations.Enum:
		return primitiveLayouts[enumKind(d).String()], nil
	case *declarations.Struct:
		return b.structLayout(d)
	}
	return Layout{pointerSize, pointerSize}, nil
}

func (b *Binder) structLayout(s *declarations.Struct) (Layout, error) {
	layout := Layout{Align: 1}
	for _, field := range s.Fields() {
		if field.TypeName() == s.FullName() {
			return Layout{}, errors.Invariant(errors.PhaseBind, s.FullName(), "struct contains itself")
		}
		fieldLayout, err := b.LayoutOf(field.TypeName())
		if err != nil {
			return Layout{}, err
		}
		layout.Size = alignUp(layout.Size, fieldLayout.Align) + fieldLayout.Size
		layout.Align = max(layout.Align, fieldLayout.Align)
	}
	layout.Size = alignUp(layout.Size, layout.Align)
	return layout, nil
}

func enumKind(e *declarations.Enum) ArgumentKind {
	if e.UnderlyingType().Element == metadata.ElementU4 {
		return UInt32
	}
	return Int32
}

func alignUp(n, align int) int {
	return (n + align - 1) / align * align
}

// Only plain named types can be enums or structs
func isNamedValueTypeCandidate(typeName string) bool {
	return typeName != "String" && typeName != "Object" &&
		!strings.ContainsAny(typeName, "<[") &&
		!strings.HasPrefix(typeName, "ByRef ") &&
		!strings.HasPrefix(typeName, "Var!")
}
