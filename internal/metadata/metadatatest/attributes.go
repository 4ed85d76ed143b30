package metadatatest

import (
	"encoding/binary"
	"strings"

	"github.com/google/uuid"

	"gowinrt/internal/metadata"
)

const foundationMetadata = "Windows.Foundation.Metadata"

// Attribute attaches a custom attribute whose constructor is a MemberRef on a TypeRef
// to the named attribute type. args are appended after the 0x0001 prolog as given.
func (store *Store) Attribute(parent metadata.Token, attributeType string, ctorParams []metadata.TypeDescriptor, args []byte) metadata.Token {
	namespace, name := splitName(attributeType)
	ctor := store.MemberRef(store.TypeRef(namespace, name), ".ctor", metadata.MethodSignature{
		CallingConvention: metadata.CallingConventionHasThis,
		Return:            metadata.Primitive(metadata.ElementVoid),
		Params:            ctorParams,
	})

	value := append([]byte{0x01, 0x00}, args...)
	value = append(value, 0x00, 0x00) // no named arguments
	store.customAttributes = append(store.customAttributes, metadata.CustomAttributeProps{
		Parent:      parent,
		Constructor: ctor,
		Value:       value,
	})
	return metadata.NewToken(metadata.TokenCustomAttribute, uint32(len(store.customAttributes)))
}

func splitName(fullName string) (string, string) {
	last := strings.LastIndexByte(fullName, '.')
	if last < 0 {
		return "", fullName
	}
	return fullName[:last], fullName[last+1:]
}

func (store *Store) systemType() metadata.TypeDescriptor {
	return metadata.ClassType(store.TypeRef("System", "Type"))
}

// SerString encodes a length-prefixed UTF-8 string
func SerString(value string) []byte {
	out, err := metadata.EncodeCompressedInteger(nil, uint32(len(value)))
	if err != nil {
		panic(err)
	}
	return append(out, value...)
}

func u32(value uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, value)
}

func (store *Store) GuidAttribute(parent metadata.Token, id uuid.UUID) metadata.Token {
	raw := metadata.GUIDToLittleEndian(id)
	params := []metadata.TypeDescriptor{
		metadata.Primitive(metadata.ElementU4),
		metadata.Primitive(metadata.ElementU2),
		metadata.Primitive(metadata.ElementU2),
	}
	for i := 0; i < 8; i++ {
		params = append(params, metadata.Primitive(metadata.ElementU1))
	}
	return store.Attribute(parent, metadata.GuidAttribute, params, raw[:])
}

// DefaultAttribute marks an InterfaceImpl as the class's default interface
func (store *Store) DefaultAttribute(interfaceImpl metadata.Token) metadata.Token {
	return store.Attribute(interfaceImpl, metadata.DefaultAttribute, nil, nil)
}

// StaticAttribute declares a statics interface for a class
func (store *Store) StaticAttribute(class metadata.Token, staticsType string) metadata.Token {
	return store.Attribute(class, metadata.StaticAttribute,
		[]metadata.TypeDescriptor{store.systemType(), metadata.Primitive(metadata.ElementU4)},
		append(SerString(staticsType), u32(1)...))
}

// ActivatableAttribute declares a factory interface for a class
func (store *Store) ActivatableAttribute(class metadata.Token, factoryType string) metadata.Token {
	return store.Attribute(class, metadata.ActivatableAttribute,
		[]metadata.TypeDescriptor{store.systemType(), metadata.Primitive(metadata.ElementU4)},
		append(SerString(factoryType), u32(1)...))
}

// DefaultActivatableAttribute marks a class as default-constructible (version only, no factory type)
func (store *Store) DefaultActivatableAttribute(class metadata.Token) metadata.Token {
	return store.Attribute(class, metadata.ActivatableAttribute,
		[]metadata.TypeDescriptor{metadata.Primitive(metadata.ElementU4)},
		u32(1))
}

// ComposableAttribute declares a composition factory interface for a class
func (store *Store) ComposableAttribute(class metadata.Token, factoryType string) metadata.Token {
	compositionType := metadata.ValueTypeOf(store.TypeRef(foundationMetadata, "CompositionType"))
	args := append(SerString(factoryType), u32(2)...) // CompositionType.Public
	args = append(args, u32(1)...)
	return store.Attribute(class, metadata.ComposableAttribute,
		[]metadata.TypeDescriptor{store.systemType(), compositionType, metadata.Primitive(metadata.ElementU4)},
		args)
}

func (store *Store) OverloadAttribute(method metadata.Token, name string) metadata.Token {
	return store.Attribute(method, metadata.OverloadAttribute,
		[]metadata.TypeDescriptor{metadata.Primitive(metadata.ElementString)},
		SerString(name))
}

func (store *Store) DefaultOverloadAttribute(method metadata.Token) metadata.Token {
	return store.Attribute(method, metadata.DefaultOverloadAttribute, nil, nil)
}

// Index builds a ScopeIndex over the stores, panicking on failure
func Index(stores ...*Store) *metadata.ScopeIndex {
	index := metadata.NewScopeIndex()
	for _, store := range stores {
		if err := index.Add(metadata.NewScope(store)); err != nil {
			panic(err)
		}
	}
	return index
}
