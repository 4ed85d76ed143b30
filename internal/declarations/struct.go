package declarations

import (
	"gowinrt/internal/metadata"
)

type Struct struct {
	base
	fields []*StructField
}

type StructField struct {
	base
	desc     metadata.TypeDescriptor
	typeName string
}

func newStruct(scope *metadata.Scope, token metadata.Token) (*Struct, error) {
	props, err := scope.TypeDefProps(token)
	if err != nil {
		return nil, err
	}
	fullName := props.FullName()

	fields, err := scope.EnumFields(token)
	if err != nil {
		return nil, err
	}
	result := &Struct{
		base: base{
			kind:     KindStruct,
			scope:    scope,
			token:    token,
			name:     SimpleName(fullName),
			fullName: fullName,
			exported: metadata.IsTypeExported(props.Flags),
		},
		fields: make([]*StructField, 0, len(fields)),
	}

	for _, field := range fields {
		fieldProps, err := scope.FieldProps(field)
		if err != nil {
			return nil, err
		}
		desc, err := metadata.DecodeFieldSignature(fieldProps.Signature)
		if err != nil {
			return nil, err
		}
		typeName, err := metadata.DisplayString(scope, desc)
		if err != nil {
			return nil, err
		}
		result.fields = append(result.fields, &StructField{
			base: base{
				kind:     KindStructField,
				scope:    scope,
				token:    field,
				name:     fieldProps.Name,
				fullName: memberName(fullName, fieldProps.Name),
				exported: true,
			},
			desc:     desc,
			typeName: typeName,
		})
	}
	return result, nil
}

func (s *Struct) Fields() []*StructField {
	return s.fields
}

func (f *StructField) Type() metadata.TypeDescriptor {
	return f.desc
}

func (f *StructField) TypeName() string {
	return f.typeName
}
