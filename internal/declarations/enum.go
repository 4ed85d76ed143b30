package declarations

import (
	"gowinrt/internal/errors"
	"gowinrt/internal/metadata"
)

const enumValueField = "value__"

type Enum struct {
	base
	underlying metadata.TypeDescriptor
	members    []*EnumMember
}

type EnumMember struct {
	base
	value int64
}

func newEnum(scope *metadata.Scope, token metadata.Token) (*Enum, error) {
	props, err := scope.TypeDefProps(token)
	if err != nil {
		return nil, err
	}
	fullName := props.FullName()

	enum := &Enum{
		base: base{
			kind:     KindEnum,
			scope:    scope,
			token:    token,
			name:     SimpleName(fullName),
			fullName: fullName,
			exported: metadata.IsTypeExported(props.Flags),
		},
	}

	valueField, err := scope.FindField(token, enumValueField)
	if err != nil {
		return nil, errors.New(errors.PhaseResolve, errors.KindInvariantViolation).
			Name(fullName).
			Detail("enum has no %s field", enumValueField).
			Cause(err).
			Build()
	}
	valueProps, err := scope.FieldProps(valueField)
	if err != nil {
		return nil, err
	}
	if enum.underlying, err = metadata.DecodeFieldSignature(valueProps.Signature); err != nil {
		return nil, err
	}

	fields, err := scope.EnumFields(token)
	if err != nil {
		return nil, err
	}
	for _, field := range fields {
		if field == valueField {
			continue
		}
		fieldProps, err := scope.FieldProps(field)
		if err != nil {
			return nil, err
		}
		if fieldProps.Constant == nil {
			return nil, errors.Invariant(errors.PhaseResolve, memberName(fullName, fieldProps.Name), "enum member has no constant value")
		}
		value, err := metadata.ConstantInt(*fieldProps.Constant)
		if err != nil {
			return nil, err
		}
		enum.members = append(enum.members, &EnumMember{
			base: base{
				kind:     KindEnumMember,
				scope:    scope,
				token:    field,
				name:     fieldProps.Name,
				fullName: memberName(fullName, fieldProps.Name),
				exported: true,
			},
			value: value,
		})
	}

	return enum, nil
}

// UnderlyingType is the type of the value__ field, Int32 or UInt32 for WinRT enums
func (e *Enum) UnderlyingType() metadata.TypeDescriptor {
	return e.underlying
}

// IsFlags reports an unsigned enum, which WinRT uses for flag sets
func (e *Enum) IsFlags() bool {
	return e.underlying.Element == metadata.ElementU4
}

func (e *Enum) Members() []*EnumMember {
	return e.members
}

func (m *EnumMember) Value() int64 {
	return m.value
}
