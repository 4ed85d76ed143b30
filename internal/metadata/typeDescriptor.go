package metadata

// TypeDescriptor is one decoded signature type. Which fields are set depends on Element:
//   - primitives (void, bool, char, integers, floats, string, object): none
//   - ElementClass, ElementValueType: Token
//   - ElementSzArray, ElementByRef: Elem
//   - ElementGenericInst: Token (the open generic type), ValueType and Args
//   - ElementVar: Index
type TypeDescriptor struct {
	Element   ElementType
	Token     Token
	ValueType bool
	Elem      *TypeDescriptor
	Args      []TypeDescriptor
	Index     uint32
}

func Primitive(element ElementType) TypeDescriptor {
	return TypeDescriptor{Element: element}
}

func ClassType(token Token) TypeDescriptor {
	return TypeDescriptor{Element: ElementClass, Token: token}
}

func ValueTypeOf(token Token) TypeDescriptor {
	return TypeDescriptor{Element: ElementValueType, Token: token}
}

func ArrayOf(elem TypeDescriptor) TypeDescriptor {
	return TypeDescriptor{Element: ElementSzArray, Elem: &elem}
}

func ByRefOf(elem TypeDescriptor) TypeDescriptor {
	return TypeDescriptor{Element: ElementByRef, Elem: &elem}
}

func GenericInstance(token Token, args ...TypeDescriptor) TypeDescriptor {
	return TypeDescriptor{Element: ElementGenericInst, Token: token, Args: args}
}

func GenericVar(index uint32) TypeDescriptor {
	return TypeDescriptor{Element: ElementVar, Index: index}
}

func (desc TypeDescriptor) IsVoid() bool {
	return desc.Element == ElementVoid
}

func (desc TypeDescriptor) IsByRef() bool {
	return desc.Element == ElementByRef
}

// Equal compares descriptors structurally
func (desc TypeDescriptor) Equal(other TypeDescriptor) bool {
	if desc.Element != other.Element {
		return false
	}

	switch desc.Element {
	case ElementClass, ElementValueType:
		return desc.Token == other.Token
	case ElementSzArray, ElementByRef:
		if desc.Elem == nil || other.Elem == nil {
			return desc.Elem == other.Elem
		}
		return desc.Elem.Equal(*other.Elem)
	case ElementVar:
		return desc.Index == other.Index
	case ElementGenericInst:
		if desc.Token != other.Token || desc.ValueType != other.ValueType || len(desc.Args) != len(other.Args) {
			return false
		}
		for i := range desc.Args {
			if !desc.Args[i].Equal(other.Args[i]) {
				return false
			}
		}
		return true
	}

	return true
}

// MethodSignature is a decoded MethodDef/MemberRef signature blob
type MethodSignature struct {
	CallingConvention CallingConvention
	GenericParamCount uint32
	Return            TypeDescriptor
	Params            []TypeDescriptor
}

func (sig MethodSignature) HasThis() bool {
	return sig.CallingConvention.HasThis()
}

// PropertySignature is a decoded Property signature blob
type PropertySignature struct {
	HasThis bool
	Type    TypeDescriptor
	Params  []TypeDescriptor
}
