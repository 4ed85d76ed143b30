package metadata

// TypeDefProps describes one TypeDef row
type TypeDefProps struct {
	Name      string
	Namespace string
	Flags     uint32
	// Extends is the base type (TypeDef, TypeRef or TypeSpec). Nil for interfaces.
	Extends Token
}

func (props TypeDefProps) FullName() string {
	return joinTypeName(props.Namespace, props.Name)
}

// TypeRefProps describes one TypeRef row
type TypeRefProps struct {
	Name            string
	Namespace       string
	ResolutionScope Token
}

func (props TypeRefProps) FullName() string {
	return joinTypeName(props.Namespace, props.Name)
}

func joinTypeName(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

type MethodProps struct {
	Owner     Token
	Name      string
	Flags     uint32
	ImplFlags uint32
	Signature []byte
}

type MemberRefProps struct {
	Parent    Token
	Name      string
	Signature []byte
}

// Constant is the value of a literal field (enum members)
type Constant struct {
	Type  ElementType
	Value []byte
}

type FieldProps struct {
	Owner     Token
	Name      string
	Flags     uint32
	Signature []byte
	Constant  *Constant
}

type PropertyProps struct {
	Owner     Token
	Name      string
	Flags     uint32
	Signature []byte
	Getter    Token
	Setter    Token
}

type EventProps struct {
	Owner     Token
	Name      string
	Flags     uint32
	EventType Token
	AddOn     Token
	RemoveOn  Token
}

type ParamProps struct {
	Method   Token
	Name     string
	Sequence uint32
	Flags    uint32
}

type InterfaceImplProps struct {
	Class     Token
	Interface Token
}

type CustomAttributeProps struct {
	Parent      Token
	Constructor Token
	Value       []byte
}

// MethodImpl maps the body of a class method to the interface method it implements
type MethodImpl struct {
	Body        Token
	Declaration Token
}

type GenericParamProps struct {
	Owner  Token
	Number uint32
	Name   string
}

// Store is the raw accessor set over one opened metadata file.
// Enumerations return tokens in table order.
type Store interface {
	// Name identifies the store in logs, usually the file path
	Name() string

	TypeDefProps(token Token) (TypeDefProps, error)
	TypeRefProps(token Token) (TypeRefProps, error)
	MethodProps(token Token) (MethodProps, error)
	MemberRefProps(token Token) (MemberRefProps, error)
	FieldProps(token Token) (FieldProps, error)
	PropertyProps(token Token) (PropertyProps, error)
	EventProps(token Token) (EventProps, error)
	ParamProps(token Token) (ParamProps, error)
	InterfaceImplProps(token Token) (InterfaceImplProps, error)
	CustomAttributeProps(token Token) (CustomAttributeProps, error)
	GenericParamProps(token Token) (GenericParamProps, error)
	TypeSpecSignature(token Token) ([]byte, error)

	EnumTypeDefs() ([]Token, error)
	EnumMethods(typeDef Token) ([]Token, error)
	EnumFields(typeDef Token) ([]Token, error)
	EnumProperties(typeDef Token) ([]Token, error)
	EnumEvents(typeDef Token) ([]Token, error)
	EnumInterfaceImpls(typeDef Token) ([]Token, error)
	EnumMethodImpls(typeDef Token) ([]MethodImpl, error)
	EnumGenericParams(typeDef Token) ([]Token, error)
	EnumParams(method Token) ([]Token, error)
	EnumCustomAttributes(parent Token) ([]Token, error)

	FindTypeDefByName(fullName string) (Token, error)
	// FindMethod looks a method up by name; a nil signature matches any signature
	FindMethod(typeDef Token, name string, signature []byte) (Token, error)
	FindField(typeDef Token, name string) (Token, error)

	Close() error
}
