package generation

import (
	"go/token"
	"strconv"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"

	"gowinrt/internal/declarations"
)

type passing int

const (
	passWord passing = iota
	passBool
	passFloat32
	passFloat64
	passAddress
	passPointer
	passValue8
	passValue16
	passValue32
	passValue64
)

// Type is the Go rendering of a metadata type name
type Type struct {
	Name      string // display name in metadata
	GoName    string
	Qualifier string // import path when GoName lives in another package
	IsPointer bool
	IsBuiltIn bool
	passing   passing
}

func (t Type) code() jen.Code {
	var name *jen.Statement
	if t.Qualifier != "" {
		name = jen.Qual(t.Qualifier, t.GoName)
	} else {
		name = jen.Id(t.GoName)
	}
	if t.IsPointer {
		return jen.Op("*").Add(name)
	}
	return name
}

// argument renders the expression passing value to a native call
func (t Type) argument(value string) jen.Code {
	address := jen.Qual("unsafe", "Pointer").Call(jen.Op("&").Id(value))
	switch t.passing {
	case passBool:
		return jen.Id("boolArg").Call(jen.Id(value))
	case passFloat32:
		return jen.Uintptr().Call(jen.Qual("math", "Float32bits").Call(jen.Id(value)))
	case passFloat64:
		return jen.Uintptr().Call(jen.Qual("math", "Float64bits").Call(jen.Id(value)))
	case passAddress:
		return jen.Uintptr().Call(address)
	case passPointer:
		return jen.Uintptr().Call(jen.Qual("unsafe", "Pointer").Call(jen.Id(value)))
	case passValue8:
		return jen.Uintptr().Call(jen.Op("*").Parens(jen.Op("*").Uint8()).Parens(address))
	case passValue16:
		return jen.Uintptr().Call(jen.Op("*").Parens(jen.Op("*").Uint16()).Parens(address))
	case passValue32:
		return jen.Uintptr().Call(jen.Op("*").Parens(jen.Op("*").Uint32()).Parens(address))
	case passValue64:
		return jen.Uintptr().Call(jen.Op("*").Parens(jen.Op("*").Uint64()).Parens(address))
	}
	return jen.Uintptr().Call(jen.Id(value))
}

// Property is one struct field
type Property struct {
	Name string
	Type Type
}

type Parameter struct {
	Name string
	Type Type
}

// Method is one vtable entry of a projected interface
type Method struct {
	Name       string
	Slot       int
	Params     []Parameter
	ReturnType Type
	IsVoid     bool
}

var builtInTypes = map[string]Type{
	"Boolean": {GoName: "bool", passing: passBool},
	"Char16":  {GoName: "uint16"},
	"UInt8":   {GoName: "uint8"},
	"Int8":    {GoName: "int8"},
	"UInt16":  {GoName: "uint16"},
	"Int16":   {GoName: "int16"},
	"UInt32":  {GoName: "uint32"},
	"Int32":   {GoName: "int32"},
	"UInt64":  {GoName: "uint64"},
	"Int64":   {GoName: "int64"},
	"Single":  {GoName: "float32", passing: passFloat32},
	"Double":  {GoName: "float64", passing: passFloat64},
	// HSTRING and object references travel as raw handles
	"String": {GoName: "uintptr"},
	"Object": {GoName: "uintptr"},
	"Guid":   {GoName: "GUID", Qualifier: windowsPackage, passing: passAddress},
}

// goIdentifier turns a metadata name, generic instances included, into an exported Go identifier.
// "Sample.Widgets.IBox`1<Int32>" becomes "IBoxInt32".
func goIdentifier(name string) string {
	var b strings.Builder
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '<' || r == '>' || r == ',' || r == ' ' }) {
		b.WriteString(goName(declarations.SimpleName(part)))
	}
	return b.String()
}

// goName turns get_Name into GetName
func goName(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		for _, r := range runes {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

func parameterName(name string, position int) string {
	if name == "" {
		return "arg" + strconv.Itoa(position)
	}
	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])
	name = string(runes)
	if token.IsKeyword(name) || name == "this" || name == "result" || name == "err" {
		return name + "Value"
	}
	return name
}
