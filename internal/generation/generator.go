// Package generation emits Go projections of WinRT types: interface wrappers calling
// through the vtable, enums as typed constants and structs as plain Go structs.
package generation

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gowinrt/internal/declarations"
	"gowinrt/internal/errors"
	"gowinrt/internal/identity"
	"gowinrt/internal/invocation"
	"gowinrt/internal/metadata"
	"gowinrt/internal/native"
)

const (
	windowsPackage = "golang.org/x/sys/windows"
	helpersFile    = "abi"
)

type Generator struct {
	PackageName string
	OutputPath  string

	resolver *declarations.Resolver
	ids      *identity.Builder
	layouts  *invocation.Binder
	types    map[string]declarations.Declaration
	order    []string
}

func NewGenerator(resolver *declarations.Resolver, packageName string, outputPath string) *Generator {
	ids := identity.NewBuilder(resolver)
	return &Generator{
		PackageName: packageName,
		OutputPath:  outputPath,
		resolver:    resolver,
		ids:         ids,
		layouts:     invocation.NewBinder(resolver, ids, nil),
		types:       make(map[string]declarations.Declaration),
	}
}

// RegisterName resolves a full type name and registers the declaration
func (generator *Generator) RegisterName(fullName string) error {
	declaration, err := generator.resolver.Resolve(fullName)
	if err != nil {
		return err
	}
	return generator.Register(declaration)
}

// Register queues a declaration for generation. Classes register the interfaces they implement.
func (generator *Generator) Register(declaration declarations.Declaration) error {
	switch d := declaration.(type) {
	case *declarations.Class:
		for _, iface := range d.Interfaces() {
			if err := generator.Register(iface); err != nil {
				return err
			}
		}
		return nil
	case *declarations.Interface, *declarations.GenericInterfaceInstance,
		*declarations.Enum, *declarations.Struct, *declarations.Delegate:
		generator.registerType(d)
		return nil
	}
	return errors.New(errors.PhaseBind, errors.KindUnsupportedSignatureShape).
		Name(declaration.FullName()).
		Detail("%s declarations are not projected", declaration.Kind()).
		Build()
}

func (generator *Generator) registerType(declaration declarations.Declaration) {
	if _, found := generator.types[declaration.FullName()]; found {
		return
	}
	generator.types[declaration.FullName()] = declaration
	generator.order = append(generator.order, declaration.FullName())
}

// Generate writes one file per registered type plus the shared call helpers and returns
// the written paths. Types referenced by registered members are generated too.
func (generator *Generator) Generate() ([]string, error) {
	if err := os.MkdirAll(generator.OutputPath, os.ModePerm); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	written := make([]string, 0, len(generator.order)+1)
	save := func(file *jen.File, name string) error {
		path := filepath.Join(generator.OutputPath, name+".go")
		if err := file.Save(path); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		written = append(written, path)
		Logger().Debug("saved projection", zap.String("path", path))
		return nil
	}

	// rendering may register referenced enums and structs, growing the order
	for i := 0; i < len(generator.order); i++ {
		declaration := generator.types[generator.order[i]]
		file, err := generator.File(declaration)
		if err != nil {
			return written, err
		}
		if err := save(file, goIdentifier(declaration.FullName())); err != nil {
			return written, err
		}
	}

	if err := save(generator.helpers(), helpersFile); err != nil {
		return written, err
	}
	Logger().Info("generated projections",
		zap.String("package", generator.PackageName),
		zap.Int("files", len(written)))
	return written, nil
}

// File renders the projection of a single declaration
func (generator *Generator) File(declaration declarations.Declaration) (*jen.File, error) {
	file := jen.NewFile(generator.PackageName)
	file.HeaderComment("Code generated by gowinrt. DO NOT EDIT.")

	var err error
	switch d := declaration.(type) {
	case *declarations.Interface:
		err = generator.generateInterface(file, d.FullName(), d.ID(), &d.BaseClass, nil)
	case *declarations.GenericInterfaceInstance:
		var id uuid.UUID
		if id, err = generator.ids.GenerateID(d); err == nil {
			err = generator.generateInterface(file, d.FullName(), id, &d.BaseClass, d.SubstituteGenericArguments)
		}
	case *declarations.Enum:
		generator.generateEnum(file, d)
	case *declarations.Struct:
		err = generator.generateStruct(file, d)
	case *declarations.Delegate:
		name := goIdentifier(d.FullName())
		file.Comment(fmt.Sprintf("%s is a %s delegate pointer", name, d.FullName()))
		file.Type().Id(name).Uintptr()
		generator.generateID(file, name, d.ID())
	default:
		err = errors.New(errors.PhaseBind, errors.KindUnsupportedSignatureShape).
			Name(declaration.FullName()).
			Detail("%s declarations are not projected", declaration.Kind()).
			Build()
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (generator *Generator) generateID(file *jen.File, name string, id uuid.UUID) {
	data4 := make([]jen.Code, 0, 8)
	for _, b := range id[8:] {
		data4 = append(data4, jen.Id(fmt.Sprintf("0x%02x", b)))
	}
	file.Var().Id(name+"ID").Op("=").Qual(windowsPackage, "GUID").Values(jen.Dict{
		jen.Id("Data1"): jen.Id(fmt.Sprintf("0x%08x", binary.BigEndian.Uint32(id[0:4]))),
		jen.Id("Data2"): jen.Id(fmt.Sprintf("0x%04x", binary.BigEndian.Uint16(id[4:6]))),
		jen.Id("Data3"): jen.Id(fmt.Sprintf("0x%04x", binary.BigEndian.Uint16(id[6:8]))),
		jen.Id("Data4"): jen.Index(jen.Lit(8)).Byte().Values(data4...),
	})
}

func (generator *Generator) generateInterface(file *jen.File, fullName string, id uuid.UUID, baseClass *declarations.BaseClass, substitute func(string) string) error {
	name := goIdentifier(fullName)
	if substitute == nil {
		substitute = func(typeName string) string { return typeName }
	}

	methods := make([]Method, 0, len(baseClass.VtableMethods()))
	skipped := make([]string, 0)
	for ordinal, method := range baseClass.VtableMethods() {
		projected, err := generator.method(method, native.InspectableVtableSize+ordinal, substitute)
		if errors.Is(err, errors.ErrUnsupportedSignatureShape) {
			skipped = append(skipped, method.Name())
			continue
		}
		if err != nil {
			return err
		}
		methods = append(methods, projected)
	}

	file.Comment(fmt.Sprintf("%s is a %s interface pointer", name, fullName))
	file.Type().Id(name).Uintptr()
	generator.generateID(file, name, id)

	file.Const().DefsFunc(func(g *jen.Group) {
		for _, method := range methods {
			g.Id(name + method.Name + "Slot").Op("=").Lit(method.Slot)
		}
	})

	for _, method := range methods {
		generator.generateMethod(file, name, method)
	}
	for _, skippedName := range skipped {
		file.Comment(fmt.Sprintf("%s.%s is not projected: array parameters are unsupported", name, skippedName))
	}
	return nil
}

func (generator *Generator) method(method *declarations.Method, slot int, substitute func(string) string) (Method, error) {
	projected := Method{
		Name:   goName(method.OverloadName()),
		Slot:   slot,
		IsVoid: method.IsVoid(),
	}
	for position, param := range method.Parameters() {
		paramType, err := generator.goType(substitute(param.TypeName()))
		if err != nil {
			return Method{}, err
		}
		projected.Params = append(projected.Params, Parameter{
			Name: parameterName(param.Name(), position),
			Type: paramType,
		})
	}
	if !projected.IsVoid {
		returnType, err := generator.goType(substitute(method.ReturnTypeName()))
		if err != nil {
			return Method{}, err
		}
		projected.ReturnType = returnType
	}
	return projected, nil
}

func (generator *Generator) generateMethod(file *jen.File, interfaceName string, method Method) {
	arguments := []jen.Code{
		jen.Id("method").Call(jen.Uintptr().Call(jen.Id("this")), jen.Id(interfaceName+method.Name+"Slot")),
		jen.Uintptr().Call(jen.Id("this")),
	}
	for _, param := range method.Params {
		arguments = append(arguments, param.Type.argument(param.Name))
	}

	funcHeader := file.Func().
		Params(jen.Id("this").Id(interfaceName)).
		Id(method.Name).
		ParamsFunc(func(g *jen.Group) {
			for _, param := range method.Params {
				g.Id(param.Name).Add(param.Type.code())
			}
		})

	if method.IsVoid {
		funcHeader.Error().Block(
			jen.List(jen.Id("hr"), jen.Id("_"), jen.Id("_")).Op(":=").Qual("syscall", "SyscallN").Call(arguments...),
			jen.Return(jen.Id("hresultError").Call(jen.Id("hr"))),
		).Line()
		return
	}

	arguments = append(arguments, jen.Uintptr().Call(jen.Qual("unsafe", "Pointer").Call(jen.Op("&").Id("result"))))
	funcHeader.Params(jen.Id("result").Add(method.ReturnType.code()), jen.Id("err").Error()).Block(
		jen.List(jen.Id("hr"), jen.Id("_"), jen.Id("_")).Op(":=").Qual("syscall", "SyscallN").Call(arguments...),
		jen.Id("err").Op("=").Id("hresultError").Call(jen.Id("hr")),
		jen.Return(),
	).Line()
}

func (generator *Generator) generateEnum(file *jen.File, enum *declarations.Enum) {
	name := goIdentifier(enum.FullName())
	underlying := jen.Int32()
	if enum.UnderlyingType().Element == metadata.ElementU4 {
		underlying = jen.Uint32()
	}
	file.Type().Id(name).Add(underlying)
	file.Const().DefsFunc(func(g *jen.Group) {
		for _, member := range enum.Members() {
			g.Id(name + goName(member.Name())).Id(name).Op("=").Lit(int(member.Value()))
		}
	})
}

func (generator *Generator) generateStruct(file *jen.File, structure *declarations.Struct) error {
	properties := make([]Property, 0, len(structure.Fields()))
	for _, field := range structure.Fields() {
		fieldType, err := generator.goType(field.TypeName())
		if err != nil {
			return err
		}
		properties = append(properties, Property{Name: goName(field.Name()), Type: fieldType})
	}

	file.Type().Id(goIdentifier(structure.FullName())).StructFunc(func(g *jen.Group) {
		for _, property := range properties {
			g.Id(property.Name).Add(property.Type.code())
		}
	})
	return nil
}

// goType maps a display name to its Go type, registering referenced enums and structs
func (generator *Generator) goType(typeName string) (Type, error) {
	if elem, found := strings.CutPrefix(typeName, "ByRef "); found {
		elemType, err := generator.goType(elem)
		if err != nil {
			return Type{}, err
		}
		elemType.Name = typeName
		elemType.IsPointer = true
		elemType.passing = passPointer
		return elemType, nil
	}
	if strings.HasSuffix(typeName, "[]") {
		return Type{}, errors.New(errors.PhaseBind, errors.KindUnsupportedSignatureShape).
			Name(typeName).
			Detail("arrays are not projected").
			Build()
	}
	if builtIn, found := builtInTypes[typeName]; found {
		builtIn.Name = typeName
		builtIn.IsBuiltIn = true
		return builtIn, nil
	}

	reference := Type{Name: typeName, GoName: "uintptr", IsBuiltIn: true}
	if strings.ContainsAny(typeName, "<!") {
		return reference, nil
	}

	declaration, err := generator.resolver.Resolve(typeName)
	if errors.Is(err, errors.ErrNotFound) {
		return reference, nil
	}
	if err != nil {
		return Type{}, err
	}
	switch d := declaration.(type) {
	case *declarations.Enum:
		generator.registerType(d)
		return Type{Name: typeName, GoName: goIdentifier(typeName)}, nil
	case *declarations.Struct:
		generator.registerType(d)
		layout, err := generator.layouts.LayoutOf(typeName)
		if err != nil {
			return Type{}, err
		}
		return Type{Name: typeName, GoName: goIdentifier(typeName), passing: structPassing(layout.Size)}, nil
	}
	return reference, nil
}

// Structs of 1, 2, 4 or 8 bytes travel in a register, anything else by address
func structPassing(size int) passing {
	switch size {
	case 1:
		return passValue8
	case 2:
		return passValue16
	case 4:
		return passValue32
	case 8:
		return passValue64
	}
	return passAddress
}

// helpers renders the vtable lookup and result conversion shared by every projection
func (generator *Generator) helpers() *jen.File {
	file := jen.NewFile(generator.PackageName)
	file.HeaderComment("Code generated by gowinrt. DO NOT EDIT.")

	file.Func().Id("method").Params(jen.Id("this").Uintptr(), jen.Id("slot").Int()).Uintptr().Block(
		jen.Id("vtable").Op(":=").Op("*").Parens(jen.Op("*").Uintptr()).Parens(jen.Qual("unsafe", "Pointer").Call(jen.Id("this"))),
		jen.Return(jen.Op("*").Parens(jen.Op("*").Uintptr()).Parens(jen.Qual("unsafe", "Pointer").Call(
			jen.Id("vtable").Op("+").Uintptr().Call(jen.Id("slot")).Op("*").Qual("unsafe", "Sizeof").Call(jen.Id("this"))))),
	).Line()

	file.Func().Id("hresultError").Params(jen.Id("hr").Uintptr()).Error().Block(
		jen.If(jen.Int32().Call(jen.Id("hr")).Op(">=").Lit(0)).Block(jen.Return(jen.Nil())),
		jen.Return(jen.Qual("fmt", "Errorf").Call(jen.Lit("HRESULT 0x%08X"), jen.Uint32().Call(jen.Id("hr")))),
	).Line()

	file.Func().Id("boolArg").Params(jen.Id("value").Bool()).Uintptr().Block(
		jen.If(jen.Id("value")).Block(jen.Return(jen.Lit(1))),
		jen.Return(jen.Lit(0)),
	)
	return file
}
