package declarations

import (
	"fmt"
	"strings"
)

// Describe renders a declaration and its members as indented text. The output is stable
// for a given metadata set.
func Describe(d Declaration) string {
	var b strings.Builder
	describe(&b, d, 0)
	return b.String()
}

func line(b *strings.Builder, depth int, format string, args ...any) {
	b.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(b, format, args...)
	b.WriteByte('\n')
}

func describe(b *strings.Builder, d Declaration, depth int) {
	switch d := d.(type) {
	case *Namespace:
		name := d.FullName()
		if d.IsRoot() {
			name = "<root>"
		}
		line(b, depth, "namespace %s", name)
		for _, child := range d.Children() {
			line(b, depth+1, "namespace %s", child)
		}

	case *Class:
		header := "class " + d.FullName()
		if d.BaseFullName() != "" {
			header += " : " + d.BaseFullName()
		}
		if d.IsSealed() {
			header += " sealed"
		}
		if d.IsStatic() {
			header += " static"
		}
		line(b, depth, "%s", header)
		if d.DefaultInterface() != nil {
			line(b, depth+1, "default %s", d.DefaultInterface().FullName())
		}
		for _, initializer := range d.Initializers() {
			line(b, depth+1, "initializer %s", parameterList(initializer))
		}
		describeMembers(b, &d.BaseClass, depth+1)

	case *Interface:
		line(b, depth, "interface %s {%s}", d.FullName(), d.ID())
		describeMembers(b, &d.BaseClass, depth+1)

	case *GenericInterface:
		line(b, depth, "interface %s<%s> {%s}", d.FullName(), strings.Join(d.GenericParameterNames(), ", "), d.ID())
		describeMembers(b, &d.BaseClass, depth+1)

	case *GenericInterfaceInstance:
		line(b, depth, "interface %s", d.FullName())
		describeInstanceMembers(b, d, depth+1)

	case *Enum:
		line(b, depth, "enum %s : %s", d.FullName(), d.UnderlyingType().Element)
		for _, member := range d.Members() {
			line(b, depth+1, "%s = %d", member.Name(), member.Value())
		}

	case *EnumMember:
		line(b, depth, "%s = %d", d.FullName(), d.Value())

	case *Struct:
		line(b, depth, "struct %s", d.FullName())
		for _, field := range d.Fields() {
			line(b, depth+1, "%s %s", field.Name(), field.TypeName())
		}

	case *StructField:
		line(b, depth, "field %s %s", d.FullName(), d.TypeName())

	case *Delegate:
		line(b, depth, "delegate %s%s {%s}", d.FullName(), parameterList(d.Invoke()), d.ID())

	case *GenericDelegate:
		line(b, depth, "delegate %s<%s>%s {%s}", d.FullName(), strings.Join(d.GenericParameterNames(), ", "), parameterList(d.Invoke()), d.ID())

	case *GenericDelegateInstance:
		line(b, depth, "delegate %s%s", d.FullName(), d.SubstituteGenericArguments(parameterList(d.Invoke())))

	case *Method:
		describeMethod(b, d, depth, func(s string) string { return s })

	case *Property:
		describeProperty(b, d, depth, func(s string) string { return s })

	case *Event:
		describeEvent(b, d, depth)

	case *Parameter:
		line(b, depth, "parameter %s %s", d.Name(), d.TypeName())
	}
}

func describeMembers(b *strings.Builder, c *BaseClass, depth int) {
	identity := func(s string) string { return s }
	for _, iface := range c.Interfaces() {
		line(b, depth, "implements %s", iface.FullName())
	}
	for _, method := range c.Methods() {
		describeMethod(b, method, depth, identity)
	}
	for _, property := range c.Properties() {
		describeProperty(b, property, depth, identity)
	}
	for _, event := range c.Events() {
		describeEvent(b, event, depth)
	}
}

func describeInstanceMembers(b *strings.Builder, g *GenericInterfaceInstance, depth int) {
	for _, iface := range g.Interfaces() {
		line(b, depth, "implements %s", iface.FullName())
	}
	for _, method := range g.Methods() {
		describeMethod(b, method, depth, g.SubstituteGenericArguments)
	}
	for _, property := range g.Properties() {
		describeProperty(b, property, depth, g.SubstituteGenericArguments)
	}
	for _, event := range g.Events() {
		describeEvent(b, event, depth)
	}
}

func describeMethod(b *strings.Builder, m *Method, depth int, substitute func(string) string) {
	text := "method "
	if m.IsStatic() {
		text = "static method "
	}
	text += m.Name() + substitute(parameterList(m))
	if m.OverloadName() != m.Name() {
		text += " [overload " + m.OverloadName() + "]"
	}
	if m.IsDefaultOverload() {
		text += " [default]"
	}
	line(b, depth, "%s", text)
}

func describeProperty(b *strings.Builder, p *Property, depth int, substitute func(string) string) {
	text := "property "
	if p.IsStatic() {
		text = "static property "
	}
	text += p.Name() + " " + substitute(p.TypeName())
	if p.IsReadOnly() {
		text += " readonly"
	}
	line(b, depth, "%s", text)
}

func describeEvent(b *strings.Builder, e *Event, depth int) {
	text := "event "
	if e.IsStatic() {
		text = "static event "
	}
	line(b, depth, "%s%s %s", text, e.Name(), e.TypeName())
}

// parameterList renders "(name Type, name Type) Return"
func parameterList(m *Method) string {
	params := make([]string, 0, len(m.Parameters()))
	for _, p := range m.Parameters() {
		params = append(params, p.Name()+" "+p.TypeName())
	}
	return "(" + strings.Join(params, ", ") + ") " + m.ReturnTypeName()
}
