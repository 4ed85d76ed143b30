package identity

import (
	"strings"

	"github.com/google/uuid"

	"gowinrt/internal/errors"
)

// Namespace is the UUID namespace WinRT hashes parameterized type signatures under
var Namespace = uuid.MustParse("11f47ad5-7b73-42c0-abae-878b1e16adee")

const inspectableSignature = "cinterface(IInspectable)"

// Signature strings of the fundamental types, keyed by display name
var primitiveSignatures = map[string]string{
	"Boolean": "b1",
	"Char16":  "c2",
	"Int8":    "i1",
	"UInt8":   "u1",
	"Int16":   "i2",
	"UInt16":  "u2",
	"Int32":   "i4",
	"UInt32":  "u4",
	"Int64":   "i8",
	"UInt64":  "u8",
	"Single":  "f4",
	"Double":  "f8",
	"String":  "string",
	"Guid":    "g16",
	"Object":  inspectableSignature,
}

// ParameterizedTypeIdentity computes the IID of a parameterized type instance from the
// parts of its name. It is deterministic: the same parts and locator answers always
// give the same id.
func ParameterizedTypeIdentity(parts []string, locator MetaDataLocator) (uuid.UUID, error) {
	signature, err := Signature(parts, locator)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.NewSHA1(Namespace, []byte(signature)), nil
}

// Signature builds the type signature string hashed by ParameterizedTypeIdentity,
// e.g. "pinterface({913337e9-11a1-4345-a3a2-4e7f956e222d};string)".
func Signature(parts []string, locator MetaDataLocator) (string, error) {
	if len(parts) == 0 {
		return "", errors.Invariant(errors.PhaseBind, "", "no type name parts")
	}
	if _, found := primitiveSignatures[parts[0]]; found {
		return "", errors.Invariant(errors.PhaseBind, parts[0], "not a parameterized type")
	}
	w := signatureWriter{parts: parts, locator: locator}

	first, err := w.locate(parts[0])
	if err != nil {
		return "", err
	}
	if first.kind != shapeParameterizedInterface && first.kind != shapeParameterizedDelegate {
		return "", errors.Invariant(errors.PhaseBind, parts[0], "not a parameterized type")
	}
	if err := w.write(); err != nil {
		return "", err
	}
	if w.next != len(parts) {
		return "", errors.Invariant(errors.PhaseBind, strings.Join(parts, ", "), "%d unused type name parts", len(parts)-w.next)
	}
	return w.b.String(), nil
}

type signatureWriter struct {
	b       strings.Builder
	parts   []string
	next    int
	locator MetaDataLocator
}

func (w *signatureWriter) locate(name string) (shape, error) {
	var s shape
	if err := w.locator.Locate(name, &s); err != nil {
		return shape{}, err
	}
	if s.kind == shapeUnset {
		return shape{}, errors.Invariant(errors.PhaseBind, name, "locator did not describe the type")
	}
	return s, nil
}

// write consumes one type from parts, including its arguments
func (w *signatureWriter) write() error {
	if w.next >= len(w.parts) {
		return errors.Invariant(errors.PhaseBind, strings.Join(w.parts, ", "), "missing type arguments")
	}
	name := w.parts[w.next]
	w.next++

	if primitive, found := primitiveSignatures[name]; found {
		w.b.WriteString(primitive)
		return nil
	}

	s, err := w.locate(name)
	if err != nil {
		return err
	}

	switch s.kind {
	case shapeInterface:
		writeGUID(&w.b, s.id)

	case shapeDelegate:
		w.b.WriteString("delegate(")
		writeGUID(&w.b, s.id)
		w.b.WriteByte(')')

	case shapeClass:
		w.b.WriteString("rc(")
		w.b.WriteString(s.name)
		w.b.WriteByte(';')
		writeGUID(&w.b, s.id)
		w.b.WriteByte(')')

	case shapeParameterizedClass:
		w.b.WriteString("rc(")
		w.b.WriteString(s.name)
		w.b.WriteByte(';')
		if err := w.nested(s.elements); err != nil {
			return err
		}
		w.b.WriteByte(')')

	case shapeStruct:
		w.b.WriteString("struct(")
		w.b.WriteString(s.name)
		for _, field := range s.elements {
			w.b.WriteByte(';')
			parts, err := ParseTypeName(field)
			if err != nil {
				return err
			}
			if err := w.nested(parts); err != nil {
				return err
			}
		}
		w.b.WriteByte(')')

	case shapeEnum:
		base, found := primitiveSignatures[s.baseType]
		if !found || (base != "i4" && base != "u4") {
			return errors.Invariant(errors.PhaseBind, s.name, "enum base type %q", s.baseType)
		}
		w.b.WriteString("enum(")
		w.b.WriteString(s.name)
		w.b.WriteByte(';')
		w.b.WriteString(base)
		w.b.WriteByte(')')

	case shapeParameterizedInterface, shapeParameterizedDelegate:
		w.b.WriteString("pinterface(")
		writeGUID(&w.b, s.id)
		for i := 0; i < s.numArgs; i++ {
			w.b.WriteByte(';')
			if err := w.write(); err != nil {
				return err
			}
		}
		w.b.WriteByte(')')
	}
	return nil
}

// nested writes a separately parsed type into the same signature
func (w *signatureWriter) nested(parts []string) error {
	inner := signatureWriter{parts: parts, locator: w.locator}
	if err := inner.write(); err != nil {
		return err
	}
	if inner.next != len(parts) {
		return errors.Invariant(errors.PhaseBind, strings.Join(parts, ", "), "%d unused type name parts", len(parts)-inner.next)
	}
	w.b.WriteString(inner.b.String())
	return nil
}

func writeGUID(b *strings.Builder, id uuid.UUID) {
	b.WriteByte('{')
	b.WriteString(id.String())
	b.WriteByte('}')
}
