// Package invocation turns a resolved method or property into a native call plan and
// executes it through a native.Bridge.
package invocation

import "fmt"

// ArgumentKind is the ABI representation of one argument or result
type ArgumentKind int

const (
	Void ArgumentKind = iota
	Boolean
	UInt8
	Int8
	UInt16
	Int16
	Char16
	UInt32
	Int32
	UInt64
	Int64
	Single
	Double
	String
	// Pointer covers objects, value types, arrays and out parameters
	Pointer
)

var argumentKinds = map[string]ArgumentKind{
	"Void":    Void,
	"Boolean": Boolean,
	"UInt8":   UInt8,
	"Int8":    Int8,
	"UInt16":  UInt16,
	"Int16":   Int16,
	"Char16":  Char16,
	"UInt32":  UInt32,
	"Int32":   Int32,
	"UInt64":  UInt64,
	"Int64":   Int64,
	"Single":  Single,
	"Double":  Double,
	"String":  String,
}

// KindOf maps a type display name to its argument kind
func KindOf(typeName string) ArgumentKind {
	if kind, found := argumentKinds[typeName]; found {
		return kind
	}
	return Pointer
}

func (kind ArgumentKind) String() string {
	for name, k := range argumentKinds {
		if k == kind {
			return name
		}
	}
	if kind == Pointer {
		return "Pointer"
	}
	return fmt.Sprintf("ArgumentKind(%d)", int(kind))
}

// ReturnConvention tells where a call's result is written
type ReturnConvention int

const (
	ReturnNone ReturnConvention = iota
	// ReturnInPlace results are decoded from the word-sized result slot itself
	ReturnInPlace
	// ReturnOutPointer results are written through a pointer to a buffer sized for the
	// return type
	ReturnOutPointer
)

func (c ReturnConvention) String() string {
	switch c {
	case ReturnNone:
		return "none"
	case ReturnInPlace:
		return "in-place"
	case ReturnOutPointer:
		return "out-pointer"
	}
	return fmt.Sprintf("ReturnConvention(%d)", int(c))
}

func conventionFor(kind ArgumentKind) ReturnConvention {
	switch kind {
	case Void:
		return ReturnNone
	case Boolean, UInt8, Int8, UInt16, Int16, Char16, UInt32, Int32, String:
		return ReturnInPlace
	}
	return ReturnOutPointer
}
