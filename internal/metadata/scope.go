package metadata

import (
	"bytes"
	"sync"

	"gowinrt/internal/errors"
)

// Scope is the shared handle to one opened metadata store. Reads may run concurrently;
// Close waits for them and excludes new ones.
type Scope struct {
	mu    sync.RWMutex
	store Store
	name  string
}

func NewScope(store Store) *Scope {
	return &Scope{store: store, name: store.Name()}
}

func (scope *Scope) Name() string {
	return scope.name
}

func (scope *Scope) Close() error {
	scope.mu.Lock()
	defer scope.mu.Unlock()

	if scope.store == nil {
		return nil
	}
	err := scope.store.Close()
	scope.store = nil
	return err
}

func read[T any](scope *Scope, fn func(Store) (T, error)) (T, error) {
	scope.mu.RLock()
	defer scope.mu.RUnlock()

	if scope.store == nil {
		var zero T
		return zero, errors.Invariant(errors.PhaseResolve, scope.name, "metadata scope is closed")
	}
	return fn(scope.store)
}

func (scope *Scope) TypeDefProps(token Token) (TypeDefProps, error) {
	if !token.Is(TokenTypeDef) {
		return TypeDefProps{}, unexpectedToken(token, TokenTypeDef)
	}
	return read(scope, func(s Store) (TypeDefProps, error) { return s.TypeDefProps(token) })
}

func (scope *Scope) TypeRefProps(token Token) (TypeRefProps, error) {
	if !token.Is(TokenTypeRef) {
		return TypeRefProps{}, unexpectedToken(token, TokenTypeRef)
	}
	return read(scope, func(s Store) (TypeRefProps, error) { return s.TypeRefProps(token) })
}

func (scope *Scope) MethodProps(token Token) (MethodProps, error) {
	if !token.Is(TokenMethodDef) {
		return MethodProps{}, unexpectedToken(token, TokenMethodDef)
	}
	return read(scope, func(s Store) (MethodProps, error) { return s.MethodProps(token) })
}

func (scope *Scope) MemberRefProps(token Token) (MemberRefProps, error) {
	if !token.Is(TokenMemberRef) {
		return MemberRefProps{}, unexpectedToken(token, TokenMemberRef)
	}
	return read(scope, func(s Store) (MemberRefProps, error) { return s.MemberRefProps(token) })
}

func (scope *Scope) FieldProps(token Token) (FieldProps, error) {
	if !token.Is(TokenFieldDef) {
		return FieldProps{}, unexpectedToken(token, TokenFieldDef)
	}
	return read(scope, func(s Store) (FieldProps, error) { return s.FieldProps(token) })
}

func (scope *Scope) PropertyProps(token Token) (PropertyProps, error) {
	if !token.Is(TokenProperty) {
		return PropertyProps{}, unexpectedToken(token, TokenProperty)
	}
	return read(scope, func(s Store) (PropertyProps, error) { return s.PropertyProps(token) })
}

func (scope *Scope) EventProps(token Token) (EventProps, error) {
	if !token.Is(TokenEvent) {
		return EventProps{}, unexpectedToken(token, TokenEvent)
	}
	return read(scope, func(s Store) (EventProps, error) { return s.EventProps(token) })
}

func (scope *Scope) ParamProps(token Token) (ParamProps, error) {
	return read(scope, func(s Store) (ParamProps, error) { return s.ParamProps(token) })
}

func (scope *Scope) InterfaceImplProps(token Token) (InterfaceImplProps, error) {
	return read(scope, func(s Store) (InterfaceImplProps, error) { return s.InterfaceImplProps(token) })
}

func (scope *Scope) CustomAttributeProps(token Token) (CustomAttributeProps, error) {
	return read(scope, func(s Store) (CustomAttributeProps, error) { return s.CustomAttributeProps(token) })
}

func (scope *Scope) GenericParamProps(token Token) (GenericParamProps, error) {
	return read(scope, func(s Store) (GenericParamProps, error) { return s.GenericParamProps(token) })
}

func (scope *Scope) TypeSpecSignature(token Token) ([]byte, error) {
	if !token.Is(TokenTypeSpec) {
		return nil, unexpectedToken(token, TokenTypeSpec)
	}
	return read(scope, func(s Store) ([]byte, error) { return s.TypeSpecSignature(token) })
}

func (scope *Scope) EnumTypeDefs() ([]Token, error) {
	return read(scope, func(s Store) ([]Token, error) { return s.EnumTypeDefs() })
}

func (scope *Scope) EnumMethods(typeDef Token) ([]Token, error) {
	return read(scope, func(s Store) ([]Token, error) { return s.EnumMethods(typeDef) })
}

func (scope *Scope) EnumFields(typeDef Token) ([]Token, error) {
	return read(scope, func(s Store) ([]Token, error) { return s.EnumFields(typeDef) })
}

func (scope *Scope) EnumProperties(typeDef Token) ([]Token, error) {
	return read(scope, func(s Store) ([]Token, error) { return s.EnumProperties(typeDef) })
}

func (scope *Scope) EnumEvents(typeDef Token) ([]Token, error) {
	return read(scope, func(s Store) ([]Token, error) { return s.EnumEvents(typeDef) })
}

func (scope *Scope) EnumInterfaceImpls(typeDef Token) ([]Token, error) {
	return read(scope, func(s Store) ([]Token, error) { return s.EnumInterfaceImpls(typeDef) })
}

func (scope *Scope) EnumMethodImpls(typeDef Token) ([]MethodImpl, error) {
	return read(scope, func(s Store) ([]MethodImpl, error) { return s.EnumMethodImpls(typeDef) })
}

func (scope *Scope) EnumGenericParams(typeDef Token) ([]Token, error) {
	return read(scope, func(s Store) ([]Token, error) { return s.EnumGenericParams(typeDef) })
}

func (scope *Scope) EnumParams(method Token) ([]Token, error) {
	return read(scope, func(s Store) ([]Token, error) { return s.EnumParams(method) })
}

func (scope *Scope) EnumCustomAttributes(parent Token) ([]Token, error) {
	return read(scope, func(s Store) ([]Token, error) { return s.EnumCustomAttributes(parent) })
}

func (scope *Scope) FindTypeDefByName(fullName string) (Token, error) {
	return read(scope, func(s Store) (Token, error) { return s.FindTypeDefByName(fullName) })
}

func (scope *Scope) FindMethod(typeDef Token, name string, signature []byte) (Token, error) {
	return read(scope, func(s Store) (Token, error) { return s.FindMethod(typeDef, name, signature) })
}

func (scope *Scope) FindField(typeDef Token, name string) (Token, error) {
	return read(scope, func(s Store) (Token, error) { return s.FindField(typeDef, name) })
}

// TypeName returns the full name of a TypeDef or TypeRef, or the display string of a TypeSpec
func (scope *Scope) TypeName(token Token) (string, error) {
	switch token.Kind() {
	case TokenTypeDef:
		props, err := scope.TypeDefProps(token)
		if err != nil {
			return "", err
		}
		return props.FullName(), nil
	case TokenTypeRef:
		props, err := scope.TypeRefProps(token)
		if err != nil {
			return "", err
		}
		return props.FullName(), nil
	case TokenTypeSpec:
		blob, err := scope.TypeSpecSignature(token)
		if err != nil {
			return "", err
		}
		desc, err := NewCursor(blob).ConsumeType()
		if err != nil {
			return "", err
		}
		return DisplayString(scope, desc)
	}

	return "", unexpectedToken(token, TokenTypeDef)
}

// MemberSignature returns the signature blob of a MethodDef or MemberRef
func (scope *Scope) MemberSignature(token Token) ([]byte, error) {
	switch token.Kind() {
	case TokenMethodDef:
		props, err := scope.MethodProps(token)
		return props.Signature, err
	case TokenMemberRef:
		props, err := scope.MemberRefProps(token)
		return props.Signature, err
	}
	return nil, unexpectedToken(token, TokenMethodDef)
}

// MemberOwner returns the type owning a MethodDef or the parent of a MemberRef
func (scope *Scope) MemberOwner(token Token) (Token, error) {
	switch token.Kind() {
	case TokenMethodDef:
		props, err := scope.MethodProps(token)
		return props.Owner, err
	case TokenMemberRef:
		props, err := scope.MemberRefProps(token)
		return props.Parent, err
	}
	return 0, unexpectedToken(token, TokenMethodDef)
}

// SignaturesMatch compares two method signature blobs ignoring the calling convention byte
func SignaturesMatch(a, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == len(b)
	}
	return bytes.Equal(a[1:], b[1:])
}

func unexpectedToken(token Token, expected TokenKind) error {
	return errors.New(errors.PhaseResolve, errors.KindInvariantViolation).
		Detail("expected %s token, got %s", expected, token).
		Build()
}
