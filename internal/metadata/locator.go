package metadata

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"gowinrt/internal/errors"
)

// Location is the answer to a name lookup: either a namespace or a TypeDef in some scope
type Location struct {
	Scope     *Scope
	Token     Token
	Namespace bool
}

// Locator finds the scope defining a type name
type Locator interface {
	Locate(fullName string) (Location, error)
	// NamespaceChildren lists the immediate child namespaces known to the locator.
	// The list only covers opened metadata and is not exhaustive.
	NamespaceChildren(namespace string) ([]string, error)
}

// ScopeIndex is a Locator over a fixed set of scopes. Type names are indexed when a
// scope is added; the first scope defining a name wins.
type ScopeIndex struct {
	mu         sync.RWMutex
	scopes     []*Scope
	types      map[string]Location
	namespaces map[string]struct{}
}

func NewScopeIndex() *ScopeIndex {
	return &ScopeIndex{
		types:      make(map[string]Location),
		namespaces: make(map[string]struct{}),
	}
}

// Add indexes every TypeDef of the scope
func (index *ScopeIndex) Add(scope *Scope) error {
	typeDefs, err := scope.EnumTypeDefs()
	if err != nil {
		return err
	}

	index.mu.Lock()
	defer index.mu.Unlock()

	index.scopes = append(index.scopes, scope)
	added := 0
	for _, token := range typeDefs {
		props, err := scope.TypeDefProps(token)
		if err != nil {
			return err
		}
		// <Module> and nested types have no namespace
		if props.Namespace == "" {
			continue
		}
		fullName := props.FullName()
		if _, exists := index.types[fullName]; exists {
			continue
		}
		index.types[fullName] = Location{Scope: scope, Token: token}
		index.addNamespace(props.Namespace)
		added++
	}

	Logger().Debug("indexed metadata scope",
		zap.String("scope", scope.Name()),
		zap.Int("types", added))
	return nil
}

func (index *ScopeIndex) addNamespace(namespace string) {
	for namespace != "" {
		index.namespaces[namespace] = struct{}{}
		last := strings.LastIndexByte(namespace, '.')
		if last < 0 {
			return
		}
		namespace = namespace[:last]
	}
}

func (index *ScopeIndex) Locate(fullName string) (Location, error) {
	index.mu.RLock()
	defer index.mu.RUnlock()

	if location, found := index.types[fullName]; found {
		return location, nil
	}
	if _, found := index.namespaces[fullName]; found || fullName == "" {
		return Location{Namespace: true}, nil
	}
	return Location{}, errors.NotFound(errors.PhaseResolve, fullName)
}

func (index *ScopeIndex) NamespaceChildren(namespace string) ([]string, error) {
	index.mu.RLock()
	defer index.mu.RUnlock()

	prefix := ""
	if namespace != "" {
		if _, found := index.namespaces[namespace]; !found {
			return nil, errors.NotFound(errors.PhaseResolve, namespace)
		}
		prefix = namespace + "."
	}

	children := make([]string, 0)
	for candidate := range index.namespaces {
		if !strings.HasPrefix(candidate, prefix) {
			continue
		}
		rest := candidate[len(prefix):]
		if rest == "" || strings.ContainsRune(rest, '.') {
			continue
		}
		children = append(children, rest)
	}
	sort.Strings(children)
	return children, nil
}

// TypeNames lists the indexed type names within a namespace (not recursive)
func (index *ScopeIndex) TypeNames(namespace string) []string {
	index.mu.RLock()
	defer index.mu.RUnlock()

	names := make([]string, 0)
	for name := range index.types {
		last := strings.LastIndexByte(name, '.')
		if last >= 0 && name[:last] == namespace {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Close closes every scope added to the index
func (index *ScopeIndex) Close() error {
	index.mu.Lock()
	defer index.mu.Unlock()

	var first error
	for _, scope := range index.scopes {
		if err := scope.Close(); err != nil && first == nil {
			first = err
		}
	}
	index.scopes = nil
	index.types = make(map[string]Location)
	index.namespaces = make(map[string]struct{})
	return first
}
