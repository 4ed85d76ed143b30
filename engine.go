// Package gowinrt binds WinRT types described by WinMD metadata at run time. Names are
// resolved into declarations, members are bound to vtable slots of live interface
// pointers and called through the native bridge.
package gowinrt

import (
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gowinrt/internal/config"
	"gowinrt/internal/declarations"
	"gowinrt/internal/errors"
	"gowinrt/internal/generation"
	"gowinrt/internal/identity"
	"gowinrt/internal/invocation"
	"gowinrt/internal/metadata"
	"gowinrt/internal/metadata/reader"
	"gowinrt/internal/native"
	"gowinrt/internal/observability"
)

type (
	Declaration = declarations.Declaration
	Result      = invocation.Result
	Pointer     = native.Pointer
)

type Engine struct {
	locator  metadata.Locator
	resolver *declarations.Resolver
	ids      *identity.Builder
	binder   *invocation.Binder
	bridge   native.Bridge
	cache    *sync.Map

	// set when the runtime could not be loaded; binding and activation return it
	bridgeErr error
}

type Option func(*Engine)

// WithCache keeps resolved declarations by full name for the life of the engine
func WithCache(enabled bool) Option {
	return func(e *Engine) {
		if enabled {
			e.cache = &sync.Map{}
		} else {
			e.cache = nil
		}
	}
}

func New(locator metadata.Locator, bridge native.Bridge, opts ...Option) *Engine {
	resolver := declarations.NewResolver(locator)
	ids := identity.NewBuilder(resolver)
	engine := &Engine{
		locator:  locator,
		resolver: resolver,
		ids:      ids,
		binder:   invocation.NewBinder(resolver, ids, bridge),
		bridge:   bridge,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Open indexes the configured metadata and connects to the Windows runtime. Without
// the runtime the engine still resolves and generates, but cannot bind or activate.
func Open(cfg *config.Config) (*Engine, error) {
	locator, err := reader.NewLocator(cfg.MetadataPaths...)
	if err != nil {
		return nil, err
	}
	bridge, bridgeErr := native.New()
	if bridgeErr != nil {
		Logger().Warn("native calls disabled", zap.Error(bridgeErr))
	}
	engine := New(locator, bridge, WithCache(cfg.Cache()))
	engine.bridgeErr = bridgeErr
	return engine, nil
}

// Resolve returns the namespace or type declaration named fullName
func (e *Engine) Resolve(fullName string) (Declaration, error) {
	if e.cache != nil {
		if cached, found := e.cache.Load(fullName); found {
			return cached.(Declaration), nil
		}
	}

	started := time.Now()
	declaration, err := e.resolver.Resolve(fullName)
	kind := ""
	if err == nil {
		kind = declaration.Kind().String()
	}
	observability.ObserveResolution(kind, started, err)
	if err != nil {
		return nil, err
	}

	Logger().Debug("resolved declaration",
		zap.String("type", fullName),
		zap.String("kind", kind))
	if e.cache != nil {
		actual, _ := e.cache.LoadOrStore(fullName, declaration)
		return actual.(Declaration), nil
	}
	return declaration, nil
}

// Bind builds the call descriptor of a method or property on ptr. The caller closes it.
func (e *Engine) Bind(member Declaration, ptr Pointer, opts ...invocation.Option) (*invocation.Descriptor, error) {
	if e.bridgeErr != nil {
		return nil, e.bridgeErr
	}
	return e.binder.Build(member, ptr, opts...)
}

// Invoke binds member to ptr, calls it once with args and releases the binding
func (e *Engine) Invoke(member Declaration, ptr Pointer, args ...any) (Result, error) {
	descriptor, err := e.Bind(member, ptr)
	if err != nil {
		return Result{}, err
	}
	defer descriptor.Close()
	return descriptor.Call(args...)
}

// ActivationFactory returns the activation factory of a runtime class. The caller releases it.
func (e *Engine) ActivationFactory(className string) (Pointer, error) {
	if e.bridgeErr != nil {
		return 0, e.bridgeErr
	}
	return e.bridge.ActivationFactory(className)
}

// Activate constructs an instance of className through the initializer taking len(args) arguments
func (e *Engine) Activate(className string, args ...any) (Result, error) {
	declaration, err := e.Resolve(className)
	if err != nil {
		return Result{}, err
	}
	class, ok := declaration.(*declarations.Class)
	if !ok {
		return Result{}, errors.Invariant(errors.PhaseBind, className, "%s is not a class", declaration.Kind())
	}

	var initializer *declarations.Method
	for _, candidate := range class.Initializers() {
		if candidate.NumberOfParameters() == len(args) {
			initializer = candidate
			break
		}
	}
	if initializer == nil {
		return Result{}, errors.NoFactory(className, "no initializer takes %d arguments", len(args))
	}

	factory, err := e.ActivationFactory(className)
	if err != nil {
		return Result{}, err
	}
	defer e.bridge.Release(factory)
	return e.Invoke(initializer, factory, args...)
}

// GenerateID returns the interface id through which a declaration is called
func (e *Engine) GenerateID(declaration Declaration) (uuid.UUID, error) {
	return e.ids.GenerateID(declaration)
}

// Describe renders the declaration named fullName as indented text
func (e *Engine) Describe(fullName string) (string, error) {
	declaration, err := e.Resolve(fullName)
	if err != nil {
		return "", err
	}
	return declarations.Describe(declaration), nil
}

// Generator returns a projection generator backed by the engine's resolver
func (e *Engine) Generator(packageName string, outputPath string) *generation.Generator {
	return generation.NewGenerator(e.resolver, packageName, outputPath)
}

// Close releases the metadata scopes when the locator owns them
func (e *Engine) Close() error {
	if e.cache != nil {
		e.cache.Clear()
	}
	if closer, ok := e.locator.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
