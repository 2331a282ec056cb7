package staged

import (
	"context"
	"fmt"
	"sync"
)

// Callable is the shape every Functoid invokes: it receives the resolved
// arguments for its declared Keys, in order, and returns the produced value
// (or an error). ctx is threaded through for async Callables that want to
// observe cancellation (spec §5 "Cancellation/timeout").
type Callable func(ctx context.Context, args []any) (any, error)

// Functoid bundles a callable with its declared dependency Keys (spec
// §4.5). The Planner never invokes a Functoid; only the Producer does.
type Functoid struct {
	call    Callable
	deps    []Key
	isAsync bool
}

// NewFunctoid builds a Functoid from an explicit callable and dependency
// Key list -- the canonical form (spec §4.5 "From callable + explicit type
// list"). isAsync must be true iff call may suspend (and is always safe to
// await synchronously otherwise).
func NewFunctoid(call Callable, deps []Key, isAsync bool) (Functoid, error) {
	if call == nil {
		return Functoid{}, &FunctoidConstructionError{Reason: "callable must not be nil"}
	}
	cp := make([]Key, len(deps))
	copy(cp, deps)
	return Functoid{call: call, deps: cp, isAsync: isAsync}, nil
}

// NewTypedFunctoid builds a Functoid from a callable and a list of
// (TypeTag, id?) records -- supports named dependencies (spec §4.5 "From
// callable + explicit list of (TypeTag, id?) records"). It is a thin
// convenience wrapper over NewFunctoid: Key is already exactly that pair.
func NewTypedFunctoid(call Callable, deps []Key, isAsync bool) (Functoid, error) {
	return NewFunctoid(call, deps, isAsync)
}

// Constant builds a zero-dependency Functoid that always returns value
// (spec §4.5 "Constant").
func Constant(value any) Functoid {
	return Functoid{
		call: func(ctx context.Context, args []any) (any, error) {
			return value, nil
		},
		deps:    nil,
		isAsync: false,
	}
}

// Deps returns the ordered dependency Keys this Functoid declares.
func (f Functoid) Deps() []Key {
	out := make([]Key, len(f.deps))
	copy(out, f.deps)
	return out
}

// IsAsync reports whether Invoke may suspend.
func (f Functoid) IsAsync() bool {
	return f.isAsync
}

// Invoke calls the wrapped callable with args, which must have exactly
// len(f.Deps()) elements in the same order as Deps().
func (f Functoid) Invoke(ctx context.Context, args []any) (any, error) {
	if len(args) != len(f.deps) {
		return nil, &FunctoidConstructionError{
			Reason: fmt.Sprintf("arity mismatch: functoid declares %d dependencies, got %d arguments", len(f.deps), len(args)),
		}
	}
	return f.call(ctx, args)
}

// Map returns a new Functoid with the same dependencies and async-ness,
// whose result is transformed by fn after the wrapped callable (and, if
// async, its awaiting) completes (spec §4.5 "a map combinator").
func (f Functoid) Map(fn func(any) (any, error)) Functoid {
	inner := f.call
	return Functoid{
		deps:    f.deps,
		isAsync: f.isAsync,
		call: func(ctx context.Context, args []any) (any, error) {
			v, err := inner(ctx, args)
			if err != nil {
				return nil, err
			}
			return fn(v)
		},
	}
}

// ParamSpec names one constructor parameter's dependency Key, for use by
// the metadata registry below (spec §9 "From a constructor").
type ParamSpec struct {
	Tag TypeTag
	ID  any // nil, string, or Token
}

func (p ParamSpec) key() Key {
	return Key{Tag: p.Tag, ID: p.ID}
}

// constructorRegistry is the process-lexical side-table spec §9 calls for
// in place of the source language's reflection-based parameter discovery:
// "a global registry mapping type identifier -> ordered list of
// (TypeTag, id?)". It is guarded by a read-mostly RWMutex per §9's "Global
// mutable state ... should be process-lexical and not thread-local; if
// mutation is needed ... protect with a read-mostly lock."
type constructorRegistry struct {
	mu     sync.RWMutex
	params map[string][]ParamSpec
}

var globalConstructorRegistry = &constructorRegistry{params: make(map[string][]ParamSpec)}

// RegisterConstructor populates the side-table used by FromConstructor:
// typeName's constructor takes params, in order (spec §9
// "register(TypeName, [TypeTag, ...])"). Call this once per type, typically
// from an init() function alongside the Module that binds it.
func RegisterConstructor(typeName string, params ...ParamSpec) {
	globalConstructorRegistry.mu.Lock()
	defer globalConstructorRegistry.mu.Unlock()
	globalConstructorRegistry.params[typeName] = append([]ParamSpec(nil), params...)
}

// FromConstructor builds a Functoid for typeName by reading its
// constructor parameter types from the side-table populated by
// RegisterConstructor (spec §4.5 "From a constructor", §9). call receives
// resolved arguments in the order RegisterConstructor declared them.
func FromConstructor(typeName string, call Callable, isAsync bool) (Functoid, error) {
	globalConstructorRegistry.mu.RLock()
	params, ok := globalConstructorRegistry.params[typeName]
	globalConstructorRegistry.mu.RUnlock()
	if !ok {
		return Functoid{}, &FunctoidConstructionError{
			Reason: fmt.Sprintf("no constructor metadata registered for %q; call RegisterConstructor first", typeName),
		}
	}
	deps := make([]Key, len(params))
	for i, p := range params {
		deps[i] = p.key()
	}
	return NewFunctoid(call, deps, isAsync)
}
