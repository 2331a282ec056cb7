package staged

import "fmt"

// BindingKind discriminates the six Binding variants (spec §3.4).
type BindingKind int

const (
	BindingInstance BindingKind = iota
	BindingClass
	BindingFactory
	BindingAlias
	BindingSetElement
	BindingAssistedFactory
)

func (k BindingKind) String() string {
	switch k {
	case BindingInstance:
		return "Instance"
	case BindingClass:
		return "Class"
	case BindingFactory:
		return "Factory"
	case BindingAlias:
		return "Alias"
	case BindingSetElement:
		return "Set-element"
	case BindingAssistedFactory:
		return "AssistedFactory"
	default:
		return "<unknown-binding-kind>"
	}
}

// Binding is a single declaration of how to produce a value for a Key
// (spec §3.4). It is a tagged sum: Kind discriminates which fields are
// meaningful, mirroring spec §9's guidance to use a discriminated union
// with exhaustive case analysis rather than the source's dynamic dispatch.
type Binding struct {
	Key  Key
	Tags BindingTags
	Kind BindingKind

	// Instance
	value any

	// Class / Factory
	functoid Functoid

	// Alias
	target Key

	// Set-element
	inner *Binding // the wrapped Instance/Class/Factory binding
	weak  bool

	// AssistedFactory
	runtimeParams []string

	// optional, Instance/Class/Factory only -- see Destructor type below.
	destructor Destructor
}

// Destructor is an optional cleanup function attached to an Instance,
// Class, or Factory binding (adapted from the teacher's Constructor/
// Destructor pairing in RegisterFactory). If set, the Producer registers it
// with the Locator so Locator.Close releases it, in LIFO order, alongside
// every other destructor (spec §4.4, §5 "Lifecycle").
type Destructor func(instance any) error

// WithDestructor attaches dtor to b, returning the updated binding. It is a
// no-op (dtor is not attached) for Alias, Set-element, and AssistedFactory
// bindings, whose produced value is not independently owned.
func (b Binding) WithDestructor(dtor Destructor) Binding {
	switch b.Kind {
	case BindingInstance, BindingClass, BindingFactory:
		b.destructor = dtor
	}
	return b
}

// Instance builds an Instance binding: a pre-built value is the identity
// binding for key (spec §3.4).
func Instance(key Key, value any, tags BindingTags) Binding {
	return Binding{Key: key, Tags: tags, Kind: BindingInstance, value: value}
}

// Class builds a Class binding: construct via the Functoid's DI'd
// arguments (spec §3.4).
func Class(key Key, f Functoid, tags BindingTags) Binding {
	return Binding{Key: key, Tags: tags, Kind: BindingClass, functoid: f}
}

// Factory builds a Factory binding: invoke the (possibly async) Functoid
// with DI'd arguments (spec §3.4).
func Factory(key Key, f Functoid, tags BindingTags) Binding {
	return Binding{Key: key, Tags: tags, Kind: BindingFactory, functoid: f}
}

// Alias builds an Alias binding: key resolves to target's instance (spec
// §3.4). Alias targets must eventually resolve to a non-Alias binding;
// alias cycles are detected by the Planner as ordinary dependency cycles.
func Alias(key Key, target Key, tags BindingTags) Binding {
	return Binding{Key: key, Tags: tags, Kind: BindingAlias, target: target}
}

// SetElement builds a set-element binding contributing one value to the
// collection keyed by set-of(elemKey.Tag) (spec §3.4). inner must be an
// Instance, Class, or Factory binding (its own Key and Tags are ignored;
// elemKey/tags/weak govern the element's identity within the collection).
// weak marks the element as droppable if its dependency tree cannot be
// resolved (spec §4.2.4 step 7, §4.2.7).
func SetElement(elemKey Key, inner Binding, tags BindingTags, weak bool) (Binding, error) {
	switch inner.Kind {
	case BindingInstance, BindingClass, BindingFactory:
	default:
		return Binding{}, fmt.Errorf("staged: set-element inner binding must be Instance, Class, or Factory, got %s", inner.Kind)
	}
	collectionKey := Key{Tag: SetOf(elemKey.Tag), ID: elemKey.ID}
	innerCopy := inner
	return Binding{
		Key:   collectionKey,
		Tags:  tags,
		Kind:  BindingSetElement,
		inner: &innerCopy,
		weak:  weak,
	}, nil
}

// AssistedFactory builds a binding that produces a curried factory
// function: when called with runtime arguments (matching runtimeParams, in
// order), it resolves f's remaining DI'd Keys fresh against the Locator
// that produced it and invokes f (spec §3.4, §9 Open Question 3: "resolve
// per call against the existing Locator"). f's declared Keys must list the
// DI'd (non-runtime) dependencies only, in the order they are appended
// after the runtime arguments when f is invoked.
func AssistedFactory(key Key, f Functoid, runtimeParams []string, tags BindingTags) Binding {
	rp := make([]string, len(runtimeParams))
	copy(rp, runtimeParams)
	return Binding{Key: key, Tags: tags, Kind: BindingAssistedFactory, functoid: f, runtimeParams: rp}
}

// Value returns the bundled value for an Instance binding.
func (b Binding) Value() any { return b.value }

// Functoid returns the Functoid for a Class, Factory, or AssistedFactory
// binding.
func (b Binding) Functoid() Functoid { return b.functoid }

// Target returns the target Key for an Alias binding.
func (b Binding) Target() Key { return b.target }

// Inner returns the wrapped Instance/Class/Factory binding for a
// set-element binding.
func (b Binding) Inner() *Binding { return b.inner }

// Weak reports whether a set-element binding is weak.
func (b Binding) Weak() bool { return b.weak }

// GetDestructor returns the optional cleanup function attached via
// WithDestructor, or nil.
func (b Binding) GetDestructor() Destructor { return b.destructor }

// RuntimeParams returns the ordered runtime parameter names for an
// AssistedFactory binding.
func (b Binding) RuntimeParams() []string {
	out := make([]string, len(b.runtimeParams))
	copy(out, b.runtimeParams)
	return out
}

// deps returns the dependency Keys this binding's construction needs at
// plan time, per the rules of spec §4.2.5.
func (b Binding) deps() []Key {
	switch b.Kind {
	case BindingInstance:
		return nil
	case BindingClass, BindingFactory:
		return b.functoid.Deps()
	case BindingAlias:
		return []Key{b.target}
	case BindingSetElement:
		if b.inner == nil {
			return nil
		}
		return b.inner.deps()
	case BindingAssistedFactory:
		// DI-time deps are none; runtime args are supplied later and the
		// DI'd tail args are resolved when the curried factory is invoked,
		// not when the plan runs (spec §4.2.5).
		return nil
	default:
		return nil
	}
}
