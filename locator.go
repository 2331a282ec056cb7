package staged

import (
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
)

// Locator maps Keys to constructed values (spec §3.7, §4.4). It is
// immutable after construction; the only mutation Close performs is
// draining its own destructor list exactly once.
type Locator interface {
	// Get returns the value for key, or InstanceNotFoundError if absent.
	Get(key Key) (any, error)

	// Find returns the value for key and true, or (nil, false) if absent.
	Find(key Key) (any, bool)

	// Has reports whether key has a produced value.
	Has(key Key) bool

	// GetSet returns the collection bound at set-of(tag) (optionally
	// distinguished by id), merging parent and child sets for a
	// Subcontext (spec §4.4).
	GetSet(tag TypeTag, id any) ([]any, error)

	// Keys returns every Key this Locator (and, for a Subcontext, its
	// ancestors) holds a value for. Best-effort: order is unspecified.
	Keys() []Key

	// Close releases lifecycle-managed resources in LIFO order. Errors
	// during release are collected into an AggregateCleanupError rather
	// than short-circuiting the remaining releases (spec §4.4, §5).
	Close() error
}

// locator is the concrete, parent-less instance store the Producer builds
// directly from a Plan (spec §3.7). Hierarchical lookup across scopes is
// layered on top of it by Subcontext.
type locator struct {
	mu          sync.RWMutex
	instances   map[Key]any
	keyOrder    []Key
	destructors []func() error // LIFO: appended in construction order
	closed      atomic.Bool
}

func newLocator(instances map[Key]any, keyOrder []Key, destructors []func() error) *locator {
	return &locator{
		instances:   instances,
		keyOrder:    keyOrder,
		destructors: destructors,
	}
}

func (l *locator) Get(key Key) (any, error) {
	v, ok := l.Find(key)
	if !ok {
		return nil, &InstanceNotFoundError{Key: key}
	}
	return v, nil
}

func (l *locator) Find(key Key) (any, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.instances[key]
	return v, ok
}

func (l *locator) Has(key Key) bool {
	_, ok := l.Find(key)
	return ok
}

func (l *locator) GetSet(tag TypeTag, id any) ([]any, error) {
	key := SetKey(tag, id)
	v, ok := l.Find(key)
	if !ok {
		return nil, nil
	}
	set, ok := v.([]any)
	if !ok {
		return nil, &InstanceNotFoundError{Key: key}
	}
	return set, nil
}

func (l *locator) Keys() []Key {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Key, len(l.keyOrder))
	copy(out, l.keyOrder)
	return out
}

// Close releases this Locator's own destructors in LIFO order. It is safe
// to call more than once; subsequent calls are no-ops. A destructor that
// errors does not prevent the rest from running (spec §4.4, §5); every
// error is collected via go.uber.org/multierr into an AggregateCleanupError.
func (l *locator) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}

	l.mu.Lock()
	dtors := l.destructors
	l.destructors = nil
	l.mu.Unlock()

	var aggregate error
	for i := len(dtors) - 1; i >= 0; i-- {
		if err := dtors[i](); err != nil {
			aggregate = multierr.Append(aggregate, err)
		}
	}
	if aggregate == nil {
		return nil
	}
	return &AggregateCleanupError{Errors: multierr.Errors(aggregate)}
}
