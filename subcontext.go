package staged

import (
	"context"
	"reflect"
)

// Subcontext composes a parent Locator with a child Locator produced by a
// Plan built with that parent (spec §4.4). Subcontexts nest to arbitrary
// depth; each Subcontext is itself a Locator. The parent is a shared,
// read-only reference (spec §9): Subcontext never mutates it, and its
// lifetime must not be shorter than any living child -- expressed here as
// an ordinary Go reference, kept alive by the caller for as long as any
// Subcontext built over it is in use.
type Subcontext struct {
	parent Locator
	child  Locator
}

// NewSubcontext wraps parent and child into a single nested Locator.
func NewSubcontext(parent, child Locator) *Subcontext {
	return &Subcontext{parent: parent, child: child}
}

// CreateSubcontext plans and produces module against roots, using parent as
// the parent Locator, and returns the resulting nested scope (spec §6
// "create_subcontext(parent_locator, module, roots, options)"). It is sugar
// over Planner.Plan + Producer.Produce + NewSubcontext.
func CreateSubcontext(parent Locator, module Module, roots []Key, opts ProduceOptions) (*Subcontext, error) {
	plan, err := NewPlanner(opts.logger()).Plan(module, roots, PlanOptions{
		Activation: opts.Activation,
		AutoRoots:  opts.AutoRoots,
		Parent:     parent,
	})
	if err != nil {
		return nil, err
	}

	producer := NewProducer(opts.logger())
	var child Locator
	if plan.HasAsync() {
		child, err = producer.ProduceAsync(context.Background(), plan, parent)
	} else {
		child, err = producer.Produce(plan, parent)
	}
	if err != nil {
		return nil, err
	}
	return NewSubcontext(parent, child), nil
}

// Get resolves key against the child first, else the parent (spec §4.4).
func (s *Subcontext) Get(key Key) (any, error) {
	if v, ok := s.child.Find(key); ok {
		return v, nil
	}
	if s.parent != nil {
		if v, ok := s.parent.Find(key); ok {
			return v, nil
		}
	}
	return nil, &InstanceNotFoundError{Key: key}
}

// Find is the non-erroring form of Get.
func (s *Subcontext) Find(key Key) (any, bool) {
	if v, ok := s.child.Find(key); ok {
		return v, true
	}
	if s.parent != nil {
		return s.parent.Find(key)
	}
	return nil, false
}

// Has is the disjunction of child.Has and parent.Has (spec §4.4).
func (s *Subcontext) Has(key Key) bool {
	if s.child.Has(key) {
		return true
	}
	return s.parent != nil && s.parent.Has(key)
}

// GetSet forms the union of the parent's and child's sets if both exist;
// otherwise whichever exists (spec §4.4). Elements are deduplicated per the
// decision recorded in DESIGN.md for spec §9 Open Question 1: comparable
// values (including pointers, compared by identity) dedupe; non-comparable
// values (slices, maps, funcs) are never deduplicated.
func (s *Subcontext) GetSet(tag TypeTag, id any) ([]any, error) {
	childSet, _ := s.child.GetSet(tag, id)
	var parentSet []any
	if s.parent != nil {
		parentSet, _ = s.parent.GetSet(tag, id)
	}
	if len(childSet) == 0 {
		return parentSet, nil
	}
	if len(parentSet) == 0 {
		return childSet, nil
	}
	merged := make([]any, 0, len(parentSet)+len(childSet))
	merged = append(merged, parentSet...)
	merged = append(merged, childSet...)
	return dedupeElements(merged), nil
}

// Keys returns the union of child and (if present) parent keys.
func (s *Subcontext) Keys() []Key {
	seen := make(map[Key]bool)
	var out []Key
	for _, k := range s.child.Keys() {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	if s.parent != nil {
		for _, k := range s.parent.Keys() {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}

// Close releases the child only; the parent is unaffected (spec §4.4).
func (s *Subcontext) Close() error {
	return s.child.Close()
}

// dedupeElements implements the identity/value dedup policy above.
func dedupeElements(values []any) []any {
	seen := make(map[any]bool, len(values))
	out := make([]any, 0, len(values))
	for _, v := range values {
		rv := reflect.ValueOf(v)
		if !rv.IsValid() || !rv.Type().Comparable() {
			out = append(out, v)
			continue
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
