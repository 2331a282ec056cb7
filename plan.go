package staged

// PlanStep is one entry of a Plan: the resolved binding(s) for Key, and the
// Keys it directly depends on at production time (spec §3.6).
//
// For an ordinary Key, Bindings has exactly one element. For a collection
// Key, Bindings holds every set-element binding that survived Planner
// filtering (spec §4.2.3 "If all are set-element bindings, return them
// all").
type PlanStep struct {
	Key          Key
	Bindings     []Binding
	Dependencies []Key
}

// IsSet reports whether this step produces a collection value.
func (s PlanStep) IsSet() bool {
	return s.Key.IsSet()
}

// Plan is an ordered, topologically sorted list of PlanSteps, together with
// the roots it was computed for (spec §3.6). For any step S, every Key in
// S.Dependencies appears earlier in Steps, or is served by a parent
// Locator supplied at planning time.
type Plan struct {
	Steps []PlanStep
	Roots []Key
}

// StepFor returns the PlanStep for key, if present.
func (p Plan) StepFor(key Key) (PlanStep, bool) {
	for _, s := range p.Steps {
		if s.Key.Equal(key) {
			return s, true
		}
	}
	return PlanStep{}, false
}

// HasAsync reports whether any Class/Factory/AssistedFactory binding in the
// plan declares an async Functoid -- the signal Injector.Produce uses to
// pick the synchronous or asynchronous Producer mode (spec §4.6).
func (p Plan) HasAsync() bool {
	for _, s := range p.Steps {
		for _, b := range s.Bindings {
			switch b.Kind {
			case BindingClass, BindingFactory, BindingAssistedFactory:
				if b.functoid.IsAsync() {
					return true
				}
			case BindingSetElement:
				if b.inner != nil && (b.inner.Kind == BindingClass || b.inner.Kind == BindingFactory) && b.inner.functoid.IsAsync() {
					return true
				}
			}
		}
	}
	return false
}
