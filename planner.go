package staged

// Planner resolves a Module against an Activation using path-aware axis
// tracing, accumulates collection bindings, detects cycles and missing
// dependencies, and produces a topologically ordered Plan (spec §4.2).
//
// A Planner is purely computational: it is single-threaded per invocation,
// takes no locks beyond what the optional parent Locator itself holds for
// reads, and never invokes a user Functoid (spec §5). It is safe to invoke
// concurrently on independent inputs.
type Planner struct {
	logger Logger
}

// NewPlanner builds a Planner. A nil logger uses the package-level discard
// logger (see log.go).
func NewPlanner(logger Logger) *Planner {
	if logger == nil {
		logger = discardLogger{}
	}
	return &Planner{logger: logger}
}

// PlanOptions configures a single Plan call (spec §6's "Configuration
// options recognised on Injector produce"). Parent may be any Locator
// implementation, including a Subcontext.
type PlanOptions struct {
	Activation Activation
	AutoRoots  bool
	Parent     Locator
}

// Plan resolves module against roots (or, if opts.AutoRoots, every Key the
// module declares bindings for) under opts.Activation, optionally layered
// over opts.Parent, and returns a topologically sorted Plan.
func (p *Planner) Plan(module Module, roots []Key, opts PlanOptions) (Plan, error) {
	if err := module.Validate(); err != nil {
		return Plan{}, err
	}

	index := module.byKey()

	effectiveRoots := roots
	if opts.AutoRoots {
		effectiveRoots = make([]Key, 0, len(index))
		for k := range index {
			effectiveRoots = append(effectiveRoots, k)
		}
	}

	st := &plannerState{
		index:    index,
		parent:   opts.Parent,
		visiting: make(map[Key]bool),
		visited:  make(map[Key]bool),
		steps:    make(map[Key]PlanStep),
		logger:   p.logger,
	}

	base := newPathActivation(opts.Activation)
	for _, root := range effectiveRoots {
		if err := st.resolve(root, base, nil); err != nil {
			return Plan{}, err
		}
	}

	sorted := topoSort(st.order, st.steps)
	return Plan{Steps: sorted, Roots: effectiveRoots}, nil
}

type plannerState struct {
	index    map[Key][]Binding
	parent   Locator
	visiting map[Key]bool
	visited  map[Key]bool
	steps    map[Key]PlanStep
	order    []Key
	logger   Logger
}

// resolve implements the per-key traversal of spec §4.2.4.
func (st *plannerState) resolve(key Key, pa pathActivation, path []Key) error {
	if st.visited[key] {
		return nil
	}
	if st.visiting[key] {
		cycle := append(append([]Key(nil), path...), key)
		return &CircularDependencyError{Cycle: cycle}
	}

	candidates := st.index[key]

	if len(candidates) == 0 {
		if st.parent != nil && st.parent.Has(key) {
			st.visited[key] = true
			return nil
		}
		if key.IsSet() {
			// No contributor exists anywhere for this collection and no
			// parent supplies it either: per spec §3.8 the empty union is
			// itself a valid value, so this resolves to an empty set
			// rather than a hard failure (see DESIGN.md).
			st.visiting[key] = true
			st.steps[key] = PlanStep{Key: key}
			st.order = append(st.order, key)
			st.visiting[key] = false
			st.visited[key] = true
			return nil
		}
		dep, hasDep := lastKey(path)
		return &MissingDependencyError{Key: key, Dependent: dep, HasDependent: hasDep}
	}

	if key.IsSet() {
		return st.resolveSet(key, candidates, pa, path)
	}
	return st.resolveSingle(key, candidates, pa, path)
}

func (st *plannerState) resolveSingle(key Key, candidates []Binding, pa pathActivation, path []Key) error {
	valid := filterValid(candidates, pa)
	if len(valid) != len(candidates) {
		st.logger.Debugf("staged: axis filtering for %s: %d of %d candidate(s) valid under %s", key, len(valid), len(candidates), pa.base)
	}
	if len(valid) == 0 {
		return st.axisConflictOrMissing(key, candidates, pa, path)
	}

	maxSpec := -1
	for _, c := range valid {
		if s := c.Tags.Specificity(); s > maxSpec {
			maxSpec = s
		}
	}
	var mostSpecific []Binding
	for _, c := range valid {
		if c.Tags.Specificity() == maxSpec {
			mostSpecific = append(mostSpecific, c)
		}
	}
	if len(mostSpecific) > 1 {
		return &ConflictingBindingsError{Key: key, Bindings: mostSpecific}
	}
	chosen := mostSpecific[0]
	if len(valid) > 1 {
		st.logger.Debugf("staged: selected tags %v for %s by specificity %d among %d valid candidate(s)", chosen.Tags, key, maxSpec, len(valid))
	}

	st.visiting[key] = true
	nextPath := append(append([]Key(nil), path...), key)
	nextPA := pa.extend(chosen.Tags)

	deps := chosen.deps()
	for _, d := range deps {
		if err := st.resolve(d, nextPA, nextPath); err != nil {
			return err
		}
	}

	st.steps[key] = PlanStep{Key: key, Bindings: []Binding{chosen}, Dependencies: dedupeKeys(deps)}
	st.order = append(st.order, key)
	st.visiting[key] = false
	st.visited[key] = true
	return nil
}

func (st *plannerState) resolveSet(key Key, candidates []Binding, pa pathActivation, path []Key) error {
	valid := filterValid(candidates, pa)
	if len(valid) != len(candidates) {
		st.logger.Debugf("staged: axis filtering for set %s: %d of %d candidate(s) valid under %s", key, len(valid), len(candidates), pa.base)
	}

	st.visiting[key] = true
	nextPath := append(append([]Key(nil), path...), key)

	var survivors []Binding
	var allDeps []Key
	for _, elem := range valid {
		elemPA := pa.extend(elem.Tags)
		deps := elem.deps()

		err := st.resolveDeps(deps, elemPA, nextPath)
		if err != nil {
			if elem.weak && isWeakRecoverable(err) {
				st.logger.Infof("staged: dropping weak set-element for %s: %v", key, err)
				continue
			}
			return err
		}
		survivors = append(survivors, elem)
		allDeps = append(allDeps, deps...)
	}

	st.steps[key] = PlanStep{Key: key, Bindings: survivors, Dependencies: dedupeKeys(allDeps)}
	st.order = append(st.order, key)
	st.visiting[key] = false
	st.visited[key] = true
	return nil
}

func (st *plannerState) resolveDeps(deps []Key, pa pathActivation, path []Key) error {
	for _, d := range deps {
		if err := st.resolve(d, pa, path); err != nil {
			return err
		}
	}
	return nil
}

// axisConflictOrMissing implements the "Valid set empty" branch of spec
// §4.2.3, generalised (see DESIGN.md) to: a Key with at least one declared
// candidate but none valid under the current Activation/path is always an
// AxisConflict, whether the mismatch originates from the caller's base
// Activation or from path-accumulated constraints; a Key with zero
// declared candidates anywhere (handled in resolve, before this is called)
// is a MissingDependency.
func (st *plannerState) axisConflictOrMissing(key Key, candidates []Binding, pa pathActivation, path []Key) error {
	dep, hasDep := lastKey(path)
	return &AxisConflictError{
		Key:          key,
		Dependent:    dep,
		HasDependent: hasDep,
		Constraint:   pa.renderConstraint(candidates),
	}
}

func isWeakRecoverable(err error) bool {
	switch err.(type) {
	case *MissingDependencyError, *AxisConflictError:
		return true
	default:
		return false
	}
}

func filterValid(candidates []Binding, pa pathActivation) []Binding {
	var out []Binding
	for _, c := range candidates {
		if pa.valid(c.Tags) {
			out = append(out, c)
		}
	}
	return out
}

func lastKey(path []Key) (Key, bool) {
	if len(path) == 0 {
		return Key{}, false
	}
	return path[len(path)-1], true
}

func dedupeKeys(keys []Key) []Key {
	if len(keys) == 0 {
		return nil
	}
	seen := make(map[Key]bool, len(keys))
	out := make([]Key, 0, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// topoSort implements spec §4.2.6's explicit second pass: every step is
// placed after all of its dependencies that exist in the step map. order
// is the DFS post-order (already topologically valid in the common case);
// this pass is a deterministic safety net, stable with respect to order.
func topoSort(order []Key, steps map[Key]PlanStep) []PlanStep {
	placed := make(map[Key]bool, len(order))
	result := make([]PlanStep, 0, len(order))
	remaining := append([]Key(nil), order...)

	for len(remaining) > 0 {
		var next []Key
		progressed := false
		for _, k := range remaining {
			step := steps[k]
			ready := true
			for _, d := range step.Dependencies {
				if _, inSteps := steps[d]; inSteps && !placed[d] {
					ready = false
					break
				}
			}
			if ready {
				result = append(result, step)
				placed[k] = true
				progressed = true
			} else {
				next = append(next, k)
			}
		}
		if !progressed {
			// Defensive only: the DFS's visiting-set already rejects any
			// true cycle before topoSort runs.
			for _, k := range next {
				result = append(result, steps[k])
			}
			break
		}
		remaining = next
	}
	return result
}
