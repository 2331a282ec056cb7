package staged

// Module is an ordered sequence of Bindings (spec §3.5).
type Module struct {
	bindings []Binding
}

// NewModule builds a Module from an initial set of bindings, in order.
func NewModule(bindings ...Binding) Module {
	m := Module{bindings: make([]Binding, len(bindings))}
	copy(m.bindings, bindings)
	return m
}

// Add returns a new Module with binding appended.
func (m Module) Add(binding Binding) Module {
	return Module{bindings: append(append([]Binding(nil), m.bindings...), binding)}
}

// Bindings returns the ordered slice of Bindings this Module carries. The
// returned slice is a copy; mutating it does not affect m.
func (m Module) Bindings() []Binding {
	out := make([]Binding, len(m.bindings))
	copy(out, m.bindings)
	return out
}

// Append concatenates a and b; bindings from both coexist (spec §3.5,
// §4.1). Append(a, Empty) == a and Append(Empty, b) == b.
func Append(a, b Module) Module {
	out := make([]Binding, 0, len(a.bindings)+len(b.bindings))
	out = append(out, a.bindings...)
	out = append(out, b.bindings...)
	return Module{bindings: out}
}

// Empty is the Module with no bindings.
var Empty = Module{}

// OverriddenBy returns the union of all bindings in base and overlay, but
// for each Key that has at least one non-set binding in both, base's
// non-set bindings for that Key are dropped and every one of overlay's is
// kept, in overlay order. Set-element bindings from both sides are always
// retained (spec §3.5, §4.1).
func OverriddenBy(base, overlay Module) Module {
	overlayHasPlain := make(map[Key]bool)
	for _, b := range overlay.bindings {
		if b.Kind != BindingSetElement {
			overlayHasPlain[b.Key] = true
		}
	}

	out := make([]Binding, 0, len(base.bindings)+len(overlay.bindings))
	for _, b := range base.bindings {
		if b.Kind == BindingSetElement {
			out = append(out, b)
			continue
		}
		if overlayHasPlain[b.Key] {
			continue // superseded by overlay's binding(s) for this key
		}
		out = append(out, b)
	}
	out = append(out, overlay.bindings...)
	return Module{bindings: out}
}

// Validate checks module-wide invariants that cannot be caught at
// individual Binding-construction time (spec §3.4's invariants plus the
// decision in DESIGN.md for spec §9 Open Question 2: a Key must not carry
// both a set-element binding and a plain binding).
func (m Module) Validate() error {
	hasSet := make(map[Key]bool)
	hasPlain := make(map[Key]bool)
	for _, b := range m.bindings {
		if b.Kind == BindingSetElement {
			hasSet[b.Key] = true
		} else {
			hasPlain[b.Key] = true
		}
	}
	for k := range hasSet {
		if hasPlain[k] {
			return ErrModuleMixesSetAndPlainBinding
		}
	}
	return nil
}

// byKey groups every binding by its Key, preserving within-key order. No
// activation filtering happens here (spec §4.2.1).
func (m Module) byKey() map[Key][]Binding {
	idx := make(map[Key][]Binding, len(m.bindings))
	for _, b := range m.bindings {
		idx[b.Key] = append(idx[b.Key], b)
	}
	return idx
}
