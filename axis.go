package staged

import (
	"fmt"
	"sort"
)

// Axis is a named dimension with a finite, non-empty set of choices (spec
// §3.3).
type Axis struct {
	Name    string
	Choices []string
}

// NewAxis builds an Axis, validating that choices is non-empty and
// contains no duplicates.
func NewAxis(name string, choices ...string) (Axis, error) {
	if name == "" {
		return Axis{}, fmt.Errorf("staged: axis name must not be empty")
	}
	if len(choices) == 0 {
		return Axis{}, fmt.Errorf("staged: axis %q must have at least one choice", name)
	}
	seen := make(map[string]bool, len(choices))
	for _, c := range choices {
		if seen[c] {
			return Axis{}, fmt.Errorf("staged: axis %q has duplicate choice %q", name, c)
		}
		seen[c] = true
	}
	cp := make([]string, len(choices))
	copy(cp, choices)
	return Axis{Name: name, Choices: cp}, nil
}

// MustAxis is NewAxis but panics on error; intended for package-level axis
// declarations where the choice set is a compile-time constant.
func MustAxis(name string, choices ...string) Axis {
	a, err := NewAxis(name, choices...)
	if err != nil {
		panic(err)
	}
	return a
}

// HasChoice reports whether choice is one of a's valid choices.
func (a Axis) HasChoice(choice string) bool {
	for _, c := range a.Choices {
		if c == choice {
			return true
		}
	}
	return false
}

// AxisPoint is an Axis paired with one of its choices (spec §3.3).
type AxisPoint struct {
	Axis   Axis
	Choice string
}

// NewAxisPoint validates that choice is one of axis's choices.
func NewAxisPoint(axis Axis, choice string) (AxisPoint, error) {
	if !axis.HasChoice(choice) {
		return AxisPoint{}, fmt.Errorf("staged: %q is not a valid choice for axis %q", choice, axis.Name)
	}
	return AxisPoint{Axis: axis, Choice: choice}, nil
}

// Activation is a function Axis -> choice, represented as a map with at
// most one choice per axis (spec §3.3). Activation is immutable once
// constructed.
type Activation struct {
	points map[string]AxisPoint
}

// EmptyActivation is the Activation with no choices on any axis.
var EmptyActivation = Activation{}

// NewActivation builds an Activation from a set of AxisPoints. Construction
// fails if two points name the same axis.
func NewActivation(points ...AxisPoint) (Activation, error) {
	m := make(map[string]AxisPoint, len(points))
	for _, p := range points {
		if existing, ok := m[p.Axis.Name]; ok {
			return Activation{}, fmt.Errorf("staged: activation supplies two points for axis %q: %q and %q", p.Axis.Name, existing.Choice, p.Choice)
		}
		m[p.Axis.Name] = p
	}
	return Activation{points: m}, nil
}

// Select reports the choice this Activation makes for axis, if any.
func (a Activation) Select(axisName string) (string, bool) {
	p, ok := a.points[axisName]
	if !ok {
		return "", false
	}
	return p.Choice, true
}

// Points returns the AxisPoints this Activation carries, in a
// deterministic (name-sorted) order.
func (a Activation) Points() []AxisPoint {
	names := make([]string, 0, len(a.points))
	for n := range a.points {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]AxisPoint, 0, len(names))
	for _, n := range names {
		out = append(out, a.points[n])
	}
	return out
}

func (a Activation) String() string {
	pts := a.Points()
	s := "{"
	for i, p := range pts {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s=%s", p.Axis.Name, p.Choice)
	}
	return s + "}"
}
