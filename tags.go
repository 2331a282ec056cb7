package staged

import "sort"

// BindingTags is the map Axis -> choice attached to a single Binding (spec
// §3.3). An empty BindingTags applies everywhere. Internally it keeps the
// full AxisPoint (not just the chosen string) so the Planner can enumerate
// an axis's other choices when computing path-forbidden sets (§4.2.2).
type BindingTags map[string]AxisPoint

// NewBindingTags builds a BindingTags from AxisPoints. Later points for the
// same axis overwrite earlier ones.
func NewBindingTags(points ...AxisPoint) BindingTags {
	if len(points) == 0 {
		return nil
	}
	t := make(BindingTags, len(points))
	for _, p := range points {
		t[p.Axis.Name] = p
	}
	return t
}

// Specificity is the cardinality of the tag set (spec §3.3).
func (t BindingTags) Specificity() int {
	return len(t)
}

// MatchesActivation reports whether every (axis, choice) in t agrees with
// base's selection on that axis. Per spec §3.3's literal definition, an
// axis base has no opinion on does NOT satisfy the tag -- base must
// explicitly select the same choice.
func (t BindingTags) MatchesActivation(base Activation) bool {
	for axis, point := range t {
		selected, ok := base.Select(axis)
		if !ok || selected != point.Choice {
			return false
		}
	}
	return true
}

// Axes returns the axis names t constrains, sorted for determinism.
func (t BindingTags) Axes() []string {
	names := make([]string, 0, len(t))
	for a := range t {
		names = append(names, a)
	}
	sort.Strings(names)
	return names
}

// Choice returns the choice t fixes for axisName, if any.
func (t BindingTags) Choice(axisName string) (string, bool) {
	p, ok := t[axisName]
	if !ok {
		return "", false
	}
	return p.Choice, true
}
