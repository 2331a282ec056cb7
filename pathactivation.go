package staged

import (
	"fmt"
	"sort"
	"strings"
)

// pathActivation is the PathActivation value of spec §4.2.2, threaded
// through Planner traversal. base is the caller-supplied Activation
// (immutable for the whole plan); required/forbidden accumulate along the
// current root-to-key path and are never shared between sibling branches
// (pathActivation is copy-on-write: extend returns a new value).
type pathActivation struct {
	base      Activation
	required  map[string]map[string]bool
	forbidden map[string]map[string]bool
}

func newPathActivation(base Activation) pathActivation {
	return pathActivation{base: base}
}

// extend returns the pathActivation in effect once a binding with tags has
// been selected on the current path: its choice on each tagged axis is
// added to required, and every other choice the Axis could take is added
// to forbidden (spec §4.2.2).
func (pa pathActivation) extend(tags BindingTags) pathActivation {
	if len(tags) == 0 {
		return pa
	}
	next := pathActivation{
		base:      pa.base,
		required:  cloneAxisChoiceSet(pa.required),
		forbidden: cloneAxisChoiceSet(pa.forbidden),
	}
	for axisName, point := range tags {
		if next.required == nil {
			next.required = make(map[string]map[string]bool)
		}
		if next.required[axisName] == nil {
			next.required[axisName] = make(map[string]bool)
		}
		next.required[axisName][point.Choice] = true

		if next.forbidden == nil {
			next.forbidden = make(map[string]map[string]bool)
		}
		if next.forbidden[axisName] == nil {
			next.forbidden[axisName] = make(map[string]bool)
		}
		for _, choice := range point.Axis.Choices {
			if choice != point.Choice {
				next.forbidden[axisName][choice] = true
			}
		}
	}
	return next
}

func cloneAxisChoiceSet(m map[string]map[string]bool) map[string]map[string]bool {
	if m == nil {
		return nil
	}
	out := make(map[string]map[string]bool, len(m))
	for axis, set := range m {
		inner := make(map[string]bool, len(set))
		for k, v := range set {
			inner[k] = v
		}
		out[axis] = inner
	}
	return out
}

// satisfiesPath reports whether candidate's tags are consistent with the
// required/forbidden sets accumulated so far (spec §4.2.3 rule 2).
// Untagged candidates, and tags on axes the path has no opinion about,
// always satisfy this rule.
func (pa pathActivation) satisfiesPath(tags BindingTags) bool {
	for axisName, point := range tags {
		if req, ok := pa.required[axisName]; ok && len(req) > 0 {
			if !req[point.Choice] {
				return false
			}
		}
		if forb, ok := pa.forbidden[axisName]; ok {
			if forb[point.Choice] {
				return false
			}
		}
	}
	return true
}

// valid reports whether candidate is valid under pa per spec §4.2.3: its
// tags must match the base Activation AND satisfy path constraints.
func (pa pathActivation) valid(tags BindingTags) bool {
	return tags.MatchesActivation(pa.base) && pa.satisfiesPath(tags)
}

// renderConstraint produces a human-legible description of why no
// candidate for a Key could be selected, of the form used in scenario S3:
// "Env must be Test". For each axis the candidates are tagged on, it names
// the single choice the path requires on that axis, or else the base
// Activation's choice for it; if neither exists for any axis, it describes
// the base Activation as a whole. Forbidden choices are not rendered.
func (pa pathActivation) renderConstraint(candidates []Binding) string {
	axes := make(map[string]bool)
	for _, c := range candidates {
		for _, a := range c.Tags.Axes() {
			axes[a] = true
		}
	}
	var parts []string
	names := make([]string, 0, len(axes))
	for a := range axes {
		names = append(names, a)
	}
	sort.Strings(names)
	for _, axis := range names {
		if req, ok := pa.required[axis]; ok && len(req) == 1 {
			for choice := range req {
				parts = append(parts, fmt.Sprintf("%s must be %s", axis, choice))
			}
			continue
		}
		if choice, ok := pa.base.Select(axis); ok {
			parts = append(parts, fmt.Sprintf("%s must be %s", axis, choice))
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("no candidate satisfies activation %s", pa.base)
	}
	return strings.Join(parts, "; ")
}
