package staged

import (
	"errors"
	"fmt"
	"strings"
)

// The error taxonomy of spec §7. All four Planner errors are hard planning
// failures; FunctoidConstructionError and InstanceNotFound surface from
// Functoid and Locator respectively; AggregateCleanupError is raised by
// Locator.Close; ProducerFailure wraps a runtime failure from user code.

// MissingDependencyError reports that no binding (and no parent-Locator
// entry) could be found for a Key reachable from a root.
type MissingDependencyError struct {
	Key          Key
	Dependent    Key // the Key that required Missing, zero value if it is a root
	HasDependent bool
}

func (e *MissingDependencyError) Error() string {
	if e.HasDependent {
		return fmt.Sprintf("staged: missing dependency %s required by %s", e.Key, e.Dependent)
	}
	return fmt.Sprintf("staged: missing dependency %s", e.Key)
}

// CircularDependencyError reports a dependency cycle discovered during
// planning. Cycle is the traversal path of Keys from the root, ending with
// the Key that closed the loop; when the root itself is not part of the
// loop, the Keys leading from the root to the loop come first.
type CircularDependencyError struct {
	Cycle []Key
}

func (e *CircularDependencyError) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, k := range e.Cycle {
		parts[i] = k.String()
	}
	return fmt.Sprintf("staged: circular dependency: %s", strings.Join(parts, " -> "))
}

// ConflictingBindingsError reports that more than one equally-specific
// binding is valid for a Key under the current Activation and path.
type ConflictingBindingsError struct {
	Key      Key
	Bindings []Binding
}

func (e *ConflictingBindingsError) Error() string {
	return fmt.Sprintf("staged: conflicting bindings for %s: %d equally specific candidates", e.Key, len(e.Bindings))
}

// AxisConflictError reports that candidates exist for a Key but all are
// excluded by axis/tag constraints (either the caller's base Activation or
// constraints accumulated along the current resolution path).
type AxisConflictError struct {
	Key          Key
	Dependent    Key
	HasDependent bool
	Constraint   string // rendered human-legible description, e.g. "Env must be Test"
}

func (e *AxisConflictError) Error() string {
	if e.HasDependent {
		return fmt.Sprintf("staged: axis conflict resolving %s (required by %s): %s", e.Key, e.Dependent, e.Constraint)
	}
	return fmt.Sprintf("staged: axis conflict resolving %s: %s", e.Key, e.Constraint)
}

// FunctoidConstructionError reports a malformed Functoid, such as an arity
// mismatch between its callable and its declared dependency list.
type FunctoidConstructionError struct {
	Reason string
}

func (e *FunctoidConstructionError) Error() string {
	return fmt.Sprintf("staged: functoid construction error: %s", e.Reason)
}

// InstanceNotFoundError reports that Locator.Get was called for a Key with
// no produced value.
type InstanceNotFoundError struct {
	Key Key
}

func (e *InstanceNotFoundError) Error() string {
	return fmt.Sprintf("staged: no instance found for %s", e.Key)
}

// AggregateCleanupError collects every error encountered while releasing a
// Locator's resources in Close. It is built with go.uber.org/multierr so
// release of the remaining resources is never short-circuited by an early
// failure (spec §4.4, §5 "errors during release are collected into an
// aggregate failure but do not prevent attempting the rest").
type AggregateCleanupError struct {
	Errors []error
}

func (e *AggregateCleanupError) Error() string {
	return fmt.Sprintf("staged: %d error(s) during Locator.Close", len(e.Errors))
}

func (e *AggregateCleanupError) Unwrap() []error {
	return e.Errors
}

// ProducerFailure wraps an error raised by user code (a Class/Factory
// Functoid, an Alias resolution, or a non-weak set-element) during
// production, along with the Key whose construction failed.
type ProducerFailure struct {
	Key     Key
	Wrapped error
}

func (e *ProducerFailure) Error() string {
	return fmt.Sprintf("staged: failed to produce %s: %v", e.Key, e.Wrapped)
}

func (e *ProducerFailure) Unwrap() error {
	return e.Wrapped
}

// ErrModuleMixesSetAndPlainBinding is returned by Module.Validate when a
// Key carries both a set-element binding and a plain (non-set) binding --
// disallowed per the decision recorded in DESIGN.md for spec §9 Open
// Question 2.
var ErrModuleMixesSetAndPlainBinding = errors.New("staged: module mixes set-element and plain bindings for the same key")
