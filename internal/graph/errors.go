package graph

import (
	"errors"
	"fmt"
)

// ErrConfigGraph is the sentinel all graph validation errors unwrap to,
// so callers can treat "the config's graph is unusable" as one class.
var ErrConfigGraph = errors.New("invalid configuration graph")

// UnknownReferenceError reports a dependency or prerequisite that names
// a task or container not defined in the config.
type UnknownReferenceError struct {
	// Referrer is the task or container containing the bad reference,
	// empty when the target of the run itself is unknown.
	Referrer string
	// Kind is "task" or "container".
	Kind string
	// Name is the missing reference.
	Name string
}

func (e *UnknownReferenceError) Error() string {
	if e.Referrer == "" {
		return fmt.Sprintf("%s %q is not defined", e.Kind, e.Name)
	}
	return fmt.Sprintf("%q references %s %q, which is not defined", e.Referrer, e.Kind, e.Name)
}

func (e *UnknownReferenceError) Unwrap() error { return ErrConfigGraph }

// CyclicDependencyError reports a dependency or prerequisite cycle.
type CyclicDependencyError struct {
	// Kind is "task" or "container".
	Kind string
	// Node is a member of the detected cycle.
	Node string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("dependency cycle detected involving %s %q", e.Kind, e.Node)
}

func (e *CyclicDependencyError) Unwrap() error { return ErrConfigGraph }
