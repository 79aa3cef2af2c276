// Package runner is the orchestration core: it drives one task
// invocation through planning, prerequisite runs, concurrent dependency
// provisioning, the main command, and unconditional teardown.
// Prerequisites recurse into the same state machine, each as a full
// invocation with its own network and lifecycle.
package runner
