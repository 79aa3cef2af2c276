// Package graph builds the directed dependency graph over tasks and
// containers declared in a config, and validates it: every referenced
// name must exist and the graph must be acyclic. Building the graph is a
// pure function of the config; nothing here touches the container
// runtime.
package graph
