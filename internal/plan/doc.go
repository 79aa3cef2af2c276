// Package plan turns a validated config plus a target task into a
// concrete, deterministic run plan: prerequisite tasks in declared
// order, the dependency container closure in a stable topological order,
// and the main container. Planning is idempotent: the same config and
// target always produce the same plan.
package plan
