// Package lifecycle manages containers for the duration of one task
// invocation: create, start, await readiness, and guaranteed removal.
// Every container created through a Manager is tracked until CleanupAll
// removes it, so no exit path can leak containers. The tracking set is
// safe under concurrent dependency startup and the cancellation path.
package lifecycle
