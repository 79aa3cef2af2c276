package runner

// State names a phase of one task invocation. Transitions always end in
// StateCompleted or StateFailed, and StateTearingDown runs on every
// path that created resources.
type State int

const (
	StatePlanning State = iota
	StateRunningPrerequisites
	StateProvisioningDependencies
	StateRunningMainTask
	StateTearingDown
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePlanning:
		return "planning"
	case StateRunningPrerequisites:
		return "running-prerequisites"
	case StateProvisioningDependencies:
		return "provisioning-dependencies"
	case StateRunningMainTask:
		return "running-main-task"
	case StateTearingDown:
		return "tearing-down"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}
