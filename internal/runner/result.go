package runner

import "fmt"

// ExitOrchestrationFailure is the reserved exit code for failures of the
// orchestration itself (graph errors, provisioning errors, daemon
// trouble), as opposed to the task's own command failing. 125 mirrors
// the Docker CLI convention for errors originating in the tooling.
const ExitOrchestrationFailure = 125

// Result is the typed outcome of one invocation. Returning it instead
// of threading errors through panics keeps cleanup aggregation explicit
// across the recursive prerequisite tree.
type Result struct {
	Task     string
	ExitCode int
	Err      error
}

// TaskExecutionFailure records a task command that ran to completion but
// exited non-zero. It is the invocation's result, not an orchestration
// defect; for a prerequisite it is fatal to the dependent task.
type TaskExecutionFailure struct {
	Task     string
	ExitCode int
}

func (e *TaskExecutionFailure) Error() string {
	return fmt.Sprintf("task %q exited with code %d", e.Task, e.ExitCode)
}
