package app

import (
	"context"

	"github.com/dockhand-io/dockhand/internal/ctxlog"
	"github.com/dockhand-io/dockhand/internal/runner"
	"github.com/dockhand-io/dockhand/internal/runtime"
)

// RunTask executes the named task against the given container runtime
// and returns its typed result. Cancellation of ctx (for example from a
// signal) aborts the run cooperatively; teardown still completes.
func (a *App) RunTask(ctx context.Context, rt runtime.ContainerRuntime, taskName string) runner.Result {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	a.logger.Info("Running task.", "task", taskName, "project", a.config.ProjectName)
	res := runner.New(a.config, rt, a.outW, a.errW).Run(ctx, taskName)

	if res.Err != nil {
		a.logger.Error("Task run failed.", "task", taskName, "exitCode", res.ExitCode, "error", res.Err)
	} else {
		a.logger.Info("Task run finished.", "task", taskName, "exitCode", res.ExitCode)
	}
	return res
}
