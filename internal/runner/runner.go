package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dockhand-io/dockhand/internal/config"
	"github.com/dockhand-io/dockhand/internal/ctxlog"
	"github.com/dockhand-io/dockhand/internal/graph"
	"github.com/dockhand-io/dockhand/internal/lifecycle"
	"github.com/dockhand-io/dockhand/internal/plan"
	"github.com/dockhand-io/dockhand/internal/provision"
	"github.com/dockhand-io/dockhand/internal/runtime"
)

// Runner executes tasks from one config against one container runtime.
type Runner struct {
	cfg    *config.Config
	rt     runtime.ContainerRuntime
	stdout io.Writer
	stderr io.Writer
}

// New returns a Runner. Task command output is streamed to stdout and
// stderr.
func New(cfg *config.Config, rt runtime.ContainerRuntime, stdout, stderr io.Writer) *Runner {
	return &Runner{cfg: cfg, rt: rt, stdout: stdout, stderr: stderr}
}

// Run executes the named task end to end: prerequisites first, then the
// dependency containers, then the task's own command, then teardown.
// Teardown happens on every path, including cancellation; cleanup
// failures are joined into the result rather than swallowed.
func (r *Runner) Run(ctx context.Context, taskName string) Result {
	ctx = ctxlog.With(ctx, "task", taskName)
	logger := ctxlog.FromContext(ctx)

	logger.Debug("State transition.", "state", StatePlanning)
	if _, err := graph.Build(r.cfg); err != nil {
		return r.failed(ctx, taskName, fmt.Errorf("building dependency graph: %w", err))
	}
	pl, err := plan.Build(r.cfg, taskName)
	if err != nil {
		return r.failed(ctx, taskName, err)
	}

	logger.Debug("State transition.", "state", StateRunningPrerequisites, "prerequisites", len(pl.Prerequisites))
	for _, prereq := range pl.Prerequisites {
		res := r.Run(ctx, prereq)
		if res.Err != nil {
			return r.failedWithCode(ctx, taskName, res.ExitCode,
				fmt.Errorf("prerequisite %q failed: %w", prereq, res.Err))
		}
		if res.ExitCode != 0 {
			return r.failedWithCode(ctx, taskName, res.ExitCode,
				&TaskExecutionFailure{Task: prereq, ExitCode: res.ExitCode})
		}
	}

	mgr := lifecycle.NewManager(r.rt)
	prov := provision.New(r.cfg, r.rt)

	result := r.execute(ctx, pl, prov, mgr)

	logger.Debug("State transition.", "state", StateTearingDown)
	if cleanupErr := mgr.CleanupAll(ctx); cleanupErr != nil {
		result.Err = errors.Join(result.Err, fmt.Errorf("cleanup: %w", cleanupErr))
	}

	if result.Err != nil {
		logger.Debug("State transition.", "state", StateFailed, "exitCode", result.ExitCode)
	} else {
		logger.Debug("State transition.", "state", StateCompleted, "exitCode", result.ExitCode)
	}
	return result
}

// execute covers the resource-holding states. The caller owns teardown,
// so every early return here still gets cleaned up.
func (r *Runner) execute(ctx context.Context, pl *plan.Plan, prov *provision.Provisioner, mgr *lifecycle.Manager) Result {
	logger := ctxlog.FromContext(ctx)

	logger.Debug("State transition.", "state", StateProvisioningDependencies, "dependencies", len(pl.Dependencies))
	networkID, networkName, err := prov.ProvisionNetwork(ctx)
	if err != nil {
		return Result{Task: pl.Task, ExitCode: ExitOrchestrationFailure,
			Err: fmt.Errorf("provisioning run network: %w", err)}
	}
	mgr.SetNetwork(networkID, networkName)

	if err := r.startDependencies(ctx, pl, prov, mgr); err != nil {
		return Result{Task: pl.Task, ExitCode: ExitOrchestrationFailure, Err: err}
	}

	logger.Debug("State transition.", "state", StateRunningMainTask, "container", pl.MainContainer)
	exitCode, err := r.runMain(ctx, pl, prov, mgr)
	if err != nil {
		return Result{Task: pl.Task, ExitCode: ExitOrchestrationFailure, Err: err}
	}
	return Result{Task: pl.Task, ExitCode: exitCode}
}

// startDependencies provisions every dependency container concurrently.
// Each container gates on the readiness of its direct dependencies, so
// independent containers overlap while ordered ones stay ordered. On
// any failure the group context cancels the siblings; the lifecycle
// manager still tracks everything already created for teardown.
func (r *Runner) startDependencies(ctx context.Context, pl *plan.Plan, prov *provision.Provisioner, mgr *lifecycle.Manager) error {
	if len(pl.Dependencies) == 0 {
		return nil
	}

	ready := make(map[string]chan struct{}, len(pl.Dependencies))
	for _, name := range pl.Dependencies {
		ready[name] = make(chan struct{})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range pl.Dependencies {
		g.Go(func() error {
			for _, dep := range pl.DirectDeps[name] {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-ready[dep]:
				}
			}

			spec, err := prov.DependencySpec(gctx, name)
			if err != nil {
				return err
			}
			if _, err := mgr.Provision(gctx, spec); err != nil {
				return err
			}
			close(ready[name])
			return nil
		})
	}
	return g.Wait()
}

// runMain creates and starts the task's own container, streams its
// output, and waits for its exit code.
func (r *Runner) runMain(ctx context.Context, pl *plan.Plan, prov *provision.Provisioner, mgr *lifecycle.Manager) (int, error) {
	logger := ctxlog.FromContext(ctx)
	task := r.cfg.Task(pl.Task)

	spec, err := prov.MainSpec(ctx, task)
	if err != nil {
		return 0, err
	}

	id, err := mgr.Create(ctx, spec)
	if err != nil {
		return 0, err
	}
	if err := mgr.Start(ctx, id, spec.Name); err != nil {
		return 0, err
	}

	var streaming sync.WaitGroup
	streaming.Add(1)
	go func() {
		defer streaming.Done()
		if err := r.rt.StreamOutput(ctx, id, r.stdout, r.stderr); err != nil {
			logger.Warn("Output stream ended with error.", "error", err)
		}
	}()

	exitCode, err := r.rt.WaitExit(ctx, id)
	streaming.Wait()
	if err != nil {
		return 0, &lifecycle.ContainerLifecycleError{Container: spec.Name, Op: "wait", Err: err}
	}

	return int(exitCode), nil
}

func (r *Runner) failed(ctx context.Context, taskName string, err error) Result {
	return r.failedWithCode(ctx, taskName, ExitOrchestrationFailure, err)
}

func (r *Runner) failedWithCode(ctx context.Context, taskName string, exitCode int, err error) Result {
	ctxlog.FromContext(ctx).Debug("State transition.", "state", StateFailed, "error", err)
	return Result{Task: taskName, ExitCode: exitCode, Err: err}
}
