package runner_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockhand-io/dockhand/internal/config"
	"github.com/dockhand-io/dockhand/internal/graph"
	"github.com/dockhand-io/dockhand/internal/lifecycle"
	"github.com/dockhand-io/dockhand/internal/runner"
	"github.com/dockhand-io/dockhand/internal/testutil"
)

// jokesProject mirrors the canonical example: a build task in build-env,
// and a run task that depends on joke-service and requires build first.
func jokesProject(t *testing.T) *config.Config {
	cfg := testutil.NewProject(t.TempDir())
	testutil.AddContainer(cfg, &config.Container{Name: "build-env", Image: "node:14.3.0"})
	testutil.AddContainer(cfg, &config.Container{Name: "app-env", Image: "node:14.3.0"})
	testutil.AddContainer(cfg, &config.Container{Name: "db", Image: "postgres:13"})
	testutil.AddContainer(cfg, &config.Container{
		Name:         "joke-service",
		Image:        "joke-service:latest",
		Dependencies: []string{"db"},
	})
	testutil.AddTask(cfg, &config.Task{
		Name: "build",
		Run:  config.RunSpec{Container: "build-env", Command: "yarn build"},
	})
	testutil.AddTask(cfg, &config.Task{
		Name:          "run",
		Run:           config.RunSpec{Container: "app-env", Command: "yarn start"},
		Dependencies:  []string{"joke-service"},
		Prerequisites: []string{"build"},
	})
	return cfg
}

func createdNames(fake *testutil.FakeRuntime) []string {
	names := make([]string, 0, len(fake.CreatedSpecs))
	for _, spec := range fake.CreatedSpecs {
		names = append(names, spec.Name)
	}
	return names
}

func TestRun(t *testing.T) {
	t.Run("hello world runs one container and exits zero", func(t *testing.T) {
		cfg := testutil.NewProject(t.TempDir())
		testutil.AddContainer(cfg, &config.Container{Name: "build-env", Image: "node:14.3.0"})
		testutil.AddTask(cfg, &config.Task{
			Name: "hello-world",
			Run:  config.RunSpec{Container: "build-env", Command: `echo "Hello world!"`},
		})

		fake := testutil.NewFakeRuntime()
		fake.Output["build-env"] = "Hello world!\n"
		var stdout, stderr bytes.Buffer

		res := runner.New(cfg, fake, &stdout, &stderr).Run(context.Background(), "hello-world")
		require.NoError(t, res.Err)
		assert.Equal(t, 0, res.ExitCode)

		assert.Equal(t, []string{"build-env"}, createdNames(fake))
		assert.Len(t, fake.Started, 1)
		assert.Len(t, fake.Removed, 1)
		assert.Len(t, fake.NetworksCreated, 1)
		assert.Len(t, fake.NetworksRemoved, 1)
		assert.Equal(t, "Hello world!\n", stdout.String())
	})

	t.Run("task exit code becomes the invocation exit code", func(t *testing.T) {
		cfg := jokesProject(t)
		fake := testutil.NewFakeRuntime()
		fake.ExitCodes["build-env"] = 3

		res := runner.New(cfg, fake, &bytes.Buffer{}, &bytes.Buffer{}).Run(context.Background(), "build")
		assert.NoError(t, res.Err)
		assert.Equal(t, 3, res.ExitCode)
		assert.Len(t, fake.Removed, len(fake.CreatedIDs), "failed runs must not leak containers")
	})

	t.Run("dependencies are ready before the main container is created", func(t *testing.T) {
		cfg := jokesProject(t)
		cfg.Task("run").Prerequisites = nil
		fake := testutil.NewFakeRuntime()

		res := runner.New(cfg, fake, &bytes.Buffer{}, &bytes.Buffer{}).Run(context.Background(), "run")
		require.NoError(t, res.Err)

		names := createdNames(fake)
		require.Equal(t, []string{"db", "joke-service", "app-env"}, names)
		assert.Len(t, fake.Removed, 3)
		assert.Len(t, fake.NetworksCreated, 1)
		assert.Len(t, fake.NetworksRemoved, 1)
	})

	t.Run("main container dependencies are provisioned first", func(t *testing.T) {
		cfg := jokesProject(t)
		cfg.Task("run").Prerequisites = nil
		cfg.Task("run").Dependencies = nil
		cfg.Container("app-env").Dependencies = []string{"db"}
		fake := testutil.NewFakeRuntime()

		res := runner.New(cfg, fake, &bytes.Buffer{}, &bytes.Buffer{}).Run(context.Background(), "run")
		require.NoError(t, res.Err)
		assert.Equal(t, []string{"db", "app-env"}, createdNames(fake),
			"a dependency declared on the task's own container must run before the task")
		assert.Len(t, fake.Removed, 2)
	})

	t.Run("prerequisite runs as its own full invocation", func(t *testing.T) {
		cfg := jokesProject(t)
		fake := testutil.NewFakeRuntime()

		res := runner.New(cfg, fake, &bytes.Buffer{}, &bytes.Buffer{}).Run(context.Background(), "run")
		require.NoError(t, res.Err)
		assert.Equal(t, 0, res.ExitCode)

		// build's container first, then the dependent's dependencies,
		// then the dependent's own container.
		assert.Equal(t, []string{"build-env", "db", "joke-service", "app-env"}, createdNames(fake))

		// Each invocation creates and removes exactly one network.
		assert.Len(t, fake.NetworksCreated, 2)
		assert.Len(t, fake.NetworksRemoved, 2)
		assert.Len(t, fake.Removed, len(fake.CreatedIDs))
	})

	t.Run("failing prerequisite stops the dependent before any provisioning", func(t *testing.T) {
		cfg := jokesProject(t)
		fake := testutil.NewFakeRuntime()
		fake.ExitCodes["build-env"] = 2

		res := runner.New(cfg, fake, &bytes.Buffer{}, &bytes.Buffer{}).Run(context.Background(), "run")
		require.Error(t, res.Err)
		assert.Equal(t, 2, res.ExitCode, "the dependent reports the prerequisite's exit code")

		var taskErr *runner.TaskExecutionFailure
		require.ErrorAs(t, res.Err, &taskErr)
		assert.Equal(t, "build", taskErr.Task)

		assert.Equal(t, []string{"build-env"}, createdNames(fake),
			"joke-service and the dependent's container must never be created")
		assert.Len(t, fake.Removed, len(fake.CreatedIDs))
	})

	t.Run("dependency start failure prevents the main container", func(t *testing.T) {
		cfg := jokesProject(t)
		cfg.Task("run").Prerequisites = nil
		fake := testutil.NewFakeRuntime()
		fake.StartErr["joke-service"] = errors.New("image pull failure")

		res := runner.New(cfg, fake, &bytes.Buffer{}, &bytes.Buffer{}).Run(context.Background(), "run")
		require.Error(t, res.Err)
		assert.Equal(t, runner.ExitOrchestrationFailure, res.ExitCode)

		var lcErr *lifecycle.ContainerLifecycleError
		require.ErrorAs(t, res.Err, &lcErr)
		assert.Equal(t, "joke-service", lcErr.Container)

		assert.NotContains(t, createdNames(fake), "app-env")
		assert.Len(t, fake.Removed, len(fake.CreatedIDs), "partial provisioning still cleans up")
		assert.Len(t, fake.NetworksRemoved, 1)
	})

	t.Run("cyclic prerequisites fail before any container exists", func(t *testing.T) {
		cfg := jokesProject(t)
		cfg.Task("build").Prerequisites = []string{"run"}
		fake := testutil.NewFakeRuntime()

		res := runner.New(cfg, fake, &bytes.Buffer{}, &bytes.Buffer{}).Run(context.Background(), "run")
		require.Error(t, res.Err)
		assert.ErrorIs(t, res.Err, graph.ErrConfigGraph)
		assert.Equal(t, runner.ExitOrchestrationFailure, res.ExitCode)

		assert.Empty(t, fake.CreatedIDs)
		assert.Empty(t, fake.NetworksCreated)
	})

	t.Run("unknown task fails cleanly", func(t *testing.T) {
		cfg := jokesProject(t)
		fake := testutil.NewFakeRuntime()

		res := runner.New(cfg, fake, &bytes.Buffer{}, &bytes.Buffer{}).Run(context.Background(), "dne")
		require.Error(t, res.Err)
		assert.ErrorIs(t, res.Err, graph.ErrConfigGraph)
		assert.Empty(t, fake.CreatedIDs)
	})

	t.Run("cancellation still tears everything down", func(t *testing.T) {
		cfg := jokesProject(t)
		cfg.Task("run").Prerequisites = nil
		fake := testutil.NewFakeRuntime()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res := runner.New(cfg, fake, &bytes.Buffer{}, &bytes.Buffer{}).Run(ctx, "run")
		require.Error(t, res.Err)
		assert.Len(t, fake.Removed, len(fake.CreatedIDs))
		assert.Len(t, fake.NetworksRemoved, len(fake.NetworksCreated))
	})

	t.Run("cleanup failures are reported, not swallowed", func(t *testing.T) {
		cfg := jokesProject(t)
		fake := testutil.NewFakeRuntime()
		fake.RemoveErr["build-env"] = errors.New("still busy")

		res := runner.New(cfg, fake, &bytes.Buffer{}, &bytes.Buffer{}).Run(context.Background(), "build")
		require.Error(t, res.Err)
		assert.ErrorContains(t, res.Err, "cleanup")
		assert.Equal(t, 0, res.ExitCode, "the task itself still succeeded")
	})
}
