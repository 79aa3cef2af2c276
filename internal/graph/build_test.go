package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockhand-io/dockhand/internal/config"
	"github.com/dockhand-io/dockhand/internal/graph"
	"github.com/dockhand-io/dockhand/internal/testutil"
)

func validConfig() *config.Config {
	cfg := testutil.NewProject("/project")
	testutil.AddContainer(cfg, &config.Container{Name: "build-env", Image: "node:14.3.0"})
	testutil.AddContainer(cfg, &config.Container{Name: "db", Image: "postgres:13"})
	testutil.AddContainer(cfg, &config.Container{
		Name:         "joke-service",
		Image:        "joke-service:latest",
		Dependencies: []string{"db"},
	})
	testutil.AddTask(cfg, &config.Task{
		Name: "build",
		Run:  config.RunSpec{Container: "build-env", Command: "make"},
	})
	testutil.AddTask(cfg, &config.Task{
		Name:          "run",
		Run:           config.RunSpec{Container: "build-env", Command: "make run"},
		Dependencies:  []string{"joke-service"},
		Prerequisites: []string{"build"},
	})
	return cfg
}

func TestBuild(t *testing.T) {
	t.Run("valid config builds both graphs", func(t *testing.T) {
		result, err := graph.Build(validConfig())
		require.NoError(t, err)
		require.NotNil(t, result.Tasks)
		require.NotNil(t, result.Containers)

		deps, err := result.Tasks.Dependencies("run")
		require.NoError(t, err)
		assert.Equal(t, []string{"build"}, deps)

		deps, err = result.Containers.Dependencies("joke-service")
		require.NoError(t, err)
		assert.Equal(t, []string{"db"}, deps)
	})

	t.Run("unknown run container", func(t *testing.T) {
		cfg := validConfig()
		cfg.Task("build").Run.Container = "dne"

		_, err := graph.Build(cfg)
		var refErr *graph.UnknownReferenceError
		require.ErrorAs(t, err, &refErr)
		assert.Equal(t, "build", refErr.Referrer)
		assert.Equal(t, "container", refErr.Kind)
		assert.Equal(t, "dne", refErr.Name)
		assert.ErrorIs(t, err, graph.ErrConfigGraph)
	})

	t.Run("unknown dependency container", func(t *testing.T) {
		cfg := validConfig()
		cfg.Task("run").Dependencies = []string{"dne"}

		_, err := graph.Build(cfg)
		var refErr *graph.UnknownReferenceError
		require.ErrorAs(t, err, &refErr)
		assert.Equal(t, "dne", refErr.Name)
	})

	t.Run("unknown prerequisite task", func(t *testing.T) {
		cfg := validConfig()
		cfg.Task("run").Prerequisites = []string{"dne"}

		_, err := graph.Build(cfg)
		var refErr *graph.UnknownReferenceError
		require.ErrorAs(t, err, &refErr)
		assert.Equal(t, "task", refErr.Kind)
	})

	t.Run("prerequisite cycle between two tasks", func(t *testing.T) {
		cfg := validConfig()
		cfg.Task("build").Prerequisites = []string{"run"}

		_, err := graph.Build(cfg)
		var cycleErr *graph.CyclicDependencyError
		require.ErrorAs(t, err, &cycleErr)
		assert.Equal(t, "task", cycleErr.Kind)
	})

	t.Run("task that is its own prerequisite", func(t *testing.T) {
		cfg := validConfig()
		cfg.Task("build").Prerequisites = []string{"build"}

		_, err := graph.Build(cfg)
		var cycleErr *graph.CyclicDependencyError
		require.ErrorAs(t, err, &cycleErr)
	})

	t.Run("container dependency cycle", func(t *testing.T) {
		cfg := validConfig()
		cfg.Container("db").Dependencies = []string{"joke-service"}

		_, err := graph.Build(cfg)
		var cycleErr *graph.CyclicDependencyError
		require.ErrorAs(t, err, &cycleErr)
		assert.Equal(t, "container", cycleErr.Kind)
	})
}
