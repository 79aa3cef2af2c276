package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockhand-io/dockhand/internal/config"
	"github.com/dockhand-io/dockhand/internal/testutil"
)

func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		cfg := testutil.NewProject("/project")
		testutil.AddContainer(cfg, &config.Container{
			Name:  "build-env",
			Image: "node:14.3.0",
			Volumes: []config.VolumeMount{
				{Local: ".", ContainerPath: "/code"},
			},
		})
		testutil.AddTask(cfg, &config.Task{
			Name: "build",
			Run:  config.RunSpec{Container: "build-env", Command: "make"},
		})
		return cfg
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("container without image", func(t *testing.T) {
		cfg := valid()
		cfg.Container("build-env").Image = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("task without run container", func(t *testing.T) {
		cfg := valid()
		cfg.Task("build").Run.Container = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("volume with neither local nor cache", func(t *testing.T) {
		cfg := valid()
		cfg.Container("build-env").Volumes = []config.VolumeMount{{ContainerPath: "/code"}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.ErrorContains(t, err, "exactly one of 'local' or 'cache'")
	})

	t.Run("volume with both local and cache", func(t *testing.T) {
		cfg := valid()
		cfg.Container("build-env").Volumes = []config.VolumeMount{
			{Local: ".", Cache: "stuff", ContainerPath: "/code"},
		}
		assert.ErrorContains(t, cfg.Validate(), "exactly one of 'local' or 'cache'")
	})
}

func TestLookups(t *testing.T) {
	cfg := testutil.NewProject("/project")
	testutil.AddContainer(cfg, &config.Container{Name: "db", Image: "postgres:13"})
	testutil.AddTask(cfg, &config.Task{Name: "migrate", Run: config.RunSpec{Container: "db"}})

	assert.NotNil(t, cfg.Container("db"))
	assert.Nil(t, cfg.Container("dne"))
	assert.NotNil(t, cfg.Task("migrate"))
	assert.Nil(t, cfg.Task("dne"))
}
