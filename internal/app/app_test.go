package app_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockhand-io/dockhand/internal/app"
	"github.com/dockhand-io/dockhand/internal/yamlcfg"
)

const projectFile = `
project_name: jokes
containers:
  build-env:
    image: node:14.3.0
tasks:
  build:
    description: Compile the application.
    group: Build
    run:
      container: build-env
      command: yarn build
  hello-world:
    description: Say hello.
    run:
      container: build-env
      command: echo "Hello world!"
`

func newTestApp(t *testing.T) (*app.App, *bytes.Buffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dockhand.yml")
	require.NoError(t, os.WriteFile(path, []byte(projectFile), 0o644))

	appCfg, err := app.NewConfig(app.Config{ConfigPath: path, LogLevel: "error"})
	require.NoError(t, err)

	var out bytes.Buffer
	a, err := app.NewApp(&out, &bytes.Buffer{}, appCfg, yamlcfg.NewLoader())
	require.NoError(t, err)
	return a, &out
}

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := app.NewConfig(app.Config{})
		require.NoError(t, err)
		assert.Equal(t, "dockhand.yml", cfg.ConfigPath)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("invalid log format", func(t *testing.T) {
		_, err := app.NewConfig(app.Config{LogFormat: "xml"})
		assert.ErrorContains(t, err, "invalid log-format")
	})

	t.Run("invalid log level", func(t *testing.T) {
		_, err := app.NewConfig(app.Config{LogLevel: "loud"})
		assert.ErrorContains(t, err, "invalid log-level")
	})

	t.Run("level mapping", func(t *testing.T) {
		cfg, err := app.NewConfig(app.Config{LogLevel: "debug"})
		require.NoError(t, err)
		assert.Equal(t, slog.LevelDebug, cfg.Level())

		cfg, err = app.NewConfig(app.Config{})
		require.NoError(t, err)
		assert.Equal(t, slog.LevelInfo, cfg.Level())
	})

	t.Run("quiet wins over the configured level", func(t *testing.T) {
		cfg, err := app.NewConfig(app.Config{LogLevel: "debug", Quiet: true})
		require.NoError(t, err)
		assert.Equal(t, slog.LevelError, cfg.Level())
	})
}

func TestNewApp(t *testing.T) {
	t.Run("loads the project", func(t *testing.T) {
		a, _ := newTestApp(t)
		assert.Equal(t, "jokes", a.Project().ProjectName)
		assert.Len(t, a.Project().Tasks, 2)
	})

	t.Run("missing config file", func(t *testing.T) {
		appCfg, err := app.NewConfig(app.Config{ConfigPath: filepath.Join(t.TempDir(), "dne.yml")})
		require.NoError(t, err)

		_, err = app.NewApp(&bytes.Buffer{}, &bytes.Buffer{}, appCfg, yamlcfg.NewLoader())
		assert.ErrorContains(t, err, "failed to load configuration")
	})
}

func TestListTasks(t *testing.T) {
	a, _ := newTestApp(t)

	var out bytes.Buffer
	require.NoError(t, a.ListTasks(&out))

	listing := out.String()
	assert.Contains(t, listing, "Build:")
	assert.Contains(t, listing, "build")
	assert.Contains(t, listing, "Compile the application.")
	assert.Contains(t, listing, "hello-world")
	assert.Contains(t, listing, "Say hello.")
}
