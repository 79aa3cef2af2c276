package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dockhand-io/dockhand/internal/app"
	"github.com/dockhand-io/dockhand/internal/docker"
	"github.com/dockhand-io/dockhand/internal/runner"
	"github.com/dockhand-io/dockhand/internal/yamlcfg"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// options collects the persistent flags shared by all commands.
type options struct {
	configPath string
	logLevel   string
	logFormat  string
	quiet      bool
	listTasks  bool
}

// Execute runs the command tree against args. Errors that are not
// already ExitErrors come from flag or argument parsing and map to the
// usage exit code.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := newRootCommand(outW, errW)
	root.SetArgs(args)
	root.SetOut(outW)
	root.SetErr(errW)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return &ExitError{Code: 2, Message: err.Error()}
}

func newRootCommand(outW, errW io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "dockhand",
		Short: "dockhand runs development, build and test tasks inside Docker containers.",
		Long: `dockhand runs development, build and test tasks inside Docker containers.

Tasks, the containers they run in, their dependency containers and
prerequisite tasks are declared in a YAML project file. Each run gets an
isolated network and guaranteed cleanup, so nothing leaks between runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.listTasks {
				return listTasks(opts, outW, errW)
			}
			return cmd.Help()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "f", "dockhand.yml", "Path to the project configuration file.")
	pf.StringVar(&opts.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false, "Only log errors; task output is unaffected.")
	root.Flags().BoolVarP(&opts.listTasks, "list-tasks", "T", false, "List the tasks defined in the project and exit.")

	root.AddCommand(newRunCommand(opts, outW, errW))
	root.AddCommand(newListCommand(opts, outW, errW))
	return root
}

func newRunCommand(opts *options, outW, errW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "run <task>",
		Short: "Run a task, including its prerequisites and dependency containers.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, outW, errW)
			if err != nil {
				return err
			}

			rt, err := docker.New()
			if err != nil {
				return &ExitError{Code: runner.ExitOrchestrationFailure, Message: err.Error()}
			}
			defer rt.Close()

			res := a.RunTask(cmd.Context(), rt, args[0])
			if res.Err != nil {
				code := res.ExitCode
				if code == 0 {
					code = runner.ExitOrchestrationFailure
				}
				return &ExitError{Code: code, Message: res.Err.Error()}
			}
			if res.ExitCode != 0 {
				return &ExitError{
					Code:    res.ExitCode,
					Message: fmt.Sprintf("task %q exited with code %d", args[0], res.ExitCode),
				}
			}
			return nil
		},
	}
}

func newListCommand(opts *options, outW, errW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the tasks defined in the project.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listTasks(opts, outW, errW)
		},
	}
}

func listTasks(opts *options, outW, errW io.Writer) error {
	a, err := newApp(opts, outW, errW)
	if err != nil {
		return err
	}
	return a.ListTasks(outW)
}

func newApp(opts *options, outW, errW io.Writer) (*app.App, error) {
	appCfg, err := app.NewConfig(app.Config{
		ConfigPath: opts.configPath,
		LogFormat:  opts.logFormat,
		LogLevel:   opts.logLevel,
		Quiet:      opts.quiet,
	})
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}

	a, err := app.NewApp(outW, errW, appCfg, yamlcfg.NewLoader())
	if err != nil {
		return nil, &ExitError{Code: runner.ExitOrchestrationFailure, Message: err.Error()}
	}
	return a, nil
}
