// Package cli defines the command-line surface: `dockhand run <task>`
// to execute a task and `--list-tasks` / `dockhand list` to enumerate
// them. Exit codes: a task's own exit code for task failures, 125 for
// orchestration failures, 2 for usage errors.
package cli
