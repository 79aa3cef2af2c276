// Package app wires the application together: logger construction,
// config loading, and the entrypoints the CLI drives (running a task,
// listing tasks).
package app
