// Package config defines the format-agnostic project model for the
// application, along with the Loader interface for reading it from disk.
//
// The `config.Config` is the single source of truth for the `graph`,
// `plan` and `runner` packages. Concrete loader implementations, such as
// for YAML, are provided in separate packages.
package config
