package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads the configuration file at path, translates it into the
	// format-agnostic model, and validates it structurally.
	Load(ctx context.Context, path string) (*Config, error)
}
