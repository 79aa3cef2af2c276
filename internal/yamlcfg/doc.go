// Package yamlcfg implements config.Loader for YAML project files.
//
// Decoding goes through yaml.Node rather than plain maps so that the
// declaration order of containers and tasks is preserved; the planner
// relies on that order for deterministic tie-breaking.
package yamlcfg
