// Package provision resolves declared containers into concrete
// runtime.ContainerSpec values and owns the naming of per-run networks
// and persistent cache volumes. Local volume paths resolve against the
// config file's directory; cache mounts resolve to named volumes that
// survive across invocations.
package provision
