package runtime

import "time"

// ContainerSpec is a fully resolved container creation request: all
// config-relative paths, cache names and task-level additions have
// already been flattened by the provisioner.
type ContainerSpec struct {
	// Name is the declared container name. It becomes the container's
	// DNS alias on the run network, so containers reach each other by
	// name without publishing ports to the host.
	Name string

	Image       string
	Command     []string
	Env         []string // "KEY=value"
	WorkingDir  string
	Mounts      []Mount
	Ports       []PortBinding
	HealthCheck *HealthCheck
	Labels      map[string]string
}

// Mount is a concrete mount: either a host bind (Volume false, Source is
// an absolute host path) or a named volume (Volume true, Source is the
// volume name).
type Mount struct {
	Source  string
	Target  string
	Volume  bool
	Options string
}

// PortBinding publishes a container port on the host.
type PortBinding struct {
	HostPort      int
	ContainerPort int
	Protocol      string // "tcp" when empty
}

// HealthCheck is the readiness probe the engine runs inside the
// container.
type HealthCheck struct {
	Command     string
	Interval    time.Duration
	Retries     int
	StartPeriod time.Duration
	Timeout     time.Duration
}
