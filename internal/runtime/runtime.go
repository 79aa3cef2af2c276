package runtime

import (
	"context"
	"io"
)

// Health is the observed health of a running container.
type Health int

const (
	// HealthNone means the container has no health check configured.
	HealthNone Health = iota
	HealthStarting
	HealthHealthy
	HealthUnhealthy
)

// String implements fmt.Stringer for log output.
func (h Health) String() string {
	switch h {
	case HealthNone:
		return "none"
	case HealthStarting:
		return "starting"
	case HealthHealthy:
		return "healthy"
	case HealthUnhealthy:
		return "unhealthy"
	}
	return "unknown"
}

// ContainerRuntime is the abstract capability set the orchestration core
// uses. Implementations must tolerate concurrent calls; the core starts
// dependency containers in parallel and may cancel contexts mid-call.
type ContainerRuntime interface {
	// PullImageIfAbsent makes the image available locally, pulling it
	// only when it is not already present.
	PullImageIfAbsent(ctx context.Context, image string) error

	// CreateNetwork creates an isolated network with the given name and
	// returns its ID.
	CreateNetwork(ctx context.Context, name string) (string, error)

	// RemoveNetwork removes the network with the given ID.
	RemoveNetwork(ctx context.Context, id string) error

	// EnsureCacheVolume creates the named persistent volume if it does
	// not already exist and returns its name. Cache volumes are never
	// removed by the runtime.
	EnsureCacheVolume(ctx context.Context, name string) (string, error)

	// CreateContainer creates a container from the spec, attached to the
	// given network with the spec's name as its DNS alias, and returns
	// the container ID. The container is not started.
	CreateContainer(ctx context.Context, spec ContainerSpec, networkID string) (string, error)

	// StartContainer starts a created container.
	StartContainer(ctx context.Context, id string) error

	// InspectHealth reports the container's current health state.
	InspectHealth(ctx context.Context, id string) (Health, error)

	// StreamOutput copies the container's stdout and stderr to the given
	// writers until the container exits or ctx is cancelled.
	StreamOutput(ctx context.Context, id string, stdout, stderr io.Writer) error

	// WaitExit blocks until the container exits and returns its exit
	// code.
	WaitExit(ctx context.Context, id string) (int64, error)

	// RemoveContainer forcibly removes the container.
	RemoveContainer(ctx context.Context, id string) error
}
