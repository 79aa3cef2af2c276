package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dockhand-io/dockhand/internal/ctxlog"
	"github.com/dockhand-io/dockhand/internal/runtime"
)

// ContainerLifecycleError reports a failed container operation,
// identifying the offending container by its declared name.
type ContainerLifecycleError struct {
	Container string
	Op        string
	Err       error
}

func (e *ContainerLifecycleError) Error() string {
	return fmt.Sprintf("container %q: %s: %v", e.Container, e.Op, e.Err)
}

func (e *ContainerLifecycleError) Unwrap() error { return e.Err }

type tracked struct {
	id   string
	name string
}

// Manager owns every container and the network of one invocation.
type Manager struct {
	rt runtime.ContainerRuntime

	mu          sync.Mutex
	networkID   string
	networkName string
	containers  []tracked
}

// NewManager returns a Manager that creates containers through rt.
func NewManager(rt runtime.ContainerRuntime) *Manager {
	return &Manager{rt: rt}
}

// SetNetwork records the invocation's network for removal during
// cleanup.
func (m *Manager) SetNetwork(id, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.networkID = id
	m.networkName = name
}

// Create pulls the image if needed and creates the container on the
// run network. The container is tracked for cleanup before Create
// returns, so even a failure in a later step cannot orphan it.
func (m *Manager) Create(ctx context.Context, spec runtime.ContainerSpec) (string, error) {
	if err := m.rt.PullImageIfAbsent(ctx, spec.Image); err != nil {
		return "", &ContainerLifecycleError{Container: spec.Name, Op: "pull image", Err: err}
	}

	m.mu.Lock()
	networkID := m.networkID
	m.mu.Unlock()

	id, err := m.rt.CreateContainer(ctx, spec, networkID)
	if err != nil {
		return "", &ContainerLifecycleError{Container: spec.Name, Op: "create", Err: err}
	}

	m.mu.Lock()
	m.containers = append(m.containers, tracked{id: id, name: spec.Name})
	m.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Container created.", "container", spec.Name, "id", id)
	return id, nil
}

// Start starts a created container.
func (m *Manager) Start(ctx context.Context, id, name string) error {
	if err := m.rt.StartContainer(ctx, id); err != nil {
		return &ContainerLifecycleError{Container: name, Op: "start", Err: err}
	}
	ctxlog.FromContext(ctx).Debug("Container started.", "container", name)
	return nil
}

// Provision creates, starts and readiness-awaits a dependency
// container: the full path a dependency takes before the task that
// needs it may proceed.
func (m *Manager) Provision(ctx context.Context, spec runtime.ContainerSpec) (string, error) {
	id, err := m.Create(ctx, spec)
	if err != nil {
		return "", err
	}
	if err := m.Start(ctx, id, spec.Name); err != nil {
		return "", err
	}
	if err := m.AwaitReady(ctx, id, spec.Name, spec.HealthCheck); err != nil {
		return "", err
	}
	return id, nil
}

// CleanupAll removes every tracked container and then the network. It
// runs on a cancellation-immune context so an interrupt mid-run still
// tears everything down. Removal is best-effort but exhaustive: one
// failure does not stop the rest, and all failures are aggregated into
// the returned error.
func (m *Manager) CleanupAll(ctx context.Context) error {
	// The whole point of cleanup is that it survives cancellation.
	ctx = context.WithoutCancel(ctx)
	logger := ctxlog.FromContext(ctx)

	m.mu.Lock()
	containers := m.containers
	networkID, networkName := m.networkID, m.networkName
	m.containers = nil
	m.networkID = ""
	m.networkName = ""
	m.mu.Unlock()

	var errs []error
	for _, c := range containers {
		if err := m.rt.RemoveContainer(ctx, c.id); err != nil {
			errs = append(errs, &ContainerLifecycleError{Container: c.name, Op: "remove", Err: err})
			continue
		}
		logger.Debug("Container removed.", "container", c.name)
	}

	if networkID != "" {
		if err := m.rt.RemoveNetwork(ctx, networkID); err != nil {
			errs = append(errs, fmt.Errorf("removing network %q: %w", networkName, err))
		} else {
			logger.Debug("Run network removed.", "network", networkName)
		}
	}

	return errors.Join(errs...)
}
