package docker

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"

	"github.com/dockhand-io/dockhand/internal/ctxlog"
	"github.com/dockhand-io/dockhand/internal/runtime"
)

// labelOwner marks every resource this tool creates, so leaked resources
// from a crashed process are identifiable.
const labelOwner = "io.dockhand.owner"

// Runtime talks to a Docker daemon.
type Runtime struct {
	cli *client.Client
}

// New creates a Runtime from the standard Docker environment variables.
func New() (*Runtime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating Docker client: %w", err)
	}
	return &Runtime{cli: cli}, nil
}

// Close releases the underlying client connection.
func (r *Runtime) Close() error {
	return r.cli.Close()
}

// PullImageIfAbsent implements runtime.ContainerRuntime.
func (r *Runtime) PullImageIfAbsent(ctx context.Context, ref string) error {
	if _, err := r.cli.ImageInspect(ctx, ref); err == nil {
		return nil
	}

	ctxlog.FromContext(ctx).Info("Pulling image.", "image", ref)
	reader, err := r.cli.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pulling image %s: %w", ref, err)
	}
	defer reader.Close()

	// The pull only completes once the progress stream is drained.
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("pulling image %s: %w", ref, err)
	}
	return nil
}

// CreateNetwork implements runtime.ContainerRuntime.
func (r *Runtime) CreateNetwork(ctx context.Context, name string) (string, error) {
	resp, err := r.cli.NetworkCreate(ctx, name, network.CreateOptions{
		Driver: "bridge",
		Labels: map[string]string{labelOwner: "run"},
	})
	if err != nil {
		return "", fmt.Errorf("creating network %s: %w", name, err)
	}
	return resp.ID, nil
}

// RemoveNetwork implements runtime.ContainerRuntime.
func (r *Runtime) RemoveNetwork(ctx context.Context, id string) error {
	if err := r.cli.NetworkRemove(ctx, id); err != nil {
		return fmt.Errorf("removing network %s: %w", id, err)
	}
	return nil
}

// EnsureCacheVolume implements runtime.ContainerRuntime. VolumeCreate is
// idempotent for an existing name, which is exactly the semantics cache
// volumes need.
func (r *Runtime) EnsureCacheVolume(ctx context.Context, name string) (string, error) {
	vol, err := r.cli.VolumeCreate(ctx, volume.CreateOptions{
		Name:   name,
		Labels: map[string]string{labelOwner: "cache"},
	})
	if err != nil {
		return "", fmt.Errorf("creating cache volume %s: %w", name, err)
	}
	return vol.Name, nil
}

// CreateContainer implements runtime.ContainerRuntime. The container is
// left unnamed so concurrent runs never collide; the spec name becomes
// its DNS alias on the run network.
func (r *Runtime) CreateContainer(ctx context.Context, spec runtime.ContainerSpec, networkID string) (string, error) {
	exposed, bindings, err := portBindings(spec.Ports)
	if err != nil {
		return "", fmt.Errorf("container %s: %w", spec.Name, err)
	}

	labels := map[string]string{labelOwner: "run"}
	for k, v := range spec.Labels {
		labels[k] = v
	}

	cfg := &container.Config{
		Image:        spec.Image,
		Cmd:          spec.Command,
		Env:          spec.Env,
		WorkingDir:   spec.WorkingDir,
		ExposedPorts: exposed,
		Labels:       labels,
	}
	if spec.HealthCheck != nil {
		cfg.Healthcheck = &container.HealthConfig{
			Test:        []string{"CMD-SHELL", spec.HealthCheck.Command},
			Interval:    spec.HealthCheck.Interval,
			Timeout:     spec.HealthCheck.Timeout,
			StartPeriod: spec.HealthCheck.StartPeriod,
			Retries:     spec.HealthCheck.Retries,
		}
	}

	hostCfg := &container.HostConfig{
		Mounts:       mounts(spec.Mounts),
		PortBindings: bindings,
	}

	netCfg := &network.NetworkingConfig{
		EndpointsConfig: map[string]*network.EndpointSettings{
			networkID: {
				NetworkID: networkID,
				Aliases:   []string{spec.Name},
			},
		},
	}

	resp, err := r.cli.ContainerCreate(ctx, cfg, hostCfg, netCfg, nil, "")
	if err != nil {
		return "", fmt.Errorf("creating container %s: %w", spec.Name, err)
	}
	return resp.ID, nil
}

// StartContainer implements runtime.ContainerRuntime.
func (r *Runtime) StartContainer(ctx context.Context, id string) error {
	if err := r.cli.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return fmt.Errorf("starting container %s: %w", id, err)
	}
	return nil
}

// InspectHealth implements runtime.ContainerRuntime.
func (r *Runtime) InspectHealth(ctx context.Context, id string) (runtime.Health, error) {
	resp, err := r.cli.ContainerInspect(ctx, id)
	if err != nil {
		return runtime.HealthNone, fmt.Errorf("inspecting container %s: %w", id, err)
	}
	if resp.State == nil || resp.State.Health == nil {
		return runtime.HealthNone, nil
	}
	switch resp.State.Health.Status {
	case container.Starting:
		return runtime.HealthStarting, nil
	case container.Healthy:
		return runtime.HealthHealthy, nil
	case container.Unhealthy:
		return runtime.HealthUnhealthy, nil
	}
	return runtime.HealthNone, nil
}

// StreamOutput implements runtime.ContainerRuntime. Output is demuxed
// from the engine's multiplexed log stream.
func (r *Runtime) StreamOutput(ctx context.Context, id string, stdout, stderr io.Writer) error {
	logs, err := r.cli.ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		return fmt.Errorf("streaming output of container %s: %w", id, err)
	}
	defer logs.Close()

	if _, err := stdcopy.StdCopy(stdout, stderr, logs); err != nil && ctx.Err() == nil {
		return fmt.Errorf("streaming output of container %s: %w", id, err)
	}
	return nil
}

// WaitExit implements runtime.ContainerRuntime.
func (r *Runtime) WaitExit(ctx context.Context, id string) (int64, error) {
	respCh, errCh := r.cli.ContainerWait(ctx, id, container.WaitConditionNotRunning)
	select {
	case resp := <-respCh:
		if resp.Error != nil {
			return 0, fmt.Errorf("waiting for container %s: %s", id, resp.Error.Message)
		}
		return resp.StatusCode, nil
	case err := <-errCh:
		return 0, fmt.Errorf("waiting for container %s: %w", id, err)
	}
}

// RemoveContainer implements runtime.ContainerRuntime.
func (r *Runtime) RemoveContainer(ctx context.Context, id string) error {
	err := r.cli.ContainerRemove(ctx, id, container.RemoveOptions{
		Force:         true,
		RemoveVolumes: true,
	})
	if err != nil {
		return fmt.Errorf("removing container %s: %w", id, err)
	}
	return nil
}

func mounts(specs []runtime.Mount) []mount.Mount {
	out := make([]mount.Mount, 0, len(specs))
	for _, m := range specs {
		mountType := mount.TypeBind
		if m.Volume {
			mountType = mount.TypeVolume
		}
		out = append(out, mount.Mount{
			Type:     mountType,
			Source:   m.Source,
			Target:   m.Target,
			ReadOnly: m.Options == "ro",
		})
	}
	return out
}

func portBindings(ports []runtime.PortBinding) (nat.PortSet, nat.PortMap, error) {
	if len(ports) == 0 {
		return nil, nil, nil
	}
	exposed := make(nat.PortSet, len(ports))
	bindings := make(nat.PortMap, len(ports))
	for _, p := range ports {
		proto := p.Protocol
		if proto == "" {
			proto = "tcp"
		}
		port, err := nat.NewPort(proto, strconv.Itoa(p.ContainerPort))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid port %d/%s: %w", p.ContainerPort, proto, err)
		}
		exposed[port] = struct{}{}
		bindings[port] = append(bindings[port], nat.PortBinding{
			HostPort: strconv.Itoa(p.HostPort),
		})
	}
	return exposed, bindings, nil
}
