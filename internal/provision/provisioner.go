package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/dockhand-io/dockhand/internal/config"
	"github.com/dockhand-io/dockhand/internal/ctxlog"
	"github.com/dockhand-io/dockhand/internal/runtime"
)

// Provisioner builds runtime specs from config declarations for one
// project.
type Provisioner struct {
	cfg *config.Config
	rt  runtime.ContainerRuntime
}

// New returns a Provisioner for the given config and runtime.
func New(cfg *config.Config, rt runtime.ContainerRuntime) *Provisioner {
	return &Provisioner{cfg: cfg, rt: rt}
}

// NetworkName returns a fresh unique name for a run network.
func (p *Provisioner) NetworkName() string {
	return fmt.Sprintf("%s-run-%s", p.cfg.ProjectName, uuid.NewString()[:8])
}

// ProvisionNetwork creates the isolated network for one invocation and
// returns its ID and name.
func (p *Provisioner) ProvisionNetwork(ctx context.Context) (string, string, error) {
	name := p.NetworkName()
	id, err := p.rt.CreateNetwork(ctx, name)
	if err != nil {
		return "", "", err
	}
	ctxlog.FromContext(ctx).Debug("Run network created.", "network", name)
	return id, name, nil
}

// DependencySpec resolves the named container into a creation spec.
func (p *Provisioner) DependencySpec(ctx context.Context, name string) (runtime.ContainerSpec, error) {
	ctr := p.cfg.Container(name)
	return p.buildSpec(ctx, ctr, ctr.Ports, nil, "", nil)
}

// MainSpec resolves the task's own container, applying the task's
// command, extra environment, working directory override and task-level
// port mappings.
func (p *Provisioner) MainSpec(ctx context.Context, task *config.Task) (runtime.ContainerSpec, error) {
	ctr := p.cfg.Container(task.Run.Container)

	var command []string
	if task.Run.Command != "" {
		// Commands are written shell style in the config, so run them
		// through the container's shell.
		command = []string{"/bin/sh", "-c", task.Run.Command}
	}

	ports := append(append([]config.PortMapping(nil), ctr.Ports...), task.Ports...)
	return p.buildSpec(ctx, ctr, ports, command, task.Run.WorkingDir, task.Run.Environment)
}

func (p *Provisioner) buildSpec(
	ctx context.Context,
	ctr *config.Container,
	ports []config.PortMapping,
	command []string,
	workingDir string,
	extraEnv map[string]string,
) (runtime.ContainerSpec, error) {
	mounts, err := p.resolveVolumes(ctx, ctr)
	if err != nil {
		return runtime.ContainerSpec{}, err
	}

	spec := runtime.ContainerSpec{
		Name:       ctr.Name,
		Image:      ctr.Image,
		Command:    command,
		Env:        mergeEnv(ctr.Environment, extraEnv),
		WorkingDir: ctr.WorkingDir,
		Mounts:     mounts,
		Labels:     map[string]string{"io.dockhand.project": p.cfg.ProjectName},
	}
	if workingDir != "" {
		spec.WorkingDir = workingDir
	}
	for _, port := range ports {
		spec.Ports = append(spec.Ports, runtime.PortBinding{
			HostPort:      port.Host,
			ContainerPort: port.Container,
			Protocol:      port.Protocol,
		})
	}
	if hc := ctr.HealthCheck; hc != nil {
		spec.HealthCheck = &runtime.HealthCheck{
			Command:     hc.Command,
			Interval:    hc.Interval,
			Retries:     hc.Retries,
			StartPeriod: hc.StartPeriod,
			Timeout:     hc.Timeout,
		}
	}
	return spec, nil
}

// resolveVolumes flattens the container's declared mounts. Local paths
// resolve relative to the config file's directory and must exist; cache
// names resolve to project-scoped named volumes created on first use.
func (p *Provisioner) resolveVolumes(ctx context.Context, ctr *config.Container) ([]runtime.Mount, error) {
	var mounts []runtime.Mount
	for _, v := range ctr.Volumes {
		switch {
		case v.Local != "":
			hostPath := v.Local
			if !filepath.IsAbs(hostPath) {
				hostPath = filepath.Join(p.cfg.Dir, hostPath)
			}
			if _, err := os.Stat(hostPath); err != nil {
				return nil, &VolumeResolutionError{Container: ctr.Name, Path: v.Local, Err: err}
			}
			mounts = append(mounts, runtime.Mount{
				Source:  hostPath,
				Target:  v.ContainerPath,
				Options: v.Options,
			})
		case v.Cache != "":
			volName := p.CacheVolumeName(v.Cache)
			if _, err := p.rt.EnsureCacheVolume(ctx, volName); err != nil {
				return nil, &VolumeResolutionError{Container: ctr.Name, Path: v.Cache, Err: err}
			}
			mounts = append(mounts, runtime.Mount{
				Source:  volName,
				Target:  v.ContainerPath,
				Volume:  true,
				Options: v.Options,
			})
		}
	}
	return mounts, nil
}

// CacheVolumeName returns the persistent volume name for a cache,
// namespaced by project so different projects never share caches.
func (p *Provisioner) CacheVolumeName(cache string) string {
	return fmt.Sprintf("%s-cache-%s", p.cfg.ProjectName, cache)
}

// mergeEnv flattens container environment plus task overrides into
// KEY=value form, sorted for stable container creation requests.
func mergeEnv(base, extra map[string]string) []string {
	merged := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	if len(merged) == 0 {
		return nil
	}

	env := make([]string, 0, len(merged))
	for k, v := range merged {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(env)
	return env
}
