package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/dockhand-io/dockhand/internal/ctxlog"
	"github.com/dockhand-io/dockhand/internal/runtime"
)

const (
	defaultProbeInterval = time.Second
	readinessGrace       = 30 * time.Second
)

// AwaitReady blocks until the container is ready. Without a health
// check, a started container is ready immediately. With one, the engine
// runs the probe and AwaitReady polls the reported health until it is
// healthy, the engine declares it unhealthy, or the deadline passes.
func (m *Manager) AwaitReady(ctx context.Context, id, name string, hc *runtime.HealthCheck) error {
	if hc == nil {
		return nil
	}
	logger := ctxlog.FromContext(ctx)

	interval := hc.Interval
	if interval <= 0 {
		interval = defaultProbeInterval
	}

	// The engine flips to unhealthy on its own after `retries` failed
	// probes; the deadline only guards against a wedged daemon.
	ctx, cancel := context.WithTimeout(ctx, readyDeadline(hc, interval))
	defer cancel()

	probe := func() error {
		health, err := m.rt.InspectHealth(ctx, id)
		if err != nil {
			return backoff.Permanent(err)
		}
		switch health {
		case runtime.HealthHealthy:
			return nil
		case runtime.HealthUnhealthy:
			return backoff.Permanent(errors.New("health check reported unhealthy"))
		default:
			return fmt.Errorf("container is %s", health)
		}
	}

	policy := backoff.WithContext(backoff.NewConstantBackOff(interval), ctx)
	if err := backoff.Retry(probe, policy); err != nil {
		return &ContainerLifecycleError{Container: name, Op: "await readiness", Err: err}
	}

	logger.Debug("Container is ready.", "container", name)
	return nil
}

func readyDeadline(hc *runtime.HealthCheck, interval time.Duration) time.Duration {
	retries := hc.Retries
	if retries <= 0 {
		retries = 3
	}
	perProbe := interval + hc.Timeout
	return hc.StartPeriod + perProbe*time.Duration(retries+1) + readinessGrace
}
