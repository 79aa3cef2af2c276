// Package testutil provides in-process test doubles for the container
// runtime so orchestration behavior can be tested without a daemon.
package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dockhand-io/dockhand/internal/runtime"
)

// FakeRuntime implements runtime.ContainerRuntime in memory, recording
// every call so tests can assert on resource accounting (creates vs
// removes, networks, pulls). Behavior is scripted per declared container
// name.
type FakeRuntime struct {
	mu     sync.Mutex
	nextID int

	// Recorded calls, in order.
	Pulled          []string
	CreatedSpecs    []runtime.ContainerSpec
	CreatedIDs      []string
	Started         []string
	Removed         []string
	NetworksCreated []string
	NetworksRemoved []string
	Volumes         []string

	// Scripted behavior, keyed by container name.
	CreateErr  map[string]error
	StartErr   map[string]error
	RemoveErr  map[string]error
	ExitCodes  map[string]int64
	Output     map[string]string
	HealthSeq  map[string][]runtime.Health
	NetworkErr error

	idToName map[string]string
}

// NewFakeRuntime returns an empty FakeRuntime; every container exits 0
// and reports healthy unless scripted otherwise.
func NewFakeRuntime() *FakeRuntime {
	return &FakeRuntime{
		CreateErr: make(map[string]error),
		StartErr:  make(map[string]error),
		RemoveErr: make(map[string]error),
		ExitCodes: make(map[string]int64),
		Output:    make(map[string]string),
		HealthSeq: make(map[string][]runtime.Health),
		idToName:  make(map[string]string),
	}
}

// Name returns the declared container name behind a fake container ID.
func (f *FakeRuntime) Name(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.idToName[id]
}

// PullImageIfAbsent implements runtime.ContainerRuntime.
func (f *FakeRuntime) PullImageIfAbsent(_ context.Context, image string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Pulled = append(f.Pulled, image)
	return nil
}

// CreateNetwork implements runtime.ContainerRuntime.
func (f *FakeRuntime) CreateNetwork(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.NetworkErr != nil {
		return "", f.NetworkErr
	}
	f.NetworksCreated = append(f.NetworksCreated, name)
	return "net-" + name, nil
}

// RemoveNetwork implements runtime.ContainerRuntime.
func (f *FakeRuntime) RemoveNetwork(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.NetworksRemoved = append(f.NetworksRemoved, id)
	return nil
}

// EnsureCacheVolume implements runtime.ContainerRuntime.
func (f *FakeRuntime) EnsureCacheVolume(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Volumes = append(f.Volumes, name)
	return name, nil
}

// CreateContainer implements runtime.ContainerRuntime.
func (f *FakeRuntime) CreateContainer(_ context.Context, spec runtime.ContainerSpec, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.CreateErr[spec.Name]; err != nil {
		return "", err
	}
	f.nextID++
	id := fmt.Sprintf("ctr-%d-%s", f.nextID, spec.Name)
	f.CreatedSpecs = append(f.CreatedSpecs, spec)
	f.CreatedIDs = append(f.CreatedIDs, id)
	f.idToName[id] = spec.Name
	return id, nil
}

// StartContainer implements runtime.ContainerRuntime.
func (f *FakeRuntime) StartContainer(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.StartErr[f.idToName[id]]; err != nil {
		return err
	}
	f.Started = append(f.Started, id)
	return nil
}

// InspectHealth implements runtime.ContainerRuntime, popping the next
// scripted health state for the container, defaulting to healthy.
func (f *FakeRuntime) InspectHealth(_ context.Context, id string) (runtime.Health, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := f.idToName[id]
	seq := f.HealthSeq[name]
	if len(seq) == 0 {
		return runtime.HealthHealthy, nil
	}
	next := seq[0]
	if len(seq) > 1 {
		f.HealthSeq[name] = seq[1:]
	}
	return next, nil
}

// StreamOutput implements runtime.ContainerRuntime.
func (f *FakeRuntime) StreamOutput(_ context.Context, id string, stdout, _ io.Writer) error {
	f.mu.Lock()
	out := f.Output[f.idToName[id]]
	f.mu.Unlock()
	if out != "" {
		_, err := io.WriteString(stdout, out)
		return err
	}
	return nil
}

// WaitExit implements runtime.ContainerRuntime.
func (f *FakeRuntime) WaitExit(ctx context.Context, id string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ExitCodes[f.idToName[id]], nil
}

// RemoveContainer implements runtime.ContainerRuntime.
func (f *FakeRuntime) RemoveContainer(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.RemoveErr[f.idToName[id]]; err != nil {
		return err
	}
	f.Removed = append(f.Removed, id)
	return nil
}
