package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the unified, format-agnostic representation of one project:
// every container and task the user declared, plus the location of the
// config file so local volume paths can be resolved against it.
type Config struct {
	// ProjectName namespaces cache volumes and run networks.
	ProjectName string `validate:"required"`

	// Dir is the absolute directory containing the loaded config file.
	Dir string `validate:"required"`

	Containers map[string]*Container `validate:"dive"`
	Tasks      map[string]*Task      `validate:"dive"`

	// ContainerOrder and TaskOrder preserve declaration order. All
	// tie-breaking during planning follows these lists so identical
	// input always yields an identical plan.
	ContainerOrder []string
	TaskOrder      []string
}

// Container is a named specification of an image, mounts and ports used
// to run one or more tasks or to serve as a task dependency.
type Container struct {
	Name        string        `validate:"required"`
	Image       string        `validate:"required"`
	Volumes     []VolumeMount `validate:"dive"`
	WorkingDir  string
	Environment map[string]string
	Ports       []PortMapping `validate:"dive"`
	HealthCheck *HealthCheck

	// Dependencies are containers that must be running and ready before
	// this container starts.
	Dependencies []string
}

// Task is a named unit of work mapped to a command executed inside a
// container.
type Task struct {
	Name        string `validate:"required"`
	Description string
	Group       string
	Run         RunSpec `validate:"required"`

	// Dependencies are container names that must be ready before the
	// task's own container starts.
	Dependencies []string

	// Prerequisites are task names that must run to completion, in
	// order, before this task starts.
	Prerequisites []string

	// Ports are additional host port mappings applied to the task's own
	// container for this task only.
	Ports []PortMapping `validate:"dive"`
}

// RunSpec describes what a task executes and where.
type RunSpec struct {
	Container   string `validate:"required"`
	Command     string
	Environment map[string]string
	WorkingDir  string
}

// VolumeMount declares a single mount. Exactly one of Local or Cache is
// set: Local is a host path resolved relative to the config file's
// directory, Cache names a persistent volume that survives across
// invocations.
type VolumeMount struct {
	Local         string
	Cache         string
	ContainerPath string `validate:"required"`
	Options       string
}

// PortMapping maps a host port to a container port.
type PortMapping struct {
	Host      int    `validate:"required,min=1,max=65535"`
	Container int    `validate:"required,min=1,max=65535"`
	Protocol  string `validate:"omitempty,oneof=tcp udp"`
}

// HealthCheck describes how readiness of a container is observed. The
// command runs inside the container on the configured interval.
type HealthCheck struct {
	Command     string `validate:"required"`
	Interval    time.Duration
	Retries     int
	StartPeriod time.Duration
	Timeout     time.Duration
}

var validate = validator.New()

// Validate performs structural validation of the config. Referential
// checks (unknown dependency or prerequisite names, cycles) belong to
// the graph package; this only guarantees each declaration is complete
// on its own.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for name, ctr := range c.Containers {
		for i, v := range ctr.Volumes {
			if (v.Local == "") == (v.Cache == "") {
				return fmt.Errorf("invalid configuration: container %q volume %d must set exactly one of 'local' or 'cache'", name, i+1)
			}
		}
	}
	return nil
}

// Container returns the named container definition, or nil.
func (c *Config) Container(name string) *Container {
	return c.Containers[name]
}

// Task returns the named task definition, or nil.
func (c *Config) Task(name string) *Task {
	return c.Tasks[name]
}
