package yamlcfg

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dockhand-io/dockhand/internal/config"
)

// containerDoc mirrors the YAML shape of a container entry.
type containerDoc struct {
	Image        string            `yaml:"image"`
	Volumes      []volumeMount     `yaml:"volumes"`
	WorkingDir   string            `yaml:"working_directory"`
	Environment  map[string]string `yaml:"environment"`
	Ports        []portMapping     `yaml:"ports"`
	HealthCheck  *healthCheckDoc   `yaml:"health_check"`
	Dependencies []string          `yaml:"dependencies"`
}

// taskDoc mirrors the YAML shape of a task entry.
type taskDoc struct {
	Description   string        `yaml:"description"`
	Group         string        `yaml:"group"`
	Run           runDoc        `yaml:"run"`
	Dependencies  []string      `yaml:"dependencies"`
	Prerequisites []string      `yaml:"prerequisites"`
	Ports         []portMapping `yaml:"ports"`
}

type runDoc struct {
	Container   string            `yaml:"container"`
	Command     string            `yaml:"command"`
	Environment map[string]string `yaml:"environment"`
	WorkingDir  string            `yaml:"working_directory"`
}

type healthCheckDoc struct {
	Command     string   `yaml:"command"`
	Interval    duration `yaml:"interval"`
	Retries     int      `yaml:"retries"`
	StartPeriod duration `yaml:"start_period"`
	Timeout     duration `yaml:"timeout"`
}

func decodeContainer(name string, node *yaml.Node) (*config.Container, error) {
	var doc containerDoc
	if err := node.Decode(&doc); err != nil {
		return nil, err
	}

	ctr := &config.Container{
		Name:         name,
		Image:        doc.Image,
		WorkingDir:   doc.WorkingDir,
		Environment:  doc.Environment,
		Dependencies: doc.Dependencies,
	}
	for _, v := range doc.Volumes {
		ctr.Volumes = append(ctr.Volumes, config.VolumeMount(v))
	}
	for _, p := range doc.Ports {
		ctr.Ports = append(ctr.Ports, config.PortMapping(p))
	}
	if doc.HealthCheck != nil {
		ctr.HealthCheck = &config.HealthCheck{
			Command:     doc.HealthCheck.Command,
			Interval:    time.Duration(doc.HealthCheck.Interval),
			Retries:     doc.HealthCheck.Retries,
			StartPeriod: time.Duration(doc.HealthCheck.StartPeriod),
			Timeout:     time.Duration(doc.HealthCheck.Timeout),
		}
	}
	return ctr, nil
}

func decodeTask(name string, node *yaml.Node) (*config.Task, error) {
	var doc taskDoc
	if err := node.Decode(&doc); err != nil {
		return nil, err
	}

	task := &config.Task{
		Name:        name,
		Description: doc.Description,
		Group:       doc.Group,
		Run: config.RunSpec{
			Container:   doc.Run.Container,
			Command:     doc.Run.Command,
			Environment: doc.Run.Environment,
			WorkingDir:  doc.Run.WorkingDir,
		},
		Dependencies:  doc.Dependencies,
		Prerequisites: doc.Prerequisites,
	}
	for _, p := range doc.Ports {
		task.Ports = append(task.Ports, config.PortMapping(p))
	}
	return task, nil
}

// volumeMount accepts either the short scalar form "local-path:/container/path[:options]"
// or the explicit mapping form with local/cache + container keys.
type volumeMount config.VolumeMount

func (v *volumeMount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		parts := strings.Split(node.Value, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return fmt.Errorf("invalid volume %q (line %d): expected 'local-path:/container/path[:options]'", node.Value, node.Line)
		}
		v.Local = parts[0]
		v.ContainerPath = parts[1]
		if len(parts) == 3 {
			v.Options = parts[2]
		}
		return nil
	}

	var doc struct {
		Local     string `yaml:"local"`
		Cache     string `yaml:"cache"`
		Container string `yaml:"container"`
		Options   string `yaml:"options"`
	}
	if err := node.Decode(&doc); err != nil {
		return err
	}
	v.Local = doc.Local
	v.Cache = doc.Cache
	v.ContainerPath = doc.Container
	v.Options = doc.Options
	return nil
}

// portMapping accepts either the scalar form "host:container[/protocol]"
// or the explicit mapping form with host/container/protocol keys.
type portMapping config.PortMapping

func (p *portMapping) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		spec := node.Value
		if i := strings.IndexByte(spec, '/'); i >= 0 {
			p.Protocol = spec[i+1:]
			spec = spec[:i]
		}
		host, container, ok := strings.Cut(spec, ":")
		if !ok {
			return fmt.Errorf("invalid port %q (line %d): expected 'host:container[/protocol]'", node.Value, node.Line)
		}
		var err error
		if p.Host, err = strconv.Atoi(host); err != nil {
			return fmt.Errorf("invalid host port %q (line %d)", host, node.Line)
		}
		if p.Container, err = strconv.Atoi(container); err != nil {
			return fmt.Errorf("invalid container port %q (line %d)", container, node.Line)
		}
		return nil
	}

	var doc struct {
		Host      int    `yaml:"host"`
		Container int    `yaml:"container"`
		Protocol  string `yaml:"protocol"`
	}
	if err := node.Decode(&doc); err != nil {
		return err
	}
	p.Host = doc.Host
	p.Container = doc.Container
	p.Protocol = doc.Protocol
	return nil
}

// duration parses Go duration strings like "2s" or "500ms".
type duration time.Duration

func (d *duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q (line %d): %w", node.Value, node.Line, err)
	}
	*d = duration(parsed)
	return nil
}
