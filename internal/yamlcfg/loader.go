package yamlcfg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dockhand-io/dockhand/internal/config"
	"github.com/dockhand-io/dockhand/internal/ctxlog"
)

// Loader reads a dockhand YAML project file into the config model.
type Loader struct{}

// NewLoader returns a Loader for YAML project files.
func NewLoader() *Loader {
	return &Loader{}
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (*config.Config, error) {
	logger := ctxlog.FromContext(ctx)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path %q: %w", path, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(absPath), err)
	}

	cfg := &config.Config{
		Dir:        filepath.Dir(absPath),
		Containers: make(map[string]*config.Container),
		Tasks:      make(map[string]*config.Task),
	}

	if len(root.Content) > 0 {
		if err := l.decodeDocument(root.Content[0], cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", filepath.Base(absPath), err)
		}
	}

	if cfg.ProjectName == "" {
		cfg.ProjectName = filepath.Base(cfg.Dir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Configuration loaded.",
		"path", absPath,
		"containers", len(cfg.Containers),
		"tasks", len(cfg.Tasks),
	)
	return cfg, nil
}

// decodeDocument walks the top-level mapping. Containers and tasks are
// decoded entry by entry so their declaration order survives into
// ContainerOrder and TaskOrder.
func (l *Loader) decodeDocument(doc *yaml.Node, cfg *config.Config) error {
	if doc.Kind != yaml.MappingNode {
		return fmt.Errorf("top level must be a mapping, got %s", kindName(doc.Kind))
	}

	for i := 0; i < len(doc.Content); i += 2 {
		keyNode, valNode := doc.Content[i], doc.Content[i+1]
		switch keyNode.Value {
		case "project_name":
			if err := valNode.Decode(&cfg.ProjectName); err != nil {
				return err
			}
		case "containers":
			if err := decodeOrderedMap(valNode, func(name string, node *yaml.Node) error {
				ctr, err := decodeContainer(name, node)
				if err != nil {
					return err
				}
				cfg.Containers[name] = ctr
				cfg.ContainerOrder = append(cfg.ContainerOrder, name)
				return nil
			}); err != nil {
				return fmt.Errorf("containers: %w", err)
			}
		case "tasks":
			if err := decodeOrderedMap(valNode, func(name string, node *yaml.Node) error {
				task, err := decodeTask(name, node)
				if err != nil {
					return err
				}
				cfg.Tasks[name] = task
				cfg.TaskOrder = append(cfg.TaskOrder, name)
				return nil
			}); err != nil {
				return fmt.Errorf("tasks: %w", err)
			}
		default:
			return fmt.Errorf("unknown top-level key %q (line %d)", keyNode.Value, keyNode.Line)
		}
	}
	return nil
}

// decodeOrderedMap iterates a mapping node in document order, rejecting
// duplicate keys.
func decodeOrderedMap(node *yaml.Node, fn func(name string, value *yaml.Node) error) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected a mapping, got %s (line %d)", kindName(node.Kind), node.Line)
	}
	seen := make(map[string]bool)
	for i := 0; i < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		name := keyNode.Value
		if seen[name] {
			return fmt.Errorf("duplicate entry %q (line %d)", name, keyNode.Line)
		}
		seen[name] = true
		if err := fn(name, valNode); err != nil {
			return fmt.Errorf("%q: %w", name, err)
		}
	}
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
