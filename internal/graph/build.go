package graph

import "github.com/dockhand-io/dockhand/internal/config"

// Result holds the validated dependency graphs of a config: one over
// tasks (prerequisite edges) and one over containers (dependency edges).
// Cycles can only form within a kind, since containers never reference
// tasks.
type Result struct {
	Tasks      *Graph
	Containers *Graph
}

// Build constructs and validates the dependency graphs for the whole
// config. It fails with an UnknownReferenceError if any task or
// container names a reference that is not defined, and with a
// CyclicDependencyError if prerequisites or container dependencies form
// a cycle. Build is a pure function of the config.
func Build(cfg *config.Config) (*Result, error) {
	tasks := New("task")
	containers := New("container")

	for _, name := range cfg.TaskOrder {
		tasks.AddNode(name)
	}
	for _, name := range cfg.ContainerOrder {
		containers.AddNode(name)
	}

	for _, name := range cfg.TaskOrder {
		task := cfg.Task(name)

		if cfg.Container(task.Run.Container) == nil {
			return nil, &UnknownReferenceError{Referrer: name, Kind: "container", Name: task.Run.Container}
		}
		for _, dep := range task.Dependencies {
			if cfg.Container(dep) == nil {
				return nil, &UnknownReferenceError{Referrer: name, Kind: "container", Name: dep}
			}
		}
		for _, prereq := range task.Prerequisites {
			if cfg.Task(prereq) == nil {
				return nil, &UnknownReferenceError{Referrer: name, Kind: "task", Name: prereq}
			}
			if err := tasks.AddEdge(prereq, name); err != nil {
				return nil, &CyclicDependencyError{Kind: "task", Node: name}
			}
		}
	}

	for _, name := range cfg.ContainerOrder {
		ctr := cfg.Container(name)
		for _, dep := range ctr.Dependencies {
			if cfg.Container(dep) == nil {
				return nil, &UnknownReferenceError{Referrer: name, Kind: "container", Name: dep}
			}
			if err := containers.AddEdge(dep, name); err != nil {
				return nil, &CyclicDependencyError{Kind: "container", Node: name}
			}
		}
	}

	if err := tasks.DetectCycles(); err != nil {
		return nil, err
	}
	if err := containers.DetectCycles(); err != nil {
		return nil, err
	}

	return &Result{Tasks: tasks, Containers: containers}, nil
}
