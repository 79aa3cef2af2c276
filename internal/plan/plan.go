package plan

import (
	"github.com/dockhand-io/dockhand/internal/config"
	"github.com/dockhand-io/dockhand/internal/graph"
)

// Plan is the ordered execution plan for one task invocation.
type Plan struct {
	// Task is the target task name.
	Task string

	// Prerequisites are the direct prerequisite task names in declared
	// order. Each is run as its own full invocation, to completion,
	// before anything below is provisioned. Their own prerequisites are
	// handled by their own plans.
	Prerequisites []string

	// Dependencies is the transitive closure of dependency containers,
	// seeded from the task and from its own container, topologically
	// ordered: every container appears after all containers it depends
	// on. Ties break by first-mention order in the config, so the order
	// is stable across runs.
	Dependencies []string

	// DirectDeps maps each container in Dependencies to its direct
	// dependencies within the closure, preserving declared order. The
	// runner uses it to gate concurrent startup.
	DirectDeps map[string][]string

	// MainContainer is the container the task's command runs in.
	MainContainer string
}

// Build derives the plan for the named task. The closure seeds from the
// task's declared dependencies and from the dependencies of the task's
// own container, so a container that needs a database gets it whether
// the requirement is written on the task or on the container. The
// config's graphs must already have been validated by graph.Build;
// Build only reports an UnknownReferenceError when the target task
// itself does not exist.
func Build(cfg *config.Config, taskName string) (*Plan, error) {
	task := cfg.Task(taskName)
	if task == nil {
		return nil, &graph.UnknownReferenceError{Kind: "task", Name: taskName}
	}

	roots := append([]string(nil), task.Dependencies...)
	if main := cfg.Container(task.Run.Container); main != nil {
		roots = append(roots, main.Dependencies...)
	}
	closure := dependencyClosure(cfg, roots)

	p := &Plan{
		Task:          taskName,
		Prerequisites: task.Prerequisites,
		Dependencies:  topoSort(cfg, closure),
		DirectDeps:    make(map[string][]string, len(closure)),
		MainContainer: task.Run.Container,
	}

	inClosure := make(map[string]bool, len(closure))
	for _, name := range closure {
		inClosure[name] = true
	}
	for _, name := range closure {
		var direct []string
		for _, dep := range cfg.Container(name).Dependencies {
			if inClosure[dep] {
				direct = append(direct, dep)
			}
		}
		p.DirectDeps[name] = direct
	}

	return p, nil
}

// dependencyClosure walks the container dependency relation breadth
// first, collecting each container once in first-mention order.
func dependencyClosure(cfg *config.Config, roots []string) []string {
	var closure []string
	seen := make(map[string]bool)

	queue := append([]string(nil), roots...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if seen[name] {
			continue
		}
		seen[name] = true
		closure = append(closure, name)
		queue = append(queue, cfg.Container(name).Dependencies...)
	}
	return closure
}

// topoSort orders the closure so dependencies come before dependents,
// breaking ties by the order names entered the closure. Kahn's algorithm
// over a list scanned front to back keeps it deterministic.
func topoSort(cfg *config.Config, closure []string) []string {
	inClosure := make(map[string]bool, len(closure))
	for _, name := range closure {
		inClosure[name] = true
	}

	indegree := make(map[string]int, len(closure))
	for _, name := range closure {
		for _, dep := range cfg.Container(name).Dependencies {
			if inClosure[dep] {
				indegree[name]++
			}
		}
	}

	ordered := make([]string, 0, len(closure))
	remaining := append([]string(nil), closure...)
	for len(remaining) > 0 {
		// graph.Build has already rejected cycles, so a pass always
		// finds at least one ready node.
		progressed := false
		for i, name := range remaining {
			if indegree[name] != 0 {
				continue
			}
			ordered = append(ordered, name)
			remaining = append(remaining[:i], remaining[i+1:]...)
			for _, other := range remaining {
				for _, dep := range cfg.Container(other).Dependencies {
					if dep == name {
						indegree[other]--
					}
				}
			}
			progressed = true
			break
		}
		if !progressed {
			break
		}
	}
	return ordered
}
