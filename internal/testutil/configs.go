package testutil

import "github.com/dockhand-io/dockhand/internal/config"

// NewProject returns an empty config for tests, rooted at dir.
func NewProject(dir string) *config.Config {
	return &config.Config{
		ProjectName: "test-project",
		Dir:         dir,
		Containers:  make(map[string]*config.Container),
		Tasks:       make(map[string]*config.Task),
	}
}

// AddContainer registers a container, keeping declaration order.
func AddContainer(cfg *config.Config, ctr *config.Container) {
	cfg.Containers[ctr.Name] = ctr
	cfg.ContainerOrder = append(cfg.ContainerOrder, ctr.Name)
}

// AddTask registers a task, keeping declaration order.
func AddTask(cfg *config.Config, task *config.Task) {
	cfg.Tasks[task.Name] = task
	cfg.TaskOrder = append(cfg.TaskOrder, task.Name)
}
