package app

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// ListTasks prints every task's name and description, grouped by the
// task's declared group, in declaration order.
func (a *App) ListTasks(w io.Writer) error {
	// Collect group headings in first-mention order.
	var groups []string
	byGroup := make(map[string][]string)
	for _, name := range a.config.TaskOrder {
		group := a.config.Task(name).Group
		if group == "" {
			group = "Tasks"
		}
		if _, ok := byGroup[group]; !ok {
			groups = append(groups, group)
		}
		byGroup[group] = append(byGroup[group], name)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, group := range groups {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s:\n", group)
		for _, name := range byGroup[group] {
			fmt.Fprintf(tw, "  %s\t%s\n", name, a.config.Task(name).Description)
		}
	}
	return tw.Flush()
}
