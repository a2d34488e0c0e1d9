// Package daily holds lookups over the backend's daily records.
package daily

import (
	"strings"

	"TimerBot/entity"
)

// FilterCurrentEntry returns the entry whose timer is running, or nil.
func FilterCurrentEntry(entries []entity.DayEntry) *entity.DayEntry {
	for i := range entries {
		if entries[i].IsRunning() {
			return &entries[i]
		}
	}
	return nil
}

// FindMatchingClientsOrProjects returns the projects whose client or project
// name contains name, case-insensitively. An empty name matches everything.
func FindMatchingClientsOrProjects(name string, projects []entity.Project) []entity.ProjectMatch {
	needle := strings.ToLower(strings.TrimSpace(name))

	matches := make([]entity.ProjectMatch, 0, len(projects))
	for _, p := range projects {
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Client), needle) {
			continue
		}
		matches = append(matches, entity.ProjectMatch{
			ProjectID: p.ID,
			Project:   p.Name,
			Client:    p.Client,
		})
	}
	return matches
}

// ProjectTasks returns the tasks of the project with the given id.
func ProjectTasks(projectID int64, projects []entity.Project) []entity.Task {
	for _, p := range projects {
		if p.ID == projectID {
			return p.Tasks
		}
	}
	return nil
}

// IsRunningTask reports whether a running entry exists for the task.
func IsRunningTask(taskID int64, entries []entity.DayEntry) bool {
	for _, e := range entries {
		if e.TaskID == taskID && e.IsRunning() {
			return true
		}
	}
	return false
}

// DailyEntry returns today's entry for the project/task pair, or nil.
func DailyEntry(projectID, taskID int64, entries []entity.DayEntry) *entity.DayEntry {
	for i := range entries {
		if entries[i].ProjectID == projectID && entries[i].TaskID == taskID {
			return &entries[i]
		}
	}
	return nil
}
