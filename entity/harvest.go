package entity

import "fmt"

// Daily is the backend's view of a user's day: the entries logged today and
// every project (with its tasks) the user may track time against.
type Daily struct {
	ForDay     string     `json:"for_day,omitempty" bson:"for_day"`
	DayEntries []DayEntry `json:"day_entries" bson:"day_entries"`
	Projects   []Project  `json:"projects" bson:"projects"`
}

type Project struct {
	ID       int64  `json:"id" bson:"id"`
	Name     string `json:"name" bson:"name"`
	Client   string `json:"client" bson:"client"`
	ClientID int64  `json:"client_id,omitempty" bson:"client_id"`
	Tasks    []Task `json:"tasks" bson:"tasks"`
}

type Task struct {
	ID       int64  `json:"id" bson:"id"`
	Name     string `json:"name" bson:"name"`
	Billable bool   `json:"billable" bson:"billable"`
}

type DayEntry struct {
	ID             int64   `json:"id" bson:"id"`
	ProjectID      int64   `json:"project_id" bson:"project_id"`
	Project        string  `json:"project" bson:"project"`
	TaskID         int64   `json:"task_id" bson:"task_id"`
	Task           string  `json:"task" bson:"task"`
	Client         string  `json:"client" bson:"client"`
	Notes          string  `json:"notes,omitempty" bson:"notes"`
	Hours          float64 `json:"hours" bson:"hours"`
	TimerStartedAt string  `json:"timer_started_at,omitempty" bson:"timer_started_at"`
}

// IsRunning reports whether the entry's timer is currently ticking.
func (e *DayEntry) IsRunning() bool {
	return e.TimerStartedAt != ""
}

// Title renders "client - project - task".
func (e *DayEntry) Title() string {
	return fmt.Sprintf("%s - %s - %s", e.Client, e.Project, e.Task)
}

// ProjectMatch is a project found by a client or project name search.
type ProjectMatch struct {
	ProjectID int64  `json:"project_id"`
	Project   string `json:"project"`
	Client    string `json:"client"`
}

func (m ProjectMatch) Title() string {
	return fmt.Sprintf("%s - %s", m.Client, m.Project)
}
