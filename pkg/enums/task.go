package enums

import "fmt"

// TaskStatus is the lifecycle bucket a task sits in. Transitions are
// enforced by the tasks service, not here.
type TaskStatus string

const (
	TaskStatusUpcoming  TaskStatus = "upcoming"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusOverdue   TaskStatus = "overdue"
)

var validTaskStatuses = map[TaskStatus]struct{}{
	TaskStatusUpcoming:  {},
	TaskStatusRunning:   {},
	TaskStatusCompleted: {},
	TaskStatusOverdue:   {},
}

func (s TaskStatus) String() string { return string(s) }

func (s TaskStatus) IsValid() bool {
	_, ok := validTaskStatuses[s]
	return ok
}

func ParseTaskStatus(raw string) (TaskStatus, error) {
	s := TaskStatus(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid task status: %q", raw)
	}
	return s, nil
}

// TaskPriority is the scheduling weight attached to a task.
type TaskPriority string

const (
	TaskPriorityHigh   TaskPriority = "High"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityLow    TaskPriority = "Low"
)

var validTaskPriorities = map[TaskPriority]struct{}{
	TaskPriorityHigh:   {},
	TaskPriorityMedium: {},
	TaskPriorityLow:    {},
}

func (p TaskPriority) String() string { return string(p) }

func (p TaskPriority) IsValid() bool {
	_, ok := validTaskPriorities[p]
	return ok
}

func ParseTaskPriority(raw string) (TaskPriority, error) {
	p := TaskPriority(raw)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid task priority: %q", raw)
	}
	return p, nil
}
