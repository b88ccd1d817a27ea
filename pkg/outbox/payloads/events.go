package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/jmuralla/taskhive-backend/pkg/enums"
)

// TaskCreatedEvent is emitted when a head creates and assigns a task.
type TaskCreatedEvent struct {
	TaskID     uuid.UUID          `json:"taskId"`
	TaskNumber string             `json:"taskNumber"`
	Title      string             `json:"title"`
	Priority   enums.TaskPriority `json:"priority"`
	CreatedBy  uuid.UUID          `json:"createdBy"`
	AssigneeID *uuid.UUID         `json:"assigneeId,omitempty"`
	TeamID     *uuid.UUID         `json:"teamId,omitempty"`
	DueDate    time.Time          `json:"dueDate"`
}

// TaskCompletedEvent is emitted when an assignee marks a task done.
type TaskCompletedEvent struct {
	TaskID      uuid.UUID `json:"taskId"`
	TaskNumber  string    `json:"taskNumber"`
	CompletedBy uuid.UUID `json:"completedBy"`
	CompletedAt time.Time `json:"completedAt"`
}

// TaskOverdueEvent is emitted the first time a task is detected past due.
type TaskOverdueEvent struct {
	TaskID     uuid.UUID `json:"taskId"`
	TaskNumber string    `json:"taskNumber"`
	DueDate    time.Time `json:"dueDate"`
	DetectedAt time.Time `json:"detectedAt"`
}

// TeamCreatedEvent is emitted when a head assembles a new team.
type TeamCreatedEvent struct {
	TeamID    uuid.UUID   `json:"teamId"`
	TeamCode  string      `json:"teamCode"`
	TeamName  string      `json:"teamName"`
	HeadID    uuid.UUID   `json:"headId"`
	MemberIDs []uuid.UUID `json:"memberIds"`
}

// UserLoggedInEvent records a successful sign-in for the activity trail.
type UserLoggedInEvent struct {
	UserID    uuid.UUID          `json:"userId"`
	Username  string             `json:"username"`
	Position  enums.UserPosition `json:"position"`
	IPAddress string             `json:"ipAddress,omitempty"`
	LoggedAt  time.Time          `json:"loggedAt"`
}
