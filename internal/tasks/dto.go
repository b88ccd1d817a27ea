package tasks

import (
	"time"

	"github.com/google/uuid"

	"github.com/jmuralla/taskhive-backend/pkg/db/models"
	"github.com/jmuralla/taskhive-backend/pkg/enums"
)

// PartyRef names a user appearing on a task (creator or assignee).
type PartyRef struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// TeamRef names the team a task is assigned to.
type TeamRef struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	MemberIDs []uuid.UUID `json:"member_ids"`
}

// TaskDTO is the transport shape of a task.
type TaskDTO struct {
	ID          uuid.UUID          `json:"id"`
	Number      string             `json:"number"`
	Title       string             `json:"title"`
	Type        string             `json:"type"`
	Description string             `json:"description"`
	Status      enums.TaskStatus   `json:"status"`
	Priority    enums.TaskPriority `json:"priority"`
	CreatedBy   PartyRef           `json:"created_by"`
	Assignee    *PartyRef          `json:"assignee,omitempty"`
	Team        *TeamRef           `json:"team,omitempty"`
	StartDate   time.Time          `json:"start_date"`
	DueDate     time.Time          `json:"due_date"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// CreateTaskRequest captures the task creation payload. Exactly one of
// AssigneeID or TeamID must be set.
type CreateTaskRequest struct {
	Title       string             `json:"title" validate:"required"`
	Type        string             `json:"type" validate:"required"`
	Description string             `json:"description"`
	Status      enums.TaskStatus   `json:"status"`
	Priority    enums.TaskPriority `json:"priority" validate:"required"`
	AssigneeID  *uuid.UUID         `json:"assignee_id,omitempty"`
	TeamID      *uuid.UUID         `json:"team_id,omitempty"`
	StartDate   time.Time          `json:"start_date" validate:"required"`
	DueDate     time.Time          `json:"due_date" validate:"required"`
}

// UpdateTaskRequest carries the head-editable fields; nil means unchanged.
type UpdateTaskRequest struct {
	Title       *string             `json:"title,omitempty"`
	Type        *string             `json:"type,omitempty"`
	Description *string             `json:"description,omitempty"`
	Priority    *enums.TaskPriority `json:"priority,omitempty"`
	StartDate   *time.Time          `json:"start_date,omitempty"`
	DueDate     *time.Time          `json:"due_date,omitempty"`
}

// SummaryDTO is the dashboard rollup for one viewer.
type SummaryDTO struct {
	ByStatus   map[enums.TaskStatus]int64   `json:"by_status"`
	ByPriority map[enums.TaskPriority]int64 `json:"by_priority"`
	Total      int64                        `json:"total"`
}

type refSources struct {
	usernames map[uuid.UUID]string
	teams     map[uuid.UUID]*models.Team
}

func fromModel(task *models.Task, refs refSources) *TaskDTO {
	dto := &TaskDTO{
		ID:          task.ID,
		Number:      task.Number,
		Title:       task.Title,
		Type:        task.Type,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		CreatedBy:   PartyRef{ID: task.CreatedBy, Username: refs.usernames[task.CreatedBy]},
		StartDate:   task.StartDate,
		DueDate:     task.DueDate,
		CompletedAt: task.CompletedAt,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if task.AssigneeID != nil {
		dto.Assignee = &PartyRef{ID: *task.AssigneeID, Username: refs.usernames[*task.AssigneeID]}
	}
	if task.TeamID != nil {
		ref := &TeamRef{ID: *task.TeamID}
		if team := refs.teams[*task.TeamID]; team != nil {
			ref.Name = team.Name
			for _, id := range team.MemberIDs {
				if id != uuid.Nil {
					ref.MemberIDs = append(ref.MemberIDs, id)
				}
			}
		}
		dto.Team = ref
	}
	return dto
}
