package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jmuralla/taskhive-backend/pkg/enums"
)

// Task is the unit of assigned work. At most one of AssigneeID or
// TeamID is set, matching the notification parties the task produces.
type Task struct {
	ID          uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Number      string             `gorm:"type:text;not null;uniqueIndex"`
	Title       string             `gorm:"type:text;not null"`
	Type        string             `gorm:"type:text;not null"`
	Description string             `gorm:"type:text;not null"`
	Status      enums.TaskStatus   `gorm:"column:status;type:task_status;not null;index"`
	Priority    enums.TaskPriority `gorm:"column:priority;type:task_priority;not null"`
	CreatedBy   uuid.UUID          `gorm:"column:created_by;type:uuid;not null;index"`
	AssigneeID  *uuid.UUID         `gorm:"column:assignee_id;type:uuid;index"`
	TeamID      *uuid.UUID         `gorm:"column:team_id;type:uuid;index"`
	StartDate   time.Time          `gorm:"column:start_date;type:timestamptz;not null"`
	DueDate     time.Time          `gorm:"column:due_date;type:timestamptz;not null"`
	CompletedAt *time.Time         `gorm:"column:completed_at;type:timestamptz"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
