package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jmuralla/taskhive-backend/pkg/db/models"
	"github.com/jmuralla/taskhive-backend/pkg/enums"
)

// StatusCount is one row of the per-status rollup.
type StatusCount struct {
	Status enums.TaskStatus `gorm:"column:status"`
	Count  int64            `gorm:"column:count"`
}

// PriorityCount is one row of the per-priority rollup.
type PriorityCount struct {
	Priority enums.TaskPriority `gorm:"column:priority"`
	Count    int64              `gorm:"column:count"`
}

// Repository exposes task persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	FindByNumber(ctx context.Context, number string) (*models.Task, error)
	ListVisible(ctx context.Context, viewerID uuid.UUID, teamIDs []uuid.UUID, status *enums.TaskStatus) ([]models.Task, error)
	Transition(ctx context.Context, id uuid.UUID, from []enums.TaskStatus, to enums.TaskStatus, completedAt *time.Time) (bool, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListDueRunning(ctx context.Context, before time.Time) ([]models.Task, error)
	CountByStatus(ctx context.Context, viewerID uuid.UUID, teamIDs []uuid.UUID) ([]StatusCount, error)
	CountByPriority(ctx context.Context, viewerID uuid.UUID, teamIDs []uuid.UUID) ([]PriorityCount, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository constructs a tasks repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *repositoryImpl) FindByNumber(ctx context.Context, number string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, "number = ?", number).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *repositoryImpl) visibleScope(viewerID uuid.UUID, teamIDs []uuid.UUID) *gorm.DB {
	query := r.db.Where("created_by = ? OR assignee_id = ?", viewerID, viewerID)
	if len(teamIDs) > 0 {
		query = query.Or("team_id IN ?", teamIDs)
	}
	return query
}

func (r *repositoryImpl) ListVisible(ctx context.Context, viewerID uuid.UUID, teamIDs []uuid.UUID, status *enums.TaskStatus) ([]models.Task, error) {
	query := r.db.WithContext(ctx).
		Where(r.visibleScope(viewerID, teamIDs)).
		Order("due_date ASC, created_at DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var tasks []models.Task
	err := query.Find(&tasks).Error
	return tasks, err
}

// Transition rewrites the status with a guard on the current one, so a
// stale caller cannot clobber a concurrent move. The task keeps its id,
// only the status column (and completed_at when finishing) changes.
func (r *repositoryImpl) Transition(ctx context.Context, id uuid.UUID, from []enums.TaskStatus, to enums.TaskStatus, completedAt *time.Time) (bool, error) {
	updates := map[string]any{"status": to}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}
	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	return result.RowsAffected > 0, result.Error
}

func (r *repositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.Task{}, "id = ?", id).Error
}

func (r *repositoryImpl) ListDueRunning(ctx context.Context, before time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", enums.TaskStatusRunning, before).
		Find(&tasks).Error
	return tasks, err
}

func (r *repositoryImpl) CountByStatus(ctx context.Context, viewerID uuid.UUID, teamIDs []uuid.UUID) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Select("status, COUNT(*) AS count").
		Where(r.visibleScope(viewerID, teamIDs)).
		Group("status").
		Scan(&counts).Error
	return counts, err
}

func (r *repositoryImpl) CountByPriority(ctx context.Context, viewerID uuid.UUID, teamIDs []uuid.UUID) ([]PriorityCount, error) {
	var counts []PriorityCount
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Select("priority, COUNT(*) AS count").
		Where(r.visibleScope(viewerID, teamIDs)).
		Group("priority").
		Scan(&counts).Error
	return counts, err
}
