package activity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jmuralla/taskhive-backend/pkg/db/models"
)

// Repository persists and reads the activity trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, entry *models.ActivityEntry) error
	List(ctx context.Context, limit int) ([]models.ActivityEntry, error)
	ListForActor(ctx context.Context, actorID uuid.UUID, limit int) ([]models.ActivityEntry, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository constructs an activity repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// Insert writes one entry; a duplicate event_id is silently skipped so a
// redelivered message cannot produce a second trail row.
func (r *repositoryImpl) Insert(ctx context.Context, entry *models.ActivityEntry) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(entry).Error
}

func (r *repositoryImpl) List(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	var entries []models.ActivityEntry
	err := r.db.WithContext(ctx).
		Order("occurred_at DESC, created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *repositoryImpl) ListForActor(ctx context.Context, actorID uuid.UUID, limit int) ([]models.ActivityEntry, error) {
	var entries []models.ActivityEntry
	err := r.db.WithContext(ctx).
		Where("actor_id = ?", actorID).
		Order("occurred_at DESC, created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
