package notifications

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jmuralla/taskhive-backend/pkg/db/models"
)

// Repository exposes persistence helpers for notification records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.NotificationRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.NotificationRecord, error)
	ListAll(ctx context.Context) ([]models.NotificationRecord, error)
	MarkOriginRead(ctx context.Context, id uuid.UUID) (bool, error)
	MarkMemberRead(ctx context.Context, id uuid.UUID) (bool, error)
	MarkTeamSlotRead(ctx context.Context, id uuid.UUID, slotIndex int) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notification repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, record *models.NotificationRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.NotificationRecord, error) {
	var rec models.NotificationRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repositoryImpl) ListAll(ctx context.Context) ([]models.NotificationRecord, error) {
	var records []models.NotificationRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&records).Error
	return records, err
}

func (r *repositoryImpl) MarkOriginRead(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.NotificationRecord{}).
		Where("id = ?", id).
		UpdateColumn("from_read_receipt", true)
	return result.RowsAffected > 0, result.Error
}

func (r *repositoryImpl) MarkMemberRead(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.NotificationRecord{}).
		Where("id = ? AND to_member_id IS NOT NULL", id).
		UpdateColumn("to_member_read_receipt", true)
	return result.RowsAffected > 0, result.Error
}

// MarkTeamSlotRead flips a single receipt slot with one UPDATE addressed
// by array index, so two team members acknowledging concurrently can
// never revert each other's flag. This replaces the read-modify-write
// the surrounding application historically performed for team receipts,
// which could lose one of two concurrent acknowledgements.
func (r *repositoryImpl) MarkTeamSlotRead(ctx context.Context, id uuid.UUID, slotIndex int) (bool, error) {
	if slotIndex < 0 {
		return false, errors.New("slot index must be non-negative")
	}
	// Postgres arrays are 1-based.
	result := r.db.WithContext(ctx).Exec(
		`UPDATE notification_records
		 SET to_team_read_receipts[?] = true
		 WHERE id = ? AND to_team_member_ids IS NOT NULL AND cardinality(to_team_member_ids) > ?`,
		slotIndex+1, id, slotIndex,
	)
	return result.RowsAffected > 0, result.Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.NotificationRecord{}, "id = ?", id).Error
}
