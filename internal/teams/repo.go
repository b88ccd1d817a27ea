package teams

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jmuralla/taskhive-backend/pkg/db/models"
)

// Repository exposes team persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, team *models.Team) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	FindByCode(ctx context.Context, code string) (*models.Team, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Team, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository constructs a teams repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	var team models.Team
	if err := r.db.WithContext(ctx).First(&team, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *repositoryImpl) FindByCode(ctx context.Context, code string) (*models.Team, error) {
	var team models.Team
	if err := r.db.WithContext(ctx).First(&team, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// ListForUser returns every team where the user is the head or holds a
// member slot.
func (r *repositoryImpl) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Team, error) {
	var teams []models.Team
	err := r.db.WithContext(ctx).
		Where("head_id = ? OR ? = ANY(member_ids)", userID, userID).
		Order("created_at DESC").
		Find(&teams).Error
	return teams, err
}
