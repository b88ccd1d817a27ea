package teams

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jmuralla/taskhive-backend/internal/users"
	"github.com/jmuralla/taskhive-backend/pkg/db/models"
)

// memberDirectory is the slice of the users repo the teams service needs.
type memberDirectory interface {
	WithTx(tx *gorm.DB) memberDirectory
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
	UpdateTeamID(ctx context.Context, id uuid.UUID, teamID *uuid.UUID) error
}

type userDirectory struct {
	db *gorm.DB
}

// NewMemberDirectory adapts the users repository for team membership work.
func NewMemberDirectory(db *gorm.DB) memberDirectory {
	return &userDirectory{db: db}
}

func (d *userDirectory) WithTx(tx *gorm.DB) memberDirectory {
	if tx == nil {
		return d
	}
	return &userDirectory{db: tx}
}

func (d *userDirectory) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	return users.NewRepository(d.db).FindByIDs(ctx, ids)
}

func (d *userDirectory) UpdateTeamID(ctx context.Context, id uuid.UUID, teamID *uuid.UUID) error {
	return users.NewRepository(d.db).UpdateTeamID(ctx, id, teamID)
}
