package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jmuralla/taskhive-backend/internal/users"
	"github.com/jmuralla/taskhive-backend/pkg/db"
	"github.com/jmuralla/taskhive-backend/pkg/db/models"
	"github.com/jmuralla/taskhive-backend/pkg/enums"
	pkgerrors "github.com/jmuralla/taskhive-backend/pkg/errors"
	"github.com/jmuralla/taskhive-backend/pkg/outbox"
	"github.com/jmuralla/taskhive-backend/pkg/outbox/payloads"
)

// Journal persists the side effects of a successful sign-in: the login
// record, the last-login timestamp, and the user.logged_in outbox event,
// all in one transaction.
type Journal struct {
	db     *db.Client
	outbox *outbox.Service
}

// NewJournal wires the login journal.
func NewJournal(dbClient *db.Client, outboxSvc *outbox.Service) (*Journal, error) {
	if dbClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if outboxSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox service required")
	}
	return &Journal{db: dbClient, outbox: outboxSvc}, nil
}

func (j *Journal) RecordLogin(ctx context.Context, user *models.User, meta LoginMeta) (time.Time, error) {
	now := time.Now().UTC()

	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		if err := userRepo.CreateLoginRecord(ctx, &models.LoginRecord{
			ID:        uuid.New(),
			UserID:    user.ID,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		if err := userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
			return err
		}

		return j.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventUserLoggedIn,
			AggregateType: enums.OutboxAggregateUser,
			AggregateID:   user.ID,
			Actor: &outbox.ActorRef{
				UserID:   user.ID,
				Position: user.Position.String(),
			},
			Data: payloads.UserLoggedInEvent{
				UserID:    user.ID,
				Username:  user.Username,
				Position:  user.Position,
				IPAddress: meta.IPAddress,
				LoggedAt:  now,
			},
			Version:    1,
			OccurredAt: now,
		})
	})
	if err != nil {
		return time.Time{}, err
	}
	return now, nil
}
