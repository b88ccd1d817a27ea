package notifications

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/jmuralla/taskhive-backend/pkg/db/models"
	"github.com/jmuralla/taskhive-backend/pkg/enums"
	pkgerrors "github.com/jmuralla/taskhive-backend/pkg/errors"
	"github.com/jmuralla/taskhive-backend/pkg/logger"
	redisclient "github.com/jmuralla/taskhive-backend/pkg/redis"
)

// Service defines the notification record lifecycle: creation,
// per-party acknowledgement, reaping, and feed projection.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*models.NotificationRecord, error)
	Feed(ctx context.Context, viewerID uuid.UUID) ([]VisibleItem, error)
	Acknowledge(ctx context.Context, input AcknowledgeInput) error
	ReapPass(ctx context.Context) (int, error)
}

type changePublisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

type service struct {
	repo      Repository
	publisher changePublisher
	logg      *logger.Logger
}

// RecordInput carries the fields for a new notification record. The
// origin party is mandatory; individual and team recipients are
// mutually exclusive.
type RecordInput struct {
	Title           string
	FromUserID      uuid.UUID
	FromMessage     string
	ToMemberID      *uuid.UUID
	ToMemberMessage string
	ToTeamMemberIDs []uuid.UUID
	ToTeamMessage   string
}

// AcknowledgeInput identifies the receipt slot being flipped.
type AcknowledgeInput struct {
	RecordID      uuid.UUID
	ViewerID      uuid.UUID
	Role          enums.NotificationRole
	TeamSlotIndex *int
}

// NewService wires notification dependencies.
func NewService(repo Repository, publisher changePublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification repository required")
	}
	return &service{repo: repo, publisher: publisher, logg: logg}, nil
}

func (s *service) Record(ctx context.Context, input RecordInput) (*models.NotificationRecord, error) {
	if input.FromUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "origin user id required")
	}
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if input.FromMessage == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "origin message required")
	}
	if input.ToMemberID != nil && len(input.ToTeamMemberIDs) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "individual and team recipients are mutually exclusive")
	}

	record := &models.NotificationRecord{
		Title:       input.Title,
		FromUserID:  input.FromUserID,
		FromMessage: input.FromMessage,
	}
	if input.ToMemberID != nil {
		if *input.ToMemberID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient member id required")
		}
		record.ToMemberID = input.ToMemberID
		msg := input.ToMemberMessage
		record.ToMemberMessage = &msg
	}
	if len(input.ToTeamMemberIDs) > 0 {
		record.ToTeamMemberIDs = append(record.ToTeamMemberIDs, input.ToTeamMemberIDs...)
		record.ToTeamReadReceipts = make([]bool, len(input.ToTeamMemberIDs))
		msg := input.ToTeamMessage
		record.ToTeamMessage = &msg
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification record")
	}

	s.publishChange(ctx)
	return record, nil
}

// Feed runs a reap pass first so fully acknowledged records never reach
// the viewer, then projects the survivors.
func (s *service) Feed(ctx context.Context, viewerID uuid.UUID) ([]VisibleItem, error) {
	if viewerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "viewer id required")
	}

	if _, err := s.ReapPass(ctx); err != nil && s.logg != nil {
		// Reap failures are contained: the feed still serves from the
		// latest readable snapshot.
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "notification reap pass failed")
	}

	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notification records")
	}
	return Project(records, viewerID), nil
}

func (s *service) Acknowledge(ctx context.Context, input AcknowledgeInput) error {
	if input.RecordID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "record id required")
	}
	if input.ViewerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "viewer id required")
	}
	if !input.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid notification role")
	}

	record, err := s.repo.GetByID(ctx, input.RecordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Already reaped or deleted concurrently: success no-op.
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification record")
	}

	switch input.Role {
	case enums.NotificationRoleOrigin:
		if record.FromUserID != input.ViewerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "viewer is not the origin party")
		}
		if _, err := s.repo.MarkOriginRead(ctx, input.RecordID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark origin read")
		}

	case enums.NotificationRoleIndividualRecipient:
		if record.ToMemberID == nil || *record.ToMemberID != input.ViewerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "viewer is not the individual recipient")
		}
		if _, err := s.repo.MarkMemberRead(ctx, input.RecordID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark member read")
		}

	case enums.NotificationRoleTeamRecipient:
		idx, err := resolveTeamSlot(record, input)
		if err != nil {
			return err
		}
		if _, err := s.repo.MarkTeamSlotRead(ctx, input.RecordID, idx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark team slot read")
		}
	}

	s.reapIfEligible(ctx, input.RecordID)
	s.publishChange(ctx)
	return nil
}

func resolveTeamSlot(record *models.NotificationRecord, input AcknowledgeInput) (int, error) {
	if len(record.ToTeamMemberIDs) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "record has no team party")
	}
	if input.TeamSlotIndex != nil {
		idx := *input.TeamSlotIndex
		if idx < 0 || idx >= len(record.ToTeamMemberIDs) {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "team slot index out of range")
		}
		if record.ToTeamMemberIDs[idx] != input.ViewerID {
			return 0, pkgerrors.New(pkgerrors.CodeForbidden, "viewer does not hold that team slot")
		}
		return idx, nil
	}
	for i, memberID := range record.ToTeamMemberIDs {
		if memberID == input.ViewerID {
			return i, nil
		}
	}
	return 0, pkgerrors.New(pkgerrors.CodeForbidden, "viewer is not a team recipient")
}

// ReapPass deletes every record whose parties have all acknowledged.
// Individual failures are collected and do not stop the sweep; a record
// already deleted by a concurrent pass counts as success.
func (s *service) ReapPass(ctx context.Context) (int, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notification records")
	}

	var errs error
	reaped := 0
	for i := range records {
		if !ReapEligible(&records[i]) {
			continue
		}
		if err := s.repo.Delete(ctx, records[i].ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			errs = multierr.Append(errs, err)
			continue
		}
		reaped++
	}

	if reaped > 0 {
		s.publishChange(ctx)
	}
	return reaped, errs
}

func (s *service) reapIfEligible(ctx context.Context, id uuid.UUID) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return
	}
	if !ReapEligible(record) {
		return
	}
	if err := s.repo.Delete(ctx, id); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "record_id", id.String()), "reap after acknowledge failed")
	}
}

func (s *service) publishChange(ctx context.Context) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, redisclient.NotificationChannel, "changed"); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "publish notification change failed")
	}
}
