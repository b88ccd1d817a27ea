package teams

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jmuralla/taskhive-backend/internal/notifications"
	"github.com/jmuralla/taskhive-backend/pkg/db/models"
	"github.com/jmuralla/taskhive-backend/pkg/enums"
	pkgerrors "github.com/jmuralla/taskhive-backend/pkg/errors"
	"github.com/jmuralla/taskhive-backend/pkg/logger"
	"github.com/jmuralla/taskhive-backend/pkg/outbox"
	"github.com/jmuralla/taskhive-backend/pkg/outbox/payloads"
)

const codeAttempts = 5

// Service exposes team creation and lookup semantics.
type Service interface {
	Create(ctx context.Context, headID uuid.UUID, req CreateTeamRequest) (*TeamDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]TeamDTO, error)
	Get(ctx context.Context, userID, teamID uuid.UUID) (*TeamDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type notifier interface {
	Record(ctx context.Context, input notifications.RecordInput) (*models.NotificationRecord, error)
}

type service struct {
	db       txRunner
	repo     Repository
	users    memberDirectory
	outbox   outboxEmitter
	notifier notifier
	logg     *logger.Logger
}

// ServiceParams bundles the teams service dependencies.
type ServiceParams struct {
	TxRunner txRunner
	Repo     Repository
	Users    memberDirectory
	Outbox   outboxEmitter
	Notifier notifier
	Logger   *logger.Logger
}

// NewService constructs the teams service.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("teams repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("member directory required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		db:       params.TxRunner,
		repo:     params.Repo,
		users:    params.Users,
		outbox:   params.Outbox,
		notifier: params.Notifier,
		logg:     params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, headID uuid.UUID, req CreateTeamRequest) (*TeamDTO, error) {
	if headID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "head id required")
	}
	if req.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "team name required")
	}
	if req.Type == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "team type required")
	}
	if len(req.MemberIDs) > models.TeamSize {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("a team holds at most %d members", models.TeamSize))
	}
	seen := map[uuid.UUID]struct{}{}
	for _, id := range req.MemberIDs {
		if id == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "member slots cannot name the zero id")
		}
		if _, dup := seen[id]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate member in team")
		}
		seen[id] = struct{}{}
	}

	code, err := s.freshCode(ctx)
	if err != nil {
		return nil, err
	}

	team := &models.Team{
		Code:   code,
		Name:   req.Name,
		Type:   req.Type,
		HeadID: headID,
	}
	var members []models.User

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		directory := s.users.WithTx(tx)

		members, err = directory.FindByIDs(ctx, req.MemberIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load members")
		}
		if len(members) != len(req.MemberIDs) {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown member in team")
		}
		for i := range members {
			if members[i].State != enums.UserStateActive {
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("member %s is not active", members[i].Username))
			}
		}

		slots := make([]uuid.UUID, models.TeamSize)
		copy(slots, req.MemberIDs)
		team.MemberIDs = slots

		if err := repo.Create(ctx, team); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create team")
		}
		for _, id := range req.MemberIDs {
			if err := directory.UpdateTeamID(ctx, id, &team.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assign member to team")
			}
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventTeamCreated,
			AggregateType: enums.OutboxAggregateTeam,
			AggregateID:   team.ID,
			Actor:         &outbox.ActorRef{UserID: headID, Position: enums.UserPositionHead.String()},
			Data: payloads.TeamCreatedEvent{
				TeamID:    team.ID,
				TeamCode:  team.Code,
				TeamName:  team.Name,
				HeadID:    headID,
				MemberIDs: req.MemberIDs,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifyCreated(ctx, team, req.MemberIDs)
	return fromModel(team, members), nil
}

// notifyCreated records the team-creation notification after the commit.
// A failure here leaves the team intact and is only logged.
func (s *service) notifyCreated(ctx context.Context, team *models.Team, memberIDs []uuid.UUID) {
	if s.notifier == nil {
		return
	}
	_, err := s.notifier.Record(ctx, notifications.RecordInput{
		Title:           fmt.Sprintf("Team %s created", team.Name),
		FromUserID:      team.HeadID,
		FromMessage:     fmt.Sprintf("You created team %s (%s)", team.Name, team.Code),
		ToTeamMemberIDs: memberIDs,
		ToTeamMessage:   fmt.Sprintf("You were added to team %s (%s)", team.Name, team.Code),
	})
	if err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "team_id", team.ID.String()), "team creation notification failed")
	}
}

func (s *service) freshCode(ctx context.Context) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code, err := generateTeamCode()
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate team code")
		}
		_, err = s.repo.FindByCode(ctx, code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code, nil
		}
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check team code")
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique team code")
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]TeamDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	teams, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list teams")
	}

	out := make([]TeamDTO, 0, len(teams))
	for i := range teams {
		dto, err := s.resolve(ctx, &teams[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *dto)
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, userID, teamID uuid.UUID) (*TeamDTO, error) {
	team, err := s.repo.FindByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "team not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load team")
	}
	if !isParticipant(team, userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this team")
	}
	return s.resolve(ctx, team)
}

func (s *service) resolve(ctx context.Context, team *models.Team) (*TeamDTO, error) {
	members, err := s.users.FindByIDs(ctx, FilledMemberIDs(team))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load team members")
	}
	return fromModel(team, members), nil
}

func isParticipant(team *models.Team, userID uuid.UUID) bool {
	if team.HeadID == userID {
		return true
	}
	for _, id := range team.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
