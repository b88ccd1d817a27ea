package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/jmuralla/taskhive-backend/internal/notifications"
	"github.com/jmuralla/taskhive-backend/internal/teams"
	"github.com/jmuralla/taskhive-backend/pkg/db/models"
	"github.com/jmuralla/taskhive-backend/pkg/enums"
	pkgerrors "github.com/jmuralla/taskhive-backend/pkg/errors"
	"github.com/jmuralla/taskhive-backend/pkg/logger"
	"github.com/jmuralla/taskhive-backend/pkg/outbox"
	"github.com/jmuralla/taskhive-backend/pkg/outbox/payloads"
)

const numberAttempts = 5

// Actor identifies the authenticated caller of a task operation.
type Actor struct {
	ID       uuid.UUID
	Position enums.UserPosition
}

// Service exposes the task lifecycle.
type Service interface {
	Create(ctx context.Context, actor Actor, req CreateTaskRequest) (*TaskDTO, error)
	Get(ctx context.Context, viewerID, taskID uuid.UUID) (*TaskDTO, error)
	List(ctx context.Context, viewerID uuid.UUID, status *enums.TaskStatus) ([]TaskDTO, error)
	Update(ctx context.Context, actor Actor, taskID uuid.UUID, req UpdateTaskRequest) (*TaskDTO, error)
	Delete(ctx context.Context, actor Actor, taskID uuid.UUID) error
	Start(ctx context.Context, viewerID, taskID uuid.UUID) (*TaskDTO, error)
	Complete(ctx context.Context, viewerID, taskID uuid.UUID) (*TaskDTO, error)
	Restart(ctx context.Context, viewerID, taskID uuid.UUID) (*TaskDTO, error)
	Summary(ctx context.Context, viewerID uuid.UUID) (*SummaryDTO, error)
	DetectOverdue(ctx context.Context) (int, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type teamLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Team, error)
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type notifier interface {
	Record(ctx context.Context, input notifications.RecordInput) (*models.NotificationRecord, error)
}

type service struct {
	db       txRunner
	repo     Repository
	teams    teamLookup
	users    userLookup
	outbox   outboxEmitter
	notifier notifier
	logg     *logger.Logger
	now      func() time.Time
}

// ServiceParams bundles the tasks service dependencies.
type ServiceParams struct {
	TxRunner txRunner
	Repo     Repository
	Teams    teamLookup
	Users    userLookup
	Outbox   outboxEmitter
	Notifier notifier
	Logger   *logger.Logger
	Now      func() time.Time
}

// NewService constructs the tasks service.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("tasks repository required")
	}
	if params.Teams == nil {
		return nil, fmt.Errorf("team lookup required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user lookup required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		db:       params.TxRunner,
		repo:     params.Repo,
		teams:    params.Teams,
		users:    params.Users,
		outbox:   params.Outbox,
		notifier: params.Notifier,
		logg:     params.Logger,
		now:      params.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, req CreateTaskRequest) (*TaskDTO, error) {
	if actor.Position != enums.UserPositionHead {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only heads create tasks")
	}
	if req.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if req.Type == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "type required")
	}
	if req.Status == "" {
		req.Status = enums.TaskStatusUpcoming
	}
	if req.Status != enums.TaskStatusUpcoming && req.Status != enums.TaskStatusRunning {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "new tasks start upcoming or running")
	}
	if !req.Priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
	}
	if req.DueDate.Before(req.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "due date precedes start date")
	}
	if (req.AssigneeID == nil) == (req.TeamID == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assign exactly one of a member or a team")
	}

	var assignee *models.User
	var team *models.Team
	var err error
	if req.AssigneeID != nil {
		assignee, err = s.users.FindByID(ctx, *req.AssigneeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignee not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load assignee")
		}
		if assignee.State != enums.UserStateActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignee is not active")
		}
	}
	if req.TeamID != nil {
		team, err = s.teams.FindByID(ctx, *req.TeamID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "team not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load team")
		}
	}

	number, err := s.freshNumber(ctx)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Number:      number,
		Title:       req.Title,
		Type:        req.Type,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		CreatedBy:   actor.ID,
		AssigneeID:  req.AssigneeID,
		TeamID:      req.TeamID,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, task); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create task")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventTaskCreated,
			AggregateType: enums.OutboxAggregateTask,
			AggregateID:   task.ID,
			Actor:         &outbox.ActorRef{UserID: actor.ID, Position: actor.Position.String()},
			Data: payloads.TaskCreatedEvent{
				TaskID:     task.ID,
				TaskNumber: task.Number,
				Title:      task.Title,
				Priority:   task.Priority,
				CreatedBy:  actor.ID,
				AssigneeID: task.AssigneeID,
				TeamID:     task.TeamID,
				DueDate:    task.DueDate,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifyAssigned(ctx, task, team)
	return s.resolve(ctx, task)
}

// notifyAssigned records the assignment notification after the commit; a
// failure leaves the task intact and is only logged.
func (s *service) notifyAssigned(ctx context.Context, task *models.Task, team *models.Team) {
	if s.notifier == nil {
		return
	}
	input := notifications.RecordInput{
		Title:      fmt.Sprintf("Task %s assigned", task.Number),
		FromUserID: task.CreatedBy,
	}
	switch {
	case task.AssigneeID != nil:
		input.FromMessage = fmt.Sprintf("You assigned task %s: %s", task.Number, task.Title)
		input.ToMemberID = task.AssigneeID
		input.ToMemberMessage = fmt.Sprintf("Task %s was assigned to you: %s", task.Number, task.Title)
	case team != nil:
		input.FromMessage = fmt.Sprintf("You assigned task %s to team %s", task.Number, team.Name)
		input.ToTeamMemberIDs = teams.FilledMemberIDs(team)
		input.ToTeamMessage = fmt.Sprintf("Task %s was assigned to team %s: %s", task.Number, team.Name, task.Title)
	default:
		return
	}
	if _, err := s.notifier.Record(ctx, input); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "task_id", task.ID.String()), "task assignment notification failed")
	}
}

func (s *service) freshNumber(ctx context.Context) (string, error) {
	for i := 0; i < numberAttempts; i++ {
		number, err := generateTaskNumber()
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate task number")
		}
		_, err = s.repo.FindByNumber(ctx, number)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return number, nil
		}
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check task number")
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique task number")
}

func (s *service) Get(ctx context.Context, viewerID, taskID uuid.UUID) (*TaskDTO, error) {
	task, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	visible, err := s.canView(ctx, viewerID, task)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "task is not visible to you")
	}
	return s.resolve(ctx, task)
}

func (s *service) List(ctx context.Context, viewerID uuid.UUID, status *enums.TaskStatus) ([]TaskDTO, error) {
	if viewerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "viewer id required")
	}
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}

	// Listing the overdue bucket first sweeps running tasks past due, so
	// the caller sees detection applied on demand.
	if status != nil && *status == enums.TaskStatusOverdue {
		if _, err := s.DetectOverdue(ctx); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "overdue sweep failed")
		}
	}

	teamIDs, err := s.viewerTeamIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListVisible(ctx, viewerID, teamIDs, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list tasks")
	}

	out := make([]TaskDTO, 0, len(tasks))
	for i := range tasks {
		dto, err := s.resolve(ctx, &tasks[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *dto)
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, actor Actor, taskID uuid.UUID, req UpdateTaskRequest) (*TaskDTO, error) {
	if actor.Position != enums.UserPositionHead {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only heads edit tasks")
	}
	task, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}

	start := task.StartDate
	due := task.DueDate
	if req.StartDate != nil {
		start = *req.StartDate
	}
	if req.DueDate != nil {
		due = *req.DueDate
	}
	if due.Before(start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "due date precedes start date")
	}
	if req.Priority != nil && !req.Priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
	}

	updates := map[string]any{}
	if req.Title != nil {
		if *req.Title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		updates["title"] = *req.Title
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}

	if err := s.repo.UpdateFields(ctx, taskID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update task")
	}
	task, err = s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, task)
}

func (s *service) Delete(ctx context.Context, actor Actor, taskID uuid.UUID) error {
	if actor.Position != enums.UserPositionHead {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only heads delete tasks")
	}
	if err := s.repo.Delete(ctx, taskID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete task")
	}
	return nil
}

func (s *service) Start(ctx context.Context, viewerID, taskID uuid.UUID) (*TaskDTO, error) {
	return s.transition(ctx, viewerID, taskID,
		[]enums.TaskStatus{enums.TaskStatusUpcoming}, enums.TaskStatusRunning, nil)
}

func (s *service) Complete(ctx context.Context, viewerID, taskID uuid.UUID) (*TaskDTO, error) {
	now := s.now().UTC()
	dto, err := s.transition(ctx, viewerID, taskID,
		[]enums.TaskStatus{enums.TaskStatusRunning, enums.TaskStatusOverdue},
		enums.TaskStatusCompleted, &now)
	if err != nil {
		return nil, err
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventTaskCompleted,
			AggregateType: enums.OutboxAggregateTask,
			AggregateID:   dto.ID,
			Actor:         &outbox.ActorRef{UserID: viewerID},
			Data: payloads.TaskCompletedEvent{
				TaskID:      dto.ID,
				TaskNumber:  dto.Number,
				CompletedBy: viewerID,
				CompletedAt: now,
			},
			Version:    1,
			OccurredAt: now,
		})
	})
	if err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "task_id", dto.ID.String()), "task completion event failed")
	}
	return dto, nil
}

func (s *service) Restart(ctx context.Context, viewerID, taskID uuid.UUID) (*TaskDTO, error) {
	return s.transition(ctx, viewerID, taskID,
		[]enums.TaskStatus{enums.TaskStatusOverdue}, enums.TaskStatusRunning, nil)
}

func (s *service) transition(ctx context.Context, viewerID, taskID uuid.UUID, from []enums.TaskStatus, to enums.TaskStatus, completedAt *time.Time) (*TaskDTO, error) {
	task, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	visible, err := s.canView(ctx, viewerID, task)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "task is not visible to you")
	}

	moved, err := s.repo.Transition(ctx, taskID, from, to, completedAt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "transition task")
	}
	if !moved {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("task is not in a state that allows moving to %s", to))
	}

	task, err = s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, task)
}

func (s *service) Summary(ctx context.Context, viewerID uuid.UUID) (*SummaryDTO, error) {
	teamIDs, err := s.viewerTeamIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	statusCounts, err := s.repo.CountByStatus(ctx, viewerID, teamIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count tasks by status")
	}
	priorityCounts, err := s.repo.CountByPriority(ctx, viewerID, teamIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count tasks by priority")
	}

	summary := &SummaryDTO{
		ByStatus:   map[enums.TaskStatus]int64{},
		ByPriority: map[enums.TaskPriority]int64{},
	}
	for _, status := range []enums.TaskStatus{
		enums.TaskStatusUpcoming, enums.TaskStatusRunning,
		enums.TaskStatusCompleted, enums.TaskStatusOverdue,
	} {
		summary.ByStatus[status] = 0
	}
	for _, priority := range []enums.TaskPriority{
		enums.TaskPriorityHigh, enums.TaskPriorityMedium, enums.TaskPriorityLow,
	} {
		summary.ByPriority[priority] = 0
	}
	for _, row := range statusCounts {
		summary.ByStatus[row.Status] = row.Count
		summary.Total += row.Count
	}
	for _, row := range priorityCounts {
		summary.ByPriority[row.Priority] = row.Count
	}
	return summary, nil
}

// DetectOverdue moves running tasks past their due date to overdue and
// emits one task.overdue event per task, deduplicated across sweeps.
func (s *service) DetectOverdue(ctx context.Context) (int, error) {
	now := s.now().UTC()
	candidates, err := s.repo.ListDueRunning(ctx, now)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list due tasks")
	}

	var errs error
	moved := 0
	for i := range candidates {
		task := &candidates[i]
		err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			ok, err := repo.Transition(ctx, task.ID,
				[]enums.TaskStatus{enums.TaskStatusRunning}, enums.TaskStatusOverdue, nil)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			moved++
			return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.OutboxEventTaskOverdue,
				AggregateType: enums.OutboxAggregateTask,
				AggregateID:   task.ID,
				Data: payloads.TaskOverdueEvent{
					TaskID:     task.ID,
					TaskNumber: task.Number,
					DueDate:    task.DueDate,
					DetectedAt: now,
				},
				Version:    1,
				OccurredAt: now,
			})
		})
		if err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return moved, errs
}

func (s *service) load(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "task not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load task")
	}
	return task, nil
}

func (s *service) canView(ctx context.Context, viewerID uuid.UUID, task *models.Task) (bool, error) {
	if task.CreatedBy == viewerID {
		return true, nil
	}
	if task.AssigneeID != nil && *task.AssigneeID == viewerID {
		return true, nil
	}
	if task.TeamID == nil {
		return false, nil
	}
	team, err := s.teams.FindByID(ctx, *task.TeamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load task team")
	}
	if team.HeadID == viewerID {
		return true, nil
	}
	for _, id := range team.MemberIDs {
		if id == viewerID {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) viewerTeamIDs(ctx context.Context, viewerID uuid.UUID) ([]uuid.UUID, error) {
	viewerTeams, err := s.teams.ListForUser(ctx, viewerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list viewer teams")
	}
	ids := make([]uuid.UUID, 0, len(viewerTeams))
	for i := range viewerTeams {
		ids = append(ids, viewerTeams[i].ID)
	}
	return ids, nil
}

func (s *service) resolve(ctx context.Context, task *models.Task) (*TaskDTO, error) {
	refs := refSources{
		usernames: map[uuid.UUID]string{},
		teams:     map[uuid.UUID]*models.Team{},
	}

	ids := []uuid.UUID{task.CreatedBy}
	if task.AssigneeID != nil {
		ids = append(ids, *task.AssigneeID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load task parties")
	}
	for i := range users {
		refs.usernames[users[i].ID] = users[i].Username
	}

	if task.TeamID != nil {
		team, err := s.teams.FindByID(ctx, *task.TeamID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load task team")
		}
		if team != nil {
			refs.teams[team.ID] = team
		}
	}

	return fromModel(task, refs), nil
}
