package tasks

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jmuralla/taskhive-backend/internal/notifications"
	"github.com/jmuralla/taskhive-backend/pkg/db/models"
	dbtypes "github.com/jmuralla/taskhive-backend/pkg/db/types"
	"github.com/jmuralla/taskhive-backend/pkg/enums"
	pkgerrors "github.com/jmuralla/taskhive-backend/pkg/errors"
	"github.com/jmuralla/taskhive-backend/pkg/outbox"
)

var taskNumberPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{3}[A-Z]{2}$`)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeTaskRepo struct {
	tasks     map[uuid.UUID]*models.Task
	byNumber  map[string]uuid.UUID
	dueTasks  []models.Task
	statuses  []StatusCount
	priors    []PriorityCount
	listFn    func(viewerID uuid.UUID, teamIDs []uuid.UUID, status *enums.TaskStatus) ([]models.Task, error)
	deleteErr error
	deleted   []uuid.UUID
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{
		tasks:    map[uuid.UUID]*models.Task{},
		byNumber: map[string]uuid.UUID{},
	}
}

func (f *fakeTaskRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeTaskRepo) Create(ctx context.Context, task *models.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	task.CreatedAt = time.Now().UTC()
	f.tasks[task.ID] = task
	f.byNumber[task.Number] = task.ID
	return nil
}

func (f *fakeTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskRepo) FindByNumber(ctx context.Context, number string) (*models.Task, error) {
	id, ok := f.byNumber[number]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f.FindByID(ctx, id)
}

func (f *fakeTaskRepo) ListVisible(ctx context.Context, viewerID uuid.UUID, teamIDs []uuid.UUID, status *enums.TaskStatus) ([]models.Task, error) {
	if f.listFn != nil {
		return f.listFn(viewerID, teamIDs, status)
	}
	return nil, nil
}

func (f *fakeTaskRepo) Transition(ctx context.Context, id uuid.UUID, from []enums.TaskStatus, to enums.TaskStatus, completedAt *time.Time) (bool, error) {
	task, ok := f.tasks[id]
	if !ok {
		return false, nil
	}
	allowed := false
	for _, status := range from {
		if task.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, nil
	}
	task.Status = to
	task.CompletedAt = completedAt
	return true, nil
}

func (f *fakeTaskRepo) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	task, ok := f.tasks[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["title"]; ok {
		task.Title = v.(string)
	}
	if v, ok := updates["description"]; ok {
		task.Description = v.(string)
	}
	if v, ok := updates["priority"]; ok {
		task.Priority = v.(enums.TaskPriority)
	}
	if v, ok := updates["due_date"]; ok {
		task.DueDate = v.(time.Time)
	}
	if v, ok := updates["start_date"]; ok {
		task.StartDate = v.(time.Time)
	}
	return nil
}

func (f *fakeTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskRepo) ListDueRunning(ctx context.Context, before time.Time) ([]models.Task, error) {
	return f.dueTasks, nil
}

func (f *fakeTaskRepo) CountByStatus(ctx context.Context, viewerID uuid.UUID, teamIDs []uuid.UUID) ([]StatusCount, error) {
	return f.statuses, nil
}

func (f *fakeTaskRepo) CountByPriority(ctx context.Context, viewerID uuid.UUID, teamIDs []uuid.UUID) ([]PriorityCount, error) {
	return f.priors, nil
}

type fakeTeamLookup struct {
	teams map[uuid.UUID]*models.Team
}

func (f *fakeTeamLookup) FindByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	team, ok := f.teams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return team, nil
}

func (f *fakeTeamLookup) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Team, error) {
	var out []models.Team
	for _, team := range f.teams {
		if team.HeadID == userID {
			out = append(out, *team)
			continue
		}
		for _, id := range team.MemberIDs {
			if id == userID {
				out = append(out, *team)
				break
			}
		}
	}
	return out, nil
}

type fakeUserLookup struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeUserLookup) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserLookup) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			out = append(out, *user)
		}
	}
	return out, nil
}

type fakeTaskEmitter struct {
	events     []outbox.DomainEvent
	dedupKeys  []string
	emitErr    error
	dedupCalls int
}

func (f *fakeTaskEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if f.emitErr != nil {
		return f.emitErr
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeTaskEmitter) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.dedupCalls++
	f.events = append(f.events, event)
	f.dedupKeys = append(f.dedupKeys, string(event.EventType)+":"+event.AggregateID.String())
	return nil
}

type fakeTaskNotifier struct {
	inputs []notifications.RecordInput
	err    error
}

func (f *fakeTaskNotifier) Record(ctx context.Context, input notifications.RecordInput) (*models.NotificationRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, input)
	return &models.NotificationRecord{ID: uuid.New()}, nil
}

type tasksTestSetup struct {
	service  Service
	repo     *fakeTaskRepo
	teams    *fakeTeamLookup
	users    *fakeUserLookup
	emitter  *fakeTaskEmitter
	notifier *fakeTaskNotifier
	now      time.Time
}

func newTasksTestSetup(t *testing.T) *tasksTestSetup {
	t.Helper()
	setup := &tasksTestSetup{
		repo:     newFakeTaskRepo(),
		teams:    &fakeTeamLookup{teams: map[uuid.UUID]*models.Team{}},
		users:    &fakeUserLookup{users: map[uuid.UUID]*models.User{}},
		emitter:  &fakeTaskEmitter{},
		notifier: &fakeTaskNotifier{},
		now:      time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
	}
	svc, err := NewService(ServiceParams{
		TxRunner: stubTxRunner{},
		Repo:     setup.repo,
		Teams:    setup.teams,
		Users:    setup.users,
		Outbox:   setup.emitter,
		Notifier: setup.notifier,
		Now:      func() time.Time { return setup.now },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	setup.service = svc
	return setup
}

func (s *tasksTestSetup) addUser(t *testing.T, username string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	s.users.users[id] = &models.User{ID: id, Username: username, State: enums.UserStateActive}
	return id
}

func (s *tasksTestSetup) addTeam(t *testing.T, name string, headID uuid.UUID, memberIDs ...uuid.UUID) uuid.UUID {
	t.Helper()
	slots := make(dbtypes.UUIDArray, models.TeamSize)
	copy(slots, memberIDs)
	id := uuid.New()
	s.teams.teams[id] = &models.Team{ID: id, Name: name, HeadID: headID, MemberIDs: slots}
	return id
}

func validCreateRequest(assigneeID uuid.UUID) CreateTaskRequest {
	start := time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC)
	return CreateTaskRequest{
		Title:       "Quarterly report",
		Type:        "reporting",
		Description: "Compile Q1 numbers",
		Status:      enums.TaskStatusUpcoming,
		Priority:    enums.TaskPriorityHigh,
		AssigneeID:  &assigneeID,
		StartDate:   start,
		DueDate:     start.AddDate(0, 0, 7),
	}
}

func TestCreateTaskIndividual(t *testing.T) {
	setup := newTasksTestSetup(t)
	headID := setup.addUser(t, "headuser1")
	memberID := setup.addUser(t, "member001")

	dto, err := setup.service.Create(context.Background(),
		Actor{ID: headID, Position: enums.UserPositionHead}, validCreateRequest(memberID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !taskNumberPattern.MatchString(dto.Number) {
		t.Fatalf("task number %q does not match pattern", dto.Number)
	}
	if dto.Status != enums.TaskStatusUpcoming {
		t.Fatalf("expected upcoming status, got %s", dto.Status)
	}
	if dto.Assignee == nil || dto.Assignee.Username != "member001" {
		t.Fatalf("expected resolved assignee username, got %+v", dto.Assignee)
	}
	if dto.CreatedBy.Username != "headuser1" {
		t.Fatalf("expected resolved creator username, got %+v", dto.CreatedBy)
	}

	if len(setup.emitter.events) != 1 {
		t.Fatalf("expected one outbox event, got %d", len(setup.emitter.events))
	}
	if setup.emitter.events[0].EventType != enums.OutboxEventTaskCreated {
		t.Fatalf("expected task.created event, got %s", setup.emitter.events[0].EventType)
	}

	if len(setup.notifier.inputs) != 1 {
		t.Fatalf("expected one notification, got %d", len(setup.notifier.inputs))
	}
	input := setup.notifier.inputs[0]
	if input.FromUserID != headID {
		t.Fatalf("notification origin should be the head")
	}
	if input.ToMemberID == nil || *input.ToMemberID != memberID {
		t.Fatalf("notification should target the assignee")
	}
	if len(input.ToTeamMemberIDs) != 0 {
		t.Fatalf("individual assignment must not carry team recipients")
	}
}

func TestCreateTaskTeamNotifiesFilledSlots(t *testing.T) {
	setup := newTasksTestSetup(t)
	headID := setup.addUser(t, "headuser1")
	m1 := setup.addUser(t, "member001")
	m2 := setup.addUser(t, "member002")
	teamID := setup.addTeam(t, "Falcons", headID, m1, m2)

	req := validCreateRequest(uuid.Nil)
	req.AssigneeID = nil
	req.TeamID = &teamID

	dto, err := setup.service.Create(context.Background(),
		Actor{ID: headID, Position: enums.UserPositionHead}, req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if dto.Team == nil || dto.Team.Name != "Falcons" {
		t.Fatalf("expected resolved team ref, got %+v", dto.Team)
	}

	if len(setup.notifier.inputs) != 1 {
		t.Fatalf("expected one notification, got %d", len(setup.notifier.inputs))
	}
	got := setup.notifier.inputs[0].ToTeamMemberIDs
	if len(got) != 2 {
		t.Fatalf("expected the two filled slots as recipients, got %d", len(got))
	}
	if got[0] != m1 || got[1] != m2 {
		t.Fatalf("team recipients out of order: %v", got)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	setup := newTasksTestSetup(t)
	headID := setup.addUser(t, "headuser1")
	memberID := setup.addUser(t, "member001")
	actor := Actor{ID: headID, Position: enums.UserPositionHead}

	cases := []struct {
		name   string
		mutate func(*CreateTaskRequest)
		code   pkgerrors.Code
	}{
		{"missing title", func(r *CreateTaskRequest) { r.Title = "" }, pkgerrors.CodeValidation},
		{"completed status", func(r *CreateTaskRequest) { r.Status = enums.TaskStatusCompleted }, pkgerrors.CodeValidation},
		{"overdue status", func(r *CreateTaskRequest) { r.Status = enums.TaskStatusOverdue }, pkgerrors.CodeValidation},
		{"bad priority", func(r *CreateTaskRequest) { r.Priority = "Urgent" }, pkgerrors.CodeValidation},
		{"due before start", func(r *CreateTaskRequest) { r.DueDate = r.StartDate.AddDate(0, 0, -1) }, pkgerrors.CodeValidation},
		{"no assignee and no team", func(r *CreateTaskRequest) { r.AssigneeID = nil }, pkgerrors.CodeValidation},
		{"both assignee and team", func(r *CreateTaskRequest) {
			teamID := uuid.New()
			r.TeamID = &teamID
		}, pkgerrors.CodeValidation},
		{"unknown assignee", func(r *CreateTaskRequest) {
			unknown := uuid.New()
			r.AssigneeID = &unknown
		}, pkgerrors.CodeValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateRequest(memberID)
			tc.mutate(&req)
			_, err := setup.service.Create(context.Background(), actor, req)
			if err == nil {
				t.Fatal("expected error")
			}
			if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != tc.code {
				t.Fatalf("expected code %s, got %v", tc.code, err)
			}
		})
	}
}

func TestCreateTaskForbiddenForMember(t *testing.T) {
	setup := newTasksTestSetup(t)
	memberID := setup.addUser(t, "member001")

	_, err := setup.service.Create(context.Background(),
		Actor{ID: memberID, Position: enums.UserPositionMember}, validCreateRequest(memberID))
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestGetTaskVisibility(t *testing.T) {
	setup := newTasksTestSetup(t)
	headID := setup.addUser(t, "headuser1")
	memberID := setup.addUser(t, "member001")
	teammateID := setup.addUser(t, "member002")
	outsiderID := setup.addUser(t, "outsider1")
	teamID := setup.addTeam(t, "Falcons", headID, memberID, teammateID)

	task := &models.Task{
		Number: "AB123CD", Title: "t", Type: "ops", Status: enums.TaskStatusRunning,
		Priority: enums.TaskPriorityLow, CreatedBy: headID, TeamID: &teamID,
		StartDate: setup.now, DueDate: setup.now.AddDate(0, 0, 1),
	}
	if err := setup.repo.Create(context.Background(), task); err != nil {
		t.Fatalf("seed: %v", err)
	}

	for _, viewer := range []uuid.UUID{headID, memberID, teammateID} {
		if _, err := setup.service.Get(context.Background(), viewer, task.ID); err != nil {
			t.Fatalf("viewer %s should see the task: %v", viewer, err)
		}
	}

	_, err := setup.service.Get(context.Background(), outsiderID, task.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for outsider, got %v", err)
	}
}

func TestTaskTransitions(t *testing.T) {
	setup := newTasksTestSetup(t)
	headID := setup.addUser(t, "headuser1")
	memberID := setup.addUser(t, "member001")

	task := &models.Task{
		Number: "AB123CD", Title: "t", Type: "ops", Status: enums.TaskStatusUpcoming,
		Priority: enums.TaskPriorityLow, CreatedBy: headID, AssigneeID: &memberID,
		StartDate: setup.now, DueDate: setup.now.AddDate(0, 0, 1),
	}
	if err := setup.repo.Create(context.Background(), task); err != nil {
		t.Fatalf("seed: %v", err)
	}

	dto, err := setup.service.Start(context.Background(), memberID, task.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if dto.Status != enums.TaskStatusRunning {
		t.Fatalf("expected running after start, got %s", dto.Status)
	}

	// A second start has no allowed source state.
	if _, err := setup.service.Start(context.Background(), memberID, task.ID); err == nil {
		t.Fatal("starting a running task should fail")
	}

	dto, err = setup.service.Complete(context.Background(), memberID, task.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if dto.Status != enums.TaskStatusCompleted {
		t.Fatalf("expected completed, got %s", dto.Status)
	}
	if dto.CompletedAt == nil || !dto.CompletedAt.Equal(setup.now) {
		t.Fatalf("expected completion timestamp %s, got %v", setup.now, dto.CompletedAt)
	}
	if len(setup.emitter.events) != 1 || setup.emitter.events[0].EventType != enums.OutboxEventTaskCompleted {
		t.Fatalf("expected a task.completed event, got %+v", setup.emitter.events)
	}
}

func TestRestartOnlyFromOverdue(t *testing.T) {
	setup := newTasksTestSetup(t)
	headID := setup.addUser(t, "headuser1")
	memberID := setup.addUser(t, "member001")

	task := &models.Task{
		Number: "AB123CD", Title: "t", Type: "ops", Status: enums.TaskStatusOverdue,
		Priority: enums.TaskPriorityLow, CreatedBy: headID, AssigneeID: &memberID,
		StartDate: setup.now.AddDate(0, 0, -7), DueDate: setup.now.AddDate(0, 0, -1),
	}
	if err := setup.repo.Create(context.Background(), task); err != nil {
		t.Fatalf("seed: %v", err)
	}

	dto, err := setup.service.Restart(context.Background(), memberID, task.ID)
	if err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if dto.Status != enums.TaskStatusRunning {
		t.Fatalf("expected running after restart, got %s", dto.Status)
	}

	if _, err := setup.service.Restart(context.Background(), memberID, task.ID); err == nil {
		t.Fatal("restarting a running task should fail")
	}
}

func TestUpdateHeadOnlyAndDateCoherence(t *testing.T) {
	setup := newTasksTestSetup(t)
	headID := setup.addUser(t, "headuser1")
	memberID := setup.addUser(t, "member001")

	task := &models.Task{
		Number: "AB123CD", Title: "t", Type: "ops", Status: enums.TaskStatusUpcoming,
		Priority: enums.TaskPriorityLow, CreatedBy: headID, AssigneeID: &memberID,
		StartDate: setup.now, DueDate: setup.now.AddDate(0, 0, 5),
	}
	if err := setup.repo.Create(context.Background(), task); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := setup.service.Update(context.Background(),
		Actor{ID: memberID, Position: enums.UserPositionMember}, task.ID, UpdateTaskRequest{})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("member edit should be forbidden, got %v", err)
	}

	badDue := setup.now.AddDate(0, 0, -1)
	_, err = setup.service.Update(context.Background(),
		Actor{ID: headID, Position: enums.UserPositionHead}, task.ID, UpdateTaskRequest{DueDate: &badDue})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("due-before-start should be rejected, got %v", err)
	}

	newTitle := "Quarterly report v2"
	newPriority := enums.TaskPriorityMedium
	dto, err := setup.service.Update(context.Background(),
		Actor{ID: headID, Position: enums.UserPositionHead}, task.ID,
		UpdateTaskRequest{Title: &newTitle, Priority: &newPriority})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if dto.Title != newTitle || dto.Priority != newPriority {
		t.Fatalf("update not applied: %+v", dto)
	}
}

func TestDeleteHeadOnly(t *testing.T) {
	setup := newTasksTestSetup(t)
	headID := setup.addUser(t, "headuser1")
	memberID := setup.addUser(t, "member001")

	task := &models.Task{
		Number: "AB123CD", Title: "t", Type: "ops", Status: enums.TaskStatusUpcoming,
		Priority: enums.TaskPriorityLow, CreatedBy: headID, AssigneeID: &memberID,
		StartDate: setup.now, DueDate: setup.now.AddDate(0, 0, 1),
	}
	if err := setup.repo.Create(context.Background(), task); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := setup.service.Delete(context.Background(),
		Actor{ID: memberID, Position: enums.UserPositionMember}, task.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("member delete should be forbidden, got %v", err)
	}

	if err := setup.service.Delete(context.Background(),
		Actor{ID: headID, Position: enums.UserPositionHead}, task.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(setup.repo.deleted) != 1 || setup.repo.deleted[0] != task.ID {
		t.Fatalf("expected one delete for the task, got %v", setup.repo.deleted)
	}
}

func TestDetectOverdueMovesAndDedupes(t *testing.T) {
	setup := newTasksTestSetup(t)
	headID := setup.addUser(t, "headuser1")
	memberID := setup.addUser(t, "member001")

	pastDue := &models.Task{
		Number: "AB123CD", Title: "late", Type: "ops", Status: enums.TaskStatusRunning,
		Priority: enums.TaskPriorityHigh, CreatedBy: headID, AssigneeID: &memberID,
		StartDate: setup.now.AddDate(0, 0, -7), DueDate: setup.now.AddDate(0, 0, -1),
	}
	if err := setup.repo.Create(context.Background(), pastDue); err != nil {
		t.Fatalf("seed: %v", err)
	}
	setup.repo.dueTasks = []models.Task{*pastDue}

	moved, err := setup.service.DetectOverdue(context.Background())
	if err != nil {
		t.Fatalf("DetectOverdue: %v", err)
	}
	if moved != 1 {
		t.Fatalf("expected one task moved, got %d", moved)
	}
	if setup.repo.tasks[pastDue.ID].Status != enums.TaskStatusOverdue {
		t.Fatalf("task should be overdue, got %s", setup.repo.tasks[pastDue.ID].Status)
	}
	if setup.emitter.dedupCalls != 1 {
		t.Fatalf("overdue event should go through the deduplicated emit, got %d calls", setup.emitter.dedupCalls)
	}

	// The second sweep finds the task already moved; the guarded update
	// leaves it alone and no further event is queued.
	moved, err = setup.service.DetectOverdue(context.Background())
	if err != nil {
		t.Fatalf("DetectOverdue second pass: %v", err)
	}
	if moved != 0 {
		t.Fatalf("expected no moves on the second pass, got %d", moved)
	}
	if len(setup.emitter.events) != 1 {
		t.Fatalf("expected a single overdue event overall, got %d", len(setup.emitter.events))
	}
}

func TestListOverdueRunsSweepFirst(t *testing.T) {
	setup := newTasksTestSetup(t)
	headID := setup.addUser(t, "headuser1")
	memberID := setup.addUser(t, "member001")

	pastDue := &models.Task{
		Number: "AB123CD", Title: "late", Type: "ops", Status: enums.TaskStatusRunning,
		Priority: enums.TaskPriorityHigh, CreatedBy: headID, AssigneeID: &memberID,
		StartDate: setup.now.AddDate(0, 0, -7), DueDate: setup.now.AddDate(0, 0, -1),
	}
	if err := setup.repo.Create(context.Background(), pastDue); err != nil {
		t.Fatalf("seed: %v", err)
	}
	setup.repo.dueTasks = []models.Task{*pastDue}
	setup.repo.listFn = func(viewerID uuid.UUID, teamIDs []uuid.UUID, status *enums.TaskStatus) ([]models.Task, error) {
		var out []models.Task
		for _, task := range setup.repo.tasks {
			if status == nil || task.Status == *status {
				out = append(out, *task)
			}
		}
		return out, nil
	}

	overdue := enums.TaskStatusOverdue
	dtos, err := setup.service.List(context.Background(), memberID, &overdue)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(dtos) != 1 {
		t.Fatalf("expected the swept task in the overdue list, got %d entries", len(dtos))
	}
	if dtos[0].Status != enums.TaskStatusOverdue {
		t.Fatalf("listed task should be overdue, got %s", dtos[0].Status)
	}
}

func TestSummaryFillsAllBuckets(t *testing.T) {
	setup := newTasksTestSetup(t)
	viewerID := setup.addUser(t, "member001")
	setup.repo.statuses = []StatusCount{
		{Status: enums.TaskStatusRunning, Count: 3},
		{Status: enums.TaskStatusCompleted, Count: 2},
	}
	setup.repo.priors = []PriorityCount{
		{Priority: enums.TaskPriorityHigh, Count: 4},
	}

	summary, err := setup.service.Summary(context.Background(), viewerID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Total != 5 {
		t.Fatalf("expected total 5, got %d", summary.Total)
	}
	if summary.ByStatus[enums.TaskStatusUpcoming] != 0 || summary.ByStatus[enums.TaskStatusOverdue] != 0 {
		t.Fatal("empty buckets should still be present with zero counts")
	}
	if summary.ByStatus[enums.TaskStatusRunning] != 3 {
		t.Fatalf("running count wrong: %d", summary.ByStatus[enums.TaskStatusRunning])
	}
	if summary.ByPriority[enums.TaskPriorityHigh] != 4 || summary.ByPriority[enums.TaskPriorityLow] != 0 {
		t.Fatalf("priority counts wrong: %+v", summary.ByPriority)
	}
}

func TestNotifierFailureDoesNotFailCreate(t *testing.T) {
	setup := newTasksTestSetup(t)
	headID := setup.addUser(t, "headuser1")
	memberID := setup.addUser(t, "member001")
	setup.notifier.err = pkgerrors.New(pkgerrors.CodeDependency, "redis down")

	dto, err := setup.service.Create(context.Background(),
		Actor{ID: headID, Position: enums.UserPositionHead}, validCreateRequest(memberID))
	if err != nil {
		t.Fatalf("Create should survive a notifier failure: %v", err)
	}
	if dto == nil {
		t.Fatal("expected the created task back")
	}
}
