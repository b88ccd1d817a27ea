package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jmuralla/taskhive-backend/pkg/config"
	"github.com/jmuralla/taskhive-backend/pkg/db/models"
	"github.com/jmuralla/taskhive-backend/pkg/enums"
	pkgerrors "github.com/jmuralla/taskhive-backend/pkg/errors"
	"github.com/jmuralla/taskhive-backend/pkg/security"
)

type fakeUserRepo struct {
	user *models.User
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.user != nil && f.user.Email == email {
		copied := *f.user
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeJournal struct {
	calls int
	meta  LoginMeta
	err   error
}

func (f *fakeJournal) RecordLogin(ctx context.Context, user *models.User, meta LoginMeta) (time.Time, error) {
	f.calls++
	f.meta = meta
	if f.err != nil {
		return time.Time{}, f.err
	}
	return time.Now().UTC(), nil
}

type fakeSessionManager struct {
	lastAccessID string
}

func (f *fakeSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	f.lastAccessID = accessID
	return "refresh-token", nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-test-secret-test-secret",
		Issuer:            "taskhive",
		ExpirationMinutes: 15,
	}
}

func newLoginService(t *testing.T, repo userRepository, journal loginJournal, sessions sessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		Journal:        journal,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func activeUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Username:     "grace2024",
		Email:        "grace@taskhive.test",
		PasswordHash: hash,
		FullName:     "Grace",
		Mobile:       "9876543210",
		Gender:       "female",
		Position:     enums.UserPositionHead,
		State:        enums.UserStateActive,
	}
}

func TestLoginSuccess(t *testing.T) {
	user := activeUser(t, "passw0rd1")
	journal := &fakeJournal{}
	sessions := &fakeSessionManager{}
	svc := newLoginService(t, &fakeUserRepo{user: user}, journal, sessions)

	resp, err := svc.Login(context.Background(),
		LoginRequest{Email: "Grace@taskhive.test", Password: "passw0rd1"},
		LoginMeta{IPAddress: "10.1.2.3", UserAgent: "go-test"},
	)
	if err != nil {
		t.Fatalf("unexpected login error: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if resp.User == nil || resp.User.ID != user.ID {
		t.Fatal("expected user in response")
	}
	if resp.User.Email != "grace@taskhive.test" {
		t.Fatalf("unexpected email %q", resp.User.Email)
	}
	if journal.calls != 1 {
		t.Fatalf("expected 1 journal call, got %d", journal.calls)
	}
	if journal.meta.IPAddress != "10.1.2.3" {
		t.Fatalf("expected login meta recorded, got %+v", journal.meta)
	}
	if sessions.lastAccessID == "" {
		t.Fatal("expected session generated with access id")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	user := activeUser(t, "passw0rd1")
	journal := &fakeJournal{}
	svc := newLoginService(t, &fakeUserRepo{user: user}, journal, &fakeSessionManager{})

	_, err := svc.Login(context.Background(),
		LoginRequest{Email: "grace@taskhive.test", Password: "wrongpass1"},
		LoginMeta{},
	)
	if err == nil {
		t.Fatal("expected unauthorized error")
	}
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized code, got %s", code)
	}
	if journal.calls != 0 {
		t.Fatal("failed login must not be journaled")
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newLoginService(t, &fakeUserRepo{}, &fakeJournal{}, &fakeSessionManager{})

	_, err := svc.Login(context.Background(),
		LoginRequest{Email: "nobody@taskhive.test", Password: "passw0rd1"},
		LoginMeta{},
	)
	if err == nil {
		t.Fatal("expected unauthorized error")
	}
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized code, got %s", code)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	user := activeUser(t, "passw0rd1")
	user.State = enums.UserStateInactive
	svc := newLoginService(t, &fakeUserRepo{user: user}, &fakeJournal{}, &fakeSessionManager{})

	_, err := svc.Login(context.Background(),
		LoginRequest{Email: "grace@taskhive.test", Password: "passw0rd1"},
		LoginMeta{},
	)
	if err == nil {
		t.Fatal("expected unauthorized error for inactive account")
	}
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized code, got %s", code)
	}
}
