package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jmuralla/taskhive-backend/pkg/db/models"
	"github.com/jmuralla/taskhive-backend/pkg/enums"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	usersTable := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL,
  mobile TEXT NOT NULL,
  gender TEXT NOT NULL,
  position TEXT NOT NULL,
  state TEXT NOT NULL DEFAULT 'active',
  avatar_url TEXT,
  team_id TEXT,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	loginRecords := `
CREATE TABLE IF NOT EXISTS login_records (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  ip_address TEXT NOT NULL,
  user_agent TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(usersTable).Error)
	require.NoError(t, db.Exec(loginRecords).Error)
	return db
}

func createTestUser(t *testing.T, repo *Repository, username string, position enums.UserPosition) *models.User {
	t.Helper()
	user, err := repo.Create(context.Background(), CreateUserDTO{
		Username:     username,
		Email:        username + "@taskhive.test",
		PasswordHash: "hash",
		FullName:     "Test User",
		Mobile:       "9876543210",
		Gender:       "female",
		Position:     position,
	})
	require.NoError(t, err)
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
		require.NoError(t, repo.db.Model(&models.User{}).
			Where("username = ?", username).
			UpdateColumn("id", user.ID).Error)
	}
	return user
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := createTestUser(t, repo, "alicehead1", enums.UserPositionHead)

	byEmail, err := repo.FindByEmail(ctx, "alicehead1@taskhive.test")
	require.NoError(t, err)
	assert.Equal(t, "alicehead1", byEmail.Username)
	assert.Equal(t, enums.UserPositionHead, byEmail.Position)
	assert.Equal(t, enums.UserStateActive, byEmail.State)

	byUsername, err := repo.FindByUsername(ctx, "alicehead1")
	require.NoError(t, err)
	assert.Equal(t, byEmail.ID, byUsername.ID)

	_, err = repo.FindByEmail(ctx, "nobody@taskhive.test")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_ = user
}

func TestRepositoryListByPosition(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	createTestUser(t, repo, "bobmember1", enums.UserPositionMember)
	createTestUser(t, repo, "carolhead1", enums.UserPositionHead)
	inactive := createTestUser(t, repo, "davemember1", enums.UserPositionMember)
	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", inactive.ID).
		UpdateColumn("state", enums.UserStateInactive).Error)

	members := enums.UserPositionMember
	got, err := repo.ListByPosition(ctx, &members)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bobmember1", got[0].Username)

	all, err := repo.ListByPosition(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRepositoryUpdateProfile(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := createTestUser(t, repo, "erinmember1", enums.UserPositionMember)

	name := "Erin Updated"
	avatar := "https://storage.test/avatars/x.png"
	require.NoError(t, repo.UpdateProfile(ctx, user.ID, UpdateProfileDTO{
		FullName:  &name,
		AvatarURL: &avatar,
	}))

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Erin Updated", got.FullName)
	require.NotNil(t, got.AvatarURL)
	assert.Equal(t, avatar, *got.AvatarURL)
	// Untouched fields survive a partial update.
	assert.Equal(t, "9876543210", got.Mobile)
}

func TestRepositoryLoginRecords(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := createTestUser(t, repo, "frankhead1", enums.UserPositionHead)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.CreateLoginRecord(ctx, &models.LoginRecord{
			ID:        uuid.New(),
			UserID:    user.ID,
			IPAddress: "10.0.0.1",
			UserAgent: "go-test",
			CreatedAt: time.Now().Add(time.Duration(i) * time.Minute),
		}))
	}

	records, err := repo.ListLoginRecords(ctx, user.ID, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].CreatedAt.After(records[1].CreatedAt))
}
