package activity

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

func setupActivityTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS activity_entries (
  id TEXT PRIMARY KEY,
  event_id TEXT NOT NULL UNIQUE,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  actor_id TEXT NOT NULL,
  summary TEXT NOT NULL,
  occurred_at DATETIME NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newEntry(actorID uuid.UUID, occurredAt time.Time) *models.ActivityEntry {
	return &models.ActivityEntry{
		ID:            uuid.New(),
		EventID:       uuid.New(),
		EventType:     enums.OutboxEventTaskCreated,
		AggregateType: enums.OutboxAggregateTask,
		AggregateID:   uuid.New(),
		ActorID:       actorID,
		Summary:       "Task AB123CD created",
		OccurredAt:    occurredAt,
	}
}

func TestRepositoryInsertSkipsDuplicateEvent(t *testing.T) {
	db := setupActivityTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	entry := newEntry(uuid.New(), time.Now().UTC())
	require.NoError(t, repo.Insert(ctx, entry))

	duplicate := newEntry(entry.ActorID, entry.OccurredAt)
	duplicate.EventID = entry.EventID
	require.NoError(t, repo.Insert(ctx, duplicate), "redelivered event must not error")

	entries, err := repo.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRepositoryListNewestFirstWithLimit(t *testing.T) {
	db := setupActivityTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Insert(ctx, newEntry(uuid.New(), base.Add(time.Duration(i)*time.Hour))))
	}

	entries, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].OccurredAt.After(entries[1].OccurredAt))
}

func TestRepositoryListForActor(t *testing.T) {
	db := setupActivityTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	actor := uuid.New()
	now := time.Now().UTC()
	require.NoError(t, repo.Insert(ctx, newEntry(actor, now)))
	require.NoError(t, repo.Insert(ctx, newEntry(uuid.New(), now)))

	entries, err := repo.ListForActor(ctx, actor, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, actor, entries[0].ActorID)
}
