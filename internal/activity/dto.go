package activity

import (
	"time"

	"github.com/google/uuid"

	"github.com/jmuralla/taskhive-backend/pkg/db/models"
	"github.com/jmuralla/taskhive-backend/pkg/enums"
)

// EntryDTO is the transport shape of one activity trail row.
type EntryDTO struct {
	ID            uuid.UUID                 `json:"id"`
	EventType     enums.OutboxEventType     `json:"event_type"`
	AggregateType enums.OutboxAggregateType `json:"aggregate_type"`
	AggregateID   uuid.UUID                 `json:"aggregate_id"`
	ActorID       uuid.UUID                 `json:"actor_id"`
	Summary       string                    `json:"summary"`
	OccurredAt    time.Time                 `json:"occurred_at"`
}

func fromModel(entry *models.ActivityEntry) EntryDTO {
	return EntryDTO{
		ID:            entry.ID,
		EventType:     entry.EventType,
		AggregateType: entry.AggregateType,
		AggregateID:   entry.AggregateID,
		ActorID:       entry.ActorID,
		Summary:       entry.Summary,
		OccurredAt:    entry.OccurredAt,
	}
}
