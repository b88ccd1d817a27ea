package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jmuralla/taskhive-backend/pkg/enums"
)

// ActivityEntry is a consumer-side projection of a domain event, kept
// for the audit trail views.
type ActivityEntry struct {
	ID            uuid.UUID                 `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EventID       uuid.UUID                 `gorm:"column:event_id;type:uuid;not null;uniqueIndex"`
	EventType     enums.OutboxEventType     `gorm:"column:event_type;type:event_type_enum;not null"`
	AggregateType enums.OutboxAggregateType `gorm:"column:aggregate_type;type:aggregate_type_enum;not null"`
	AggregateID   uuid.UUID                 `gorm:"column:aggregate_id;type:uuid;not null;index"`
	ActorID       uuid.UUID                 `gorm:"column:actor_id;type:uuid;not null;index"`
	Summary       string                    `gorm:"column:summary;not null"`
	OccurredAt    time.Time                 `gorm:"column:occurred_at;type:timestamptz;not null"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
