package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/jmuralla/taskhive-backend/pkg/db/types"
)

// TeamSize is the fixed number of member slots every team carries.
const TeamSize = 5

// Team groups exactly TeamSize members under one head. MemberIDs keeps
// slot order; unfilled slots hold the zero UUID.
type Team struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Code      string            `gorm:"type:text;not null;uniqueIndex"`
	Name      string            `gorm:"type:text;not null"`
	Type      string            `gorm:"type:text;not null"`
	HeadID    uuid.UUID         `gorm:"column:head_id;type:uuid;not null;index"`
	MemberIDs dbtypes.UUIDArray `gorm:"type:uuid[];column:member_ids;not null;default:ARRAY[]::uuid[]"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
