package models

import (
	"time"

	"github.com/google/uuid"
)

// LoginRecord is an append-only trail of successful sign-ins.
type LoginRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	IPAddress string    `gorm:"column:ip_address;not null"`
	UserAgent string    `gorm:"column:user_agent;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
