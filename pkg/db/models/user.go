package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jmuralla/taskhive-backend/pkg/enums"
)

// User represents the canonical identity entity. Heads create teams and
// tasks; members belong to at most one team.
type User struct {
	ID           uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username     string             `gorm:"type:text;not null;uniqueIndex"`
	Email        string             `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string             `gorm:"column:password_hash;not null"`
	FullName     string             `gorm:"column:full_name;not null"`
	Mobile       string             `gorm:"column:mobile;not null"`
	Gender       string             `gorm:"column:gender;not null"`
	Position     enums.UserPosition `gorm:"column:position;type:user_position;not null"`
	State        enums.UserState    `gorm:"column:state;type:user_state;not null;default:'active'"`
	AvatarURL    *string            `gorm:"column:avatar_url"`
	TeamID       *uuid.UUID         `gorm:"column:team_id;type:uuid"`
	LastLoginAt  *time.Time         `gorm:"column:last_login_at"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
