package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/jmuralla/taskhive-backend/pkg/db/models"
	"github.com/jmuralla/taskhive-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID          `json:"id"`
	Username    string             `json:"username"`
	Email       string             `json:"email"`
	FullName    string             `json:"full_name"`
	Mobile      string             `json:"mobile"`
	Gender      string             `json:"gender"`
	Position    enums.UserPosition `json:"position"`
	State       enums.UserState    `json:"state"`
	AvatarURL   *string            `json:"avatar_url,omitempty"`
	TeamID      *uuid.UUID         `json:"team_id,omitempty"`
	LastLoginAt *time.Time         `json:"last_login_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Mobile       string
	Gender       string
	Position     enums.UserPosition
}

// UpdateProfileDTO carries the mutable profile fields; nil means unchanged.
type UpdateProfileDTO struct {
	FullName  *string
	Mobile    *string
	Gender    *string
	AvatarURL *string
}

// LoginRecordDTO is one entry of the login history list.
type LoginRecordDTO struct {
	ID        uuid.UUID `json:"id"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		Mobile:      u.Mobile,
		Gender:      u.Gender,
		Position:    u.Position,
		State:       u.State,
		AvatarURL:   u.AvatarURL,
		TeamID:      u.TeamID,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func loginRecordFromModel(r *models.LoginRecord) LoginRecordDTO {
	return LoginRecordDTO{
		ID:        r.ID,
		IPAddress: r.IPAddress,
		UserAgent: r.UserAgent,
		CreatedAt: r.CreatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Username:     c.Username,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		FullName:     c.FullName,
		Mobile:       c.Mobile,
		Gender:       c.Gender,
		Position:     c.Position,
		State:        enums.UserStateActive,
	}
}
