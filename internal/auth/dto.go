package auth

import (
	"github.com/jmuralla/taskhive-backend/internal/users"
	"github.com/jmuralla/taskhive-backend/pkg/enums"
)

// RegisterRequest captures the sign-up payload.
type RegisterRequest struct {
	Username string             `json:"username" validate:"required"`
	FullName string             `json:"full_name" validate:"required"`
	Email    string             `json:"email" validate:"required,email"`
	Mobile   string             `json:"mobile" validate:"required"`
	Password string             `json:"password" validate:"required"`
	Gender   string             `json:"gender" validate:"required"`
	Position enums.UserPosition `json:"position" validate:"required"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginMeta carries request metadata recorded with each sign-in.
type LoginMeta struct {
	IPAddress string
	UserAgent string
}

// LoginResponse contains the token pair and user produced by a successful login.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}
