package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jmuralla/taskhive-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Position enums.UserPosition
	TeamID   *uuid.UUID
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID   uuid.UUID          `json:"user_id"`
	Position enums.UserPosition `json:"position"`
	TeamID   *uuid.UUID         `json:"team_id,omitempty"`
	jwt.RegisteredClaims
}
