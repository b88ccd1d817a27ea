package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/jmuralla/taskhive-backend/internal/users"
	"github.com/jmuralla/taskhive-backend/pkg/config"
	"github.com/jmuralla/taskhive-backend/pkg/db"
	pkgerrors "github.com/jmuralla/taskhive-backend/pkg/errors"
	"github.com/jmuralla/taskhive-backend/pkg/security"
)

var (
	passwordPattern = regexp.MustCompile(`^[A-Za-z0-9]{7,}$`)
	hasLetter       = regexp.MustCompile(`[A-Za-z]`)
	hasDigit        = regexp.MustCompile(`[0-9]`)
)

// RegisterService handles the sign-up transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	if err := validateRegistration(&req); err != nil {
		return nil, err
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *users.UserDTO
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, req.Email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		if _, err := userRepo.FindByUsername(ctx, req.Username); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: passwordHash,
			FullName:     req.FullName,
			Mobile:       req.Mobile,
			Gender:       req.Gender,
			Position:     req.Position,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		created = users.FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func validateRegistration(req *RegisterRequest) error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	req.FullName = strings.TrimSpace(req.FullName)

	if req.Email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if req.FullName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "full name is required")
	}
	if req.Gender == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "gender is required")
	}
	if !req.Position.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "position must be head or member")
	}
	if !users.UsernamePattern.MatchString(req.Username) {
		return pkgerrors.New(pkgerrors.CodeValidation, "username must be at least 7 letters and digits")
	}
	if !users.MobilePattern.MatchString(req.Mobile) {
		return pkgerrors.New(pkgerrors.CodeValidation, "mobile must be 10 digits starting 6-9")
	}
	if !passwordPattern.MatchString(req.Password) ||
		!hasLetter.MatchString(req.Password) ||
		!hasDigit.MatchString(req.Password) {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 7 characters mixing letters and digits")
	}
	return nil
}
