package users

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jmuralla/taskhive-backend/pkg/db/models"
	"github.com/jmuralla/taskhive-backend/pkg/enums"
	pkgerrors "github.com/jmuralla/taskhive-backend/pkg/errors"
)

var avatarExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

type gcsClient interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
}

// Service exposes profile, directory, and avatar-presign semantics.
type Service interface {
	Profile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, dto UpdateProfileDTO) (*UserDTO, error)
	Directory(ctx context.Context, position *enums.UserPosition) ([]UserDTO, error)
	LoginHistory(ctx context.Context, userID uuid.UUID, limit int) ([]LoginRecordDTO, error)
	PresignAvatar(ctx context.Context, userID uuid.UUID, contentType string) (*AvatarPresignOutput, error)
}

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, dto UpdateProfileDTO) error
	ListByPosition(ctx context.Context, position *enums.UserPosition) ([]models.User, error)
	ListLoginRecords(ctx context.Context, userID uuid.UUID, limit int) ([]models.LoginRecord, error)
}

type service struct {
	repo        userRepository
	gcs         gcsClient
	bucket      string
	uploadTTL   time.Duration
	downloadTTL time.Duration
}

// ServiceParams packages the users service dependencies.
type ServiceParams struct {
	Repo        userRepository
	GCS         gcsClient
	Bucket      string
	UploadTTL   time.Duration
	DownloadTTL time.Duration
}

// NewService constructs the users service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.UploadTTL <= 0 {
		params.UploadTTL = 15 * time.Minute
	}
	if params.DownloadTTL <= 0 {
		params.DownloadTTL = time.Hour
	}
	return &service{
		repo:        params.Repo,
		gcs:         params.GCS,
		bucket:      params.Bucket,
		uploadTTL:   params.UploadTTL,
		downloadTTL: params.DownloadTTL,
	}, nil
}

func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, dto UpdateProfileDTO) (*UserDTO, error) {
	if dto.Mobile != nil && !MobilePattern.MatchString(*dto.Mobile) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mobile must be 10 digits starting 6-9")
	}
	if dto.FullName != nil && *dto.FullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name cannot be empty")
	}

	if err := s.repo.UpdateProfile(ctx, userID, dto); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
	}
	return s.Profile(ctx, userID)
}

func (s *service) Directory(ctx context.Context, position *enums.UserPosition) ([]UserDTO, error) {
	if position != nil && !position.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid position filter")
	}
	users, err := s.repo.ListByPosition(ctx, position)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, *FromModel(&users[i]))
	}
	return out, nil
}

func (s *service) LoginHistory(ctx context.Context, userID uuid.UUID, limit int) ([]LoginRecordDTO, error) {
	records, err := s.repo.ListLoginRecords(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list login records")
	}
	out := make([]LoginRecordDTO, 0, len(records))
	for i := range records {
		out = append(out, loginRecordFromModel(&records[i]))
	}
	return out, nil
}

// AvatarPresignOutput is returned to the client for a direct-to-bucket upload.
type AvatarPresignOutput struct {
	UploadURL string `json:"upload_url"`
	AvatarURL string `json:"avatar_url"`
	ObjectKey string `json:"object_key"`
}

func (s *service) PresignAvatar(ctx context.Context, userID uuid.UUID, contentType string) (*AvatarPresignOutput, error) {
	if s.gcs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "avatar storage not configured")
	}
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported avatar content type")
	}

	objectKey := path.Join("avatars", userID.String(), fmt.Sprintf("%s.%s", uuid.NewString(), ext))
	uploadURL, err := s.gcs.SignedURL(s.bucket, objectKey, contentType, s.uploadTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sign avatar upload url")
	}
	avatarURL, err := s.gcs.SignedReadURL(s.bucket, objectKey, s.downloadTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sign avatar read url")
	}

	return &AvatarPresignOutput{
		UploadURL: uploadURL,
		AvatarURL: avatarURL,
		ObjectKey: objectKey,
	}, nil
}
