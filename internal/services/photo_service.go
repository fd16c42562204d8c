package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aksi-clean/api/internal/platform/auth"
	"github.com/aksi-clean/api/internal/platform/storage"
	"github.com/aksi-clean/api/internal/platform/textutil"
)

var (
	// ErrPhotoInvalidInput indicates a malformed photo URL request.
	ErrPhotoInvalidInput = errors.New("photo: invalid input")
	// ErrPhotoForbidden indicates the caller may not access the object.
	ErrPhotoForbidden = errors.New("photo: forbidden")
	// ErrPhotoUnavailable indicates URL signing failed.
	ErrPhotoUnavailable = errors.New("photo: unavailable")
)

const (
	defaultPhotoUploadTTL   = 15 * time.Minute
	defaultPhotoDownloadTTL = 5 * time.Minute
	defaultPhotoMaxSize     = 10 << 20
	metadataHeaderPrefix    = "x-goog-meta-"
)

var defaultPhotoContentTypes = []string{"image/jpeg", "image/png", "image/webp"}

// PhotoServiceDeps bundles dependencies for NewPhotoService.
type PhotoServiceDeps struct {
	Signer              *storage.Client
	Bucket              string
	AllowedContentTypes []string
	MaxSize             int64
	UploadTTL           time.Duration
	DownloadTTL         time.Duration
	Logger              *zap.Logger
}

type photoService struct {
	signer       *storage.Client
	bucket       string
	contentTypes []string
	maxSize      int64
	uploadTTL    time.Duration
	downloadTTL  time.Duration
	logger       *zap.Logger
}

// NewPhotoService wires a PhotoService that signs URLs against the configured
// photos bucket.
func NewPhotoService(deps PhotoServiceDeps) (PhotoService, error) {
	if deps.Signer == nil {
		return nil, errors.New("photo service requires signer client")
	}
	if strings.TrimSpace(deps.Bucket) == "" {
		return nil, errors.New("photo service requires bucket name")
	}

	svc := &photoService{
		signer:       deps.Signer,
		bucket:       strings.TrimSpace(deps.Bucket),
		contentTypes: deps.AllowedContentTypes,
		maxSize:      deps.MaxSize,
		uploadTTL:    deps.UploadTTL,
		downloadTTL:  deps.DownloadTTL,
		logger:       deps.Logger,
	}
	if len(svc.contentTypes) == 0 {
		svc.contentTypes = defaultPhotoContentTypes
	}
	if svc.maxSize <= 0 {
		svc.maxSize = defaultPhotoMaxSize
	}
	if svc.uploadTTL <= 0 {
		svc.uploadTTL = defaultPhotoUploadTTL
	}
	if svc.downloadTTL <= 0 {
		svc.downloadTTL = defaultPhotoDownloadTTL
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc, nil
}

var _ PhotoService = (*photoService)(nil)

func (s *photoService) CreateUploadURL(ctx context.Context, cmd PhotoUploadCommand) (PhotoURL, error) {
	objectPath, err := storage.BuildObjectPath(storage.PurposeItemPhoto, storage.PathParams{
		SessionID: strings.TrimSpace(cmd.SessionID),
		ItemID:    strings.TrimSpace(cmd.ItemID),
		FileName:  strings.TrimSpace(cmd.FileName),
	})
	if err != nil {
		return PhotoURL{}, fmt.Errorf("%w: %v", ErrPhotoInvalidInput, err)
	}

	headers := make(map[string]string)
	for key, value := range textutil.NormalizeStringMap(cmd.Metadata) {
		headers[metadataHeaderPrefix+strings.ToLower(key)] = value
	}

	result, err := s.signer.SignedURL(ctx, s.bucket, objectPath, storage.SignedURLOptions{
		Upload: &storage.UploadOptions{
			ContentType:         strings.TrimSpace(cmd.ContentType),
			ContentMD5:          strings.TrimSpace(cmd.ContentMD5),
			AllowedContentTypes: s.contentTypes,
			MaxSize:             s.maxSize,
			ExpiresIn:           s.uploadTTL,
			AdditionalHeaders:   headers,
		},
	})
	if err != nil {
		s.logger.Warn("photo upload url signing failed",
			zap.String("object", objectPath),
			zap.Error(err))
		return PhotoURL{}, classifyPhotoError(err)
	}

	return PhotoURL{
		ObjectPath: objectPath,
		URL:        result.URL,
		Method:     result.Method,
		ExpiresAt:  result.ExpiresAt,
		Headers:    result.Headers,
	}, nil
}

func (s *photoService) CreateDownloadURL(ctx context.Context, cmd PhotoDownloadCommand) (PhotoURL, error) {
	objectPath := strings.TrimSpace(cmd.ObjectPath)
	if objectPath == "" {
		return PhotoURL{}, fmt.Errorf("%w: object path is required", ErrPhotoInvalidInput)
	}

	// Item photos carry no per-operator ownership; any authenticated staff
	// member may view them.
	identity, ok := auth.IdentityFromContext(ctx)
	if ok && !identity.HasAnyRole(auth.RoleOperator, auth.RoleManager, auth.RoleAdmin) {
		return PhotoURL{}, fmt.Errorf("%w: staff role required", ErrPhotoForbidden)
	}

	result, err := s.signer.SignedURL(ctx, s.bucket, objectPath, storage.SignedURLOptions{
		Download: &storage.DownloadOptions{
			ExpiresIn:      s.downloadTTL,
			Disposition:    strings.TrimSpace(cmd.Disposition),
			Identity:       identity,
			AllowAnonymous: true,
		},
	})
	if err != nil {
		if errors.Is(err, storage.ErrPermissionDenied) {
			return PhotoURL{}, fmt.Errorf("%w: %v", ErrPhotoForbidden, err)
		}
		s.logger.Warn("photo download url signing failed",
			zap.String("object", objectPath),
			zap.Error(err))
		return PhotoURL{}, classifyPhotoError(err)
	}

	return PhotoURL{
		ObjectPath: objectPath,
		URL:        result.URL,
		Method:     result.Method,
		ExpiresAt:  result.ExpiresAt,
		Headers:    result.Headers,
	}, nil
}

// classifyPhotoError separates caller mistakes surfaced by the signing layer
// from signing infrastructure failures.
func classifyPhotoError(err error) error {
	switch {
	case errors.Is(err, storage.ErrContentTypeMissing),
		errors.Is(err, storage.ErrContentTypeDenied),
		errors.Is(err, storage.ErrMD5Required),
		errors.Is(err, storage.ErrMD5Invalid):
		return fmt.Errorf("%w: %v", ErrPhotoInvalidInput, err)
	default:
		return fmt.Errorf("%w: %v", ErrPhotoUnavailable, err)
	}
}
