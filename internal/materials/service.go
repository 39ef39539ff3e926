// Package materials issues upload URLs for story materials (scripts, decks,
// reels) attached to a questionnaire before it is submitted.
package materials

import (
	"context"
	"time"

	"filmdecks_backend/internal/adapters/storage"
	"filmdecks_backend/platform/apperr"
)

// Uploader is the storage the materials flow needs.
type Uploader interface {
	GenerateUploadURL(ctx context.Context, bucket, folder, fileName, contentType string, sizeBytes int64) (*storage.PresignedURL, error)
	ValidateContentType(contentType string) error
	ValidateFileSize(sizeBytes int64) error
}

type UploadRequest struct {
	FileName    string `json:"fileName" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required,max=100"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,gt=0"`
}

type UploadResponse struct {
	Success   bool      `json:"success"`
	UploadURL string    `json:"uploadUrl"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Service struct {
	uploader Uploader
	bucket   string
	now      func() time.Time
}

// New returns a Service. A nil uploader disables uploads.
func New(uploader Uploader, bucket string) *Service {
	return &Service{uploader: uploader, bucket: bucket, now: time.Now}
}

func (s *Service) Enabled() bool {
	return s.uploader != nil && s.bucket != ""
}

// PresignUpload validates the file and returns a PUT URL under a per-day
// folder.
func (s *Service) PresignUpload(ctx context.Context, req UploadRequest) (UploadResponse, error) {
	if !s.Enabled() {
		return UploadResponse{}, apperr.Unavailable("file uploads are not available")
	}
	if err := s.uploader.ValidateContentType(req.ContentType); err != nil {
		return UploadResponse{}, apperr.Validation("Validation failed", apperr.FieldViolation{Field: "contentType", Message: err.Error()})
	}
	if err := s.uploader.ValidateFileSize(req.SizeBytes); err != nil {
		return UploadResponse{}, apperr.Validation("Validation failed", apperr.FieldViolation{Field: "sizeBytes", Message: err.Error()})
	}

	folder := "questionnaire/" + s.now().UTC().Format("2006-01-02")
	presigned, err := s.uploader.GenerateUploadURL(ctx, s.bucket, folder, req.FileName, req.ContentType, req.SizeBytes)
	if err != nil {
		return UploadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to prepare upload", err)
	}

	return UploadResponse{
		Success:   true,
		UploadURL: presigned.URL,
		FileKey:   presigned.FileKey,
		ExpiresAt: presigned.ExpiresAt,
	}, nil
}
