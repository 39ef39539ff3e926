// Package storage provides S3-compatible object storage for story
// materials and archived analyses.
package storage

import (
	"context"
	"time"
)

// PresignedURL contains the URL and metadata for a presigned upload.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// StorageService defines the object storage operations the app uses.
type StorageService interface {
	// GenerateUploadURL creates a presigned PUT URL under folder.
	GenerateUploadURL(ctx context.Context, bucket, folder, fileName, contentType string, sizeBytes int64) (*PresignedURL, error)

	// PutJSON stores v as a JSON object at key, replacing any previous object.
	PutJSON(ctx context.Context, bucket, key string, v any) error

	// EnsureBucketExists creates the bucket if it doesn't exist.
	EnsureBucketExists(ctx context.Context, bucket string) error

	ValidateContentType(contentType string) error
	ValidateFileSize(sizeBytes int64) error
	GetMaxFileSize() int64
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	IsMinIOEnabled() bool
}
