package storage

import (
	"context"
	"io"
)

// Storage is the backend for submission evidence.
type Storage interface {
	// Save stores an object under key.
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Delete removes an object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error

	// GetURL returns the public URL for key.
	GetURL(key string) string
}

// Config selects and configures a backend. S3 is used when S3Bucket is set.
type Config struct {
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string

	LocalPath string
	LocalURL  string
}

// New returns the S3 backend when a bucket is configured and local disk otherwise.
func New(ctx context.Context, cfg Config) (Storage, error) {
	if cfg.S3Bucket != "" {
		return NewS3Storage(ctx, cfg)
	}
	return NewLocalStorage(cfg.LocalPath, cfg.LocalURL)
}
