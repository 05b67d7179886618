package storage

import (
	"context"
	"fmt"
	"io"
)

// Storage holds bid attachment bodies. Attachments are private documents:
// they are streamed through the API after an authorization check, never
// served from a public URL.
type Storage interface {
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

type Config struct {
	Type      string // local or s3
	BasePath  string // local
	Bucket    string // s3
	Region    string // s3
	AccessKey string // s3
	SecretKey string // s3
	Endpoint  string // s3-compatible services (MinIO, R2)
}

func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
