package ports

import (
	"context"
	"io"
)

// FileStorage defines the interface for uploaded file storage
type FileStorage interface {
	Store(ctx context.Context, src io.Reader, filename string) (string, error)
	GetReader(ctx context.Context, filePath string) (io.ReadCloser, error)
	Delete(ctx context.Context, filePath string) error
	GetFileSize(filePath string) (int64, error)
	Exists(ctx context.Context, filePath string) (bool, error)
}
