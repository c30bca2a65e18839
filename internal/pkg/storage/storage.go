package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrInvalidPath  = errors.New("invalid file path")
	ErrFileNotFound = errors.New("file not found")
)

// FileStorage keeps uploaded employee files. Keys are slash separated and
// relative to the storage root.
type FileStorage interface {
	// Upload writes file under key and returns the normalized key.
	Upload(ctx context.Context, file io.Reader, key string, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// GetURL returns an address clients can fetch key from. Backends without
	// signed links ignore expiry.
	GetURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
