package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrInvalidPath = errors.New("invalid file path")
)

// FileStorage stores report inputs and outputs under slash-separated keys.
type FileStorage interface {
	// Upload stores file under path and returns the stored key
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Download opens a stored file; it returns ErrNotFound for missing keys
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file; deleting a missing key is not an error
	Delete(ctx context.Context, path string) error

	// GetURL returns a URL the file can be fetched from
	GetURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}
