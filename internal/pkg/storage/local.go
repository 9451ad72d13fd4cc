package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage keeps files on the local filesystem below basePath.
type LocalStorage struct {
	basePath string
	baseURL  string // e.g., "http://localhost:8080/files"
}

func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: abs,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// resolve maps a key to a path inside basePath, rejecting traversal.
func (s *LocalStorage) resolve(key string) (string, string, error) {
	clean := path.Clean("/" + filepath.ToSlash(key))[1:]
	if clean == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, key)
	}

	full := filepath.Join(s.basePath, filepath.FromSlash(clean))
	rel, err := filepath.Rel(s.basePath, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, key)
	}
	return clean, full, nil
}

func (s *LocalStorage) Upload(ctx context.Context, file io.Reader, key string, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean, full, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(full)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return clean, nil
}

func (s *LocalStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, full, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	_, full, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GetURL returns a static URL; local files do not expire.
func (s *LocalStorage) GetURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	clean, _, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	return s.baseURL + "/" + (&url.URL{Path: clean}).EscapedPath(), nil
}
