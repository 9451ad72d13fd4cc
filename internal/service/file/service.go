package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/trackit-backend-go/internal/domain/schema"
	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/trackit-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var ErrFileTooLarge = errors.New("file exceeds the maximum upload size")

type FileService interface {
	// UploadInput stores a COSEC or BBHR workbook and returns its storage key
	UploadInput(ctx context.Context, reportID string, kind schema.FileKind, file io.Reader, filename string) (string, error)

	// UploadOutput stores a rendered report workbook
	UploadOutput(ctx context.Context, reportID, reportName string, data []byte) (string, error)

	ReadFile(ctx context.Context, path string) ([]byte, error)
	OpenFile(ctx context.Context, path string) (io.ReadCloser, error)

	// Generic operations
	DeleteFile(ctx context.Context, path string) error
	GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
	maxSize int64
}

// NewFileService creates a file service; maxSize <= 0 disables the size check.
func NewFileService(storage storage.FileStorage, maxSize int64) FileService {
	return &fileServiceImpl{
		storage: storage,
		maxSize: maxSize,
	}
}

// UploadInput stores reports/{id}/{kind}_{uuid}.xlsx
func (s *fileServiceImpl) UploadInput(ctx context.Context, reportID string, kind schema.FileKind, file io.Reader, filename string) (string, error) {
	if !validator.IsXLSXFileName(filename) {
		return "", report.ErrInvalidFileType
	}
	if !kind.IsValid() {
		return "", schema.ErrUnknownFileKind
	}

	data, err := s.readLimited(file)
	if err != nil {
		return "", err
	}

	key := path.Join("reports", reportID, fmt.Sprintf("%s_%s.xlsx", kind, uuid.New().String()))

	uploadedPath, err := s.storage.Upload(ctx, bytes.NewReader(data), key, xlsxContentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s file: %w", kind, err)
	}

	return uploadedPath, nil
}

// UploadOutput stores reports/{id}/output_{name}.xlsx
func (s *fileServiceImpl) UploadOutput(ctx context.Context, reportID, reportName string, data []byte) (string, error) {
	key := path.Join("reports", reportID, "output_"+sanitizeName(reportName)+".xlsx")

	uploadedPath, err := s.storage.Upload(ctx, bytes.NewReader(data), key, xlsxContentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload report output: %w", err)
	}

	return uploadedPath, nil
}

func (s *fileServiceImpl) ReadFile(ctx context.Context, path string) ([]byte, error) {
	rc, err := s.storage.Download(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func (s *fileServiceImpl) OpenFile(ctx context.Context, path string) (io.ReadCloser, error) {
	return s.storage.Download(ctx, path)
}

// DeleteFile deletes a file from storage
func (s *fileServiceImpl) DeleteFile(ctx context.Context, path string) error {
	return s.storage.Delete(ctx, path)
}

// GetFileURL gets a URL for a file
func (s *fileServiceImpl) GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return s.storage.GetURL(ctx, path, expiry)
}

func (s *fileServiceImpl) readLimited(file io.Reader) ([]byte, error) {
	if s.maxSize <= 0 {
		return io.ReadAll(file)
	}

	data, err := io.ReadAll(io.LimitReader(file, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

// sanitizeName keeps a report name usable as a single path segment,
// with runs of whitespace collapsed to underscores.
func sanitizeName(name string) string {
	name = strings.Join(strings.Fields(name), "_")
	name = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(name)
	if name == "" {
		return "report"
	}
	return name
}
