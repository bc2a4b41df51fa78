// Package storage keeps uploaded payment proofs in named buckets.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProofBucket holds every payment screenshot.
const ProofBucket = "payment-proofs"

var (
	ErrInvalidPath = errors.New("invalid object path")
	ErrNotFound    = errors.New("object not found")
)

//go:generate mockgen -destination=mocks/mock_storage.go -package=mocks github.com/example/fftopup/internal/storage BlobStore

// BlobStore is the storage used for payment proofs.
type BlobStore interface {
	Upload(ctx context.Context, bucket, path string, r io.Reader, contentType string) error
	Delete(ctx context.Context, bucket, path string) error
	Open(ctx context.Context, bucket, path string) (io.ReadCloser, error)
}

// ProofPath builds {userID}/{unixMillis}.{ext}. The extension is whatever
// follows the last dot of filename, or the whole name when it has none.
func ProofPath(userID uuid.UUID, now time.Time, filename string) string {
	ext := filename
	if i := strings.LastIndex(filename, "."); i >= 0 {
		ext = filename[i+1:]
	}
	return fmt.Sprintf("%s/%d.%s", userID, now.UnixMilli(), ext)
}

// LocalStore maps buckets to directories under a root.
type LocalStore struct {
	root string
}

// NewLocalStore creates root if needed.
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) resolve(bucket, path string) (string, error) {
	if bucket == "" || path == "" {
		return "", ErrInvalidPath
	}
	clean := filepath.Clean("/" + path)
	if clean == "/" || strings.Contains(bucket, "..") || strings.ContainsAny(bucket, `/\`) {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, bucket, clean), nil
}

// Upload writes r to bucket/path. Existing objects are not overwritten.
func (s *LocalStore) Upload(ctx context.Context, bucket, path string, r io.Reader, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(bucket, path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return err
	}
	return f.Close()
}

// Delete removes bucket/path. Deleting a missing object is not an error.
func (s *LocalStore) Delete(ctx context.Context, bucket, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(bucket, path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Open returns a reader for bucket/path.
func (s *LocalStore) Open(ctx context.Context, bucket, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(bucket, path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}
