// Package uploads stores report files on local disk under collision-resistant
// generated names. Stored files are exposed to patients through the static
// /uploads route and the report-link notification.
package uploads

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

var (
	ErrMissingFileName = errors.New("file name is required")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
)

// MaxFileSize is the maximum allowed report size in bytes (25 MB).
const MaxFileSize = 25 * 1024 * 1024

// DiskStore writes uploaded reports into a fixed directory. Generated names
// combine a millisecond timestamp with a random token, so concurrent uploads
// never collide and no locking is needed.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the upload directory if needed and returns a store
// rooted there.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory %s: %w", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the directory files are stored in.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save stores the content under a generated name, preserving the original
// file extension, and returns the stored name. The name doubles as the file
// token embedded in the report-link notification.
func (s *DiskStore) Save(ctx context.Context, originalName string, content io.Reader) (string, error) {
	if originalName == "" {
		return "", ErrMissingFileName
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := generateName(originalName)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(content, MaxFileSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if written > MaxFileSize {
		os.Remove(path)
		return "", ErrFileTooLarge
	}

	return name, nil
}

// generateName builds "report-<unix-ms>-<8 hex rand><ext>". The random token
// keeps names unique even when two uploads land in the same millisecond.
func generateName(originalName string) string {
	var buf [4]byte
	rand.Read(buf[:]) //nolint:errcheck // crypto/rand.Read does not fail on supported platforms
	return fmt.Sprintf("report-%d-%s%s",
		time.Now().UnixMilli(),
		hex.EncodeToString(buf[:]),
		filepath.Ext(originalName),
	)
}
