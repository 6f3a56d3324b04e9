package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"mindmap-backend/internal/shared/storage/object"
	"mindmap-backend/internal/shared/util"
)

// Store implements object.Store on the local filesystem. Every Save gets its
// own directory named by a fresh UUID, so identically named uploads from
// concurrent requests never share a path.
type Store struct {
	baseDir string
}

// New creates the base directory if needed and returns a store rooted at it.
func New(baseDir string) (*Store, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, errors.New("upload dir is required")
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir upload dir: %w", err)
	}
	return &Store{baseDir: abs}, nil
}

// BaseDir returns the absolute root of the store.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Save writes r to <base>/<uuid>/<sanitized name>.
func (s *Store) Save(ctx context.Context, fileName string, r io.Reader) (object.Object, error) {
	sanitized, err := util.SanitizeFileName(fileName)
	if err != nil {
		return object.Object{}, fmt.Errorf("sanitize file name: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return object.Object{}, err
	}

	id := uuid.NewString()
	dir := filepath.Join(s.baseDir, id)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return object.Object{}, fmt.Errorf("mkdir: %w", err)
	}

	obj := object.Object{
		ID:       id,
		Path:     filepath.Join(dir, sanitized),
		FileName: sanitized,
	}

	f, err := os.OpenFile(obj.Path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		_ = os.RemoveAll(dir)
		return object.Object{}, fmt.Errorf("open file: %w", err)
	}
	hw := util.NewHashingWriter(f)
	written, copyErr := io.Copy(hw, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.RemoveAll(dir)
		return object.Object{}, fmt.Errorf("write body: %w", errors.Join(copyErr, closeErr))
	}
	obj.SizeBytes = written
	obj.SHA256 = hw.Sum()
	return obj, nil
}

// Remove deletes the object's directory. Removing an already-missing object
// is not an error.
func (s *Store) Remove(ctx context.Context, obj object.Object) error {
	_ = ctx
	if _, err := uuid.Parse(obj.ID); err != nil {
		return fmt.Errorf("invalid object id %q", obj.ID)
	}
	dir := filepath.Join(s.baseDir, obj.ID)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove %s: %w", obj.ID, err)
	}
	return nil
}
