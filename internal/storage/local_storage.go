package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/anggol23/Be-Resonansi/internal/entity/db"
)

const writeChunkSize = 64 << 10

// LocalStorage persists files to the local filesystem.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage creates a LocalStorage instance. The base directory and its
// attachment and thumbnail subdirectories are created if missing.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	baseDir = strings.TrimSpace(baseDir)
	if baseDir == "" {
		baseDir = "uploads"
	}
	for _, dir := range []string{CategoryAttachment, CategoryThumbnail} {
		if err := os.MkdirAll(filepath.Join(baseDir, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

func (s *LocalStorage) Kind() string {
	return db.ContentKindPath
}

// Save writes the bytes to a temporary file and renames it into place, so a
// cancelled write never leaves a file under the final name.
func (s *LocalStorage) Save(ctx context.Context, obj Object) (db.ContentRef, error) {
	if len(obj.Data) == 0 {
		return db.ContentRef{}, ErrNoContent
	}
	if obj.Name == "" {
		return db.ContentRef{}, errors.New("storage: missing object name")
	}
	if err := ctx.Err(); err != nil {
		return db.ContentRef{}, err
	}

	relativePath := objectKey("", obj)
	absPath := filepath.Join(s.baseDir, filepath.FromSlash(relativePath))
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return db.ContentRef{}, fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(absPath), ".upload-*")
	if err != nil {
		return db.ContentRef{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	for data := obj.Data; len(data) > 0; {
		if err := ctx.Err(); err != nil {
			return db.ContentRef{}, err
		}
		n := min(len(data), writeChunkSize)
		if _, err := tmp.Write(data[:n]); err != nil {
			return db.ContentRef{}, fmt.Errorf("write file: %w", err)
		}
		data = data[n:]
	}
	if err := tmp.Close(); err != nil {
		return db.ContentRef{}, fmt.Errorf("close file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return db.ContentRef{}, err
	}
	if err := os.Rename(tmpName, absPath); err != nil {
		return db.ContentRef{}, fmt.Errorf("rename file: %w", err)
	}
	committed = true

	return db.ContentRef{Kind: db.ContentKindPath, Path: relativePath}, nil
}

func (s *LocalStorage) Open(ctx context.Context, ref db.ContentRef) (io.ReadCloser, error) {
	if err := checkKind(s, ref); err != nil {
		return nil, err
	}
	absPath, err := s.resolve(ref.Path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(absPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	return f, err
}

// Delete removes the file. A file that is already gone is not an error.
func (s *LocalStorage) Delete(ctx context.Context, ref db.ContentRef) error {
	if err := checkKind(s, ref); err != nil {
		return err
	}
	absPath, err := s.resolve(ref.Path)
	if err != nil {
		return err
	}
	if err := os.Remove(absPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// resolve maps a stored relative path into baseDir, refusing anything that
// would escape it.
func (s *LocalStorage) resolve(relativePath string) (string, error) {
	cleaned := path.Clean("/" + strings.ReplaceAll(relativePath, "\\", "/"))
	if cleaned == "/" || relativePath == "" {
		return "", fmt.Errorf("storage: invalid path %q", relativePath)
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(strings.TrimPrefix(cleaned, "/"))), nil
}

var _ Storage = (*LocalStorage)(nil)
