package storage

import (
	"bytes"
	"context"
	"io"

	"github.com/anggol23/Be-Resonansi/internal/entity/db"
)

// DatabaseStorage keeps the bytes inside the file record itself.
type DatabaseStorage struct{}

func NewDatabaseStorage() *DatabaseStorage {
	return &DatabaseStorage{}
}

func (s *DatabaseStorage) Kind() string {
	return db.ContentKindBlob
}

func (s *DatabaseStorage) Save(ctx context.Context, obj Object) (db.ContentRef, error) {
	if len(obj.Data) == 0 {
		return db.ContentRef{}, ErrNoContent
	}
	if err := ctx.Err(); err != nil {
		return db.ContentRef{}, err
	}
	blob := make([]byte, len(obj.Data))
	copy(blob, obj.Data)
	return db.ContentRef{Kind: db.ContentKindBlob, Blob: blob}, nil
}

func (s *DatabaseStorage) Open(_ context.Context, ref db.ContentRef) (io.ReadCloser, error) {
	if err := checkKind(s, ref); err != nil {
		return nil, err
	}
	if len(ref.Blob) == 0 {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(ref.Blob)), nil
}

// Delete is a no-op: the bytes go away with the record.
func (s *DatabaseStorage) Delete(_ context.Context, ref db.ContentRef) error {
	return checkKind(s, ref)
}

var _ Storage = (*DatabaseStorage)(nil)
