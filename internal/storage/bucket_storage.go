package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/anggol23/Be-Resonansi/internal/entity/db"

	"github.com/sirupsen/logrus"
)

// objectStore is the narrow client surface each cloud SDK adapter provides.
type objectStore interface {
	put(ctx context.Context, key string, data []byte, contentType string) error
	remove(ctx context.Context, key string) error
}

// bucketStorage uploads bytes to an object store and records the public URL.
// The stored reference is a url reference, so downloads redirect to the bucket.
type bucketStorage struct {
	name       string
	store      objectStore
	prefix     string
	publicBase string
}

func newBucketStorage(name string, store objectStore, prefix, publicBase string) (*bucketStorage, error) {
	publicBase = strings.TrimRight(strings.TrimSpace(publicBase), "/")
	if _, err := ValidateURL(publicBase); err != nil {
		return nil, fmt.Errorf("storage: %s public base url: %w", name, err)
	}
	return &bucketStorage{
		name:       name,
		store:      store,
		prefix:     trimPrefix(prefix),
		publicBase: publicBase,
	}, nil
}

func (s *bucketStorage) Kind() string {
	return db.ContentKindURL
}

func (s *bucketStorage) Save(ctx context.Context, obj Object) (db.ContentRef, error) {
	if len(obj.Data) == 0 {
		// 没有字节时接受调用方已托管的 URL
		if strings.TrimSpace(obj.URL) == "" {
			return db.ContentRef{}, ErrNoContent
		}
		u, err := ValidateURL(obj.URL)
		if err != nil {
			return db.ContentRef{}, err
		}
		return db.ContentRef{Kind: db.ContentKindURL, URL: u}, nil
	}
	if obj.Name == "" {
		return db.ContentRef{}, errors.New("storage: missing object name")
	}
	if err := ctx.Err(); err != nil {
		return db.ContentRef{}, err
	}

	key := objectKey(s.prefix, obj)
	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.store.put(ctx, key, obj.Data, contentType); err != nil {
		return db.ContentRef{}, fmt.Errorf("put object: %w", err)
	}
	return db.ContentRef{Kind: db.ContentKindURL, URL: s.publicBase + "/" + key}, nil
}

func (s *bucketStorage) Open(_ context.Context, ref db.ContentRef) (io.ReadCloser, error) {
	if err := checkKind(s, ref); err != nil {
		return nil, err
	}
	return nil, ErrRemoteObject
}

// Delete removes the object when the URL points into this bucket. Foreign
// URLs were never uploaded by us and are left alone.
func (s *bucketStorage) Delete(ctx context.Context, ref db.ContentRef) error {
	if err := checkKind(s, ref); err != nil {
		return err
	}
	key, ok := s.keyFromURL(ref.URL)
	if !ok {
		logrus.WithFields(logrus.Fields{"backend": s.name, "url": ref.URL}).Debug("skip delete of foreign url")
		return nil
	}
	if err := s.store.remove(ctx, key); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (s *bucketStorage) keyFromURL(u string) (string, bool) {
	key, found := strings.CutPrefix(u, s.publicBase+"/")
	if !found || key == "" {
		return "", false
	}
	return key, true
}

var _ Storage = (*bucketStorage)(nil)
