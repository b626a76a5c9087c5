package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/anggol23/Be-Resonansi/internal/entity/db"
)

// URLStorage records content that already lives on an external host. Only
// the URL is persisted; this service never uploads or deletes the bytes.
type URLStorage struct{}

func NewURLStorage() *URLStorage {
	return &URLStorage{}
}

func (s *URLStorage) Kind() string {
	return db.ContentKindURL
}

func (s *URLStorage) AcceptsBytes() bool {
	return false
}

func (s *URLStorage) Save(_ context.Context, obj Object) (db.ContentRef, error) {
	if strings.TrimSpace(obj.URL) == "" {
		if len(obj.Data) > 0 {
			return db.ContentRef{}, ErrBytesNotAccepted
		}
		return db.ContentRef{}, ErrNoContent
	}
	u, err := ValidateURL(obj.URL)
	if err != nil {
		return db.ContentRef{}, err
	}
	return db.ContentRef{Kind: db.ContentKindURL, URL: u}, nil
}

func (s *URLStorage) Open(_ context.Context, ref db.ContentRef) (io.ReadCloser, error) {
	if err := checkKind(s, ref); err != nil {
		return nil, err
	}
	return nil, ErrRemoteObject
}

func (s *URLStorage) Delete(_ context.Context, ref db.ContentRef) error {
	return checkKind(s, ref)
}

// ValidateURL accepts absolute http and https URLs and returns them trimmed.
func ValidateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("storage: invalid url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("storage: url must be absolute http(s): %q", raw)
	}
	return raw, nil
}

var _ Storage = (*URLStorage)(nil)
