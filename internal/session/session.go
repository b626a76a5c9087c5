// Package session keeps optional server-side login records. A record's id
// travels in the token's jti, so deleting the record revokes the token.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anggol23/Be-Resonansi/internal/config"
	"github.com/anggol23/Be-Resonansi/internal/entity/db"
)

const (
	StoreDatabase = "database"
	StoreRedis    = "redis"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Store persists sessions.
type Store interface {
	Create(ctx context.Context, s *db.Session) error
	Get(ctx context.Context, id string) (*db.Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes sessions past their expiry and reports how many.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Repository is the subset of the relational repository the database store needs.
type Repository interface {
	CreateSession(ctx context.Context, session *db.Session) error
	GetSession(ctx context.Context, id string) (*db.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// NewStore builds the store named by SESSION_STORE. An empty setting means
// stateless tokens and returns a nil store.
func NewStore(cfg config.Config, repo Repository) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.SessionStore)) {
	case "":
		return nil, nil
	case StoreDatabase:
		if repo == nil {
			return nil, errors.New("session: database store needs a repository")
		}
		return NewDatabaseStore(repo), nil
	case StoreRedis:
		store, err := NewRedisStoreFromURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported session store: %s", cfg.SessionStore)
	}
}
