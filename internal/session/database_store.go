package session

import (
	"context"
	"errors"
	"time"

	"github.com/anggol23/Be-Resonansi/internal/entity/db"

	"gorm.io/gorm"
)

// DatabaseStore keeps sessions in the relational store's sessions table.
type DatabaseStore struct {
	repo Repository
	now  func() time.Time
}

func NewDatabaseStore(repo Repository) *DatabaseStore {
	return &DatabaseStore{repo: repo, now: time.Now}
}

func (s *DatabaseStore) Create(ctx context.Context, session *db.Session) error {
	return s.repo.CreateSession(ctx, session)
}

// Get returns the session; an expired one is removed and reported as missing.
func (s *DatabaseStore) Get(ctx context.Context, id string) (*db.Session, error) {
	session, err := s.repo.GetSession(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		_ = s.repo.DeleteSession(ctx, id)
		return nil, ErrNotFound
	}
	return session, nil
}

func (s *DatabaseStore) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

func (s *DatabaseStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.DeleteExpiredSessions(ctx, now.UTC())
}

var _ Store = (*DatabaseStore)(nil)
