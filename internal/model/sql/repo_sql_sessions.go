package sql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anggol23/Be-Resonansi/internal/entity/db"
)

func (r *GormRepository) CreateSession(ctx context.Context, session *db.Session) error {
	if err := r.ready(); err != nil {
		return err
	}
	if session == nil || strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("session id is empty")
	}
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *GormRepository) GetSession(ctx context.Context, id string) (*db.Session, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var session db.Session
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession removes a session. Deleting a missing session is not an error.
func (r *GormRepository) DeleteSession(ctx context.Context, id string) error {
	if err := r.ready(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&db.Session{}).Error
}

// DeleteExpiredSessions purges sessions whose expiry is not after now.
func (r *GormRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&db.Session{})
	return result.RowsAffected, result.Error
}
