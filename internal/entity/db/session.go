package db

import (
	"time"

	"github.com/anggol23/Be-Resonansi/internal/entity/common"
)

// Session is a server-side login record. Its ID travels as the token's jti.
type Session struct {
	ID        string         `gorm:"column:id;type:varchar(64);primaryKey" json:"id"`
	UserID    uint           `gorm:"column:user_id;index;not null" json:"userId"`
	Payload   common.JSONMap `gorm:"column:payload;type:text" json:"payload"`
	ExpiresAt time.Time      `gorm:"column:expires_at;index;not null" json:"expiresAt"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (Session) TableName() string {
	return "sessions"
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt)
}
