package model

import (
	"context"
	"time"

	"github.com/anggol23/Be-Resonansi/internal/entity/common"
	"github.com/anggol23/Be-Resonansi/internal/entity/db"
	"github.com/anggol23/Be-Resonansi/internal/entity/dto"
)

// Repository 定义数据库操作接口
//
// Lookups that find nothing return gorm.ErrRecordNotFound; unique index
// violations surface as gorm.ErrDuplicatedKey.
type Repository interface {
	// 用户管理
	CreateUser(ctx context.Context, user *db.User) error
	UpdateUser(ctx context.Context, id uint, updates map[string]interface{}) error
	GetUserByID(ctx context.Context, id uint) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	GetUserByUsername(ctx context.Context, username string) (*db.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*db.User, error)
	ListUsers(ctx context.Context, params *dto.UserQuery) ([]db.User, *common.Meta, error)
	DeleteUser(ctx context.Context, id uint) error
	CountUsers(ctx context.Context, since time.Time) (int64, error)

	// 服务端会话
	CreateSession(ctx context.Context, session *db.Session) error
	GetSession(ctx context.Context, id string) (*db.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	// 文章
	CreatePost(ctx context.Context, post *db.Post) error
	UpdatePost(ctx context.Context, id uint, updates map[string]interface{}) error
	GetPostByID(ctx context.Context, id uint) (*db.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*db.Post, error)
	ListPosts(ctx context.Context, params *dto.PostQuery) ([]db.Post, int64, error)
	CountPosts(ctx context.Context, since time.Time) (int64, error)
	DeletePost(ctx context.Context, id uint) error

	// 评论
	CreateComment(ctx context.Context, comment *db.Comment) error
	GetComment(ctx context.Context, id uint) (*db.Comment, error)
	UpdateCommentContent(ctx context.Context, id uint, content string) error
	DeleteComment(ctx context.Context, id uint) error
	ListCommentsByPost(ctx context.Context, postID uint) ([]db.Comment, error)
	ListCommentLikes(ctx context.Context, commentIDs []uint) (map[uint][]uint, error)
	ToggleCommentLike(ctx context.Context, commentID, userID uint) (*db.Comment, bool, error)

	// 下载区文件
	CreateFile(ctx context.Context, file *db.UploadedFile) error
	GetFile(ctx context.Context, id uint) (*db.UploadedFile, error)
	ListFiles(ctx context.Context) ([]db.UploadedFile, error)
	DeleteFile(ctx context.Context, id uint) error
}
