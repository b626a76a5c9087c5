package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/anggol23/Be-Resonansi/internal/config"
	"github.com/anggol23/Be-Resonansi/internal/entity/db"
)

const (
	// TypeLocal 表示本地文件系统存储。
	TypeLocal = "local"
	// TypeDatabase 表示把文件字节直接存入数据库记录。
	TypeDatabase = "database"
	// TypeURL 表示只保存调用方提供的外部 URL。
	TypeURL = "url"
	// TypeS3 表示 Amazon S3 或兼容的存储后端。
	TypeS3 = "s3"
	// TypeOSS 表示阿里云 OSS 存储。
	TypeOSS = "oss"
	// TypeCOS 表示腾讯云 COS 存储。
	TypeCOS = "cos"
	// TypeR2 表示 Cloudflare R2 存储。
	TypeR2 = "r2"
)

const (
	CategoryAttachment = "attachments"
	CategoryThumbnail  = "thumbnails"
)

var (
	// ErrObjectNotFound is returned by Open when the referenced bytes are gone.
	ErrObjectNotFound = errors.New("storage: object not found")
	// ErrRemoteObject is returned by Open for url references; callers redirect instead.
	ErrRemoteObject = errors.New("storage: object is hosted externally")
	// ErrNoContent is returned by Save when neither bytes nor a URL were supplied.
	ErrNoContent = errors.New("storage: nothing to store")
	// ErrBytesNotAccepted is returned by Save when the backend only records hosted URLs.
	ErrBytesNotAccepted = errors.New("storage: backend only accepts hosted urls")
)

// AcceptsBytes reports whether s stores uploaded bytes. Backends that only
// record hosted URLs implement AcceptsBytes() and return false.
func AcceptsBytes(s Storage) bool {
	if b, ok := s.(interface{ AcceptsBytes() bool }); ok {
		return b.AcceptsBytes()
	}
	return true
}

// Object 是待保存的内容。
//
// Name 是已生成的存储文件名（见 StoredName），Category 决定子目录或对象前缀。
// 外部 URL 后端只使用 URL 字段。
type Object struct {
	Category    string
	Name        string
	ContentType string
	Data        []byte
	URL         string
}

// Storage 持久化二进制数据并返回可写入记录的内容引用。
type Storage interface {
	// Kind 返回该后端产生的引用类型（path、blob 或 url）。
	Kind() string
	Save(ctx context.Context, obj Object) (db.ContentRef, error)
	Open(ctx context.Context, ref db.ContentRef) (io.ReadCloser, error)
	Delete(ctx context.Context, ref db.ContentRef) error
}

// NewStorage 根据配置实例化存储后端。
func NewStorage(cfg config.Config) (Storage, error) {
	typeName := strings.ToLower(strings.TrimSpace(cfg.StorageType))
	switch typeName {
	case "", TypeLocal:
		return NewLocalStorage(cfg.StorageLocalDir)
	case TypeDatabase:
		return NewDatabaseStorage(), nil
	case TypeURL:
		return NewURLStorage(), nil
	case TypeS3:
		return NewS3Storage(cfg)
	case TypeOSS:
		return NewOSSStorage(cfg)
	case TypeCOS:
		return NewCOSStorage(cfg)
	case TypeR2:
		return NewR2Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
	}
}

func checkKind(s Storage, ref db.ContentRef) error {
	if ref.Kind != s.Kind() {
		return fmt.Errorf("storage: %s backend cannot handle %q reference", s.Kind(), ref.Kind)
	}
	return nil
}
