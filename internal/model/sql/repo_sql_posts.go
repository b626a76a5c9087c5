package sql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anggol23/Be-Resonansi/internal/entity/db"
	"github.com/anggol23/Be-Resonansi/internal/entity/dto"

	"gorm.io/gorm"
)

const (
	defaultPostLimit = 9
	maxPostLimit     = 100
)

func (r *GormRepository) CreatePost(ctx context.Context, post *db.Post) error {
	if err := r.ready(); err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("post is nil")
	}
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *GormRepository) UpdatePost(ctx context.Context, id uint, updates map[string]interface{}) error {
	if err := r.ready(); err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&db.Post{}).Where("id = ?", id).Updates(updates).Error
}

func (r *GormRepository) GetPostByID(ctx context.Context, id uint) (*db.Post, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var post db.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *GormRepository) GetPostBySlug(ctx context.Context, slug string) (*db.Post, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var post db.Post
	if err := r.db.WithContext(ctx).Where("slug = ?", strings.TrimSpace(slug)).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPosts applies the public filters and returns one page plus the total
// number of matching posts.
func (r *GormRepository) ListPosts(ctx context.Context, params *dto.PostQuery) ([]db.Post, int64, error) {
	if err := r.ready(); err != nil {
		return nil, 0, err
	}
	if params == nil {
		params = &dto.PostQuery{}
	}

	query := r.db.WithContext(ctx).Model(&db.Post{})
	if params.UserID != 0 {
		query = query.Where("author_id = ?", params.UserID)
	}
	if category := strings.TrimSpace(params.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if slug := strings.TrimSpace(params.Slug); slug != "" {
		query = query.Where("slug = ?", slug)
	}
	if params.PostID != 0 {
		query = query.Where("id = ?", params.PostID)
	}
	if term := strings.TrimSpace(params.SearchTerm); term != "" {
		kw := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", kw, kw)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "updated_at DESC"
	if strings.EqualFold(strings.TrimSpace(params.Order), "asc") {
		order = "updated_at ASC"
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultPostLimit
	}
	if limit > maxPostLimit {
		limit = maxPostLimit
	}
	offset := params.StartIndex
	if offset < 0 {
		offset = 0
	}

	var posts []db.Post
	if err := query.Order(order).Order("id DESC").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// CountPosts returns the number of posts created at or after since.
func (r *GormRepository) CountPosts(ctx context.Context, since time.Time) (int64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	query := r.db.WithContext(ctx).Model(&db.Post{})
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeletePost removes a post together with its comments and their likes.
func (r *GormRepository) DeletePost(ctx context.Context, id uint) error {
	if err := r.ready(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&db.Comment{}).Select("id").Where("post_id = ?", id)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&db.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&db.Comment{}).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&db.Post{}, id))
	})
}
