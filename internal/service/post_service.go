package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anggol23/Be-Resonansi/internal/auth"
	"github.com/anggol23/Be-Resonansi/internal/entity/converter"
	"github.com/anggol23/Be-Resonansi/internal/entity/db"
	"github.com/anggol23/Be-Resonansi/internal/entity/dto"
	"github.com/anggol23/Be-Resonansi/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	minTitleLength   = 5
	maxTitleLength   = 100
	minContentLength = 20
	maxSlugAttempts  = 50
)

// PostService 管理博客文章。
type PostService struct {
	repo model.Repository
	now  func() time.Time
}

func NewPostService(repo model.Repository) *PostService {
	return &PostService{repo: repo, now: time.Now}
}

// Create publishes a post authored by the caller.
func (s *PostService) Create(ctx context.Context, caller auth.Identity, req dto.PostCreateRequest) (*db.Post, error) {
	post := &db.Post{
		Title:    strings.TrimSpace(req.Title),
		Content:  strings.TrimSpace(req.Content),
		Category: strings.ToLower(strings.TrimSpace(req.Category)),
		Image:    strings.TrimSpace(req.Image),
		AuthorID: caller.UserID,
	}
	if post.Title == "" || post.Content == "" || post.Category == "" || post.Image == "" {
		return nil, Validation("Please provide all required fields")
	}
	if err := validatePost(post); err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, post.Title, 0)
	if err != nil {
		return nil, err
	}
	post.Slug = slug
	if err := s.repo.CreatePost(ctx, post); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict(CodeSlugExists, "A post with this title already exists")
		}
		return nil, Internal(err)
	}
	logrus.WithFields(logrus.Fields{"post_id": post.ID, "slug": post.Slug, "author_id": post.AuthorID}).Info("post created")
	return post, nil
}

func validatePost(post *db.Post) error {
	if n := utf8.RuneCountInString(post.Title); n < minTitleLength || n > maxTitleLength {
		return Validation(fmt.Sprintf("Title must be between %d and %d characters", minTitleLength, maxTitleLength))
	}
	if utf8.RuneCountInString(post.Content) < minContentLength {
		return Validation(fmt.Sprintf("Content must be at least %d characters", minContentLength))
	}
	if !db.IsValidCategory(post.Category) {
		return Validation("Category must be one of: " + strings.Join(db.PostCategories, ", "))
	}
	if post.Image == "" {
		return Validation("Image is required")
	}
	return nil
}

// uniqueSlug returns the title's slug, suffixed -2, -3... while another post
// holds it. excludeID lets a post keep its own slug.
func (s *PostService) uniqueSlug(ctx context.Context, title string, excludeID uint) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = "post"
	}
	for i := 1; i <= maxSlugAttempts; i++ {
		candidate := base
		if i > 1 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}
		existing, err := s.repo.GetPostBySlug(ctx, candidate)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", Internal(err)
		}
		if existing.ID == excludeID {
			return candidate, nil
		}
	}
	return "", Conflict(CodeSlugExists, "A post with this title already exists")
}

func (s *PostService) Get(ctx context.Context, id uint) (*db.Post, error) {
	post, err := s.repo.GetPostByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound(CodePostNotFound, "Post not found")
	}
	if err != nil {
		return nil, Internal(err)
	}
	return post, nil
}

func (s *PostService) GetBySlug(ctx context.Context, slug string) (*db.Post, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, NotFound(CodePostNotFound, "Post not found")
	}
	post, err := s.repo.GetPostBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound(CodePostNotFound, "Post not found")
	}
	if err != nil {
		return nil, Internal(err)
	}
	return post, nil
}

// List applies the public filters and adds the overall and last-month totals.
func (s *PostService) List(ctx context.Context, query dto.PostQuery) (*dto.PostListResponse, error) {
	posts, matched, err := s.repo.ListPosts(ctx, &query)
	if err != nil {
		return nil, Internal(err)
	}
	total, err := s.repo.CountPosts(ctx, time.Time{})
	if err != nil {
		return nil, Internal(err)
	}
	lastMonth, err := s.repo.CountPosts(ctx, s.now().UTC().AddDate(0, -1, 0))
	if err != nil {
		return nil, Internal(err)
	}
	logrus.WithFields(logrus.Fields{"matched": matched, "returned": len(posts)}).Debug("posts listed")
	return &dto.PostListResponse{
		Posts:          converter.PostsToSummaries(posts),
		TotalPosts:     total,
		LastMonthPosts: lastMonth,
	}, nil
}

// Update edits a post; only its author or an admin may do so. A new title
// gets a new slug.
func (s *PostService) Update(ctx context.Context, caller auth.Identity, id uint, req dto.PostUpdateRequest) (*db.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != caller.UserID && !caller.IsAdmin() {
		return nil, Forbidden(CodeForbidden, "You are not allowed to update this post")
	}

	next := *post
	if req.Title != nil {
		next.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		next.Content = strings.TrimSpace(*req.Content)
	}
	if req.Category != nil {
		next.Category = strings.ToLower(strings.TrimSpace(*req.Category))
	}
	if req.Image != nil {
		next.Image = strings.TrimSpace(*req.Image)
	}
	if err := validatePost(&next); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"title":    next.Title,
		"content":  next.Content,
		"category": next.Category,
		"image":    next.Image,
	}
	if next.Title != post.Title {
		slug, err := s.uniqueSlug(ctx, next.Title, post.ID)
		if err != nil {
			return nil, err
		}
		updates["slug"] = slug
	}
	if err := s.repo.UpdatePost(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict(CodeSlugExists, "A post with this title already exists")
		}
		return nil, Internal(err)
	}
	return s.Get(ctx, id)
}

// Delete removes a post with its comments; only its author or an admin may.
func (s *PostService) Delete(ctx context.Context, caller auth.Identity, id uint) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != caller.UserID && !caller.IsAdmin() {
		return Forbidden(CodeForbidden, "You are not allowed to delete this post")
	}
	if err := s.repo.DeletePost(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound(CodePostNotFound, "Post not found")
		}
		return Internal(err)
	}
	logrus.WithFields(logrus.Fields{"post_id": id, "by": caller.UserID}).Info("post deleted")
	return nil
}
