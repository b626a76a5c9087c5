package service

import (
	"context"
	"errors"
	"strings"

	"github.com/anggol23/Be-Resonansi/internal/auth"
	"github.com/anggol23/Be-Resonansi/internal/entity/converter"
	"github.com/anggol23/Be-Resonansi/internal/entity/db"
	"github.com/anggol23/Be-Resonansi/internal/entity/dto"
	"github.com/anggol23/Be-Resonansi/internal/model"

	"gorm.io/gorm"
)

// CommentService 管理文章评论与点赞。
type CommentService struct {
	repo  model.Repository
	posts *PostService
}

func NewCommentService(repo model.Repository, posts *PostService) *CommentService {
	return &CommentService{repo: repo, posts: posts}
}

// Create adds a comment by the caller to an existing post.
func (s *CommentService) Create(ctx context.Context, caller auth.Identity, req dto.CommentCreateRequest) (dto.CommentSummary, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" || req.PostID == 0 {
		return dto.CommentSummary{}, Validation("Comment content and postId are required")
	}
	if _, err := s.posts.Get(ctx, req.PostID); err != nil {
		return dto.CommentSummary{}, err
	}

	comment := &db.Comment{Content: content, PostID: req.PostID, UserID: caller.UserID}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return dto.CommentSummary{}, Internal(err)
	}
	return s.summary(ctx, comment.ID)
}

// ListByPostSlug returns a post's comments, newest first.
func (s *CommentService) ListByPostSlug(ctx context.Context, slug string) ([]dto.CommentSummary, error) {
	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	comments, err := s.repo.ListCommentsByPost(ctx, post.ID)
	if err != nil {
		return nil, Internal(err)
	}
	ids := make([]uint, len(comments))
	for i := range comments {
		ids[i] = comments[i].ID
	}
	likes, err := s.repo.ListCommentLikes(ctx, ids)
	if err != nil {
		return nil, Internal(err)
	}
	out := make([]dto.CommentSummary, len(comments))
	for i := range comments {
		out[i] = converter.CommentToSummary(&comments[i], likes[comments[i].ID])
	}
	return out, nil
}

// ToggleLike likes the comment for the caller, or removes the like.
func (s *CommentService) ToggleLike(ctx context.Context, caller auth.Identity, id uint) (dto.CommentSummary, error) {
	if _, _, err := s.repo.ToggleCommentLike(ctx, id, caller.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CommentSummary{}, NotFound(CodeCommentNotFound, "Comment not found")
		}
		return dto.CommentSummary{}, Internal(err)
	}
	return s.summary(ctx, id)
}

// Edit replaces the content; only the comment's author or an admin may.
func (s *CommentService) Edit(ctx context.Context, caller auth.Identity, id uint, req dto.CommentEditRequest) (dto.CommentSummary, error) {
	comment, err := s.get(ctx, id)
	if err != nil {
		return dto.CommentSummary{}, err
	}
	if comment.UserID != caller.UserID && !caller.IsAdmin() {
		return dto.CommentSummary{}, Forbidden(CodeForbidden, "You are not allowed to edit this comment")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return dto.CommentSummary{}, Validation("Comment content is required")
	}
	if err := s.repo.UpdateCommentContent(ctx, id, content); err != nil {
		return dto.CommentSummary{}, Internal(err)
	}
	return s.summary(ctx, id)
}

// Delete removes a comment; only its author or an admin may.
func (s *CommentService) Delete(ctx context.Context, caller auth.Identity, id uint) error {
	comment, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != caller.UserID && !caller.IsAdmin() {
		return Forbidden(CodeForbidden, "You are not allowed to delete this comment")
	}
	if err := s.repo.DeleteComment(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound(CodeCommentNotFound, "Comment not found")
		}
		return Internal(err)
	}
	return nil
}

func (s *CommentService) get(ctx context.Context, id uint) (*db.Comment, error) {
	comment, err := s.repo.GetComment(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound(CodeCommentNotFound, "Comment not found")
	}
	if err != nil {
		return nil, Internal(err)
	}
	return comment, nil
}

func (s *CommentService) summary(ctx context.Context, id uint) (dto.CommentSummary, error) {
	comment, err := s.get(ctx, id)
	if err != nil {
		return dto.CommentSummary{}, err
	}
	likes, err := s.repo.ListCommentLikes(ctx, []uint{id})
	if err != nil {
		return dto.CommentSummary{}, Internal(err)
	}
	return converter.CommentToSummary(comment, likes[id]), nil
}
