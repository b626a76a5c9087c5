package sql

import (
	"context"
	"errors"
	"fmt"

	"github.com/anggol23/Be-Resonansi/internal/entity/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *GormRepository) CreateComment(ctx context.Context, comment *db.Comment) error {
	if err := r.ready(); err != nil {
		return err
	}
	if comment == nil {
		return fmt.Errorf("comment is nil")
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

func (r *GormRepository) GetComment(ctx context.Context, id uint) (*db.Comment, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var comment db.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *GormRepository) UpdateCommentContent(ctx context.Context, id uint, content string) error {
	if err := r.ready(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&db.Comment{}).Where("id = ?", id).Update("content", content).Error
}

// DeleteComment removes a comment and its likes.
func (r *GormRepository) DeleteComment(ctx context.Context, id uint) error {
	if err := r.ready(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", id).Delete(&db.CommentLike{}).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&db.Comment{}, id))
	})
}

// ListCommentsByPost returns a post's comments newest first, with authors.
func (r *GormRepository) ListCommentsByPost(ctx context.Context, postID uint) ([]db.Comment, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var comments []db.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at DESC").Order("id DESC").
		Find(&comments).Error
	return comments, err
}

// ListCommentLikes maps each comment id to the ids of users who like it.
func (r *GormRepository) ListCommentLikes(ctx context.Context, commentIDs []uint) (map[uint][]uint, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	out := make(map[uint][]uint, len(commentIDs))
	if len(commentIDs) == 0 {
		return out, nil
	}
	var likes []db.CommentLike
	if err := r.db.WithContext(ctx).Where("comment_id IN ?", commentIDs).Order("created_at ASC").Find(&likes).Error; err != nil {
		return nil, err
	}
	for _, like := range likes {
		out[like.CommentID] = append(out[like.CommentID], like.UserID)
	}
	return out, nil
}

// ToggleCommentLike adds the user's like or removes it when already present,
// then recounts. It reports whether the user likes the comment afterwards.
func (r *GormRepository) ToggleCommentLike(ctx context.Context, commentID, userID uint) (*db.Comment, bool, error) {
	if err := r.ready(); err != nil {
		return nil, false, err
	}
	comment, liked, err := r.toggleCommentLike(ctx, commentID, userID)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 并发的切换请求抢先插入了同一行，重试一次即视为已点赞并取消
		comment, liked, err = r.toggleCommentLike(ctx, commentID, userID)
	}
	return comment, liked, err
}

func (r *GormRepository) toggleCommentLike(ctx context.Context, commentID, userID uint) (*db.Comment, bool, error) {
	var (
		comment db.Comment
		liked   bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&comment, commentID).Error; err != nil {
			return err
		}

		var existing db.CommentLike
		err := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).Delete(&db.CommentLike{}).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&db.CommentLike{CommentID: commentID, UserID: userID}).Error; err != nil {
				return err
			}
			liked = true
		default:
			return err
		}

		var count int64
		if err := tx.Model(&db.CommentLike{}).Where("comment_id = ?", commentID).Count(&count).Error; err != nil {
			return err
		}
		comment.NumberOfLikes = int(count)
		return tx.Model(&db.Comment{}).Where("id = ?", commentID).Update("number_of_likes", comment.NumberOfLikes).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &comment, liked, nil
}
