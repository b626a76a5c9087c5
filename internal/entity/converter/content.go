package converter

import (
	"fmt"

	"github.com/anggol23/Be-Resonansi/internal/entity/db"
	"github.com/anggol23/Be-Resonansi/internal/entity/dto"
)

const (
	downloadPathFormat = "/api/unduhan/download/%d"
	imagePathFormat    = "/api/unduhan/image/%d"
)

func PostToSummary(p *db.Post) dto.PostSummary {
	if p == nil {
		return dto.PostSummary{}
	}
	return dto.PostSummary{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		Content:   p.Content,
		Category:  p.Category,
		Image:     p.Image,
		UserID:    p.AuthorID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func PostsToSummaries(posts []db.Post) []dto.PostSummary {
	out := make([]dto.PostSummary, len(posts))
	for i := range posts {
		out[i] = PostToSummary(&posts[i])
	}
	return out
}

// CommentToSummary converts a comment and the ids of users who like it.
func CommentToSummary(c *db.Comment, likes []uint) dto.CommentSummary {
	if c == nil {
		return dto.CommentSummary{}
	}
	if likes == nil {
		likes = []uint{}
	}
	summary := dto.CommentSummary{
		ID:            c.ID,
		Content:       c.Content,
		PostID:        c.PostID,
		UserID:        c.UserID,
		Likes:         likes,
		NumberOfLikes: c.NumberOfLikes,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	if c.User != nil {
		summary.User = &dto.CommentAuthor{
			Username:       c.User.Username,
			ProfilePicture: c.User.ProfilePicture,
		}
	}
	return summary
}

// FileToSummary describes an uploaded file. Downloads always go through the
// API so the authorization gate applies.
func FileToSummary(f *db.UploadedFile) dto.FileSummary {
	if f == nil {
		return dto.FileSummary{}
	}
	summary := dto.FileSummary{
		ID:           f.ID,
		Title:        f.Title,
		OriginalName: f.OriginalName,
		StoredName:   f.StoredName,
		Size:         f.Size,
		MimeType:     f.MimeType,
		StorageKind:  f.Content.Kind,
		DownloadURL:  fmt.Sprintf(downloadPathFormat, f.ID),
		UploadedBy:   f.UploadedBy,
		CreatedAt:    f.CreatedAt,
	}
	switch {
	case f.Image.IsZero():
	case f.Image.Kind == db.ContentKindURL:
		summary.ImageURL = f.Image.URL
	default:
		summary.ImageURL = fmt.Sprintf(imagePathFormat, f.ID)
	}
	return summary
}
