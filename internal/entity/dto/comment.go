package dto

import "time"

// CommentCreateRequest is the payload for a new comment. The author is always
// the authenticated caller, so no user id is accepted.
type CommentCreateRequest struct {
	Content string `json:"content"`
	PostID  uint   `json:"postId"`
}

type CommentEditRequest struct {
	Content string `json:"content"`
}

type CommentAuthor struct {
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
}

type CommentSummary struct {
	ID            uint           `json:"id"`
	Content       string         `json:"content"`
	PostID        uint           `json:"postId"`
	UserID        uint           `json:"userId"`
	Likes         []uint         `json:"likes"`
	NumberOfLikes int            `json:"numberOfLikes"`
	User          *CommentAuthor `json:"user,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}
