package dto

import "time"

type PostCreateRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Image    string `json:"image"`
}

type PostUpdateRequest struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Category *string `json:"category,omitempty"`
	Image    *string `json:"image,omitempty"`
}

// PostQuery mirrors the public list filters.
type PostQuery struct {
	UserID     uint   `form:"userId"`
	Category   string `form:"category"`
	Slug       string `form:"slug"`
	PostID     uint   `form:"postId"`
	SearchTerm string `form:"searchTerm"`
	Order      string `form:"order"`
	StartIndex int    `form:"startIndex"`
	Limit      int    `form:"limit"`
}

type PostSummary struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Image     string    `json:"image"`
	UserID    uint      `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PostListResponse struct {
	Posts          []PostSummary `json:"posts"`
	TotalPosts     int64         `json:"totalPosts"`
	LastMonthPosts int64         `json:"lastMonthPosts"`
}
