package db

import "time"

// Comment 表示文章下的评论。NumberOfLikes mirrors the size of its like set.
type Comment struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Content       string    `gorm:"column:content;type:text;not null" json:"content"`
	PostID        uint      `gorm:"column:post_id;index;not null" json:"postId"`
	UserID        uint      `gorm:"column:user_id;index;not null" json:"userId"`
	NumberOfLikes int       `gorm:"column:number_of_likes;not null;default:0" json:"numberOfLikes"`
	User          *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}

// CommentLike records that a user likes a comment. The composite key keeps a
// user from liking the same comment twice.
type CommentLike struct {
	CommentID uint      `gorm:"column:comment_id;primaryKey;autoIncrement:false"`
	UserID    uint      `gorm:"column:user_id;primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time
}

func (CommentLike) TableName() string {
	return "comment_likes"
}
