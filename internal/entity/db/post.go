package db

import "time"

const (
	CategoryPendidikan = "pendidikan"
	CategorySosial     = "sosial"
	CategoryEkonomi    = "ekonomi"
	CategoryPolitik    = "politik"
)

// PostCategories lists the accepted post categories.
var PostCategories = []string{CategoryPendidikan, CategorySosial, CategoryEkonomi, CategoryPolitik}

// Post 表示一篇博客文章。
type Post struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Title     string    `gorm:"column:title;type:varchar(100);not null" json:"title"`
	Slug      string    `gorm:"column:slug;type:varchar(191);uniqueIndex;not null" json:"slug"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	Category  string    `gorm:"column:category;type:varchar(32);index;not null" json:"category"`
	Image     string    `gorm:"column:image;type:varchar(1024);not null" json:"image"`
	AuthorID  uint      `gorm:"column:author_id;index;not null" json:"userId"`
}

func (Post) TableName() string {
	return "posts"
}

// IsValidCategory reports whether category is one of PostCategories.
func IsValidCategory(category string) bool {
	for _, c := range PostCategories {
		if c == category {
			return true
		}
	}
	return false
}
