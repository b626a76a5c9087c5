package db

import "time"

const (
	ContentKindPath = "path"
	ContentKindBlob = "blob"
	ContentKindURL  = "url"
)

// ContentRef points at stored bytes. Exactly one of Path, Blob or URL is set
// and it matches Kind.
type ContentRef struct {
	Kind string `gorm:"column:kind;type:varchar(8)" json:"kind,omitempty"`
	Path string `gorm:"column:path;type:varchar(512)" json:"-"`
	Blob []byte `gorm:"column:blob" json:"-"`
	URL  string `gorm:"column:url;type:varchar(1024)" json:"url,omitempty"`
}

// IsZero reports whether the reference points at nothing.
func (r ContentRef) IsZero() bool {
	return r.Kind == ""
}

// UploadedFile 表示下载区（unduhan）中的一个文件及其可选缩略图。
type UploadedFile struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	Title         string     `gorm:"column:title;type:varchar(255);not null" json:"title"`
	StoredName    string     `gorm:"column:stored_name;type:varchar(255);uniqueIndex;not null" json:"storedName"`
	OriginalName  string     `gorm:"column:original_name;type:varchar(255)" json:"originalName"`
	Size          int64      `gorm:"column:size;not null;default:0" json:"size"`
	MimeType      string     `gorm:"column:mime_type;type:varchar(128)" json:"mimeType"`
	Content       ContentRef `gorm:"embedded;embeddedPrefix:content_" json:"content"`
	Image         ContentRef `gorm:"embedded;embeddedPrefix:image_" json:"image"`
	ImageMimeType string     `gorm:"column:image_mime_type;type:varchar(64)" json:"imageMimeType,omitempty"`
	UploadedBy    *uint      `gorm:"column:uploaded_by;index" json:"uploadedBy,omitempty"`
}

func (UploadedFile) TableName() string {
	return "unduhan"
}
