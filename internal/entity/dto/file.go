package dto

import "time"

// FileSummary describes an uploaded file without its bytes.
type FileSummary struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	OriginalName string    `json:"originalName"`
	StoredName   string    `json:"storedName"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mimeType"`
	StorageKind  string    `json:"storageKind"`
	DownloadURL  string    `json:"downloadUrl"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	UploadedBy   *uint     `json:"uploadedBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
