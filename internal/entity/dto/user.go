package dto

import (
	"time"

	"github.com/anggol23/Be-Resonansi/internal/entity/common"
)

// UserSummary is the public projection of an account. It never carries the
// password hash.
type UserSummary struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	ProfilePicture string    `json:"profilePicture"`
	Role           string    `json:"role"`
	AuthProvider   string    `json:"authProvider"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// UserQuery supports listing users with pagination.
type UserQuery struct {
	common.BaseParams
	Role    string `json:"role" form:"role" query:"role"`
	Keyword string `json:"keyword" form:"keyword" query:"keyword"`
}

// UserUpdateRequest is the payload for updating a user.
type UserUpdateRequest struct {
	Username       *string `json:"username,omitempty"`
	Email          *string `json:"email,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
	Password       *string `json:"password,omitempty"`
	IsActive       *bool   `json:"isActive,omitempty"`
}

// UserRoleRequest is the payload for changing a user's role.
type UserRoleRequest struct {
	Role string `json:"role"`
}

// UserListResponse is the response for listing users.
type UserListResponse struct {
	Users          []UserSummary `json:"users"`
	TotalUsers     int64         `json:"totalUsers"`
	LastMonthUsers int64         `json:"lastMonthUsers"`
	Meta           *common.Meta  `json:"meta"`
}
