package db

import "time"

const (
	UserRoleAdmin = "admin"
	UserRoleUser  = "user"

	AuthProviderLocal  = "local"
	AuthProviderGoogle = "google"

	DefaultProfilePicture = "https://www.gravatar.com/avatar/?d=mp"
)

// User 表示持久化的用户账户。
//
// PasswordHash is set iff AuthProvider is local; GoogleID is set for accounts
// that signed in through Google at least once.
type User struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Username       string    `gorm:"column:username;type:varchar(32);uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash   *string   `gorm:"column:password_hash;type:varchar(255)" json:"-"`
	ProfilePicture string    `gorm:"column:profile_picture;type:varchar(1024)" json:"profilePicture"`
	Role           string    `gorm:"column:role;type:varchar(16);index;not null;default:user" json:"role"`
	GoogleID       *string   `gorm:"column:google_id;type:varchar(255);uniqueIndex" json:"-"`
	AuthProvider   string    `gorm:"column:auth_provider;type:varchar(16);not null;default:local" json:"authProvider"`
	IsActive       bool      `gorm:"column:is_active;not null;default:true" json:"isActive"`
}

// TableName 指定表名。
func (User) TableName() string {
	return "users"
}

// HasLocalPassword reports whether the account can sign in with a password.
func (u *User) HasLocalPassword() bool {
	return u != nil && u.PasswordHash != nil && *u.PasswordHash != ""
}

// IsAdmin reports whether the account holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}
