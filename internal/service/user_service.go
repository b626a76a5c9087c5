package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anggol23/Be-Resonansi/internal/auth"
	"github.com/anggol23/Be-Resonansi/internal/entity/converter"
	"github.com/anggol23/Be-Resonansi/internal/entity/db"
	"github.com/anggol23/Be-Resonansi/internal/entity/dto"
	"github.com/anggol23/Be-Resonansi/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultUserPageSize = 20
	maxUserPageSize     = 100
)

// UserService 管理用户资料与角色。
type UserService struct {
	repo model.Repository
	now  func() time.Time
}

func NewUserService(repo model.Repository) *UserService {
	return &UserService{repo: repo, now: time.Now}
}

func (s *UserService) Get(ctx context.Context, id uint) (*db.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound(CodeUserNotFound, MsgUserNotFound)
	}
	if err != nil {
		return nil, Internal(err)
	}
	return user, nil
}

// List returns one page of users plus the overall and last-month totals.
func (s *UserService) List(ctx context.Context, query dto.UserQuery) (*dto.UserListResponse, error) {
	query.Normalize(defaultUserPageSize, maxUserPageSize)
	users, meta, err := s.repo.ListUsers(ctx, &query)
	if err != nil {
		return nil, Internal(err)
	}
	total, err := s.repo.CountUsers(ctx, time.Time{})
	if err != nil {
		return nil, Internal(err)
	}
	lastMonth, err := s.repo.CountUsers(ctx, s.now().UTC().AddDate(0, -1, 0))
	if err != nil {
		return nil, Internal(err)
	}
	return &dto.UserListResponse{
		Users:          converter.UsersToSummaries(users),
		TotalUsers:     total,
		LastMonthUsers: lastMonth,
		Meta:           meta,
	}, nil
}

// Update changes profile fields. Callers may update themselves; admins may
// update anyone and are the only ones allowed to toggle IsActive.
func (s *UserService) Update(ctx context.Context, caller auth.Identity, id uint, req dto.UserUpdateRequest) (*db.User, error) {
	if caller.UserID != id && !caller.IsAdmin() {
		return nil, Forbidden(CodeForbidden, "You are not allowed to update this user")
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		if username != user.Username {
			if taken, err := s.taken(s.repo.GetUserByUsername(ctx, username)); err != nil {
				return nil, err
			} else if taken {
				return nil, Conflict(CodeUsernameExists, MsgUsernameInUse)
			}
			updates["username"] = username
		}
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		if email != normalizeEmail(user.Email) {
			if taken, err := s.taken(s.repo.GetUserByEmail(ctx, email)); err != nil {
				return nil, err
			} else if taken {
				return nil, Conflict(CodeEmailExists, MsgEmailInUse)
			}
			updates["email"] = email
		}
	}
	if req.ProfilePicture != nil {
		picture := strings.TrimSpace(*req.ProfilePicture)
		if picture == "" {
			picture = db.DefaultProfilePicture
		}
		updates["profile_picture"] = picture
	}
	if req.Password != nil {
		if user.AuthProvider != db.AuthProviderLocal {
			return nil, Validation("Password cannot be set for accounts that sign in with Google")
		}
		if err := validatePassword(*req.Password); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, Internal(err)
		}
		updates["password_hash"] = hash
	}
	if req.IsActive != nil {
		if !caller.IsAdmin() {
			return nil, Forbidden(CodeForbidden, "Only admins can change account status")
		}
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return user, nil
	}
	if err := s.repo.UpdateUser(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict(CodeEmailExists, "Username or email already in use")
		}
		return nil, Internal(err)
	}
	return s.Get(ctx, id)
}

func (s *UserService) taken(_ *db.User, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, Internal(err)
}

// Delete removes an account. Callers may delete themselves; admins anyone.
func (s *UserService) Delete(ctx context.Context, caller auth.Identity, id uint) error {
	if caller.UserID != id && !caller.IsAdmin() {
		return Forbidden(CodeForbidden, "You are not allowed to delete this user")
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound(CodeUserNotFound, MsgUserNotFound)
		}
		return Internal(err)
	}
	logrus.WithFields(logrus.Fields{"user_id": id, "by": caller.UserID}).Info("user deleted")
	return nil
}

// UpdateRole sets a user's role. Admins cannot change their own role.
func (s *UserService) UpdateRole(ctx context.Context, caller auth.Identity, id uint, role string) (*db.User, error) {
	role = strings.TrimSpace(role)
	if role != db.UserRoleAdmin && role != db.UserRoleUser {
		return nil, Validation("Role must be either user or admin")
	}
	if !caller.IsAdmin() {
		return nil, Forbidden(CodeForbidden, "Only admins can change roles")
	}
	if caller.UserID == id {
		return nil, ValidationCode(CodeCannotChangeSelf, "You cannot change your own role")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateUser(ctx, id, map[string]interface{}{"role": role}); err != nil {
		return nil, Internal(err)
	}
	logrus.WithFields(logrus.Fields{"user_id": id, "role": role, "by": caller.UserID}).Info("user role changed")
	return s.Get(ctx, id)
}
