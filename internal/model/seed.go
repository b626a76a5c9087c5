package model

import (
	"context"
	"errors"
	"strings"

	"github.com/anggol23/Be-Resonansi/internal/auth"
	"github.com/anggol23/Be-Resonansi/internal/config"
	"github.com/anggol23/Be-Resonansi/internal/entity/db"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SeedAdmin ensures the bootstrap admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD exists. Existing accounts are left untouched.
func SeedAdmin(ctx context.Context, repo Repository, cfg config.Config) error {
	if repo == nil {
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	password := cfg.AdminPassword
	if email == "" || password == "" {
		return nil
	}

	existing, err := repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != db.UserRoleAdmin {
			logrus.WithField("email", email).Warn("bootstrap admin email belongs to a non-admin account")
		}
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	username := strings.ToLower(strings.TrimSpace(cfg.AdminUsername))
	if username == "" {
		username = "admin"
	}

	admin := &db.User{
		Username:       username,
		Email:          email,
		PasswordHash:   &hash,
		ProfilePicture: db.DefaultProfilePicture,
		Role:           db.UserRoleAdmin,
		AuthProvider:   db.AuthProviderLocal,
		IsActive:       true,
	}
	if err := repo.CreateUser(ctx, admin); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"email": email, "user_id": admin.ID}).Info("bootstrap admin created")
	return nil
}
