package service

import (
	"context"
	"testing"
	"time"

	"github.com/anggol23/Be-Resonansi/internal/auth"
	"github.com/anggol23/Be-Resonansi/internal/config"
	"github.com/anggol23/Be-Resonansi/internal/entity/db"
	"github.com/anggol23/Be-Resonansi/internal/model"

	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) model.Repository {
	t.Helper()
	repo, err := model.InitRepository(&config.Config{DBType: model.DBTypeSQLite, DBPath: ":memory:"})
	require.NoError(t, err)
	return repo
}

func newTestTokens(t *testing.T) *auth.Manager {
	t.Helper()
	tokens, err := auth.NewManager("test-secret", "resonansi", time.Hour)
	require.NoError(t, err)
	return tokens
}

func seedUser(t *testing.T, repo model.Repository, username, role string) *db.User {
	t.Helper()
	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	user := &db.User{
		Username:       username,
		Email:          username + "@example.com",
		PasswordHash:   &hash,
		ProfilePicture: db.DefaultProfilePicture,
		Role:           role,
		AuthProvider:   db.AuthProviderLocal,
		IsActive:       true,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func identityOf(u *db.User) auth.Identity {
	return auth.Identity{UserID: u.ID, Role: u.Role}
}

func requireKind(t *testing.T, err error, kind Kind, message string) {
	t.Helper()
	require.Error(t, err)
	svcErr, ok := AsError(err)
	require.True(t, ok, "expected service error, got %v", err)
	require.Equal(t, kind, svcErr.Kind, "unexpected kind for %v", err)
	if message != "" {
		require.Equal(t, message, svcErr.Message)
	}
}
