package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anggol23/Be-Resonansi/internal/auth"
	"github.com/anggol23/Be-Resonansi/internal/entity/common"
	"github.com/anggol23/Be-Resonansi/internal/entity/db"
	"github.com/anggol23/Be-Resonansi/internal/entity/dto"
	"github.com/anggol23/Be-Resonansi/internal/model"
	"github.com/anggol23/Be-Resonansi/internal/session"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrSessionRevoked is returned by Authenticate when the token's session no
// longer exists. It matches auth.ErrTokenInvalid.
var ErrSessionRevoked = fmt.Errorf("%w: session revoked", auth.ErrTokenInvalid)

// ErrUnknownSubject is returned by Authenticate when the token names an
// account that no longer exists. It matches auth.ErrTokenInvalid.
var ErrUnknownSubject = fmt.Errorf("%w: unknown subject", auth.ErrTokenInvalid)

// AuthResult is a freshly issued credential and the account it belongs to.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *db.User
}

// AuthService 负责注册、登录、令牌校验与登出。
type AuthService struct {
	repo     model.Repository
	tokens   *auth.Manager
	sessions session.Store
}

// NewAuthService creates the service. sessions may be nil for purely
// stateless tokens.
func NewAuthService(repo model.Repository, tokens *auth.Manager, sessions session.Store) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, sessions: sessions}
}

// Signup creates a local account and signs it in.
func (s *AuthService) Signup(ctx context.Context, req dto.SignupRequest) (*AuthResult, error) {
	username := strings.TrimSpace(req.Username)
	email := normalizeEmail(req.Email)
	if err := ValidateSignup(username, email, req.Password); err != nil {
		return nil, err
	}
	if strings.EqualFold(strings.TrimSpace(req.Role), db.UserRoleAdmin) {
		// 注册时不接受自行申请的管理员角色
		logrus.WithField("email", email).Warn("signup requested admin role; creating a regular user")
	}

	if err := s.ensureAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, Internal(err)
	}
	user := &db.User{
		Username:       username,
		Email:          email,
		PasswordHash:   &hash,
		ProfilePicture: db.DefaultProfilePicture,
		Role:           db.UserRoleUser,
		AuthProvider:   db.AuthProviderLocal,
		IsActive:       true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateError(ctx, username, email)
		}
		return nil, Internal(err)
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user signed up")
	return s.issue(ctx, user)
}

// ensureAvailable is the fast path; the unique indexes remain the authority.
func (s *AuthService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return Conflict(CodeEmailExists, MsgEmailInUse)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Internal(err)
	}
	if _, err := s.repo.GetUserByUsername(ctx, username); err == nil {
		return Conflict(CodeUsernameExists, MsgUsernameInUse)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Internal(err)
	}
	return nil
}

// duplicateError names the field that lost a concurrent insert race.
func (s *AuthService) duplicateError(ctx context.Context, username, email string) error {
	if _, err := s.repo.GetUserByUsername(ctx, username); err == nil {
		if _, err := s.repo.GetUserByEmail(ctx, email); err != nil {
			return Conflict(CodeUsernameExists, MsgUsernameInUse)
		}
	}
	return Conflict(CodeEmailExists, MsgEmailInUse)
}

// Signin verifies a local password.
func (s *AuthService) Signin(ctx context.Context, req dto.SigninRequest) (*AuthResult, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, Validation(MsgAllFieldsRequired)
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound(CodeUserNotFound, MsgUserNotFound)
	}
	if err != nil {
		return nil, Internal(err)
	}

	var hash string
	if user.HasLocalPassword() {
		hash = *user.PasswordHash
	}
	if err := auth.VerifyPassword(hash, req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) || errors.Is(err, auth.ErrNoPassword) {
			logrus.WithFields(logrus.Fields{"user_id": user.ID, "reason": err.Error()}).Info("signin rejected")
			return nil, Unauthorized(CodeInvalidCredentials, MsgInvalidCredential)
		}
		return nil, Internal(err)
	}
	if !user.IsActive {
		return nil, Forbidden(CodeUserDisabled, MsgAccountDisabled)
	}
	return s.issue(ctx, user)
}

// SignInWithExternalIdentity signs in a verified external account, linking it
// to an existing account by email or creating a new one.
func (s *AuthService) SignInWithExternalIdentity(ctx context.Context, ext auth.ExternalIdentity) (*AuthResult, error) {
	subject := strings.TrimSpace(ext.Subject)
	email := normalizeEmail(ext.Email)
	if subject == "" || email == "" {
		return nil, Validation("Google account id and email are required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByGoogleID(ctx, subject)
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		user, err = s.linkOrCreate(ctx, ext, subject, email)
		if err != nil {
			return nil, err
		}
	default:
		return nil, Internal(err)
	}

	if ext.ClientAsserted && user.Role == db.UserRoleAdmin {
		return nil, adminNeedsVerifiedCredential(user.ID)
	}
	if !user.IsActive {
		return nil, Forbidden(CodeUserDisabled, MsgAccountDisabled)
	}
	return s.issue(ctx, user)
}

// adminNeedsVerifiedCredential rejects an unsigned client profile that would
// sign in as an admin.
func adminNeedsVerifiedCredential(userID uint) error {
	logrus.WithField("user_id", userID).Warn("unverified google profile refused for admin account")
	return Forbidden(CodeForbidden, "Admin accounts must sign in with a verified Google credential")
}

func (s *AuthService) linkOrCreate(ctx context.Context, ext auth.ExternalIdentity, subject, email string) (*db.User, error) {
	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		if !ext.EmailVerified {
			return nil, Conflict(CodeEmailExists, "Email is registered with another sign-in method")
		}
		if ext.ClientAsserted && existing.Role == db.UserRoleAdmin {
			return nil, adminNeedsVerifiedCredential(existing.ID)
		}
		updates := map[string]interface{}{"google_id": subject}
		if (existing.ProfilePicture == "" || existing.ProfilePicture == db.DefaultProfilePicture) && ext.Picture != "" {
			updates["profile_picture"] = ext.Picture
		}
		if err := s.repo.UpdateUser(ctx, existing.ID, updates); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, Conflict(CodeEmailExists, MsgEmailInUse)
			}
			return nil, Internal(err)
		}
		logrus.WithFields(logrus.Fields{"user_id": existing.ID, "provider": ext.Provider}).Info("external identity linked")
		linked, err := s.repo.GetUserByID(ctx, existing.ID)
		if err != nil {
			return nil, Internal(err)
		}
		return linked, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Internal(err)
	}

	username, err := s.deriveHandle(ctx, ext.Name, email)
	if err != nil {
		return nil, err
	}
	picture := strings.TrimSpace(ext.Picture)
	if picture == "" {
		picture = db.DefaultProfilePicture
	}
	googleID := subject
	user := &db.User{
		Username:       username,
		Email:          email,
		ProfilePicture: picture,
		Role:           db.UserRoleUser,
		GoogleID:       &googleID,
		AuthProvider:   db.AuthProviderGoogle,
		IsActive:       true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict(CodeEmailExists, MsgEmailInUse)
		}
		return nil, Internal(err)
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user created from external identity")
	return user, nil
}

// deriveHandle builds a free username from the display name, falling back to
// the email's local part, with a numeric suffix on collision.
func (s *AuthService) deriveHandle(ctx context.Context, name, email string) (string, error) {
	base := handleFrom(name)
	if len(base) < minUsernameLength {
		local, _, _ := strings.Cut(email, "@")
		base = handleFrom(local)
	}
	if len(base) < minUsernameLength {
		base = "user"
	}
	if len(base) > maxUsernameLength-4 {
		base = base[:maxUsernameLength-4]
	}

	for i := 0; i < 20; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s%d", base, i+1)
		}
		taken, err := s.usernameTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return base + strings.ReplaceAll(uuid.NewString(), "-", "")[:4], nil
}

func (s *AuthService) usernameTaken(ctx context.Context, username string) (bool, error) {
	_, err := s.repo.GetUserByUsername(ctx, username)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, Internal(err)
}

// issue signs a token and, with a session store, records the session the
// token's jti points at.
func (s *AuthService) issue(ctx context.Context, user *db.User) (*AuthResult, error) {
	sessionID := uuid.NewString()
	token, expiresAt, err := s.tokens.Issue(user, sessionID)
	if err != nil {
		return nil, Internal(err)
	}
	if s.sessions != nil {
		record := &db.Session{
			ID:        sessionID,
			UserID:    user.ID,
			Payload:   common.JSONMap{"provider": user.AuthProvider},
			ExpiresAt: expiresAt,
		}
		if err := s.sessions.Create(ctx, record); err != nil {
			return nil, Internal(err)
		}
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Authenticate resolves a bearer token to an identity. Token failures come
// back as auth.ErrTokenExpired or auth.ErrTokenInvalid; a disabled account is
// a Forbidden service error. The role is read from the account, so a role
// change applies without re-login.
func (s *AuthService) Authenticate(ctx context.Context, token string) (auth.Identity, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return auth.Identity{}, err
	}
	if s.sessions != nil {
		if _, err := s.sessions.Get(ctx, claims.ID); err != nil {
			if errors.Is(err, session.ErrNotFound) {
				return auth.Identity{}, ErrSessionRevoked
			}
			return auth.Identity{}, Internal(err)
		}
	}

	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return auth.Identity{}, ErrUnknownSubject
	}
	if err != nil {
		return auth.Identity{}, Internal(err)
	}
	if !user.IsActive {
		return auth.Identity{}, Forbidden(CodeUserDisabled, MsgAccountDisabled)
	}
	return auth.Identity{UserID: user.ID, Role: user.Role, SessionID: claims.ID}, nil
}

// Signout ends the token's session. It never fails on a missing, expired or
// unreadable token.
func (s *AuthService) Signout(ctx context.Context, token string) error {
	if s.sessions == nil || strings.TrimSpace(token) == "" {
		return nil
	}
	claims, err := s.tokens.VerifyIgnoringExpiry(token)
	if err != nil || claims.ID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, claims.ID); err != nil && !errors.Is(err, session.ErrNotFound) {
		return Internal(err)
	}
	return nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, identity auth.Identity) (*db.User, error) {
	user, err := s.repo.GetUserByID(ctx, identity.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound(CodeUserNotFound, MsgUserNotFound)
	}
	if err != nil {
		return nil, Internal(err)
	}
	return user, nil
}

// TokenLifetime is the validity of every issued token.
func (s *AuthService) TokenLifetime() time.Duration {
	return s.tokens.Expiry()
}
