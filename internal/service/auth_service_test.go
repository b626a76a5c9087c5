package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/anggol23/Be-Resonansi/internal/auth"
	"github.com/anggol23/Be-Resonansi/internal/entity/converter"
	"github.com/anggol23/Be-Resonansi/internal/entity/db"
	"github.com/anggol23/Be-Resonansi/internal/entity/dto"
	"github.com/anggol23/Be-Resonansi/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupCreatesUserAndToken(t *testing.T) {
	repo := newTestRepo(t)
	tokens := newTestTokens(t)
	svc := NewAuthService(repo, tokens, nil)

	res, err := svc.Signup(context.Background(), dto.SignupRequest{Username: "john1", Email: "John1@Example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	assert.Equal(t, "john1@example.com", res.User.Email)
	assert.Equal(t, db.UserRoleUser, res.User.Role)
	assert.Equal(t, db.AuthProviderLocal, res.User.AuthProvider)

	claims, err := tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	raw, err := json.Marshal(converter.UserToSummary(res.User))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "$2a$")
}

func TestSignupRejectsUnderscoreHandle(t *testing.T) {
	svc := NewAuthService(newTestRepo(t), newTestTokens(t), nil)
	_, err := svc.Signup(context.Background(), dto.SignupRequest{Username: "john_doe", Email: "john@example.com", Password: "secret1"})
	requireKind(t, err, KindValidation, MsgUsernameCharset)
}

func TestSignupNeverGrantsAdmin(t *testing.T) {
	svc := NewAuthService(newTestRepo(t), newTestTokens(t), nil)
	res, err := svc.Signup(context.Background(), dto.SignupRequest{Username: "mallory", Email: "m@example.com", Password: "secret1", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, db.UserRoleUser, res.User.Role)
}

func TestSignupDuplicates(t *testing.T) {
	svc := NewAuthService(newTestRepo(t), newTestTokens(t), nil)
	ctx := context.Background()

	_, err := svc.Signup(ctx, dto.SignupRequest{Username: "john1", Email: "john1@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, dto.SignupRequest{Username: "john2", Email: "john1@example.com", Password: "secret1"})
	requireKind(t, err, KindConflict, MsgEmailInUse)

	_, err = svc.Signup(ctx, dto.SignupRequest{Username: "john1", Email: "other@example.com", Password: "secret1"})
	requireKind(t, err, KindConflict, MsgUsernameInUse)
}

func TestSignin(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewAuthService(repo, newTestTokens(t), nil)
	ctx := context.Background()
	user := seedUser(t, repo, "john1", db.UserRoleUser)

	res, err := svc.Signin(ctx, dto.SigninRequest{Email: user.Email, Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	res, err = svc.Signin(ctx, dto.SigninRequest{Email: user.Email, Password: "wrong"})
	requireKind(t, err, KindUnauthorized, MsgInvalidCredential)
	assert.Nil(t, res)

	_, err = svc.Signin(ctx, dto.SigninRequest{Email: "nobody@example.com", Password: "secret1"})
	requireKind(t, err, KindNotFound, MsgUserNotFound)

	require.NoError(t, repo.UpdateUser(ctx, user.ID, map[string]interface{}{"is_active": false}))
	_, err = svc.Signin(ctx, dto.SigninRequest{Email: user.Email, Password: "secret1"})
	requireKind(t, err, KindForbidden, MsgAccountDisabled)
}

func TestSigninGoogleAccountHasNoPassword(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewAuthService(repo, newTestTokens(t), nil)
	ctx := context.Background()

	_, err := svc.SignInWithExternalIdentity(ctx, auth.ExternalIdentity{Provider: db.AuthProviderGoogle, Subject: "g-1", Email: "jane@example.com", Name: "Jane Doe", EmailVerified: true})
	require.NoError(t, err)

	_, err = svc.Signin(ctx, dto.SigninRequest{Email: "jane@example.com", Password: "anything"})
	requireKind(t, err, KindUnauthorized, MsgInvalidCredential)
}

func TestSignInWithExternalIdentity(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewAuthService(repo, newTestTokens(t), nil)
	ctx := context.Background()
	ext := auth.ExternalIdentity{Provider: db.AuthProviderGoogle, Subject: "g-42", Email: "Jane@Example.com", Name: "Jane Doe", Picture: "https://img/jane.png", EmailVerified: true}

	first, err := svc.SignInWithExternalIdentity(ctx, ext)
	require.NoError(t, err)
	assert.Equal(t, "janedoe", first.User.Username)
	assert.Equal(t, db.AuthProviderGoogle, first.User.AuthProvider)
	assert.False(t, first.User.HasLocalPassword())
	assert.Equal(t, "https://img/jane.png", first.User.ProfilePicture)

	second, err := svc.SignInWithExternalIdentity(ctx, ext)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)

	other := ext
	other.Subject = "g-43"
	other.Email = "jane2@example.com"
	third, err := svc.SignInWithExternalIdentity(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, "janedoe2", third.User.Username)
}

func TestExternalIdentityLinksVerifiedEmail(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewAuthService(repo, newTestTokens(t), nil)
	ctx := context.Background()
	local := seedUser(t, repo, "john1", db.UserRoleUser)

	_, err := svc.SignInWithExternalIdentity(ctx, auth.ExternalIdentity{Provider: db.AuthProviderGoogle, Subject: "g-7", Email: local.Email, EmailVerified: false})
	requireKind(t, err, KindConflict, "")

	res, err := svc.SignInWithExternalIdentity(ctx, auth.ExternalIdentity{Provider: db.AuthProviderGoogle, Subject: "g-7", Email: local.Email, EmailVerified: true})
	require.NoError(t, err)
	assert.Equal(t, local.ID, res.User.ID)
	require.NotNil(t, res.User.GoogleID)
	assert.Equal(t, "g-7", *res.User.GoogleID)
	assert.True(t, res.User.HasLocalPassword(), "linking keeps the local password")
}

func TestClientAssertedProfileCannotTakeOverAdmin(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewAuthService(repo, newTestTokens(t), nil)
	ctx := context.Background()
	admin := seedUser(t, repo, "boss", db.UserRoleAdmin)
	member := seedUser(t, repo, "john1", db.UserRoleUser)

	asserted := auth.ExternalIdentity{Provider: db.AuthProviderGoogle, Subject: "g-admin", Email: admin.Email, EmailVerified: true, ClientAsserted: true}
	_, err := svc.SignInWithExternalIdentity(ctx, asserted)
	requireKind(t, err, KindForbidden, "")

	unlinked, err := repo.GetUserByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Nil(t, unlinked.GoogleID, "refused profile must not be linked")

	// 已通过签名凭证关联的管理员也不能用客户端资料登录
	verified := asserted
	verified.ClientAsserted = false
	_, err = svc.SignInWithExternalIdentity(ctx, verified)
	require.NoError(t, err)
	_, err = svc.SignInWithExternalIdentity(ctx, asserted)
	requireKind(t, err, KindForbidden, "")

	res, err := svc.SignInWithExternalIdentity(ctx, auth.ExternalIdentity{Provider: db.AuthProviderGoogle, Subject: "g-member", Email: member.Email, EmailVerified: true, ClientAsserted: true})
	require.NoError(t, err)
	assert.Equal(t, member.ID, res.User.ID)
}

func TestAuthenticateUsesCurrentRole(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewAuthService(repo, newTestTokens(t), nil)
	ctx := context.Background()
	user := seedUser(t, repo, "john1", db.UserRoleUser)

	res, err := svc.Signin(ctx, dto.SigninRequest{Email: user.Email, Password: "secret1"})
	require.NoError(t, err)

	identity, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, db.UserRoleUser, identity.Role)

	require.NoError(t, repo.UpdateUser(ctx, user.ID, map[string]interface{}{"role": db.UserRoleAdmin}))
	identity, err = svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, db.UserRoleAdmin, identity.Role)

	require.NoError(t, repo.UpdateUser(ctx, user.ID, map[string]interface{}{"is_active": false}))
	_, err = svc.Authenticate(ctx, res.Token)
	requireKind(t, err, KindForbidden, MsgAccountDisabled)

	require.NoError(t, repo.DeleteUser(ctx, user.ID))
	_, err = svc.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)

	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestSignoutRevokesSession(t *testing.T) {
	repo := newTestRepo(t)
	store := session.NewDatabaseStore(repo)
	svc := NewAuthService(repo, newTestTokens(t), store)
	ctx := context.Background()
	user := seedUser(t, repo, "john1", db.UserRoleUser)

	res, err := svc.Signin(ctx, dto.SigninRequest{Email: user.Email, Password: "secret1"})
	require.NoError(t, err)

	identity, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	require.NotEmpty(t, identity.SessionID)

	require.NoError(t, svc.Signout(ctx, res.Token))
	_, err = svc.Authenticate(ctx, res.Token)
	assert.True(t, errors.Is(err, ErrSessionRevoked))
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)

	// idempotent
	require.NoError(t, svc.Signout(ctx, res.Token))
	require.NoError(t, svc.Signout(ctx, ""))
	require.NoError(t, svc.Signout(ctx, "garbage"))
}

func TestMe(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewAuthService(repo, newTestTokens(t), nil)
	user := seedUser(t, repo, "john1", db.UserRoleUser)

	got, err := svc.Me(context.Background(), identityOf(user))
	require.NoError(t, err)
	assert.Equal(t, "john1", got.Username)

	_, err = svc.Me(context.Background(), auth.Identity{UserID: 999})
	requireKind(t, err, KindNotFound, MsgUserNotFound)
}
