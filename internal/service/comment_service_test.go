package service

import (
	"context"
	"testing"

	"github.com/anggol23/Be-Resonansi/internal/entity/db"
	"github.com/anggol23/Be-Resonansi/internal/entity/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	posts := NewPostService(repo)
	svc := NewCommentService(repo, posts)
	ctx := context.Background()

	admin := identityOf(seedUser(t, repo, "admin", db.UserRoleAdmin))
	alice := identityOf(seedUser(t, repo, "alice", db.UserRoleUser))
	bob := identityOf(seedUser(t, repo, "bob", db.UserRoleUser))

	post, err := posts.Create(ctx, admin, validPost("Komentar Pembaca"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, alice, dto.CommentCreateRequest{Content: "  ", PostID: post.ID})
	requireKind(t, err, KindValidation, "")
	_, err = svc.Create(ctx, alice, dto.CommentCreateRequest{Content: "hi", PostID: 9999})
	requireKind(t, err, KindNotFound, "")

	comment, err := svc.Create(ctx, alice, dto.CommentCreateRequest{Content: "Tulisan bagus", PostID: post.ID})
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, comment.UserID)
	require.NotNil(t, comment.User)
	assert.Equal(t, "alice", comment.User.Username)

	liked, err := svc.ToggleLike(ctx, bob, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, liked.NumberOfLikes)
	assert.Equal(t, []uint{bob.UserID}, liked.Likes)

	unliked, err := svc.ToggleLike(ctx, bob, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, unliked.NumberOfLikes)
	assert.Empty(t, unliked.Likes)

	_, err = svc.Edit(ctx, bob, comment.ID, dto.CommentEditRequest{Content: "hijacked"})
	requireKind(t, err, KindForbidden, "")
	edited, err := svc.Edit(ctx, alice, comment.ID, dto.CommentEditRequest{Content: "Tulisan sangat bagus"})
	require.NoError(t, err)
	assert.Equal(t, "Tulisan sangat bagus", edited.Content)

	list, err := svc.ListByPostSlug(ctx, post.Slug)
	require.NoError(t, err)
	require.Len(t, list, 1)

	requireKind(t, svc.Delete(ctx, bob, comment.ID), KindForbidden, "")
	require.NoError(t, svc.Delete(ctx, admin, comment.ID))
	list, err = svc.ListByPostSlug(ctx, post.Slug)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.ToggleLike(ctx, bob, comment.ID)
	requireKind(t, err, KindNotFound, "")
}
