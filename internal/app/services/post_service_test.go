package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

func ptr[T any](v T) *T { return &v }

var png = Upload{Data: []byte("\x89PNG fake"), ContentType: "image/png"}

func TestPostPermissions(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user(t, "admin")
	mod := env.user(t, "mod")
	plain := env.user(t, "plain")
	other := env.user(t, "other")
	outsider := env.user(t, "outsider")
	clubID := env.club(t, admin, "Chess")
	env.member(t, clubID, mod, admin, models.RoleModerator)
	env.member(t, clubID, plain, admin, models.RoleMember)
	env.member(t, clubID, other, admin, models.RoleMember)

	plainPost := env.post(t, clubID, plain, "by a member")
	modPost := env.post(t, clubID, mod, "by a moderator")

	tests := []struct {
		name   string
		actor  uuid.UUID
		postID uuid.UUID
		want   apperrors.Kind
	}{
		{"author edits own post", plain, plainPost, ""},
		{"admin edits member post", admin, plainPost, ""},
		{"moderator edits member post", mod, plainPost, apperrors.KindInsufficientPermissions},
		{"member edits another member post", other, plainPost, apperrors.KindInsufficientPermissions},
		{"admin edits moderator post", admin, modPost, apperrors.KindInsufficientPermissions},
		{"moderator edits own post", mod, modPost, ""},
		{"outsider edits post", outsider, plainPost, apperrors.KindUserNotMemberOfClub},
		{"missing post", admin, uuid.New(), apperrors.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Posts.Update(env.ctx, tt.actor, tt.postID, models.PostPatch{Content: ptr("edited by " + tt.name)})
			if tt.want == "" {
				require.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, apperrors.KindOf(err), "got %v", err)
		})
	}
}

func TestAdminMayDeleteModeratorPost(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user(t, "admin")
	mod := env.user(t, "mod")
	clubID := env.club(t, admin, "Chess")
	env.member(t, clubID, mod, admin, models.RoleModerator)
	modPost := env.post(t, clubID, mod, "moderator news")
	adminPost := env.post(t, clubID, admin, "admin news")

	err := env.svc.Posts.Delete(env.ctx, mod, adminPost)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInsufficientPermissions))

	require.NoError(t, env.svc.Posts.Delete(env.ctx, admin, modPost))
	_, err = env.svc.Posts.Get(env.ctx, admin, modPost)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestPostFormerMemberAuthor(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user(t, "admin")
	mod := env.user(t, "mod")
	clubID := env.club(t, admin, "Chess")
	env.member(t, clubID, mod, admin, models.RoleModerator)
	postID := env.post(t, clubID, mod, "left behind")

	_, err := env.svc.Posts.Update(env.ctx, admin, postID, models.PostPatch{Content: ptr("nope")})
	require.Error(t, err)

	require.NoError(t, env.svc.Membership.Leave(env.ctx, clubID, mod))
	updated, err := env.svc.Posts.Update(env.ctx, admin, postID, models.PostPatch{Content: ptr("moderated")})
	require.NoError(t, err)
	assert.Equal(t, "moderated", updated.Content)

	_, err = env.svc.Posts.Update(env.ctx, mod, postID, models.PostPatch{Content: ptr("mine again")})
	assert.True(t, apperrors.IsKind(err, apperrors.KindUserNotMemberOfClub))
}

func TestDeletePostRemovesEverything(t *testing.T) {
	env := newTestEnv(t)
	a := env.user(t, "a")
	b := env.user(t, "b")
	clubID := env.club(t, a, "Chess")
	env.member(t, clubID, b, a, models.RoleMember)

	p, err := env.svc.Posts.Create(env.ctx, b, clubID, "with picture", &png)
	require.NoError(t, err)
	require.NotNil(t, p.Picture)
	assert.True(t, env.objects.has(p.Picture.Key))

	comment, err := env.svc.Comments.Create(env.ctx, a, models.ResourceRef{Kind: models.ResourcePost, ID: p.ID}, "nice")
	require.NoError(t, err)
	_, err = env.svc.Interactions.Add(env.ctx, a, postRef(p.ID), models.AxisLike)
	require.NoError(t, err)
	_, err = env.svc.Interactions.Add(env.ctx, b, postRef(p.ID), models.AxisBookmark)
	require.NoError(t, err)
	_, err = env.svc.Interactions.Add(env.ctx, b, models.ResourceRef{Kind: models.ResourceComment, ID: comment.ID}, models.AxisLike)
	require.NoError(t, err)

	require.NoError(t, env.svc.Posts.Delete(env.ctx, a, p.ID))

	assert.False(t, env.exists(t, func(ctx context.Context, tx repositories.Tx) error {
		_, err := tx.Comments().GetByID(ctx, comment.ID)
		return err
	}))
	assert.False(t, env.objects.has(p.Picture.Key))
	require.NoError(t, env.store.WithTx(env.ctx, func(ctx context.Context, tx repositories.Tx) error {
		n, err := tx.Interactions().CountByUser(ctx, models.ResourcePost, models.AxisBookmark, b)
		require.NoError(t, err)
		assert.Zero(t, n)
		n, err = tx.Interactions().CountByUser(ctx, models.ResourceComment, models.AxisLike, b)
		require.NoError(t, err)
		assert.Zero(t, n)
		return nil
	}))
}

func TestPostCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	a := env.user(t, "a")
	outsider := env.user(t, "outsider")
	clubID := env.club(t, a, "Chess")

	_, err := env.svc.Posts.Create(env.ctx, a, clubID, "   ", nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = env.svc.Posts.Create(env.ctx, a, uuid.New(), "hello", nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	_, err = env.svc.Posts.Create(env.ctx, outsider, clubID, "hello", &png)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUserNotMemberOfClub))
	assert.Zero(t, env.objects.count(), "no upload for rejected posts")

	_, err = env.svc.Posts.Create(env.ctx, a, clubID, "", &Upload{Data: []byte("x"), ContentType: "application/pdf"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	p, err := env.svc.Posts.Create(env.ctx, a, clubID, "", &png)
	require.NoError(t, err)
	assert.Empty(t, p.Content)
	assert.NotNil(t, p.Picture)

	_, err = env.svc.Posts.Update(env.ctx, a, p.ID, models.PostPatch{Content: ptr("")})
	require.NoError(t, err, "picture posts may drop their text")
}

func TestPostPictureLifecycle(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user(t, "admin")
	mod := env.user(t, "mod")
	clubID := env.club(t, admin, "Chess")
	env.member(t, clubID, mod, admin, models.RoleModerator)
	postID := env.post(t, clubID, mod, "text first")

	_, err := env.svc.Posts.UpdatePicture(env.ctx, admin, postID, png)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInsufficientPermissions))
	assert.Zero(t, env.objects.count())

	first, err := env.svc.Posts.UpdatePicture(env.ctx, mod, postID, png)
	require.NoError(t, err)
	firstKey := first.Picture.Key

	second, err := env.svc.Posts.UpdatePicture(env.ctx, mod, postID, png)
	require.NoError(t, err)
	assert.NotEqual(t, firstKey, second.Picture.Key)
	assert.False(t, env.objects.has(firstKey), "replaced picture is removed")
	assert.True(t, env.objects.has(second.Picture.Key))

	env.objects.putErr = errors.New("disk full")
	_, err = env.svc.Posts.UpdatePicture(env.ctx, mod, postID, png)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInternal))
	assert.Equal(t, second.Picture.Key, env.getPost(t, postID).Picture.Key)
	env.objects.putErr = nil

	cleared, err := env.svc.Posts.DeletePicture(env.ctx, mod, postID)
	require.NoError(t, err)
	assert.Nil(t, cleared.Picture)
	assert.Zero(t, env.objects.count())

	again, err := env.svc.Posts.DeletePicture(env.ctx, mod, postID)
	require.NoError(t, err)
	assert.Nil(t, again.Picture)
}

func TestListPostsRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	a := env.user(t, "a")
	outsider := env.user(t, "outsider")
	clubID := env.club(t, a, "Chess")
	first := env.post(t, clubID, a, "one")
	env.clock.Advance(1)
	second := env.post(t, clubID, a, "two")

	views, err := env.svc.Posts.ListByClub(env.ctx, a, clubID, models.Page{})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{second, first}, postIDs(views))

	_, err = env.svc.Posts.ListByClub(env.ctx, outsider, clubID, models.Page{})
	assert.True(t, apperrors.IsKind(err, apperrors.KindUserNotMemberOfClub))
	_, err = env.svc.Posts.Get(env.ctx, outsider, first)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUserNotMemberOfClub))
}
