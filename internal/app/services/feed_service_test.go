package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

func day(n int) time.Time {
	return day0.AddDate(0, 0, n)
}

func postIDs(views []models.PostView) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	return ids
}

func TestFeedIsGatedByJoinTime(t *testing.T) {
	env := newTestEnv(t)
	x := env.user(t, "x")
	z := env.user(t, "z")

	env.clock.Set(day(1))
	clubID := env.club(t, z, "Chess")

	env.clock.Set(day(3))
	before := env.post(t, clubID, z, "before x joined")
	_, err := env.svc.Events.Create(env.ctx, z, clubID, models.Event{Title: "Old meetup"})
	require.NoError(t, err)

	env.clock.Set(day(5))
	env.member(t, clubID, x, z, models.RoleMember)

	env.clock.Set(day(6))
	after := env.post(t, clubID, z, "after x joined")
	event, err := env.svc.Events.Create(env.ctx, z, clubID, models.Event{Title: "New meetup"})
	require.NoError(t, err)

	feed, err := env.svc.Feed.Feed(env.ctx, x, models.Page{}, models.Page{})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{after}, postIDs(feed.Posts))
	require.Len(t, feed.Events, 1)
	assert.Equal(t, event.ID, feed.Events[0].ID)

	// The creator joined on day 1 and sees everything.
	feed, err = env.svc.Feed.Feed(env.ctx, z, models.Page{}, models.Page{})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{after, before}, postIDs(feed.Posts))
	assert.Len(t, feed.Events, 2)
}

func TestFeedIncludesContentCreatedAtJoinTime(t *testing.T) {
	env := newTestEnv(t)
	x := env.user(t, "x")
	z := env.user(t, "z")
	clubID := env.club(t, z, "Chess")

	env.clock.Set(day(2))
	env.member(t, clubID, x, z, models.RoleMember)
	same := env.post(t, clubID, z, "same instant")

	feed, err := env.svc.Feed.Feed(env.ctx, x, models.Page{}, models.Page{})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{same}, postIDs(feed.Posts))
}

func TestFeedSkipsMembershipWithoutJoinTime(t *testing.T) {
	env := newTestEnv(t)
	x := env.user(t, "x")
	z := env.user(t, "z")
	chess := env.club(t, z, "Chess")
	hiking := env.club(t, z, "Hiking")

	require.NoError(t, env.store.WithTx(env.ctx, func(ctx context.Context, tx repositories.Tx) error {
		return tx.Members().Create(ctx, &models.Member{
			ID:     models.NewID(),
			ClubID: chess,
			UserID: x,
			Role:   models.RoleMember,
		})
	}))
	env.member(t, hiking, x, z, models.RoleMember)

	env.clock.Advance(time.Hour)
	env.post(t, chess, z, "invisible")
	visible := env.post(t, hiking, z, "visible")

	feed, err := env.svc.Feed.Feed(env.ctx, x, models.Page{}, models.Page{})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{visible}, postIDs(feed.Posts))
}

func TestFeedWindowsAreIndependent(t *testing.T) {
	env := newTestEnv(t)
	x := env.user(t, "x")
	z := env.user(t, "z")
	chess := env.club(t, z, "Chess")
	hiking := env.club(t, z, "Hiking")
	env.member(t, chess, x, z, models.RoleMember)
	env.member(t, hiking, x, z, models.RoleMember)

	var posts []uuid.UUID
	var events []uuid.UUID
	for i, clubID := range []uuid.UUID{chess, hiking, chess, hiking} {
		env.clock.Advance(time.Minute)
		posts = append(posts, env.post(t, clubID, z, "post"))
		if i < 3 {
			e, err := env.svc.Events.Create(env.ctx, z, clubID, models.Event{Title: "event"})
			require.NoError(t, err)
			events = append(events, e.ID)
		}
	}

	feed, err := env.svc.Feed.Feed(env.ctx, x, models.Page{Limit: 2}, models.Page{Offset: 1, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{posts[3], posts[2]}, postIDs(feed.Posts))
	require.Len(t, feed.Events, 2)
	assert.Equal(t, events[1], feed.Events[0].ID)
	assert.Equal(t, events[0], feed.Events[1].ID)

	feed, err = env.svc.Feed.Feed(env.ctx, x, models.Page{Offset: 10}, models.Page{})
	require.NoError(t, err)
	assert.Empty(t, feed.Posts)
	assert.NotNil(t, feed.Posts)
	assert.Len(t, feed.Events, 3)
}

func TestFeedFlagsAndErrors(t *testing.T) {
	env := newTestEnv(t)
	x := env.user(t, "x")
	clubID := env.club(t, x, "Chess")
	postID := env.post(t, clubID, x, "mine")
	_, err := env.svc.Interactions.Add(env.ctx, x, postRef(postID), models.AxisLike)
	require.NoError(t, err)

	feed, err := env.svc.Feed.Feed(env.ctx, x, models.Page{}, models.Page{})
	require.NoError(t, err)
	require.Len(t, feed.Posts, 1)
	assert.True(t, feed.Posts[0].Liked)
	assert.False(t, feed.Posts[0].Bookmarked)

	loner := env.user(t, "loner")
	feed, err = env.svc.Feed.Feed(env.ctx, loner, models.Page{}, models.Page{})
	require.NoError(t, err)
	assert.Empty(t, feed.Posts)
	assert.Empty(t, feed.Events)

	_, err = env.svc.Feed.Feed(env.ctx, uuid.New(), models.Page{}, models.Page{})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestBookmarkedPostsNewestBookmarkFirst(t *testing.T) {
	env := newTestEnv(t)
	x := env.user(t, "x")
	clubID := env.club(t, x, "Chess")
	first := env.post(t, clubID, x, "first")
	second := env.post(t, clubID, x, "second")
	third := env.post(t, clubID, x, "third")

	for _, id := range []uuid.UUID{second, first, third} {
		env.clock.Advance(time.Second)
		_, err := env.svc.Interactions.Add(env.ctx, x, postRef(id), models.AxisBookmark)
		require.NoError(t, err)
	}
	_, err := env.svc.Interactions.Remove(env.ctx, x, postRef(third), models.AxisBookmark)
	require.NoError(t, err)

	views, err := env.svc.Feed.BookmarkedPosts(env.ctx, x, models.Page{})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first, second}, postIDs(views))
	for _, v := range views {
		assert.True(t, v.Bookmarked)
	}

	views, err = env.svc.Feed.BookmarkedPosts(env.ctx, x, models.Page{Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{second}, postIDs(views))

	// Deleted posts drop out of the list.
	require.NoError(t, env.svc.Posts.Delete(env.ctx, x, first))
	views, err = env.svc.Feed.BookmarkedPosts(env.ctx, x, models.Page{})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{second}, postIDs(views))
}
