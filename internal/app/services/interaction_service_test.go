package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

func postRef(id uuid.UUID) models.ResourceRef {
	return models.ResourceRef{Kind: models.ResourcePost, ID: id}
}

func TestLikeIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	x := env.user(t, "x")
	z := env.user(t, "z")
	clubID := env.club(t, z, "Chess")
	env.member(t, clubID, x, z, models.RoleMember)
	postID := env.post(t, clubID, x, "hello")

	first, err := env.svc.Interactions.Add(env.ctx, x, postRef(postID), models.AxisLike)
	require.NoError(t, err)
	assert.True(t, first.Changed)
	assert.Equal(t, 1, first.Counters[models.AxisLike])

	second, err := env.svc.Interactions.Add(env.ctx, x, postRef(postID), models.AxisLike)
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, 1, second.Counters[models.AxisLike])
	assert.Equal(t, 1, env.getPost(t, postID).Likes)

	removed, err := env.svc.Interactions.Remove(env.ctx, z, postRef(postID), models.AxisLike)
	require.NoError(t, err)
	assert.False(t, removed.Changed)
	assert.Equal(t, 1, removed.Counters[models.AxisLike])

	removed, err = env.svc.Interactions.Remove(env.ctx, x, postRef(postID), models.AxisLike)
	require.NoError(t, err)
	assert.True(t, removed.Changed)
	assert.Zero(t, env.getPost(t, postID).Likes)
}

func TestBookmarksCountSeparately(t *testing.T) {
	env := newTestEnv(t)
	a := env.user(t, "a")
	b := env.user(t, "b")
	clubID := env.club(t, a, "Chess")
	env.member(t, clubID, b, a, models.RoleMember)
	postID := env.post(t, clubID, a, "hello")

	for _, u := range []uuid.UUID{a, b} {
		_, err := env.svc.Interactions.Add(env.ctx, u, postRef(postID), models.AxisBookmark)
		require.NoError(t, err)
	}
	res, err := env.svc.Interactions.Add(env.ctx, a, postRef(postID), models.AxisLike)
	require.NoError(t, err)
	assert.Equal(t, models.Counters{models.AxisLike: 1, models.AxisBookmark: 2}, res.Counters)

	p := env.getPost(t, postID)
	assert.Equal(t, 1, p.Likes)
	assert.Equal(t, 2, p.Bookmarks)
}

func TestVotesAreMutuallyExclusive(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user(t, "admin")
	u := env.user(t, "u")
	clubID := env.club(t, admin, "Chess")
	env.member(t, clubID, u, admin, models.RoleMember)
	thread, err := env.svc.Forum.CreateThread(env.ctx, admin, clubID, "Openings", "")
	require.NoError(t, err)
	ref := models.ResourceRef{Kind: models.ResourceThread, ID: thread.ID}

	steps := []struct {
		name     string
		do       func() (*models.InteractionResult, error)
		up, down int
	}{
		{"upvote", func() (*models.InteractionResult, error) { return env.svc.Interactions.CastUp(env.ctx, u, ref) }, 1, 0},
		{"upvote again", func() (*models.InteractionResult, error) { return env.svc.Interactions.CastUp(env.ctx, u, ref) }, 1, 0},
		{"switch to downvote", func() (*models.InteractionResult, error) { return env.svc.Interactions.CastDown(env.ctx, u, ref) }, 0, 1},
		{"retract missing upvote", func() (*models.InteractionResult, error) { return env.svc.Interactions.RetractUp(env.ctx, u, ref) }, 0, 1},
		{"retract downvote", func() (*models.InteractionResult, error) { return env.svc.Interactions.RetractDown(env.ctx, u, ref) }, 0, 0},
	}
	for _, step := range steps {
		res, err := step.do()
		require.NoError(t, err, step.name)
		assert.Equal(t, step.up, res.Counters[models.AxisUpvote], step.name)
		assert.Equal(t, step.down, res.Counters[models.AxisDownvote], step.name)

		view, err := env.svc.Forum.GetThread(env.ctx, u, thread.ID)
		require.NoError(t, err)
		assert.Equal(t, step.up, view.Upvotes, step.name)
		assert.Equal(t, step.down, view.Downvotes, step.name)
		assert.False(t, view.Upvoted && view.Downvoted, step.name)
		assert.Equal(t, step.up == 1, view.Upvoted, step.name)
		assert.Equal(t, step.down == 1, view.Downvoted, step.name)
	}
}

func TestReplyVotesAcrossUsers(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user(t, "admin")
	u := env.user(t, "u")
	clubID := env.club(t, admin, "Chess")
	env.member(t, clubID, u, admin, models.RoleMember)
	thread, err := env.svc.Forum.CreateThread(env.ctx, admin, clubID, "Openings", "")
	require.NoError(t, err)
	reply, err := env.svc.Forum.CreateReply(env.ctx, u, thread.ID, "e4")
	require.NoError(t, err)
	ref := models.ResourceRef{Kind: models.ResourceReply, ID: reply.ID}

	_, err = env.svc.Interactions.CastUp(env.ctx, admin, ref)
	require.NoError(t, err)
	res, err := env.svc.Interactions.CastDown(env.ctx, u, ref)
	require.NoError(t, err)
	assert.Equal(t, models.Counters{models.AxisUpvote: 1, models.AxisDownvote: 1}, res.Counters)

	replies, err := env.svc.Forum.ListReplies(env.ctx, u, thread.ID, models.Page{})
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, 1, replies[0].Upvotes)
	assert.Equal(t, 1, replies[0].Downvotes)
	assert.True(t, replies[0].Downvoted)
	assert.False(t, replies[0].Upvoted)
}

func TestInteractionRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user(t, "admin")
	outsider := env.user(t, "outsider")
	clubID := env.club(t, admin, "Chess")
	postID := env.post(t, clubID, admin, "members only")

	_, err := env.svc.Interactions.Add(env.ctx, outsider, postRef(postID), models.AxisLike)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUserNotMemberOfClub), "got %v", err)

	_, err = env.svc.Interactions.Share(env.ctx, outsider, postID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUserNotMemberOfClub))

	assert.Zero(t, env.getPost(t, postID).Likes)
	assert.Zero(t, env.getPost(t, postID).Shares)
}

func TestInteractionRejectsBadTargets(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user(t, "admin")
	clubID := env.club(t, admin, "Chess")
	postID := env.post(t, clubID, admin, "hi")

	tests := []struct {
		name string
		ref  models.ResourceRef
		axis models.Axis
		want apperrors.Kind
	}{
		{"upvote a post", postRef(postID), models.AxisUpvote, apperrors.KindValidation},
		{"bookmark a thread", models.ResourceRef{Kind: models.ResourceThread, ID: uuid.New()}, models.AxisBookmark, apperrors.KindValidation},
		{"unknown kind", models.ResourceRef{Kind: "photo", ID: uuid.New()}, models.AxisLike, apperrors.KindValidation},
		{"missing post", postRef(uuid.New()), models.AxisLike, apperrors.KindNotFound},
		{"missing comment", models.ResourceRef{Kind: models.ResourceComment, ID: uuid.New()}, models.AxisLike, apperrors.KindNotFound},
		{"missing reply", models.ResourceRef{Kind: models.ResourceReply, ID: uuid.New()}, models.AxisUpvote, apperrors.KindNotFound},
		{"missing event", models.ResourceRef{Kind: models.ResourceEvent, ID: uuid.New()}, models.AxisAttend, apperrors.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Interactions.Add(env.ctx, admin, tt.ref, tt.axis)
			assert.Equal(t, tt.want, apperrors.KindOf(err), "got %v", err)
		})
	}
}

func TestConcurrentLikesAreNotLost(t *testing.T) {
	env := newTestEnv(t)
	a := env.user(t, "a")
	b := env.user(t, "b")
	clubID := env.club(t, a, "Chess")
	env.member(t, clubID, b, a, models.RoleMember)
	postID := env.post(t, clubID, a, "race")

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 10; i++ {
		for _, u := range []uuid.UUID{a, b} {
			wg.Add(1)
			go func(u uuid.UUID) {
				defer wg.Done()
				_, err := env.svc.Interactions.Add(env.ctx, u, postRef(postID), models.AxisLike)
				errs <- err
			}(u)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, 2, env.getPost(t, postID).Likes)
}

func TestShareAlwaysIncrements(t *testing.T) {
	env := newTestEnv(t)
	a := env.user(t, "a")
	clubID := env.club(t, a, "Chess")
	postID := env.post(t, clubID, a, "spread the word")

	for i := 1; i <= 3; i++ {
		res, err := env.svc.Interactions.Share(env.ctx, a, postID)
		require.NoError(t, err)
		assert.Equal(t, i, res.Shares)
	}
	assert.Equal(t, 3, env.getPost(t, postID).Shares)
}

func TestCommentLikesResolveClubThroughParent(t *testing.T) {
	env := newTestEnv(t)
	a := env.user(t, "a")
	b := env.user(t, "b")
	outsider := env.user(t, "outsider")
	clubID := env.club(t, a, "Chess")
	env.member(t, clubID, b, a, models.RoleMember)

	thread, err := env.svc.Forum.CreateThread(env.ctx, a, clubID, "Endgames", "")
	require.NoError(t, err)
	comment, err := env.svc.Comments.Create(env.ctx, b, models.ResourceRef{Kind: models.ResourceThread, ID: thread.ID}, "rook endings")
	require.NoError(t, err)
	ref := models.ResourceRef{Kind: models.ResourceComment, ID: comment.ID}

	_, err = env.svc.Interactions.Add(env.ctx, outsider, ref, models.AxisLike)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUserNotMemberOfClub))

	res, err := env.svc.Interactions.Add(env.ctx, a, ref, models.AxisLike)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Counters[models.AxisLike])

	views, err := env.svc.Comments.List(env.ctx, a, models.ResourceRef{Kind: models.ResourceThread, ID: thread.ID}, models.Page{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Liked)
	assert.Equal(t, 1, views[0].Likes)
}

func TestEventAttendanceFeedsProfile(t *testing.T) {
	env := newTestEnv(t)
	a := env.user(t, "a")
	b := env.user(t, "b")
	clubID := env.club(t, a, "Chess")
	env.member(t, clubID, b, a, models.RoleMember)
	event, err := env.svc.Events.Create(env.ctx, a, clubID, models.Event{Title: "Simul"})
	require.NoError(t, err)
	ref := models.ResourceRef{Kind: models.ResourceEvent, ID: event.ID}

	res, err := env.svc.Interactions.Add(env.ctx, b, ref, models.AxisAttend)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Counters[models.AxisAttend])

	view, err := env.svc.Events.Get(env.ctx, b, event.ID)
	require.NoError(t, err)
	assert.True(t, view.Attending)
	assert.Equal(t, 1, view.Attendees)

	profile, err := env.svc.Users.Profile(env.ctx, b)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.EventsAttended)

	_, err = env.svc.Interactions.Remove(env.ctx, b, ref, models.AxisAttend)
	require.NoError(t, err)
	profile, err = env.svc.Users.Profile(env.ctx, b)
	require.NoError(t, err)
	assert.Zero(t, profile.EventsAttended)
}

func TestCountersMatchSetSizes(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user(t, "admin")
	users := []uuid.UUID{admin}
	clubID := env.club(t, admin, "Chess")
	for _, name := range []string{"b", "c", "d"} {
		u := env.user(t, name)
		env.member(t, clubID, u, admin, models.RoleMember)
		users = append(users, u)
	}
	postID := env.post(t, clubID, admin, "counting")
	thread, err := env.svc.Forum.CreateThread(env.ctx, admin, clubID, "Votes", "")
	require.NoError(t, err)
	threadRef := models.ResourceRef{Kind: models.ResourceThread, ID: thread.ID}

	ops := []struct {
		ref  models.ResourceRef
		axis models.Axis
		on   bool
	}{
		{postRef(postID), models.AxisLike, true},
		{postRef(postID), models.AxisLike, false},
		{postRef(postID), models.AxisBookmark, true},
		{threadRef, models.AxisUpvote, true},
		{threadRef, models.AxisDownvote, true},
		{threadRef, models.AxisDownvote, false},
	}
	for i := 0; i < 60; i++ {
		op := ops[(i*7)%len(ops)]
		u := users[(i*3)%len(users)]
		var err error
		if op.on {
			_, err = env.svc.Interactions.Add(env.ctx, u, op.ref, op.axis)
		} else {
			_, err = env.svc.Interactions.Remove(env.ctx, u, op.ref, op.axis)
		}
		require.NoError(t, err)

		require.NoError(t, env.store.WithTx(env.ctx, func(ctx context.Context, tx repositories.Tx) error {
			p, err := tx.Posts().GetByID(ctx, postID)
			require.NoError(t, err)
			likes, _ := tx.Interactions().Count(ctx, postRef(postID), models.AxisLike)
			bookmarks, _ := tx.Interactions().Count(ctx, postRef(postID), models.AxisBookmark)
			assert.Equal(t, likes, p.Likes)
			assert.Equal(t, bookmarks, p.Bookmarks)

			th, err := tx.Threads().GetByID(ctx, thread.ID)
			require.NoError(t, err)
			up, _ := tx.Interactions().Count(ctx, threadRef, models.AxisUpvote)
			down, _ := tx.Interactions().Count(ctx, threadRef, models.AxisDownvote)
			assert.Equal(t, up, th.Upvotes)
			assert.Equal(t, down, th.Downvotes)
			for _, u := range users {
				isUp, _ := tx.Interactions().Has(ctx, threadRef, models.AxisUpvote, u)
				isDown, _ := tx.Interactions().Has(ctx, threadRef, models.AxisDownvote, u)
				assert.False(t, isUp && isDown)
			}
			return nil
		}))
	}
}
