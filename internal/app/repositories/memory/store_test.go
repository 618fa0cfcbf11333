package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
)

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore(zerolog.Nop())
	club := models.Club{ID: uuid.New(), Name: "Chess"}

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		require.NoError(t, tx.Clubs().Create(ctx, &club))
		require.NoError(t, tx.Members().Create(ctx, &models.Member{ID: uuid.New(), ClubID: club.ID, UserID: uuid.New(), Role: models.RoleAdmin}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		_, err := tx.Clubs().GetByID(ctx, club.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		n, err := tx.Members().CountByClub(ctx, club.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
		return nil
	})
	require.NoError(t, err)
}

func TestWithTxCommitsAndIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	store := NewStore(zerolog.Nop())
	post := models.Post{ID: uuid.New(), ClubID: uuid.New(), AuthorID: uuid.New(), Content: "hello", Picture: &models.ObjectRef{Key: "a"}}

	require.NoError(t, store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		return tx.Posts().Create(ctx, &post)
	}))
	post.Picture.Key = "mutated after commit"

	require.NoError(t, store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		got, err := tx.Posts().GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "a", got.Picture.Key)
		return nil
	}))
}

func TestMemberUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewStore(zerolog.Nop())
	clubID, userID := uuid.New(), uuid.New()

	err := store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		require.NoError(t, tx.Members().Create(ctx, &models.Member{ID: uuid.New(), ClubID: clubID, UserID: userID, Role: models.RoleMember}))
		return tx.Members().Create(ctx, &models.Member{ID: uuid.New(), ClubID: clubID, UserID: userID, Role: models.RoleMember})
	})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestListForClubSinceAndOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewStore(zerolog.Nop())
	clubID := uuid.New()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	day := func(n int) time.Time { return base.AddDate(0, 0, n) }
	posts := []models.Post{
		{ID: uuid.New(), ClubID: clubID, CreatedAt: day(3)},
		{ID: uuid.New(), ClubID: clubID, CreatedAt: day(6)},
		{ID: uuid.New(), ClubID: clubID, CreatedAt: day(5)},
		{ID: uuid.New(), ClubID: uuid.New(), CreatedAt: day(7)},
	}

	require.NoError(t, store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		for i := range posts {
			if err := tx.Posts().Create(ctx, &posts[i]); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		got, err := tx.Posts().ListForClubSince(ctx, clubID, day(5))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, posts[1].ID, got[0].ID)
		assert.Equal(t, posts[2].ID, got[1].ID)

		page, err := tx.Posts().ListByClub(ctx, clubID, models.Page{Offset: 1, Limit: 1})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, posts[2].ID, page[0].ID)
		return nil
	}))
}

func TestInteractionSets(t *testing.T) {
	ctx := context.Background()
	store := NewStore(zerolog.Nop())
	ref := models.ResourceRef{Kind: models.ResourcePost, ID: uuid.New()}
	u1, u2 := uuid.New(), uuid.New()

	require.NoError(t, store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		ix := tx.Interactions()

		changed, err := ix.Add(ctx, ref, models.AxisLike, u1)
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = ix.Add(ctx, ref, models.AxisLike, u1)
		require.NoError(t, err)
		assert.False(t, changed)

		_, err = ix.Add(ctx, ref, models.AxisLike, u2)
		require.NoError(t, err)
		_, err = ix.Add(ctx, ref, models.AxisBookmark, u1)
		require.NoError(t, err)

		n, err := ix.Count(ctx, ref, models.AxisLike)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		ids, err := ix.ResourceIDsByUser(ctx, models.ResourcePost, models.AxisBookmark, u1)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{ref.ID}, ids)

		changed, err = ix.Remove(ctx, ref, models.AxisLike, uuid.New())
		require.NoError(t, err)
		assert.False(t, changed)

		require.NoError(t, ix.DeleteForResource(ctx, ref))
		n, err = ix.Count(ctx, ref, models.AxisLike)
		require.NoError(t, err)
		assert.Zero(t, n)
		has, err := ix.Has(ctx, ref, models.AxisBookmark, u1)
		require.NoError(t, err)
		assert.False(t, has)
		return nil
	}))
}

func TestWithTxCopiesOnlyOnWrite(t *testing.T) {
	ctx := context.Background()
	store := NewStore(zerolog.Nop())
	club := models.Club{ID: uuid.New(), Name: "Chess"}
	require.NoError(t, store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		return tx.Clubs().Create(ctx, &club)
	}))
	require.Equal(t, 1, store.commits)
	committed := store.state

	// Reads leave the committed arena in place.
	require.NoError(t, store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		_, err := tx.Clubs().GetByID(ctx, club.ID)
		return err
	}))
	assert.Same(t, committed, store.state)
	assert.Equal(t, 1, store.commits)

	// A write is visible to later reads in the same transaction, and only
	// published on commit.
	require.NoError(t, store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		require.NoError(t, tx.Members().Create(ctx, &models.Member{ID: uuid.New(), ClubID: club.ID, UserID: uuid.New(), Role: models.RoleAdmin}))
		n, err := tx.Members().CountByClub(ctx, club.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Zero(t, committed.membersByClub.count(club.ID))
		return nil
	}))
	assert.NotSame(t, committed, store.state)
	assert.Equal(t, 2, store.commits)
}
