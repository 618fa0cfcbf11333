//go:build integration

package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/yigit/clubhub/internal/app/migrations"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/config"
	"github.com/yigit/clubhub/internal/db"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	schema "github.com/yigit/clubhub/migrations"
)

// startPostgres runs a throwaway PostgreSQL container, applies the schema and
// returns the pool-backed store. The container is removed when t finishes.
func startPostgres(t *testing.T) (*repositories.PostgresStore, *db.PostgresDB) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("clubhub_test"),
		tcpostgres.WithUsername("clubhub"),
		tcpostgres.WithPassword("clubhub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(45*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Database.Host = host
	cfg.Database.Port = port.Port()
	cfg.Database.User = "clubhub"
	cfg.Database.Password = "clubhub"
	cfg.Database.DBName = "clubhub_test"
	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxOpenConns = 10
	cfg.Database.MaxIdleConns = 2
	cfg.Database.ConnMaxLifetime = "5m"
	cfg.Store.TxRetries = 5
	cfg.Store.TxTimeout = "10s"

	database, err := db.NewPostgresDB(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(database.Close)

	require.NoError(t, migrations.NewMigrator(database.Pool, zerolog.Nop()).Migrate(ctx, schema.Files))
	return repositories.NewPostgresStore(database), database
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	store, database := startPostgres(t)

	t.Run("concurrent likes from two members count twice", func(t *testing.T) {
		env := newTestEnvOn(t, store)
		a := env.user(t, "likes_a")
		b := env.user(t, "likes_b")
		c := env.user(t, "likes_c")
		clubID := env.club(t, a, "Likes Club")
		env.member(t, clubID, b, a, models.RoleMember)
		env.member(t, clubID, c, a, models.RoleMember)
		postID := env.post(t, clubID, a, "like me")
		ref := models.ResourceRef{Kind: models.ResourcePost, ID: postID}

		// Each member fires several identical likes at once.
		var wg sync.WaitGroup
		errs := make(chan error, 10)
		for i := 0; i < 5; i++ {
			for _, u := range []uuid.UUID{b, c} {
				wg.Add(1)
				go func(u uuid.UUID) {
					defer wg.Done()
					_, err := env.svc.Interactions.Add(env.ctx, u, ref, models.AxisLike)
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
		var rows int
		require.NoError(t, database.Pool.QueryRow(env.ctx,
			`SELECT count(*) FROM interactions WHERE resource_kind = $1 AND resource_id = $2 AND axis = $3`,
			string(models.ResourcePost), postID, string(models.AxisLike)).Scan(&rows))
		assert.Equal(t, 2, rows)
	})

	t.Run("repeated like keeps one row", func(t *testing.T) {
		env := newTestEnvOn(t, store)
		a := env.user(t, "repeat_a")
		b := env.user(t, "repeat_b")
		clubID := env.club(t, a, "Repeat Club")
		env.member(t, clubID, b, a, models.RoleMember)
		postID := env.post(t, clubID, a, "twice")
		ref := models.ResourceRef{Kind: models.ResourcePost, ID: postID}

		first, err := env.svc.Interactions.Add(env.ctx, b, ref, models.AxisLike)
		require.NoError(t, err)
		assert.True(t, first.Changed)
		second, err := env.svc.Interactions.Add(env.ctx, b, ref, models.AxisLike)
		require.NoError(t, err)
		assert.False(t, second.Changed)
		assert.Equal(t, 1, second.Counters[models.AxisLike])

		var rows int
		require.NoError(t, env.store.WithTx(env.ctx, func(ctx context.Context, tx repositories.Tx) error {
			var err error
			rows, err = tx.Interactions().Count(ctx, ref, models.AxisLike)
			return err
		}))
		assert.Equal(t, 1, rows)
		assert.Equal(t, 1, env.getPost(t, postID).Likes)
	})

	t.Run("concurrent admin leaves keep one admin", func(t *testing.T) {
		env := newTestEnvOn(t, store)
		a := env.user(t, "leave_a")
		b := env.user(t, "leave_b")
		clubID := env.club(t, a, "Leave Club")
		env.member(t, clubID, b, a, models.RoleAdmin)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, u := range []uuid.UUID{a, b} {
			wg.Add(1)
			go func(i int, u uuid.UUID) {
				defer wg.Done()
				errs[i] = env.svc.Membership.Leave(env.ctx, clubID, u)
			}(i, u)
		}
		wg.Wait()

		failures := 0
		for _, err := range errs {
			if err != nil {
				assert.True(t, apperrors.IsKind(err, apperrors.KindLastAdminLeave), "got %v", err)
				failures++
			}
		}
		assert.Equal(t, 1, failures)
		admins, members := adminCount(t, env, clubID)
		assert.Equal(t, 1, admins)
		assert.Equal(t, 1, members)

		club, err := env.svc.Membership.GetClub(env.ctx, clubID)
		require.NoError(t, err)
		assert.Equal(t, 1, club.Members)
	})

	t.Run("feed starts at the join instant", func(t *testing.T) {
		env := newTestEnvOn(t, store)
		x := env.user(t, "feed_x")
		z := env.user(t, "feed_z")
		clubID := env.club(t, z, "Feed Club")

		env.clock.Set(day(1))
		before := env.post(t, clubID, z, "before x joined")

		env.clock.Set(day(2))
		env.member(t, clubID, x, z, models.RoleMember)
		same := env.post(t, clubID, z, "same instant")

		env.clock.Set(day(3))
		after := env.post(t, clubID, z, "after x joined")

		feed, err := env.svc.Feed.Feed(env.ctx, x, models.Page{}, models.Page{})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{after, same}, postIDs(feed.Posts))

		feed, err = env.svc.Feed.Feed(env.ctx, z, models.Page{}, models.Page{})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{after, same, before}, postIDs(feed.Posts))
	})

	t.Run("insert under a missing club is not found", func(t *testing.T) {
		env := newTestEnvOn(t, store)
		a := env.user(t, "gone_a")

		err := env.store.WithTx(env.ctx, func(ctx context.Context, tx repositories.Tx) error {
			now := env.clock.Now()
			return tx.Posts().Create(ctx, &models.Post{
				ID: models.NewID(), ClubID: models.NewID(), AuthorID: a, Content: "orphan",
				CreatedAt: now, UpdatedAt: now,
			})
		})
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}
