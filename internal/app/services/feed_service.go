package services

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

// FeedService builds read-only projections across a user's clubs.
type FeedService interface {
	// Feed returns the posts and events of the user's clubs created on or after
	// the user joined each club, newest first. The two lists are windowed independently.
	Feed(ctx context.Context, userID uuid.UUID, posts, events models.Page) (*models.Feed, error)
	// BookmarkedPosts returns the user's bookmarks, most recently bookmarked first.
	BookmarkedPosts(ctx context.Context, userID uuid.UUID, page models.Page) ([]models.PostView, error)
}

type feedServiceImpl struct {
	store  repositories.Store
	logger zerolog.Logger
}

// NewFeedService creates a new FeedService
func NewFeedService(store repositories.Store, logger zerolog.Logger) FeedService {
	return &feedServiceImpl{store: store, logger: logger}
}

// newestFirst orders by creation time, ties broken by id so windows are stable.
func newestFirst[T any](items []T, created func(T) (int64, string)) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, idi := created(items[i])
		tj, idj := created(items[j])
		if ti != tj {
			return ti > tj
		}
		return idi > idj
	})
}

func (s *feedServiceImpl) Feed(ctx context.Context, userID uuid.UUID, postPage, eventPage models.Page) (*models.Feed, error) {
	s.logger.Debug().Str("userId", userID.String()).Msg("Building feed")

	feed := &models.Feed{Posts: []models.PostView{}, Events: []models.Event{}}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if _, err := tx.Users().GetByID(ctx, userID); err != nil {
			return notFound(err, userID, apperrors.UserNotFound)
		}
		memberships, err := tx.Members().ListByUser(ctx, userID)
		if err != nil {
			return err
		}

		var (
			posts  []models.Post
			events []models.Event
		)
		for _, m := range memberships {
			// Rows without a join time cannot be gated, so they contribute nothing.
			if m.JoinedAt == nil {
				s.logger.Warn().Str("memberId", m.ID.String()).Msg("Membership without join time skipped in feed")
				continue
			}
			p, err := tx.Posts().ListForClubSince(ctx, m.ClubID, *m.JoinedAt)
			if err != nil {
				return err
			}
			posts = append(posts, p...)
			e, err := tx.Events().ListForClubSince(ctx, m.ClubID, *m.JoinedAt)
			if err != nil {
				return err
			}
			events = append(events, e...)
		}

		newestFirst(posts, func(p models.Post) (int64, string) { return p.CreatedAt.UnixNano(), p.ID.String() })
		newestFirst(events, func(e models.Event) (int64, string) { return e.CreatedAt.UnixNano(), e.ID.String() })

		feed.Events = append(feed.Events, models.Apply(events, eventPage)...)
		feed.Posts, err = postViews(ctx, tx, userID, models.Apply(posts, postPage))
		return err
	})
	if err != nil {
		return nil, finish(s.logger, "build feed", err)
	}
	return feed, nil
}

func (s *feedServiceImpl) BookmarkedPosts(ctx context.Context, userID uuid.UUID, page models.Page) ([]models.PostView, error) {
	var views []models.PostView
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if _, err := tx.Users().GetByID(ctx, userID); err != nil {
			return notFound(err, userID, apperrors.UserNotFound)
		}
		ids, err := tx.Interactions().ResourceIDsByUser(ctx, models.ResourcePost, models.AxisBookmark, userID)
		if err != nil {
			return err
		}
		ids = models.Apply(ids, page)
		posts, err := tx.Posts().ListByIDs(ctx, ids)
		if err != nil {
			return err
		}

		byID := make(map[uuid.UUID]models.Post, len(posts))
		for _, p := range posts {
			byID[p.ID] = p
		}
		ordered := make([]models.Post, 0, len(posts))
		for _, id := range ids {
			if p, ok := byID[id]; ok {
				ordered = append(ordered, p)
			}
		}
		views, err = postViews(ctx, tx, userID, ordered)
		return err
	})
	if err != nil {
		return nil, finish(s.logger, "list bookmarks", err)
	}
	return views, nil
}

// postViews resolves the viewer's like and bookmark flags for each post.
func postViews(ctx context.Context, tx repositories.Tx, viewerID uuid.UUID, posts []models.Post) ([]models.PostView, error) {
	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		ref := models.ResourceRef{Kind: models.ResourcePost, ID: p.ID}
		liked, err := tx.Interactions().Has(ctx, ref, models.AxisLike, viewerID)
		if err != nil {
			return nil, err
		}
		bookmarked, err := tx.Interactions().Has(ctx, ref, models.AxisBookmark, viewerID)
		if err != nil {
			return nil, err
		}
		views = append(views, models.PostView{Post: p, Liked: liked, Bookmarked: bookmarked})
	}
	return views, nil
}
