package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

// ForumService handles club forum threads and their replies.
type ForumService interface {
	CreateThread(ctx context.Context, actorID, clubID uuid.UUID, title, content string) (*models.ForumThread, error)
	GetThread(ctx context.Context, actorID, threadID uuid.UUID) (*models.ThreadView, error)
	ListThreads(ctx context.Context, actorID, clubID uuid.UUID, page models.Page) ([]models.ThreadView, error)
	UpdateThread(ctx context.Context, actorID, threadID uuid.UUID, patch models.ThreadPatch) (*models.ForumThread, error)
	DeleteThread(ctx context.Context, actorID, threadID uuid.UUID) error

	CreateReply(ctx context.Context, actorID, threadID uuid.UUID, content string) (*models.Reply, error)
	ListReplies(ctx context.Context, actorID, threadID uuid.UUID, page models.Page) ([]models.ReplyView, error)
	UpdateReply(ctx context.Context, actorID, replyID uuid.UUID, content string) (*models.Reply, error)
	DeleteReply(ctx context.Context, actorID, replyID uuid.UUID) error
}

type forumServiceImpl struct {
	store  repositories.Store
	clock  helpers.Clock
	logger zerolog.Logger
}

// NewForumService creates a new ForumService
func NewForumService(store repositories.Store, clock helpers.Clock, logger zerolog.Logger) ForumService {
	return &forumServiceImpl{store: store, clock: clock, logger: logger}
}

func votes(ctx context.Context, tx repositories.Tx, ref models.ResourceRef, viewerID uuid.UUID) (up, down bool, err error) {
	up, err = tx.Interactions().Has(ctx, ref, models.AxisUpvote, viewerID)
	if err != nil {
		return false, false, err
	}
	down, err = tx.Interactions().Has(ctx, ref, models.AxisDownvote, viewerID)
	return up, down, err
}

func threadView(ctx context.Context, tx repositories.Tx, t models.ForumThread, viewerID uuid.UUID) (models.ThreadView, error) {
	up, down, err := votes(ctx, tx, models.ResourceRef{Kind: models.ResourceThread, ID: t.ID}, viewerID)
	return models.ThreadView{ForumThread: t, Upvoted: up, Downvoted: down}, err
}

// viewable checks that the viewer may read the club's content.
func viewable(ctx context.Context, tx repositories.Tx, clubID, viewerID uuid.UUID) error {
	role, err := roleIn(ctx, tx, clubID, viewerID)
	if err != nil {
		return err
	}
	return auth.Check(role, auth.ViewContent, auth.NoSubject)
}

func (s *forumServiceImpl) CreateThread(ctx context.Context, actorID, clubID uuid.UUID, title, content string) (*models.ForumThread, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" {
		return nil, finish(s.logger, "create thread", apperrors.Validation("title", "Thread title is required."))
	}

	var thread models.ForumThread
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if _, err := getClub(ctx, tx, clubID); err != nil {
			return err
		}
		role, err := roleIn(ctx, tx, clubID, actorID)
		if err != nil {
			return err
		}
		if err := auth.Check(role, auth.CreateThread, auth.Own); err != nil {
			return err
		}
		now := s.clock.Now()
		thread = models.ForumThread{
			ID:           models.NewID(),
			ClubID:       clubID,
			AuthorID:     actorID,
			Title:        title,
			Content:      content,
			LastActivity: now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return notFound(tx.Threads().Create(ctx, &thread), clubID, apperrors.ClubNotFound)
	})
	if err != nil {
		return nil, finish(s.logger, "create thread", err)
	}

	s.logger.Info().Str("threadId", thread.ID.String()).Str("clubId", clubID.String()).Msg("Thread created")
	return &thread, nil
}

func (s *forumServiceImpl) GetThread(ctx context.Context, actorID, threadID uuid.UUID) (*models.ThreadView, error) {
	var view models.ThreadView
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		t, err := tx.Threads().GetByID(ctx, threadID)
		if err != nil {
			return notFound(err, threadID, apperrors.ThreadNotFound)
		}
		if err := viewable(ctx, tx, t.ClubID, actorID); err != nil {
			return err
		}
		view, err = threadView(ctx, tx, *t, actorID)
		return err
	})
	if err != nil {
		return nil, finish(s.logger, "get thread", err)
	}
	return &view, nil
}

// ListThreads returns the club's threads, most recently active first.
func (s *forumServiceImpl) ListThreads(ctx context.Context, actorID, clubID uuid.UUID, page models.Page) ([]models.ThreadView, error) {
	var views []models.ThreadView
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if _, err := getClub(ctx, tx, clubID); err != nil {
			return err
		}
		if err := viewable(ctx, tx, clubID, actorID); err != nil {
			return err
		}
		threads, err := tx.Threads().ListByClub(ctx, clubID, page)
		if err != nil {
			return err
		}
		views = make([]models.ThreadView, 0, len(threads))
		for _, t := range threads {
			v, err := threadView(ctx, tx, t, actorID)
			if err != nil {
				return err
			}
			views = append(views, v)
		}
		return nil
	})
	if err != nil {
		return nil, finish(s.logger, "list threads", err)
	}
	return views, nil
}

func (s *forumServiceImpl) lockThread(ctx context.Context, tx repositories.Tx, actorID, threadID uuid.UUID, action auth.Action) (*models.ForumThread, error) {
	t, err := tx.Threads().GetForUpdate(ctx, threadID)
	if err != nil {
		return nil, notFound(err, threadID, apperrors.ThreadNotFound)
	}
	role, err := roleIn(ctx, tx, t.ClubID, actorID)
	if err != nil {
		return nil, err
	}
	if err := auth.Check(role, action, auth.Subject{IsAuthor: t.AuthorID == actorID}); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *forumServiceImpl) UpdateThread(ctx context.Context, actorID, threadID uuid.UUID, patch models.ThreadPatch) (*models.ForumThread, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, finish(s.logger, "update thread", apperrors.Validation("title", "Thread title must not be empty."))
	}

	var thread *models.ForumThread
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		thread, err = s.lockThread(ctx, tx, actorID, threadID, auth.UpdateThread)
		if err != nil {
			return err
		}
		if patch.Title != nil {
			thread.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Content != nil {
			thread.Content = strings.TrimSpace(*patch.Content)
		}
		thread.UpdatedAt = s.clock.Now()
		return tx.Threads().Update(ctx, thread)
	})
	if err != nil {
		return nil, finish(s.logger, "update thread", err)
	}
	return thread, nil
}

// DeleteThread removes the thread with its replies, comments and votes.
func (s *forumServiceImpl) DeleteThread(ctx context.Context, actorID, threadID uuid.UUID) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		t, err := s.lockThread(ctx, tx, actorID, threadID, auth.DeleteThread)
		if err != nil {
			return err
		}
		return deleteThread(ctx, tx, *t)
	})
	if err != nil {
		return finish(s.logger, "delete thread", err)
	}

	s.logger.Info().Str("threadId", threadID.String()).Str("actorId", actorID.String()).Msg("Thread deleted")
	return nil
}

// refreshReplies stores the reply count and, when bump is set, the thread's last activity.
func (s *forumServiceImpl) refreshReplies(ctx context.Context, tx repositories.Tx, t *models.ForumThread, bump bool) error {
	n, err := tx.Replies().CountByThread(ctx, t.ID)
	if err != nil {
		return err
	}
	t.Replies = n
	if bump {
		t.LastActivity = s.clock.Now()
	}
	return tx.Threads().Update(ctx, t)
}

func (s *forumServiceImpl) CreateReply(ctx context.Context, actorID, threadID uuid.UUID, content string) (*models.Reply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, finish(s.logger, "create reply", apperrors.Validation("content", "Reply content is required."))
	}

	var reply models.Reply
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		t, err := s.lockThread(ctx, tx, actorID, threadID, auth.CreateReply)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		reply = models.Reply{
			ID:        models.NewID(),
			ThreadID:  threadID,
			AuthorID:  actorID,
			Content:   content,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Replies().Create(ctx, &reply); err != nil {
			return notFound(err, threadID, apperrors.ThreadNotFound)
		}
		return s.refreshReplies(ctx, tx, t, true)
	})
	if err != nil {
		return nil, finish(s.logger, "create reply", err)
	}

	s.logger.Debug().Str("replyId", reply.ID.String()).Str("threadId", threadID.String()).Msg("Reply created")
	return &reply, nil
}

// ListReplies returns the thread's replies, oldest first.
func (s *forumServiceImpl) ListReplies(ctx context.Context, actorID, threadID uuid.UUID, page models.Page) ([]models.ReplyView, error) {
	var views []models.ReplyView
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		t, err := tx.Threads().GetByID(ctx, threadID)
		if err != nil {
			return notFound(err, threadID, apperrors.ThreadNotFound)
		}
		if err := viewable(ctx, tx, t.ClubID, actorID); err != nil {
			return err
		}
		replies, err := tx.Replies().ListByThread(ctx, threadID, page)
		if err != nil {
			return err
		}
		views = make([]models.ReplyView, 0, len(replies))
		for _, r := range replies {
			up, down, err := votes(ctx, tx, models.ResourceRef{Kind: models.ResourceReply, ID: r.ID}, actorID)
			if err != nil {
				return err
			}
			views = append(views, models.ReplyView{Reply: r, Upvoted: up, Downvoted: down})
		}
		return nil
	})
	if err != nil {
		return nil, finish(s.logger, "list replies", err)
	}
	return views, nil
}

// lockReply loads a reply and its thread for update and checks action.
func (s *forumServiceImpl) lockReply(ctx context.Context, tx repositories.Tx, actorID, replyID uuid.UUID, action auth.Action) (*models.Reply, *models.ForumThread, error) {
	r, err := tx.Replies().GetForUpdate(ctx, replyID)
	if err != nil {
		return nil, nil, notFound(err, replyID, apperrors.ReplyNotFound)
	}
	t, err := tx.Threads().GetForUpdate(ctx, r.ThreadID)
	if err != nil {
		return nil, nil, notFound(err, r.ThreadID, apperrors.ThreadNotFound)
	}
	role, err := roleIn(ctx, tx, t.ClubID, actorID)
	if err != nil {
		return nil, nil, err
	}
	if err := auth.Check(role, action, auth.Subject{IsAuthor: r.AuthorID == actorID}); err != nil {
		return nil, nil, err
	}
	return r, t, nil
}

// UpdateReply lets the author edit a reply, whatever their role.
func (s *forumServiceImpl) UpdateReply(ctx context.Context, actorID, replyID uuid.UUID, content string) (*models.Reply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, finish(s.logger, "update reply", apperrors.Validation("content", "Reply content is required."))
	}

	var reply *models.Reply
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		reply, _, err = s.lockReply(ctx, tx, actorID, replyID, auth.UpdateReply)
		if err != nil {
			return err
		}
		reply.Content = content
		reply.UpdatedAt = s.clock.Now()
		return tx.Replies().Update(ctx, reply)
	})
	if err != nil {
		return nil, finish(s.logger, "update reply", err)
	}
	return reply, nil
}

// DeleteReply removes the reply and its votes and refreshes the thread's counter.
func (s *forumServiceImpl) DeleteReply(ctx context.Context, actorID, replyID uuid.UUID) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		r, t, err := s.lockReply(ctx, tx, actorID, replyID, auth.DeleteReply)
		if err != nil {
			return err
		}
		if err := deleteReply(ctx, tx, *r); err != nil {
			return err
		}
		return s.refreshReplies(ctx, tx, t, false)
	})
	if err != nil {
		return finish(s.logger, "delete reply", err)
	}

	s.logger.Debug().Str("replyId", replyID.String()).Str("actorId", actorID.String()).Msg("Reply deleted")
	return nil
}
