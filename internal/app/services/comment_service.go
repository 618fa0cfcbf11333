package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

// CommentService handles comments under posts and forum threads.
type CommentService interface {
	Create(ctx context.Context, actorID uuid.UUID, parent models.ResourceRef, content string) (*models.Comment, error)
	List(ctx context.Context, actorID uuid.UUID, parent models.ResourceRef, page models.Page) ([]models.CommentView, error)
	Update(ctx context.Context, actorID, commentID uuid.UUID, content string) (*models.Comment, error)
	Delete(ctx context.Context, actorID, commentID uuid.UUID) error
}

type commentServiceImpl struct {
	store  repositories.Store
	clock  helpers.Clock
	logger zerolog.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(store repositories.Store, clock helpers.Clock, logger zerolog.Logger) CommentService {
	return &commentServiceImpl{store: store, clock: clock, logger: logger}
}

// commentParent is a locked post or thread that comments hang off.
type commentParent struct {
	clubID uuid.UUID
	post   *models.Post
	thread *models.ForumThread
}

func lockCommentParent(ctx context.Context, tx repositories.Tx, ref models.ResourceRef) (*commentParent, error) {
	switch ref.Kind {
	case models.ResourcePost:
		p, err := tx.Posts().GetForUpdate(ctx, ref.ID)
		if err != nil {
			return nil, notFound(err, ref.ID, apperrors.PostNotFound)
		}
		return &commentParent{clubID: p.ClubID, post: p}, nil
	case models.ResourceThread:
		t, err := tx.Threads().GetForUpdate(ctx, ref.ID)
		if err != nil {
			return nil, notFound(err, ref.ID, apperrors.ThreadNotFound)
		}
		return &commentParent{clubID: t.ClubID, thread: t}, nil
	}
	return nil, apperrors.Validation("parent", fmt.Sprintf("Comments can only be attached to posts and threads, not %q.", ref.Kind))
}

// touch refreshes the parent's comment counter, or a thread's last activity.
func (p *commentParent) touch(ctx context.Context, tx repositories.Tx, now time.Time, bumpActivity bool) error {
	if p.post != nil {
		n, err := tx.Comments().CountByParent(ctx, models.ResourceRef{Kind: models.ResourcePost, ID: p.post.ID})
		if err != nil {
			return err
		}
		p.post.Comments = n
		return tx.Posts().Update(ctx, p.post)
	}
	if bumpActivity {
		p.thread.LastActivity = now
		return tx.Threads().Update(ctx, p.thread)
	}
	return nil
}

func (s *commentServiceImpl) Create(ctx context.Context, actorID uuid.UUID, parent models.ResourceRef, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, finish(s.logger, "create comment", apperrors.Validation("content", "Comment content is required."))
	}

	var comment models.Comment
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		p, err := lockCommentParent(ctx, tx, parent)
		if err != nil {
			return err
		}
		role, err := roleIn(ctx, tx, p.clubID, actorID)
		if err != nil {
			return err
		}
		if err := auth.Check(role, auth.CreateComment, auth.Own); err != nil {
			return err
		}

		now := s.clock.Now()
		comment = models.Comment{
			ID:        models.NewID(),
			AuthorID:  actorID,
			Content:   content,
			CreatedAt: now,
			UpdatedAt: now,
		}
		id := parent.ID
		if parent.Kind == models.ResourcePost {
			comment.PostID = &id
		} else {
			comment.ThreadID = &id
		}
		if err := tx.Comments().Create(ctx, &comment); err != nil {
			gone := apperrors.PostNotFound
			if parent.Kind == models.ResourceThread {
				gone = apperrors.ThreadNotFound
			}
			return notFound(err, parent.ID, gone)
		}
		return p.touch(ctx, tx, now, true)
	})
	if err != nil {
		return nil, finish(s.logger, "create comment", err)
	}

	s.logger.Debug().Str("commentId", comment.ID.String()).Str("parent", parent.String()).Msg("Comment created")
	return &comment, nil
}

func (s *commentServiceImpl) List(ctx context.Context, actorID uuid.UUID, parent models.ResourceRef, page models.Page) ([]models.CommentView, error) {
	var views []models.CommentView
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var clubID uuid.UUID
		switch parent.Kind {
		case models.ResourcePost:
			p, err := tx.Posts().GetByID(ctx, parent.ID)
			if err != nil {
				return notFound(err, parent.ID, apperrors.PostNotFound)
			}
			clubID = p.ClubID
		case models.ResourceThread:
			t, err := tx.Threads().GetByID(ctx, parent.ID)
			if err != nil {
				return notFound(err, parent.ID, apperrors.ThreadNotFound)
			}
			clubID = t.ClubID
		default:
			return apperrors.Validation("parent", fmt.Sprintf("Comments can only be attached to posts and threads, not %q.", parent.Kind))
		}

		role, err := roleIn(ctx, tx, clubID, actorID)
		if err != nil {
			return err
		}
		if err := auth.Check(role, auth.ViewContent, auth.NoSubject); err != nil {
			return err
		}

		comments, err := tx.Comments().ListByParent(ctx, parent, page)
		if err != nil {
			return err
		}
		views = make([]models.CommentView, 0, len(comments))
		for _, c := range comments {
			liked, err := tx.Interactions().Has(ctx, models.ResourceRef{Kind: models.ResourceComment, ID: c.ID}, models.AxisLike, actorID)
			if err != nil {
				return err
			}
			views = append(views, models.CommentView{Comment: c, Liked: liked})
		}
		return nil
	})
	if err != nil {
		return nil, finish(s.logger, "list comments", err)
	}
	return views, nil
}

// Update lets the author edit the comment text.
func (s *commentServiceImpl) Update(ctx context.Context, actorID, commentID uuid.UUID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, finish(s.logger, "update comment", apperrors.Validation("content", "Comment content is required."))
	}

	var comment *models.Comment
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		comment, err = tx.Comments().GetForUpdate(ctx, commentID)
		if err != nil {
			return notFound(err, commentID, apperrors.CommentNotFound)
		}
		clubID, err := commentClub(ctx, tx, *comment)
		if err != nil {
			return err
		}
		role, err := roleIn(ctx, tx, clubID, actorID)
		if err != nil {
			return err
		}
		if err := auth.Check(role, auth.UpdateComment, auth.Subject{IsAuthor: comment.AuthorID == actorID}); err != nil {
			return err
		}
		comment.Content = content
		comment.UpdatedAt = s.clock.Now()
		return tx.Comments().Update(ctx, comment)
	})
	if err != nil {
		return nil, finish(s.logger, "update comment", err)
	}
	return comment, nil
}

// Delete removes the comment and its likes, and refreshes the parent's counter.
func (s *commentServiceImpl) Delete(ctx context.Context, actorID, commentID uuid.UUID) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		comment, err := tx.Comments().GetForUpdate(ctx, commentID)
		if err != nil {
			return notFound(err, commentID, apperrors.CommentNotFound)
		}
		p, err := lockCommentParent(ctx, tx, comment.Parent())
		if err != nil {
			return err
		}
		role, err := roleIn(ctx, tx, p.clubID, actorID)
		if err != nil {
			return err
		}
		if err := auth.Check(role, auth.DeleteComment, auth.Subject{IsAuthor: comment.AuthorID == actorID}); err != nil {
			return err
		}
		if err := deleteComment(ctx, tx, *comment); err != nil {
			return err
		}
		return p.touch(ctx, tx, s.clock.Now(), false)
	})
	if err != nil {
		return finish(s.logger, "delete comment", err)
	}

	s.logger.Debug().Str("commentId", commentID.String()).Str("actorId", actorID.String()).Msg("Comment deleted")
	return nil
}
