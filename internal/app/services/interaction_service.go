package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

// InteractionService maintains the per-user interaction sets (likes, bookmarks,
// votes, attendance) and the counters derived from them. Each call locks the
// resource row, mutates the set and writes back counters recomputed from the set
// sizes, so counters never drift.
type InteractionService interface {
	// Add puts the actor into the axis set. Adding a vote retracts the opposite vote.
	Add(ctx context.Context, actorID uuid.UUID, ref models.ResourceRef, axis models.Axis) (*models.InteractionResult, error)
	// Remove takes the actor out of the axis set.
	Remove(ctx context.Context, actorID uuid.UUID, ref models.ResourceRef, axis models.Axis) (*models.InteractionResult, error)

	CastUp(ctx context.Context, actorID uuid.UUID, ref models.ResourceRef) (*models.InteractionResult, error)
	CastDown(ctx context.Context, actorID uuid.UUID, ref models.ResourceRef) (*models.InteractionResult, error)
	RetractUp(ctx context.Context, actorID uuid.UUID, ref models.ResourceRef) (*models.InteractionResult, error)
	RetractDown(ctx context.Context, actorID uuid.UUID, ref models.ResourceRef) (*models.InteractionResult, error)

	// Share counts every call; it is not idempotent.
	Share(ctx context.Context, actorID, postID uuid.UUID) (*models.InteractionResult, error)
}

type interactionServiceImpl struct {
	store  repositories.Store
	logger zerolog.Logger
}

// NewInteractionService creates a new InteractionService
func NewInteractionService(store repositories.Store, logger zerolog.Logger) InteractionService {
	return &interactionServiceImpl{store: store, logger: logger}
}

// target is a locked resource: the club that owns it and a way to store new counters.
type target struct {
	clubID uuid.UUID
	save   func(models.Counters) error
}

// lockTarget loads the resource for update and resolves its owning club.
func lockTarget(ctx context.Context, tx repositories.Tx, ref models.ResourceRef) (*target, error) {
	switch ref.Kind {
	case models.ResourcePost:
		p, err := tx.Posts().GetForUpdate(ctx, ref.ID)
		if err != nil {
			return nil, notFound(err, ref.ID, apperrors.PostNotFound)
		}
		return &target{clubID: p.ClubID, save: func(c models.Counters) error {
			p.Likes, p.Bookmarks = c[models.AxisLike], c[models.AxisBookmark]
			return tx.Posts().Update(ctx, p)
		}}, nil

	case models.ResourceComment:
		cm, err := tx.Comments().GetForUpdate(ctx, ref.ID)
		if err != nil {
			return nil, notFound(err, ref.ID, apperrors.CommentNotFound)
		}
		clubID, err := commentClub(ctx, tx, *cm)
		if err != nil {
			return nil, err
		}
		return &target{clubID: clubID, save: func(c models.Counters) error {
			cm.Likes = c[models.AxisLike]
			return tx.Comments().Update(ctx, cm)
		}}, nil

	case models.ResourceThread:
		t, err := tx.Threads().GetForUpdate(ctx, ref.ID)
		if err != nil {
			return nil, notFound(err, ref.ID, apperrors.ThreadNotFound)
		}
		return &target{clubID: t.ClubID, save: func(c models.Counters) error {
			t.Upvotes, t.Downvotes = c[models.AxisUpvote], c[models.AxisDownvote]
			return tx.Threads().Update(ctx, t)
		}}, nil

	case models.ResourceReply:
		r, err := tx.Replies().GetForUpdate(ctx, ref.ID)
		if err != nil {
			return nil, notFound(err, ref.ID, apperrors.ReplyNotFound)
		}
		t, err := tx.Threads().GetByID(ctx, r.ThreadID)
		if err != nil {
			return nil, notFound(err, r.ThreadID, apperrors.ThreadNotFound)
		}
		return &target{clubID: t.ClubID, save: func(c models.Counters) error {
			r.Upvotes, r.Downvotes = c[models.AxisUpvote], c[models.AxisDownvote]
			return tx.Replies().Update(ctx, r)
		}}, nil

	case models.ResourceEvent:
		e, err := tx.Events().GetForUpdate(ctx, ref.ID)
		if err != nil {
			return nil, notFound(err, ref.ID, apperrors.EventNotFound)
		}
		return &target{clubID: e.ClubID, save: func(c models.Counters) error {
			e.Attendees = c[models.AxisAttend]
			return tx.Events().Update(ctx, e)
		}}, nil
	}
	return nil, apperrors.Validation("kind", fmt.Sprintf("Unknown resource kind %q.", ref.Kind))
}

// commentClub resolves the club a comment belongs to through its parent.
func commentClub(ctx context.Context, tx repositories.Tx, c models.Comment) (uuid.UUID, error) {
	parent := c.Parent()
	switch parent.Kind {
	case models.ResourcePost:
		p, err := tx.Posts().GetByID(ctx, parent.ID)
		if err != nil {
			return uuid.Nil, notFound(err, parent.ID, apperrors.PostNotFound)
		}
		return p.ClubID, nil
	case models.ResourceThread:
		t, err := tx.Threads().GetByID(ctx, parent.ID)
		if err != nil {
			return uuid.Nil, notFound(err, parent.ID, apperrors.ThreadNotFound)
		}
		return t.ClubID, nil
	}
	return uuid.Nil, fmt.Errorf("comment %s has no parent", c.ID)
}

func counters(ctx context.Context, tx repositories.Tx, ref models.ResourceRef) (models.Counters, error) {
	out := make(models.Counters, len(ref.Kind.Axes()))
	for _, axis := range ref.Kind.Axes() {
		n, err := tx.Interactions().Count(ctx, ref, axis)
		if err != nil {
			return nil, err
		}
		out[axis] = n
	}
	return out, nil
}

func (s *interactionServiceImpl) toggle(ctx context.Context, actorID uuid.UUID, ref models.ResourceRef, axis models.Axis, on bool) (*models.InteractionResult, error) {
	op := "remove " + string(axis)
	if on {
		op = "add " + string(axis)
	}
	if !ref.Kind.Supports(axis) {
		return nil, finish(s.logger, op, apperrors.Validation("axis",
			fmt.Sprintf("A %s cannot take a %s.", ref.Kind, axis)).
			WithParam("kind", string(ref.Kind)).
			WithParam("axis", string(axis)))
	}

	result := &models.InteractionResult{Resource: ref}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		t, err := lockTarget(ctx, tx, ref)
		if err != nil {
			return err
		}
		role, err := roleIn(ctx, tx, t.clubID, actorID)
		if err != nil {
			return err
		}
		if err := auth.Check(role, auth.Interact, auth.NoSubject); err != nil {
			return err
		}

		sets := tx.Interactions()
		if on {
			added, err := sets.Add(ctx, ref, axis, actorID)
			if err != nil {
				return err
			}
			result.Changed = added
			if opposite, ok := axis.Opposite(); ok {
				removed, err := sets.Remove(ctx, ref, opposite, actorID)
				if err != nil {
					return err
				}
				result.Changed = result.Changed || removed
			}
		} else {
			result.Changed, err = sets.Remove(ctx, ref, axis, actorID)
			if err != nil {
				return err
			}
		}

		result.Counters, err = counters(ctx, tx, ref)
		if err != nil {
			return err
		}
		return t.save(result.Counters)
	})
	if err != nil {
		return nil, finish(s.logger, op, err)
	}

	s.logger.Debug().
		Str("resource", ref.String()).
		Str("axis", string(axis)).
		Bool("on", on).
		Bool("changed", result.Changed).
		Str("actorId", actorID.String()).
		Msg("Interaction applied")
	return result, nil
}

func (s *interactionServiceImpl) Add(ctx context.Context, actorID uuid.UUID, ref models.ResourceRef, axis models.Axis) (*models.InteractionResult, error) {
	return s.toggle(ctx, actorID, ref, axis, true)
}

func (s *interactionServiceImpl) Remove(ctx context.Context, actorID uuid.UUID, ref models.ResourceRef, axis models.Axis) (*models.InteractionResult, error) {
	return s.toggle(ctx, actorID, ref, axis, false)
}

func (s *interactionServiceImpl) CastUp(ctx context.Context, actorID uuid.UUID, ref models.ResourceRef) (*models.InteractionResult, error) {
	return s.toggle(ctx, actorID, ref, models.AxisUpvote, true)
}

func (s *interactionServiceImpl) CastDown(ctx context.Context, actorID uuid.UUID, ref models.ResourceRef) (*models.InteractionResult, error) {
	return s.toggle(ctx, actorID, ref, models.AxisDownvote, true)
}

func (s *interactionServiceImpl) RetractUp(ctx context.Context, actorID uuid.UUID, ref models.ResourceRef) (*models.InteractionResult, error) {
	return s.toggle(ctx, actorID, ref, models.AxisUpvote, false)
}

func (s *interactionServiceImpl) RetractDown(ctx context.Context, actorID uuid.UUID, ref models.ResourceRef) (*models.InteractionResult, error) {
	return s.toggle(ctx, actorID, ref, models.AxisDownvote, false)
}

func (s *interactionServiceImpl) Share(ctx context.Context, actorID, postID uuid.UUID) (*models.InteractionResult, error) {
	ref := models.ResourceRef{Kind: models.ResourcePost, ID: postID}
	result := &models.InteractionResult{Resource: ref, Changed: true}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		p, err := tx.Posts().GetForUpdate(ctx, postID)
		if err != nil {
			return notFound(err, postID, apperrors.PostNotFound)
		}
		role, err := roleIn(ctx, tx, p.ClubID, actorID)
		if err != nil {
			return err
		}
		if err := auth.Check(role, auth.Interact, auth.NoSubject); err != nil {
			return err
		}
		p.Shares++
		if err := tx.Posts().Update(ctx, p); err != nil {
			return err
		}
		result.Shares = p.Shares
		result.Counters, err = counters(ctx, tx, ref)
		return err
	})
	if err != nil {
		return nil, finish(s.logger, "share post", err)
	}
	return result, nil
}
