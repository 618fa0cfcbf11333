package services

import (
	"context"

	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
)

// The store never cascades on its own. These functions remove an aggregate
// together with everything hanging off it, inside the caller's transaction.

func deleteComment(ctx context.Context, tx repositories.Tx, c models.Comment) error {
	if err := tx.Interactions().DeleteForResource(ctx, models.ResourceRef{Kind: models.ResourceComment, ID: c.ID}); err != nil {
		return err
	}
	return tx.Comments().Delete(ctx, c.ID)
}

func deleteCommentsOf(ctx context.Context, tx repositories.Tx, parent models.ResourceRef) error {
	comments, err := tx.Comments().ListByParent(ctx, parent, models.Page{})
	if err != nil {
		return err
	}
	for _, c := range comments {
		if err := deleteComment(ctx, tx, c); err != nil {
			return err
		}
	}
	return nil
}

func deletePost(ctx context.Context, tx repositories.Tx, p models.Post) error {
	ref := models.ResourceRef{Kind: models.ResourcePost, ID: p.ID}
	if err := deleteCommentsOf(ctx, tx, ref); err != nil {
		return err
	}
	if err := tx.Interactions().DeleteForResource(ctx, ref); err != nil {
		return err
	}
	return tx.Posts().Delete(ctx, p.ID)
}

func deleteReply(ctx context.Context, tx repositories.Tx, r models.Reply) error {
	if err := tx.Interactions().DeleteForResource(ctx, models.ResourceRef{Kind: models.ResourceReply, ID: r.ID}); err != nil {
		return err
	}
	return tx.Replies().Delete(ctx, r.ID)
}

func deleteThread(ctx context.Context, tx repositories.Tx, t models.ForumThread) error {
	replies, err := tx.Replies().ListByThread(ctx, t.ID, models.Page{})
	if err != nil {
		return err
	}
	for _, r := range replies {
		if err := deleteReply(ctx, tx, r); err != nil {
			return err
		}
	}
	ref := models.ResourceRef{Kind: models.ResourceThread, ID: t.ID}
	if err := deleteCommentsOf(ctx, tx, ref); err != nil {
		return err
	}
	if err := tx.Interactions().DeleteForResource(ctx, ref); err != nil {
		return err
	}
	return tx.Threads().Delete(ctx, t.ID)
}

func deleteEvent(ctx context.Context, tx repositories.Tx, e models.Event) error {
	if err := tx.Interactions().DeleteForResource(ctx, models.ResourceRef{Kind: models.ResourceEvent, ID: e.ID}); err != nil {
		return err
	}
	return tx.Events().Delete(ctx, e.ID)
}

// deleteClub removes the club with its whole subtree and returns the object
// references that became unreachable.
func deleteClub(ctx context.Context, tx repositories.Tx, c models.Club) ([]*models.ObjectRef, error) {
	var orphans []*models.ObjectRef
	if c.Avatar != nil {
		orphans = append(orphans, c.Avatar)
	}

	posts, err := tx.Posts().ListByClub(ctx, c.ID, models.Page{})
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		if p.Picture != nil {
			orphans = append(orphans, p.Picture)
		}
		if err := deletePost(ctx, tx, p); err != nil {
			return nil, err
		}
	}

	threads, err := tx.Threads().ListByClub(ctx, c.ID, models.Page{})
	if err != nil {
		return nil, err
	}
	for _, t := range threads {
		if err := deleteThread(ctx, tx, t); err != nil {
			return nil, err
		}
	}

	events, err := tx.Events().ListByClub(ctx, c.ID, models.Page{})
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		if err := deleteEvent(ctx, tx, e); err != nil {
			return nil, err
		}
	}

	members, err := tx.Members().ListByClub(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if err := tx.Members().Delete(ctx, m.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Clubs().Delete(ctx, c.ID); err != nil {
		return nil, err
	}
	return orphans, nil
}
