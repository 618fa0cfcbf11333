package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
)

// collect materializes ids through get and orders them by created time, then by
// insertion order.
func collect[T any](a *arena, ids []uuid.UUID, get func(uuid.UUID) (T, bool), created func(T) time.Time, id func(T) uuid.UUID, newestFirst bool) []T {
	out := make([]T, 0, len(ids))
	for _, i := range ids {
		if v, ok := get(i); ok {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := created(out[i]), created(out[j])
		if !ti.Equal(tj) {
			if newestFirst {
				return ti.After(tj)
			}
			return ti.Before(tj)
		}
		oi, oj := a.order[id(out[i])], a.order[id(out[j])]
		if newestFirst {
			return oi > oj
		}
		return oi < oj
	})
	return out
}

type postRepo struct{ t *tx }

func copyPost(p models.Post) models.Post {
	p.Picture = copyPtr(p.Picture)
	return p
}

func (r postRepo) get(id uuid.UUID) (models.Post, bool) {
	a := r.t.view()
	p, ok := a.posts[id]
	return copyPost(p), ok
}

func (r postRepo) list(ids []uuid.UUID) []models.Post {
	a := r.t.view()
	return collect(a, ids, r.get,
		func(p models.Post) time.Time { return p.CreatedAt },
		func(p models.Post) uuid.UUID { return p.ID }, true)
}

func (r postRepo) Create(_ context.Context, p *models.Post) error {
	a := r.t.edit()
	if _, ok := a.posts[p.ID]; ok {
		return repositories.ErrDuplicate
	}
	a.posts[p.ID] = copyPost(*p)
	a.postsByClub.add(p.ClubID, p.ID)
	a.postsByAuthor.add(p.AuthorID, p.ID)
	a.touch(p.ID)
	return nil
}

func (r postRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	p, ok := r.get(id)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (r postRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return r.GetByID(ctx, id)
}

func (r postRepo) Update(_ context.Context, p *models.Post) error {
	a := r.t.edit()
	if _, ok := a.posts[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	a.posts[p.ID] = copyPost(*p)
	return nil
}

func (r postRepo) Delete(_ context.Context, id uuid.UUID) error {
	a := r.t.edit()
	p, ok := a.posts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	delete(a.posts, id)
	a.postsByClub.remove(p.ClubID, id)
	a.postsByAuthor.remove(p.AuthorID, id)
	a.forget(id)
	return nil
}

func (r postRepo) ListByClub(_ context.Context, clubID uuid.UUID, page models.Page) ([]models.Post, error) {
	a := r.t.view()
	return models.Apply(r.list(a.postsByClub.children(clubID)), page), nil
}

func (r postRepo) ListForClubSince(_ context.Context, clubID uuid.UUID, since time.Time) ([]models.Post, error) {
	a := r.t.view()
	all := r.list(a.postsByClub.children(clubID))
	out := all[:0]
	for _, p := range all {
		if !p.CreatedAt.Before(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r postRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]models.Post, error) {
	out := make([]models.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.get(id); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r postRepo) CountByAuthor(_ context.Context, authorID uuid.UUID) (int, error) {
	a := r.t.view()
	return a.postsByAuthor.count(authorID), nil
}

type commentRepo struct{ t *tx }

func copyComment(c models.Comment) models.Comment {
	c.PostID = copyPtr(c.PostID)
	c.ThreadID = copyPtr(c.ThreadID)
	return c
}

func (r commentRepo) get(id uuid.UUID) (models.Comment, bool) {
	a := r.t.view()
	c, ok := a.comments[id]
	return copyComment(c), ok
}

func (r commentRepo) Create(_ context.Context, c *models.Comment) error {
	a := r.t.edit()
	if _, ok := a.comments[c.ID]; ok {
		return repositories.ErrDuplicate
	}
	parent := c.Parent()
	if parent.Kind == "" {
		return repositories.ErrNotFound
	}
	a.comments[c.ID] = copyComment(*c)
	a.commentsByParent.add(parent.ID, c.ID)
	a.touch(c.ID)
	return nil
}

func (r commentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	c, ok := r.get(id)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (r commentRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return r.GetByID(ctx, id)
}

func (r commentRepo) Update(_ context.Context, c *models.Comment) error {
	a := r.t.edit()
	if _, ok := a.comments[c.ID]; !ok {
		return repositories.ErrNotFound
	}
	a.comments[c.ID] = copyComment(*c)
	return nil
}

func (r commentRepo) Delete(_ context.Context, id uuid.UUID) error {
	a := r.t.edit()
	c, ok := a.comments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	delete(a.comments, id)
	a.commentsByParent.remove(c.Parent().ID, id)
	a.forget(id)
	return nil
}

func (r commentRepo) ListByParent(_ context.Context, parent models.ResourceRef, page models.Page) ([]models.Comment, error) {
	a := r.t.view()
	all := collect(a, a.commentsByParent.children(parent.ID), r.get,
		func(c models.Comment) time.Time { return c.CreatedAt },
		func(c models.Comment) uuid.UUID { return c.ID }, false)
	return models.Apply(all, page), nil
}

func (r commentRepo) CountByParent(_ context.Context, parent models.ResourceRef) (int, error) {
	a := r.t.view()
	return a.commentsByParent.count(parent.ID), nil
}

type threadRepo struct{ t *tx }

func (r threadRepo) get(id uuid.UUID) (models.ForumThread, bool) {
	a := r.t.view()
	t, ok := a.threads[id]
	return t, ok
}

func (r threadRepo) Create(_ context.Context, t *models.ForumThread) error {
	a := r.t.edit()
	if _, ok := a.threads[t.ID]; ok {
		return repositories.ErrDuplicate
	}
	a.threads[t.ID] = *t
	a.threadsByClub.add(t.ClubID, t.ID)
	a.touch(t.ID)
	return nil
}

func (r threadRepo) GetByID(_ context.Context, id uuid.UUID) (*models.ForumThread, error) {
	t, ok := r.get(id)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &t, nil
}

func (r threadRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.ForumThread, error) {
	return r.GetByID(ctx, id)
}

func (r threadRepo) Update(_ context.Context, t *models.ForumThread) error {
	a := r.t.edit()
	if _, ok := a.threads[t.ID]; !ok {
		return repositories.ErrNotFound
	}
	a.threads[t.ID] = *t
	return nil
}

func (r threadRepo) Delete(_ context.Context, id uuid.UUID) error {
	a := r.t.edit()
	t, ok := a.threads[id]
	if !ok {
		return repositories.ErrNotFound
	}
	delete(a.threads, id)
	a.threadsByClub.remove(t.ClubID, id)
	a.forget(id)
	return nil
}

func (r threadRepo) ListByClub(_ context.Context, clubID uuid.UUID, page models.Page) ([]models.ForumThread, error) {
	a := r.t.view()
	all := collect(a, a.threadsByClub.children(clubID), r.get,
		func(t models.ForumThread) time.Time { return t.LastActivity },
		func(t models.ForumThread) uuid.UUID { return t.ID }, true)
	return models.Apply(all, page), nil
}

type replyRepo struct{ t *tx }

func (r replyRepo) get(id uuid.UUID) (models.Reply, bool) {
	a := r.t.view()
	rep, ok := a.replies[id]
	return rep, ok
}

func (r replyRepo) Create(_ context.Context, rep *models.Reply) error {
	a := r.t.edit()
	if _, ok := a.replies[rep.ID]; ok {
		return repositories.ErrDuplicate
	}
	a.replies[rep.ID] = *rep
	a.repliesByThread.add(rep.ThreadID, rep.ID)
	a.touch(rep.ID)
	return nil
}

func (r replyRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Reply, error) {
	rep, ok := r.get(id)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &rep, nil
}

func (r replyRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Reply, error) {
	return r.GetByID(ctx, id)
}

func (r replyRepo) Update(_ context.Context, rep *models.Reply) error {
	a := r.t.edit()
	if _, ok := a.replies[rep.ID]; !ok {
		return repositories.ErrNotFound
	}
	a.replies[rep.ID] = *rep
	return nil
}

func (r replyRepo) Delete(_ context.Context, id uuid.UUID) error {
	a := r.t.edit()
	rep, ok := a.replies[id]
	if !ok {
		return repositories.ErrNotFound
	}
	delete(a.replies, id)
	a.repliesByThread.remove(rep.ThreadID, id)
	a.forget(id)
	return nil
}

func (r replyRepo) ListByThread(_ context.Context, threadID uuid.UUID, page models.Page) ([]models.Reply, error) {
	a := r.t.view()
	all := collect(a, a.repliesByThread.children(threadID), r.get,
		func(rep models.Reply) time.Time { return rep.CreatedAt },
		func(rep models.Reply) uuid.UUID { return rep.ID }, false)
	return models.Apply(all, page), nil
}

func (r replyRepo) CountByThread(_ context.Context, threadID uuid.UUID) (int, error) {
	a := r.t.view()
	return a.repliesByThread.count(threadID), nil
}

type eventRepo struct{ t *tx }

func (r eventRepo) get(id uuid.UUID) (models.Event, bool) {
	a := r.t.view()
	e, ok := a.events[id]
	return e, ok
}

func (r eventRepo) list(ids []uuid.UUID) []models.Event {
	a := r.t.view()
	return collect(a, ids, r.get,
		func(e models.Event) time.Time { return e.CreatedAt },
		func(e models.Event) uuid.UUID { return e.ID }, true)
}

func (r eventRepo) Create(_ context.Context, e *models.Event) error {
	a := r.t.edit()
	if _, ok := a.events[e.ID]; ok {
		return repositories.ErrDuplicate
	}
	a.events[e.ID] = *e
	a.eventsByClub.add(e.ClubID, e.ID)
	a.touch(e.ID)
	return nil
}

func (r eventRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	e, ok := r.get(id)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &e, nil
}

func (r eventRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return r.GetByID(ctx, id)
}

func (r eventRepo) Update(_ context.Context, e *models.Event) error {
	a := r.t.edit()
	if _, ok := a.events[e.ID]; !ok {
		return repositories.ErrNotFound
	}
	a.events[e.ID] = *e
	return nil
}

func (r eventRepo) Delete(_ context.Context, id uuid.UUID) error {
	a := r.t.edit()
	e, ok := a.events[id]
	if !ok {
		return repositories.ErrNotFound
	}
	delete(a.events, id)
	a.eventsByClub.remove(e.ClubID, id)
	a.forget(id)
	return nil
}

func (r eventRepo) ListByClub(_ context.Context, clubID uuid.UUID, page models.Page) ([]models.Event, error) {
	a := r.t.view()
	return models.Apply(r.list(a.eventsByClub.children(clubID)), page), nil
}

func (r eventRepo) ListForClubSince(_ context.Context, clubID uuid.UUID, since time.Time) ([]models.Event, error) {
	a := r.t.view()
	all := r.list(a.eventsByClub.children(clubID))
	out := all[:0]
	for _, e := range all {
		if !e.CreatedAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}
