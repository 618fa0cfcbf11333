package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/clubhub/internal/app/models"
)

var threadColumns = []string{
	"id", "club_id", "author_id", "title", "content",
	"upvotes", "downvotes", "replies", "last_activity", "created_at", "updated_at",
}

func scanThread(row pgx.Row) (models.ForumThread, error) {
	var t models.ForumThread
	err := row.Scan(&t.ID, &t.ClubID, &t.AuthorID, &t.Title, &t.Content,
		&t.Upvotes, &t.Downvotes, &t.Replies, &t.LastActivity, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

type threadRepository struct{ pgRepo }

func (r threadRepository) Create(ctx context.Context, t *models.ForumThread) error {
	_, err := r.exec(ctx, r.sb.Insert("forum_threads").
		Columns(threadColumns...).
		Values(t.ID, t.ClubID, t.AuthorID, t.Title, t.Content,
			t.Upvotes, t.Downvotes, t.Replies, t.LastActivity, t.CreatedAt, t.UpdatedAt))
	return err
}

func (r threadRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ForumThread, error) {
	return one(ctx, r.pgRepo, r.sb.Select(threadColumns...).From("forum_threads").Where(squirrel.Eq{"id": id}), scanThread)
}

func (r threadRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.ForumThread, error) {
	return one(ctx, r.pgRepo, r.sb.Select(threadColumns...).From("forum_threads").
		Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE"), scanThread)
}

func (r threadRepository) Update(ctx context.Context, t *models.ForumThread) error {
	return r.execOne(ctx, r.sb.Update("forum_threads").
		Set("title", t.Title).
		Set("content", t.Content).
		Set("upvotes", t.Upvotes).
		Set("downvotes", t.Downvotes).
		Set("replies", t.Replies).
		Set("last_activity", t.LastActivity).
		Set("updated_at", t.UpdatedAt).
		Where(squirrel.Eq{"id": t.ID}))
}

func (r threadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, r.sb.Delete("forum_threads").Where(squirrel.Eq{"id": id}))
}

func (r threadRepository) ListByClub(ctx context.Context, clubID uuid.UUID, page models.Page) ([]models.ForumThread, error) {
	return many(ctx, r.pgRepo, paginate(
		r.sb.Select(threadColumns...).From("forum_threads").
			Where(squirrel.Eq{"club_id": clubID}).
			OrderBy("last_activity DESC", "id DESC"),
		page), scanThread)
}

var replyColumns = []string{
	"id", "thread_id", "author_id", "content", "upvotes", "downvotes", "created_at", "updated_at",
}

func scanReply(row pgx.Row) (models.Reply, error) {
	var rep models.Reply
	err := row.Scan(&rep.ID, &rep.ThreadID, &rep.AuthorID, &rep.Content,
		&rep.Upvotes, &rep.Downvotes, &rep.CreatedAt, &rep.UpdatedAt)
	return rep, err
}

type replyRepository struct{ pgRepo }

func (r replyRepository) Create(ctx context.Context, rep *models.Reply) error {
	_, err := r.exec(ctx, r.sb.Insert("replies").
		Columns(replyColumns...).
		Values(rep.ID, rep.ThreadID, rep.AuthorID, rep.Content,
			rep.Upvotes, rep.Downvotes, rep.CreatedAt, rep.UpdatedAt))
	return err
}

func (r replyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Reply, error) {
	return one(ctx, r.pgRepo, r.sb.Select(replyColumns...).From("replies").Where(squirrel.Eq{"id": id}), scanReply)
}

func (r replyRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Reply, error) {
	return one(ctx, r.pgRepo, r.sb.Select(replyColumns...).From("replies").
		Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE"), scanReply)
}

func (r replyRepository) Update(ctx context.Context, rep *models.Reply) error {
	return r.execOne(ctx, r.sb.Update("replies").
		Set("content", rep.Content).
		Set("upvotes", rep.Upvotes).
		Set("downvotes", rep.Downvotes).
		Set("updated_at", rep.UpdatedAt).
		Where(squirrel.Eq{"id": rep.ID}))
}

func (r replyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, r.sb.Delete("replies").Where(squirrel.Eq{"id": id}))
}

func (r replyRepository) ListByThread(ctx context.Context, threadID uuid.UUID, page models.Page) ([]models.Reply, error) {
	return many(ctx, r.pgRepo, paginate(
		r.sb.Select(replyColumns...).From("replies").
			Where(squirrel.Eq{"thread_id": threadID}).
			OrderBy("created_at", "id"),
		page), scanReply)
}

func (r replyRepository) CountByThread(ctx context.Context, threadID uuid.UUID) (int, error) {
	return r.count(ctx, r.sb.Select("COUNT(*)").From("replies").Where(squirrel.Eq{"thread_id": threadID}))
}
