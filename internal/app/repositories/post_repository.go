package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/clubhub/internal/app/models"
)

var postColumns = []string{
	"id", "club_id", "author_id", "content",
	"picture_bucket", "picture_key", "picture_etag",
	"likes", "comments", "bookmarks", "shares", "created_at", "updated_at",
}

func scanPost(row pgx.Row) (models.Post, error) {
	var p models.Post
	var bucket, key, etag *string
	err := row.Scan(
		&p.ID, &p.ClubID, &p.AuthorID, &p.Content,
		&bucket, &key, &etag,
		&p.Likes, &p.Comments, &p.Bookmarks, &p.Shares, &p.CreatedAt, &p.UpdatedAt,
	)
	p.Picture = objectRef(bucket, key, etag)
	return p, err
}

type postRepository struct{ pgRepo }

func (r postRepository) selectPosts() squirrel.SelectBuilder {
	return r.sb.Select(postColumns...).From("posts")
}

func (r postRepository) Create(ctx context.Context, p *models.Post) error {
	bucket, key, etag := objectColumns(p.Picture)
	_, err := r.exec(ctx, r.sb.Insert("posts").
		Columns(postColumns...).
		Values(p.ID, p.ClubID, p.AuthorID, p.Content,
			bucket, key, etag,
			p.Likes, p.Comments, p.Bookmarks, p.Shares, p.CreatedAt, p.UpdatedAt))
	return err
}

func (r postRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return one(ctx, r.pgRepo, r.selectPosts().Where(squirrel.Eq{"id": id}), scanPost)
}

func (r postRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return one(ctx, r.pgRepo, r.selectPosts().Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE"), scanPost)
}

func (r postRepository) Update(ctx context.Context, p *models.Post) error {
	bucket, key, etag := objectColumns(p.Picture)
	return r.execOne(ctx, r.sb.Update("posts").
		Set("content", p.Content).
		Set("picture_bucket", bucket).
		Set("picture_key", key).
		Set("picture_etag", etag).
		Set("likes", p.Likes).
		Set("comments", p.Comments).
		Set("bookmarks", p.Bookmarks).
		Set("shares", p.Shares).
		Set("updated_at", p.UpdatedAt).
		Where(squirrel.Eq{"id": p.ID}))
}

func (r postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, r.sb.Delete("posts").Where(squirrel.Eq{"id": id}))
}

func (r postRepository) ListByClub(ctx context.Context, clubID uuid.UUID, page models.Page) ([]models.Post, error) {
	return many(ctx, r.pgRepo, paginate(
		r.selectPosts().Where(squirrel.Eq{"club_id": clubID}).OrderBy("created_at DESC", "id DESC"),
		page), scanPost)
}

func (r postRepository) ListForClubSince(ctx context.Context, clubID uuid.UUID, since time.Time) ([]models.Post, error) {
	return many(ctx, r.pgRepo, r.selectPosts().
		Where(squirrel.Eq{"club_id": clubID}).
		Where(squirrel.GtOrEq{"created_at": since}).
		OrderBy("created_at DESC", "id DESC"), scanPost)
}

// ListByIDs keeps the order of ids.
func (r postRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Post, error) {
	if len(ids) == 0 {
		return []models.Post{}, nil
	}
	found, err := many(ctx, r.pgRepo, r.selectPosts().Where(squirrel.Eq{"id": ids}), scanPost)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Post, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Post, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r postRepository) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int, error) {
	return r.count(ctx, r.sb.Select("COUNT(*)").From("posts").Where(squirrel.Eq{"author_id": authorID}))
}
