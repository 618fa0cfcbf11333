package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/clubhub/internal/app/models"
)

var commentColumns = []string{
	"id", "author_id", "post_id", "thread_id", "content", "likes", "created_at", "updated_at",
}

func scanComment(row pgx.Row) (models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.AuthorID, &c.PostID, &c.ThreadID, &c.Content, &c.Likes, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func parentFilter(parent models.ResourceRef) (squirrel.Eq, error) {
	switch parent.Kind {
	case models.ResourcePost:
		return squirrel.Eq{"post_id": parent.ID}, nil
	case models.ResourceThread:
		return squirrel.Eq{"thread_id": parent.ID}, nil
	}
	return nil, fmt.Errorf("comments cannot belong to a %s", parent.Kind)
}

type commentRepository struct{ pgRepo }

func (r commentRepository) Create(ctx context.Context, c *models.Comment) error {
	_, err := r.exec(ctx, r.sb.Insert("comments").
		Columns(commentColumns...).
		Values(c.ID, c.AuthorID, c.PostID, c.ThreadID, c.Content, c.Likes, c.CreatedAt, c.UpdatedAt))
	return err
}

func (r commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return one(ctx, r.pgRepo, r.sb.Select(commentColumns...).From("comments").Where(squirrel.Eq{"id": id}), scanComment)
}

func (r commentRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return one(ctx, r.pgRepo, r.sb.Select(commentColumns...).From("comments").
		Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE"), scanComment)
}

func (r commentRepository) Update(ctx context.Context, c *models.Comment) error {
	return r.execOne(ctx, r.sb.Update("comments").
		Set("content", c.Content).
		Set("likes", c.Likes).
		Set("updated_at", c.UpdatedAt).
		Where(squirrel.Eq{"id": c.ID}))
}

func (r commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, r.sb.Delete("comments").Where(squirrel.Eq{"id": id}))
}

func (r commentRepository) ListByParent(ctx context.Context, parent models.ResourceRef, page models.Page) ([]models.Comment, error) {
	where, err := parentFilter(parent)
	if err != nil {
		return nil, err
	}
	return many(ctx, r.pgRepo, paginate(
		r.sb.Select(commentColumns...).From("comments").Where(where).OrderBy("created_at", "id"),
		page), scanComment)
}

func (r commentRepository) CountByParent(ctx context.Context, parent models.ResourceRef) (int, error) {
	where, err := parentFilter(parent)
	if err != nil {
		return 0, err
	}
	return r.count(ctx, r.sb.Select("COUNT(*)").From("comments").Where(where))
}
