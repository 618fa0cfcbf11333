package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/clubhub/internal/app/models"
)

var clubColumns = []string{
	"id", "name", "description", "location", "category", "subject", "interest",
	"avatar_bucket", "avatar_key", "avatar_etag", "members", "created_at", "updated_at",
}

func scanClub(row pgx.Row) (models.Club, error) {
	var c models.Club
	var bucket, key, etag *string
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.Location, &c.Category, &c.Subject, &c.Interest,
		&bucket, &key, &etag, &c.Members, &c.CreatedAt, &c.UpdatedAt,
	)
	c.Avatar = objectRef(bucket, key, etag)
	return c, err
}

type clubRepository struct{ pgRepo }

func (r clubRepository) Create(ctx context.Context, c *models.Club) error {
	bucket, key, etag := objectColumns(c.Avatar)
	_, err := r.exec(ctx, r.sb.Insert("clubs").
		Columns(clubColumns...).
		Values(c.ID, c.Name, c.Description, c.Location, c.Category, c.Subject, c.Interest,
			bucket, key, etag, c.Members, c.CreatedAt, c.UpdatedAt))
	return err
}

func (r clubRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Club, error) {
	return one(ctx, r.pgRepo, r.sb.Select(clubColumns...).From("clubs").Where(squirrel.Eq{"id": id}), scanClub)
}

func (r clubRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Club, error) {
	return one(ctx, r.pgRepo, r.sb.Select(clubColumns...).From("clubs").
		Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE"), scanClub)
}

func (r clubRepository) Update(ctx context.Context, c *models.Club) error {
	bucket, key, etag := objectColumns(c.Avatar)
	return r.execOne(ctx, r.sb.Update("clubs").
		Set("name", c.Name).
		Set("description", c.Description).
		Set("location", c.Location).
		Set("category", c.Category).
		Set("subject", c.Subject).
		Set("interest", c.Interest).
		Set("avatar_bucket", bucket).
		Set("avatar_key", key).
		Set("avatar_etag", etag).
		Set("members", c.Members).
		Set("updated_at", c.UpdatedAt).
		Where(squirrel.Eq{"id": c.ID}))
}

func (r clubRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, r.sb.Delete("clubs").Where(squirrel.Eq{"id": id}))
}

func (r clubRepository) Search(ctx context.Context, f models.ClubFilter) ([]models.Club, int, error) {
	where := squirrel.And{}
	if f.Name != "" {
		where = append(where, squirrel.ILike{"name": "%" + f.Name + "%"})
	}
	if f.Category != "" {
		where = append(where, squirrel.ILike{"category": "%" + f.Category + "%"})
	}
	if f.Interest != "" {
		where = append(where, squirrel.ILike{"interest": "%" + f.Interest + "%"})
	}
	if f.MinMembers != nil {
		where = append(where, squirrel.GtOrEq{"members": *f.MinMembers})
	}
	if f.MaxMembers != nil {
		where = append(where, squirrel.LtOrEq{"members": *f.MaxMembers})
	}

	total, err := r.count(ctx, r.sb.Select("COUNT(*)").From("clubs").Where(where))
	if err != nil {
		return nil, 0, err
	}

	clubs, err := many(ctx, r.pgRepo, paginate(
		r.sb.Select(clubColumns...).From("clubs").Where(where).OrderBy("name", "created_at"),
		f.Page), scanClub)
	if err != nil {
		return nil, 0, err
	}
	return clubs, total, nil
}
