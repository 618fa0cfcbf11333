package repositories

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/clubhub/internal/app/models"
)

var userColumns = []string{
	"id", "email", "username", "password_hash",
	"avatar_bucket", "avatar_key", "avatar_etag",
	"description", "preferences", "subject", "created_at", "updated_at",
}

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	var bucket, key, etag *string
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash,
		&bucket, &key, &etag,
		&u.Description, &u.Preferences, &u.Subject, &u.CreatedAt, &u.UpdatedAt,
	)
	u.Avatar = objectRef(bucket, key, etag)
	return u, err
}

type userRepository struct{ pgRepo }

func (r userRepository) Create(ctx context.Context, u *models.User) error {
	bucket, key, etag := objectColumns(u.Avatar)
	_, err := r.exec(ctx, r.sb.Insert("users").
		Columns(userColumns...).
		Values(u.ID, strings.ToLower(u.Email), u.Username, u.PasswordHash,
			bucket, key, etag,
			u.Description, preferences(u.Preferences), u.Subject, u.CreatedAt, u.UpdatedAt))
	return err
}

func (r userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return one(ctx, r.pgRepo, r.sb.Select(userColumns...).From("users").Where(squirrel.Eq{"id": id}), scanUser)
}

func (r userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return one(ctx, r.pgRepo, r.sb.Select(userColumns...).From("users").
		Where(squirrel.Eq{"email": strings.ToLower(strings.TrimSpace(email))}), scanUser)
}

func (r userRepository) Update(ctx context.Context, u *models.User) error {
	bucket, key, etag := objectColumns(u.Avatar)
	return r.execOne(ctx, r.sb.Update("users").
		Set("email", strings.ToLower(u.Email)).
		Set("username", u.Username).
		Set("password_hash", u.PasswordHash).
		Set("avatar_bucket", bucket).
		Set("avatar_key", key).
		Set("avatar_etag", etag).
		Set("description", u.Description).
		Set("preferences", preferences(u.Preferences)).
		Set("subject", u.Subject).
		Set("updated_at", u.UpdatedAt).
		Where(squirrel.Eq{"id": u.ID}))
}

func (r userRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return many(ctx, r.pgRepo, r.sb.Select(userColumns...).From("users").Where(squirrel.Eq{"id": ids}), scanUser)
}

// preferences never writes NULL into the text[] column.
func preferences(p []string) []string {
	if p == nil {
		return []string{}
	}
	return p
}
