package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/clubhub/internal/app/models"
)

type interactionRepository struct{ pgRepo }

func interactionKey(ref models.ResourceRef, axis models.Axis, userID uuid.UUID) squirrel.Eq {
	return squirrel.Eq{
		"resource_kind": string(ref.Kind),
		"resource_id":   ref.ID,
		"axis":          string(axis),
		"user_id":       userID,
	}
}

// Add relies on the primary key: a second insert for the same tuple is a no-op.
func (r interactionRepository) Add(ctx context.Context, ref models.ResourceRef, axis models.Axis, userID uuid.UUID) (bool, error) {
	tag, err := r.exec(ctx, r.sb.Insert("interactions").
		Columns("resource_kind", "resource_id", "axis", "user_id", "created_at").
		Values(string(ref.Kind), ref.ID, string(axis), userID, squirrel.Expr("now()")).
		Suffix("ON CONFLICT DO NOTHING"))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r interactionRepository) Remove(ctx context.Context, ref models.ResourceRef, axis models.Axis, userID uuid.UUID) (bool, error) {
	tag, err := r.exec(ctx, r.sb.Delete("interactions").Where(interactionKey(ref, axis, userID)))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r interactionRepository) Has(ctx context.Context, ref models.ResourceRef, axis models.Axis, userID uuid.UUID) (bool, error) {
	n, err := r.count(ctx, r.sb.Select("COUNT(*)").From("interactions").Where(interactionKey(ref, axis, userID)))
	return n > 0, err
}

func (r interactionRepository) Count(ctx context.Context, ref models.ResourceRef, axis models.Axis) (int, error) {
	return r.count(ctx, r.sb.Select("COUNT(*)").From("interactions").Where(squirrel.Eq{
		"resource_kind": string(ref.Kind),
		"resource_id":   ref.ID,
		"axis":          string(axis),
	}))
}

func (r interactionRepository) ResourceIDsByUser(ctx context.Context, kind models.ResourceKind, axis models.Axis, userID uuid.UUID) ([]uuid.UUID, error) {
	return many(ctx, r.pgRepo, r.sb.Select("resource_id").From("interactions").
		Where(squirrel.Eq{"resource_kind": string(kind), "axis": string(axis), "user_id": userID}).
		OrderBy("created_at DESC"),
		func(row pgx.Row) (uuid.UUID, error) {
			var id uuid.UUID
			err := row.Scan(&id)
			return id, err
		})
}

func (r interactionRepository) CountByUser(ctx context.Context, kind models.ResourceKind, axis models.Axis, userID uuid.UUID) (int, error) {
	return r.count(ctx, r.sb.Select("COUNT(*)").From("interactions").
		Where(squirrel.Eq{"resource_kind": string(kind), "axis": string(axis), "user_id": userID}))
}

func (r interactionRepository) DeleteForResource(ctx context.Context, ref models.ResourceRef) error {
	_, err := r.exec(ctx, r.sb.Delete("interactions").
		Where(squirrel.Eq{"resource_kind": string(ref.Kind), "resource_id": ref.ID}))
	return err
}
