package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/clubhub/internal/app/models"
)

var memberColumns = []string{"id", "club_id", "user_id", "role", "joined_at"}

func scanMember(row pgx.Row) (models.Member, error) {
	var m models.Member
	var role string
	err := row.Scan(&m.ID, &m.ClubID, &m.UserID, &role, &m.JoinedAt)
	m.Role = models.Role(role)
	return m, err
}

type memberRepository struct{ pgRepo }

func (r memberRepository) Create(ctx context.Context, m *models.Member) error {
	_, err := r.exec(ctx, r.sb.Insert("members").
		Columns(memberColumns...).
		Values(m.ID, m.ClubID, m.UserID, string(m.Role), m.JoinedAt))
	return err
}

func (r memberRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	return one(ctx, r.pgRepo, r.sb.Select(memberColumns...).From("members").Where(squirrel.Eq{"id": id}), scanMember)
}

func (r memberRepository) Get(ctx context.Context, clubID, userID uuid.UUID) (*models.Member, error) {
	return one(ctx, r.pgRepo, r.sb.Select(memberColumns...).From("members").
		Where(squirrel.Eq{"club_id": clubID, "user_id": userID}), scanMember)
}

func (r memberRepository) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	return r.execOne(ctx, r.sb.Update("members").Set("role", string(role)).Where(squirrel.Eq{"id": id}))
}

func (r memberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, r.sb.Delete("members").Where(squirrel.Eq{"id": id}))
}

func (r memberRepository) ListByClub(ctx context.Context, clubID uuid.UUID) ([]models.Member, error) {
	return many(ctx, r.pgRepo, r.sb.Select(memberColumns...).From("members").
		Where(squirrel.Eq{"club_id": clubID}).OrderBy("joined_at NULLS FIRST", "id"), scanMember)
}

func (r memberRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Member, error) {
	return many(ctx, r.pgRepo, r.sb.Select(memberColumns...).From("members").
		Where(squirrel.Eq{"user_id": userID}).OrderBy("joined_at NULLS FIRST", "id"), scanMember)
}

func (r memberRepository) CountByClub(ctx context.Context, clubID uuid.UUID) (int, error) {
	return r.count(ctx, r.sb.Select("COUNT(*)").From("members").Where(squirrel.Eq{"club_id": clubID}))
}

func (r memberRepository) CountByRole(ctx context.Context, clubID uuid.UUID, role models.Role) (int, error) {
	return r.count(ctx, r.sb.Select("COUNT(*)").From("members").
		Where(squirrel.Eq{"club_id": clubID, "role": string(role)}))
}
