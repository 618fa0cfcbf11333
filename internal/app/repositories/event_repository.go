package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/clubhub/internal/app/models"
)

var eventColumns = []string{
	"id", "club_id", "title", "description", "date", "time", "location", "status",
	"attendees", "created_at", "updated_at",
}

func scanEvent(row pgx.Row) (models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.ClubID, &e.Title, &e.Description, &e.Date, &e.Time, &e.Location, &e.Status,
		&e.Attendees, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

type eventRepository struct{ pgRepo }

func (r eventRepository) Create(ctx context.Context, e *models.Event) error {
	_, err := r.exec(ctx, r.sb.Insert("events").
		Columns(eventColumns...).
		Values(e.ID, e.ClubID, e.Title, e.Description, e.Date, e.Time, e.Location, e.Status,
			e.Attendees, e.CreatedAt, e.UpdatedAt))
	return err
}

func (r eventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return one(ctx, r.pgRepo, r.sb.Select(eventColumns...).From("events").Where(squirrel.Eq{"id": id}), scanEvent)
}

func (r eventRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return one(ctx, r.pgRepo, r.sb.Select(eventColumns...).From("events").
		Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE"), scanEvent)
}

func (r eventRepository) Update(ctx context.Context, e *models.Event) error {
	return r.execOne(ctx, r.sb.Update("events").
		Set("title", e.Title).
		Set("description", e.Description).
		Set("date", e.Date).
		Set("time", e.Time).
		Set("location", e.Location).
		Set("status", e.Status).
		Set("attendees", e.Attendees).
		Set("updated_at", e.UpdatedAt).
		Where(squirrel.Eq{"id": e.ID}))
}

func (r eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, r.sb.Delete("events").Where(squirrel.Eq{"id": id}))
}

func (r eventRepository) ListByClub(ctx context.Context, clubID uuid.UUID, page models.Page) ([]models.Event, error) {
	return many(ctx, r.pgRepo, paginate(
		r.sb.Select(eventColumns...).From("events").
			Where(squirrel.Eq{"club_id": clubID}).
			OrderBy("created_at DESC", "id DESC"),
		page), scanEvent)
}

func (r eventRepository) ListForClubSince(ctx context.Context, clubID uuid.UUID, since time.Time) ([]models.Event, error) {
	return many(ctx, r.pgRepo, r.sb.Select(eventColumns...).From("events").
		Where(squirrel.Eq{"club_id": clubID}).
		Where(squirrel.GtOrEq{"created_at": since}).
		OrderBy("created_at DESC", "id DESC"), scanEvent)
}
