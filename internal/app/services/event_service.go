package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

// EventService manages club events. Only admins and moderators may create, edit
// or delete them; attendance goes through the InteractionService.
type EventService interface {
	Create(ctx context.Context, actorID, clubID uuid.UUID, event models.Event) (*models.Event, error)
	Get(ctx context.Context, actorID, eventID uuid.UUID) (*models.EventView, error)
	ListByClub(ctx context.Context, actorID, clubID uuid.UUID, page models.Page) ([]models.EventView, error)
	Update(ctx context.Context, actorID, eventID uuid.UUID, patch models.EventPatch) (*models.Event, error)
	Delete(ctx context.Context, actorID, eventID uuid.UUID) error
}

type eventServiceImpl struct {
	store  repositories.Store
	clock  helpers.Clock
	logger zerolog.Logger
}

// NewEventService creates a new EventService
func NewEventService(store repositories.Store, clock helpers.Clock, logger zerolog.Logger) EventService {
	return &eventServiceImpl{store: store, clock: clock, logger: logger}
}

const defaultEventStatus = "UPCOMING"

func eventView(ctx context.Context, tx repositories.Tx, e models.Event, viewerID uuid.UUID) (models.EventView, error) {
	attending, err := tx.Interactions().Has(ctx, models.ResourceRef{Kind: models.ResourceEvent, ID: e.ID}, models.AxisAttend, viewerID)
	return models.EventView{Event: e, Attending: attending}, err
}

func (s *eventServiceImpl) Create(ctx context.Context, actorID, clubID uuid.UUID, event models.Event) (*models.Event, error) {
	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" {
		return nil, finish(s.logger, "create event", apperrors.Validation("title", "Event title is required."))
	}
	if event.Status == "" {
		event.Status = defaultEventStatus
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if _, err := getClub(ctx, tx, clubID); err != nil {
			return err
		}
		role, err := roleIn(ctx, tx, clubID, actorID)
		if err != nil {
			return err
		}
		if err := auth.Check(role, auth.CreateEvent, auth.NoSubject); err != nil {
			return err
		}
		now := s.clock.Now()
		event.ID = models.NewID()
		event.ClubID = clubID
		event.Attendees = 0
		event.CreatedAt = now
		event.UpdatedAt = now
		return notFound(tx.Events().Create(ctx, &event), clubID, apperrors.ClubNotFound)
	})
	if err != nil {
		return nil, finish(s.logger, "create event", err)
	}

	s.logger.Info().Str("eventId", event.ID.String()).Str("clubId", clubID.String()).Msg("Event created")
	return &event, nil
}

func (s *eventServiceImpl) Get(ctx context.Context, actorID, eventID uuid.UUID) (*models.EventView, error) {
	var view models.EventView
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		e, err := tx.Events().GetByID(ctx, eventID)
		if err != nil {
			return notFound(err, eventID, apperrors.EventNotFound)
		}
		if err := viewable(ctx, tx, e.ClubID, actorID); err != nil {
			return err
		}
		view, err = eventView(ctx, tx, *e, actorID)
		return err
	})
	if err != nil {
		return nil, finish(s.logger, "get event", err)
	}
	return &view, nil
}

func (s *eventServiceImpl) ListByClub(ctx context.Context, actorID, clubID uuid.UUID, page models.Page) ([]models.EventView, error) {
	var views []models.EventView
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if _, err := getClub(ctx, tx, clubID); err != nil {
			return err
		}
		if err := viewable(ctx, tx, clubID, actorID); err != nil {
			return err
		}
		events, err := tx.Events().ListByClub(ctx, clubID, page)
		if err != nil {
			return err
		}
		views = make([]models.EventView, 0, len(events))
		for _, e := range events {
			v, err := eventView(ctx, tx, e, actorID)
			if err != nil {
				return err
			}
			views = append(views, v)
		}
		return nil
	})
	if err != nil {
		return nil, finish(s.logger, "list events", err)
	}
	return views, nil
}

func (s *eventServiceImpl) lockEvent(ctx context.Context, tx repositories.Tx, actorID, eventID uuid.UUID, action auth.Action) (*models.Event, error) {
	e, err := tx.Events().GetForUpdate(ctx, eventID)
	if err != nil {
		return nil, notFound(err, eventID, apperrors.EventNotFound)
	}
	role, err := roleIn(ctx, tx, e.ClubID, actorID)
	if err != nil {
		return nil, err
	}
	if err := auth.Check(role, action, auth.NoSubject); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *eventServiceImpl) Update(ctx context.Context, actorID, eventID uuid.UUID, patch models.EventPatch) (*models.Event, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, finish(s.logger, "update event", apperrors.Validation("title", "Event title must not be empty."))
	}

	var event *models.Event
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		event, err = s.lockEvent(ctx, tx, actorID, eventID, auth.UpdateEvent)
		if err != nil {
			return err
		}
		patch.Apply(event)
		event.Title = strings.TrimSpace(event.Title)
		event.UpdatedAt = s.clock.Now()
		return tx.Events().Update(ctx, event)
	})
	if err != nil {
		return nil, finish(s.logger, "update event", err)
	}
	return event, nil
}

func (s *eventServiceImpl) Delete(ctx context.Context, actorID, eventID uuid.UUID) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		e, err := s.lockEvent(ctx, tx, actorID, eventID, auth.DeleteEvent)
		if err != nil {
			return err
		}
		return deleteEvent(ctx, tx, *e)
	})
	if err != nil {
		return finish(s.logger, "delete event", err)
	}

	s.logger.Info().Str("eventId", eventID.String()).Str("actorId", actorID.String()).Msg("Event deleted")
	return nil
}
