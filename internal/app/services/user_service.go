package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/filestorage"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

// UserService defines the interface for user profile operations
type UserService interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)
	// Profile returns the user with post and attendance counts and every
	// membership, fully materialized.
	Profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, patch models.UserPatch) (*models.User, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, avatar Upload) (*models.User, error)
}

type userServiceImpl struct {
	store   repositories.Store
	objects filestorage.ObjectStore
	clock   helpers.Clock
	logger  zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(store repositories.Store, objects filestorage.ObjectStore, clock helpers.Clock, logger zerolog.Logger) UserService {
	return &userServiceImpl{
		store:   store,
		objects: objects,
		clock:   clock,
		logger:  logger,
	}
}

func getUser(ctx context.Context, tx repositories.Tx, id uuid.UUID) (*models.User, error) {
	u, err := tx.Users().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, id, apperrors.UserNotFound)
	}
	return u, nil
}

func (s *userServiceImpl) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user *models.User
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		user, err = getUser(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, finish(s.logger, "get user", err)
	}
	return user, nil
}

func (s *userServiceImpl) Profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		user, err := getUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		profile.User = *user

		if profile.PostCount, err = tx.Posts().CountByAuthor(ctx, userID); err != nil {
			return err
		}
		if profile.EventsAttended, err = tx.Interactions().CountByUser(ctx, models.ResourceEvent, models.AxisAttend, userID); err != nil {
			return err
		}

		members, err := tx.Members().ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		profile.Memberships = make([]models.Membership, 0, len(members))
		for _, m := range members {
			club, err := getClub(ctx, tx, m.ClubID)
			if err != nil {
				return err
			}
			profile.Memberships = append(profile.Memberships, models.Membership{Member: m, Club: *club})
		}
		return nil
	})
	if err != nil {
		return nil, finish(s.logger, "get profile", err)
	}
	return &profile, nil
}

func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, patch models.UserPatch) (*models.User, error) {
	if patch.Username != nil {
		name := strings.TrimSpace(*patch.Username)
		if name == "" {
			return nil, finish(s.logger, "update profile", apperrors.Validation("username", "Username must not be empty."))
		}
		patch.Username = &name
	}

	var user *models.User
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		user, err = getUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		patch.Apply(user)
		user.UpdatedAt = s.clock.Now()
		return tx.Users().Update(ctx, user)
	})
	if err != nil {
		return nil, finish(s.logger, "update profile", err)
	}
	return user, nil
}

func (s *userServiceImpl) UpdateAvatar(ctx context.Context, userID uuid.UUID, avatar Upload) (*models.User, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}

	var (
		user *models.User
		old  *models.ObjectRef
	)
	err := putObject(ctx, s.objects, s.logger, "users/"+userID.String(), avatar, func(ref *models.ObjectRef) error {
		return s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
			var err error
			user, err = getUser(ctx, tx, userID)
			if err != nil {
				return err
			}
			old = user.Avatar
			user.Avatar = ref
			user.UpdatedAt = s.clock.Now()
			return tx.Users().Update(ctx, user)
		})
	})
	if err != nil {
		return nil, finish(s.logger, "update avatar", err)
	}

	dropObject(ctx, s.objects, s.logger, old)
	return user, nil
}
