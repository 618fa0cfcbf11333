package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/filestorage"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

// MembershipService is the club roster: who belongs to a club and with which role.
// Every mutation locks the club row, so admin-count checks are serialized per club.
type MembershipService interface {
	CreateWithAdmin(ctx context.Context, creatorID uuid.UUID, club models.Club) (*models.Club, error)
	Join(ctx context.Context, clubID, userID uuid.UUID) (*models.Member, error)
	Leave(ctx context.Context, clubID, userID uuid.UUID) error
	ChangeRole(ctx context.Context, clubID, memberID uuid.UUID, newRole models.Role, actingUserID uuid.UUID) (*models.Member, error)
	RoleOf(ctx context.Context, clubID, userID uuid.UUID) (*models.Role, error)

	GetClub(ctx context.Context, clubID uuid.UUID) (*models.Club, error)
	SearchClubs(ctx context.Context, filter models.ClubFilter) ([]models.Club, int, error)
	ListMembers(ctx context.Context, clubID uuid.UUID) ([]models.MemberView, error)
	UpdateClub(ctx context.Context, actorID, clubID uuid.UUID, patch models.ClubPatch) (*models.Club, error)
	UpdateClubAvatar(ctx context.Context, actorID, clubID uuid.UUID, avatar Upload) (*models.Club, error)
	DeleteClub(ctx context.Context, actorID, clubID uuid.UUID) error
}

type membershipServiceImpl struct {
	store   repositories.Store
	objects filestorage.ObjectStore
	clock   helpers.Clock
	logger  zerolog.Logger
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(store repositories.Store, objects filestorage.ObjectStore, clock helpers.Clock, logger zerolog.Logger) MembershipService {
	return &membershipServiceImpl{
		store:   store,
		objects: objects,
		clock:   clock,
		logger:  logger,
	}
}

// recount stores the roster size on the club.
func (s *membershipServiceImpl) recount(ctx context.Context, tx repositories.Tx, club *models.Club) error {
	n, err := tx.Members().CountByClub(ctx, club.ID)
	if err != nil {
		return err
	}
	club.Members = n
	club.UpdatedAt = s.clock.Now()
	return tx.Clubs().Update(ctx, club)
}

// CreateWithAdmin persists the club and makes its creator the first admin.
func (s *membershipServiceImpl) CreateWithAdmin(ctx context.Context, creatorID uuid.UUID, club models.Club) (*models.Club, error) {
	s.logger.Debug().Str("creatorId", creatorID.String()).Str("name", club.Name).Msg("Creating club")

	club.Name = strings.TrimSpace(club.Name)
	if club.Name == "" {
		return nil, finish(s.logger, "create club", apperrors.Validation("name", "Club name is required."))
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if _, err := tx.Users().GetByID(ctx, creatorID); err != nil {
			return notFound(err, creatorID, apperrors.UserNotFound)
		}

		now := s.clock.Now()
		club.ID = models.NewID()
		club.Members = 1
		club.Avatar = nil
		club.CreatedAt = now
		club.UpdatedAt = now
		if err := tx.Clubs().Create(ctx, &club); err != nil {
			return err
		}
		return tx.Members().Create(ctx, &models.Member{
			ID:       models.NewID(),
			ClubID:   club.ID,
			UserID:   creatorID,
			Role:     models.RoleAdmin,
			JoinedAt: &now,
		})
	})
	if err != nil {
		return nil, finish(s.logger, "create club", err)
	}

	s.logger.Info().Str("clubId", club.ID.String()).Str("creatorId", creatorID.String()).Msg("Club created")
	return &club, nil
}

// Join adds the user to the club as a MEMBER.
func (s *membershipServiceImpl) Join(ctx context.Context, clubID, userID uuid.UUID) (*models.Member, error) {
	var member models.Member
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		club, err := lockClub(ctx, tx, clubID)
		if err != nil {
			return err
		}
		if _, err := tx.Users().GetByID(ctx, userID); err != nil {
			return notFound(err, userID, apperrors.UserNotFound)
		}
		role, err := roleIn(ctx, tx, clubID, userID)
		if err != nil {
			return err
		}
		if role != nil {
			return apperrors.AlreadyMember().WithParam("clubId", clubID.String())
		}

		now := s.clock.Now()
		member = models.Member{
			ID:       models.NewID(),
			ClubID:   clubID,
			UserID:   userID,
			Role:     models.RoleMember,
			JoinedAt: &now,
		}
		if err := tx.Members().Create(ctx, &member); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return apperrors.AlreadyMember().WithParam("clubId", clubID.String())
			}
			return err
		}
		return s.recount(ctx, tx, club)
	})
	if err != nil {
		return nil, finish(s.logger, "join club", err)
	}

	s.logger.Info().Str("clubId", clubID.String()).Str("userId", userID.String()).Msg("User joined club")
	return &member, nil
}

// Leave removes the membership. The sole admin of a club can never leave.
func (s *membershipServiceImpl) Leave(ctx context.Context, clubID, userID uuid.UUID) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		club, err := lockClub(ctx, tx, clubID)
		if err != nil {
			return err
		}
		member, err := tx.Members().Get(ctx, clubID, userID)
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotAMember().WithParam("clubId", clubID.String())
		}
		if err != nil {
			return err
		}

		if member.Role == models.RoleAdmin {
			admins, err := tx.Members().CountByRole(ctx, clubID, models.RoleAdmin)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return apperrors.LastAdminLeave().WithParam("clubId", clubID.String())
			}
		}

		if err := tx.Members().Delete(ctx, member.ID); err != nil {
			return err
		}
		return s.recount(ctx, tx, club)
	})
	if err != nil {
		return finish(s.logger, "leave club", err)
	}

	s.logger.Info().Str("clubId", clubID.String()).Str("userId", userID.String()).Msg("User left club")
	return nil
}

// ChangeRole lets a club admin assign a new role to a member. An admin who is the
// club's only admin cannot demote themselves.
func (s *membershipServiceImpl) ChangeRole(ctx context.Context, clubID, memberID uuid.UUID, newRole models.Role, actingUserID uuid.UUID) (*models.Member, error) {
	if !newRole.Valid() {
		return nil, finish(s.logger, "change member role", apperrors.Validation("role", "Unknown role.").WithParam("role", string(newRole)))
	}

	var target *models.Member
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if _, err := lockClub(ctx, tx, clubID); err != nil {
			return err
		}
		actorRole, err := roleIn(ctx, tx, clubID, actingUserID)
		if err != nil {
			return err
		}
		if err := auth.Check(actorRole, auth.ChangeMemberRole, auth.NoSubject); err != nil {
			return err
		}

		target, err = tx.Members().GetByID(ctx, memberID)
		if err != nil {
			return notFound(err, memberID, apperrors.MemberNotFound)
		}
		if target.ClubID != clubID {
			return apperrors.MemberNotFound(memberID)
		}

		if target.UserID == actingUserID && target.Role == models.RoleAdmin && newRole != models.RoleAdmin {
			admins, err := tx.Members().CountByRole(ctx, clubID, models.RoleAdmin)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return apperrors.LastAdminRoleChange().WithParam("clubId", clubID.String())
			}
		}

		if target.Role == newRole {
			return nil
		}
		if err := tx.Members().UpdateRole(ctx, target.ID, newRole); err != nil {
			return err
		}
		target.Role = newRole
		return nil
	})
	if err != nil {
		return nil, finish(s.logger, "change member role", err)
	}

	s.logger.Info().
		Str("clubId", clubID.String()).
		Str("memberId", memberID.String()).
		Str("role", string(newRole)).
		Str("actorId", actingUserID.String()).
		Msg("Member role changed")
	return target, nil
}

// RoleOf returns the user's role in the club, nil when not a member.
func (s *membershipServiceImpl) RoleOf(ctx context.Context, clubID, userID uuid.UUID) (*models.Role, error) {
	var role *models.Role
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		role, err = roleIn(ctx, tx, clubID, userID)
		return err
	})
	if err != nil {
		return nil, finish(s.logger, "resolve role", err)
	}
	return role, nil
}

func (s *membershipServiceImpl) GetClub(ctx context.Context, clubID uuid.UUID) (*models.Club, error) {
	var club *models.Club
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		club, err = getClub(ctx, tx, clubID)
		return err
	})
	if err != nil {
		return nil, finish(s.logger, "get club", err)
	}
	return club, nil
}

// SearchClubs returns one page of matching clubs and the total number of matches.
func (s *membershipServiceImpl) SearchClubs(ctx context.Context, filter models.ClubFilter) ([]models.Club, int, error) {
	if filter.MinMembers != nil && filter.MaxMembers != nil && *filter.MinMembers > *filter.MaxMembers {
		return nil, 0, finish(s.logger, "search clubs",
			apperrors.Validation("minMembers", "minMembers must not exceed maxMembers."))
	}

	var (
		clubs []models.Club
		total int
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		clubs, total, err = tx.Clubs().Search(ctx, filter)
		return err
	})
	if err != nil {
		return nil, 0, finish(s.logger, "search clubs", err)
	}
	return clubs, total, nil
}

// ListMembers returns the roster with each member's public user fields.
func (s *membershipServiceImpl) ListMembers(ctx context.Context, clubID uuid.UUID) ([]models.MemberView, error) {
	var views []models.MemberView
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if _, err := getClub(ctx, tx, clubID); err != nil {
			return err
		}
		members, err := tx.Members().ListByClub(ctx, clubID)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(members))
		for i, m := range members {
			ids[i] = m.UserID
		}
		users, err := tx.Users().ListByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]models.User, len(users))
		for _, u := range users {
			byID[u.ID] = u
		}

		views = make([]models.MemberView, 0, len(members))
		for _, m := range members {
			u := byID[m.UserID]
			views = append(views, models.MemberView{Member: m, Username: u.Username, Avatar: u.Avatar})
		}
		return nil
	})
	if err != nil {
		return nil, finish(s.logger, "list members", err)
	}
	return views, nil
}

// UpdateClub applies an admin's edits to the club's descriptive fields.
func (s *membershipServiceImpl) UpdateClub(ctx context.Context, actorID, clubID uuid.UUID, patch models.ClubPatch) (*models.Club, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, finish(s.logger, "update club", apperrors.Validation("name", "Club name must not be empty."))
	}

	var club *models.Club
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		club, err = lockClub(ctx, tx, clubID)
		if err != nil {
			return err
		}
		role, err := roleIn(ctx, tx, clubID, actorID)
		if err != nil {
			return err
		}
		if err := auth.Check(role, auth.UpdateClub, auth.NoSubject); err != nil {
			return err
		}
		patch.Apply(club)
		club.UpdatedAt = s.clock.Now()
		return tx.Clubs().Update(ctx, club)
	})
	if err != nil {
		return nil, finish(s.logger, "update club", err)
	}
	return club, nil
}

// checkAdmin runs the avatar permission check in its own transaction so nothing
// is uploaded for a request that will be refused anyway.
func (s *membershipServiceImpl) checkAdmin(ctx context.Context, actorID, clubID uuid.UUID, action auth.Action) error {
	return s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if _, err := getClub(ctx, tx, clubID); err != nil {
			return err
		}
		role, err := roleIn(ctx, tx, clubID, actorID)
		if err != nil {
			return err
		}
		return auth.Check(role, action, auth.NoSubject)
	})
}

// UpdateClubAvatar uploads a new avatar and replaces the old one.
func (s *membershipServiceImpl) UpdateClubAvatar(ctx context.Context, actorID, clubID uuid.UUID, avatar Upload) (*models.Club, error) {
	if err := s.checkAdmin(ctx, actorID, clubID, auth.UpdateClubAvatar); err != nil {
		return nil, finish(s.logger, "update club avatar", err)
	}

	var (
		club *models.Club
		old  *models.ObjectRef
	)
	err := putObject(ctx, s.objects, s.logger, "clubs/"+clubID.String(), avatar, func(ref *models.ObjectRef) error {
		return s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
			var err error
			club, err = lockClub(ctx, tx, clubID)
			if err != nil {
				return err
			}
			role, err := roleIn(ctx, tx, clubID, actorID)
			if err != nil {
				return err
			}
			if err := auth.Check(role, auth.UpdateClubAvatar, auth.NoSubject); err != nil {
				return err
			}
			old = club.Avatar
			club.Avatar = ref
			club.UpdatedAt = s.clock.Now()
			return tx.Clubs().Update(ctx, club)
		})
	})
	if err != nil {
		return nil, finish(s.logger, "update club avatar", err)
	}

	dropObject(ctx, s.objects, s.logger, old)
	return club, nil
}

// DeleteClub removes the club and everything it owns.
func (s *membershipServiceImpl) DeleteClub(ctx context.Context, actorID, clubID uuid.UUID) error {
	var orphans []*models.ObjectRef
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		club, err := lockClub(ctx, tx, clubID)
		if err != nil {
			return err
		}
		role, err := roleIn(ctx, tx, clubID, actorID)
		if err != nil {
			return err
		}
		if err := auth.Check(role, auth.DeleteClub, auth.NoSubject); err != nil {
			return err
		}
		orphans, err = deleteClub(ctx, tx, *club)
		return err
	})
	if err != nil {
		return finish(s.logger, "delete club", err)
	}

	for _, ref := range orphans {
		dropObject(ctx, s.objects, s.logger, ref)
	}
	s.logger.Info().Str("clubId", clubID.String()).Str("actorId", actorID.String()).Msg("Club deleted")
	return nil
}
