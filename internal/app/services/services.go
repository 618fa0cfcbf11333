// Package services holds the club platform's business logic: the membership
// ledger, the interaction ledger, the feed and the content lifecycle. Every
// public operation runs in exactly one store transaction and reports failures
// as *apperrors.CustomError values.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/filestorage"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

// Services bundles every service so the bootstrap can hand them to controllers.
type Services struct {
	Auth         AuthService
	Users        UserService
	Membership   MembershipService
	Interactions InteractionService
	Feed         FeedService
	Posts        PostService
	Comments     CommentService
	Forum        ForumService
	Events       EventService
}

// Dependencies are the collaborators shared by all services.
type Dependencies struct {
	Store   repositories.Store
	Objects filestorage.ObjectStore
	Tokens  TokenIssuer
	Hasher  PasswordHasher
	Clock   helpers.Clock
	Logger  zerolog.Logger
}

// NewServices wires every service against the same store.
func NewServices(d Dependencies) *Services {
	if d.Clock == nil {
		d.Clock = helpers.SystemClock{}
	}
	return &Services{
		Auth:         NewAuthService(d.Store, d.Tokens, d.Hasher, d.Clock, d.Logger.With().Str("service", "auth").Logger()),
		Users:        NewUserService(d.Store, d.Objects, d.Clock, d.Logger.With().Str("service", "users").Logger()),
		Membership:   NewMembershipService(d.Store, d.Objects, d.Clock, d.Logger.With().Str("service", "membership").Logger()),
		Interactions: NewInteractionService(d.Store, d.Logger.With().Str("service", "interactions").Logger()),
		Feed:         NewFeedService(d.Store, d.Logger.With().Str("service", "feed").Logger()),
		Posts:        NewPostService(d.Store, d.Objects, d.Clock, d.Logger.With().Str("service", "posts").Logger()),
		Comments:     NewCommentService(d.Store, d.Clock, d.Logger.With().Str("service", "comments").Logger()),
		Forum:        NewForumService(d.Store, d.Clock, d.Logger.With().Str("service", "forum").Logger()),
		Events:       NewEventService(d.Store, d.Clock, d.Logger.With().Str("service", "events").Logger()),
	}
}

// Upload is a binary payload headed for the object store.
type Upload struct {
	Data        []byte
	ContentType string
}

// wrap passes application errors through and turns everything else into an
// internal failure.
func wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var ce *apperrors.CustomError
	if errors.As(err, &ce) {
		return err
	}
	return apperrors.Internal(err, message)
}

// notFound maps a repository miss to the typed not-found error of the entity.
func notFound(err error, id uuid.UUID, build func(id fmt.Stringer) *apperrors.CustomError) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return build(id)
	}
	return err
}

// finish wraps err and logs it at a level matching its kind.
func finish(log zerolog.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	err = wrap(err, "Failed to "+op+".")
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindInternal {
		log.Error().Err(err).Str("op", op).Msg("Operation failed")
	} else {
		log.Warn().Str("op", op).Str("kind", string(kind)).Msg(err.Error())
	}
	return err
}

// roleIn returns the user's role in the club, nil when the user is not a member.
func roleIn(ctx context.Context, tx repositories.Tx, clubID, userID uuid.UUID) (*models.Role, error) {
	m, err := tx.Members().Get(ctx, clubID, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	role := m.Role
	return &role, nil
}

func getClub(ctx context.Context, tx repositories.Tx, id uuid.UUID) (*models.Club, error) {
	c, err := tx.Clubs().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, id, apperrors.ClubNotFound)
	}
	return c, nil
}

func lockClub(ctx context.Context, tx repositories.Tx, id uuid.UUID) (*models.Club, error) {
	c, err := tx.Clubs().GetForUpdate(ctx, id)
	if err != nil {
		return nil, notFound(err, id, apperrors.ClubNotFound)
	}
	return c, nil
}

func objectRef(o filestorage.StoredObject) *models.ObjectRef {
	return &models.ObjectRef{Bucket: o.Bucket, Key: o.Key, ETag: o.ETag}
}

// putObject stores up, runs fn with the new reference and removes the object
// again when fn fails.
func putObject(ctx context.Context, objects filestorage.ObjectStore, log zerolog.Logger, prefix string, up Upload, fn func(ref *models.ObjectRef) error) error {
	if objects == nil {
		return apperrors.Internal(errors.New("no object store configured"), "File uploads are not available.")
	}
	if len(up.Data) == 0 {
		return apperrors.Validation("file", "The uploaded file is empty.")
	}
	stored, err := objects.Put(ctx, prefix, up.Data, up.ContentType)
	if errors.Is(err, filestorage.ErrUnsupportedContentType) {
		return apperrors.Validation("file", "Only JPEG, PNG, GIF and WebP images are accepted.").
			WithParam("contentType", up.ContentType)
	}
	if err != nil {
		return apperrors.Internal(err, "Failed to store the uploaded file.")
	}
	if err := fn(objectRef(stored)); err != nil {
		if derr := objects.Delete(context.WithoutCancel(ctx), stored.Bucket, stored.Key); derr != nil {
			log.Warn().Err(derr).Str("key", stored.Key).Msg("Failed to remove orphaned object")
		}
		return err
	}
	return nil
}

// dropObject deletes an object that is no longer referenced. Failures only leave
// garbage behind, so they are logged and swallowed.
func dropObject(ctx context.Context, objects filestorage.ObjectStore, log zerolog.Logger, ref *models.ObjectRef) {
	if objects == nil || ref == nil {
		return
	}
	if err := objects.Delete(context.WithoutCancel(ctx), ref.Bucket, ref.Key); err != nil {
		log.Warn().Err(err).Str("bucket", ref.Bucket).Str("key", ref.Key).Msg("Failed to delete object")
	}
}
