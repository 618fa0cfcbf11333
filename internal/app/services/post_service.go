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
	"github.com/yigit/clubhub/internal/pkg/filestorage"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

// PostService defines the interface for club post operations
type PostService interface {
	Create(ctx context.Context, actorID, clubID uuid.UUID, content string, picture *Upload) (*models.Post, error)
	Get(ctx context.Context, actorID, postID uuid.UUID) (*models.PostView, error)
	ListByClub(ctx context.Context, actorID, clubID uuid.UUID, page models.Page) ([]models.PostView, error)
	Update(ctx context.Context, actorID, postID uuid.UUID, patch models.PostPatch) (*models.Post, error)
	UpdatePicture(ctx context.Context, actorID, postID uuid.UUID, picture Upload) (*models.Post, error)
	DeletePicture(ctx context.Context, actorID, postID uuid.UUID) (*models.Post, error)
	Delete(ctx context.Context, actorID, postID uuid.UUID) error
}

type postServiceImpl struct {
	store   repositories.Store
	objects filestorage.ObjectStore
	clock   helpers.Clock
	logger  zerolog.Logger
}

// NewPostService creates a new PostService
func NewPostService(store repositories.Store, objects filestorage.ObjectStore, clock helpers.Clock, logger zerolog.Logger) PostService {
	return &postServiceImpl{
		store:   store,
		objects: objects,
		clock:   clock,
		logger:  logger,
	}
}

// lockPost loads a post for update and checks action against the actor's role
// and the author's current role in the club.
func lockPost(ctx context.Context, tx repositories.Tx, actorID, postID uuid.UUID, action auth.Action) (*models.Post, error) {
	p, err := tx.Posts().GetForUpdate(ctx, postID)
	if err != nil {
		return nil, notFound(err, postID, apperrors.PostNotFound)
	}
	role, err := roleIn(ctx, tx, p.ClubID, actorID)
	if err != nil {
		return nil, err
	}
	subject := auth.Subject{IsAuthor: p.AuthorID == actorID}
	if !subject.IsAuthor {
		subject.AuthorRole, err = roleIn(ctx, tx, p.ClubID, p.AuthorID)
		if err != nil {
			return nil, err
		}
	}
	if err := auth.Check(role, action, subject); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *postServiceImpl) Create(ctx context.Context, actorID, clubID uuid.UUID, content string, picture *Upload) (*models.Post, error) {
	s.logger.Debug().Str("clubId", clubID.String()).Str("actorId", actorID.String()).Msg("Creating post")

	content = strings.TrimSpace(content)
	if content == "" && picture == nil {
		return nil, finish(s.logger, "create post", apperrors.Validation("content", "A post needs text or a picture."))
	}

	var post models.Post
	create := func(ref *models.ObjectRef) error {
		return s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
			if _, err := getClub(ctx, tx, clubID); err != nil {
				return err
			}
			role, err := roleIn(ctx, tx, clubID, actorID)
			if err != nil {
				return err
			}
			if err := auth.Check(role, auth.CreatePost, auth.Own); err != nil {
				return err
			}
			now := s.clock.Now()
			post = models.Post{
				ID:        models.NewID(),
				ClubID:    clubID,
				AuthorID:  actorID,
				Content:   content,
				Picture:   ref,
				CreatedAt: now,
				UpdatedAt: now,
			}
			return notFound(tx.Posts().Create(ctx, &post), clubID, apperrors.ClubNotFound)
		})
	}

	var err error
	if picture == nil {
		err = create(nil)
	} else {
		err = s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
			if _, err := getClub(ctx, tx, clubID); err != nil {
				return err
			}
			role, err := roleIn(ctx, tx, clubID, actorID)
			if err != nil {
				return err
			}
			return auth.Check(role, auth.CreatePost, auth.Own)
		})
		if err == nil {
			err = putObject(ctx, s.objects, s.logger, "posts/"+clubID.String(), *picture, create)
		}
	}
	if err != nil {
		return nil, finish(s.logger, "create post", err)
	}

	s.logger.Info().Str("postId", post.ID.String()).Str("clubId", clubID.String()).Msg("Post created")
	return &post, nil
}

func (s *postServiceImpl) Get(ctx context.Context, actorID, postID uuid.UUID) (*models.PostView, error) {
	var view *models.PostView
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		p, err := tx.Posts().GetByID(ctx, postID)
		if err != nil {
			return notFound(err, postID, apperrors.PostNotFound)
		}
		role, err := roleIn(ctx, tx, p.ClubID, actorID)
		if err != nil {
			return err
		}
		if err := auth.Check(role, auth.ViewContent, auth.NoSubject); err != nil {
			return err
		}
		views, err := postViews(ctx, tx, actorID, []models.Post{*p})
		if err != nil {
			return err
		}
		view = &views[0]
		return nil
	})
	if err != nil {
		return nil, finish(s.logger, "get post", err)
	}
	return view, nil
}

func (s *postServiceImpl) ListByClub(ctx context.Context, actorID, clubID uuid.UUID, page models.Page) ([]models.PostView, error) {
	var views []models.PostView
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if _, err := getClub(ctx, tx, clubID); err != nil {
			return err
		}
		role, err := roleIn(ctx, tx, clubID, actorID)
		if err != nil {
			return err
		}
		if err := auth.Check(role, auth.ViewContent, auth.NoSubject); err != nil {
			return err
		}
		posts, err := tx.Posts().ListByClub(ctx, clubID, page)
		if err != nil {
			return err
		}
		views, err = postViews(ctx, tx, actorID, posts)
		return err
	})
	if err != nil {
		return nil, finish(s.logger, "list posts", err)
	}
	return views, nil
}

func (s *postServiceImpl) Update(ctx context.Context, actorID, postID uuid.UUID, patch models.PostPatch) (*models.Post, error) {
	var post *models.Post
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		post, err = lockPost(ctx, tx, actorID, postID, auth.UpdatePost)
		if err != nil {
			return err
		}
		if patch.Content != nil {
			content := strings.TrimSpace(*patch.Content)
			if content == "" && post.Picture == nil {
				return apperrors.Validation("content", "A post needs text or a picture.")
			}
			post.Content = content
		}
		post.UpdatedAt = s.clock.Now()
		return tx.Posts().Update(ctx, post)
	})
	if err != nil {
		return nil, finish(s.logger, "update post", err)
	}
	return post, nil
}

// UpdatePicture replaces the post's picture. The permission check runs before
// the upload and again in the writing transaction.
func (s *postServiceImpl) UpdatePicture(ctx context.Context, actorID, postID uuid.UUID, picture Upload) (*models.Post, error) {
	var clubID uuid.UUID
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		p, err := lockPost(ctx, tx, actorID, postID, auth.UpdatePostPicture)
		if err != nil {
			return err
		}
		clubID = p.ClubID
		return nil
	})
	if err != nil {
		return nil, finish(s.logger, "update post picture", err)
	}

	var (
		post *models.Post
		old  *models.ObjectRef
	)
	err = putObject(ctx, s.objects, s.logger, "posts/"+clubID.String(), picture, func(ref *models.ObjectRef) error {
		return s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
			var err error
			post, err = lockPost(ctx, tx, actorID, postID, auth.UpdatePostPicture)
			if err != nil {
				return err
			}
			old = post.Picture
			post.Picture = ref
			post.UpdatedAt = s.clock.Now()
			return tx.Posts().Update(ctx, post)
		})
	})
	if err != nil {
		return nil, finish(s.logger, "update post picture", err)
	}

	dropObject(ctx, s.objects, s.logger, old)
	return post, nil
}

func (s *postServiceImpl) DeletePicture(ctx context.Context, actorID, postID uuid.UUID) (*models.Post, error) {
	var (
		post *models.Post
		old  *models.ObjectRef
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		post, err = lockPost(ctx, tx, actorID, postID, auth.DeletePostPicture)
		if err != nil {
			return err
		}
		if post.Picture == nil {
			return nil
		}
		old = post.Picture
		post.Picture = nil
		post.UpdatedAt = s.clock.Now()
		return tx.Posts().Update(ctx, post)
	})
	if err != nil {
		return nil, finish(s.logger, "delete post picture", err)
	}

	dropObject(ctx, s.objects, s.logger, old)
	return post, nil
}

// Delete removes the post with its comments and interactions.
func (s *postServiceImpl) Delete(ctx context.Context, actorID, postID uuid.UUID) error {
	var picture *models.ObjectRef
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		p, err := lockPost(ctx, tx, actorID, postID, auth.DeletePost)
		if err != nil {
			return err
		}
		picture = p.Picture
		return deletePost(ctx, tx, *p)
	})
	if err != nil {
		return finish(s.logger, "delete post", err)
	}

	dropObject(ctx, s.objects, s.logger, picture)
	s.logger.Info().Str("postId", postID.String()).Str("actorId", actorID.String()).Msg("Post deleted")
	return nil
}
