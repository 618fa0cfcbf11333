package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/app/models"
)

// Errors every store implementation reports in the same way.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Store runs units of work. fn either commits as a whole or leaves no trace.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx exposes the repositories bound to one transaction.
type Tx interface {
	Users() UserRepository
	Clubs() ClubRepository
	Members() MemberRepository
	Posts() PostRepository
	Comments() CommentRepository
	Threads() ThreadRepository
	Replies() ReplyRepository
	Events() EventRepository
	Interactions() InteractionRepository
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
}

// ClubRepository persists clubs. GetForUpdate locks the club row until the
// transaction ends; membership changes serialize on it.
type ClubRepository interface {
	Create(ctx context.Context, c *models.Club) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Club, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Club, error)
	Update(ctx context.Context, c *models.Club) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, f models.ClubFilter) ([]models.Club, int, error)
}

type MemberRepository interface {
	Create(ctx context.Context, m *models.Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
	Get(ctx context.Context, clubID, userID uuid.UUID) (*models.Member, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByClub(ctx context.Context, clubID uuid.UUID) ([]models.Member, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Member, error)
	CountByClub(ctx context.Context, clubID uuid.UUID) (int, error)
	CountByRole(ctx context.Context, clubID uuid.UUID, role models.Role) (int, error)
}

// PostRepository persists posts. List methods return newest first; a
// non-positive page limit returns everything from the offset on.
type PostRepository interface {
	Create(ctx context.Context, p *models.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Update(ctx context.Context, p *models.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByClub(ctx context.Context, clubID uuid.UUID, page models.Page) ([]models.Post, error)
	ListForClubSince(ctx context.Context, clubID uuid.UUID, since time.Time) ([]models.Post, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Post, error)
	CountByAuthor(ctx context.Context, authorID uuid.UUID) (int, error)
}

// CommentRepository lists comments oldest first.
type CommentRepository interface {
	Create(ctx context.Context, c *models.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	Update(ctx context.Context, c *models.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByParent(ctx context.Context, parent models.ResourceRef, page models.Page) ([]models.Comment, error)
	CountByParent(ctx context.Context, parent models.ResourceRef) (int, error)
}

// ThreadRepository lists threads by most recent activity.
type ThreadRepository interface {
	Create(ctx context.Context, t *models.ForumThread) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ForumThread, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.ForumThread, error)
	Update(ctx context.Context, t *models.ForumThread) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByClub(ctx context.Context, clubID uuid.UUID, page models.Page) ([]models.ForumThread, error)
}

// ReplyRepository lists replies oldest first.
type ReplyRepository interface {
	Create(ctx context.Context, r *models.Reply) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Reply, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Reply, error)
	Update(ctx context.Context, r *models.Reply) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByThread(ctx context.Context, threadID uuid.UUID, page models.Page) ([]models.Reply, error)
	CountByThread(ctx context.Context, threadID uuid.UUID) (int, error)
}

type EventRepository interface {
	Create(ctx context.Context, e *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Event, error)
	Update(ctx context.Context, e *models.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByClub(ctx context.Context, clubID uuid.UUID, page models.Page) ([]models.Event, error)
	ListForClubSince(ctx context.Context, clubID uuid.UUID, since time.Time) ([]models.Event, error)
}

// InteractionRepository stores the per-user interaction sets. Add and Remove
// report whether the set changed.
type InteractionRepository interface {
	Add(ctx context.Context, ref models.ResourceRef, axis models.Axis, userID uuid.UUID) (bool, error)
	Remove(ctx context.Context, ref models.ResourceRef, axis models.Axis, userID uuid.UUID) (bool, error)
	Has(ctx context.Context, ref models.ResourceRef, axis models.Axis, userID uuid.UUID) (bool, error)
	Count(ctx context.Context, ref models.ResourceRef, axis models.Axis) (int, error)
	ResourceIDsByUser(ctx context.Context, kind models.ResourceKind, axis models.Axis, userID uuid.UUID) ([]uuid.UUID, error)
	CountByUser(ctx context.Context, kind models.ResourceKind, axis models.Axis, userID uuid.UUID) (int, error)
	DeleteForResource(ctx context.Context, ref models.ResourceRef) error
}
